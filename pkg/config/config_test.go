package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	// Check defaults
	if cfg.Env != "development" {
		t.Errorf("Expected Env to be development, got %s", cfg.Env)
	}

	if cfg.Database.MaxOpenConns != 25 {
		t.Errorf("Expected DB MaxOpenConns to be 25, got %d", cfg.Database.MaxOpenConns)
	}

	if cfg.Selection.TopN != 20 {
		t.Errorf("Expected TopN to be 20, got %d", cfg.Selection.TopN)
	}

	if cfg.Tushare.PaceDelay != 300*time.Millisecond {
		t.Errorf("Expected PaceDelay to be 300ms, got %v", cfg.Tushare.PaceDelay)
	}
}

func TestLoadWithCustomValues(t *testing.T) {
	os.Setenv("DATABASE_PATH", "/tmp/test.db")
	os.Setenv("ENV", "production")
	os.Setenv("SELECT_TOP_N", "50")
	os.Setenv("LOG_LEVEL", "debug")

	defer func() {
		os.Unsetenv("DATABASE_PATH")
		os.Unsetenv("ENV")
		os.Unsetenv("SELECT_TOP_N")
		os.Unsetenv("LOG_LEVEL")
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Database.Path != "/tmp/test.db" {
		t.Errorf("Expected Database.Path to be /tmp/test.db, got %s", cfg.Database.Path)
	}

	if cfg.Env != "production" {
		t.Errorf("Expected Env to be production, got %s", cfg.Env)
	}

	if cfg.Selection.TopN != 50 {
		t.Errorf("Expected TopN to be 50, got %d", cfg.Selection.TopN)
	}

	if cfg.LogLevel != "debug" {
		t.Errorf("Expected LogLevel to be debug, got %s", cfg.LogLevel)
	}
}

func TestValidateInvalidTopN(t *testing.T) {
	os.Setenv("SELECT_TOP_N", "0")
	defer os.Unsetenv("SELECT_TOP_N")

	_, err := Load()
	if err == nil {
		t.Error("Expected error when SELECT_TOP_N is zero, got nil")
	}
}

func TestRequireVendor(t *testing.T) {
	os.Unsetenv("TUSHARE_TOKEN")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if err := cfg.RequireVendor(); err == nil {
		t.Error("Expected error when TUSHARE_TOKEN is missing, got nil")
	}

	os.Setenv("TUSHARE_TOKEN", "test-token")
	defer os.Unsetenv("TUSHARE_TOKEN")

	cfg, err = Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if err := cfg.RequireVendor(); err != nil {
		t.Errorf("Expected no error with token set, got %v", err)
	}
}

func TestGetEnvAsDuration(t *testing.T) {
	os.Setenv("TEST_DURATION", "2h")
	defer os.Unsetenv("TEST_DURATION")

	duration := getEnvAsDuration("TEST_DURATION", "1h")
	expected := 2 * time.Hour

	if duration != expected {
		t.Errorf("Expected duration to be %v, got %v", expected, duration)
	}
}

func TestGetEnvAsInt(t *testing.T) {
	os.Setenv("TEST_INT", "100")
	defer os.Unsetenv("TEST_INT")

	value := getEnvAsInt("TEST_INT", 50)
	if value != 100 {
		t.Errorf("Expected value to be 100, got %d", value)
	}
}

func TestGetEnvAsBool(t *testing.T) {
	os.Setenv("TEST_BOOL", "true")
	defer os.Unsetenv("TEST_BOOL")

	value := getEnvAsBool("TEST_BOOL", false)
	if value != true {
		t.Errorf("Expected value to be true, got %v", value)
	}
}
