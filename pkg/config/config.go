package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application. Environment
// variables are read here and nowhere else.
type Config struct {
	Env string // development, production

	// Local cache database
	Database DatabaseConfig

	// Vendor data API
	Tushare TushareConfig

	// Optional Redis (shared rate limiting across processes)
	Redis RedisConfig

	// Selection defaults
	Selection SelectionConfig

	// Notification webhook (empty disables)
	WebhookURL string

	// Report API
	APIPort string

	// Logging
	LogLevel  string
	LogFormat string
}

// DatabaseConfig holds the embedded SQLite configuration.
type DatabaseConfig struct {
	Path         string
	MaxOpenConns int
	MaxIdleConns int
}

// TushareConfig holds vendor API configuration.
type TushareConfig struct {
	Token      string
	BaseURL    string
	Timeout    time.Duration
	PaceDelay  time.Duration // minimum gap between requests
	CooldownN  int           // extra pause every N requests
	Cooldown   time.Duration
	MaxRetries int
}

// RedisConfig holds optional Redis configuration.
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
}

// SelectionConfig holds defaults for the selection run.
type SelectionConfig struct {
	TopN         int
	Workers      int
	StrategyFile string
}

// Load reads configuration from environment variables. Only this
// function calls os.Getenv.
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		Env: getEnv("ENV", "development"),

		Database: DatabaseConfig{
			Path:         getEnv("DATABASE_PATH", "./data/stockpick.db"),
			MaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
		},

		Tushare: TushareConfig{
			Token:      getEnv("TUSHARE_TOKEN", ""),
			BaseURL:    getEnv("TUSHARE_BASE_URL", "https://api.tushare.pro"),
			Timeout:    getEnvAsDuration("TUSHARE_TIMEOUT", "30s"),
			PaceDelay:  getEnvAsDuration("TUSHARE_PACE_DELAY", "300ms"),
			CooldownN:  getEnvAsInt("TUSHARE_COOLDOWN_EVERY", 200),
			Cooldown:   getEnvAsDuration("TUSHARE_COOLDOWN", "10s"),
			MaxRetries: getEnvAsInt("TUSHARE_MAX_RETRIES", 3),
		},

		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
		},

		Selection: SelectionConfig{
			TopN:         getEnvAsInt("SELECT_TOP_N", 20),
			Workers:      getEnvAsInt("SELECT_WORKERS", 10),
			StrategyFile: getEnv("STRATEGY_FILE", ""),
		},

		WebhookURL: getEnv("WEBHOOK_URL", ""),
		APIPort:    getEnv("API_PORT", "8090"),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "console"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks invariants that hold for every command. Vendor
// credentials are checked separately by RequireVendor because
// cache-only commands run without them.
func (c *Config) validate() error {
	if c.Database.Path == "" {
		return fmt.Errorf("DATABASE_PATH is required")
	}
	if c.Selection.TopN <= 0 {
		return fmt.Errorf("SELECT_TOP_N must be positive, got %d", c.Selection.TopN)
	}
	if c.Selection.Workers <= 0 {
		return fmt.Errorf("SELECT_WORKERS must be positive, got %d", c.Selection.Workers)
	}
	return nil
}

// RequireVendor fails fast when the vendor token is missing. Commands
// that hit the vendor API call this before doing any work.
func (c *Config) RequireVendor() error {
	if strings.TrimSpace(c.Tushare.Token) == "" {
		return fmt.Errorf("TUSHARE_TOKEN is required for vendor-backed commands")
	}
	return nil
}

// loadEnvFile tries a few conventional locations for a .env file.
func loadEnvFile() {
	for _, path := range []string{".env", "../.env", "../../.env"} {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key, defaultValue string) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		value = defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		d, _ = time.ParseDuration(defaultValue)
	}
	return d
}
