package strategy

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeStrategy(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "strategy.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 10, s.TopN)
	assert.True(t, s.Universe.ExcludeST)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeStrategy(t, `
top_n: 5
index_code: "000300.SH"
weights:
  fundamental: 0.5
  volume: 0.2
  price: 0.3
universe:
  exclude_st: true
  exclude_suspended: true
  markets: ["main", "gem"]
  min_list_days: 120
`)

	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 5, s.TopN)
	assert.Equal(t, "000300.SH", s.IndexCode)
	assert.Equal(t, 0.5, s.Weights.Fundamental)
	assert.Equal(t, []string{"main", "gem"}, s.Universe.Markets)
	assert.Equal(t, 10, s.Workers, "unset fields keep their defaults")
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	path := writeStrategy(t, `
top_n: 5
wieghts:
  fundamental: 1.0
`)

	_, err := Load(path)
	require.Error(t, err, "a typoed key must fail, not silently use defaults")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Strategy)
		wantErr bool
	}{
		{"defaults pass", func(s *Strategy) {}, false},
		{"zero top_n", func(s *Strategy) { s.TopN = 0 }, true},
		{"negative weight", func(s *Strategy) { s.Weights.Price = -0.1 }, true},
		{"all-zero weights", func(s *Strategy) { s.Weights.Fundamental, s.Weights.Volume, s.Weights.Price = 0, 0, 0 }, true},
		{"bad market", func(s *Strategy) { s.Universe.Markets = []string{"nasdaq"} }, true},
		{"weights not summing to one still pass", func(s *Strategy) { s.Weights.Fundamental = 3 }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Default()
			tt.mutate(s)
			err := s.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
