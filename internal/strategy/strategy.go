package strategy

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/zhouql/stockpick/internal/scoring"
)

// Strategy is the operator-tunable part of a selection run: weights,
// universe filters, and output size. Everything has a default; a
// missing file means "run with defaults".
type Strategy struct {
	TopN      int             `yaml:"top_n"`
	Workers   int             `yaml:"workers"`
	IndexCode string          `yaml:"index_code"`
	Weights   scoring.Weights `yaml:"weights"`
	Universe  UniverseFilter  `yaml:"universe"`
}

// UniverseFilter narrows the listed universe before scoring.
type UniverseFilter struct {
	ExcludeST        bool     `yaml:"exclude_st"`
	ExcludeSuspended bool     `yaml:"exclude_suspended"`
	Markets          []string `yaml:"markets"`
	MinListDays      int      `yaml:"min_list_days"`
}

// Default returns the built-in strategy.
func Default() *Strategy {
	return &Strategy{
		TopN:    10,
		Workers: 10,
		Weights: scoring.DefaultWeights,
		Universe: UniverseFilter{
			ExcludeST:        true,
			ExcludeSuspended: true,
			MinListDays:      60,
		},
	}
}

// Load reads a strategy file. A missing path is not an error; the
// defaults apply. Unknown keys are rejected so a typoed weight name
// fails loudly instead of silently running with defaults.
func Load(path string) (*Strategy, error) {
	s := Default()
	if path == "" {
		return s, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("read strategy file: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(s); err != nil {
		return nil, fmt.Errorf("parse strategy file %s: %w", path, err)
	}

	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("strategy file %s: %w", path, err)
	}
	return s, nil
}

// Validate rejects strategies that cannot produce a sane run.
func (s *Strategy) Validate() error {
	if s.TopN <= 0 {
		return fmt.Errorf("top_n must be positive, got %d", s.TopN)
	}
	if s.Workers <= 0 {
		return fmt.Errorf("workers must be positive, got %d", s.Workers)
	}
	if s.Weights.Fundamental < 0 || s.Weights.Volume < 0 || s.Weights.Price < 0 {
		return fmt.Errorf("weights must be non-negative")
	}
	if s.Weights.Fundamental+s.Weights.Volume+s.Weights.Price <= 0 {
		return fmt.Errorf("at least one weight must be positive")
	}
	for _, m := range s.Universe.Markets {
		switch m {
		case "main", "gem", "star", "bse":
		default:
			return fmt.Errorf("unknown market %q", m)
		}
	}
	return nil
}
