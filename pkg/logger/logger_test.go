package logger

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input string
		want  zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"DEBUG", zerolog.DebugLevel},
		{"", zerolog.InfoLevel},
		{"garbage", zerolog.InfoLevel},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, parseLogLevel(tt.input))
		})
	}
}

func TestWithChaining(t *testing.T) {
	log := NewNop()

	// Chained context loggers must not panic and must return fresh
	// instances.
	child := log.WithField("module", "test").
		WithFields(map[string]interface{}{"a": 1, "b": "two"}).
		WithError(nil)

	assert.NotNil(t, child)
	assert.NotSame(t, log, child)
	child.Info("message into the void")
}
