package logging

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultLoggerIsSilent(t *testing.T) {
	SetLogger(nil)
	assert.False(t, Logger().Enabled(t.Context(), slog.LevelError))
}

func TestNewRespectsLevel(t *testing.T) {
	var out bytes.Buffer
	l, err := New("warn", &out)
	require.NoError(t, err)

	SetLogger(l)
	defer SetLogger(nil)

	For("fill").Info("hidden")
	For("fill").Warn("shown", "pixels", 3)

	assert.NotContains(t, out.String(), "hidden")
	assert.Contains(t, out.String(), "component=fill")
	assert.Contains(t, out.String(), "pixels=3")
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
		ok   bool
	}{
		{"debug", slog.LevelDebug, true},
		{"", slog.LevelInfo, true},
		{"WARNING", slog.LevelWarn, true},
		{"error", slog.LevelError, true},
		{"loud", slog.LevelInfo, false},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if !tt.ok {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}
