package logging

import (
	"testing"

	"go.uber.org/zap/zapcore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Formats(t *testing.T) {
	for _, format := range []string{"json", "console"} {
		logger, err := New("info", format)
		require.NoError(t, err, "format %q should be valid", format)
		assert.NotNil(t, logger)
	}
}

func TestNew_AllLevels(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error"} {
		logger, err := New(level, "json")
		require.NoError(t, err, "level %q should be valid", level)
		assert.True(t, logger.Core().Enabled(mustLevel(t, level)))
	}
}

func TestNew_Invalid(t *testing.T) {
	_, err := New("trace", "json")
	assert.Error(t, err)

	_, err = New("info", "xml")
	assert.Error(t, err)
}

func mustLevel(t *testing.T, s string) zapcore.Level {
	t.Helper()
	lvl, err := zapcore.ParseLevel(s)
	require.NoError(t, err)
	return lvl
}
