package log

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandlerFormatsModuleAndAttrs(t *testing.T) {
	var out bytes.Buffer
	logger := slog.New(NewHandler(&out, &slog.HandlerOptions{Level: slog.LevelDebug}))

	logger.With(slog.String("module", "filter")).Info("brightness changed", slog.Float64("value", 0.5))

	line := out.String()
	assert.Contains(t, line, "[filter] ")
	assert.Contains(t, line, "brightness changed")
	assert.Contains(t, line, "value=0.5")
	assert.NotContains(t, line, "module=")
}

func TestHandlerRespectsLevel(t *testing.T) {
	var out bytes.Buffer
	logger := slog.New(NewHandler(&out, &slog.HandlerOptions{Level: slog.LevelWarn}))

	logger.Info("quiet")
	assert.Empty(t, out.String())

	logger.Error("loud")
	assert.Contains(t, out.String(), "loud")
}

func TestSetupRejectsBadLevel(t *testing.T) {
	require.NoError(t, Setup("debug"))
	assert.Error(t, Setup("chatty"))
}
