package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNamedUsesGlobalLogger(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	prev := Get()
	Set(zap.New(core))
	t.Cleanup(func() { Set(prev) })

	Named("collector").Info("fetched", zap.String("asset", "BTC-USD"))
	Get().Debug("hidden")

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "collector", entry.LoggerName)
	assert.Equal(t, "BTC-USD", entry.ContextMap()["asset"])
}

func TestInitLevels(t *testing.T) {
	prev := Get()
	t.Cleanup(func() { Set(prev) })

	require.NoError(t, Init("warn", "production"))
	assert.False(t, Get().Core().Enabled(zapcore.InfoLevel))
	assert.True(t, Get().Core().Enabled(zapcore.WarnLevel))

	require.NoError(t, Init("debug", "development"))
	assert.True(t, Get().Core().Enabled(zapcore.DebugLevel))
}
