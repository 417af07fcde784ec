// File: internal/observability/logger_test.go
package observability

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/probeworks/extflow/internal/config"
)

// syncBuffer adapts bytes.Buffer to zapcore.WriteSyncer.
type syncBuffer struct {
	bytes.Buffer
}

func (b *syncBuffer) Sync() error { return nil }

func TestInitializeWritesToConsole(t *testing.T) {
	ResetForTest()
	t.Cleanup(ResetForTest)

	buf := &syncBuffer{}
	Initialize(config.LoggerConfig{
		Level:       "debug",
		Format:      "json",
		ServiceName: "extflow-test",
	}, buf)

	logger := GetLogger()
	require.NotNil(t, logger)
	logger.Info("hello", zap.String("k", "v"))
	require.NoError(t, logger.Sync())

	out := buf.String()
	assert.Contains(t, out, `"msg":"hello"`)
	assert.Contains(t, out, `"k":"v"`)
	assert.Contains(t, out, "extflow-test")
}

func TestInitializeRunsOnce(t *testing.T) {
	ResetForTest()
	t.Cleanup(ResetForTest)

	first := &syncBuffer{}
	second := &syncBuffer{}
	Initialize(config.LoggerConfig{Level: "info", Format: "json", ServiceName: "a"}, first)
	Initialize(config.LoggerConfig{Level: "info", Format: "json", ServiceName: "b"}, second)

	GetLogger().Info("only once")
	_ = GetLogger().Sync()

	assert.Contains(t, first.String(), "only once")
	assert.Empty(t, second.String(), "second Initialize must be a no-op")
}

func TestInvalidLevelFallsBackToInfo(t *testing.T) {
	ResetForTest()
	t.Cleanup(ResetForTest)

	buf := &syncBuffer{}
	Initialize(config.LoggerConfig{Level: "not-a-level", Format: "json", ServiceName: "t"}, buf)

	logger := GetLogger()
	logger.Debug("dropped")
	logger.Info("kept")
	_ = logger.Sync()

	assert.NotContains(t, buf.String(), "dropped")
	assert.Contains(t, buf.String(), "kept")
}

func TestGetLoggerFallback(t *testing.T) {
	ResetForTest()
	t.Cleanup(ResetForTest)

	// Without initialization a usable (non-nil) logger must still come back.
	logger := GetLogger()
	require.NotNil(t, logger)
	assert.NotPanics(t, func() { logger.Info("fallback works") })
}

func TestColorizedLevelEncoder(t *testing.T) {
	enc := newColorizedLevelEncoder(config.ColorConfig{Info: "green", Error: "red"})

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeLevel = enc
	buf := &syncBuffer{}
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig), buf, zap.DebugLevel)

	zap.New(core).Info("colored")
	assert.Contains(t, buf.String(), colorGreen+"INFO"+colorReset)
}
