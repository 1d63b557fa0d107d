//go:build unit
// +build unit

package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/MGTheTrain/admin-console/internal/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriterLogger_LogsToOutput(t *testing.T) {
	var buf bytes.Buffer

	logger := NewWriterLogger(&buf, config.LogLevelInfo, false)

	logger.Debug("debug message")
	logger.Info("info message")
	logger.Warn("warn message")
	logger.Error("error message")

	output := buf.String()
	assert.NotContains(t, output, "debug message")
	assert.Contains(t, output, "info message")
	assert.Contains(t, output, "warn message")
	assert.Contains(t, output, "error message")
}

func TestWriterLogger_With(t *testing.T) {
	var buf bytes.Buffer

	logger := NewWriterLogger(&buf, config.LogLevelDebug, true).With("request_id", "abc123")
	logger.Debug("handled")

	output := buf.String()
	assert.Contains(t, output, `"request_id":"abc123"`)
	assert.Contains(t, output, `"msg":"handled"`)
}

func TestWriterLogger_Panic(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWriterLogger(&buf, config.LogLevelInfo, false)

	assert.PanicsWithValue(t, "boom", func() {
		logger.Panic("boom")
	})
	assert.Contains(t, buf.String(), "boom")
}

func TestNewConsoleLogger(t *testing.T) {
	logger := NewConsoleLogger(config.LogLevelInfo, false)
	require.NotNil(t, logger)

	require.NotPanics(t, func() {
		logger.Info("test")
		logger.Warn("test")
		logger.Error("test")
	})
}

func TestNewFileLogger(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "test.log")

	logger := NewFileLogger(&config.LoggerSettings{
		LogLevel:   config.LogLevelInfo,
		LogType:    config.LogTypeFile,
		FilePath:   logPath,
		MaxSize:    10,
		MaxBackups: 3,
		MaxAge:     28,
	})
	require.NotNil(t, logger)

	logger.Debug("hidden below info")
	logger.With("reference", "ERR-00000001").Error("error message")

	content, err := os.ReadFile(logPath)
	require.NoError(t, err)

	logOutput := string(content)
	assert.NotContains(t, logOutput, "hidden below info")
	assert.Contains(t, logOutput, `"msg":"error message"`)
	assert.Contains(t, logOutput, `"level":"ERROR"`)
	assert.Contains(t, logOutput, `"reference":"ERR-00000001"`)
}

func TestNewFileLogger_TextFormat(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "text.log")

	logger := NewFileLogger(&config.LoggerSettings{
		LogLevel:   config.LogLevelWarning,
		LogType:    config.LogTypeFile,
		Format:     config.LogFormatText,
		FilePath:   logPath,
		MaxSize:    1,
		MaxBackups: 1,
		MaxAge:     1,
	})
	logger.Warn("mail transport ", "smtp", " unreachable")

	content, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(content), `level=WARN msg="mail transport smtp unreachable"`)
}
