package logger

import (
	"io"
	"log/slog"
	"os"

	"github.com/MGTheTrain/admin-console/internal/pkg/config"
	"github.com/natefinch/lumberjack"
)

// SlogLogger is the slog backed implementation of Logger shared by the console
// and file outputs.
type SlogLogger struct {
	logger *slog.Logger
}

// NewConsoleLogger creates a logger writing to stdout.
func NewConsoleLogger(level string, jsonFormat bool) Logger {
	return NewWriterLogger(os.Stdout, level, jsonFormat)
}

// NewFileLogger creates a logger writing to a lumberjack rotated file.
func NewFileLogger(settings *config.LoggerSettings) Logger {
	writer := &lumberjack.Logger{
		Filename:   settings.FilePath,
		MaxSize:    settings.MaxSize,
		MaxBackups: settings.MaxBackups,
		MaxAge:     settings.MaxAge,
		Compress:   settings.Compress,
	}
	return NewWriterLogger(writer, settings.LogLevel, settings.JSON())
}

// NewWriterLogger creates a logger on an arbitrary writer.
func NewWriterLogger(w io.Writer, level string, jsonFormat bool) Logger {
	opts := &slog.HandlerOptions{
		Level: parseLevel(level),
	}

	var handler slog.Handler
	if jsonFormat {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return &SlogLogger{logger: slog.New(handler)}
}

// Debug logs a debug message.
func (l *SlogLogger) Debug(args ...interface{}) {
	l.logger.Debug(formatArgs(args...))
}

// Info logs an informational message.
func (l *SlogLogger) Info(args ...interface{}) {
	l.logger.Info(formatArgs(args...))
}

// Warn logs a warning message.
func (l *SlogLogger) Warn(args ...interface{}) {
	l.logger.Warn(formatArgs(args...))
}

// Error logs an error message.
func (l *SlogLogger) Error(args ...interface{}) {
	l.logger.Error(formatArgs(args...))
}

// Fatal logs a fatal message and exits.
func (l *SlogLogger) Fatal(args ...interface{}) {
	l.logger.Error(formatArgs(args...))
	os.Exit(1)
}

// Panic logs a panic message and panics.
func (l *SlogLogger) Panic(args ...interface{}) {
	msg := formatArgs(args...)
	l.logger.Error(msg)
	panic(msg)
}

// With returns a child logger carrying the given attributes.
func (l *SlogLogger) With(args ...interface{}) Logger {
	return &SlogLogger{logger: l.logger.With(args...)}
}
