//go:build unit
// +build unit

package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fileLoggerSettings() LoggerSettings {
	return LoggerSettings{
		LogLevel:   LogLevelWarning,
		LogType:    LogTypeFile,
		FilePath:   "storage/logs/admin-console.log",
		MaxSize:    10,
		MaxBackups: 3,
		MaxAge:     28,
	}
}

func TestLoggerSettingsValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*LoggerSettings)
		wantErr string
	}{
		{name: "file logger with rotation", mutate: func(*LoggerSettings) {}},
		{
			name:   "console logger skips rotation limits",
			mutate: func(s *LoggerSettings) { *s = LoggerSettings{LogLevel: LogLevelCritical, LogType: LogTypeConsole, MaxSize: 500} },
		},
		{
			name:    "unknown level",
			mutate:  func(s *LoggerSettings) { s.LogLevel = "notice" },
			wantErr: "LoggerSettings",
		},
		{
			name:    "unknown type",
			mutate:  func(s *LoggerSettings) { s.LogType = "syslog" },
			wantErr: "LoggerSettings",
		},
		{
			name:    "unknown format",
			mutate:  func(s *LoggerSettings) { s.Format = "logfmt" },
			wantErr: "LoggerSettings",
		},
		{
			name:    "file logger without a path",
			mutate:  func(s *LoggerSettings) { s.FilePath = "" },
			wantErr: "FilePath",
		},
		{
			name:    "rotation size above limit",
			mutate:  func(s *LoggerSettings) { s.MaxSize = 101 },
			wantErr: "invalid rotation settings for file logger storage/logs/admin-console.log",
		},
		{
			name:    "rotation without backups",
			mutate:  func(s *LoggerSettings) { s.MaxBackups = 0 },
			wantErr: "MaxBackups",
		},
		{
			name:    "retention above a year",
			mutate:  func(s *LoggerSettings) { s.MaxAge = 366 },
			wantErr: "MaxAge",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			settings := fileLoggerSettings()
			tt.mutate(&settings)

			err := settings.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoggerSettingsJSON(t *testing.T) {
	file := fileLoggerSettings()
	assert.True(t, file.JSON())

	file.Format = LogFormatText
	assert.False(t, file.JSON())

	console := LoggerSettings{LogLevel: LogLevelInfo, LogType: LogTypeConsole}
	assert.False(t, console.JSON())

	console.Format = LogFormatJSON
	assert.True(t, console.JSON())
}
