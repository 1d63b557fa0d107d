package testutil

import (
	"bytes"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/MGTheTrain/admin-console/internal/pkg/config"
	"github.com/MGTheTrain/admin-console/internal/pkg/logger"
)

// testWriter forwards log records to t.Log so they only surface for failing tests.
// Records from goroutines outliving the test are dropped.
type testWriter struct {
	t    *testing.T
	done *atomic.Bool
}

func (w testWriter) Write(p []byte) (int, error) {
	if !w.done.Load() {
		w.t.Log(strings.TrimRight(string(p), "\n"))
	}
	return len(p), nil
}

// SetupTestLogger returns a debug level logger bound to t.
func SetupTestLogger(t *testing.T) logger.Logger {
	t.Helper()
	done := &atomic.Bool{}
	t.Cleanup(func() { done.Store(true) })
	return logger.NewWriterLogger(testWriter{t: t, done: done}, config.LogLevelDebug, false)
}

// LogBuffer collects JSON log records written by a CaptureLogger.
type LogBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *LogBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

// String returns everything logged so far.
func (b *LogBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// CaptureLogger returns a JSON logger at level together with the buffer it writes to.
func CaptureLogger(level string) (logger.Logger, *LogBuffer) {
	buf := &LogBuffer{}
	return logger.NewWriterLogger(buf, level, true), buf
}
