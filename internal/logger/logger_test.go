package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBufferLoggerCaptures(t *testing.T) {
	l := NewBufferLogger()

	l.Info("loaded %d hosts", 4)
	l.Warn("inventory %s skipped", "broken.yml")
	l.Error("spawn failed")

	require.Len(t, l.Messages, 3)
	assert.Equal(t, "loaded 4 hosts", l.Messages[0].Message)
	assert.True(t, l.HasLevel("warn"))
	assert.True(t, l.HasLevel("error"))
	assert.False(t, l.HasLevel("debug"))
}

func TestBufferLoggerClear(t *testing.T) {
	l := NewBufferLogger()
	l.Info("one")
	l.Clear()

	assert.Empty(t, l.Messages)
}

func TestNoopDiscards(t *testing.T) {
	l := Noop()

	// Should not panic or produce output.
	l.Debug("debug %s", "x")
	l.Info("info")
	l.Warn("warn")
	l.Error("error")
}

func TestFileLoggerWrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pbdeck.log")
	l, closeFn := NewFileLogger(path, "tui")
	defer closeFn()

	l.Info("session started")
	l.Error("engine exited with code %d", 2)
	require.NoError(t, closeFn())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "session started")
	assert.Contains(t, string(data), "engine exited with code 2")
}

func TestFileLoggerBadPathFallsBackToNoop(t *testing.T) {
	l, closeFn := NewFileLogger("/nonexistent-dir/pbdeck.log", "tui")
	defer closeFn()

	// Noop fallback: calls must be safe.
	l.Info("ignored")
	assert.NoError(t, closeFn())
}

func TestSetDefault(t *testing.T) {
	orig := Default()
	defer SetDefault(orig)

	buf := NewBufferLogger()
	SetDefault(buf)

	Default().Info("hello")
	assert.Len(t, buf.Messages, 1)
}
