// Package logger provides a small logging interface for pbdeck components.
// It lets packages log debug, info, warn, and error messages without being
// coupled to a specific logging implementation. The TUI uses a file-backed
// logger because a full-screen program cannot write to stderr while running.
package logger

import (
	"fmt"
	"io"
	"log"
	"os"

	charmlog "github.com/charmbracelet/log"
)

// Logger defines the interface for logging operations.
// All methods accept a format string and arguments, similar to fmt.Printf.
type Logger interface {
	Debug(format string, args ...interface{})
	Info(format string, args ...interface{})
	Warn(format string, args ...interface{})
	Error(format string, args ...interface{})
}

// envLogger implements Logger and logs to stderr based on environment.
// Debug messages are only printed when PBDECK_DEBUG is set.
type envLogger struct {
	prefix string
}

// NewEnvLogger creates a logger that respects the PBDECK_DEBUG environment
// variable. The prefix is prepended to all log messages (e.g., "[engine]").
func NewEnvLogger(prefix string) Logger {
	return &envLogger{prefix: prefix}
}

func (l *envLogger) Debug(format string, args ...interface{}) {
	if os.Getenv("PBDECK_DEBUG") != "" {
		log.Printf(l.prefix+" "+format, args...)
	}
}

func (l *envLogger) Info(format string, args ...interface{}) {
	log.Printf(l.prefix+" "+format, args...)
}

func (l *envLogger) Warn(format string, args ...interface{}) {
	log.Printf(l.prefix+" WARN: "+format, args...)
}

func (l *envLogger) Error(format string, args ...interface{}) {
	log.Printf(l.prefix+" ERROR: "+format, args...)
}

// fileLogger implements Logger on top of charmbracelet/log writing to a file.
type fileLogger struct {
	l *charmlog.Logger
	c io.Closer
}

// NewFileLogger creates a logger that appends structured log lines to path.
// Returns a Noop logger when the file cannot be opened, so callers never
// need to branch on logging availability.
func NewFileLogger(path, prefix string) (Logger, func() error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return Noop(), func() error { return nil }
	}
	cl := charmlog.NewWithOptions(f, charmlog.Options{
		ReportTimestamp: true,
		Prefix:          prefix,
	})
	if os.Getenv("PBDECK_DEBUG") != "" {
		cl.SetLevel(charmlog.DebugLevel)
	}
	return &fileLogger{l: cl, c: f}, f.Close
}

func (l *fileLogger) Debug(format string, args ...interface{}) {
	l.l.Debug(fmt.Sprintf(format, args...))
}

func (l *fileLogger) Info(format string, args ...interface{}) {
	l.l.Info(fmt.Sprintf(format, args...))
}

func (l *fileLogger) Warn(format string, args ...interface{}) {
	l.l.Warn(fmt.Sprintf(format, args...))
}

func (l *fileLogger) Error(format string, args ...interface{}) {
	l.l.Error(fmt.Sprintf(format, args...))
}

// noopLogger implements Logger but discards all messages.
type noopLogger struct{}

// Noop returns a logger that discards all messages.
func Noop() Logger {
	return &noopLogger{}
}

func (l *noopLogger) Debug(format string, args ...interface{}) {}
func (l *noopLogger) Info(format string, args ...interface{})  {}
func (l *noopLogger) Warn(format string, args ...interface{})  {}
func (l *noopLogger) Error(format string, args ...interface{}) {}

// LogMessage represents a captured log message.
type LogMessage struct {
	Level   string
	Message string
}

// BufferLogger captures log messages for testing.
// Exported for use in test assertions.
type BufferLogger struct {
	Messages []LogMessage
}

// NewBufferLogger creates a logger that captures messages for inspection.
func NewBufferLogger() *BufferLogger {
	return &BufferLogger{
		Messages: make([]LogMessage, 0),
	}
}

func (l *BufferLogger) Debug(format string, args ...interface{}) {
	l.Messages = append(l.Messages, LogMessage{Level: "debug", Message: fmt.Sprintf(format, args...)})
}

func (l *BufferLogger) Info(format string, args ...interface{}) {
	l.Messages = append(l.Messages, LogMessage{Level: "info", Message: fmt.Sprintf(format, args...)})
}

func (l *BufferLogger) Warn(format string, args ...interface{}) {
	l.Messages = append(l.Messages, LogMessage{Level: "warn", Message: fmt.Sprintf(format, args...)})
}

func (l *BufferLogger) Error(format string, args ...interface{}) {
	l.Messages = append(l.Messages, LogMessage{Level: "error", Message: fmt.Sprintf(format, args...)})
}

// HasLevel returns true if any message was logged at the given level.
func (l *BufferLogger) HasLevel(level string) bool {
	for _, m := range l.Messages {
		if m.Level == level {
			return true
		}
	}
	return false
}

// Clear removes all captured messages.
func (l *BufferLogger) Clear() {
	l.Messages = l.Messages[:0]
}

// defaultLogger is the package-level default logger.
var defaultLogger = NewEnvLogger("")

// Default returns the default logger for the package.
func Default() Logger {
	return defaultLogger
}

// SetDefault sets the default logger for the package.
func SetDefault(l Logger) {
	defaultLogger = l
}
