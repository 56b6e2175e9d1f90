// Package logging provides structured logging over bolt. The server
// speaks MCP over stdout in stdio mode, so all logging defaults to
// stderr.
package logging

import (
	"os"
	"sync"

	"github.com/felixgeelhaar/bolt/v3"
)

var (
	defaultLogger *bolt.Logger
	once          sync.Once
)

// Config configures the logger.
type Config struct {
	// Level is the minimum log level (trace, debug, info, warn, error).
	Level string

	// Format selects json or console output.
	Format string

	// Output is the destination. Defaults to stderr.
	Output *os.File
}

// DefaultConfig returns json logging at info level on stderr.
func DefaultConfig() Config {
	return Config{
		Level:  "info",
		Format: "json",
		Output: os.Stderr,
	}
}

func parseLevel(s string) bolt.Level {
	switch s {
	case "trace":
		return bolt.TRACE
	case "debug":
		return bolt.DEBUG
	case "info":
		return bolt.INFO
	case "warn", "warning":
		return bolt.WARN
	case "error":
		return bolt.ERROR
	default:
		return bolt.INFO
	}
}

// Init initializes the default logger. Subsequent calls are no-ops.
func Init(config Config) {
	once.Do(func() {
		output := config.Output
		if output == nil {
			output = os.Stderr
		}

		var handler bolt.Handler
		if config.Format == "console" {
			handler = bolt.NewConsoleHandler(output)
		} else {
			handler = bolt.NewJSONHandler(output)
		}

		defaultLogger = bolt.New(handler).SetLevel(parseLevel(config.Level))
	})
}

// Get returns the default logger, initializing it if needed.
func Get() *bolt.Logger {
	if defaultLogger == nil {
		Init(DefaultConfig())
	}
	return defaultLogger
}

// SetLevel changes the default logger's level.
func SetLevel(level string) {
	Get().SetLevel(parseLevel(level))
}

// LogEvent wraps a bolt.Event so Fields can be chained onto it.
type LogEvent struct {
	event *bolt.Event
}

// NewEvent wraps a bolt.Event for field application.
func NewEvent(e *bolt.Event) *LogEvent {
	return &LogEvent{event: e}
}

// Add applies a field and returns the wrapper for chaining.
func (l *LogEvent) Add(f Field) *LogEvent {
	l.event = f(l.event)
	return l
}

// Msg sends the event with a message.
func (l *LogEvent) Msg(msg string) {
	l.event.Msg(msg)
}

// Send sends the event without a message.
func (l *LogEvent) Send() {
	l.event.Send()
}

// Debug starts a debug-level event on the default logger.
func Debug() *LogEvent {
	return &LogEvent{event: Get().Debug()}
}

// Info starts an info-level event on the default logger.
func Info() *LogEvent {
	return &LogEvent{event: Get().Info()}
}

// Warn starts a warn-level event on the default logger.
func Warn() *LogEvent {
	return &LogEvent{event: Get().Warn()}
}

// Error starts an error-level event on the default logger.
func Error() *LogEvent {
	return &LogEvent{event: Get().Error()}
}
