// Package debug provides logging, buffer analysis and profiling for plugin
// hosts and kernels. Nothing in this package may be called from a plugin's
// Run path.
package debug

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

// LogLevel represents the severity of a log message.
type LogLevel int

const (
	// LogLevelDebug is for detailed debugging information.
	LogLevelDebug LogLevel = iota
	// LogLevelInfo is for general informational messages.
	LogLevelInfo
	// LogLevelWarn is for warning messages.
	LogLevelWarn
	// LogLevelError is for error messages.
	LogLevelError
	// LogLevelOff disables all logging.
	LogLevelOff
)

// String returns the string representation of the log level.
func (l LogLevel) String() string {
	switch l {
	case LogLevelDebug:
		return "DEBUG"
	case LogLevelInfo:
		return "INFO"
	case LogLevelWarn:
		return "WARN"
	case LogLevelError:
		return "ERROR"
	case LogLevelOff:
		return "OFF"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel converts a level name (case-insensitive) to a LogLevel.
func ParseLevel(name string) (LogLevel, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return LogLevelDebug, nil
	case "info", "":
		return LogLevelInfo, nil
	case "warn", "warning":
		return LogLevelWarn, nil
	case "error":
		return LogLevelError, nil
	case "off", "none":
		return LogLevelOff, nil
	}
	return LogLevelInfo, fmt.Errorf("unknown log level %q", name)
}

func (l LogLevel) logrus() logrus.Level {
	switch l {
	case LogLevelDebug:
		return logrus.DebugLevel
	case LogLevelWarn:
		return logrus.WarnLevel
	case LogLevelError, LogLevelOff:
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}

// Logger wraps a logrus logger with a component prefix and an on/off switch.
type Logger struct {
	mu      sync.Mutex
	base    *logrus.Logger
	entry   *logrus.Entry
	output  io.Writer
	level   LogLevel
	enabled bool
}

var defaultLogger = New(os.Stderr, "")

// New creates a logger writing text records to output. A non-empty prefix
// is attached to every record as the "component" field.
func New(output io.Writer, prefix string) *Logger {
	base := logrus.New()
	base.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05.000",
	})

	l := &Logger{
		base:    base,
		output:  output,
		level:   LogLevelInfo,
		enabled: true,
	}
	l.entry = logrus.NewEntry(base)
	if prefix != "" {
		l.entry = l.entry.WithField("component", prefix)
	}
	l.apply()
	return l
}

// NewFileLogger creates a logger that appends JSON records to a file, for
// hosts that do not show the plugin's stderr.
func NewFileLogger(filename, prefix string) (*Logger, error) {
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	file, err := os.OpenFile(filename, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	l := New(file, prefix)
	l.base.SetFormatter(&logrus.JSONFormatter{})
	return l, nil
}

// apply pushes output and level into logrus. Caller holds mu or owns l.
func (l *Logger) apply() {
	if !l.enabled || l.level == LogLevelOff {
		l.base.SetOutput(io.Discard)
	} else {
		l.base.SetOutput(l.output)
	}
	l.base.SetLevel(l.level.logrus())
}

// SetOutput sets the output destination for the logger.
func (l *Logger) SetOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.output = w
	l.apply()
}

// SetLevel sets the minimum log level.
func (l *Logger) SetLevel(level LogLevel) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
	l.apply()
}

// Level returns the minimum log level.
func (l *Logger) Level() LogLevel {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.level
}

// SetEnabled enables or disables the logger.
func (l *Logger) SetEnabled(enabled bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.enabled = enabled
	l.apply()
}

// IsEnabled returns whether the logger is enabled.
func (l *Logger) IsEnabled() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.enabled && l.level != LogLevelOff
}

// SetJSON switches between JSON and text records.
func (l *Logger) SetJSON(json bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if json {
		l.base.SetFormatter(&logrus.JSONFormatter{})
		return
	}
	l.base.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
}

// Entry returns the logger's base entry for structured logging.
func (l *Logger) Entry() *logrus.Entry {
	return l.entry
}

// WithField returns an entry carrying one extra field.
func (l *Logger) WithField(key string, value any) *logrus.Entry {
	return l.entry.WithField(key, value)
}

// WithFields returns an entry carrying extra fields.
func (l *Logger) WithFields(fields logrus.Fields) *logrus.Entry {
	return l.entry.WithFields(fields)
}

// Debug logs a debug message.
func (l *Logger) Debug(format string, args ...any) {
	l.entry.Debugf(format, args...)
}

// Info logs an informational message.
func (l *Logger) Info(format string, args ...any) {
	l.entry.Infof(format, args...)
}

// Warn logs a warning message.
func (l *Logger) Warn(format string, args ...any) {
	l.entry.Warnf(format, args...)
}

// Error logs an error message.
func (l *Logger) Error(format string, args ...any) {
	l.entry.Errorf(format, args...)
}

// Global logger functions

// Default returns the default logger instance.
func Default() *Logger {
	return defaultLogger
}

// SetOutput sets the output destination for the default logger.
func SetOutput(w io.Writer) {
	defaultLogger.SetOutput(w)
}

// SetLevel sets the minimum log level for the default logger.
func SetLevel(level LogLevel) {
	defaultLogger.SetLevel(level)
}

// SetEnabled enables or disables the default logger.
func SetEnabled(enabled bool) {
	defaultLogger.SetEnabled(enabled)
}

// WithField returns an entry of the default logger carrying one field.
func WithField(key string, value any) *logrus.Entry {
	return defaultLogger.WithField(key, value)
}

// WithFields returns an entry of the default logger carrying extra fields.
func WithFields(fields logrus.Fields) *logrus.Entry {
	return defaultLogger.WithFields(fields)
}

// Debug logs a debug message using the default logger.
func Debug(format string, args ...any) {
	defaultLogger.Debug(format, args...)
}

// Info logs an informational message using the default logger.
func Info(format string, args ...any) {
	defaultLogger.Info(format, args...)
}

// Warn logs a warning message using the default logger.
func Warn(format string, args ...any) {
	defaultLogger.Warn(format, args...)
}

// Error logs an error message using the default logger.
func Error(format string, args ...any) {
	defaultLogger.Error(format, args...)
}
