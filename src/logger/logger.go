package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"stream-observer/src/config"
)

// -----------------------------------------------------------------------------

// Level defines logging verbosity, from most to least chatty
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarning
	LevelError
	LevelCritical
)

// -----------------------------------------------------------------------------

// ParseLevel maps a config string to a Level. Unknown values fall back to INFO.
func ParseLevel(s string) Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return LevelDebug
	case "INFO":
		return LevelInfo
	case "WARNING", "WARN":
		return LevelWarning
	case "ERROR":
		return LevelError
	case "CRITICAL":
		return LevelCritical
	default:
		return LevelInfo
	}
}

// -----------------------------------------------------------------------------

// Logger is a leveled printf-style logger shared by all components.
// One instance is created in main and handed down through constructors.
type Logger struct {
	name  string
	level Level
	out   *log.Logger
}

// -----------------------------------------------------------------------------

// NewLogger creates a logger named after the component, with verbosity taken
// from the application config
func NewLogger(config *config.Config, name string) *Logger {
	level := LevelInfo
	if config != nil {
		level = ParseLevel(config.LogLevel)
	}
	return &Logger{
		name:  name,
		level: level,
		out:   log.New(os.Stdout, "", log.LstdFlags|log.LUTC),
	}
}

// -----------------------------------------------------------------------------

// SetOutput redirects log output; used by tests to keep output quiet
func (l *Logger) SetOutput(w io.Writer) {
	l.out.SetOutput(w)
}

// -----------------------------------------------------------------------------

// SetLevel changes verbosity at runtime
func (l *Logger) SetLevel(level Level) {
	l.level = level
}

// -----------------------------------------------------------------------------

func (l *Logger) logf(level Level, tag string, format string, args ...interface{}) {
	if level < l.level {
		return
	}
	l.out.Printf("[%s] [%s] %s", tag, l.name, fmt.Sprintf(format, args...))
}

// -----------------------------------------------------------------------------

// Debug logs fine-grained diagnostics
func (l *Logger) Debug(format string, args ...interface{}) {
	l.logf(LevelDebug, "DEBUG", format, args...)
}

// -----------------------------------------------------------------------------

// Info logs normal operational events
func (l *Logger) Info(format string, args ...interface{}) {
	l.logf(LevelInfo, "INFO", format, args...)
}

// -----------------------------------------------------------------------------

// Warning logs recoverable anomalies
func (l *Logger) Warning(format string, args ...interface{}) {
	l.logf(LevelWarning, "WARNING", format, args...)
}

// -----------------------------------------------------------------------------

// Error logs failures that abort the current operation
func (l *Logger) Error(format string, args ...interface{}) {
	l.logf(LevelError, "ERROR", format, args...)
}

// -----------------------------------------------------------------------------

// Critical logs failures the process cannot recover from. The caller decides
// whether to exit.
func (l *Logger) Critical(format string, args ...interface{}) {
	l.logf(LevelCritical, "CRITICAL", format, args...)
}
