// Package output provides terminal output utilities.
package output

import (
	"os"

	"github.com/charmbracelet/log"
)

// logger is the package-level logger used by the helpers below.
var logger *log.Logger

func init() {
	logger = log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: false,
		ReportCaller:    false,
	})
}

// LogConfig controls logger construction.
type LogConfig struct {
	// Verbose enables debug level, timestamps, and caller reporting.
	Verbose bool

	// Timestamps overrides timestamp display. Nil means on.
	Timestamps *bool
}

// SetupLogging configures the logger based on verbosity.
func SetupLogging(cfg LogConfig) {
	level := log.InfoLevel
	if cfg.Verbose {
		level = log.DebugLevel
	}

	timestamps := true
	if cfg.Timestamps != nil {
		timestamps = *cfg.Timestamps
	}
	if cfg.Verbose {
		timestamps = true
	}

	logger = log.NewWithOptions(os.Stderr, log.Options{
		Level:           level,
		ReportTimestamp: timestamps,
		ReportCaller:    cfg.Verbose,
		TimeFormat:      "15:04:05",
	})
}

// Logger returns the configured logger.
func Logger() *log.Logger {
	return logger
}

// BoolPtr returns a pointer to b.
func BoolPtr(b bool) *bool {
	return &b
}

// Debug logs a debug message.
func Debug(msg string, keyvals ...interface{}) {
	logger.Debug(msg, keyvals...)
}

// Info logs an info message.
func Info(msg string, keyvals ...interface{}) {
	logger.Info(msg, keyvals...)
}

// Warn logs a warning message.
func Warn(msg string, keyvals ...interface{}) {
	logger.Warn(msg, keyvals...)
}

// Error logs an error message.
func Error(msg string, keyvals ...interface{}) {
	logger.Error(msg, keyvals...)
}
