package logging

import (
	"bytes"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/adrg/xdg"
	"github.com/charmbracelet/log"
)

const prefix = "Disc"

// AppLogger is the structured logger shared by every disc package. Debug
// entries are dropped unless the logger was built at debug level.
type AppLogger struct {
	logger *log.Logger
	debug  bool
}

var (
	defaultLogger *AppLogger
	mu            sync.Mutex
)

// GetDefault returns the default logger instance, creating it on first use.
func GetDefault() *AppLogger {
	mu.Lock()
	defer mu.Unlock()
	if defaultLogger == nil {
		defaultLogger = NewAppLogger()
	}
	return defaultLogger
}

// SetDefault replaces the logger used by the package-level helpers.
func SetDefault(l *AppLogger) {
	mu.Lock()
	defer mu.Unlock()
	defaultLogger = l
}

// Package-level helpers, routed through the default logger.
func Info(msg string, keyvals ...interface{}) {
	GetDefault().Info(msg, keyvals...)
}

func Warn(msg string, keyvals ...interface{}) {
	GetDefault().Warn(msg, keyvals...)
}

func Error(msg string, keyvals ...interface{}) {
	GetDefault().Error(msg, keyvals...)
}

func Debug(msg string, keyvals ...interface{}) {
	GetDefault().Debug(msg, keyvals...)
}

func LogPerformance(operation string, start time.Time) {
	GetDefault().LogPerformance(operation, start)
}

// NewAppLogger builds the logger used before configuration is loaded.
//
// With DEBUG set, everything down to debug goes to disc.log in the XDG state
// directory, truncated on each run. Otherwise warnings and errors go to
// stderr.
func NewAppLogger() *AppLogger {
	if os.Getenv("DEBUG") == "" {
		return NewLeveledLogger(os.Stderr, "warn")
	}

	logPath, err := xdg.StateFile("disc/disc.log")
	if err != nil {
		l := NewLeveledLogger(os.Stderr, "debug")
		l.Warn("Cannot create debug log file, logging to stderr", "error", err)
		return l
	}
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		l := NewLeveledLogger(os.Stderr, "debug")
		l.Warn("Cannot open debug log file, logging to stderr", "path", logPath, "error", err)
		return l
	}

	logger := log.NewWithOptions(logFile, log.Options{
		ReportCaller:    true,
		ReportTimestamp: true,
		TimeFormat:      time.Kitchen,
		Prefix:          prefix,
	})
	logger.SetLevel(log.DebugLevel)
	logger.Info("Debug logging enabled", "log_file", logPath)

	return &AppLogger{logger: logger, debug: true}
}

// NewLeveledLogger builds a logger writing to w at the named level
// ("debug", "info", "warn", "error"). Unknown levels fall back to warn.
func NewLeveledLogger(w io.Writer, level string) *AppLogger {
	lvl, err := log.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		lvl = log.WarnLevel
	}

	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Prefix:          prefix,
	})
	logger.SetLevel(lvl)

	return &AppLogger{logger: logger, debug: lvl <= log.DebugLevel}
}

// With returns a logger that adds keyvals to every entry.
func (al *AppLogger) With(keyvals ...interface{}) *AppLogger {
	return &AppLogger{logger: al.logger.With(keyvals...), debug: al.debug}
}

func (al *AppLogger) Info(msg string, keyvals ...interface{}) {
	al.logger.Info(msg, keyvals...)
}

func (al *AppLogger) Warn(msg string, keyvals ...interface{}) {
	al.logger.Warn(msg, keyvals...)
}

func (al *AppLogger) Error(msg string, keyvals ...interface{}) {
	al.logger.Error(msg, keyvals...)
}

func (al *AppLogger) Debug(msg string, keyvals ...interface{}) {
	if al.debug {
		al.logger.Debug(msg, keyvals...)
	}
}

// LogPerformance records how long operation took since start, at debug level.
func (al *AppLogger) LogPerformance(operation string, start time.Time) {
	if al.debug {
		al.logger.Debug("Performance", "operation", operation, "duration", time.Since(start))
	}
}

// NewTestLogger returns a debug-level logger without timestamps writing to
// the returned buffer.
func NewTestLogger() (*AppLogger, *bytes.Buffer) {
	var buf bytes.Buffer

	logger := log.NewWithOptions(&buf, log.Options{Prefix: "Test"})
	logger.SetLevel(log.DebugLevel)

	return &AppLogger{logger: logger, debug: true}, &buf
}
