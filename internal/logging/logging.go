// Package logging wraps logrus with the project's conventions: JSON lines
// to stdout and (optionally) a log file, with the call site attached to
// entries logged through Debugf/Infof/Warnf/Errorf (WithFields and
// WithField entries carry no call site). This fills the gap go-tartuffe's own setupLogging leaves
// open (it wires output but never applies the configured level).
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"

	"github.com/sirupsen/logrus"
)

// Log is the package-wide logger, configured by Init.
var Log = logrus.New()

// Fields is an alias for logrus.Fields, so callers don't need to import
// logrus directly just to build structured log fields.
type Fields = logrus.Fields

// Init configures Log's level, formatter, and output according to level
// ("debug", "info", "warn", "error") and an optional logFilePath — pass ""
// to log to stdout only.
func Init(level, logFilePath string) error {
	Log.SetFormatter(&logrus.JSONFormatter{TimestampFormat: "2006-01-02T15:04:05.000Z07:00"})

	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		parsed = logrus.InfoLevel
	}
	Log.SetLevel(parsed)

	out := io.Writer(os.Stdout)
	if logFilePath != "" {
		if err := os.MkdirAll(filepath.Dir(logFilePath), 0o755); err != nil {
			return fmt.Errorf("logging: creating log directory: %w", err)
		}
		f, err := os.OpenFile(logFilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("logging: opening log file: %w", err)
		}
		out = io.MultiWriter(os.Stdout, f)
	}
	Log.SetOutput(out)
	return nil
}

func withCaller() *logrus.Entry {
	entry := Log.WithFields(logrus.Fields{})
	if _, file, line, ok := runtime.Caller(2); ok {
		entry = entry.WithFields(logrus.Fields{"file": filepath.Base(file), "line": line})
	}
	return entry
}

func WithFields(f Fields) *logrus.Entry { return Log.WithFields(f) }
func WithField(key string, value interface{}) *logrus.Entry { return Log.WithField(key, value) }

func Debugf(format string, args ...interface{}) { withCaller().Debugf(format, args...) }
func Infof(format string, args ...interface{})  { withCaller().Infof(format, args...) }
func Warnf(format string, args ...interface{})  { withCaller().Warnf(format, args...) }
func Errorf(format string, args ...interface{}) { withCaller().Errorf(format, args...) }
