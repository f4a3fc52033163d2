// Package logging provides the structured logger used across the
// directory server, grounded on the pack's logrus-based logging wrapper.
package logging

import "github.com/sirupsen/logrus"

// Logger is the logging interface used throughout the server.
type Logger interface {
	Debug(args ...interface{})
	Debugf(format string, args ...interface{})
	Info(args ...interface{})
	Infof(format string, args ...interface{})
	Warn(args ...interface{})
	Warnf(format string, args ...interface{})
	Error(args ...interface{})
	Errorf(format string, args ...interface{})
	Fatal(args ...interface{})
	Fatalf(format string, args ...interface{})

	// WithField returns a Logger that annotates every subsequent
	// entry with key=value, used to tag log lines with a connection
	// or message ID.
	WithField(key string, value interface{}) Logger
}

// DefaultLogger wraps a logrus.Entry.
type DefaultLogger struct {
	entry *logrus.Entry
}

// NewDefaultLogger creates a logger with the server's standard
// configuration: full timestamps, info level.
func NewDefaultLogger() *DefaultLogger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
	logger.SetLevel(logrus.InfoLevel)

	return &DefaultLogger{entry: logrus.NewEntry(logger)}
}

// NewLoggerWithLevel creates a logger at the given level, falling back to
// info on an unrecognized level name.
func NewLoggerWithLevel(level string) *DefaultLogger {
	l := NewDefaultLogger()
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	l.entry.Logger.SetLevel(lvl)
	return l
}

func (l *DefaultLogger) Debug(args ...interface{})                 { l.entry.Debug(args...) }
func (l *DefaultLogger) Debugf(format string, args ...interface{}) { l.entry.Debugf(format, args...) }
func (l *DefaultLogger) Info(args ...interface{})                  { l.entry.Info(args...) }
func (l *DefaultLogger) Infof(format string, args ...interface{})  { l.entry.Infof(format, args...) }
func (l *DefaultLogger) Warn(args ...interface{})                  { l.entry.Warn(args...) }
func (l *DefaultLogger) Warnf(format string, args ...interface{})  { l.entry.Warnf(format, args...) }
func (l *DefaultLogger) Error(args ...interface{})                 { l.entry.Error(args...) }
func (l *DefaultLogger) Errorf(format string, args ...interface{}) { l.entry.Errorf(format, args...) }
func (l *DefaultLogger) Fatal(args ...interface{})                 { l.entry.Fatal(args...) }
func (l *DefaultLogger) Fatalf(format string, args ...interface{}) { l.entry.Fatalf(format, args...) }

func (l *DefaultLogger) WithField(key string, value interface{}) Logger {
	return &DefaultLogger{entry: l.entry.WithField(key, value)}
}

// SetLevel changes the logger's level, ignoring an unrecognized name.
func (l *DefaultLogger) SetLevel(level string) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return
	}
	l.entry.Logger.SetLevel(lvl)
}
