// Package mlog mirrors the common/mlog convention: a small Logger
// interface the engine depends on, decoupled from any particular
// logging library, plus a no-op implementation for tests and library
// embedding where the host hasn't supplied one.
package mlog

// Logger is the logging interface every eventbatch component accepts.
type Logger interface {
	Info(args ...any)
	Infof(format string, args ...any)

	Error(args ...any)
	Errorf(format string, args ...any)

	Warn(args ...any)
	Warnf(format string, args ...any)

	Debug(args ...any)
	Debugf(format string, args ...any)

	// WithFields returns a new Logger with the given key/value pairs
	// attached to every subsequent entry.
	WithFields(fields ...any) Logger
}

// NoneLogger discards everything. It is the default when a host embeds
// the engine without supplying a Logger.
type NoneLogger struct{}

func (l *NoneLogger) Info(args ...any)                  {}
func (l *NoneLogger) Infof(format string, args ...any)  {}
func (l *NoneLogger) Error(args ...any)                 {}
func (l *NoneLogger) Errorf(format string, args ...any) {}
func (l *NoneLogger) Warn(args ...any)                  {}
func (l *NoneLogger) Warnf(format string, args ...any)  {}
func (l *NoneLogger) Debug(args ...any)                 {}
func (l *NoneLogger) Debugf(format string, args ...any) {}

//nolint:ireturn
func (l *NoneLogger) WithFields(fields ...any) Logger { return l }
