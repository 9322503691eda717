package mlog

import "go.uber.org/zap"

// ZapLogger adapts *zap.SugaredLogger to the Logger interface, the way
// an mzap-style package adapts otelzap. Production wiring
// (cmd/eventcored) uses this; tests use NoneLogger or a fake.
type ZapLogger struct {
	sugar *zap.SugaredLogger
}

// NewZapLogger builds a production logger at the given level
// ("debug", "info", "warn", "error"). Falls back to info on an
// unrecognized level.
func NewZapLogger(level string) (*ZapLogger, error) {
	cfg := zap.NewProductionConfig()

	if lvl, err := zap.ParseAtomicLevel(level); err == nil {
		cfg.Level = lvl
	}

	logger, err := cfg.Build()
	if err != nil {
		return nil, err
	}

	return &ZapLogger{sugar: logger.Sugar()}, nil
}

func (l *ZapLogger) Info(args ...any)                  { l.sugar.Info(args...) }
func (l *ZapLogger) Infof(format string, args ...any)  { l.sugar.Infof(format, args...) }
func (l *ZapLogger) Error(args ...any)                 { l.sugar.Error(args...) }
func (l *ZapLogger) Errorf(format string, args ...any) { l.sugar.Errorf(format, args...) }
func (l *ZapLogger) Warn(args ...any)                  { l.sugar.Warn(args...) }
func (l *ZapLogger) Warnf(format string, args ...any)  { l.sugar.Warnf(format, args...) }
func (l *ZapLogger) Debug(args ...any)                 { l.sugar.Debug(args...) }
func (l *ZapLogger) Debugf(format string, args ...any) { l.sugar.Debugf(format, args...) }

//nolint:ireturn
func (l *ZapLogger) WithFields(fields ...any) Logger {
	return &ZapLogger{sugar: l.sugar.With(fields...)}
}

// Sync flushes any buffered log entries. Call on shutdown.
func (l *ZapLogger) Sync() error { return l.sugar.Sync() }
