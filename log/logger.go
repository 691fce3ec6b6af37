package log

import "go.uber.org/zap"

// Logger is the minimal logging contract used across the api. Key/value
// pairs follow the zap sugared convention.
type Logger interface {
	Debug(msg string, keysAndValues ...interface{})
	Info(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	Fatal(msg string, keysAndValues ...interface{})
}

type ZapLogger struct {
	inner *zap.SugaredLogger
}

func NewZapLogger(log *zap.Logger) ZapLogger {
	return ZapLogger{inner: log.Sugar()}
}

// NewNopLogger returns a logger that discards everything, used in tests.
func NewNopLogger() ZapLogger {
	return NewZapLogger(zap.NewNop())
}

func (l ZapLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.inner.Debugw(msg, keysAndValues...)
}

func (l ZapLogger) Info(msg string, keysAndValues ...interface{}) {
	l.inner.Infow(msg, keysAndValues...)
}

func (l ZapLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.inner.Warnw(msg, keysAndValues...)
}

func (l ZapLogger) Error(msg string, keysAndValues ...interface{}) {
	l.inner.Errorw(msg, keysAndValues...)
}

func (l ZapLogger) Fatal(msg string, keysAndValues ...interface{}) {
	l.inner.Fatalw(msg, keysAndValues...)
}
