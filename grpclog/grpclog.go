// Package grpclog defines a swappable logging interface used
// throughout h2rpc, backed by zap by default.
package grpclog

import (
	"go.uber.org/zap"
)

// Logger is the logging interface h2rpc depends on internally.
type Logger interface {
	Infof(format string, args ...interface{})
	Warningf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

type zapLogger struct {
	s *zap.SugaredLogger
}

func (l *zapLogger) Infof(format string, args ...interface{})    { l.s.Infof(format, args...) }
func (l *zapLogger) Warningf(format string, args ...interface{}) { l.s.Warnf(format, args...) }
func (l *zapLogger) Errorf(format string, args ...interface{})   { l.s.Errorf(format, args...) }

var logger Logger = newDefaultLogger()

func newDefaultLogger() Logger {
	z, err := zap.NewProduction()
	if err != nil {
		z = zap.NewNop()
	}
	return &zapLogger{s: z.Sugar()}
}

// SetLogger replaces the package-level logger. Intended to be called
// once during process start-up.
func SetLogger(l Logger) {
	if l != nil {
		logger = l
	}
}

// Infof logs at info level through the current logger.
func Infof(format string, args ...interface{}) { logger.Infof(format, args...) }

// Warningf logs at warning level through the current logger.
func Warningf(format string, args ...interface{}) { logger.Warningf(format, args...) }

// Errorf logs at error level through the current logger.
func Errorf(format string, args ...interface{}) { logger.Errorf(format, args...) }
