// Package log provides the node's structured logger, a thin wrapper
// around zap.
package log

import (
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the logging surface every component is handed at
// construction time. Nothing in the node reaches for a package-level
// global logger.
type Logger interface {
	Debug(msg string, keyvals ...interface{})
	Info(msg string, keyvals ...interface{})
	Warn(msg string, keyvals ...interface{})
	Error(msg string, keyvals ...interface{})
	Fatal(msg string, keyvals ...interface{})
	With(args ...interface{}) Logger
	Named(name string) Logger
}

type log struct {
	*zap.SugaredLogger
}

func (l *log) Debug(msg string, keyvals ...interface{}) { l.Debugw(msg, keyvals...) }
func (l *log) Info(msg string, keyvals ...interface{})  { l.Infow(msg, keyvals...) }
func (l *log) Warn(msg string, keyvals ...interface{})  { l.Warnw(msg, keyvals...) }
func (l *log) Error(msg string, keyvals ...interface{}) { l.Errorw(msg, keyvals...) }
func (l *log) Fatal(msg string, keyvals ...interface{}) { l.Fatalw(msg, keyvals...) }

func (l *log) With(args ...interface{}) Logger {
	return &log{l.SugaredLogger.With(args...)}
}

func (l *log) Named(name string) Logger {
	return &log{l.SugaredLogger.Named(name)}
}

// Level mirrors zapcore's levels so callers don't need to import zap.
type Level = zapcore.Level

const (
	DebugLevel = zapcore.DebugLevel
	InfoLevel  = zapcore.InfoLevel
	WarnLevel  = zapcore.WarnLevel
	ErrorLevel = zapcore.ErrorLevel
)

var devEnvOnce sync.Once
var devEnv bool

func isDevEnv() bool {
	devEnvOnce.Do(func() {
		devEnv = os.Getenv("RANDCAST_NODE_ENV") == "dev"
	})
	return devEnv
}

// New builds a logger at the given level, JSON-encoded unless
// RANDCAST_NODE_ENV=dev, in which case a human-readable console
// encoder is used instead.
func New(level Level) Logger {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "time"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var encoder zapcore.Encoder
	if isDevEnv() {
		encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encCfg)
	} else {
		encoder = zapcore.NewJSONEncoder(encCfg)
	}

	core := zapcore.NewCore(encoder, zapcore.Lock(os.Stdout), level)
	zl := zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1))
	return &log{zl.Sugar()}
}

// DefaultLogger returns an info-level logger, used by tests and by
// ctxnode.New when no logger is supplied.
func DefaultLogger() Logger {
	return New(InfoLevel)
}
