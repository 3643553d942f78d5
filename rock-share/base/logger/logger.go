package logger

import (
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var sugar atomic.Pointer[zap.SugaredLogger]

// InitLogger replaces the package logger. Until it is called every message
// goes through zap's global logger, which is a no-op by default.
func InitLogger(level, name, logPath string, maxAge, rotationTime time.Duration, rotationSize uint32, dsn string) error {
	l, err := initZap(name, level, logPath, maxAge, rotationTime, rotationSize, dsn)
	if err != nil {
		return err
	}
	zap.ReplaceGlobals(l)
	if _, err := zap.RedirectStdLogAt(l, zapcore.ErrorLevel); err != nil {
		return err
	}
	sugar.Store(l.Sugar())
	return nil
}

// SetLogger installs an already built logger, tests use it with zaptest/observer.
func SetLogger(l *zap.Logger) {
	sugar.Store(l.WithOptions(zap.AddCallerSkip(1)).Sugar())
}

func get() *zap.SugaredLogger {
	if s := sugar.Load(); s != nil {
		return s
	}
	return zap.S()
}

func Sync() {
	_ = get().Sync()
}

func Debugf(template string, args ...interface{}) {
	get().Debugf(template, args...)
}

func Infof(template string, args ...interface{}) {
	get().Infof(template, args...)
}

func Warnf(template string, args ...interface{}) {
	get().Warnf(template, args...)
}

func Errorf(template string, args ...interface{}) {
	get().Errorf(template, args...)
}
