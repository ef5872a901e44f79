// Package log holds the process-wide zap logger used by the visitbudget
// commands. Library packages take a *zap.SugaredLogger instead of importing it.
package log

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var log *zap.SugaredLogger

// Init builds the package logger. debug selects zap's development config
// (console output, debug level); otherwise JSON at info level is written to
// stderr so stdout stays free for reports.
func Init(debug bool) error {
	var cfg zap.Config
	if debug {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}
	cfg.OutputPaths = []string{"stderr"}

	zapLogger, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		return fmt.Errorf("can't initialize zap logger: %v", err)
	}

	log = zapLogger.Sugar()
	return nil
}

// Named returns a child logger for a component. Components log through it
// directly, so no caller skip applies.
func Named(name string) *zap.SugaredLogger {
	return sugared().Desugar().WithOptions(zap.AddCallerSkip(-1)).Sugar().Named(name)
}

func sugared() *zap.SugaredLogger {
	if log == nil {
		// Fallback logger if not initialized
		zapLogger, _ := zap.NewProduction(zap.AddCallerSkip(1))
		log = zapLogger.Sugar()
	}
	return log
}

// Sync flushes any buffered log entries
func Sync() {
	if log != nil {
		_ = log.Sync()
	}
}

func Infow(msg string, keysAndValues ...interface{}) {
	sugared().Infow(msg, keysAndValues...)
}

func Errorf(template string, args ...interface{}) {
	sugared().Errorf(template, args...)
}
