// Package logger builds the application's zap logger from config strings.
package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New creates a zap logger for the given level and format ("json" or
// "console"). The returned atomic level lets callers flip verbosity at
// runtime, e.g. for a debug toggle.
func New(levelStr, format string) (*zap.Logger, zap.AtomicLevel) {
	level := zapcore.InfoLevel
	switch levelStr {
	case "debug":
		level = zapcore.DebugLevel
	case "warn":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	}

	var cfg zap.Config
	if format == "json" {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
	}
	atomic := zap.NewAtomicLevelAt(level)
	cfg.Level = atomic
	logger, _ := cfg.Build()
	return logger, atomic
}
