// Package logger builds the zap logger shared by both binaries.
package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New returns a logger built from Config.
func New(levelStr, format string) (*zap.Logger, error) {
	return Config(levelStr, format).Build()
}

// Config returns the zap config for levelStr ("debug", "info", "warn",
// "error"; anything else means info). format "json" selects the production
// encoder, anything else the human-readable development one. The development
// config carries no stack traces: a failed CLI command already prints its
// error inline.
func Config(levelStr, format string) zap.Config {
	var cfg zap.Config
	if format == "json" {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.DisableStacktrace = true
	}
	cfg.Level = zap.NewAtomicLevelAt(ParseLevel(levelStr))
	return cfg
}

// ParseLevel maps a config string to a zap level.
func ParseLevel(levelStr string) zapcore.Level {
	switch levelStr {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	}
	return zapcore.InfoLevel
}
