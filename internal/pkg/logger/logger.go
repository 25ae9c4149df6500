// Package logger owns the process-wide zap logger. Init is called once at
// startup; packages that need a logger receive it through their constructors,
// the globals here exist for infrastructure code that runs before wiring.
package logger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Log is the global logger. It is a nop until Init runs so early code paths
// can log without a nil check.
var Log = zap.NewNop()

// Config holds logger configuration
type Config struct {
	Level  string
	Format string
}

// Init builds the global logger. Format "console" gives colored dev output,
// anything else gives production JSON.
func Init(cfg Config) error {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}

	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(level)
	zcfg.OutputPaths = []string{"stdout"}
	zcfg.EncoderConfig.TimeKey = "timestamp"
	zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	if cfg.Format == "console" {
		zcfg.Encoding = "console"
		zcfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	log, err := zcfg.Build()
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}

	Log = log
	return nil
}

// Sync flushes any buffered log entries
func Sync() error {
	return Log.Sync()
}

// Info logs at info level on the global logger
func Info(msg string, fields ...zap.Field) {
	Log.Info(msg, fields...)
}

// Warn logs at warn level on the global logger
func Warn(msg string, fields ...zap.Field) {
	Log.Warn(msg, fields...)
}

// Error logs at error level on the global logger
func Error(msg string, fields ...zap.Field) {
	Log.Error(msg, fields...)
}
