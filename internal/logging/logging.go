// Package logging builds the structured zap loggers used across the quoter.
package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/coachpo/quoter/internal/config"
)

var defaultLogger = zap.NewNop()

// New builds a logger from configuration and tags it with the service name.
func New(cfg config.LoggingConfig, service string) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("parse log level: %w", err)
	}

	var zcfg zap.Config
	switch cfg.Format {
	case "console":
		zcfg = zap.NewDevelopmentConfig()
	default:
		zcfg = zap.NewProductionConfig()
		zcfg.EncoderConfig.TimeKey = "ts"
		zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)
	zcfg.OutputPaths = []string{"stderr"}
	zcfg.ErrorOutputPaths = []string{"stderr"}

	logger, err := zcfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return logger.With(zap.String("service", service)), nil
}

// SetLogger overrides the process-wide logger.
func SetLogger(logger *zap.Logger) {
	if logger == nil {
		defaultLogger = zap.NewNop()
		return
	}
	defaultLogger = logger
}

// L returns the process-wide logger. It discards everything until SetLogger is called.
func L() *zap.Logger {
	return defaultLogger
}
