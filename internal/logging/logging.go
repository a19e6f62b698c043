// Package logging builds the engine's structured logger. Every component
// takes a *zap.Logger rather than calling the stdlib log package directly,
// following the pattern used throughout semaj90-mau5law's services.
package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a zap.Logger appropriate for the given environment and level.
// Local environments get a human-readable console encoder; everything else
// gets JSON so the outcome log and operational logs can be shipped to the
// same pipeline.
func New(environment, level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}

	var cfg zap.Config
	if environment == "local" {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.DisableStacktrace = environment == "local"

	return cfg.Build()
}

// Must is New with a panic-on-error wrapper for main() call sites.
func Must(environment, level string) *zap.Logger {
	logger, err := New(environment, level)
	if err != nil {
		panic(err)
	}
	return logger
}
