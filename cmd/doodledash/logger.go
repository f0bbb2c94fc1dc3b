package main

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"doodledash/internal/config"
)

// newLogger builds the process logger. Logs go to stderr so dashboard
// output on stdout stays clean.
func newLogger(s config.LogSettings) (*zap.Logger, error) {
	level, err := zap.ParseAtomicLevel(s.Level)
	if err != nil {
		return nil, err
	}

	logConfig := zap.NewProductionConfig()
	logConfig.Level = level
	logConfig.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logConfig.OutputPaths = []string{"stderr"}
	if s.Format == "console" {
		logConfig.Encoding = "console"
		logConfig.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		logConfig.Sampling = nil
	}

	return logConfig.Build()
}
