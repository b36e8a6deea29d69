package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds the process logger. JSON output is meant for deployed
// environments; the console encoder is friendlier during development.
// The returned closer flushes buffered entries and is safe to defer.
func New(level string, json bool) (*zap.Logger, func()) {
	var lvl zapcore.Level
	if err := lvl.Set(level); err != nil {
		lvl = zapcore.InfoLevel
	}

	var cfg zap.Config
	if json {
		cfg = zap.NewProductionConfig()
		cfg.EncoderConfig.TimeKey = "ts"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)

	l, err := cfg.Build(zap.AddCaller())
	if err != nil {
		l = zap.NewNop()
	}

	return l, func() { _ = l.Sync() }
}
