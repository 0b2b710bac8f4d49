package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ZapLogger is the logging interface handed to every component.
type ZapLogger interface {
	Debug(msg string, fields ...zap.Field)
	Info(msg string, fields ...zap.Field)
	Warn(msg string, fields ...zap.Field)
	Error(msg string, fields ...zap.Field)
	Fatal(msg string, fields ...zap.Field)
	Sync() error
}

type ZapLoggerConfig struct {
	IsDevelopment     bool
	Encoding          string // "console" or "json"
	Level             string // debug, info, warn, error
	DisableCaller     bool
	DisableStacktrace bool
}

type zapLogger struct {
	logger *zap.Logger
}

func NewZapLogger(cfg *ZapLoggerConfig) ZapLogger {
	level := zapcore.InfoLevel
	if parsed, err := zapcore.ParseLevel(cfg.Level); err == nil {
		level = parsed
	}

	var zc zap.Config
	if cfg.IsDevelopment {
		zc = zap.NewDevelopmentConfig()
	} else {
		zc = zap.NewProductionConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	if cfg.Encoding != "" {
		zc.Encoding = cfg.Encoding
	}
	zc.DisableCaller = cfg.DisableCaller
	zc.DisableStacktrace = cfg.DisableStacktrace

	l, err := zc.Build(zap.AddCallerSkip(1))
	if err != nil {
		l = zap.NewNop()
	}
	return &zapLogger{logger: l}
}

// NewNop returns a logger that discards everything. Intended for tests.
func NewNop() ZapLogger {
	return &zapLogger{logger: zap.NewNop()}
}

func (z *zapLogger) Debug(msg string, fields ...zap.Field) { z.logger.Debug(msg, fields...) }
func (z *zapLogger) Info(msg string, fields ...zap.Field)  { z.logger.Info(msg, fields...) }
func (z *zapLogger) Warn(msg string, fields ...zap.Field)  { z.logger.Warn(msg, fields...) }
func (z *zapLogger) Error(msg string, fields ...zap.Field) { z.logger.Error(msg, fields...) }
func (z *zapLogger) Fatal(msg string, fields ...zap.Field) { z.logger.Fatal(msg, fields...) }
func (z *zapLogger) Sync() error                           { return z.logger.Sync() }
