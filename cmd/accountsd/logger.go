package main

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ZapLogger adapts a zap sugared logger to the accounts.Logger interface.
type ZapLogger struct {
	sugar *zap.SugaredLogger
}

// NewZapLogger creates the process logger. JSON output in production,
// console encoding when ACCOUNTS_ENV=development.
func NewZapLogger() (*ZapLogger, error) {
	devMode := os.Getenv("ACCOUNTS_ENV") == "development"

	var encoder zapcore.Encoder
	if devMode {
		encoderCfg := zap.NewDevelopmentEncoderConfig()
		encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
		encoder = zapcore.NewConsoleEncoder(encoderCfg)
	} else {
		encoder = zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	}

	level := zap.InfoLevel
	if devMode {
		level = zap.DebugLevel
	}

	core := zapcore.NewCore(encoder, zapcore.AddSync(os.Stdout), level)
	logger := zap.New(core, zap.AddStacktrace(zap.ErrorLevel))

	return &ZapLogger{sugar: logger.Sugar()}, nil
}

// Named returns a child logger scoped to a subsystem.
func (l *ZapLogger) Named(name string) *ZapLogger {
	return &ZapLogger{sugar: l.sugar.Named(name)}
}

func (l *ZapLogger) Sync() error {
	return l.sugar.Sync()
}

func (l *ZapLogger) Debug(msg string, args ...any) {
	l.sugar.Debugw(msg, args...)
}

func (l *ZapLogger) Info(msg string, args ...any) {
	l.sugar.Infow(msg, args...)
}

func (l *ZapLogger) Error(msg string, args ...any) {
	l.sugar.Errorw(msg, args...)
}
