package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds the process logger. env "local" gets the development config.
func New(serviceName string, env string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if env == "local" {
		cfg = zap.NewDevelopmentConfig()
	}

	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	l, err := cfg.Build(
		zap.Fields(
			zap.String("service", serviceName),
			zap.String("env", env),
		),
	)
	if err != nil {
		return nil, err
	}
	return l, nil
}

// WithLevel returns a logger that drops entries below lvl ("debug", "info", ...).
func WithLevel(l *zap.Logger, lvl string) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(lvl)
	if err != nil {
		return nil, err
	}
	return l.WithOptions(zap.IncreaseLevel(level)), nil
}
