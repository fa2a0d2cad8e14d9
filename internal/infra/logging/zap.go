// Package logging wires zap into the core's minimal logger surface.
package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"feedstockcore/internal/core"
)

// New builds a production zap logger at the given level and adapts it to the
// core logging surface. Level names follow zapcore ("debug", "info", "warn",
// "error"); unknown or empty names fall back to info.
func New(level string) (core.Logger, func(), error) {
	config := zap.NewProductionConfig()
	if parsed, err := zapcore.ParseLevel(level); err == nil {
		config.Level = zap.NewAtomicLevelAt(parsed)
	}
	logger, err := config.Build()
	if err != nil {
		return nil, nil, err
	}
	sync := func() { _ = logger.Sync() }
	return Adapt(logger), sync, nil
}

// Adapt wraps an existing zap logger as a core logger.
func Adapt(logger *zap.Logger) core.Logger {
	return zapAdapter{sugar: logger.Sugar()}
}

// zapAdapter maps the core's alternating key/value argument convention onto
// zap's sugared logger, which uses the same convention.
type zapAdapter struct {
	sugar *zap.SugaredLogger
}

var _ core.Logger = zapAdapter{}

func (z zapAdapter) Debug(msg string, args ...any) { z.sugar.Debugw(msg, args...) }
func (z zapAdapter) Info(msg string, args ...any)  { z.sugar.Infow(msg, args...) }
func (z zapAdapter) Warn(msg string, args ...any)  { z.sugar.Warnw(msg, args...) }
func (z zapAdapter) Error(msg string, args ...any) { z.sugar.Errorw(msg, args...) }
