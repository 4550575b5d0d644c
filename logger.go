package glyphwave

import (
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// loggerPtr stores the active logger so SetLogger can race with render
// goroutines that are already logging.
var loggerPtr atomic.Pointer[zap.Logger]

func init() {
	loggerPtr.Store(zap.NewNop())
}

// SetLogger replaces the package logger. By default glyphwave logs nothing.
// Pass nil to restore the silent default.
//
// Levels used:
//   - Debug: per-frame statistics, scene changes, applied updates
//   - Info: mode selection and teardown
//   - Warn: worker fallback, recovered panics
//   - Error: shader compile diagnostics, no usable render path
func SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	loggerPtr.Store(l)
}

// Logger returns the current package logger.
func Logger() *zap.Logger {
	return loggerPtr.Load()
}

// LogConfig selects the level and encoding of a logger built by NewLogger.
type LogConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// NewLogger builds a zap logger: JSON to stdout in production, colored
// console output in development.
func NewLogger(cfg LogConfig) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if cfg.Level != "" {
		l, err := zapcore.ParseLevel(cfg.Level)
		if err != nil {
			return nil, fmt.Errorf("glyphwave: log level %q: %w", cfg.Level, err)
		}
		level = l
	}

	zc := zap.NewProductionConfig()
	zc.EncoderConfig.TimeKey = "ts"
	zc.EncoderConfig.EncodeDuration = zapcore.SecondsDurationEncoder
	if cfg.Development {
		zc = zap.NewDevelopmentConfig()
		zc.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	zc.Level = zap.NewAtomicLevelAt(level)

	l, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("glyphwave: build logger: %w", err)
	}
	return l.With(zap.String("component", "glyphwave")), nil
}
