// Package logging wraps zap into the small logging surface matchengine
// needs: a level-configurable, JSON-by-default logger with no per-request
// context propagation, since nothing in this module carries a request ID
// once an order has been accepted.
package logging

import (
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Level is the minimum severity a Logger will emit.
type Level string

const (
	// DebugLevel emits everything, including per-order ingest traces.
	DebugLevel Level = "debug"
	// InfoLevel emits lifecycle and trade events. The default.
	InfoLevel Level = "info"
	// WarnLevel emits only warnings and errors.
	WarnLevel Level = "warn"
	// ErrorLevel emits only errors.
	ErrorLevel Level = "error"
)

func (l Level) zapLevel() zapcore.Level {
	switch l {
	case DebugLevel:
		return zapcore.DebugLevel
	case WarnLevel:
		return zapcore.WarnLevel
	case ErrorLevel:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// New builds a *zap.SugaredLogger configured for level. Development mode
// switches to a human-readable console encoder; otherwise the default is
// structured JSON to stderr, suitable for piping into a log aggregator.
func New(level Level, development bool) (*zap.SugaredLogger, error) {
	var cfg zap.Config
	if development {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(level.zapLevel())
	cfg.EncoderConfig.MessageKey = "message"

	logger, err := cfg.Build()
	if err != nil {
		return nil, errors.Wrap(err, "build zap logger")
	}
	return logger.Sugar(), nil
}

// Noop returns a logger that discards everything, for tests and call sites
// that accept a nil logger elsewhere in the module but need a non-nil one.
func Noop() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}

// ParseLevel validates a level string from configuration, defaulting to
// InfoLevel on empty input and erroring on anything unrecognized.
func ParseLevel(s string) (Level, error) {
	switch Level(s) {
	case "":
		return InfoLevel, nil
	case DebugLevel, InfoLevel, WarnLevel, ErrorLevel:
		return Level(s), nil
	default:
		return "", errors.Errorf("unrecognized log level %q", s)
	}
}
