// Package logging builds the zap loggers used by the command-line tools.
package logging

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type settings struct {
	level       zapcore.Level
	development bool
	fields      []zap.Field
	sink        zapcore.WriteSyncer
}

// Option configures a logger.
type Option func(*settings)

// WithLevel sets the minimum level from a name such as "debug" or "warn".
func WithLevel(name string) Option {
	return func(s *settings) {
		s.level = ParseLevel(name)
	}
}

// WithDevelopment switches to human-readable console output.
func WithDevelopment(dev bool) Option {
	return func(s *settings) {
		s.development = dev
	}
}

// WithFields attaches fields to every entry.
func WithFields(fields ...zap.Field) Option {
	return func(s *settings) {
		s.fields = append(s.fields, fields...)
	}
}

// WithSink redirects output, stderr by default.
func WithSink(w zapcore.WriteSyncer) Option {
	return func(s *settings) {
		if w != nil {
			s.sink = w
		}
	}
}

// New returns a logger writing JSON, or console text in development mode.
func New(opts ...Option) *zap.Logger {
	s := settings{level: zapcore.InfoLevel, sink: zapcore.Lock(os.Stderr)}
	for _, opt := range opts {
		if opt != nil {
			opt(&s)
		}
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var enc zapcore.Encoder
	if s.development {
		encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		enc = zapcore.NewConsoleEncoder(encCfg)
	} else {
		enc = zapcore.NewJSONEncoder(encCfg)
	}

	core := zapcore.NewCore(enc, s.sink, zap.NewAtomicLevelAt(s.level))
	zopts := []zap.Option{zap.AddCaller()}
	if s.development {
		zopts = append(zopts, zap.Development())
	}
	return zap.New(core, zopts...).With(s.fields...)
}

// ParseLevel maps a level name to a zap level. Unknown names yield info.
func ParseLevel(name string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return zapcore.DebugLevel
	case "info":
		return zapcore.InfoLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}
