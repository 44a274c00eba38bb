// Package logging builds the zap logger shared by the CLI, the HTTP shell and the pipeline.
package logging

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const defaultLogLevel = "info"

// New constructs a zap logger. format "json" emits structured JSON for log
// collectors; anything else emits human-readable console lines.
func New(level, format string) (*zap.Logger, error) {
	atomic := zap.NewAtomicLevel()
	if err := atomic.UnmarshalText([]byte(strings.ToLower(strings.TrimSpace(level)))); err != nil || strings.TrimSpace(level) == "" {
		_ = atomic.UnmarshalText([]byte(defaultLogLevel))
	}

	if strings.EqualFold(format, "json") {
		cfg := zap.Config{
			Level:    atomic,
			Encoding: "json",
			EncoderConfig: zapcore.EncoderConfig{
				MessageKey:    "message",
				TimeKey:       "timestamp",
				LevelKey:      "severity",
				CallerKey:     "caller",
				StacktraceKey: "stacktrace",
				EncodeTime:    zapcore.RFC3339NanoTimeEncoder,
				EncodeCaller:  zapcore.ShortCallerEncoder,
				EncodeLevel: func(l zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
					enc.AppendString(strings.ToUpper(l.String()))
				},
			},
			OutputPaths:       []string{"stderr"},
			ErrorOutputPaths:  []string{"stderr"},
			DisableStacktrace: true,
		}
		return cfg.Build()
	}

	cfg := zap.NewDevelopmentConfig()
	cfg.Level = atomic
	cfg.DisableStacktrace = true
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	return cfg.Build()
}
