package logger

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// DefaultLevel keeps a terminal session quiet unless something fails.
const DefaultLevel = zapcore.WarnLevel

// New builds a console logger on stderr. Unknown levels fall back to warn.
func New(level string) (*zap.Logger, error) {
	config := zap.NewDevelopmentConfig()
	config.Level = zap.NewAtomicLevelAt(ParseLevel(level))
	config.OutputPaths = []string{"stderr"}
	config.ErrorOutputPaths = []string{"stderr"}
	config.DisableStacktrace = true
	config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	return config.Build()
}

func ParseLevel(level string) zapcore.Level {
	// zapcore maps "" to info
	if strings.TrimSpace(level) == "" {
		return DefaultLevel
	}
	l, err := zapcore.ParseLevel(level)
	if err != nil {
		return DefaultLevel
	}
	return l
}
