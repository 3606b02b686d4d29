package logging

import (
	"os"
	"path/filepath"

	"github.com/rgehrsitz/cnpay/internal/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const appName = "cnpay"

// New builds the CLI logger from the log section of the settings.
// Reports own stdout, so an empty output path means stderr.
func New(s config.LogSettings) (*zap.Logger, error) {
	level, err := zap.ParseAtomicLevel(s.Level)
	if err != nil {
		level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}

	output := s.OutputPath
	switch output {
	case "":
		output = "stderr"
	case "stderr", "stdout":
	default:
		if err := os.MkdirAll(filepath.Dir(output), 0755); err != nil {
			return nil, err
		}
	}

	cfg := zap.Config{
		Level:            level,
		Encoding:         "console",
		EncoderConfig:    zap.NewDevelopmentEncoderConfig(),
		OutputPaths:      []string{output},
		ErrorOutputPaths: []string{"stderr"},
		InitialFields:    map[string]any{"app": appName},
	}
	if s.Format == "json" {
		cfg.Encoding = "json"
		cfg.EncoderConfig = zap.NewProductionEncoderConfig()
	} else {
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	cfg.EncoderConfig.TimeKey = "timestamp"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}

// Sugar adapts a logger to calculation.Logger. A nil logger yields a no-op.
func Sugar(l *zap.Logger) *zap.SugaredLogger {
	if l == nil {
		return zap.NewNop().Sugar()
	}
	return l.Sugar()
}
