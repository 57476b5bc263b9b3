package logging

import (
	"io"
	"os"

	"github.com/rs/zerolog"

	"github.com/hongminglow/valuation-be/internal/config"
)

const serviceName = "valuation-backend"

// New creates a structured zerolog.Logger writing JSON to stdout.
func New(cfg config.Config) zerolog.Logger {
	return NewWithWriter(os.Stdout, cfg)
}

// NewWithWriter is New with an explicit sink.
func NewWithWriter(w io.Writer, cfg config.Config) zerolog.Logger {
	ctx := zerolog.New(w).With().Timestamp().Str("service", serviceName)
	if cfg.TestMode {
		ctx = ctx.Bool("test_mode", true)
	}
	logger := ctx.Logger()

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || cfg.LogLevel == "" {
		level = zerolog.InfoLevel
	}
	return logger.Level(level)
}
