package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"github.com/charmbracelet/log"

	"github.com/dgnsrekt/jtalk/internal/paths"
)

type logConfig struct {
	File  string `env:"JTALK_LOG_FILE"`
	Level string `env:"JTALK_LOG_LEVEL" envDefault:"warn"`
}

// setupLog configures the default logger from the environment. The returned
// closer flushes the log file, if any.
func setupLog() (func() error, error) {
	cfg, err := env.ParseAs[logConfig]()
	if err != nil {
		return nil, fmt.Errorf("error parsing log config: %w", err)
	}
	level, err := log.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid JTALK_LOG_LEVEL: %w", err)
	}
	log.SetLevel(level)

	if cfg.File == "" {
		log.SetOutput(os.Stderr)
		return func() error { return nil }, nil
	}

	path := paths.Expand(cfg.File)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil { //nolint:gosec
		return nil, fmt.Errorf("unable to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644) //nolint:gosec
	if err != nil {
		return nil, fmt.Errorf("unable to open log file: %w", err)
	}
	log.SetOutput(f)
	log.SetReportTimestamp(true)
	return f.Close, nil
}
