package app

import (
	"context"
	"os/signal"
	"syscall"
)

// Run is the CLI entrypoint used by cmd/accountd.
// It returns an error instead of calling os.Exit to keep defers effective.
func Run() error {
	if err := LoadEnvFile(); err != nil {
		return err
	}

	cfg := LoadConfig()
	log := NewLogger(cfg.LogLevel, cfg.LogFormat)

	hasher, err := ValidateSecurityConfig()
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	a, err := New(ctx, cfg, log, hasher)
	if err != nil {
		return err
	}

	return a.Run(ctx)
}
