package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"statdesc/adapters/api"
	"statdesc/internal"
	"statdesc/internal/config"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	logger := internal.NewLogger(internal.ParseLogLevel(cfg.LogLevel))
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := api.NewServer(cfg, logger).ListenAndServe(ctx); err != nil {
		logger.Error("[API] server failed: %v", err)
		return err
	}
	return nil
}
