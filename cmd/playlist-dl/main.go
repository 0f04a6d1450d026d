package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
)

func main() {
	logger := newLogger(os.Stderr)
	log.SetDefault(logger)

	// A missing .env is fine, credentials may come from the environment or config.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Warn("failed to load .env", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := newApp(logger)
	if err := app.Run(ctx, os.Args); err != nil {
		if ctx.Err() != nil {
			logger.Warn("download cancelled")
			os.Exit(130)
		}
		logger.Fatalf("application error: %v", err)
	}
	if ctx.Err() != nil {
		logger.Warn("download cancelled")
		os.Exit(130)
	}
}
