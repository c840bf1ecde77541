package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/osa911/userconsole/internal/config"
	"github.com/osa911/userconsole/internal/logging"
	"github.com/osa911/userconsole/internal/server"
	"github.com/osa911/userconsole/internal/version"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if err := logging.InitLogger(cfg.Logging()); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	logger := logging.GetGlobalLogger()
	defer logger.Close()

	logger.Info("Starting user console %s in %s mode", version.Info(), cfg.Environment)
	if cfg.EnvFile != "" {
		logger.Info("Loaded environment from %s", cfg.EnvFile)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := server.Run(ctx, cfg, logger); err != nil {
		logger.Error("Server failed: %v", err)
		os.Exit(1)
	}
}
