package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/GriffinCanCode/BizMate/core/internal/bridge"
	"github.com/GriffinCanCode/BizMate/core/internal/infrastructure/config"
	"github.com/GriffinCanCode/BizMate/core/internal/infrastructure/logging"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func main() {
	envFile := flag.String("env", ".env", "Optional dotenv file")
	port := flag.String("port", "", "Bridge port (overrides BRIDGE_PORT)")
	apiURL := flag.String("api", "", "BizMate API base URL (overrides BIZMATE_API_URL)")
	dev := flag.Bool("dev", false, "Development logging")
	flag.Parse()

	// A missing dotenv file is normal outside development.
	if err := godotenv.Load(*envFile); err != nil && !os.IsNotExist(err) {
		log.Printf("Ignoring %s: %v", *envFile, err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *port != "" {
		cfg.Bridge.Port = *port
	}
	if *apiURL != "" {
		cfg.API.BaseURL = *apiURL
	}
	if *dev {
		cfg.Logging.Development = true
		cfg.Logging.Level = "debug"
	}

	logger, err := logging.Build(logging.FromEnv(cfg.Logging.Level, cfg.Logging.Development))
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	srv, err := bridge.New(bridge.Options{Config: cfg, Logger: logger})
	if err != nil {
		logger.Fatal("Failed to create bridge", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Run()
	}()

	select {
	case <-ctx.Done():
		logger.Info("Shutting down gracefully...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Error during shutdown", zap.Error(err))
		}
	case err := <-errChan:
		srv.Close()
		if err != nil {
			logger.Fatal("Bridge error", zap.Error(err))
		}
	}
}
