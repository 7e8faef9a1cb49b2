package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/peekdata/datagateway-go/internal/config"
	"github.com/peekdata/datagateway-go/internal/logging"
	"github.com/peekdata/datagateway-go/internal/mockgateway"
)

func main() {
	configPath := flag.String("config", "", "Path to configuration file")
	port := flag.Int("port", 0, "Listen port (overrides mock.port)")
	flag.Parse()

	cfg := config.LoadOrDefault(*configPath)
	if *port > 0 {
		cfg.Mock.Port = *port
	}

	logger, err := logging.NewFromConfig(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	logging.SetGlobal(logger)

	if len(cfg.Mock.APIKeys) > 0 {
		logging.Info("API key authentication enabled", "num_keys", len(cfg.Mock.APIKeys))
	} else {
		logging.Warn("API key authentication DISABLED - all requests will be allowed")
	}

	app := mockgateway.New(logger, mockgateway.DefaultDataset(), cfg.Mock)

	go func() {
		addr := cfg.Mock.Address()
		logging.Info("Mock gateway listening", "address", addr)
		if err := app.Listen(addr); err != nil {
			logging.Fatal("Failed to start server", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logging.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logging.Error("Server forced to shutdown", "error", err)
	}

	logging.Info("Server exited")
}
