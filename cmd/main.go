package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/yungbote/healthjournal-backend/internal/app"
	"github.com/yungbote/healthjournal-backend/internal/platform/logger"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config (optional, env vars override)")
	flag.Parse()

	cfg, err := app.Load(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	application, err := app.New(log, cfg)
	if err != nil {
		log.Error("Startup failed", "error", err)
		log.Sync()
		os.Exit(1)
	}

	log.Info("Storage ready")

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	sig := <-stop
	log.Info("Shutting down", "signal", sig.String())

	if err := application.Close(); err != nil {
		log.Warn("Storage close failed", "error", err)
	}
}
