// Package main runs the collection tracker REST API server.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/cardbinder/cardbinder/internal/api"
	"github.com/cardbinder/cardbinder/internal/config"
	"github.com/cardbinder/cardbinder/internal/storage"
	"github.com/cardbinder/cardbinder/internal/storage/repository"
)

var (
	port       = flag.Int("port", 0, "API server port (overrides config)")
	dbPath     = flag.String("db-path", "", "Database path (default: ~/.cardbinder/data.db)")
	configPath = flag.String("config", "", "Config file path (default: ~/.cardbinder/config.toml)")
)

func main() {
	flag.Parse()

	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	finalPort := cfg.Server.Port
	if *port != 0 {
		finalPort = *port
	}

	finalDBPath, err := resolveDBPath(cfg)
	if err != nil {
		log.Fatalf("Failed to resolve database path: %v", err)
	}

	fmt.Println("Card Binder - REST API Server")
	fmt.Printf("Database: %s\n", finalDBPath)

	dbConfig := storage.DefaultConfig(finalDBPath)
	dbConfig.AutoMigrate = true
	db, err := storage.Open(dbConfig)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	items := repository.NewItemRepository(db.Conn())
	prices := repository.NewPriceRepository(db.Conn())

	apiConfig := &api.Config{
		Port:            finalPort,
		JWTSecret:       []byte(cfg.Auth.JWTSecret),
		DefaultSource:   cfg.DefaultSource(),
		RateLimitPerSec: cfg.Server.RateLimitPerSec,
		RateLimitBurst:  cfg.Server.RateLimitBurst,
	}
	server := api.NewServer(apiConfig, items, prices)

	if err := server.Start(); err != nil {
		log.Fatalf("Failed to start API server: %v", err)
	}

	fmt.Printf("API server running at http://localhost:%d\n", finalPort)
	fmt.Println("Press Ctrl+C to stop")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	fmt.Println("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}

	fmt.Println("API server stopped.")
}

func loadConfig() (*config.Config, error) {
	if *configPath != "" {
		return config.LoadFrom(*configPath)
	}
	return config.Load()
}

func resolveDBPath(cfg *config.Config) (string, error) {
	if *dbPath != "" {
		return *dbPath, nil
	}
	if cfg.Database.Path != "" {
		return cfg.Database.Path, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}
	return filepath.Join(home, ".cardbinder", "data.db"), nil
}
