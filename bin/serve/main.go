package main

import (
	"net/http"
	"os"

	"github.com/rs/zerolog/log"

	"media-gallery/pkg/config"
	"media-gallery/pkg/handlers"
	"media-gallery/pkg/services"
)

func main() {
	// Load configuration
	path := os.Getenv("CONFIG_FILE")
	if path == "" {
		path = config.DefaultPath
	}
	cfg, err := config.Load(path)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Initialize services
	if err := services.InitService(cfg); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize media source")
	}

	// Start server
	cfg.PrintServerStartMessage()
	if err := http.ListenAndServe(cfg.ServerAddress(), handlers.NewRouter(cfg)); err != nil {
		log.Error().Err(err).Msg("Server error")
		os.Exit(1)
	}
}
