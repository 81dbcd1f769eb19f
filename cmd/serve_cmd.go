package cmd

import (
	"net/http"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"media-gallery/pkg/config"
	"media-gallery/pkg/handlers"
	"media-gallery/pkg/services"
)

// newServeCmd creates a new command for serving the web application
func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the web server",
		Long:  `Start the web server to serve the gallery pages, manifests and viewer sessions via HTTP.`,
		Run: func(cmd *cobra.Command, args []string) {
			cfg := mustInit()
			serveWebsite(cfg)
		},
	}
}

// mustInit loads the configuration and the gallery service or exits
func mustInit() *config.Config {
	cfg, err := LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if err := services.InitService(cfg); err != nil {
		log.Fatal().Err(err).Str("source", cfg.Source).Msg("Failed to initialize media source")
	}
	return cfg
}

// serveWebsite runs the web server to serve the gallery content
func serveWebsite(cfg *config.Config) {
	router := handlers.NewRouter(cfg)

	// Start server
	cfg.PrintServerStartMessage()
	if err := http.ListenAndServe(cfg.ServerAddress(), router); err != nil {
		log.Error().Err(err).Msg("Server error")
		os.Exit(1)
	}
}
