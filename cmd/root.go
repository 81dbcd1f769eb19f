package cmd

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"media-gallery/pkg/config"
)

// Configuration flags
var (
	configPath string
	secretKey  string
	bucketName string
	portNumber string
	source     string
	mediaDir   string
)

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "media-gallery",
		Short: "Media Gallery is a tool for browsing and presenting image and video galleries",
		Long: `Media Gallery is a command line application that lists and presents galleries of
images and videos stored in Google Cloud Storage, an S3 bucket or a local directory.
It serves these galleries via a web interface with a modal viewer and slideshow.`,
	}

	// Define persistent flags that will be available for all commands
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultPath, "Path to the optional YAML config file")
	rootCmd.PersistentFlags().StringVarP(&secretKey, "secret-key", "s", "", "Set the SECRET_KEY (overrides environment variable)")
	rootCmd.PersistentFlags().StringVarP(&bucketName, "bucket", "b", "", "Set the BUCKET_NAME (overrides environment variable)")
	rootCmd.PersistentFlags().StringVarP(&portNumber, "port", "p", "", "Set the PORT (overrides environment variable)")
	rootCmd.PersistentFlags().StringVar(&source, "source", "", "Set the SOURCE: gcs, s3 or local (overrides environment variable)")
	rootCmd.PersistentFlags().StringVarP(&mediaDir, "media-dir", "m", "", "Set the MEDIA_DIR for the local source (overrides environment variable)")

	// Add commands to root
	rootCmd.AddCommand(newListCategoriesCmd())
	rootCmd.AddCommand(newListGalleriesCmd())
	rootCmd.AddCommand(newShowGalleryCmd())
	rootCmd.AddCommand(newExportCmd())
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newViewCmd())

	return rootCmd
}

// LoadConfig loads configuration with respect to command line flags
func LoadConfig() (*config.Config, error) {
	applyFlags()

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	setupLogging(cfg.LogLevel)
	return cfg, nil
}

// applyFlags sets environment variables from flags if provided
func applyFlags() {
	overrides := map[string]string{
		"SECRET_KEY":  secretKey,
		"BUCKET_NAME": bucketName,
		"PORT":        portNumber,
		"SOURCE":      source,
		"MEDIA_DIR":   mediaDir,
	}
	for name, value := range overrides {
		if value != "" {
			os.Setenv(name, value)
		}
	}
}

// setupLogging points the global logger at stderr so command output stays clean
func setupLogging(level string) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().
		Timestamp().
		Logger()
}
