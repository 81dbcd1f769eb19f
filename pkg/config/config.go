package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Media sources
const (
	SourceGCS   = "gcs"
	SourceS3    = "s3"
	SourceLocal = "local"
)

// DefaultPath is the config file read when no other path is given
const DefaultPath = "gallery.yml"

// S3Config holds the settings for an S3 compatible media bucket
type S3Config struct {
	Endpoint  string `koanf:"endpoint"`
	Region    string `koanf:"region"`
	AccessKey string `koanf:"access_key"`
	SecretKey string `koanf:"secret_key"`
}

// Config holds all configuration for the application
type Config struct {
	SecretKey           string        `koanf:"secret_key"`
	Source              string        `koanf:"source"`
	BucketName          string        `koanf:"bucket_name"`
	MediaDir            string        `koanf:"media_dir"`
	S3                  S3Config      `koanf:"s3"`
	Port                string        `koanf:"port"`
	SlideshowIntervalMs int           `koanf:"slideshow_interval_ms"`
	SessionTTL          time.Duration `koanf:"session_ttl"`
	LogLevel            string        `koanf:"log_level"`
}

// ErrSecretKeyNotSet is returned when the SECRET_KEY environment variable is not set
var ErrSecretKeyNotSet = errors.New("SECRET_KEY environment variable not set")

// ErrBucketNameNotSet is returned when the BUCKET_NAME environment variable is not set
var ErrBucketNameNotSet = errors.New("BUCKET_NAME environment variable not set")

// ErrMediaDirNotSet is returned when the local source has no MEDIA_DIR
var ErrMediaDirNotSet = errors.New("MEDIA_DIR environment variable not set")

// ErrUnknownSource is returned for a SOURCE other than gcs, s3 or local
var ErrUnknownSource = errors.New("unknown media source")

// envKeys maps the environment variables the gallery reads to config keys
var envKeys = map[string]string{
	"SECRET_KEY":            "secret_key",
	"SOURCE":                "source",
	"BUCKET_NAME":           "bucket_name",
	"MEDIA_DIR":             "media_dir",
	"S3_ENDPOINT":           "s3.endpoint",
	"S3_REGION":             "s3.region",
	"S3_ACCESS_KEY":         "s3.access_key",
	"S3_SECRET_KEY":         "s3.secret_key",
	"PORT":                  "port",
	"SLIDESHOW_INTERVAL_MS": "slideshow_interval_ms",
	"SESSION_TTL":           "session_ttl",
	"LOG_LEVEL":             "log_level",
}

// Default returns the configuration used before the file and environment are applied
func Default() *Config {
	return &Config{
		Source:              SourceGCS,
		Port:                "8080",
		SlideshowIntervalMs: 3000,
		SessionTTL:          30 * time.Minute,
		LogLevel:            "info",
	}
}

// Load reads the optional YAML file at path, overlays environment variables and
// validates the result
func Load(path string) (*Config, error) {
	cfg, err := LoadUnvalidated(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadUnvalidated is Load without the final validation. Commands that only need
// part of the configuration use it.
func LoadUnvalidated(path string) (*Config, error) {
	k := koanf.New(".")
	cfg := Default()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("reading config %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("accessing config %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", func(s string) string {
		return envKeys[s]
	}), nil); err != nil {
		return nil, fmt.Errorf("loading environment: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}
	return cfg, nil
}

// Validate checks that the settings needed by the selected source are present
func (c *Config) Validate() error {
	if c.SecretKey == "" {
		return ErrSecretKeyNotSet
	}
	return c.ValidateSource()
}

// ValidateSource checks only the media source settings
func (c *Config) ValidateSource() error {
	switch c.Source {
	case SourceGCS, SourceS3:
		if c.BucketName == "" {
			return ErrBucketNameNotSet
		}
	case SourceLocal:
		if c.MediaDir == "" {
			return ErrMediaDirNotSet
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownSource, c.Source)
	}
	return nil
}

// SlideshowInterval returns the configured slideshow interval
func (c *Config) SlideshowInterval() time.Duration {
	return time.Duration(c.SlideshowIntervalMs) * time.Millisecond
}

// ServerAddress returns the server address with port
func (c *Config) ServerAddress() string {
	return fmt.Sprintf(":%s", c.Port)
}

// PrintServerStartMessage prints a message when the server starts
func (c *Config) PrintServerStartMessage() {
	fmt.Printf("Starting server at port %s\n", c.Port)
	fmt.Printf("Gallery URL: http://localhost:%s/%s/index\n", c.Port, c.SecretKey)
	fmt.Printf("Feed URL: http://localhost:%s/%s/feed\n", c.Port, c.SecretKey)
}
