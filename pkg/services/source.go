package services

import (
	"context"
	"fmt"
	"os"

	"media-gallery/pkg/config"
)

// MediaObject is one file of the media store and a URL a browser can fetch it from
type MediaObject struct {
	Name string
	URL  string
}

// MediaSource lists the media objects of a store. Names are slash separated
// paths of the form <category>/<gallery>/[thumbs/|previews/]<file>.
type MediaSource interface {
	Objects(ctx context.Context) ([]MediaObject, error)
}

// NewSource builds the media source selected by the configuration
func NewSource(ctx context.Context, cfg *config.Config) (MediaSource, error) {
	switch cfg.Source {
	case config.SourceGCS:
		return NewGCSSource(cfg.BucketName), nil
	case config.SourceS3:
		return NewS3Source(ctx, cfg.S3, cfg.BucketName)
	case config.SourceLocal:
		return NewLocalSource(os.DirFS(cfg.MediaDir), MediaURLPrefix), nil
	default:
		return nil, fmt.Errorf("%w: %q", config.ErrUnknownSource, cfg.Source)
	}
}
