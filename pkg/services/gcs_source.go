package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/storage"
	"github.com/rs/zerolog/log"
	"google.golang.org/api/iterator"

	"media-gallery/pkg/models"
)

// GCSSource lists a Google Cloud Storage bucket and signs a URL for every media file
type GCSSource struct {
	bucketName string
	expiry     time.Duration
}

// NewGCSSource creates a source for the named bucket
func NewGCSSource(bucketName string) *GCSSource {
	return &GCSSource{
		bucketName: bucketName,
		expiry:     24 * time.Hour,
	}
}

// Objects returns every media file of the bucket with a signed URL
func (s *GCSSource) Objects(ctx context.Context) ([]MediaObject, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	storageClient, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	defer storageClient.Close()

	bucket := storageClient.Bucket(s.bucketName)
	it := bucket.Objects(ctx, nil)

	var objects []MediaObject
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error iterating objects: %w", err)
		}
		if models.MIMEFromName(attrs.Name) == "" {
			continue
		}

		signedURL, err := bucket.SignedURL(attrs.Name, &storage.SignedURLOptions{
			Expires: time.Now().Add(s.expiry),
			Method:  "GET",
		})
		if err != nil {
			log.Warn().Err(err).Str("object", attrs.Name).Msg("Error creating signed URL")
			continue
		}

		objects = append(objects, MediaObject{Name: attrs.Name, URL: signedURL})
	}

	return objects, nil
}
