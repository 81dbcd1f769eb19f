package services

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog/log"

	"media-gallery/pkg/config"
	"media-gallery/pkg/models"
)

// S3Source lists an S3 compatible bucket and presigns a URL for every media file
type S3Source struct {
	client    *s3.Client
	presigner *s3.PresignClient
	bucket    string
	expiry    time.Duration
}

// NewS3Source creates a source for bucket. Static credentials are used when
// both keys are set, the default AWS chain otherwise.
func NewS3Source(ctx context.Context, cfg config.S3Config, bucket string) (*S3Source, error) {
	region := cfg.Region
	if region == "" {
		region = "eu-central-1"
	}

	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(region)}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Source{
		client:    client,
		presigner: s3.NewPresignClient(client),
		bucket:    bucket,
		expiry:    24 * time.Hour,
	}, nil
}

// Objects returns every media file of the bucket with a presigned URL
func (s *S3Source) Objects(ctx context.Context) ([]MediaObject, error) {
	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
	})

	var objects []MediaObject
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list objects: %w", err)
		}

		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			if models.MIMEFromName(key) == "" {
				continue
			}

			req, err := s.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
				Bucket: aws.String(s.bucket),
				Key:    aws.String(key),
			}, s3.WithPresignExpires(s.expiry))
			if err != nil {
				log.Warn().Err(err).Str("object", key).Msg("Error presigning URL")
				continue
			}

			objects = append(objects, MediaObject{Name: key, URL: req.URL})
		}
	}

	return objects, nil
}
