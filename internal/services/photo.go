package services

import (
	"context"
	"fmt"
	"time"

	appconfig "photo-guess-backend/internal/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// imageURLTTL is how long a presigned photo link stays valid: long enough to
// cover one round, short enough not to leak images around.
const imageURLTTL = 15 * time.Minute

// PhotoService serves presigned S3 URLs for photo images. Uploads and the
// rest of the catalog pipeline live in the admin product, not here.
type PhotoService struct {
	presigner *s3.PresignClient
	s3Bucket  string
}

// NewPhotoService creates a new photo service
func NewPhotoService(ctx context.Context, cfg appconfig.AWSConfig) (*PhotoService, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &PhotoService{
		presigner: s3.NewPresignClient(client),
		s3Bucket:  cfg.S3Bucket,
	}, nil
}

// ImageURL returns a presigned GET URL for a photo's image
func (s *PhotoService) ImageURL(ctx context.Context, s3Key string) (string, error) {
	request, err := s.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.s3Bucket),
		Key:    aws.String(s3Key),
	}, func(opts *s3.PresignOptions) {
		opts.Expires = imageURLTTL
	})
	if err != nil {
		return "", fmt.Errorf("failed to presign photo %s: %w", s3Key, err)
	}
	return request.URL, nil
}
