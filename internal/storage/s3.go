package storage

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"
)

var _ ObjectStorage = (*S3Storage)(nil)

// S3Storage stores objects in one AWS S3 bucket.
type S3Storage struct {
	client *s3.Client
	bucket string
	region string
	logger *zap.Logger
}

// NewS3Storage uses the default AWS credential chain.
func NewS3Storage(ctx context.Context, region, bucket string, logger *zap.Logger) (*S3Storage, error) {
	if region == "" || bucket == "" {
		return nil, fmt.Errorf("s3 storage requires region and bucket")
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	l := logger.Named("S3Storage")
	l.Info("S3 storage configured", zap.String("region", region), zap.String("bucket", bucket))
	return &S3Storage{client: s3.NewFromConfig(awsCfg), bucket: bucket, region: region, logger: l}, nil
}

func (s *S3Storage) Put(ctx context.Context, key string, data []byte, contentType string) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("failed to upload %s to s3: %w", key, err)
	}
	s.logger.Debug("Object uploaded", zap.String("key", key), zap.Int("bytes", len(data)))
	return nil
}

func (s *S3Storage) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete %s from s3: %w", key, err)
	}
	return nil
}

func (s *S3Storage) PublicURL(key string) string {
	return S3PublicURL(s.bucket, s.region, key)
}

// S3PublicURL returns the virtual-hosted URL of key, or "" when bucket or region is empty.
func S3PublicURL(bucket, region, key string) string {
	if bucket == "" || region == "" {
		return ""
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", bucket, region, key)
}
