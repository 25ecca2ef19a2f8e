package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ErrEmptyBucket is returned when an S3 backend has no bucket.
var ErrEmptyBucket = errors.New("s3 bucket cannot be empty")

const pdfContentType = "application/pdf"

// s3PutAPI is the part of the S3 client used here.
type s3PutAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Config selects the bucket and an optional S3-compatible endpoint.
type S3Config struct {
	Bucket   string
	Endpoint string // e.g. http://localhost:9000 for MinIO (empty = AWS)
}

type s3Storage struct {
	client s3PutAPI
	bucket string
}

// NewS3Storage creates an S3 backend with the default AWS credential chain.
// A custom endpoint switches the client to path-style addressing.
func NewS3Storage(ctx context.Context, cfg S3Config) (Storage, error) {
	if cfg.Bucket == "" {
		return nil, ErrEmptyBucket
	}

	awsCfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return newS3StorageWithClient(client, cfg.Bucket), nil
}

func newS3StorageWithClient(client s3PutAPI, bucket string) *s3Storage {
	return &s3Storage{client: client, bucket: bucket}
}

// Put uploads data in a single request. S3 exposes the object only once the
// upload completed, so readers never see a partial PDF.
func (s *s3Storage) Put(ctx context.Context, key string, data []byte) (string, error) {
	if _, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(pdfContentType),
	}); err != nil {
		return "", fmt.Errorf("uploading to s3://%s/%s: %w", s.bucket, key, err)
	}

	return fmt.Sprintf("s3://%s/%s", s.bucket, key), nil
}
