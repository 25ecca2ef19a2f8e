// Package storage writes rendered PDFs to their destination.
// Local paths are replaced atomically; s3://bucket/key locations are uploaded.
package storage

import (
	"context"
	"os"

	"github.com/alnah/go-pooppdf/internal/fileutil"
)

// Storage stores a finished artifact.
type Storage interface {
	// Put stores data under key and returns where it ended up.
	Put(ctx context.Context, key string, data []byte) (string, error)
}

// Resolve picks the backend for location and returns it with the key to use.
func Resolve(ctx context.Context, location string) (Storage, string, error) {
	if !fileutil.IsS3Location(location) {
		return NewFileStorage(), location, nil
	}

	bucket, key, err := fileutil.SplitS3Location(location)
	if err != nil {
		return nil, "", err
	}

	s, err := NewS3Storage(ctx, S3Config{
		Bucket:   bucket,
		Endpoint: os.Getenv("S3_ENDPOINT_URL"),
	})
	if err != nil {
		return nil, "", err
	}
	return s, key, nil
}
