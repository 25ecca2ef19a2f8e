package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/alnah/go-pooppdf/internal/fileutil"
)

// pdfFileMode is the permission of written PDFs.
// #nosec G306 -- PDF output files are intended to be readable
const pdfFileMode = 0o644

type fileStorage struct{}

// NewFileStorage returns a backend writing to the local filesystem.
// Keys are file paths; missing parent directories are created.
func NewFileStorage() Storage {
	return fileStorage{}
}

func (fileStorage) Put(ctx context.Context, key string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	path, err := filepath.Abs(key)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", key, err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}

	if err := fileutil.WriteAtomic(path, data, pdfFileMode); err != nil {
		return "", err
	}

	return path, nil
}
