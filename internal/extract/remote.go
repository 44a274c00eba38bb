package extract

import (
	"fmt"
	"os"
	"path"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/aymen-fkir/sku-review-generator/internal/storage"
)

// ProcessedPrefix is where fetched input sheets are moved once their run completes.
const ProcessedPrefix = "processed"

// Remote fetches input sheets from a storage bucket
type Remote struct {
	bucket storage.Bucket
	logger *zap.Logger
}

// NewRemote creates a new Remote instance
func NewRemote(bucket storage.Bucket, logger *zap.Logger) *Remote {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Remote{bucket: bucket, logger: logger}
}

// Fetch downloads objectPath into dir and returns the local file path. The
// local file keeps the object's base name so the same sheet maps to the same
// checkpoints across runs.
func (r *Remote) Fetch(objectPath, dir string) (string, error) {
	data, err := r.bucket.Download(objectPath)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating %s: %w", dir, err)
	}
	local := filepath.Join(dir, path.Base(objectPath))
	if err := os.WriteFile(local, data, 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", local, err)
	}
	r.logger.Info("input fetched", zap.String("object", objectPath), zap.String("path", local))
	return local, nil
}

// Archive moves a processed sheet under ProcessedPrefix.
func (r *Remote) Archive(objectPath string) (string, error) {
	dest := path.Join(ProcessedPrefix, path.Base(objectPath))
	if err := r.bucket.Move(objectPath, dest); err != nil {
		return "", err
	}
	r.logger.Info("input archived", zap.String("from", objectPath), zap.String("to", dest))
	return dest, nil
}
