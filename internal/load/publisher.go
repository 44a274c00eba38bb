package load

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/aymen-fkir/sku-review-generator/internal/storage"
)

// DefaultPrefix is the folder results are published under when none is configured.
const DefaultPrefix = "silver"

// Publisher uploads result files to a storage bucket
type Publisher struct {
	bucket storage.Bucket
	prefix string
	now    func() time.Time
	logger *zap.Logger
}

// NewPublisher creates a new Publisher instance
func NewPublisher(bucket storage.Bucket, prefix string, logger *zap.Logger) *Publisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Publisher{bucket: bucket, prefix: prefix, now: time.Now, logger: logger}
}

// Publish uploads the result file at localPath and returns its object path.
// Objects are suffixed with the upload time so earlier results stay in place.
func (p *Publisher) Publish(localPath, format string) (string, error) {
	data, err := os.ReadFile(localPath)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", localPath, err)
	}
	base := filepath.Base(localPath)
	ext := filepath.Ext(base)
	name := fmt.Sprintf("%s_%d%s", strings.TrimSuffix(base, ext), p.now().Unix(), ext)
	objectPath := path.Join(p.prefix, name)

	if err := p.bucket.Upload(objectPath, data, ContentType(format)); err != nil {
		return "", err
	}
	p.logger.Info("results published",
		zap.String("object", objectPath),
		zap.Int("bytes", len(data)))
	return objectPath, nil
}

// Published lists the result objects under the prefix, newest first.
func (p *Publisher) Published() ([]string, error) {
	return p.bucket.List(p.prefix)
}
