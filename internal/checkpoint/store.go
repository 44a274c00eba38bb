// Package checkpoint persists run snapshots so an interrupted run can resume.
package checkpoint

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/natefinch/atomic"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/aymen-fkir/sku-review-generator/internal/models"
)

const (
	// Final tags the checkpoint written when a run completes.
	Final = "final"
	// Interrupted tags the checkpoint written when a run is cancelled.
	Interrupted = "interrupted"

	timestampLayout = "20060102_150405"
	extension       = ".json"
)

// Checkpoint is one saved snapshot of a run.
type Checkpoint struct {
	Timestamp        time.Time             `json:"timestamp"`
	InputFile        string                `json:"input_file"`
	Mode             string                `json:"mode"`
	CheckpointNumber string                `json:"checkpoint_number"`
	TotalReviews     int                   `json:"total_reviews"`
	ReviewsPerSKU    int                   `json:"reviews_per_sku"`
	RunID            string                `json:"run_id"`
	Results          []models.ReviewRecord `json:"results"`
}

// Meta is run information saved alongside the results.
type Meta struct {
	RunID         string
	ReviewsPerSKU int
}

// Entry describes a checkpoint file.
type Entry struct {
	Name    string
	Path    string
	Number  string
	Size    int64
	ModTime time.Time

	id string
}

// FileStore keeps checkpoints as JSON files in a directory. Every save creates
// a new file; all I/O errors are logged and never returned.
type FileStore struct {
	dir    string
	keep   int
	logger *zap.Logger
	now    func() time.Time
}

// NewFileStore creates a store in dir keeping the keep newest checkpoints per
// input file and mode. keep <= 0 disables pruning.
func NewFileStore(dir string, keep int, logger *zap.Logger) *FileStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileStore{dir: dir, keep: keep, logger: logger, now: time.Now}
}

// Dir returns the checkpoint directory.
func (s *FileStore) Dir() string {
	return s.dir
}

// Save writes a new checkpoint and prunes old ones. It returns the file path,
// or "" when the checkpoint could not be written.
func (s *FileStore) Save(results []models.ReviewRecord, inputFile, mode, seq string, meta Meta) string {
	now := s.now()
	cp := Checkpoint{
		Timestamp:        now,
		InputFile:        inputFile,
		Mode:             mode,
		CheckpointNumber: seq,
		TotalReviews:     len(results),
		ReviewsPerSKU:    meta.ReviewsPerSKU,
		RunID:            meta.RunID,
		Results:          results,
	}
	if cp.Results == nil {
		cp.Results = []models.ReviewRecord{}
	}

	data, err := json.MarshalIndent(cp, "", "  ")
	if err != nil {
		s.logger.Error("marshaling checkpoint", zap.Error(err))
		return ""
	}
	data = append(data, '\n')

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		s.logger.Error("creating checkpoint dir", zap.String("dir", s.dir), zap.Error(err))
		return ""
	}

	name := fmt.Sprintf("%s_%s_%s_%s%s", key(inputFile, mode), sanitize(seq), now.Format(timestampLayout), ulid.Make().String(), extension)
	path := filepath.Join(s.dir, name)
	if err := atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
		s.logger.Error("writing checkpoint", zap.String("path", path), zap.Error(err))
		return ""
	}

	s.logger.Info("checkpoint saved",
		zap.String("path", path),
		zap.String("checkpoint", seq),
		zap.Int("total_reviews", len(results)))

	if s.keep > 0 {
		s.Prune(inputFile, mode, s.keep)
	}
	return path
}

// Latest returns the newest readable checkpoint for inputFile and mode.
func (s *FileStore) Latest(inputFile, mode string) (*Checkpoint, bool) {
	for _, e := range s.List(inputFile, mode) {
		data, err := os.ReadFile(e.Path)
		if err != nil {
			s.logger.Warn("reading checkpoint", zap.String("path", e.Path), zap.Error(err))
			continue
		}
		var cp Checkpoint
		if err := json.Unmarshal(data, &cp); err != nil {
			s.logger.Warn("parsing checkpoint", zap.String("path", e.Path), zap.Error(err))
			continue
		}
		return &cp, true
	}
	return nil, false
}

// LoadLatest returns the results and declared count of the newest checkpoint,
// or nil and 0 when there is none.
func (s *FileStore) LoadLatest(inputFile, mode string) ([]models.ReviewRecord, int) {
	cp, ok := s.Latest(inputFile, mode)
	if !ok {
		return nil, 0
	}
	s.logger.Info("checkpoint loaded",
		zap.String("checkpoint", cp.CheckpointNumber),
		zap.Int("total_reviews", cp.TotalReviews))
	return cp.Results, cp.TotalReviews
}

// Prune deletes all but the keep newest checkpoints for inputFile and mode.
func (s *FileStore) Prune(inputFile, mode string, keep int) {
	entries := s.List(inputFile, mode)
	if keep < 0 || len(entries) <= keep {
		return
	}
	for _, e := range entries[keep:] {
		if err := os.Remove(e.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
			s.logger.Warn("removing old checkpoint", zap.String("path", e.Path), zap.Error(err))
			continue
		}
		s.logger.Debug("removed old checkpoint", zap.String("path", e.Path))
	}
}

// List returns the checkpoints for inputFile and mode, newest first.
func (s *FileStore) List(inputFile, mode string) []Entry {
	dirEntries, err := os.ReadDir(s.dir)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.logger.Warn("listing checkpoints", zap.String("dir", s.dir), zap.Error(err))
		}
		return nil
	}

	prefix := key(inputFile, mode)
	var entries []Entry
	for _, de := range dirEntries {
		if de.IsDir() {
			continue
		}
		e, ok := parseName(de.Name(), prefix)
		if !ok {
			continue
		}
		info, err := de.Info()
		if err != nil {
			continue
		}
		e.Path = filepath.Join(s.dir, de.Name())
		e.Size = info.Size()
		e.ModTime = info.ModTime()
		entries = append(entries, e)
	}

	slices.SortFunc(entries, func(a, b Entry) int {
		if c := b.ModTime.Compare(a.ModTime); c != 0 {
			return c
		}
		return strings.Compare(b.id, a.id)
	})
	return entries
}

// parseName splits <prefix>_<seq>_<date>_<time>_<ulid>.json.
func parseName(name, prefix string) (Entry, bool) {
	stem, ok := strings.CutSuffix(name, extension)
	if !ok {
		return Entry{}, false
	}
	parts := strings.Split(stem, "_")
	if len(parts) < 5 {
		return Entry{}, false
	}
	n := len(parts)
	if strings.Join(parts[:n-4], "_") != prefix {
		return Entry{}, false
	}
	if _, err := ulid.ParseStrict(parts[n-1]); err != nil {
		return Entry{}, false
	}
	return Entry{Name: name, Number: parts[n-4], id: parts[n-1]}, true
}

// key is the file name prefix shared by checkpoints of one input file and mode.
func key(inputFile, mode string) string {
	base := filepath.Base(inputFile)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return sanitize(base) + "_" + sanitize(mode)
}

func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', ' ', '.':
			return '-'
		}
		return r
	}, s)
}
