// Package storage talks to the Supabase storage bucket input sheets are read
// from and generated reviews are published to.
package storage

import (
	"bytes"
	"fmt"
	"path"
	"strings"

	storage_go "github.com/supabase-community/storage-go"
)

// placeholder is the marker object Supabase keeps in empty folders.
const placeholder = ".emptyFolderPlaceholder"

// Bucket is the subset of object storage the generator uses.
type Bucket interface {
	Upload(objectPath string, data []byte, contentType string) error
	Download(objectPath string) ([]byte, error)
	List(prefix string) ([]string, error)
	Move(from, to string) error
}

// Supabase is a Bucket backed by a Supabase storage bucket.
type Supabase struct {
	client *storage_go.Client
	bucket string
}

// NewSupabase creates a Bucket for bucket at projectURL. projectURL is the
// project URL with or without the /storage/v1 suffix.
func NewSupabase(projectURL, key, bucket string) *Supabase {
	url := strings.TrimRight(projectURL, "/")
	if !strings.HasSuffix(url, "/storage/v1") {
		url += "/storage/v1"
	}
	return &Supabase{
		client: storage_go.NewClient(url, key, nil),
		bucket: bucket,
	}
}

// Upload stores data at objectPath, replacing an existing object.
func (s *Supabase) Upload(objectPath string, data []byte, contentType string) error {
	upsert := true
	_, err := s.client.UploadFile(s.bucket, objectPath, bytes.NewReader(data), storage_go.FileOptions{
		ContentType: &contentType,
		Upsert:      &upsert,
	})
	if err != nil {
		return fmt.Errorf("uploading %s: %w", objectPath, err)
	}
	return nil
}

// Download fetches the object at objectPath.
func (s *Supabase) Download(objectPath string) ([]byte, error) {
	data, err := s.client.DownloadFile(s.bucket, objectPath)
	if err != nil {
		return nil, fmt.Errorf("downloading %s: %w", objectPath, err)
	}
	return data, nil
}

// List returns the object paths under prefix, newest first.
func (s *Supabase) List(prefix string) ([]string, error) {
	files, err := s.client.ListFiles(s.bucket, prefix, storage_go.FileSearchOptions{
		SortByOptions: storage_go.SortBy{
			Column: "created_at",
			Order:  "desc",
		},
	})
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", prefix, err)
	}

	var names []string
	for _, f := range files {
		if f.Name == "" || f.Name == placeholder {
			continue
		}
		names = append(names, path.Join(prefix, f.Name))
	}
	return names, nil
}

// Move renames the object at from to to.
func (s *Supabase) Move(from, to string) error {
	if _, err := s.client.MoveFile(s.bucket, from, to); err != nil {
		return fmt.Errorf("moving %s to %s: %w", from, to, err)
	}
	return nil
}
