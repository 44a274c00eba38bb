package storage

import (
	"fmt"
	"path"
	"slices"
	"strings"
	"sync"
)

// Memory is an in-process Bucket. It backs tests and dry runs.
type Memory struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
	order   []string
}

// NewMemory returns an empty Memory bucket.
func NewMemory() *Memory {
	return &Memory{objects: make(map[string][]byte), types: make(map[string]string)}
}

func (m *Memory) Upload(objectPath string, data []byte, contentType string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.objects[objectPath]; !ok {
		m.order = append(m.order, objectPath)
	}
	m.objects[objectPath] = slices.Clone(data)
	m.types[objectPath] = contentType
	return nil
}

func (m *Memory) Download(objectPath string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[objectPath]
	if !ok {
		return nil, fmt.Errorf("object %s not found", objectPath)
	}
	return slices.Clone(data), nil
}

// List returns the objects directly under prefix, newest first.
func (m *Memory) List(prefix string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	dir := strings.TrimSuffix(prefix, "/")
	var names []string
	for i := len(m.order) - 1; i >= 0; i-- {
		if path.Dir(m.order[i]) == dir {
			names = append(names, m.order[i])
		}
	}
	return names, nil
}

func (m *Memory) Move(from, to string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[from]
	if !ok {
		return fmt.Errorf("object %s not found", from)
	}
	m.objects[to] = data
	m.types[to] = m.types[from]
	delete(m.objects, from)
	delete(m.types, from)
	m.order = slices.DeleteFunc(m.order, func(p string) bool { return p == from || p == to })
	m.order = append(m.order, to)
	return nil
}

// ContentType returns the content type objectPath was uploaded with.
func (m *Memory) ContentType(objectPath string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.types[objectPath]
}
