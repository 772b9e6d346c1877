package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"sync"
	"time"
)

// MemoryStorage keeps files in a map. Used with STORAGE_TYPE=memory and in tests.
type MemoryStorage struct {
	mu      sync.RWMutex
	files   map[string][]byte
	baseURL string
}

func NewMemoryStorage(baseURL string) *MemoryStorage {
	return &MemoryStorage{
		files:   make(map[string][]byte),
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

func memoryKey(p string) (string, error) {
	key := path.Clean("/" + strings.ReplaceAll(p, "\\", "/"))[1:]
	if key == "" {
		return "", fmt.Errorf("%w: %s", ErrInvalidPath, p)
	}
	return key, nil
}

func (s *MemoryStorage) Upload(ctx context.Context, file io.Reader, p string, contentType string) (string, error) {
	key, err := memoryKey(p)
	if err != nil {
		return "", err
	}
	data, err := io.ReadAll(file)
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[key] = data
	return key, nil
}

func (s *MemoryStorage) Download(ctx context.Context, p string) (io.ReadCloser, error) {
	key, err := memoryKey(p)
	if err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.files[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrFileNotFound, p)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *MemoryStorage) Delete(ctx context.Context, p string) error {
	key, err := memoryKey(p)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.files, key)
	return nil
}

func (s *MemoryStorage) GetURL(ctx context.Context, p string, expiry time.Duration) (string, error) {
	key, err := memoryKey(p)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s/%s", s.baseURL, key), nil
}

// Len reports how many files are stored.
func (s *MemoryStorage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.files)
}
