package storage

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"time"
)

// MemoryStorage is a FileStorage for local runs without a bucket. Handing out
// an upload URL counts as the upload itself, since nothing will receive the PUT.
type MemoryStorage struct {
	baseURL string

	mu      sync.Mutex
	objects map[string]string // key -> content type
}

func NewMemoryStorage(baseURL string) *MemoryStorage {
	return &MemoryStorage{
		baseURL: baseURL,
		objects: make(map[string]string),
	}
}

func (m *MemoryStorage) GeneratePresignedUploadURL(_ context.Context, objectKey string, contentType string, expires time.Duration) (string, error) {
	if objectKey == "" {
		return "", fmt.Errorf("empty object key")
	}
	m.mu.Lock()
	m.objects[objectKey] = contentType
	m.mu.Unlock()
	return m.url(objectKey, "put", expires), nil
}

func (m *MemoryStorage) GeneratePresignedDownloadURL(_ context.Context, objectKey string, expires time.Duration) (string, error) {
	if objectKey == "" {
		return "", fmt.Errorf("empty object key")
	}
	return m.url(objectKey, "get", expires), nil
}

func (m *MemoryStorage) DeleteObject(_ context.Context, objectKey string) error {
	m.mu.Lock()
	delete(m.objects, objectKey)
	m.mu.Unlock()
	return nil
}

func (m *MemoryStorage) ObjectExists(_ context.Context, objectKey string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.objects[objectKey]
	return ok, nil
}

func (m *MemoryStorage) url(objectKey, op string, expires time.Duration) string {
	if expires <= 0 {
		expires = DefaultPresignedURLExpiry
	}
	q := url.Values{}
	q.Set("op", op)
	q.Set("expires", expires.String())
	return fmt.Sprintf("%s/%s?%s", m.baseURL, url.PathEscape(objectKey), q.Encode())
}
