package blob

import (
	"context"
	"strings"
	"sync"
)

// Object is a stored in-memory blob.
type Object struct {
	Data        []byte
	ContentType string
}

// MemoryStore is an in-memory Store used in tests and local development.
type MemoryStore struct {
	mu      sync.RWMutex
	objects map[string]Object
	baseURL string

	// PutErr, when set, is returned by every Put. Tests use it to force
	// the upload-failure path.
	PutErr error
}

// NewMemoryStore creates an empty MemoryStore with the given public prefix.
func NewMemoryStore(baseURL string) *MemoryStore {
	return &MemoryStore{
		objects: make(map[string]Object),
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// Put implements Store.
func (s *MemoryStore) Put(ctx context.Context, path string, data []byte, contentType string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.PutErr != nil {
		return s.PutErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := make([]byte, len(data))
	copy(cp, data)
	s.objects[path] = Object{Data: cp, ContentType: contentType}
	return nil
}

// PublicURL implements Store.
func (s *MemoryStore) PublicURL(path string) string {
	return s.baseURL + "/" + strings.TrimPrefix(path, "/")
}

// Get returns a stored object and whether it exists.
func (s *MemoryStore) Get(path string) (Object, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	obj, ok := s.objects[path]
	return obj, ok
}

// Len reports the number of stored objects.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}
