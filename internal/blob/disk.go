package blob

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DiskStore keeps blobs on the local filesystem and serves them through the
// HTTP server's /media/ route.
type DiskStore struct {
	baseDir string
	baseURL string
}

// NewDiskStore creates a DiskStore rooted at baseDir. baseURL is the public
// prefix resolved URLs are built from, e.g. "http://localhost:8080/media".
func NewDiskStore(baseDir, baseURL string) (*DiskStore, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create blob dir: %w", err)
	}
	return &DiskStore{
		baseDir: baseDir,
		baseURL: strings.TrimRight(baseURL, "/"),
	}, nil
}

// Put implements Store.
func (s *DiskStore) Put(ctx context.Context, path string, data []byte, contentType string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	clean, err := s.cleanPath(path)
	if err != nil {
		return err
	}
	full := filepath.Join(s.baseDir, filepath.FromSlash(clean))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return fmt.Errorf("create blob path: %w", err)
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return fmt.Errorf("write blob: %w", err)
	}
	return nil
}

// PublicURL implements Store.
func (s *DiskStore) PublicURL(path string) string {
	clean, err := s.cleanPath(path)
	if err != nil {
		return ""
	}
	return s.baseURL + "/" + clean
}

// Dir returns the directory blobs are stored under, for wiring a file server.
func (s *DiskStore) Dir() string {
	return s.baseDir
}

func (s *DiskStore) cleanPath(path string) (string, error) {
	clean := filepath.ToSlash(filepath.Clean("/" + path))
	clean = strings.TrimPrefix(clean, "/")
	if clean == "" || clean == "." || strings.HasPrefix(clean, "..") {
		return "", fmt.Errorf("invalid blob path %q", path)
	}
	return clean, nil
}
