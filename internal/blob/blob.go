// Package blob abstracts the object storage that media uploads land in.
package blob

import "context"

// Store is the object storage surface the persistence gateway consumes.
type Store interface {
	// Put writes data under path with the given content type. Paths use
	// forward slashes regardless of platform.
	Put(ctx context.Context, path string, data []byte, contentType string) error
	// PublicURL resolves the externally reachable URL for a stored path.
	PublicURL(path string) string
}
