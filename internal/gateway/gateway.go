// Package gateway is the persistence boundary for composed vibes: it uploads
// media to object storage and reads/writes vibe records. No operation
// retries automatically; retrying is a caller action.
package gateway

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"vybz/internal/blob"
	"vybz/internal/store"
)

// UploadError reports a rejected media upload. The current submit attempt
// fails; the draft stays intact so the user can retry.
type UploadError struct {
	Message string
	Err     error
}

func (e *UploadError) Error() string { return "upload media: " + e.Message }
func (e *UploadError) Unwrap() error { return e.Err }

// WriteError reports a failed vibe record write. Same retry policy as
// UploadError.
type WriteError struct {
	Message string
	Err     error
}

func (e *WriteError) Error() string { return "save vibe: " + e.Message }
func (e *WriteError) Unwrap() error { return e.Err }

// VibeStore is the record-store surface the gateway needs.
type VibeStore interface {
	InsertVibe(ctx context.Context, v store.Vibe) (store.Vibe, error)
	ListVibes(ctx context.Context) ([]store.Vibe, error)
	ListVibesByMood(ctx context.Context, moodID string) ([]store.Vibe, error)
	ListVibesByUser(ctx context.Context, userID int64) ([]store.Vibe, error)
	GetVibe(ctx context.Context, id int64) (store.Vibe, error)
}

// Gateway couples the blob store and the vibe record store.
type Gateway struct {
	blobs blob.Store
	vibes VibeStore
	now   func() time.Time
}

// New wires a Gateway to its two backends.
func New(blobs blob.Store, vibes VibeStore) *Gateway {
	return &Gateway{blobs: blobs, vibes: vibes, now: time.Now}
}

// UploadMedia stores media bytes under a collision-resistant path derived
// from pathHint (a namespace segment plus file extension, e.g.
// "jamendo/visual.jpg") and returns the public URL.
func (g *Gateway) UploadMedia(ctx context.Context, data []byte, contentType, pathHint string) (string, error) {
	if len(data) == 0 {
		return "", &UploadError{Message: "empty media payload"}
	}

	path := g.buildPath(pathHint)
	if err := g.blobs.Put(ctx, path, data, contentType); err != nil {
		return "", &UploadError{Message: err.Error(), Err: err}
	}
	return g.blobs.PublicURL(path), nil
}

// SaveVibe writes the composed record and returns it with id and created_at.
func (g *Gateway) SaveVibe(ctx context.Context, v store.Vibe) (store.Vibe, error) {
	saved, err := g.vibes.InsertVibe(ctx, v)
	if err != nil {
		return store.Vibe{}, &WriteError{Message: err.Error(), Err: err}
	}
	return saved, nil
}

// ListVibes returns all vibes, newest first.
func (g *Gateway) ListVibes(ctx context.Context) ([]store.Vibe, error) {
	return g.vibes.ListVibes(ctx)
}

// ListVibesByMood returns vibes for one mood, newest first.
func (g *Gateway) ListVibesByMood(ctx context.Context, moodID string) ([]store.Vibe, error) {
	return g.vibes.ListVibesByMood(ctx, moodID)
}

// ListVibesByUser returns one user's vibes, newest first.
func (g *Gateway) ListVibesByUser(ctx context.Context, userID int64) ([]store.Vibe, error) {
	return g.vibes.ListVibesByUser(ctx, userID)
}

// GetVibe fetches one vibe; store.ErrVibeNotFound when absent.
func (g *Gateway) GetVibe(ctx context.Context, id int64) (store.Vibe, error) {
	return g.vibes.GetVibe(ctx, id)
}

// buildPath turns "jamendo/visual.jpg" into
// "vibes/jamendo/<unix-ms>-<uuid>.jpg".
func (g *Gateway) buildPath(pathHint string) string {
	namespace := "uploads"
	name := strings.Trim(pathHint, "/")
	if i := strings.LastIndexByte(name, '/'); i >= 0 {
		namespace = name[:i]
		name = name[i+1:]
	}

	ext := "bin"
	if i := strings.LastIndexByte(name, '.'); i >= 0 && i < len(name)-1 {
		ext = name[i+1:]
	}

	return fmt.Sprintf("vibes/%s/%d-%s.%s", namespace, g.now().UnixMilli(), uuid.NewString(), ext)
}
