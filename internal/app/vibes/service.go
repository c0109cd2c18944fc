// Package vibes exposes read access to persisted vibes.
package vibes

import (
	"context"

	"vybz/internal/store"
)

// Gateway defines the persistence operations required for vibe reads.
type Gateway interface {
	ListVibes(ctx context.Context) ([]store.Vibe, error)
	ListVibesByMood(ctx context.Context, moodID string) ([]store.Vibe, error)
	ListVibesByUser(ctx context.Context, userID int64) ([]store.Vibe, error)
	GetVibe(ctx context.Context, id int64) (store.Vibe, error)
}

// Service describes the vibe read operations used by HTTP handlers.
type Service interface {
	List(ctx context.Context) ([]store.Vibe, error)
	ListByMood(ctx context.Context, moodID string) ([]store.Vibe, error)
	ListByUser(ctx context.Context, userID int64) ([]store.Vibe, error)
	Get(ctx context.Context, id int64) (store.Vibe, error)
}

type service struct {
	gateway Gateway
}

// New constructs a vibes Service backed by the persistence gateway.
func New(gw Gateway) Service {
	return &service{gateway: gw}
}

func (s *service) List(ctx context.Context) ([]store.Vibe, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.gateway.ListVibes(ctx)
}

func (s *service) ListByMood(ctx context.Context, moodID string) ([]store.Vibe, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.gateway.ListVibesByMood(ctx, moodID)
}

func (s *service) ListByUser(ctx context.Context, userID int64) ([]store.Vibe, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.gateway.ListVibesByUser(ctx, userID)
}

func (s *service) Get(ctx context.Context, id int64) (store.Vibe, error) {
	if err := ctx.Err(); err != nil {
		return store.Vibe{}, err
	}
	return s.gateway.GetVibe(ctx, id)
}
