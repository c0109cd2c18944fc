// Package users exposes account and session workflows to the HTTP layer.
package users

import (
	"context"

	"vybz/internal/store"
)

// Store defines the persistence operations required for user workflows.
type Store interface {
	CreateUser(ctx context.Context, email, password, name string) (store.User, error)
	Authenticate(ctx context.Context, email, password string) (string, store.User, error)
	UserByToken(ctx context.Context, token string) (store.User, error)
	DeleteSession(ctx context.Context, token string) error
}

// Service describes high level account operations used by HTTP handlers.
type Service interface {
	Register(ctx context.Context, email, password, name string) (string, store.User, error)
	Login(ctx context.Context, email, password string) (string, store.User, error)
	Logout(ctx context.Context, token string) error
	CurrentUser(ctx context.Context, token string) (store.User, error)
}

type service struct {
	store Store
}

// New constructs a users Service backed by the given store.
func New(st Store) Service {
	return &service{store: st}
}

// Register creates the account and immediately authenticates it, mirroring
// the sign-up flow that hands the client a ready session.
func (s *service) Register(ctx context.Context, email, password, name string) (string, store.User, error) {
	if err := ctx.Err(); err != nil {
		return "", store.User{}, err
	}
	if _, err := s.store.CreateUser(ctx, email, password, name); err != nil {
		return "", store.User{}, err
	}
	return s.store.Authenticate(ctx, email, password)
}

func (s *service) Login(ctx context.Context, email, password string) (string, store.User, error) {
	if err := ctx.Err(); err != nil {
		return "", store.User{}, err
	}
	return s.store.Authenticate(ctx, email, password)
}

func (s *service) Logout(ctx context.Context, token string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.store.DeleteSession(ctx, token)
}

func (s *service) CurrentUser(ctx context.Context, token string) (store.User, error) {
	if err := ctx.Err(); err != nil {
		return store.User{}, err
	}
	return s.store.UserByToken(ctx, token)
}
