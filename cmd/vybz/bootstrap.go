package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"vybz/internal/store"
)

const (
	demoEmail    = "demo@vybz.app"
	demoPassword = "demo123"
	demoName     = "Demo"
)

func bootstrapDemoData(ctx context.Context, db *sql.DB, dataStore *store.Store) error {
	user, err := ensureDemoUser(ctx, db, dataStore)
	if err != nil {
		return err
	}
	return ensureDemoVibes(ctx, db, dataStore, user)
}

func ensureDemoUser(ctx context.Context, db *sql.DB, dataStore *store.Store) (store.User, error) {
	user, err := dataStore.CreateUser(ctx, demoEmail, demoPassword, demoName)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, store.ErrUserExists) {
		return store.User{}, fmt.Errorf("bootstrap demo user: %w", err)
	}

	if err := db.QueryRowContext(ctx, `
		SELECT id, email, name, created_at
		FROM users
		WHERE email = $1
	`, demoEmail).Scan(&user.ID, &user.Email, &user.Name, &user.CreatedAt); err != nil {
		return store.User{}, fmt.Errorf("lookup demo user: %w", err)
	}
	return user, nil
}

func ensureDemoVibes(ctx context.Context, db *sql.DB, dataStore *store.Store, user store.User) error {
	vibesTableExists, err := tableExists(ctx, db, "vibes")
	if err != nil {
		return fmt.Errorf("check vibes table: %w", err)
	}
	if !vibesTableExists {
		return nil
	}

	var count int
	if err := db.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM vibes
		WHERE user_id = $1
	`, user.ID).Scan(&count); err != nil {
		return fmt.Errorf("count demo vibes: %w", err)
	}
	if count > 0 {
		return nil
	}

	seeds := []store.Vibe{
		{
			UserID:        user.ID,
			Mood:          "zen-mode",
			VisualURL:     "https://picsum.photos/seed/zen-demo/800/1200",
			Caption:       "sunday reset",
			Text:          "Tea, rain on the window, nowhere to be.",
			Tags:          []string{"calm", "slowliving"},
			SoundLayers:   []string{"nature-sounds"},
			VisualFilters: []string{"soft-light"},
			TrackID:       "demo-zen-1",
			TrackName:     "Still Water",
			TrackArtist:   "Floating Lanterns",
			TrackImageURL: "https://picsum.photos/seed/zen-demo-track/300/300",
		},
		{
			UserID:        user.ID,
			Mood:          "chaotic-energy",
			VisualURL:     "https://picsum.photos/seed/chaos-demo/800/1200",
			Caption:       "3am brain",
			Tags:          []string{"unhinged"},
			SoundLayers:   []string{"glitch-beats"},
			VisualFilters: []string{"glitch"},
			TrackID:       "demo-chaos-1",
			TrackName:     "Wire Crossed",
			TrackArtist:   "Neon Static",
			TrackImageURL: "https://picsum.photos/seed/chaos-demo-track/300/300",
		},
		{
			UserID:    user.ID,
			Mood:      "nostalgia-core",
			VisualURL: "https://picsum.photos/seed/nostalgia-demo/800/1200",
			Text:      "Found a shoebox of old photos today.",
			Tags:      []string{"throwback", "memories"},
		},
	}

	for _, seed := range seeds {
		if _, err := dataStore.InsertVibe(ctx, seed); err != nil {
			return fmt.Errorf("insert demo vibe %q: %w", seed.Caption, err)
		}
	}
	return nil
}

func tableExists(ctx context.Context, db *sql.DB, table string) (bool, error) {
	var name sql.NullString
	if err := db.QueryRowContext(ctx, `SELECT to_regclass($1)`, table).Scan(&name); err != nil {
		return false, err
	}
	return name.Valid, nil
}
