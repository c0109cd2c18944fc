package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"vybz/internal/mood"
)

var (
	// ErrVibeNotFound indicates the requested vibe does not exist.
	ErrVibeNotFound = errors.New("vibe not found")
	// ErrInvalidVibe indicates the record is missing required fields.
	ErrInvalidVibe = errors.New("invalid vibe")
)

// CaptionMaxLen and TextMaxLen bound the free-form fields.
const (
	CaptionMaxLen = 100
	TextMaxLen    = 500
)

// Vibe is a persisted composed post. It is written exactly once per
// successful submission and never mutated afterwards.
type Vibe struct {
	ID               int64     `json:"id"`
	UserID           int64     `json:"user_id"`
	Mood             string    `json:"mood"`
	VisualURL        string    `json:"visual_url"`
	Caption          string    `json:"caption,omitempty"`
	Text             string    `json:"text,omitempty"`
	Tags             []string  `json:"tags"`
	SoundLayers      []string  `json:"sound_layers"`
	VisualFilters    []string  `json:"visual_filters"`
	TrackID          string    `json:"track_id,omitempty"`
	TrackName        string    `json:"track_name,omitempty"`
	TrackArtist      string    `json:"track_artist,omitempty"`
	TrackImageURL    string    `json:"track_image_url,omitempty"`
	TrackAudioURL    string    `json:"track_audio_url,omitempty"`
	TrackExternalURL string    `json:"track_external_url,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

const vibeColumns = `
	id, user_id, mood, visual_url, caption, text, tags, sound_layers, visual_filters,
	track_id, track_name, track_artist, track_image_url, track_audio_url, track_external_url,
	created_at`

func validateVibe(v Vibe) error {
	if !mood.Valid(mood.Mood(v.Mood)) {
		return fmt.Errorf("%w: unknown mood %q", ErrInvalidVibe, v.Mood)
	}
	if strings.TrimSpace(v.VisualURL) == "" {
		return fmt.Errorf("%w: visual_url is required", ErrInvalidVibe)
	}
	if len(v.Caption) > CaptionMaxLen {
		return fmt.Errorf("%w: caption exceeds %d characters", ErrInvalidVibe, CaptionMaxLen)
	}
	if len(v.Text) > TextMaxLen {
		return fmt.Errorf("%w: text exceeds %d characters", ErrInvalidVibe, TextMaxLen)
	}
	return nil
}

// InsertVibe persists a composed vibe and returns it with id and created_at.
func (s *Store) InsertVibe(ctx context.Context, v Vibe) (Vibe, error) {
	if err := validateVibe(v); err != nil {
		return Vibe{}, err
	}

	err := s.db.QueryRowContext(ctx, `
		INSERT INTO vibes (user_id, mood, visual_url, caption, text, tags, sound_layers, visual_filters,
			track_id, track_name, track_artist, track_image_url, track_audio_url, track_external_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id, created_at
	`, v.UserID, v.Mood, v.VisualURL, v.Caption, v.Text,
		pq.Array(normalizeList(v.Tags)), pq.Array(normalizeList(v.SoundLayers)), pq.Array(normalizeList(v.VisualFilters)),
		v.TrackID, v.TrackName, v.TrackArtist, v.TrackImageURL, v.TrackAudioURL, v.TrackExternalURL,
	).Scan(&v.ID, &v.CreatedAt)
	if err != nil {
		return Vibe{}, fmt.Errorf("insert vibe: %w", err)
	}

	return v, nil
}

// ListVibes returns all vibes, newest first.
func (s *Store) ListVibes(ctx context.Context) ([]Vibe, error) {
	return s.queryVibes(ctx, `
		SELECT`+vibeColumns+`
		FROM vibes
		ORDER BY created_at DESC
	`)
}

// ListVibesByMood returns vibes for one mood, newest first.
func (s *Store) ListVibesByMood(ctx context.Context, moodID string) ([]Vibe, error) {
	return s.queryVibes(ctx, `
		SELECT`+vibeColumns+`
		FROM vibes
		WHERE mood = $1
		ORDER BY created_at DESC
	`, moodID)
}

// ListVibesByUser returns one user's vibes, newest first.
func (s *Store) ListVibesByUser(ctx context.Context, userID int64) ([]Vibe, error) {
	return s.queryVibes(ctx, `
		SELECT`+vibeColumns+`
		FROM vibes
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
}

// GetVibe fetches a single vibe by id.
func (s *Store) GetVibe(ctx context.Context, id int64) (Vibe, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT`+vibeColumns+`
		FROM vibes
		WHERE id = $1
	`, id)

	v, err := scanVibe(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Vibe{}, ErrVibeNotFound
		}
		return Vibe{}, fmt.Errorf("select vibe: %w", err)
	}
	return v, nil
}

func (s *Store) queryVibes(ctx context.Context, query string, args ...any) ([]Vibe, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select vibes: %w", err)
	}
	defer rows.Close()

	var vibes []Vibe
	for rows.Next() {
		v, err := scanVibe(rows)
		if err != nil {
			return nil, fmt.Errorf("scan vibe: %w", err)
		}
		vibes = append(vibes, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate vibes: %w", err)
	}
	return vibes, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanVibe(row rowScanner) (Vibe, error) {
	var v Vibe
	err := row.Scan(
		&v.ID, &v.UserID, &v.Mood, &v.VisualURL, &v.Caption, &v.Text,
		pq.Array(&v.Tags), pq.Array(&v.SoundLayers), pq.Array(&v.VisualFilters),
		&v.TrackID, &v.TrackName, &v.TrackArtist, &v.TrackImageURL, &v.TrackAudioURL, &v.TrackExternalURL,
		&v.CreatedAt,
	)
	return v, err
}

// normalizeList keeps array columns non-null.
func normalizeList(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
