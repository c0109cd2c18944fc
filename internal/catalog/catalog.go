// Package catalog provides clients for external music catalogs and
// normalizes their search results into a single Track shape.
package catalog

import (
	"context"
	"errors"
	"fmt"
)

// Provider names a music catalog backend.
type Provider string

const (
	ProviderJamendo Provider = "jamendo"
	ProviderAudius  Provider = "audius"
	ProviderSpotify Provider = "spotify"
)

// ErrCatalogUnavailable signals that the catalog could not be reached and no
// fallback result set could be synthesized. Callers surface it as an inline
// error state, not a fatal one.
var ErrCatalogUnavailable = errors.New("catalog unavailable")

// Track is a normalized external search result. A subset of its fields is
// copied by value into a vibe draft when the user selects it.
type Track struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Artist      string   `json:"artist"`
	Album       string   `json:"album,omitempty"`
	Provider    Provider `json:"provider"`
	ImageURL    string   `json:"image_url,omitempty"`
	AudioURL    string   `json:"audio_url,omitempty"`
	ExternalURL string   `json:"external_url,omitempty"`
	Duration    int      `json:"duration"` // seconds
}

// Client searches a music catalog. Each call issues a fresh query; result
// ordering is whatever the backing API returns.
type Client interface {
	// SearchByMood resolves a mood id to its mapped search phrase (or uses
	// the raw string when unmapped) and returns up to limit tracks.
	SearchByMood(ctx context.Context, moodOrQuery string, limit int) ([]Track, error)
}

// DefaultLimit is used when callers pass a non-positive limit.
const DefaultLimit = 10

// FormatDuration renders a duration in seconds as M:SS.
func FormatDuration(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}
