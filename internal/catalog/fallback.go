package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"vybz/internal/mood"
)

// fallbackAudioURL points at a silent clip so degraded results stay playable.
const fallbackAudioURL = "https://github.com/anars/blank-audio/raw/master/15-seconds-of-silence.mp3"

// fallbackArtists maps a mood's search phrase to a trio of synthetic artists.
var fallbackArtists = map[string][]string{
	"ambient melancholic hopeful": {"Ambient Dreams", "Hope Horizon", "Melancholy Waves"},
	"electronic upbeat energetic": {"Electric Pulse", "Beat Makers", "Energy Flow"},
	"dark intense dramatic":       {"Dark Matter", "Intensity", "Drama Kings"},
	"retro nostalgic warm":        {"Retro Vibes", "Nostalgia Trip", "Warm Memories"},
	"calm meditation ambient":     {"Calm Waters", "Meditation Masters", "Ambient Sounds"},
	"epic cinematic motivational": {"Epic Orchestra", "Cinema Sounds", "Motivation Masters"},
}

// FallbackTracks synthesizes a deterministic result set for a search term.
// The same term and limit always produce identical tracks, which keeps the
// degraded path testable without network mocking.
func FallbackTracks(searchTerm string, limit int) []Track {
	if limit <= 0 {
		limit = DefaultLimit
	}

	artists, ok := fallbackArtists[searchTerm]
	if !ok {
		artists = []string{"Artist One", "Artist Two", "Artist Three"}
	}

	firstWord := searchTerm
	if i := strings.IndexByte(searchTerm, ' '); i > 0 {
		firstWord = searchTerm[:i]
	}
	titleWord := capitalize(firstWord)

	tracks := make([]Track, 0, limit)
	for i := 0; i < limit; i++ {
		artist := artists[i%len(artists)]
		title := fmt.Sprintf("%s Track %d", titleWord, i+1)
		slug := strings.ReplaceAll(strings.ToLower(title), " ", "-")
		tracks = append(tracks, Track{
			ID:          fmt.Sprintf("mock-track-%s-%d", searchTerm, i),
			Title:       title,
			Artist:      artist,
			Album:       artist + " Album",
			Provider:    ProviderJamendo,
			ImageURL:    fmt.Sprintf("https://picsum.photos/seed/%s-%d/300", searchTerm, i),
			AudioURL:    fallbackAudioURL,
			ExternalURL: fmt.Sprintf("https://www.jamendo.com/track/%d/%s", i, slug),
			Duration:    180 + (i*37)%120,
		})
	}
	return tracks
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// fallbackClient wraps a primary Client and degrades to synthetic results
// when the primary fails.
type fallbackClient struct {
	primary Client
}

// WithFallback decorates a client with the two-tier degradation contract:
// primary call first, deterministic fallback generation on failure. The
// fallback uses the same Track shape, so consumers need no branching.
func WithFallback(primary Client) Client {
	return &fallbackClient{primary: primary}
}

func (c *fallbackClient) SearchByMood(ctx context.Context, moodOrQuery string, limit int) ([]Track, error) {
	tracks, err := c.primary.SearchByMood(ctx, moodOrQuery, limit)
	if err == nil {
		return tracks, nil
	}
	// Respect caller cancellation; a canceled search must not degrade.
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	query, _ := mood.SearchQuery(moodOrQuery)
	log.Warn().Err(err).Str("query", query).Msg("catalog search failed, serving fallback tracks")
	return FallbackTracks(query, limit), nil
}
