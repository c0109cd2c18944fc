package catalog

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

type failingClient struct {
	err error
}

func (c *failingClient) SearchByMood(ctx context.Context, moodOrQuery string, limit int) ([]Track, error) {
	return nil, c.err
}

type staticClient struct {
	tracks []Track
}

func (c *staticClient) SearchByMood(ctx context.Context, moodOrQuery string, limit int) ([]Track, error) {
	return c.tracks, nil
}

func TestFallbackTracksDeterministic(t *testing.T) {
	first := FallbackTracks("calm meditation ambient", 5)
	second := FallbackTracks("calm meditation ambient", 5)
	if !reflect.DeepEqual(first, second) {
		t.Fatal("expected identical results for the same term")
	}
	if len(first) != 5 {
		t.Fatalf("expected 5 tracks, got %d", len(first))
	}

	if first[0].ID != "mock-track-calm meditation ambient-0" {
		t.Fatalf("unexpected id %q", first[0].ID)
	}
	if first[0].Title != "Calm Track 1" {
		t.Fatalf("unexpected title %q", first[0].Title)
	}
	if first[0].Artist != "Calm Waters" {
		t.Fatalf("unexpected artist %q", first[0].Artist)
	}
	if first[1].Artist != "Meditation Masters" {
		t.Fatalf("unexpected second artist %q", first[1].Artist)
	}

	for i, track := range first {
		if track.AudioURL == "" {
			t.Fatalf("track %d missing audio url", i)
		}
		if track.Duration < 180 || track.Duration >= 300 {
			t.Fatalf("track %d duration %d out of range", i, track.Duration)
		}
	}
}

func TestFallbackTracksUnknownTerm(t *testing.T) {
	tracks := FallbackTracks("obscure search", 3)
	if len(tracks) != 3 {
		t.Fatalf("expected 3 tracks, got %d", len(tracks))
	}
	if tracks[0].Artist != "Artist One" {
		t.Fatalf("unexpected artist %q", tracks[0].Artist)
	}
}

func TestWithFallbackPassesThroughOnSuccess(t *testing.T) {
	want := []Track{{ID: "real", Title: "Real Track", Provider: ProviderJamendo}}
	client := WithFallback(&staticClient{tracks: want})

	got, err := client.SearchByMood(context.Background(), "zen-mode", 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected primary results, got %+v", got)
	}
}

func TestWithFallbackDegradesOnError(t *testing.T) {
	client := WithFallback(&failingClient{err: errors.New("api down")})

	tracks, err := client.SearchByMood(context.Background(), "zen-mode", 4)
	if err != nil {
		t.Fatalf("expected degraded success, got %v", err)
	}
	if len(tracks) != 4 {
		t.Fatalf("expected 4 fallback tracks, got %d", len(tracks))
	}
	// The mood resolves to its search phrase before generation.
	if tracks[0].ID != "mock-track-calm meditation ambient-0" {
		t.Fatalf("unexpected fallback id %q", tracks[0].ID)
	}
}

func TestWithFallbackRespectsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := WithFallback(&failingClient{err: errors.New("api down")})
	if _, err := client.SearchByMood(ctx, "zen-mode", 4); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		seconds int
		want    string
	}{
		{0, "0:00"},
		{59, "0:59"},
		{60, "1:00"},
		{214, "3:34"},
		{600, "10:00"},
	}
	for _, tt := range tests {
		if got := FormatDuration(tt.seconds); got != tt.want {
			t.Fatalf("FormatDuration(%d) = %q, want %q", tt.seconds, got, tt.want)
		}
	}
}
