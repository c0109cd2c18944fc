// Package feed turns persisted vibes into a display-ready, cyclable feed.
package feed

import (
	"context"
	"sync"
	"time"

	"vybz/internal/store"
)

// Defaults applied while shaping records for display.
const (
	PlaceholderVisualURL = "https://images.unsplash.com/photo-1579546929518-9e396f3cc809?w=800&q=80"
	DefaultDuration      = 20
)

// AllMoods is the filter value that disables mood filtering.
const AllMoods = "all"

// Item is the display-ready shape of one vibe.
type Item struct {
	ID          int64    `json:"id"`
	Mood        string   `json:"mood"`
	VisualURL   string   `json:"visual_url"`
	AudioURL    string   `json:"audio_url,omitempty"`
	Caption     string   `json:"caption,omitempty"`
	Text        string   `json:"text,omitempty"`
	Tags        []string `json:"tags"`
	TrackName   string   `json:"track_name,omitempty"`
	TrackArtist string   `json:"track_artist,omitempty"`
	Duration    int      `json:"duration"`
	CreatedAt   string   `json:"created_at"`
}

// Source lists persisted vibes, newest first.
type Source interface {
	ListVibes(ctx context.Context) ([]store.Vibe, error)
	ListVibesByMood(ctx context.Context, moodID string) ([]store.Vibe, error)
}

// Transform shapes a persisted vibe for display, defaulting a missing
// visual to the placeholder and a missing duration to DefaultDuration.
func Transform(v store.Vibe) Item {
	item := Item{
		ID:          v.ID,
		Mood:        v.Mood,
		VisualURL:   v.VisualURL,
		AudioURL:    v.TrackAudioURL,
		Caption:     v.Caption,
		Text:        v.Text,
		Tags:        v.Tags,
		TrackName:   v.TrackName,
		TrackArtist: v.TrackArtist,
		Duration:    DefaultDuration,
		CreatedAt:   v.CreatedAt.Format(time.RFC3339),
	}
	if item.VisualURL == "" {
		item.VisualURL = PlaceholderVisualURL
	}
	if item.Tags == nil {
		item.Tags = []string{}
	}
	return item
}

// WrapNext returns the index after current, wrapping past the end to 0.
func WrapNext(current, length int) int {
	if length <= 0 {
		return 0
	}
	if current >= length-1 {
		return 0
	}
	return current + 1
}

// WrapPrevious returns the index before current, wrapping before 0 to the end.
func WrapPrevious(current, length int) int {
	if length <= 0 {
		return 0
	}
	if current <= 0 {
		return length - 1
	}
	return current - 1
}

// Feed is a cursor over the vibe list with wraparound navigation and
// client-side mood filtering. Loading and errors are explicit states.
type Feed struct {
	mu      sync.Mutex
	source  Source
	items   []Item
	index   int
	moodID  string
	loading bool
	err     error
}

// New creates an empty feed backed by source. Call Load before reading.
func New(source Source) *Feed {
	return &Feed{source: source, moodID: AllMoods}
}

// Load fetches the vibe list and resets the cursor.
func (f *Feed) Load(ctx context.Context) error {
	f.mu.Lock()
	f.loading = true
	moodID := f.moodID
	f.mu.Unlock()

	var (
		vibes []store.Vibe
		err   error
	)
	if moodID == AllMoods || moodID == "" {
		vibes, err = f.source.ListVibes(ctx)
	} else {
		vibes, err = f.source.ListVibesByMood(ctx, moodID)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.loading = false
	f.err = err
	if err != nil {
		return err
	}

	f.items = make([]Item, 0, len(vibes))
	for _, v := range vibes {
		f.items = append(f.items, Transform(v))
	}
	f.index = 0
	return nil
}

// Refresh re-fetches and resets the cursor.
func (f *Feed) Refresh(ctx context.Context) error {
	return f.Load(ctx)
}

// FilterByMood switches the mood filter and re-fetches; the cursor resets
// to the first item.
func (f *Feed) FilterByMood(ctx context.Context, moodID string) error {
	f.mu.Lock()
	f.moodID = moodID
	f.mu.Unlock()
	return f.Load(ctx)
}

// Current returns the item under the cursor, false when empty.
func (f *Feed) Current() (Item, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.items) == 0 {
		return Item{}, false
	}
	return f.items[f.index], true
}

// Next moves the cursor forward, wrapping past the last item to the first.
func (f *Feed) Next() (Item, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.items) == 0 {
		return Item{}, false
	}
	f.index = WrapNext(f.index, len(f.items))
	return f.items[f.index], true
}

// Previous moves the cursor backward, wrapping before the first item to the
// last.
func (f *Feed) Previous() (Item, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.items) == 0 {
		return Item{}, false
	}
	f.index = WrapPrevious(f.index, len(f.items))
	return f.items[f.index], true
}

// Index returns the cursor position.
func (f *Feed) Index() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.index
}

// Len returns the number of loaded items.
func (f *Feed) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.items)
}

// Loading reports whether a fetch is in progress.
func (f *Feed) Loading() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loading
}

// Err returns the error from the most recent fetch, if any.
func (f *Feed) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}
