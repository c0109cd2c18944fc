// Package composer implements the two-phase vibe creation workflow: mood
// selection, then composition of track, media, text, and tag choices into a
// draft that is validated and submitted through the persistence gateway.
package composer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"vybz/internal/catalog"
	"vybz/internal/media"
	"vybz/internal/mood"
	"vybz/internal/store"
)

// State names a workflow phase.
type State string

const (
	StateMoodSelection State = "mood_selection"
	StateComposing     State = "composing"
	StateSubmitting    State = "submitting"
	StateSubmitted     State = "submitted"
	StateFailed        State = "failed"
)

var (
	// ErrValidation indicates the minimum-field invariant does not hold.
	// It is a purely local precondition and is never sent to the backend.
	ErrValidation = errors.New("draft is missing required fields")
	// ErrSubmitInProgress indicates a submit is already running; the second
	// invocation is ignored.
	ErrSubmitInProgress = errors.New("submit already in progress")
	// ErrWorkflowClosed indicates the workflow has finished or was discarded.
	ErrWorkflowClosed = errors.New("workflow is closed")

	errWrongState = errors.New("operation not allowed in current state")
)

// TrackRef is the value-copy of a selected track's display fields that gets
// embedded into the draft. It is not a live reference to the catalog result.
type TrackRef struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Artist      string `json:"artist"`
	ImageURL    string `json:"image_url"`
	AudioURL    string `json:"audio_url"`
	ExternalURL string `json:"external_url"`
	Provider    string `json:"provider"`
}

// Draft is the aggregate of in-progress user choices.
type Draft struct {
	Mood          mood.Mood
	Track         *TrackRef
	Media         *media.Asset
	Caption       string
	Text          string
	Tags          []string
	SoundLayers   []string
	VisualFilters []string
	TrackVolume   int
}

// Gateway is the persistence surface Submit runs against.
type Gateway interface {
	UploadMedia(ctx context.Context, data []byte, contentType, pathHint string) (string, error)
	SaveVibe(ctx context.Context, v store.Vibe) (store.Vibe, error)
}

// Workflow drives one vibe creation session. All methods are safe for
// concurrent use; in-flight search results arriving after a newer search or
// after Close are dropped.
type Workflow struct {
	mu      sync.Mutex
	state   State
	draft   Draft
	userID  int64
	gateway Gateway
	catalog catalog.Client

	tracks    []catalog.Track
	searching bool
	searchGen int
	searchErr string

	lastErr string
	saved   store.Vibe
	closed  bool
}

// New opens a workflow for the given user with an empty draft.
func New(userID int64, gw Gateway, cat catalog.Client) *Workflow {
	return &Workflow{
		state:   StateMoodSelection,
		draft:   Draft{TrackVolume: 50},
		userID:  userID,
		gateway: gw,
		catalog: cat,
	}
}

// State returns the current workflow phase.
func (w *Workflow) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Snapshot returns a copy of the draft for rendering.
func (w *Workflow) Snapshot() Draft {
	w.mu.Lock()
	defer w.mu.Unlock()
	d := w.draft
	d.Tags = append([]string(nil), w.draft.Tags...)
	d.SoundLayers = append([]string(nil), w.draft.SoundLayers...)
	d.VisualFilters = append([]string(nil), w.draft.VisualFilters...)
	if w.draft.Track != nil {
		track := *w.draft.Track
		d.Track = &track
	}
	return d
}

// LastError returns the message surfaced by the most recent failed submit.
func (w *Workflow) LastError() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastErr
}

// Saved returns the persisted record after a successful submit.
func (w *Workflow) Saved() (store.Vibe, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.saved, w.state == StateSubmitted
}

// SelectMood records the mood synchronously and kicks a catalog search for
// it as a side effect. Re-selecting a different mood during composition
// clears the mood-dependent sound-layer and visual-filter choices but keeps
// media, caption, text, and tags.
func (w *Workflow) SelectMood(ctx context.Context, id mood.Mood) error {
	if !mood.Valid(id) {
		return fmt.Errorf("unknown mood %q", id)
	}

	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return ErrWorkflowClosed
	}
	if w.state != StateMoodSelection && w.state != StateComposing {
		w.mu.Unlock()
		return errWrongState
	}
	if w.draft.Mood != id {
		w.draft.SoundLayers = nil
		w.draft.VisualFilters = nil
	}
	w.draft.Mood = id
	w.mu.Unlock()

	w.startSearch(ctx, string(id))
	return nil
}

// Search refines track suggestions with a free-text query. The previous
// result set is replaced when the search succeeds; a failed search keeps it
// and records the error.
func (w *Workflow) Search(ctx context.Context, query string) {
	if query == "" {
		return
	}
	w.startSearch(ctx, query)
}

// startSearch launches the catalog query without blocking the caller. Only
// the newest search generation may publish results.
func (w *Workflow) startSearch(ctx context.Context, moodOrQuery string) {
	w.mu.Lock()
	if w.closed || w.catalog == nil {
		w.mu.Unlock()
		return
	}
	w.searching = true
	w.searchGen++
	gen := w.searchGen
	w.mu.Unlock()

	// The search outlives the caller's context; only Close or a newer
	// search generation discards its result.
	ctx = context.WithoutCancel(ctx)

	go func() {
		tracks, err := w.catalog.SearchByMood(ctx, moodOrQuery, catalog.DefaultLimit)

		w.mu.Lock()
		defer w.mu.Unlock()
		if w.closed || gen != w.searchGen {
			return
		}
		w.searching = false
		if err != nil {
			// Catalog errors degrade gracefully; the previous suggestions
			// stay usable and the workflow keeps going.
			log.Warn().Err(err).Str("query", moodOrQuery).Msg("track search failed")
			w.searchErr = err.Error()
			return
		}
		w.searchErr = ""
		w.tracks = tracks
	}()
}

// Tracks returns the latest suggestions and whether a search is in flight.
func (w *Workflow) Tracks() ([]catalog.Track, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]catalog.Track(nil), w.tracks...), w.searching
}

// SearchError returns the message from the most recent failed search. It is
// cleared when a later search succeeds.
func (w *Workflow) SearchError() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.searchErr
}

// Next advances from mood selection to composition once a mood is chosen.
func (w *Workflow) Next() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return ErrWorkflowClosed
	}
	if w.state != StateMoodSelection {
		return errWrongState
	}
	if w.draft.Mood == "" {
		return ErrValidation
	}
	w.state = StateComposing
	return nil
}

// Back returns to mood selection. The draft is untouched.
func (w *Workflow) Back() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return ErrWorkflowClosed
	}
	if w.state != StateComposing && w.state != StateFailed {
		return errWrongState
	}
	w.state = StateMoodSelection
	return nil
}

// SelectTrack copies the track's display fields into the draft.
func (w *Workflow) SelectTrack(t catalog.Track) error {
	return w.compose(func() error {
		w.draft.Track = &TrackRef{
			ID:          t.ID,
			Name:        t.Title,
			Artist:      t.Artist,
			ImageURL:    t.ImageURL,
			AudioURL:    t.AudioURL,
			ExternalURL: t.ExternalURL,
			Provider:    string(t.Provider),
		}
		return nil
	})
}

// ClearTrack removes the selected track.
func (w *Workflow) ClearTrack() error {
	return w.compose(func() error {
		w.draft.Track = nil
		return nil
	})
}

// AttachMedia replaces the draft's media asset, releasing the previous
// preview resource.
func (w *Workflow) AttachMedia(asset *media.Asset) error {
	if asset == nil {
		return media.ErrEmptyMedia
	}
	return w.compose(func() error {
		if w.draft.Media != nil {
			w.draft.Media.Release()
		}
		w.draft.Media = asset
		return nil
	})
}

// ClearMedia removes the media asset and resets the visual-filter choices
// that depended on it.
func (w *Workflow) ClearMedia() error {
	return w.compose(func() error {
		if w.draft.Media != nil {
			w.draft.Media.Release()
			w.draft.Media = nil
		}
		w.draft.VisualFilters = nil
		return nil
	})
}

// SetCaption bounds the caption to the persisted limit.
func (w *Workflow) SetCaption(caption string) error {
	if len(caption) > store.CaptionMaxLen {
		return fmt.Errorf("caption exceeds %d characters", store.CaptionMaxLen)
	}
	return w.compose(func() error {
		w.draft.Caption = caption
		return nil
	})
}

// SetText bounds the free-form text to the persisted limit.
func (w *Workflow) SetText(text string) error {
	if len(text) > store.TextMaxLen {
		return fmt.Errorf("text exceeds %d characters", store.TextMaxLen)
	}
	return w.compose(func() error {
		w.draft.Text = text
		return nil
	})
}

// AddTag appends a tag. Blank and duplicate tags are no-ops.
func (w *Workflow) AddTag(tag string) error {
	tag = strings.TrimSpace(tag)
	return w.compose(func() error {
		if tag == "" {
			return nil
		}
		for _, existing := range w.draft.Tags {
			if existing == tag {
				return nil
			}
		}
		w.draft.Tags = append(w.draft.Tags, tag)
		return nil
	})
}

// RemoveTag drops a tag. Removing a tag that is not present is a no-op.
func (w *Workflow) RemoveTag(tag string) error {
	tag = strings.TrimSpace(tag)
	return w.compose(func() error {
		w.draft.Tags = removeString(w.draft.Tags, tag)
		return nil
	})
}

// ToggleSoundLayer flips a sound layer chosen from the current mood's fixed
// options. Unknown layers are ignored.
func (w *Workflow) ToggleSoundLayer(layer string) error {
	return w.compose(func() error {
		if !contains(mood.SoundLayers(w.draft.Mood), layer) {
			return nil
		}
		w.draft.SoundLayers = toggleString(w.draft.SoundLayers, layer)
		return nil
	})
}

// ToggleVisualFilter flips a visual filter chosen from the current mood's
// fixed options. Unknown filters are ignored.
func (w *Workflow) ToggleVisualFilter(filter string) error {
	return w.compose(func() error {
		if !contains(mood.VisualFilters(w.draft.Mood), filter) {
			return nil
		}
		w.draft.VisualFilters = toggleString(w.draft.VisualFilters, filter)
		return nil
	})
}

// SetTrackVolume clamps level to [0,100].
func (w *Workflow) SetTrackVolume(level int) error {
	if level < 0 {
		level = 0
	}
	if level > 100 {
		level = 100
	}
	return w.compose(func() error {
		w.draft.TrackVolume = level
		return nil
	})
}

// CanSubmit reports whether the minimum-field invariant holds: mood set and
// media attached. Text and caption stay optional.
func (w *Workflow) CanSubmit() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.canSubmitLocked()
}

func (w *Workflow) canSubmitLocked() bool {
	return w.draft.Mood != "" && w.draft.Media != nil
}

// Submit uploads the media, builds the persisted record with the selected
// track's fields denormalized, and writes it. On failure at either step the
// workflow enters Failed with the draft intact so the user can retry; a
// submit while another is in flight is ignored.
func (w *Workflow) Submit(ctx context.Context) (store.Vibe, error) {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return store.Vibe{}, ErrWorkflowClosed
	}
	if w.state == StateSubmitting {
		w.mu.Unlock()
		return store.Vibe{}, ErrSubmitInProgress
	}
	if w.state != StateComposing && w.state != StateFailed {
		w.mu.Unlock()
		return store.Vibe{}, errWrongState
	}
	if !w.canSubmitLocked() {
		w.mu.Unlock()
		return store.Vibe{}, ErrValidation
	}

	w.state = StateSubmitting
	w.lastErr = ""
	draft := w.draft
	asset := w.draft.Media
	userID := w.userID
	w.mu.Unlock()

	namespace := "uploads"
	if draft.Track != nil && draft.Track.Provider != "" {
		namespace = draft.Track.Provider
	}
	pathHint := namespace + "/visual." + asset.Ext()

	visualURL, err := w.gateway.UploadMedia(ctx, asset.Data, asset.ContentType, pathHint)
	if err != nil {
		return store.Vibe{}, w.fail(err)
	}

	record := store.Vibe{
		UserID:        userID,
		Mood:          string(draft.Mood),
		VisualURL:     visualURL,
		Caption:       draft.Caption,
		Text:          draft.Text,
		Tags:          draft.Tags,
		SoundLayers:   draft.SoundLayers,
		VisualFilters: draft.VisualFilters,
	}
	if draft.Track != nil {
		record.TrackID = draft.Track.ID
		record.TrackName = draft.Track.Name
		record.TrackArtist = draft.Track.Artist
		record.TrackImageURL = draft.Track.ImageURL
		record.TrackAudioURL = draft.Track.AudioURL
		record.TrackExternalURL = draft.Track.ExternalURL
	}

	saved, err := w.gateway.SaveVibe(ctx, record)
	if err != nil {
		return store.Vibe{}, w.fail(err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.state = StateSubmitted
	w.saved = saved
	if w.draft.Media != nil {
		w.draft.Media.Release()
	}
	w.draft = Draft{TrackVolume: 50}
	return saved, nil
}

func (w *Workflow) fail(err error) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.state = StateFailed
	w.lastErr = err.Error()
	return err
}

// Close discards the workflow. The draft's media preview is released and
// any in-flight search or submit result is ignored on arrival.
func (w *Workflow) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	w.closed = true
	w.searchGen++
	if w.draft.Media != nil {
		w.draft.Media.Release()
		w.draft.Media = nil
	}
}

// compose runs a draft mutation, which is only legal while composing or
// after a failed submit (the draft survives failure for retry).
func (w *Workflow) compose(mutate func() error) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return ErrWorkflowClosed
	}
	if w.state != StateComposing && w.state != StateFailed {
		return errWrongState
	}
	return mutate()
}

func contains(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}

func removeString(values []string, v string) []string {
	out := values[:0]
	for _, s := range values {
		if s != v {
			out = append(out, s)
		}
	}
	return out
}

func toggleString(values []string, v string) []string {
	if contains(values, v) {
		return removeString(values, v)
	}
	return append(values, v)
}
