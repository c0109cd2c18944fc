package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"vybz/internal/catalog"
	"vybz/internal/composer"
	"vybz/internal/gateway"
	"vybz/internal/media"
	"vybz/internal/mood"
)

// maxMediaBytes bounds uploaded visuals to 10 MiB.
const maxMediaBytes = 10 << 20

// draftManager holds the open composition workflows, keyed by draft id.
// Each draft belongs to the user that opened it.
type draftManager struct {
	mu     sync.Mutex
	drafts map[string]*draftEntry
}

type draftEntry struct {
	id       string
	userID   int64
	workflow *composer.Workflow
}

func newDraftManager() *draftManager {
	return &draftManager{drafts: make(map[string]*draftEntry)}
}

func (m *draftManager) create(userID int64, wf *composer.Workflow) *draftEntry {
	entry := &draftEntry{id: uuid.NewString(), userID: userID, workflow: wf}
	m.mu.Lock()
	m.drafts[entry.id] = entry
	m.mu.Unlock()
	return entry
}

// get returns the draft only when it belongs to userID; a foreign draft
// looks identical to a missing one.
func (m *draftManager) get(id string, userID int64) (*draftEntry, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.drafts[id]
	if !ok || entry.userID != userID {
		return nil, false
	}
	return entry, true
}

func (m *draftManager) remove(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.drafts, id)
}

type draftResponse struct {
	ID            string             `json:"id"`
	State         string             `json:"state"`
	Mood          string             `json:"mood,omitempty"`
	Track         *composer.TrackRef `json:"track,omitempty"`
	MediaName     string             `json:"media_name,omitempty"`
	MediaPreview  string             `json:"media_preview,omitempty"`
	Caption       string             `json:"caption,omitempty"`
	Text          string             `json:"text,omitempty"`
	Tags          []string           `json:"tags"`
	SoundLayers   []string           `json:"sound_layers"`
	VisualFilters []string           `json:"visual_filters"`
	TrackVolume   int                `json:"track_volume"`
	CanSubmit     bool               `json:"can_submit"`
	LastError     string             `json:"last_error,omitempty"`
}

func draftView(entry *draftEntry) draftResponse {
	draft := entry.workflow.Snapshot()
	resp := draftResponse{
		ID:            entry.id,
		State:         string(entry.workflow.State()),
		Mood:          string(draft.Mood),
		Track:         draft.Track,
		Caption:       draft.Caption,
		Text:          draft.Text,
		Tags:          draft.Tags,
		SoundLayers:   draft.SoundLayers,
		VisualFilters: draft.VisualFilters,
		TrackVolume:   draft.TrackVolume,
		CanSubmit:     entry.workflow.CanSubmit(),
		LastError:     entry.workflow.LastError(),
	}
	if resp.Tags == nil {
		resp.Tags = []string{}
	}
	if resp.SoundLayers == nil {
		resp.SoundLayers = []string{}
	}
	if resp.VisualFilters == nil {
		resp.VisualFilters = []string{}
	}
	if draft.Media != nil {
		resp.MediaName = draft.Media.Name
		resp.MediaPreview = draft.Media.PreviewURI()
	}
	return resp
}

func (s *Server) handleCreateDraft(w http.ResponseWriter, r *http.Request) {
	user, ok := s.authenticate(w, r)
	if !ok {
		return
	}
	if s.draftGateway == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "draft composition is not enabled"})
		return
	}

	wf := composer.New(user.ID, s.draftGateway, s.catalogs[catalog.ProviderJamendo])
	entry := s.drafts.create(user.ID, wf)
	writeJSON(w, http.StatusCreated, draftView(entry))
}

// draftFromRequest authenticates the caller and resolves the draft in the
// path, writing the error response on failure.
func (s *Server) draftFromRequest(w http.ResponseWriter, r *http.Request) (*draftEntry, bool) {
	user, ok := s.authenticate(w, r)
	if !ok {
		return nil, false
	}
	entry, ok := s.drafts.get(r.PathValue("id"), user.ID)
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "draft not found"})
		return nil, false
	}
	return entry, true
}

func (s *Server) handleGetDraft(w http.ResponseWriter, r *http.Request) {
	entry, ok := s.draftFromRequest(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, draftView(entry))
}

func (s *Server) handleDiscardDraft(w http.ResponseWriter, r *http.Request) {
	entry, ok := s.draftFromRequest(w, r)
	if !ok {
		return
	}
	entry.workflow.Close()
	s.drafts.remove(entry.id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDraftMood(w http.ResponseWriter, r *http.Request) {
	entry, ok := s.draftFromRequest(w, r)
	if !ok {
		return
	}

	var req struct {
		Mood string `json:"mood"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON payload"})
		return
	}

	if err := entry.workflow.SelectMood(r.Context(), mood.Mood(req.Mood)); err != nil {
		writeDraftError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, draftView(entry))
}

func (s *Server) handleDraftNext(w http.ResponseWriter, r *http.Request) {
	entry, ok := s.draftFromRequest(w, r)
	if !ok {
		return
	}
	if err := entry.workflow.Next(); err != nil {
		writeDraftError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, draftView(entry))
}

func (s *Server) handleDraftBack(w http.ResponseWriter, r *http.Request) {
	entry, ok := s.draftFromRequest(w, r)
	if !ok {
		return
	}
	if err := entry.workflow.Back(); err != nil {
		writeDraftError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, draftView(entry))
}

func (s *Server) handleDraftTracks(w http.ResponseWriter, r *http.Request) {
	entry, ok := s.draftFromRequest(w, r)
	if !ok {
		return
	}
	tracks, searching := entry.workflow.Tracks()
	writeJSON(w, http.StatusOK, struct {
		Tracks    []catalog.Track `json:"tracks"`
		Searching bool            `json:"searching"`
		Error     string          `json:"error,omitempty"`
	}{Tracks: tracks, Searching: searching, Error: entry.workflow.SearchError()})
}

func (s *Server) handleDraftSearch(w http.ResponseWriter, r *http.Request) {
	entry, ok := s.draftFromRequest(w, r)
	if !ok {
		return
	}

	var req struct {
		Query string `json:"query"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON payload"})
		return
	}

	entry.workflow.Search(r.Context(), req.Query)
	w.WriteHeader(http.StatusAccepted)
}

func (s *Server) handleDraftTrack(w http.ResponseWriter, r *http.Request) {
	entry, ok := s.draftFromRequest(w, r)
	if !ok {
		return
	}

	var req catalog.Track
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON payload"})
		return
	}

	if err := entry.workflow.SelectTrack(req); err != nil {
		writeDraftError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, draftView(entry))
}

func (s *Server) handleDraftClearTrack(w http.ResponseWriter, r *http.Request) {
	entry, ok := s.draftFromRequest(w, r)
	if !ok {
		return
	}
	if err := entry.workflow.ClearTrack(); err != nil {
		writeDraftError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, draftView(entry))
}

// handleDraftMedia attaches a visual. The multipart form carries either an
// uploaded "file" part or a raw "frame" part captured from the camera.
func (s *Server) handleDraftMedia(w http.ResponseWriter, r *http.Request) {
	entry, ok := s.draftFromRequest(w, r)
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(maxMediaBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid multipart payload"})
		return
	}

	asset, err := assetFromForm(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	if err := entry.workflow.AttachMedia(asset); err != nil {
		writeDraftError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, draftView(entry))
}

func assetFromForm(r *http.Request) (*media.Asset, error) {
	if file, header, err := r.FormFile("file"); err == nil {
		defer file.Close()
		data, err := io.ReadAll(io.LimitReader(file, maxMediaBytes+1))
		if err != nil {
			return nil, errors.New("reading upload failed")
		}
		if len(data) > maxMediaBytes {
			return nil, errors.New("media exceeds the size limit")
		}
		return media.FromUpload(header.Filename, header.Header.Get("Content-Type"), data)
	}

	if file, _, err := r.FormFile("frame"); err == nil {
		defer file.Close()
		data, err := io.ReadAll(io.LimitReader(file, maxMediaBytes+1))
		if err != nil {
			return nil, errors.New("reading capture failed")
		}
		if len(data) > maxMediaBytes {
			return nil, errors.New("media exceeds the size limit")
		}
		return media.FromCapture(data, time.Now())
	}

	return nil, errors.New("missing file or frame part")
}

func (s *Server) handleDraftClearMedia(w http.ResponseWriter, r *http.Request) {
	entry, ok := s.draftFromRequest(w, r)
	if !ok {
		return
	}
	if err := entry.workflow.ClearMedia(); err != nil {
		writeDraftError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, draftView(entry))
}

func (s *Server) handleDraftCaption(w http.ResponseWriter, r *http.Request) {
	entry, ok := s.draftFromRequest(w, r)
	if !ok {
		return
	}

	var req struct {
		Caption string `json:"caption"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON payload"})
		return
	}

	if err := entry.workflow.SetCaption(req.Caption); err != nil {
		writeDraftError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, draftView(entry))
}

func (s *Server) handleDraftText(w http.ResponseWriter, r *http.Request) {
	entry, ok := s.draftFromRequest(w, r)
	if !ok {
		return
	}

	var req struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON payload"})
		return
	}

	if err := entry.workflow.SetText(req.Text); err != nil {
		writeDraftError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, draftView(entry))
}

func (s *Server) handleDraftAddTag(w http.ResponseWriter, r *http.Request) {
	entry, ok := s.draftFromRequest(w, r)
	if !ok {
		return
	}

	var req struct {
		Tag string `json:"tag"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON payload"})
		return
	}

	if err := entry.workflow.AddTag(req.Tag); err != nil {
		writeDraftError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, draftView(entry))
}

func (s *Server) handleDraftRemoveTag(w http.ResponseWriter, r *http.Request) {
	entry, ok := s.draftFromRequest(w, r)
	if !ok {
		return
	}
	if err := entry.workflow.RemoveTag(r.PathValue("tag")); err != nil {
		writeDraftError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, draftView(entry))
}

func (s *Server) handleDraftSoundLayer(w http.ResponseWriter, r *http.Request) {
	entry, ok := s.draftFromRequest(w, r)
	if !ok {
		return
	}

	var req struct {
		Layer string `json:"layer"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON payload"})
		return
	}

	if err := entry.workflow.ToggleSoundLayer(req.Layer); err != nil {
		writeDraftError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, draftView(entry))
}

func (s *Server) handleDraftVisualFilter(w http.ResponseWriter, r *http.Request) {
	entry, ok := s.draftFromRequest(w, r)
	if !ok {
		return
	}

	var req struct {
		Filter string `json:"filter"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON payload"})
		return
	}

	if err := entry.workflow.ToggleVisualFilter(req.Filter); err != nil {
		writeDraftError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, draftView(entry))
}

func (s *Server) handleDraftVolume(w http.ResponseWriter, r *http.Request) {
	entry, ok := s.draftFromRequest(w, r)
	if !ok {
		return
	}

	var req struct {
		Level int `json:"level"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON payload"})
		return
	}

	if err := entry.workflow.SetTrackVolume(req.Level); err != nil {
		writeDraftError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, draftView(entry))
}

func (s *Server) handleDraftSubmit(w http.ResponseWriter, r *http.Request) {
	entry, ok := s.draftFromRequest(w, r)
	if !ok {
		return
	}

	saved, err := entry.workflow.Submit(r.Context())
	if err != nil {
		writeDraftError(w, err)
		return
	}

	s.drafts.remove(entry.id)
	writeJSON(w, http.StatusCreated, saved)
}

// writeDraftError maps workflow and gateway failures onto HTTP statuses.
func writeDraftError(w http.ResponseWriter, err error) {
	var uploadErr *gateway.UploadError
	var writeErr *gateway.WriteError

	status := http.StatusBadRequest
	switch {
	case errors.Is(err, composer.ErrValidation):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, composer.ErrSubmitInProgress):
		status = http.StatusConflict
	case errors.Is(err, composer.ErrWorkflowClosed):
		status = http.StatusGone
	case errors.As(err, &uploadErr), errors.As(err, &writeErr):
		status = http.StatusBadGateway
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}
