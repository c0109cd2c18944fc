package httpapi

import (
	"errors"
	"net/http"
	"strconv"

	"vybz/internal/feed"
	"vybz/internal/mood"
	"vybz/internal/store"
)

func (s *Server) handleListVibes(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	var (
		vibes []store.Vibe
		err   error
	)
	switch {
	case query.Get("user") != "":
		userID, parseErr := strconv.ParseInt(query.Get("user"), 10, 64)
		if parseErr != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid user parameter"})
			return
		}
		vibes, err = s.vibes.ListByUser(r.Context(), userID)
	case query.Get("mood") != "":
		moodID := query.Get("mood")
		if !mood.Valid(mood.Mood(moodID)) {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "unknown mood"})
			return
		}
		vibes, err = s.vibes.ListByMood(r.Context(), moodID)
	default:
		vibes, err = s.vibes.List(r.Context())
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, struct {
		Vibes []store.Vibe `json:"vibes"`
	}{Vibes: vibes})
}

func (s *Server) handleGetVibe(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid id parameter"})
		return
	}

	vibe, err := s.vibes.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrVibeNotFound) {
			writeJSON(w, http.StatusNotFound, errorResponse{Error: "vibe not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, vibe)
}

// handleFeed returns display-ready vibes plus a wraparound cursor. The index
// parameter is normalized into range so clients can page past either end.
func (s *Server) handleFeed(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	var (
		vibes []store.Vibe
		err   error
	)
	moodID := query.Get("mood")
	if moodID == "" || moodID == feed.AllMoods {
		vibes, err = s.vibes.List(r.Context())
	} else {
		if !mood.Valid(mood.Mood(moodID)) {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "unknown mood"})
			return
		}
		vibes, err = s.vibes.ListByMood(r.Context(), moodID)
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}

	items := make([]feed.Item, 0, len(vibes))
	for _, v := range vibes {
		items = append(items, feed.Transform(v))
	}

	index := 0
	if indexStr := query.Get("index"); indexStr != "" {
		parsed, parseErr := strconv.Atoi(indexStr)
		if parseErr != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid index parameter"})
			return
		}
		index = parsed
	}
	if len(items) > 0 {
		index = ((index % len(items)) + len(items)) % len(items)
	} else {
		index = 0
	}

	writeJSON(w, http.StatusOK, struct {
		Items []feed.Item `json:"items"`
		Index int         `json:"index"`
		Count int         `json:"count"`
	}{Items: items, Index: index, Count: len(items)})
}
