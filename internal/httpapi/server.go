package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"vybz/internal/catalog"
	"vybz/internal/composer"
	"vybz/internal/mood"
	"vybz/internal/store"
)

// UserService captures the account operations needed by the HTTP handlers.
type UserService interface {
	Register(ctx context.Context, email, password, name string) (string, store.User, error)
	Login(ctx context.Context, email, password string) (string, store.User, error)
	Logout(ctx context.Context, token string) error
	CurrentUser(ctx context.Context, token string) (store.User, error)
}

// VibeService exposes read access to persisted vibes.
type VibeService interface {
	List(ctx context.Context) ([]store.Vibe, error)
	ListByMood(ctx context.Context, moodID string) ([]store.Vibe, error)
	ListByUser(ctx context.Context, userID int64) ([]store.Vibe, error)
	Get(ctx context.Context, id int64) (store.Vibe, error)
}

// Server wires HTTP handlers to the underlying services.
type Server struct {
	users        UserService
	vibes        VibeService
	catalogs     map[catalog.Provider]catalog.Client
	drafts       *draftManager
	draftGateway composer.Gateway
	media        http.Handler
}

// Option tweaks optional Server wiring.
type Option func(*Server)

// WithMediaHandler serves stored media files under /media/.
func WithMediaHandler(h http.Handler) Option {
	return func(s *Server) { s.media = h }
}

// WithDraftGateway enables draft composition, wiring submits through the
// given persistence gateway.
func WithDraftGateway(gw composer.Gateway) Option {
	return func(s *Server) { s.draftGateway = gw }
}

// New configures a Server. The catalogs map is keyed by provider; the
// jamendo entry doubles as the default for unqualified searches and for
// draft track suggestions.
func New(users UserService, vibes VibeService, catalogs map[catalog.Provider]catalog.Client, opts ...Option) *Server {
	s := &Server{
		users:    users,
		vibes:    vibes,
		catalogs: catalogs,
		drafts:   newDraftManager(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Routes exposes the HTTP handlers for accounts, the catalog, drafts, and
// the vibe feed.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	mux.HandleFunc("POST /api/v1/auth/register", s.handleRegister)
	mux.HandleFunc("POST /api/v1/auth/login", s.handleLogin)
	mux.HandleFunc("POST /api/v1/auth/logout", s.handleLogout)
	mux.HandleFunc("GET /api/v1/me", s.handleMe)

	mux.HandleFunc("GET /api/v1/moods", s.handleMoods)
	mux.HandleFunc("GET /api/v1/tracks/search", s.handleTrackSearch)

	mux.HandleFunc("POST /api/v1/drafts", s.handleCreateDraft)
	mux.HandleFunc("GET /api/v1/drafts/{id}", s.handleGetDraft)
	mux.HandleFunc("DELETE /api/v1/drafts/{id}", s.handleDiscardDraft)
	mux.HandleFunc("PUT /api/v1/drafts/{id}/mood", s.handleDraftMood)
	mux.HandleFunc("POST /api/v1/drafts/{id}/next", s.handleDraftNext)
	mux.HandleFunc("POST /api/v1/drafts/{id}/back", s.handleDraftBack)
	mux.HandleFunc("GET /api/v1/drafts/{id}/tracks", s.handleDraftTracks)
	mux.HandleFunc("POST /api/v1/drafts/{id}/search", s.handleDraftSearch)
	mux.HandleFunc("PUT /api/v1/drafts/{id}/track", s.handleDraftTrack)
	mux.HandleFunc("DELETE /api/v1/drafts/{id}/track", s.handleDraftClearTrack)
	mux.HandleFunc("POST /api/v1/drafts/{id}/media", s.handleDraftMedia)
	mux.HandleFunc("DELETE /api/v1/drafts/{id}/media", s.handleDraftClearMedia)
	mux.HandleFunc("PUT /api/v1/drafts/{id}/caption", s.handleDraftCaption)
	mux.HandleFunc("PUT /api/v1/drafts/{id}/text", s.handleDraftText)
	mux.HandleFunc("POST /api/v1/drafts/{id}/tags", s.handleDraftAddTag)
	mux.HandleFunc("DELETE /api/v1/drafts/{id}/tags/{tag}", s.handleDraftRemoveTag)
	mux.HandleFunc("POST /api/v1/drafts/{id}/sound-layers", s.handleDraftSoundLayer)
	mux.HandleFunc("POST /api/v1/drafts/{id}/visual-filters", s.handleDraftVisualFilter)
	mux.HandleFunc("PUT /api/v1/drafts/{id}/volume", s.handleDraftVolume)
	mux.HandleFunc("POST /api/v1/drafts/{id}/submit", s.handleDraftSubmit)

	mux.HandleFunc("GET /api/v1/vibes", s.handleListVibes)
	mux.HandleFunc("GET /api/v1/vibes/{id}", s.handleGetVibe)
	mux.HandleFunc("GET /api/v1/feed", s.handleFeed)

	if s.media != nil {
		mux.Handle("/media/", http.StripPrefix("/media/", s.media))
	}

	return mux
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Token string     `json:"token"`
	User  store.User `json:"user"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON payload"})
		return
	}

	token, user, err := s.users.Register(r.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrUserExists):
			writeJSON(w, http.StatusConflict, errorResponse{Error: "email already registered"})
		default:
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		}
		return
	}

	writeJSON(w, http.StatusCreated, sessionResponse{Token: token, User: user})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON payload"})
		return
	}

	token, user, err := s.users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		status := http.StatusUnauthorized
		if !errors.Is(err, store.ErrInvalidCredentials) {
			status = http.StatusInternalServerError
		}
		writeJSON(w, status, errorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, sessionResponse{Token: token, User: user})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	token := parseBearerToken(r.Header.Get("Authorization"))
	if token == "" {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "missing bearer token"})
		return
	}

	if err := s.users.Logout(r.Context(), token); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	user, ok := s.authenticate(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, user)
}

type moodResponse struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	GradientFrom  string   `json:"gradient_from"`
	GradientTo    string   `json:"gradient_to"`
	SoundLayers   []string `json:"sound_layers"`
	VisualFilters []string `json:"visual_filters"`
}

func (s *Server) handleMoods(w http.ResponseWriter, r *http.Request) {
	all := mood.All()
	moods := make([]moodResponse, 0, len(all))
	for _, info := range all {
		moods = append(moods, moodResponse{
			ID:            string(info.ID),
			Name:          info.Name,
			GradientFrom:  info.GradientFrom,
			GradientTo:    info.GradientTo,
			SoundLayers:   info.SoundLayers,
			VisualFilters: info.VisualFilters,
		})
	}
	writeJSON(w, http.StatusOK, struct {
		Moods []moodResponse `json:"moods"`
	}{Moods: moods})
}

func (s *Server) handleTrackSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	term := query.Get("mood")
	if term != "" && !mood.Valid(mood.Mood(term)) {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "unknown mood"})
		return
	}
	if term == "" {
		term = query.Get("q")
	}
	if term == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "missing mood or q parameter"})
		return
	}

	limit := catalog.DefaultLimit
	if limitStr := query.Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed < 1 {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid limit parameter"})
			return
		}
		limit = parsed
	}

	client, err := s.catalogClient(query.Get("provider"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	tracks, err := client.SearchByMood(r.Context(), term, limit)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, catalog.ErrCatalogUnavailable) {
			status = http.StatusBadGateway
		}
		writeJSON(w, status, errorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, struct {
		Tracks []catalog.Track `json:"tracks"`
	}{Tracks: tracks})
}

// catalogClient resolves the provider parameter, defaulting to jamendo.
func (s *Server) catalogClient(provider string) (catalog.Client, error) {
	name := catalog.ProviderJamendo
	if provider != "" {
		name = catalog.Provider(provider)
	}
	client, ok := s.catalogs[name]
	if !ok {
		return nil, errors.New("unknown provider " + strconv.Quote(provider))
	}
	return client, nil
}

// authenticate resolves the bearer token to a user, writing the error
// response itself when the request is not authenticated.
func (s *Server) authenticate(w http.ResponseWriter, r *http.Request) (store.User, bool) {
	token := parseBearerToken(r.Header.Get("Authorization"))
	if token == "" {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "missing bearer token"})
		return store.User{}, false
	}

	user, err := s.users.CurrentUser(r.Context(), token)
	if err != nil {
		status := http.StatusUnauthorized
		if !errors.Is(err, store.ErrUnauthorized) {
			status = http.StatusInternalServerError
		}
		writeJSON(w, status, errorResponse{Error: err.Error()})
		return store.User{}, false
	}
	return user, true
}

func parseBearerToken(header string) string {
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 {
		return ""
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}
