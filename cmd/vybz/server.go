package main

import (
	"net/http"

	"github.com/rs/zerolog/log"

	"vybz/internal/app/users"
	"vybz/internal/app/vibes"
	"vybz/internal/blob"
	"vybz/internal/catalog"
	"vybz/internal/gateway"
	"vybz/internal/httpapi"
	"vybz/internal/middleware"
	"vybz/internal/store"
)

func newHTTPHandler(cfg Config, dataStore *store.Store, gw *gateway.Gateway, media *blob.DiskStore) http.Handler {
	userSvc := users.New(dataStore)
	vibeSvc := vibes.New(gw)

	server := httpapi.New(
		userSvc,
		vibeSvc,
		newCatalogs(cfg),
		httpapi.WithDraftGateway(gw),
		httpapi.WithMediaHandler(http.FileServer(http.Dir(media.Dir()))),
	)

	handler := server.Routes()
	handler = middleware.CORS(cfg.AllowedOrigins)(handler)
	handler = middleware.Recovery()(handler)
	handler = middleware.RequestLogging()(handler)
	return handler
}

// newCatalogs wires the configured catalog providers. Jamendo is always
// present because it degrades to generated suggestions when the API is
// unreachable or unconfigured.
func newCatalogs(cfg Config) map[catalog.Provider]catalog.Client {
	catalogs := map[catalog.Provider]catalog.Client{
		catalog.ProviderJamendo: catalog.WithFallback(catalog.NewJamendoClient(cfg.JamendoClientID)),
		catalog.ProviderAudius:  catalog.NewAudiusClient(cfg.AudiusAppName),
	}

	if cfg.SpotifyClientID != "" && cfg.SpotifyClientSecret != "" {
		catalogs[catalog.ProviderSpotify] = catalog.NewSpotifyClient(cfg.SpotifyClientID, cfg.SpotifyClientSecret)
		log.Info().Msg("Spotify catalog enabled")
	} else {
		log.Info().Msg("Spotify credentials not provided, Spotify search disabled")
	}

	return catalogs
}

