package main

import (
	"context"
	"net/http"

	"github.com/rs/zerolog/log"

	"vybz/internal/blob"
	"vybz/internal/gateway"
	"vybz/internal/logging"
	"vybz/internal/store"
)

func main() {
	cfg, err := loadConfig()
	if err != nil {
		logging.Setup(logging.Config{})
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	logging.Setup(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	db, err := openDatabase(context.Background(), cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("database unavailable")
	}
	defer db.Close()

	dataStore := store.New(db, cfg.JWTSecret)

	media, err := blob.NewDiskStore(cfg.MediaDir, cfg.MediaBaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("media storage unavailable")
	}

	gw := gateway.New(media, dataStore)

	if err := bootstrapDemoData(context.Background(), db, dataStore); err != nil {
		log.Fatal().Err(err).Msg("demo data bootstrap failed")
	}

	handler := newHTTPHandler(cfg, dataStore, gw, media)

	log.Info().Str("addr", cfg.Addr).Msg("API listening")
	if err := http.ListenAndServe(cfg.Addr, handler); err != nil {
		log.Fatal().Err(err).Msg("server error")
	}
}
