package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Config contains application-wide settings sourced from the environment.
type Config struct {
	DatabaseURL    string
	JWTSecret      string
	Addr           string
	AllowedOrigins []string

	JamendoClientID     string
	AudiusAppName       string
	SpotifyClientID     string
	SpotifyClientSecret string

	MediaDir     string
	MediaBaseURL string

	LogLevel  string
	LogFormat string
}

func loadConfig() (Config, error) {
	_ = godotenv.Load("config/local.env")

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		return Config{}, errors.New("DATABASE_URL env var is required")
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return Config{}, errors.New("JWT_SECRET env var is required")
	}

	port := envOrDefault("PORT", "8080")
	addr := fmt.Sprintf(":%s", port)

	origins := parseAllowedOrigins(envOrDefault("CORS_ALLOWED_ORIGINS", "http://localhost:5173"))

	return Config{
		DatabaseURL:         dsn,
		JWTSecret:           secret,
		Addr:                addr,
		AllowedOrigins:      origins,
		JamendoClientID:     os.Getenv("JAMENDO_CLIENT_ID"),
		AudiusAppName:       envOrDefault("AUDIUS_APP_NAME", "vybz"),
		SpotifyClientID:     os.Getenv("SPOTIFY_CLIENT_ID"),
		SpotifyClientSecret: os.Getenv("SPOTIFY_CLIENT_SECRET"),
		MediaDir:            envOrDefault("MEDIA_DIR", "data/media"),
		MediaBaseURL:        envOrDefault("MEDIA_BASE_URL", fmt.Sprintf("http://localhost:%s/media", port)),
		LogLevel:            envOrDefault("LOG_LEVEL", "info"),
		LogFormat:           envOrDefault("LOG_FORMAT", "json"),
	}, nil
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func parseAllowedOrigins(raw string) []string {
	parts := strings.Split(raw, ",")
	var origins []string
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}
