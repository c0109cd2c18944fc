package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2/clientcredentials"

	"vybz/internal/mood"
)

const (
	defaultSpotifyEndpoint = "https://api.spotify.com/v1"
	spotifyTokenURL        = "https://accounts.spotify.com/api/token"
)

// SpotifyClient queries the Spotify Web API using the client-credentials flow.
type SpotifyClient struct {
	endpoint   string
	httpClient *http.Client
}

// SpotifyOption customizes a SpotifyClient.
type SpotifyOption func(*SpotifyClient)

// WithSpotifyEndpoint overrides the API endpoint, mainly for tests.
func WithSpotifyEndpoint(endpoint string) SpotifyOption {
	return func(c *SpotifyClient) {
		c.endpoint = strings.TrimRight(endpoint, "/")
	}
}

// WithSpotifyHTTPClient replaces the token-managed HTTP client entirely,
// bypassing OAuth. Tests use this to avoid hitting the token endpoint.
func WithSpotifyHTTPClient(hc *http.Client) SpotifyOption {
	return func(c *SpotifyClient) {
		c.httpClient = hc
	}
}

// NewSpotifyClient creates a Spotify API client. Token acquisition and
// refresh are handled by the oauth2 client-credentials token source.
func NewSpotifyClient(clientID, clientSecret string, opts ...SpotifyOption) *SpotifyClient {
	conf := &clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     spotifyTokenURL,
	}
	hc := conf.Client(context.Background())
	hc.Timeout = 30 * time.Second

	c := &SpotifyClient{
		endpoint:   defaultSpotifyEndpoint,
		httpClient: hc,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type spotifySearchResponse struct {
	Tracks struct {
		Items []spotifyTrack `json:"items"`
	} `json:"tracks"`
}

type spotifyTrack struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Artists []struct {
		Name string `json:"name"`
	} `json:"artists"`
	Album struct {
		Name   string `json:"name"`
		Images []struct {
			URL string `json:"url"`
		} `json:"images"`
	} `json:"album"`
	DurationMS   int    `json:"duration_ms"`
	PreviewURL   string `json:"preview_url"`
	ExternalURLs struct {
		Spotify string `json:"spotify"`
	} `json:"external_urls"`
}

// SearchByMood implements Client against the Spotify search endpoint.
func (c *SpotifyClient) SearchByMood(ctx context.Context, moodOrQuery string, limit int) ([]Track, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	query, _ := mood.SearchQuery(moodOrQuery)

	params := url.Values{
		"q":     []string{query},
		"type":  []string{"track"},
		"limit": []string{strconv.Itoa(limit)},
	}
	apiURL := c.endpoint + "/search?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("spotify api error: %s - %s", resp.Status, string(body))
	}

	var result spotifySearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	tracks := make([]Track, 0, len(result.Tracks.Items))
	for _, st := range result.Tracks.Items {
		artist := ""
		if len(st.Artists) > 0 {
			artist = st.Artists[0].Name
		}
		image := ""
		if len(st.Album.Images) > 0 {
			image = st.Album.Images[0].URL
		}
		tracks = append(tracks, Track{
			ID:          st.ID,
			Title:       st.Name,
			Artist:      artist,
			Album:       st.Album.Name,
			Provider:    ProviderSpotify,
			ImageURL:    image,
			AudioURL:    st.PreviewURL,
			ExternalURL: st.ExternalURLs.Spotify,
			Duration:    st.DurationMS / 1000,
		})
	}
	return tracks, nil
}
