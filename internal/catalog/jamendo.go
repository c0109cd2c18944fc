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

	"vybz/internal/mood"
)

const defaultJamendoEndpoint = "https://api.jamendo.com/v3.0"

// JamendoClient queries the Jamendo track catalog.
type JamendoClient struct {
	clientID   string
	endpoint   string
	httpClient *http.Client
}

// JamendoOption customizes a JamendoClient.
type JamendoOption func(*JamendoClient)

// WithJamendoEndpoint overrides the API endpoint, mainly for tests.
func WithJamendoEndpoint(endpoint string) JamendoOption {
	return func(c *JamendoClient) {
		c.endpoint = strings.TrimRight(endpoint, "/")
	}
}

// WithJamendoHTTPClient overrides the HTTP client.
func WithJamendoHTTPClient(hc *http.Client) JamendoOption {
	return func(c *JamendoClient) {
		c.httpClient = hc
	}
}

// NewJamendoClient creates a Jamendo API client.
func NewJamendoClient(clientID string, opts ...JamendoOption) *JamendoClient {
	c := &JamendoClient{
		clientID: clientID,
		endpoint: defaultJamendoEndpoint,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type jamendoTrack struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	ArtistName string `json:"artist_name"`
	AlbumName  string `json:"album_name"`
	Image      string `json:"image"`
	Audio      string `json:"audio"`
	Duration   int    `json:"duration"`
	ShareURL   string `json:"shareurl"`
}

type jamendoSearchResponse struct {
	Headers struct {
		Status       string `json:"status"`
		Code         int    `json:"code"`
		ErrorMessage string `json:"error_message"`
	} `json:"headers"`
	Results []jamendoTrack `json:"results"`
}

// SearchByMood implements Client against the Jamendo /tracks endpoint.
func (c *JamendoClient) SearchByMood(ctx context.Context, moodOrQuery string, limit int) ([]Track, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	query, tags := mood.SearchQuery(moodOrQuery)

	params := url.Values{
		"client_id": []string{c.clientID},
		"format":    []string{"json"},
		"limit":     []string{strconv.Itoa(limit)},
		"search":    []string{query},
		"include":   []string{"musicinfo"},
		"boost":     []string{"popularity_total"},
	}
	if len(tags) > 0 {
		params.Set("tags", strings.Join(tags, "+"))
	}

	apiURL := c.endpoint + "/tracks/?" + params.Encode()

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
		return nil, fmt.Errorf("jamendo api error: %s - %s", resp.Status, string(body))
	}

	var result jamendoSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	// Jamendo reports success as code 0 on the newer API and 200 on the old one.
	if result.Headers.Code != 0 && result.Headers.Code != 200 {
		return nil, fmt.Errorf("jamendo api error: %s", result.Headers.ErrorMessage)
	}

	tracks := make([]Track, 0, len(result.Results))
	for _, jt := range result.Results {
		tracks = append(tracks, Track{
			ID:          jt.ID,
			Title:       jt.Name,
			Artist:      jt.ArtistName,
			Album:       jt.AlbumName,
			Provider:    ProviderJamendo,
			ImageURL:    jt.Image,
			AudioURL:    jt.Audio,
			ExternalURL: jt.ShareURL,
			Duration:    jt.Duration,
		})
	}
	return tracks, nil
}
