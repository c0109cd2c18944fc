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

const defaultAudiusEndpoint = "https://discoveryprovider.audius.co/v1"

// AudiusClient queries the Audius discovery provider.
type AudiusClient struct {
	appName    string
	endpoint   string
	httpClient *http.Client
}

// AudiusOption customizes an AudiusClient.
type AudiusOption func(*AudiusClient)

// WithAudiusEndpoint overrides the discovery provider endpoint, mainly for tests.
func WithAudiusEndpoint(endpoint string) AudiusOption {
	return func(c *AudiusClient) {
		c.endpoint = strings.TrimRight(endpoint, "/")
	}
}

// NewAudiusClient creates an Audius API client identified by appName.
func NewAudiusClient(appName string, opts ...AudiusOption) *AudiusClient {
	c := &AudiusClient{
		appName:  appName,
		endpoint: defaultAudiusEndpoint,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type audiusTrack struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	User    struct {
		Name   string `json:"name"`
		Handle string `json:"handle"`
	} `json:"user"`
	Artwork struct {
		Small  string `json:"150x150"`
		Medium string `json:"480x480"`
		Large  string `json:"1000x1000"`
	} `json:"artwork"`
	Duration  int    `json:"duration"`
	Permalink string `json:"permalink"`
}

type audiusSearchResponse struct {
	Data []audiusTrack `json:"data"`
}

// SearchByMood implements Client against the Audius track search endpoint.
func (c *AudiusClient) SearchByMood(ctx context.Context, moodOrQuery string, limit int) ([]Track, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	query, _ := mood.SearchQuery(moodOrQuery)

	params := url.Values{
		"query":    []string{query},
		"limit":    []string{strconv.Itoa(limit)},
		"app_name": []string{c.appName},
	}
	apiURL := c.endpoint + "/tracks/search?" + params.Encode()

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
		return nil, fmt.Errorf("audius api error: %s - %s", resp.Status, string(body))
	}

	var result audiusSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	tracks := make([]Track, 0, len(result.Data))
	for _, at := range result.Data {
		if len(tracks) >= limit {
			break
		}
		image := at.Artwork.Medium
		if image == "" {
			image = at.Artwork.Small
		}
		tracks = append(tracks, Track{
			ID:          at.ID,
			Title:       at.Title,
			Artist:      at.User.Name,
			Provider:    ProviderAudius,
			ImageURL:    image,
			AudioURL:    c.endpoint + "/tracks/" + at.ID + "/stream?app_name=" + url.QueryEscape(c.appName),
			ExternalURL: "https://audius.co" + at.Permalink,
			Duration:    at.Duration,
		})
	}
	return tracks, nil
}
