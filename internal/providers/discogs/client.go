package discogs

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"spinescan/internal/metadata"
	"spinescan/internal/providers"
)

const (
	// Source is the provider identity tag on every match.
	Source = "Discogs"
	// IDKey is the JSON key carrying the Discogs release id.
	IDKey = "discogs_id"

	defaultBaseURL   = "https://api.discogs.com"
	defaultUserAgent = "spinescan/0.1"
)

// Client performs database searches.
type Client struct {
	token      string
	baseURL    string
	userAgent  string
	httpClient *http.Client
}

var _ providers.Searcher = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithBaseURL overrides the API root.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if baseURL = strings.TrimSpace(baseURL); baseURL != "" {
			c.baseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

// WithUserAgent sets the User-Agent Discogs requires on every request.
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		if userAgent = strings.TrimSpace(userAgent); userAgent != "" {
			c.userAgent = userAgent
		}
	}
}

// New creates a Discogs client.
func New(token string, opts ...Option) (*Client, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, errors.New("discogs token required")
	}
	client := &Client{
		token:      token,
		baseURL:    defaultBaseURL,
		userAgent:  defaultUserAgent,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Source returns the provider identity tag.
func (c *Client) Source() string {
	return Source
}

type searchResponse struct {
	Results []result `json:"results"`
}

type result struct {
	ID         int64  `json:"id"`
	Type       string `json:"type"`
	Title      string `json:"title"`
	Year       string `json:"year"`
	Thumb      string `json:"thumb"`
	CoverImage string `json:"cover_image"`
}

// Search returns the top-ranked release for query.
func (c *Client) Search(ctx context.Context, query metadata.Query) (*metadata.Match, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.New("query must not be empty")
	}
	endpoint, err := url.Parse(c.baseURL + "/database/search")
	if err != nil {
		return nil, fmt.Errorf("parse discogs url: %w", err)
	}
	params := url.Values{}
	params.Set("q", query)
	params.Set("type", "release")
	params.Set("per_page", "1")
	endpoint.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Discogs token="+c.token)
	req.Header.Set("User-Agent", c.userAgent)

	var payload searchResponse
	if err := providers.DoJSON(c.httpClient, "discogs search", req, &payload); err != nil {
		return nil, err
	}
	if len(payload.Results) == 0 {
		return nil, nil
	}
	top := payload.Results[0]
	if top.ID <= 0 {
		return nil, errors.New("discogs result without id")
	}
	artist, title := splitTitle(top.Title)
	cover := strings.TrimSpace(top.CoverImage)
	if cover == "" {
		cover = strings.TrimSpace(top.Thumb)
	}
	return &metadata.Match{
		Source:      Source,
		Artist:      artist,
		Title:       title,
		CoverArtURL: cover,
		IDKey:       IDKey,
		ID:          strconv.FormatInt(top.ID, 10),
	}, nil
}

// splitTitle separates Discogs' "Artist - Title" display string. The first
// separator wins since album titles may contain " - " themselves.
func splitTitle(display string) (artist, title string) {
	display = strings.TrimSpace(display)
	if idx := strings.Index(display, " - "); idx >= 0 {
		return strings.TrimSpace(display[:idx]), strings.TrimSpace(display[idx+3:])
	}
	return "", display
}
