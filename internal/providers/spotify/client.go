package spotify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"spinescan/internal/metadata"
	"spinescan/internal/providers"
)

const (
	// Source is the provider identity tag on every match.
	Source = "Spotify"
	// IDKey is the JSON key carrying the Spotify album id.
	IDKey = "spotify_id"

	defaultTokenURL = "https://accounts.spotify.com/api/token"
	defaultBaseURL  = "https://api.spotify.com/v1"
	defaultTimeout  = 10 * time.Second
)

// Credentials are the client credentials issued for a Spotify app.
type Credentials struct {
	ClientID     string
	ClientSecret string
}

// Client performs album searches.
type Client struct {
	baseURL    string
	tokenURL   string
	market     string
	base       *http.Client
	httpClient *http.Client
}

var _ providers.Searcher = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the transport used for both token and API requests.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.base = client
		}
	}
}

// WithBaseURL overrides the Web API root.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if baseURL = strings.TrimSpace(baseURL); baseURL != "" {
			c.baseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

// WithTokenURL overrides the accounts token endpoint.
func WithTokenURL(tokenURL string) Option {
	return func(c *Client) {
		if tokenURL = strings.TrimSpace(tokenURL); tokenURL != "" {
			c.tokenURL = tokenURL
		}
	}
}

// WithMarket restricts results to an ISO 3166-1 alpha-2 market.
func WithMarket(market string) Option {
	return func(c *Client) {
		c.market = strings.ToUpper(strings.TrimSpace(market))
	}
}

// New creates a Spotify client. Both credential halves are required.
func New(creds Credentials, opts ...Option) (*Client, error) {
	creds.ClientID = strings.TrimSpace(creds.ClientID)
	creds.ClientSecret = strings.TrimSpace(creds.ClientSecret)
	if creds.ClientID == "" || creds.ClientSecret == "" {
		return nil, errors.New("spotify client id and secret required")
	}
	client := &Client{
		baseURL:  defaultBaseURL,
		tokenURL: defaultTokenURL,
		base:     &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(client)
	}

	cc := &clientcredentials.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		TokenURL:     client.tokenURL,
		AuthStyle:    oauth2.AuthStyleInHeader,
	}
	tokenCtx := context.WithValue(context.Background(), oauth2.HTTPClient, client.base)
	client.httpClient = cc.Client(tokenCtx)
	if client.base.Timeout > 0 {
		client.httpClient.Timeout = client.base.Timeout
	}
	return client, nil
}

// Source returns the provider identity tag.
func (c *Client) Source() string {
	return Source
}

type searchResponse struct {
	Albums struct {
		Items []album `json:"items"`
	} `json:"albums"`
}

type album struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Artists []struct {
		Name string `json:"name"`
	} `json:"artists"`
	Images []struct {
		URL    string `json:"url"`
		Width  int    `json:"width"`
		Height int    `json:"height"`
	} `json:"images"`
}

// Search returns the top-ranked album for query.
func (c *Client) Search(ctx context.Context, query metadata.Query) (*metadata.Match, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.New("query must not be empty")
	}
	endpoint, err := url.Parse(c.baseURL + "/search")
	if err != nil {
		return nil, fmt.Errorf("parse spotify url: %w", err)
	}
	params := url.Values{}
	params.Set("q", query)
	params.Set("type", "album")
	params.Set("limit", "1")
	if c.market != "" {
		params.Set("market", c.market)
	}
	endpoint.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	var payload searchResponse
	if err := providers.DoJSON(c.httpClient, "spotify search", req, &payload); err != nil {
		return nil, err
	}
	if len(payload.Albums.Items) == 0 {
		return nil, nil
	}
	top := payload.Albums.Items[0]
	if strings.TrimSpace(top.ID) == "" {
		return nil, errors.New("spotify album without id")
	}
	match := &metadata.Match{
		Source: Source,
		Title:  strings.TrimSpace(top.Name),
		IDKey:  IDKey,
		ID:     top.ID,
	}
	if len(top.Artists) > 0 {
		match.Artist = strings.TrimSpace(top.Artists[0].Name)
	}
	// Spotify lists images widest first.
	if len(top.Images) > 0 {
		match.CoverArtURL = top.Images[0].URL
	}
	return match, nil
}
