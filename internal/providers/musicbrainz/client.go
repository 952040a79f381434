package musicbrainz

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"spinescan/internal/logging"
	"spinescan/internal/metadata"
	"spinescan/internal/providers"
)

const (
	// Source is the provider identity tag on every match.
	Source = "MusicBrainz"
	// IDKey is the JSON key carrying the release MBID.
	IDKey = "mbid"

	defaultBaseURL         = "https://musicbrainz.org/ws/2"
	defaultCoverArtBaseURL = "https://coverartarchive.org"
)

// Client performs release searches.
type Client struct {
	baseURL         string
	coverArtBaseURL string
	userAgent       string
	httpClient      *http.Client
	logger          *slog.Logger
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

// WithBaseURL overrides the web service root.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if baseURL = strings.TrimSpace(baseURL); baseURL != "" {
			c.baseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

// WithCoverArtBaseURL overrides the Cover Art Archive root.
func WithCoverArtBaseURL(baseURL string) Option {
	return func(c *Client) {
		if baseURL = strings.TrimSpace(baseURL); baseURL != "" {
			c.coverArtBaseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

// WithLogger sets the logger used for enrichment diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// New creates a MusicBrainz client. userAgent is mandatory.
func New(userAgent string, opts ...Option) (*Client, error) {
	userAgent = strings.TrimSpace(userAgent)
	if userAgent == "" {
		return nil, errors.New("musicbrainz user agent required")
	}
	client := &Client{
		baseURL:         defaultBaseURL,
		coverArtBaseURL: defaultCoverArtBaseURL,
		userAgent:       userAgent,
		httpClient:      &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(client)
	}
	client.logger = logging.NewComponentLogger(client.logger, "musicbrainz")
	return client, nil
}

// Source returns the provider identity tag.
func (c *Client) Source() string {
	return Source
}

type searchResponse struct {
	Count    int       `json:"count"`
	Releases []release `json:"releases"`
}

type release struct {
	ID           string         `json:"id"`
	Title        string         `json:"title"`
	Score        int            `json:"score"`
	ArtistCredit []artistCredit `json:"artist-credit"`
}

type artistCredit struct {
	Name   string `json:"name"`
	Artist struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"artist"`
}

type coverArtResponse struct {
	Images []struct {
		Image string `json:"image"`
		Front bool   `json:"front"`
	} `json:"images"`
}

// Search returns the top-ranked release for query, with its cover art when
// the archive has one.
func (c *Client) Search(ctx context.Context, query metadata.Query) (*metadata.Match, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.New("query must not be empty")
	}
	endpoint, err := url.Parse(c.baseURL + "/release/")
	if err != nil {
		return nil, fmt.Errorf("parse musicbrainz url: %w", err)
	}
	params := url.Values{}
	params.Set("query", query)
	params.Set("limit", "1")
	params.Set("fmt", "json")
	endpoint.RawQuery = params.Encode()

	req, err := c.newRequest(ctx, endpoint.String())
	if err != nil {
		return nil, err
	}
	var payload searchResponse
	if err := providers.DoJSON(c.httpClient, "musicbrainz search", req, &payload); err != nil {
		return nil, err
	}
	if len(payload.Releases) == 0 {
		return nil, nil
	}
	top := payload.Releases[0]
	if strings.TrimSpace(top.ID) == "" {
		return nil, errors.New("musicbrainz release without id")
	}

	match := &metadata.Match{
		Source: Source,
		Artist: primaryArtist(top.ArtistCredit),
		Title:  strings.TrimSpace(top.Title),
		IDKey:  IDKey,
		ID:     top.ID,
	}

	cover, err := c.CoverArt(ctx, top.ID)
	if err != nil {
		c.logger.Debug("cover art lookup failed",
			logging.String("mbid", top.ID),
			logging.Error(err),
		)
	}
	match.CoverArtURL = cover
	return match, nil
}

// CoverArt returns the first image URL the Cover Art Archive lists for the
// release, or "" when the release has no artwork.
func (c *Client) CoverArt(ctx context.Context, mbid string) (string, error) {
	req, err := c.newRequest(ctx, c.coverArtBaseURL+"/release/"+url.PathEscape(mbid))
	if err != nil {
		return "", err
	}
	var payload coverArtResponse
	if err := providers.DoJSON(c.httpClient, "cover art archive", req, &payload); err != nil {
		var statusErr *providers.StatusError
		if errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound {
			return "", nil
		}
		return "", err
	}
	for _, img := range payload.Images {
		if img.Front && img.Image != "" {
			return img.Image, nil
		}
	}
	if len(payload.Images) > 0 {
		return payload.Images[0].Image, nil
	}
	return "", nil
}

func (c *Client) newRequest(ctx context.Context, target string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	return req, nil
}

func primaryArtist(credits []artistCredit) string {
	if len(credits) == 0 {
		return ""
	}
	if name := strings.TrimSpace(credits[0].Artist.Name); name != "" {
		return name
	}
	return strings.TrimSpace(credits[0].Name)
}
