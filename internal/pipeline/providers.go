package pipeline

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"spinescan/internal/config"
	"spinescan/internal/logging"
	"spinescan/internal/providers"
	"spinescan/internal/providers/discogs"
	"spinescan/internal/providers/musicbrainz"
	"spinescan/internal/providers/spotify"
)

// ProviderSettings describes one configured source and whether it takes part
// in runs.
type ProviderSettings struct {
	// Name is the config name, for example "spotify".
	Name string
	// Source is the tag stamped on matches, for example "Spotify".
	Source            string
	Enabled           bool
	HasCredentials    bool
	RequestsPerSecond float64
	// Reason explains why an inactive source was left out.
	Reason string
}

// Active reports whether the source is consulted during runs.
func (p ProviderSettings) Active() bool {
	return p.Enabled && p.HasCredentials
}

// ProviderSettingsFromConfig lists the sources in providers.order.
func ProviderSettingsFromConfig(cfg *config.Config) []ProviderSettings {
	if cfg == nil {
		return nil
	}
	out := make([]ProviderSettings, 0, len(cfg.Providers.Order))
	for _, name := range cfg.Providers.Order {
		var s ProviderSettings
		switch name {
		case config.ProviderMusicBrainz:
			s = ProviderSettings{
				Name:              name,
				Source:            musicbrainz.Source,
				Enabled:           cfg.MusicBrainz.Enabled,
				HasCredentials:    strings.TrimSpace(cfg.MusicBrainz.UserAgent) != "",
				RequestsPerSecond: cfg.MusicBrainz.RequestsPerSecond,
			}
			if !s.HasCredentials {
				s.Reason = "musicbrainz.user_agent not set"
			}
		case config.ProviderDiscogs:
			s = ProviderSettings{
				Name:              name,
				Source:            discogs.Source,
				Enabled:           cfg.Discogs.Enabled,
				HasCredentials:    strings.TrimSpace(cfg.Discogs.Token) != "",
				RequestsPerSecond: cfg.Discogs.RequestsPerSecond,
			}
			if !s.HasCredentials {
				s.Reason = "discogs.token not set"
			}
		case config.ProviderSpotify:
			s = ProviderSettings{
				Name:              name,
				Source:            spotify.Source,
				Enabled:           cfg.Spotify.Enabled,
				HasCredentials:    strings.TrimSpace(cfg.Spotify.ClientID) != "" && strings.TrimSpace(cfg.Spotify.ClientSecret) != "",
				RequestsPerSecond: cfg.Spotify.RequestsPerSecond,
			}
			if !s.HasCredentials {
				s.Reason = "spotify.client_id and spotify.client_secret not both set"
			}
		default:
			s = ProviderSettings{Name: name, Reason: "unknown provider"}
		}
		if !s.Enabled && s.Source != "" {
			s.Reason = "disabled in config"
		}
		out = append(out, s)
	}
	return out
}

// BuildAdapters creates a guarded adapter for every active source, in
// providers.order. Inactive sources are logged at INFO and skipped.
func BuildAdapters(cfg *config.Config, httpClient *http.Client, logger *slog.Logger) ([]providers.Adapter, []ProviderSettings, error) {
	logger = logging.NewComponentLogger(logger, "pipeline")
	settings := ProviderSettingsFromConfig(cfg)
	adapters := make([]providers.Adapter, 0, len(settings))
	for _, s := range settings {
		if !s.Active() {
			logger.Info("provider disabled",
				logging.String(logging.FieldProvider, s.Name),
				logging.String("reason", s.Reason),
			)
			continue
		}
		searcher, err := newSearcher(cfg, s.Name, httpClient, logger)
		if err != nil {
			return nil, settings, fmt.Errorf("build %s adapter: %w", s.Name, err)
		}
		adapters = append(adapters, providers.NewGuard(searcher,
			providers.WithRateLimit(s.RequestsPerSecond),
			providers.WithLookupTimeout(cfg.LookupTimeout()),
			providers.WithLogger(logger),
		))
	}
	return adapters, settings, nil
}

func newSearcher(cfg *config.Config, name string, httpClient *http.Client, logger *slog.Logger) (providers.Searcher, error) {
	switch name {
	case config.ProviderMusicBrainz:
		opts := []musicbrainz.Option{
			musicbrainz.WithBaseURL(cfg.MusicBrainz.BaseURL),
			musicbrainz.WithCoverArtBaseURL(cfg.MusicBrainz.CoverArtBaseURL),
			musicbrainz.WithLogger(logger),
		}
		if httpClient != nil {
			opts = append(opts, musicbrainz.WithHTTPClient(httpClient))
		}
		return musicbrainz.New(cfg.MusicBrainz.UserAgent, opts...)
	case config.ProviderDiscogs:
		opts := []discogs.Option{
			discogs.WithBaseURL(cfg.Discogs.BaseURL),
			discogs.WithUserAgent(cfg.Discogs.UserAgent),
		}
		if httpClient != nil {
			opts = append(opts, discogs.WithHTTPClient(httpClient))
		}
		return discogs.New(cfg.Discogs.Token, opts...)
	case config.ProviderSpotify:
		opts := []spotify.Option{
			spotify.WithBaseURL(cfg.Spotify.BaseURL),
			spotify.WithTokenURL(cfg.Spotify.TokenURL),
			spotify.WithMarket(cfg.Spotify.Market),
		}
		if httpClient != nil {
			opts = append(opts, spotify.WithHTTPClient(httpClient))
		}
		return spotify.New(spotify.Credentials{
			ClientID:     cfg.Spotify.ClientID,
			ClientSecret: cfg.Spotify.ClientSecret,
		}, opts...)
	default:
		return nil, fmt.Errorf("unknown provider %q", name)
	}
}
