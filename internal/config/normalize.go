package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeProviders()
	c.normalizeMusicBrainz()
	c.normalizeDiscogs()
	c.normalizeSpotify()
	c.normalizeResolver()
	c.normalizeOCR()
	c.normalizeLLM()
	c.normalizeVision()
	c.normalizeTesseract()
	c.API.Bind = strings.TrimSpace(c.API.Bind)
	if c.API.Bind == "" {
		c.API.Bind = defaultAPIBind
	}
	c.API.Token = strings.TrimSpace(c.API.Token)
	if c.API.Token == "" {
		if value, ok := os.LookupEnv("SPINESCAN_API_TOKEN"); ok {
			c.API.Token = strings.TrimSpace(value)
		}
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.WatchDir) == "" {
		c.Paths.WatchDir = defaultWatchDir
	}
	if c.Paths.WatchDir, err = expandPath(c.Paths.WatchDir); err != nil {
		return fmt.Errorf("paths.watch_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		c.Paths.OutputDir = defaultOutputDir
	}
	if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeProviders() {
	if len(c.Providers.Order) == 0 {
		c.Providers.Order = DefaultProviderOrder()
		return
	}
	order := make([]string, 0, len(c.Providers.Order))
	for _, name := range c.Providers.Order {
		normalized := strings.ToLower(strings.TrimSpace(name))
		if normalized == "" {
			continue
		}
		order = append(order, normalized)
	}
	c.Providers.Order = order
}

func (c *Config) normalizeMusicBrainz() {
	c.MusicBrainz.BaseURL = trimOrDefault(c.MusicBrainz.BaseURL, defaultMusicBrainzBaseURL)
	c.MusicBrainz.CoverArtBaseURL = trimOrDefault(c.MusicBrainz.CoverArtBaseURL, defaultCoverArtBaseURL)
	c.MusicBrainz.UserAgent = trimOrDefault(c.MusicBrainz.UserAgent, defaultUserAgent)
	if c.MusicBrainz.RequestsPerSecond == 0 {
		c.MusicBrainz.RequestsPerSecond = defaultMusicBrainzRate
	}
}

func (c *Config) normalizeDiscogs() {
	c.Discogs.Token = strings.TrimSpace(c.Discogs.Token)
	if c.Discogs.Token == "" {
		if value, ok := os.LookupEnv("DISCOGS_TOKEN"); ok {
			c.Discogs.Token = strings.TrimSpace(value)
		}
	}
	c.Discogs.BaseURL = trimOrDefault(c.Discogs.BaseURL, defaultDiscogsBaseURL)
	c.Discogs.UserAgent = trimOrDefault(c.Discogs.UserAgent, defaultUserAgent)
	if c.Discogs.RequestsPerSecond == 0 {
		c.Discogs.RequestsPerSecond = defaultDiscogsRate
	}
}

func (c *Config) normalizeSpotify() {
	c.Spotify.ClientID = strings.TrimSpace(c.Spotify.ClientID)
	if c.Spotify.ClientID == "" {
		if value, ok := os.LookupEnv("SPOTIFY_CLIENT_ID"); ok {
			c.Spotify.ClientID = strings.TrimSpace(value)
		}
	}
	c.Spotify.ClientSecret = strings.TrimSpace(c.Spotify.ClientSecret)
	if c.Spotify.ClientSecret == "" {
		if value, ok := os.LookupEnv("SPOTIFY_CLIENT_SECRET"); ok {
			c.Spotify.ClientSecret = strings.TrimSpace(value)
		}
	}
	c.Spotify.TokenURL = trimOrDefault(c.Spotify.TokenURL, defaultSpotifyTokenURL)
	c.Spotify.BaseURL = trimOrDefault(c.Spotify.BaseURL, defaultSpotifyBaseURL)
	c.Spotify.Market = strings.ToUpper(strings.TrimSpace(c.Spotify.Market))
	if c.Spotify.RequestsPerSecond == 0 {
		c.Spotify.RequestsPerSecond = defaultSpotifyRate
	}
}

func (c *Config) normalizeResolver() {
	if c.Resolver.Concurrency == 0 {
		c.Resolver.Concurrency = defaultResolverConcurrency
	}
	if c.Resolver.LookupTimeoutSeconds == 0 {
		c.Resolver.LookupTimeoutSeconds = defaultLookupTimeout
	}
}

func (c *Config) normalizeOCR() {
	c.OCR.Engine = strings.ToLower(strings.TrimSpace(c.OCR.Engine))
	if c.OCR.Engine == "" {
		c.OCR.Engine = defaultOCREngine
	}
}

func (c *Config) normalizeLLM() {
	c.LLM.BaseURL = trimOrDefault(c.LLM.BaseURL, defaultLLMBaseURL)
	c.LLM.Model = trimOrDefault(c.LLM.Model, defaultLLMModel)
	c.LLM.Referer = trimOrDefault(c.LLM.Referer, defaultLLMReferer)
	c.LLM.Title = trimOrDefault(c.LLM.Title, defaultLLMTitle)
	if c.LLM.TimeoutSeconds <= 0 {
		c.LLM.TimeoutSeconds = defaultLLMTimeout
	}
	c.LLM.APIKey = strings.TrimSpace(c.LLM.APIKey)
	if c.LLM.APIKey == "" {
		if value, ok := os.LookupEnv("OPENAI_API_KEY"); ok {
			c.LLM.APIKey = strings.TrimSpace(value)
		} else if value, ok := os.LookupEnv("OPENROUTER_API_KEY"); ok {
			c.LLM.APIKey = strings.TrimSpace(value)
		}
	}
}

func (c *Config) normalizeVision() {
	c.Vision.APIKey = strings.TrimSpace(c.Vision.APIKey)
	if c.Vision.APIKey == "" {
		if value, ok := os.LookupEnv("GOOGLE_VISION_API_KEY"); ok {
			c.Vision.APIKey = strings.TrimSpace(value)
		}
	}
	c.Vision.Endpoint = strings.TrimSpace(c.Vision.Endpoint)
}

func (c *Config) normalizeTesseract() {
	c.Tesseract.Binary = trimOrDefault(c.Tesseract.Binary, defaultTesseractBinary)
	c.Tesseract.Language = trimOrDefault(c.Tesseract.Language, defaultTesseractLang)
	if c.Tesseract.TimeoutSeconds <= 0 {
		c.Tesseract.TimeoutSeconds = defaultTesseractTime
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func trimOrDefault(value, fallback string) string {
	if trimmed := strings.TrimSpace(value); trimmed != "" {
		return trimmed
	}
	return fallback
}
