package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateProviders(); err != nil {
		return err
	}
	if err := c.validateResolver(); err != nil {
		return err
	}
	if err := c.validateOCR(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateProviders() error {
	seen := make(map[string]struct{}, len(c.Providers.Order))
	for _, name := range c.Providers.Order {
		switch name {
		case ProviderMusicBrainz, ProviderDiscogs, ProviderSpotify:
		default:
			return fmt.Errorf("providers.order: unknown provider %q (expected one of %s)", name,
				strings.Join(DefaultProviderOrder(), ", "))
		}
		if _, dup := seen[name]; dup {
			return fmt.Errorf("providers.order: provider %q listed more than once", name)
		}
		seen[name] = struct{}{}
	}
	for key, value := range map[string]float64{
		"musicbrainz.requests_per_second": c.MusicBrainz.RequestsPerSecond,
		"discogs.requests_per_second":     c.Discogs.RequestsPerSecond,
		"spotify.requests_per_second":     c.Spotify.RequestsPerSecond,
	} {
		if value < 0 {
			return fmt.Errorf("%s must not be negative", key)
		}
	}
	if c.MusicBrainz.Enabled && strings.TrimSpace(c.MusicBrainz.UserAgent) == "" {
		return errors.New("musicbrainz.user_agent must be set when musicbrainz.enabled is true")
	}
	return nil
}

func (c *Config) validateResolver() error {
	return ensurePositiveMap(map[string]int{
		"resolver.concurrency":            c.Resolver.Concurrency,
		"resolver.lookup_timeout_seconds": c.Resolver.LookupTimeoutSeconds,
		"llm.timeout_seconds":             c.LLM.TimeoutSeconds,
		"tesseract.timeout_seconds":       c.Tesseract.TimeoutSeconds,
	})
}

func (c *Config) validateOCR() error {
	switch c.OCR.Engine {
	case OCREngineAuto, OCREngineTesseract:
	case OCREngineLLM:
		if c.LLM.APIKey == "" {
			return errors.New("llm.api_key must be set when ocr.engine is \"llm\" (or set OPENAI_API_KEY)")
		}
	case OCREngineVision:
		if c.Vision.APIKey == "" {
			return errors.New("vision.api_key must be set when ocr.engine is \"vision\" (or set GOOGLE_VISION_API_KEY)")
		}
	default:
		return fmt.Errorf("ocr.engine: unsupported value %q (expected auto, llm, vision, or tesseract)", c.OCR.Engine)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q (expected console or json)", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
