package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	LogDir    string `toml:"log_dir"`
	WatchDir  string `toml:"watch_dir"`
	OutputDir string `toml:"output_dir"`
}

// Providers controls which metadata sources are registered and in what order.
type Providers struct {
	Order []string `toml:"order"`
}

// MusicBrainz contains configuration for the MusicBrainz release search and
// Cover Art Archive enrichment. No credentials are required.
type MusicBrainz struct {
	Enabled           bool    `toml:"enabled"`
	BaseURL           string  `toml:"base_url"`
	CoverArtBaseURL   string  `toml:"cover_art_base_url"`
	UserAgent         string  `toml:"user_agent"`
	RequestsPerSecond float64 `toml:"requests_per_second"`
}

// Discogs contains configuration for the Discogs database search.
type Discogs struct {
	Enabled           bool    `toml:"enabled"`
	Token             string  `toml:"token"`
	BaseURL           string  `toml:"base_url"`
	UserAgent         string  `toml:"user_agent"`
	RequestsPerSecond float64 `toml:"requests_per_second"`
}

// Spotify contains configuration for the Spotify album search.
type Spotify struct {
	Enabled           bool    `toml:"enabled"`
	ClientID          string  `toml:"client_id"`
	ClientSecret      string  `toml:"client_secret"`
	TokenURL          string  `toml:"token_url"`
	BaseURL           string  `toml:"base_url"`
	Market            string  `toml:"market"`
	RequestsPerSecond float64 `toml:"requests_per_second"`
}

// Resolver contains fan-out settings for the resolution run.
type Resolver struct {
	Concurrency          int `toml:"concurrency"`
	LookupTimeoutSeconds int `toml:"lookup_timeout_seconds"`
}

// OCR selects the text extraction engine.
type OCR struct {
	Engine string `toml:"engine"`
}

// LLM contains OpenAI-compatible chat completion settings used for vision
// text extraction.
type LLM struct {
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	Model          string `toml:"model"`
	Referer        string `toml:"referer"`
	Title          string `toml:"title"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Vision contains Google Cloud Vision settings.
type Vision struct {
	APIKey   string `toml:"api_key"`
	Endpoint string `toml:"endpoint"`
}

// Tesseract contains settings for the local OCR binary.
type Tesseract struct {
	Binary         string `toml:"binary"`
	Language       string `toml:"language"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// API contains HTTP API settings.
type API struct {
	Bind string `toml:"bind"`
	// Token, when set, is required as a bearer token on every /api request.
	Token string `toml:"token"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for spinescan.
//
// Configuration sections by subsystem:
//   - Paths: log, watch, and output directories
//   - Providers: adapter registration order
//   - MusicBrainz, Discogs, Spotify: per-source endpoints and credentials
//   - Resolver: lookup concurrency and per-lookup timeout
//   - OCR, LLM, Vision, Tesseract: text extraction engines
//   - API: HTTP bind address
//   - Logging: log format and level
type Config struct {
	Paths       Paths       `toml:"paths"`
	Providers   Providers   `toml:"providers"`
	MusicBrainz MusicBrainz `toml:"musicbrainz"`
	Discogs     Discogs     `toml:"discogs"`
	Spotify     Spotify     `toml:"spotify"`
	Resolver    Resolver    `toml:"resolver"`
	OCR         OCR         `toml:"ocr"`
	LLM         LLM         `toml:"llm"`
	Vision      Vision      `toml:"vision"`
	Tesseract   Tesseract   `toml:"tesseract"`
	API         API         `toml:"api"`
	Logging     Logging     `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/spinescan/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("spinescan.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the log and output directories. The watch
// directory is left alone; the watcher reports a missing directory itself.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.LogDir, c.Paths.OutputDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// LookupTimeout returns the per-lookup deadline applied to every provider call.
func (c *Config) LookupTimeout() time.Duration {
	return time.Duration(c.Resolver.LookupTimeoutSeconds) * time.Second
}

// TesseractBinary returns the tesseract executable name.
func (c *Config) TesseractBinary() string {
	if c == nil || strings.TrimSpace(c.Tesseract.Binary) == "" {
		return defaultTesseractBinary
	}
	return strings.TrimSpace(c.Tesseract.Binary)
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// SampleConfig returns the embedded sample configuration.
func SampleConfig() string {
	return sampleConfig
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// LLMConfig contains the chat completion settings used by the vision extractor.
type LLMConfig struct {
	APIKey         string
	BaseURL        string
	Model          string
	Referer        string
	Title          string
	TimeoutSeconds int
}

// GetLLM returns the LLM connection settings.
func (c *Config) GetLLM() LLMConfig {
	return LLMConfig{
		APIKey:         strings.TrimSpace(c.LLM.APIKey),
		BaseURL:        strings.TrimSpace(c.LLM.BaseURL),
		Model:          strings.TrimSpace(c.LLM.Model),
		Referer:        strings.TrimSpace(c.LLM.Referer),
		Title:          strings.TrimSpace(c.LLM.Title),
		TimeoutSeconds: c.LLM.TimeoutSeconds,
	}
}
