package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"spinescan/internal/config"
)

func clearCredentialEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"SPOTIFY_CLIENT_ID", "SPOTIFY_CLIENT_SECRET", "DISCOGS_TOKEN",
		"OPENAI_API_KEY", "OPENROUTER_API_KEY", "GOOGLE_VISION_API_KEY",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	clearCredentialEnv(t)
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved != filepath.Join(tempHome, ".config", "spinescan", "config.toml") {
		t.Fatalf("unexpected resolved path %q", resolved)
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantLogDir := filepath.Join(tempHome, ".local", "share", "spinescan", "logs")
	if cfg.Paths.LogDir != wantLogDir {
		t.Fatalf("unexpected log dir: got %q want %q", cfg.Paths.LogDir, wantLogDir)
	}
	if got := strings.Join(cfg.Providers.Order, ","); got != "musicbrainz,discogs,spotify" {
		t.Fatalf("unexpected provider order %q", got)
	}
	if cfg.Resolver.Concurrency != 4 || cfg.Resolver.LookupTimeoutSeconds != 15 {
		t.Fatalf("unexpected resolver defaults: %+v", cfg.Resolver)
	}
	if cfg.LookupTimeout().Seconds() != 15 {
		t.Fatalf("unexpected lookup timeout %v", cfg.LookupTimeout())
	}
	if cfg.OCR.Engine != config.OCREngineAuto {
		t.Fatalf("unexpected OCR engine %q", cfg.OCR.Engine)
	}
	if cfg.Spotify.ClientID != "" || cfg.Discogs.Token != "" {
		t.Fatal("expected no provider credentials by default")
	}
	if cfg.MusicBrainz.UserAgent == "" {
		t.Fatal("expected default MusicBrainz user agent")
	}

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.Paths.LogDir, cfg.Paths.OutputDir} {
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
	}
}

func TestLoadReadsEnvironmentCredentials(t *testing.T) {
	clearCredentialEnv(t)
	t.Setenv("HOME", t.TempDir())
	t.Setenv("SPOTIFY_CLIENT_ID", " id ")
	t.Setenv("SPOTIFY_CLIENT_SECRET", "secret")
	t.Setenv("DISCOGS_TOKEN", "discogs-token")
	t.Setenv("OPENROUTER_API_KEY", "router-key")

	cfg, _, _, err := config.Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Spotify.ClientID != "id" || cfg.Spotify.ClientSecret != "secret" {
		t.Fatalf("unexpected spotify credentials: %+v", cfg.Spotify)
	}
	if cfg.Discogs.Token != "discogs-token" {
		t.Fatalf("unexpected discogs token %q", cfg.Discogs.Token)
	}
	if cfg.GetLLM().APIKey != "router-key" {
		t.Fatalf("expected OPENROUTER_API_KEY fallback, got %q", cfg.GetLLM().APIKey)
	}
}

func TestLoadCustomPath(t *testing.T) {
	clearCredentialEnv(t)
	t.Setenv("HOME", t.TempDir())
	configPath := filepath.Join(t.TempDir(), "spinescan.toml")

	type payload struct {
		Providers struct {
			Order []string `toml:"order"`
		} `toml:"providers"`
		Spotify struct {
			ClientID     string `toml:"client_id"`
			ClientSecret string `toml:"client_secret"`
			Market       string `toml:"market"`
		} `toml:"spotify"`
		Resolver struct {
			Concurrency int `toml:"concurrency"`
		} `toml:"resolver"`
		Logging struct {
			Format string `toml:"format"`
		} `toml:"logging"`
	}
	custom := payload{}
	custom.Providers.Order = []string{" Spotify ", "MUSICBRAINZ"}
	custom.Spotify.ClientID = "abc"
	custom.Spotify.ClientSecret = "def"
	custom.Spotify.Market = "gb"
	custom.Resolver.Concurrency = 8
	custom.Logging.Format = "JSON"

	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != configPath {
		t.Fatalf("expected custom path to be used, got %q exists=%v", resolved, exists)
	}
	if got := strings.Join(cfg.Providers.Order, ","); got != "spotify,musicbrainz" {
		t.Fatalf("unexpected provider order %q", got)
	}
	if cfg.Spotify.Market != "GB" {
		t.Fatalf("expected market upper-cased, got %q", cfg.Spotify.Market)
	}
	if cfg.Resolver.Concurrency != 8 {
		t.Fatalf("unexpected concurrency %d", cfg.Resolver.Concurrency)
	}
	if cfg.Logging.Format != "json" {
		t.Fatalf("unexpected log format %q", cfg.Logging.Format)
	}
}

func TestLoadRejectsMalformedTOML(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "broken.toml")
	if err := os.WriteFile(configPath, []byte("[resolver\nconcurrency = 1"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, _, err := config.Load(configPath); err == nil || !strings.Contains(err.Error(), "parse config") {
		t.Fatalf("expected parse error, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*config.Config)
		wantErr string
	}{
		{name: "defaults"},
		{name: "unknown provider", mutate: func(c *config.Config) { c.Providers.Order = []string{"lastfm"} }, wantErr: "unknown provider"},
		{name: "duplicate provider", mutate: func(c *config.Config) { c.Providers.Order = []string{"discogs", "discogs"} }, wantErr: "more than once"},
		{name: "zero concurrency", mutate: func(c *config.Config) { c.Resolver.Concurrency = 0 }, wantErr: "resolver.concurrency"},
		{name: "negative rate", mutate: func(c *config.Config) { c.Discogs.RequestsPerSecond = -1 }, wantErr: "discogs.requests_per_second"},
		{name: "llm without key", mutate: func(c *config.Config) { c.OCR.Engine = config.OCREngineLLM }, wantErr: "llm.api_key"},
		{name: "vision without key", mutate: func(c *config.Config) { c.OCR.Engine = config.OCREngineVision }, wantErr: "vision.api_key"},
		{name: "vision with key", mutate: func(c *config.Config) {
			c.OCR.Engine = config.OCREngineVision
			c.Vision.APIKey = "k"
		}},
		{name: "unknown engine", mutate: func(c *config.Config) { c.OCR.Engine = "easyocr" }, wantErr: "ocr.engine"},
		{name: "bad log format", mutate: func(c *config.Config) { c.Logging.Format = "xml" }, wantErr: "logging.format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			if tt.mutate != nil {
				tt.mutate(&cfg)
			}
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestSampleConfigParsesAndValidates(t *testing.T) {
	clearCredentialEnv(t)
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("sample config should load: %v", err)
	}
	if !exists {
		t.Fatal("expected sample file to exist")
	}
	if cfg.API.Bind != "127.0.0.1:7488" {
		t.Fatalf("unexpected bind %q", cfg.API.Bind)
	}
	if !strings.Contains(config.SampleConfig(), "[musicbrainz]") {
		t.Fatal("sample config missing musicbrainz section")
	}
}
