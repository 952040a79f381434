package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"spinescan/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// Only MusicBrainz is active, with a generous rate limit, and extraction uses
// tesseract so no hosted credentials are needed. Options adjust the rest.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.WatchDir = filepath.Join(base, "watch")
	cfgVal.Paths.OutputDir = filepath.Join(base, "results")
	cfgVal.MusicBrainz.RequestsPerSecond = 100
	cfgVal.Discogs.Token = ""
	cfgVal.Discogs.RequestsPerSecond = 100
	cfgVal.Spotify.ClientID = ""
	cfgVal.Spotify.ClientSecret = ""
	cfgVal.Spotify.RequestsPerSecond = 100
	cfgVal.OCR.Engine = config.OCREngineTesseract
	cfgVal.API.Bind = "127.0.0.1:0"

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithMusicBrainz points MusicBrainz and the Cover Art Archive at baseURL, as
// served by NewCatalogServer.
func WithMusicBrainz(baseURL string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.MusicBrainz.BaseURL = baseURL + MusicBrainzPath
		b.cfg.MusicBrainz.CoverArtBaseURL = baseURL + CoverArtPath
	}
}

// WithDiscogs enables Discogs against baseURL with token.
func WithDiscogs(baseURL, token string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Discogs.Enabled = true
		b.cfg.Discogs.BaseURL = baseURL + DiscogsPath
		b.cfg.Discogs.Token = token
	}
}

// WithoutMusicBrainz disables MusicBrainz.
func WithoutMusicBrainz() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.MusicBrainz.Enabled = false
	}
}

// WithStubbedBinaries writes stub executables for the provided names and
// prepends them to PATH. If names is empty, tesseract is stubbed.
func WithStubbedBinaries(names ...string) ConfigOption {
	return func(b *configBuilder) {
		if len(names) == 0 {
			names = []string{"tesseract"}
		}
		binDir := filepath.Join(b.baseDir, "bin")
		if err := os.MkdirAll(binDir, 0o755); err != nil {
			b.t.Fatalf("mkdir bin dir: %v", err)
		}
		script := []byte("#!/bin/sh\nexit 0\n")
		for _, name := range names {
			target := filepath.Join(binDir, name)
			if err := os.WriteFile(target, script, 0o755); err != nil {
				b.t.Fatalf("write stub %s: %v", name, err)
			}
		}
		oldPath := os.Getenv("PATH")
		if err := os.Setenv("PATH", binDir+string(os.PathListSeparator)+oldPath); err != nil {
			b.t.Fatalf("set PATH: %v", err)
		}
		b.t.Cleanup(func() {
			_ = os.Setenv("PATH", oldPath)
		})
	}
}

// WriteConfig encodes cfg as TOML into the config's base directory and
// returns the file path.
func WriteConfig(t testing.TB, cfg *config.Config) string {
	t.Helper()

	data, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	path := filepath.Join(BaseDir(cfg), "config.toml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.LogDir)
}
