package main

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"spinescan/internal/config"
	"spinescan/internal/extraction"
	"spinescan/internal/pipeline"
	"spinescan/internal/testsupport"
)

var testCatalog = map[string]testsupport.Release{
	"Abbey Road":   {ID: "mb-1", Artist: "The Beatles", Title: "Abbey Road", CoverURL: "https://img.example/abbey.jpg"},
	"Kind of Blue": {ID: "mb-2", Artist: "Miles Davis", Title: "Kind of Blue"},
}

type stubExtractor struct {
	lines []string
	err   error
}

func (s stubExtractor) Extract(context.Context, extraction.Image) ([]string, error) {
	return s.lines, s.err
}

func (s stubExtractor) Engines() []string { return []string{"stub"} }

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	server     *testsupport.CatalogServer
}

// setupCLITestEnv writes a config with only MusicBrainz active, pointed at a
// catalog server.
func setupCLITestEnv(t *testing.T, opts ...testsupport.ConfigOption) *cliTestEnv {
	t.Helper()

	srv := testsupport.NewCatalogServer(t, testCatalog)
	opts = append([]testsupport.ConfigOption{testsupport.WithMusicBrainz(srv.URL)}, opts...)
	cfg := testsupport.NewConfig(t, opts...)
	cfg.Discogs.Enabled = false
	cfg.Spotify.Enabled = false
	cfg.Logging.Level = "error"
	return &cliTestEnv{
		cfg:        cfg,
		configPath: testsupport.WriteConfig(t, cfg),
		server:     srv,
	}
}

// stubExtraction makes every pipeline built by the CLI use extractor.
func stubExtraction(t *testing.T, extractor pipeline.TextExtractor) {
	t.Helper()
	original := newPipeline
	newPipeline = func(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*pipeline.Pipeline, error) {
		return pipeline.New(ctx, cfg, pipeline.WithLogger(logger), pipeline.WithExtractor(extractor))
	}
	t.Cleanup(func() { newPipeline = original })
}

func (env *cliTestEnv) run(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	return runCLI(t, stdin, append([]string{"--config", env.configPath}, args...)...)
}

func runCLI(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()

	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}
