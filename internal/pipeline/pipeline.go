package pipeline

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"spinescan/internal/config"
	"spinescan/internal/extraction"
	"spinescan/internal/logging"
	"spinescan/internal/metadata"
	"spinescan/internal/providers"
	"spinescan/internal/resolver"
	"spinescan/internal/services"
	"spinescan/internal/textutil"
)

// TextExtractor reads candidate query lines from an image.
type TextExtractor interface {
	Extract(ctx context.Context, img extraction.Image) ([]string, error)
	Engines() []string
}

// Pipeline runs extraction and resolution for one configuration. It is safe
// for concurrent use; runs share nothing but the adapters' rate limiters.
type Pipeline struct {
	cfg        *config.Config
	extractor  TextExtractor
	resolver   *resolver.Resolver
	settings   []ProviderSettings
	httpClient *http.Client
	adapters   []providers.Adapter
	logger     *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithHTTPClient sets the transport handed to every provider client.
func WithHTTPClient(client *http.Client) Option {
	return func(p *Pipeline) {
		p.httpClient = client
	}
}

// WithExtractor replaces the extractor built from config.
func WithExtractor(extractor TextExtractor) Option {
	return func(p *Pipeline) {
		p.extractor = extractor
	}
}

// WithAdapters replaces the adapters built from config. Calling it with no
// adapters yields a pipeline that resolves every query to no matches.
func WithAdapters(adapters ...providers.Adapter) Option {
	return func(p *Pipeline) {
		p.adapters = append([]providers.Adapter{}, adapters...)
	}
}

// WithLogger sets the pipeline logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// ScanResult is the outcome of one image scan.
type ScanResult struct {
	RunID   string
	Image   string
	Lines   []string
	Results metadata.ResultSet
	Elapsed time.Duration
}

// New builds a pipeline from cfg.
func New(ctx context.Context, cfg *config.Config, opts ...Option) (*Pipeline, error) {
	if cfg == nil {
		return nil, services.Wrap(services.ErrConfiguration, "pipeline", "configure", "config required", nil)
	}
	p := &Pipeline{cfg: cfg}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = logging.NewComponentLogger(p.logger, "pipeline")

	p.settings = ProviderSettingsFromConfig(cfg)
	if p.adapters == nil {
		adapters, _, err := BuildAdapters(cfg, p.httpClient, p.logger)
		if err != nil {
			return nil, services.Wrap(services.ErrConfiguration, "pipeline", "build adapters", "provider setup failed", err)
		}
		p.adapters = adapters
	}
	p.resolver = resolver.New(p.adapters,
		resolver.WithConcurrency(cfg.Resolver.Concurrency),
		resolver.WithLogger(p.logger),
	)

	if p.extractor == nil {
		extractor, err := extraction.NewFromConfig(ctx, cfg, p.logger)
		if err != nil {
			return nil, err
		}
		p.extractor = extractor
	}
	return p, nil
}

// Config returns the configuration the pipeline was built from.
func (p *Pipeline) Config() *config.Config {
	return p.cfg
}

// Providers reports every configured source and whether it is active.
func (p *Pipeline) Providers() []ProviderSettings {
	out := make([]ProviderSettings, len(p.settings))
	copy(out, p.settings)
	return out
}

// ActiveSources returns the source tags consulted during runs, in order.
func (p *Pipeline) ActiveSources() []string {
	adapters := p.resolver.Adapters()
	out := make([]string, len(adapters))
	for i, adapter := range adapters {
		out[i] = adapter.Source()
	}
	return out
}

// Engines returns the configured extraction engines, hosted first.
func (p *Pipeline) Engines() []string {
	return p.extractor.Engines()
}

// Resolve normalizes lines into queries and resolves them. Lines may carry
// embedded line breaks; blank lines are dropped.
func (p *Pipeline) Resolve(ctx context.Context, lines []string) (metadata.ResultSet, error) {
	ctx = WithRunID(ctx)
	return p.resolver.Resolve(ctx, textutil.NormalizeLines(lines))
}

// ResolveText splits raw text into queries and resolves them.
func (p *Pipeline) ResolveText(ctx context.Context, raw string) (metadata.ResultSet, error) {
	ctx = WithRunID(ctx)
	return p.resolver.Resolve(ctx, textutil.NormalizeQueries(raw))
}

// Extract returns the normalized query lines for img.
func (p *Pipeline) Extract(ctx context.Context, img extraction.Image) ([]string, error) {
	ctx = WithRunID(ctx)
	return p.extractor.Extract(ctx, img)
}

// Scan extracts the text of img and resolves every line. A resolution error
// still returns the partial result.
func (p *Pipeline) Scan(ctx context.Context, img extraction.Image) (ScanResult, error) {
	ctx = WithRunID(ctx)
	runID, _ := services.RequestIDFromContext(ctx)
	logger := logging.WithContext(ctx, p.logger)
	start := time.Now()

	result := ScanResult{RunID: runID, Image: img.Name}
	lines, err := p.extractor.Extract(ctx, img)
	if err != nil {
		return result, err
	}
	result.Lines = lines

	set, err := p.resolver.Resolve(ctx, lines)
	result.Results = set
	result.Elapsed = time.Since(start)
	if err != nil {
		return result, err
	}
	logger.Info("scan complete",
		logging.String("image", img.Name),
		logging.Int("lines", len(lines)),
		logging.Int("matches", set.MatchCount()),
		logging.Duration("elapsed", result.Elapsed),
	)
	return result, nil
}

// WithRunID stamps a fresh run correlation ID on ctx unless one is present.
func WithRunID(ctx context.Context) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if id, ok := services.RequestIDFromContext(ctx); ok && strings.TrimSpace(id) != "" {
		return ctx
	}
	return services.WithRequestID(ctx, uuid.NewString())
}
