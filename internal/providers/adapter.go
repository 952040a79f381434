package providers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"spinescan/internal/logging"
	"spinescan/internal/metadata"
	"spinescan/internal/services"
)

// Adapter is the uniform lookup capability the resolver fans out to.
// Lookup returns nil when the source has no usable answer for the query.
type Adapter interface {
	Source() string
	Lookup(ctx context.Context, query metadata.Query) *metadata.Match
}

// Searcher is implemented by source clients. A nil match with a nil error
// means the source returned no results.
type Searcher interface {
	Source() string
	Search(ctx context.Context, query metadata.Query) (*metadata.Match, error)
}

// GuardOption configures a Guard.
type GuardOption func(*Guard)

// WithRateLimit caps requests per second with a burst of one. Zero or
// negative disables limiting.
func WithRateLimit(perSecond float64) GuardOption {
	return func(g *Guard) {
		if perSecond > 0 {
			g.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
		} else {
			g.limiter = nil
		}
	}
}

// WithLimiter installs a caller-owned limiter.
func WithLimiter(limiter *rate.Limiter) GuardOption {
	return func(g *Guard) {
		g.limiter = limiter
	}
}

// WithLookupTimeout bounds each Search call. The clock starts after the
// limiter grants the request.
func WithLookupTimeout(timeout time.Duration) GuardOption {
	return func(g *Guard) {
		g.timeout = timeout
	}
}

// WithLogger sets the logger used for failure reports.
func WithLogger(logger *slog.Logger) GuardOption {
	return func(g *Guard) {
		g.logger = logger
	}
}

// Guard adapts a Searcher to the Adapter contract.
type Guard struct {
	searcher Searcher
	source   string
	limiter  *rate.Limiter
	timeout  time.Duration
	logger   *slog.Logger
}

// NewGuard wraps searcher. The source tag is captured once so a misbehaving
// searcher cannot change its identity mid-run.
func NewGuard(searcher Searcher, opts ...GuardOption) *Guard {
	g := &Guard{searcher: searcher, source: strings.TrimSpace(searcher.Source())}
	for _, opt := range opts {
		opt(g)
	}
	g.logger = logging.NewComponentLogger(g.logger, "provider")
	return g
}

// Source returns the provider identity tag.
func (g *Guard) Source() string {
	return g.source
}

// Lookup runs one search and converts every failure into nil.
func (g *Guard) Lookup(ctx context.Context, query metadata.Query) (match *metadata.Match) {
	ctx = services.WithProvider(ctx, g.source)
	logger := logging.WithContext(ctx, g.logger)
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			match = nil
			logging.ErrorWithContext(logger, "provider lookup panicked", "provider_lookup_panic",
				logging.String(logging.FieldQuery, query),
				logging.String("panic", fmt.Sprint(r)),
				logging.String("stack", string(debug.Stack())),
				logging.String(logging.FieldErrorHint, "report this as a bug in the provider client"),
				logging.String(logging.FieldImpact, "query resolved without this provider"),
			)
		}
	}()

	// The limiter wait is bounded only by the run context; queueing behind
	// other lookups must not eat into this lookup's own time budget.
	if g.limiter != nil {
		if err := g.limiter.Wait(ctx); err != nil {
			g.warn(logger, query, start, services.Wrap(services.ErrTimeout, "resolve", g.source, "rate limiter wait", err))
			return nil
		}
	}

	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	result, err := g.searcher.Search(ctx, query)
	if err != nil {
		g.warn(logger, query, start, err)
		return nil
	}
	if result == nil {
		logger.Debug("provider returned no results",
			logging.String(logging.FieldQuery, query),
			logging.Duration("latency", time.Since(start)),
		)
		return nil
	}

	out := *result
	out.Source = strings.TrimSpace(out.Source)
	if out.Source == "" {
		out.Source = g.source
	}
	if out.Source != g.source || !out.Valid() {
		logging.WarnWithContext(logger, "provider returned invalid match", "provider_match_invalid",
			logging.String(logging.FieldQuery, query),
			logging.String("match_source", out.Source),
			logging.String("id_key", out.IDKey),
			logging.String(logging.FieldErrorHint, "the provider response is missing an identifier"),
			logging.String(logging.FieldImpact, "query resolved without this provider"),
		)
		return nil
	}

	logger.Debug("provider matched",
		logging.String(logging.FieldQuery, query),
		logging.String("artist", out.Artist),
		logging.String("title", out.Title),
		logging.Duration("latency", time.Since(start)),
	)
	return &out
}

func (g *Guard) warn(logger *slog.Logger, query metadata.Query, start time.Time, err error) {
	hint := "check network connectivity and provider credentials"
	if errors.Is(err, context.DeadlineExceeded) {
		hint = "increase resolver.lookup_timeout_seconds or lower resolver.concurrency"
	}
	logging.WarnWithContext(logger, "provider lookup failed", "provider_lookup_failed",
		logging.String(logging.FieldQuery, query),
		logging.Error(err),
		logging.Duration("latency", time.Since(start)),
		logging.String(logging.FieldErrorHint, hint),
		logging.String(logging.FieldImpact, "query resolved without this provider"),
	)
}

var _ Adapter = (*Guard)(nil)
