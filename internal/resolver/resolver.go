package resolver

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"spinescan/internal/logging"
	"spinescan/internal/metadata"
	"spinescan/internal/providers"
	"spinescan/internal/services"
)

// DefaultConcurrency bounds in-flight lookups when no option overrides it.
const DefaultConcurrency = 4

// Option configures a Resolver.
type Option func(*Resolver)

// WithConcurrency sets the maximum number of lookups in flight.
func WithConcurrency(n int) Option {
	return func(r *Resolver) {
		if n > 0 {
			r.concurrency = n
		}
	}
}

// WithLogger sets the run logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) {
		r.logger = logger
	}
}

// Resolver holds the adapter set for one or more runs. It keeps no state
// between runs.
type Resolver struct {
	adapters    []providers.Adapter
	concurrency int
	logger      *slog.Logger
}

// New builds a Resolver. Adapters with an empty or duplicate source tag are
// dropped so every entry carries at most one match per source.
func New(adapters []providers.Adapter, opts ...Option) *Resolver {
	r := &Resolver{concurrency: DefaultConcurrency}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = logging.NewComponentLogger(r.logger, "resolver")

	seen := make(map[string]struct{}, len(adapters))
	for _, adapter := range adapters {
		if adapter == nil {
			continue
		}
		source := strings.TrimSpace(adapter.Source())
		if source == "" {
			logging.WarnWithContext(r.logger, "adapter skipped", "adapter_rejected",
				logging.String("reason", "empty source tag"),
				logging.String(logging.FieldImpact, "adapter not consulted"),
			)
			continue
		}
		if _, dup := seen[source]; dup {
			logging.WarnWithContext(r.logger, "adapter skipped", "adapter_rejected",
				logging.String(logging.FieldProvider, source),
				logging.String("reason", "duplicate source tag"),
				logging.String(logging.FieldImpact, "adapter not consulted"),
			)
			continue
		}
		seen[source] = struct{}{}
		r.adapters = append(r.adapters, adapter)
	}
	return r
}

// Adapters returns the registered adapters in registration order.
func (r *Resolver) Adapters() []providers.Adapter {
	out := make([]providers.Adapter, len(r.adapters))
	copy(out, r.adapters)
	return out
}

// Resolve runs the adapter set over queries with the supplied options.
func Resolve(ctx context.Context, queries []metadata.Query, adapters []providers.Adapter, opts ...Option) (metadata.ResultSet, error) {
	return New(adapters, opts...).Resolve(ctx, queries)
}

// Resolve returns one entry per query, in order. The error is non-nil only
// when ctx ends before every lookup completes; the ResultSet is still full
// length and holds whatever lookups finished.
func (r *Resolver) Resolve(ctx context.Context, queries []metadata.Query) (metadata.ResultSet, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	logger := logging.WithContext(ctx, r.logger)
	start := time.Now()

	slots := make([][]*metadata.Match, len(queries))
	for i := range slots {
		slots[i] = make([]*metadata.Match, len(r.adapters))
	}

	logger.Info("resolving queries",
		logging.Int("queries", len(queries)),
		logging.Int("adapters", len(r.adapters)),
		logging.Int("concurrency", r.concurrency),
	)

	sem := make(chan struct{}, r.concurrency)
	var wg sync.WaitGroup
launch:
	for qi, query := range queries {
		for ai, adapter := range r.adapters {
			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				break launch
			}
			wg.Add(1)
			go func(qi, ai int, query metadata.Query, adapter providers.Adapter) {
				defer wg.Done()
				defer func() { <-sem }()
				slots[qi][ai] = r.lookup(ctx, qi, query, adapter)
			}(qi, ai, query, adapter)
		}
	}
	wg.Wait()

	entries := make([]metadata.Entry, len(queries))
	for qi, query := range queries {
		matches := make([]metadata.Match, 0, len(r.adapters))
		for _, match := range slots[qi] {
			if match != nil {
				matches = append(matches, *match)
			}
		}
		entries[qi] = metadata.NewEntry(query, matches)
	}
	set := Aggregate(entries)

	if err := ctx.Err(); err != nil {
		logging.WarnWithContext(logger, "resolution interrupted", "resolve_cancelled",
			logging.Error(err),
			logging.Int("matches", set.MatchCount()),
			logging.String(logging.FieldErrorHint, "rerun to resolve the remaining queries"),
			logging.String(logging.FieldImpact, "some queries were not looked up"),
		)
		return set, services.Wrap(services.ErrTimeout, "resolve", "fan-out", "run context ended", err)
	}

	logger.Info("resolution complete",
		logging.Int("queries", len(set)),
		logging.Int("matches", set.MatchCount()),
		logging.Int("unmatched", len(set.Unmatched())),
		logging.Duration("elapsed", time.Since(start)),
	)
	return set, nil
}

// lookup invokes one adapter for one query. A panic or an invalid match
// leaves the slot empty.
func (r *Resolver) lookup(ctx context.Context, index int, query metadata.Query, adapter providers.Adapter) (match *metadata.Match) {
	ctx = services.WithQueryIndex(ctx, index)
	source := strings.TrimSpace(adapter.Source())
	defer func() {
		if rec := recover(); rec != nil {
			match = nil
			logging.ErrorWithContext(logging.WithContext(ctx, r.logger), "adapter panicked", "adapter_panic",
				logging.String(logging.FieldProvider, source),
				logging.String(logging.FieldQuery, query),
				logging.String("panic", fmt.Sprint(rec)),
			)
		}
	}()
	if ctx.Err() != nil {
		return nil
	}
	result := adapter.Lookup(ctx, query)
	if result == nil || !result.Valid() || result.Source != source {
		return nil
	}
	out := *result
	return &out
}

// Aggregate assembles entries into a ResultSet, preserving order and length.
// The result does not share a backing array with entries.
func Aggregate(entries []metadata.Entry) metadata.ResultSet {
	set := make(metadata.ResultSet, len(entries))
	for i, entry := range entries {
		set[i] = metadata.NewEntry(entry.QueryText, entry.Matches)
	}
	return set
}
