package providers_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"golang.org/x/time/rate"

	"spinescan/internal/logging"
	"spinescan/internal/metadata"
	"spinescan/internal/providers"
)

type stubSearcher struct {
	source string
	search func(ctx context.Context, query string) (*metadata.Match, error)
	calls  atomic.Int32
}

func (s *stubSearcher) Source() string { return s.source }

func (s *stubSearcher) Search(ctx context.Context, query string) (*metadata.Match, error) {
	s.calls.Add(1)
	return s.search(ctx, query)
}

func TestGuardReturnsMatch(t *testing.T) {
	searcher := &stubSearcher{source: "MusicBrainz", search: func(ctx context.Context, query string) (*metadata.Match, error) {
		return &metadata.Match{Artist: "The Beatles", Title: query, IDKey: "mbid", ID: "abc"}, nil
	}}
	guard := providers.NewGuard(searcher)

	match := guard.Lookup(context.Background(), "Abbey Road")
	if match == nil {
		t.Fatal("expected match")
	}
	if match.Source != "MusicBrainz" {
		t.Fatalf("expected source stamped from searcher, got %q", match.Source)
	}
	if match.Title != "Abbey Road" || match.ID != "abc" {
		t.Fatalf("unexpected match %+v", match)
	}
}

func TestGuardConvertsFailuresToNil(t *testing.T) {
	tests := []struct {
		name   string
		search func(ctx context.Context, query string) (*metadata.Match, error)
	}{
		{"error", func(context.Context, string) (*metadata.Match, error) { return nil, errors.New("boom") }},
		{"error with partial match", func(context.Context, string) (*metadata.Match, error) {
			return &metadata.Match{IDKey: "mbid", ID: "x"}, errors.New("decode failed")
		}},
		{"no result", func(context.Context, string) (*metadata.Match, error) { return nil, nil }},
		{"missing id key", func(context.Context, string) (*metadata.Match, error) {
			return &metadata.Match{Title: "t"}, nil
		}},
		{"reserved id key", func(context.Context, string) (*metadata.Match, error) {
			return &metadata.Match{IDKey: "title", ID: "t"}, nil
		}},
		{"foreign source", func(context.Context, string) (*metadata.Match, error) {
			return &metadata.Match{Source: "Spotify", IDKey: "spotify_id", ID: "1"}, nil
		}},
		{"panic", func(context.Context, string) (*metadata.Match, error) { panic("nil map write") }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			guard := providers.NewGuard(&stubSearcher{source: "MusicBrainz", search: tt.search})
			if match := guard.Lookup(context.Background(), "q"); match != nil {
				t.Fatalf("expected nil, got %+v", match)
			}
		})
	}
}

func TestGuardLogsFailureAtWarn(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "guard.log")
	logger, err := logging.New(logging.Options{Format: "json", Level: "info", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	searcher := &stubSearcher{source: "Discogs", search: func(context.Context, string) (*metadata.Match, error) {
		return nil, errors.New("connection refused")
	}}
	providers.NewGuard(searcher, providers.WithLogger(logger)).Lookup(context.Background(), "Rumours")

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	for _, fragment := range []string{`"level":"warn"`, `"event_type":"provider_lookup_failed"`, `"provider":"Discogs"`, "connection refused", `"query":"Rumours"`} {
		if !strings.Contains(string(content), fragment) {
			t.Fatalf("expected %s in log %s", fragment, content)
		}
	}
}

func TestGuardAppliesLookupTimeout(t *testing.T) {
	searcher := &stubSearcher{source: "Spotify", search: func(ctx context.Context, query string) (*metadata.Match, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}}
	guard := providers.NewGuard(searcher, providers.WithLookupTimeout(20*time.Millisecond))

	done := make(chan *metadata.Match, 1)
	go func() { done <- guard.Lookup(context.Background(), "slow") }()
	select {
	case match := <-done:
		if match != nil {
			t.Fatalf("expected nil on timeout, got %+v", match)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("lookup did not honour timeout")
	}
}

func TestGuardRateLimiterCancelledContext(t *testing.T) {
	searcher := &stubSearcher{source: "MusicBrainz", search: func(context.Context, string) (*metadata.Match, error) {
		return &metadata.Match{IDKey: "mbid", ID: "1"}, nil
	}}
	limiter := rate.NewLimiter(rate.Every(time.Hour), 1)
	guard := providers.NewGuard(searcher, providers.WithLimiter(limiter))

	if guard.Lookup(context.Background(), "first") == nil {
		t.Fatal("first lookup should use the burst token")
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if guard.Lookup(ctx, "second") != nil {
		t.Fatal("expected nil when limiter wait is cancelled")
	}
	if got := searcher.calls.Load(); got != 1 {
		t.Fatalf("expected searcher to be skipped, got %d calls", got)
	}
}

func TestGuardLimiterWaitDoesNotConsumeLookupTimeout(t *testing.T) {
	const timeout = 30 * time.Millisecond
	searcher := &stubSearcher{source: "MusicBrainz", search: func(ctx context.Context, query string) (*metadata.Match, error) {
		deadline, ok := ctx.Deadline()
		if !ok {
			return nil, errors.New("search ran without a deadline")
		}
		if remaining := time.Until(deadline); remaining < timeout/2 {
			return nil, errors.New("search started with a spent budget")
		}
		return &metadata.Match{Title: query, IDKey: "mbid", ID: query}, nil
	}}
	// Each token takes longer to refill than the whole lookup timeout.
	limiter := rate.NewLimiter(rate.Every(100*time.Millisecond), 1)
	guard := providers.NewGuard(searcher, providers.WithLimiter(limiter), providers.WithLookupTimeout(timeout))

	queries := []string{"Abbey Road", "Rumours", "Blue"}
	results := make(chan *metadata.Match, len(queries))
	for _, query := range queries {
		go func() { results <- guard.Lookup(context.Background(), query) }()
	}
	for range queries {
		select {
		case match := <-results:
			if match == nil {
				t.Fatal("expected every queued lookup to match")
			}
		case <-time.After(5 * time.Second):
			t.Fatal("queued lookups did not finish")
		}
	}
	if got := searcher.calls.Load(); got != int32(len(queries)) {
		t.Fatalf("expected %d searches, got %d", len(queries), got)
	}
}

func TestGuardTrimsMatchSource(t *testing.T) {
	tests := []struct {
		name   string
		source string
	}{
		{"padded", " Discogs\t"},
		{"blank", "   "},
		{"exact", "Discogs"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			searcher := &stubSearcher{source: " Discogs ", search: func(context.Context, string) (*metadata.Match, error) {
				return &metadata.Match{Source: tt.source, Title: "Rumours", IDKey: "discogs_id", ID: "42"}, nil
			}}
			match := providers.NewGuard(searcher).Lookup(context.Background(), "Rumours")
			if match == nil {
				t.Fatal("expected match despite surrounding whitespace")
			}
			if match.Source != "Discogs" {
				t.Fatalf("expected trimmed source, got %q", match.Source)
			}
		})
	}
}

func TestGuardSourceIsStable(t *testing.T) {
	searcher := &stubSearcher{source: " Spotify "}
	guard := providers.NewGuard(searcher)
	searcher.source = "Changed"
	if guard.Source() != "Spotify" {
		t.Fatalf("unexpected source %q", guard.Source())
	}
}

func TestDoJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Accept") != "application/json" {
			t.Errorf("missing accept header")
		}
		if r.URL.Path == "/missing" {
			http.Error(w, "not here", http.StatusNotFound)
			return
		}
		if r.URL.Path == "/garbage" {
			_, _ = w.Write([]byte("<html>"))
			return
		}
		_, _ = w.Write([]byte(`{"name":"ok"}`))
	}))
	defer server.Close()

	var payload struct {
		Name string `json:"name"`
	}
	req, _ := http.NewRequest(http.MethodGet, server.URL+"/ok", nil)
	if err := providers.DoJSON(server.Client(), "test", req, &payload); err != nil || payload.Name != "ok" {
		t.Fatalf("unexpected result %v %+v", err, payload)
	}

	req, _ = http.NewRequest(http.MethodGet, server.URL+"/missing", nil)
	err := providers.DoJSON(server.Client(), "test", req, &payload)
	var statusErr *providers.StatusError
	if !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 status error, got %v", err)
	}
	if !strings.Contains(err.Error(), "latency=") {
		t.Fatalf("expected latency in error, got %v", err)
	}

	req, _ = http.NewRequest(http.MethodGet, server.URL+"/garbage", nil)
	if err := providers.DoJSON(server.Client(), "test", req, &payload); err == nil || !strings.Contains(err.Error(), "decode test response") {
		t.Fatalf("expected decode error, got %v", err)
	}
}
