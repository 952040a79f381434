package preflight

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"spinescan/internal/config"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckMusicBrainz_SendsUserAgent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") != "spinescan-test/1.0" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		if r.URL.Path != "/release/" || r.URL.Query().Get("limit") != "1" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	result := CheckMusicBrainz(context.Background(), config.MusicBrainz{BaseURL: srv.URL, UserAgent: "spinescan-test/1.0"})
	if !result.Passed {
		t.Fatalf("expected pass, got: %s", result.Detail)
	}
}

func TestCheckMusicBrainz_RateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	result := CheckMusicBrainz(context.Background(), config.MusicBrainz{BaseURL: srv.URL, UserAgent: "ua"})
	if result.Passed {
		t.Fatal("expected failure for 503")
	}
}

func TestCheckDiscogs(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Discogs token=good" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	if result := CheckDiscogs(context.Background(), config.Discogs{BaseURL: srv.URL, Token: "good"}); !result.Passed {
		t.Fatalf("expected pass, got: %s", result.Detail)
	}
	if result := CheckDiscogs(context.Background(), config.Discogs{BaseURL: srv.URL, Token: "bad"}); result.Passed {
		t.Fatal("expected failure for bad token")
	}
	if result := CheckDiscogs(context.Background(), config.Discogs{BaseURL: srv.URL}); result.Passed {
		t.Fatal("expected failure for missing token")
	}
}

func TestCheckSpotify(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, secret, ok := r.BasicAuth()
		if !ok || id != "id" || secret != "secret" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"invalid_client"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"tok","token_type":"Bearer","expires_in":3600}`))
	}))
	defer srv.Close()

	good := CheckSpotify(context.Background(), config.Spotify{ClientID: "id", ClientSecret: "secret", TokenURL: srv.URL})
	if !good.Passed {
		t.Fatalf("expected pass, got: %s", good.Detail)
	}
	bad := CheckSpotify(context.Background(), config.Spotify{ClientID: "id", ClientSecret: "wrong", TokenURL: srv.URL})
	if bad.Passed {
		t.Fatal("expected failure for bad credentials")
	}
	missing := CheckSpotify(context.Background(), config.Spotify{ClientID: "id", TokenURL: srv.URL})
	if missing.Passed {
		t.Fatal("expected failure for missing secret")
	}
}

func TestRunAll_NilConfig(t *testing.T) {
	results := RunAll(context.Background(), nil)
	if results != nil {
		t.Fatal("expected nil results for nil config")
	}
}

func TestRunAll_MinimalConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.LogDir = t.TempDir()
	cfg.Paths.OutputDir = t.TempDir()
	cfg.MusicBrainz.Enabled = false
	cfg.Discogs.Enabled = false
	cfg.Spotify.Enabled = false
	cfg.OCR.Engine = config.OCREngineTesseract

	results := RunAll(context.Background(), &cfg)
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if failed := Failed(results); len(failed) != 0 {
		t.Fatalf("unexpected failures: %#v", failed)
	}
}

func TestRunAll_IncludesEnabledSources(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	cfg := config.Default()
	cfg.Paths.LogDir = t.TempDir()
	cfg.Paths.OutputDir = t.TempDir()
	cfg.MusicBrainz.BaseURL = srv.URL
	cfg.Discogs.Enabled = true
	cfg.Discogs.Token = ""
	cfg.Spotify.Enabled = false
	cfg.OCR.Engine = config.OCREngineTesseract

	results := RunAll(context.Background(), &cfg)
	byName := map[string]Result{}
	for _, r := range results {
		byName[r.Name] = r
	}
	if r, ok := byName["MusicBrainz"]; !ok || !r.Passed {
		t.Fatalf("expected passing MusicBrainz check, got %#v", r)
	}
	if r, ok := byName["Discogs"]; !ok || r.Passed {
		t.Fatalf("expected failing Discogs check without token, got %#v", r)
	}
	if _, ok := byName["Spotify"]; ok {
		t.Fatal("disabled Spotify should be skipped")
	}
	if len(Failed(results)) != 1 {
		t.Fatalf("expected exactly one failure, got %#v", Failed(results))
	}
}

func TestCheckSystemDeps_TesseractOptionalUnlessSelected(t *testing.T) {
	cfg := config.Default()
	cfg.Tesseract.Binary = "clearly-not-present-tesseract"

	statuses := CheckSystemDeps(context.Background(), &cfg)
	if len(statuses) != 1 || !statuses[0].Optional {
		t.Fatalf("expected optional tesseract in auto mode, got %#v", statuses)
	}

	cfg.OCR.Engine = config.OCREngineTesseract
	statuses = CheckSystemDeps(context.Background(), &cfg)
	if statuses[0].Optional || statuses[0].Available {
		t.Fatalf("expected required, missing tesseract, got %#v", statuses[0])
	}
}
