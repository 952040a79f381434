package testsupport

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
)

// Path prefixes NewCatalogServer mounts each source under.
const (
	MusicBrainzPath = "/mb"
	CoverArtPath    = "/caa"
	DiscogsPath     = "/discogs"
)

// Release is one album the catalog server knows.
type Release struct {
	ID string
	// DiscogsID is the numeric Discogs release id; zero hides the release
	// from Discogs searches.
	DiscogsID int64
	Artist    string
	Title     string
	CoverURL  string
}

// CatalogServer answers MusicBrainz, Cover Art Archive, and Discogs searches
// from a fixed table keyed by exact query text.
type CatalogServer struct {
	*httptest.Server
	releases map[string]Release
	requests atomic.Int64
}

// Requests returns the number of search requests served.
func (s *CatalogServer) Requests() int64 {
	return s.requests.Load()
}

// NewCatalogServer starts a server that knows releases. It is closed when
// the test ends.
func NewCatalogServer(t testing.TB, releases map[string]Release) *CatalogServer {
	t.Helper()

	cs := &CatalogServer{releases: releases}
	mux := http.NewServeMux()
	mux.HandleFunc(MusicBrainzPath+"/release/", cs.musicBrainzSearch)
	mux.HandleFunc(CoverArtPath+"/release/", cs.coverArt)
	mux.HandleFunc(DiscogsPath+"/database/search", cs.discogsSearch)
	cs.Server = httptest.NewServer(mux)
	t.Cleanup(cs.Close)
	return cs
}

func (s *CatalogServer) musicBrainzSearch(w http.ResponseWriter, r *http.Request) {
	s.requests.Add(1)
	if r.Header.Get("User-Agent") == "" {
		http.Error(w, `{"error":"user agent required"}`, http.StatusForbidden)
		return
	}
	type credit struct {
		Name string `json:"name"`
	}
	type release struct {
		ID           string   `json:"id"`
		Title        string   `json:"title"`
		ArtistCredit []credit `json:"artist-credit"`
	}
	payload := struct {
		Count    int       `json:"count"`
		Releases []release `json:"releases"`
	}{Releases: []release{}}
	if rel, ok := s.releases[r.URL.Query().Get("query")]; ok {
		payload.Count = 1
		payload.Releases = append(payload.Releases, release{
			ID:           rel.ID,
			Title:        rel.Title,
			ArtistCredit: []credit{{Name: rel.Artist}},
		})
	}
	writeJSON(w, payload)
}

func (s *CatalogServer) coverArt(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, CoverArtPath+"/release/")
	for _, rel := range s.releases {
		if rel.ID == id && rel.CoverURL != "" {
			writeJSON(w, map[string]any{
				"images": []map[string]any{{"image": rel.CoverURL, "front": true}},
			})
			return
		}
	}
	http.NotFound(w, r)
}

func (s *CatalogServer) discogsSearch(w http.ResponseWriter, r *http.Request) {
	s.requests.Add(1)
	if !strings.HasPrefix(r.Header.Get("Authorization"), "Discogs token=") {
		http.Error(w, `{"message":"unauthorized"}`, http.StatusUnauthorized)
		return
	}
	results := []map[string]any{}
	if rel, ok := s.releases[r.URL.Query().Get("q")]; ok && rel.DiscogsID != 0 {
		results = append(results, map[string]any{
			"id":          rel.DiscogsID,
			"type":        "release",
			"title":       rel.Artist + " - " + rel.Title,
			"cover_image": rel.CoverURL,
		})
	}
	writeJSON(w, map[string]any{"results": results})
}

func writeJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(payload)
}
