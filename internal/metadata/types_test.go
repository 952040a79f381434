package metadata_test

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"

	"spinescan/internal/metadata"
)

func sampleSet() metadata.ResultSet {
	return metadata.ResultSet{
		metadata.NewEntry("Abbey Road", []metadata.Match{
			{
				Source:      "MusicBrainz",
				Artist:      "The Beatles",
				Title:       "Abbey Road",
				CoverArtURL: "https://coverartarchive.org/release/abc/front.jpg",
				IDKey:       "mbid",
				ID:          "abc",
			},
			{
				Source: "Spotify",
				Artist: "The Beatles",
				Title:  "Abbey Road (Remastered)",
				IDKey:  "spotify_id",
				ID:     "0ETFjACtuP2ADo6LFhL6HN",
			},
		}),
		metadata.NewEntry("??garbled??", nil),
	}
}

func TestResultSetRoundTrip(t *testing.T) {
	original := sampleSet()
	data, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	decoded, err := metadata.Decode(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !reflect.DeepEqual(original, decoded) {
		t.Fatalf("round trip mismatch:\nwant %#v\ngot  %#v", original, decoded)
	}
}

func TestMatchJSONUsesSourceTaggedIDKey(t *testing.T) {
	match := metadata.Match{Source: "MusicBrainz", Title: "Abbey Road", IDKey: "mbid", ID: "abc"}
	data, err := json.Marshal(match)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	got := string(data)
	want := `{"source":"MusicBrainz","title":"Abbey Road","mbid":"abc"}`
	if got != want {
		t.Fatalf("unexpected encoding:\nwant %s\ngot  %s", want, got)
	}
}

func TestEmptyEntryEncodesEmptyArray(t *testing.T) {
	data, err := json.Marshal(metadata.NewEntry("nothing", nil))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(data), `"matches":[]`) {
		t.Fatalf("expected empty matches array, got %s", data)
	}

	data, err = json.Marshal(metadata.ResultSet(nil))
	if err != nil {
		t.Fatalf("marshal nil set: %v", err)
	}
	if string(data) != "[]" {
		t.Fatalf("expected [] for nil set, got %s", data)
	}
}

func TestMatchMarshalRejectsReservedIDKey(t *testing.T) {
	for _, key := range []string{"", "title", "source"} {
		match := metadata.Match{Source: "X", IDKey: key, ID: "1"}
		if _, err := json.Marshal(match); err == nil {
			t.Fatalf("expected error for id key %q", key)
		}
	}
}

func TestMatchUnmarshalRequiresSingleIDField(t *testing.T) {
	var match metadata.Match
	if err := json.Unmarshal([]byte(`{"source":"X","a":"1","b":"2"}`), &match); err == nil {
		t.Fatal("expected error for two id fields")
	}
	if err := json.Unmarshal([]byte(`{"title":"T","mbid":"1"}`), &match); err == nil {
		t.Fatal("expected error for missing source")
	}
}

func TestMatchUnmarshalToleratesNullCoverArt(t *testing.T) {
	var match metadata.Match
	payload := `{"source":"MusicBrainz","artist":"A","title":"T","mbid":"m1","cover_art_url":null}`
	if err := json.Unmarshal([]byte(payload), &match); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if match.CoverArtURL != "" || match.IDKey != "mbid" || match.ID != "m1" {
		t.Fatalf("unexpected match: %#v", match)
	}
}

func TestMatchValid(t *testing.T) {
	var nilMatch *metadata.Match
	if nilMatch.Valid() {
		t.Fatal("nil match must not be valid")
	}
	if (&metadata.Match{IDKey: "mbid"}).Valid() {
		t.Fatal("match without source must not be valid")
	}
	if (&metadata.Match{Source: "X", IDKey: "artist"}).Valid() {
		t.Fatal("match with reserved id key must not be valid")
	}
	if !(&metadata.Match{Source: "X", IDKey: "x_id"}).Valid() {
		t.Fatal("expected match to be valid")
	}
}

func TestResultSetHelpers(t *testing.T) {
	set := sampleSet()
	if got := set.Queries(); !reflect.DeepEqual(got, []string{"Abbey Road", "??garbled??"}) {
		t.Fatalf("unexpected queries: %v", got)
	}
	if set.MatchCount() != 2 {
		t.Fatalf("expected 2 matches, got %d", set.MatchCount())
	}
	if got := set.Unmatched(); len(got) != 1 || got[0] != "??garbled??" {
		t.Fatalf("unexpected unmatched: %v", got)
	}
	if _, ok := set[0].MatchFrom("Spotify"); !ok {
		t.Fatal("expected Spotify match on first entry")
	}
	if _, ok := set[1].MatchFrom("Spotify"); ok {
		t.Fatal("did not expect a match on second entry")
	}
}
