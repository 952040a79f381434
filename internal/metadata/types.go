package metadata

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Query is one normalized candidate text line taken from an image.
type Query = string

const (
	keySource      = "source"
	keyArtist      = "artist"
	keyTitle       = "title"
	keyCoverArtURL = "cover_art_url"
)

// Match is the single best hit a provider returned for a query.
type Match struct {
	Source      string
	Artist      string
	Title       string
	CoverArtURL string
	// IDKey names the JSON field carrying ID, for example "mbid".
	IDKey string
	ID    string
}

// Valid reports whether the match carries the fields every match must have.
func (m *Match) Valid() bool {
	if m == nil {
		return false
	}
	if strings.TrimSpace(m.Source) == "" {
		return false
	}
	return !reservedKey(m.IDKey) && strings.TrimSpace(m.IDKey) != ""
}

func reservedKey(key string) bool {
	switch key {
	case keySource, keyArtist, keyTitle, keyCoverArtURL:
		return true
	default:
		return false
	}
}

// MarshalJSON writes the match with its identifier under the source-tagged key.
func (m Match) MarshalJSON() ([]byte, error) {
	if strings.TrimSpace(m.IDKey) == "" || reservedKey(m.IDKey) {
		return nil, fmt.Errorf("match from %q: invalid id key %q", m.Source, m.IDKey)
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	fields := []struct {
		key   string
		value string
		omit  bool
	}{
		{keySource, m.Source, false},
		{keyArtist, m.Artist, m.Artist == ""},
		{keyTitle, m.Title, m.Title == ""},
		{keyCoverArtURL, m.CoverArtURL, m.CoverArtURL == ""},
		{m.IDKey, m.ID, false},
	}
	first := true
	for _, field := range fields {
		if field.omit {
			continue
		}
		if !first {
			buf.WriteByte(',')
		}
		first = false
		key, err := json.Marshal(field.key)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(field.value)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a match; the single non-standard key becomes IDKey.
func (m *Match) UnmarshalJSON(data []byte) error {
	var raw map[string]*string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode match: %w", err)
	}
	var decoded Match
	extra := make([]string, 0, 1)
	for key, value := range raw {
		var text string
		if value != nil {
			text = *value
		}
		switch key {
		case keySource:
			decoded.Source = text
		case keyArtist:
			decoded.Artist = text
		case keyTitle:
			decoded.Title = text
		case keyCoverArtURL:
			decoded.CoverArtURL = text
		default:
			extra = append(extra, key)
		}
	}
	if decoded.Source == "" {
		return errors.New("decode match: source required")
	}
	if len(extra) != 1 {
		sort.Strings(extra)
		return fmt.Errorf("decode match from %q: expected exactly one id field, got %v", decoded.Source, extra)
	}
	decoded.IDKey = extra[0]
	if value := raw[decoded.IDKey]; value != nil {
		decoded.ID = *value
	}
	*m = decoded
	return nil
}

// Entry bundles a query with the matches providers returned for it.
type Entry struct {
	QueryText string  `json:"query_text"`
	Matches   []Match `json:"matches"`
}

// NewEntry builds an entry whose match list is never nil.
func NewEntry(query Query, matches []Match) Entry {
	out := make([]Match, len(matches))
	copy(out, matches)
	return Entry{QueryText: query, Matches: out}
}

// HasMatches reports whether any provider found the query.
func (e Entry) HasMatches() bool {
	return len(e.Matches) > 0
}

// MatchFrom returns the match contributed by source, if any.
func (e Entry) MatchFrom(source string) (Match, bool) {
	for _, match := range e.Matches {
		if match.Source == source {
			return match, true
		}
	}
	return Match{}, false
}

// UnmarshalJSON keeps Matches non-nil when the input carries null or omits it.
func (e *Entry) UnmarshalJSON(data []byte) error {
	type plain Entry
	var decoded plain
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	if decoded.Matches == nil {
		decoded.Matches = []Match{}
	}
	*e = Entry(decoded)
	return nil
}

// ResultSet is the ordered output of one run: one Entry per query.
type ResultSet []Entry

// Queries returns the query text of every entry in order.
func (r ResultSet) Queries() []Query {
	out := make([]Query, len(r))
	for i, entry := range r {
		out[i] = entry.QueryText
	}
	return out
}

// MatchCount returns the total number of matches across entries.
func (r ResultSet) MatchCount() int {
	total := 0
	for _, entry := range r {
		total += len(entry.Matches)
	}
	return total
}

// Unmatched returns the queries no provider found.
func (r ResultSet) Unmatched() []Query {
	var out []Query
	for _, entry := range r {
		if !entry.HasMatches() {
			out = append(out, entry.QueryText)
		}
	}
	return out
}

// MarshalJSON encodes an empty or nil set as [] so consumers always get an array.
func (r ResultSet) MarshalJSON() ([]byte, error) {
	if r == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]Entry(r))
}

// Decode parses the wire schema into a ResultSet.
func Decode(data []byte) (ResultSet, error) {
	var set ResultSet
	if err := json.Unmarshal(data, &set); err != nil {
		return nil, fmt.Errorf("decode result set: %w", err)
	}
	if set == nil {
		set = ResultSet{}
	}
	return set, nil
}
