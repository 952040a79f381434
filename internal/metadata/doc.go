// Package metadata defines the record schema produced by a resolution run.
//
// A run turns an ordered list of queries into a ResultSet: one Entry per
// query, in input order, each holding at most one Match per provider in
// provider registration order. Matches keep their provenance through the
// Source tag and a source-specific identifier key (mbid, spotify_id,
// discogs_id) so records from different providers never collide.
//
// The JSON form is the wire schema consumed by renderers, the HTTP API, and
// watch-mode sidecar files:
//
//	[{"query_text": "...", "matches": [{"source": "...", "artist": "...", "title": "...", "cover_art_url": "...", "mbid": "..."}]}]
//
// Values are built once per run and never mutated afterwards.
package metadata
