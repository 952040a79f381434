// Package musicbrainz searches MusicBrainz releases and enriches the top hit
// with the front cover from the Cover Art Archive.
//
// MusicBrainz requires a descriptive User-Agent and allows about one request
// per second per client; the caller's Guard enforces the rate.
package musicbrainz
