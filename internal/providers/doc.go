// Package providers defines the capability every metadata source exposes to
// the resolver and the guard that enforces the failure contract.
//
// Source packages (musicbrainz, discogs, spotify) implement Searcher: they
// issue the remote search, take the first result, and map it to a
// metadata.Match, returning errors freely. Guard wraps a Searcher into an
// Adapter whose Lookup never fails: errors, invalid matches, timeouts, and
// panics all become nil after a WARN log line. Guard also owns the
// per-source rate limiter and per-lookup deadline.
package providers
