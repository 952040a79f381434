// Package resolver fans each query out to every registered provider adapter
// and assembles the ordered ResultSet.
//
// Every (query, adapter) pair is an independent lookup. Lookups run
// concurrently behind a semaphore; each writes only its own slot in a
// query-by-adapter grid, so the output order follows input order and adapter
// registration order no matter which lookup finishes first. Adapters never
// return errors: a failed or panicking lookup simply leaves its slot empty.
// Resolve reports an error only when the caller's context ends, and even
// then returns a full-length ResultSet.
package resolver
