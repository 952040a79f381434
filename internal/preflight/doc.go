// Package preflight provides readiness checks for the metadata sources,
// text extraction engines, and filesystem paths spinescan depends on.
//
// "spinescan doctor" runs RunAll and prints the results. The watcher runs
// CheckDirectoryAccess on its directory before it starts.
//
// Each check is gated by its config toggle -- disabled sources are skipped.
package preflight
