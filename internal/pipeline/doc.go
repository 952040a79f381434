// Package pipeline wires configuration into the running system: it builds the
// provider adapters named by providers.order, the text extractor, and the
// resolver, and exposes the scan, extract, and resolve operations the CLI,
// watcher, and HTTP API share.
//
// Sources that are disabled or lack credentials are left out of the adapter
// set and reported through Providers; they never fail a run.
package pipeline
