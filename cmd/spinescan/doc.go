// Package main hosts the spinescan CLI entrypoint and command graph.
//
// The Cobra-based command tree turns terminal invocations into pipeline runs:
// scanning spine photos, resolving already-extracted text, watching a drop
// directory, serving the HTTP API, and checking configuration and external
// dependencies. It centralizes configuration resolution and logging setup so
// subcommands only deal with arguments and output.
//
// Keep this package lean: add new functionality to the internal packages
// first, then surface it through a dedicated command or flag here.
package main
