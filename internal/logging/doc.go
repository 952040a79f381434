// Package logging assembles structured slog loggers and formatting helpers used
// across spinescan.
//
// It owns the configurable console/JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so pipeline code can tag log
// lines with the run correlation ID, query position, provider, and stage. The
// package also provides a no-op logger for tests and wiring code that cannot
// fail.
//
// Logs default to stderr: stdout is reserved for rendered results so that
// `spinescan scan img.jpg > out.json` stays machine readable.
package logging
