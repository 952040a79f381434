// Package config loads, normalizes, and validates spinescan configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// SPOTIFY_CLIENT_ID and DISCOGS_TOKEN. The Config type centralizes every knob
// the CLI, watcher, and HTTP API need, so provider credentials and OCR engine
// selection are discovered in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
