// Package textutil provides text processing utilities for query normalization
// and filename sanitization.
//
// The primary use cases are:
//   - Turning raw extracted text into the ordered, trimmed, non-empty query
//     lines the resolver consumes
//   - Sanitizing filenames for exported result files
//
// Normalization never reorders, merges, or rewrites lines beyond trimming
// surrounding white space; noisy OCR lines are passed through as-is so the
// providers see exactly what was printed on the spine.
package textutil
