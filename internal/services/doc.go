// Package services defines shared utilities consumed by the pipeline stages
// and external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp query positions, provider tags, stage names,
//     and correlation identifiers for logging.
//   - Structured error markers plus the Wrap helper that let the CLI and HTTP
//     API classify failures (bad input vs misconfiguration vs upstream fault).
//
// Subpackages wrap the text extraction backends: an OpenAI-compatible vision
// chat client (llm), Google Cloud Vision (vision), and the local tesseract
// binary (tesseract).
package services
