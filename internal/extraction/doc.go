// Package extraction turns a spine photo into candidate text lines.
//
// An Extractor holds at most one hosted engine (an OpenAI-compatible vision
// model or Google Cloud Vision) and an optional local tesseract engine. The
// hosted engine is tried first; when it fails and tesseract is available the
// local engine runs before the error is surfaced. Output is NFKC-normalized
// and passed through the query normalizer, so callers receive the exact
// query list the resolver will use.
package extraction
