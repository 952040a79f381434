// Package llm provides an OpenAI-compatible chat client used for vision text
// extraction from CD spine photos.
//
// # Extraction
//
// ExtractLines attaches the image as a base64 data URL to a chat completion
// request and asks the model for {"lines": [...]}. The reply decoder tolerates
// code fences and prose around the JSON object.
//
// # Retry Behaviour
//
// The client retries on HTTP 408/429/5xx errors and network timeouts with
// exponential backoff (base 1s, max 10s, up to 5 attempts by default).
// Context cancellation aborts retries immediately.
package llm
