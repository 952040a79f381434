// Package vision wraps Google Cloud Vision TEXT_DETECTION for spine photos.
//
// NewClient builds the generated API service with an API key (or any
// option.ClientOption supplied by the caller) and ExtractLines returns the
// detected text split into lines.
package vision
