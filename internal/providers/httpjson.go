package providers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// StatusError reports a non-2xx response from a provider endpoint.
type StatusError struct {
	Source     string
	StatusCode int
	Latency    time.Duration
	Body       string
}

func (e *StatusError) Error() string {
	body := strings.TrimSpace(e.Body)
	if body == "" {
		return fmt.Sprintf("%s returned %d (latency=%v)", e.Source, e.StatusCode, e.Latency)
	}
	return fmt.Sprintf("%s returned %d (latency=%v): %s", e.Source, e.StatusCode, e.Latency, body)
}

// DoJSON executes req and decodes a 2xx JSON body into target. Transport
// failures and status errors carry the request latency.
func DoJSON(client *http.Client, source string, req *http.Request, target any) error {
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "application/json")
	}
	requestStart := time.Now()
	resp, err := client.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return fmt.Errorf("execute %s request (latency=%v): %w", source, latency, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return &StatusError{Source: source, StatusCode: resp.StatusCode, Latency: latency, Body: string(snippet)}
	}
	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("decode %s response: %w", source, err)
	}
	return nil
}
