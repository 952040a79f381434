package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/sys/unix"

	"spinescan/internal/config"
	"spinescan/internal/deps"
	"spinescan/internal/services/llm"
)

const httpCheckTimeout = 5 * time.Second

// CheckLLM verifies that the LLM API is reachable and the key is valid.
// It uses a 30-second timeout and a single attempt (no retries).
func CheckLLM(ctx context.Context, name string, cfg config.LLMConfig) Result {
	if cfg.APIKey == "" {
		return Result{Name: name, Detail: "API key missing"}
	}

	checkCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	client := llm.NewClient(llm.Config{
		APIKey:  cfg.APIKey,
		BaseURL: cfg.BaseURL,
		Model:   cfg.Model,
		Referer: cfg.Referer,
		Title:   cfg.Title,
	}, llm.WithRetryMaxAttempts(1))

	if err := client.HealthCheck(checkCtx); err != nil {
		return Result{Name: name, Detail: summarizeError(err)}
	}
	return Result{Name: name, Passed: true, Detail: "API reachable"}
}

// CheckMusicBrainz issues a one-result release search with the configured
// User-Agent.
func CheckMusicBrainz(ctx context.Context, cfg config.MusicBrainz) Result {
	const name = "MusicBrainz"
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return Result{Name: name, Detail: "missing base url"}
	}
	if strings.TrimSpace(cfg.UserAgent) == "" {
		return Result{Name: name, Detail: "missing user agent"}
	}
	target := base + "/release/?" + url.Values{"query": {"abbey road"}, "limit": {"1"}, "fmt": {"json"}}.Encode()
	return checkHTTP(ctx, name, target, http.Header{"User-Agent": {cfg.UserAgent}})
}

// CheckDiscogs verifies the personal access token against the identity
// endpoint.
func CheckDiscogs(ctx context.Context, cfg config.Discogs) Result {
	const name = "Discogs"
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return Result{Name: name, Detail: "missing base url"}
	}
	if strings.TrimSpace(cfg.Token) == "" {
		return Result{Name: name, Detail: "missing token (source disabled)"}
	}
	return checkHTTP(ctx, name, base+"/oauth/identity", http.Header{
		"Authorization": {"Discogs token=" + strings.TrimSpace(cfg.Token)},
		"User-Agent":    {cfg.UserAgent},
	})
}

// CheckSpotify requests a client-credentials token.
func CheckSpotify(ctx context.Context, cfg config.Spotify) Result {
	const name = "Spotify"
	if strings.TrimSpace(cfg.ClientID) == "" || strings.TrimSpace(cfg.ClientSecret) == "" {
		return Result{Name: name, Detail: "missing client id or secret (source disabled)"}
	}

	checkCtx, cancel := context.WithTimeout(ctx, httpCheckTimeout)
	defer cancel()
	checkCtx = context.WithValue(checkCtx, oauth2.HTTPClient, &http.Client{Timeout: httpCheckTimeout})

	cc := &clientcredentials.Config{
		ClientID:     strings.TrimSpace(cfg.ClientID),
		ClientSecret: strings.TrimSpace(cfg.ClientSecret),
		TokenURL:     cfg.TokenURL,
		AuthStyle:    oauth2.AuthStyleInHeader,
	}
	if _, err := cc.Token(checkCtx); err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) && retrieveErr.Response != nil {
			switch retrieveErr.Response.StatusCode {
			case http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden:
				return Result{Name: name, Detail: "auth failed (invalid client credentials)"}
			}
		}
		return Result{Name: name, Detail: fmt.Sprintf("token request failed (%s)", summarizeError(err))}
	}
	return Result{Name: name, Passed: true, Detail: "token issued"}
}

func checkHTTP(ctx context.Context, name, target string, headers http.Header) Result {
	checkCtx, cancel := context.WithTimeout(ctx, httpCheckTimeout)
	defer cancel()

	client := &http.Client{Timeout: httpCheckTimeout}
	req, err := http.NewRequestWithContext(checkCtx, http.MethodGet, target, nil)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("check failed (%v)", err)}
	}
	for key, values := range headers {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("check failed (%s)", summarizeError(err))}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		return Result{Name: name, Passed: true, Detail: "Reachable"}
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return Result{Name: name, Detail: fmt.Sprintf("auth failed (%d)", resp.StatusCode)}
	case resp.StatusCode == http.StatusServiceUnavailable || resp.StatusCode == http.StatusTooManyRequests:
		return Result{Name: name, Detail: fmt.Sprintf("rate limited (%d)", resp.StatusCode)}
	default:
		return Result{Name: name, Detail: fmt.Sprintf("check failed (%d)", resp.StatusCode)}
	}
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	if strings.TrimSpace(path) == "" {
		return Result{Name: name, Detail: "not configured"}
	}
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckSystemDeps evaluates the external binaries for the given config.
// Tesseract is required only when it is the selected engine; otherwise it
// serves as the fallback and is optional.
func CheckSystemDeps(ctx context.Context, cfg *config.Config) []deps.Status {
	requirements := []deps.Requirement{
		{
			Name:        "Tesseract",
			Command:     cfg.TesseractBinary(),
			Description: "Local OCR engine and fallback for hosted extraction",
			Optional:    cfg.OCR.Engine != config.OCREngineTesseract,
			VersionArgs: []string{"--version"},
		},
	}
	return deps.CheckBinaries(ctx, requirements)
}

// summarizeError produces a human-readable summary for check failures.
func summarizeError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "timed out (API unresponsive)"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "timed out (API unreachable)"
	}
	return err.Error()
}
