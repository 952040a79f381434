package vision

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	visionapi "google.golang.org/api/vision/v1"
)

const textDetection = "TEXT_DETECTION"

// ErrUnauthorized indicates the API key was rejected.
var ErrUnauthorized = errors.New("vision: unauthorised (invalid api key)")

// Config captures the runtime settings required to call Cloud Vision.
type Config struct {
	APIKey   string
	Endpoint string
}

// Client issues TEXT_DETECTION requests.
type Client struct {
	svc *visionapi.Service
}

// NewClient constructs a Cloud Vision client. Extra options are appended
// after the API key and endpoint so callers (and tests) can override them.
func NewClient(ctx context.Context, cfg Config, opts ...option.ClientOption) (*Client, error) {
	var clientOpts []option.ClientOption
	if key := strings.TrimSpace(cfg.APIKey); key != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(key))
	}
	if endpoint := strings.TrimSpace(cfg.Endpoint); endpoint != "" {
		clientOpts = append(clientOpts, option.WithEndpoint(endpoint))
	}
	clientOpts = append(clientOpts, opts...)
	if len(clientOpts) == 0 {
		return nil, errors.New("vision: api key required")
	}
	svc, err := visionapi.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("vision: create service: %w", err)
	}
	return &Client{svc: svc}, nil
}

// ExtractLines runs text detection on the image and returns the detected
// text split on line breaks. An image with no detected text yields an empty
// slice and no error.
func (c *Client) ExtractLines(ctx context.Context, image []byte) ([]string, error) {
	if c == nil || c.svc == nil {
		return nil, errors.New("vision: client not initialised")
	}
	if len(image) == 0 {
		return nil, errors.New("vision: image required")
	}
	req := &visionapi.BatchAnnotateImagesRequest{
		Requests: []*visionapi.AnnotateImageRequest{{
			Image:    &visionapi.Image{Content: base64.StdEncoding.EncodeToString(image)},
			Features: []*visionapi.Feature{{Type: textDetection}},
		}},
	}
	start := time.Now()
	resp, err := c.svc.Images.Annotate(req).Context(ctx).Do()
	if err != nil {
		if isUnauthorized(err) {
			return nil, fmt.Errorf("%w: %v", ErrUnauthorized, err)
		}
		return nil, fmt.Errorf("vision annotate (latency=%s): %w", time.Since(start).Round(time.Millisecond), err)
	}
	if len(resp.Responses) == 0 {
		return []string{}, nil
	}
	first := resp.Responses[0]
	if first.Error != nil && first.Error.Message != "" {
		return nil, fmt.Errorf("vision annotate: %s", first.Error.Message)
	}
	return splitDetected(first), nil
}

func splitDetected(resp *visionapi.AnnotateImageResponse) []string {
	var text string
	switch {
	case resp.FullTextAnnotation != nil && resp.FullTextAnnotation.Text != "":
		text = resp.FullTextAnnotation.Text
	case len(resp.TextAnnotations) > 0:
		// The first annotation holds the whole detected block.
		text = resp.TextAnnotations[0].Description
	}
	if text == "" {
		return []string{}
	}
	return strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
}

func isUnauthorized(err error) bool {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return gerr.Code == http.StatusUnauthorized || gerr.Code == http.StatusForbidden
	}
	return false
}
