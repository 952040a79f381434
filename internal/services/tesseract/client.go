package tesseract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

var (
	commandContext = exec.CommandContext
	lookPath       = exec.LookPath
)

// Extractor defines local OCR behaviour.
type Extractor interface {
	ExtractLines(ctx context.Context, image []byte) ([]string, error)
}

// Option configures the CLI client.
type Option func(*CLI)

// WithBinary overrides the default binary name.
func WithBinary(binary string) Option {
	return func(c *CLI) {
		if binary = strings.TrimSpace(binary); binary != "" {
			c.binary = binary
		}
	}
}

// WithLanguage sets the -l language pack (for example "eng" or "eng+deu").
func WithLanguage(lang string) Option {
	return func(c *CLI) {
		if lang = strings.TrimSpace(lang); lang != "" {
			c.language = lang
		}
	}
}

// WithPageSegMode sets --psm. Zero leaves tesseract's default.
func WithPageSegMode(psm int) Option {
	return func(c *CLI) {
		c.psm = psm
	}
}

// WithTimeout bounds a single invocation.
func WithTimeout(timeout time.Duration) Option {
	return func(c *CLI) {
		c.timeout = timeout
	}
}

// CLI wraps the tesseract command-line OCR engine.
type CLI struct {
	binary   string
	language string
	psm      int
	timeout  time.Duration
}

// NewCLI constructs a CLI client using defaults.
func NewCLI(opts ...Option) *CLI {
	cli := &CLI{binary: "tesseract", language: "eng"}
	for _, opt := range opts {
		opt(cli)
	}
	return cli
}

// Binary returns the configured executable name.
func (c *CLI) Binary() string {
	return c.binary
}

// Available reports whether the binary can be found on PATH.
func (c *CLI) Available() bool {
	_, err := lookPath(c.binary)
	return err == nil
}

// ExtractLines runs tesseract over the image and returns stdout split into lines.
func (c *CLI) ExtractLines(ctx context.Context, image []byte) ([]string, error) {
	if len(image) == 0 {
		return nil, errors.New("image required")
	}
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	args := []string{"stdin", "stdout", "-l", c.language}
	if c.psm > 0 {
		args = append(args, "--psm", strconv.Itoa(c.psm))
	}
	cmd := commandContext(ctx, c.binary, args...) //nolint:gosec
	cmd.Stdin = bytes.NewReader(image)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("tesseract: %w", ctxErr)
		}
		detail := strings.TrimSpace(stderr.String())
		if detail != "" {
			return nil, fmt.Errorf("tesseract failed: %w: %s", err, detail)
		}
		return nil, fmt.Errorf("tesseract failed: %w", err)
	}

	text := strings.ReplaceAll(stdout.String(), "\r\n", "\n")
	// tesseract terminates pages with a form feed.
	text = strings.ReplaceAll(text, "\f", "\n")
	return strings.Split(text, "\n"), nil
}

var _ Extractor = (*CLI)(nil)
