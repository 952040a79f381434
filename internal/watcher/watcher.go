// Package watcher processes spine photos dropped into a directory, writing a
// result sidecar next to each image.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"spinescan/internal/extraction"
	"spinescan/internal/fileutil"
	"spinescan/internal/logging"
	"spinescan/internal/pipeline"
	"spinescan/internal/render"
	"spinescan/internal/services"
)

// DefaultSettleDelay is how long a file must stay quiet before it is read.
const DefaultSettleDelay = 750 * time.Millisecond

// Scanner runs one image through extraction and resolution.
type Scanner interface {
	Scan(ctx context.Context, img extraction.Image) (pipeline.ScanResult, error)
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithSettleDelay sets the quiet period before a new file is processed.
func WithSettleDelay(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.settle = d
		}
	}
}

// WithFormat sets the sidecar format.
func WithFormat(format render.Format) Option {
	return func(w *Watcher) {
		w.format = format
	}
}

// WithOutputDir writes sidecars into dir instead of beside the image.
func WithOutputDir(dir string) Option {
	return func(w *Watcher) {
		w.outputDir = strings.TrimSpace(dir)
	}
}

// WithProcessExisting makes Run handle images already present that have no
// up-to-date sidecar.
func WithProcessExisting(enabled bool) Option {
	return func(w *Watcher) {
		w.processExisting = enabled
	}
}

// WithLogger sets the watcher logger.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Watcher) {
		w.logger = logger
	}
}

// Watcher turns file system events into scans.
type Watcher struct {
	dir             string
	scanner         Scanner
	format          render.Format
	outputDir       string
	settle          time.Duration
	processExisting bool
	logger          *slog.Logger

	mu      sync.Mutex
	pending map[string]time.Time
}

// New creates a watcher for dir.
func New(dir string, scanner Scanner, opts ...Option) (*Watcher, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, services.Wrap(services.ErrConfiguration, "watch", "configure", "watch directory required", nil)
	}
	if scanner == nil {
		return nil, services.Wrap(services.ErrConfiguration, "watch", "configure", "scanner required", nil)
	}
	w := &Watcher{
		dir:     dir,
		scanner: scanner,
		format:  render.FormatJSON,
		settle:  DefaultSettleDelay,
		pending: make(map[string]time.Time),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.logger = logging.NewComponentLogger(w.logger, "watcher")
	return w, nil
}

// SidecarPath returns where the result for imagePath is written.
func (w *Watcher) SidecarPath(imagePath string) string {
	name := filepath.Base(imagePath) + w.format.Extension()
	if w.outputDir != "" {
		return filepath.Join(w.outputDir, name)
	}
	return filepath.Join(filepath.Dir(imagePath), name)
}

// Run watches the directory until ctx ends. It returns nil on cancellation.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fsw.Close()

	if err := fsw.Add(w.dir); err != nil {
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}
	w.logger.Info("watching directory",
		logging.String("dir", w.dir),
		logging.String("format", string(w.format)),
	)

	if w.processExisting {
		w.queueExisting()
	}

	tick := time.NewTicker(max(w.settle/2, time.Millisecond))
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("watcher stopped", logging.String("dir", w.dir))
			return nil
		case event, ok := <-fsw.Events:
			if !ok {
				return errors.New("watcher event channel closed")
			}
			if path, ok := w.candidate(event); ok {
				w.touch(path)
			}
		case err, ok := <-fsw.Errors:
			if !ok {
				return errors.New("watcher error channel closed")
			}
			logging.WarnWithContext(w.logger, "watcher error", "watch_error",
				logging.Error(err),
				logging.String(logging.FieldImpact, "some file events may have been missed"),
			)
		case now := <-tick.C:
			for _, path := range w.due(now) {
				if ctx.Err() != nil {
					return nil
				}
				if _, err := w.ProcessFile(ctx, path); err != nil {
					logging.WarnWithContext(w.logger, "image not processed", "watch_scan_failed",
						logging.String("image", path),
						logging.Error(err),
						logging.String(logging.FieldErrorHint, "check the image and the extraction engine"),
						logging.String(logging.FieldImpact, "no sidecar written for this image"),
					)
				}
			}
		}
	}
}

// ProcessFile scans one image and writes its sidecar, returning the sidecar
// path. A partial result from an interrupted run is still written.
func (w *Watcher) ProcessFile(ctx context.Context, path string) (string, error) {
	img, err := extraction.LoadImage(path)
	if err != nil {
		return "", err
	}
	result, scanErr := w.scanner.Scan(ctx, img)
	if scanErr != nil && result.Results == nil {
		return "", scanErr
	}
	data, err := render.Bytes(w.format, result.Results)
	if err != nil {
		return "", err
	}
	sidecar := w.SidecarPath(path)
	if err := fileutil.WriteFileLocked(ctx, sidecar, data, 0o644); err != nil {
		return "", fmt.Errorf("write sidecar: %w", err)
	}
	w.logger.Info("sidecar written",
		logging.String("image", path),
		logging.String("sidecar", sidecar),
		logging.String(logging.FieldCorrelationID, result.RunID),
		logging.Int("lines", len(result.Lines)),
		logging.Int("matches", result.Results.MatchCount()),
	)
	return sidecar, scanErr
}

// candidate reports whether event names an image that should be scanned.
func (w *Watcher) candidate(event fsnotify.Event) (string, bool) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return "", false
	}
	return w.eligible(event.Name)
}

func (w *Watcher) eligible(path string) (string, bool) {
	if strings.HasPrefix(filepath.Base(path), ".") {
		return "", false
	}
	if !extraction.IsSupportedPath(path) {
		return "", false
	}
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return "", false
	}
	return path, true
}

func (w *Watcher) queueExisting() {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		w.logger.Warn("list watch directory failed", logging.Error(err))
		return
	}
	for _, entry := range entries {
		path, ok := w.eligible(filepath.Join(w.dir, entry.Name()))
		if !ok || w.upToDate(path) {
			continue
		}
		w.touch(path)
	}
}

// upToDate reports whether the sidecar is newer than the image.
func (w *Watcher) upToDate(path string) bool {
	img, err := os.Stat(path)
	if err != nil {
		return false
	}
	sidecar, err := os.Stat(w.SidecarPath(path))
	if err != nil {
		return false
	}
	return !sidecar.ModTime().Before(img.ModTime())
}

func (w *Watcher) touch(path string) {
	w.mu.Lock()
	w.pending[path] = time.Now()
	w.mu.Unlock()
}

// due removes and returns the pending paths that have been quiet for the
// settle delay, in name order.
func (w *Watcher) due(now time.Time) []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	var ready []string
	for path, seen := range w.pending {
		if now.Sub(seen) >= w.settle {
			ready = append(ready, path)
			delete(w.pending, path)
		}
	}
	slices.Sort(ready)
	return ready
}
