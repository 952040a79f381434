package watcher

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"

	"spinescan/internal/extraction"
	"spinescan/internal/logging"
	"spinescan/internal/metadata"
	"spinescan/internal/pipeline"
	"spinescan/internal/render"
	"spinescan/internal/testsupport"
)

type fakeScanner struct {
	mu    sync.Mutex
	names []string
	err   error
}

func (f *fakeScanner) Scan(_ context.Context, img extraction.Image) (pipeline.ScanResult, error) {
	f.mu.Lock()
	f.names = append(f.names, img.Name)
	f.mu.Unlock()
	if f.err != nil {
		return pipeline.ScanResult{}, f.err
	}
	return pipeline.ScanResult{
		RunID: "run-1",
		Image: img.Name,
		Lines: []string{"Abbey Road"},
		Results: metadata.ResultSet{metadata.NewEntry("Abbey Road", []metadata.Match{
			{Source: "MusicBrainz", Title: "Abbey Road", IDKey: "mbid", ID: "mb-1"},
		})},
	}, nil
}

func (f *fakeScanner) scanned() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.names...)
}

func TestNewRequiresDirAndScanner(t *testing.T) {
	if _, err := New("", &fakeScanner{}); err == nil {
		t.Fatal("expected error for empty dir")
	}
	if _, err := New(t.TempDir(), nil); err == nil {
		t.Fatal("expected error for nil scanner")
	}
}

func TestSidecarPath(t *testing.T) {
	w, err := New("/photos", &fakeScanner{})
	if err != nil {
		t.Fatal(err)
	}
	if got := w.SidecarPath("/photos/shelf.jpg"); got != "/photos/shelf.jpg.json" {
		t.Fatalf("unexpected sidecar path %q", got)
	}
	w, err = New("/photos", &fakeScanner{}, WithFormat(render.FormatMarkdown), WithOutputDir("/out"))
	if err != nil {
		t.Fatal(err)
	}
	if got := w.SidecarPath("/photos/shelf.jpg"); got != "/out/shelf.jpg.md" {
		t.Fatalf("unexpected sidecar path %q", got)
	}
}

func TestCandidate(t *testing.T) {
	dir := t.TempDir()
	image := filepath.Join(dir, "shelf.png")
	hidden := filepath.Join(dir, ".shelf.png")
	notes := filepath.Join(dir, "notes.txt")
	sub := filepath.Join(dir, "album.png")
	testsupport.WritePNG(t, image)
	testsupport.WritePNG(t, hidden)
	if err := os.WriteFile(notes, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatal(err)
	}

	w, err := New(dir, &fakeScanner{}, WithLogger(logging.NewNop()))
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		name string
		path string
		op   fsnotify.Op
		want bool
	}{
		{"create image", image, fsnotify.Create, true},
		{"write image", image, fsnotify.Write, true},
		{"chmod image", image, fsnotify.Chmod, false},
		{"remove image", image, fsnotify.Remove, false},
		{"hidden image", hidden, fsnotify.Create, false},
		{"unsupported file", notes, fsnotify.Create, false},
		{"directory", sub, fsnotify.Create, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := w.candidate(fsnotify.Event{Name: tt.path, Op: tt.op})
			if ok != tt.want {
				t.Fatalf("candidate = %v, want %v", ok, tt.want)
			}
		})
	}
}

func TestProcessFileWritesSidecar(t *testing.T) {
	dir := t.TempDir()
	image := filepath.Join(dir, "shelf.png")
	testsupport.WritePNG(t, image)

	w, err := New(dir, &fakeScanner{}, WithLogger(logging.NewNop()))
	if err != nil {
		t.Fatal(err)
	}
	sidecar, err := w.ProcessFile(context.Background(), image)
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	data, err := os.ReadFile(sidecar)
	if err != nil {
		t.Fatalf("read sidecar: %v", err)
	}
	set, err := metadata.Decode(data)
	if err != nil {
		t.Fatalf("decode sidecar: %v", err)
	}
	if len(set) != 1 || set[0].Matches[0].ID != "mb-1" {
		t.Fatalf("unexpected sidecar contents: %#v", set)
	}
	if !w.upToDate(image) {
		t.Fatal("expected image to be up to date after processing")
	}
}

func TestProcessFileScanError(t *testing.T) {
	dir := t.TempDir()
	image := filepath.Join(dir, "blank.png")
	testsupport.WritePNG(t, image)

	scanErr := errors.New("no text")
	w, err := New(dir, &fakeScanner{err: scanErr}, WithLogger(logging.NewNop()))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := w.ProcessFile(context.Background(), image); !errors.Is(err, scanErr) {
		t.Fatalf("expected scan error, got %v", err)
	}
	if _, err := os.Stat(w.SidecarPath(image)); !os.IsNotExist(err) {
		t.Fatalf("expected no sidecar, stat err=%v", err)
	}
}

func TestRunProcessesNewAndExistingImages(t *testing.T) {
	dir := t.TempDir()
	existing := filepath.Join(dir, "existing.png")
	testsupport.WritePNG(t, existing)

	scanner := &fakeScanner{}
	w, err := New(dir, scanner,
		WithSettleDelay(20*time.Millisecond),
		WithProcessExisting(true),
		WithLogger(logging.NewNop()),
	)
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	waitFor(t, w.SidecarPath(existing))

	fresh := filepath.Join(dir, "fresh.png")
	testsupport.WritePNG(t, fresh)
	waitFor(t, w.SidecarPath(fresh))

	cancel()
	if err := <-done; err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(scanner.scanned()) < 2 {
		t.Fatalf("expected both images scanned, got %v", scanner.scanned())
	}
}

func waitFor(t *testing.T, path string) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if _, err := os.Stat(path); err == nil {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", path)
}
