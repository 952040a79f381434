package extraction_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"spinescan/internal/config"
	"spinescan/internal/extraction"
	"spinescan/internal/services"
)

var pngData = append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 32)...)

type fakeEngine struct {
	name      string
	lines     []string
	err       error
	available bool
	calls     int
}

func (f *fakeEngine) Name() string    { return f.name }
func (f *fakeEngine) Available() bool { return f.available }

func (f *fakeEngine) ExtractLines(ctx context.Context, img extraction.Image) ([]string, error) {
	f.calls++
	return f.lines, f.err
}

func testImage(t *testing.T) extraction.Image {
	t.Helper()
	img, err := extraction.NewImage("spines.png", pngData)
	if err != nil {
		t.Fatalf("NewImage: %v", err)
	}
	return img
}

func TestExtractUsesHostedEngineAndNormalizes(t *testing.T) {
	hosted := &fakeEngine{name: "llm", lines: []string{"  Abbey Road ", "", "ＲＵＭＯＵＲＳ\r\nFleetwood Mac", "   "}}
	local := &fakeEngine{name: "tesseract", available: true}
	ex := extraction.New(extraction.WithHosted(hosted), extraction.WithLocal(local))

	lines, err := ex.Extract(context.Background(), testImage(t))
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	want := []string{"Abbey Road", "RUMOURS", "Fleetwood Mac"}
	if !reflect.DeepEqual(lines, want) {
		t.Fatalf("got %q want %q", lines, want)
	}
	if local.calls != 0 {
		t.Fatal("local engine should not run when hosted succeeds")
	}
}

func TestExtractFallsBackToLocal(t *testing.T) {
	hosted := &fakeEngine{name: "vision", err: errors.New("quota exceeded")}
	local := &fakeEngine{name: "tesseract", available: true, lines: []string{"Blue"}}
	ex := extraction.New(extraction.WithHosted(hosted), extraction.WithLocal(local))

	lines, err := ex.Extract(context.Background(), testImage(t))
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(lines) != 1 || lines[0] != "Blue" || local.calls != 1 {
		t.Fatalf("expected fallback result, got %q (local calls %d)", lines, local.calls)
	}
}

func TestExtractSurfacesHostedErrorWithoutLocal(t *testing.T) {
	hosted := &fakeEngine{name: "llm", err: errors.New("401 unauthorized")}
	local := &fakeEngine{name: "tesseract", available: false}
	ex := extraction.New(extraction.WithHosted(hosted), extraction.WithLocal(local))

	_, err := ex.Extract(context.Background(), testImage(t))
	if !errors.Is(err, services.ErrExternalTool) || !strings.Contains(err.Error(), "401 unauthorized") {
		t.Fatalf("expected external tool error, got %v", err)
	}
	if local.calls != 0 {
		t.Fatal("unavailable local engine must not run")
	}
}

func TestExtractJoinsBothErrors(t *testing.T) {
	hosted := &fakeEngine{name: "llm", err: errors.New("hosted down")}
	local := &fakeEngine{name: "tesseract", available: true, err: errors.New("tessdata missing")}
	ex := extraction.New(extraction.WithHosted(hosted), extraction.WithLocal(local))

	_, err := ex.Extract(context.Background(), testImage(t))
	if err == nil || !strings.Contains(err.Error(), "hosted down") || !strings.Contains(err.Error(), "tessdata missing") {
		t.Fatalf("expected both errors, got %v", err)
	}
}

func TestExtractNoTextYieldsEmptyLines(t *testing.T) {
	hosted := &fakeEngine{name: "llm", lines: []string{"   ", ""}}
	local := &fakeEngine{name: "tesseract", available: true}
	ex := extraction.New(extraction.WithHosted(hosted), extraction.WithLocal(local))

	lines, err := ex.Extract(context.Background(), testImage(t))
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if lines == nil || len(lines) != 0 {
		t.Fatalf("expected empty non-nil lines, got %#v", lines)
	}
	if local.calls != 0 {
		t.Fatal("blank hosted output is not a failure and should not trigger fallback")
	}

	ex = extraction.New(extraction.WithLocal(&fakeEngine{name: "tesseract", available: true, lines: []string{" ", "\f"}}))
	lines, err = ex.Extract(context.Background(), testImage(t))
	if err != nil || lines == nil || len(lines) != 0 {
		t.Fatalf("expected empty lines from local engine, got %#v %v", lines, err)
	}
}

func TestExtractWithoutEngines(t *testing.T) {
	ex := extraction.New(extraction.WithLocal(&fakeEngine{name: "tesseract"}))
	_, err := ex.Extract(context.Background(), testImage(t))
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestNewImageValidatesType(t *testing.T) {
	if _, err := extraction.NewImage("a.gif", []byte("GIF89a......")); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error for gif, got %v", err)
	}
	if _, err := extraction.NewImage("empty.png", nil); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error for empty data, got %v", err)
	}
	img, err := extraction.NewImage("photo.jpg", append([]byte{0xFF, 0xD8, 0xFF, 0xE0}, make([]byte, 16)...))
	if err != nil || img.MIMEType != "image/jpeg" {
		t.Fatalf("expected jpeg, got %+v %v", img, err)
	}
}

func TestLoadImage(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "spines.png")
	if err := os.WriteFile(path, pngData, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	img, err := extraction.LoadImage(path)
	if err != nil {
		t.Fatalf("LoadImage: %v", err)
	}
	if img.Name != "spines.png" || img.MIMEType != "image/png" {
		t.Fatalf("unexpected image %+v", img)
	}
	if _, err := extraction.LoadImage(filepath.Join(dir, "missing.png")); err == nil {
		t.Fatal("expected error for missing file")
	}
	if _, err := extraction.LoadImage(dir); err == nil {
		t.Fatal("expected error for directory")
	}
}

func TestIsSupportedPath(t *testing.T) {
	for path, want := range map[string]bool{"a.JPG": true, "b.jpeg": true, "c.png": true, "d.gif": false, "e": false} {
		if got := extraction.IsSupportedPath(path); got != want {
			t.Fatalf("IsSupportedPath(%q) = %v", path, got)
		}
	}
}

func TestNewFromConfigSelectsEngines(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   []string
	}{
		{"auto without keys", func(c *config.Config) {}, []string{"tesseract"}},
		{"auto with llm key", func(c *config.Config) { c.LLM.APIKey = "k" }, []string{"llm", "tesseract"}},
		{"auto with vision key", func(c *config.Config) { c.Vision.APIKey = "k" }, []string{"vision", "tesseract"}},
		{"explicit tesseract", func(c *config.Config) {
			c.OCR.Engine = config.OCREngineTesseract
			c.LLM.APIKey = "k"
		}, []string{"tesseract"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.mutate(&cfg)
			ex, err := extraction.NewFromConfig(context.Background(), &cfg, nil)
			if err != nil {
				t.Fatalf("NewFromConfig: %v", err)
			}
			if got := ex.Engines(); !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("engines = %v want %v", got, tt.want)
			}
		})
	}
}
