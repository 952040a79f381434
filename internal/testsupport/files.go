package testsupport

import (
	"os"
	"path/filepath"
	"testing"
)

// pngSignature is enough of a PNG header for content sniffing.
var pngSignature = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

// PNGBytes returns bytes that sniff as image/png.
func PNGBytes() []byte {
	out := make([]byte, len(pngSignature))
	copy(out, pngSignature)
	return out
}

// WritePNG writes a minimal PNG to path, creating parent directories.
func WritePNG(t testing.TB, path string) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, PNGBytes(), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
