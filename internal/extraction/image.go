package extraction

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"spinescan/internal/services"
)

// MaxImageBytes caps accepted uploads and files.
const MaxImageBytes = 20 << 20

// Image is an in-memory spine photo.
type Image struct {
	Name     string
	MIMEType string
	Data     []byte
}

var supportedTypes = map[string]struct{}{
	"image/jpeg": {},
	"image/png":  {},
}

// SupportedExtensions lists the file extensions the watcher picks up.
func SupportedExtensions() []string {
	return []string{".jpg", ".jpeg", ".png"}
}

// IsSupportedPath reports whether path has an accepted image extension.
func IsSupportedPath(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, candidate := range SupportedExtensions() {
		if ext == candidate {
			return true
		}
	}
	return false
}

// NewImage sniffs data and returns an Image when it is a JPEG or PNG.
func NewImage(name string, data []byte) (Image, error) {
	if len(data) == 0 {
		return Image{}, services.Wrap(services.ErrValidation, "extract", "load image", fmt.Sprintf("%s is empty", displayName(name)), nil)
	}
	if len(data) > MaxImageBytes {
		return Image{}, services.Wrap(services.ErrValidation, "extract", "load image",
			fmt.Sprintf("%s exceeds %d MiB", displayName(name), MaxImageBytes>>20), nil)
	}
	mimeType := http.DetectContentType(data)
	if _, ok := supportedTypes[mimeType]; !ok {
		return Image{}, services.Wrap(services.ErrValidation, "extract", "load image",
			fmt.Sprintf("%s is %s; expected JPEG or PNG", displayName(name), mimeType), nil)
	}
	return Image{Name: name, MIMEType: mimeType, Data: data}, nil
}

// LoadImage reads path and validates its type.
func LoadImage(path string) (Image, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Image{}, services.Wrap(services.ErrValidation, "extract", "load image", "stat image", err)
	}
	if info.IsDir() {
		return Image{}, services.Wrap(services.ErrValidation, "extract", "load image", path+" is a directory", nil)
	}
	if info.Size() > MaxImageBytes {
		return Image{}, services.Wrap(services.ErrValidation, "extract", "load image",
			fmt.Sprintf("%s exceeds %d MiB", path, MaxImageBytes>>20), nil)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Image{}, services.Wrap(services.ErrValidation, "extract", "load image", "read image", err)
	}
	return NewImage(filepath.Base(path), data)
}

func displayName(name string) string {
	if strings.TrimSpace(name) == "" {
		return "image"
	}
	return name
}
