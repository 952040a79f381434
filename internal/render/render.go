package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"spinescan/internal/metadata"
	"spinescan/internal/services"
)

// Format names an output encoding.
type Format string

const (
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
	FormatTable    Format = "table"
	FormatXLSX     Format = "xlsx"
)

// DefaultFileName is the download name used when no output path is given.
const DefaultFileName = "cd_metadata.json"

// Formats lists every supported format.
func Formats() []Format {
	return []Format{FormatJSON, FormatMarkdown, FormatTable, FormatXLSX}
}

// ParseFormat accepts a format name or a common alias such as "md".
func ParseFormat(value string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "json":
		return FormatJSON, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "table", "text":
		return FormatTable, nil
	case "xlsx", "excel":
		return FormatXLSX, nil
	default:
		return "", services.Wrap(services.ErrValidation, "render", "parse format",
			fmt.Sprintf("unknown format %q (want json, markdown, table, or xlsx)", value), nil)
	}
}

// FormatForPath infers the format from a file extension.
func FormatForPath(path string) (Format, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, true
	case ".md", ".markdown":
		return FormatMarkdown, true
	case ".txt":
		return FormatTable, true
	case ".xlsx":
		return FormatXLSX, true
	default:
		return "", false
	}
}

// Extension returns the file extension for the format, dot included.
func (f Format) Extension() string {
	switch f {
	case FormatMarkdown:
		return ".md"
	case FormatTable:
		return ".txt"
	case FormatXLSX:
		return ".xlsx"
	default:
		return ".json"
	}
}

// ContentType returns the MIME type served for the format.
func (f Format) ContentType() string {
	switch f {
	case FormatMarkdown:
		return "text/markdown; charset=utf-8"
	case FormatTable:
		return "text/plain; charset=utf-8"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "application/json; charset=utf-8"
	}
}

// Binary reports whether the format should not be written to a terminal.
func (f Format) Binary() bool {
	return f == FormatXLSX
}

// Write encodes set in the given format.
func Write(w io.Writer, format Format, set metadata.ResultSet) error {
	switch format {
	case FormatJSON:
		return JSON(w, set)
	case FormatMarkdown:
		_, err := io.WriteString(w, Markdown(set))
		return err
	case FormatTable:
		_, err := io.WriteString(w, Table(set)+"\n")
		return err
	case FormatXLSX:
		return WriteXLSX(w, set)
	default:
		return services.Wrap(services.ErrValidation, "render", "write", fmt.Sprintf("unknown format %q", format), nil)
	}
}

// Bytes encodes set in the given format.
func Bytes(format Format, set metadata.ResultSet) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(&buf, format, set); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// JSON writes the indented wire document followed by a newline.
func JSON(w io.Writer, set metadata.ResultSet) error {
	if set == nil {
		set = metadata.ResultSet{}
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(set); err != nil {
		return fmt.Errorf("encode result set: %w", err)
	}
	return nil
}
