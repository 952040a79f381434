package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"spinescan/internal/fileutil"
	"spinescan/internal/metadata"
	"spinescan/internal/render"
)

// outputOptions holds the --format and --output flags shared by commands that
// print a result set.
type outputOptions struct {
	format string
	output string
}

func (o *outputOptions) bind(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.format, "format", "f", "", "Output format: json, markdown, table, xlsx")
	cmd.Flags().StringVarP(&o.output, "output", "o", "", "Write results to FILE instead of stdout")
}

// resolveFormat picks the format: an explicit --format wins, then the
// --output extension, then table for terminals and JSON for pipes.
func (o *outputOptions) resolveFormat(out io.Writer) (render.Format, error) {
	if value := strings.TrimSpace(o.format); value != "" {
		return render.ParseFormat(value)
	}
	if path := strings.TrimSpace(o.output); path != "" {
		if format, ok := render.FormatForPath(path); ok {
			return format, nil
		}
		return render.FormatJSON, nil
	}
	if isTerminal(out) {
		return render.FormatTable, nil
	}
	return render.FormatJSON, nil
}

func (o *outputOptions) write(cmd *cobra.Command, set metadata.ResultSet) error {
	out := cmd.OutOrStdout()
	format, err := o.resolveFormat(out)
	if err != nil {
		return err
	}
	path := strings.TrimSpace(o.output)
	if path == "" {
		if format.Binary() && isTerminal(out) {
			return fmt.Errorf("refusing to write %s to a terminal; use --output", format)
		}
		return render.Write(out, format, set)
	}

	data, err := render.Bytes(format, set)
	if err != nil {
		return err
	}
	if err := fileutil.WriteFileLocked(cmd.Context(), path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %d result(s) to %s\n", len(set), path)
	return nil
}

func isTerminal(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func readInput(cmd *cobra.Command, path string) (string, error) {
	if path == "" || path == "-" {
		var buf bytes.Buffer
		if _, err := io.Copy(&buf, cmd.InOrStdin()); err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return buf.String(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(data), nil
}
