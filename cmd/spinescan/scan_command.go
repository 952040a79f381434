package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"spinescan/internal/extraction"
)

func newScanCommand(ctx *commandContext) *cobra.Command {
	var out outputOptions
	var showLines bool

	cmd := &cobra.Command{
		Use:   "scan IMAGE",
		Short: "Extract spine text from a photo and resolve each line",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			img, err := extraction.LoadImage(args[0])
			if err != nil {
				return err
			}
			p, err := ctx.pipeline(cmd)
			if err != nil {
				return err
			}

			result, scanErr := p.Scan(cmd.Context(), img)
			if showLines && len(result.Lines) > 0 {
				stderr := cmd.ErrOrStderr()
				fmt.Fprintf(stderr, "Extracted %d line(s):\n", len(result.Lines))
				for _, line := range result.Lines {
					fmt.Fprintf(stderr, "  %s\n", line)
				}
			}
			if result.Results == nil {
				return scanErr
			}
			if err := out.write(cmd, result.Results); err != nil {
				return err
			}
			if scanErr != nil {
				return fmt.Errorf("scan %s incomplete: %w", strings.TrimSpace(img.Name), scanErr)
			}
			return nil
		},
	}

	out.bind(cmd)
	cmd.Flags().BoolVar(&showLines, "lines", false, "Print extracted lines to stderr")
	return cmd
}
