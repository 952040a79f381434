package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"spinescan/internal/extraction"
)

type extractOutput struct {
	Image string   `json:"image"`
	Lines []string `json:"lines"`
}

func newExtractCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "extract IMAGE",
		Short: "Print the normalized text lines found in a photo",
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
			lines, err := p.Extract(cmd.Context(), img)
			if err != nil {
				return err
			}
			if jsonOut {
				return writeJSON(cmd, extractOutput{Image: img.Name, Lines: lines})
			}
			out := cmd.OutOrStdout()
			for _, line := range lines {
				fmt.Fprintln(out, line)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}
