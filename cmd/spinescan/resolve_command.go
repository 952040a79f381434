package main

import (
	"errors"

	"github.com/spf13/cobra"

	"spinescan/internal/metadata"
)

func newResolveCommand(ctx *commandContext) *cobra.Command {
	var out outputOptions
	var queries []string

	cmd := &cobra.Command{
		Use:   "resolve [FILE|-]",
		Short: "Resolve already-extracted spine text, one query per line",
		Long: "Resolve reads query lines from FILE, or from stdin when FILE is omitted or \"-\".\n" +
			"Use --query to pass queries inline instead.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(queries) > 0 && len(args) > 0 {
				return errors.New("use either --query or an input file, not both")
			}
			p, err := ctx.pipeline(cmd)
			if err != nil {
				return err
			}

			var set metadata.ResultSet
			if len(queries) > 0 {
				set, err = p.Resolve(cmd.Context(), queries)
			} else {
				var path string
				if len(args) == 1 {
					path = args[0]
				}
				raw, readErr := readInput(cmd, path)
				if readErr != nil {
					return readErr
				}
				set, err = p.ResolveText(cmd.Context(), raw)
			}
			if set != nil {
				if writeErr := out.write(cmd, set); writeErr != nil {
					return writeErr
				}
			}
			return err
		},
	}

	out.bind(cmd)
	cmd.Flags().StringArrayVarP(&queries, "query", "q", nil, "Query to resolve (repeatable)")
	return cmd
}
