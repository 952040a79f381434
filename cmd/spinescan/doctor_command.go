package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"spinescan/internal/deps"
	"spinescan/internal/preflight"
)

func newDoctorCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check directories, provider credentials, and external binaries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			var lines []string
			lines = append(lines, renderSectionHeader("Configuration", colorize)...)
			path := ctx.configPath
			if path == "" {
				path = "(defaults)"
			}
			lines = append(lines, renderStatusLine("Config file", statusInfo, path, colorize))
			lines = append(lines, renderStatusLine("OCR engine", statusInfo, cfg.OCR.Engine, colorize))
			lines = append(lines, renderStatusLine("Providers", statusInfo, strings.Join(cfg.Providers.Order, ", "), colorize))

			lines = append(lines, "")
			lines = append(lines, renderSectionHeader("Checks", colorize)...)
			results := preflight.RunAll(cmd.Context(), cfg)
			for _, result := range results {
				lines = append(lines, checkLine(result, colorize))
			}

			lines = append(lines, "")
			lines = append(lines, renderSectionHeader("Dependencies", colorize)...)
			statuses := preflight.CheckSystemDeps(cmd.Context(), cfg)
			for _, status := range statuses {
				lines = append(lines, dependencyLine(status, colorize))
			}

			for _, line := range lines {
				fmt.Fprintln(out, line)
			}

			failed := preflight.Failed(results)
			missing := deps.MissingRequired(statuses)
			if len(failed) > 0 || len(missing) > 0 {
				return fmt.Errorf("doctor found %d failed check(s) and %d missing dependency(ies)", len(failed), len(missing))
			}
			return nil
		},
	}
}
