package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"spinescan/internal/pipeline"
)

type providerJSON struct {
	Name              string  `json:"name"`
	Source            string  `json:"source"`
	Enabled           bool    `json:"enabled"`
	HasCredentials    bool    `json:"has_credentials"`
	Active            bool    `json:"active"`
	RequestsPerSecond float64 `json:"requests_per_second"`
	Reason            string  `json:"reason,omitempty"`
}

type providersJSON struct {
	Providers []providerJSON `json:"providers"`
	Engine    string         `json:"ocr_engine"`
}

func newProvidersCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "providers",
		Short: "List metadata sources and whether each is active",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			settings := pipeline.ProviderSettingsFromConfig(cfg)

			if jsonOut {
				payload := providersJSON{
					Providers: make([]providerJSON, 0, len(settings)),
					Engine:    cfg.OCR.Engine,
				}
				for _, s := range settings {
					payload.Providers = append(payload.Providers, providerJSON{
						Name:              s.Name,
						Source:            s.Source,
						Enabled:           s.Enabled,
						HasCredentials:    s.HasCredentials,
						Active:            s.Active(),
						RequestsPerSecond: s.RequestsPerSecond,
						Reason:            s.Reason,
					})
				}
				return writeJSON(cmd, payload)
			}

			rows := make([][]string, 0, len(settings))
			for _, s := range settings {
				rows = append(rows, []string{
					s.Name,
					s.Source,
					yesNo(s.Enabled),
					yesNo(s.HasCredentials),
					yesNo(s.Active()),
					strconv.FormatFloat(s.RequestsPerSecond, 'f', -1, 64),
					s.Reason,
				})
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable(
				[]string{"Name", "Source", "Enabled", "Credentials", "Active", "Req/s", "Note"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
			))
			fmt.Fprintf(out, "OCR engine: %s\n", strings.TrimSpace(cfg.OCR.Engine))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}
