package main

import (
	"strings"

	"github.com/spf13/cobra"

	"spinescan/internal/httpapi"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	var bind string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			p, err := ctx.pipeline(cmd)
			if err != nil {
				return err
			}
			addr := cfg.API.Bind
			if value := strings.TrimSpace(bind); value != "" {
				addr = value
			}
			server := httpapi.New(p,
				httpapi.WithBind(addr),
				httpapi.WithToken(cfg.API.Token),
				httpapi.WithLogger(logger),
			)
			return server.Run(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&bind, "bind", "", "Listen address (overrides api.bind)")
	return cmd
}
