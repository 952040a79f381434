package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"spinescan/internal/render"
	"spinescan/internal/watcher"
)

func newWatchCommand(ctx *commandContext) *cobra.Command {
	var format string
	var outputDir string
	var existing bool
	var settle time.Duration

	cmd := &cobra.Command{
		Use:   "watch [DIR]",
		Short: "Scan images dropped into a directory and write result sidecars",
		Long: "Watch processes every image written into DIR (paths.watch_dir by default)\n" +
			"and writes its results next to it as <image>.json, or into --output-dir.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			dir := cfg.Paths.WatchDir
			if len(args) == 1 {
				dir = args[0]
			}
			if strings.TrimSpace(dir) == "" {
				return errors.New("no directory given and paths.watch_dir is not set")
			}
			renderFormat, err := render.ParseFormat(format)
			if err != nil {
				return err
			}

			p, err := ctx.pipeline(cmd)
			if err != nil {
				return err
			}
			w, err := watcher.New(dir, p,
				watcher.WithFormat(renderFormat),
				watcher.WithOutputDir(outputDir),
				watcher.WithProcessExisting(existing),
				watcher.WithSettleDelay(settle),
				watcher.WithLogger(logger),
			)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Watching %s (Ctrl+C to stop)\n", dir)
			return w.Run(cmd.Context())
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", string(render.FormatJSON), "Sidecar format: json, markdown, table, xlsx")
	cmd.Flags().StringVar(&outputDir, "output-dir", "", "Write sidecars here instead of next to each image")
	cmd.Flags().BoolVar(&existing, "existing", false, "Also process images already in the directory")
	cmd.Flags().DurationVar(&settle, "settle", watcher.DefaultSettleDelay, "Quiet period before a new file is read")
	return cmd
}
