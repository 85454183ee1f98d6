package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"fwsanitize/internal/orchestrator"
	"fwsanitize/internal/watcher"
)

func newWatchCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Convert now and again every time the fwdata file changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := newOutput(cmd, opts)

			cfg, err := loadConfig(opts, out)
			if err != nil {
				return err
			}

			orch := orchestrator.New(cfg, out, version)
			convert := func(ctx context.Context) error {
				summary, err := orch.Run(ctx)
				if err != nil {
					return err
				}
				out.Info("%s", summary.String())
				return nil
			}

			if err := convert(cmd.Context()); err != nil {
				return err
			}

			w := watcher.New(cfg.Watch, func(ctx context.Context, path string) error {
				out.Info("%s changed, converting", cfg.Fwdata)
				return convert(ctx)
			})
			w.OnError(func(err error) {
				out.Error("Error: %v", err)
			})
			if err := w.Start(cfg.InputFile()); err != nil {
				return err
			}
			out.Info("Watching %s (Ctrl+C to stop)", cfg.InputFile())

			<-cmd.Context().Done()

			summary := w.Stop()
			out.Info("Stopped after %s: %d conversions, %d failed",
				summary.Duration.Round(time.Second), summary.Runs, summary.Failures)
			return nil
		},
	}
}
