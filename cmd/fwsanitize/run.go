package main

import (
	"time"

	"github.com/spf13/cobra"

	"fwsanitize/internal/orchestrator"
)

func newRunCmd(opts *rootOptions) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Convert the fwdata file once (the default command)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(cmd, opts, dryRun)
		},
	}
	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "report what would change without writing anything")

	return cmd
}

func runConvert(cmd *cobra.Command, opts *rootOptions, dryRun bool) error {
	out := newOutput(cmd, opts)

	cfg, err := loadConfig(opts, out)
	if err != nil {
		return err
	}
	if dryRun {
		cfg.DryRun = true
	}

	summary, err := orchestrator.New(cfg, out, version).Run(cmd.Context())
	if err != nil {
		return err
	}

	if summary.DryRun {
		out.Info("Dry run: %s", summary.String())
		return nil
	}
	out.Info("%s", summary.String())
	out.Verbose("%d lines, %d missing audio files, %d warnings in %s",
		summary.Lines, summary.Missing, summary.Warnings, summary.Duration.Round(time.Millisecond))
	out.Info("All done processing")
	return nil
}
