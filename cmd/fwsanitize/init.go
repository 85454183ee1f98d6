package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"fwsanitize/internal/config"
	"fwsanitize/internal/workspace"
)

func newInitCmd(opts *rootOptions) *cobra.Command {
	var (
		fwdata string
		force  bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := newOutput(cmd, opts)

			if workspace.FileExists(opts.configPath) && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", opts.configPath)
			}

			cfg := &config.Configuration{Fwdata: fwdata}
			if err := cfg.Validate(); err != nil {
				return err
			}
			cfg.ApplyDefaults()

			if err := config.Save(cfg, opts.configPath); err != nil {
				return err
			}
			out.Info("Wrote %s", opts.configPath)
			return nil
		},
	}
	cmd.Flags().StringVar(&fwdata, "fwdata", "", "fwdata file name inside samples/AudioVisual")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing configuration file")
	_ = cmd.MarkFlagRequired("fwdata")

	return cmd
}
