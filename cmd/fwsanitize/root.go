package main

import (
	"github.com/spf13/cobra"

	"fwsanitize/internal/config"
	"fwsanitize/internal/output"
)

// rootOptions are the flags shared by every subcommand.
type rootOptions struct {
	configPath string
	verbose    bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "fwsanitize",
		Short: "Rename audio files referenced by a FieldWorks fwdata file to plain ASCII names",
		Long: `fwsanitize copies samples/ to output/, rewrites every
<Uni>AudioVisual\NAME.mp3</Uni> reference in the fwdata file so NAME
contains only letters, digits, spaces, hyphens and dots, renames the
referenced audio files to match and writes mapping.json.

Han characters are romanized to pinyin; private-use glyphs, emoji and
other characters are dropped.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(cmd, opts, false)
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", config.DefaultConfigFile, "configuration file")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "show every rename and skipped file")

	cmd.AddCommand(
		newRunCmd(opts),
		newWatchCmd(opts),
		newInitCmd(opts),
		newCheckCmd(opts),
		newHistoryCmd(opts),
	)

	return cmd
}

// newOutput builds the Output for a command, writing to the command's streams.
func newOutput(cmd *cobra.Command, opts *rootOptions) *output.Output {
	return output.New(output.Config{
		Verbose:   opts.verbose,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		IsTTY:     output.IsTerminal(cmd.OutOrStdout()),
	})
}

// loadConfig loads the configuration and checks it against the filesystem.
// Warnings are printed; errors are returned.
func loadConfig(opts *rootOptions, out *output.Output) (*config.Configuration, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}

	result := config.ValidateConfig(cfg)
	for _, w := range result.Warnings {
		out.Warn("%s: %s", w.Field, w.Message)
	}
	if err := result.Err(); err != nil {
		return nil, err
	}
	return cfg, nil
}
