package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"fwsanitize/internal/sanitizer"
)

func newCheckCmd(opts *rootOptions) *cobra.Command {
	var policy string

	cmd := &cobra.Command{
		Use:   "check NAME...",
		Short: "Print the sanitized form of audio file names without touching disk",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := newOutput(cmd, opts)

			p := sanitizer.EmptyNamePolicy(policy)
			if p != sanitizer.EmptyNameKeep && p != sanitizer.EmptyNamePlaceholder {
				return fmt.Errorf("--empty-name-policy must be %q or %q", sanitizer.EmptyNameKeep, sanitizer.EmptyNamePlaceholder)
			}

			s := sanitizer.New(sanitizer.Options{
				EmptyNamePolicy: p,
				OnWarning: func(err error) {
					out.Warn("%v", err)
				},
			})

			for _, name := range args {
				converted, err := s.ConvertAudioFileName(name)
				if err != nil {
					return err
				}
				if converted == name {
					out.Info("%s (unchanged)", name)
					continue
				}
				out.Info("%s -> %s", name, converted)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&policy, "empty-name-policy", string(sanitizer.EmptyNameKeep), "keep or placeholder")

	return cmd
}
