package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"fwsanitize/internal/audit"
	"fwsanitize/internal/config"
)

func newHistoryCmd(opts *rootOptions) *cobra.Command {
	var (
		all   bool
		stats bool
		since time.Duration
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show the renames of the last run from the audit journal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := newOutput(cmd, opts)

			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return err
			}
			reader := audit.NewAuditReader(cfg.Audit.LogDirectory)

			if stats {
				opts := audit.StatsOptions{}
				if since > 0 {
					from := time.Now().Add(-since)
					opts.Since = &from
				}
				s, err := audit.AggregateStats(cfg.Audit.LogDirectory, opts)
				if err != nil {
					return err
				}
				for _, line := range formatStats(s) {
					out.Info("%s", line)
				}
				return nil
			}

			if all {
				runs, err := reader.ListRuns()
				if err != nil {
					return err
				}
				if len(runs) == 0 {
					out.Info("No runs recorded in %s", reader.GetLogPath())
				}
				for _, run := range runs {
					out.Info("%s", formatRun(run))
				}
				return nil
			}

			latest, err := reader.GetLatestRun()
			if errors.Is(err, audit.ErrNoRuns) {
				out.Info("No runs recorded in %s", reader.GetLogPath())
				return nil
			}
			if err != nil {
				return err
			}

			out.Info("%s", formatRun(*latest))
			renames, err := reader.Renames(latest.RunID)
			if err != nil {
				return err
			}
			for _, e := range renames {
				out.Info("  %s -> %s", e.SourcePath, e.DestinationPath)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "list every recorded run instead of the last run's renames")
	cmd.Flags().BoolVar(&stats, "stats", false, "show totals across all recorded runs")
	cmd.Flags().DurationVar(&since, "since", 0, "with --stats, only count runs started within this duration (e.g. 168h)")

	return cmd
}

func formatRun(run audit.RunInfo) string {
	s := fmt.Sprintf("%s  %s  %s", run.StartTime.Local().Format(time.DateTime), run.RunID, run.Status)
	if run.Fwdata != "" {
		s += "  " + run.Fwdata
	}
	if run.EndTime != nil {
		s += fmt.Sprintf("  (converted %d, renamed %d, missing %d)",
			run.Summary.Converted, run.Summary.Renamed, run.Summary.Missing)
	}
	return s
}

func formatStats(s *audit.AuditStats) []string {
	if s.Runs == 0 {
		return []string{"No runs recorded"}
	}
	return []string{
		fmt.Sprintf("Runs: %d (completed %d, failed %d, interrupted %d, in progress %d)",
			s.Runs,
			s.ByStatus[audit.RunStatusCompleted],
			s.ByStatus[audit.RunStatusFailed],
			s.ByStatus[audit.RunStatusInterrupted],
			s.ByStatus[audit.RunStatusInProgress]),
		fmt.Sprintf("Between %s and %s",
			s.FirstRun.Local().Format(time.DateTime), s.LastRun.Local().Format(time.DateTime)),
		fmt.Sprintf("Lines %d, converted %d, renamed %d, missing %d, warnings %d",
			s.Lines, s.Converted, s.Renamed, s.Missing, s.Warnings),
		fmt.Sprintf("Journal files: %d", s.LogSegments),
	}
}
