package audit

import (
	"fmt"
	"time"
)

// AuditStats holds totals across journaled runs.
type AuditStats struct {
	Runs        int
	ByStatus    map[RunStatus]int
	Lines       int // Totals come from finished runs only
	Converted   int
	Renamed     int
	Missing     int
	Warnings    int
	FirstRun    time.Time
	LastRun     time.Time
	LogSegments int // Rotated segments plus the active journal
}

// StatsOptions filters the runs AggregateStats counts.
type StatsOptions struct {
	Since *time.Time // Only runs started at or after this time
}

// AggregateStats totals every run recorded in logDir, across rotated
// segments and the active journal.
func AggregateStats(logDir string, opts StatsOptions) (*AuditStats, error) {
	files, err := GetAllLogFiles(logDir)
	if err != nil {
		return nil, err
	}

	runs, err := NewAuditReader(logDir).ListRuns()
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}

	stats := &AuditStats{
		ByStatus:    make(map[RunStatus]int),
		LogSegments: len(files),
	}

	for _, run := range runs {
		if opts.Since != nil && run.StartTime.Before(*opts.Since) {
			continue
		}

		stats.Runs++
		stats.ByStatus[run.Status]++

		if stats.FirstRun.IsZero() || run.StartTime.Before(stats.FirstRun) {
			stats.FirstRun = run.StartTime
		}
		if run.StartTime.After(stats.LastRun) {
			stats.LastRun = run.StartTime
		}

		if run.EndTime == nil {
			continue
		}
		stats.Lines += run.Summary.Lines
		stats.Converted += run.Summary.Converted
		stats.Renamed += run.Summary.Renamed
		stats.Missing += run.Summary.Missing
		stats.Warnings += run.Summary.Warnings
	}

	return stats, nil
}
