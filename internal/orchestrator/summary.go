package orchestrator

import (
	"fmt"
	"time"

	"fwsanitize/internal/audit"
	"fwsanitize/internal/workspace"
)

// Summary contains statistics from a conversion run.
type Summary struct {
	Lines     int                   // lines read from the input fwdata file
	Converted int                   // distinct filenames in the mapping
	Renamed   int                   // audio files renamed on disk
	Missing   int                   // referenced audio files that did not exist
	Warnings  int                   // lines or names that could not be fully converted
	Unsafe    []workspace.FileEntry // unreferenced audio files with unsafe names
	DryRun    bool
	RunID     audit.RunID // empty when auditing is off
	Duration  time.Duration
}

// String returns the one-line result reported at the end of a run.
func (s *Summary) String() string {
	return fmt.Sprintf("Converted %d filenames in fwdata, renamed %d audio files.", s.Converted, s.Renamed)
}

// auditSummary converts the summary into the journal's RUN_END counters.
func (s *Summary) auditSummary() audit.RunSummary {
	return audit.RunSummary{
		Lines:     s.Lines,
		Converted: s.Converted,
		Renamed:   s.Renamed,
		Missing:   s.Missing,
		Warnings:  s.Warnings,
	}
}
