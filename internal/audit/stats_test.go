package audit

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestAggregateStats_Empty(t *testing.T) {
	stats, err := AggregateStats(filepath.Join(t.TempDir(), "none"), StatsOptions{})
	if err != nil {
		t.Fatalf("AggregateStats failed: %v", err)
	}
	if stats.Runs != 0 || stats.LogSegments != 0 || !stats.FirstRun.IsZero() {
		t.Errorf("expected empty stats, got %+v", stats)
	}
}

func TestAggregateStats_CountsStatusesAndTotals(t *testing.T) {
	w, dir := newTestWriter(t)

	done, _ := w.StartRun("test", "a.fwdata")
	w.EndRun(done, RunStatusCompleted, RunSummary{Lines: 10, Converted: 3, Renamed: 2, Missing: 1, Warnings: 1})
	failed, _ := w.StartRun("test", "a.fwdata")
	w.EndRun(failed, RunStatusFailed, RunSummary{Lines: 4, Converted: 1})
	w.StartRun("test", "a.fwdata")
	if err := w.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	stats, err := AggregateStats(dir, StatsOptions{})
	if err != nil {
		t.Fatalf("AggregateStats failed: %v", err)
	}

	if stats.Runs != 3 {
		t.Errorf("expected 3 runs, got %d", stats.Runs)
	}
	if stats.ByStatus[RunStatusCompleted] != 1 || stats.ByStatus[RunStatusFailed] != 1 || stats.ByStatus[RunStatusInProgress] != 1 {
		t.Errorf("unexpected status counts %v", stats.ByStatus)
	}
	if stats.Lines != 14 || stats.Converted != 4 || stats.Renamed != 2 || stats.Missing != 1 || stats.Warnings != 1 {
		t.Errorf("unexpected totals %+v", stats)
	}
	if stats.LogSegments != 1 {
		t.Errorf("expected 1 journal file, got %d", stats.LogSegments)
	}

	future := time.Now().Add(time.Hour)
	filtered, err := AggregateStats(dir, StatsOptions{Since: &future})
	if err != nil {
		t.Fatalf("AggregateStats failed: %v", err)
	}
	if filtered.Runs != 0 {
		t.Errorf("expected no runs after the cutoff, got %d", filtered.Runs)
	}
}

// Totals are the sum of what each finished run journaled.
func TestAggregateStatsSumsRuns(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 20

	properties := gopter.NewProperties(parameters)

	properties.Property("renamed total equals sum of run summaries", prop.ForAll(
		func(renamed []int) bool {
			dir := filepath.Join(t.TempDir(), "audit")
			w, err := NewAuditWriter(AuditConfig{LogDirectory: dir})
			if err != nil {
				return false
			}
			want := 0
			for _, n := range renamed {
				id, err := w.StartRun("test", "a.fwdata")
				if err != nil {
					w.Close()
					return false
				}
				w.EndRun(id, RunStatusCompleted, RunSummary{Renamed: n})
				want += n
			}
			if err := w.Close(); err != nil {
				return false
			}

			stats, err := AggregateStats(dir, StatsOptions{})
			if err != nil {
				return false
			}
			return stats.Runs == len(renamed) && stats.Renamed == want
		},
		gen.SliceOfN(5, gen.IntRange(0, 50)),
	))

	properties.TestingRun(t)
}
