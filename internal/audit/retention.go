package audit

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

const day = 24 * time.Hour

// RetentionManager prunes rotated journal segments that fall outside the
// configured retention limits. The active journal is never pruned.
type RetentionManager struct {
	config AuditConfig
	reader *AuditReader
	now    func() time.Time
}

// NewRetentionManager creates a RetentionManager for the given configuration.
func NewRetentionManager(config AuditConfig) *RetentionManager {
	return &RetentionManager{
		config: config,
		reader: NewAuditReader(config.LogDirectory),
		now:    time.Now,
	}
}

// SegmentRunInfo describes the runs recorded in one segment.
type SegmentRunInfo struct {
	Filename  string
	FilePath  string
	Size      int64
	ModTime   time.Time
	RunIDs    []RunID
	NewestRun time.Time // Start of the newest run in the segment
}

// PruneResult lists what a Prune call removed.
type PruneResult struct {
	Pruned          []SegmentRunInfo
	TotalBytesFreed int64
}

// PrunedRuns returns the IDs of every run in a pruned segment.
func (p *PruneResult) PrunedRuns() []RunID {
	var ids []RunID
	for _, seg := range p.Pruned {
		ids = append(ids, seg.RunIDs...)
	}
	return ids
}

// CheckRetention returns the segments that exceed a retention limit.
// A segment holding a run younger than MinRetentionDays is always kept.
func (rm *RetentionManager) CheckRetention() ([]SegmentRunInfo, error) {
	if rm.config.RetentionDays == 0 && rm.config.RetentionRuns == 0 {
		return nil, nil
	}

	segments, err := rm.segmentRunInfos()
	if err != nil {
		return nil, err
	}
	if len(segments) == 0 {
		return nil, nil
	}

	now := rm.now()
	minAge := time.Duration(rm.config.MinRetentionDays) * day

	expired := make(map[RunID]bool)
	if rm.config.RetentionRuns > 0 {
		runs, err := rm.reader.ListRuns()
		if err != nil {
			return nil, fmt.Errorf("failed to list runs: %w", err)
		}
		// ListRuns is oldest first.
		for i := 0; i < len(runs)-rm.config.RetentionRuns; i++ {
			expired[runs[i].RunID] = true
		}
	}

	var toPrune []SegmentRunInfo
	for _, seg := range segments {
		if !seg.NewestRun.IsZero() && now.Sub(seg.NewestRun) < minAge {
			continue
		}

		tooOld := rm.config.RetentionDays > 0 &&
			now.Sub(seg.ModTime) > time.Duration(rm.config.RetentionDays)*day

		allExpired := len(expired) > 0 && len(seg.RunIDs) > 0
		for _, id := range seg.RunIDs {
			if !expired[id] {
				allExpired = false
				break
			}
		}

		if tooOld || allExpired {
			toPrune = append(toPrune, seg)
		}
	}

	return toPrune, nil
}

// Prune removes the segments CheckRetention selects. When writer is not nil
// each removal is journaled as a RETENTION_PRUNE event before the file goes.
func (rm *RetentionManager) Prune(writer *AuditWriter) (*PruneResult, error) {
	toPrune, err := rm.CheckRetention()
	if err != nil {
		return nil, err
	}

	result := &PruneResult{}
	for _, seg := range toPrune {
		if writer != nil {
			if err := writer.WriteEvent(newRetentionPruneEvent(seg)); err != nil {
				return result, fmt.Errorf("failed to write RETENTION_PRUNE event: %w", err)
			}
		}

		if err := os.Remove(seg.FilePath); err != nil {
			return result, fmt.Errorf("failed to remove segment %s: %w", seg.Filename, err)
		}

		result.Pruned = append(result.Pruned, seg)
		result.TotalBytesFreed += seg.Size
	}

	return result, nil
}

func (rm *RetentionManager) segmentRunInfos() ([]SegmentRunInfo, error) {
	names, err := DiscoverSegments(rm.config.LogDirectory)
	if err != nil {
		return nil, err
	}

	infos := make([]SegmentRunInfo, 0, len(names))
	for _, name := range names {
		path := filepath.Join(rm.config.LogDirectory, name)
		stat, err := os.Stat(path)
		if err != nil {
			continue
		}

		info := SegmentRunInfo{
			Filename: name,
			FilePath: path,
			Size:     stat.Size(),
			ModTime:  stat.ModTime(),
		}

		// An unreadable segment is still subject to the age limit.
		events, err := readEventsFromFile(path)
		if err == nil {
			seen := make(map[RunID]bool)
			for _, event := range events {
				if event.RunID == "" {
					continue
				}
				if !seen[event.RunID] {
					seen[event.RunID] = true
					info.RunIDs = append(info.RunIDs, event.RunID)
				}
				if event.EventType == EventRunStart && event.Timestamp.After(info.NewestRun) {
					info.NewestRun = event.Timestamp
				}
			}
		}

		infos = append(infos, info)
	}

	return infos, nil
}

func newRetentionPruneEvent(seg SegmentRunInfo) AuditEvent {
	return AuditEvent{
		Timestamp: time.Now().UTC(),
		EventType: EventRetentionPrune,
		Status:    StatusSuccess,
		Metadata: map[string]string{
			"segment":  seg.Filename,
			"runCount": strconv.Itoa(len(seg.RunIDs)),
		},
	}
}
