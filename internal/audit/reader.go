package audit

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
)

// ErrNoRuns is returned when the journal holds no runs.
var ErrNoRuns = errors.New("no runs found")

// AuditReader reads and parses audit events from the journal.
type AuditReader struct {
	logDir string
}

// NewAuditReader creates a new AuditReader for the given log directory.
func NewAuditReader(logDir string) *AuditReader {
	return &AuditReader{
		logDir: logDir,
	}
}

// ListRuns returns all runs with summary information, oldest first.
func (r *AuditReader) ListRuns() ([]RunInfo, error) {
	events, err := r.readAllEvents()
	if err != nil {
		return nil, fmt.Errorf("failed to read events: %w", err)
	}

	return r.extractRunInfos(events), nil
}

// GetRun returns all events for a specific run.
func (r *AuditReader) GetRun(runID RunID) ([]AuditEvent, error) {
	events, err := r.readAllEvents()
	if err != nil {
		return nil, fmt.Errorf("failed to read events: %w", err)
	}

	var runEvents []AuditEvent
	for _, event := range events {
		if event.RunID == runID {
			runEvents = append(runEvents, event)
		}
	}

	if len(runEvents) == 0 {
		return nil, fmt.Errorf("run not found: %s", runID)
	}

	return runEvents, nil
}

// GetLatestRun returns the most recent run by start timestamp.
func (r *AuditReader) GetLatestRun() (*RunInfo, error) {
	runs, err := r.ListRuns()
	if err != nil {
		return nil, err
	}

	if len(runs) == 0 {
		return nil, ErrNoRuns
	}

	return &runs[len(runs)-1], nil
}

// Renames returns the successful RENAME events of a run, in journal order.
func (r *AuditReader) Renames(runID RunID) ([]AuditEvent, error) {
	events, err := r.GetRun(runID)
	if err != nil {
		return nil, err
	}

	var renames []AuditEvent
	for _, event := range events {
		if event.EventType == EventRename {
			renames = append(renames, event)
		}
	}
	return renames, nil
}

// GetLogPath returns the path of the journal file.
func (r *AuditReader) GetLogPath() string {
	return filepath.Join(r.logDir, LogFileName)
}

// readAllEvents reads every event from the rotated segments and the active
// journal, oldest first. A missing journal has no events.
func (r *AuditReader) readAllEvents() ([]AuditEvent, error) {
	files, err := GetAllLogFiles(r.logDir)
	if err != nil {
		return nil, err
	}

	events := []AuditEvent{}
	for _, path := range files {
		fileEvents, err := readEventsFromFile(path)
		if err != nil {
			return nil, err
		}
		events = append(events, fileEvents...)
	}
	return events, nil
}

// readEventsFromFile parses one JSONL journal file.
func readEventsFromFile(path string) ([]AuditEvent, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	defer file.Close()

	var events []AuditEvent
	scanner := bufio.NewScanner(file)

	// Increase buffer size for potentially long lines
	const maxScanTokenSize = 1024 * 1024 // 1MB
	buf := make([]byte, maxScanTokenSize)
	scanner.Buffer(buf, maxScanTokenSize)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		event, err := UnmarshalJSONLine(line)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s line %d: %w", filepath.Base(path), lineNum, err)
		}
		events = append(events, *event)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading log file: %w", err)
	}

	return events, nil
}

// extractRunInfos groups events by run, skipping system events.
func (r *AuditReader) extractRunInfos(events []AuditEvent) []RunInfo {
	runEvents := make(map[RunID][]AuditEvent)
	for _, event := range events {
		if event.RunID == "" {
			continue
		}
		runEvents[event.RunID] = append(runEvents[event.RunID], event)
	}

	var runs []RunInfo
	for runID, events := range runEvents {
		runs = append(runs, r.buildRunInfo(runID, events))
	}

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].StartTime.Before(runs[j].StartTime)
	})

	return runs
}

// buildRunInfo constructs a RunInfo from a list of events for a single run.
func (r *AuditReader) buildRunInfo(runID RunID, events []AuditEvent) RunInfo {
	info := RunInfo{
		RunID:  runID,
		Status: RunStatusInProgress,
	}

	for _, event := range events {
		switch event.EventType {
		case EventRunStart:
			info.StartTime = event.Timestamp
			if event.Metadata != nil {
				info.AppVersion = event.Metadata["appVersion"]
				info.Fwdata = event.Metadata["fwdata"]
			}

		case EventRunEnd:
			endTime := event.Timestamp
			info.EndTime = &endTime
			if event.Metadata != nil {
				if status, ok := event.Metadata["status"]; ok {
					info.Status = RunStatus(status)
				}
				info.Summary = parseSummaryFromMetadata(event.Metadata)
			}
		}
	}

	return info
}

// parseSummaryFromMetadata parses RunSummary from RUN_END metadata.
func parseSummaryFromMetadata(metadata map[string]string) RunSummary {
	summary := RunSummary{}

	if v, ok := metadata["lines"]; ok {
		summary.Lines, _ = strconv.Atoi(v)
	}
	if v, ok := metadata["converted"]; ok {
		summary.Converted, _ = strconv.Atoi(v)
	}
	if v, ok := metadata["renamed"]; ok {
		summary.Renamed, _ = strconv.Atoi(v)
	}
	if v, ok := metadata["missing"]; ok {
		summary.Missing, _ = strconv.Atoi(v)
	}
	if v, ok := metadata["warnings"]; ok {
		summary.Warnings, _ = strconv.Atoi(v)
	}

	return summary
}
