package audit

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rogpeppe/go-internal/lockedfile"
)

// AuditWriter handles all write operations to the audit log.
// It implements append-only semantics with fail-fast behavior. The log file
// stays locked while the writer is open, so two runs never interleave.
type AuditWriter struct {
	mu         sync.Mutex
	file       *lockedfile.File
	writer     *bufio.Writer
	logPath    string
	currentRun *RunID
	config     AuditConfig
}

// NewAuditWriter creates a new AuditWriter with the given configuration.
// It creates the log directory if needed, retires the journal into a segment
// when the rotation limits say so, and opens the active journal for
// appending. Segments outside the retention limits are pruned before the
// journal is locked. A fresh journal starts with a LOG_INITIALIZED event,
// followed by ROTATION and RETENTION_PRUNE events for what was just done.
func NewAuditWriter(config AuditConfig) (*AuditWriter, error) {
	if err := os.MkdirAll(config.LogDirectory, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	logPath := filepath.Join(config.LogDirectory, LogFileName)

	segment, err := NewRotationManager(config).RotateIfNeeded(logPath)
	if err != nil {
		return nil, err
	}
	pruned, err := NewRetentionManager(config).Prune(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to apply audit retention: %w", err)
	}

	isNewLog := false
	if _, err := os.Stat(logPath); os.IsNotExist(err) {
		isNewLog = true
	}

	file, err := lockedfile.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit log: %w", err)
	}

	writer := &AuditWriter{
		file:    file,
		writer:  bufio.NewWriter(file),
		logPath: logPath,
		config:  config,
	}

	if isNewLog {
		if err := writer.writeLogInitialized(); err != nil {
			file.Close()
			return nil, fmt.Errorf("failed to write LOG_INITIALIZED event: %w", err)
		}
	}
	var events []AuditEvent
	if segment != "" {
		events = append(events, newRotationEvent(segment))
	}
	for _, seg := range pruned.Pruned {
		events = append(events, newRetentionPruneEvent(seg))
	}
	for _, event := range events {
		if err := writer.WriteEvent(event); err != nil {
			file.Close()
			return nil, fmt.Errorf("failed to write %s event: %w", event.EventType, err)
		}
	}

	return writer, nil
}

// GenerateRunID generates a new UUID v4 Run ID.
func GenerateRunID() (RunID, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("failed to generate UUID: %w", err)
	}
	return RunID(id.String()), nil
}

// StartRun initializes a new run and writes the RUN_START event.
func (w *AuditWriter) StartRun(appVersion string, fwdata string) (RunID, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	runID, err := GenerateRunID()
	if err != nil {
		return "", fmt.Errorf("failed to generate run ID: %w", err)
	}

	event := AuditEvent{
		Timestamp: time.Now().UTC(),
		RunID:     runID,
		EventType: EventRunStart,
		Status:    StatusSuccess,
		Metadata: map[string]string{
			"appVersion": appVersion,
			"fwdata":     fwdata,
		},
	}

	if err := w.writeEventLocked(event); err != nil {
		return "", fmt.Errorf("failed to write RUN_START event: %w", err)
	}

	w.currentRun = &runID
	return runID, nil
}

// WriteEvent writes a single audit event to the log.
// It fails fast if the write cannot be completed.
func (w *AuditWriter) WriteEvent(event AuditEvent) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.writeEventLocked(event)
}

// writeEventLocked writes an event while holding the lock.
// It marshals the event to JSON, appends a newline, and flushes to disk.
func (w *AuditWriter) writeEventLocked(event AuditEvent) error {
	data, err := MarshalJSONLine(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if _, err := w.writer.Write(data); err != nil {
		return fmt.Errorf("failed to write event: %w", err)
	}
	if _, err := w.writer.WriteString("\n"); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	if err := w.writer.Flush(); err != nil {
		return fmt.Errorf("failed to flush event: %w", err)
	}
	if err := w.file.Sync(); err != nil {
		return fmt.Errorf("failed to sync event to disk: %w", err)
	}

	return nil
}

// EndRun records the run completion status and summary.
func (w *AuditWriter) EndRun(runID RunID, status RunStatus, summary RunSummary) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	event := AuditEvent{
		Timestamp: time.Now().UTC(),
		RunID:     runID,
		EventType: EventRunEnd,
		Status:    runStatusToOperationStatus(status),
		Metadata: map[string]string{
			"status":    string(status),
			"lines":     strconv.Itoa(summary.Lines),
			"converted": strconv.Itoa(summary.Converted),
			"renamed":   strconv.Itoa(summary.Renamed),
			"missing":   strconv.Itoa(summary.Missing),
			"warnings":  strconv.Itoa(summary.Warnings),
		},
	}

	if err := w.writeEventLocked(event); err != nil {
		return fmt.Errorf("failed to write RUN_END event: %w", err)
	}

	w.currentRun = nil
	return nil
}

// runStatusToOperationStatus converts RunStatus to OperationStatus.
func runStatusToOperationStatus(status RunStatus) OperationStatus {
	switch status {
	case RunStatusFailed, RunStatusInterrupted:
		return StatusFailure
	default:
		return StatusSuccess
	}
}

// Close flushes any buffered data and closes the audit log file.
func (w *AuditWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.writer.Flush(); err != nil {
		return fmt.Errorf("failed to flush on close: %w", err)
	}

	if err := w.file.Close(); err != nil {
		return fmt.Errorf("failed to close audit log: %w", err)
	}

	return nil
}

// CurrentRunID returns the ID of the run in progress, or nil.
func (w *AuditWriter) CurrentRunID() *RunID {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.currentRun
}

// LogPath returns the path of the log file.
func (w *AuditWriter) LogPath() string {
	return w.logPath
}

// RecordRename records a successful rename of an audio file.
func (w *AuditWriter) RecordRename(source, dest string, identity *FileIdentity) error {
	return w.recordForCurrentRun(AuditEvent{
		EventType:       EventRename,
		Status:          StatusSuccess,
		SourcePath:      source,
		DestinationPath: dest,
		FileIdentity:    identity,
	})
}

// RecordRenameSkipped records a rename that was not performed.
func (w *AuditWriter) RecordRenameSkipped(source, dest string, reason ReasonCode) error {
	return w.recordForCurrentRun(AuditEvent{
		EventType:       EventRenameSkipped,
		Status:          StatusSkipped,
		SourcePath:      source,
		DestinationPath: dest,
		ReasonCode:      reason,
	})
}

// RecordCollision records a rename aborted because the destination exists.
func (w *AuditWriter) RecordCollision(source, dest string) error {
	return w.recordForCurrentRun(AuditEvent{
		EventType:       EventCollision,
		Status:          StatusFailure,
		SourcePath:      source,
		DestinationPath: dest,
		ReasonCode:      ReasonDestinationOccupied,
	})
}

// RecordLineRejected records a line that was passed through unchanged
// because its filename could not be sanitized.
func (w *AuditWriter) RecordLineRejected(lineNum int, errType, errMsg string) error {
	return w.recordForCurrentRun(AuditEvent{
		EventType:  EventLineRejected,
		Status:     StatusSkipped,
		ReasonCode: ReasonCode(errType),
		ErrorDetails: &ErrorDetails{
			ErrorType:    errType,
			ErrorMessage: errMsg,
			Operation:    "sanitize",
		},
		Metadata: map[string]string{
			"line": strconv.Itoa(lineNum),
		},
	})
}

// RecordMappingWritten records that the mapping file was written.
func (w *AuditWriter) RecordMappingWritten(path string, entries int) error {
	return w.recordForCurrentRun(AuditEvent{
		EventType:       EventMappingWritten,
		Status:          StatusSuccess,
		DestinationPath: path,
		Metadata: map[string]string{
			"entries": strconv.Itoa(entries),
		},
	})
}

func (w *AuditWriter) recordForCurrentRun(event AuditEvent) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.currentRun == nil {
		return fmt.Errorf("no run in progress")
	}
	event.Timestamp = time.Now().UTC()
	event.RunID = *w.currentRun

	return w.writeEventLocked(event)
}

// writeLogInitialized writes the LOG_INITIALIZED event for a new log.
func (w *AuditWriter) writeLogInitialized() error {
	return w.writeEventLocked(AuditEvent{
		Timestamp: time.Now().UTC(),
		EventType: EventLogInitialized,
		Status:    StatusSuccess,
		Metadata: map[string]string{
			"logPath": w.logPath,
		},
	})
}

// GetConfig returns the audit configuration.
func (w *AuditWriter) GetConfig() AuditConfig {
	return w.config
}
