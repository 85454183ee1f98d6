// Package audit provides an append-only journal of conversion runs and the
// audio file renames they perform.
package audit

import "time"

// RunID is a unique identifier for each program execution.
// It uses UUID v4 format: "xxxxxxxx-xxxx-4xxx-yxxx-xxxxxxxxxxxx"
type RunID string

// EventType represents the type of audit event.
type EventType string

const (
	// Run lifecycle events
	EventRunStart EventType = "RUN_START"
	EventRunEnd   EventType = "RUN_END"

	// File operation events
	EventRename         EventType = "RENAME"
	EventRenameSkipped  EventType = "RENAME_SKIPPED"
	EventCollision      EventType = "COLLISION"
	EventLineRejected   EventType = "LINE_REJECTED"
	EventMappingWritten EventType = "MAPPING_WRITTEN"

	// System events
	EventLogInitialized EventType = "LOG_INITIALIZED"
	EventRotation       EventType = "ROTATION"
	EventRetentionPrune EventType = "RETENTION_PRUNE"
)

// OperationStatus represents the outcome of an operation.
type OperationStatus string

const (
	StatusSuccess OperationStatus = "SUCCESS"
	StatusFailure OperationStatus = "FAILURE"
	StatusSkipped OperationStatus = "SKIPPED"
)

// ReasonCode provides detailed reason for a skipped or failed rename.
type ReasonCode string

const (
	ReasonSourceMissing       ReasonCode = "SOURCE_MISSING"
	ReasonDestinationOccupied ReasonCode = "DESTINATION_OCCUPIED"
	ReasonInvalidInput        ReasonCode = "INVALID_INPUT"
)

// RunStatus represents the status of a run.
type RunStatus string

const (
	RunStatusInProgress  RunStatus = "IN_PROGRESS"
	RunStatusCompleted   RunStatus = "COMPLETED"
	RunStatusFailed      RunStatus = "FAILED"
	RunStatusInterrupted RunStatus = "INTERRUPTED"
)

// FileIdentity captures the content of a renamed audio file.
type FileIdentity struct {
	ContentHash string    `json:"contentHash"` // SHA-256 hex string
	Size        int64     `json:"size"`        // File size in bytes
	ModTime     time.Time `json:"modTime"`     // File modification timestamp
}

// ErrorDetails contains detailed information about an error.
type ErrorDetails struct {
	ErrorType    string `json:"errorType"`
	ErrorMessage string `json:"errorMessage"`
	Operation    string `json:"operation"`
}

// AuditEvent represents a single audit record.
type AuditEvent struct {
	Timestamp       time.Time         `json:"timestamp"`                 // ISO 8601 format
	RunID           RunID             `json:"runId"`                     // Run identifier
	EventType       EventType         `json:"eventType"`                 // Type of event
	Status          OperationStatus   `json:"status"`                    // Operation outcome
	SourcePath      string            `json:"sourcePath,omitempty"`      // Original file path
	DestinationPath string            `json:"destinationPath,omitempty"` // Renamed file path
	ReasonCode      ReasonCode        `json:"reasonCode,omitempty"`      // Reason for skip/failure
	FileIdentity    *FileIdentity     `json:"fileIdentity,omitempty"`    // Content of renamed file
	ErrorDetails    *ErrorDetails     `json:"errorDetails,omitempty"`    // Error information
	Metadata        map[string]string `json:"metadata,omitempty"`        // Additional metadata
}

// RunSummary contains statistics for a completed run.
type RunSummary struct {
	Lines     int `json:"lines"`
	Converted int `json:"converted"`
	Renamed   int `json:"renamed"`
	Missing   int `json:"missing"`
	Warnings  int `json:"warnings"`
}

// RunInfo contains metadata and summary for a run.
type RunInfo struct {
	RunID      RunID      `json:"runId"`
	StartTime  time.Time  `json:"startTime"`
	EndTime    *time.Time `json:"endTime,omitempty"`
	Status     RunStatus  `json:"status"`
	AppVersion string     `json:"appVersion"`
	Fwdata     string     `json:"fwdata"`
	Summary    RunSummary `json:"summary"`
}

// AuditConfig holds configuration for the audit journal.
type AuditConfig struct {
	Disabled         bool   `json:"disabled,omitempty"`
	LogDirectory     string `json:"logDirectory"`
	RotationSize     int64  `json:"rotationSizeBytes,omitempty"` // Rotate when the journal reaches this size
	RotationPeriod   string `json:"rotationPeriod,omitempty"`    // "daily", "weekly", or ""
	RetentionDays    int    `json:"retentionDays,omitempty"`     // 0 = unlimited
	RetentionRuns    int    `json:"retentionRuns,omitempty"`     // 0 = unlimited
	MinRetentionDays int    `json:"minRetentionDays,omitempty"`  // Runs younger than this are never pruned
}

// DefaultAuditConfig returns an AuditConfig with sensible defaults.
func DefaultAuditConfig() AuditConfig {
	return AuditConfig{
		LogDirectory:     ".fwsanitize",
		RotationSize:     5 * 1024 * 1024,
		RetentionDays:    90,
		MinRetentionDays: 7,
	}
}

const (
	// LogFileName is the active journal file inside the log directory.
	LogFileName = "fwsanitize-audit.jsonl"

	segmentPrefix = "fwsanitize-audit-"
	segmentSuffix = ".jsonl"
)
