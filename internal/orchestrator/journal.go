package orchestrator

import (
	"errors"
	"fmt"
	"path/filepath"

	"fwsanitize/internal/audit"
	"fwsanitize/internal/sanitizer"
	"fwsanitize/internal/workspace"
)

// journalEntry writes one event to the audit journal.
type journalEntry func(w *audit.AuditWriter) error

// record writes entry when auditing is on.
func (r *run) record(entry journalEntry) error {
	if r.journal == nil {
		return nil
	}
	if err := entry(r.journal); err != nil {
		return fmt.Errorf("failed to write audit event: %w", err)
	}
	return nil
}

func (r *run) journalRename(result *workspace.RenameResult) journalEntry {
	return func(w *audit.AuditWriter) error {
		// A rename is journaled even when the file cannot be hashed.
		identity, _ := audit.CaptureIdentity(result.DestinationPath)
		return w.RecordRename(result.SourcePath, result.DestinationPath, identity)
	}
}

func (r *run) journalRenameSkipped(oldName, newName string, reason audit.ReasonCode) journalEntry {
	dir := r.cfg.OutputAudioDir()
	return func(w *audit.AuditWriter) error {
		return w.RecordRenameSkipped(filepath.Join(dir, oldName), filepath.Join(dir, newName), reason)
	}
}

func (r *run) journalCollision(oldName, newName string) journalEntry {
	dir := r.cfg.OutputAudioDir()
	return func(w *audit.AuditWriter) error {
		return w.RecordCollision(filepath.Join(dir, oldName), filepath.Join(dir, newName))
	}
}

func (r *run) journalLineRejected(cause error) journalEntry {
	errType := "UNKNOWN"
	var se *sanitizer.Error
	if errors.As(cause, &se) {
		errType = string(se.Type)
	}
	lineNum := r.lineNum
	return func(w *audit.AuditWriter) error {
		return w.RecordLineRejected(lineNum, errType, cause.Error())
	}
}

func (r *run) journalMappingWritten(path string) journalEntry {
	entries := r.sanitizer.MappingCount()
	return func(w *audit.AuditWriter) error {
		return w.RecordMappingWritten(path, entries)
	}
}
