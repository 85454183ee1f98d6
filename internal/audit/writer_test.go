package audit

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/prop"
)

var uuidV4Pattern = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-4[0-9a-f]{3}-[89ab][0-9a-f]{3}-[0-9a-f]{12}$`)

func newTestWriter(t *testing.T) (*AuditWriter, string) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "audit")
	w, err := NewAuditWriter(AuditConfig{LogDirectory: dir})
	if err != nil {
		t.Fatalf("NewAuditWriter failed: %v", err)
	}
	return w, dir
}

func TestGenerateRunIDFormat(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	properties.Property("run IDs are UUID v4 strings", prop.ForAll(
		func() bool {
			id, err := GenerateRunID()
			if err != nil {
				t.Logf("GenerateRunID failed: %v", err)
				return false
			}
			return uuidV4Pattern.MatchString(string(id))
		},
	))

	properties.TestingRun(t)
}

func TestNewAuditWriter_WritesLogInitializedOnce(t *testing.T) {
	w, dir := newTestWriter(t)
	if err := w.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	w2, err := NewAuditWriter(AuditConfig{LogDirectory: dir})
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	if err := w2.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, LogFileName))
	if err != nil {
		t.Fatalf("failed to read log: %v", err)
	}
	if n := strings.Count(string(data), string(EventLogInitialized)); n != 1 {
		t.Errorf("expected 1 LOG_INITIALIZED event, got %d", n)
	}
}

func TestAuditWriter_RunLifecycle(t *testing.T) {
	w, dir := newTestWriter(t)

	runID, err := w.StartRun("1.0.0", "test.fwdata")
	if err != nil {
		t.Fatalf("StartRun failed: %v", err)
	}
	if w.CurrentRunID() == nil || *w.CurrentRunID() != runID {
		t.Fatalf("expected current run %s", runID)
	}

	if err := w.RecordRename("/out/龙.mp3", "/out/long.mp3", &FileIdentity{ContentHash: "abc", Size: 3}); err != nil {
		t.Fatalf("RecordRename failed: %v", err)
	}
	if err := w.RecordRenameSkipped("/out/gone.mp3", "/out/gone2.mp3", ReasonSourceMissing); err != nil {
		t.Fatalf("RecordRenameSkipped failed: %v", err)
	}
	if err := w.RecordMappingWritten("mapping.json", 1); err != nil {
		t.Fatalf("RecordMappingWritten failed: %v", err)
	}
	if err := w.EndRun(runID, RunStatusCompleted, RunSummary{Lines: 10, Converted: 1, Renamed: 1, Missing: 1}); err != nil {
		t.Fatalf("EndRun failed: %v", err)
	}
	if w.CurrentRunID() != nil {
		t.Error("expected no current run after EndRun")
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	events, err := NewAuditReader(dir).GetRun(runID)
	if err != nil {
		t.Fatalf("GetRun failed: %v", err)
	}

	expected := []EventType{EventRunStart, EventRename, EventRenameSkipped, EventMappingWritten, EventRunEnd}
	if len(events) != len(expected) {
		t.Fatalf("expected %d events, got %d", len(expected), len(events))
	}
	for i, e := range events {
		if e.EventType != expected[i] {
			t.Errorf("event %d: expected %s, got %s", i, expected[i], e.EventType)
		}
		if e.RunID != runID {
			t.Errorf("event %d: expected run %s, got %s", i, runID, e.RunID)
		}
	}

	if events[1].SourcePath != "/out/龙.mp3" || events[1].DestinationPath != "/out/long.mp3" {
		t.Errorf("unexpected rename paths: %+v", events[1])
	}
	if events[1].FileIdentity == nil || events[1].FileIdentity.ContentHash != "abc" {
		t.Errorf("expected file identity to survive, got %+v", events[1].FileIdentity)
	}
	if events[2].ReasonCode != ReasonSourceMissing {
		t.Errorf("expected SOURCE_MISSING, got %s", events[2].ReasonCode)
	}
}

func TestAuditWriter_RecordWithoutRunFails(t *testing.T) {
	w, _ := newTestWriter(t)
	defer w.Close()

	if err := w.RecordRename("a", "b", nil); err == nil {
		t.Error("expected error when recording outside a run")
	}
	if err := w.RecordCollision("a", "b"); err == nil {
		t.Error("expected error when recording outside a run")
	}
}

func TestAuditWriter_FailedRunStatus(t *testing.T) {
	w, dir := newTestWriter(t)

	runID, err := w.StartRun("1.0.0", "test.fwdata")
	if err != nil {
		t.Fatalf("StartRun failed: %v", err)
	}
	if err := w.RecordCollision("/out/a.mp3", "/out/b.mp3"); err != nil {
		t.Fatalf("RecordCollision failed: %v", err)
	}
	if err := w.EndRun(runID, RunStatusFailed, RunSummary{}); err != nil {
		t.Fatalf("EndRun failed: %v", err)
	}
	w.Close()

	events, err := NewAuditReader(dir).GetRun(runID)
	if err != nil {
		t.Fatalf("GetRun failed: %v", err)
	}
	last := events[len(events)-1]
	if last.Status != StatusFailure {
		t.Errorf("expected FAILURE status on RUN_END, got %s", last.Status)
	}
	if events[1].ReasonCode != ReasonDestinationOccupied {
		t.Errorf("expected DESTINATION_OCCUPIED, got %s", events[1].ReasonCode)
	}
}
