package audit

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestAuditReader_MissingJournal(t *testing.T) {
	r := NewAuditReader(filepath.Join(t.TempDir(), "nothing"))

	runs, err := r.ListRuns()
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected no runs, got %d", len(runs))
	}

	if _, err := r.GetLatestRun(); !errors.Is(err, ErrNoRuns) {
		t.Errorf("expected ErrNoRuns, got %v", err)
	}
}

func TestAuditReader_LatestRunAndRenames(t *testing.T) {
	w, dir := newTestWriter(t)

	first, err := w.StartRun("1.0.0", "a.fwdata")
	if err != nil {
		t.Fatalf("StartRun failed: %v", err)
	}
	w.RecordRename("/out/一.mp3", "/out/yi.mp3", nil)
	w.EndRun(first, RunStatusCompleted, RunSummary{Converted: 1, Renamed: 1})

	time.Sleep(2 * time.Millisecond)

	second, err := w.StartRun("1.0.0", "b.fwdata")
	if err != nil {
		t.Fatalf("StartRun failed: %v", err)
	}
	w.RecordRename("/out/二.mp3", "/out/er.mp3", nil)
	w.RecordRename("/out/三.mp3", "/out/san.mp3", nil)
	w.RecordRenameSkipped("/out/四.mp3", "/out/si.mp3", ReasonSourceMissing)
	w.EndRun(second, RunStatusCompleted, RunSummary{Lines: 4, Converted: 3, Renamed: 2, Missing: 1})
	w.Close()

	r := NewAuditReader(dir)

	runs, err := r.ListRuns()
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}

	latest, err := r.GetLatestRun()
	if err != nil {
		t.Fatalf("GetLatestRun failed: %v", err)
	}
	if latest.RunID != second {
		t.Errorf("expected latest run %s, got %s", second, latest.RunID)
	}
	if latest.Fwdata != "b.fwdata" {
		t.Errorf("expected fwdata b.fwdata, got %q", latest.Fwdata)
	}
	if latest.Status != RunStatusCompleted || latest.EndTime == nil {
		t.Errorf("expected completed run with end time, got %+v", latest)
	}
	want := RunSummary{Lines: 4, Converted: 3, Renamed: 2, Missing: 1}
	if latest.Summary != want {
		t.Errorf("expected summary %+v, got %+v", want, latest.Summary)
	}

	renames, err := r.Renames(second)
	if err != nil {
		t.Fatalf("Renames failed: %v", err)
	}
	if len(renames) != 2 {
		t.Fatalf("expected 2 renames, got %d", len(renames))
	}
	if renames[0].DestinationPath != "/out/er.mp3" || renames[1].DestinationPath != "/out/san.mp3" {
		t.Errorf("unexpected renames: %+v", renames)
	}
}

func TestAuditReader_UnfinishedRunIsInProgress(t *testing.T) {
	w, dir := newTestWriter(t)
	runID, err := w.StartRun("1.0.0", "a.fwdata")
	if err != nil {
		t.Fatalf("StartRun failed: %v", err)
	}
	w.Close()

	latest, err := NewAuditReader(dir).GetLatestRun()
	if err != nil {
		t.Fatalf("GetLatestRun failed: %v", err)
	}
	if latest.RunID != runID || latest.Status != RunStatusInProgress {
		t.Errorf("expected in-progress run %s, got %+v", runID, latest)
	}
}

func TestAuditReader_CorruptLine(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, LogFileName), []byte("{not json\n"), 0644); err != nil {
		t.Fatalf("failed to write log: %v", err)
	}

	if _, err := NewAuditReader(dir).ListRuns(); err == nil {
		t.Error("expected error for corrupt journal")
	}
}

func TestCaptureIdentity(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.mp3")
	if err := os.WriteFile(path, []byte("abc"), 0644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	id, err := CaptureIdentity(path)
	if err != nil {
		t.Fatalf("CaptureIdentity failed: %v", err)
	}
	const sha256abc = "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"
	if id.ContentHash != sha256abc {
		t.Errorf("expected hash %s, got %s", sha256abc, id.ContentHash)
	}
	if id.Size != 3 {
		t.Errorf("expected size 3, got %d", id.Size)
	}

	if _, err := CaptureIdentity(filepath.Dir(path)); err == nil {
		t.Error("expected error for directory")
	}
}
