package watcher

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNewStabilityChecker(t *testing.T) {
	s := NewStabilityChecker(400 * time.Millisecond)

	if s.Threshold() != 400*time.Millisecond {
		t.Errorf("unexpected threshold %v", s.Threshold())
	}
	if s.Interval() != 100*time.Millisecond {
		t.Errorf("expected interval threshold/4, got %v", s.Interval())
	}
	if s.Timeout() != 30*time.Second {
		t.Errorf("expected 30s timeout, got %v", s.Timeout())
	}

	if small := NewStabilityChecker(10 * time.Millisecond); small.Interval() != 20*time.Millisecond {
		t.Errorf("expected minimum interval 20ms, got %v", small.Interval())
	}
}

func TestStabilityChecker_StableFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.fwdata")
	if err := os.WriteFile(path, []byte("content"), 0644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	s := NewStabilityCheckerWithOptions(60*time.Millisecond, time.Second, 15*time.Millisecond)
	if err := s.WaitForStable(context.Background(), path); err != nil {
		t.Errorf("expected stable file, got %v", err)
	}
}

func TestStabilityChecker_MissingFile(t *testing.T) {
	s := NewStabilityChecker(50 * time.Millisecond)
	err := s.WaitForStable(context.Background(), filepath.Join(t.TempDir(), "missing"))
	if !errors.Is(err, ErrFileNotFound) {
		t.Errorf("expected ErrFileNotFound, got %v", err)
	}
}

func TestStabilityChecker_FileBeingWritten(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.fwdata")
	if err := os.WriteFile(path, []byte("a"), 0644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	stopWriting := make(chan struct{})
	go func() {
		f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return
		}
		defer f.Close()
		for i := 0; i < 6; i++ {
			select {
			case <-stopWriting:
				return
			case <-time.After(20 * time.Millisecond):
				f.Write([]byte("more"))
			}
		}
	}()
	defer close(stopWriting)

	start := time.Now()
	s := NewStabilityCheckerWithOptions(80*time.Millisecond, 2*time.Second, 10*time.Millisecond)
	if err := s.WaitForStable(context.Background(), path); err != nil {
		t.Fatalf("expected file to stabilize, got %v", err)
	}
	if elapsed := time.Since(start); elapsed < 120*time.Millisecond {
		t.Errorf("returned after %v, before writes finished", elapsed)
	}
}

func TestStabilityChecker_Timeout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.fwdata")
	if err := os.WriteFile(path, []byte("a"), 0644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	s := NewStabilityCheckerWithOptions(time.Second, 60*time.Millisecond, 10*time.Millisecond)
	if err := s.WaitForStable(context.Background(), path); !errors.Is(err, ErrFileUnstable) {
		t.Errorf("expected ErrFileUnstable, got %v", err)
	}
}

func TestStabilityChecker_Cancelled(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.fwdata")
	if err := os.WriteFile(path, []byte("a"), 0644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(30 * time.Millisecond)
		cancel()
	}()

	s := NewStabilityCheckerWithOptions(time.Second, 5*time.Second, 10*time.Millisecond)
	if err := s.WaitForStable(ctx, path); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestStabilityChecker_FileDeletedDuringWait(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.fwdata")
	if err := os.WriteFile(path, []byte("a"), 0644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	go func() {
		time.Sleep(30 * time.Millisecond)
		os.Remove(path)
	}()

	s := NewStabilityCheckerWithOptions(time.Second, 5*time.Second, 10*time.Millisecond)
	if err := s.WaitForStable(context.Background(), path); !errors.Is(err, ErrFileNotFound) {
		t.Errorf("expected ErrFileNotFound, got %v", err)
	}
}
