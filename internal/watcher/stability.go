package watcher

import (
	"context"
	"errors"
	"os"
	"time"
)

// ErrFileNotFound is returned when the watched file disappears.
var ErrFileNotFound = errors.New("file not found")

// ErrFileUnstable is returned when the file keeps changing past the timeout.
var ErrFileUnstable = errors.New("file did not stabilize within timeout")

// fileState is the part of a file's metadata that changes while it is written.
type fileState struct {
	size    int64
	modTime time.Time
}

// StabilityChecker waits until a file has stopped changing.
// The fwdata file is often rewritten in place with the same size, so both
// size and modification time are compared.
type StabilityChecker struct {
	threshold time.Duration // how long the file must stay unchanged
	timeout   time.Duration // give up after this long
	interval  time.Duration // polling interval
}

// NewStabilityChecker creates a StabilityChecker with a 30 second timeout and
// a polling interval of threshold/4 (at least 20ms).
func NewStabilityChecker(threshold time.Duration) *StabilityChecker {
	interval := threshold / 4
	if interval < 20*time.Millisecond {
		interval = 20 * time.Millisecond
	}
	return NewStabilityCheckerWithOptions(threshold, 30*time.Second, interval)
}

// NewStabilityCheckerWithOptions creates a StabilityChecker with explicit
// timeout and polling interval.
func NewStabilityCheckerWithOptions(threshold, timeout, interval time.Duration) *StabilityChecker {
	return &StabilityChecker{
		threshold: threshold,
		timeout:   timeout,
		interval:  interval,
	}
}

// WaitForStable blocks until the file at path has not changed for the
// threshold duration. It returns ErrFileNotFound if the file is missing or
// removed while waiting, ErrFileUnstable on timeout, and ctx.Err() if ctx is
// cancelled.
func (s *StabilityChecker) WaitForStable(ctx context.Context, path string) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	last, err := s.stat(path)
	if err != nil {
		return err
	}
	lastChange := time.Now()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return ErrFileUnstable
			}
			return ctx.Err()
		case <-ticker.C:
			current, err := s.stat(path)
			if err != nil {
				return err
			}

			if current != last {
				last = current
				lastChange = time.Now()
			} else if time.Since(lastChange) >= s.threshold {
				return nil
			}
		}
	}
}

func (s *StabilityChecker) stat(path string) (fileState, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fileState{}, ErrFileNotFound
		}
		return fileState{}, err
	}
	return fileState{size: info.Size(), modTime: info.ModTime()}, nil
}

// Threshold returns the stability threshold.
func (s *StabilityChecker) Threshold() time.Duration {
	return s.threshold
}

// Timeout returns the maximum wait.
func (s *StabilityChecker) Timeout() time.Duration {
	return s.timeout
}

// Interval returns the polling interval.
func (s *StabilityChecker) Interval() time.Duration {
	return s.interval
}
