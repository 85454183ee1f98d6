// Package watcher re-runs a conversion whenever the watched fwdata file
// changes on disk.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// WatchConfig contains watcher settings.
type WatchConfig struct {
	DebounceMilliseconds        int      `json:"debounceMilliseconds"`        // quiet period after the last event (default: 500)
	StableThresholdMilliseconds int      `json:"stableThresholdMilliseconds"` // unchanged size/mtime before running (default: 300)
	IgnorePatterns              []string `json:"ignorePatterns,omitempty"`    // glob patterns for temporary files
}

// DefaultWatchConfig returns a WatchConfig with sensible defaults.
func DefaultWatchConfig() *WatchConfig {
	return &WatchConfig{
		DebounceMilliseconds:        500,
		StableThresholdMilliseconds: 300,
		IgnorePatterns:              DefaultIgnorePatterns(),
	}
}

// Debounce returns the debounce delay as a duration.
func (c *WatchConfig) Debounce() time.Duration {
	return time.Duration(c.DebounceMilliseconds) * time.Millisecond
}

// StableThreshold returns the stability threshold as a duration.
func (c *WatchConfig) StableThreshold() time.Duration {
	return time.Duration(c.StableThresholdMilliseconds) * time.Millisecond
}

// WatchSummary contains stats from the watch session.
type WatchSummary struct {
	Runs     int // handler invocations that succeeded
	Failures int // handler invocations that returned an error
	Ignored  int // events for temporary files in the watched directory
	Duration time.Duration
}

// Handler is invoked with the watched path once it has settled.
type Handler func(ctx context.Context, path string) error

// Watcher monitors a single file through its parent directory, so editors
// that save by writing a temporary file and renaming it are still seen.
type Watcher struct {
	config       *WatchConfig
	handler      Handler
	errorHandler func(err error)
	fsWatcher    *fsnotify.Watcher
	fileFilter   *FileFilter
	debouncer    *Debouncer
	stability    *StabilityChecker
	target       string
	ctx          context.Context
	cancel       context.CancelFunc
	done         chan struct{}
	wg           sync.WaitGroup
	inflight     sync.WaitGroup
	runMu        sync.Mutex
	startTime    time.Time

	mu       sync.Mutex
	stopped  bool
	runs     int
	failures int
	ignored  int
}

// New creates a new Watcher. A nil config selects DefaultWatchConfig.
func New(config *WatchConfig, handler Handler) *Watcher {
	if config == nil {
		config = DefaultWatchConfig()
	}
	w := &Watcher{
		config:     config,
		handler:    handler,
		fileFilter: NewFileFilter(config.IgnorePatterns),
		stability:  NewStabilityChecker(config.StableThreshold()),
		done:       make(chan struct{}),
	}
	w.debouncer = NewDebouncer(config.Debounce(), w.settled)
	return w
}

// OnError sets a callback for fsnotify errors and handler failures.
// It must be called before Start.
func (w *Watcher) OnError(fn func(err error)) {
	w.errorHandler = fn
}

// Start begins watching the file at path. The file's directory must exist.
// The watcher runs until Stop is called.
func (w *Watcher) Start(path string) error {
	target, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	w.target = filepath.Clean(target)

	w.fsWatcher, err = fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := w.fsWatcher.Add(filepath.Dir(w.target)); err != nil {
		w.fsWatcher.Close()
		w.fsWatcher = nil
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(w.target), err)
	}

	w.ctx, w.cancel = context.WithCancel(context.Background())
	w.startTime = time.Now()
	w.done = make(chan struct{})

	w.wg.Add(1)
	go w.processEvents()

	return nil
}

// Stop shuts the watcher down, waits for a running handler to return and
// reports the session summary.
func (w *Watcher) Stop() *WatchSummary {
	w.mu.Lock()
	alreadyStopped := w.stopped
	w.stopped = true
	w.mu.Unlock()

	if !alreadyStopped && w.fsWatcher != nil {
		close(w.done)
		w.debouncer.Stop()
		w.cancel()
		w.wg.Wait()
		w.inflight.Wait()
		w.fsWatcher.Close()
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	return &WatchSummary{
		Runs:     w.runs,
		Failures: w.failures,
		Ignored:  w.ignored,
		Duration: time.Since(w.startTime),
	}
}

func (w *Watcher) processEvents() {
	defer w.wg.Done()

	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			w.reportError(err)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return
	}

	if filepath.Clean(event.Name) != w.target {
		if w.fileFilter.ShouldIgnore(event.Name) {
			w.mu.Lock()
			w.ignored++
			w.mu.Unlock()
		}
		return
	}

	w.debouncer.Add(w.target)
}

// settled runs once the debounce period has passed for the target.
func (w *Watcher) settled(path string) {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return
	}
	w.inflight.Add(1)
	w.mu.Unlock()
	defer w.inflight.Done()

	// Runs are serialized; a change during a run schedules another one.
	w.runMu.Lock()
	defer w.runMu.Unlock()

	if w.config.StableThresholdMilliseconds > 0 {
		if err := w.stability.WaitForStable(w.ctx, path); err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			w.recordResult(fmt.Errorf("waiting for %s: %w", filepath.Base(path), err))
			return
		}
	}

	if _, err := os.Stat(path); err != nil {
		w.recordResult(fmt.Errorf("waiting for %s: %w", filepath.Base(path), ErrFileNotFound))
		return
	}

	if w.handler == nil {
		w.recordResult(nil)
		return
	}
	w.recordResult(w.handler(w.ctx, path))
}

func (w *Watcher) recordResult(err error) {
	w.mu.Lock()
	if err != nil {
		w.failures++
	} else {
		w.runs++
	}
	w.mu.Unlock()

	if err != nil {
		w.reportError(err)
	}
}

func (w *Watcher) reportError(err error) {
	if w.errorHandler != nil {
		w.errorHandler(err)
	}
}

// Config returns the watcher configuration.
func (w *Watcher) Config() *WatchConfig {
	return w.config
}

// Target returns the absolute path of the watched file, once started.
func (w *Watcher) Target() string {
	return w.target
}

// IsRunning returns true between Start and Stop.
func (w *Watcher) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.fsWatcher != nil && !w.stopped
}
