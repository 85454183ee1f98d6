package watcher

import (
	"sync"
	"time"
)

// Debouncer delays a callback until events for the same key settle.
// Each Add for a pending key restarts its timer, so a burst of writes to the
// fwdata file produces a single callback.
type Debouncer struct {
	delay    time.Duration
	pending  map[string]*time.Timer
	callback func(key string)
	stopped  bool
	mu       sync.Mutex
}

// NewDebouncer creates a Debouncer that invokes callback once per key after
// delay has passed without a further Add for that key.
func NewDebouncer(delay time.Duration, callback func(key string)) *Debouncer {
	return &Debouncer{
		delay:    delay,
		pending:  make(map[string]*time.Timer),
		callback: callback,
	}
}

// Add schedules key, restarting its timer if it is already pending.
// Add is a no-op after Stop.
func (d *Debouncer) Add(key string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}

	if timer, exists := d.pending[key]; exists {
		timer.Stop()
	}

	var timer *time.Timer
	timer = time.AfterFunc(d.delay, func() {
		d.mu.Lock()
		// A stale timer may fire after being replaced by a newer Add.
		if d.pending[key] != timer {
			d.mu.Unlock()
			return
		}
		delete(d.pending, key)
		d.mu.Unlock()

		if d.callback != nil {
			d.callback(key)
		}
	})
	d.pending[key] = timer
}

// Cancel drops a pending key without invoking the callback.
func (d *Debouncer) Cancel(key string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if timer, exists := d.pending[key]; exists {
		timer.Stop()
		delete(d.pending, key)
	}
}

// Stop cancels every pending key and rejects further Adds.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true
	for key, timer := range d.pending {
		timer.Stop()
		delete(d.pending, key)
	}
}

// PendingCount returns the number of keys waiting for their timer.
func (d *Debouncer) PendingCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending)
}

// IsPending reports whether key is waiting for its timer.
func (d *Debouncer) IsPending(key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, exists := d.pending[key]
	return exists
}

// Delay returns the configured debounce delay.
func (d *Debouncer) Delay() time.Duration {
	return d.delay
}
