package watcher

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestNewDebouncer(t *testing.T) {
	delay := 100 * time.Millisecond
	d := NewDebouncer(delay, func(key string) {})

	if d.Delay() != delay {
		t.Errorf("expected delay %v, got %v", delay, d.Delay())
	}
	if d.PendingCount() != 0 {
		t.Errorf("expected 0 pending, got %d", d.PendingCount())
	}
}

func TestDebouncer_Add_SingleKey(t *testing.T) {
	var called atomic.Int32
	var calledKey string
	var mu sync.Mutex

	delay := 50 * time.Millisecond
	d := NewDebouncer(delay, func(key string) {
		mu.Lock()
		calledKey = key
		mu.Unlock()
		called.Add(1)
	})

	d.Add("/samples/AudioVisual/test.fwdata")

	if !d.IsPending("/samples/AudioVisual/test.fwdata") {
		t.Error("key should be pending after Add")
	}

	time.Sleep(delay + 50*time.Millisecond)

	if called.Load() != 1 {
		t.Errorf("expected callback to be called once, got %d", called.Load())
	}

	mu.Lock()
	if calledKey != "/samples/AudioVisual/test.fwdata" {
		t.Errorf("unexpected key %s", calledKey)
	}
	mu.Unlock()

	if d.IsPending("/samples/AudioVisual/test.fwdata") {
		t.Error("key should not be pending after callback")
	}
}

func TestDebouncer_Add_CoalescesRapidEvents(t *testing.T) {
	var callCount atomic.Int32

	delay := 100 * time.Millisecond
	d := NewDebouncer(delay, func(key string) {
		callCount.Add(1)
	})

	for i := 0; i < 5; i++ {
		d.Add("test.fwdata")
		time.Sleep(20 * time.Millisecond)
	}

	if callCount.Load() != 0 {
		t.Errorf("callback fired during the burst, got %d calls", callCount.Load())
	}

	time.Sleep(delay + 80*time.Millisecond)

	if callCount.Load() != 1 {
		t.Errorf("expected 1 coalesced call, got %d", callCount.Load())
	}
}

func TestDebouncer_Cancel(t *testing.T) {
	var callCount atomic.Int32

	delay := 50 * time.Millisecond
	d := NewDebouncer(delay, func(key string) {
		callCount.Add(1)
	})

	d.Add("a")
	d.Cancel("a")
	d.Cancel("never-added")

	time.Sleep(delay + 50*time.Millisecond)

	if callCount.Load() != 0 {
		t.Errorf("expected no calls after Cancel, got %d", callCount.Load())
	}
}

func TestDebouncer_Stop(t *testing.T) {
	var callCount atomic.Int32

	delay := 50 * time.Millisecond
	d := NewDebouncer(delay, func(key string) {
		callCount.Add(1)
	})

	d.Add("a")
	d.Add("b")
	if d.PendingCount() != 2 {
		t.Errorf("expected 2 pending, got %d", d.PendingCount())
	}

	d.Stop()
	d.Add("c")

	if d.PendingCount() != 0 {
		t.Errorf("expected 0 pending after Stop, got %d", d.PendingCount())
	}

	time.Sleep(delay + 50*time.Millisecond)

	if callCount.Load() != 0 {
		t.Errorf("expected no calls after Stop, got %d", callCount.Load())
	}
}

func TestDebouncer_NilCallback(t *testing.T) {
	d := NewDebouncer(10*time.Millisecond, nil)
	d.Add("a")
	time.Sleep(40 * time.Millisecond)

	if d.PendingCount() != 0 {
		t.Errorf("expected 0 pending, got %d", d.PendingCount())
	}
}

func TestDebouncer_ConcurrentAccess(t *testing.T) {
	var callCount atomic.Int32
	d := NewDebouncer(30*time.Millisecond, func(key string) {
		callCount.Add(1)
	})

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				d.Add("shared")
			}
		}()
	}
	wg.Wait()

	time.Sleep(100 * time.Millisecond)

	if callCount.Load() != 1 {
		t.Errorf("expected 1 call for a single key, got %d", callCount.Load())
	}
}
