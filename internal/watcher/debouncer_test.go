package watcher

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestDebouncerCoalesces(t *testing.T) {
	d := NewDebouncer(50 * time.Millisecond)
	var calls int32

	for i := 0; i < 5; i++ {
		d.Trigger(func() { atomic.AddInt32(&calls, 1) })
		time.Sleep(5 * time.Millisecond)
	}

	time.Sleep(150 * time.Millisecond)
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Errorf("calls = %d, want 1", n)
	}
}

func TestDebouncerCancel(t *testing.T) {
	d := NewDebouncer(30 * time.Millisecond)
	var calls int32

	d.Trigger(func() { atomic.AddInt32(&calls, 1) })
	d.Cancel()

	time.Sleep(100 * time.Millisecond)
	if n := atomic.LoadInt32(&calls); n != 0 {
		t.Errorf("calls after Cancel = %d, want 0", n)
	}
}

func TestDebouncerFlush(t *testing.T) {
	d := NewDebouncer(time.Hour)
	var calls int32

	d.Trigger(func() { atomic.AddInt32(&calls, 1) })
	d.Flush()

	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Errorf("calls after Flush = %d, want 1", n)
	}

	// Flush with nothing pending is a no-op.
	d.Flush()
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Errorf("calls after second Flush = %d, want 1", n)
	}
}
