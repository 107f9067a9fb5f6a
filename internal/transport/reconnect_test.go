package transport

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestReconnectorFiresOnceAfterDelay(t *testing.T) {
	var fired atomic.Int32
	r := NewReconnector(20*time.Millisecond, func() { fired.Add(1) })

	r.Schedule()
	r.Schedule() // redundant while pending

	if !r.Pending() {
		t.Fatalf("expected a pending attempt after Schedule")
	}
	time.Sleep(80 * time.Millisecond)
	if got := fired.Load(); got != 1 {
		t.Fatalf("dial fired %d times, want 1", got)
	}
	if r.Pending() {
		t.Fatalf("attempt still pending after firing")
	}
}

func TestReconnectorCancelPreventsDial(t *testing.T) {
	var fired atomic.Int32
	r := NewReconnector(20*time.Millisecond, func() { fired.Add(1) })

	r.Schedule()
	r.Cancel()

	time.Sleep(60 * time.Millisecond)
	if got := fired.Load(); got != 0 {
		t.Fatalf("dial fired %d times after Cancel, want 0", got)
	}

	// Cancel does not disable the reconnector.
	r.Schedule()
	time.Sleep(60 * time.Millisecond)
	if got := fired.Load(); got != 1 {
		t.Fatalf("dial fired %d times after re-Schedule, want 1", got)
	}
}

func TestReconnectorStopDisables(t *testing.T) {
	var fired atomic.Int32
	r := NewReconnector(20*time.Millisecond, func() { fired.Add(1) })

	r.Schedule()
	r.Stop()
	r.Schedule()

	time.Sleep(60 * time.Millisecond)
	if got := fired.Load(); got != 0 {
		t.Fatalf("dial fired %d times after Stop, want 0", got)
	}
	if r.Pending() {
		t.Fatalf("attempt pending after Stop")
	}
}

func TestReconnectorDialCanRearm(t *testing.T) {
	var fired atomic.Int32
	var r *Reconnector
	r = NewReconnector(10*time.Millisecond, func() {
		if fired.Add(1) < 3 {
			r.Schedule()
		}
	})

	r.Schedule()
	time.Sleep(120 * time.Millisecond)
	if got := fired.Load(); got != 3 {
		t.Fatalf("dial fired %d times, want 3", got)
	}
}
