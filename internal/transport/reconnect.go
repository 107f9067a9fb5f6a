package transport

import (
	"sync"
	"time"
)

// Reconnector schedules a single pending reconnect attempt at a fixed delay.
// There is no backoff and no attempt cap: indefinite retries come from the
// dial callback scheduling again when an attempt fails. Stop cancels any
// pending attempt and makes every later Schedule a no-op, so teardown
// deterministically prevents further dials.
type Reconnector struct {
	mu      sync.Mutex
	delay   time.Duration
	dial    func()
	timer   *time.Timer
	stopped bool
}

func NewReconnector(delay time.Duration, dial func()) *Reconnector {
	return &Reconnector{delay: delay, dial: dial}
}

// Schedule arms one reconnect attempt. It is a no-op while an attempt is
// already pending or after Stop.
func (r *Reconnector) Schedule() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stopped || r.dial == nil || r.timer != nil {
		return
	}
	r.timer = time.AfterFunc(r.delay, r.fire)
}

func (r *Reconnector) fire() {
	r.mu.Lock()
	r.timer = nil
	stopped := r.stopped
	r.mu.Unlock()
	if stopped {
		return
	}
	r.dial()
}

// Cancel drops a pending attempt without preventing future schedules.
func (r *Reconnector) Cancel() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cancelLocked()
}

// Stop cancels any pending attempt and disables the reconnector.
func (r *Reconnector) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stopped = true
	r.cancelLocked()
}

// Pending reports whether an attempt is currently scheduled.
func (r *Reconnector) Pending() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.timer != nil
}

func (r *Reconnector) cancelLocked() {
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
}
