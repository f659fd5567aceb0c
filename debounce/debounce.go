// Package debounce turns bursts of query keystrokes into a single effective
// query once typing pauses.
package debounce

import (
	"sync"
	"time"
)

// Debouncer delivers the latest pushed value on C after delay has elapsed
// without a newer push. Superseded timers are stopped and never deliver.
type Debouncer struct {
	delay time.Duration
	out   chan string

	mu      sync.Mutex
	timer   *time.Timer
	seq     uint64
	pending string
	armed   bool
}

// New creates a debouncer. A non-positive delay delivers on every push.
func New(delay time.Duration) *Debouncer {
	return &Debouncer{delay: delay, out: make(chan string, 1)}
}

// C returns the channel effective values are delivered on. Only the newest
// undelivered value is kept.
func (d *Debouncer) C() <-chan string {
	return d.out
}

// Delay returns the configured idle interval.
func (d *Debouncer) Delay() time.Duration {
	return d.delay
}

// Push records value and restarts the idle timer.
func (d *Debouncer) Push(value string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopLocked()
	d.seq++
	d.pending = value
	d.armed = true

	if d.delay <= 0 {
		d.deliverLocked()
		return
	}
	seq := d.seq
	d.timer = time.AfterFunc(d.delay, func() {
		d.fire(seq)
	})
}

// Flush delivers the pending value immediately, if any.
func (d *Debouncer) Flush() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.armed {
		return
	}
	d.stopLocked()
	d.seq++
	d.deliverLocked()
}

// Stop cancels any pending delivery.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopLocked()
	d.seq++
	d.armed = false
}

func (d *Debouncer) fire(seq uint64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	// A newer Push may have raced with this timer firing.
	if seq != d.seq || !d.armed {
		return
	}
	d.timer = nil
	d.deliverLocked()
}

func (d *Debouncer) stopLocked() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

func (d *Debouncer) deliverLocked() {
	d.armed = false
	select {
	case <-d.out:
	default:
	}
	d.out <- d.pending
}
