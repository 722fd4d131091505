package settings

import (
	"sync"
	"time"
)

// DefaultDelay is the quiet period before a debounced write fires.
const DefaultDelay = 500 * time.Millisecond

// Debouncer runs the most recently triggered function once no further
// trigger has arrived for the configured delay.
type Debouncer struct {
	mu    sync.Mutex
	delay time.Duration
	timer *time.Timer
	fn    func()
	gen   uint64
}

// NewDebouncer creates a debouncer; a non-positive delay means DefaultDelay.
func NewDebouncer(delay time.Duration) *Debouncer {
	if delay <= 0 {
		delay = DefaultDelay
	}
	return &Debouncer{delay: delay}
}

// Trigger cancels any pending call and schedules fn after the delay.
func (d *Debouncer) Trigger(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	gen := d.gen
	d.fn = fn
	d.timer = time.AfterFunc(d.delay, func() { d.fire(gen) })
}

// fire runs fn unless a later Trigger or Cancel superseded this timer.
func (d *Debouncer) fire(gen uint64) {
	d.mu.Lock()
	if gen != d.gen || d.fn == nil {
		d.mu.Unlock()
		return
	}
	fn := d.fn
	d.fn, d.timer = nil, nil
	d.mu.Unlock()

	fn()
}

// Cancel drops the pending call and reports whether there was one.
func (d *Debouncer) Cancel() bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	pending := d.fn != nil
	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	d.fn, d.timer = nil, nil
	return pending
}

// Flush runs the pending call now, if any, and reports whether it ran.
func (d *Debouncer) Flush() bool {
	d.mu.Lock()
	fn := d.fn
	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	d.fn, d.timer = nil, nil
	d.mu.Unlock()

	if fn == nil {
		return false
	}
	fn()
	return true
}

// Pending reports whether a call is scheduled.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.fn != nil
}
