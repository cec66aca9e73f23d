package session

import (
	"sync"
	"time"
)

// DefaultDebounceWindow matches the dashboard's 500ms viewport quiet period.
const DefaultDebounceWindow = 500 * time.Millisecond

// Debouncer coalesces bursts of calls sharing a key into a single
// invocation once the key has been quiet for the configured window.
// Each call resets the key's timer and replaces the pending function, so
// only the latest burst member runs. Distinct keys never interfere.
type Debouncer struct {
	window time.Duration

	mu      sync.Mutex
	timers  map[string]*time.Timer
	stopped bool
}

// NewDebouncer builds a Debouncer with the supplied quiet period.
func NewDebouncer(window time.Duration) *Debouncer {
	if window <= 0 {
		window = DefaultDebounceWindow
	}
	return &Debouncer{
		window: window,
		timers: make(map[string]*time.Timer),
	}
}

// Call schedules fn to run after the quiet period, superseding any
// pending call for the same key.
func (d *Debouncer) Call(key string, fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}

	if timer, ok := d.timers[key]; ok {
		timer.Stop()
	}

	d.timers[key] = time.AfterFunc(d.window, func() {
		d.mu.Lock()
		if d.stopped {
			d.mu.Unlock()
			return
		}
		delete(d.timers, key)
		d.mu.Unlock()

		fn()
	})
}

// Cancel drops any pending call for key.
func (d *Debouncer) Cancel(key string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if timer, ok := d.timers[key]; ok {
		timer.Stop()
		delete(d.timers, key)
	}
}

// Stop cancels every pending call and rejects further scheduling. It is
// safe to call more than once; callbacks already past the stopped check
// may still complete.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true
	for key, timer := range d.timers {
		timer.Stop()
		delete(d.timers, key)
	}
}
