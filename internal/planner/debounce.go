package planner

import (
	"sync"
	"time"
)

// DefaultSearchDebounce is the quiescence window applied to typed input
// before a search is issued.
const DefaultSearchDebounce = 300 * time.Millisecond

// Debouncer delivers a changing value to fn only after the value has been
// stable for the full delay. Every Set restarts the wait; intermediate
// values are never delivered. After Stop, no delivery fires.
type Debouncer[T any] struct {
	delay time.Duration
	fn    func(T)

	mu      sync.Mutex
	timer   *time.Timer
	stopped bool
}

// NewDebouncer creates a debouncer delivering values to fn.
func NewDebouncer[T any](delay time.Duration, fn func(T)) *Debouncer[T] {
	if delay <= 0 {
		delay = DefaultSearchDebounce
	}
	return &Debouncer[T]{delay: delay, fn: fn}
}

// Set records a new value, restarting the quiescence window.
func (d *Debouncer[T]) Set(value T) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, func() {
		d.mu.Lock()
		stopped := d.stopped
		d.mu.Unlock()
		if !stopped {
			d.fn(value)
		}
	})
}

// Stop cancels any pending delivery. The debouncer cannot be reused.
func (d *Debouncer[T]) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
