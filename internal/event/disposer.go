package event

import "sync"

// Disposer collects teardown steps acquired during setup and releases
// them together. Steps run in reverse acquisition order, exactly once.
// The zero value is ready to use.
type Disposer struct {
	mu       sync.Mutex
	steps    []func()
	disposed bool
}

// Add registers a teardown step. Adding to a disposed Disposer runs the
// step immediately.
func (d *Disposer) Add(fn func()) {
	if fn == nil {
		return
	}

	d.mu.Lock()
	if d.disposed {
		d.mu.Unlock()
		fn()
		return
	}
	d.steps = append(d.steps, fn)
	d.mu.Unlock()
}

// Dispose runs all registered steps in reverse order. Subsequent calls
// are no-ops.
func (d *Disposer) Dispose() {
	d.mu.Lock()
	if d.disposed {
		d.mu.Unlock()
		return
	}
	d.disposed = true
	steps := d.steps
	d.steps = nil
	d.mu.Unlock()

	for i := len(steps) - 1; i >= 0; i-- {
		steps[i]()
	}
}

// Disposed reports whether Dispose has been called.
func (d *Disposer) Disposed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.disposed
}
