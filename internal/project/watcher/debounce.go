package watcher

import (
	"sync"
	"time"
)

// Debounced wraps a Watcher and coalesces rapid changes to the same
// path into a single event carrying the combined operations.
type Debounced struct {
	inner Watcher
	delay time.Duration

	mu       sync.Mutex
	pending  map[string]*pendingEvent
	events   chan Event
	errors   chan error
	closed   bool
	closeCh  chan struct{}
	closedWg sync.WaitGroup
}

type pendingEvent struct {
	event Event
	timer *time.Timer
}

// NewDebounced creates a debouncing wrapper around inner. Events for a
// path are held for delay and merged with later events for the same
// path before delivery.
func NewDebounced(inner Watcher, delay time.Duration) *Debounced {
	if delay <= 0 {
		delay = 100 * time.Millisecond
	}

	dw := &Debounced{
		inner:   inner,
		delay:   delay,
		pending: make(map[string]*pendingEvent),
		events:  make(chan Event, 100),
		errors:  make(chan error, 100),
		closeCh: make(chan struct{}),
	}

	dw.closedWg.Add(1)
	go dw.forwardLoop()

	return dw
}

// Watch starts watching a path.
func (dw *Debounced) Watch(path string) error {
	return dw.inner.Watch(path)
}

// WatchRecursive starts watching a directory tree.
func (dw *Debounced) WatchRecursive(path string) error {
	return dw.inner.WatchRecursive(path)
}

// Unwatch stops watching a path.
func (dw *Debounced) Unwatch(path string) error {
	return dw.inner.Unwatch(path)
}

// Events returns the debounced event channel.
func (dw *Debounced) Events() <-chan Event {
	return dw.events
}

// Errors returns the error channel.
func (dw *Debounced) Errors() <-chan error {
	return dw.errors
}

// Close stops the wrapper and the inner watcher.
func (dw *Debounced) Close() error {
	dw.mu.Lock()
	if dw.closed {
		dw.mu.Unlock()
		return nil
	}
	dw.closed = true
	close(dw.closeCh)

	for path, p := range dw.pending {
		p.timer.Stop()
		delete(dw.pending, path)
	}
	dw.mu.Unlock()

	dw.closedWg.Wait()

	close(dw.events)
	close(dw.errors)

	return dw.inner.Close()
}

// IsWatching returns true if the path is being watched.
func (dw *Debounced) IsWatching(path string) bool {
	return dw.inner.IsWatching(path)
}

// WatchedPaths returns all watched paths.
func (dw *Debounced) WatchedPaths() []string {
	return dw.inner.WatchedPaths()
}

// PendingCount returns the number of paths awaiting delivery.
func (dw *Debounced) PendingCount() int {
	dw.mu.Lock()
	defer dw.mu.Unlock()
	return len(dw.pending)
}

// Flush immediately delivers all pending events.
func (dw *Debounced) Flush() {
	dw.mu.Lock()
	paths := make([]string, 0, len(dw.pending))
	for path, p := range dw.pending {
		p.timer.Stop()
		paths = append(paths, path)
	}
	dw.mu.Unlock()

	for _, path := range paths {
		dw.fire(path)
	}
}

func (dw *Debounced) forwardLoop() {
	defer dw.closedWg.Done()

	for {
		select {
		case <-dw.closeCh:
			return

		case event, ok := <-dw.inner.Events():
			if !ok {
				return
			}
			dw.hold(event)

		case err, ok := <-dw.inner.Errors():
			if !ok {
				return
			}
			dw.forwardError(err)
		}
	}
}

// hold merges an event into the pending set, starting or resetting the
// path's delivery timer.
func (dw *Debounced) hold(event Event) {
	dw.mu.Lock()
	defer dw.mu.Unlock()

	if dw.closed {
		return
	}

	if p, exists := dw.pending[event.Path]; exists {
		p.event.Op |= event.Op
		p.event.Timestamp = event.Timestamp
		p.timer.Reset(dw.delay)
		return
	}

	p := &pendingEvent{event: event}
	p.timer = time.AfterFunc(dw.delay, func() {
		dw.fire(event.Path)
	})
	dw.pending[event.Path] = p
}

// fire delivers the pending event for a path, if still pending.
func (dw *Debounced) fire(path string) {
	dw.mu.Lock()
	p, exists := dw.pending[path]
	if !exists {
		dw.mu.Unlock()
		return
	}
	delete(dw.pending, path)
	event := p.event
	dw.mu.Unlock()

	select {
	case dw.events <- event:
	case <-dw.closeCh:
	default:
	}
}

func (dw *Debounced) forwardError(err error) {
	select {
	case dw.errors <- err:
	case <-dw.closeCh:
	default:
	}
}

var _ Watcher = (*Debounced)(nil)
