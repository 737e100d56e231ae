package watcher

import (
	"sync"
	"testing"
	"time"
)

// stubWatcher feeds hand-made events through the Watcher interface.
type stubWatcher struct {
	mu     sync.Mutex
	events chan Event
	errors chan error
	closed bool
}

func newStubWatcher() *stubWatcher {
	return &stubWatcher{
		events: make(chan Event, 10),
		errors: make(chan error, 10),
	}
}

func (s *stubWatcher) Watch(string) error          { return nil }
func (s *stubWatcher) WatchRecursive(string) error { return nil }
func (s *stubWatcher) Unwatch(string) error        { return nil }
func (s *stubWatcher) Events() <-chan Event        { return s.events }
func (s *stubWatcher) Errors() <-chan error        { return s.errors }
func (s *stubWatcher) IsWatching(string) bool      { return false }
func (s *stubWatcher) WatchedPaths() []string      { return nil }

func (s *stubWatcher) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.events)
		close(s.errors)
	}
	return nil
}

func TestDebounceCoalesces(t *testing.T) {
	stub := newStubWatcher()
	dw := NewDebounced(stub, 50*time.Millisecond)
	defer dw.Close()

	stub.events <- Event{Path: "/f", Op: OpCreate, Timestamp: time.Now()}
	stub.events <- Event{Path: "/f", Op: OpWrite, Timestamp: time.Now()}

	ev := collectEvent(t, dw.Events())
	if ev.Path != "/f" {
		t.Errorf("event path = %q, want /f", ev.Path)
	}
	if !ev.Op.Has(OpCreate) || !ev.Op.Has(OpWrite) {
		t.Errorf("event op = %v, want combined create|write", ev.Op)
	}

	select {
	case extra := <-dw.Events():
		t.Errorf("unexpected second event %+v", extra)
	case <-time.After(150 * time.Millisecond):
	}
}

func TestDebounceSeparatePaths(t *testing.T) {
	stub := newStubWatcher()
	dw := NewDebounced(stub, 30*time.Millisecond)
	defer dw.Close()

	stub.events <- Event{Path: "/a", Op: OpWrite, Timestamp: time.Now()}
	stub.events <- Event{Path: "/b", Op: OpWrite, Timestamp: time.Now()}

	seen := map[string]bool{}
	seen[collectEvent(t, dw.Events()).Path] = true
	seen[collectEvent(t, dw.Events()).Path] = true

	if !seen["/a"] || !seen["/b"] {
		t.Errorf("delivered paths = %v, want /a and /b", seen)
	}
}

func TestDebounceFlush(t *testing.T) {
	stub := newStubWatcher()
	dw := NewDebounced(stub, time.Hour)
	defer dw.Close()

	stub.events <- Event{Path: "/slow", Op: OpWrite, Timestamp: time.Now()}

	// Wait until the event is held.
	deadline := time.Now().Add(2 * time.Second)
	for dw.PendingCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("event never became pending")
		}
		time.Sleep(5 * time.Millisecond)
	}

	dw.Flush()

	ev := collectEvent(t, dw.Events())
	if ev.Path != "/slow" {
		t.Errorf("flushed path = %q, want /slow", ev.Path)
	}
	if dw.PendingCount() != 0 {
		t.Errorf("PendingCount after Flush = %d, want 0", dw.PendingCount())
	}
}

func TestDebounceForwardsErrors(t *testing.T) {
	stub := newStubWatcher()
	dw := NewDebounced(stub, 10*time.Millisecond)
	defer dw.Close()

	want := ErrPathNotExist
	stub.errors <- want

	select {
	case err := <-dw.Errors():
		if err != want {
			t.Errorf("forwarded error = %v, want %v", err, want)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("error never forwarded")
	}
}

func TestDebounceCloseIdempotent(t *testing.T) {
	dw := NewDebounced(newStubWatcher(), 10*time.Millisecond)

	if err := dw.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	if err := dw.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
}
