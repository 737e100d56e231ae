// Package watcher provides file watching for configuration live reload.
//
// The watcher polls settings files for modification-time changes and
// triggers reload callbacks when they are created, modified or removed.
// Polling keeps the configuration path free of platform watcher limits;
// the project watcher uses fsnotify where latency matters.
package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Event represents a settings file change.
type Event struct {
	// Path is the absolute path to the changed file.
	Path string

	// Op is the operation that triggered the event.
	Op Operation

	// Time is when the change was observed.
	Time time.Time
}

// Operation represents the type of file operation.
type Operation int

const (
	// OpWrite indicates the file was modified.
	OpWrite Operation = iota

	// OpCreate indicates a new file was created.
	OpCreate

	// OpRemove indicates the file was deleted.
	OpRemove
)

// String returns the operation name.
func (op Operation) String() string {
	switch op {
	case OpWrite:
		return "write"
	case OpCreate:
		return "create"
	case OpRemove:
		return "remove"
	default:
		return "unknown"
	}
}

// Handler is called when a file change is detected.
type Handler func(event Event)

// Watcher polls files for changes.
type Watcher struct {
	mu sync.RWMutex

	// Watched files and their last known modification times.
	// A zero time means the file did not exist at the last poll.
	files map[string]time.Time

	handlers []Handler

	interval time.Duration
	debounce time.Duration

	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	running bool

	pendingMu sync.Mutex
	pending   map[string]Event
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithInterval sets the polling interval.
func WithInterval(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.interval = d
		}
	}
}

// WithDebounce sets the debounce window for rapid changes. Zero
// disables debouncing.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d >= 0 {
			w.debounce = d
		}
	}
}

// New creates a new file watcher.
func New(opts ...Option) *Watcher {
	w := &Watcher{
		files:    make(map[string]time.Time),
		handlers: make([]Handler, 0),
		interval: 500 * time.Millisecond,
		debounce: 100 * time.Millisecond,
		pending:  make(map[string]Event),
	}

	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Watch adds a file to the watch list. Watching a file that does not
// exist yet is allowed; its creation will be reported.
func (w *Watcher) Watch(path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	info, err := os.Stat(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			w.files[absPath] = time.Time{}
			return nil
		}
		return err
	}

	w.files[absPath] = info.ModTime()
	return nil
}

// Unwatch removes a file from the watch list.
func (w *Watcher) Unwatch(path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.files, absPath)
	return nil
}

// OnChange registers a handler for file change events.
func (w *Watcher) OnChange(handler Handler) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.handlers = append(w.handlers, handler)
}

// WatchedFiles returns the list of watched files.
func (w *Watcher) WatchedFiles() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()

	files := make([]string, 0, len(w.files))
	for path := range w.files {
		files = append(files, path)
	}
	return files
}

// Start begins polling. Starting a running watcher is a no-op.
func (w *Watcher) Start() {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return
	}
	w.ctx, w.cancel = context.WithCancel(context.Background())
	w.running = true
	w.mu.Unlock()

	w.wg.Add(1)
	go w.pollLoop()

	if w.debounce > 0 {
		w.wg.Add(1)
		go w.debounceLoop()
	}
}

// Stop halts polling and waits for the loops to exit.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.cancel()
	w.running = false
	w.mu.Unlock()

	w.wg.Wait()
}

// IsRunning returns whether the watcher is active.
func (w *Watcher) IsRunning() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.running
}

// pollLoop checks files for changes at the configured interval.
func (w *Watcher) pollLoop() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			return
		case <-ticker.C:
			w.poll()
		}
	}
}

// poll compares modification times and queues events.
func (w *Watcher) poll() {
	w.mu.Lock()
	type observation struct {
		path string
		op   Operation
	}
	var observed []observation

	for path, lastMod := range w.files {
		info, err := os.Stat(path)
		if err != nil {
			if os.IsNotExist(err) && !lastMod.IsZero() {
				w.files[path] = time.Time{}
				observed = append(observed, observation{path, OpRemove})
			}
			continue
		}

		mod := info.ModTime()
		switch {
		case lastMod.IsZero():
			w.files[path] = mod
			observed = append(observed, observation{path, OpCreate})
		case mod.After(lastMod):
			w.files[path] = mod
			observed = append(observed, observation{path, OpWrite})
		}
	}
	w.mu.Unlock()

	for _, o := range observed {
		ev := Event{Path: o.path, Op: o.op, Time: time.Now()}
		if w.debounce > 0 {
			w.pendingMu.Lock()
			w.pending[o.path] = ev
			w.pendingMu.Unlock()
		} else {
			w.deliver(ev)
		}
	}
}

// debounceLoop flushes pending events once they are old enough.
func (w *Watcher) debounceLoop() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.debounce)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			w.flushPending()
			return
		case <-ticker.C:
			w.flushPending()
		}
	}
}

// flushPending delivers events whose debounce window has elapsed.
func (w *Watcher) flushPending() {
	now := time.Now()

	w.pendingMu.Lock()
	var ready []Event
	for path, ev := range w.pending {
		if now.Sub(ev.Time) >= w.debounce {
			ready = append(ready, ev)
			delete(w.pending, path)
		}
	}
	w.pendingMu.Unlock()

	for _, ev := range ready {
		w.deliver(ev)
	}
}

// deliver calls all registered handlers.
func (w *Watcher) deliver(ev Event) {
	w.mu.RLock()
	handlers := make([]Handler, len(w.handlers))
	copy(handlers, w.handlers)
	w.mu.RUnlock()

	for _, h := range handlers {
		h(ev)
	}
}
