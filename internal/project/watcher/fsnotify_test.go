package watcher

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func newFSWatcher(t *testing.T, opts ...Option) *FSWatcher {
	t.Helper()

	w, err := NewFSWatcher(opts...)
	if err != nil {
		t.Fatalf("NewFSWatcher() error = %v", err)
	}
	t.Cleanup(func() { _ = w.Close() })
	return w
}

func TestWatchErrors(t *testing.T) {
	w := newFSWatcher(t)
	dir := t.TempDir()

	if err := w.Watch(filepath.Join(dir, "missing")); !errors.Is(err, ErrPathNotExist) {
		t.Errorf("Watch(missing) error = %v, want ErrPathNotExist", err)
	}

	if err := w.Watch(dir); err != nil {
		t.Fatalf("Watch() error = %v", err)
	}
	if err := w.Watch(dir); !errors.Is(err, ErrAlreadyWatching) {
		t.Errorf("second Watch() error = %v, want ErrAlreadyWatching", err)
	}

	if err := w.Unwatch(filepath.Join(dir, "other")); !errors.Is(err, ErrNotWatching) {
		t.Errorf("Unwatch(unwatched) error = %v, want ErrNotWatching", err)
	}
	if err := w.Unwatch(dir); err != nil {
		t.Errorf("Unwatch() error = %v", err)
	}
}

func TestWatchDetectsCreate(t *testing.T) {
	w := newFSWatcher(t)
	dir := t.TempDir()

	if err := w.Watch(dir); err != nil {
		t.Fatal(err)
	}

	file := filepath.Join(dir, "new.txt")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	ev, ok := drainUntil(w.Events(), func(ev Event) bool {
		return ev.Path == file
	}, 3*time.Second)
	if !ok {
		t.Fatal("no event for created file")
	}
	if !ev.Op.Has(OpCreate) && !ev.Op.Has(OpWrite) {
		t.Errorf("event op = %v, want create or write", ev.Op)
	}
}

func TestExcludedEventsDropped(t *testing.T) {
	w := newFSWatcher(t, WithExcluder(ExcluderFunc(func(path string) bool {
		return strings.HasSuffix(path, ".log")
	})))
	dir := t.TempDir()

	if err := w.Watch(dir); err != nil {
		t.Fatal(err)
	}

	if err := os.WriteFile(filepath.Join(dir, "app.log"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	kept := filepath.Join(dir, "app.txt")
	if err := os.WriteFile(kept, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	ev, ok := drainUntil(w.Events(), func(ev Event) bool {
		return strings.HasSuffix(ev.Path, ".log") || ev.Path == kept
	}, 3*time.Second)
	if !ok {
		t.Fatal("no event for kept file")
	}
	if ev.Path != kept {
		t.Errorf("first relevant event = %q, want the non-excluded %q", ev.Path, kept)
	}
}

func TestWatchRecursiveSkipsExcludedDirs(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "src")
	skipped := filepath.Join(dir, "node_modules")
	for _, d := range []string{sub, skipped} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			t.Fatal(err)
		}
	}

	w := newFSWatcher(t, WithExcluder(ExcluderFunc(func(path string) bool {
		return filepath.Base(path) == "node_modules"
	})))

	if err := w.WatchRecursive(dir); err != nil {
		t.Fatalf("WatchRecursive() error = %v", err)
	}

	if !w.IsWatching(dir) || !w.IsWatching(sub) {
		t.Error("root and src should be watched")
	}
	if w.IsWatching(skipped) {
		t.Error("excluded directory should not be watched")
	}
}

func TestWatchRecursiveNeverExcludesRoot(t *testing.T) {
	dir := t.TempDir()

	w := newFSWatcher(t, WithExcluder(ExcluderFunc(func(string) bool {
		return true
	})))

	if err := w.WatchRecursive(dir); err != nil {
		t.Fatalf("WatchRecursive() error = %v", err)
	}
	if !w.IsWatching(dir) {
		t.Error("the root itself must be watched even when the excluder matches everything")
	}
}

func TestIgnoreHiddenDirs(t *testing.T) {
	dir := t.TempDir()
	hidden := filepath.Join(dir, ".git")
	if err := os.MkdirAll(hidden, 0o755); err != nil {
		t.Fatal(err)
	}

	w := newFSWatcher(t, WithIgnoreHidden(true))
	if err := w.WatchRecursive(dir); err != nil {
		t.Fatal(err)
	}

	if w.IsWatching(hidden) {
		t.Error("hidden directory watched despite IgnoreHidden")
	}
}

func TestUnwatchTree(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "a", "b")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatal(err)
	}

	w := newFSWatcher(t)
	if err := w.WatchRecursive(dir); err != nil {
		t.Fatal(err)
	}
	if len(w.WatchedPaths()) != 3 {
		t.Fatalf("watched %d paths, want 3", len(w.WatchedPaths()))
	}

	if err := w.UnwatchTree(dir); err != nil {
		t.Fatal(err)
	}
	if len(w.WatchedPaths()) != 0 {
		t.Errorf("watched %d paths after UnwatchTree, want 0", len(w.WatchedPaths()))
	}
}

func TestCloseIdempotent(t *testing.T) {
	w, err := NewFSWatcher()
	if err != nil {
		t.Fatal(err)
	}

	if err := w.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	if err := w.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
	if err := w.Watch(t.TempDir()); !errors.Is(err, ErrWatcherClosed) {
		t.Errorf("Watch after Close error = %v, want ErrWatcherClosed", err)
	}
}
