// Package watcher watches workspace folders for external file system
// changes.
//
// Events flow from fsnotify through exclusion filtering and debouncing
// to buffered channels. Exclusion is delegated to an Excluder — usually
// an exclusion matcher built over files.watcherExclude — consulted per
// event, so exclusion updates take effect without restarting the watch.
package watcher

import (
	"errors"
	"time"
)

// Common errors returned by watcher operations.
var (
	ErrWatcherClosed   = errors.New("watcher is closed")
	ErrAlreadyWatching = errors.New("path is already being watched")
	ErrNotWatching     = errors.New("path is not being watched")
	ErrPathNotExist    = errors.New("path does not exist")
)

// Op represents the type of file system operation.
type Op uint32

const (
	// OpCreate indicates a file or directory was created.
	OpCreate Op = 1 << iota
	// OpWrite indicates a file was written to.
	OpWrite
	// OpRemove indicates a file or directory was removed.
	OpRemove
	// OpRename indicates a file or directory was renamed.
	OpRename
)

// String returns a human-readable representation of the operation.
func (op Op) String() string {
	switch op {
	case OpCreate:
		return "CREATE"
	case OpWrite:
		return "WRITE"
	case OpRemove:
		return "REMOVE"
	case OpRename:
		return "RENAME"
	default:
		return "UNKNOWN"
	}
}

// Has returns true if the operation includes the given op.
func (op Op) Has(o Op) bool {
	return op&o == o
}

// Event represents a file system change event.
type Event struct {
	// Path is the absolute path of the affected file or directory.
	Path string

	// Op is the operation that occurred.
	Op Op

	// Timestamp is when the event occurred.
	Timestamp time.Time
}

// Excluder decides which paths the watcher should not report. An
// exclusion matcher over files.watcherExclude satisfies this directly.
type Excluder interface {
	Matches(path string) bool
}

// ExcluderFunc adapts a function to the Excluder interface.
type ExcluderFunc func(path string) bool

// Matches calls f.
func (f ExcluderFunc) Matches(path string) bool { return f(path) }

// Watcher monitors file system changes.
type Watcher interface {
	// Watch starts watching a single path (file or directory).
	Watch(path string) error

	// WatchRecursive starts watching a directory and all
	// non-excluded subdirectories.
	WatchRecursive(path string) error

	// Unwatch stops watching a path.
	Unwatch(path string) error

	// Events returns the channel of file change events. It is
	// closed when the watcher is closed.
	Events() <-chan Event

	// Errors returns the channel of watcher errors. It is closed
	// when the watcher is closed.
	Errors() <-chan error

	// Close stops the watcher and releases resources.
	Close() error

	// IsWatching returns true if the path is being watched.
	IsWatching(path string) bool

	// WatchedPaths returns all paths being watched.
	WatchedPaths() []string
}

// Config holds watcher configuration options.
type Config struct {
	// BufferSize is the size of the event and error channels.
	// Default: 100
	BufferSize int

	// Excluder filters out events and skips directories during
	// recursive watching. Nil means nothing is excluded.
	Excluder Excluder

	// IgnoreHidden skips dot-prefixed files and directories.
	IgnoreHidden bool
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{BufferSize: 100}
}

// Option configures a watcher.
type Option func(*Config)

// WithBufferSize sets the channel buffer size.
func WithBufferSize(size int) Option {
	return func(c *Config) {
		c.BufferSize = size
	}
}

// WithExcluder sets the exclusion filter.
func WithExcluder(e Excluder) Option {
	return func(c *Config) {
		c.Excluder = e
	}
}

// WithIgnoreHidden enables skipping hidden files.
func WithIgnoreHidden(ignore bool) Option {
	return func(c *Config) {
		c.IgnoreHidden = ignore
	}
}
