package watcher

import (
	"time"

	"github.com/dshills/workscope/internal/event"
	"github.com/dshills/workscope/internal/workspace"
)

// RootWatcher watches every folder of a workspace, following folder
// additions and removals. Events are debounced and filtered through the
// configured Excluder.
type RootWatcher struct {
	fs    *FSWatcher
	outer Watcher
	wsSub *event.Subscription
}

// NewRootWatcher starts watching all current folders of ws. A debounce
// of zero or less uses the default delay.
func NewRootWatcher(ws *workspace.Workspace, debounce time.Duration, opts ...Option) (*RootWatcher, error) {
	fs, err := NewFSWatcher(opts...)
	if err != nil {
		return nil, err
	}

	rw := &RootWatcher{
		fs:    fs,
		outer: NewDebounced(fs, debounce),
	}

	for _, folder := range ws.Folders() {
		if err := rw.outer.WatchRecursive(folder.Path); err != nil {
			_ = rw.outer.Close()
			return nil, err
		}
	}

	rw.wsSub = ws.OnChange(func(ev workspace.ChangeEvent) {
		switch ev.Type {
		case workspace.ChangeFolderAdded:
			for _, folder := range ev.Folders {
				_ = rw.outer.WatchRecursive(folder.Path)
			}
		case workspace.ChangeFolderRemoved:
			for _, folder := range ev.Folders {
				_ = rw.fs.UnwatchTree(folder.Path)
			}
		}
	})

	return rw, nil
}

// Events returns the debounced event channel.
func (rw *RootWatcher) Events() <-chan Event {
	return rw.outer.Events()
}

// Errors returns the error channel.
func (rw *RootWatcher) Errors() <-chan error {
	return rw.outer.Errors()
}

// WatchedPaths returns all watched paths.
func (rw *RootWatcher) WatchedPaths() []string {
	return rw.outer.WatchedPaths()
}

// Close detaches from the workspace and stops watching.
func (rw *RootWatcher) Close() error {
	rw.wsSub.Unsubscribe()
	return rw.outer.Close()
}
