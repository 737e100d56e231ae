// Package workspace provides the multi-root workspace model.
// It tracks workspace folders, resolves which folder owns a resource,
// and publishes folder-set changes to subscribers.
package workspace

import (
	"context"
	"errors"
	"net/url"
	"path/filepath"
	"strings"
	"sync"

	"github.com/dshills/workscope/internal/event"
)

// Common errors.
var (
	ErrNoFolders       = errors.New("workspace has no folders")
	ErrFolderNotFound  = errors.New("folder not found in workspace")
	ErrFolderExists    = errors.New("folder already in workspace")
	ErrInvalidPath     = errors.New("invalid folder path")
	ErrWorkspaceClosed = errors.New("workspace is closed")
)

// Workspace is a collection of root folders. It supports single-root and
// multi-root layouts; folder order is the order folders were added.
type Workspace struct {
	mu       sync.RWMutex
	folders  []Folder
	settings map[string]any
	closed   bool

	onChange *event.Emitter[ChangeEvent]
}

// Folder is a single workspace root.
type Folder struct {
	// URI is the folder path as a file:// URI. It is the canonical
	// identity of the folder within the workspace.
	URI string

	// Path is the local file system path.
	Path string

	// Name is the display name for the folder.
	Name string
}

// ChangeEvent describes a change to the folder set or settings.
type ChangeEvent struct {
	Type    ChangeType
	Folders []Folder
}

// ChangeType indicates the kind of workspace change.
type ChangeType int

const (
	// ChangeFolderAdded indicates a folder was added.
	ChangeFolderAdded ChangeType = iota
	// ChangeFolderRemoved indicates a folder was removed.
	ChangeFolderRemoved
	// ChangeSettingsUpdated indicates workspace settings were replaced.
	ChangeSettingsUpdated
)

// New creates a new empty workspace.
func New() *Workspace {
	return &Workspace{
		folders:  make([]Folder, 0),
		onChange: event.NewEmitter[ChangeEvent](),
	}
}

// NewFromPath creates a workspace with a single root folder.
func NewFromPath(path string) (*Workspace, error) {
	return NewFromPaths(path)
}

// NewFromPaths creates a multi-root workspace from the given paths.
func NewFromPaths(paths ...string) (*Workspace, error) {
	if len(paths) == 0 {
		return nil, ErrNoFolders
	}

	ws := New()
	for _, path := range paths {
		folder, err := newFolder(path)
		if err != nil {
			return nil, err
		}
		ws.folders = append(ws.folders, folder)
	}
	return ws, nil
}

// newFolder builds a Folder from a path.
func newFolder(path string) (Folder, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return Folder{}, err
	}
	return Folder{
		Path: absPath,
		URI:  PathToURI(absPath),
		Name: filepath.Base(absPath),
	}, nil
}

// Open replaces the folder set with the given roots and notifies
// subscribers of the removed and added folders.
func (w *Workspace) Open(ctx context.Context, roots ...string) error {
	w.mu.Lock()

	if w.closed {
		w.mu.Unlock()
		return ErrWorkspaceClosed
	}
	if len(roots) == 0 {
		w.mu.Unlock()
		return ErrNoFolders
	}

	folders := make([]Folder, 0, len(roots))
	for _, root := range roots {
		folder, err := newFolder(root)
		if err != nil {
			w.mu.Unlock()
			return err
		}
		folders = append(folders, folder)
	}

	previous := w.folders
	w.folders = folders
	w.mu.Unlock()

	if len(previous) > 0 {
		w.onChange.Emit(ChangeEvent{Type: ChangeFolderRemoved, Folders: previous})
	}
	w.onChange.Emit(ChangeEvent{Type: ChangeFolderAdded, Folders: folders})
	return nil
}

// Close closes the workspace and drops all change subscriptions.
func (w *Workspace) Close(ctx context.Context) error {
	w.mu.Lock()
	w.closed = true
	w.folders = nil
	w.mu.Unlock()

	w.onChange.Close()
	return nil
}

// IsClosed returns whether the workspace is closed.
func (w *Workspace) IsClosed() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.closed
}

// Root returns the primary workspace root path (the first folder).
func (w *Workspace) Root() string {
	w.mu.RLock()
	defer w.mu.RUnlock()

	if len(w.folders) == 0 {
		return ""
	}
	return w.folders[0].Path
}

// Roots returns all workspace root paths in folder order.
func (w *Workspace) Roots() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()

	paths := make([]string, len(w.folders))
	for i, f := range w.folders {
		paths[i] = f.Path
	}
	return paths
}

// Folders returns a copy of all workspace folders in order.
func (w *Workspace) Folders() []Folder {
	w.mu.RLock()
	defer w.mu.RUnlock()

	result := make([]Folder, len(w.folders))
	copy(result, w.folders)
	return result
}

// FolderCount returns the number of folders in the workspace.
func (w *Workspace) FolderCount() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.folders)
}

// IsMultiRoot returns true if the workspace has more than one folder.
func (w *Workspace) IsMultiRoot() bool {
	return w.FolderCount() > 1
}

// AddFolder adds a folder to the workspace and notifies subscribers.
func (w *Workspace) AddFolder(ctx context.Context, path string) error {
	w.mu.Lock()

	if w.closed {
		w.mu.Unlock()
		return ErrWorkspaceClosed
	}

	folder, err := newFolder(path)
	if err != nil {
		w.mu.Unlock()
		return err
	}

	for _, f := range w.folders {
		if f.Path == folder.Path {
			w.mu.Unlock()
			return ErrFolderExists
		}
	}

	w.folders = append(w.folders, folder)
	w.mu.Unlock()

	w.onChange.Emit(ChangeEvent{Type: ChangeFolderAdded, Folders: []Folder{folder}})
	return nil
}

// RemoveFolder removes a folder from the workspace and notifies subscribers.
func (w *Workspace) RemoveFolder(ctx context.Context, path string) error {
	w.mu.Lock()

	if w.closed {
		w.mu.Unlock()
		return ErrWorkspaceClosed
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		w.mu.Unlock()
		return err
	}

	idx := -1
	var removed Folder
	for i, f := range w.folders {
		if f.Path == absPath {
			idx = i
			removed = f
			break
		}
	}
	if idx == -1 {
		w.mu.Unlock()
		return ErrFolderNotFound
	}

	w.folders = append(w.folders[:idx], w.folders[idx+1:]...)
	w.mu.Unlock()

	w.onChange.Emit(ChangeEvent{Type: ChangeFolderRemoved, Folders: []Folder{removed}})
	return nil
}

// GetFolder returns the folder rooted at the given path.
func (w *Workspace) GetFolder(path string) (Folder, bool) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return Folder{}, false
	}

	w.mu.RLock()
	defer w.mu.RUnlock()

	for _, f := range w.folders {
		if f.Path == absPath {
			return f, true
		}
	}
	return Folder{}, false
}

// GetFolderByURI returns the folder with the given URI.
func (w *Workspace) GetFolderByURI(uri string) (Folder, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	for _, f := range w.folders {
		if f.URI == uri {
			return f, true
		}
	}
	return Folder{}, false
}

// IsInWorkspace checks if a path is within any workspace folder.
func (w *Workspace) IsInWorkspace(path string) bool {
	_, ok := w.ContainingFolder(path)
	return ok
}

// ContainingFolder returns the workspace folder that owns the given path.
// When folders nest, the first folder in order wins, matching folder
// iteration everywhere else.
func (w *Workspace) ContainingFolder(path string) (Folder, bool) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return Folder{}, false
	}

	w.mu.RLock()
	defer w.mu.RUnlock()

	for _, f := range w.folders {
		if isSubPath(f.Path, absPath) {
			return f, true
		}
	}
	return Folder{}, false
}

// RelativePath returns the path relative to its owning workspace folder.
func (w *Workspace) RelativePath(path string) (string, error) {
	folder, ok := w.ContainingFolder(path)
	if !ok {
		return "", ErrFolderNotFound
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	return filepath.Rel(folder.Path, absPath)
}

// Settings returns the raw workspace-level settings, if any.
func (w *Workspace) Settings() map[string]any {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.settings
}

// SetSettings replaces the workspace-level settings and notifies subscribers.
func (w *Workspace) SetSettings(settings map[string]any) {
	w.mu.Lock()
	w.settings = settings
	w.mu.Unlock()

	w.onChange.Emit(ChangeEvent{Type: ChangeSettingsUpdated})
}

// OnChange subscribes to workspace changes. The returned subscription
// must be unsubscribed when the listener goes away.
func (w *Workspace) OnChange(fn func(ChangeEvent)) *event.Subscription {
	return w.onChange.Subscribe(fn)
}

// PathToURI converts a file path to a file:// URI.
func PathToURI(path string) string {
	absPath, err := filepath.Abs(path)
	if err != nil {
		absPath = path
	}

	u := url.URL{
		Scheme: "file",
		Path:   filepath.ToSlash(absPath),
	}
	return u.String()
}

// URIToPath converts a file:// URI to a file path.
func URIToPath(uri string) (string, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return "", err
	}
	if u.Scheme != "file" {
		return "", ErrInvalidPath
	}

	decoded, err := url.PathUnescape(u.Path)
	if err != nil {
		return "", err
	}

	path := filepath.FromSlash(decoded)

	// On Windows, strip the leading slash before a drive letter.
	if len(path) >= 3 && path[0] == '/' && path[2] == ':' {
		path = path[1:]
	}
	return path, nil
}

// isSubPath checks if child is parent itself or lives under it.
func isSubPath(parent, child string) bool {
	parent = filepath.Clean(parent)
	child = filepath.Clean(child)

	if child == parent {
		return true
	}

	if !strings.HasSuffix(parent, string(filepath.Separator)) {
		parent += string(filepath.Separator)
	}
	return strings.HasPrefix(child, parent)
}
