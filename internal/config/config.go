package config

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"github.com/dshills/workscope/internal/config/layer"
	"github.com/dshills/workscope/internal/config/loader"
	"github.com/dshills/workscope/internal/config/notify"
	"github.com/dshills/workscope/internal/config/watcher"
	"github.com/dshills/workscope/internal/event"
	"github.com/dshills/workscope/internal/workspace"
)

// overlayDirName is the per-folder settings directory at each root.
const overlayDirName = ".workscope"

// envPrefix is the prefix for environment variable overrides.
const envPrefix = "WORKSCOPE_"

// Config provides unified access to the workscope configuration system.
// It manages layered loading, per-folder overlays, live reloading and
// change notification.
type Config struct {
	mu sync.RWMutex

	layers   *layer.Manager
	notifier *notify.Notifier
	watcher  *watcher.Watcher

	// Per-folder overlay settings, keyed by folder URI.
	folders map[string]map[string]any
	// Overlay file path per folder URI, for watch bookkeeping.
	folderFiles map[string]string

	ws    *workspace.Workspace
	wsSub *event.Subscription

	userConfigDir string
	enableWatcher bool
	closed        bool
}

// Option configures a Config instance.
type Option func(*Config)

// WithUserConfigDir sets the user configuration directory.
func WithUserConfigDir(dir string) Option {
	return func(c *Config) {
		c.userConfigDir = dir
	}
}

// WithWatcher enables or disables live reload.
func WithWatcher(enable bool) Option {
	return func(c *Config) {
		c.enableWatcher = enable
	}
}

// New creates a new Config instance with the given options.
func New(opts ...Option) *Config {
	c := &Config{
		layers:        layer.NewManager(),
		notifier:      notify.New(),
		folders:       make(map[string]map[string]any),
		folderFiles:   make(map[string]string),
		enableWatcher: true,
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.userConfigDir == "" {
		c.userConfigDir = defaultUserConfigDir()
	}

	if c.enableWatcher {
		c.watcher = watcher.New()
		c.watcher.OnChange(c.handleFileChange)
	}

	return c
}

// defaultUserConfigDir returns the platform user config directory.
func defaultUserConfigDir() string {
	base, err := os.UserConfigDir()
	if err != nil {
		home, _ := os.UserHomeDir()
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "workscope")
}

// Load loads configuration from all sources: built-in defaults, the
// user settings file and environment variables. Attached workspace
// layers are loaded by AttachWorkspace.
func (c *Config) Load(_ context.Context) error {
	c.mu.Lock()

	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}

	c.layers.ReplaceLayer("defaults", layer.SourceBuiltin, DefaultSettings())

	if err := c.loadUserSettingsLocked(); err != nil {
		c.mu.Unlock()
		return err
	}
	if err := c.loadEnvironmentLocked(); err != nil {
		c.mu.Unlock()
		return err
	}

	w := c.watcher
	c.mu.Unlock()

	if w != nil {
		w.Start()
	}
	return nil
}

// loadUserSettingsLocked loads the user settings file, if present, and
// registers it with the live-reload watcher.
func (c *Config) loadUserSettingsLocked() error {
	path := loader.FindSettingsFile(loader.DefaultFS(), c.userConfigDir, "settings")
	if path == "" {
		// Watch the default location so creating the file later
		// triggers a reload.
		c.layers.ReplaceLayer("user", layer.SourceUser, nil)
		if c.watcher != nil {
			_ = c.watcher.Watch(filepath.Join(c.userConfigDir, "settings.toml"))
		}
		return nil
	}

	l := loader.ForPath(path)
	data, err := l.Load()
	if err != nil {
		return err
	}

	c.layers.ReplaceLayer("user", layer.SourceUser, data)
	if c.watcher != nil {
		_ = c.watcher.Watch(path)
	}
	return nil
}

// loadEnvironmentLocked loads WORKSCOPE_* environment overrides.
func (c *Config) loadEnvironmentLocked() error {
	data, err := loader.NewEnvLoader(envPrefix).Load()
	if err != nil {
		return err
	}
	c.layers.ReplaceLayer("environment", layer.SourceEnv, data)
	return nil
}

// AttachWorkspace loads the workspace-file settings layer and the
// per-folder overlays, and follows folder-set changes. Only one
// workspace can be attached at a time.
func (c *Config) AttachWorkspace(ws *workspace.Workspace) {
	c.mu.Lock()
	if c.wsSub != nil {
		c.wsSub.Unsubscribe()
	}
	c.ws = ws
	c.reloadWorkspaceLocked()
	c.wsSub = ws.OnChange(func(workspace.ChangeEvent) {
		c.mu.Lock()
		c.reloadWorkspaceLocked()
		c.mu.Unlock()
		c.notifier.NotifyReload("workspace")
	})
	c.mu.Unlock()
}

// reloadWorkspaceLocked rebuilds the workspace layer and folder overlays
// from the attached workspace's current state.
func (c *Config) reloadWorkspaceLocked() {
	if c.ws == nil {
		return
	}

	c.layers.ReplaceLayer("workspace", layer.SourceWorkspace, c.ws.Settings())

	seen := make(map[string]bool)
	for _, folder := range c.ws.Folders() {
		seen[folder.URI] = true
		c.loadFolderOverlayLocked(folder)
	}

	// Drop overlays for folders that left the workspace.
	for uri := range c.folders {
		if seen[uri] {
			continue
		}
		delete(c.folders, uri)
		if path, ok := c.folderFiles[uri]; ok {
			if c.watcher != nil {
				_ = c.watcher.Unwatch(path)
			}
			delete(c.folderFiles, uri)
		}
	}
}

// loadFolderOverlayLocked loads <root>/.workscope/settings.* for one folder.
func (c *Config) loadFolderOverlayLocked(folder workspace.Folder) {
	dir := filepath.Join(folder.Path, overlayDirName)

	path := loader.FindSettingsFile(loader.DefaultFS(), dir, "settings")
	if path == "" {
		delete(c.folders, folder.URI)
		if c.watcher != nil {
			_ = c.watcher.Watch(filepath.Join(dir, "settings.toml"))
			c.folderFiles[folder.URI] = filepath.Join(dir, "settings.toml")
		}
		return
	}

	data, err := loader.ForPath(path).Load()
	if err != nil {
		// A broken overlay must not take down the whole config;
		// the folder falls back to the global stack.
		delete(c.folders, folder.URI)
		return
	}

	c.folders[folder.URI] = data
	c.folderFiles[folder.URI] = path
	if c.watcher != nil {
		_ = c.watcher.Watch(path)
	}
}

// handleFileChange reloads configuration when a watched file changes.
func (c *Config) handleFileChange(watcher.Event) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	_ = c.loadUserSettingsLocked()
	c.reloadWorkspaceLocked()
	c.mu.Unlock()

	c.notifier.NotifyReload("file")
}

// Reload re-reads every configuration source and notifies observers.
func (c *Config) Reload(_ context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if err := c.loadUserSettingsLocked(); err != nil {
		c.mu.Unlock()
		return err
	}
	if err := c.loadEnvironmentLocked(); err != nil {
		c.mu.Unlock()
		return err
	}
	c.reloadWorkspaceLocked()
	c.mu.Unlock()

	c.notifier.NotifyReload("reload")
	return nil
}

// Close shuts down the configuration system.
func (c *Config) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	sub := c.wsSub
	c.wsSub = nil
	c.mu.Unlock()

	if sub != nil {
		sub.Unsubscribe()
	}
	if c.watcher != nil {
		c.watcher.Stop()
	}
	c.notifier.Close()
}

// Notifier returns the change notifier for this configuration.
func (c *Config) Notifier() *notify.Notifier {
	return c.notifier
}

// Get returns the value at the given path from the merged configuration.
func (c *Config) Get(path string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.layers.Get(path)
}

// GetString returns a string value at the given path.
func (c *Config) GetString(path string) (string, bool) {
	val, ok := c.Get(path)
	if !ok {
		return "", false
	}
	s, ok := val.(string)
	return s, ok
}

// GetBool returns a boolean value at the given path.
func (c *Config) GetBool(path string) (bool, bool) {
	val, ok := c.Get(path)
	if !ok {
		return false, false
	}
	b, ok := val.(bool)
	return b, ok
}

// GetStringSlice returns a string-slice value at the given path. Loader
// output carries slices as []any, so both shapes are accepted.
func (c *Config) GetStringSlice(path string) ([]string, bool) {
	val, ok := c.Get(path)
	if !ok {
		return nil, false
	}
	switch v := val.(type) {
	case []string:
		return v, true
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	}
	return nil, false
}

// GetStringMap returns a map value at the given path.
func (c *Config) GetStringMap(path string) (map[string]any, bool) {
	val, ok := c.Get(path)
	if !ok {
		return nil, false
	}
	m, ok := val.(map[string]any)
	return m, ok
}

// FolderValue returns the value at path for a specific workspace folder.
// A folder overlay value replaces — never merges with — the global value;
// folders without an overlay entry fall through to the merged stack.
func (c *Config) FolderValue(folderURI, path string) (any, bool) {
	c.mu.RLock()
	if overlay, ok := c.folders[folderURI]; ok {
		if val, found := layer.GetByPath(overlay, path); found {
			c.mu.RUnlock()
			return val, true
		}
	}
	c.mu.RUnlock()

	return c.Get(path)
}

// Set writes a session override at the given path and notifies observers.
func (c *Config) Set(path string, value any) error {
	if path == "" {
		return ErrInvalidPath
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}

	old, _ := c.layers.Get(path)

	session := c.layers.GetLayer("session")
	if session == nil {
		c.layers.ReplaceLayer("session", layer.SourceSession, make(map[string]any))
		session = c.layers.GetLayer("session")
	}
	layer.SetByPath(session.Data, path, value)
	c.layers.Invalidate()
	c.mu.Unlock()

	c.notifier.NotifySet(path, old, value, "session")
	return nil
}

// UserConfigDir returns the user configuration directory in use.
func (c *Config) UserConfigDir() string {
	return c.userConfigDir
}
