package exclude

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/dshills/workscope/internal/config"
	"github.com/dshills/workscope/internal/workspace"
)

func newTestConfig(t *testing.T) *config.Config {
	t.Helper()

	cfg := config.New(
		config.WithUserConfigDir(t.TempDir()),
		config.WithWatcher(false),
	)
	if err := cfg.Load(context.Background()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	t.Cleanup(cfg.Close)
	return cfg
}

func TestFilesMatcherUsesDefaults(t *testing.T) {
	ws, root := newTestWorkspace(t)
	cfg := newTestConfig(t)

	m := NewFilesMatcher(ws, cfg)
	defer m.Dispose()

	if !m.Matches(filepath.Join(root, ".git")) {
		t.Error("default files.exclude should exclude the .git directory")
	}
	if m.Matches(filepath.Join(root, "main.go")) {
		t.Error("regular source file excluded")
	}
}

func TestFilesMatcherFollowsSet(t *testing.T) {
	ws, root := newTestWorkspace(t)
	cfg := newTestConfig(t)

	m := NewFilesMatcher(ws, cfg)
	defer m.Dispose()

	fired := 0
	sub := m.OnExpressionChange(func() { fired++ })
	defer sub.Unsubscribe()

	err := cfg.Set("files.exclude", map[string]any{"generated/**": true})
	if err != nil {
		t.Fatal(err)
	}

	if fired != 1 {
		t.Errorf("change signal fired %d times after Set, want 1", fired)
	}
	if !m.Matches(filepath.Join(root, "generated", "api.go")) {
		t.Error("matcher did not pick up the session override")
	}

	// An unrelated setting must not resynchronize the matcher.
	fired = 0
	if err := cfg.Set("editor.tabSize", 2); err != nil {
		t.Fatal(err)
	}
	if fired != 0 {
		t.Errorf("change signal fired %d times for unrelated setting, want 0", fired)
	}
}

func TestFilesMatcherHonorsFolderOverlay(t *testing.T) {
	cfg := newTestConfig(t)

	root := t.TempDir()
	overlayDir := filepath.Join(root, ".workscope")
	if err := os.MkdirAll(overlayDir, 0o755); err != nil {
		t.Fatal(err)
	}
	overlay := `
[files.exclude]
"target/**" = true
`
	if err := os.WriteFile(filepath.Join(overlayDir, "settings.toml"), []byte(overlay), 0o644); err != nil {
		t.Fatal(err)
	}

	ws, err := workspace.NewFromPath(root)
	if err != nil {
		t.Fatal(err)
	}
	defer ws.Close(context.Background())
	cfg.AttachWorkspace(ws)

	m := NewFilesMatcher(ws, cfg)
	defer m.Dispose()

	if !m.Matches(filepath.Join(root, "target", "debug")) {
		t.Error("overlay pattern target/** not applied")
	}
	// The overlay replaces the global expression for this folder, so
	// the default .git pattern no longer applies inside it.
	if m.Matches(filepath.Join(root, ".git")) {
		t.Error("global expression merged into overlaid folder")
	}

	// Outside every folder the global expression still rules.
	outside := filepath.Join(string(filepath.Separator), "elsewhere", ".git")
	if !m.Matches(outside) {
		t.Error("fallback expression lost for outside paths")
	}
}

func TestSearchMatcherLayersSections(t *testing.T) {
	ws, root := newTestWorkspace(t)
	cfg := newTestConfig(t)

	m := NewSearchMatcher(ws, cfg)
	defer m.Dispose()

	// search.exclude patterns apply on top of files.exclude.
	if !m.Matches(filepath.Join(root, "sub", "node_modules")) {
		t.Error("search.exclude pattern **/node_modules not applied")
	}
	if !m.Matches(filepath.Join(root, ".git")) {
		t.Error("files.exclude patterns not layered into search matcher")
	}

	fired := 0
	sub := m.OnExpressionChange(func() { fired++ })
	defer sub.Unsubscribe()

	if err := cfg.Set("search.exclude", map[string]any{"**/fixtures": true}); err != nil {
		t.Fatal(err)
	}
	if fired != 1 {
		t.Errorf("change signal fired %d times, want 1", fired)
	}
	if !m.Matches(filepath.Join(root, "test", "fixtures")) {
		t.Error("search matcher did not follow search.exclude update")
	}
}

func TestWatcherMatcherSection(t *testing.T) {
	ws, root := newTestWorkspace(t)
	cfg := newTestConfig(t)

	m := NewWatcherMatcher(ws, cfg)
	defer m.Dispose()

	if !m.Matches(filepath.Join(root, "node_modules", "pkg", "index.js")) {
		t.Error("default watcherExclude **/node_modules/** not applied")
	}
	if m.Matches(filepath.Join(root, "src", "index.js")) {
		t.Error("source path excluded by watcher matcher")
	}
}
