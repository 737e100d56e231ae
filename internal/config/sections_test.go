package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/dshills/workscope/internal/workspace"
)

func TestFilesSectionDefaults(t *testing.T) {
	cfg := newTestConfig(t)

	fc := cfg.Files()
	if _, ok := fc.Exclude["**/.git"]; !ok {
		t.Error("Files().Exclude missing **/.git")
	}
	if _, ok := fc.WatcherExclude["**/node_modules/**"]; !ok {
		t.Error("Files().WatcherExclude missing **/node_modules/**")
	}
	if fc.CaseSensitive {
		t.Error("CaseSensitive default should be false")
	}
}

func TestSearchSectionDefaults(t *testing.T) {
	cfg := newTestConfig(t)

	sc := cfg.Search()
	if _, ok := sc.Exclude["**/node_modules"]; !ok {
		t.Error("Search().Exclude missing **/node_modules")
	}
}

func TestFilesForFolderUsesOverlay(t *testing.T) {
	cfg := newTestConfig(t)

	root := t.TempDir()
	overlayDir := filepath.Join(root, overlayDirName)
	if err := os.MkdirAll(overlayDir, 0o755); err != nil {
		t.Fatal(err)
	}
	overlay := `
[files.exclude]
"dist/**" = true
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

	uri := ws.Folders()[0].URI
	fc := cfg.FilesForFolder(uri)
	if _, ok := fc.Exclude["dist/**"]; !ok {
		t.Error("FilesForFolder missing overlay pattern dist/**")
	}
	if _, ok := fc.Exclude["**/.git"]; ok {
		t.Error("FilesForFolder merged defaults into overlay value")
	}

	// Unoverlaid sections still come from the global stack.
	if _, ok := fc.WatcherExclude["**/node_modules/**"]; !ok {
		t.Error("FilesForFolder lost global watcherExclude fallthrough")
	}
}

func TestSearchForFolderFallsThrough(t *testing.T) {
	cfg := newTestConfig(t)

	ws, err := workspace.NewFromPath(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer ws.Close(context.Background())
	cfg.AttachWorkspace(ws)

	uri := ws.Folders()[0].URI
	sc := cfg.SearchForFolder(uri)
	if _, ok := sc.Exclude["**/node_modules"]; !ok {
		t.Error("SearchForFolder lost global fallthrough")
	}
}
