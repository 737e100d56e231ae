package workspace

import (
	"context"
	"path/filepath"
	"testing"
)

func TestNewFromPaths(t *testing.T) {
	dir1 := t.TempDir()
	dir2 := t.TempDir()

	ws, err := NewFromPaths(dir1, dir2)
	if err != nil {
		t.Fatalf("NewFromPaths() error: %v", err)
	}

	if ws.FolderCount() != 2 {
		t.Errorf("FolderCount() = %d, want 2", ws.FolderCount())
	}
	if !ws.IsMultiRoot() {
		t.Error("IsMultiRoot() = false, want true")
	}
	if ws.Root() != dir1 {
		t.Errorf("Root() = %q, want %q", ws.Root(), dir1)
	}

	folders := ws.Folders()
	if folders[0].Name != filepath.Base(dir1) {
		t.Errorf("folder name = %q, want %q", folders[0].Name, filepath.Base(dir1))
	}
	if folders[0].URI == "" {
		t.Error("folder URI is empty")
	}
}

func TestNewFromPaths_Empty(t *testing.T) {
	if _, err := NewFromPaths(); err != ErrNoFolders {
		t.Errorf("NewFromPaths() error = %v, want ErrNoFolders", err)
	}
}

func TestWorkspace_AddRemoveFolder(t *testing.T) {
	ctx := context.Background()
	dir1 := t.TempDir()
	dir2 := t.TempDir()

	ws, err := NewFromPath(dir1)
	if err != nil {
		t.Fatalf("NewFromPath() error: %v", err)
	}

	var events []ChangeEvent
	sub := ws.OnChange(func(ev ChangeEvent) {
		events = append(events, ev)
	})
	defer sub.Unsubscribe()

	if err := ws.AddFolder(ctx, dir2); err != nil {
		t.Fatalf("AddFolder() error: %v", err)
	}
	if err := ws.AddFolder(ctx, dir2); err != ErrFolderExists {
		t.Errorf("duplicate AddFolder() error = %v, want ErrFolderExists", err)
	}

	if err := ws.RemoveFolder(ctx, dir1); err != nil {
		t.Fatalf("RemoveFolder() error: %v", err)
	}
	if err := ws.RemoveFolder(ctx, dir1); err != ErrFolderNotFound {
		t.Errorf("RemoveFolder() again error = %v, want ErrFolderNotFound", err)
	}

	if len(events) != 2 {
		t.Fatalf("received %d change events, want 2", len(events))
	}
	if events[0].Type != ChangeFolderAdded || events[0].Folders[0].Path != dir2 {
		t.Errorf("first event = %+v, want folder-added for %s", events[0], dir2)
	}
	if events[1].Type != ChangeFolderRemoved || events[1].Folders[0].Path != dir1 {
		t.Errorf("second event = %+v, want folder-removed for %s", events[1], dir1)
	}
}

func TestWorkspace_ContainingFolder(t *testing.T) {
	dir := t.TempDir()
	other := t.TempDir()

	ws, err := NewFromPath(dir)
	if err != nil {
		t.Fatalf("NewFromPath() error: %v", err)
	}

	inside := filepath.Join(dir, "src", "main.go")
	folder, ok := ws.ContainingFolder(inside)
	if !ok {
		t.Fatalf("ContainingFolder(%q) not found", inside)
	}
	if folder.Path != dir {
		t.Errorf("ContainingFolder() = %q, want %q", folder.Path, dir)
	}

	if _, ok := ws.ContainingFolder(filepath.Join(other, "x.txt")); ok {
		t.Error("path outside workspace reported as contained")
	}

	// The root itself is contained.
	if !ws.IsInWorkspace(dir) {
		t.Error("workspace root not reported as contained")
	}

	// A sibling with the root as a name prefix is not contained.
	if ws.IsInWorkspace(dir + "x") {
		t.Error("prefix-named sibling reported as contained")
	}
}

func TestWorkspace_RelativePath(t *testing.T) {
	dir := t.TempDir()

	ws, err := NewFromPath(dir)
	if err != nil {
		t.Fatalf("NewFromPath() error: %v", err)
	}

	rel, err := ws.RelativePath(filepath.Join(dir, "src", "file.txt"))
	if err != nil {
		t.Fatalf("RelativePath() error: %v", err)
	}
	if rel != filepath.Join("src", "file.txt") {
		t.Errorf("RelativePath() = %q, want src/file.txt", rel)
	}

	if _, err := ws.RelativePath("/nonexistent-root/file.txt"); err != ErrFolderNotFound {
		t.Errorf("RelativePath() outside error = %v, want ErrFolderNotFound", err)
	}
}

func TestWorkspace_Closed(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	ws, err := NewFromPath(dir)
	if err != nil {
		t.Fatalf("NewFromPath() error: %v", err)
	}

	if err := ws.Close(ctx); err != nil {
		t.Fatalf("Close() error: %v", err)
	}
	if !ws.IsClosed() {
		t.Error("IsClosed() = false after Close")
	}
	if err := ws.AddFolder(ctx, dir); err != ErrWorkspaceClosed {
		t.Errorf("AddFolder() on closed error = %v, want ErrWorkspaceClosed", err)
	}

	// Subscriptions after close are inert, not panics.
	sub := ws.OnChange(func(ChangeEvent) {})
	sub.Unsubscribe()
}

func TestPathToURI_RoundTrip(t *testing.T) {
	dir := t.TempDir()

	uri := PathToURI(dir)
	path, err := URIToPath(uri)
	if err != nil {
		t.Fatalf("URIToPath() error: %v", err)
	}
	if path != dir {
		t.Errorf("round trip = %q, want %q", path, dir)
	}
}

func TestURIToPath_Invalid(t *testing.T) {
	if _, err := URIToPath("https://example.com/x"); err != ErrInvalidPath {
		t.Errorf("URIToPath(https) error = %v, want ErrInvalidPath", err)
	}
}

func TestWorkspace_SetSettings(t *testing.T) {
	dir := t.TempDir()

	ws, err := NewFromPath(dir)
	if err != nil {
		t.Fatalf("NewFromPath() error: %v", err)
	}

	var got ChangeEvent
	sub := ws.OnChange(func(ev ChangeEvent) { got = ev })
	defer sub.Unsubscribe()

	ws.SetSettings(map[string]any{"files.exclude": map[string]any{"**/*.log": true}})

	if got.Type != ChangeSettingsUpdated {
		t.Errorf("change type = %v, want ChangeSettingsUpdated", got.Type)
	}
	if ws.Settings() == nil {
		t.Error("Settings() = nil after SetSettings")
	}
}
