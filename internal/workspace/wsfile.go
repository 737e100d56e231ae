package workspace

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// File is the on-disk .workscope workspace file. The folder entries are
// compatible with VS Code workspace files.
type File struct {
	// Folders is the list of workspace folders.
	Folders []FolderEntry `json:"folders"`

	// Settings contains workspace-level settings.
	Settings map[string]any `json:"settings,omitempty"`
}

// FolderEntry is a folder entry in a workspace file.
type FolderEntry struct {
	// Path is the folder path, relative to the workspace file or absolute.
	Path string `json:"path"`

	// Name is an optional display name for the folder.
	Name string `json:"name,omitempty"`
}

// LoadFile loads a workspace file.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	return &f, nil
}

// SaveFile writes a workspace file.
func SaveFile(path string, f *File) error {
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// OpenFromFile creates a Workspace from a workspace file. Relative folder
// paths are resolved against the file's directory.
func OpenFromFile(path string) (*Workspace, error) {
	f, err := LoadFile(path)
	if err != nil {
		return nil, err
	}

	baseDir := filepath.Dir(path)

	paths := make([]string, 0, len(f.Folders))
	for _, entry := range f.Folders {
		folderPath := entry.Path
		if !filepath.IsAbs(folderPath) {
			folderPath = filepath.Join(baseDir, folderPath)
		}
		paths = append(paths, filepath.Clean(folderPath))
	}

	ws, err := NewFromPaths(paths...)
	if err != nil {
		return nil, err
	}

	for i, entry := range f.Folders {
		if entry.Name != "" && i < len(ws.folders) {
			ws.folders[i].Name = entry.Name
		}
	}

	if f.Settings != nil {
		ws.settings = f.Settings
	}
	return ws, nil
}

// SaveToFile writes the workspace to a workspace file, with folder paths
// relative to the file where possible.
func (w *Workspace) SaveToFile(path string) error {
	w.mu.RLock()
	folders := make([]Folder, len(w.folders))
	copy(folders, w.folders)
	settings := w.settings
	w.mu.RUnlock()

	baseDir := filepath.Dir(path)

	entries := make([]FolderEntry, len(folders))
	for i, folder := range folders {
		relPath, err := filepath.Rel(baseDir, folder.Path)
		if err != nil {
			relPath = folder.Path
		}
		entries[i] = FolderEntry{
			Path: filepath.ToSlash(relPath),
			Name: folder.Name,
		}
	}

	return SaveFile(path, &File{
		Folders:  entries,
		Settings: settings,
	})
}
