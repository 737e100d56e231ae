// Package loader provides configuration file loading.
//
// Loaders parse settings files (TOML, JSON, YAML) and environment
// variables into nested configuration maps consumed by the layer system.
package loader

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Loader is the interface for configuration loaders.
type Loader interface {
	// Load reads configuration from the source and returns a map.
	// Returns nil, nil if the source doesn't exist (not an error).
	Load() (map[string]any, error)
}

// FileLoader is the interface for loaders that read from files.
type FileLoader interface {
	Loader
	// LoadFrom reads configuration from a specific path.
	LoadFrom(path string) (map[string]any, error)
}

// ReaderLoader is the interface for loaders that read from io.Reader.
type ReaderLoader interface {
	// LoadFromReader reads configuration from a reader.
	LoadFromReader(r io.Reader) (map[string]any, error)
}

// FileSystem is an abstraction for file system operations, allowing
// tests to use in-memory file systems.
type FileSystem interface {
	fs.FS
	// ReadFile reads the entire file at path.
	ReadFile(path string) ([]byte, error)
	// Stat returns file info for path.
	Stat(path string) (fs.FileInfo, error)
}

// OSFS implements FileSystem using the real OS file system.
type OSFS struct{}

// Open implements fs.FS.
func (OSFS) Open(name string) (fs.File, error) {
	return os.Open(name)
}

// ReadFile reads the entire file at path.
func (OSFS) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// Stat returns file info for path.
func (OSFS) Stat(path string) (fs.FileInfo, error) {
	return os.Stat(path)
}

// DefaultFS returns the default file system (OS).
func DefaultFS() FileSystem {
	return OSFS{}
}

// ParseError describes a failure to parse a configuration file.
type ParseError struct {
	// Path is the file that failed to parse.
	Path string
	// Message describes the parse error.
	Message string
	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error in %s: %s", e.Path, e.Message)
}

// Unwrap returns the underlying error.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// ForPath returns a loader appropriate for the file's extension, or nil
// for unsupported extensions.
func ForPath(path string) FileLoader {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return NewTOMLLoader(path)
	case ".json":
		return NewJSONLoader(path)
	case ".yaml", ".yml":
		return NewYAMLLoader(path)
	default:
		return nil
	}
}

// SettingsExtensions lists the supported settings file extensions in
// lookup order.
var SettingsExtensions = []string{".toml", ".json", ".yaml", ".yml"}

// FindSettingsFile returns the first existing settings file named base
// with a supported extension under dir, or "" if none exists.
func FindSettingsFile(fsys FileSystem, dir, base string) string {
	for _, ext := range SettingsExtensions {
		path := filepath.Join(dir, base+ext)
		if _, err := fsys.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
