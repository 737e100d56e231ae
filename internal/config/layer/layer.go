// Package layer provides priority-merged configuration layers.
//
// Each configuration source (built-in defaults, user settings, the
// workspace file, folder overlays, environment variables) is one layer;
// higher priority layers override values from lower ones.
package layer

import "time"

// Layer is a single configuration source.
type Layer struct {
	// Name identifies the layer (e.g. "user", "workspace", "defaults").
	Name string

	// Priority determines merge order (higher overrides lower).
	Priority int

	// Source indicates where this layer was loaded from.
	Source Source

	// Path is the file path, when loaded from a file.
	Path string

	// Data holds the configuration values as a nested map.
	Data map[string]any

	// ModTime is when the source was last modified.
	ModTime time.Time
}

// NewLayer creates an empty layer with the source's default priority.
func NewLayer(name string, source Source) *Layer {
	return NewLayerWithData(name, source, make(map[string]any))
}

// NewLayerWithData creates a layer with initial data.
func NewLayerWithData(name string, source Source, data map[string]any) *Layer {
	return &Layer{
		Name:     name,
		Source:   source,
		Priority: DefaultPriority(source),
		Data:     data,
		ModTime:  time.Now(),
	}
}

// Clone creates a deep copy of the layer.
func (l *Layer) Clone() *Layer {
	return &Layer{
		Name:     l.Name,
		Priority: l.Priority,
		Source:   l.Source,
		Path:     l.Path,
		Data:     cloneMap(l.Data),
		ModTime:  l.ModTime,
	}
}

// Source indicates where a configuration layer came from.
type Source uint8

const (
	// SourceBuiltin represents built-in default configuration.
	SourceBuiltin Source = iota
	// SourceUser represents user global config (~/.config/workscope/).
	SourceUser
	// SourceWorkspace represents settings from the workspace file.
	SourceWorkspace
	// SourceFolder represents a per-folder settings overlay.
	SourceFolder
	// SourceEnv represents environment variables.
	SourceEnv
	// SourceSession represents in-memory session overrides.
	SourceSession
)

// String returns a human-readable name for the source.
func (s Source) String() string {
	switch s {
	case SourceBuiltin:
		return "builtin"
	case SourceUser:
		return "user"
	case SourceWorkspace:
		return "workspace"
	case SourceFolder:
		return "folder"
	case SourceEnv:
		return "environment"
	case SourceSession:
		return "session"
	default:
		return "unknown"
	}
}

// Standard priority levels. Higher values override lower ones.
const (
	PriorityBuiltin   = 0
	PriorityUser      = 100
	PriorityWorkspace = 200
	PriorityFolder    = 300
	PriorityEnv       = 500
	PrioritySession   = 1000
)

// DefaultPriority returns the default priority for a source.
func DefaultPriority(source Source) int {
	switch source {
	case SourceBuiltin:
		return PriorityBuiltin
	case SourceUser:
		return PriorityUser
	case SourceWorkspace:
		return PriorityWorkspace
	case SourceFolder:
		return PriorityFolder
	case SourceEnv:
		return PriorityEnv
	case SourceSession:
		return PrioritySession
	default:
		return PriorityBuiltin
	}
}

// cloneMap creates a deep copy of a map.
func cloneMap(src map[string]any) map[string]any {
	if src == nil {
		return nil
	}

	dst := make(map[string]any, len(src))
	for key, val := range src {
		dst[key] = cloneValue(val)
	}
	return dst
}

// cloneSlice creates a deep copy of a slice.
func cloneSlice(src []any) []any {
	if src == nil {
		return nil
	}

	dst := make([]any, len(src))
	for i, val := range src {
		dst[i] = cloneValue(val)
	}
	return dst
}

// cloneValue creates a deep copy of a value.
func cloneValue(val any) any {
	switch v := val.(type) {
	case map[string]any:
		return cloneMap(v)
	case []any:
		return cloneSlice(v)
	default:
		return val
	}
}
