package layer

import (
	"sort"
	"sync"
)

// Manager holds configuration layers and serves merged access.
type Manager struct {
	mu     sync.RWMutex
	layers []*Layer       // sorted by priority ascending
	merged map[string]any // cached merge result
	dirty  bool
}

// NewManager creates a new layer manager.
func NewManager() *Manager {
	return &Manager{
		layers: make([]*Layer, 0),
		dirty:  true,
	}
}

// AddLayer adds a layer. Layers are kept sorted by priority.
func (m *Manager) AddLayer(l *Layer) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.layers = append(m.layers, l)
	m.sortLayers()
	m.dirty = true
}

// RemoveLayer removes a layer by name. Returns true if it was present.
func (m *Manager) RemoveLayer(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, l := range m.layers {
		if l.Name == name {
			m.layers = append(m.layers[:i], m.layers[i+1:]...)
			m.dirty = true
			return true
		}
	}
	return false
}

// ReplaceLayer swaps the data of the named layer, adding the layer if it
// does not exist yet.
func (m *Manager) ReplaceLayer(name string, source Source, data map[string]any) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, l := range m.layers {
		if l.Name == name {
			l.Data = data
			l.Source = source
			l.Priority = DefaultPriority(source)
			m.dirty = true
			m.sortLayers()
			return
		}
	}

	m.layers = append(m.layers, NewLayerWithData(name, source, data))
	m.sortLayers()
	m.dirty = true
}

// GetLayer returns a layer by name, or nil.
func (m *Manager) GetLayer(name string) *Layer {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, l := range m.layers {
		if l.Name == name {
			return l
		}
	}
	return nil
}

// Layers returns a copy of all layers sorted by priority.
func (m *Manager) Layers() []*Layer {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*Layer, len(m.layers))
	copy(result, m.layers)
	return result
}

// LayerCount returns the number of layers.
func (m *Manager) LayerCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.layers)
}

// Merge combines all layers into one configuration map, lowest priority
// first. The result is cached until a layer changes, and callers get a
// copy so they cannot corrupt the cache.
func (m *Manager) Merge() map[string]any {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.dirty && m.merged != nil {
		return cloneMap(m.merged)
	}

	result := make(map[string]any)
	for _, l := range m.layers {
		result = DeepMerge(result, l.Data)
	}

	m.merged = result
	m.dirty = false
	return cloneMap(result)
}

// Get returns the merged value at a dot-separated path.
func (m *Manager) Get(path string) (any, bool) {
	return GetByPath(m.Merge(), path)
}

// Invalidate marks the merge cache stale, for callers that mutate layer
// data in place.
func (m *Manager) Invalidate() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dirty = true
}

// sortLayers orders layers by ascending priority. Stable so equal
// priorities keep insertion order.
func (m *Manager) sortLayers() {
	sort.SliceStable(m.layers, func(i, j int) bool {
		return m.layers[i].Priority < m.layers[j].Priority
	})
}
