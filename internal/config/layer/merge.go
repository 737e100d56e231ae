package layer

import "strings"

// DeepMerge recursively merges src into dst. Values in src override
// values in dst. Maps merge recursively; any other type is replaced.
func DeepMerge(dst, src map[string]any) map[string]any {
	if dst == nil {
		dst = make(map[string]any)
	}
	if src == nil {
		return dst
	}

	for key, srcVal := range src {
		dstVal, exists := dst[key]
		if !exists {
			dst[key] = cloneValue(srcVal)
			continue
		}

		srcMap, srcIsMap := srcVal.(map[string]any)
		dstMap, dstIsMap := dstVal.(map[string]any)
		if srcIsMap && dstIsMap {
			dst[key] = DeepMerge(dstMap, srcMap)
		} else {
			dst[key] = cloneValue(srcVal)
		}
	}
	return dst
}

// GetByPath retrieves a value from a nested map using a dot-separated
// path. A key containing dots is tried literally first, so settings keys
// like "files.exclude" resolve whether they were stored flat or nested.
func GetByPath(data map[string]any, path string) (any, bool) {
	if data == nil {
		return nil, false
	}

	if val, ok := data[path]; ok {
		return val, true
	}

	parts := strings.Split(path, ".")
	current := any(data)

	for _, part := range parts {
		m, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		val, exists := m[part]
		if !exists {
			return nil, false
		}
		current = val
	}
	return current, true
}

// SetByPath sets a value in a nested map using a dot-separated path,
// creating intermediate maps as needed. An existing literal dotted key
// is updated in place.
func SetByPath(data map[string]any, path string, value any) {
	if data == nil {
		return
	}

	if _, ok := data[path]; ok {
		data[path] = value
		return
	}

	parts := strings.Split(path, ".")
	current := data

	for i, part := range parts {
		if i == len(parts)-1 {
			current[part] = value
			return
		}

		next, ok := current[part].(map[string]any)
		if !ok {
			next = make(map[string]any)
			current[part] = next
		}
		current = next
	}
}

// DeleteByPath removes a value at a dot-separated path. Returns true if
// a value was removed.
func DeleteByPath(data map[string]any, path string) bool {
	if data == nil {
		return false
	}

	if _, ok := data[path]; ok {
		delete(data, path)
		return true
	}

	parts := strings.Split(path, ".")
	current := data

	for i, part := range parts {
		if i == len(parts)-1 {
			if _, ok := current[part]; ok {
				delete(current, part)
				return true
			}
			return false
		}

		next, ok := current[part].(map[string]any)
		if !ok {
			return false
		}
		current = next
	}
	return false
}
