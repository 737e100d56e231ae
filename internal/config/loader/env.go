package loader

import (
	"os"
	"strconv"
	"strings"
)

// EnvLoader loads configuration from environment variables.
type EnvLoader struct {
	prefix  string            // Environment variable prefix (e.g. "WORKSCOPE_")
	mapping map[string]string // Env var -> config path
}

// NewEnvLoader creates a new environment variable loader. The prefix
// should include the trailing underscore (e.g. "WORKSCOPE_").
func NewEnvLoader(prefix string) *EnvLoader {
	return &EnvLoader{
		prefix:  prefix,
		mapping: defaultEnvMapping(),
	}
}

// NewEnvLoaderWithMapping creates a loader with custom mappings.
func NewEnvLoaderWithMapping(prefix string, mapping map[string]string) *EnvLoader {
	return &EnvLoader{
		prefix:  prefix,
		mapping: mapping,
	}
}

// defaultEnvMapping returns the default environment variable mappings.
func defaultEnvMapping() map[string]string {
	return map[string]string{
		"WORKSCOPE_CONFIG_DIR":     "paths.configDir",
		"WORKSCOPE_CASE_SENSITIVE": "files.caseSensitive",
	}
}

// Load reads environment variables and returns a configuration map.
// Empty string values are treated as valid values, not as unset.
func (l *EnvLoader) Load() (map[string]any, error) {
	config := make(map[string]any)

	// Explicitly mapped variables first
	for env, path := range l.mapping {
		if val, ok := os.LookupEnv(env); ok {
			setByPath(config, path, parseValue(val))
		}
	}

	// Then any other prefixed variables: WORKSCOPE_FILES_ENCODING
	// becomes files.encoding.
	for _, env := range os.Environ() {
		if !strings.HasPrefix(env, l.prefix) {
			continue
		}

		parts := strings.SplitN(env, "=", 2)
		if len(parts) != 2 {
			continue
		}
		name, value := parts[0], parts[1]

		if _, ok := l.mapping[name]; ok {
			continue
		}

		setByPath(config, l.envToPath(name), parseValue(value))
	}

	return config, nil
}

// envToPath converts WORKSCOPE_FILES_ENCODING to files.encoding.
func (l *EnvLoader) envToPath(name string) string {
	trimmed := strings.TrimPrefix(name, l.prefix)
	parts := strings.Split(strings.ToLower(trimmed), "_")
	return strings.Join(parts, ".")
}

// parseValue converts an env string to bool, int, float or string.
func parseValue(val string) any {
	if b, err := strconv.ParseBool(val); err == nil {
		return b
	}
	if i, err := strconv.Atoi(val); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(val, 64); err == nil {
		return f
	}
	return val
}

// setByPath writes a value into a nested map at a dot path.
func setByPath(data map[string]any, path string, value any) {
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
