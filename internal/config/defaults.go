package config

// DefaultSettings returns the built-in defaults layer. The exclusion
// defaults follow common editor conventions: version-control metadata
// is hidden everywhere, dependency and build trees stay visible in the
// file tree but are skipped by search, and high-churn directories are
// kept away from the file watcher.
func DefaultSettings() map[string]any {
	return map[string]any{
		"files": map[string]any{
			"exclude": map[string]any{
				"**/.git":      true,
				"**/.svn":      true,
				"**/.hg":       true,
				"**/.DS_Store": true,
				"**/Thumbs.db": true,
			},
			"watcherExclude": map[string]any{
				"**/.git/objects/**":       true,
				"**/.git/subtree-cache/**": true,
				"**/node_modules/**":       true,
				"**/target/**":             true,
			},
		},
		"search": map[string]any{
			"exclude": map[string]any{
				"**/node_modules":     true,
				"**/bower_components": true,
				"**/vendor":           true,
				"**/dist":             true,
				"**/build":            true,
			},
		},
	}
}
