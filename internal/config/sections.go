package config

// FilesConfig is a snapshot of the files.* settings section.
type FilesConfig struct {
	// Exclude maps glob patterns to their raw exclusion values, as in
	// the files.exclude setting. Values are bool or {"when": string}.
	Exclude map[string]any

	// WatcherExclude maps glob patterns excluded from file watching.
	WatcherExclude map[string]any

	// CaseSensitive controls path comparison in glob matching.
	CaseSensitive bool
}

// SearchConfig is a snapshot of the search.* settings section.
type SearchConfig struct {
	// Exclude maps glob patterns excluded from search, layered on top
	// of files.exclude by consumers.
	Exclude map[string]any
}

// Files returns the files section from the merged configuration.
func (c *Config) Files() FilesConfig {
	fc := FilesConfig{}
	if m, ok := c.GetStringMap("files.exclude"); ok {
		fc.Exclude = m
	}
	if m, ok := c.GetStringMap("files.watcherExclude"); ok {
		fc.WatcherExclude = m
	}
	if b, ok := c.GetBool("files.caseSensitive"); ok {
		fc.CaseSensitive = b
	}
	return fc
}

// FilesForFolder returns the files section as seen from one workspace
// folder, honoring that folder's settings overlay.
func (c *Config) FilesForFolder(folderURI string) FilesConfig {
	fc := FilesConfig{}
	if m, ok := c.folderStringMap(folderURI, "files.exclude"); ok {
		fc.Exclude = m
	}
	if m, ok := c.folderStringMap(folderURI, "files.watcherExclude"); ok {
		fc.WatcherExclude = m
	}
	if val, ok := c.FolderValue(folderURI, "files.caseSensitive"); ok {
		if b, isBool := val.(bool); isBool {
			fc.CaseSensitive = b
		}
	}
	return fc
}

// Search returns the search section from the merged configuration.
func (c *Config) Search() SearchConfig {
	sc := SearchConfig{}
	if m, ok := c.GetStringMap("search.exclude"); ok {
		sc.Exclude = m
	}
	return sc
}

// SearchForFolder returns the search section as seen from one workspace
// folder, honoring that folder's settings overlay.
func (c *Config) SearchForFolder(folderURI string) SearchConfig {
	sc := SearchConfig{}
	if m, ok := c.folderStringMap(folderURI, "search.exclude"); ok {
		sc.Exclude = m
	}
	return sc
}

func (c *Config) folderStringMap(folderURI, path string) (map[string]any, bool) {
	val, ok := c.FolderValue(folderURI, path)
	if !ok {
		return nil, false
	}
	m, ok := val.(map[string]any)
	return m, ok
}
