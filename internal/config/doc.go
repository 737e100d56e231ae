// Package config implements the workscope configuration system.
//
// Settings are organized in priority-ordered layers: built-in defaults,
// the user settings file, the workspace file's settings block,
// environment variables and session overrides. Higher layers shadow
// lower ones via deep map merging.
//
// Each workspace folder may carry a settings overlay at
// <root>/.workscope/settings.{toml,json,yaml}. An overlay value for a
// path replaces the merged global value outright for that folder; there
// is no per-key merging between the two.
//
// The package supports TOML, JSON and YAML settings files, live reload
// through a polling file watcher, and change notification via the
// notify subpackage.
package config
