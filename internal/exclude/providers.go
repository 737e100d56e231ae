package exclude

import (
	"github.com/dshills/workscope/internal/config"
	"github.com/dshills/workscope/internal/config/notify"
	"github.com/dshills/workscope/internal/glob"
	"github.com/dshills/workscope/internal/workspace"
)

// configProvider builds a Provider over a settings path. Folders answer
// from their overlay-aware view; the nil-folder fallback answers from
// the merged global stack. A folder overlay replaces the global value
// outright rather than merging with it.
func configProvider(cfg *config.Config, path string) Provider {
	return func(folder *workspace.Folder) glob.Expression {
		var raw map[string]any
		var ok bool
		if folder == nil {
			raw, ok = cfg.GetStringMap(path)
		} else {
			val, found := cfg.FolderValue(folder.URI, path)
			if found {
				raw, ok = val.(map[string]any)
			}
		}
		if !ok {
			return nil
		}
		return glob.ParseExpression(raw)
	}
}

// affectsPredicate accepts changes that touch any of the given settings
// paths.
func affectsPredicate(paths ...string) UpdatePredicate {
	return func(change notify.Change) bool {
		for _, p := range paths {
			if change.Affects(p) {
				return true
			}
		}
		return false
	}
}

// NewFilesMatcher matches paths against files.exclude.
func NewFilesMatcher(ws *workspace.Workspace, cfg *config.Config, opts ...Option) *Matcher {
	return NewMatcher(ws, cfg.Notifier(),
		configProvider(cfg, "files.exclude"),
		affectsPredicate("files.exclude"),
		opts...)
}

// NewWatcherMatcher matches paths against files.watcherExclude.
func NewWatcherMatcher(ws *workspace.Workspace, cfg *config.Config, opts ...Option) *Matcher {
	return NewMatcher(ws, cfg.Notifier(),
		configProvider(cfg, "files.watcherExclude"),
		affectsPredicate("files.watcherExclude"),
		opts...)
}

// NewSearchMatcher matches paths against search.exclude layered over
// files.exclude, the way search features treat the two sections.
func NewSearchMatcher(ws *workspace.Workspace, cfg *config.Config, opts ...Option) *Matcher {
	files := configProvider(cfg, "files.exclude")
	search := configProvider(cfg, "search.exclude")

	provider := func(folder *workspace.Folder) glob.Expression {
		expr := files(folder).Clone()
		if expr == nil {
			return search(folder)
		}
		for pattern, entry := range search(folder) {
			expr[pattern] = entry
		}
		return expr
	}

	return NewMatcher(ws, cfg.Notifier(), provider,
		affectsPredicate("files.exclude", "search.exclude"),
		opts...)
}
