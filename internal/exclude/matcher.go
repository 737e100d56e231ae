// Package exclude keeps per-folder glob exclusion matchers in sync with
// configuration and workspace state.
//
// A Matcher holds one compiled glob expression per workspace folder,
// keyed by folder URI, plus a fallback expression for paths outside
// every folder. When configuration changes or folders come and go, the
// matcher resynchronizes: expressions that are deep-equal to the stored
// ones are kept as-is, so callers observing the compiled matchers see
// stable references across no-op updates.
package exclude

import (
	"path/filepath"
	"sync"

	"github.com/dshills/workscope/internal/config/notify"
	"github.com/dshills/workscope/internal/event"
	"github.com/dshills/workscope/internal/glob"
	"github.com/dshills/workscope/internal/workspace"
)

// noRootKey keys the fallback expression used for paths that belong to
// no workspace folder. It can never collide with a folder URI and is
// never removed when folders change.
const noRootKey = "\x00noRoot"

// Provider supplies the exclusion expression for one workspace folder.
// A nil folder requests the global expression used as the fallback for
// paths outside every folder. Returning nil means "no exclusions".
type Provider func(folder *workspace.Folder) glob.Expression

// UpdatePredicate reports whether a configuration change is relevant to
// a matcher. Irrelevant changes are ignored without resynchronizing.
type UpdatePredicate func(change notify.Change) bool

// Matcher answers exclusion queries for absolute paths against
// per-folder compiled glob expressions.
type Matcher struct {
	mu sync.RWMutex

	ws        *workspace.Workspace
	provider  Provider
	relevant  UpdatePredicate
	compileOp []glob.Option

	// Raw expressions and their compiled forms, keyed by folder URI
	// (plus noRootKey). Both maps are updated together.
	expressions map[string]glob.Expression
	compiled    map[string]*glob.CompiledExpression

	onChange *event.Signal
	disposer event.Disposer
}

// Option configures a Matcher.
type Option func(*Matcher)

// WithSiblingLookup enables "when" sibling clauses in compiled
// expressions, using fn to test for sibling file existence.
func WithSiblingLookup(fn glob.SiblingLookup) Option {
	return func(m *Matcher) {
		m.compileOp = append(m.compileOp, glob.WithSiblingLookup(fn))
	}
}

// NewMatcher creates a matcher bound to a workspace, resynchronizing
// whenever notifier reports a change accepted by shouldUpdate or the
// workspace folder set changes. A nil shouldUpdate accepts every change;
// a nil notifier disables configuration-driven updates.
func NewMatcher(ws *workspace.Workspace, notifier *notify.Notifier, provider Provider, shouldUpdate UpdatePredicate, opts ...Option) *Matcher {
	if shouldUpdate == nil {
		shouldUpdate = func(notify.Change) bool { return true }
	}

	m := &Matcher{
		ws:          ws,
		provider:    provider,
		relevant:    shouldUpdate,
		expressions: make(map[string]glob.Expression),
		compiled:    make(map[string]*glob.CompiledExpression),
		onChange:    event.NewSignal(),
	}

	for _, opt := range opts {
		opt(m)
	}

	m.synchronize(false)

	if notifier != nil {
		sub := notifier.Subscribe(func(change notify.Change) {
			if !m.relevant(change) {
				return
			}
			m.synchronize(true)
		})
		m.disposer.Add(sub.Unsubscribe)
	}

	wsSub := ws.OnChange(func(workspace.ChangeEvent) {
		m.synchronize(true)
	})
	m.disposer.Add(wsSub.Unsubscribe)
	m.disposer.Add(m.onChange.Close)

	return m
}

// synchronize rebuilds the expression maps from the provider and the
// workspace's current folder set. When fired by an external event it
// emits at most one change signal, and only if something changed.
func (m *Matcher) synchronize(firedByEvent bool) {
	if m.disposer.Disposed() {
		return
	}

	m.mu.Lock()

	changed := false
	active := map[string]bool{noRootKey: true}

	for _, folder := range m.ws.Folders() {
		active[folder.URI] = true
		f := folder
		if m.refreshLocked(folder.URI, m.provider(&f)) {
			changed = true
		}
	}

	// Drop roots that left the workspace. The fallback entry stays.
	for key := range m.expressions {
		if active[key] {
			continue
		}
		delete(m.expressions, key)
		delete(m.compiled, key)
		changed = true
	}

	if m.refreshLocked(noRootKey, m.provider(nil)) {
		changed = true
	}

	m.mu.Unlock()

	if firedByEvent && changed {
		m.onChange.Emit()
	}
}

// refreshLocked stores and compiles expr under key unless it is
// deep-equal to the expression already stored there. Equal expressions
// leave the existing compiled matcher untouched.
func (m *Matcher) refreshLocked(key string, expr glob.Expression) bool {
	if existing, ok := m.expressions[key]; ok && existing.Equal(expr) {
		return false
	}

	m.expressions[key] = expr.Clone()
	m.compiled[key] = glob.Compile(expr, m.compileOp...)
	return true
}

// lookup picks the compiled expression and query path for an absolute
// path: paths inside a folder are matched relative to that folder's
// root, paths outside every folder are matched as-is against the
// fallback expression.
func (m *Matcher) lookup(path string) (*glob.CompiledExpression, string) {
	key := noRootKey
	query := path

	if folder, ok := m.ws.ContainingFolder(path); ok {
		if rel, err := m.ws.RelativePath(path); err == nil {
			key = folder.URI
			query = rel
		}
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.compiled[key], filepath.ToSlash(query)
}

// Matches reports whether the path is excluded.
func (m *Matcher) Matches(path string) bool {
	ce, query := m.lookup(path)
	return ce.Matches(query)
}

// Pattern returns the glob pattern that excludes the path, if any.
func (m *Matcher) Pattern(path string) (string, bool) {
	ce, query := m.lookup(path)
	return ce.Match(query)
}

// Expression returns the stored raw expression for a folder URI, or the
// fallback expression when uri is empty.
func (m *Matcher) Expression(uri string) glob.Expression {
	if uri == "" {
		uri = noRootKey
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.expressions[uri].Clone()
}

// OnExpressionChange registers fn to run after an event-driven
// resynchronization actually changed at least one expression.
func (m *Matcher) OnExpressionChange(fn func()) *event.Subscription {
	return m.onChange.Subscribe(fn)
}

// Refresh forces a resynchronization against the provider, emitting a
// change signal if anything changed.
func (m *Matcher) Refresh() {
	m.synchronize(true)
}

// Dispose detaches the matcher from its event sources. Matches keeps
// answering from the last synchronized state.
func (m *Matcher) Dispose() {
	m.disposer.Dispose()
}
