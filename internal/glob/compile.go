package glob

import (
	"path"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// SiblingLookup reports whether a sibling file exists. It receives the
// slash-separated path of the candidate sibling, built from the tested
// path's directory and the expanded when-clause.
type SiblingLookup func(sibling string) bool

// CompiledExpression is the executable form of an Expression. It is an
// immutable value object: a compiled expression never changes after
// Compile returns, so it may be shared and queried without locking.
type CompiledExpression struct {
	rules   []rule
	sibling SiblingLookup
}

// rule is one enabled pattern ready for matching.
type rule struct {
	pattern string
	when    string
}

// Option configures compilation.
type Option func(*CompiledExpression)

// WithSiblingLookup supplies the sibling-existence check used by
// when-conditioned patterns.
func WithSiblingLookup(fn SiblingLookup) Option {
	return func(c *CompiledExpression) {
		c.sibling = fn
	}
}

// Compile builds a matcher from an expression. Disabled entries are
// dropped. Patterns are evaluated in sorted order so the reported match
// is deterministic. Compile never fails: malformed patterns simply never
// match.
func Compile(expr Expression, opts ...Option) *CompiledExpression {
	c := &CompiledExpression{
		rules: make([]rule, 0, len(expr)),
	}
	for _, opt := range opts {
		opt(c)
	}

	for _, pattern := range expr.Patterns() {
		entry := expr[pattern]
		if !entry.Enabled {
			continue
		}
		c.rules = append(c.rules, rule{pattern: pattern, when: entry.When})
	}

	return c
}

// Match tests a path against the expression and returns the first
// matching pattern. The path is normalized to forward slashes; patterns
// without a slash also match the path's base name, so "*.log" excludes
// a log file at any depth.
func (c *CompiledExpression) Match(p string) (string, bool) {
	if c == nil || len(c.rules) == 0 {
		return "", false
	}

	slashed := filepath.ToSlash(p)
	base := path.Base(slashed)

	for _, r := range c.rules {
		if r.when != "" && !c.siblingExists(slashed, base, r.when) {
			continue
		}
		if matchPattern(r.pattern, slashed, base) {
			return r.pattern, true
		}
	}
	return "", false
}

// Matches reports whether any enabled pattern matches the path.
func (c *CompiledExpression) Matches(p string) bool {
	_, ok := c.Match(p)
	return ok
}

// RuleCount returns the number of enabled patterns.
func (c *CompiledExpression) RuleCount() int {
	if c == nil {
		return 0
	}
	return len(c.rules)
}

// siblingExists expands a when-clause and consults the sibling lookup.
func (c *CompiledExpression) siblingExists(slashed, base, when string) bool {
	if c.sibling == nil {
		return false
	}

	name := base
	if ext := path.Ext(base); ext != "" {
		name = strings.TrimSuffix(base, ext)
	}
	sibling := strings.ReplaceAll(when, "$(basename)", name)

	dir := path.Dir(slashed)
	if dir == "." {
		return c.sibling(sibling)
	}
	return c.sibling(path.Join(dir, sibling))
}

// matchPattern tests one pattern against the slashed path, falling back
// to the base name for slash-free patterns.
func matchPattern(pattern, slashed, base string) bool {
	if ok, err := doublestar.Match(pattern, slashed); err == nil && ok {
		return true
	}
	if !strings.Contains(pattern, "/") {
		if ok, err := doublestar.Match(pattern, base); err == nil && ok {
			return true
		}
	}
	return false
}
