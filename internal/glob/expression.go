// Package glob provides exclusion expressions and their compiled form.
//
// An Expression maps glob patterns to an enablement flag, the shape used by
// settings such as files.exclude and search.exclude. Compile turns an
// expression into an immutable matcher that tests slash-separated paths.
package glob

import "sort"

// Entry is the enablement of a single pattern in an expression.
type Entry struct {
	// Enabled turns the pattern on or off.
	Enabled bool

	// When, if non-empty, conditions the pattern on a sibling file.
	// The token $(basename) is replaced with the tested file's name
	// minus its extension. Conditional patterns only match when the
	// compiled expression was given a sibling lookup.
	When string
}

// Expression maps glob patterns to their enablement.
type Expression map[string]Entry

// ParseExpression converts a raw settings value into an Expression.
// Recognized values are booleans and maps carrying a "when" string;
// anything else is ignored.
func ParseExpression(raw map[string]any) Expression {
	if raw == nil {
		return nil
	}

	expr := make(Expression, len(raw))
	for pattern, val := range raw {
		switch v := val.(type) {
		case bool:
			expr[pattern] = Entry{Enabled: v}
		case map[string]any:
			when, ok := v["when"].(string)
			if !ok || when == "" {
				continue
			}
			expr[pattern] = Entry{Enabled: true, When: when}
		}
	}
	return expr
}

// Clone returns a deep copy of the expression.
func (e Expression) Clone() Expression {
	if e == nil {
		return nil
	}

	out := make(Expression, len(e))
	for pattern, entry := range e {
		out[pattern] = entry
	}
	return out
}

// Equal reports whether two expressions are deeply equal.
func (e Expression) Equal(other Expression) bool {
	if len(e) != len(other) {
		return false
	}
	for pattern, entry := range e {
		o, ok := other[pattern]
		if !ok || o != entry {
			return false
		}
	}
	return true
}

// Patterns returns the expression's patterns in sorted order.
func (e Expression) Patterns() []string {
	patterns := make([]string, 0, len(e))
	for pattern := range e {
		patterns = append(patterns, pattern)
	}
	sort.Strings(patterns)
	return patterns
}
