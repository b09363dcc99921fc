// Package environment implements the variable table used to resolve {{name}}
// placeholders in rendered requests, and loading of environment files to fill it.
package environment

import (
	"maps"
	"regexp"
	"strings"
)

// token matches a single placeholder: a brace delimited span on one line with no
// nested braces.
var token = regexp.MustCompile(`\{\{[^{}\n]*\}\}`)

// Key returns the normalised table key for a variable name, given with or
// without its surrounding braces e.g. "base" and "{{base}}" both give "{{base}}".
func Key(name string) string {
	return "{{" + strings.NewReplacer("{", "", "}", "").Replace(name) + "}}"
}

// Table is a set of variables keyed by their normalised placeholder.
//
// The zero value is an empty table ready to use.
type Table struct {
	values map[string]string
}

// NewTable returns a new, empty [Table].
func NewTable() *Table {
	return &Table{values: make(map[string]string)}
}

// Set stores a variable, reporting whether it replaced an existing value.
func (t *Table) Set(name, value string) (overwritten bool) {
	if t.values == nil {
		t.values = make(map[string]string)
	}

	key := Key(name)
	_, overwritten = t.values[key]
	t.values[key] = value

	return overwritten
}

// Get returns the value of a variable.
func (t *Table) Get(name string) (string, bool) {
	if t == nil {
		return "", false
	}

	value, ok := t.values[Key(name)]

	return value, ok
}

// Len returns the number of variables in the table.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}

	return len(t.values)
}

// Clone returns an independent copy of the table.
func (t *Table) Clone() *Table {
	if t == nil {
		return NewTable()
	}

	return &Table{values: maps.Clone(t.values)}
}

// Interpolate replaces every placeholder in text that has a value in table.
//
// Unknown placeholders are left as they are. With an empty table text is returned
// unchanged without being scanned.
func Interpolate(text string, table *Table) string {
	if table.Len() == 0 {
		return text
	}

	return token.ReplaceAllStringFunc(text, func(match string) string {
		if value, ok := table.values[match]; ok {
			return value
		}

		return match
	})
}
