// Package filter provides row predicates for storages.
package filter

import (
	"fmt"
	"strings"

	"github.com/dmitryshurov/simple-data-storage-library/pkg/entry"
	"github.com/dmitryshurov/simple-data-storage-library/pkg/errors"
)

// Filter decides whether an entry belongs to a result set
type Filter interface {
	Satisfies(e entry.Entry) (bool, error)
}

// GlobFilter matches a single field against a shell-style pattern.
// '*' matches any run of characters, '?' exactly one; everything else is
// literal and the whole value must match.
type GlobFilter struct {
	expr    string
	field   string
	pattern string
}

// NewGlobFilter parses an expression of the form field=pattern.
func NewGlobFilter(expr string) (*GlobFilter, error) {
	parts := strings.Split(expr, "=")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return nil, errors.Wrap(errors.ErrMalformedFilterExpression, errors.ErrorTypeValidation,
			fmt.Sprintf("expected field=pattern, got %q", expr)).WithDetail("expression", expr)
	}
	return &GlobFilter{expr: expr, field: parts[0], pattern: parts[1]}, nil
}

// Satisfies reports whether the entry's field matches the pattern.
func (f *GlobFilter) Satisfies(e entry.Entry) (bool, error) {
	v, err := e.Get(f.field)
	if err != nil {
		return false, err
	}
	return Match(f.pattern, v.String()), nil
}

// Field returns the field the filter inspects
func (f *GlobFilter) Field() string { return f.field }

// Pattern returns the glob pattern
func (f *GlobFilter) Pattern() string { return f.pattern }

// String returns the expression the filter was built from
func (f *GlobFilter) String() string { return f.expr }
