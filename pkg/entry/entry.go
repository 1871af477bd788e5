// Package entry defines the record type shared by storages, filters and
// serializers: an ordered, immutable mapping from field name to Value.
package entry

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/dmitryshurov/simple-data-storage-library/pkg/errors"
)

// Field is a single name/value pair used to build an Entry
type Field struct {
	Name  string
	Value Value
}

// F builds a Field from a Go native. It panics on unsupported types and is
// meant for literals.
func F(name string, value any) Field {
	return Field{Name: name, Value: MustValueOf(value)}
}

// Entry is one row of a table. The zero value is an empty entry.
type Entry struct {
	fields []string
	values map[string]Value
}

// New builds an entry in argument order. A repeated name keeps its first
// position and takes the last value.
func New(fields ...Field) Entry {
	e := Entry{
		fields: make([]string, 0, len(fields)),
		values: make(map[string]Value, len(fields)),
	}
	for _, f := range fields {
		v := f.Value
		if v == nil {
			v = Null{}
		}
		if _, exists := e.values[f.Name]; !exists {
			e.fields = append(e.fields, f.Name)
		}
		e.values[f.Name] = v
	}
	return e
}

// FromMap builds an entry from a Go map. Fields are ordered by name.
func FromMap(m map[string]any) (Entry, error) {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)

	fields := make([]Field, 0, len(names))
	for _, name := range names {
		v, err := ValueOf(m[name])
		if err != nil {
			return Entry{}, errors.Wrapf(err, errors.ErrorTypeValidation, "field %q", name)
		}
		fields = append(fields, Field{Name: name, Value: v})
	}
	return New(fields...), nil
}

// Fields returns the field names in insertion order
func (e Entry) Fields() []string {
	out := make([]string, len(e.fields))
	copy(out, e.fields)
	return out
}

// Values returns the values in field order
func (e Entry) Values() []Value {
	out := make([]Value, len(e.fields))
	for i, name := range e.fields {
		out[i] = e.values[name]
	}
	return out
}

// Get returns the value of field or ErrFieldNotFound
func (e Entry) Get(field string) (Value, error) {
	v, ok := e.values[field]
	if !ok {
		return nil, errors.Wrap(errors.ErrFieldNotFound, errors.ErrorTypeNotFound,
			fmt.Sprintf("entry has no field %q", field)).WithDetail("field", field)
	}
	return v, nil
}

// Lookup returns the value of field and whether it exists
func (e Entry) Lookup(field string) (Value, bool) {
	v, ok := e.values[field]
	return v, ok
}

// Len returns the number of fields
func (e Entry) Len() int {
	return len(e.fields)
}

// Equal reports whether both entries hold the same field/value pairs,
// regardless of field order. A NaN float equals another NaN.
func (e Entry) Equal(other Entry) bool {
	if len(e.fields) != len(other.fields) {
		return false
	}
	for name, v := range e.values {
		ov, ok := other.values[name]
		if !ok || !sameValue(v, ov) {
			return false
		}
	}
	return true
}

func sameValue(a, b Value) bool {
	if fa, ok := a.(Float); ok {
		if fb, ok := b.(Float); ok && math.IsNaN(float64(fa)) && math.IsNaN(float64(fb)) {
			return true
		}
	}
	return a == b
}

// AsMap returns a copy of the entry as a map
func (e Entry) AsMap() map[string]Value {
	out := make(map[string]Value, len(e.values))
	for k, v := range e.values {
		out[k] = v
	}
	return out
}

// String renders the entry as {field: value, ...} in field order
func (e Entry) String() string {
	var b strings.Builder
	b.WriteByte('{')
	for i, name := range e.fields {
		if i > 0 {
			b.WriteString(", ")
		}
		v := e.values[name]
		if IsNull(v) {
			fmt.Fprintf(&b, "%s: null", name)
			continue
		}
		if v.Kind() == KindString {
			fmt.Fprintf(&b, "%s: %q", name, v.String())
			continue
		}
		fmt.Fprintf(&b, "%s: %s", name, v.String())
	}
	b.WriteByte('}')
	return b.String()
}
