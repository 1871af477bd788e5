// Package serializer converts entry lists to and from text formats.
//
// File formats (csv, json, yaml) are bidirectional and can be picked from a
// path with [ForPath]. Display formats (html, table) only serialize.
package serializer

import (
	"fmt"
	"strings"

	"github.com/dmitryshurov/simple-data-storage-library/pkg/entry"
	"github.com/dmitryshurov/simple-data-storage-library/pkg/errors"
	"github.com/dmitryshurov/simple-data-storage-library/pkg/registry"
)

// Serializer is a text codec for entry lists
type Serializer interface {
	EntriesToString(entries []entry.Entry) (string, error)
	EntriesFromString(input string) ([]entry.Entry, error)
}

// Format is a serializer registry key
type Format string

const (
	FormatCSV   Format = "csv"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
	FormatHTML  Format = "html"
	FormatTable Format = "table"
)

// IsFileFormat reports whether f can be both written and read back
func (f Format) IsFileFormat() bool {
	switch f {
	case FormatCSV, FormatJSON, FormatYAML:
		return true
	default:
		return false
	}
}

// Options configures serializers created through the registry. Zero values
// select the defaults of each format.
type Options struct {
	JSONIndent int
	YAMLIndent int
	HTMLBorder int
	CellWidth  int
}

// Registry holds every serializer by format name
var Registry = registry.New("serializer",
	registry.Entry[Format, Serializer, Options]{Key: FormatCSV, Factory: func(Options) (Serializer, error) {
		return NewCSVSerializer(), nil
	}},
	registry.Entry[Format, Serializer, Options]{Key: FormatJSON, Factory: func(o Options) (Serializer, error) {
		return NewJSONSerializer(o.JSONIndent)
	}},
	registry.Entry[Format, Serializer, Options]{Key: FormatYAML, Factory: func(o Options) (Serializer, error) {
		return NewYAMLSerializer(orDefault(o.YAMLIndent, DefaultYAMLIndent))
	}},
	registry.Entry[Format, Serializer, Options]{Key: FormatHTML, Factory: func(o Options) (Serializer, error) {
		return NewHTMLSerializer(orDefault(o.HTMLBorder, DefaultHTMLBorder))
	}},
	registry.Entry[Format, Serializer, Options]{Key: FormatTable, Factory: func(o Options) (Serializer, error) {
		return NewTableSerializer(orDefault(o.CellWidth, DefaultCellWidth))
	}},
)

func orDefault(v, def int) int {
	if v == 0 {
		return def
	}
	return v
}

// Extension returns the substring after the last '.' of path, or "" when
// there is none.
func Extension(path string) string {
	i := strings.LastIndexByte(path, '.')
	if i < 0 {
		return ""
	}
	return path[i+1:]
}

// FormatForPath resolves the file format bound to the extension of path.
// Matching is case-sensitive.
func FormatForPath(path string) (Format, error) {
	ext := Extension(path)
	f := Format(ext)
	if !f.IsFileFormat() {
		return "", errors.Wrap(errors.ErrUnknownFormat, errors.ErrorTypeNotFound,
			fmt.Sprintf("no file format bound to extension %q of %s", ext, path)).
			WithDetail("path", path)
	}
	return f, nil
}

// ForPath creates the serializer bound to the extension of path
func ForPath(path string, opts Options) (Serializer, error) {
	f, err := FormatForPath(path)
	if err != nil {
		return nil, err
	}
	return Registry.Create(string(f), opts)
}

func unsupported(format, op string) error {
	return errors.Wrap(errors.ErrUnsupportedOperation, errors.ErrorTypeCapability,
		fmt.Sprintf("%s serializer does not support %s", format, op))
}

func invalidOption(name string, value int) error {
	return errors.Wrap(errors.ErrTypeError, errors.ErrorTypeValidation,
		fmt.Sprintf("invalid %s %d", name, value)).WithDetail(name, value)
}
