// Package storage provides tables of entries with a fixed set of columns and
// their persistence to serialized files.
package storage

import (
	"context"

	"github.com/dmitryshurov/simple-data-storage-library/pkg/compression"
	"github.com/dmitryshurov/simple-data-storage-library/pkg/entry"
	"github.com/dmitryshurov/simple-data-storage-library/pkg/filter"
	"github.com/dmitryshurov/simple-data-storage-library/pkg/registry"
	"github.com/dmitryshurov/simple-data-storage-library/pkg/serializer"
)

// Storage is a table of entries sharing one set of columns.
//
// Every column holds exactly one value per row. Columns never supplied by an
// insert hold Null for that row.
type Storage interface {
	// Columns returns the column names in declaration order.
	Columns() []string

	// Insert appends one row. Keys must be declared columns and at least
	// one must be given; other columns are filled with Null.
	Insert(values map[string]entry.Value) (entry.Entry, error)

	// AllEntries returns every row in insertion order.
	AllEntries() []entry.Entry

	// Filter returns the rows satisfying f in insertion order. A nil filter
	// selects nothing.
	Filter(f filter.Filter) ([]entry.Entry, error)

	// Len returns the number of rows.
	Len() int

	// LoadFromFile appends the entries serialized at path. The format comes
	// from the file extension, optionally followed by a compression suffix.
	LoadFromFile(ctx context.Context, path string) error

	// SaveToFile overwrites path with every row, serialized in the format
	// bound to its extension.
	SaveToFile(ctx context.Context, path string) error
}

// Kind is a storage registry key
type Kind string

const (
	// KindMemoryDict is the in-memory column table
	KindMemoryDict Kind = "memory_dict"
)

// ColumnData is one named column of initial data
type ColumnData struct {
	Name   string
	Values []any
}

// Options configures storages created through the registry.
//
// InitialData and Columns are mutually exclusive. Serializer and Compression
// apply to file operations.
type Options struct {
	InitialData []ColumnData
	Columns     []string
	Serializer  serializer.Options
	Compression compression.Level
}

// Registry holds every storage implementation by kind
var Registry = registry.New("storage",
	registry.Entry[Kind, Storage, Options]{Key: KindMemoryDict, Factory: func(o Options) (Storage, error) {
		s, err := NewMemoryStorage(o)
		if err != nil {
			return nil, err
		}
		return s, nil
	}},
)
