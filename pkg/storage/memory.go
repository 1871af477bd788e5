package storage

import (
	"fmt"
	"sort"
	"sync"

	"github.com/dmitryshurov/simple-data-storage-library/pkg/compression"
	"github.com/dmitryshurov/simple-data-storage-library/pkg/entry"
	"github.com/dmitryshurov/simple-data-storage-library/pkg/errors"
	"github.com/dmitryshurov/simple-data-storage-library/pkg/filter"
	"github.com/dmitryshurov/simple-data-storage-library/pkg/metrics"
)

// MemoryStorage keeps rows column by column in memory. It has no persistent
// representation of its own; use LoadFromFile and SaveToFile.
type MemoryStorage struct {
	mu       sync.RWMutex
	order    []string
	columns  map[string][]entry.Value
	rowCount int
	opts     Options
}

var _ Storage = (*MemoryStorage)(nil)

// NewMemoryStorage creates a table from opts.
//
// With neither InitialData nor Columns the table has no columns and accepts
// no inserts until data is loaded into a fresh instance.
func NewMemoryStorage(opts Options) (*MemoryStorage, error) {
	if opts.InitialData != nil && opts.Columns != nil {
		return nil, errors.Wrap(errors.ErrConflictingArguments, errors.ErrorTypeValidation,
			"either initial data or columns can be provided, but not both")
	}
	if opts.Compression == 0 {
		opts.Compression = compression.Default
	}

	s := &MemoryStorage{
		columns: make(map[string][]entry.Value),
		opts:    Options{Serializer: opts.Serializer, Compression: opts.Compression},
	}

	switch {
	case opts.InitialData != nil:
		if err := s.initData(opts.InitialData); err != nil {
			return nil, err
		}
	case opts.Columns != nil:
		if err := s.initColumns(opts.Columns); err != nil {
			return nil, err
		}
	}

	return s, nil
}

func (s *MemoryStorage) initData(data []ColumnData) error {
	for i, col := range data {
		if _, exists := s.columns[col.Name]; exists {
			return duplicateColumn(col.Name)
		}
		if i > 0 && len(col.Values) != s.rowCount {
			return errors.Wrap(errors.ErrLengthMismatch, errors.ErrorTypeValidation,
				fmt.Sprintf("column %q has %d values, expected %d", col.Name, len(col.Values), s.rowCount)).
				WithDetail("column", col.Name)
		}

		values := make([]entry.Value, len(col.Values))
		for j, raw := range col.Values {
			v, err := entry.ValueOf(raw)
			if err != nil {
				return errors.Wrap(err, errors.ErrorTypeValidation,
					fmt.Sprintf("invalid value in column %q", col.Name)).
					WithDetail("column", col.Name).
					WithDetail("row", j)
			}
			values[j] = v
		}

		s.order = append(s.order, col.Name)
		s.columns[col.Name] = values
		s.rowCount = len(values)
	}
	return nil
}

func (s *MemoryStorage) initColumns(columns []string) error {
	for _, name := range columns {
		if _, exists := s.columns[name]; exists {
			return duplicateColumn(name)
		}
		s.order = append(s.order, name)
		s.columns[name] = []entry.Value{}
	}
	return nil
}

func duplicateColumn(name string) error {
	return errors.Wrap(errors.ErrTypeError, errors.ErrorTypeValidation,
		fmt.Sprintf("column %q is declared more than once", name)).
		WithDetail("column", name)
}

// Columns returns the column names in declaration order
func (s *MemoryStorage) Columns() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Len returns the number of rows
func (s *MemoryStorage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rowCount
}

// Insert appends a row. Nothing is appended when any key is not a column.
func (s *MemoryStorage) Insert(values map[string]entry.Value) (entry.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.validateRow(values); err != nil {
		return entry.Entry{}, err
	}
	s.appendRow(values)
	metrics.EntriesInserted.WithLabelValues(string(KindMemoryDict)).Inc()

	return s.entryAt(s.rowCount - 1), nil
}

// validateRow must be called with s.mu held
func (s *MemoryStorage) validateRow(values map[string]entry.Value) error {
	unknown := make([]string, 0)
	for name := range values {
		if _, exists := s.columns[name]; !exists {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return errors.Wrap(errors.ErrUnknownColumn, errors.ErrorTypeValidation,
			fmt.Sprintf("column %q does not exist in the storage", unknown[0])).
			WithDetail("column", unknown[0]).
			WithDetail("columns", s.order)
	}
	if len(values) == 0 {
		return errors.Wrap(errors.ErrEmptyInsert, errors.ErrorTypeValidation,
			"can not perform insertion because empty data provided")
	}
	return nil
}

// appendRow must be called with s.mu held and a validated row
func (s *MemoryStorage) appendRow(values map[string]entry.Value) {
	for _, name := range s.order {
		v, ok := values[name]
		if !ok || v == nil {
			v = entry.Null{}
		}
		s.columns[name] = append(s.columns[name], v)
	}
	s.rowCount++
}

// entryAt must be called with s.mu held
func (s *MemoryStorage) entryAt(row int) entry.Entry {
	fields := make([]entry.Field, len(s.order))
	for i, name := range s.order {
		fields[i] = entry.Field{Name: name, Value: s.columns[name][row]}
	}
	return entry.New(fields...)
}

// AllEntries returns every row in insertion order
func (s *MemoryStorage) AllEntries() []entry.Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.order) == 0 {
		return []entry.Entry{}
	}
	out := make([]entry.Entry, s.rowCount)
	for i := range out {
		out[i] = s.entryAt(i)
	}
	return out
}

// Filter returns the rows satisfying f. A nil filter returns an empty list.
func (s *MemoryStorage) Filter(f filter.Filter) ([]entry.Entry, error) {
	if f == nil {
		return []entry.Entry{}, nil
	}

	out := make([]entry.Entry, 0)
	for _, e := range s.AllEntries() {
		ok, err := f.Satisfies(e)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, e)
		}
	}
	return out, nil
}

// String renders the columns for debugging
func (s *MemoryStorage) String() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	parts := make([]string, len(s.order))
	for i, name := range s.order {
		parts[i] = fmt.Sprintf("%s: %v", name, s.columns[name])
	}
	return fmt.Sprintf("%v", parts)
}
