package storage

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/dmitryshurov/simple-data-storage-library/pkg/entry"
	"github.com/dmitryshurov/simple-data-storage-library/pkg/errors"
	"github.com/dmitryshurov/simple-data-storage-library/pkg/filter"
	"github.com/dmitryshurov/simple-data-storage-library/pkg/metrics"
)

func newPeople(t *testing.T) *MemoryStorage {
	t.Helper()
	s, err := NewMemoryStorage(Options{Columns: []string{"name", "address"}})
	require.NoError(t, err)
	return s
}

func row(kv ...any) map[string]entry.Value {
	out := make(map[string]entry.Value, len(kv)/2)
	for i := 0; i < len(kv); i += 2 {
		out[kv[i].(string)] = entry.MustValueOf(kv[i+1])
	}
	return out
}

func TestInsertAndFilterScenario(t *testing.T) {
	s := newPeople(t)

	_, err := s.Insert(row("name", "Dmitry", "address", "Moscow"))
	require.NoError(t, err)
	inserted, err := s.Insert(row("name", "Andrew"))
	require.NoError(t, err)

	dmitry := entry.New(entry.F("name", "Dmitry"), entry.F("address", "Moscow"))
	andrew := entry.New(entry.F("name", "Andrew"), entry.F("address", nil))
	assert.True(t, inserted.Equal(andrew))
	assert.Equal(t, []entry.Entry{dmitry, andrew}, s.AllEntries())

	f, err := filter.NewGlobFilter("address=Moscow")
	require.NoError(t, err)
	got, err := s.Filter(f)
	require.NoError(t, err)
	assert.Equal(t, []entry.Entry{dmitry}, got)
}

func TestNewMemoryStorage(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		s, err := NewMemoryStorage(Options{})
		require.NoError(t, err)
		assert.Empty(t, s.Columns())
		assert.Equal(t, 0, s.Len())
		assert.NotNil(t, s.AllEntries())
		assert.Empty(t, s.AllEntries())
	})

	t.Run("initial data", func(t *testing.T) {
		s, err := NewMemoryStorage(Options{InitialData: []ColumnData{
			{Name: "name", Values: []any{"Dmitry", "Andrew"}},
			{Name: "age", Values: []any{35, nil}},
		}})
		require.NoError(t, err)
		assert.Equal(t, []string{"name", "age"}, s.Columns())
		assert.Equal(t, 2, s.Len())
		assert.Equal(t, []entry.Entry{
			entry.New(entry.F("name", "Dmitry"), entry.F("age", 35)),
			entry.New(entry.F("name", "Andrew"), entry.F("age", nil)),
		}, s.AllEntries())
	})

	t.Run("initial data is copied", func(t *testing.T) {
		values := []any{"Dmitry"}
		s, err := NewMemoryStorage(Options{InitialData: []ColumnData{{Name: "name", Values: values}}})
		require.NoError(t, err)

		values[0] = "Changed"
		v, err := s.AllEntries()[0].Get("name")
		require.NoError(t, err)
		assert.Equal(t, entry.String("Dmitry"), v)
	})

	tests := []struct {
		name string
		opts Options
		want error
	}{
		{
			name: "both initial data and columns",
			opts: Options{InitialData: []ColumnData{}, Columns: []string{"name"}},
			want: errors.ErrConflictingArguments,
		},
		{
			name: "length mismatch",
			opts: Options{InitialData: []ColumnData{
				{Name: "name", Values: []any{"Dmitry", "Andrew"}},
				{Name: "address", Values: []any{"Moscow"}},
			}},
			want: errors.ErrLengthMismatch,
		},
		{
			name: "duplicate initial column",
			opts: Options{InitialData: []ColumnData{
				{Name: "name", Values: []any{"Dmitry"}},
				{Name: "name", Values: []any{"Andrew"}},
			}},
			want: errors.ErrTypeError,
		},
		{
			name: "duplicate declared column",
			opts: Options{Columns: []string{"name", "name"}},
			want: errors.ErrTypeError,
		},
		{
			name: "unsupported value",
			opts: Options{InitialData: []ColumnData{{Name: "tags", Values: []any{[]string{"a"}}}}},
			want: errors.ErrTypeError,
		},
		{
			name: "unsigned overflow",
			opts: Options{InitialData: []ColumnData{{Name: "id", Values: []any{uint64(math.MaxUint64)}}}},
			want: errors.ErrTypeError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewMemoryStorage(tt.opts)
			require.Error(t, err)
			assert.Nil(t, s)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
			assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))
		})
	}
}

func TestInsertErrorsLeaveTableUnchanged(t *testing.T) {
	s := newPeople(t)
	_, err := s.Insert(row("name", "Dmitry"))
	require.NoError(t, err)

	_, err = s.Insert(row("name", "Andrew", "phone_number", "123"))
	assert.True(t, errors.Is(err, errors.ErrUnknownColumn))

	_, err = s.Insert(map[string]entry.Value{})
	assert.True(t, errors.Is(err, errors.ErrEmptyInsert))

	_, err = s.Insert(nil)
	assert.True(t, errors.Is(err, errors.ErrEmptyInsert))

	assert.Equal(t, 1, s.Len())
	assert.Len(t, s.AllEntries(), 1)
}

func TestInsertNilValueIsNull(t *testing.T) {
	s := newPeople(t)
	e, err := s.Insert(map[string]entry.Value{"name": nil, "address": entry.String("Oslo")})
	require.NoError(t, err)

	v, err := e.Get("name")
	require.NoError(t, err)
	assert.True(t, entry.IsNull(v))
}

func TestInsertCountsMetric(t *testing.T) {
	counter := metrics.EntriesInserted.WithLabelValues(string(KindMemoryDict))
	before := testutil.ToFloat64(counter)

	s := newPeople(t)
	_, err := s.Insert(row("name", "Dmitry"))
	require.NoError(t, err)
	_, err = s.Insert(row("bogus", "x"))
	require.Error(t, err)

	assert.Equal(t, before+1, testutil.ToFloat64(counter))
}

func TestFilter(t *testing.T) {
	s := newPeople(t)
	for _, name := range []string{"Dmitry", "Andrew", "Dmitriy"} {
		_, err := s.Insert(row("name", name))
		require.NoError(t, err)
	}

	t.Run("nil filter selects nothing", func(t *testing.T) {
		got, err := s.Filter(nil)
		require.NoError(t, err)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})

	t.Run("keeps row order", func(t *testing.T) {
		f, err := filter.NewGlobFilter("name=Dmitr*")
		require.NoError(t, err)
		got, err := s.Filter(f)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "Dmitry", got[0].AsMap()["name"].String())
		assert.Equal(t, "Dmitriy", got[1].AsMap()["name"].String())
	})

	t.Run("no match", func(t *testing.T) {
		f, err := filter.NewGlobFilter("address=Moscow")
		require.NoError(t, err)
		got, err := s.Filter(f)
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("unknown field propagates", func(t *testing.T) {
		f, err := filter.NewGlobFilter("phone_number=*")
		require.NoError(t, err)
		_, err = s.Filter(f)
		assert.True(t, errors.Is(err, errors.ErrFieldNotFound))
	})
}

func TestAllEntriesIsASnapshot(t *testing.T) {
	s := newPeople(t)
	_, err := s.Insert(row("name", "Dmitry"))
	require.NoError(t, err)

	snapshot := s.AllEntries()
	_, err = s.Insert(row("name", "Andrew"))
	require.NoError(t, err)

	assert.Len(t, snapshot, 1)
	assert.Len(t, s.AllEntries(), 2)
}

func TestColumnLengthInvariant(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		columns := []string{"name", "address", "phone_number"}
		s, err := NewMemoryStorage(Options{Columns: columns})
		if err != nil {
			t.Fatal(err)
		}

		key := rapid.SampledFrom(append(columns, "unknown"))
		inserted := 0
		n := rapid.IntRange(0, 20).Draw(t, "inserts")
		for i := 0; i < n; i++ {
			keys := rapid.SliceOfDistinct(key, rapid.ID[string]).Draw(t, "keys")
			values := make(map[string]entry.Value, len(keys))
			for _, k := range keys {
				values[k] = entry.String(k)
			}
			if _, err := s.Insert(values); err == nil {
				inserted++
			}
		}

		if s.Len() != inserted {
			t.Fatalf("len %d, inserted %d", s.Len(), inserted)
		}
		for col, values := range s.columns {
			if len(values) != s.rowCount {
				t.Fatalf("column %s has %d values, table has %d rows", col, len(values), s.rowCount)
			}
		}
		for _, e := range s.AllEntries() {
			if e.Len() != len(columns) {
				t.Fatalf("entry %s does not cover every column", e)
			}
		}
	})
}

func TestRegistry(t *testing.T) {
	assert.Equal(t, []Kind{KindMemoryDict}, Registry.List())

	s, err := Registry.Create("memory_dict", Options{Columns: []string{"name"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"name"}, s.Columns())

	_, err = Registry.Create("memory_dict", Options{Columns: []string{"a", "a"}})
	assert.True(t, errors.Is(err, errors.ErrTypeError))

	_, err = Registry.Create("sqlite", Options{})
	assert.True(t, errors.Is(err, errors.ErrUnknownKey))
}

func TestMemoryStorageString(t *testing.T) {
	s := newPeople(t)
	_, err := s.Insert(row("name", "Dmitry", "address", "Moscow"))
	require.NoError(t, err)
	assert.Equal(t, "[name: [Dmitry] address: [Moscow]]", s.String())
}

func TestConcurrentInserts(t *testing.T) {
	s := newPeople(t)
	done := make(chan struct{})
	for i := 0; i < 8; i++ {
		go func() {
			defer func() { done <- struct{}{} }()
			for j := 0; j < 50; j++ {
				_, _ = s.Insert(row("name", "x"))
				_ = s.AllEntries()
			}
		}()
	}
	for i := 0; i < 8; i++ {
		<-done
	}
	assert.Equal(t, 400, s.Len())
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}
