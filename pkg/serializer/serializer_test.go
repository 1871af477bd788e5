package serializer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/dmitryshurov/simple-data-storage-library/pkg/entry"
	"github.com/dmitryshurov/simple-data-storage-library/pkg/errors"
)

func TestRegistryKeys(t *testing.T) {
	assert.Equal(t, []Format{FormatCSV, FormatJSON, FormatYAML, FormatHTML, FormatTable}, Registry.List())
}

func TestRegistryCreate(t *testing.T) {
	tests := []struct {
		key  string
		want interface{}
	}{
		{"csv", &CSVSerializer{}},
		{"json", &JSONSerializer{}},
		{"yaml", &YAMLSerializer{}},
		{"html", &HTMLSerializer{}},
		{"table", &TableSerializer{}},
	}

	for _, tt := range tests {
		s, err := Registry.Create(tt.key, Options{})
		require.NoError(t, err, tt.key)
		assert.IsType(t, tt.want, s, tt.key)
	}

	_, err := Registry.Create("xml", Options{})
	assert.True(t, errors.Is(err, errors.ErrUnknownKey))
}

func TestRegistryAppliesOptions(t *testing.T) {
	s, err := Registry.Create("table", Options{CellWidth: 3})
	require.NoError(t, err)
	assert.Equal(t, 3, s.(*TableSerializer).cellWidth)

	s, err = Registry.Create("table", Options{})
	require.NoError(t, err)
	assert.Equal(t, DefaultCellWidth, s.(*TableSerializer).cellWidth)

	s, err = Registry.Create("json", Options{JSONIndent: 4})
	require.NoError(t, err)
	assert.Equal(t, 4, s.(*JSONSerializer).indent)

	_, err = Registry.Create("table", Options{CellWidth: -2})
	assert.True(t, errors.Is(err, errors.ErrTypeError))
}

func TestExtension(t *testing.T) {
	assert.Equal(t, "csv", Extension("db/people.csv"))
	assert.Equal(t, "gz", Extension("people.json.gz"))
	assert.Equal(t, "", Extension("people"))
	assert.Equal(t, "", Extension("people."))
	assert.Equal(t, "d/people", Extension("./a.d/people"))
}

func TestForPath(t *testing.T) {
	s, err := ForPath("db/people.csv", Options{})
	require.NoError(t, err)
	assert.IsType(t, &CSVSerializer{}, s)

	s, err = ForPath("out.json", Options{})
	require.NoError(t, err)
	assert.IsType(t, &JSONSerializer{}, s)

	s, err = ForPath("out.yaml", Options{})
	require.NoError(t, err)
	assert.IsType(t, &YAMLSerializer{}, s)

	for _, path := range []string{"out.html", "out.table", "out.CSV", "out.txt", "noext"} {
		_, err := ForPath(path, Options{})
		assert.True(t, errors.Is(err, errors.ErrUnknownFormat), path)
	}
}

var (
	fieldName = rapid.StringMatching(`[a-z][a-z0-9_]{0,7}`)
	csvCell   = rapid.StringMatching(`[A-Za-z0-9_.@-]([A-Za-z0-9 _.@-]{0,10}[A-Za-z0-9_.@-])?`)
)

// escapedFieldName draws names that need escaping as JSON keys
var escapedFieldName = rapid.StringMatching(`[a-z\\"/ \t\n]{1,8}`)

func uniformEntries(t *rapid.T, names *rapid.Generator[string], value *rapid.Generator[entry.Value]) []entry.Entry {
	fields := rapid.SliceOfNDistinct(names, 1, 5, rapid.ID[string]).Draw(t, "fields")
	n := rapid.IntRange(0, 8).Draw(t, "rows")

	entries := make([]entry.Entry, n)
	for i := range entries {
		row := make([]entry.Field, len(fields))
		for j, f := range fields {
			row[j] = entry.Field{Name: f, Value: value.Draw(t, "value")}
		}
		entries[i] = entry.New(row...)
	}
	return entries
}

var stringValue = rapid.Map(csvCell, func(s string) entry.Value { return entry.String(s) })

var scalarValue = rapid.OneOf(
	rapid.Just[entry.Value](entry.Null{}),
	rapid.Map(rapid.String(), func(s string) entry.Value { return entry.String(s) }),
	rapid.Map(rapid.Int64(), func(i int64) entry.Value { return entry.Int(i) }),
	rapid.Map(rapid.Float64Range(-1e300, 1e300), func(f float64) entry.Value { return entry.Float(f) }),
	rapid.Map(rapid.Bool(), func(b bool) entry.Value { return entry.Bool(b) }),
)

var plainScalarValue = rapid.OneOf(
	rapid.Just[entry.Value](entry.Null{}),
	stringValue,
	rapid.Map(rapid.Int64(), func(i int64) entry.Value { return entry.Int(i) }),
	rapid.Map(rapid.Float64Range(-1e300, 1e300), func(f float64) entry.Value { return entry.Float(f) }),
	rapid.Map(rapid.Bool(), func(b bool) entry.Value { return entry.Bool(b) }),
)

func TestCSVRoundTrip(t *testing.T) {
	s := NewCSVSerializer()
	rapid.Check(t, func(t *rapid.T) {
		entries := uniformEntries(t, fieldName, stringValue)

		out, err := s.EntriesToString(entries)
		if err != nil {
			t.Fatalf("encode: %v", err)
		}
		got, err := s.EntriesFromString(out)
		if len(entries) == 0 {
			if !errors.Is(err, errors.ErrMissingHeader) {
				t.Fatalf("empty output decoded with %v", err)
			}
			return
		}
		if err != nil {
			t.Fatalf("decode %q: %v", out, err)
		}
		assert.Equal(t, entries, got)
	})
}

func TestJSONRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		indent := rapid.IntRange(0, 4).Draw(t, "indent")
		s, err := NewJSONSerializer(indent)
		if err != nil {
			t.Fatal(err)
		}
		entries := uniformEntries(t, escapedFieldName, scalarValue)

		out, err := s.EntriesToString(entries)
		if err != nil {
			t.Fatalf("encode: %v", err)
		}
		got, err := s.EntriesFromString(out)
		if err != nil {
			t.Fatalf("decode %q: %v", out, err)
		}
		assert.Equal(t, entries, got)
	})
}

func TestYAMLRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		s, err := NewYAMLSerializer(rapid.IntRange(1, 4).Draw(t, "indent"))
		if err != nil {
			t.Fatal(err)
		}
		entries := uniformEntries(t, fieldName, plainScalarValue)

		out, err := s.EntriesToString(entries)
		if err != nil {
			t.Fatalf("encode: %v", err)
		}
		got, err := s.EntriesFromString(out)
		if err != nil {
			t.Fatalf("decode %q: %v", out, err)
		}
		assert.Equal(t, entries, got)
	})
}
