package serializer

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitryshurov/simple-data-storage-library/pkg/entry"
	"github.com/dmitryshurov/simple-data-storage-library/pkg/errors"
)

func newYAML(t *testing.T) *YAMLSerializer {
	t.Helper()
	s, err := NewYAMLSerializer(DefaultYAMLIndent)
	require.NoError(t, err)
	return s
}

func TestYAMLEncodeEmpty(t *testing.T) {
	out, err := newYAML(t).EntriesToString(nil)
	require.NoError(t, err)
	assert.Equal(t, "entries: []\n", out)
}

func TestYAMLEncode(t *testing.T) {
	entries := []entry.Entry{
		entry.New(entry.F("name", "Dmitry"), entry.F("address", "Moscow")),
		entry.New(entry.F("name", "Andrew"), entry.F("address", nil)),
	}

	out, err := newYAML(t).EntriesToString(entries)
	require.NoError(t, err)
	assert.Equal(t, "entries:\n  - name: Dmitry\n    address: Moscow\n  - name: Andrew\n    address: null\n", out)
}

func TestYAMLRoundTripKeepsTypes(t *testing.T) {
	entries := []entry.Entry{
		entry.New(
			entry.F("s", "true"),
			entry.F("n", "12"),
			entry.F("empty", ""),
			entry.F("i", -4),
			entry.F("f", 3.0),
			entry.F("big", 1e21),
			entry.F("b", false),
			entry.F("null", nil),
		),
	}

	s := newYAML(t)
	out, err := s.EntriesToString(entries)
	require.NoError(t, err)

	got, err := s.EntriesFromString(out)
	require.NoError(t, err)
	assert.Equal(t, entries, got)
}

func TestYAMLNonFiniteFloats(t *testing.T) {
	s := newYAML(t)
	out, err := s.EntriesToString([]entry.Entry{entry.New(entry.F("inf", math.Inf(-1)), entry.F("nan", math.NaN()))})
	require.NoError(t, err)

	got, err := s.EntriesFromString(out)
	require.NoError(t, err)
	require.Len(t, got, 1)

	v, _ := got[0].Lookup("inf")
	assert.Equal(t, entry.Float(math.Inf(-1)), v)
	v, _ = got[0].Lookup("nan")
	assert.True(t, math.IsNaN(float64(v.(entry.Float))))
}

func TestYAMLDecodeHandWritten(t *testing.T) {
	input := `
defaults: &d
  city: Oslo
entries:
  - name: Ann
    visited: 2021-05-01
    count: 0x10
  - *d
`
	got, err := newYAML(t).EntriesFromString(input)
	require.NoError(t, err)

	assert.Equal(t, []entry.Entry{
		entry.New(entry.F("name", "Ann"), entry.F("visited", "2021-05-01"), entry.F("count", 16)),
		entry.New(entry.F("city", "Oslo")),
	}, got)
}

func TestYAMLDecodeErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  error
	}{
		{"malformed", "entries: [a, b", errors.ErrParseError},
		{"empty", "", errors.ErrMissingEntriesKey},
		{"no entries", "rows: []\n", errors.ErrMissingEntriesKey},
		{"scalar document", "hello\n", errors.ErrMissingEntriesKey},
		{"entries scalar", "entries: 3\n", errors.ErrMissingEntriesKey},
		{"element not mapping", "entries:\n  - 1\n", errors.ErrParseError},
		{"nested value", "entries:\n  - tags: [a, b]\n", errors.ErrUnsupportedValueType},
		{"binary value", "entries:\n  - blob: !!binary aGVsbG8=\n", errors.ErrUnsupportedValueType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := newYAML(t).EntriesFromString(tt.input)
			require.Error(t, err)
			assert.Nil(t, got)
			assert.True(t, errors.Is(err, tt.want), err.Error())
		})
	}
}
