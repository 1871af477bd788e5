package serializer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitryshurov/simple-data-storage-library/pkg/entry"
	"github.com/dmitryshurov/simple-data-storage-library/pkg/errors"
)

func TestCSVEncodeEmpty(t *testing.T) {
	out, err := NewCSVSerializer().EntriesToString(nil)
	require.NoError(t, err)
	assert.Equal(t, "", out)
}

func TestCSVEncode(t *testing.T) {
	entries := []entry.Entry{
		entry.New(entry.F("col1", "1"), entry.F("col2", "str1")),
		entry.New(entry.F("col1", "2"), entry.F("col2", "str2")),
	}

	out, err := NewCSVSerializer().EntriesToString(entries)
	require.NoError(t, err)
	assert.Equal(t, "#col1,col2\n1,str1\n2,str2\n", out)
}

func TestCSVEncodeNullIsEmptyCell(t *testing.T) {
	entries := []entry.Entry{
		entry.New(entry.F("col1", nil), entry.F("col2", "str1")),
		entry.New(entry.F("col1", "2"), entry.F("col2", "str2")),
	}

	out, err := NewCSVSerializer().EntriesToString(entries)
	require.NoError(t, err)
	assert.Equal(t, "#col1,col2\n,str1\n2,str2\n", out)
}

func TestCSVEncodeFieldMismatch(t *testing.T) {
	tests := map[string][]entry.Entry{
		"missing field": {
			entry.New(entry.F("col1", "1")),
			entry.New(entry.F("col1", "2"), entry.F("col2", "str2")),
		},
		"different order": {
			entry.New(entry.F("col1", "1"), entry.F("col2", "a")),
			entry.New(entry.F("col2", "b"), entry.F("col1", "2")),
		},
	}

	for name, entries := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := NewCSVSerializer().EntriesToString(entries)
			assert.True(t, errors.Is(err, errors.ErrFieldMismatch))
		})
	}
}

func TestCSVEncodeRejectsNonStrings(t *testing.T) {
	for _, v := range []any{1, 2.5, true} {
		_, err := NewCSVSerializer().EntriesToString([]entry.Entry{entry.New(entry.F("col1", v))})
		assert.True(t, errors.Is(err, errors.ErrUnsupportedValueType), "%v", v)
	}
}

func TestCSVDecode(t *testing.T) {
	got, err := NewCSVSerializer().EntriesFromString("#col1,col2\n1,str1\n2,str2\n")
	require.NoError(t, err)

	assert.Equal(t, []entry.Entry{
		entry.New(entry.F("col1", "1"), entry.F("col2", "str1")),
		entry.New(entry.F("col1", "2"), entry.F("col2", "str2")),
	}, got)
}

func TestCSVDecodeTrimsAndSkipsComments(t *testing.T) {
	input := "\n\r\n# name , address \r\n Dmitry , Moscow\r\n# a comment\r\nAndrew,\r\n"

	got, err := NewCSVSerializer().EntriesFromString(input)
	require.NoError(t, err)

	assert.Equal(t, []entry.Entry{
		entry.New(entry.F("name", "Dmitry"), entry.F("address", "Moscow")),
		entry.New(entry.F("name", "Andrew"), entry.F("address", "")),
	}, got)
}

func TestCSVDecodeHeaderOnly(t *testing.T) {
	got, err := NewCSVSerializer().EntriesFromString("#name,address\n")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestCSVDecodeBlankLineInSingleColumn(t *testing.T) {
	got, err := NewCSVSerializer().EntriesFromString("#name\nAnn\n\n")
	require.NoError(t, err)
	assert.Equal(t, []entry.Entry{
		entry.New(entry.F("name", "Ann")),
		entry.New(entry.F("name", "")),
	}, got)
}

func TestCSVDecodeErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  error
	}{
		{"empty", "", errors.ErrMissingHeader},
		{"only newline", "\n", errors.ErrMissingHeader},
		{"no hash", "col1,col2\n1,str1\n2,str2\n", errors.ErrMissingHeader},
		{"short line", "#col1,col2\nval1,str1\nval2\n", errors.ErrFieldCountMismatch},
		{"long line", "#col1\na,b\n", errors.ErrFieldCountMismatch},
		{"blank line in two columns", "#col1,col2\n\na,b\n", errors.ErrFieldCountMismatch},
		{"duplicate header", "#a,a\n1,2\n", errors.ErrTypeError},
		{"duplicate header without rows", "#name,city,name\n", errors.ErrTypeError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewCSVSerializer().EntriesFromString(tt.input)
			require.Error(t, err)
			assert.Nil(t, got)
			assert.True(t, errors.Is(err, tt.want), err.Error())
		})
	}
}

func TestCSVDecodeReportsLine(t *testing.T) {
	_, err := NewCSVSerializer().EntriesFromString("#a,b\n1,2\n3\n")

	var sdErr *errors.Error
	require.True(t, errors.As(err, &sdErr))
	assert.Equal(t, 3, sdErr.Details["line"])
}
