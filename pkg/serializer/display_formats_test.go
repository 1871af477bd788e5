package serializer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitryshurov/simple-data-storage-library/pkg/entry"
	"github.com/dmitryshurov/simple-data-storage-library/pkg/errors"
)

func threeColumns() []entry.Entry {
	return []entry.Entry{
		entry.New(entry.F("col", "val"), entry.F("value", "field"), entry.F("col3", "val3")),
	}
}

func TestHTMLEncode(t *testing.T) {
	s, err := NewHTMLSerializer(1)
	require.NoError(t, err)

	out, err := s.EntriesToString(threeColumns())
	require.NoError(t, err)
	assert.Equal(t, `<table border="1">`+
		`<tr><th>col</th><th>value</th><th>col3</th></tr>`+
		`<tr><td>val</td><td>field</td><td>val3</td></tr>`+
		`</table>`, out)
}

func TestHTMLEncodeEmptyAndNull(t *testing.T) {
	s, err := NewHTMLSerializer(0)
	require.NoError(t, err)

	out, err := s.EntriesToString(nil)
	require.NoError(t, err)
	assert.Equal(t, "", out)

	out, err = s.EntriesToString([]entry.Entry{entry.New(entry.F("a", nil), entry.F("b", 7))})
	require.NoError(t, err)
	assert.Equal(t, `<table border="0"><tr><th>a</th><th>b</th></tr><tr><td></td><td>7</td></tr></table>`, out)
}

func TestTableEncode(t *testing.T) {
	s, err := NewTableSerializer(5)
	require.NoError(t, err)

	out, err := s.EntriesToString(threeColumns())
	require.NoError(t, err)
	assert.Equal(t,
		"+-----+-----+-----+\n"+
			"| col |value|col3 |\n"+
			"+-----+-----+-----+\n"+
			"| val |field|val3 |\n"+
			"+-----+-----+-----+\n", out)
}

func TestTableEncodeSingleColumn(t *testing.T) {
	s, err := NewTableSerializer(5)
	require.NoError(t, err)

	out, err := s.EntriesToString([]entry.Entry{entry.New(entry.F("col", "val"))})
	require.NoError(t, err)
	assert.Equal(t, "+-----+\n| col |\n+-----+\n| val |\n+-----+\n", out)
}

func TestTableRowTruncates(t *testing.T) {
	s, err := NewTableSerializer(3)
	require.NoError(t, err)

	var b strings.Builder
	s.writeRow(&b, []string{"column", "value", "col3"})
	assert.Equal(t, "|col|val|col|\n", b.String())
}

func TestTableGraphemeWidth(t *testing.T) {
	s, err := NewTableSerializer(4)
	require.NoError(t, err)

	out, err := s.EntriesToString([]entry.Entry{entry.New(entry.F("n", "été"), entry.F("f", "🇳🇴🇳🇴🇳🇴🇳🇴🇳🇴"))})
	require.NoError(t, err)
	assert.Equal(t,
		"+----+----+\n"+
			"| n  | f  |\n"+
			"+----+----+\n"+
			"|été |🇳🇴🇳🇴🇳🇴🇳🇴|\n"+
			"+----+----+\n", out)
}

func TestTableEncodeEmpty(t *testing.T) {
	s, err := NewTableSerializer(DefaultCellWidth)
	require.NoError(t, err)

	out, err := s.EntriesToString(nil)
	require.NoError(t, err)
	assert.Equal(t, "", out)
}

func TestDisplayFormatsDoNotDecode(t *testing.T) {
	h, err := NewHTMLSerializer(DefaultHTMLBorder)
	require.NoError(t, err)
	tb, err := NewTableSerializer(DefaultCellWidth)
	require.NoError(t, err)

	for _, s := range []Serializer{h, tb} {
		_, err := s.EntriesFromString("<table></table>")
		assert.True(t, errors.Is(err, errors.ErrUnsupportedOperation))
		assert.True(t, errors.IsType(err, errors.ErrorTypeCapability))
	}
}

func TestInvalidOptions(t *testing.T) {
	_, err := NewTableSerializer(0)
	assert.True(t, errors.Is(err, errors.ErrTypeError))
	_, err = NewHTMLSerializer(-1)
	assert.True(t, errors.Is(err, errors.ErrTypeError))
	_, err = NewYAMLSerializer(0)
	assert.True(t, errors.Is(err, errors.ErrTypeError))
}
