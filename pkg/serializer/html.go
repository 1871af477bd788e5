package serializer

import (
	"strconv"
	"strings"

	"github.com/dmitryshurov/simple-data-storage-library/pkg/entry"
)

// DefaultHTMLBorder is the table border used when none is configured
const DefaultHTMLBorder = 1

// HTMLSerializer renders entries as a bare HTML table. Cell text is written
// as is, without escaping.
type HTMLSerializer struct {
	border int
}

// NewHTMLSerializer creates an HTML serializer
func NewHTMLSerializer(border int) (*HTMLSerializer, error) {
	if border < 0 {
		return nil, invalidOption("html border", border)
	}
	return &HTMLSerializer{border: border}, nil
}

// EntriesToString serializes entries. The header comes from the fields of
// the first entry.
func (s *HTMLSerializer) EntriesToString(entries []entry.Entry) (string, error) {
	if len(entries) == 0 {
		return "", nil
	}

	var b strings.Builder
	b.WriteString(`<table border="`)
	b.WriteString(strconv.Itoa(s.border))
	b.WriteString(`">`)

	writeHTMLRow(&b, "th", entries[0].Fields())
	for _, e := range entries {
		writeHTMLRow(&b, "td", cellStrings(e))
	}

	b.WriteString("</table>")
	return b.String(), nil
}

// EntriesFromString is not supported
func (s *HTMLSerializer) EntriesFromString(string) ([]entry.Entry, error) {
	return nil, unsupported("html", "deserialization")
}

func writeHTMLRow(b *strings.Builder, tag string, cells []string) {
	b.WriteString("<tr>")
	for _, c := range cells {
		b.WriteString("<" + tag + ">")
		b.WriteString(c)
		b.WriteString("</" + tag + ">")
	}
	b.WriteString("</tr>")
}

// cellStrings returns the display form of every value, null as empty
func cellStrings(e entry.Entry) []string {
	values := e.Values()
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = v.String()
	}
	return out
}
