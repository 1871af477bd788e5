package serializer

import (
	"strings"

	"github.com/rivo/uniseg"

	"github.com/dmitryshurov/simple-data-storage-library/pkg/entry"
)

// DefaultCellWidth is the cell width used when none is configured
const DefaultCellWidth = 20

// TableSerializer renders entries as a fixed-width text table:
//
//	+-----+-----+
//	|name |city |
//	+-----+-----+
//	| Ann |Oslo |
//	+-----+-----+
//
// Longer values are truncated to the cell width, shorter ones centered with
// the odd space at the back. Width is counted in grapheme clusters.
type TableSerializer struct {
	cellWidth int
}

// NewTableSerializer creates a table serializer
func NewTableSerializer(cellWidth int) (*TableSerializer, error) {
	if cellWidth < 1 {
		return nil, invalidOption("cell width", cellWidth)
	}
	return &TableSerializer{cellWidth: cellWidth}, nil
}

// EntriesToString serializes entries
func (s *TableSerializer) EntriesToString(entries []entry.Entry) (string, error) {
	if len(entries) == 0 {
		return "", nil
	}

	var b strings.Builder
	fields := entries[0].Fields()
	s.writeSeparator(&b, len(fields))
	s.writeRow(&b, fields)
	s.writeSeparator(&b, len(fields))

	for _, e := range entries {
		cells := cellStrings(e)
		s.writeRow(&b, cells)
		s.writeSeparator(&b, len(cells))
	}
	return b.String(), nil
}

// EntriesFromString is not supported
func (s *TableSerializer) EntriesFromString(string) ([]entry.Entry, error) {
	return nil, unsupported("table", "deserialization")
}

func (s *TableSerializer) writeSeparator(b *strings.Builder, cols int) {
	b.WriteByte('+')
	for i := 0; i < cols; i++ {
		b.WriteString(strings.Repeat("-", s.cellWidth))
		b.WriteByte('+')
	}
	b.WriteByte('\n')
}

func (s *TableSerializer) writeRow(b *strings.Builder, cells []string) {
	b.WriteByte('|')
	for _, c := range cells {
		c, n := truncate(c, s.cellWidth)
		front := (s.cellWidth - n) / 2
		b.WriteString(strings.Repeat(" ", front))
		b.WriteString(c)
		b.WriteString(strings.Repeat(" ", s.cellWidth-n-front))
		b.WriteByte('|')
	}
	b.WriteByte('\n')
}

// truncate returns the first max grapheme clusters of s and their count
func truncate(s string, max int) (string, int) {
	gr := uniseg.NewGraphemes(s)
	n, end := 0, 0
	for n < max && gr.Next() {
		_, end = gr.Positions()
		n++
	}
	return s[:end], n
}
