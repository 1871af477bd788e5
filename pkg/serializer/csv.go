package serializer

import (
	"fmt"
	"slices"
	"strings"

	"github.com/dmitryshurov/simple-data-storage-library/pkg/entry"
	"github.com/dmitryshurov/simple-data-storage-library/pkg/errors"
)

// CSVSerializer writes a '#'-prefixed header line followed by one line per
// entry:
//
//	#name,address
//	Dmitry,Moscow
//	Andrew,London
//
// CSV carries no types, so only string and null values are accepted and
// every decoded value is a string. Cells are neither quoted nor escaped.
type CSVSerializer struct {
	delimiter string
	newline   string
}

// NewCSVSerializer creates a CSV serializer
func NewCSVSerializer() *CSVSerializer {
	return &CSVSerializer{delimiter: ",", newline: "\n"}
}

// EntriesToString serializes entries. All entries must share the fields of
// the first one, in the same order.
func (s *CSVSerializer) EntriesToString(entries []entry.Entry) (string, error) {
	if len(entries) == 0 {
		return "", nil
	}

	fields := entries[0].Fields()

	var b strings.Builder
	b.WriteString("#")
	s.writeLine(&b, fields)

	for i, e := range entries {
		if !slices.Equal(fields, e.Fields()) {
			return "", errors.Wrap(errors.ErrFieldMismatch, errors.ErrorTypeData,
				fmt.Sprintf("entry %d has fields %v, expected %v", i, e.Fields(), fields)).
				WithDetail("index", i)
		}

		cells := make([]string, 0, len(fields))
		for j, v := range e.Values() {
			switch v.(type) {
			case entry.Null:
				cells = append(cells, "")
			case entry.String:
				cells = append(cells, v.String())
			default:
				return "", errors.Wrap(errors.ErrUnsupportedValueType, errors.ErrorTypeData,
					fmt.Sprintf("csv cannot store %s value of field %q", v.Kind(), fields[j])).
					WithDetail("index", i).
					WithDetail("field", fields[j])
			}
		}
		s.writeLine(&b, cells)
	}

	return b.String(), nil
}

// EntriesFromString parses input. Nothing is returned unless every line is
// valid.
func (s *CSVSerializer) EntriesFromString(input string) ([]entry.Entry, error) {
	lines := s.splitLines(input)

	start := 0
	for start < len(lines) && strings.TrimSpace(lines[start]) == "" {
		start++
	}
	if start == len(lines) {
		return nil, errors.Wrap(errors.ErrMissingHeader, errors.ErrorTypeData, "header not found in the input")
	}
	if !strings.HasPrefix(lines[start], "#") {
		return nil, errors.Wrap(errors.ErrMissingHeader, errors.ErrorTypeData, "header must start with #").
			WithDetail("line", start+1)
	}
	header := s.splitTokens(lines[start][1:])
	seen := make(map[string]bool, len(header))
	for _, name := range header {
		if seen[name] {
			return nil, errors.Wrap(errors.ErrTypeError, errors.ErrorTypeData,
				fmt.Sprintf("duplicate column %q in header", name)).
				WithDetail("line", start+1)
		}
		seen[name] = true
	}

	rows := make([][]string, 0, len(lines)-start-1)
	for i := start + 1; i < len(lines); i++ {
		if strings.HasPrefix(lines[i], "#") {
			continue
		}
		tokens := s.splitTokens(lines[i])
		if len(tokens) != len(header) {
			return nil, errors.Wrap(errors.ErrFieldCountMismatch, errors.ErrorTypeData,
				fmt.Sprintf("line %d has %d tokens, header has %d", i+1, len(tokens), len(header))).
				WithDetail("line", i+1)
		}
		rows = append(rows, tokens)
	}

	entries := make([]entry.Entry, 0, len(rows))
	for _, tokens := range rows {
		fields := make([]entry.Field, len(header))
		for j, name := range header {
			fields[j] = entry.Field{Name: name, Value: entry.String(tokens[j])}
		}
		entries = append(entries, entry.New(fields...))
	}
	return entries, nil
}

func (s *CSVSerializer) writeLine(b *strings.Builder, tokens []string) {
	b.WriteString(strings.Join(tokens, s.delimiter))
	b.WriteString(s.newline)
}

func (s *CSVSerializer) splitLines(input string) []string {
	input = strings.TrimSuffix(input, s.newline)
	if input == "" {
		return nil
	}
	lines := strings.Split(input, s.newline)
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}

func (s *CSVSerializer) splitTokens(line string) []string {
	tokens := strings.Split(line, s.delimiter)
	for i, t := range tokens {
		tokens[i] = strings.TrimSpace(t)
	}
	return tokens
}
