package serializer

import (
	"fmt"
	"math"
	"strconv"

	"github.com/buger/jsonparser"

	"github.com/dmitryshurov/simple-data-storage-library/pkg/entry"
	"github.com/dmitryshurov/simple-data-storage-library/pkg/errors"
	"github.com/dmitryshurov/simple-data-storage-library/pkg/json"
)

const entriesKey = "entries"

// JSONSerializer writes {"entries": [...]} with one object per entry.
// Field order and value types are preserved in both directions.
type JSONSerializer struct {
	indent int
}

// NewJSONSerializer creates a JSON serializer. indent is the number of
// spaces per nesting level; 0 writes compact output.
func NewJSONSerializer(indent int) (*JSONSerializer, error) {
	if indent < 0 {
		return nil, invalidOption("json indent", indent)
	}
	return &JSONSerializer{indent: indent}, nil
}

// EntriesToString serializes entries
func (s *JSONSerializer) EntriesToString(entries []entry.Entry) (string, error) {
	buf := json.GetBuffer()
	defer json.PutBuffer(buf)

	out := buf.AvailableBuffer()
	out = append(out, `{"`+entriesKey+`":[`...)
	for i, e := range entries {
		if i > 0 {
			out = append(out, ',')
		}
		var err error
		if out, err = appendEntry(out, e); err != nil {
			return "", errors.Wrap(err, errors.ErrorTypeData, fmt.Sprintf("failed to encode entry %d", i)).
				WithDetail("index", i)
		}
	}
	out = append(out, "]}"...)

	if s.indent == 0 {
		return string(out), nil
	}
	indented, err := json.Indent(out, s.indent)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrorTypeInternal, "failed to indent json")
	}
	return string(indented), nil
}

func appendEntry(out []byte, e entry.Entry) ([]byte, error) {
	var err error
	out = append(out, '{')
	for i, name := range e.Fields() {
		if i > 0 {
			out = append(out, ',')
		}
		if out, err = json.AppendString(out, name); err != nil {
			return out, err
		}
		out = append(out, ':')
		v, _ := e.Lookup(name)
		if out, err = appendValue(out, name, v); err != nil {
			return out, err
		}
	}
	return append(out, '}'), nil
}

func appendValue(out []byte, field string, v entry.Value) ([]byte, error) {
	switch x := v.(type) {
	case entry.Null:
		return append(out, "null"...), nil
	case entry.String:
		return json.AppendString(out, string(x))
	case entry.Int:
		return strconv.AppendInt(out, int64(x), 10), nil
	case entry.Bool:
		return strconv.AppendBool(out, bool(x)), nil
	case entry.Float:
		f := float64(x)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return out, errors.Wrap(errors.ErrUnsupportedValueType, errors.ErrorTypeData,
				fmt.Sprintf("json cannot store %v in field %q", f, field)).WithDetail("field", field)
		}
		return json.AppendFloat(out, f)
	default:
		return out, errors.Wrap(errors.ErrUnsupportedValueType, errors.ErrorTypeData,
			fmt.Sprintf("json cannot store value of field %q", field)).WithDetail("field", field)
	}
}

// EntriesFromString parses input
func (s *JSONSerializer) EntriesFromString(input string) ([]entry.Entry, error) {
	data := []byte(input)
	if !json.Valid(data) {
		return nil, errors.Wrap(errors.ErrParseError, errors.ErrorTypeData, "input is not valid json")
	}

	raw, typ, found, err := json.Get(data, entriesKey)
	if err != nil {
		return nil, errors.Wrap(errors.ErrParseError, errors.ErrorTypeData, err.Error())
	}
	if !found || typ != jsonparser.Array {
		return nil, errors.Wrap(errors.ErrMissingEntriesKey, errors.ErrorTypeData,
			fmt.Sprintf("document has no %q array", entriesKey))
	}

	elems, err := json.Elements(raw)
	if err != nil {
		return nil, errors.Wrap(errors.ErrParseError, errors.ErrorTypeData, err.Error())
	}

	entries := make([]entry.Entry, 0, len(elems))
	for i, elem := range elems {
		if elem.Type != jsonparser.Object {
			return nil, errors.Wrap(errors.ErrParseError, errors.ErrorTypeData,
				fmt.Sprintf("entry %d is a %s, expected an object", i, elem.Type)).WithDetail("index", i)
		}
		e, err := decodeEntry(elem.Raw)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeData, fmt.Sprintf("failed to decode entry %d", i)).
				WithDetail("index", i)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func decodeEntry(raw []byte) (entry.Entry, error) {
	members, err := json.Members(raw)
	if err != nil {
		return entry.Entry{}, errors.Wrap(errors.ErrParseError, errors.ErrorTypeData, err.Error())
	}

	fields := make([]entry.Field, 0, len(members))
	for _, m := range members {
		native, err := json.DecodeScalar(m.Raw, m.Type)
		if errors.Is(err, json.ErrNotScalar) {
			return entry.Entry{}, errors.Wrap(errors.ErrUnsupportedValueType, errors.ErrorTypeData,
				fmt.Sprintf("field %q holds a nested %s", m.Key, m.Type)).WithDetail("field", m.Key)
		}
		if err != nil {
			return entry.Entry{}, errors.Wrap(errors.ErrParseError, errors.ErrorTypeData,
				fmt.Sprintf("field %q: %v", m.Key, err)).WithDetail("field", m.Key)
		}
		v, err := entry.ValueOf(native)
		if err != nil {
			return entry.Entry{}, err
		}
		fields = append(fields, entry.Field{Name: m.Key, Value: v})
	}
	return entry.New(fields...), nil
}
