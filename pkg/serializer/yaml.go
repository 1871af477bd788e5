package serializer

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dmitryshurov/simple-data-storage-library/pkg/entry"
	"github.com/dmitryshurov/simple-data-storage-library/pkg/errors"
)

// DefaultYAMLIndent is the indent used when none is configured
const DefaultYAMLIndent = 2

// YAMLSerializer writes the same document shape as JSONSerializer:
//
//	entries:
//	  - name: Dmitry
//	    address: Moscow
//
// Scalars are tagged so types survive a round trip.
type YAMLSerializer struct {
	indent int
}

// NewYAMLSerializer creates a YAML serializer
func NewYAMLSerializer(indent int) (*YAMLSerializer, error) {
	if indent < 1 {
		return nil, invalidOption("yaml indent", indent)
	}
	return &YAMLSerializer{indent: indent}, nil
}

// EntriesToString serializes entries
func (s *YAMLSerializer) EntriesToString(entries []entry.Entry) (string, error) {
	seq := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
	for _, e := range entries {
		m := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, name := range e.Fields() {
			v, _ := e.Lookup(name)
			m.Content = append(m.Content, strNode(name), valueNode(v))
		}
		seq.Content = append(seq.Content, m)
	}
	if len(entries) == 0 {
		seq.Style = yaml.FlowStyle
	}

	doc := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map", Content: []*yaml.Node{strNode(entriesKey), seq}}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(s.indent)
	if err := enc.Encode(doc); err != nil {
		return "", errors.Wrap(err, errors.ErrorTypeData, "failed to encode yaml")
	}
	if err := enc.Close(); err != nil {
		return "", errors.Wrap(err, errors.ErrorTypeData, "failed to encode yaml")
	}
	return buf.String(), nil
}

func strNode(s string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s}
}

func valueNode(v entry.Value) *yaml.Node {
	n := &yaml.Node{Kind: yaml.ScalarNode}
	switch x := v.(type) {
	case entry.String:
		n.Tag, n.Value = "!!str", string(x)
	case entry.Int:
		n.Tag, n.Value = "!!int", x.String()
	case entry.Bool:
		n.Tag, n.Value = "!!bool", x.String()
	case entry.Float:
		n.Tag, n.Value = "!!float", formatYAMLFloat(float64(x))
	default:
		n.Tag, n.Value = "!!null", "null"
	}
	return n
}

func formatYAMLFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return ".nan"
	case math.IsInf(f, 1):
		return ".inf"
	case math.IsInf(f, -1):
		return "-.inf"
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return s
}

// EntriesFromString parses input
func (s *YAMLSerializer) EntriesFromString(input string) ([]entry.Entry, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(input), &doc); err != nil {
		return nil, errors.Wrap(errors.ErrParseError, errors.ErrorTypeData, err.Error())
	}

	root := resolveAlias(&doc)
	if root.Kind == yaml.DocumentNode && len(root.Content) > 0 {
		root = resolveAlias(root.Content[0])
	}
	seq := lookupKey(root, entriesKey)
	if seq == nil || seq.Kind != yaml.SequenceNode {
		return nil, errors.Wrap(errors.ErrMissingEntriesKey, errors.ErrorTypeData,
			fmt.Sprintf("document has no %q sequence", entriesKey))
	}

	entries := make([]entry.Entry, 0, len(seq.Content))
	for i, item := range seq.Content {
		item = resolveAlias(item)
		if item.Kind != yaml.MappingNode {
			return nil, errors.Wrap(errors.ErrParseError, errors.ErrorTypeData,
				fmt.Sprintf("entry %d at line %d is not a mapping", i, item.Line)).WithDetail("index", i)
		}
		e, err := decodeYAMLEntry(item)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeData, fmt.Sprintf("failed to decode entry %d", i)).
				WithDetail("index", i)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func resolveAlias(n *yaml.Node) *yaml.Node {
	for n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	return n
}

func lookupKey(m *yaml.Node, key string) *yaml.Node {
	if m.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return resolveAlias(m.Content[i+1])
		}
	}
	return nil
}

func decodeYAMLEntry(m *yaml.Node) (entry.Entry, error) {
	fields := make([]entry.Field, 0, len(m.Content)/2)
	for i := 0; i+1 < len(m.Content); i += 2 {
		key := resolveAlias(m.Content[i])
		if key.Kind != yaml.ScalarNode {
			return entry.Entry{}, errors.Wrap(errors.ErrParseError, errors.ErrorTypeData,
				fmt.Sprintf("non-scalar key at line %d", key.Line))
		}
		v, err := decodeYAMLValue(key.Value, resolveAlias(m.Content[i+1]))
		if err != nil {
			return entry.Entry{}, err
		}
		fields = append(fields, entry.Field{Name: key.Value, Value: v})
	}
	return entry.New(fields...), nil
}

func decodeYAMLValue(field string, n *yaml.Node) (entry.Value, error) {
	if n.Kind != yaml.ScalarNode {
		return nil, errors.Wrap(errors.ErrUnsupportedValueType, errors.ErrorTypeData,
			fmt.Sprintf("field %q at line %d is not a scalar", field, n.Line)).WithDetail("field", field)
	}

	var err error
	switch n.ShortTag() {
	case "!!null":
		return entry.Null{}, nil
	case "!!str", "!!timestamp":
		return entry.String(n.Value), nil
	case "!!int":
		var i int64
		if err = n.Decode(&i); err == nil {
			return entry.Int(i), nil
		}
	case "!!float":
		var f float64
		if err = n.Decode(&f); err == nil {
			return entry.Float(f), nil
		}
	case "!!bool":
		var b bool
		if err = n.Decode(&b); err == nil {
			return entry.Bool(b), nil
		}
	default:
		return nil, errors.Wrap(errors.ErrUnsupportedValueType, errors.ErrorTypeData,
			fmt.Sprintf("field %q has unsupported tag %s", field, n.ShortTag())).WithDetail("field", field)
	}
	return nil, errors.Wrap(errors.ErrParseError, errors.ErrorTypeData,
		fmt.Sprintf("field %q: %v", field, err)).WithDetail("field", field)
}
