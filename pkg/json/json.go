// Package json provides JSON helpers built on goccy/go-json for encoding and
// buger/jsonparser for order-preserving decoding.
package json

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/buger/jsonparser"
	gojson "github.com/goccy/go-json"
)

// ErrNotScalar is returned by DecodeScalar for objects and arrays
var ErrNotScalar = stderrors.New("value is not a scalar")

var bufferPool = sync.Pool{
	New: func() interface{} {
		return bytes.NewBuffer(make([]byte, 0, 4096))
	},
}

// GetBuffer gets a pooled bytes.Buffer
func GetBuffer() *bytes.Buffer {
	buf := bufferPool.Get().(*bytes.Buffer)
	buf.Reset()
	return buf
}

// PutBuffer returns a buffer to the pool
func PutBuffer(buf *bytes.Buffer) {
	if buf.Cap() > 1024*1024 { // Don't pool very large buffers
		return
	}
	bufferPool.Put(buf)
}

// Valid reports whether data is a valid JSON document
func Valid(data []byte) bool {
	return gojson.Valid(data)
}

// Indent re-indents compact JSON with n spaces per level
func Indent(src []byte, n int) ([]byte, error) {
	var dst bytes.Buffer
	if err := gojson.Indent(&dst, src, "", spaces(n)); err != nil {
		return nil, err
	}
	return dst.Bytes(), nil
}

func spaces(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = ' '
	}
	return string(b)
}

// Member is one key/value pair of an object, in document order
type Member struct {
	Key  string
	Raw  []byte
	Type jsonparser.ValueType
}

// Get returns the raw value under key of the top-level object in data.
// found is false when data is not an object or has no such key.
func Get(data []byte, key string) (raw []byte, typ jsonparser.ValueType, found bool, err error) {
	raw, typ, _, err = jsonparser.Get(data, key)
	if err != nil {
		if stderrors.Is(err, jsonparser.KeyPathNotFoundError) {
			return nil, jsonparser.NotExist, false, nil
		}
		return nil, jsonparser.Unknown, false, err
	}
	return raw, typ, true, nil
}

// Elements returns the raw elements of a JSON array in order
func Elements(array []byte) ([]Member, error) {
	var out []Member
	var cbErr error
	_, err := jsonparser.ArrayEach(array, func(value []byte, typ jsonparser.ValueType, _ int, err error) {
		if err != nil && cbErr == nil {
			cbErr = err
			return
		}
		out = append(out, Member{Raw: value, Type: typ})
	})
	if err != nil {
		return nil, err
	}
	if cbErr != nil {
		return nil, cbErr
	}
	return out, nil
}

// Members returns the members of a JSON object in document order. Keys are
// already unescaped by jsonparser.
func Members(object []byte) ([]Member, error) {
	var out []Member
	err := jsonparser.ObjectEach(object, func(key []byte, value []byte, typ jsonparser.ValueType, _ int) error {
		out = append(out, Member{Key: string(key), Raw: value, Type: typ})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// DecodeScalar converts a raw scalar into nil, string, int64, float64 or
// bool. Numbers without a fraction or exponent that fit in int64 decode as
// int64.
func DecodeScalar(raw []byte, typ jsonparser.ValueType) (interface{}, error) {
	switch typ {
	case jsonparser.Null:
		return nil, nil
	case jsonparser.String:
		return jsonparser.ParseString(raw)
	case jsonparser.Boolean:
		return jsonparser.ParseBoolean(raw)
	case jsonparser.Number:
		if !bytes.ContainsAny(raw, ".eE") {
			if i, err := strconv.ParseInt(string(raw), 10, 64); err == nil {
				return i, nil
			}
		}
		return jsonparser.ParseFloat(raw)
	case jsonparser.Object, jsonparser.Array:
		return nil, ErrNotScalar
	default:
		return nil, fmt.Errorf("unexpected JSON value %q", raw)
	}
}

// AppendString appends s as a quoted JSON string without HTML escaping
func AppendString(dst []byte, s string) ([]byte, error) {
	data, err := gojson.MarshalWithOption(s, gojson.DisableHTMLEscape())
	if err != nil {
		return dst, err
	}
	return append(dst, data...), nil
}

// AppendFloat appends f as a JSON number that always reads back as a
// floating point literal.
func AppendFloat(dst []byte, f float64) ([]byte, error) {
	data, err := gojson.Marshal(f)
	if err != nil {
		return dst, err
	}
	dst = append(dst, data...)
	if !bytes.ContainsAny(data, ".eE") {
		dst = append(dst, '.', '0')
	}
	return dst, nil
}
