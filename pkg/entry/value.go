package entry

import (
	"fmt"
	"math"
	"strconv"

	"github.com/dmitryshurov/simple-data-storage-library/pkg/errors"
)

// Kind identifies the variant of a Value
type Kind int

const (
	KindNull Kind = iota
	KindString
	KindInt
	KindFloat
	KindBool
)

// String returns the lowercase name of the kind
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	default:
		return "unknown"
	}
}

// Value is a scalar cell value. Concrete types:
//
//   - Null
//   - String
//   - Int
//   - Float
//   - Bool
//
// Values are comparable with ==.
type Value interface {
	Kind() Kind
	String() string
	cellValue() // sealed marker
}

// Null is the absent value. Its string form is empty.
type Null struct{}

// String is a text value
type String string

// Int is a signed 64-bit integer value
type Int int64

// Float is a 64-bit floating point value
type Float float64

// Bool is a boolean value
type Bool bool

func (Null) Kind() Kind   { return KindNull }
func (String) Kind() Kind { return KindString }
func (Int) Kind() Kind    { return KindInt }
func (Float) Kind() Kind  { return KindFloat }
func (Bool) Kind() Kind   { return KindBool }

func (Null) String() string     { return "" }
func (v String) String() string { return string(v) }
func (v Int) String() string    { return strconv.FormatInt(int64(v), 10) }
func (v Float) String() string  { return strconv.FormatFloat(float64(v), 'g', -1, 64) }
func (v Bool) String() string   { return strconv.FormatBool(bool(v)) }

func (Null) cellValue()   {}
func (String) cellValue() {}
func (Int) cellValue()    {}
func (Float) cellValue()  {}
func (Bool) cellValue()   {}

// IsNull reports whether v is nil or Null.
func IsNull(v Value) bool {
	if v == nil {
		return true
	}
	_, ok := v.(Null)
	return ok
}

// ValueOf converts a Go native into a Value. nil becomes Null.
func ValueOf(v any) (Value, error) {
	switch x := v.(type) {
	case nil:
		return Null{}, nil
	case Value:
		return x, nil
	case string:
		return String(x), nil
	case bool:
		return Bool(x), nil
	case int:
		return Int(x), nil
	case int8:
		return Int(x), nil
	case int16:
		return Int(x), nil
	case int32:
		return Int(x), nil
	case int64:
		return Int(x), nil
	case uint:
		return uintValue(uint64(x))
	case uint8:
		return Int(x), nil
	case uint16:
		return Int(x), nil
	case uint32:
		return Int(x), nil
	case uint64:
		return uintValue(x)
	case float32:
		return Float(x), nil
	case float64:
		return Float(x), nil
	default:
		return nil, errors.Wrap(errors.ErrTypeError, errors.ErrorTypeValidation,
			fmt.Sprintf("unsupported value type %T", v))
	}
}

func uintValue(x uint64) (Value, error) {
	if x > math.MaxInt64 {
		return nil, errors.Wrap(errors.ErrTypeError, errors.ErrorTypeValidation,
			fmt.Sprintf("unsigned value %d overflows int64", x))
	}
	return Int(x), nil
}

// MustValueOf is ValueOf for literals known to be valid.
func MustValueOf(v any) Value {
	val, err := ValueOf(v)
	if err != nil {
		panic(err)
	}
	return val
}
