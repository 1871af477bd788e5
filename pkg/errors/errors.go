// Package errors provides structured error handling for the simple data
// storage library.
//
// Every failure is reported as an [*Error] carrying an [ErrorType] category,
// a message and, when the failure is one of the well-known kinds of the
// library, one of the sentinel errors below as its cause. Callers match kinds
// with the standard library:
//
//	if errors.Is(err, sderrors.ErrFieldNotFound) { ... }
//
// and categories with [IsType].
package errors

import (
	stderrors "errors"
	"fmt"
	"runtime"
)

// ErrorType represents the category of error
type ErrorType string

const (
	// ErrorTypeInternal represents internal errors
	ErrorTypeInternal ErrorType = "internal"
	// ErrorTypeValidation represents invalid arguments at a constructor or call boundary
	ErrorTypeValidation ErrorType = "validation"
	// ErrorTypeNotFound represents missing fields, files or registry keys
	ErrorTypeNotFound ErrorType = "not_found"
	// ErrorTypeConfig represents configuration errors
	ErrorTypeConfig ErrorType = "config"
	// ErrorTypeData represents encode/decode errors
	ErrorTypeData ErrorType = "data"
	// ErrorTypeCapability represents operations an implementation does not provide
	ErrorTypeCapability ErrorType = "capability"
	// ErrorTypeFile represents file operation errors
	ErrorTypeFile ErrorType = "file"
)

// Error kinds. Each is attached as the cause of the *Error returned at the
// point of detection.
var (
	// ErrTypeError is returned when an argument has the wrong shape.
	ErrTypeError = stderrors.New("type error")

	// ErrLengthMismatch is returned when initial column data have different lengths.
	ErrLengthMismatch = stderrors.New("column lengths do not match")

	// ErrConflictingArguments is returned when both initial data and columns are given.
	ErrConflictingArguments = stderrors.New("conflicting arguments")

	// ErrUnknownColumn is returned when an insert names an undeclared column.
	ErrUnknownColumn = stderrors.New("unknown column")

	// ErrEmptyInsert is returned when an insert supplies no values.
	ErrEmptyInsert = stderrors.New("empty insert")

	// ErrFieldNotFound is returned when an entry has no such field.
	ErrFieldNotFound = stderrors.New("field not found")

	// ErrMalformedFilterExpression is returned for filter expressions other than field=pattern.
	ErrMalformedFilterExpression = stderrors.New("malformed filter expression")

	// ErrFieldMismatch is returned when entries in one CSV batch have different fields.
	ErrFieldMismatch = stderrors.New("entries have different sets of fields")

	// ErrUnsupportedValueType is returned when a format cannot represent a value.
	ErrUnsupportedValueType = stderrors.New("unsupported value type")

	// ErrMissingHeader is returned when CSV input has no # header line.
	ErrMissingHeader = stderrors.New("missing header")

	// ErrFieldCountMismatch is returned when a CSV line does not match the header.
	ErrFieldCountMismatch = stderrors.New("field count does not match header")

	// ErrMissingEntriesKey is returned when a document has no entries list.
	ErrMissingEntriesKey = stderrors.New("missing entries key")

	// ErrParseError is returned for malformed input documents.
	ErrParseError = stderrors.New("parse error")

	// ErrUnsupportedOperation is returned by serializers that only work one way.
	ErrUnsupportedOperation = stderrors.New("unsupported operation")

	// ErrFileNotFound is returned when loading from a path that does not exist.
	ErrFileNotFound = stderrors.New("file not found")

	// ErrUnknownFormat is returned when no serializer is bound to a file extension.
	ErrUnknownFormat = stderrors.New("unknown format")

	// ErrUnknownKey is returned when a registry has nothing under a key.
	ErrUnknownKey = stderrors.New("unknown key")
)

// Error represents a structured error with context
type Error struct {
	Type    ErrorType
	Message string
	Cause   error
	Details map[string]interface{}
	Stack   []StackFrame
}

// StackFrame represents a single frame in the call stack
type StackFrame struct {
	Function string
	File     string
	Line     int
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// WithDetail adds a key-value detail to the error
func (e *Error) WithDetail(key string, value interface{}) *Error {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// New creates a new error with the given type and message
func New(errType ErrorType, message string) *Error {
	return &Error{
		Type:    errType,
		Message: message,
		Stack:   captureStack(2),
	}
}

// Newf is New with a format string.
func Newf(errType ErrorType, format string, args ...interface{}) *Error {
	return &Error{
		Type:    errType,
		Message: fmt.Sprintf(format, args...),
		Stack:   captureStack(2),
	}
}

// Wrap wraps an existing error with additional context
func Wrap(err error, errType ErrorType, message string) *Error {
	if err == nil {
		return nil
	}

	// If already our error type, preserve the stack
	var existingErr *Error
	if stderrors.As(err, &existingErr) {
		return &Error{
			Type:    errType,
			Message: message,
			Cause:   err,
			Stack:   existingErr.Stack,
		}
	}

	return &Error{
		Type:    errType,
		Message: message,
		Cause:   err,
		Stack:   captureStack(2),
	}
}

// Wrapf is Wrap with a format string.
func Wrapf(err error, errType ErrorType, format string, args ...interface{}) *Error {
	if err == nil {
		return nil
	}
	return Wrap(err, errType, fmt.Sprintf(format, args...))
}

// IsType checks if the error is of the given type
func IsType(err error, errType ErrorType) bool {
	var e *Error
	if !stderrors.As(err, &e) {
		return false
	}
	return e.Type == errType
}

// Is reports whether any error in err's chain matches target.
// It is the standard library errors.Is, re-exported so callers need a single import.
func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

// As is the standard library errors.As.
func As(err error, target interface{}) bool {
	return stderrors.As(err, target)
}

// captureStack captures the current call stack
func captureStack(skip int) []StackFrame {
	const maxFrames = 32
	frames := make([]StackFrame, 0, maxFrames)

	for i := skip; i < maxFrames+skip; i++ {
		pc, file, line, ok := runtime.Caller(i)
		if !ok {
			break
		}

		fn := runtime.FuncForPC(pc)
		if fn == nil {
			continue
		}

		frames = append(frames, StackFrame{
			Function: fn.Name(),
			File:     file,
			Line:     line,
		})
	}

	return frames
}
