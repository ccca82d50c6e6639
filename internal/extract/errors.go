package extract

import (
	"errors"
	"fmt"
)

// ErrorKind classifies extraction failures.
type ErrorKind int

const (
	// MalformedJSON means no parseable JSON object was found.
	MalformedJSON ErrorKind = iota + 1
	// SchemaMismatch means a required field is missing or has an incompatible type.
	SchemaMismatch
	// UnsupportedInputKind means the top-level JSON value is not an object.
	UnsupportedInputKind
)

func (k ErrorKind) String() string {
	switch k {
	case MalformedJSON:
		return "malformed_json"
	case SchemaMismatch:
		return "schema_mismatch"
	case UnsupportedInputKind:
		return "unsupported_input_kind"
	default:
		return "unknown"
	}
}

// Sentinel errors for errors.Is matching against an *Error.
var (
	ErrMalformedJSON    = errors.New("malformed JSON")
	ErrSchemaMismatch   = errors.New("schema mismatch")
	ErrUnsupportedInput = errors.New("unsupported input kind")
)

// Error is returned by Extract. All kinds are recoverable: callers are
// expected to show the raw text and let the user retry.
type Error struct {
	Kind ErrorKind
	// Field is the dotted path of the offending field, if any.
	Field string
	Msg   string
	Err   error
}

func (e *Error) Error() string {
	msg := e.Msg
	if e.Field != "" {
		msg = e.Field + ": " + msg
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return fmt.Sprintf("extraction failed (%s): %s", e.Kind, msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is the sentinel for this error's kind.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrMalformedJSON:
		return e.Kind == MalformedJSON
	case ErrSchemaMismatch:
		return e.Kind == SchemaMismatch
	case ErrUnsupportedInput:
		return e.Kind == UnsupportedInputKind
	}
	return false
}

// KindOf returns the extraction error kind of err, or 0 if err is not an
// extraction error.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

func malformed(msg string, err error) *Error {
	return &Error{Kind: MalformedJSON, Msg: msg, Err: err}
}

func mismatch(field, format string, args ...any) *Error {
	return &Error{Kind: SchemaMismatch, Field: field, Msg: fmt.Sprintf(format, args...)}
}
