package config

import (
	"errors"
	"fmt"
)

var (
	// ErrMissing marks a required key absent from the raw settings.
	ErrMissing = errors.New("missing required configuration")
	// ErrWrongType marks a value that cannot be read as the declared type.
	ErrWrongType = errors.New("wrong type")
	// ErrInvalid marks a well-typed value outside its allowed domain.
	ErrInvalid = errors.New("invalid value")
	// ErrDuplicateKey is returned when a schema defines the same key twice.
	ErrDuplicateKey = errors.New("duplicate configuration key")
)

// Error identifies the offending key, its raw value and the reason.
// Kind is one of ErrMissing, ErrWrongType or ErrInvalid.
type Error struct {
	Kind   error
	Key    string
	Value  any
	Reason string

	secret bool
}

func (e *Error) Error() string {
	switch e.Kind {
	case ErrMissing:
		return fmt.Sprintf("missing required configuration %q which has no default value", e.Key)
	case ErrWrongType:
		return fmt.Sprintf("invalid value %v for configuration %s: wrong type, %s", e.printable(), e.Key, e.Reason)
	default:
		return fmt.Sprintf("invalid value %v for configuration %s: %s", e.printable(), e.Key, e.Reason)
	}
}

func (e *Error) Unwrap() error { return e.Kind }

// Invalid builds the validation error returned by validators.
func Invalid(key string, value any, reason string) *Error {
	return &Error{Kind: ErrInvalid, Key: key, Value: value, Reason: reason}
}

func missing(key string) *Error {
	return &Error{Kind: ErrMissing, Key: key}
}

func wrongType(key string, value any, t Type) *Error {
	return &Error{Kind: ErrWrongType, Key: key, Value: value, Reason: "expected " + t.String()}
}

// Errors flattens a joined binding error into its per-key errors.
func Errors(err error) []*Error {
	var out []*Error
	var walk func(error)
	walk = func(err error) {
		if err == nil {
			return
		}
		switch e := err.(type) {
		case *Error:
			out = append(out, e)
		case interface{ Unwrap() []error }:
			for _, inner := range e.Unwrap() {
				walk(inner)
			}
		case interface{ Unwrap() error }:
			walk(e.Unwrap())
		}
	}
	walk(err)
	return out
}

// printable keeps password values out of error messages.
func (e *Error) printable() any {
	if e.secret {
		return "[hidden]"
	}
	if s, ok := e.Value.(string); ok {
		return fmt.Sprintf("%q", s)
	}
	return e.Value
}
