package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validator checks a bound, correctly typed value. Failures should be
// built with Invalid so they carry the key, value and reason.
type Validator interface {
	EnsureValid(key string, value any) error
}

// ValidatorFunc adapts a function to Validator.
type ValidatorFunc func(key string, value any) error

func (f ValidatorFunc) EnsureValid(key string, value any) error { return f(key, value) }

var validate = validator.New()

// Tag validates with a go-playground/validator tag, e.g. "gte=0,lte=65535"
// or "min=1" for lists. It panics when the tag itself is malformed.
func Tag(tag string) Validator {
	return tagValidator(tag)
}

type tagValidator string

func (t tagValidator) EnsureValid(key string, value any) error {
	err := validate.Var(value, string(t))
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if errors.As(err, &ve) && len(ve) > 0 {
		return Invalid(key, value, reason(ve[0]))
	}
	return Invalid(key, value, err.Error())
}

func (t tagValidator) String() string { return string(t) }

func reason(fe validator.FieldError) string {
	switch fe.Tag() {
	case "gte":
		return "must be >= " + fe.Param()
	case "lte":
		return "must be <= " + fe.Param()
	case "gt":
		return "must be > " + fe.Param()
	case "min":
		return fmt.Sprintf("must contain at least %s entries", fe.Param())
	case "max":
		return fmt.Sprintf("must contain at most %s entries", fe.Param())
	case "required":
		return "must not be empty"
	case "oneof":
		return "must be one of [" + strings.ReplaceAll(fe.Param(), " ", ", ") + "]"
	default:
		return fmt.Sprintf("failed %q constraint", fe.Tag())
	}
}

// All runs each validator in order and returns the first failure.
func All(vs ...Validator) Validator {
	return ValidatorFunc(func(key string, value any) error {
		for _, v := range vs {
			if err := v.EnsureValid(key, value); err != nil {
				return err
			}
		}
		return nil
	})
}

// NonEmptyEntries rejects lists containing an empty entry.
func NonEmptyEntries() Validator {
	return ValidatorFunc(func(key string, value any) error {
		l, ok := value.([]string)
		if !ok {
			return Invalid(key, value, "must be a list")
		}
		for i, e := range l {
			if e == "" {
				return Invalid(key, value, fmt.Sprintf("entry %d must not be empty", i))
			}
		}
		return nil
	})
}
