package config

import "fmt"

// Type is the declared type of a setting.
type Type int

const (
	String Type = iota
	Password
	Int
	Long
	Bool
	List
)

func (t Type) String() string {
	switch t {
	case String:
		return "string"
	case Password:
		return "password"
	case Int:
		return "int"
	case Long:
		return "long"
	case Bool:
		return "boolean"
	case List:
		return "list"
	default:
		return fmt.Sprintf("type(%d)", int(t))
	}
}

// Importance is informational only; it orders documentation output.
type Importance int

const (
	High Importance = iota
	Medium
	Low
)

func (i Importance) String() string {
	switch i {
	case High:
		return "high"
	case Medium:
		return "medium"
	case Low:
		return "low"
	default:
		return fmt.Sprintf("importance(%d)", int(i))
	}
}

// Setting describes one recognized configuration key.
//
// A setting is either Required, or carries a Default. A nil Default on a
// non-required setting means the key is optional and binds to nil.
type Setting struct {
	Name       string
	Type       Type
	Default    any
	Required   bool
	Validator  Validator
	Importance Importance
	Doc        string
}

// HasDefault reports whether binding an absent key yields a concrete value.
func (s Setting) HasDefault() bool {
	return !s.Required && s.Default != nil
}
