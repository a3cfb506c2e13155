package config

import (
	"fmt"
	"sort"

	"github.com/rs/zerolog"
)

// Values is the typed result of a successful Bind. It is never mutated.
//
// Getters panic when the key is not part of the schema or was declared
// with another type: both are programming errors, not input errors.
type Values struct {
	schema *Schema
	values   map[string]any
	supplied map[string]bool
	unused   []string
}

func (v Values) String(key string) string {
	s, _ := v.get(key, String, Password).(string)
	return s
}

// Password returns the value of a Password setting.
func (v Values) Password(key string) string {
	s, _ := v.get(key, Password).(string)
	return s
}

func (v Values) Int(key string) int {
	n, _ := v.get(key, Int).(int)
	return n
}

func (v Values) Long(key string) int64 {
	n, _ := v.get(key, Long).(int64)
	return n
}

func (v Values) Bool(key string) bool {
	b, _ := v.get(key, Bool).(bool)
	return b
}

// List returns a copy of a List setting; nil when unset and optional.
func (v Values) List(key string) []string {
	l, _ := v.get(key, List).([]string)
	if l == nil {
		return nil
	}
	return append([]string{}, l...)
}

// IsSet reports whether key bound to a non-nil value.
func (v Values) IsSet(key string) bool {
	return v.values[key] != nil
}

// Supplied reports whether key came from the raw input rather than from
// its default.
func (v Values) Supplied(key string) bool {
	return v.supplied[key]
}

// Unused lists raw keys the schema did not recognize, sorted.
func (v Values) Unused() []string {
	return append([]string(nil), v.unused...)
}

func (v Values) get(key string, types ...Type) any {
	if v.schema == nil {
		panic("config: read from unbound Values")
	}
	s, ok := v.schema.Lookup(key)
	if !ok {
		panic(fmt.Sprintf("config: unknown configuration %q", key))
	}
	for _, t := range types {
		if s.Type == t {
			return v.values[key]
		}
	}
	panic(fmt.Sprintf("config: %q is declared %s", key, s.Type))
}

// MarshalZerologObject logs every bound value, hiding passwords.
func (v Values) MarshalZerologObject(e *zerolog.Event) {
	keys := make([]string, 0, len(v.values))
	for k := range v.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		s, _ := v.schema.Lookup(k)
		val := v.values[k]
		switch {
		case val == nil:
			e.Interface(k, nil)
		case s.Type == Password:
			e.Str(k, "[hidden]")
		case s.Type == List:
			e.Strs(k, val.([]string))
		default:
			e.Interface(k, val)
		}
	}
}
