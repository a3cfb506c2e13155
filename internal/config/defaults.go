package config

import (
	"fmt"
	"strings"
)

// Defaults returns the default of every setting that has one, formatted as
// the raw string a user would write for it.
func (c *Schema) Defaults() map[string]string {
	out := make(map[string]string, len(c.settings))
	for _, s := range c.settings {
		if !s.HasDefault() {
			continue
		}
		out[s.Name] = Format(s.Default)
	}
	return out
}

// Format renders a typed value in raw setting syntax.
func Format(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case []string:
		return strings.Join(x, ",")
	default:
		return fmt.Sprint(x)
	}
}
