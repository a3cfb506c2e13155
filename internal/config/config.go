// Package config declares connector settings, binds raw key/value maps
// against them and loads raw settings from files.
package config

import (
	"fmt"
	"sort"
)

// Schema is an ordered table of setting descriptors keyed by name.
type Schema struct {
	settings []Setting
	index    map[string]int
}

func NewSchema() *Schema {
	return &Schema{index: map[string]int{}}
}

// Define registers s. Defining a key twice is a caller error.
func (c *Schema) Define(s Setting) error {
	if s.Name == "" {
		return fmt.Errorf("define: empty configuration key")
	}
	if _, ok := c.index[s.Name]; ok {
		return fmt.Errorf("define %q: %w", s.Name, ErrDuplicateKey)
	}
	if s.Required && s.Default != nil {
		return fmt.Errorf("define %q: required setting cannot have a default", s.Name)
	}
	c.index[s.Name] = len(c.settings)
	c.settings = append(c.settings, s)
	return nil
}

// MustDefine is Define for statically known schemas; it panics on error.
func (c *Schema) MustDefine(settings ...Setting) *Schema {
	for _, s := range settings {
		if err := c.Define(s); err != nil {
			panic(err)
		}
	}
	return c
}

// Clone returns an independent copy so variants can extend a base schema.
func (c *Schema) Clone() *Schema {
	out := &Schema{
		settings: append([]Setting(nil), c.settings...),
		index:    make(map[string]int, len(c.index)),
	}
	for k, v := range c.index {
		out.index[k] = v
	}
	return out
}

func (c *Schema) Lookup(name string) (Setting, bool) {
	i, ok := c.index[name]
	if !ok {
		return Setting{}, false
	}
	return c.settings[i], true
}

// Settings returns the descriptors in definition order.
func (c *Schema) Settings() []Setting {
	return append([]Setting(nil), c.settings...)
}

// Names returns all keys sorted alphabetically.
func (c *Schema) Names() []string {
	names := make([]string, 0, len(c.settings))
	for _, s := range c.settings {
		names = append(names, s.Name)
	}
	sort.Strings(names)
	return names
}

// ByImportance returns descriptors ordered High first, then by name.
func (c *Schema) ByImportance() []Setting {
	out := c.Settings()
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Required != out[j].Required {
			return out[i].Required
		}
		if out[i].Importance != out[j].Importance {
			return out[i].Importance < out[j].Importance
		}
		return out[i].Name < out[j].Name
	})
	return out
}
