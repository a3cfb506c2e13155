package config

import (
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
)

// WriteYAML writes an example settings file: one key per setting with its
// default (or an empty value when required), documented in comments.
// Optional passwords and optional keys without a default are appended as
// commented-out lines, so loading the file back binds their defaults.
func (c *Schema) WriteYAML(w io.Writer) error {
	doc := &yaml.Node{Kind: yaml.MappingNode}
	var commented []Setting
	for _, s := range c.ByImportance() {
		if !s.Required && (s.Type == Password || s.Default == nil) {
			commented = append(commented, s)
			continue
		}
		key := &yaml.Node{
			Kind:        yaml.ScalarNode,
			Value:       s.Name,
			HeadComment: comment(s),
		}
		doc.Content = append(doc.Content, key, valueNode(s))
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode schema: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("encode schema: %w", err)
	}

	var b strings.Builder
	for _, s := range commented {
		b.WriteString("\n")
		for _, line := range strings.Split(comment(s), "\n") {
			fmt.Fprintf(&b, "# %s\n", line)
		}
		fmt.Fprintf(&b, "# %s:\n", s.Name)
	}
	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("write schema: %w", err)
	}
	return nil
}

func comment(s Setting) string {
	var b strings.Builder
	b.WriteString(s.Doc)
	fmt.Fprintf(&b, "\ntype: %s, importance: %s", s.Type, s.Importance)
	switch {
	case s.Required:
		b.WriteString(", required")
	case s.Default == nil:
		b.WriteString(", optional")
	}
	if v, ok := s.Validator.(fmt.Stringer); ok {
		fmt.Fprintf(&b, ", valid: %s", v)
	}
	return b.String()
}

func valueNode(s Setting) *yaml.Node {
	if s.Type == List {
		n := &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle}
		if l, ok := s.Default.([]string); ok {
			for _, e := range l {
				n.Content = append(n.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: e})
			}
		}
		return n
	}
	n := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str"}
	if s.HasDefault() {
		n.Value = Format(s.Default)
	}
	switch s.Type {
	case Int, Long:
		if n.Value != "" {
			n.Tag = "!!int"
		}
	case Bool:
		if n.Value != "" {
			n.Tag = "!!bool"
		}
	}
	return n
}
