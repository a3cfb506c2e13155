package config

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v3"
)

// LoadFile reads raw settings from a .yaml/.yml, .json or .properties file.
// Scalars are returned as strings and sequences as []string, so values are
// typed only by Bind.
func LoadFile(path string) (map[string]any, error) {
	b, err := os.ReadFile(path) // #nosec G304 - settings path is operator supplied
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return LoadYAML(b)
	case ".json":
		return LoadJSON(b)
	case ".properties", ".conf":
		return LoadProperties(b)
	default:
		return nil, fmt.Errorf("read %s: unsupported settings file extension", path)
	}
}

// LoadYAML flattens nested mappings into dotted keys:
//
//	rabbitmq:
//	  host: broker
//
// yields "rabbitmq.host" = "broker".
func LoadYAML(data []byte) (map[string]any, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("yaml unmarshal: %w", err)
	}
	out := map[string]any{}
	if len(doc.Content) == 0 {
		return out, nil
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("yaml: line %d: settings must be a mapping", root.Line)
	}
	if err := flattenYAML("", root, out); err != nil {
		return nil, err
	}
	return out, nil
}

func flattenYAML(prefix string, n *yaml.Node, out map[string]any) error {
	for i := 0; i+1 < len(n.Content); i += 2 {
		k, v := n.Content[i], n.Content[i+1]
		key := joinKey(prefix, k.Value)
		if v.Kind == yaml.AliasNode {
			v = v.Alias
		}
		switch v.Kind {
		case yaml.MappingNode:
			if err := flattenYAML(key, v, out); err != nil {
				return err
			}
		case yaml.SequenceNode:
			l := make([]string, 0, len(v.Content))
			for _, e := range v.Content {
				if e.Kind != yaml.ScalarNode {
					return fmt.Errorf("yaml: line %d: %s: list entries must be scalars", e.Line, key)
				}
				l = append(l, e.Value)
			}
			out[key] = l
		case yaml.ScalarNode:
			if v.Tag == "!!null" {
				out[key] = nil
				continue
			}
			out[key] = v.Value
		}
	}
	return nil
}

// LoadJSON accepts either a flat object or a Kafka Connect REST payload
// of the form {"name": "...", "config": {...}}.
func LoadJSON(data []byte) (map[string]any, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("json: invalid document")
	}
	root := gjson.ParseBytes(data)
	if cfg := root.Get("config"); cfg.IsObject() {
		root = cfg
	}
	if !root.IsObject() {
		return nil, fmt.Errorf("json: settings must be an object")
	}
	out := map[string]any{}
	if err := flattenJSON("", root, out); err != nil {
		return nil, err
	}
	return out, nil
}

func flattenJSON(prefix string, r gjson.Result, out map[string]any) error {
	var err error
	r.ForEach(func(k, v gjson.Result) bool {
		key := joinKey(prefix, k.String())
		switch {
		case v.IsObject():
			err = flattenJSON(key, v, out)
		case v.IsArray():
			l := []string{}
			for _, e := range v.Array() {
				if e.IsObject() || e.IsArray() {
					err = fmt.Errorf("json: %s: list entries must be scalars", key)
					return false
				}
				l = append(l, e.String())
			}
			out[key] = l
		case v.Type == gjson.Null:
			out[key] = nil
		default:
			out[key] = v.String()
		}
		return err == nil
	})
	return err
}

// LoadProperties parses key=value (or key: value) lines. Lines starting
// with # or ! are comments.
func LoadProperties(data []byte) (map[string]any, error) {
	out := map[string]any{}
	sc := bufio.NewScanner(bytes.NewReader(data))
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || text[0] == '#' || text[0] == '!' {
			continue
		}
		i := strings.IndexAny(text, "=:")
		if i <= 0 {
			return nil, fmt.Errorf("properties: line %d: expected key=value", line)
		}
		out[strings.TrimSpace(text[:i])] = strings.TrimLeft(text[i+1:], " \t")
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("properties: %w", err)
	}
	return out, nil
}

func joinKey(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}
