package config

import (
	"errors"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Bind resolves every descriptor against raw. It either returns a complete
// Values or an error joining every failing key in schema order.
// Keys in raw that the schema does not know are ignored and reported by
// Values.Unused.
func (c *Schema) Bind(raw map[string]any) (Values, error) {
	bound := make(map[string]any, len(c.settings))
	supplied := map[string]bool{}
	var errs []error

	for _, s := range c.settings {
		v, err := c.bindOne(s, raw)
		if err != nil {
			var ce *Error
			if errors.As(err, &ce) && s.Type == Password {
				ce.secret = true
			}
			errs = append(errs, err)
			continue
		}
		bound[s.Name] = v
		if raw[s.Name] != nil {
			supplied[s.Name] = true
		}
	}
	if len(errs) > 0 {
		return Values{}, errors.Join(errs...)
	}

	var unused []string
	for k := range raw {
		if _, ok := c.index[k]; !ok {
			unused = append(unused, k)
		}
	}
	sort.Strings(unused)

	return Values{schema: c, values: bound, supplied: supplied, unused: unused}, nil
}

// BindStrings binds a plain string mapping.
func (c *Schema) BindStrings(raw map[string]string) (Values, error) {
	m := make(map[string]any, len(raw))
	for k, v := range raw {
		m[k] = v
	}
	return c.Bind(m)
}

func (c *Schema) bindOne(s Setting, raw map[string]any) (any, error) {
	rv, present := raw[s.Name]
	var (
		v   any
		err error
	)
	switch {
	case present && rv != nil:
		v, err = parse(s, rv)
	case s.Required:
		return nil, missing(s.Name)
	case s.Default == nil:
		return nil, nil
	default:
		v, err = parse(s, s.Default)
	}
	if err != nil {
		return nil, err
	}
	if s.Validator != nil {
		if err := s.Validator.EnsureValid(s.Name, v); err != nil {
			return nil, err
		}
	}
	return v, nil
}

func parse(s Setting, v any) (any, error) {
	switch s.Type {
	case String, Password:
		if str, ok := v.(string); ok {
			return str, nil
		}
	case Int:
		if n, ok := parseInteger(v, 32); ok {
			return int(n), nil
		}
	case Long:
		if n, ok := parseInteger(v, 64); ok {
			return n, nil
		}
	case Bool:
		switch b := v.(type) {
		case bool:
			return b, nil
		case string:
			t := strings.TrimSpace(b)
			if strings.EqualFold(t, "true") {
				return true, nil
			}
			if strings.EqualFold(t, "false") {
				return false, nil
			}
		}
	case List:
		if l, ok := parseList(v); ok {
			return l, nil
		}
	}
	return nil, wrongType(s.Name, v, s.Type)
}

func parseInteger(v any, bits int) (int64, bool) {
	var n int64
	switch x := v.(type) {
	case int:
		n = int64(x)
	case int8:
		n = int64(x)
	case int16:
		n = int64(x)
	case int32:
		n = int64(x)
	case int64:
		n = x
	case uint8:
		n = int64(x)
	case uint16:
		n = int64(x)
	case uint32:
		n = int64(x)
	case string:
		p, err := strconv.ParseInt(strings.TrimSpace(x), 10, bits)
		if err != nil {
			return 0, false
		}
		return p, true
	default:
		return 0, false
	}
	if bits == 32 && (n < math.MinInt32 || n > math.MaxInt32) {
		return 0, false
	}
	return n, true
}

// parseList keeps entries verbatim: no trimming, case folding or dedup.
func parseList(v any) ([]string, bool) {
	switch x := v.(type) {
	case []string:
		return append([]string{}, x...), true
	case []any:
		out := make([]string, 0, len(x))
		for _, e := range x {
			s, ok := e.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	case string:
		if x == "" {
			return []string{}, true
		}
		return strings.Split(x, ","), true
	default:
		return nil, false
	}
}
