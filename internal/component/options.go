package component

import (
	"fmt"
	"math"
	"strconv"
	"time"
)

// Options is the `options` mapping of a configuration section, passed to
// factories verbatim
type Options map[string]any

// Has reports whether the option is present
func (o Options) Has(key string) bool {
	_, ok := o[key]
	return ok
}

// String returns a required scalar option as a string
func (o Options) String(key string) (string, error) {
	v, ok := o[key]
	if !ok || v == nil {
		return "", &MissingOptionError{Option: key}
	}
	s, ok := scalarString(v)
	if !ok {
		return "", &InvalidOptionError{Option: key, Reason: fmt.Sprintf("expected a string, got %T", v)}
	}
	return s, nil
}

// StringOr returns an optional scalar option as a string
func (o Options) StringOr(key, def string) (string, error) {
	if v, ok := o[key]; !ok || v == nil {
		return def, nil
	}
	return o.String(key)
}

// Strings returns a required option that may be a single scalar or a list
// of scalars
func (o Options) Strings(key string) ([]string, error) {
	v, ok := o[key]
	if !ok || v == nil {
		return nil, &MissingOptionError{Option: key}
	}

	if s, ok := scalarString(v); ok {
		return []string{s}, nil
	}

	items, ok := v.([]any)
	if !ok {
		return nil, &InvalidOptionError{Option: key, Reason: fmt.Sprintf("expected a string or list, got %T", v)}
	}
	out := make([]string, 0, len(items))
	for i, item := range items {
		s, ok := scalarString(item)
		if !ok {
			return nil, &InvalidOptionError{Option: key, Reason: fmt.Sprintf("item %d: expected a string, got %T", i, item)}
		}
		out = append(out, s)
	}
	return out, nil
}

// IntOr returns an optional integer option
func (o Options) IntOr(key string, def int) (int, error) {
	v, ok := o[key]
	if !ok || v == nil {
		return def, nil
	}
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		if n == math.Trunc(n) {
			return int(n), nil
		}
	case string:
		if i, err := strconv.Atoi(n); err == nil {
			return i, nil
		}
	}
	return 0, &InvalidOptionError{Option: key, Reason: fmt.Sprintf("expected an integer, got %v", v)}
}

// BoolOr returns an optional boolean option
func (o Options) BoolOr(key string, def bool) (bool, error) {
	v, ok := o[key]
	if !ok || v == nil {
		return def, nil
	}
	switch b := v.(type) {
	case bool:
		return b, nil
	case string:
		if parsed, err := strconv.ParseBool(b); err == nil {
			return parsed, nil
		}
	}
	return false, &InvalidOptionError{Option: key, Reason: fmt.Sprintf("expected a boolean, got %v", v)}
}

// DurationOr returns an optional duration option. Numbers are seconds,
// strings use time.ParseDuration syntax.
func (o Options) DurationOr(key string, def time.Duration) (time.Duration, error) {
	v, ok := o[key]
	if !ok || v == nil {
		return def, nil
	}
	d, err := ParseDuration(v)
	if err != nil {
		return 0, &InvalidOptionError{Option: key, Reason: err.Error()}
	}
	return d, nil
}

// List returns an optional list of mappings
func (o Options) List(key string) ([]Options, error) {
	v, ok := o[key]
	if !ok || v == nil {
		return nil, nil
	}
	items, ok := v.([]any)
	if !ok {
		return nil, &InvalidOptionError{Option: key, Reason: fmt.Sprintf("expected a list, got %T", v)}
	}
	out := make([]Options, 0, len(items))
	for i, item := range items {
		m, ok := AsMap(item)
		if !ok {
			return nil, &InvalidOptionError{Option: key, Reason: fmt.Sprintf("item %d: expected a mapping, got %T", i, item)}
		}
		out = append(out, Options(m))
	}
	return out, nil
}

// ParseDuration converts a config value into a duration.
// int and float values are seconds.
func ParseDuration(v any) (time.Duration, error) {
	var d time.Duration
	switch n := v.(type) {
	case int:
		d = time.Duration(n) * time.Second
	case int64:
		d = time.Duration(n) * time.Second
	case float64:
		d = time.Duration(n * float64(time.Second))
	case string:
		parsed, err := time.ParseDuration(n)
		if err != nil {
			return 0, fmt.Errorf("expected seconds or a duration: %w", err)
		}
		d = parsed
	default:
		return 0, fmt.Errorf("expected seconds or a duration, got %T", v)
	}
	if d < 0 {
		return 0, fmt.Errorf("duration must not be negative: %s", d)
	}
	return d, nil
}

// AsMap converts a decoded YAML mapping into map[string]any
func AsMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case Options:
		return m, true
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, val := range m {
			out[fmt.Sprint(k)] = val
		}
		return out, true
	}
	return nil, false
}

func scalarString(v any) (string, bool) {
	switch s := v.(type) {
	case string:
		return s, true
	case int, int64, float64, bool:
		return fmt.Sprint(s), true
	}
	return "", false
}
