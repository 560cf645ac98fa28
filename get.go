package configmanager

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// Typed accessors on Section resolve an item by its dotted path and convert
// its resolved value. Conversion attempts the common Go types before failing.

// String retrieves a string value at the given dotted path.
func (s *Section) String(path string) (string, error) {
	item, err := s.GetItem(path)
	if err != nil {
		return "", err
	}
	return item.Str()
}

// Int64 retrieves an int64 value at the given dotted path.
func (s *Section) Int64(path string) (int64, error) {
	item, err := s.GetItem(path)
	if err != nil {
		return 0, err
	}
	return item.Int64()
}

// Bool retrieves a boolean value at the given dotted path.
func (s *Section) Bool(path string) (bool, error) {
	item, err := s.GetItem(path)
	if err != nil {
		return false, err
	}
	return item.Bool()
}

// Float64 retrieves a float64 value at the given dotted path.
func (s *Section) Float64(path string) (float64, error) {
	item, err := s.GetItem(path)
	if err != nil {
		return 0, err
	}
	return item.Float64()
}

// StringList retrieves a []string value at the given dotted path.
func (s *Section) StringList(path string) ([]string, error) {
	item, err := s.GetItem(path)
	if err != nil {
		return nil, err
	}
	return item.StringList()
}

// GetValue resolves the item at the given dotted path and returns its value.
func (s *Section) GetValue(path string) (any, error) {
	item, err := s.GetItem(path)
	if err != nil {
		return nil, err
	}
	return item.Value()
}

// SetValue sets the custom value of the item at the given dotted path,
// casting through the item's type.
func (s *Section) SetValue(path string, value any) error {
	item, err := s.GetItem(path)
	if err != nil {
		return err
	}
	return item.Set(value)
}

// toString converts common types to a string.
func toString(val any) (string, error) {
	if val == nil {
		return "", nil
	}

	if strVal, ok := val.(string); ok {
		return strVal, nil
	}

	switch v := val.(type) {
	case fmt.Stringer:
		return v.String(), nil
	case []byte:
		return string(v), nil
	case bool:
		return strconv.FormatBool(v), nil
	case error:
		return v.Error(), nil
	}

	rv := reflect.ValueOf(val)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(rv.Uint(), 10), nil
	case reflect.Float32:
		return strconv.FormatFloat(rv.Float(), 'f', -1, 32), nil
	case reflect.Float64:
		return strconv.FormatFloat(rv.Float(), 'f', -1, 64), nil
	}

	return "", fmt.Errorf("cannot convert type %T to string", val)
}

// toInt64 converts numeric types, parsable strings and json.Number to int64.
func toInt64(val any) (int64, error) {
	if n, ok := val.(json.Number); ok {
		if i, err := n.Int64(); err == nil {
			return i, nil
		}
		if f, err := n.Float64(); err == nil {
			return int64(f), nil
		}
		return 0, fmt.Errorf("cannot convert %q to int64", n.String())
	}

	v := reflect.ValueOf(val)
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int(), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u := v.Uint()
		maxInt64 := uint64(^uint64(0) >> 1)
		if u > maxInt64 {
			return 0, fmt.Errorf("cannot convert unsigned integer %d to int64: overflow", u)
		}
		return int64(u), nil
	case reflect.Float32, reflect.Float64:
		return int64(v.Float()), nil
	case reflect.String:
		s := v.String()
		if i, err := strconv.ParseInt(s, 0, 64); err == nil { // base 0 for "0xFF" etc.
			return i, nil
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return int64(f), nil
		}
		return 0, fmt.Errorf("cannot convert string %q to int64", s)
	}

	return 0, fmt.Errorf("cannot convert type %T to int64", val)
}

// Canonical boolean tokens accepted by text-based configuration formats.
var (
	truthyTokens = []string{"yes", "true", "y", "t", "on", "1"}
	falsyTokens  = []string{"no", "false", "n", "f", "off", "0"}
)

// toBool converts booleans, canonical string tokens and 0/1 integers to bool.
func toBool(val any) (bool, error) {
	switch v := val.(type) {
	case bool:
		return v, nil
	case string:
		lower := strings.ToLower(strings.TrimSpace(v))
		for _, token := range truthyTokens {
			if lower == token {
				return true, nil
			}
		}
		for _, token := range falsyTokens {
			if lower == token {
				return false, nil
			}
		}
		return false, fmt.Errorf("cannot convert string %q to bool", v)
	case json.Number:
		return toBool(v.String())
	}

	rv := reflect.ValueOf(val)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		switch rv.Int() {
		case 0:
			return false, nil
		case 1:
			return true, nil
		}
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		switch rv.Uint() {
		case 0:
			return false, nil
		case 1:
			return true, nil
		}
	}

	return false, fmt.Errorf("cannot convert type %T to bool", val)
}

// toFloat64 converts numeric types, parsable strings and json.Number to
// float64.
func toFloat64(val any) (float64, error) {
	if n, ok := val.(json.Number); ok {
		f, err := n.Float64()
		if err != nil {
			return 0, fmt.Errorf("cannot convert %q to float64", n.String())
		}
		return f, nil
	}

	v := reflect.ValueOf(val)
	switch v.Kind() {
	case reflect.Float32, reflect.Float64:
		return v.Float(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(v.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(v.Uint()), nil
	case reflect.String:
		s := v.String()
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f, nil
		}
		return 0, fmt.Errorf("cannot convert string %q to float64", s)
	}

	return 0, fmt.Errorf("cannot convert type %T to float64", val)
}

// toStringList converts []string, []any and comma-separated strings to
// []string.
func toStringList(val any) ([]string, error) {
	switch v := val.(type) {
	case []string:
		return v, nil
	case []any:
		out := make([]string, len(v))
		for i, elem := range v {
			s, err := toString(elem)
			if err != nil {
				return nil, fmt.Errorf("list element %d: %w", i, err)
			}
			out[i] = s
		}
		return out, nil
	case string:
		if v == "" {
			return []string{}, nil
		}
		return strings.Split(v, ","), nil
	}
	return nil, fmt.Errorf("cannot convert type %T to string list", val)
}
