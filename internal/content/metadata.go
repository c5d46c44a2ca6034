package content

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/pelletier/go-toml/v2"
)

// Metadata holds normalized front matter values. Every value is a string,
// int, bool, time.Time (UTC) or []string.
type Metadata map[string]any

// dateLayouts are the string forms accepted for date fields.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// ParseDate parses s in one of the accepted date layouts and returns it in UTC.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, errors.Newf("unrecognized date %q", s)
}

// normalizeMetadata converts decoded front matter into Metadata. Null values
// are dropped. The returned error names the offending key.
func normalizeMetadata(raw map[string]any) (Metadata, string, error) {
	meta := make(Metadata, len(raw))

	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		v, err := normalizeValue(raw[k])
		if err != nil {
			return nil, k, err
		}
		if v != nil {
			meta[k] = v
		}
	}
	return meta, "", nil
}

func normalizeValue(v any) (any, error) {
	switch v := v.(type) {
	case nil:
		return nil, nil
	case []any:
		list := make([]string, 0, len(v))
		for _, e := range v {
			s, err := scalarString(e)
			if err != nil {
				return nil, err
			}
			list = append(list, s)
		}
		return list, nil
	case []string:
		return append([]string(nil), v...), nil
	case map[string]any:
		return nil, errors.New("nested tables are not supported")
	case time.Time:
		return v.UTC(), nil
	case toml.LocalDate:
		return v.AsTime(time.UTC), nil
	case toml.LocalDateTime:
		return v.AsTime(time.UTC), nil
	case toml.LocalTime:
		return v.String(), nil
	case string, bool:
		return v, nil
	case int:
		return v, nil
	case int64:
		return intFrom(v)
	case uint64:
		if v > math.MaxInt64 {
			return nil, errors.Newf("integer %d out of range", v)
		}
		return intFrom(int64(v))
	case float64:
		if v == math.Trunc(v) && math.Abs(v) < 1<<53 {
			return int(v), nil
		}
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	default:
		return nil, errors.Newf("unsupported value of type %T", v)
	}
}

func intFrom(v int64) (any, error) {
	if v > math.MaxInt || v < math.MinInt {
		return nil, errors.Newf("integer %d out of range", v)
	}
	return int(v), nil
}

// scalarString renders a list element as a string. Nested lists and tables
// are rejected.
func scalarString(v any) (string, error) {
	switch v := v.(type) {
	case string:
		return v, nil
	case bool, int, int64, uint64:
		return fmt.Sprint(v), nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	default:
		return "", errors.Newf("list elements must be scalars, got %T", v)
	}
}

// Has reports whether key is present.
func (m Metadata) Has(key string) bool {
	_, ok := m[key]
	return ok
}

// String returns the string value of key.
func (m Metadata) String(key string) (string, bool) {
	s, ok := m[key].(string)
	return s, ok
}

// Int returns the integer value of key.
func (m Metadata) Int(key string) (int, bool) {
	i, ok := m[key].(int)
	return i, ok
}

// Bool returns the boolean value of key.
func (m Metadata) Bool(key string) (bool, bool) {
	b, ok := m[key].(bool)
	return b, ok
}

// Time returns the value of key as a time. Strings in an accepted date
// layout are parsed.
func (m Metadata) Time(key string) (time.Time, bool) {
	switch v := m[key].(type) {
	case time.Time:
		return v, true
	case string:
		t, err := ParseDate(v)
		return t, err == nil
	default:
		return time.Time{}, false
	}
}

// Strings returns the list value of key. A single string is treated as a
// one-element list.
func (m Metadata) Strings(key string) ([]string, bool) {
	switch v := m[key].(type) {
	case []string:
		return v, true
	case string:
		return []string{v}, true
	default:
		return nil, false
	}
}

// Keys returns the metadata keys in sorted order.
func (m Metadata) Keys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
