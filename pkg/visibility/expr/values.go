package expr

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/goliatone/go-formbuilder/pkg/visibility"
)

// valuePrefixes are accepted in front of identifiers for rules written
// against the `formValues` object of older exports.
var valuePrefixes = []string{"formValues.", "values."}

func lookup(ctx visibility.Context, key string) (any, bool) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, false
	}
	if rest, ok := strings.CutPrefix(key, "extras."); ok {
		return resolve(ctx.Extras, rest)
	}
	if v, ok := resolve(ctx.Values, key); ok {
		return v, true
	}
	for _, prefix := range valuePrefixes {
		if rest, ok := strings.CutPrefix(key, prefix); ok {
			return resolve(ctx.Values, rest)
		}
	}
	return nil, false
}

// resolve finds path in values. An exact key wins over dot traversal since
// ids and names may contain dots.
func resolve(values map[string]any, path string) (any, bool) {
	if len(values) == 0 || path == "" {
		return nil, false
	}
	if v, ok := values[path]; ok {
		return v, true
	}
	head, rest, nested := strings.Cut(path, ".")
	if !nested || head == "" {
		return nil, false
	}
	child, ok := values[head].(map[string]any)
	if !ok {
		return nil, false
	}
	return resolve(child, rest)
}

// listValue reports multiselect style answers as strings.
func listValue(value any) ([]string, bool) {
	switch v := value.(type) {
	case []string:
		return v, true
	case []any:
		items := make([]string, 0, len(v))
		for _, item := range v {
			items = append(items, coerceString(item))
		}
		return items, true
	}
	return nil, false
}

func truthy(value any) bool {
	switch v := value.(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		return strings.TrimSpace(v) != ""
	case time.Time:
		return !v.IsZero()
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Slice, reflect.Map, reflect.Array:
		return rv.Len() > 0
	}
	if n, ok := coerceNumber(value); ok {
		return n != 0
	}
	return true
}

// coerceBool accepts strconv.ParseBool spellings and falls back to truthiness.
// The second result is false only for missing values.
func coerceBool(value any) (bool, bool) {
	if value == nil {
		return false, false
	}
	if s, ok := value.(string); ok {
		if b, err := strconv.ParseBool(strings.TrimSpace(s)); err == nil {
			return b, true
		}
	}
	return truthy(value), true
}

func coerceNumber(value any) (float64, bool) {
	if s, ok := value.(string); ok {
		n, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		return n, err == nil
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	}
	return 0, false
}

func coerceString(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case time.Time:
		return v.Format(time.RFC3339)
	}
	return fmt.Sprint(value)
}
