package bencode

import (
	"strings"

	"github.com/elliotchance/orderedmap"
)

func GetString(dict *orderedmap.OrderedMap, key string) (string, bool) {
	r := GetByPath(dict, key)
	switch v := r.(type) {
	case []byte:
		return string(v), true
	default:
		return "", false
	}
}

func GetInt(dict *orderedmap.OrderedMap, key string) (int64, bool) {
	r := GetByPath(dict, key)
	switch v := r.(type) {
	case int64:
		return v, true
	default:
		return 0, false
	}
}

func GetList(dict *orderedmap.OrderedMap, key string) ([]any, bool) {
	r := GetByPath(dict, key)
	switch v := r.(type) {
	case []any:
		return v, true
	default:
		return nil, false
	}
}

// GetByPath walks dot-separated keys through nested dictionaries.
// Keys that themselves contain dots are only reachable at the last level.
func GetByPath(dict *orderedmap.OrderedMap, path string) any {
	if dict == nil {
		return nil
	}
	if v, ok := dict.Get(path); ok {
		return v
	}
	parts := strings.SplitN(path, ".", 2)
	if len(parts) < 2 {
		return nil
	}
	next, ok := dict.Get(parts[0])
	if !ok {
		return nil
	}
	sub, ok := next.(*orderedmap.OrderedMap)
	if !ok {
		return nil
	}
	return GetByPath(sub, parts[1])
}

func CheckMapPath(dict *orderedmap.OrderedMap, path string) bool {
	return GetByPath(dict, path) != nil
}

// ToPlain converts ordered dictionaries into map[string]any recursively,
// leaving every other value untouched.
func ToPlain(v any) any {
	switch t := v.(type) {
	case *orderedmap.OrderedMap:
		m := make(map[string]any, t.Len())
		for _, k := range t.Keys() {
			val, _ := t.Get(k)
			m[k.(string)] = ToPlain(val)
		}
		return m
	case []any:
		l := make([]any, len(t))
		for i, item := range t {
			l[i] = ToPlain(item)
		}
		return l
	default:
		return v
	}
}
