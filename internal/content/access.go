package content

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"
)

func asMap(v any) (map[string]any, bool) {
	m, ok := v.(map[string]any)
	return m, ok && m != nil
}

func asSlice(v any) ([]any, bool) {
	s, ok := v.([]any)
	return s, ok
}

// str renders scalars as text; absent values and containers become "".
func str(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case json.Number:
		return x.String()
	default:
		return ""
	}
}

func num(v any) int {
	switch x := v.(type) {
	case float64:
		return int(x)
	case int:
		return x
	case int64:
		return int(x)
	case json.Number:
		n, _ := x.Int64()
		return int(n)
	case string:
		n, _ := strconv.Atoi(strings.TrimSpace(x))
		return n
	default:
		return 0
	}
}

func boolOr(v any, def bool) bool {
	if b, ok := v.(bool); ok {
		return b
	}
	return def
}

// strs collects the string items of a sequence, skipping blanks.
func strs(v any) []string {
	out := []string{}
	switch x := v.(type) {
	case []any:
		for _, item := range x {
			if s := strings.TrimSpace(str(item)); s != "" {
				out = append(out, s)
			}
		}
	case []string:
		for _, s := range x {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}

func anys(items []string) []any {
	out := make([]any, len(items))
	for i, s := range items {
		out[i] = s
	}
	return out
}

func dedupe(items []string) []string {
	seen := make(map[string]bool, len(items))
	out := make([]string, 0, len(items))
	for _, s := range items {
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

func contains(items []string, s string) bool {
	for _, item := range items {
		if item == s {
			return true
		}
	}
	return false
}

// courseList returns the courses sequence, creating it when absent.
func courseList(doc map[string]any) []any {
	list, ok := asSlice(doc[KeyCourses])
	if !ok {
		list = []any{}
		doc[KeyCourses] = list
	}
	return list
}

func findCourse(doc map[string]any, slug string) (int, map[string]any) {
	for i, item := range courseList(doc) {
		if m, ok := asMap(item); ok && str(m["slug"]) == slug {
			return i, m
		}
	}
	return -1, nil
}

// mapping returns doc[key] as a map, creating it when absent.
func mapping(doc map[string]any, key string) map[string]any {
	m, ok := asMap(doc[key])
	if !ok {
		m = map[string]any{}
		doc[key] = m
	}
	return m
}

// sortedKeys orders a keyed collection by each entry's "order", then key.
func sortedKeys(coll map[string]any) []string {
	keys := make([]string, 0, len(coll))
	for k := range coll {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		mi, _ := asMap(coll[keys[i]])
		mj, _ := asMap(coll[keys[j]])
		oi, oj := num(mi["order"]), num(mj["order"])
		if oi != oj {
			return oi < oj
		}
		return keys[i] < keys[j]
	})
	return keys
}

func maxOrder(items []map[string]any) int {
	max := 0
	for _, m := range items {
		if o := num(m["order"]); o > max {
			max = o
		}
	}
	return max
}
