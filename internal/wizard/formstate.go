package wizard

import (
	"strconv"
	"strings"
)

// FormState holds every field value collected across the steps of one wizard.
// Values follow JSON decoding: map[string]any for objects, []any for lists.
type FormState map[string]any

// Merge folds partial into s. Nested objects are merged key by key so that sibling
// keys already in s survive; scalars and lists in partial replace what s holds.
func (s FormState) Merge(partial FormState) {
	mergeMaps(s, partial)
}

func mergeMaps(dst, src map[string]any) {
	for k, v := range src {
		srcMap, ok := asMap(v)
		if !ok {
			dst[k] = cloneValue(v)
			continue
		}
		dstMap, ok := asMap(dst[k])
		if !ok {
			dst[k] = cloneValue(srcMap)
			continue
		}
		mergeMaps(dstMap, srcMap)
	}
}

func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case FormState:
		return m, true
	}
	return nil, false
}

// Clone returns a deep copy.
func (s FormState) Clone() FormState {
	if s == nil {
		return FormState{}
	}
	return FormState(cloneValue(map[string]any(s)).(map[string]any))
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case FormState:
		return cloneValue(map[string]any(t))
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			out[k] = cloneValue(vv)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, vv := range t {
			out[i] = cloneValue(vv)
		}
		return out
	case []string:
		out := make([]any, len(t))
		for i, vv := range t {
			out[i] = vv
		}
		return out
	case []map[string]any:
		out := make([]any, len(t))
		for i, vv := range t {
			out[i] = cloneValue(vv)
		}
		return out
	default:
		return v
	}
}

// Pick returns a deep copy of the listed top-level keys that are present.
func (s FormState) Pick(keys ...string) FormState {
	out := FormState{}
	for _, k := range keys {
		if v, ok := s[k]; ok {
			out[k] = cloneValue(v)
		}
	}
	return out
}

// Get resolves a dot path such as "alamat.city". List elements are not addressable.
func (s FormState) Get(path string) (any, bool) {
	var cur any = map[string]any(s)
	for _, seg := range strings.Split(path, ".") {
		m, ok := asMap(cur)
		if !ok {
			return nil, false
		}
		cur, ok = m[seg]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// GetString returns the string at path, or "".
func (s FormState) GetString(path string) string {
	v, _ := s.Get(path)
	str, _ := v.(string)
	return str
}

// GetInt returns the number at path truncated to int, or 0.
func (s FormState) GetInt(path string) int {
	v, _ := s.Get(path)
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	case string:
		i, _ := strconv.Atoi(strings.TrimSpace(n))
		return i
	}
	return 0
}

// Transform rewrites the values found at path in place. A "[]" suffix on a
// segment walks every element of a list, e.g. "pendidikan[].graduationYear".
func (s FormState) Transform(path string, fn func(any) any) {
	transformAt(map[string]any(s), strings.Split(path, "."), fn)
}

func transformAt(m map[string]any, segs []string, fn func(any) any) {
	seg := segs[0]
	list := strings.HasSuffix(seg, "[]")
	key := strings.TrimSuffix(seg, "[]")
	v, ok := m[key]
	if !ok {
		return
	}
	if len(segs) == 1 {
		if !list {
			m[key] = fn(v)
			return
		}
		if items, ok := v.([]any); ok {
			for i := range items {
				items[i] = fn(items[i])
			}
		}
		return
	}
	if !list {
		if child, ok := asMap(v); ok {
			transformAt(child, segs[1:], fn)
		}
		return
	}
	items, ok := v.([]any)
	if !ok {
		return
	}
	for _, item := range items {
		if child, ok := asMap(item); ok {
			transformAt(child, segs[1:], fn)
		}
	}
}

// CoerceNumber turns numeric strings coming from HTML number inputs into numbers.
// Integral values become int; empty strings and non-numeric text are left alone.
func CoerceNumber(v any) any {
	str, ok := v.(string)
	if !ok {
		return v
	}
	str = strings.TrimSpace(str)
	if str == "" {
		return v
	}
	if i, err := strconv.Atoi(str); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(str, 64); err == nil {
		return f
	}
	return v
}

// IsBlank reports whether a value carries no user data.
func IsBlank(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	case bool:
		return !t
	case []any:
		return len(t) == 0
	case []string:
		return len(t) == 0
	case map[string]any:
		for _, vv := range t {
			if !IsBlank(vv) {
				return false
			}
		}
		return true
	case FormState:
		return IsBlank(map[string]any(t))
	}
	return false
}
