package form

import (
	"fmt"
	"reflect"
	"strconv"
)

// Values is the raw value tree held by a State: nested map[string]any and
// []any containers with scalar leaves (string, float64, bool, nil).
type Values = map[string]any

func getIn(root Values, segs []string) (any, bool) {
	if root == nil || len(segs) == 0 {
		return nil, false
	}
	var current any = root
	for _, seg := range segs {
		switch node := current.(type) {
		case map[string]any:
			next, ok := node[seg]
			if !ok {
				return nil, false
			}
			current = next
		case []any:
			idx, err := strconv.Atoi(seg)
			if err != nil || idx < 0 || idx >= len(node) {
				return nil, false
			}
			current = node[idx]
		default:
			return nil, false
		}
	}
	return current, true
}

// setIn writes value at segs below node, creating intermediate containers.
// Numeric segments create slices, everything else creates maps. The
// (possibly reallocated) node is returned so callers can store it back.
func setIn(node any, segs []string, value any) (any, error) {
	if len(segs) == 0 {
		return value, nil
	}
	seg, rest := segs[0], segs[1:]

	switch n := node.(type) {
	case map[string]any:
		child, err := setIn(n[seg], rest, value)
		if err != nil {
			return nil, err
		}
		n[seg] = child
		return n, nil
	case []any:
		idx, err := strconv.Atoi(seg)
		if err != nil || idx < 0 {
			return nil, fmt.Errorf("form: expected array index, got %q", seg)
		}
		if idx >= len(n) {
			n = append(n, make([]any, idx+1-len(n))...)
		}
		child, err := setIn(n[idx], rest, value)
		if err != nil {
			return nil, err
		}
		n[idx] = child
		return n, nil
	case nil:
		if idx, err := strconv.Atoi(seg); err == nil && idx >= 0 {
			return setIn(make([]any, idx+1), segs, value)
		}
		return setIn(make(map[string]any), segs, value)
	default:
		return nil, fmt.Errorf("form: cannot descend into %T at %q", node, seg)
	}
}

func unsetIn(root Values, segs []string) bool {
	if len(segs) == 0 {
		return false
	}
	parent, ok := any(root), true
	if len(segs) > 1 {
		parent, ok = getIn(root, segs[:len(segs)-1])
		if !ok {
			return false
		}
	}
	last := segs[len(segs)-1]
	switch node := parent.(type) {
	case map[string]any:
		if _, exists := node[last]; !exists {
			return false
		}
		delete(node, last)
		return true
	case []any:
		idx, err := strconv.Atoi(last)
		if err != nil || idx < 0 || idx >= len(node) {
			return false
		}
		node[idx] = nil
		return true
	}
	return false
}

// Get returns the value at p inside v.
func Get(v Values, p Path) (any, bool) {
	return getIn(v, p.Segments())
}

// Merge returns a deep copy of base overlaid with over. Nested maps merge
// key by key; any other value in over replaces the one in base, including
// lists and nil.
func Merge(base, over Values) Values {
	out := CloneValues(base)
	for k, v := range over {
		if om, ok := v.(map[string]any); ok {
			if bm, ok := out[k].(map[string]any); ok {
				out[k] = Merge(bm, om)
				continue
			}
		}
		out[k] = deepCopy(v)
	}
	return out
}

// CloneValues returns a deep copy of v.
func CloneValues(v Values) Values {
	if v == nil {
		return make(Values)
	}
	return deepCopy(v).(map[string]any)
}

func deepCopy(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		clone := make(map[string]any, len(typed))
		for k, v := range typed {
			clone[k] = deepCopy(v)
		}
		return clone
	case []any:
		clone := make([]any, len(typed))
		for i, v := range typed {
			clone[i] = deepCopy(v)
		}
		return clone
	default:
		return typed
	}
}

// IsEmpty reports whether v counts as "no value": nil, a blank string, or an
// empty slice or map.
func IsEmpty(v any) bool {
	switch typed := v.(type) {
	case nil:
		return true
	case string:
		for _, r := range typed {
			if r != ' ' && r != '\t' && r != '\n' && r != '\r' {
				return false
			}
		}
		return true
	case []any:
		return len(typed) == 0
	case []string:
		return len(typed) == 0
	case map[string]any:
		return len(typed) == 0
	}
	return false
}

func equalValues(a, b any) bool {
	return reflect.DeepEqual(a, b)
}
