package backend

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

var (
	// ErrUnauthenticated is returned for 401 and 403 responses.
	ErrUnauthenticated = errors.New("backend: unauthenticated")

	// ErrNotFound is returned for 404 responses.
	ErrNotFound = errors.New("backend: not found")
)

// StatusError is an unexpected non-2xx response.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("backend: %s %s: HTTP %d", e.Method, e.Path, e.StatusCode)
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

// FieldErrors is a 400 response carrying per-field messages. Nested error
// objects are flattened to dotted paths ("employee.first_name",
// "de_minimis_aid_set.0.amount"). Messages not tied to a field end up in
// NonField.
type FieldErrors struct {
	Fields   map[string][]string
	NonField []string
}

func (e *FieldErrors) Error() string {
	paths := e.Paths()
	if len(paths) == 0 {
		return "backend: validation failed: " + strings.Join(e.NonField, "; ")
	}
	return fmt.Sprintf("backend: validation failed for %s", strings.Join(paths, ", "))
}

// Paths returns the failing field paths, sorted.
func (e *FieldErrors) Paths() []string {
	out := make([]string, 0, len(e.Fields))
	for p := range e.Fields {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// MapPaths returns a copy with every field path rewritten by fn.
func (e *FieldErrors) MapPaths(fn func(string) string) *FieldErrors {
	out := &FieldErrors{
		Fields:   make(map[string][]string, len(e.Fields)),
		NonField: append([]string(nil), e.NonField...),
	}
	for p, msgs := range e.Fields {
		out.Fields[fn(p)] = append(out.Fields[fn(p)], msgs...)
	}
	return out
}

// nonFieldKeys hold messages that belong to the whole record.
var nonFieldKeys = map[string]bool{
	"non_field_errors": true,
	"detail":           true,
	"__all__":          true,
}

// wrapperKeys are envelope segments stripped from error paths.
var wrapperKeys = map[string]bool{
	"errors": true,
	"data":   true,
}

func parseFieldErrors(payload any) *FieldErrors {
	fe := &FieldErrors{Fields: make(map[string][]string)}
	flattenErrors("", payload, fe)
	if len(fe.Fields) == 0 && len(fe.NonField) == 0 {
		return nil
	}
	return fe
}

func flattenErrors(prefix string, node any, out *FieldErrors) {
	switch n := node.(type) {
	case map[string]any:
		for k, v := range n {
			if nonFieldKeys[k] {
				out.NonField = append(out.NonField, messages(v)...)
				continue
			}
			key := k
			if wrapperKeys[k] && prefix == "" {
				key = ""
			}
			flattenErrors(join(prefix, key), v, out)
		}
	case []any:
		if allStrings(n) {
			addMessages(prefix, messages(n), out)
			return
		}
		for i, v := range n {
			flattenErrors(join(prefix, strconv.Itoa(i)), v, out)
		}
	case string:
		addMessages(prefix, []string{n}, out)
	}
}

func addMessages(path string, msgs []string, out *FieldErrors) {
	if len(msgs) == 0 {
		return
	}
	if path == "" {
		out.NonField = append(out.NonField, msgs...)
		return
	}
	out.Fields[path] = append(out.Fields[path], msgs...)
}

func messages(v any) []string {
	switch m := v.(type) {
	case string:
		return []string{m}
	case []any:
		var out []string
		for _, item := range m {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func allStrings(items []any) bool {
	for _, it := range items {
		if _, ok := it.(string); !ok {
			return false
		}
	}
	return true
}

func join(prefix, key string) string {
	switch {
	case prefix == "":
		return key
	case key == "":
		return prefix
	}
	return prefix + "." + key
}
