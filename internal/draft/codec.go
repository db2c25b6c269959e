package draft

import (
	"strings"
	"unicode"

	"github.com/AbdelazizMoustafa10m/Hakija/internal/backend"
	"github.com/AbdelazizMoustafa10m/Hakija/internal/form"
)

// Codec converts between the form's value tree (camelCase keys, UI dates,
// UI number strings) and the backend wire record (snake_case keys, ISO
// dates, numbers). Date and numeric fields are recognised by their camelCase
// leaf key wherever they appear in the tree.
type Codec struct {
	dateFields    map[string]bool
	numericFields map[string]bool
}

// NewCodec creates a codec for the given date and numeric leaf keys.
func NewCodec(dateFields, numericFields []string) Codec {
	c := Codec{
		dateFields:    make(map[string]bool, len(dateFields)),
		numericFields: make(map[string]bool, len(numericFields)),
	}
	for _, f := range dateFields {
		c.dateFields[f] = true
	}
	for _, f := range numericFields {
		c.numericFields[f] = true
	}
	return c
}

// ToWire converts form values to a backend record.
func (c Codec) ToWire(v form.Values) backend.Record {
	out, _ := c.toWire("", v).(map[string]any)
	if out == nil {
		out = make(map[string]any)
	}
	return out
}

// FromWire converts a backend record to form values.
func (c Codec) FromWire(r backend.Record) form.Values {
	out, _ := c.fromWire("", r).(map[string]any)
	if out == nil {
		out = make(map[string]any)
	}
	return out
}

// WirePath converts a dotted form path to the backend's naming.
func (c Codec) WirePath(p string) string {
	return mapSegments(p, CamelToSnake)
}

// FormPath converts a dotted backend path to the form's naming.
func (c Codec) FormPath(p string) string {
	return mapSegments(p, SnakeToCamel)
}

func (c Codec) toWire(key string, node any) any {
	switch n := node.(type) {
	case map[string]any:
		out := make(map[string]any, len(n))
		for k, v := range n {
			out[CamelToSnake(k)] = c.toWire(k, v)
		}
		return out
	case []any:
		out := make([]any, len(n))
		for i, v := range n {
			out[i] = c.toWire(key, v)
		}
		return out
	case string:
		switch {
		case c.dateFields[key]:
			if strings.TrimSpace(n) == "" {
				return nil
			}
			if d, ok := form.ParseDate(n); ok {
				return form.FormatISODate(d)
			}
		case c.numericFields[key]:
			if strings.TrimSpace(n) == "" {
				return nil
			}
			if f, ok := form.ParseNumber(n); ok {
				return f
			}
		}
		return n
	}
	return node
}

func (c Codec) fromWire(key string, node any) any {
	switch n := node.(type) {
	case map[string]any:
		out := make(map[string]any, len(n))
		for k, v := range n {
			ck := SnakeToCamel(k)
			out[ck] = c.fromWire(ck, v)
		}
		return out
	case []any:
		out := make([]any, len(n))
		for i, v := range n {
			out[i] = c.fromWire(key, v)
		}
		return out
	case string:
		if c.dateFields[key] {
			if d, ok := form.ParseDate(n); ok {
				return form.FormatUIDate(d)
			}
		}
		if c.numericFields[key] {
			if f, ok := form.ParseNumber(n); ok {
				return form.FormatNumber(f)
			}
		}
		return n
	case float64:
		if c.numericFields[key] {
			return form.FormatNumber(n)
		}
	}
	return node
}

// CamelToSnake converts "companyContactPersonEmail" to
// "company_contact_person_email".
func CamelToSnake(s string) string {
	runes := []rune(s)
	var b strings.Builder
	b.Grow(len(s) + 4)
	for i, r := range runes {
		if unicode.IsUpper(r) {
			prevLower := i > 0 && (unicode.IsLower(runes[i-1]) || unicode.IsDigit(runes[i-1]))
			nextLower := i > 0 && i+1 < len(runes) && unicode.IsUpper(runes[i-1]) && unicode.IsLower(runes[i+1])
			if prevLower || nextLower {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// SnakeToCamel converts "company_contact_person_email" to
// "companyContactPersonEmail".
func SnakeToCamel(s string) string {
	if !strings.Contains(s, "_") {
		return s
	}
	parts := strings.Split(s, "_")
	var b strings.Builder
	b.Grow(len(s))
	first := true
	for _, p := range parts {
		if p == "" {
			continue
		}
		if first {
			b.WriteString(p)
			first = false
			continue
		}
		r := []rune(p)
		r[0] = unicode.ToUpper(r[0])
		b.WriteString(string(r))
	}
	return b.String()
}

func mapSegments(p string, fn func(string) string) string {
	segs := strings.Split(p, ".")
	for i, s := range segs {
		segs[i] = fn(s)
	}
	return strings.Join(segs, ".")
}
