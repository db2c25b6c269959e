package form

import (
	"strconv"
	"strings"
)

// Path identifies a field inside a State. The same Path addresses both the
// field's value and its validation error. Paths are immutable: every builder
// method returns a new Path.
//
//	P("summerVouchers").Index(0).Key("attachments") // "summerVouchers.0.attachments"
type Path struct {
	segments []string
}

// P builds a Path from one or more object keys.
func P(keys ...string) Path {
	var p Path
	for _, k := range keys {
		p = p.Key(k)
	}
	return p
}

// ParsePath converts a dotted string ("a.0.b") into a Path. Empty segments are
// dropped so "a..b" and ".a.b." parse the same as "a.b".
func ParsePath(dotted string) Path {
	var p Path
	for _, seg := range strings.Split(dotted, ".") {
		seg = strings.TrimSpace(seg)
		if seg == "" {
			continue
		}
		p.segments = append(p.segments, seg)
	}
	return p
}

// Key returns a new Path with an object key appended.
func (p Path) Key(name string) Path {
	name = strings.TrimSpace(name)
	if name == "" {
		return p
	}
	return p.with(name)
}

// Index returns a new Path with an array index appended.
func (p Path) Index(i int) Path {
	if i < 0 {
		return p
	}
	return p.with(strconv.Itoa(i))
}

// Join appends all segments of other to p.
func (p Path) Join(other Path) Path {
	out := p
	for _, seg := range other.segments {
		out = out.with(seg)
	}
	return out
}

// Parent returns the path without its last segment. The parent of a root or
// empty path is the empty path.
func (p Path) Parent() Path {
	if len(p.segments) <= 1 {
		return Path{}
	}
	return Path{segments: append([]string(nil), p.segments[:len(p.segments)-1]...)}
}

// Last returns the final segment or "" for the empty path.
func (p Path) Last() string {
	if len(p.segments) == 0 {
		return ""
	}
	return p.segments[len(p.segments)-1]
}

// Segments returns a copy of the path segments.
func (p Path) Segments() []string {
	return append([]string(nil), p.segments...)
}

// IsZero reports whether the path has no segments.
func (p Path) IsZero() bool {
	return len(p.segments) == 0
}

// HasPrefix reports whether prefix addresses p or one of its ancestors.
func (p Path) HasPrefix(prefix Path) bool {
	if len(prefix.segments) > len(p.segments) {
		return false
	}
	for i, seg := range prefix.segments {
		if p.segments[i] != seg {
			return false
		}
	}
	return true
}

// String renders the dotted form used as map key for errors and flags.
func (p Path) String() string {
	return strings.Join(p.segments, ".")
}

func (p Path) with(seg string) Path {
	out := make([]string, len(p.segments), len(p.segments)+1)
	copy(out, p.segments)
	return Path{segments: append(out, seg)}
}
