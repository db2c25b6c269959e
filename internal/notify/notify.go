// Package notify turns operation failures into user-facing notifications.
//
// Backend field errors become a notification whose links point each message
// at its input; messages for unknown fields are kept as form-level lines.
// Unauthenticated failures do not produce a notification at all but a
// Redirect to the login page.
package notify

import (
	"errors"
	"html"
	"sort"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"

	"github.com/AbdelazizMoustafa10m/Hakija/internal/backend"
)

// Level is the severity of a notification.
type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// DefaultLoginPath is where unauthenticated users are sent.
const DefaultLoginPath = "/login"

// Link ties a message to the input of a field.
type Link struct {
	Field   string `json:"field"`
	Anchor  string `json:"anchor"`
	Label   string `json:"label"`
	Message string `json:"message"`
}

// Notification is a dismissible message. Blocking notifications also
// disable the action that caused them until the condition is resolved.
type Notification struct {
	ID       int    `json:"id"`
	Level    Level  `json:"level"`
	Title    string `json:"title"`
	Message  string `json:"message,omitempty"`
	Links    []Link `json:"links,omitempty"`
	Blocking bool   `json:"blocking,omitempty"`
}

// Redirect replaces inline handling for unauthenticated or unexpected
// failures.
type Redirect struct {
	To     string
	Reason string
}

// Translator resolves message keys.
type Translator interface {
	T(key string, vars map[string]string) string
}

// Option configures a Mapper.
type Option func(*Mapper)

// WithKnownFields limits links to fields for which known returns true;
// other paths become form-level messages.
func WithKnownFields(known func(path string) bool) Option {
	return func(m *Mapper) { m.known = known }
}

// WithLoginPath overrides the redirect target for unauthenticated errors.
func WithLoginPath(p string) Option {
	return func(m *Mapper) { m.loginPath = p }
}

// Mapper builds notifications from errors.
type Mapper struct {
	tr        Translator
	known     func(string) bool
	loginPath string
	policy    *bluemonday.Policy
}

// NewMapper creates a Mapper. tr may be nil, in which case keys are shown
// as-is.
func NewMapper(tr Translator, opts ...Option) *Mapper {
	m := &Mapper{
		tr:        tr,
		loginPath: DefaultLoginPath,
		policy:    bluemonday.StrictPolicy(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// FromError maps err raised by the operation titled titleKey. Exactly one of
// the results is meaningful: a Redirect for unauthenticated errors, a
// Notification otherwise.
func (m *Mapper) FromError(titleKey string, err error) (Notification, *Redirect) {
	if errors.Is(err, backend.ErrUnauthenticated) {
		return Notification{}, &Redirect{To: m.loginPath, Reason: m.t("notifications.unauthenticated")}
	}

	n := Notification{Level: LevelError, Title: m.t(titleKey)}

	var fe *backend.FieldErrors
	switch {
	case errors.As(err, &fe):
		n.Message = m.t("notifications.fieldErrors")
		var formLevel []string
		for _, p := range fe.Paths() {
			msgs := m.cleanAll(fe.Fields[p])
			if m.known != nil && !m.known(p) {
				formLevel = append(formLevel, msgs...)
				continue
			}
			for _, msg := range msgs {
				n.Links = append(n.Links, Link{
					Field:   p,
					Anchor:  "#" + p,
					Label:   m.label(p),
					Message: msg,
				})
			}
		}
		formLevel = append(formLevel, m.cleanAll(fe.NonField)...)
		if len(formLevel) > 0 {
			n.Message = strings.Join(append([]string{n.Message}, dedupe(formLevel)...), "\n")
		}
	case errors.Is(err, backend.ErrNotFound):
		n.Message = m.t("notifications.notFound")
	}
	return n, nil
}

// Sanitize strips markup from a backend-provided message.
func (m *Mapper) Sanitize(s string) string {
	return strings.TrimSpace(html.UnescapeString(m.policy.Sanitize(s)))
}

func (m *Mapper) cleanAll(msgs []string) []string {
	out := make([]string, 0, len(msgs))
	for _, s := range msgs {
		if c := m.Sanitize(s); c != "" {
			out = append(out, c)
		}
	}
	return out
}

func (m *Mapper) label(path string) string {
	key := "fields." + labelKey(path)
	if l := m.t(key); l != key {
		return l
	}
	return path
}

// labelKey drops list indices: "employees.0.firstName" -> "employees.firstName".
func labelKey(path string) string {
	segs := strings.Split(path, ".")
	out := segs[:0]
	for _, s := range segs {
		if s != "" && strings.Trim(s, "0123456789") == "" {
			continue
		}
		out = append(out, s)
	}
	return strings.Join(out, ".")
}

func (m *Mapper) t(key string) string {
	if m.tr == nil {
		return key
	}
	return m.tr.T(key, nil)
}

func dedupe(msgs []string) []string {
	seen := make(map[string]bool, len(msgs))
	out := msgs[:0]
	for _, s := range msgs {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

// Center holds the notifications currently shown.
type Center struct {
	mu     sync.Mutex
	items  []Notification
	nextID int
}

// NewCenter creates an empty Center.
func NewCenter() *Center {
	return &Center{}
}

// Push adds n and returns its id.
func (c *Center) Push(n Notification) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextID++
	n.ID = c.nextID
	c.items = append(c.items, n)
	return n.ID
}

// Dismiss removes the notification with id. Unknown ids are ignored.
func (c *Center) Dismiss(id int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, n := range c.items {
		if n.ID == id {
			c.items = append(c.items[:i:i], c.items[i+1:]...)
			return
		}
	}
}

// DismissAll removes every notification.
func (c *Center) DismissAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = nil
}

// List returns the notifications, oldest first.
func (c *Center) List() []Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Notification(nil), c.items...)
}

// Blocking reports whether any shown notification is blocking.
func (c *Center) Blocking() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, n := range c.items {
		if n.Blocking {
			return true
		}
	}
	return false
}

// Fields returns the distinct field paths linked from shown notifications,
// sorted.
func (c *Center) Fields() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	seen := make(map[string]bool)
	for _, n := range c.items {
		for _, l := range n.Links {
			seen[l.Field] = true
		}
	}
	out := make([]string, 0, len(seen))
	for f := range seen {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}
