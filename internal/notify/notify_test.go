package notify

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AbdelazizMoustafa10m/Hakija/internal/backend"
)

type mapTranslator map[string]string

func (m mapTranslator) T(key string, _ map[string]string) string {
	if s, ok := m[key]; ok {
		return s
	}
	return key
}

var tr = mapTranslator{
	"notifications.saveFailed":      "Saving failed",
	"notifications.fieldErrors":     "Check the fields",
	"notifications.notFound":        "Not found",
	"notifications.unauthenticated": "Session expired",
	"fields.companyName":            "Company name",
	"fields.employees.firstName":    "First name",
}

func TestFromError_FieldErrors(t *testing.T) {
	fe := &backend.FieldErrors{
		Fields: map[string][]string{
			"companyName":           {"<b>Required</b>"},
			"employees.0.firstName": {"Too long", "Too long"},
			"legacyField":           {"Ignored field"},
		},
		NonField: []string{"Already submitted"},
	}
	known := func(p string) bool { return p != "legacyField" }
	m := NewMapper(tr, WithKnownFields(known))

	n, redirect := m.FromError("notifications.saveFailed", fe)
	require.Nil(t, redirect)

	assert.Equal(t, LevelError, n.Level)
	assert.Equal(t, "Saving failed", n.Title)
	require.Len(t, n.Links, 3)
	assert.Equal(t, Link{Field: "companyName", Anchor: "#companyName", Label: "Company name", Message: "Required"}, n.Links[0])
	assert.Equal(t, "First name", n.Links[1].Label)
	assert.Equal(t, "Check the fields\nIgnored field\nAlready submitted", n.Message)
}

func TestFromError_Unauthenticated(t *testing.T) {
	m := NewMapper(tr, WithLoginPath("/fi/login"))
	err := fmt.Errorf("draft: update: %w", backend.ErrUnauthenticated)

	n, redirect := m.FromError("notifications.saveFailed", err)
	require.NotNil(t, redirect)
	assert.Equal(t, "/fi/login", redirect.To)
	assert.Equal(t, "Session expired", redirect.Reason)
	assert.Zero(t, n)
}

func TestFromError_GenericAndNotFound(t *testing.T) {
	m := NewMapper(nil)

	n, _ := m.FromError("notifications.saveFailed", errors.New("dial tcp: refused"))
	assert.Equal(t, "notifications.saveFailed", n.Title)
	assert.Empty(t, n.Message, "transport details are not shown")

	n, _ = NewMapper(tr).FromError("notifications.loadFailed", backend.ErrNotFound)
	assert.Equal(t, "Not found", n.Message)
}

func TestSanitize(t *testing.T) {
	m := NewMapper(nil)
	assert.Equal(t, "Fish & chips", m.Sanitize(`<script>alert(1)</script>Fish &amp; chips`))
	assert.False(t, strings.Contains(m.Sanitize(`<a href="javascript:x">x</a>`), "javascript"))
}

func TestCenter(t *testing.T) {
	c := NewCenter()
	a := c.Push(Notification{Level: LevelInfo, Title: "saved"})
	b := c.Push(Notification{Level: LevelError, Title: "aid", Blocking: true, Links: []Link{{Field: "deMinimisAids"}}})

	assert.True(t, c.Blocking())
	assert.Equal(t, []string{"deMinimisAids"}, c.Fields())
	assert.NotEqual(t, a, b)

	c.Dismiss(b)
	assert.False(t, c.Blocking())
	require.Len(t, c.List(), 1)
	assert.Equal(t, "saved", c.List()[0].Title)

	c.Dismiss(999)
	c.DismissAll()
	assert.Empty(t, c.List())
}
