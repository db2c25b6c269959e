package i18n

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_LoadsBuiltinCatalogs(t *testing.T) {
	tr, err := New("fi")
	require.NoError(t, err)

	assert.Equal(t, []string{"en", "fi", "sv"}, tr.Locales())
	assert.Equal(t, "Jatka", tr.T("wizard.next", nil))
}

func TestT_Interpolates(t *testing.T) {
	tr, err := New("en")
	require.NoError(t, err)

	got := tr.T("validation.dateMin", map[string]string{"label": "End date", "date": "1.1.2024"})
	assert.Equal(t, "End date cannot be before 1.1.2024", got)
}

func TestT_FallsBackToDefaultLocaleThenKey(t *testing.T) {
	tr, err := New("sv-FI")
	require.NoError(t, err)
	assert.Equal(t, "sv", tr.Locale())

	assert.Equal(t, "Fortsätt", tr.T("wizard.next", nil))
	assert.Equal(t, "Luonnos tallennettu", tr.T("wizard.saved", nil), "missing sv key falls back to fi")
	assert.Equal(t, "no.such.key", tr.T("no.such.key", nil))
	assert.False(t, tr.Has("no.such.key"))
}

func TestLoadFS_NestedLayoutOverrides(t *testing.T) {
	tr, err := New("en")
	require.NoError(t, err)

	fsys := fstest.MapFS{
		"overrides/en/wizard.yaml": {Data: []byte("wizard:\n  next: Continue\n")},
		"overrides/de/wizard.yaml": {Data: []byte("wizard:\n  next: Weiter\n")},
		"overrides/readme.txt":     {Data: []byte("ignored")},
	}
	require.NoError(t, tr.LoadFS(fsys, "overrides/**/*.yaml"))

	assert.Equal(t, "Continue", tr.T("wizard.next", nil))
	assert.Equal(t, "Weiter", tr.WithLocale("de").T("wizard.next", nil))
	assert.Contains(t, tr.Locales(), "de")
}

func TestLoadFS_InvalidYAML(t *testing.T) {
	tr, err := New("en")
	require.NoError(t, err)

	fsys := fstest.MapFS{"bad/en.yaml": {Data: []byte("wizard: [unclosed")}}
	assert.Error(t, tr.LoadFS(fsys, "bad/*.yaml"))
}
