// Package i18n provides the translation lookups used for labels, validation
// messages and notifications. Catalogs are YAML trees flattened to dotted
// keys, one catalog per locale.
package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charmbracelet/log"
	"gopkg.in/yaml.v3"

	"github.com/AbdelazizMoustafa10m/Hakija/internal/logging"
)

// DefaultLocale is used when a key is missing from the active locale.
const DefaultLocale = "fi"

//go:embed locales/*.yaml
var builtin embed.FS

// Catalog maps dotted keys to message templates.
type Catalog map[string]string

// Translator resolves keys for one active locale with fallback to the
// default locale and finally to the key itself.
type Translator struct {
	locale   string
	catalogs map[string]Catalog
	logger   *log.Logger
}

// New returns a Translator for locale backed by the embedded catalogs.
func New(locale string) (*Translator, error) {
	t := &Translator{
		locale:   normalizeLocale(locale),
		catalogs: make(map[string]Catalog),
		logger:   logging.New("i18n"),
	}
	if err := t.LoadFS(builtin, "locales/*.yaml"); err != nil {
		return nil, err
	}
	return t, nil
}

// Locale returns the active locale.
func (t *Translator) Locale() string {
	return t.locale
}

// Locales returns the loaded locales, sorted.
func (t *Translator) Locales() []string {
	out := make([]string, 0, len(t.catalogs))
	for l := range t.catalogs {
		out = append(out, l)
	}
	sort.Strings(out)
	return out
}

// WithLocale returns a Translator sharing the same catalogs with a
// different active locale.
func (t *Translator) WithLocale(locale string) *Translator {
	clone := *t
	clone.locale = normalizeLocale(locale)
	return &clone
}

// LoadFS merges every catalog file matching pattern inside fsys. The locale
// of a file is its base name ("fi.yaml") or, for nested layouts such as
// "sv/validation.yaml", its parent directory. Later files override earlier
// keys.
func (t *Translator) LoadFS(fsys fs.FS, pattern string) error {
	matches, err := doublestar.Glob(fsys, pattern)
	if err != nil {
		return fmt.Errorf("i18n: glob %q: %w", pattern, err)
	}
	sort.Strings(matches)
	for _, name := range matches {
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("i18n: read %s: %w", name, err)
		}
		var tree map[string]any
		if err := yaml.Unmarshal(data, &tree); err != nil {
			return fmt.Errorf("i18n: parse %s: %w", name, err)
		}
		locale := localeOf(name)
		cat, ok := t.catalogs[locale]
		if !ok {
			cat = make(Catalog)
			t.catalogs[locale] = cat
		}
		flatten("", tree, cat)
		t.logger.Debug("catalog loaded", "file", name, "locale", locale, "keys", len(cat))
	}
	return nil
}

// T translates key with {{name}} placeholders replaced from vars.
func (t *Translator) T(key string, vars map[string]string) string {
	tmpl, ok := t.lookup(key)
	if !ok {
		t.logger.Debug("missing translation", "key", key, "locale", t.locale)
		return key
	}
	return interpolate(tmpl, vars)
}

// Has reports whether key resolves in the active or default locale.
func (t *Translator) Has(key string) bool {
	_, ok := t.lookup(key)
	return ok
}

func (t *Translator) lookup(key string) (string, bool) {
	for _, locale := range []string{t.locale, DefaultLocale, "en"} {
		if s, ok := t.catalogs[locale][key]; ok {
			return s, true
		}
	}
	return "", false
}

func interpolate(tmpl string, vars map[string]string) string {
	if len(vars) == 0 || !strings.Contains(tmpl, "{{") {
		return tmpl
	}
	pairs := make([]string, 0, len(vars)*2)
	for k, v := range vars {
		pairs = append(pairs, "{{"+k+"}}", v)
	}
	return strings.NewReplacer(pairs...).Replace(tmpl)
}

func flatten(prefix string, node any, out Catalog) {
	switch n := node.(type) {
	case map[string]any:
		for k, v := range n {
			key := k
			if prefix != "" {
				key = prefix + "." + k
			}
			flatten(key, v, out)
		}
	case nil:
	default:
		out[prefix] = fmt.Sprint(n)
	}
}

func localeOf(name string) string {
	base := strings.TrimSuffix(path.Base(name), path.Ext(name))
	if len(base) == 2 {
		return normalizeLocale(base)
	}
	return normalizeLocale(path.Base(path.Dir(name)))
}

func normalizeLocale(locale string) string {
	locale = strings.ToLower(strings.TrimSpace(locale))
	if i := strings.IndexAny(locale, "-_"); i > 0 {
		locale = locale[:i]
	}
	if locale == "" {
		return DefaultLocale
	}
	return locale
}
