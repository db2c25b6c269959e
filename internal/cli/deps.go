package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/AbdelazizMoustafa10m/Hakija/internal/application"
	"github.com/AbdelazizMoustafa10m/Hakija/internal/backend"
	"github.com/AbdelazizMoustafa10m/Hakija/internal/buildinfo"
	"github.com/AbdelazizMoustafa10m/Hakija/internal/config"
	"github.com/AbdelazizMoustafa10m/Hakija/internal/draft"
	"github.com/AbdelazizMoustafa10m/Hakija/internal/flow"
	"github.com/AbdelazizMoustafa10m/Hakija/internal/form"
	"github.com/AbdelazizMoustafa10m/Hakija/internal/i18n"
)

// newTranslator builds the translator for cfg.Form, merging the override
// catalogs of catalog_dir over the embedded ones.
func newTranslator(cfg *config.Config) (*i18n.Translator, error) {
	tr, err := i18n.New(cfg.Form.Locale)
	if err != nil {
		return nil, err
	}
	if dir := cfg.Form.CatalogDir; dir != "" {
		if err := tr.LoadFS(os.DirFS(dir), "**/*.yaml"); err != nil {
			return nil, fmt.Errorf("loading catalogs from %s: %w", dir, err)
		}
	}
	return tr, nil
}

// newClient builds the backend client for cfg.Backend.
func newClient(cfg *config.Config) (*backend.Client, error) {
	b := cfg.Backend
	return backend.New(b.URL,
		backend.WithToken(b.Token),
		backend.WithLanguage(b.Language),
		backend.WithRateLimit(b.RateLimit, b.Burst),
		backend.WithUserAgent(buildinfo.UserAgent()),
	)
}

// flowOptions translates cfg into flow options.
func flowOptions(cfg *config.Config) ([]flow.Option, error) {
	max, err := cfg.Benefit.DeMinimisMaxAmount()
	if err != nil {
		return nil, err
	}
	var dopts []draft.Option
	if cfg.Backend.UploadConcurrency > 0 {
		dopts = append(dopts, draft.WithUploadConcurrency(cfg.Backend.UploadConcurrency))
	}
	dopts = append(dopts, draft.WithSkipUnchanged(cfg.Backend.SkipUnchanged))
	return []flow.Option{
		flow.WithBenefitMonths(cfg.Benefit.Months),
		flow.WithDeMinimisMax(max),
		flow.WithLoginPath(cfg.Backend.LoginPath),
		flow.WithDraftOptions(dopts...),
	}, nil
}

// loginURL is where the user signs in to obtain a token.
func loginURL(cfg *config.Config) string {
	return strings.TrimRight(cfg.Backend.URL, "/") + cfg.Backend.LoginPath
}

// readValuesFile reads a YAML or JSON values file ("-" for stdin). With wire
// set the file uses backend field names and formats.
func readValuesFile(path string, stdin io.Reader, wire bool) (form.Values, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if raw == nil {
		raw = map[string]any{}
	}
	if wire {
		return application.NewCodec().FromWire(backend.Record(raw)), nil
	}
	values, _ := normalize(raw).(map[string]any)
	return values, nil
}

// normalize turns YAML-decoded nodes into form values. ISO calendar dates
// and timestamps become d.m.yyyy strings.
func normalize(node any) any {
	switch n := node.(type) {
	case map[string]any:
		out := make(map[string]any, len(n))
		for k, v := range n {
			out[k] = normalize(v)
		}
		return out
	case []any:
		out := make([]any, len(n))
		for i, v := range n {
			out[i] = normalize(v)
		}
		return out
	case string:
		if t, err := time.Parse(form.ISODateLayout, n); err == nil {
			return form.FormatUIDate(t)
		}
	case time.Time:
		return form.FormatUIDate(n)
	}
	return node
}
