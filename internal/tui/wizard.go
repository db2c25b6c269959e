package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/AbdelazizMoustafa10m/Hakija/internal/application"
	"github.com/AbdelazizMoustafa10m/Hakija/internal/backend"
	"github.com/AbdelazizMoustafa10m/Hakija/internal/flow"
	"github.com/AbdelazizMoustafa10m/Hakija/internal/form"
	"github.com/AbdelazizMoustafa10m/Hakija/internal/validation"
)

// Translator resolves message keys.
type Translator interface {
	T(key string, vars map[string]string) string
}

// widget is the huh field used for a form path.
type widget int

const (
	widgetInput widget = iota
	widgetConfirm
	widgetSelect
)

// binding ties one huh field to a form path. The initial value is kept so
// that only fields the user changed are written back; fields cleared by a
// dependent-field effect keep their cleared value.
type binding struct {
	path    form.Path
	kind    widget
	text    string
	flag    bool
	initial any
	options []string
}

func (b *binding) value() any {
	if b.kind == widgetConfirm {
		return b.flag
	}
	return b.text
}

// stepForm is the huh form of one wizard step.
type stepForm struct {
	index    int
	form     *huh.Form
	bindings []*binding

	aidGranter string
	aidAmount  string
	aidDate    string

	uploadType  string
	uploadPaths string
}

// buildStepForm builds the form of the active step from its validation
// schema. Each validated field becomes an input, a confirm for boolean
// values, or a select when the field accepts a fixed set of options.
func buildStepForm(f *flow.Form, tr Translator, theme Theme, width int) *stepForm {
	idx := f.Controller().State().ActiveStep
	spec := f.Steps()[idx]
	sf := &stepForm{index: idx, uploadType: string(application.AttachmentEmploymentContract)}

	var fields []huh.Field
	for _, fr := range spec.Schema.Fields {
		if strings.Contains(fr.Path, "*") {
			continue
		}
		b := newBinding(f.State(), fr)
		sf.bindings = append(sf.bindings, b)
		fields = append(fields, sf.field(f, tr, fr, b))
	}

	groups := []*huh.Group{huh.NewGroup(fields...).Title(translate(tr, spec.Step.Title))}
	switch spec.Step.Name {
	case application.StepCompany:
		groups = append(groups, sf.aidGroup(f, tr))
	case application.StepAttachments:
		groups = append(groups, sf.uploadGroup(tr))
	}

	sf.form = huh.NewForm(groups...).
		WithTheme(buildHuhTheme(theme)).
		WithWidth(formWidth(width)).
		WithShowHelp(true)
	return sf
}

func newBinding(st *form.State, fr validation.FieldRules) *binding {
	p := form.ParsePath(fr.Path)
	cur, _ := st.Value(p)
	b := &binding{path: p, initial: cur}
	if flag, ok := cur.(bool); ok {
		b.kind, b.flag = widgetConfirm, flag
		return b
	}
	for _, r := range fr.Rules {
		if r.Kind == validation.KindOneOf {
			b.kind, b.options = widgetSelect, r.Options
			break
		}
	}
	if cur != nil {
		b.text = fmt.Sprint(cur)
	}
	return b
}

func (sf *stepForm) field(f *flow.Form, tr Translator, fr validation.FieldRules, b *binding) huh.Field {
	title := translate(tr, fr.Label)
	switch b.kind {
	case widgetConfirm:
		return huh.NewConfirm().Key(fr.Path).Title(title).Value(&b.flag)
	case widgetSelect:
		opts := make([]huh.Option[string], 0, len(b.options)+1)
		if b.text == "" {
			opts = append(opts, huh.NewOption("-", ""))
		}
		for _, o := range b.options {
			opts = append(opts, huh.NewOption(optionLabel(tr, o), o))
		}
		return huh.NewSelect[string]().Key(fr.Path).Title(title).Options(opts...).Value(&b.text)
	default:
		return huh.NewInput().Key(fr.Path).Title(title).Value(&b.text).
			Validate(func(s string) error { return checkField(f, b.path, s) })
	}
}

// checkField writes s as a user edit, lets the form re-validate as on blur,
// and reports the field's resulting error.
func checkField(f *flow.Form, p form.Path, s string) error {
	if err := f.Set(p, s); err != nil {
		return err
	}
	if err := f.Blur(p); err != nil {
		return err
	}
	if fe, ok := f.State().Error(p); ok {
		return fe
	}
	return nil
}

func (sf *stepForm) aidGroup(f *flow.Form, tr Translator) *huh.Group {
	total, max := "0", ""
	if l, err := f.AidList(); err == nil {
		total = form.FormatNumber(l.Total().InexactFloat64())
		max = form.FormatNumber(l.Max().InexactFloat64())
	}
	note := huh.NewNote().
		Title(translate(tr, "fields.deMinimisAid.title")).
		Description(trVars(tr, "deMinimis.total", map[string]string{"total": total}))
	if !f.CanAddAid() {
		return huh.NewGroup(note, huh.NewNote().
			Description(trVars(tr, "deMinimis.maxExceeded", map[string]string{"max": max})))
	}
	return huh.NewGroup(note,
		huh.NewInput().Title(translate(tr, "fields.deMinimisAid.granter")).Value(&sf.aidGranter),
		huh.NewInput().Title(translate(tr, "fields.deMinimisAid.amount")).Value(&sf.aidAmount).
			Validate(func(s string) error {
				if strings.TrimSpace(s) == "" {
					return nil
				}
				_, err := application.ParseAmount(s)
				return err
			}),
		huh.NewInput().Title(translate(tr, "fields.deMinimisAid.grantedAt")).Value(&sf.aidDate).
			Validate(func(s string) error {
				if strings.TrimSpace(s) == "" {
					return nil
				}
				if _, ok := form.ParseDate(s); !ok {
					return errors.New(trVars(tr, "validation.date", map[string]string{
						"label": translate(tr, "fields.deMinimisAid.grantedAt"),
					}))
				}
				return nil
			}),
	)
}

func (sf *stepForm) uploadGroup(tr Translator) *huh.Group {
	types := application.AttachmentTypes()
	opts := make([]huh.Option[string], len(types))
	for i, at := range types {
		opts[i] = huh.NewOption(optionLabel(tr, string(at)), string(at))
	}
	return huh.NewGroup(
		huh.NewSelect[string]().Title(translate(tr, "fields.attachmentType")).Options(opts...).Value(&sf.uploadType),
		huh.NewInput().Title(translate(tr, "fields.attachmentFiles")).Value(&sf.uploadPaths),
	)
}

// apply writes the user's changes into the flow, adds a de minimis grant
// and uploads attachment files, in that order.
func (sf *stepForm) apply(ctx context.Context, f *flow.Form) error {
	for _, b := range sf.bindings {
		v := b.value()
		if b.kind == widgetInput && b.initial == nil && b.text == "" {
			continue
		}
		if fmt.Sprint(v) == fmt.Sprint(b.initial) {
			continue
		}
		if err := f.Set(b.path, v); err != nil {
			return err
		}
	}

	if strings.TrimSpace(sf.aidGranter) != "" {
		amount, err := application.ParseAmount(sf.aidAmount)
		if err != nil {
			return err
		}
		if err := f.AddAid(application.DeMinimisAid{
			Granter:   strings.TrimSpace(sf.aidGranter),
			Amount:    amount,
			GrantedAt: strings.TrimSpace(sf.aidDate),
		}); err != nil {
			return err
		}
	}

	if ups, closeAll, err := openUploads(sf.uploadType, sf.uploadPaths); err != nil {
		return err
	} else if len(ups) > 0 {
		defer closeAll()
		return f.Upload(ctx, ups)
	}
	return nil
}

func openUploads(typ, paths string) ([]backend.Upload, func(), error) {
	var ups []backend.Upload
	var files []*os.File
	closeAll := func() {
		for _, fh := range files {
			_ = fh.Close()
		}
	}
	for _, p := range strings.Split(paths, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		fh, err := os.Open(p)
		if err != nil {
			closeAll()
			return nil, nil, fmt.Errorf("tui: open attachment: %w", err)
		}
		files = append(files, fh)
		ups = append(ups, backend.Upload{
			Type:        typ,
			FileName:    filepath.Base(p),
			ContentType: contentType(p),
			Body:        fh,
		})
	}
	return ups, closeAll, nil
}

func contentType(p string) string {
	switch strings.ToLower(filepath.Ext(p)) {
	case ".pdf":
		return "application/pdf"
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	}
	return "application/octet-stream"
}

// optionLabel translates a select option, showing the raw value when no
// translation exists.
func optionLabel(tr Translator, o string) string {
	key := "options." + o
	if l := translate(tr, key); l != key {
		return l
	}
	return o
}

func translate(tr Translator, key string) string {
	return trVars(tr, key, nil)
}

func trVars(tr Translator, key string, vars map[string]string) string {
	if tr == nil {
		return key
	}
	return tr.T(key, vars)
}

// buildHuhTheme translates the Theme into a huh.Theme so that the step
// forms share the application's palette.
func buildHuhTheme(_ Theme) *huh.Theme {
	t := huh.ThemeBase()

	t.Focused.Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(ColorPrimary)
	t.Focused.NoteTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(ColorPrimary).
		MarginBottom(1)
	t.Focused.Description = lipgloss.NewStyle().
		Foreground(ColorMuted)
	t.Focused.ErrorMessage = lipgloss.NewStyle().
		Foreground(ColorError)
	t.Focused.ErrorIndicator = lipgloss.NewStyle().
		Foreground(ColorError).
		SetString(" *")
	t.Focused.SelectSelector = lipgloss.NewStyle().
		Foreground(ColorAccent).
		SetString("> ")
	t.Focused.SelectedOption = lipgloss.NewStyle().
		Foreground(ColorAccent)
	t.Focused.UnselectedOption = lipgloss.NewStyle().
		Foreground(ColorMuted)
	t.Focused.FocusedButton = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#FFFFFF")).
		Background(ColorPrimary).
		Padding(0, 2).
		MarginRight(1)
	t.Focused.BlurredButton = lipgloss.NewStyle().
		Foreground(ColorMuted).
		Background(ColorHighlight).
		Padding(0, 2).
		MarginRight(1)
	t.Focused.TextInput.Placeholder = lipgloss.NewStyle().
		Foreground(ColorSubtle)
	t.Focused.TextInput.Cursor = lipgloss.NewStyle().
		Foreground(ColorAccent)
	t.Focused.Base = lipgloss.NewStyle().
		PaddingLeft(1).
		BorderStyle(lipgloss.ThickBorder()).
		BorderLeft(true).
		BorderForeground(ColorPrimary)

	t.Blurred.Title = lipgloss.NewStyle().
		Foreground(ColorMuted)
	t.Blurred.NoteTitle = lipgloss.NewStyle().
		Foreground(ColorMuted).
		MarginBottom(1)
	t.Blurred.Description = lipgloss.NewStyle().
		Foreground(ColorSubtle)
	t.Blurred.TextInput.Text = lipgloss.NewStyle().
		Foreground(ColorMuted)
	t.Blurred.Base = lipgloss.NewStyle().
		PaddingLeft(1).
		BorderStyle(lipgloss.HiddenBorder()).
		BorderLeft(true)

	t.Group.Title = t.Focused.Title
	t.Group.Description = t.Focused.Description
	return t
}
