package tui

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/AbdelazizMoustafa10m/Hakija/internal/flow"
	"github.com/AbdelazizMoustafa10m/Hakija/internal/logging"
	"github.com/AbdelazizMoustafa10m/Hakija/internal/notify"
)

// AppConfig holds configuration for the wizard application.
type AppConfig struct {
	// Version is the hakija version shown in the title bar.
	Version string
	// Translator renders labels, titles and options. Keys are shown as-is
	// when nil.
	Translator Translator
	// Theme overrides DefaultTheme when set.
	Theme *Theme
}

// submitResultMsg carries the outcome of a step submission.
type submitResultMsg struct {
	err error
}

// App is the Bubble Tea model of the application wizard. It renders the
// step indicator, the shown notifications and the form of the active step,
// and submits the step through the flow when the form is completed.
type App struct {
	ctx    context.Context
	flow   *flow.Form
	config AppConfig
	theme  Theme
	keys   KeyMap

	spinner    spinner.Model
	step       *stepForm
	width      int
	submitting bool
	quitting   bool
	err        error
}

// NewApp builds an App over a mounted form.
func NewApp(ctx context.Context, f *flow.Form, cfg AppConfig) App {
	theme := DefaultTheme()
	if cfg.Theme != nil {
		theme = *cfg.Theme
	}
	sp := spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(theme.Spinner))
	a := App{
		ctx:     ctx,
		flow:    f,
		config:  cfg,
		theme:   theme,
		keys:    DefaultKeyMap(),
		spinner: sp,
	}
	a.step = buildStepForm(f, cfg.Translator, theme, a.width)
	return a
}

// Err returns the last submission error, if any.
func (a App) Err() error {
	return a.err
}

// Init starts the form of the first shown step.
func (a App) Init() tea.Cmd {
	return a.step.form.Init()
}

// Update handles the wizard keys and submission results and forwards every
// other message to the active step form.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = m.Width
		if a.step != nil {
			a.step.form = a.step.form.WithWidth(formWidth(m.Width))
		}

	case tea.KeyMsg:
		switch {
		case key.Matches(m, a.keys.Quit):
			a.quitting = true
			return a, tea.Quit
		case a.submitting:
			return a, nil
		case key.Matches(m, a.keys.Dismiss):
			a.flow.Notifications().DismissAll()
			return a, nil
		case key.Matches(m, a.keys.Back):
			if a.flow.Controller().IsFirstStep() {
				return a, nil
			}
			if err := a.flow.Previous(); err != nil {
				a.err = err
				return a, nil
			}
			return a, a.rebuild()
		}

	case spinner.TickMsg:
		if !a.submitting {
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(m)
		return a, cmd

	case submitResultMsg:
		a.submitting = false
		a.err = m.err
		if _, redirected := a.flow.Redirect(); redirected || a.flow.Controller().Completed() {
			a.quitting = true
			return a, tea.Quit
		}
		return a, a.rebuild()
	}

	if a.submitting || a.step == nil {
		return a, nil
	}

	model, cmd := a.step.form.Update(msg)
	if hf, ok := model.(*huh.Form); ok {
		a.step.form = hf
	}
	switch a.step.form.State {
	case huh.StateCompleted:
		a.submitting = true
		return a, tea.Batch(a.spinner.Tick, a.submit(a.step))
	case huh.StateAborted:
		a.quitting = true
		return a, tea.Quit
	}
	return a, cmd
}

// submit writes the step form into the flow and advances the wizard.
func (a App) submit(sf *stepForm) tea.Cmd {
	ctx, f := a.ctx, a.flow
	return func() tea.Msg {
		if err := sf.apply(ctx, f); err != nil {
			return submitResultMsg{err: err}
		}
		return submitResultMsg{err: f.Next(ctx)}
	}
}

func (a *App) rebuild() tea.Cmd {
	a.step = buildStepForm(a.flow, a.config.Translator, a.theme, a.width)
	return a.step.form.Init()
}

// View renders the wizard.
func (a App) View() string {
	if a.quitting {
		return ""
	}

	sections := []string{a.renderTitleBar(), a.renderSteps()}
	if n := a.renderNotifications(); n != "" {
		sections = append(sections, n)
	}
	switch {
	case a.submitting:
		sections = append(sections, a.spinner.View()+" "+translate(a.config.Translator, "wizard.saving"))
	case a.step != nil:
		sections = append(sections, a.step.form.View())
	}
	switch {
	case errors.Is(a.err, flow.ErrInvalid):
		sections = append(sections, a.renderFieldErrors())
	case a.err != nil:
		sections = append(sections, a.theme.ErrorText.Render(a.err.Error()))
	}
	sections = append(sections, renderHelp(a.theme, a.keys.ShortHelp()))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (a App) renderTitleBar() string {
	title := "hakija"
	if a.config.Version != "" {
		title = fmt.Sprintf("hakija v%s", a.config.Version)
	}
	if id := a.flow.DraftID(); id != "" {
		title = fmt.Sprintf("%s  |  %s", title, id)
	}
	return a.theme.Title.Render(title)
}

// renderSteps renders the step indicator. Steps beyond the first open step
// are shown as locked.
func (a App) renderSteps() string {
	st := a.flow.Controller().State()
	steps := a.flow.Controller().Steps()
	parts := make([]string, len(steps))
	for i, s := range steps {
		label := fmt.Sprintf("%d. %s", i+1, translate(a.config.Translator, s.Title))
		switch {
		case i == st.ActiveStep:
			parts[i] = a.theme.StepActive.Render(label)
		case i <= st.LastCompletedStep:
			parts[i] = a.theme.StepDone.Render("✓ " + label)
		case st.CanReach(i):
			parts[i] = a.theme.StepOpen.Render(label)
		default:
			parts[i] = a.theme.StepLocked.Render(label)
		}
	}
	return strings.Join(parts, a.theme.Separator.String())
}

func (a App) renderNotifications() string {
	items := a.flow.Notifications().List()
	if len(items) == 0 {
		return ""
	}
	boxes := make([]string, len(items))
	for i, n := range items {
		boxes[i] = renderNotification(a.theme, n)
	}
	return lipgloss.JoinVertical(lipgloss.Left, boxes...)
}

// renderNotification renders n as a bordered box: title, message lines and
// one "label: message" line per field link.
func renderNotification(theme Theme, n notify.Notification) string {
	titleStyle, border := theme.levelStyle(n.Level)
	lines := []string{titleStyle.Render(n.Title)}
	if n.Message != "" {
		lines = append(lines, strings.Split(n.Message, "\n")...)
	}
	for _, l := range n.Links {
		lines = append(lines, theme.Link.Render(l.Label)+": "+l.Message)
	}
	return theme.Notification.BorderForeground(border).Render(strings.Join(lines, "\n"))
}

// renderFieldErrors lists the errors of a rejected step, one per line.
func (a App) renderFieldErrors() string {
	errs := a.flow.State().Errors()
	paths := make([]string, 0, len(errs))
	for p := range errs {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	lines := make([]string, len(paths))
	for i, p := range paths {
		lines[i] = a.theme.ErrorText.Render(p + ": " + errs[p].Error())
	}
	return strings.Join(lines, "\n")
}

func formWidth(w int) int {
	switch {
	case w <= 0:
		return 80
	case w > 100:
		return 100
	}
	return w
}

// RunTUI runs the wizard over a mounted form until it is completed,
// redirected or quit, and returns the last submission error.
func RunTUI(ctx context.Context, f *flow.Form, cfg AppConfig) error {
	logger := logging.New("tui")
	logger.Info("starting wizard", "version", cfg.Version, "draft", f.DraftID())

	p := tea.NewProgram(NewApp(ctx, f, cfg), tea.WithContext(ctx))
	final, err := p.Run()
	if err != nil {
		return fmt.Errorf("running wizard: %w", err)
	}
	if app, ok := final.(App); ok {
		if r, redirected := f.Redirect(); redirected {
			return fmt.Errorf("%s: %w", r.Reason, flow.ErrRedirected)
		}
		return app.Err()
	}
	return nil
}
