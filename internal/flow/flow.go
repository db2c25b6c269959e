// Package flow composes one mounted application form: the form state, its
// validator, the dependent-field effect engine, the step controller, the
// draft adapter and the notification center. Every collaborator is passed in
// explicitly; nothing is looked up from ambient context.
package flow

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/shopspring/decimal"

	"github.com/AbdelazizMoustafa10m/Hakija/internal/application"
	"github.com/AbdelazizMoustafa10m/Hakija/internal/backend"
	"github.com/AbdelazizMoustafa10m/Hakija/internal/draft"
	"github.com/AbdelazizMoustafa10m/Hakija/internal/effects"
	"github.com/AbdelazizMoustafa10m/Hakija/internal/form"
	"github.com/AbdelazizMoustafa10m/Hakija/internal/logging"
	"github.com/AbdelazizMoustafa10m/Hakija/internal/notify"
	"github.com/AbdelazizMoustafa10m/Hakija/internal/validation"
	"github.com/AbdelazizMoustafa10m/Hakija/internal/wizard"
)

var (
	// ErrInvalid is returned by a step submit when validation fails. The
	// draft is not saved.
	ErrInvalid = errors.New("flow: step has validation errors")

	// ErrBlocked is returned by a step submit while a blocking notification
	// concerns the step.
	ErrBlocked = errors.New("flow: step is blocked")

	// ErrNotMounted is returned by operations that need Mount to have run.
	ErrNotMounted = errors.New("flow: form is not mounted")

	// ErrRedirected is returned when the session expired and the user was
	// redirected to sign in.
	ErrRedirected = errors.New("flow: redirected to sign in")
)

// Translator resolves message keys. It serves both validation messages and
// notifications.
type Translator interface {
	T(key string, vars map[string]string) string
}

// Deps are the collaborators of a Form.
type Deps struct {
	API        draft.API
	Translator Translator
	Steps      []application.StepSpec
}

// Option configures a Form.
type Option func(*Form)

// WithLogger sets a custom logger.
func WithLogger(logger *log.Logger) Option {
	return func(f *Form) { f.logger = logger }
}

// WithEvents forwards wizard events to ch.
func WithEvents(ch chan<- wizard.Event) Option {
	return func(f *Form) { f.events = ch }
}

// WithRedirect sets the function called when the session has expired.
func WithRedirect(fn func(notify.Redirect)) Option {
	return func(f *Form) { f.onRedirect = fn }
}

// WithCompletion sets the function called after the application was sent.
func WithCompletion(fn func(ctx context.Context, saved form.Values) error) Option {
	return func(f *Form) { f.onComplete = fn }
}

// WithBenefitMonths sets the length of the benefit period used to derive the
// end date.
func WithBenefitMonths(n int) Option {
	return func(f *Form) { f.months = n }
}

// WithDeMinimisMax sets the ceiling of de minimis aid.
func WithDeMinimisMax(max decimal.Decimal) Option {
	return func(f *Form) { f.aidMax = max }
}

// WithInitialStep resumes the wizard at index.
func WithInitialStep(index int) Option {
	return func(f *Form) { f.initialStep = index }
}

// WithDraftOptions passes options to the draft adapter.
func WithDraftOptions(opts ...draft.Option) Option {
	return func(f *Form) { f.draftOpts = append(f.draftOpts, opts...) }
}

// WithLoginPath sets the sign-in location used for redirects.
func WithLoginPath(p string) Option {
	return func(f *Form) { f.loginPath = p }
}

// Form is one mounted benefit application form.
type Form struct {
	steps      []application.StepSpec
	tr         Translator
	state      *form.State
	validator  *validation.Validator
	engine     *effects.Engine
	controller *wizard.Controller
	adapter    *draft.Adapter
	center     *notify.Center
	mapper     *notify.Mapper
	logger     *log.Logger

	events      chan<- wizard.Event
	onRedirect  func(notify.Redirect)
	onComplete  func(ctx context.Context, saved form.Values) error
	months      int
	aidMax      decimal.Decimal
	initialStep int
	draftOpts   []draft.Option
	loginPath   string

	mu       sync.Mutex
	mounted  bool
	aidNote  int
	redirect *notify.Redirect
}

// New builds a Form over deps. The form must be mounted before use.
func New(deps Deps, opts ...Option) (*Form, error) {
	if deps.API == nil {
		return nil, errors.New("flow: no backend api")
	}
	if len(deps.Steps) == 0 {
		return nil, errors.New("flow: no steps")
	}
	f := &Form{
		steps:     deps.Steps,
		tr:        deps.Translator,
		state:     form.NewState(application.Defaults()),
		center:    notify.NewCenter(),
		logger:    logging.New("flow"),
		months:    application.DefaultBenefitMonths,
		aidMax:    application.DefaultDeMinimisMax,
		loginPath: notify.DefaultLoginPath,
	}
	for _, opt := range opts {
		opt(f)
	}

	var vopts []validation.Option
	if f.tr != nil {
		vopts = append(vopts, validation.WithTranslator(f.tr))
	}
	f.validator = validation.New(vopts...)
	f.engine = effects.New(f.state, append(application.EffectOptions(f.months), effects.WithLogger(logging.New("effects")))...)
	f.adapter = draft.NewAdapter(deps.API, application.NewCodec(), f.draftOpts...)

	var ntr notify.Translator
	if f.tr != nil {
		ntr = f.tr
	}
	f.mapper = notify.NewMapper(ntr,
		notify.WithKnownFields(application.KnownField(f.steps)),
		notify.WithLoginPath(f.loginPath),
	)

	copts := []wizard.Option{
		wizard.WithInitialStep(f.initialStep),
		wizard.WithLogger(logging.New("wizard")),
		wizard.WithCompletion(f.complete),
	}
	if f.events != nil {
		copts = append(copts, wizard.WithEventChannel(f.events))
	}
	ctrl, err := wizard.NewController(application.WizardSteps(f.steps), copts...)
	if err != nil {
		return nil, fmt.Errorf("flow: %w", err)
	}
	f.controller = ctrl
	for i := range f.steps {
		if err := ctrl.RegisterSubmitHandler(i, f.submitHandler(i)); err != nil {
			return nil, fmt.Errorf("flow: %w", err)
		}
	}
	return f, nil
}

// Mount loads the draft id into the form, or keeps the empty defaults when
// id is empty, and then marks the form ready. Effects stay silent during the
// load.
func (f *Form) Mount(ctx context.Context, id string) error {
	f.mu.Lock()
	if f.mounted {
		f.mu.Unlock()
		return errors.New("flow: already mounted")
	}
	f.mu.Unlock()

	f.engine.Start()
	if id != "" {
		loaded, err := f.adapter.Load(ctx, id)
		if err != nil {
			f.engine.Stop()
			return f.fail("notifications.loadFailed", err)
		}
		if err := f.state.Load(form.Merge(application.Defaults(), loaded)); err != nil {
			f.engine.Stop()
			return fmt.Errorf("flow: %w", err)
		}
		f.logger.Info("draft loaded", "id", id)
	}
	if err := f.state.MarkReady(); err != nil {
		f.engine.Stop()
		return fmt.Errorf("flow: %w", err)
	}

	f.mu.Lock()
	f.mounted = true
	f.mu.Unlock()
	f.refreshAidNotification()
	return nil
}

// Unmount stops reacting to changes.
func (f *Form) Unmount() {
	f.engine.Stop()
	f.mu.Lock()
	f.mounted = false
	f.mu.Unlock()
}

// State returns the form state.
func (f *Form) State() *form.State { return f.state }

// Controller returns the step controller.
func (f *Form) Controller() *wizard.Controller { return f.controller }

// Notifications returns the notification center.
func (f *Form) Notifications() *notify.Center { return f.center }

// Steps returns the step catalogue.
func (f *Form) Steps() []application.StepSpec { return f.steps }

// DraftID returns the id of the saved draft, empty before the first save.
func (f *Form) DraftID() string { return f.adapter.ID() }

// Redirect returns the pending redirect, if the session has expired.
func (f *Form) Redirect() (notify.Redirect, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.redirect == nil {
		return notify.Redirect{}, false
	}
	return *f.redirect, true
}

// Set writes a user edit, marks the field touched and re-validates the
// active step when its mode validates on change.
func (f *Form) Set(p form.Path, v any) error {
	if err := f.state.SetValue(p, v); err != nil {
		return err
	}
	f.state.Touch(p)
	return f.revalidate(validation.EventChange)
}

// Blur marks p touched and re-validates the active step when its mode
// validates on blur.
func (f *Form) Blur(p form.Path) error {
	f.state.Touch(p)
	return f.revalidate(validation.EventBlur)
}

// Next submits the active step and advances on success.
func (f *Form) Next(ctx context.Context) error {
	if !f.isMounted() {
		return ErrNotMounted
	}
	return f.controller.Next(ctx)
}

// Previous moves one step back.
func (f *Form) Previous() error { return f.controller.Previous() }

// GoTo jumps to a reachable step.
func (f *Form) GoTo(index int) error { return f.controller.GoTo(index) }

// Delete removes the saved draft.
func (f *Form) Delete(ctx context.Context) error {
	if err := f.adapter.Delete(ctx); err != nil {
		if errors.Is(err, draft.ErrNoDraft) || errors.Is(err, draft.ErrNotDraft) {
			return err
		}
		return f.fail("notifications.deleteFailed", err)
	}
	return nil
}

// Upload attaches files to the draft, saving it first when needed, and
// appends the stored attachments to the form.
func (f *Form) Upload(ctx context.Context, ups []backend.Upload) error {
	if f.adapter.ID() == "" {
		if err := f.save(ctx); err != nil {
			return err
		}
	}
	recs, err := f.adapter.UploadAll(ctx, ups)
	if err != nil {
		return f.fail("notifications.saveFailed", err)
	}
	p := form.P("attachments")
	cur, _ := f.state.Value(p)
	list, _ := cur.([]any)
	list = append([]any(nil), list...)
	for _, r := range recs {
		list = append(list, map[string]any(r))
	}
	return f.state.SetValue(p, list)
}

func (f *Form) isMounted() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.mounted
}

func (f *Form) revalidate(ev validation.Event) error {
	idx := f.controller.State().ActiveStep
	_, err := f.validator.Apply(f.state, f.steps[idx].Schema, ev)
	return err
}

// submitHandler validates step i, refuses while the step is blocked, saves
// the draft and overwrites the working copy with the saved record. The last
// step also sends the application.
func (f *Form) submitHandler(i int) wizard.SubmitHandler {
	spec := f.steps[i]
	last := i == len(f.steps)-1
	return func(ctx context.Context) error {
		errs, err := f.validator.Apply(f.state, spec.Schema, validation.EventSubmit)
		if err != nil {
			return err
		}
		if len(errs) > 0 {
			f.logger.Debug("step invalid", "step", spec.Step.Name, "fields", errs.Paths())
			return fmt.Errorf("%w: %d field(s)", ErrInvalid, len(errs))
		}
		if spec.Step.Name == application.StepCompany && !f.CanAddAid() {
			f.refreshAidNotification()
			return ErrBlocked
		}
		if err := f.save(ctx); err != nil {
			return err
		}
		if last {
			saved, err := f.adapter.Submit(ctx)
			if err != nil {
				return f.fail("notifications.submitFailed", err)
			}
			f.state.Reset(form.Merge(application.Defaults(), saved))
		}
		return nil
	}
}

func (f *Form) save(ctx context.Context) error {
	saved, err := f.adapter.Save(ctx, f.state.Snapshot())
	if err != nil {
		return f.fail("notifications.saveFailed", err)
	}
	f.state.Reset(form.Merge(application.Defaults(), saved))
	return nil
}

func (f *Form) complete(ctx context.Context) error {
	f.center.Push(notify.Notification{Level: notify.LevelSuccess, Title: f.t("wizard.submitted")})
	if f.onComplete == nil {
		return nil
	}
	return f.onComplete(ctx, f.state.Snapshot())
}

// fail turns err into a notification, or a redirect when the session has
// expired, and returns the error for the caller. Backend field errors are
// also attached to their fields.
func (f *Form) fail(titleKey string, err error) error {
	n, redirect := f.mapper.FromError(titleKey, err)
	if redirect != nil {
		f.mu.Lock()
		f.redirect = redirect
		f.mu.Unlock()
		f.logger.Warn("session expired, redirecting", "to", redirect.To)
		if f.onRedirect != nil {
			f.onRedirect(*redirect)
		}
		return fmt.Errorf("%w: %w", ErrRedirected, err)
	}

	var fe *backend.FieldErrors
	if errors.As(err, &fe) {
		for _, l := range n.Links {
			f.state.SetError(form.ParsePath(l.Field), form.FieldError{Kind: form.KindServer, Message: l.Message})
		}
	}
	f.center.Push(n)
	f.logger.Error("operation failed", "title", titleKey, "error", err, "retryable", backend.IsRetryable(err))
	return err
}

func (f *Form) t(key string) string {
	if f.tr == nil {
		return key
	}
	return f.tr.T(key, nil)
}
