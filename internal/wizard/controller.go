// Package wizard implements the step controller of a multi-page form. The
// controller owns the active step index and the highest completed step, runs
// the registered submit handler before moving forward, and allows at most
// one submit in flight.
package wizard

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

var (
	// ErrNoSteps is returned by NewController for an empty step list.
	ErrNoSteps = errors.New("wizard: no steps")

	// ErrSubmitInFlight is returned when navigation is attempted while a
	// submit handler is running.
	ErrSubmitInFlight = errors.New("wizard: submit already in flight")

	// ErrFirstStep is returned by Previous on the first step.
	ErrFirstStep = errors.New("wizard: already on the first step")

	// ErrStepOutOfRange is returned for indices outside the step list.
	ErrStepOutOfRange = errors.New("wizard: step out of range")

	// ErrStepLocked is returned by GoTo for a step beyond the one following
	// the last completed step.
	ErrStepLocked = errors.New("wizard: step not reachable yet")

	// ErrCompleted is returned by navigation after the last step succeeded.
	ErrCompleted = errors.New("wizard: already completed")
)

// Option configures the Controller.
type Option func(*Controller)

// WithInitialStep starts the wizard at index, treating every earlier step as
// completed. Used when resuming a saved draft.
func WithInitialStep(index int) Option {
	return func(c *Controller) { c.initial = index }
}

// WithEventChannel sets the channel on which the controller broadcasts
// events. Sends are non-blocking so a slow consumer never stalls navigation.
func WithEventChannel(ch chan<- Event) Option {
	return func(c *Controller) { c.events = ch }
}

// WithLogger attaches a charmbracelet/log Logger. When nil the controller
// operates silently.
func WithLogger(logger *log.Logger) Option {
	return func(c *Controller) { c.logger = logger }
}

// WithTransitionHook sets a function called after every successful forward
// transition with the new state, e.g. to scroll the view back to the top.
func WithTransitionHook(fn func(StepState)) Option {
	return func(c *Controller) { c.onTransition = fn }
}

// WithCompletion sets the callback run once the last step's handler has
// succeeded. Its error is returned from Next.
func WithCompletion(fn func(ctx context.Context) error) Option {
	return func(c *Controller) { c.onComplete = fn }
}

// WithRegistry shares an existing handler registry.
func WithRegistry(r *Registry) Option {
	return func(c *Controller) { c.registry = r }
}

// Controller drives navigation through a fixed list of steps.
type Controller struct {
	steps        []Step
	registry     *Registry
	events       chan<- Event
	logger       *log.Logger
	onTransition func(StepState)
	onComplete   func(ctx context.Context) error
	initial      int

	mu        sync.Mutex
	state     StepState
	loading   bool
	completed bool
	history   []StepRecord
}

// NewController creates a controller over steps.
func NewController(steps []Step, opts ...Option) (*Controller, error) {
	if len(steps) == 0 {
		return nil, ErrNoSteps
	}
	c := &Controller{
		steps: append([]Step(nil), steps...),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.registry == nil {
		c.registry = NewRegistry()
	}
	if c.initial < 0 || c.initial >= len(c.steps) {
		return nil, fmt.Errorf("%w: initial step %d", ErrStepOutOfRange, c.initial)
	}
	c.state = StepState{ActiveStep: c.initial, LastCompletedStep: c.initial - 1}
	return c, nil
}

// RegisterSubmitHandler associates index with the handler that must succeed
// before advancing past it.
func (c *Controller) RegisterSubmitHandler(index int, h SubmitHandler) error {
	if index < 0 || index >= len(c.steps) {
		return fmt.Errorf("%w: %d", ErrStepOutOfRange, index)
	}
	c.registry.Register(index, h)
	return nil
}

// Steps returns the step list.
func (c *Controller) Steps() []Step {
	return append([]Step(nil), c.steps...)
}

// State returns the current navigation state.
func (c *Controller) State() StepState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Active returns the active step.
func (c *Controller) Active() Step {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.steps[c.state.ActiveStep]
}

// IsFirstStep reports whether the active step is the first one.
func (c *Controller) IsFirstStep() bool {
	return c.State().ActiveStep == 0
}

// IsLastStep reports whether the active step is the last one.
func (c *Controller) IsLastStep() bool {
	return c.State().ActiveStep == len(c.steps)-1
}

// IsLoading reports whether a submit handler is running.
func (c *Controller) IsLoading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

// Completed reports whether the last step has been submitted.
func (c *Controller) Completed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.completed
}

// History returns every submit attempt in order.
func (c *Controller) History() []StepRecord {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]StepRecord(nil), c.history...)
}

// Next runs the active step's submit handler and, only when it succeeds,
// moves to the following step. On the last step success marks the wizard
// completed and runs the completion callback instead.
//
// While a handler is running every other Next returns ErrSubmitInFlight
// without calling the handler again. A failing or panicking handler leaves
// the active step unchanged; its error is returned wrapped.
func (c *Controller) Next(ctx context.Context) error {
	c.mu.Lock()
	if c.completed {
		c.mu.Unlock()
		return ErrCompleted
	}
	if c.loading {
		idx := c.state.ActiveStep
		c.mu.Unlock()
		c.emit(EventSubmitRejected, idx, "submit ignored, previous submit still running", nil)
		return ErrSubmitInFlight
	}
	c.loading = true
	idx := c.state.ActiveStep
	c.mu.Unlock()

	name := c.steps[idx].Name
	handler, hasHandler := c.registry.Get(idx)

	startedAt := time.Now()
	var err error
	if err = ctx.Err(); err != nil {
		err = fmt.Errorf("context cancelled before submit: %w", err)
	} else if hasHandler {
		c.emit(EventStepStarted, idx, fmt.Sprintf("step %q submitting", name), nil)
		c.log("step submitting", "step", name, "index", idx)
		err = c.safeSubmit(ctx, handler, name)
	}

	record := StepRecord{Step: idx, Name: name, StartedAt: startedAt, Duration: time.Since(startedAt)}
	if err != nil {
		record.Error = err.Error()
	}

	c.mu.Lock()
	c.loading = false
	c.history = append(c.history, record)
	if err != nil {
		c.mu.Unlock()
		c.emit(EventStepFailed, idx, fmt.Sprintf("step %q failed: %v", name, err), err)
		c.log("step failed", "step", name, "error", err)
		return fmt.Errorf("wizard: step %q: %w", name, err)
	}

	if idx > c.state.LastCompletedStep {
		c.state.LastCompletedStep = idx
	}
	last := idx == len(c.steps)-1
	if last {
		c.completed = true
	} else {
		c.state.ActiveStep = idx + 1
	}
	state := c.state
	c.mu.Unlock()

	c.emit(EventStepCompleted, idx, fmt.Sprintf("step %q completed", name), nil)
	c.log("step completed", "step", name, "active", state.ActiveStep)
	if c.onTransition != nil {
		c.onTransition(state)
	}

	if last {
		c.emit(EventWizardCompleted, idx, "wizard completed", nil)
		c.log("wizard completed")
		if c.onComplete != nil {
			if err := c.onComplete(ctx); err != nil {
				return fmt.Errorf("wizard: completion: %w", err)
			}
		}
	}
	return nil
}

// Previous moves one step back without running any handler.
func (c *Controller) Previous() error {
	c.mu.Lock()
	switch {
	case c.completed:
		c.mu.Unlock()
		return ErrCompleted
	case c.loading:
		c.mu.Unlock()
		return ErrSubmitInFlight
	case c.state.ActiveStep == 0:
		c.mu.Unlock()
		return ErrFirstStep
	}
	c.state.ActiveStep--
	idx := c.state.ActiveStep
	c.mu.Unlock()

	c.emit(EventStepRetreated, idx, fmt.Sprintf("back to step %q", c.steps[idx].Name), nil)
	return nil
}

// GoTo jumps to index when it is at most one step past the last completed
// step.
func (c *Controller) GoTo(index int) error {
	if index < 0 || index >= len(c.steps) {
		return fmt.Errorf("%w: %d", ErrStepOutOfRange, index)
	}
	c.mu.Lock()
	switch {
	case c.completed:
		c.mu.Unlock()
		return ErrCompleted
	case c.loading:
		c.mu.Unlock()
		return ErrSubmitInFlight
	case !c.state.CanReach(index):
		last := c.state.LastCompletedStep
		c.mu.Unlock()
		return fmt.Errorf("%w: step %d, last completed %d", ErrStepLocked, index, last)
	}
	c.state.ActiveStep = index
	c.mu.Unlock()

	c.emit(EventStepJumped, index, fmt.Sprintf("jumped to step %q", c.steps[index].Name), nil)
	return nil
}

// safeSubmit runs h inside a recover block so a panicking handler becomes an
// error instead of crashing the process.
func (c *Controller) safeSubmit(ctx context.Context, h SubmitHandler, name string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("submit handler of step %q panicked: %v", name, r)
		}
	}()
	return h(ctx)
}

func (c *Controller) emit(typ string, idx int, msg string, err error) {
	if c.events == nil {
		return
	}
	ev := Event{
		Type:      typ,
		Step:      idx,
		StepName:  c.steps[idx].Name,
		Message:   msg,
		Timestamp: time.Now(),
	}
	if err != nil {
		ev.Error = err.Error()
	}
	select {
	case c.events <- ev:
	default:
	}
}

func (c *Controller) log(msg string, kvs ...any) {
	if c.logger == nil {
		return
	}
	c.logger.Info(msg, kvs...)
}
