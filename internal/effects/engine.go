// Package effects reacts to changes of a fixed set of trigger fields by
// running named side effects, such as clearing fields that no longer apply
// or recomputing a derived end date.
//
// The engine observes a form.State. For every dispatched batch it collects
// the effects enqueued by the triggers (in trigger registration order,
// deduplicated) and runs the handler of each effect once. Changes made while
// the state is still loading never enqueue anything, so server data loaded at
// mount time is left intact.
package effects

import (
	"errors"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/AbdelazizMoustafa10m/Hakija/internal/form"
	"github.com/AbdelazizMoustafa10m/Hakija/internal/logging"
)

// Effect names a side effect.
type Effect string

const (
	ClearAlternativeAddressValues Effect = "ClearAlternativeAddressValues"
	ClearBenefitValues            Effect = "ClearBenefitValues"
	ClearPaySubsidyValues         Effect = "ClearPaySubsidyValues"
	ClearDeMinimisAidValues       Effect = "ClearDeMinimisAidValues"
	SetEndDate                    Effect = "SetEndDate"
)

// Trigger watches one field. Enqueue receives the old and new value of the
// field and returns the effects to run.
type Trigger struct {
	Path    form.Path
	Enqueue func(old, new any) []Effect
}

// Handler performs an effect against the state.
type Handler func(st *form.State) error

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets a custom logger for the engine.
func WithLogger(logger *log.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithTrigger registers a trigger at construction time.
func WithTrigger(t Trigger) Option {
	return func(e *Engine) {
		e.triggers = append(e.triggers, t)
	}
}

// WithHandler maps an effect to its handler at construction time.
func WithHandler(eff Effect, h Handler) Option {
	return func(e *Engine) {
		e.handlers[eff] = h
	}
}

// Engine connects triggers to handlers for one mounted form.
type Engine struct {
	state    *form.State
	logger   *log.Logger
	triggers []Trigger
	handlers map[Effect]Handler

	mu      sync.Mutex
	pending []Effect
	lastErr error
	stop    func()
}

// New creates an Engine for st. It does not observe st until Start.
func New(st *form.State, opts ...Option) *Engine {
	e := &Engine{
		state:    st,
		logger:   logging.New("effects"),
		handlers: make(map[Effect]Handler),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// AddTrigger registers t after the existing triggers.
func (e *Engine) AddTrigger(t Trigger) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.triggers = append(e.triggers, t)
}

// Handle maps eff to h, replacing any earlier handler.
func (e *Engine) Handle(eff Effect, h Handler) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.handlers[eff] = h
}

// Start subscribes the engine to its state. Calling Start twice is a no-op.
func (e *Engine) Start() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.stop != nil {
		return
	}
	e.stop = e.state.Observe(e.onBatch)
}

// Stop unsubscribes the engine.
func (e *Engine) Stop() {
	e.mu.Lock()
	stop := e.stop
	e.stop = nil
	e.mu.Unlock()
	if stop != nil {
		stop()
	}
}

// Pending returns the effects enqueued by the most recent batch.
func (e *Engine) Pending() []Effect {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]Effect(nil), e.pending...)
}

// Err returns the joined handler errors of the most recent batch.
func (e *Engine) Err() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastErr
}

// Evaluate computes the effects a batch enqueues without running them.
func (e *Engine) Evaluate(batch []form.Change) []Effect {
	e.mu.Lock()
	triggers := append([]Trigger(nil), e.triggers...)
	e.mu.Unlock()

	var out []Effect
	seen := make(map[Effect]bool)
	for _, t := range triggers {
		for _, c := range batch {
			if !c.Ready {
				continue
			}
			old, cur, ok := e.valuesFor(t.Path, c)
			if !ok || t.Enqueue == nil {
				continue
			}
			for _, eff := range t.Enqueue(old, cur) {
				if !seen[eff] {
					seen[eff] = true
					out = append(out, eff)
				}
			}
		}
	}
	return out
}

func (e *Engine) onBatch(batch []form.Change) {
	effects := e.Evaluate(batch)

	e.mu.Lock()
	e.pending = effects
	handlers := make([]Handler, len(effects))
	for i, eff := range effects {
		handlers[i] = e.handlers[eff]
	}
	e.mu.Unlock()

	var errs []error
	for i, eff := range effects {
		h := handlers[i]
		if h == nil {
			e.logger.Debug("no handler for effect", "effect", eff)
			continue
		}
		e.logger.Debug("running effect", "effect", eff)
		if err := h(e.state); err != nil {
			e.logger.Warn("effect failed", "effect", eff, "error", err)
			errs = append(errs, fmt.Errorf("effects: %s: %w", eff, err))
		}
	}

	e.mu.Lock()
	e.lastErr = errors.Join(errs...)
	e.mu.Unlock()
}

// valuesFor extracts the trigger field's old and new value from c. A change
// of an ancestor (e.g. a whole sub-object replaced) counts, with the new value
// read from the state.
func (e *Engine) valuesFor(p form.Path, c form.Change) (any, any, bool) {
	if c.Path.String() == p.String() {
		return c.Old, c.New, true
	}
	if p.HasPrefix(c.Path) {
		cur, _ := e.state.Value(p)
		return nil, cur, true
	}
	return nil, nil, false
}
