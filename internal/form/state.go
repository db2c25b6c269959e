// Package form holds the working copy of a mounted form: field values keyed
// by Path, per-field errors, dirty and touched flags, and the observers that
// react to value changes.
//
// A State starts in PhaseLoading, where server data is loaded without
// marking anything dirty and without waking dependent-field effects. MarkReady
// moves it to PhaseReady exactly once; from then on every SetValue counts as
// a user change.
//
// Observers run synchronously after each mutation batch, in registration
// order. Writes an observer performs while a batch is being dispatched are
// applied to the values but are not dispatched again.
package form

import (
	"sort"
	"sync"
)

// Phase is the lifecycle stage of a State.
type Phase int

const (
	// PhaseLoading is the initial phase: values may be loaded wholesale and
	// changes are not treated as user input.
	PhaseLoading Phase = iota
	// PhaseReady means the form is interactive.
	PhaseReady
)

// String returns the lowercase phase name.
func (p Phase) String() string {
	if p == PhaseReady {
		return "ready"
	}
	return "loading"
}

// Change records one value transition inside a batch.
type Change struct {
	Path Path
	Old  any
	New  any
	// Ready is true when the change happened in PhaseReady.
	Ready bool
}

type observer struct {
	id int
	fn func([]Change)
}

// State is the form-state container. The zero value is not usable; call
// NewState.
type State struct {
	mu          sync.Mutex
	values      Values
	errors      map[string]FieldError
	dirty       map[string]bool
	touched     map[string]bool
	phase       Phase
	observers   []observer
	nextID      int
	batchDepth  int
	pending     []Change
	dispatching bool
}

// NewState returns an empty State in PhaseLoading seeded with a copy of
// defaults.
func NewState(defaults Values) *State {
	return &State{
		values:  CloneValues(defaults),
		errors:  make(map[string]FieldError),
		dirty:   make(map[string]bool),
		touched: make(map[string]bool),
	}
}

// Phase reports the current lifecycle phase.
func (s *State) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// Load replaces the values wholesale with a copy of v. It is only allowed
// while loading; nothing is dispatched to observers.
func (s *State) Load(v Values) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != PhaseLoading {
		return ErrNotLoading
	}
	s.values = CloneValues(v)
	s.errors = make(map[string]FieldError)
	s.dirty = make(map[string]bool)
	s.touched = make(map[string]bool)
	return nil
}

// MarkReady moves the state into PhaseReady. It returns ErrAlreadyReady on
// any call after the first.
func (s *State) MarkReady() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase == PhaseReady {
		return ErrAlreadyReady
	}
	s.phase = PhaseReady
	return nil
}

// Reset overwrites the values with a copy of v in any phase, e.g. with the
// record the backend returned after a save. Dirty flags are cleared; errors
// and touched flags are kept. Observers are not notified.
func (s *State) Reset(v Values) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values = CloneValues(v)
	s.dirty = make(map[string]bool)
}

// Value returns the value at p. Unknown paths report false.
func (s *State) Value(p Path) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := getIn(s.values, p.segments)
	return deepCopy(v), ok
}

// Lookup resolves a dotted path. It lets a State serve as the value source
// for validation.
func (s *State) Lookup(dotted string) (any, bool) {
	return s.Value(ParsePath(dotted))
}

// SetValue writes v at p and dispatches the change to observers unless a
// batch is open. Writing an equal value is a no-op.
func (s *State) SetValue(p Path, v any) error {
	if p.IsZero() {
		return ErrEmptyPath
	}
	s.mu.Lock()
	err := s.setLocked(p, v)
	batch := s.takeBatchLocked()
	s.mu.Unlock()

	s.dispatch(batch)
	return err
}

// Unset removes the value at p. Removing a missing path is a no-op.
func (s *State) Unset(p Path) {
	s.mu.Lock()
	old, existed := getIn(s.values, p.segments)
	if existed && unsetIn(s.values, p.segments) {
		s.recordLocked(p, old, nil)
	}
	batch := s.takeBatchLocked()
	s.mu.Unlock()

	s.dispatch(batch)
}

// Batch groups every mutation made by fn into a single observer dispatch.
// Batches nest; only the outermost one dispatches.
func (s *State) Batch(fn func()) {
	s.mu.Lock()
	s.batchDepth++
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.batchDepth--
		batch := s.takeBatchLocked()
		s.mu.Unlock()
		s.dispatch(batch)
	}()

	fn()
}

// Snapshot returns a deep copy of all values.
func (s *State) Snapshot() Values {
	s.mu.Lock()
	defer s.mu.Unlock()
	return CloneValues(s.values)
}

// Error returns the error attached to p.
func (s *State) Error(p Path) (FieldError, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.errors[p.String()]
	return e, ok
}

// SetError attaches e to p.
func (s *State) SetError(p Path, e FieldError) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errors[p.String()] = e
}

// ClearError removes the error attached to p.
func (s *State) ClearError(p Path) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.errors, p.String())
}

// ReplaceErrors swaps the whole error map for errs.
func (s *State) ReplaceErrors(errs map[string]FieldError) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errors = make(map[string]FieldError, len(errs))
	for k, v := range errs {
		s.errors[k] = v
	}
}

// Errors returns a copy of the error map keyed by dotted path.
func (s *State) Errors() map[string]FieldError {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]FieldError, len(s.errors))
	for k, v := range s.errors {
		out[k] = v
	}
	return out
}

// HasErrors reports whether any field carries an error.
func (s *State) HasErrors() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.errors) > 0
}

// Touch marks p as visited (blurred) by the user.
func (s *State) Touch(p Path) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touched[p.String()] = true
}

// IsTouched reports whether p was marked by Touch.
func (s *State) IsTouched(p Path) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.touched[p.String()]
}

// IsDirty reports whether any field was changed while ready.
func (s *State) IsDirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.dirty) > 0
}

// IsFieldDirty reports whether p was changed while ready.
func (s *State) IsFieldDirty(p Path) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirty[p.String()]
}

// DirtyPaths returns the changed paths in sorted order.
func (s *State) DirtyPaths() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.dirty))
	for k := range s.dirty {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Observe registers fn to receive every dispatched batch. The returned
// function unregisters it.
func (s *State) Observe(fn func([]Change)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	id := s.nextID
	s.observers = append(s.observers, observer{id: id, fn: fn})
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, o := range s.observers {
			if o.id == id {
				s.observers = append(s.observers[:i:i], s.observers[i+1:]...)
				return
			}
		}
	}
}

// Watch calls fn with the current value at p whenever a dispatched batch
// touches p, one of its ancestors, or one of its descendants.
func (s *State) Watch(p Path, fn func(value any)) func() {
	return s.Observe(func(batch []Change) {
		for _, c := range batch {
			if c.Path.HasPrefix(p) || p.HasPrefix(c.Path) {
				v, _ := s.Value(p)
				fn(v)
				return
			}
		}
	})
}

func (s *State) setLocked(p Path, v any) error {
	old, _ := getIn(s.values, p.segments)
	if equalValues(old, v) {
		return nil
	}
	root, err := setIn(s.values, p.segments, v)
	if err != nil {
		return err
	}
	s.values = root.(map[string]any)
	s.recordLocked(p, old, v)
	return nil
}

func (s *State) recordLocked(p Path, old, v any) {
	ready := s.phase == PhaseReady
	if ready {
		s.dirty[p.String()] = true
	}
	s.pending = append(s.pending, Change{Path: p, Old: deepCopy(old), New: deepCopy(v), Ready: ready})
}

// takeBatchLocked hands out the pending changes when they are ready to be
// dispatched. Changes recorded while a dispatch is running are dropped.
func (s *State) takeBatchLocked() []Change {
	if s.dispatching {
		s.pending = nil
		return nil
	}
	if s.batchDepth > 0 || len(s.pending) == 0 {
		return nil
	}
	batch := s.pending
	s.pending = nil
	s.dispatching = true
	return batch
}

func (s *State) dispatch(batch []Change) {
	if batch == nil {
		return
	}
	s.mu.Lock()
	observers := append([]observer(nil), s.observers...)
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.dispatching = false
		s.pending = nil
		s.mu.Unlock()
	}()

	for _, o := range observers {
		o.fn(batch)
	}
}
