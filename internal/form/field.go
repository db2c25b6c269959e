package form

// Field is a typed accessor for one path. Declaring fields once and reusing
// them keeps path strings out of calling code:
//
//	var StartDate = form.NewField[string](form.P("startDate"))
//	v, ok := StartDate.Get(state)
type Field[T any] struct {
	path Path
}

// NewField returns a Field bound to p.
func NewField[T any](p Path) Field[T] {
	return Field[T]{path: p}
}

// Path returns the path the field is bound to.
func (f Field[T]) Path() Path {
	return f.path
}

// Get returns the current value. ok is false when the path is missing or the
// stored value is not a T.
func (f Field[T]) Get(s *State) (T, bool) {
	var zero T
	raw, ok := s.Value(f.path)
	if !ok || raw == nil {
		return zero, false
	}
	v, ok := raw.(T)
	if !ok {
		return zero, false
	}
	return v, true
}

// Set writes v.
func (f Field[T]) Set(s *State, v T) error {
	return s.SetValue(f.path, v)
}

// Clear writes nil, keeping the key present.
func (f Field[T]) Clear(s *State) error {
	return s.SetValue(f.path, nil)
}

// Error returns the error attached to the field.
func (f Field[T]) Error(s *State) (FieldError, bool) {
	return s.Error(f.path)
}

// At returns a field of type U below f, e.g. an element of a list field.
func At[U, T any](f Field[T], sub Path) Field[U] {
	return Field[U]{path: f.path.Join(sub)}
}
