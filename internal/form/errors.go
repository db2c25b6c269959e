package form

import "errors"

// ErrorKind classifies a field error.
type ErrorKind string

const (
	// KindRequiredMissing marks a required field left empty.
	KindRequiredMissing ErrorKind = "required_missing"
	// KindPatternMismatch marks a value that does not match its pattern or length limits.
	KindPatternMismatch ErrorKind = "pattern_mismatch"
	// KindOutOfRange marks a numeric or date value outside its bounds.
	KindOutOfRange ErrorKind = "out_of_range"
	// KindCrossFieldInvalid marks a value that conflicts with another field.
	KindCrossFieldInvalid ErrorKind = "cross_field_invalid"
	// KindServer marks an error reported by the backend for this field.
	KindServer ErrorKind = "server"
)

// FieldError describes why a single field is invalid. Rule names the rule
// that produced it (e.g. "dateMin") and Params carries the interpolation
// values used to build Message.
type FieldError struct {
	Kind    ErrorKind         `json:"kind"`
	Rule    string            `json:"rule,omitempty"`
	Message string            `json:"message"`
	Params  map[string]string `json:"params,omitempty"`
}

// Error implements the error interface.
func (e FieldError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return string(e.Kind)
}

var (
	// ErrNotLoading is returned by Load once the state has left PhaseLoading.
	ErrNotLoading = errors.New("form: state is not loading")
	// ErrAlreadyReady is returned by MarkReady when called a second time.
	ErrAlreadyReady = errors.New("form: state is already ready")
	// ErrEmptyPath is returned when a write targets the empty path.
	ErrEmptyPath = errors.New("form: empty field path")
)
