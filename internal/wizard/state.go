package wizard

import "time"

// Step describes one page of the wizard.
type Step struct {
	// Name is the stable identifier of the step, e.g. "company".
	Name string `json:"name" yaml:"name"`

	// Title is the translation key of the step heading.
	Title string `json:"title" yaml:"title"`
}

// StepState is the navigation position of the wizard. The controller keeps
// ActiveStep <= LastCompletedStep+1 at all times.
type StepState struct {
	ActiveStep        int `json:"active_step"`
	LastCompletedStep int `json:"last_completed_step"`
}

// CanReach reports whether index may be jumped to.
func (s StepState) CanReach(index int) bool {
	return index >= 0 && index <= s.LastCompletedStep+1
}

// StepRecord captures one submit attempt. Duration is serialized as
// nanoseconds.
type StepRecord struct {
	Step      int           `json:"step"`
	Name      string        `json:"name"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`
	Error     string        `json:"error,omitempty"`
}
