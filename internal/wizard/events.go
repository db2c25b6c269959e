package wizard

import "time"

// Event type constants identify the lifecycle milestone of an Event. String
// values are used so events read well in JSON logs.
const (
	// EventStepStarted is emitted when the submit handler of a step begins.
	EventStepStarted = "step_started"

	// EventStepCompleted is emitted when a submit handler succeeds and the
	// controller moved forward.
	EventStepCompleted = "step_completed"

	// EventStepFailed is emitted when a submit handler returns an error or
	// panics. The active step is unchanged.
	EventStepFailed = "step_failed"

	// EventSubmitRejected is emitted when Next is called while a submit is
	// already in flight.
	EventSubmitRejected = "submit_rejected"

	// EventStepRetreated is emitted by Previous.
	EventStepRetreated = "step_retreated"

	// EventStepJumped is emitted by a successful GoTo.
	EventStepJumped = "step_jumped"

	// EventWizardCompleted is emitted after the last step's handler succeeds.
	EventWizardCompleted = "wizard_completed"
)

// Event is a structured message emitted by the controller. Events are sent
// over a channel for the terminal UI and structured log output.
type Event struct {
	// Type is one of the Event* constants.
	Type string `json:"type"`

	// Step is the index of the step the event concerns.
	Step int `json:"step"`

	// StepName is the name of that step.
	StepName string `json:"step_name"`

	// Message is a human-readable description of the event.
	Message string `json:"message"`

	// Timestamp records when the event was emitted.
	Timestamp time.Time `json:"timestamp"`

	// Error holds the handler error for EventStepFailed.
	Error string `json:"error,omitempty"`
}
