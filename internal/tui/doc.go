// Package tui renders the application wizard in the terminal with Bubble Tea
// and huh. Each step becomes a huh form whose fields are bound to form paths;
// completing the form writes the changed values back and submits the step.
package tui
