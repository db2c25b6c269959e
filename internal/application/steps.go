package application

import (
	"embed"
	"fmt"

	"github.com/AbdelazizMoustafa10m/Hakija/internal/validation"
	"github.com/AbdelazizMoustafa10m/Hakija/internal/wizard"
)

//go:embed schemas/*.yaml
var schemaFS embed.FS

// Step names of the benefit application wizard, in order.
const (
	StepCompany     = "company"
	StepHiring      = "hiring"
	StepAttachments = "attachments"
	StepSummary     = "summary"
)

// StepSpec pairs a wizard step with its validation schema.
type StepSpec struct {
	Step   wizard.Step
	Schema *validation.Schema
}

// Steps loads the step catalogue of the benefit application wizard.
func Steps() ([]StepSpec, error) {
	names := []string{StepCompany, StepHiring, StepAttachments, StepSummary}
	out := make([]StepSpec, 0, len(names))
	for _, name := range names {
		s, err := validation.LoadSchemaFS(schemaFS, "schemas/"+name+".yaml")
		if err != nil {
			return nil, fmt.Errorf("application: step %s: %w", name, err)
		}
		out = append(out, StepSpec{
			Step:   wizard.Step{Name: name, Title: "steps." + name},
			Schema: s,
		})
	}
	return out, nil
}

// WizardSteps returns the wizard steps of specs.
func WizardSteps(specs []StepSpec) []wizard.Step {
	out := make([]wizard.Step, len(specs))
	for i, s := range specs {
		out[i] = s.Step
	}
	return out
}

// StepIndex returns the index of the step called name, or -1.
func StepIndex(specs []StepSpec, name string) int {
	for i, s := range specs {
		if s.Step.Name == name {
			return i
		}
	}
	return -1
}

// ApplicantAlterationSchema validates alterations filed by the employer.
func ApplicantAlterationSchema() (*validation.Schema, error) {
	return validation.LoadSchemaFS(schemaFS, "schemas/alteration_applicant.yaml")
}

// HandlerAlterationSchema validates alterations entered by a handler, which
// additionally cover manual recovery of paid benefit.
func HandlerAlterationSchema() (*validation.Schema, error) {
	return validation.LoadSchemaFS(schemaFS, "schemas/alteration_handler.yaml")
}

// KnownField reports whether path is validated by any of specs. Wildcard
// list segments match any index.
func KnownField(specs []StepSpec) func(path string) bool {
	return func(path string) bool {
		for _, s := range specs {
			if _, ok := s.Schema.Field(path); ok {
				return true
			}
		}
		return false
	}
}
