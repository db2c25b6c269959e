package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/AbdelazizMoustafa10m/Hakija/internal/application"
	"github.com/AbdelazizMoustafa10m/Hakija/internal/form"
	"github.com/AbdelazizMoustafa10m/Hakija/internal/validation"
)

var (
	validateStep       string
	validateWire       bool
	validateAlteration string
)

// validateCmd implements "hakija validate FILE".
var validateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Validate application values offline",
	Long: `Validate a YAML or JSON file of application values against the wizard's
step rules without contacting the backend. Use "-" to read from stdin.

Without --step every step is validated. With --alteration the file is checked
as an alteration instead.`,
	Args: cobra.ExactArgs(1),
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().StringVar(&validateStep, "step", "", "Validate only this step (name or index)")
	validateCmd.Flags().BoolVar(&validateWire, "wire", false, "The file uses backend field names and formats")
	validateCmd.Flags().StringVar(&validateAlteration, "alteration", "", "Validate an alteration: applicant or handler")
	rootCmd.AddCommand(validateCmd)
}

type namedSchema struct {
	name   string
	schema *validation.Schema
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	tr, err := newTranslator(cfg)
	if err != nil {
		return err
	}
	values, err := readValuesFile(args[0], cmd.InOrStdin(), validateWire)
	if err != nil {
		return err
	}
	schemas, err := selectSchemas()
	if err != nil {
		return err
	}
	if validateAlteration == "" {
		values = form.Merge(application.Defaults(), values)
	}

	v := validation.New(validation.WithTranslator(tr))
	lookup := form.NewState(values)
	out := cmd.OutOrStdout()
	failed := 0
	for _, ns := range schemas {
		errs, err := v.Validate(ns.schema, lookup)
		if err != nil {
			return fmt.Errorf("step %s: %w", ns.name, err)
		}
		if len(errs) == 0 {
			fmt.Fprintf(out, "%s %s\n", styleSuccess.Render("ok"), ns.name)
			continue
		}
		fmt.Fprintf(out, "%s %s\n", styleErrorLbl.Render("FAIL"), ns.name)
		for _, p := range errs.Paths() {
			fmt.Fprintf(out, "  [%s] %s\n", p, errs[p].Message)
		}
		failed += len(errs)
	}
	if failed > 0 {
		return fmt.Errorf("%d invalid field(s)", failed)
	}
	return nil
}

func selectSchemas() ([]namedSchema, error) {
	switch validateAlteration {
	case "":
	case "applicant":
		s, err := application.ApplicantAlterationSchema()
		return []namedSchema{{"alteration", s}}, err
	case "handler":
		s, err := application.HandlerAlterationSchema()
		return []namedSchema{{"alteration", s}}, err
	default:
		return nil, fmt.Errorf("unknown alteration kind %q (applicant or handler)", validateAlteration)
	}

	steps, err := application.Steps()
	if err != nil {
		return nil, err
	}
	if validateStep != "" {
		idx, err := resolveStep(steps, validateStep)
		if err != nil {
			return nil, err
		}
		steps = steps[idx : idx+1]
	}
	out := make([]namedSchema, len(steps))
	for i, s := range steps {
		out[i] = namedSchema{s.Step.Name, s.Schema}
	}
	return out, nil
}
