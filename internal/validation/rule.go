// Package validation evaluates declarative per-field rule schemas against a
// form's values and produces a map of field path to error.
//
// Rules are evaluated in declaration order and the first failing rule of a
// field is the one reported. Every rule except required is skipped for empty
// values, so optional fields only fail when something was typed into them.
package validation

import (
	"regexp"
	"time"

	"github.com/AbdelazizMoustafa10m/Hakija/internal/form"
)

// Kind names a rule type as it appears in schema files.
type Kind string

const (
	KindRequired  Kind = "required"
	KindPattern   Kind = "pattern"
	KindMin       Kind = "min"
	KindMax       Kind = "max"
	KindMinLength Kind = "minLength"
	KindMaxLength Kind = "maxLength"
	KindDate      Kind = "date"
	KindDateMin   Kind = "dateMin"
	KindDateMax   Kind = "dateMax"
	KindOneOf     Kind = "oneOf"
)

// Condition activates a rule only when another field holds a given value.
// With NotEmpty set the rule is active whenever the field has any value.
type Condition struct {
	Field    string `yaml:"field"`
	Equals   any    `yaml:"equals,omitempty"`
	NotEmpty bool   `yaml:"notEmpty,omitempty"`
}

// Rule is one declarative check on a field.
//
// Value carries the bound of min, max, minLength and maxLength. Ref is the
// reference date of dateMin and dateMax: "today", "field:<path>", or a
// literal date. Message overrides the translation key of the error message.
type Rule struct {
	Kind    Kind       `yaml:"kind"`
	Pattern string     `yaml:"pattern,omitempty"`
	Regex   string     `yaml:"regex,omitempty"`
	Value   *float64   `yaml:"value,omitempty"`
	Ref     string     `yaml:"ref,omitempty"`
	Options []string   `yaml:"options,omitempty"`
	When    *Condition `yaml:"when,omitempty"`
	Message string     `yaml:"message,omitempty"`

	re      *regexp.Regexp
	ref     dateRef
	checked bool
}

type refKind int

const (
	refNone refKind = iota
	refToday
	refField
	refLiteral
)

type dateRef struct {
	kind refKind
	path string
	date time.Time
}

// FieldRules lists the rules of one field. Path may contain "*" segments
// that expand over every element of a list.
type FieldRules struct {
	Path  string `yaml:"path"`
	Label string `yaml:"label,omitempty"`
	Rules []Rule `yaml:"rules"`
}

// errorKind maps a failing rule to the error classification.
func (r *Rule) errorKind() form.ErrorKind {
	switch r.Kind {
	case KindRequired:
		return form.KindRequiredMissing
	case KindMin, KindMax:
		return form.KindOutOfRange
	case KindDateMin, KindDateMax:
		if r.ref.kind == refField {
			return form.KindCrossFieldInvalid
		}
		return form.KindOutOfRange
	default:
		return form.KindPatternMismatch
	}
}
