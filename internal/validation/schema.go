package validation

import (
	"errors"
	"fmt"
	"io/fs"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/AbdelazizMoustafa10m/Hakija/internal/form"
)

// Mode decides which UI events re-run validation. Submit always validates.
type Mode string

const (
	ModeOnChange Mode = "onChange"
	ModeOnBlur   Mode = "onBlur"
	ModeOnSubmit Mode = "onSubmit"
)

// Event is the UI interaction that asks for validation.
type Event int

const (
	EventChange Event = iota
	EventBlur
	EventSubmit
)

// Triggers reports whether ev re-runs validation under m.
func (m Mode) Triggers(ev Event) bool {
	switch ev {
	case EventSubmit:
		return true
	case EventBlur:
		return m == ModeOnChange || m == ModeOnBlur || m == ""
	default:
		return m == ModeOnChange
	}
}

// Schema is an ordered list of field rules, typically one per wizard step.
type Schema struct {
	Name   string       `yaml:"name"`
	Mode   Mode         `yaml:"mode,omitempty"`
	Fields []FieldRules `yaml:"fields"`

	compiled bool
}

// ErrInvalidSchema wraps every schema compilation failure.
var ErrInvalidSchema = errors.New("validation: invalid schema")

// ParseSchema decodes a YAML schema document and compiles it.
func ParseSchema(data []byte) (*Schema, error) {
	var s Schema
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("validation: parse schema: %w", err)
	}
	if err := s.Compile(); err != nil {
		return nil, err
	}
	return &s, nil
}

// LoadSchemaFS reads and compiles the schema at name inside fsys.
func LoadSchemaFS(fsys fs.FS, name string) (*Schema, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("validation: read %s: %w", name, err)
	}
	s, err := ParseSchema(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return s, nil
}

// Compile checks every rule and prepares regexes and date references. It is
// idempotent; schemas built in code must be compiled before use.
func (s *Schema) Compile() error {
	if s.compiled {
		return nil
	}
	switch s.Mode {
	case "", ModeOnChange, ModeOnBlur, ModeOnSubmit:
	default:
		return fmt.Errorf("%w: unknown mode %q", ErrInvalidSchema, s.Mode)
	}
	for i := range s.Fields {
		fr := &s.Fields[i]
		if strings.TrimSpace(fr.Path) == "" {
			return fmt.Errorf("%w: field #%d has no path", ErrInvalidSchema, i)
		}
		for j := range fr.Rules {
			if err := fr.Rules[j].compile(); err != nil {
				return fmt.Errorf("%w: %s rule #%d: %v", ErrInvalidSchema, fr.Path, j, err)
			}
		}
	}
	s.compiled = true
	return nil
}

// Field returns the rules declared for path. A concrete list path such as
// "deMinimisAidSet.0.amount" matches its wildcard declaration.
func (s *Schema) Field(path string) (FieldRules, bool) {
	for _, fr := range s.Fields {
		if fr.Path == path || matchWildcard(fr.Path, path) {
			return fr, true
		}
	}
	return FieldRules{}, false
}

func (r *Rule) compile() error {
	if r.checked {
		return nil
	}
	switch r.Kind {
	case KindRequired, KindDate:
	case KindPattern:
		switch {
		case r.Regex != "":
			re, err := regexp.Compile(r.Regex)
			if err != nil {
				return fmt.Errorf("regex: %w", err)
			}
			r.re = re
		case r.Pattern != "":
			re, ok := namedPatterns[r.Pattern]
			if !ok {
				return fmt.Errorf("unknown pattern %q (known: %s)", r.Pattern, strings.Join(PatternNames(), ", "))
			}
			r.re = re
		default:
			return errors.New("pattern rule needs pattern or regex")
		}
	case KindMin, KindMax, KindMinLength, KindMaxLength:
		if r.Value == nil {
			return fmt.Errorf("%s rule needs a value", r.Kind)
		}
	case KindDateMin, KindDateMax:
		ref, err := parseRef(r.Ref)
		if err != nil {
			return err
		}
		r.ref = ref
	case KindOneOf:
		if len(r.Options) == 0 {
			return errors.New("oneOf rule needs options")
		}
	default:
		return fmt.Errorf("unknown rule kind %q", r.Kind)
	}
	if r.When != nil && strings.TrimSpace(r.When.Field) == "" {
		return errors.New("when condition needs a field")
	}
	r.checked = true
	return nil
}

func parseRef(raw string) (dateRef, error) {
	raw = strings.TrimSpace(raw)
	switch {
	case raw == "":
		return dateRef{}, errors.New("date rule needs a ref")
	case raw == "today":
		return dateRef{kind: refToday}, nil
	case strings.HasPrefix(raw, "field:"):
		path := strings.TrimPrefix(raw, "field:")
		if path == "" {
			return dateRef{}, errors.New("field ref needs a path")
		}
		return dateRef{kind: refField, path: path}, nil
	}
	d, ok := form.ParseDate(raw)
	if !ok {
		return dateRef{}, fmt.Errorf("invalid date ref %q", raw)
	}
	return dateRef{kind: refLiteral, date: d}, nil
}
