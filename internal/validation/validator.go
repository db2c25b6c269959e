package validation

import (
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/AbdelazizMoustafa10m/Hakija/internal/form"
)

// Lookup resolves a dotted field path to its current value. *form.State
// satisfies it.
type Lookup interface {
	Lookup(dotted string) (any, bool)
}

// Translator turns a message key and its interpolation variables into text.
type Translator interface {
	T(key string, vars map[string]string) string
}

// Errors maps dotted field paths to the first failing rule of that field.
type Errors map[string]form.FieldError

// Paths returns the failing paths in sorted order.
func (e Errors) Paths() []string {
	out := make([]string, 0, len(e))
	for p := range e {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Option configures a Validator.
type Option func(*Validator)

// WithTranslator sets the provider used to build error messages. Without one
// the message is the translation key itself.
func WithTranslator(tr Translator) Option {
	return func(v *Validator) {
		v.tr = tr
	}
}

// WithClock overrides the source of "today" for date references.
func WithClock(now func() time.Time) Option {
	return func(v *Validator) {
		v.now = now
	}
}

// Validator evaluates schemas. It holds no per-form state and is safe for
// concurrent use.
type Validator struct {
	tr  Translator
	now func() time.Time
}

// New creates a Validator.
func New(opts ...Option) *Validator {
	v := &Validator{now: time.Now}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

type failure struct {
	rule   string
	kind   form.ErrorKind
	params map[string]string
}

// Validate evaluates every field of s against values and returns the full
// error map. The schema is compiled first if needed.
func (v *Validator) Validate(s *Schema, values Lookup) (Errors, error) {
	if err := s.Compile(); err != nil {
		return nil, err
	}
	errs := make(Errors)
	for i := range s.Fields {
		fr := &s.Fields[i]
		for _, path := range expand(values, fr.Path) {
			if fe, failed := v.checkField(fr, path, values); failed {
				errs[path] = fe
			}
		}
	}
	return errs, nil
}

// ValidateField evaluates only the rules declared for path. Concrete list
// paths ("employees.2.firstName") match wildcard declarations.
func (v *Validator) ValidateField(s *Schema, values Lookup, path string) (form.FieldError, bool, error) {
	if err := s.Compile(); err != nil {
		return form.FieldError{}, false, err
	}
	for i := range s.Fields {
		fr := &s.Fields[i]
		if matchWildcard(fr.Path, path) {
			fe, failed := v.checkField(fr, path, values)
			return fe, failed, nil
		}
	}
	return form.FieldError{}, false, nil
}

// Apply re-runs validation on st for ev when the schema mode asks for it and
// stores the recomputed map with ReplaceErrors. Change and blur events only
// surface errors on touched fields; submit surfaces everything. The returned
// map is what was stored.
func (v *Validator) Apply(st *form.State, s *Schema, ev Event) (Errors, error) {
	if !s.Mode.Triggers(ev) {
		return Errors(st.Errors()), nil
	}
	errs, err := v.Validate(s, st)
	if err != nil {
		return nil, err
	}
	if ev != EventSubmit {
		for p := range errs {
			if !st.IsTouched(form.ParsePath(p)) {
				delete(errs, p)
			}
		}
	}
	st.ReplaceErrors(errs)
	return errs, nil
}

func (v *Validator) checkField(fr *FieldRules, path string, values Lookup) (form.FieldError, bool) {
	val, _ := values.Lookup(path)
	for i := range fr.Rules {
		r := &fr.Rules[i]
		if r.When != nil && !conditionHolds(r.When, values) {
			continue
		}
		if r.Kind != KindRequired && form.IsEmpty(val) {
			continue
		}
		f := v.evaluate(r, val, values)
		if f == nil {
			continue
		}
		if fr.Label != "" {
			f.params["label"] = v.translate(fr.Label, nil)
		}
		return form.FieldError{
			Kind:    f.kind,
			Rule:    f.rule,
			Message: v.translate(messageKey(r, f.rule), f.params),
			Params:  f.params,
		}, true
	}
	return form.FieldError{}, false
}

func (v *Validator) evaluate(r *Rule, val any, values Lookup) *failure {
	fail := func(params map[string]string) *failure {
		if params == nil {
			params = map[string]string{}
		}
		return &failure{rule: string(r.Kind), kind: r.errorKind(), params: params}
	}

	switch r.Kind {
	case KindRequired:
		if form.IsEmpty(val) {
			return fail(nil)
		}
	case KindPattern:
		if !r.re.MatchString(strings.TrimSpace(fmt.Sprint(val))) {
			return fail(map[string]string{"pattern": r.Pattern})
		}
	case KindMin, KindMax:
		n, ok := form.ParseNumber(val)
		if !ok {
			return &failure{rule: "number", kind: form.KindPatternMismatch, params: map[string]string{}}
		}
		bound := *r.Value
		if (r.Kind == KindMin && n < bound) || (r.Kind == KindMax && n > bound) {
			return fail(map[string]string{string(r.Kind): form.FormatNumber(bound)})
		}
	case KindMinLength, KindMaxLength:
		n := utf8.RuneCountInString(strings.TrimSpace(fmt.Sprint(val)))
		bound := int(*r.Value)
		if (r.Kind == KindMinLength && n < bound) || (r.Kind == KindMaxLength && n > bound) {
			return fail(map[string]string{string(r.Kind): strconv.Itoa(bound)})
		}
	case KindDate:
		if _, ok := form.ParseDate(val); !ok {
			return fail(nil)
		}
	case KindDateMin, KindDateMax:
		d, ok := form.ParseDate(val)
		if !ok {
			return &failure{rule: string(KindDate), kind: form.KindPatternMismatch, params: map[string]string{}}
		}
		ref, ok := v.resolveRef(r.ref, values)
		if !ok {
			return nil
		}
		if (r.Kind == KindDateMin && d.Before(ref)) || (r.Kind == KindDateMax && d.After(ref)) {
			bound := "min"
			if r.Kind == KindDateMax {
				bound = "max"
			}
			return fail(map[string]string{
				bound:  form.FormatISODate(ref),
				"date": form.FormatUIDate(ref),
			})
		}
	case KindOneOf:
		s := fmt.Sprint(val)
		for _, opt := range r.Options {
			if opt == s {
				return nil
			}
		}
		return fail(map[string]string{"options": strings.Join(r.Options, ", ")})
	}
	return nil
}

// resolveRef returns the reference date. A field reference whose field is
// empty or unparsable makes the rule inactive.
func (v *Validator) resolveRef(ref dateRef, values Lookup) (time.Time, bool) {
	switch ref.kind {
	case refToday:
		d, _ := form.ParseDate(v.now())
		return d, true
	case refLiteral:
		return ref.date, true
	case refField:
		raw, ok := values.Lookup(ref.path)
		if !ok {
			return time.Time{}, false
		}
		return form.ParseDate(raw)
	}
	return time.Time{}, false
}

func (v *Validator) translate(key string, vars map[string]string) string {
	if v.tr == nil {
		return key
	}
	return v.tr.T(key, vars)
}

func messageKey(r *Rule, rule string) string {
	if r.Message != "" {
		return r.Message
	}
	if rule == string(KindPattern) {
		if r.Pattern != "" {
			return "validation.pattern." + r.Pattern
		}
		return "validation.pattern.default"
	}
	return "validation." + rule
}

func conditionHolds(c *Condition, values Lookup) bool {
	got, _ := values.Lookup(c.Field)
	if c.NotEmpty {
		return !form.IsEmpty(got)
	}
	if c.Equals == nil {
		return form.IsEmpty(got)
	}
	if reflect.DeepEqual(got, c.Equals) {
		return true
	}
	return got != nil && fmt.Sprint(got) == fmt.Sprint(c.Equals)
}

// expand resolves "*" segments against the current values. Paths without
// wildcards are returned as-is.
func expand(values Lookup, pattern string) []string {
	idx := strings.Index(pattern, "*")
	if idx < 0 {
		return []string{pattern}
	}
	prefix := strings.TrimSuffix(pattern[:idx], ".")
	rest := strings.TrimPrefix(pattern[idx+1:], ".")

	container, _ := values.Lookup(prefix)
	var keys []string
	switch c := container.(type) {
	case []any:
		for i := range c {
			keys = append(keys, strconv.Itoa(i))
		}
	case map[string]any:
		for k := range c {
			keys = append(keys, k)
		}
		sort.Strings(keys)
	}

	var out []string
	for _, k := range keys {
		concrete := prefix + "." + k
		if prefix == "" {
			concrete = k
		}
		if rest != "" {
			concrete += "." + rest
		}
		out = append(out, expand(values, concrete)...)
	}
	return out
}

func matchWildcard(pattern, path string) bool {
	ps := strings.Split(pattern, ".")
	segs := strings.Split(path, ".")
	if len(ps) != len(segs) {
		return false
	}
	for i := range ps {
		if ps[i] != "*" && ps[i] != segs[i] {
			return false
		}
	}
	return true
}
