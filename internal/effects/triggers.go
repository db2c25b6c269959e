package effects

import (
	"github.com/AbdelazizMoustafa10m/Hakija/internal/form"
)

// Trigger fields of the benefit application form.
var (
	UseAlternativeAddress            = form.NewField[bool](form.P("useAlternativeAddress"))
	PaySubsidyGranted                = form.NewField[string](form.P("paySubsidyGranted"))
	AssociationHasBusinessActivities = form.NewField[bool](form.P("associationHasBusinessActivities"))
	StartDate                        = form.NewField[string](form.P("startDate"))
	EndDate                          = form.NewField[string](form.P("endDate"))
)

// BenefitTriggers returns the triggers of the benefit application form:
//
//   - useAlternativeAddress turned off enqueues ClearAlternativeAddressValues
//   - any paySubsidyGranted change enqueues ClearBenefitValues, plus
//     ClearPaySubsidyValues when the new value is empty
//   - any associationHasBusinessActivities change enqueues ClearDeMinimisAidValues
//   - any startDate change enqueues SetEndDate
func BenefitTriggers() []Trigger {
	return []Trigger{
		{
			Path: UseAlternativeAddress.Path(),
			Enqueue: func(_, cur any) []Effect {
				if on, _ := cur.(bool); on {
					return nil
				}
				return []Effect{ClearAlternativeAddressValues}
			},
		},
		{
			Path: PaySubsidyGranted.Path(),
			Enqueue: func(_, cur any) []Effect {
				if form.IsEmpty(cur) {
					return []Effect{ClearBenefitValues, ClearPaySubsidyValues}
				}
				return []Effect{ClearBenefitValues}
			},
		},
		{
			Path: AssociationHasBusinessActivities.Path(),
			Enqueue: func(_, _ any) []Effect {
				return []Effect{ClearDeMinimisAidValues}
			},
		},
		{
			Path: StartDate.Path(),
			Enqueue: func(_, _ any) []Effect {
				return []Effect{SetEndDate}
			},
		},
	}
}

// ClearFields returns a handler that writes nil to every path. Paths holding
// lists are reset to an empty list instead.
func ClearFields(paths ...form.Path) Handler {
	return func(st *form.State) error {
		var firstErr error
		st.Batch(func() {
			for _, p := range paths {
				var empty any
				if cur, ok := st.Value(p); ok {
					if _, isList := cur.([]any); isList {
						empty = []any{}
					}
				}
				if err := st.SetValue(p, empty); err != nil && firstErr == nil {
					firstErr = err
				}
			}
		})
		return firstErr
	}
}

// EndDateFrom returns a handler that sets end to start plus months minus one
// day, in UI date format. Month-end starts clamp to the target month's last
// day. An empty or unparsable start clears the end date.
func EndDateFrom(start, end form.Field[string], months int) Handler {
	return func(st *form.State) error {
		raw, _ := st.Value(start.Path())
		d, ok := form.ParseDate(raw)
		if !ok {
			return end.Clear(st)
		}
		return end.Set(st, form.FormatUIDate(form.AddMonths(d, months).AddDate(0, 0, -1)))
	}
}
