package application

import (
	"github.com/AbdelazizMoustafa10m/Hakija/internal/effects"
	"github.com/AbdelazizMoustafa10m/Hakija/internal/form"
)

// DefaultBenefitMonths is the length of the benefit period used to derive
// the end date from the start date.
const DefaultBenefitMonths = 12

// Fields cleared by the dependent-field effects.
var (
	AlternativeAddressFields = []form.Path{
		form.P("alternativeCompanyStreetAddress"),
		form.P("alternativeCompanyPostcode"),
		form.P("alternativeCompanyCity"),
		form.P("companyDepartment"),
	}
	BenefitFields = []form.Path{
		form.P("benefitType"),
		form.P("startDate"),
		form.P("endDate"),
	}
	PaySubsidyFields = []form.Path{
		form.P("paySubsidyPercent"),
		form.P("additionalPaySubsidyPercent"),
		form.P("apprenticeshipProgram"),
	}
	DeMinimisFields = []form.Path{
		form.P("deMinimisAid"),
		DeMinimisAidSet,
	}
)

// EffectOptions binds the benefit form's triggers to their handlers. The
// end date is set to months after the start date, less one day.
func EffectOptions(months int) []effects.Option {
	if months <= 0 {
		months = DefaultBenefitMonths
	}
	opts := make([]effects.Option, 0, 9)
	for _, t := range effects.BenefitTriggers() {
		opts = append(opts, effects.WithTrigger(t))
	}
	return append(opts,
		effects.WithHandler(effects.ClearAlternativeAddressValues, effects.ClearFields(AlternativeAddressFields...)),
		effects.WithHandler(effects.ClearBenefitValues, effects.ClearFields(BenefitFields...)),
		effects.WithHandler(effects.ClearPaySubsidyValues, effects.ClearFields(PaySubsidyFields...)),
		effects.WithHandler(effects.ClearDeMinimisAidValues, effects.ClearFields(DeMinimisFields...)),
		effects.WithHandler(effects.SetEndDate, effects.EndDateFrom(effects.StartDate, effects.EndDate, months)),
	)
}

// Defaults returns the empty working copy of a new application. Every path
// a step validates or renders exists, possibly as nil.
func Defaults() form.Values {
	return form.Values{
		"companyName":                      "",
		"companyBusinessId":                "",
		"companyContactPersonFirstName":    "",
		"companyContactPersonLastName":     "",
		"companyContactPersonEmail":        "",
		"companyContactPersonPhoneNumber":  "",
		"companyBankAccountNumber":         "",
		"useAlternativeAddress":            false,
		"alternativeCompanyStreetAddress":  "",
		"alternativeCompanyPostcode":       "",
		"alternativeCompanyCity":           "",
		"companyDepartment":                "",
		"useEinvoice":                      false,
		"einvoiceProviderName":             "",
		"einvoiceProviderIdentifier":       "",
		"einvoiceAddress":                  "",
		"associationHasBusinessActivities": false,
		"deMinimisAid":                     nil,
		"deMinimisAidSet":                  []any{},
		"employee": map[string]any{
			"firstName":            "",
			"lastName":             "",
			"socialSecurityNumber": "",
			"monthlyPay":           "",
			"workingHours":         "",
		},
		"paySubsidyGranted":           "",
		"paySubsidyPercent":           nil,
		"additionalPaySubsidyPercent": nil,
		"apprenticeshipProgram":       nil,
		"benefitType":                 "",
		"startDate":                   "",
		"endDate":                     "",
		"attachments":                 []any{},
		"approveTerms":                false,
	}
}
