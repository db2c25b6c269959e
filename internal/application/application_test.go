package application

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AbdelazizMoustafa10m/Hakija/internal/effects"
	"github.com/AbdelazizMoustafa10m/Hakija/internal/form"
	"github.com/AbdelazizMoustafa10m/Hakija/internal/validation"
)

func eur(n int64) decimal.Decimal { return decimal.NewFromInt(n) }

func TestAidList_ThreeGrantsOverMaximum(t *testing.T) {
	l := NewAidList(eur(300000))
	assert.True(t, l.CanAdd())

	require.NoError(t, l.Add(DeMinimisAid{Granter: "ELY", Amount: eur(100000), GrantedAt: "1.3.2023"}))
	require.NoError(t, l.Add(DeMinimisAid{Granter: "Business Finland", Amount: eur(150000), GrantedAt: "1.6.2023"}))
	_, shown := l.Notification(nil)
	assert.False(t, shown)

	require.NoError(t, l.Add(DeMinimisAid{Granter: "Kaupunki", Amount: eur(80000), GrantedAt: "1.9.2023"}))
	assert.True(t, l.Total().Equal(eur(330000)))
	assert.True(t, l.Exceeded())

	n, shown := l.Notification(nil)
	require.True(t, shown)
	assert.True(t, n.Blocking)
	assert.Equal(t, "deMinimisAidSet", n.Links[0].Field)

	assert.False(t, l.CanAdd())
	err := l.Add(DeMinimisAid{Granter: "Muu", Amount: eur(1)})
	assert.ErrorIs(t, err, ErrAidListClosed)
	assert.Equal(t, 3, l.Len())

	require.NoError(t, l.Remove(2))
	assert.True(t, l.CanAdd())
	assert.True(t, l.Total().Equal(eur(250000)))
}

func TestAidList_RejectsIncompleteGrants(t *testing.T) {
	l := NewAidList(DefaultDeMinimisMax)
	assert.ErrorIs(t, l.Add(DeMinimisAid{Amount: eur(10)}), ErrInvalidAid)
	assert.ErrorIs(t, l.Add(DeMinimisAid{Granter: "ELY", Amount: eur(0)}), ErrInvalidAid)
	assert.Error(t, l.Remove(0))
}

func TestAidListFromValues(t *testing.T) {
	v := form.Values{"deMinimisAidSet": []any{
		map[string]any{"granter": "ELY", "amount": "150 000,50", "grantedAt": "1.3.2023"},
		map[string]any{"granter": "BF", "amount": 200000.0, "grantedAt": "1.6.2023"},
	}}
	l, err := AidListFromValues(v, eur(300000))
	require.NoError(t, err)
	assert.Equal(t, "350000.5", l.Total().String())
	assert.False(t, l.CanAdd())

	got := l.Values()
	require.Len(t, got, 2)
	assert.Equal(t, "150000,5", got[0].(map[string]any)["amount"])

	_, err = AidListFromValues(form.Values{"deMinimisAidSet": "x"}, eur(1))
	assert.Error(t, err)
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in   any
		want string
		ok   bool
	}{
		{"1 234,50", "1234.5", true},
		{"1\u00a0234,50", "1234.5", true},
		{"", "0", true},
		{nil, "0", true},
		{12.25, "12.25", true},
		{7, "7", true},
		{"abc", "", false},
		{true, "", false},
	}
	for _, tt := range tests {
		got, err := ParseAmount(tt.in)
		if !tt.ok {
			assert.Error(t, err, "%v", tt.in)
			continue
		}
		require.NoError(t, err, "%v", tt.in)
		assert.Equal(t, tt.want, got.String(), "%v", tt.in)
	}
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestPeriodMonths(t *testing.T) {
	assert.Equal(t, 12.0, PeriodMonths(date(2024, 1, 1), date(2024, 12, 31)))
	assert.Equal(t, 0.5, PeriodMonths(date(2024, 1, 1), date(2024, 1, 15)))
	assert.Equal(t, 0.0, PeriodMonths(date(2024, 2, 1), date(2024, 1, 1)))
	assert.Equal(t, 6.0, PeriodMonths(date(2024, 8, 31), date(2025, 2, 27)))
}

func TestBenefitSum(t *testing.T) {
	start, end := date(2024, 1, 1), date(2024, 6, 30)
	rows := []CalculationRow{
		{RowType: RowSalaryCosts, Amount: eur(3000)},
		{RowType: RowBenefitMonthly, Amount: eur(800)},
		{RowType: RowBenefitSubTotal, Amount: eur(150)},
	}
	assert.Equal(t, "4950", BenefitSum(rows, start, end).String())

	rows = append(rows, CalculationRow{RowType: RowBenefitTotal, Amount: decimal.RequireFromString("4800.004")})
	assert.Equal(t, "4800", BenefitSum(rows, start, end).String())
}

func TestSteps(t *testing.T) {
	specs, err := Steps()
	require.NoError(t, err)
	require.Len(t, specs, 4)
	assert.Equal(t, []string{StepCompany, StepHiring, StepAttachments, StepSummary},
		[]string{specs[0].Step.Name, specs[1].Step.Name, specs[2].Step.Name, specs[3].Step.Name})
	assert.Equal(t, 1, StepIndex(specs, StepHiring))
	assert.Equal(t, -1, StepIndex(specs, "nope"))
	assert.Len(t, WizardSteps(specs), 4)

	known := KnownField(specs)
	assert.True(t, known("companyName"))
	assert.True(t, known("deMinimisAidSet.2.amount"))
	assert.False(t, known("legacyField"))
}

func TestCompanyStep_Validation(t *testing.T) {
	specs, err := Steps()
	require.NoError(t, err)
	v := validation.New(validation.WithClock(func() time.Time { return date(2024, 5, 1) }))

	values := Defaults()
	values["companyName"] = "Oy Testi Ab"
	values["companyBusinessId"] = "1234567-8"
	values["companyContactPersonFirstName"] = "Maija"
	values["companyContactPersonLastName"] = "Meikäläinen"
	values["companyContactPersonEmail"] = "maija@example.fi"
	values["companyContactPersonPhoneNumber"] = "040 123 4567"
	values["companyBankAccountNumber"] = "FI21 1234 5600 0007 85"

	errs, err := v.Validate(specs[0].Schema, form.NewState(values))
	require.NoError(t, err)
	assert.Empty(t, errs)

	values["useAlternativeAddress"] = true
	errs, err = v.Validate(specs[0].Schema, form.NewState(values))
	require.NoError(t, err)
	assert.Contains(t, errs, "alternativeCompanyStreetAddress")
	assert.Equal(t, form.KindRequiredMissing, errs["alternativeCompanyPostcode"].Kind)
}

func TestAlterationSchemas_CrossFieldDates(t *testing.T) {
	applicant, err := ApplicantAlterationSchema()
	require.NoError(t, err)
	handler, err := HandlerAlterationSchema()
	require.NoError(t, err)
	v := validation.New()

	app := map[string]any{"startDate": "2024-01-01", "endDate": "2024-06-30"}
	alteration := func(end string) form.Values {
		return form.Values{
			"application": app,
			"alteration": map[string]any{
				"alterationType":    "termination",
				"endDate":           end,
				"reason":            "Työsuhde päättyi",
				"contactPersonName": "Maija",
			},
		}
	}

	for _, s := range []*validation.Schema{applicant, handler} {
		errs, err := v.Validate(s, form.NewState(alteration("31.12.2023")))
		require.NoError(t, err, s.Name)
		fe, ok := errs["alteration.endDate"]
		require.True(t, ok, s.Name)
		assert.Equal(t, "dateMin", fe.Rule)
		assert.Equal(t, "2024-01-01", fe.Params["min"])

		errs, err = v.Validate(s, form.NewState(alteration("15.3.2024")))
		require.NoError(t, err, s.Name)
		assert.NotContains(t, errs, "alteration.endDate", s.Name)
	}

	manual := alteration("15.3.2024")
	manual["alteration"].(map[string]any)["isManual"] = true
	errs, err := v.Validate(handler, form.NewState(manual))
	require.NoError(t, err)
	assert.Contains(t, errs, "alteration.recoveryAmount")
	errs, err = v.Validate(applicant, form.NewState(manual))
	require.NoError(t, err)
	assert.NotContains(t, errs, "alteration.recoveryAmount")
}

func TestEffectOptions(t *testing.T) {
	st := form.NewState(Defaults())
	eng := effects.New(st, EffectOptions(12)...)
	eng.Start()
	t.Cleanup(eng.Stop)
	require.NoError(t, st.MarkReady())

	require.NoError(t, effects.StartDate.Set(st, "1.2.2024"))
	end, _ := effects.EndDate.Get(st)
	assert.Equal(t, "31.1.2025", end)

	require.NoError(t, st.SetValue(form.P("paySubsidyPercent"), "50"))
	require.NoError(t, effects.PaySubsidyGranted.Set(st, "granted"))
	require.NoError(t, effects.PaySubsidyGranted.Set(st, ""))
	pct, _ := st.Value(form.P("paySubsidyPercent"))
	assert.Nil(t, pct)
	start, _ := effects.StartDate.Get(st)
	assert.Empty(t, start)
	require.NoError(t, eng.Err())
}

func TestFromValues(t *testing.T) {
	v := Defaults()
	v["companyName"] = "Oy Testi Ab"
	v["startDate"] = "1.2.2024"
	v["deMinimisAidSet"] = []any{map[string]any{"granter": "ELY", "amount": "1 000,50", "grantedAt": "1.3.2023"}}
	v["employee"].(map[string]any)["monthlyPay"] = "2 500"

	app, err := FromValues(NewCodec(), v)
	require.NoError(t, err)
	assert.Equal(t, "Oy Testi Ab", app.CompanyName)
	assert.Equal(t, "2024-02-01", app.StartDate)
	require.Len(t, app.DeMinimisAidSet, 1)
	assert.Equal(t, "1000.5", app.DeMinimisAidSet[0].Amount.String())
	require.NotNil(t, app.Employee.MonthlyPay)
	assert.Equal(t, 2500.0, *app.Employee.MonthlyPay)
}

func TestStatusAndAttachments(t *testing.T) {
	assert.True(t, StatusDraft.Editable())
	assert.False(t, StatusReceived.Editable())
	assert.True(t, StatusAccepted.Decided())
	assert.False(t, StatusHandling.Decided())

	assert.Equal(t, []AttachmentType{AttachmentEmploymentContract, AttachmentHelsinkiBenefitVoucher},
		RequiredAttachments("not_granted", false))
	assert.Contains(t, RequiredAttachments("granted", true), AttachmentEducationContract)
	assert.Contains(t, RequiredAttachments("granted_aged", false), AttachmentPaySubsidyDecision)
	assert.Len(t, AttachmentTypes(), 6)
}
