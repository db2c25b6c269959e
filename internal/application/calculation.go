package application

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/AbdelazizMoustafa10m/Hakija/internal/form"
)

// Row types of a benefit calculation.
const (
	RowSalaryCosts       = "salary_costs_eur"
	RowPaySubsidyMonthly = "pay_subsidy_monthly_eur"
	RowBenefitMonthly    = "helsinki_benefit_monthly_eur"
	RowBenefitSubTotal   = "helsinki_benefit_sub_total_eur"
	RowBenefitTotal      = "helsinki_benefit_total_eur"
	RowDescription       = "description"
)

// CalculationRow is one line of the benefit calculation shown on the
// summary step.
type CalculationRow struct {
	RowType     string          `json:"row_type"`
	Description string          `json:"description_fi"`
	Amount      decimal.Decimal `json:"amount"`
}

// BenefitSum sums the monthly benefit rows over the number of months the
// benefit period covers. Sub total rows are summed directly; a total row,
// when present, wins over both.
func BenefitSum(rows []CalculationRow, start, end time.Time) decimal.Decimal {
	sum := decimal.Zero
	months := decimal.NewFromFloat(PeriodMonths(start, end))
	for _, r := range rows {
		switch r.RowType {
		case RowBenefitTotal:
			return r.Amount.Round(2)
		case RowBenefitMonthly:
			sum = sum.Add(r.Amount.Mul(months))
		case RowBenefitSubTotal:
			sum = sum.Add(r.Amount)
		}
	}
	return sum.Round(2)
}

// PeriodMonths returns the length of the inclusive period start..end in
// months, counting partial months by days over 30 and rounded to two
// decimals. An end before start is zero.
func PeriodMonths(start, end time.Time) float64 {
	if end.Before(start) {
		return 0
	}
	stop := end.AddDate(0, 0, 1)
	months := 0
	for !form.AddMonths(start, months+1).After(stop) {
		months++
	}
	rest := stop.Sub(form.AddMonths(start, months)).Hours() / 24
	m, _ := decimal.NewFromInt(int64(months)).Add(decimal.NewFromFloat(rest / 30)).Round(2).Float64()
	return m
}
