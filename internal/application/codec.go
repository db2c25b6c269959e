package application

import "github.com/AbdelazizMoustafa10m/Hakija/internal/draft"

// DateFields are the leaf keys holding calendar dates.
var DateFields = []string{
	"startDate",
	"endDate",
	"grantedAt",
	"resumeDate",
	"decisionDate",
	"submittedAt",
}

// NumericFields are the leaf keys holding numbers typed as UI strings.
var NumericFields = []string{
	"amount",
	"monthlyPay",
	"otherExpenses",
	"vacationMoney",
	"workingHours",
	"paySubsidyPercent",
	"additionalPaySubsidyPercent",
	"recoveryAmount",
}

// NewCodec returns the wire codec of benefit applications.
func NewCodec() draft.Codec {
	return draft.NewCodec(DateFields, NumericFields)
}
