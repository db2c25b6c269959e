// Package application holds the benefit application domain: record types,
// statuses, the step catalogue of the application wizard with its
// validation schemas, de minimis aid bookkeeping and the dependent-field
// rules of the form.
package application

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/AbdelazizMoustafa10m/Hakija/internal/backend"
	"github.com/AbdelazizMoustafa10m/Hakija/internal/draft"
	"github.com/AbdelazizMoustafa10m/Hakija/internal/form"
)

// Status is the lifecycle state of an application.
type Status string

const (
	StatusDraft     Status = backend.StatusDraft
	StatusReceived  Status = backend.StatusReceived
	StatusHandling  Status = "handling"
	StatusAccepted  Status = "accepted"
	StatusRejected  Status = "rejected"
	StatusCancelled Status = backend.StatusCancelled
)

// Editable reports whether the applicant may still change the record.
func (s Status) Editable() bool {
	return s == StatusDraft || s == ""
}

// Decided reports whether the application has a final decision, which is
// when alterations become possible.
func (s Status) Decided() bool {
	return s == StatusAccepted || s == StatusRejected
}

// AttachmentType is the category of an uploaded file.
type AttachmentType string

const (
	AttachmentEmploymentContract     AttachmentType = "employment_contract"
	AttachmentPaySubsidyDecision     AttachmentType = "pay_subsidy_decision"
	AttachmentEducationContract      AttachmentType = "education_contract"
	AttachmentHelsinkiBenefitVoucher AttachmentType = "helsinki_benefit_voucher"
	AttachmentEmployeeConsent        AttachmentType = "employee_consent"
	AttachmentOther                  AttachmentType = "other_attachment"
)

// AttachmentTypes lists the accepted attachment categories.
func AttachmentTypes() []AttachmentType {
	return []AttachmentType{
		AttachmentEmploymentContract,
		AttachmentPaySubsidyDecision,
		AttachmentEducationContract,
		AttachmentHelsinkiBenefitVoucher,
		AttachmentEmployeeConsent,
		AttachmentOther,
	}
}

// RequiredAttachments returns the attachment types an application must carry
// given its pay subsidy and apprenticeship answers.
func RequiredAttachments(paySubsidyGranted string, apprenticeship bool) []AttachmentType {
	req := []AttachmentType{AttachmentEmploymentContract, AttachmentHelsinkiBenefitVoucher}
	if paySubsidyGranted == "granted" || paySubsidyGranted == "granted_aged" {
		req = append(req, AttachmentPaySubsidyDecision)
	}
	if apprenticeship {
		req = append(req, AttachmentEducationContract)
	}
	return req
}

// Application is the typed view of a stored application record.
type Application struct {
	ID                    string           `json:"id"`
	Status                Status           `json:"status"`
	ApplicationNumber     int              `json:"application_number,omitempty"`
	CompanyName           string           `json:"company_name"`
	CompanyBusinessID     string           `json:"company_business_id"`
	UseAlternativeAddress bool             `json:"use_alternative_address"`
	BenefitType           string           `json:"benefit_type"`
	PaySubsidyGranted     string           `json:"pay_subsidy_granted"`
	PaySubsidyPercent     *float64         `json:"pay_subsidy_percent"`
	StartDate             string           `json:"start_date"`
	EndDate               string           `json:"end_date"`
	Employee              Employee         `json:"employee"`
	DeMinimisAidSet       []DeMinimisAid   `json:"de_minimis_aid_set"`
	Attachments           []Attachment     `json:"attachments"`
	CalculationRows       []CalculationRow `json:"calculation_rows"`
}

// Employee is the hired person.
type Employee struct {
	FirstName            string     `json:"first_name"`
	LastName             string     `json:"last_name"`
	SocialSecurityNumber string     `json:"social_security_number"`
	MonthlyPay           *float64   `json:"monthly_pay"`
	WorkingHours         *float64   `json:"working_hours"`
	Employment           Employment `json:"employment"`
}

// Employment describes the job the benefit is applied for.
type Employment struct {
	JobTitle             string `json:"job_title"`
	CollectiveBargaining string `json:"collective_bargaining_agreement"`
	IsApprenticeship     bool   `json:"apprenticeship_program"`
}

// Attachment is an uploaded file of an application.
type Attachment struct {
	ID             string         `json:"id"`
	AttachmentType AttachmentType `json:"attachment_type"`
	FileName       string         `json:"attachment_file_name"`
	ContentType    string         `json:"content_type"`
}

// DeMinimisAid is one de minimis grant received by the company.
type DeMinimisAid struct {
	Granter   string          `json:"granter"`
	Amount    decimal.Decimal `json:"amount"`
	GrantedAt string          `json:"granted_at"`
}

// Alteration is an amendment (suspension or termination) of a decided
// application.
type Alteration struct {
	ID                string   `json:"id,omitempty"`
	AlterationType    string   `json:"alteration_type"`
	EndDate           string   `json:"end_date"`
	ResumeDate        string   `json:"resume_date,omitempty"`
	Reason            string   `json:"reason"`
	ContactPersonName string   `json:"contact_person_name"`
	IsManual          bool     `json:"is_manual,omitempty"`
	RecoveryAmount    *float64 `json:"recovery_amount,omitempty"`
}

// FromValues decodes form values into an Application using codec.
func FromValues(codec draft.Codec, v form.Values) (Application, error) {
	data, err := json.Marshal(codec.ToWire(v))
	if err != nil {
		return Application{}, fmt.Errorf("application: encode: %w", err)
	}
	var app Application
	if err := json.Unmarshal(data, &app); err != nil {
		return Application{}, fmt.Errorf("application: decode: %w", err)
	}
	return app, nil
}
