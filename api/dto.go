/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract. Amounts cross
  the wire as two-decimal strings; formatting with thousands separators
  is the front-end's concern.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

VALIDATION:
  Validation is done in handlers, not in DTOs. DTOs are pure data
  carriers.

SEE ALSO:
  - handlers.go: Uses these types
  - factory/schedule.go: ScheduleJSON reused for account bootstrap
*/
package api

import (
	"time"

	"github.com/campuspay/billing-engine/billing"
	"github.com/campuspay/billing-engine/factory"
)

// =============================================================================
// REQUEST TYPES
// =============================================================================

// CreateAccountRequest bootstraps a ledger for one student-term with a
// starter fee schedule. Policy figures default to the server's config.
type CreateAccountRequest struct {
	Student string              `json:"student"`
	Term    string              `json:"term"`
	Policy  *factory.PolicyJSON `json:"policy,omitempty"`
	Fees    []factory.FeeJSON   `json:"fees,omitempty"`
}

// AddFeeRequest posts one fee line. Amount is a decimal string, negative
// for credits.
type AddFeeRequest struct {
	Code        string `json:"code"`
	Description string `json:"description"`
	Amount      string `json:"amount"`
	Category    string `json:"category"`
}

// RecordPaymentRequest records one payment against the account.
type RecordPaymentRequest struct {
	Amount    string `json:"amount"`
	Channel   string `json:"channel"`
	Reference string `json:"reference"`
}

// ScholarshipRequest applies a tuition-percentage scholarship discount.
type ScholarshipRequest struct {
	Percentage string `json:"percentage"`
	Name       string `json:"name"`
}

// =============================================================================
// RESPONSE TYPES
// =============================================================================

// FeeLineDTO is one assessment row.
type FeeLineDTO struct {
	Code          string `json:"code"`
	Description   string `json:"description"`
	Amount        string `json:"amount"`
	Category      string `json:"category"`
	PostedAt      string `json:"posted_at"`
	AmountApplied string `json:"amount_applied"`
	Remaining     string `json:"remaining_balance"`
	PaidStatus    string `json:"paid_status"` // paid | partial | unpaid
	InFlight      string `json:"in_flight_status,omitempty"`
}

// PaymentDTO is one payment row.
type PaymentDTO struct {
	ID        string `json:"id"`
	Date      string `json:"date"`
	Channel   string `json:"channel"`
	Reference string `json:"reference"`
	Amount    string `json:"amount"`
	Status    string `json:"status"`
}

// EligibilityDTO is one exam period's gate state.
type EligibilityDTO struct {
	Period      string `json:"period"`
	Requirement string `json:"requirement"`
	AmountDue   string `json:"amount_due"`
	Paid        bool   `json:"paid"`
	Message     string `json:"message"`
}

// StatementDTO is the full query surface of one ledger account.
type StatementDTO struct {
	Student      string           `json:"student"`
	Term         string           `json:"term"`
	TotalTuition string           `json:"total_tuition"`
	TotalFees    string           `json:"total_fees"`
	TotalAmount  string           `json:"total_amount"`
	AmountPaid   string           `json:"amount_paid"`
	Balance      string           `json:"balance"`
	Overpayment  string           `json:"overpayment"`
	FeeLines     []FeeLineDTO     `json:"fee_lines"`
	Payments     []PaymentDTO     `json:"payments"`
	Eligibility  []EligibilityDTO `json:"eligibility"`
}

// PaymentResultDTO is the outcome of a record-payment call.
type PaymentResultDTO struct {
	Success     bool        `json:"success"`
	Message     string      `json:"message"`
	Payment     *PaymentDTO `json:"payment,omitempty"`
	Balance     string      `json:"balance"`
	Overpayment string      `json:"overpayment"`
}

// =============================================================================
// CONVERSIONS
// =============================================================================

func feeLineDTO(f *billing.FeeLine) FeeLineDTO {
	status := "unpaid"
	if f.FullyPaid() {
		status = "paid"
	} else if f.PartiallyPaid() {
		status = "partial"
	}
	dto := FeeLineDTO{
		Code:          f.Code,
		Description:   f.Description,
		Amount:        f.Amount.String(),
		Category:      string(f.Category),
		PostedAt:      f.PostedAt.UTC().Format(time.RFC3339),
		AmountApplied: f.AmountApplied.String(),
		Remaining:     f.RemainingBalance().String(),
		PaidStatus:    status,
	}
	if f.InFlight != nil {
		dto.InFlight = string(*f.InFlight)
	}
	return dto
}

func paymentDTO(p *billing.PaymentRecord) PaymentDTO {
	return PaymentDTO{
		ID:        p.ID,
		Date:      p.CreatedAt.UTC().Format(time.RFC3339),
		Channel:   p.ChannelText,
		Reference: p.Reference,
		Amount:    p.Amount.String(),
		Status:    string(p.Status),
	}
}

func eligibilityDTO(e billing.Eligibility) EligibilityDTO {
	return EligibilityDTO{
		Period:      string(e.Period),
		Requirement: e.Requirement.String(),
		AmountDue:   e.AmountDue.String(),
		Paid:        e.Paid,
		Message:     e.Message,
	}
}

func statementDTO(a *billing.LedgerAccount) StatementDTO {
	fees := make([]FeeLineDTO, 0, len(a.FeeLines()))
	for _, f := range a.FeeLines() {
		fees = append(fees, feeLineDTO(f))
	}
	payments := make([]PaymentDTO, 0, len(a.Payments()))
	for _, p := range a.Payments() {
		payments = append(payments, paymentDTO(p))
	}
	eval := billing.NewEvaluator(a.Policy())
	eligibility := make([]EligibilityDTO, 0, 3)
	for _, period := range billing.ExamPeriods() {
		eligibility = append(eligibility, eligibilityDTO(eval.Evaluate(a, period)))
	}
	return StatementDTO{
		Student:      string(a.Student()),
		Term:         a.Term().String(),
		TotalTuition: a.TotalTuition().String(),
		TotalFees:    a.TotalFees().String(),
		TotalAmount:  a.TotalAmount().String(),
		AmountPaid:   a.AmountPaid().String(),
		Balance:      a.Balance().String(),
		Overpayment:  a.Overpayment().String(),
		FeeLines:     fees,
		Payments:     payments,
		Eligibility:  eligibility,
	}
}
