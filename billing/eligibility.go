/*
eligibility.go - Exam-period eligibility derived from cumulative payments

PURPOSE:
  Each exam period (prelim, midterm, finals) is gated by a cumulative
  payment threshold. All three thresholds are checked against the single
  running amountPaid, not per-period escrow, so one large payment can
  satisfy several periods at once.

REQUIREMENTS:
  PRELIM:  fixed policy constant, independent of the fee total
  MIDTERM: totalAmount * policy.MidtermMultiplier
  FINALS:  totalAmount

PAID FLAGS:
  Recomputed after every mutation as amountPaid >= requirement, gated on
  at least one payment record existing. Flags are monotonic: once true
  they never regress, even if fees are later increased.
*/
package billing

import "fmt"

// =============================================================================
// EXAM PERIOD
// =============================================================================

type ExamPeriod string

const (
	PeriodPrelim  ExamPeriod = "PRELIM"
	PeriodMidterm ExamPeriod = "MIDTERM"
	PeriodFinals  ExamPeriod = "FINALS"
)

// ExamPeriods lists the periods in academic order.
func ExamPeriods() []ExamPeriod {
	return []ExamPeriod{PeriodPrelim, PeriodMidterm, PeriodFinals}
}

// ParseExamPeriod parses a period name, case-sensitive.
func ParseExamPeriod(s string) (ExamPeriod, error) {
	switch ExamPeriod(s) {
	case PeriodPrelim, PeriodMidterm, PeriodFinals:
		return ExamPeriod(s), nil
	}
	return "", fmt.Errorf("invalid exam period %q", s)
}

// =============================================================================
// EVALUATOR
// =============================================================================

// Evaluator derives per-period eligibility from a ledger account.
type Evaluator struct {
	policy Policy
}

func NewEvaluator(policy Policy) Evaluator {
	return Evaluator{policy: policy}
}

// Requirement is the cumulative payment needed for a period, given the
// account's current fee total.
func (e Evaluator) Requirement(period ExamPeriod, totalAmount Amount) Amount {
	switch period {
	case PeriodPrelim:
		return e.policy.PrelimRequirement
	case PeriodMidterm:
		return totalAmount.Mul(e.policy.MidtermMultiplier)
	default:
		return totalAmount
	}
}

// Eligibility is the evaluated state of one exam period.
type Eligibility struct {
	Period      ExamPeriod
	Requirement Amount
	AmountDue   Amount
	Paid        bool
	Message     string
}

// Evaluate derives the full eligibility row for one period.
func (e Evaluator) Evaluate(a *LedgerAccount, period ExamPeriod) Eligibility {
	requirement := e.Requirement(period, a.TotalAmount())
	paid := a.ExamPaid(period)

	// A paid flag forces the due amount to zero even if fees were raised
	// after the threshold was crossed.
	due := requirement.Sub(a.amountPaid).FloorZero()
	if paid {
		due = ZeroAmount()
	}

	message := fmt.Sprintf("payment required: %s", due)
	if !due.IsPositive() {
		if a.HasInProgressPayment() {
			message = "payment processing - pending posting"
		} else {
			message = "eligible"
		}
	}

	return Eligibility{
		Period:      period,
		Requirement: requirement,
		AmountDue:   due,
		Paid:        paid,
		Message:     message,
	}
}

// =============================================================================
// ACCOUNT ELIGIBILITY SURFACE
// =============================================================================

// ExamPaid reports the monotonic paid flag for a period.
func (a *LedgerAccount) ExamPaid(period ExamPeriod) bool {
	switch period {
	case PeriodPrelim:
		return a.prelimPaid
	case PeriodMidterm:
		return a.midtermPaid
	default:
		return a.finalsPaid
	}
}

// AmountDue is the outstanding amount for a period's requirement.
func (a *LedgerAccount) AmountDue(period ExamPeriod) Amount {
	return NewEvaluator(a.policy).Evaluate(a, period).AmountDue
}

// EligibilityMessage is the human-readable eligibility line for a period.
func (a *LedgerAccount) EligibilityMessage(period ExamPeriod) string {
	return NewEvaluator(a.policy).Evaluate(a, period).Message
}

// refreshEligibility recomputes the paid flags. With zero payments
// recorded all flags are forced false regardless of amountPaid; once a
// flag is set it never regresses.
func (a *LedgerAccount) refreshEligibility() {
	if len(a.payments) == 0 {
		a.prelimPaid = false
		a.midtermPaid = false
		a.finalsPaid = false
		return
	}
	eval := NewEvaluator(a.policy)
	total := a.TotalAmount()
	a.prelimPaid = a.prelimPaid || a.amountPaid.GreaterThanOrEqual(eval.Requirement(PeriodPrelim, total))
	a.midtermPaid = a.midtermPaid || a.amountPaid.GreaterThanOrEqual(eval.Requirement(PeriodMidterm, total))
	a.finalsPaid = a.finalsPaid || a.amountPaid.GreaterThanOrEqual(eval.Requirement(PeriodFinals, total))
}
