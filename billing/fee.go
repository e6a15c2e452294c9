/*
fee.go - Individual assessed charge or credit on a student's ledger

PURPOSE:
  A FeeLine is one row of the assessment: tuition, a miscellaneous fee, a
  penalty, or a negative-amount credit such as a scholarship discount.
  Each positive fee line carries its own paid/unpaid sub-ledger fed by the
  FIFO payment allocation in account.go.

INVARIANTS:
  remaining = amount - applied, clamped to [0, amount] for positive fees
  fullyPaid     == remaining <= 0
  partiallyPaid == 0 < applied < amount
  Credit lines (amount <= 0) are never allocation targets.
*/
package billing

import "time"

// =============================================================================
// FEE LINE
// =============================================================================

// FeeLine is a single assessed charge or credit. Amount is signed:
// negative for discounts/scholarships.
type FeeLine struct {
	Code        string
	Description string
	Amount      Amount
	Category    FeeCategory
	PostedAt    time.Time

	// AmountApplied is how much of this line has been funded by payments.
	AmountApplied Amount

	// InFlight mirrors the status of whichever payment last funded this
	// line. Nil once that payment reaches a terminal successful state.
	InFlight *PaymentStatus
}

// NewFeeLine creates a fee line with an empty sub-ledger.
func NewFeeLine(code, description string, amount Amount, category FeeCategory, postedAt time.Time) *FeeLine {
	return &FeeLine{
		Code:          code,
		Description:   description,
		Amount:        amount,
		Category:      category,
		PostedAt:      postedAt,
		AmountApplied: ZeroAmount(),
	}
}

// RemainingBalance is the unpaid portion, clamped to [0, Amount] for
// positive fees. Credit lines always report zero remaining.
func (f *FeeLine) RemainingBalance() Amount {
	if !f.Amount.IsPositive() {
		return ZeroAmount()
	}
	remaining := f.Amount.Sub(f.AmountApplied)
	if remaining.IsNegative() {
		return ZeroAmount()
	}
	if remaining.GreaterThan(f.Amount) {
		return f.Amount
	}
	return remaining
}

// FullyPaid reports whether nothing remains on this line.
func (f *FeeLine) FullyPaid() bool {
	return f.RemainingBalance().IsZero()
}

// PartiallyPaid reports whether some but not all of the line is funded.
func (f *FeeLine) PartiallyPaid() bool {
	return f.AmountApplied.IsPositive() && f.AmountApplied.LessThan(f.Amount)
}

// IsCredit reports whether this line reduces the assessment.
func (f *FeeLine) IsCredit() bool {
	return !f.Amount.IsPositive()
}

// apply funds the line with up to `available` and stamps the in-flight
// status of the funding payment. Returns how much was actually applied.
func (f *FeeLine) apply(available Amount, status PaymentStatus) Amount {
	applied := available.Min(f.RemainingBalance())
	if !applied.IsPositive() {
		return ZeroAmount()
	}
	f.AmountApplied = f.AmountApplied.Add(applied)
	f.stamp(status)
	return applied
}

// stamp records the status of the payment currently funding this line.
func (f *FeeLine) stamp(status PaymentStatus) {
	s := status
	f.InFlight = &s
}

// mirror updates the in-flight marker from the latest payment's status:
// cleared once that payment succeeds, mirrored otherwise. No-op for lines
// with no in-flight payment.
func (f *FeeLine) mirror(latest PaymentStatus) {
	if f.InFlight == nil {
		return
	}
	if latest.IsSuccessful() {
		f.InFlight = nil
		return
	}
	f.stamp(latest)
}
