/*
account.go - LedgerAccount aggregate root

PURPOSE:
  Owns the ordered fee lines and payment records for one student-semester
  and keeps the derived figures (totals, balance, overpayment, exam paid
  flags) consistent across every mutation.

CRITICAL INVARIANTS:
  A. balance >= 0 and overpayment >= 0, at most one non-zero.
  B. While amountPaid == 0, balance equals the policy's opening balance -
     a pre-existing obligation independent of the fee sum.
  C. Once amountPaid > 0, balance = max(0, total - paid) and
     overpayment = max(0, paid - total).
  D. amountPaid never decreases; exam paid flags never regress.

ALLOCATION ORDER:
  Payments fund fee lines strictly in insertion order (FIFO). Credit
  lines are never allocation targets. Determinism here is what keeps a
  replayed ledger byte-identical.

CONCURRENCY:
  None. One logical owner per account at a time; the repository
  collaborator serializes load-mutate-save cycles per account key.

SEE ALSO:
  - fee.go, payment.go: The owned entities
  - eligibility.go: Exam-period derivation invoked after every mutation
  - store.go: Repository interface for persistence
*/
package billing

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// LEDGER ACCOUNT
// =============================================================================

// LedgerAccount is the financial ledger for one student in one term.
type LedgerAccount struct {
	student StudentID
	term    TermKey
	policy  Policy

	feeLines []*FeeLine       // insertion order = payment allocation order
	payments []*PaymentRecord // insertion order = chronological order

	amountPaid  Amount
	balance     Amount
	overpayment Amount

	prelimPaid  bool
	midtermPaid bool
	finalsPaid  bool
}

// NewAccount creates a ledger for one student-semester. The account opens
// with the policy's opening balance owed and nothing paid.
func NewAccount(student StudentID, term TermKey, policy Policy) *LedgerAccount {
	return &LedgerAccount{
		student:     student,
		term:        term,
		policy:      policy,
		amountPaid:  ZeroAmount(),
		balance:     policy.OpeningBalance,
		overpayment: ZeroAmount(),
	}
}

// =============================================================================
// IDENTITY & QUERIES
// =============================================================================

func (a *LedgerAccount) Student() StudentID { return a.student }
func (a *LedgerAccount) Term() TermKey      { return a.term }
func (a *LedgerAccount) Policy() Policy     { return a.policy }

func (a *LedgerAccount) AmountPaid() Amount  { return a.amountPaid }
func (a *LedgerAccount) Balance() Amount     { return a.balance }
func (a *LedgerAccount) Overpayment() Amount { return a.overpayment }

// TotalTuition sums the tuition-category lines.
func (a *LedgerAccount) TotalTuition() Amount {
	total := ZeroAmount()
	for _, f := range a.feeLines {
		if f.Category == CategoryTuition {
			total = total.Add(f.Amount)
		}
	}
	return total
}

// TotalFees sums the non-tuition lines, credits included.
func (a *LedgerAccount) TotalFees() Amount {
	total := ZeroAmount()
	for _, f := range a.feeLines {
		if f.Category != CategoryTuition {
			total = total.Add(f.Amount)
		}
	}
	return total
}

// TotalAmount is the signed sum of every fee line.
func (a *LedgerAccount) TotalAmount() Amount {
	return a.TotalTuition().Add(a.TotalFees())
}

// FeeLines returns the fee lines in allocation order. The slice is a
// copy; the lines themselves are shared and must not be mutated.
func (a *LedgerAccount) FeeLines() []*FeeLine {
	out := make([]*FeeLine, len(a.feeLines))
	copy(out, a.feeLines)
	return out
}

// Payments returns the payment records in chronological order.
func (a *LedgerAccount) Payments() []*PaymentRecord {
	out := make([]*PaymentRecord, len(a.payments))
	copy(out, a.payments)
	return out
}

// HasInProgressPayment reports whether any recorded payment is still
// settling.
func (a *LedgerAccount) HasInProgressPayment() bool {
	for _, p := range a.payments {
		if p.Status.IsInProgress() {
			return true
		}
	}
	return false
}

// =============================================================================
// MUTATORS
// =============================================================================

// AddFee appends a fee line and recomputes the derived figures. The fee
// must already be validated by the caller.
func (a *LedgerAccount) AddFee(fee *FeeLine) {
	a.feeLines = append(a.feeLines, fee)
	a.recomputeDerived()
}

// RemoveFee removes every fee line with the given code. Absent codes are
// a documented no-op, not an error.
func (a *LedgerAccount) RemoveFee(code string) {
	kept := a.feeLines[:0]
	for _, f := range a.feeLines {
		if f.Code != code {
			kept = append(kept, f)
		}
	}
	a.feeLines = kept
	a.recomputeDerived()
}

// ScholarshipCode is the fee-line code used for the single scholarship
// discount line an account may carry.
const ScholarshipCode = "SCHOLARSHIP"

// ApplyScholarship replaces any existing discount line with a new one
// worth percentage% of the tuition-only total. The percentage applies to
// tuition, never the grand total.
func (a *LedgerAccount) ApplyScholarship(percentage decimal.Decimal, name string, now time.Time) {
	kept := a.feeLines[:0]
	for _, f := range a.feeLines {
		if f.Category != CategoryDiscount {
			kept = append(kept, f)
		}
	}
	a.feeLines = kept

	discount := a.TotalTuition().Mul(percentage.Div(decimal.NewFromInt(100)))
	line := NewFeeLine(ScholarshipCode, name, discount.Neg(), CategoryDiscount, now)
	a.feeLines = append(a.feeLines, line)
	a.recomputeDerived()
}

// RecordPayment validates and records one payment, allocates it across
// unpaid fee lines FIFO, and updates balance/overpayment.
//
// Balance update rules, given the pre-payment balance:
//   balance > 0, amount >= balance: balance -> 0, excess -> overpayment,
//     every not-yet-fully-paid line is stamped with the payment's status
//     (treated as covered even with per-line rounding slack)
//   balance > 0, amount < balance:  balance -> balance - amount
//   balance == 0:                   entire amount -> overpayment
func (a *LedgerAccount) RecordPayment(amount Amount, channelText, reference string, now time.Time) PaymentResult {
	record, err := newPaymentRecord(amount, channelText, reference, a.policy.Clock, now)
	if err != nil {
		return PaymentResult{
			Success:     false,
			Message:     "payment rejected: amount must be greater than zero",
			Balance:     a.balance,
			Overpayment: a.overpayment,
			Err:         err,
		}
	}

	// FIFO allocation over fee lines in insertion order. Credits and
	// already-settled lines are skipped; stop once the payment runs out.
	remaining := amount
	for _, f := range a.feeLines {
		if f.IsCredit() || f.FullyPaid() {
			continue
		}
		applied := f.apply(remaining, record.Status)
		remaining = remaining.Sub(applied)
		if !remaining.IsPositive() {
			break
		}
	}

	preBalance := a.balance
	a.amountPaid = a.amountPaid.Add(amount)

	switch {
	case preBalance.IsPositive() && amount.GreaterThanOrEqual(preBalance):
		a.balance = ZeroAmount()
		a.overpayment = a.overpayment.Add(amount.Sub(preBalance))
		// The balance is cleared: every open line is covered by this
		// payment regardless of per-line rounding slack.
		for _, f := range a.feeLines {
			if !f.IsCredit() && !f.FullyPaid() {
				f.stamp(record.Status)
			}
		}
	case preBalance.IsPositive():
		a.balance = preBalance.Sub(amount)
	default:
		a.overpayment = a.overpayment.Add(amount)
	}
	assertConsistent(a.balance, a.overpayment)

	a.payments = append(a.payments, record)
	a.refreshEligibility()

	message := fmt.Sprintf("payment of %s recorded successfully", amount)
	if record.Status.IsInProgress() {
		message = fmt.Sprintf("payment of %s received and is processing", amount)
	}
	return PaymentResult{
		Success:     true,
		Message:     message,
		Record:      record,
		Balance:     a.balance,
		Overpayment: a.overpayment,
	}
}

// RefreshPaymentStatuses recomputes every payment's status against now
// and re-mirrors fee-line in-flight markers from the latest payment.
// Idempotent: safe to call on every page load.
func (a *LedgerAccount) RefreshPaymentStatuses(now time.Time) {
	for _, p := range a.payments {
		p.refresh(a.policy.Clock, now)
	}
	if len(a.payments) > 0 {
		latest := a.payments[len(a.payments)-1].Status
		for _, f := range a.feeLines {
			f.mirror(latest)
		}
	}
	a.refreshEligibility()
}

// =============================================================================
// DERIVED STATE
// =============================================================================

// recomputeDerived rebuilds balance and overpayment after a fee-set
// change. While nothing is paid the balance stays at the opening
// obligation (Invariant B); afterwards it tracks the fee total
// (Invariant C). Payments themselves adjust the balance incrementally in
// RecordPayment, which preserves the opening-balance remnant.
func (a *LedgerAccount) recomputeDerived() {
	if a.amountPaid.IsZero() {
		a.balance = a.policy.OpeningBalance
		a.overpayment = ZeroAmount()
	} else {
		total := a.TotalAmount()
		a.balance = total.Sub(a.amountPaid).FloorZero()
		a.overpayment = a.amountPaid.Sub(total).FloorZero()
	}
	assertConsistent(a.balance, a.overpayment)
	a.refreshEligibility()
}
