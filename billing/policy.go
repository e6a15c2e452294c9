/*
policy.go - Term billing policy

PURPOSE:
  Bundles the domain constants that vary per term: the opening balance a
  new ledger carries, the prelim exam payment requirement, the midterm
  requirement multiplier, and the settlement-delay thresholds. These are
  policy figures set by the registrar, not mechanism - they are injected
  at account construction so a different term's figures can be substituted
  without code change.
*/
package billing

import "github.com/shopspring/decimal"

// =============================================================================
// POLICY - Registrar-set figures for one term
// =============================================================================

// Policy holds the billing figures for a term. A Policy is immutable once
// attached to an account.
type Policy struct {
	// OpeningBalance is the obligation a freshly created ledger carries
	// before any payment is recorded. It is independent of the assessed
	// fee sum (a carried-over obligation from enrollment).
	OpeningBalance Amount

	// PrelimRequirement is the fixed cumulative payment needed for prelim
	// exam eligibility, independent of the account's fee total.
	PrelimRequirement Amount

	// MidtermMultiplier is the fraction of the fee total required for
	// midterm eligibility. Finals always require the full total.
	MidtermMultiplier decimal.Decimal

	// Clock holds the settlement-delay thresholds for payment statuses.
	Clock StatusClock
}

// DefaultPolicy returns the canonical figures for the current term.
func DefaultPolicy() Policy {
	return Policy{
		OpeningBalance:    NewAmountFromInt(23813),
		PrelimRequirement: NewAmountFromInt(6830),
		MidtermMultiplier: decimal.RequireFromString("0.6666"),
		Clock:             DefaultStatusClock(),
	}
}
