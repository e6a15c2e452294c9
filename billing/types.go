/*
Package billing provides the student ledger core.

PURPOSE:
  This package contains the domain types and algorithms for one student's
  billing ledger: assessed fee lines, recorded payments, derived balance
  and overpayment, and exam-period eligibility gating.

KEY CONCEPTS IN THIS FILE (types.go):
  - Amount: A monetary quantity (single implicit currency)
  - StudentID/TermKey: Type-safe identifiers for one student-semester ledger
  - FeeCategory: What kind of charge a fee line is
  - PaymentChannel: ONLINE vs ONSITE, classified from free-text channel names

DESIGN PRINCIPLES:
  1. Precision: Uses decimal.Decimal to avoid floating-point errors
  2. Determinism: Payment allocation walks fee lines in insertion order
  3. Purity: "Time passing" is a pure function of wall-clock difference,
     never a background timer

SEE ALSO:
  - account.go: LedgerAccount aggregate root
  - status.go: PaymentStatus and the settlement-delay clock
  - eligibility.go: Exam-period eligibility derivation
*/
package billing

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// =============================================================================
// AMOUNT - Monetary quantity (single currency)
// =============================================================================

type Amount struct {
	Value decimal.Decimal
}

func NewAmount(value float64) Amount {
	return Amount{Value: decimal.NewFromFloat(value)}
}

func NewAmountFromInt(value int) Amount {
	return Amount{Value: decimal.NewFromInt(int64(value))}
}

func ZeroAmount() Amount { return Amount{Value: decimal.Zero} }

func MustParseAmount(s string) Amount {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return ZeroAmount()
	}
	return Amount{Value: d}
}

func (a Amount) Add(b Amount) Amount          { return Amount{Value: a.Value.Add(b.Value)} }
func (a Amount) Sub(b Amount) Amount          { return Amount{Value: a.Value.Sub(b.Value)} }
func (a Amount) Mul(s decimal.Decimal) Amount { return Amount{Value: a.Value.Mul(s)} }
func (a Amount) Neg() Amount                  { return Amount{Value: a.Value.Neg()} }
func (a Amount) IsNegative() bool             { return a.Value.IsNegative() }
func (a Amount) IsZero() bool                 { return a.Value.IsZero() }
func (a Amount) IsPositive() bool             { return a.Value.IsPositive() }
func (a Amount) GreaterThan(b Amount) bool    { return a.Value.GreaterThan(b.Value) }
func (a Amount) LessThan(b Amount) bool       { return a.Value.LessThan(b.Value) }
func (a Amount) GreaterThanOrEqual(b Amount) bool { return a.Value.GreaterThanOrEqual(b.Value) }
func (a Amount) Equal(b Amount) bool          { return a.Value.Equal(b.Value) }

func (a Amount) Min(b Amount) Amount {
	if a.LessThan(b) {
		return a
	}
	return b
}

// FloorZero clamps negative values to zero. Balance and overpayment are
// both defined as max(0, ...) quantities.
func (a Amount) FloorZero() Amount {
	if a.IsNegative() {
		return ZeroAmount()
	}
	return a
}

// String renders with two decimal places. Thousands separators are a
// presentation concern left to callers.
func (a Amount) String() string { return a.Value.StringFixed(2) }

// =============================================================================
// IDENTIFIERS
// =============================================================================

type StudentID string

// TermKey identifies one semester of one school year. Immutable part of a
// ledger account's identity.
type TermKey struct {
	SchoolYear string // e.g., "2025-2026"
	Semester   int    // 1 or 2
}

func NewTermKey(schoolYear string, semester int) TermKey {
	return TermKey{SchoolYear: schoolYear, Semester: semester}
}

func (t TermKey) String() string {
	return fmt.Sprintf("%s-%d", t.SchoolYear, t.Semester)
}

// ParseTermKey parses the String() form, e.g. "2025-2026-1".
func ParseTermKey(s string) (TermKey, error) {
	i := strings.LastIndex(s, "-")
	if i <= 0 || i == len(s)-1 {
		return TermKey{}, fmt.Errorf("invalid term key %q", s)
	}
	var sem int
	if _, err := fmt.Sscanf(s[i+1:], "%d", &sem); err != nil {
		return TermKey{}, fmt.Errorf("invalid term key %q: %w", s, err)
	}
	return TermKey{SchoolYear: s[:i], Semester: sem}, nil
}

// =============================================================================
// FEE CATEGORY
// =============================================================================

type FeeCategory string

const (
	CategoryTuition       FeeCategory = "tuition"
	CategoryLaboratory    FeeCategory = "laboratory"
	CategoryMiscellaneous FeeCategory = "miscellaneous"
	CategoryRegistration  FeeCategory = "registration"
	CategoryLibrary       FeeCategory = "library"
	CategoryAthletic      FeeCategory = "athletic"
	CategoryMedical       FeeCategory = "medical"
	CategoryGuidance      FeeCategory = "guidance"
	CategoryPublication   FeeCategory = "publication"
	CategoryInternet      FeeCategory = "internet"
	CategoryEnergy        FeeCategory = "energy"
	CategoryInsurance     FeeCategory = "insurance"
	CategoryDevelopment   FeeCategory = "development"
	CategoryCultural      FeeCategory = "cultural"
	CategoryDiscount      FeeCategory = "discount"
	CategoryPenalty       FeeCategory = "penalty"
	CategoryOther         FeeCategory = "other"
)

// =============================================================================
// PAYMENT CHANNEL - Classified from free-text channel names
// =============================================================================

type PaymentChannel string

const (
	ChannelOnline PaymentChannel = "ONLINE"
	ChannelOnsite PaymentChannel = "ONSITE"
)

// ClassifyChannel maps a free-text channel name to ONLINE or ONSITE.
// Anything mentioning the cashier counter is onsite; everything else is
// treated as an online gateway.
func ClassifyChannel(channelText string) PaymentChannel {
	lower := strings.ToLower(channelText)
	if strings.Contains(lower, "cashier") || strings.Contains(lower, "onsite") {
		return ChannelOnsite
	}
	return ChannelOnline
}
