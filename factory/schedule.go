/*
Package factory provides JSON to Go billing configuration conversion.

PURPOSE:
  Converts JSON term definitions into billing.Policy values and starter
  fee assessments. This enables per-term configuration without code
  changes - the registrar can define a term's figures and fee schedule in
  JSON, and the factory builds ready-to-use ledger accounts from it.

JSON SCHEMA:
  {
    "term": "2025-2026-1",
    "policy": {
      "opening_balance": "23813",
      "prelim_requirement": "6830",
      "midterm_multiplier": "0.6666"
    },
    "fees": [
      {"code": "TUI-100", "description": "Tuition", "amount": "18500", "category": "tuition"},
      {"code": "LAB-200", "description": "Laboratory Fee", "amount": "2400", "category": "laboratory"}
    ]
  }

USAGE:
  schedule, err := factory.ParseSchedule(jsonStr)
  account := schedule.NewAccount("2021-00123", time.Now())

SEE ALSO:
  - billing/policy.go: Policy type definition
  - billing/account.go: LedgerAccount construction
*/
package factory

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/campuspay/billing-engine/billing"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// ScheduleJSON is the JSON representation of one term's fee schedule.
type ScheduleJSON struct {
	Term   string      `json:"term"`
	Policy *PolicyJSON `json:"policy,omitempty"`
	Fees   []FeeJSON   `json:"fees"`
}

// PolicyJSON holds the registrar-set figures. Omitted fields fall back
// to the defaults in billing.DefaultPolicy.
type PolicyJSON struct {
	OpeningBalance    string `json:"opening_balance,omitempty"`
	PrelimRequirement string `json:"prelim_requirement,omitempty"`
	MidtermMultiplier string `json:"midterm_multiplier,omitempty"`
}

// FeeJSON is one assessed charge in the schedule. Amount is a decimal
// string; negative amounts define credits.
type FeeJSON struct {
	Code        string `json:"code"`
	Description string `json:"description"`
	Amount      string `json:"amount"`
	Category    string `json:"category"`
}

// =============================================================================
// SCHEDULE
// =============================================================================

// Schedule is a parsed term fee schedule ready to mint accounts.
type Schedule struct {
	Term   billing.TermKey
	Policy billing.Policy
	Fees   []billing.FeeLine
}

// ParseSchedule parses and validates a JSON term schedule.
func ParseSchedule(jsonStr string) (*Schedule, error) {
	var sj ScheduleJSON
	if err := json.Unmarshal([]byte(jsonStr), &sj); err != nil {
		return nil, fmt.Errorf("failed to parse schedule JSON: %w", err)
	}
	return FromJSON(sj)
}

// FromJSON converts the JSON form into a Schedule.
func FromJSON(sj ScheduleJSON) (*Schedule, error) {
	term, err := billing.ParseTermKey(sj.Term)
	if err != nil {
		return nil, err
	}

	policy := billing.DefaultPolicy()
	if sj.Policy != nil {
		if sj.Policy.OpeningBalance != "" {
			policy.OpeningBalance, err = parseAmount("opening_balance", sj.Policy.OpeningBalance)
			if err != nil {
				return nil, err
			}
		}
		if sj.Policy.PrelimRequirement != "" {
			policy.PrelimRequirement, err = parseAmount("prelim_requirement", sj.Policy.PrelimRequirement)
			if err != nil {
				return nil, err
			}
		}
		if sj.Policy.MidtermMultiplier != "" {
			mult, err := decimal.NewFromString(sj.Policy.MidtermMultiplier)
			if err != nil {
				return nil, fmt.Errorf("invalid midterm_multiplier %q: %w", sj.Policy.MidtermMultiplier, err)
			}
			policy.MidtermMultiplier = mult
		}
	}

	fees := make([]billing.FeeLine, 0, len(sj.Fees))
	seen := make(map[string]bool)
	for _, fj := range sj.Fees {
		if fj.Code == "" {
			return nil, fmt.Errorf("fee with empty code in schedule %s", sj.Term)
		}
		if seen[fj.Code] {
			return nil, fmt.Errorf("duplicate fee code %q in schedule %s", fj.Code, sj.Term)
		}
		seen[fj.Code] = true

		amount, err := parseAmount(fj.Code, fj.Amount)
		if err != nil {
			return nil, err
		}
		category := billing.FeeCategory(fj.Category)
		if category == "" {
			category = billing.CategoryOther
		}
		fees = append(fees, billing.FeeLine{
			Code:        fj.Code,
			Description: fj.Description,
			Amount:      amount,
			Category:    category,
		})
	}

	return &Schedule{Term: term, Policy: policy, Fees: fees}, nil
}

// NewAccount mints a ledger account for one student with the schedule's
// starter fees posted at the given time.
func (s *Schedule) NewAccount(student billing.StudentID, postedAt time.Time) *billing.LedgerAccount {
	account := billing.NewAccount(student, s.Term, s.Policy)
	for _, fee := range s.Fees {
		account.AddFee(billing.NewFeeLine(fee.Code, fee.Description, fee.Amount, fee.Category, postedAt))
	}
	return account
}

func parseAmount(field, value string) (billing.Amount, error) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return billing.ZeroAmount(), fmt.Errorf("invalid amount %q for %s: %w", value, field, err)
	}
	return billing.Amount{Value: d}, nil
}
