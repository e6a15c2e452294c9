package factory_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campuspay/billing-engine/billing"
	"github.com/campuspay/billing-engine/factory"
)

const fullSchedule = `{
	"term": "2025-2026-1",
	"policy": {
		"opening_balance": "25000",
		"prelim_requirement": "7000",
		"midterm_multiplier": "0.7"
	},
	"fees": [
		{"code": "TUI-100", "description": "Tuition", "amount": "18500", "category": "tuition"},
		{"code": "LAB-200", "description": "Laboratory Fee", "amount": "2400", "category": "laboratory"},
		{"code": "MISC-300", "description": "Miscellaneous", "amount": "1100"}
	]
}`

func TestParseSchedule_Full(t *testing.T) {
	schedule, err := factory.ParseSchedule(fullSchedule)
	require.NoError(t, err)

	assert.Equal(t, billing.NewTermKey("2025-2026", 1), schedule.Term)
	assert.True(t, schedule.Policy.OpeningBalance.Equal(billing.NewAmount(25000)))
	assert.True(t, schedule.Policy.PrelimRequirement.Equal(billing.NewAmount(7000)))
	assert.Equal(t, "0.7", schedule.Policy.MidtermMultiplier.String())

	require.Len(t, schedule.Fees, 3)
	assert.Equal(t, billing.CategoryTuition, schedule.Fees[0].Category)
	// Missing category falls back to "other".
	assert.Equal(t, billing.CategoryOther, schedule.Fees[2].Category)
}

func TestParseSchedule_PolicyDefaults(t *testing.T) {
	// Omitted policy fields fall back to the default figures.
	schedule, err := factory.ParseSchedule(`{
		"term": "2025-2026-2",
		"policy": {"opening_balance": "10000"},
		"fees": []
	}`)
	require.NoError(t, err)

	defaults := billing.DefaultPolicy()
	assert.True(t, schedule.Policy.OpeningBalance.Equal(billing.NewAmount(10000)))
	assert.True(t, schedule.Policy.PrelimRequirement.Equal(defaults.PrelimRequirement))
	assert.True(t, schedule.Policy.MidtermMultiplier.Equal(defaults.MidtermMultiplier))
}

func TestParseSchedule_NoPolicyBlock(t *testing.T) {
	schedule, err := factory.ParseSchedule(`{"term": "2025-2026-1", "fees": []}`)
	require.NoError(t, err)

	defaults := billing.DefaultPolicy()
	assert.True(t, schedule.Policy.OpeningBalance.Equal(defaults.OpeningBalance))
}

func TestParseSchedule_Errors(t *testing.T) {
	cases := []struct {
		name string
		json string
	}{
		{"malformed JSON", `{"term":`},
		{"missing term", `{"fees": []}`},
		{"bad term", `{"term": "nonsense", "fees": []}`},
		{"empty fee code", `{"term": "2025-2026-1", "fees": [{"code": "", "amount": "100"}]}`},
		{"duplicate fee code", `{"term": "2025-2026-1", "fees": [
			{"code": "TUI", "amount": "100"},
			{"code": "TUI", "amount": "200"}
		]}`},
		{"bad fee amount", `{"term": "2025-2026-1", "fees": [{"code": "TUI", "amount": "abc"}]}`},
		{"bad multiplier", `{"term": "2025-2026-1", "policy": {"midterm_multiplier": "lots"}, "fees": []}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := factory.ParseSchedule(tc.json)
			assert.Error(t, err)
		})
	}
}

func TestSchedule_NewAccount(t *testing.T) {
	schedule, err := factory.ParseSchedule(fullSchedule)
	require.NoError(t, err)
	postedAt := time.Date(2025, time.June, 16, 9, 0, 0, 0, time.UTC)

	account := schedule.NewAccount("2021-00123", postedAt)

	assert.Equal(t, billing.StudentID("2021-00123"), account.Student())
	assert.Equal(t, schedule.Term, account.Term())
	assert.True(t, account.TotalAmount().Equal(billing.NewAmount(22000)))
	// No payment yet: the balance is the schedule's opening obligation.
	assert.True(t, account.Balance().Equal(billing.NewAmount(25000)))

	lines := account.FeeLines()
	require.Len(t, lines, 3)
	assert.Equal(t, "TUI-100", lines[0].Code)
	assert.True(t, lines[0].PostedAt.Equal(postedAt))
	assert.True(t, lines[0].AmountApplied.IsZero())
}

func TestSchedule_NewAccount_CreditFee(t *testing.T) {
	schedule, err := factory.ParseSchedule(`{
		"term": "2025-2026-1",
		"fees": [
			{"code": "TUI", "description": "Tuition", "amount": "10000", "category": "tuition"},
			{"code": "GRANT", "description": "Institutional Grant", "amount": "-2000", "category": "discount"}
		]
	}`)
	require.NoError(t, err)

	account := schedule.NewAccount("2021-00123", time.Now())

	assert.True(t, account.TotalAmount().Equal(billing.NewAmount(8000)))
	assert.True(t, account.FeeLines()[1].IsCredit())
}
