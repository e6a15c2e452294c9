/*
scenario_test.go - End-to-end ledger scenarios

PURPOSE:
  These tests walk full billing stories through the aggregate root and
  document the load-bearing behaviors: the opening-balance obligation,
  the exam threshold crossings, the balance/overpayment exclusivity, and
  the settlement-delay progression.

READING THESE TESTS:
  Each test has GIVEN/WHEN/THEN comments explaining the scenario and
  assertions with explanatory messages. They are intentionally verbose.
*/
package billing_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campuspay/billing-engine/billing"
)

func TestScenario_FirstPaymentBelowOpeningBalance(t *testing.T) {
	// GIVEN: A new account carrying the 23,813 opening obligation;
	//        assessed fees do not contribute to balance before any payment
	// WHEN: 5,000 is paid via an online channel
	// THEN: Balance drops to 18,813, no overpayment, prelim not yet paid

	a := newTestAccount()
	a.AddFee(fee("TUI", 18500, billing.CategoryTuition))

	result := a.RecordPayment(amt(5000), "BPI ONLINE", "REF1", t0)

	require.True(t, result.Success)
	assert.True(t, a.Balance().Equal(amt(18813)), "23813 - 5000 = 18813, got %s", a.Balance())
	assert.True(t, a.Overpayment().IsZero())
	assert.False(t, a.ExamPaid(billing.PeriodPrelim), "5000 < 6830 prelim requirement")
	checkExclusive(t, a)
}

func TestScenario_CrossingPrelimThreshold(t *testing.T) {
	// GIVEN: The account above, with 5,000 already paid
	// WHEN: Another 2,000 is paid (cumulative 7,000 >= 6,830)
	// THEN: The prelim flag sets and the prelim due amount drops to zero

	a := newTestAccount()
	a.AddFee(fee("TUI", 18500, billing.CategoryTuition))
	a.RecordPayment(amt(5000), "BPI ONLINE", "REF1", t0)

	result := a.RecordPayment(amt(2000), "BPI ONLINE", "REF2", t0.Add(time.Minute))

	require.True(t, result.Success)
	assert.True(t, a.ExamPaid(billing.PeriodPrelim))
	assert.True(t, a.AmountDue(billing.PeriodPrelim).IsZero())
	assert.True(t, a.Balance().Equal(amt(16813)))
	checkExclusive(t, a)
}

func TestScenario_OverpaymentOnFinalSettlement(t *testing.T) {
	// GIVEN: An account with a 30,000 assessment and 28,000 already paid
	//        (balance 2,000)
	// WHEN: 5,000 is paid at the cashier
	// THEN: Balance clears, the 3,000 excess becomes overpayment, and the
	//       payment starts FOR_POSTING (onsite channel)

	a := newTestAccount()
	a.RecordPayment(amt(28000), "BPI ONLINE", "REF-PRIOR", t0)
	a.AddFee(fee("TUI", 30000, billing.CategoryTuition))
	require.True(t, a.Balance().Equal(amt(2000)), "precondition: balance 2000")

	result := a.RecordPayment(amt(5000), "Cashier Onsite", "REF3", t0.Add(time.Hour))

	require.True(t, result.Success)
	assert.True(t, a.Balance().IsZero())
	assert.True(t, a.Overpayment().Equal(amt(3000)))
	assert.Equal(t, billing.StatusForPosting, result.Record.Status)
	checkExclusive(t, a)
}

func TestScenario_ClearingBalanceStampsOpenLines(t *testing.T) {
	// When a payment clears the whole balance, every line that is not
	// fully paid is treated as covered and stamped with the payment's
	// status, even if its own sub-ledger math has slack.

	a := newTestAccount()
	a.RecordPayment(amt(20000), "BPI ONLINE", "REF-PRIOR", t0)
	a.AddFee(fee("TUI", 30000, billing.CategoryTuition))
	a.AddFee(fee("LAB", 5000, billing.CategoryLaboratory))
	require.True(t, a.Balance().Equal(amt(15000)))

	result := a.RecordPayment(amt(15000), "Cashier Onsite", "REF4", t0.Add(time.Hour))
	require.True(t, result.Success)

	assert.True(t, a.Balance().IsZero())
	for _, f := range a.FeeLines() {
		if !f.FullyPaid() {
			require.NotNil(t, f.InFlight, "open line %s must carry the clearing payment's status", f.Code)
			assert.Equal(t, billing.StatusForPosting, *f.InFlight)
		}
	}
}

func TestScenario_PaymentWithZeroBalanceIsAllOverpayment(t *testing.T) {
	a := newTestAccount()
	a.RecordPayment(amt(23813), "Cashier Onsite", "REF1", t0)
	require.True(t, a.Balance().IsZero())
	require.True(t, a.Overpayment().IsZero())

	a.RecordPayment(amt(1000), "Cashier Onsite", "REF2", t0.Add(time.Minute))

	assert.True(t, a.Overpayment().Equal(amt(1000)))
	checkExclusive(t, a)
}

func TestScenario_OnlinePaymentSettlesOverTime(t *testing.T) {
	// GIVEN: An online payment created at T0
	// THEN: Queried at T0+1min it is PROCESSING, at T0+3min FOR_POSTING,
	//       at T0+6min COMPLETED

	a := newTestAccount()
	a.AddFee(fee("TUI", 10000, billing.CategoryTuition))
	result := a.RecordPayment(amt(2000), "GCash", "REF1", t0)
	require.True(t, result.Success)

	a.RefreshPaymentStatuses(t0.Add(1 * time.Minute))
	assert.Equal(t, billing.StatusProcessing, a.Payments()[0].Status)

	a.RefreshPaymentStatuses(t0.Add(3 * time.Minute))
	assert.Equal(t, billing.StatusForPosting, a.Payments()[0].Status)

	a.RefreshPaymentStatuses(t0.Add(6 * time.Minute))
	assert.Equal(t, billing.StatusCompleted, a.Payments()[0].Status)
}

func TestScenario_ExclusivityHoldsAcrossArbitrarySequences(t *testing.T) {
	// Invariant: after every addFee/recordPayment, balance >= 0,
	// overpayment >= 0, and at most one is non-zero.

	a := newTestAccount()
	steps := []func(){
		func() { a.AddFee(fee("TUI", 18500, billing.CategoryTuition)) },
		func() { a.RecordPayment(amt(3000), "BPI ONLINE", "R1", t0) },
		func() { a.AddFee(fee("LAB", 2400, billing.CategoryLaboratory)) },
		func() { a.RecordPayment(amt(25000), "Cashier Onsite", "R2", t0.Add(time.Minute)) },
		func() { a.AddFee(fee("MISC", 900, billing.CategoryMiscellaneous)) },
		func() { a.RemoveFee("LAB") },
		func() { a.RecordPayment(amt(50), "BPI ONLINE", "R3", t0.Add(2*time.Minute)) },
	}
	for i, step := range steps {
		step()
		checkExclusive(t, a)
		assert.False(t, a.AmountPaid().IsNegative(), "step %d", i)
	}
}

func TestScenario_LargeSinglePaymentSatisfiesMultiplePeriods(t *testing.T) {
	// All three thresholds are checked against the single running paid
	// amount, so one large payment can satisfy prelim and midterm at once.

	a := newTestAccount()
	a.AddFee(fee("TUI", 30000, billing.CategoryTuition))

	a.RecordPayment(amt(20000), "Cashier Onsite", "REF1", t0)

	assert.True(t, a.ExamPaid(billing.PeriodPrelim), "20000 >= 6830")
	assert.True(t, a.ExamPaid(billing.PeriodMidterm), "20000 >= 30000*0.6666 = 19998")
	assert.False(t, a.ExamPaid(billing.PeriodFinals), "20000 < 30000")
}
