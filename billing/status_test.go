package billing_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/campuspay/billing-engine/billing"
)

// =============================================================================
// CHANNEL CLASSIFICATION
// =============================================================================

func TestClassifyChannel(t *testing.T) {
	assert.Equal(t, billing.ChannelOnsite, billing.ClassifyChannel("Cashier Onsite"))
	assert.Equal(t, billing.ChannelOnsite, billing.ClassifyChannel("CASHIER WINDOW 2"))
	assert.Equal(t, billing.ChannelOnsite, billing.ClassifyChannel("onsite teller"))
	assert.Equal(t, billing.ChannelOnline, billing.ClassifyChannel("BPI ONLINE"))
	assert.Equal(t, billing.ChannelOnline, billing.ClassifyChannel("GCash"))
	assert.Equal(t, billing.ChannelOnline, billing.ClassifyChannel(""))
}

// =============================================================================
// STATUS PREDICATES
// =============================================================================

func TestPaymentStatus_Predicates(t *testing.T) {
	inProgress := []billing.PaymentStatus{
		billing.StatusPending, billing.StatusProcessing, billing.StatusForPosting,
	}
	for _, s := range inProgress {
		assert.True(t, s.IsInProgress(), "%s should be in progress", s)
		assert.False(t, s.IsSuccessful(), "%s should not be successful", s)
	}

	successful := []billing.PaymentStatus{billing.StatusPosted, billing.StatusCompleted}
	for _, s := range successful {
		assert.True(t, s.IsSuccessful(), "%s should be successful", s)
		assert.False(t, s.IsInProgress(), "%s should not be in progress", s)
	}

	terminal := []billing.PaymentStatus{
		billing.StatusFailed, billing.StatusCancelled, billing.StatusRefunded,
	}
	for _, s := range terminal {
		assert.False(t, s.IsInProgress())
		assert.False(t, s.IsSuccessful())
	}
}

// =============================================================================
// SETTLEMENT CLOCK
// =============================================================================

func TestStatusClock_Onsite(t *testing.T) {
	clock := billing.DefaultStatusClock()

	assert.Equal(t, billing.StatusForPosting, clock.Derive(billing.ChannelOnsite, 0))
	assert.Equal(t, billing.StatusForPosting, clock.Derive(billing.ChannelOnsite, 4*time.Minute))
	assert.Equal(t, billing.StatusPosted, clock.Derive(billing.ChannelOnsite, 5*time.Minute))
	assert.Equal(t, billing.StatusPosted, clock.Derive(billing.ChannelOnsite, time.Hour))
}

func TestStatusClock_Online(t *testing.T) {
	// GIVEN: An online payment created at T0
	// THEN: T0+1min -> PROCESSING, T0+3min -> FOR_POSTING, T0+6min -> COMPLETED
	clock := billing.DefaultStatusClock()

	assert.Equal(t, billing.StatusProcessing, clock.Derive(billing.ChannelOnline, 1*time.Minute))
	assert.Equal(t, billing.StatusForPosting, clock.Derive(billing.ChannelOnline, 3*time.Minute))
	assert.Equal(t, billing.StatusCompleted, clock.Derive(billing.ChannelOnline, 6*time.Minute))

	// Boundaries are half-open: exactly 2min posts, exactly 5min completes.
	assert.Equal(t, billing.StatusForPosting, clock.Derive(billing.ChannelOnline, 2*time.Minute))
	assert.Equal(t, billing.StatusCompleted, clock.Derive(billing.ChannelOnline, 5*time.Minute))
}

func TestStatusClock_InitialStatus(t *testing.T) {
	clock := billing.DefaultStatusClock()
	assert.Equal(t, billing.StatusForPosting, clock.InitialStatus(billing.ChannelOnsite))
	assert.Equal(t, billing.StatusProcessing, clock.InitialStatus(billing.ChannelOnline))
}

func TestStatusClock_PureFunction(t *testing.T) {
	// Same inputs always produce the same output; the clock holds no state.
	clock := billing.DefaultStatusClock()
	for i := 0; i < 3; i++ {
		assert.Equal(t, billing.StatusForPosting, clock.Derive(billing.ChannelOnline, 3*time.Minute))
	}
}
