/*
payment.go - Individual payment event

PURPOSE:
  A PaymentRecord is one recorded payment: amount, channel, reference and
  a status that evolves with elapsed time through the StatusClock. The
  record is immutable except for Status, which only ever moves forward as
  wall-clock time advances (the clock is monotone in elapsed time and the
  creation timestamp never changes).
*/
package billing

import (
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// PAYMENT RECORD
// =============================================================================

type PaymentRecord struct {
	ID          string
	Amount      Amount
	ChannelText string         // raw channel name as entered, e.g. "BPI ONLINE"
	Channel     PaymentChannel // classified ONLINE/ONSITE
	Reference   string
	CreatedAt   time.Time // immutable; status is recomputed from this
	Status      PaymentStatus
}

// newPaymentRecord validates and creates a payment record with its
// initial status assigned from the channel classification.
func newPaymentRecord(amount Amount, channelText, reference string, clock StatusClock, createdAt time.Time) (*PaymentRecord, error) {
	if !amount.IsPositive() {
		return nil, &InvalidAmountError{Amount: amount}
	}
	channel := ClassifyChannel(channelText)
	return &PaymentRecord{
		ID:          uuid.NewString(),
		Amount:      amount,
		ChannelText: channelText,
		Channel:     channel,
		Reference:   reference,
		CreatedAt:   createdAt,
		Status:      clock.InitialStatus(channel),
	}, nil
}

// refresh recomputes the status from scratch against now. Safe to call
// repeatedly; the result depends only on channel and elapsed time.
func (p *PaymentRecord) refresh(clock StatusClock, now time.Time) {
	p.Status = clock.Derive(p.Channel, now.Sub(p.CreatedAt))
}

// =============================================================================
// PAYMENT RESULT - Outcome of a RecordPayment call
// =============================================================================

// PaymentResult is returned by LedgerAccount.RecordPayment. On failure,
// Success is false, Err carries the reason, and no mutation occurred.
type PaymentResult struct {
	Success     bool
	Message     string
	Record      *PaymentRecord
	Balance     Amount
	Overpayment Amount
	Err         error
}
