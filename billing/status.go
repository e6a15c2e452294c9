/*
status.go - Payment status lifecycle and the settlement-delay clock

PURPOSE:
  A recorded payment does not settle instantly. Onsite cashier payments
  take a few minutes to be posted; online gateway payments pass through
  processing and posting before completing. This file models that
  progression as a pure function of (channel, elapsed time).

WHY A PURE FUNCTION?
  There is no asynchronous event behind the transition - no callback from
  a gateway, no poller. The status is fully determined by how long ago the
  payment was created. Recomputing from scratch on every query keeps the
  state machine trivially idempotent and removes any need for background
  timers.

SEE ALSO:
  - payment.go: PaymentRecord carries the current status
  - account.go: RefreshPaymentStatuses sweeps all records through the clock
*/
package billing

import "time"

// =============================================================================
// PAYMENT STATUS
// =============================================================================

type PaymentStatus string

const (
	StatusPending    PaymentStatus = "PENDING"
	StatusProcessing PaymentStatus = "PROCESSING"
	StatusForPosting PaymentStatus = "FOR_POSTING"
	StatusPosted     PaymentStatus = "POSTED"
	StatusCompleted  PaymentStatus = "COMPLETED"
	StatusFailed     PaymentStatus = "FAILED"
	StatusCancelled  PaymentStatus = "CANCELLED"
	StatusRefunded   PaymentStatus = "REFUNDED"
)

// IsInProgress reports whether the payment is still settling.
func (s PaymentStatus) IsInProgress() bool {
	return s == StatusPending || s == StatusProcessing || s == StatusForPosting
}

// IsSuccessful reports whether the payment has reached a terminal
// successful state.
func (s PaymentStatus) IsSuccessful() bool {
	return s == StatusPosted || s == StatusCompleted
}

// =============================================================================
// STATUS CLOCK - (channel, elapsed) -> status
// =============================================================================

// StatusClock derives a payment's status from its channel and the time
// elapsed since creation. It holds the settlement-delay thresholds:
//
//   ONSITE: < OnsitePostingDelay          -> FOR_POSTING
//           otherwise                     -> POSTED
//   ONLINE: < OnlineProcessingDelay       -> PROCESSING
//           < OnlinePostingDelay          -> FOR_POSTING
//           otherwise                     -> COMPLETED
//
// The clock never consults wall-clock time itself; callers pass elapsed
// durations computed from the record's immutable creation timestamp.
type StatusClock struct {
	OnsitePostingDelay    time.Duration
	OnlineProcessingDelay time.Duration
	OnlinePostingDelay    time.Duration
}

// DefaultStatusClock returns the standard settlement delays.
func DefaultStatusClock() StatusClock {
	return StatusClock{
		OnsitePostingDelay:    5 * time.Minute,
		OnlineProcessingDelay: 2 * time.Minute,
		OnlinePostingDelay:    5 * time.Minute,
	}
}

// Derive returns the status for a payment on the given channel after the
// given elapsed time. Pure function: same inputs, same output.
func (c StatusClock) Derive(channel PaymentChannel, elapsed time.Duration) PaymentStatus {
	if channel == ChannelOnsite {
		if elapsed < c.OnsitePostingDelay {
			return StatusForPosting
		}
		return StatusPosted
	}
	if elapsed < c.OnlineProcessingDelay {
		return StatusProcessing
	}
	if elapsed < c.OnlinePostingDelay {
		return StatusForPosting
	}
	return StatusCompleted
}

// InitialStatus is the status stamped on a payment at creation time.
// Onsite payments go straight to the posting queue; online payments start
// in gateway processing.
func (c StatusClock) InitialStatus(channel PaymentChannel) PaymentStatus {
	if channel == ChannelOnsite {
		return StatusForPosting
	}
	return StatusProcessing
}
