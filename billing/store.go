/*
store.go - Persistence interfaces for ledger accounts

PURPOSE:
  Defines the boundary between the billing core and storage. The core
  only needs load-by-key and save-whole-account; serialization format,
  I/O, and read-modify-write serialization per account key are the
  repository's concern. No process-wide registry of accounts exists -
  every caller goes through an injected Repository.

IMPLEMENTATIONS:
  - store/memory.go: In-memory repository for testing/dev
  - store/sqlite (top-level): Production SQLite repository + audit log
*/
package billing

import (
	"context"
	"time"
)

// =============================================================================
// REPOSITORY
// =============================================================================

// Repository persists and loads whole ledger accounts.
//
// CONTRACT: implementations serialize read-modify-write cycles per
// account key. The core assumes it is never invoked concurrently on the
// same LedgerAccount instance.
type Repository interface {
	// Load returns the account for a student-term, or ErrAccountNotFound.
	Load(ctx context.Context, student StudentID, term TermKey) (*LedgerAccount, error)

	// Save persists the whole account state, replacing what was stored.
	Save(ctx context.Context, account *LedgerAccount) error
}

// =============================================================================
// AUDIT LOG
// =============================================================================

// AuditEntry is a fire-and-forget record of a completed payment for
// external reporting.
type AuditEntry struct {
	ID        string
	Student   StudentID
	Channel   string
	Amount    Amount
	CreatedAt time.Time
}

// AuditLog records completed payments. A failed append must not roll
// back the ledger mutation; callers log and move on.
type AuditLog interface {
	AppendPayment(ctx context.Context, entry AuditEntry) error
}

// =============================================================================
// ACCOUNT STATE - Snapshot for repository round-trips
// =============================================================================

// AccountState is the full serializable state of a ledger account.
// Repositories persist this and rebuild accounts with RestoreAccount.
type AccountState struct {
	Student StudentID
	Term    TermKey
	Policy  Policy

	FeeLines []FeeLine
	Payments []PaymentRecord

	AmountPaid  Amount
	Balance     Amount
	Overpayment Amount

	PrelimPaid  bool
	MidtermPaid bool
	FinalsPaid  bool
}

// State captures a deep snapshot of the account.
func (a *LedgerAccount) State() AccountState {
	fees := make([]FeeLine, len(a.feeLines))
	for i, f := range a.feeLines {
		fees[i] = *f
		if f.InFlight != nil {
			s := *f.InFlight
			fees[i].InFlight = &s
		}
	}
	payments := make([]PaymentRecord, len(a.payments))
	for i, p := range a.payments {
		payments[i] = *p
	}
	return AccountState{
		Student:     a.student,
		Term:        a.term,
		Policy:      a.policy,
		FeeLines:    fees,
		Payments:    payments,
		AmountPaid:  a.amountPaid,
		Balance:     a.balance,
		Overpayment: a.overpayment,
		PrelimPaid:  a.prelimPaid,
		MidtermPaid: a.midtermPaid,
		FinalsPaid:  a.finalsPaid,
	}
}

// RestoreAccount rebuilds an account from a persisted snapshot.
func RestoreAccount(state AccountState) *LedgerAccount {
	a := &LedgerAccount{
		student:     state.Student,
		term:        state.Term,
		policy:      state.Policy,
		amountPaid:  state.AmountPaid,
		balance:     state.Balance,
		overpayment: state.Overpayment,
		prelimPaid:  state.PrelimPaid,
		midtermPaid: state.MidtermPaid,
		finalsPaid:  state.FinalsPaid,
	}
	a.feeLines = make([]*FeeLine, len(state.FeeLines))
	for i := range state.FeeLines {
		f := state.FeeLines[i]
		if state.FeeLines[i].InFlight != nil {
			s := *state.FeeLines[i].InFlight
			f.InFlight = &s
		}
		a.feeLines[i] = &f
	}
	a.payments = make([]*PaymentRecord, len(state.Payments))
	for i := range state.Payments {
		p := state.Payments[i]
		a.payments[i] = &p
	}
	return a
}
