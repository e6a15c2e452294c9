// Package store provides Repository implementations.
package store

import (
	"context"
	"sync"

	"github.com/campuspay/billing-engine/billing"
)

// =============================================================================
// MEMORY REPOSITORY - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu       sync.RWMutex
	accounts map[key]billing.AccountState
	audit    []billing.AuditEntry
}

type key struct {
	Student billing.StudentID
	Term    billing.TermKey
}

func NewMemory() *Memory {
	return &Memory{accounts: make(map[key]billing.AccountState)}
}

// Load rebuilds an account from the stored snapshot.
func (m *Memory) Load(_ context.Context, student billing.StudentID, term billing.TermKey) (*billing.LedgerAccount, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	state, ok := m.accounts[key{Student: student, Term: term}]
	if !ok {
		return nil, billing.ErrAccountNotFound
	}
	return billing.RestoreAccount(state), nil
}

// Save stores a deep snapshot, replacing any previous state for the key.
func (m *Memory) Save(_ context.Context, account *billing.LedgerAccount) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	state := account.State()
	m.accounts[key{Student: state.Student, Term: state.Term}] = state
	return nil
}

// AppendPayment records an audit entry. Never fails in memory.
func (m *Memory) AppendPayment(_ context.Context, entry billing.AuditEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.audit = append(m.audit, entry)
	return nil
}

// AuditEntries returns a copy of the recorded audit lines.
func (m *Memory) AuditEntries() []billing.AuditEntry {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]billing.AuditEntry, len(m.audit))
	copy(out, m.audit)
	return out
}
