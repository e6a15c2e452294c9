package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campuspay/billing-engine/billing"
	"github.com/campuspay/billing-engine/billing/store"
)

func newAccount() *billing.LedgerAccount {
	a := billing.NewAccount("2021-00123", billing.NewTermKey("2025-2026", 1), billing.DefaultPolicy())
	a.AddFee(billing.NewFeeLine("TUI", "Tuition", billing.NewAmount(18500), billing.CategoryTuition,
		time.Date(2025, time.June, 16, 9, 0, 0, 0, time.UTC)))
	return a
}

func TestMemory_LoadMissingAccount(t *testing.T) {
	repo := store.NewMemory()

	_, err := repo.Load(context.Background(), "nobody", billing.NewTermKey("2025-2026", 1))

	assert.ErrorIs(t, err, billing.ErrAccountNotFound)
	assert.True(t, billing.IsNotFound(err))
}

func TestMemory_SaveLoadRoundTrip(t *testing.T) {
	repo := store.NewMemory()
	ctx := context.Background()
	a := newAccount()
	a.RecordPayment(billing.NewAmount(5000), "BPI ONLINE", "REF1", time.Now())

	require.NoError(t, repo.Save(ctx, a))

	loaded, err := repo.Load(ctx, a.Student(), a.Term())
	require.NoError(t, err)
	assert.Equal(t, a.State(), loaded.State())
}

func TestMemory_SaveIsSnapshot(t *testing.T) {
	// Mutations after Save must not leak into the stored state.
	repo := store.NewMemory()
	ctx := context.Background()
	a := newAccount()
	require.NoError(t, repo.Save(ctx, a))

	a.RecordPayment(billing.NewAmount(5000), "BPI ONLINE", "REF1", time.Now())

	loaded, err := repo.Load(ctx, a.Student(), a.Term())
	require.NoError(t, err)
	assert.Empty(t, loaded.Payments())
}

func TestMemory_SaveReplacesWholeAccount(t *testing.T) {
	repo := store.NewMemory()
	ctx := context.Background()
	a := newAccount()
	require.NoError(t, repo.Save(ctx, a))

	a.RemoveFee("TUI")
	require.NoError(t, repo.Save(ctx, a))

	loaded, err := repo.Load(ctx, a.Student(), a.Term())
	require.NoError(t, err)
	assert.Empty(t, loaded.FeeLines())
}

func TestMemory_AuditLog(t *testing.T) {
	repo := store.NewMemory()
	ctx := context.Background()

	err := repo.AppendPayment(ctx, billing.AuditEntry{
		Student: "2021-00123",
		Channel: "BPI ONLINE",
		Amount:  billing.NewAmount(5000),
	})
	require.NoError(t, err)

	entries := repo.AuditEntries()
	require.Len(t, entries, 1)
	assert.Equal(t, billing.StudentID("2021-00123"), entries[0].Student)
}
