package domain_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fdcbooks/tax_ledger_app/internal/core/domain"
)

func sampleTransaction() domain.Transaction {
	return domain.Transaction{
		TransactionID:  "txn-001",
		ClientID:       "client-1",
		Date:           time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC),
		Amount:         decimal.RequireFromString("142.50"),
		PayeeRaw:       "SHELL COBURG",
		DescriptionRaw: "EFTPOS PURCHASE",
		Source:         domain.SourceBank,
		Status:         domain.StatusNew,
	}
}

func TestSnapshotIsIndependentOfLaterMutations(t *testing.T) {
	txn := sampleTransaction()

	first := domain.SnapshotOf(txn)

	txn.Status = domain.StatusLocked
	now := time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC)
	txn.LockedAt = &now
	txn.NotesBookkeeper = "fuel, business trip"
	txn.Flags.HighRisk = true

	second := domain.SnapshotOf(txn)

	// The earlier capture must not observe the later writes.
	assert.Equal(t, string(domain.StatusNew), first[domain.FieldStatus])
	assert.Nil(t, first["locked_at"])
	assert.Equal(t, "", first[domain.FieldNotesBookkeeper])
	assert.Equal(t, map[string]any{"late": false, "duplicate": false, "high_risk": false},
		first[domain.FieldFlags])

	assert.Equal(t, string(domain.StatusLocked), second[domain.FieldStatus])
	assert.Equal(t, "2025-04-01T09:00:00Z", second["locked_at"])
	assert.Equal(t, "fuel, business trip", second[domain.FieldNotesBookkeeper])
}

func TestSnapshotCarriesImmutableAmountAndDate(t *testing.T) {
	txn := sampleTransaction()
	s := domain.SnapshotOf(txn)

	assert.Equal(t, "142.5", s["amount"])
	assert.Equal(t, "2025-03-14", s["date"])
}

// Replaying a history chain must reconstruct the current row: each entry's
// before equals the previous entry's after, and the final after equals a
// fresh capture of the row.
func TestHistoryChainReplaysToCurrentState(t *testing.T) {
	txn := sampleTransaction()

	var entries []domain.HistoryEntry
	record := func(action domain.ActionType, mutate func()) {
		before := domain.SnapshotOf(txn)
		mutate()
		entries = append(entries, domain.HistoryEntry{
			TransactionID: txn.TransactionID,
			Action:        action,
			Before:        before,
			After:         domain.SnapshotOf(txn),
		})
	}

	record(domain.ActionManual, func() {
		txn.Apply(domain.TransactionPatch{
			CategoryBookkeeper: ptr("Fuel"),
			TaxCodeBookkeeper:  ptr(domain.TaxCodeGST),
			Status:             ptr(domain.StatusReviewed),
		})
	})
	record(domain.ActionManual, func() {
		txn.Apply(domain.TransactionPatch{
			ModuleRouting: ptr(domain.ModuleMotorVehicle),
			Status:        ptr(domain.StatusReadyForWorkpaper),
		})
	})
	record(domain.ActionLock, func() {
		txn.Status = domain.StatusLocked
		lockedAt := time.Date(2025, 5, 2, 11, 30, 0, 0, time.UTC)
		txn.LockedAt = &lockedAt
		txn.LockedByRole = domain.RoleTaxAgent
	})

	require.Len(t, entries, 3)
	for i := 1; i < len(entries); i++ {
		assert.Equal(t, entries[i-1].After, entries[i].Before, "entry %d does not chain", i)
	}
	assert.Equal(t, domain.SnapshotOf(txn), entries[len(entries)-1].After)

	// Amount and date are constant across every capture in the chain.
	for i, e := range entries {
		assert.Equal(t, "142.5", e.Before["amount"], "entry %d", i)
		assert.Equal(t, "142.5", e.After["amount"], "entry %d", i)
		assert.Equal(t, "2025-03-14", e.Before["date"], "entry %d", i)
		assert.Equal(t, "2025-03-14", e.After["date"], "entry %d", i)
	}
}

func TestApplyLeavingLockedClearsLockMetadata(t *testing.T) {
	lockedAt := time.Date(2025, 5, 2, 11, 30, 0, 0, time.UTC)

	txn := sampleTransaction()
	txn.Status = domain.StatusLocked
	txn.LockedAt = &lockedAt
	txn.LockedByRole = domain.RoleTaxAgent

	txn.Apply(domain.TransactionPatch{Status: ptr(domain.StatusExcluded)})

	assert.Equal(t, domain.StatusExcluded, txn.Status)
	assert.Nil(t, txn.LockedAt)
	assert.Equal(t, domain.Role(""), txn.LockedByRole)

	// A notes-only patch leaves a locked row's metadata alone
	still := sampleTransaction()
	still.Status = domain.StatusLocked
	still.LockedAt = &lockedAt
	still.Apply(domain.TransactionPatch{NotesBookkeeper: ptr("receipt queried")})
	assert.NotNil(t, still.LockedAt)
}

func ptr[T any](v T) *T { return &v }
