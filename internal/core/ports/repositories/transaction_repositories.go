package repositories

import (
	"context"
	"time"

	"github.com/fdcbooks/tax_ledger_app/internal/core/domain"
)

// TransactionRepository is the persistence facade for the transaction ledger.
//
// Every write method is a single atomic unit of work: the row mutation(s) and
// their history entries commit together or not at all. Row-state validation
// that must hold at commit time (lock state, status transitions) happens
// inside the same database transaction.
type TransactionRepository interface {
	// CreateWithHistory inserts a transaction together with its creation
	// history entry.
	CreateWithHistory(ctx context.Context, txn domain.Transaction, entry domain.HistoryEntry) error

	// CreateBatchWithHistory inserts a batch of transactions and their
	// creation history entries atomically (all or nothing).
	CreateBatchWithHistory(ctx context.Context, txns []domain.Transaction, entries []domain.HistoryEntry) error

	// FindByID returns the transaction or apperrors.ErrNotFound.
	FindByID(ctx context.Context, transactionID string) (*domain.Transaction, error)

	// List returns a page of transactions matching the filter, a token for
	// the next page, and an error. Ordering is stable (created_at then id
	// descending) so cursor pagination is deterministic.
	List(ctx context.Context, filter domain.TransactionFilter, limit int, nextToken *string) ([]domain.Transaction, *string, error)

	// UpdateWithHistory persists an already-validated updated transaction and
	// its history entry. The row's status is re-read FOR UPDATE inside the
	// write transaction; if it no longer equals expectedStatus the update
	// fails with apperrors.ErrConflict and nothing is written.
	UpdateWithHistory(ctx context.Context, txn domain.Transaction, expectedStatus domain.Status, entry domain.HistoryEntry) error

	// BulkUpdate applies one patch to every transaction matching the
	// criteria in a single database transaction, writing one bulk-tagged
	// history entry per affected row. The per-row lock state is validated
	// inside the transaction: if any matched row is LOCKED and the patch
	// touches a non-notes field, the whole batch fails with FieldLockedError
	// and no row is mutated. Zero matches fail with apperrors.ErrNoMatch.
	BulkUpdate(ctx context.Context, criteria domain.BulkCriteria, patch domain.TransactionPatch, actor domain.Actor, comment string, now time.Time) (int, error)

	// ListHistory returns all history entries for a transaction ordered
	// oldest to newest. Never empty for an existing transaction.
	ListHistory(ctx context.Context, transactionID string) ([]domain.HistoryEntry, error)
}

// WorkpaperLockRepository is the persistence facade for the lock coordinator.
type WorkpaperLockRepository interface {
	// LockForWorkpaper locks every eligible requested transaction in one
	// database transaction: status becomes LOCKED with lock metadata, a
	// workpaper link snapshot is captured, and a lock history entry is
	// written per row. Ineligible, already-locked, and unknown ids are
	// reported in the result, not silently dropped.
	LockForWorkpaper(ctx context.Context, transactionIDs []string, workpaperID string, module domain.ModuleRouting, period string, actor domain.Actor, now time.Time) (*domain.LockResult, error)

	// Unlock returns a LOCKED transaction to READY_FOR_WORKPAPER, clears the
	// lock metadata, and writes an unlock history entry carrying the
	// justification comment, all in one database transaction. Fails with
	// apperrors.ErrConflict if the row is not LOCKED. The workpaper link
	// snapshot is preserved.
	Unlock(ctx context.Context, transactionID string, actor domain.Actor, comment string, now time.Time) (*domain.Transaction, error)

	// FindLinksByWorkpaper returns the frozen snapshots captured for a
	// workpaper, for downstream tax modules to consume.
	FindLinksByWorkpaper(ctx context.Context, workpaperID string) ([]domain.WorkpaperLink, error)
}
