package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fdcbooks/tax_ledger_app/internal/apperrors"
	"github.com/fdcbooks/tax_ledger_app/internal/core/domain"
	"github.com/fdcbooks/tax_ledger_app/internal/core/policy"
	portsrepo "github.com/fdcbooks/tax_ledger_app/internal/core/ports/repositories"
	"github.com/fdcbooks/tax_ledger_app/internal/models"
	"github.com/fdcbooks/tax_ledger_app/internal/utils/mapping"
	"github.com/google/uuid"
)

const insertLinkQuery = `
	INSERT INTO transaction_workpaper_links (link_id, transaction_id, workpaper_id, module, period, snapshot, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	ON CONFLICT (transaction_id, workpaper_id) DO NOTHING;
`

type PgxWorkpaperLockRepository struct {
	BaseRepository
}

// NewPgxWorkpaperLockRepository creates the workpaper locking repository.
func NewPgxWorkpaperLockRepository(pool *pgxpool.Pool) portsrepo.WorkpaperLockRepository {
	return &PgxWorkpaperLockRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.WorkpaperLockRepository = (*PgxWorkpaperLockRepository)(nil)

// LockForWorkpaper locks the eligible transactions among ids, records a
// snapshot link for each and a lock history entry. Ineligible, already
// locked and unknown IDs are reported back rather than failing the call.
func (r *PgxWorkpaperLockRepository) LockForWorkpaper(ctx context.Context, ids []string, workpaperID string, module domain.ModuleRouting, period string, actor domain.Actor, now time.Time) (*domain.LockResult, error) {
	result := &domain.LockResult{
		Requested:     len(ids),
		Locked:        []string{},
		AlreadyLocked: []string{},
		Ineligible:    []string{},
		NotFound:      []string{},
	}

	err := r.withTx(ctx, func(tx pgx.Tx) error {
		query := `SELECT ` + txnColumns + ` FROM transactions WHERE transaction_id = ANY($1) ORDER BY transaction_id FOR UPDATE;`
		rows, err := tx.Query(ctx, query, ids)
		if err != nil {
			return apperrors.NewAppError(500, "failed to select transactions for locking", err)
		}
		found := make(map[string]domain.Transaction, len(ids))
		for rows.Next() {
			m, scanErr := scanTransaction(rows)
			if scanErr != nil {
				rows.Close()
				return apperrors.NewAppError(500, "failed to scan transaction row for locking", scanErr)
			}
			found[m.ID] = mapping.ToDomainTransaction(*m)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return apperrors.NewAppError(500, "error iterating lock candidate rows", err)
		}

		batch := &pgx.Batch{}
		for _, id := range ids {
			t, ok := found[id]
			if !ok {
				result.NotFound = append(result.NotFound, id)
				continue
			}
			if t.Status == domain.StatusLocked {
				result.AlreadyLocked = append(result.AlreadyLocked, id)
				continue
			}
			if !policy.Lockable(t.Status) {
				result.Ineligible = append(result.Ineligible, id)
				continue
			}

			before := domain.SnapshotOf(t)
			lockedAt := now
			t.Status = domain.StatusLocked
			t.LockedAt = &lockedAt
			t.LockedByRole = actor.Role
			t.LastUpdatedAt = now
			t.LastUpdatedBy = actor.UserID
			after := domain.SnapshotOf(t)

			m := mapping.ToModelTransaction(t)
			batch.Queue(updateTxnQuery, updateTxnArgs(m)...)
			batch.Queue(insertLinkQuery,
				uuid.NewString(), t.TransactionID, workpaperID, string(module), period, after, now)
			batch.Queue(insertHistoryQuery, insertHistoryArgs(domain.HistoryEntry{
				TransactionID: t.TransactionID,
				UserID:        actor.UserID,
				Role:          actor.Role,
				Action:        domain.ActionLock,
				Before:        before,
				After:         after,
				Comment:       fmt.Sprintf("Locked into workpaper %s", workpaperID),
				CreatedAt:     now,
			})...)
			result.Locked = append(result.Locked, id)
		}

		if batch.Len() == 0 {
			return nil
		}
		br := tx.SendBatch(ctx, batch)
		if err := br.Close(); err != nil {
			return apperrors.NewAppError(500, "failed to execute workpaper lock batch", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Unlock reverts a locked transaction to READY_FOR_WORKPAPER, clears its
// lock metadata and records an unlock history entry carrying the mandatory
// audit comment. Returns the updated transaction.
func (r *PgxWorkpaperLockRepository) Unlock(ctx context.Context, transactionID string, actor domain.Actor, comment string, now time.Time) (*domain.Transaction, error) {
	var unlocked domain.Transaction
	err := r.withTx(ctx, func(tx pgx.Tx) error {
		query := `SELECT ` + txnColumns + ` FROM transactions WHERE transaction_id = $1 FOR UPDATE;`
		m, err := scanTransaction(tx.QueryRow(ctx, query, transactionID))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.ErrNotFound
			}
			return apperrors.NewAppError(500, "failed to read transaction "+transactionID+" for unlock", err)
		}
		t := mapping.ToDomainTransaction(*m)
		if t.Status != domain.StatusLocked {
			return fmt.Errorf("%w: transaction %s is not locked", apperrors.ErrConflict, transactionID)
		}

		before := domain.SnapshotOf(t)
		t.Status = domain.StatusReadyForWorkpaper
		t.LockedAt = nil
		t.LockedByRole = ""
		t.LastUpdatedAt = now
		t.LastUpdatedBy = actor.UserID
		after := domain.SnapshotOf(t)

		updated := mapping.ToModelTransaction(t)
		if _, err := tx.Exec(ctx, updateTxnQuery, updateTxnArgs(updated)...); err != nil {
			return apperrors.NewAppError(500, "failed to unlock transaction "+transactionID, err)
		}
		if _, err := tx.Exec(ctx, insertHistoryQuery, insertHistoryArgs(domain.HistoryEntry{
			TransactionID: transactionID,
			UserID:        actor.UserID,
			Role:          actor.Role,
			Action:        domain.ActionUnlock,
			Before:        before,
			After:         after,
			Comment:       comment,
			CreatedAt:     now,
		})...); err != nil {
			return apperrors.NewAppError(500, "failed to insert unlock history for transaction "+transactionID, err)
		}
		unlocked = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &unlocked, nil
}

// FindLinksByWorkpaper retrieves the snapshot links recorded for a workpaper.
func (r *PgxWorkpaperLockRepository) FindLinksByWorkpaper(ctx context.Context, workpaperID string) ([]domain.WorkpaperLink, error) {
	query := `
		SELECT link_id, transaction_id, workpaper_id, module, period, snapshot, created_at
		FROM transaction_workpaper_links
		WHERE workpaper_id = $1
		ORDER BY created_at ASC, link_id ASC;
	`
	rows, err := r.Pool.Query(ctx, query, workpaperID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query links for workpaper "+workpaperID, err)
	}
	defer rows.Close()

	links := []domain.WorkpaperLink{}
	for rows.Next() {
		var m models.WorkpaperLink
		if err := rows.Scan(&m.ID, &m.TransactionID, &m.WorkpaperID, &m.Module, &m.Period, &m.Snapshot, &m.CreatedAt); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan workpaper link row", err)
		}
		links = append(links, mapping.ToDomainWorkpaperLink(m))
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating workpaper link rows", err)
	}
	return links, nil
}
