package pgsql

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fdcbooks/tax_ledger_app/internal/apperrors"
	"github.com/fdcbooks/tax_ledger_app/internal/core/domain"
	"github.com/fdcbooks/tax_ledger_app/internal/core/policy"
	portsrepo "github.com/fdcbooks/tax_ledger_app/internal/core/ports/repositories"
	"github.com/fdcbooks/tax_ledger_app/internal/models"
	"github.com/fdcbooks/tax_ledger_app/internal/utils/mapping"
	"github.com/fdcbooks/tax_ledger_app/internal/utils/pagination"
	"github.com/google/uuid"
)

// txnColumns is the canonical select list for the transactions table.
const txnColumns = `transaction_id, client_id, txn_date, amount, payee_raw, description_raw, source,
	category_client, module_hint_client, notes_client,
	category_bookkeeper, tax_code_bookkeeper, notes_bookkeeper,
	status, flags, module_routing, locked_at, locked_by_role,
	created_at, created_by, last_updated_at, last_updated_by`

const insertTxnQuery = `
	INSERT INTO transactions (
		transaction_id, client_id, txn_date, amount, payee_raw, description_raw, source,
		category_client, module_hint_client, notes_client,
		category_bookkeeper, tax_code_bookkeeper, notes_bookkeeper,
		status, flags, module_routing, locked_at, locked_by_role,
		created_at, created_by, last_updated_at, last_updated_by
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22);
`

const insertHistoryQuery = `
	INSERT INTO transaction_history (history_id, transaction_id, user_id, role, action_type, before_state, after_state, comment, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
`

type PgxTransactionRepository struct {
	BaseRepository
}

// NewPgxTransactionRepository creates the ledger store repository.
func NewPgxTransactionRepository(pool *pgxpool.Pool) portsrepo.TransactionRepository {
	return &PgxTransactionRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.TransactionRepository = (*PgxTransactionRepository)(nil)

func insertTxnArgs(m models.Transaction) []any {
	return []any{
		m.ID, m.ClientID, m.Date, m.Amount, m.PayeeRaw, m.DescriptionRaw, m.Source,
		m.CategoryClient, m.ModuleHintClient, m.NotesClient,
		m.CategoryBookkeeper, m.TaxCodeBookkeeper, m.NotesBookkeeper,
		m.Status, m.Flags, m.ModuleRouting, m.LockedAt, m.LockedByRole,
		m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
	}
}

func insertHistoryArgs(e domain.HistoryEntry) []any {
	id := e.HistoryID
	if id == "" {
		id = uuid.NewString()
	}
	var userID *string
	if e.UserID != "" {
		userID = &e.UserID
	}
	var comment *string
	if e.Comment != "" {
		comment = &e.Comment
	}
	return []any{id, e.TransactionID, userID, string(e.Role), string(e.Action), e.Before, e.After, comment, e.CreatedAt}
}

func scanTransaction(row pgx.Row) (*models.Transaction, error) {
	var m models.Transaction
	err := row.Scan(
		&m.ID, &m.ClientID, &m.Date, &m.Amount, &m.PayeeRaw, &m.DescriptionRaw, &m.Source,
		&m.CategoryClient, &m.ModuleHintClient, &m.NotesClient,
		&m.CategoryBookkeeper, &m.TaxCodeBookkeeper, &m.NotesBookkeeper,
		&m.Status, &m.Flags, &m.ModuleRouting, &m.LockedAt, &m.LockedByRole,
		&m.CreatedAt, &m.CreatedBy, &m.LastUpdatedAt, &m.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// CreateWithHistory inserts a transaction and its creation history entry in
// one database transaction.
func (r *PgxTransactionRepository) CreateWithHistory(ctx context.Context, txn domain.Transaction, entry domain.HistoryEntry) error {
	return r.withTx(ctx, func(tx pgx.Tx) error {
		m := mapping.ToModelTransaction(txn)
		if _, err := tx.Exec(ctx, insertTxnQuery, insertTxnArgs(m)...); err != nil {
			return apperrors.NewAppError(500, "failed to insert transaction "+m.ID, err)
		}
		if _, err := tx.Exec(ctx, insertHistoryQuery, insertHistoryArgs(entry)...); err != nil {
			return apperrors.NewAppError(500, "failed to insert history for transaction "+m.ID, err)
		}
		return nil
	})
}

// CreateBatchWithHistory inserts a batch of transactions and their creation
// history entries atomically.
func (r *PgxTransactionRepository) CreateBatchWithHistory(ctx context.Context, txns []domain.Transaction, entries []domain.HistoryEntry) error {
	if len(txns) != len(entries) {
		return apperrors.NewAppError(500, "transaction and history batch lengths differ", nil)
	}
	return r.withTx(ctx, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for i := range txns {
			m := mapping.ToModelTransaction(txns[i])
			batch.Queue(insertTxnQuery, insertTxnArgs(m)...)
			batch.Queue(insertHistoryQuery, insertHistoryArgs(entries[i])...)
		}
		br := tx.SendBatch(ctx, batch)
		if err := br.Close(); err != nil {
			return apperrors.NewAppError(500, "failed to execute import batch", err)
		}
		return nil
	})
}

// FindByID retrieves a transaction by its ID.
func (r *PgxTransactionRepository) FindByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	query := `SELECT ` + txnColumns + ` FROM transactions WHERE transaction_id = $1;`
	m, err := scanTransaction(r.Pool.QueryRow(ctx, query, transactionID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find transaction by ID "+transactionID, err)
	}
	d := mapping.ToDomainTransaction(*m)
	return &d, nil
}

// buildFilterConditions translates the list filter into WHERE clauses and args.
func buildFilterConditions(f domain.TransactionFilter, args []any) ([]string, []any) {
	var conds []string
	add := func(cond string, vals ...any) {
		n := len(args)
		for i := range vals {
			cond = replacePlaceholder(cond, i+1, n+i+1)
		}
		args = append(args, vals...)
		conds = append(conds, cond)
	}

	if f.ClientID != "" {
		add("client_id = $?1", f.ClientID)
	}
	if f.Status != "" {
		add("status = $?1", string(f.Status))
	}
	if f.Source != "" {
		add("source = $?1", string(f.Source))
	}
	if f.ModuleRouting != "" {
		add("module_routing = $?1", string(f.ModuleRouting))
	}
	if f.Category != "" {
		add("category_bookkeeper = $?1", f.Category)
	}
	if f.DateFrom != nil {
		add("txn_date >= $?1", *f.DateFrom)
	}
	if f.DateTo != nil {
		add("txn_date <= $?1", *f.DateTo)
	}
	if f.FlagLate != nil {
		add("COALESCE((flags->>'late')::boolean, false) = $?1", *f.FlagLate)
	}
	if f.FlagDuplicate != nil {
		add("COALESCE((flags->>'duplicate')::boolean, false) = $?1", *f.FlagDuplicate)
	}
	if f.FlagHighRisk != nil {
		add("COALESCE((flags->>'high_risk')::boolean, false) = $?1", *f.FlagHighRisk)
	}
	if f.Search != "" {
		term := "%" + f.Search + "%"
		add("(payee_raw ILIKE $?1 OR description_raw ILIKE $?1 OR notes_client ILIKE $?1 OR notes_bookkeeper ILIKE $?1)", term)
	}
	return conds, args
}

// replacePlaceholder rewrites the $?i markers in a condition to real
// positional placeholders once the argument index is known.
func replacePlaceholder(cond string, marker, position int) string {
	return strings.ReplaceAll(cond, "$?"+strconv.Itoa(marker), "$"+strconv.Itoa(position))
}

// List retrieves a paginated page of transactions using token-based
// pagination with stable (created_at, transaction_id) ordering.
func (r *PgxTransactionRepository) List(ctx context.Context, filter domain.TransactionFilter, limit int, nextToken *string) ([]domain.Transaction, *string, error) {
	if limit <= 0 {
		limit = 50
	}
	// Fetch one extra row to determine whether there is a next page.
	fetchLimit := limit + 1

	conds, args := buildFilterConditions(filter, nil)

	if nextToken != nil && *nextToken != "" {
		lastCreatedAt, lastID, decodeErr := pagination.DecodeToken(*nextToken)
		if decodeErr != nil {
			return nil, nil, apperrors.NewAppError(400, "invalid nextToken", decodeErr)
		}
		cursorCond := fmt.Sprintf("(created_at, transaction_id) < ($%d, $%d)", len(args)+1, len(args)+2)
		args = append(args, lastCreatedAt, lastID)
		conds = append(conds, cursorCond)
	}

	query := `SELECT ` + txnColumns + ` FROM transactions`
	if len(conds) > 0 {
		query += " WHERE " + joinConds(conds)
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC, transaction_id DESC LIMIT $%d;", len(args)+1)
	args = append(args, fetchLimit)

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed to query transactions", err)
	}
	defer rows.Close()

	modelTxns := make([]models.Transaction, 0, fetchLimit)
	for rows.Next() {
		m, scanErr := scanTransaction(rows)
		if scanErr != nil {
			return nil, nil, apperrors.NewAppError(500, "failed to scan transaction row", scanErr)
		}
		modelTxns = append(modelTxns, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, apperrors.NewAppError(500, "error iterating transaction rows", err)
	}

	var nextTokenVal *string
	results := modelTxns
	if len(modelTxns) > limit {
		last := modelTxns[limit-1] // The actual last item of the current page
		token := pagination.EncodeToken(last.CreatedAt, last.ID)
		nextTokenVal = &token
		results = modelTxns[:limit]
	}

	domainTxns := make([]domain.Transaction, len(results))
	for i, m := range results {
		domainTxns[i] = mapping.ToDomainTransaction(m)
	}
	return domainTxns, nextTokenVal, nil
}

func joinConds(conds []string) string {
	return strings.Join(conds, " AND ")
}

const updateTxnQuery = `
	UPDATE transactions
	SET payee_raw = $2,
	    description_raw = $3,
	    category_client = $4,
	    module_hint_client = $5,
	    notes_client = $6,
	    category_bookkeeper = $7,
	    tax_code_bookkeeper = $8,
	    notes_bookkeeper = $9,
	    status = $10,
	    flags = $11,
	    module_routing = $12,
	    locked_at = $13,
	    locked_by_role = $14,
	    last_updated_at = $15,
	    last_updated_by = $16
	WHERE transaction_id = $1;
`

// Note: txn_date and amount are deliberately absent from the update list;
// they are immutable after creation on every path.

func updateTxnArgs(m models.Transaction) []any {
	return []any{
		m.ID, m.PayeeRaw, m.DescriptionRaw, m.CategoryClient, m.ModuleHintClient, m.NotesClient,
		m.CategoryBookkeeper, m.TaxCodeBookkeeper, m.NotesBookkeeper,
		m.Status, m.Flags, m.ModuleRouting, m.LockedAt, m.LockedByRole,
		m.LastUpdatedAt, m.LastUpdatedBy,
	}
}

// UpdateWithHistory persists an updated transaction and its history entry,
// re-checking the row's status inside the write transaction so a concurrent
// lock or unlock cannot be silently overwritten.
func (r *PgxTransactionRepository) UpdateWithHistory(ctx context.Context, txn domain.Transaction, expectedStatus domain.Status, entry domain.HistoryEntry) error {
	return r.withTx(ctx, func(tx pgx.Tx) error {
		var currentStatus string
		err := tx.QueryRow(ctx, `SELECT status FROM transactions WHERE transaction_id = $1 FOR UPDATE;`, txn.TransactionID).Scan(&currentStatus)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.ErrNotFound
			}
			return apperrors.NewAppError(500, "failed to re-read transaction "+txn.TransactionID, err)
		}
		if domain.Status(currentStatus) != expectedStatus {
			return fmt.Errorf("%w: transaction %s moved from %s to %s", apperrors.ErrConflict, txn.TransactionID, expectedStatus, currentStatus)
		}

		m := mapping.ToModelTransaction(txn)
		if _, err := tx.Exec(ctx, updateTxnQuery, updateTxnArgs(m)...); err != nil {
			return apperrors.NewAppError(500, "failed to update transaction "+m.ID, err)
		}
		if _, err := tx.Exec(ctx, insertHistoryQuery, insertHistoryArgs(entry)...); err != nil {
			return apperrors.NewAppError(500, "failed to insert history for transaction "+m.ID, err)
		}
		return nil
	})
}

// BulkUpdate applies one patch to every matching transaction in a single
// database transaction. Per-row lock state and status transitions are
// validated after the rows are locked FOR UPDATE, so the all-or-nothing
// contract holds under concurrent writers.
func (r *PgxTransactionRepository) BulkUpdate(ctx context.Context, criteria domain.BulkCriteria, patch domain.TransactionPatch, actor domain.Actor, comment string, now time.Time) (int, error) {
	if criteria.IsEmpty() {
		return 0, apperrors.NewValidationError(map[string]string{"criteria": "at least one filter criterion is required"})
	}

	var count int
	err := r.withTx(ctx, func(tx pgx.Tx) error {
		conds, args := buildCriteriaConditions(criteria)
		query := `SELECT ` + txnColumns + ` FROM transactions WHERE ` + joinConds(conds) + ` ORDER BY transaction_id FOR UPDATE;`

		rows, err := tx.Query(ctx, query, args...)
		if err != nil {
			return apperrors.NewAppError(500, "failed to select transactions for bulk update", err)
		}
		matched := make([]domain.Transaction, 0)
		for rows.Next() {
			m, scanErr := scanTransaction(rows)
			if scanErr != nil {
				rows.Close()
				return apperrors.NewAppError(500, "failed to scan transaction row for bulk update", scanErr)
			}
			matched = append(matched, mapping.ToDomainTransaction(*m))
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return apperrors.NewAppError(500, "error iterating bulk update rows", err)
		}

		if len(matched) == 0 {
			return apperrors.ErrNoMatch
		}

		// Validate the patch against every row's individual state before
		// touching anything. Any locked row rejects the whole batch.
		if err := policy.CheckBulkPatch(actor.Role, matched, patch); err != nil {
			return err
		}

		if comment == "" {
			comment = fmt.Sprintf("Bulk update of %d transactions", len(matched))
		}

		batch := &pgx.Batch{}
		for i := range matched {
			before := domain.SnapshotOf(matched[i])
			matched[i].Apply(patch)
			matched[i].LastUpdatedAt = now
			matched[i].LastUpdatedBy = actor.UserID
			after := domain.SnapshotOf(matched[i])

			m := mapping.ToModelTransaction(matched[i])
			batch.Queue(updateTxnQuery, updateTxnArgs(m)...)
			batch.Queue(insertHistoryQuery, insertHistoryArgs(domain.HistoryEntry{
				TransactionID: matched[i].TransactionID,
				UserID:        actor.UserID,
				Role:          actor.Role,
				Action:        domain.ActionBulkRecode,
				Before:        before,
				After:         after,
				Comment:       comment,
				CreatedAt:     now,
			})...)
		}
		br := tx.SendBatch(ctx, batch)
		if err := br.Close(); err != nil {
			return apperrors.NewAppError(500, "failed to execute bulk update batch", err)
		}
		count = len(matched)
		return nil
	})
	return count, err
}

func buildCriteriaConditions(c domain.BulkCriteria) ([]string, []any) {
	var conds []string
	var args []any
	next := func() int { return len(args) + 1 }

	if c.ClientID != "" {
		conds = append(conds, fmt.Sprintf("client_id = $%d", next()))
		args = append(args, c.ClientID)
	}
	if c.Status != "" {
		conds = append(conds, fmt.Sprintf("status = $%d", next()))
		args = append(args, string(c.Status))
	}
	if c.Category != "" {
		conds = append(conds, fmt.Sprintf("category_bookkeeper = $%d", next()))
		args = append(args, c.Category)
	}
	if len(c.TransactionIDs) > 0 {
		conds = append(conds, fmt.Sprintf("transaction_id = ANY($%d)", next()))
		args = append(args, c.TransactionIDs)
	}
	if c.DateFrom != nil {
		conds = append(conds, fmt.Sprintf("txn_date >= $%d", next()))
		args = append(args, *c.DateFrom)
	}
	if c.DateTo != nil {
		conds = append(conds, fmt.Sprintf("txn_date <= $%d", next()))
		args = append(args, *c.DateTo)
	}
	return conds, args
}

// ListHistory retrieves all history entries for a transaction, oldest first.
func (r *PgxTransactionRepository) ListHistory(ctx context.Context, transactionID string) ([]domain.HistoryEntry, error) {
	query := `
		SELECT history_id, transaction_id, user_id, role, action_type, before_state, after_state, comment, created_at
		FROM transaction_history
		WHERE transaction_id = $1
		ORDER BY created_at ASC, history_id ASC;
	`
	rows, err := r.Pool.Query(ctx, query, transactionID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query history for transaction "+transactionID, err)
	}
	defer rows.Close()

	entries := []domain.HistoryEntry{}
	for rows.Next() {
		var m models.HistoryEntry
		var before *domain.Snapshot
		if err := rows.Scan(&m.ID, &m.TransactionID, &m.UserID, &m.Role, &m.ActionType, &before, &m.After, &m.Comment, &m.CreatedAt); err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan history row for transaction "+transactionID, err)
		}
		if before != nil {
			m.Before = *before
		}
		entries = append(entries, mapping.ToDomainHistoryEntry(m))
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating history rows for transaction "+transactionID, err)
	}
	return entries, nil
}
