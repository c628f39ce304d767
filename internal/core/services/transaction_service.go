package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/fdcbooks/tax_ledger_app/internal/apperrors"
	"github.com/fdcbooks/tax_ledger_app/internal/core/domain"
	"github.com/fdcbooks/tax_ledger_app/internal/core/policy"
	portsrepo "github.com/fdcbooks/tax_ledger_app/internal/core/ports/repositories"
	portssvc "github.com/fdcbooks/tax_ledger_app/internal/core/ports/services"
	"github.com/fdcbooks/tax_ledger_app/internal/dto"
	"github.com/fdcbooks/tax_ledger_app/internal/middleware"
)

type transactionService struct {
	repo portsrepo.TransactionRepository
}

// NewTransactionService creates the ledger service for staff operations.
func NewTransactionService(repo portsrepo.TransactionRepository) portssvc.TransactionSvcFacade {
	return &transactionService{repo: repo}
}

// Create records a manual ledger entry. The transaction starts at status NEW
// with source MANUAL and an initial history entry.
func (s *transactionService) Create(ctx context.Context, req dto.CreateTransactionRequest, actor domain.Actor) (*domain.Transaction, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if !policy.CanWrite(actor.Role) {
		logger.Warn("Create transaction denied", slog.String("role", string(actor.Role)))
		return nil, apperrors.ErrForbidden
	}

	date, err := req.Validate()
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	txn := domain.Transaction{
		TransactionID:  uuid.NewString(),
		ClientID:       req.ClientID,
		Date:           date,
		Amount:         req.Amount,
		PayeeRaw:       req.PayeeRaw,
		DescriptionRaw: req.DescriptionRaw,
		Source:         domain.SourceManual,
		CategoryClient: req.CategoryClient,
		NotesClient:    req.NotesClient,
		Status:         domain.StatusNew,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     actor.UserID,
			LastUpdatedAt: now,
			LastUpdatedBy: actor.UserID,
		},
	}

	entry := domain.HistoryEntry{
		TransactionID: txn.TransactionID,
		UserID:        actor.UserID,
		Role:          actor.Role,
		Action:        domain.ActionManual,
		After:         domain.SnapshotOf(txn),
		Comment:       "Created manually",
		CreatedAt:     now,
	}

	if err := s.repo.CreateWithHistory(ctx, txn, entry); err != nil {
		logger.Error("Failed to create transaction", slog.String("error", err.Error()))
		return nil, err
	}

	logger.Info("Transaction created",
		slog.String("transaction_id", txn.TransactionID),
		slog.String("client_id", txn.ClientID),
	)
	return &txn, nil
}

// Get retrieves one transaction for staff readers.
func (s *transactionService) Get(ctx context.Context, transactionID string, actor domain.Actor) (*domain.Transaction, error) {
	if !policy.CanRead(actor.Role) {
		return nil, apperrors.ErrForbidden
	}
	return s.repo.FindByID(ctx, transactionID)
}

// List retrieves a filtered, cursor-paginated page of transactions.
func (s *transactionService) List(ctx context.Context, params dto.ListTransactionsParams, actor domain.Actor) (*dto.ListTransactionsResponse, error) {
	if !policy.CanRead(actor.Role) {
		return nil, apperrors.ErrForbidden
	}

	filter, err := params.ToFilter()
	if err != nil {
		return nil, err
	}

	var nextToken *string
	if params.NextToken != "" {
		nextToken = &params.NextToken
	}

	txns, next, err := s.repo.List(ctx, filter, params.Limit, nextToken)
	if err != nil {
		middleware.GetLoggerFromCtx(ctx).Error("Failed to list transactions", slog.String("error", err.Error()))
		return nil, err
	}

	return &dto.ListTransactionsResponse{
		Transactions: dto.ToTransactionResponses(txns),
		NextToken:    next,
	}, nil
}

// Update applies a staff field patch to one transaction. The patch is
// validated against the row's current status and the caller's role, and the
// status is re-checked inside the write so a concurrent lock wins.
func (s *transactionService) Update(ctx context.Context, transactionID string, req dto.UpdateTransactionRequest, actor domain.Actor) (*domain.Transaction, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	patch := req.ToPatch()
	if patch.IsEmpty() {
		return nil, apperrors.NewValidationError(map[string]string{"updates": "at least one field must be provided"})
	}

	current, err := s.repo.FindByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}

	if err := policy.CheckPatch(actor.Role, current.Status, patch); err != nil {
		logger.Warn("Transaction update rejected",
			slog.String("transaction_id", transactionID),
			slog.String("status", string(current.Status)),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	now := time.Now().UTC()
	before := domain.SnapshotOf(*current)

	updated := *current
	updated.Apply(patch)
	updated.LastUpdatedAt = now
	updated.LastUpdatedBy = actor.UserID

	entry := domain.HistoryEntry{
		TransactionID: transactionID,
		UserID:        actor.UserID,
		Role:          actor.Role,
		Action:        domain.ActionManual,
		Before:        before,
		After:         domain.SnapshotOf(updated),
		Comment:       req.Comment,
		CreatedAt:     now,
	}

	if err := s.repo.UpdateWithHistory(ctx, updated, current.Status, entry); err != nil {
		logger.Error("Failed to update transaction",
			slog.String("transaction_id", transactionID),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	logger.Info("Transaction updated",
		slog.String("transaction_id", transactionID),
		slog.Any("fields", patch.FieldNames()),
	)
	return &updated, nil
}

// BulkUpdate applies one patch to every transaction matching the criteria.
// All rows change together or none do.
func (s *transactionService) BulkUpdate(ctx context.Context, req dto.BulkUpdateRequest, actor domain.Actor) (int, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if !policy.CanWrite(actor.Role) {
		return 0, apperrors.ErrForbidden
	}

	patch := req.Updates.ToPatch()
	if patch.IsEmpty() {
		return 0, apperrors.NewValidationError(map[string]string{"updates": "at least one field must be provided"})
	}

	criteria, err := req.ToCriteria()
	if err != nil {
		return 0, err
	}
	if criteria.IsEmpty() {
		return 0, apperrors.NewValidationError(map[string]string{"criteria": "at least one filter criterion is required"})
	}

	count, err := s.repo.BulkUpdate(ctx, criteria, patch, actor, req.Comment, time.Now().UTC())
	if err != nil {
		logger.Warn("Bulk update rejected", slog.String("error", err.Error()))
		return 0, err
	}

	logger.Info("Bulk update applied",
		slog.Int("count", count),
		slog.Any("fields", patch.FieldNames()),
	)
	return count, nil
}

// History retrieves the full audit trail of a transaction, oldest first.
func (s *transactionService) History(ctx context.Context, transactionID string, actor domain.Actor) ([]domain.HistoryEntry, error) {
	if !policy.CanRead(actor.Role) {
		return nil, apperrors.ErrForbidden
	}

	// Distinguish an unknown transaction from one with no entries; an
	// existing transaction always has at least its creation entry.
	if _, err := s.repo.FindByID(ctx, transactionID); err != nil {
		return nil, err
	}
	return s.repo.ListHistory(ctx, transactionID)
}
