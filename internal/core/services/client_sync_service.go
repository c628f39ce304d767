package services

import (
	"context"
	"fmt"
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

type clientSyncService struct {
	repo portsrepo.TransactionRepository
}

// NewClientSyncService creates the client self-service channel. Clients are
// scoped to their own records; admin may act on behalf of a named client.
func NewClientSyncService(repo portsrepo.TransactionRepository) portssvc.ClientSyncSvcFacade {
	return &clientSyncService{repo: repo}
}

// resolveClientID determines which client the submission belongs to. A client
// always acts on their own records regardless of what the payload claims.
func resolveClientID(actor domain.Actor, requested string) (string, error) {
	switch actor.Role {
	case domain.RoleClient:
		return actor.UserID, nil
	case domain.RoleAdmin:
		if requested == "" {
			return "", apperrors.NewValidationError(map[string]string{"clientID": "is required when acting on behalf of a client"})
		}
		return requested, nil
	default:
		return "", apperrors.ErrForbidden
	}
}

// CreateFromClient records a client submission. The transaction starts at
// status PENDING with source CLIENT_APP.
func (s *clientSyncService) CreateFromClient(ctx context.Context, req dto.ClientCreateTransactionRequest, actor domain.Actor) (*domain.Transaction, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	clientID, err := resolveClientID(actor, req.ClientID)
	if err != nil {
		return nil, err
	}

	date, err := req.Validate()
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	txn := domain.Transaction{
		TransactionID:    uuid.NewString(),
		ClientID:         clientID,
		Date:             date,
		Amount:           req.Amount,
		PayeeRaw:         req.Payee,
		DescriptionRaw:   req.Description,
		Source:           domain.SourceClientApp,
		CategoryClient:   req.Category,
		ModuleHintClient: req.ModuleHint,
		NotesClient:      req.Notes,
		Status:           domain.StatusPending,
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
		Action:        domain.ActionClientCreate,
		After:         domain.SnapshotOf(txn),
		Comment:       "Submitted via client app",
		CreatedAt:     now,
	}

	if err := s.repo.CreateWithHistory(ctx, txn, entry); err != nil {
		logger.Error("Failed to create client transaction", slog.String("error", err.Error()))
		return nil, err
	}

	logger.Info("Client transaction created",
		slog.String("transaction_id", txn.TransactionID),
		slog.String("client_id", clientID),
	)
	return &txn, nil
}

// UpdateFromClient amends a client submission's own fields. Once a bookkeeper
// has reviewed the transaction the client channel can no longer change it,
// and the rejected attempt leaves no trace in the audit trail.
func (s *clientSyncService) UpdateFromClient(ctx context.Context, transactionID string, req dto.ClientUpdateTransactionRequest, actor domain.Actor) (*domain.Transaction, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if actor.Role != domain.RoleClient && actor.Role != domain.RoleAdmin {
		return nil, apperrors.ErrForbidden
	}

	patch := req.ToPatch()
	if patch.IsEmpty() {
		return nil, apperrors.NewValidationError(map[string]string{"updates": "at least one field must be provided"})
	}

	current, err := s.repo.FindByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}

	// A client must not learn whether another client's transaction exists.
	if actor.Role == domain.RoleClient && current.ClientID != actor.UserID {
		return nil, apperrors.ErrNotFound
	}

	if !policy.ClientMayMutate(current.Status) {
		logger.Warn("Client update rejected after review",
			slog.String("transaction_id", transactionID),
			slog.String("status", string(current.Status)),
		)
		return nil, fmt.Errorf("%w: transaction %s has been reviewed and can no longer be changed by the client", apperrors.ErrConflict, transactionID)
	}

	now := time.Now().UTC()
	before := domain.SnapshotOf(*current)

	updated := *current
	updated.ApplyClient(patch)
	updated.LastUpdatedAt = now
	updated.LastUpdatedBy = actor.UserID

	entry := domain.HistoryEntry{
		TransactionID: transactionID,
		UserID:        actor.UserID,
		Role:          actor.Role,
		Action:        domain.ActionClientUpdate,
		Before:        before,
		After:         domain.SnapshotOf(updated),
		CreatedAt:     now,
	}

	if err := s.repo.UpdateWithHistory(ctx, updated, current.Status, entry); err != nil {
		logger.Error("Failed to update client transaction",
			slog.String("transaction_id", transactionID),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	logger.Info("Client transaction updated",
		slog.String("transaction_id", transactionID),
		slog.Any("fields", patch.FieldNames()),
	)
	return &updated, nil
}
