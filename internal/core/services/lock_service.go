package services

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/fdcbooks/tax_ledger_app/internal/apperrors"
	"github.com/fdcbooks/tax_ledger_app/internal/core/domain"
	"github.com/fdcbooks/tax_ledger_app/internal/core/policy"
	portsrepo "github.com/fdcbooks/tax_ledger_app/internal/core/ports/repositories"
	portssvc "github.com/fdcbooks/tax_ledger_app/internal/core/ports/services"
	"github.com/fdcbooks/tax_ledger_app/internal/dto"
	"github.com/fdcbooks/tax_ledger_app/internal/middleware"
)

type workpaperLockService struct {
	repo portsrepo.WorkpaperLockRepository
}

// NewWorkpaperLockService creates the workpaper lock/unlock coordinator.
func NewWorkpaperLockService(repo portsrepo.WorkpaperLockRepository) portssvc.WorkpaperLockSvcFacade {
	return &workpaperLockService{repo: repo}
}

// LockForWorkpaper locks the eligible transactions among the requested set
// into a workpaper, freezing a snapshot per locked row. Ids that cannot be
// locked are reported in the result rather than failing the whole batch.
func (s *workpaperLockService) LockForWorkpaper(ctx context.Context, req dto.WorkpaperLockRequest, actor domain.Actor) (*domain.LockResult, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if !policy.CanLock(actor.Role) {
		logger.Warn("Workpaper lock denied", slog.String("role", string(actor.Role)))
		return nil, apperrors.ErrForbidden
	}

	module := domain.ModuleRouting(req.Module)
	if !module.Valid() || module == "" {
		return nil, apperrors.NewValidationError(map[string]string{"module": "unknown module " + req.Module})
	}

	result, err := s.repo.LockForWorkpaper(ctx, req.TransactionIDs, req.WorkpaperID, module, req.Period, actor, time.Now().UTC())
	if err != nil {
		logger.Error("Workpaper lock failed",
			slog.String("workpaper_id", req.WorkpaperID),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	logger.Info("Workpaper lock applied",
		slog.String("workpaper_id", req.WorkpaperID),
		slog.Int("requested", result.Requested),
		slog.Int("locked", len(result.Locked)),
		slog.Int("already_locked", len(result.AlreadyLocked)),
		slog.Int("ineligible", len(result.Ineligible)),
		slog.Int("not_found", len(result.NotFound)),
	)
	return result, nil
}

// Unlock reopens a locked transaction. Admin only, and the justification
// comment is mandatory and audited.
func (s *workpaperLockService) Unlock(ctx context.Context, transactionID string, comment string, actor domain.Actor) (*domain.Transaction, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if !policy.CanUnlock(actor.Role) {
		logger.Warn("Unlock denied",
			slog.String("transaction_id", transactionID),
			slog.String("role", string(actor.Role)),
		)
		return nil, apperrors.ErrForbidden
	}

	comment = strings.TrimSpace(comment)
	if len(comment) < policy.UnlockCommentMinLen {
		return nil, apperrors.NewValidationError(map[string]string{
			"comment": "justification must be at least 10 characters",
		})
	}

	txn, err := s.repo.Unlock(ctx, transactionID, actor, comment, time.Now().UTC())
	if err != nil {
		logger.Warn("Unlock failed",
			slog.String("transaction_id", transactionID),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	logger.Info("Transaction unlocked", slog.String("transaction_id", transactionID))
	return txn, nil
}

// Links retrieves the frozen snapshots a workpaper consumed at lock time.
func (s *workpaperLockService) Links(ctx context.Context, workpaperID string, actor domain.Actor) ([]domain.WorkpaperLink, error) {
	if !policy.CanRead(actor.Role) {
		return nil, apperrors.ErrForbidden
	}
	return s.repo.FindLinksByWorkpaper(ctx, workpaperID)
}
