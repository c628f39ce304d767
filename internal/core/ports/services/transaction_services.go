package services

import (
	"context"
	"io"

	"github.com/fdcbooks/tax_ledger_app/internal/core/domain"
	"github.com/fdcbooks/tax_ledger_app/internal/dto"
)

// TransactionSvcFacade exposes the ledger's staff-facing operations.
type TransactionSvcFacade interface {
	Create(ctx context.Context, req dto.CreateTransactionRequest, actor domain.Actor) (*domain.Transaction, error)
	Get(ctx context.Context, transactionID string, actor domain.Actor) (*domain.Transaction, error)
	List(ctx context.Context, params dto.ListTransactionsParams, actor domain.Actor) (*dto.ListTransactionsResponse, error)
	Update(ctx context.Context, transactionID string, req dto.UpdateTransactionRequest, actor domain.Actor) (*domain.Transaction, error)
	BulkUpdate(ctx context.Context, req dto.BulkUpdateRequest, actor domain.Actor) (int, error)
	History(ctx context.Context, transactionID string, actor domain.Actor) ([]domain.HistoryEntry, error)
}

// WorkpaperLockSvcFacade exposes the lock/unlock coordinator.
type WorkpaperLockSvcFacade interface {
	LockForWorkpaper(ctx context.Context, req dto.WorkpaperLockRequest, actor domain.Actor) (*domain.LockResult, error)
	Unlock(ctx context.Context, transactionID string, comment string, actor domain.Actor) (*domain.Transaction, error)
	Links(ctx context.Context, workpaperID string, actor domain.Actor) ([]domain.WorkpaperLink, error)
}

// ClientSyncSvcFacade exposes the client self-service channel.
type ClientSyncSvcFacade interface {
	CreateFromClient(ctx context.Context, req dto.ClientCreateTransactionRequest, actor domain.Actor) (*domain.Transaction, error)
	UpdateFromClient(ctx context.Context, transactionID string, req dto.ClientUpdateTransactionRequest, actor domain.Actor) (*domain.Transaction, error)
}

// ImportSvcFacade exposes the bank/OCR batch ingestion channel.
type ImportSvcFacade interface {
	ImportBatch(ctx context.Context, source domain.Source, clientID string, rows []dto.ImportRow, actor domain.Actor) (int, error)
	ImportCSV(ctx context.Context, source domain.Source, clientID string, r io.Reader, actor domain.Actor) (int, error)
}

// ServiceContainer bundles the service facades for route registration.
type ServiceContainer struct {
	Transaction   TransactionSvcFacade
	WorkpaperLock WorkpaperLockSvcFacade
	ClientSync    ClientSyncSvcFacade
	Import        ImportSvcFacade
}
