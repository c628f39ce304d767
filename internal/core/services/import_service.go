package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fdcbooks/tax_ledger_app/internal/apperrors"
	"github.com/fdcbooks/tax_ledger_app/internal/core/domain"
	"github.com/fdcbooks/tax_ledger_app/internal/core/policy"
	portsrepo "github.com/fdcbooks/tax_ledger_app/internal/core/ports/repositories"
	portssvc "github.com/fdcbooks/tax_ledger_app/internal/core/ports/services"
	"github.com/fdcbooks/tax_ledger_app/internal/dto"
	"github.com/fdcbooks/tax_ledger_app/internal/middleware"
)

const dateLayout = "2006-01-02"

type importService struct {
	repo portsrepo.TransactionRepository
}

// NewImportService creates the bank/OCR batch ingestion service.
func NewImportService(repo portsrepo.TransactionRepository) portssvc.ImportSvcFacade {
	return &importService{repo: repo}
}

// validImportSource limits batch imports to the feed channels.
func validImportSource(source domain.Source) bool {
	return source == domain.SourceBank || source == domain.SourceOCR
}

// ImportBatch ingests a batch of rows from a bank or OCR feed. The batch is
// atomic: one bad row rejects the whole file with its row number, so a feed
// is never half-imported.
func (s *importService) ImportBatch(ctx context.Context, source domain.Source, clientID string, rows []dto.ImportRow, actor domain.Actor) (int, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if !policy.CanImport(actor.Role) {
		logger.Warn("Import denied", slog.String("role", string(actor.Role)))
		return 0, apperrors.ErrForbidden
	}
	if !validImportSource(source) {
		return 0, apperrors.NewValidationError(map[string]string{"source": "must be BANK or OCR"})
	}
	if clientID == "" {
		return 0, apperrors.NewValidationError(map[string]string{"clientID": "is required"})
	}
	if len(rows) == 0 {
		return 0, apperrors.NewValidationError(map[string]string{"rows": "at least one row is required"})
	}

	now := time.Now().UTC()
	comment := fmt.Sprintf("Imported from %s", source)

	txns := make([]domain.Transaction, 0, len(rows))
	entries := make([]domain.HistoryEntry, 0, len(rows))
	violations := map[string]string{}
	for i, row := range rows {
		key := "rows[" + strconv.Itoa(i) + "]"

		// Check every field of the row so one response names all of its
		// problems, not just the first.
		date, dateErr := time.Parse(dateLayout, row.Date)
		if dateErr != nil {
			violations[key+".date"] = "must be YYYY-MM-DD"
		}
		amount, amountErr := decimal.NewFromString(row.Amount)
		if amountErr != nil {
			violations[key+".amount"] = "must be a decimal number"
		} else if amount.IsZero() {
			violations[key+".amount"] = "must be non-zero"
		}
		if dateErr != nil || amountErr != nil || amount.IsZero() {
			continue
		}

		txn := domain.Transaction{
			TransactionID:  uuid.NewString(),
			ClientID:       clientID,
			Date:           date,
			Amount:         amount,
			PayeeRaw:       row.Payee,
			DescriptionRaw: row.Description,
			Source:         source,
			Status:         domain.StatusNew,
			AuditFields: domain.AuditFields{
				CreatedAt:     now,
				CreatedBy:     actor.UserID,
				LastUpdatedAt: now,
				LastUpdatedBy: actor.UserID,
			},
		}
		txns = append(txns, txn)
		entries = append(entries, domain.HistoryEntry{
			TransactionID: txn.TransactionID,
			UserID:        actor.UserID,
			Role:          actor.Role,
			Action:        domain.ActionImport,
			After:         domain.SnapshotOf(txn),
			Comment:       comment,
			CreatedAt:     now,
		})
	}
	if len(violations) > 0 {
		return 0, apperrors.NewValidationError(violations)
	}

	if err := s.repo.CreateBatchWithHistory(ctx, txns, entries); err != nil {
		logger.Error("Failed to import batch",
			slog.String("source", string(source)),
			slog.String("error", err.Error()),
		)
		return 0, err
	}

	logger.Info("Batch imported",
		slog.String("source", string(source)),
		slog.String("client_id", clientID),
		slog.Int("count", len(txns)),
	)
	return len(txns), nil
}

// ImportCSV parses a CSV feed export and ingests it as one atomic batch.
func (s *importService) ImportCSV(ctx context.Context, source domain.Source, clientID string, r io.Reader, actor domain.Actor) (int, error) {
	var csvRows []dto.ImportCSVRow
	if err := gocsv.Unmarshal(r, &csvRows); err != nil {
		return 0, apperrors.NewValidationError(map[string]string{"file": "invalid CSV: " + err.Error()})
	}

	rows := make([]dto.ImportRow, len(csvRows))
	for i, row := range csvRows {
		rows[i] = dto.ImportRow{
			Date:        row.Date,
			Amount:      row.Amount,
			Payee:       row.Payee,
			Description: row.Description,
		}
	}
	return s.ImportBatch(ctx, source, clientID, rows, actor)
}
