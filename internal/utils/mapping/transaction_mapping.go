package mapping

import (
	"github.com/fdcbooks/tax_ledger_app/internal/core/domain"
	"github.com/fdcbooks/tax_ledger_app/internal/models"
)

func strOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func ptrOrNil(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// ToDomainTransaction converts a database row to the domain entity.
func ToDomainTransaction(m models.Transaction) domain.Transaction {
	return domain.Transaction{
		TransactionID:      m.ID,
		ClientID:           m.ClientID,
		Date:               m.Date,
		Amount:             m.Amount,
		PayeeRaw:           strOrEmpty(m.PayeeRaw),
		DescriptionRaw:     strOrEmpty(m.DescriptionRaw),
		Source:             domain.Source(m.Source),
		CategoryClient:     strOrEmpty(m.CategoryClient),
		ModuleHintClient:   strOrEmpty(m.ModuleHintClient),
		NotesClient:        strOrEmpty(m.NotesClient),
		CategoryBookkeeper: strOrEmpty(m.CategoryBookkeeper),
		TaxCodeBookkeeper:  domain.TaxCode(strOrEmpty(m.TaxCodeBookkeeper)),
		NotesBookkeeper:    strOrEmpty(m.NotesBookkeeper),
		Status:             domain.Status(m.Status),
		Flags:              m.Flags,
		ModuleRouting:      domain.ModuleRouting(strOrEmpty(m.ModuleRouting)),
		LockedAt:           m.LockedAt,
		LockedByRole:       domain.Role(strOrEmpty(m.LockedByRole)),
		AuditFields: domain.AuditFields{
			CreatedAt:     m.CreatedAt,
			CreatedBy:     m.CreatedBy,
			LastUpdatedAt: m.LastUpdatedAt,
			LastUpdatedBy: m.LastUpdatedBy,
		},
	}
}

// ToModelTransaction converts a domain entity to its database row form.
func ToModelTransaction(d domain.Transaction) models.Transaction {
	return models.Transaction{
		ID:                 d.TransactionID,
		ClientID:           d.ClientID,
		Date:               d.Date,
		Amount:             d.Amount,
		PayeeRaw:           ptrOrNil(d.PayeeRaw),
		DescriptionRaw:     ptrOrNil(d.DescriptionRaw),
		Source:             string(d.Source),
		CategoryClient:     ptrOrNil(d.CategoryClient),
		ModuleHintClient:   ptrOrNil(d.ModuleHintClient),
		NotesClient:        ptrOrNil(d.NotesClient),
		CategoryBookkeeper: ptrOrNil(d.CategoryBookkeeper),
		TaxCodeBookkeeper:  ptrOrNil(string(d.TaxCodeBookkeeper)),
		NotesBookkeeper:    ptrOrNil(d.NotesBookkeeper),
		Status:             string(d.Status),
		Flags:              d.Flags,
		ModuleRouting:      ptrOrNil(string(d.ModuleRouting)),
		LockedAt:           d.LockedAt,
		LockedByRole:       ptrOrNil(string(d.LockedByRole)),
		AuditFields: models.AuditFields{
			CreatedAt:     d.CreatedAt,
			CreatedBy:     d.CreatedBy,
			LastUpdatedAt: d.LastUpdatedAt,
			LastUpdatedBy: d.LastUpdatedBy,
		},
	}
}

// ToDomainHistoryEntry converts a history row to the domain entity.
func ToDomainHistoryEntry(m models.HistoryEntry) domain.HistoryEntry {
	return domain.HistoryEntry{
		HistoryID:     m.ID,
		TransactionID: m.TransactionID,
		UserID:        strOrEmpty(m.UserID),
		Role:          domain.Role(m.Role),
		Action:        domain.ActionType(m.ActionType),
		Before:        m.Before,
		After:         m.After,
		Comment:       strOrEmpty(m.Comment),
		CreatedAt:     m.CreatedAt,
	}
}

// ToDomainWorkpaperLink converts a workpaper link row to the domain entity.
func ToDomainWorkpaperLink(m models.WorkpaperLink) domain.WorkpaperLink {
	return domain.WorkpaperLink{
		LinkID:        m.ID,
		TransactionID: m.TransactionID,
		WorkpaperID:   m.WorkpaperID,
		Module:        domain.ModuleRouting(m.Module),
		Period:        m.Period,
		Snapshot:      m.Snapshot,
		CreatedAt:     m.CreatedAt,
	}
}
