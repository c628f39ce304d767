package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/fdcbooks/tax_ledger_app/internal/core/domain"
)

// Transaction mirrors one row of the transactions table. Nullable text
// columns are pointers; enum columns are plain strings validated at the
// boundary; flags is a JSONB column scanned straight into the fixed struct.
type Transaction struct {
	ID                 string
	ClientID           string
	Date               time.Time
	Amount             decimal.Decimal
	PayeeRaw           *string
	DescriptionRaw     *string
	Source             string
	CategoryClient     *string
	ModuleHintClient   *string
	NotesClient        *string
	CategoryBookkeeper *string
	TaxCodeBookkeeper  *string
	NotesBookkeeper    *string
	Status             string
	Flags              domain.Flags
	ModuleRouting      *string
	LockedAt           *time.Time
	LockedByRole       *string
	AuditFields
}

// AuditFields mirror the audit columns shared by ledger tables.
type AuditFields struct {
	CreatedAt     time.Time
	CreatedBy     string
	LastUpdatedAt time.Time
	LastUpdatedBy string
}

// HistoryEntry mirrors one row of the append-only transaction_history table.
type HistoryEntry struct {
	ID            string
	TransactionID string
	UserID        *string
	Role          string
	ActionType    string
	Before        domain.Snapshot // Nil for create actions
	After         domain.Snapshot
	Comment       *string
	CreatedAt     time.Time
}

// WorkpaperLink mirrors one row of the transaction_workpaper_links table.
type WorkpaperLink struct {
	ID            string
	TransactionID string
	WorkpaperID   string
	Module        string
	Period        string
	Snapshot      domain.Snapshot
	CreatedAt     time.Time
}
