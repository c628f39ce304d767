package domain

import "time"

// ActionType classifies a history entry.
type ActionType string

const (
	ActionManual       ActionType = "manual"
	ActionBulkRecode   ActionType = "bulk_recode"
	ActionImport       ActionType = "import"
	ActionClientCreate ActionType = "client_create"
	ActionClientUpdate ActionType = "client_update"
	ActionLock         ActionType = "lock"
	ActionUnlock       ActionType = "unlock"
)

// Valid reports whether a is a member of the closed action set.
func (a ActionType) Valid() bool {
	switch a {
	case ActionManual, ActionBulkRecode, ActionImport, ActionClientCreate,
		ActionClientUpdate, ActionLock, ActionUnlock:
		return true
	}
	return false
}

// Snapshot is a structured capture of a transaction's governed field values
// at a point in time, stored as JSON in the history and workpaper link rows.
type Snapshot map[string]any

// SnapshotOf captures the transaction's governed fields. Amount and date are
// included so history diffs prove they never change.
func SnapshotOf(t Transaction) Snapshot {
	s := Snapshot{
		"id":                    t.TransactionID,
		"amount":                t.Amount.String(),
		"date":                  t.Date.Format("2006-01-02"),
		FieldPayeeRaw:           t.PayeeRaw,
		FieldDescriptionRaw:     t.DescriptionRaw,
		FieldCategoryClient:     t.CategoryClient,
		FieldModuleHintClient:   t.ModuleHintClient,
		FieldNotesClient:        t.NotesClient,
		FieldCategoryBookkeeper: t.CategoryBookkeeper,
		FieldTaxCodeBookkeeper:  string(t.TaxCodeBookkeeper),
		FieldNotesBookkeeper:    t.NotesBookkeeper,
		FieldStatus:             string(t.Status),
		FieldFlags: map[string]any{
			"late":      t.Flags.Late,
			"duplicate": t.Flags.Duplicate,
			"high_risk": t.Flags.HighRisk,
		},
		FieldModuleRouting: string(t.ModuleRouting),
	}
	if t.LockedAt != nil {
		s["locked_at"] = t.LockedAt.UTC().Format(time.RFC3339Nano)
	} else {
		s["locked_at"] = nil
	}
	return s
}

// HistoryEntry is one row of the append-only audit trail. Entries are written
// in the same database transaction as the mutation they record, exactly one
// per accepted mutation per transaction, and are never updated or deleted.
type HistoryEntry struct {
	HistoryID     string     `json:"historyID"`
	TransactionID string     `json:"transactionID"`
	UserID        string     `json:"userID"` // Empty for system actions
	Role          Role       `json:"role"`
	Action        ActionType `json:"action"`
	Before        Snapshot   `json:"before,omitempty"` // Nil for create actions
	After         Snapshot   `json:"after"`
	Comment       string     `json:"comment,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
}
