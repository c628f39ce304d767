package dto

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/fdcbooks/tax_ledger_app/internal/apperrors"
	"github.com/fdcbooks/tax_ledger_app/internal/core/domain"
)

const dateLayout = "2006-01-02"

// CreateTransactionRequest creates a manual ledger entry (staff channel).
type CreateTransactionRequest struct {
	ClientID       string          `json:"clientID" binding:"required"`
	Date           string          `json:"date" binding:"required"` // YYYY-MM-DD
	Amount         decimal.Decimal `json:"amount" binding:"required"`
	PayeeRaw       string          `json:"payeeRaw"`
	DescriptionRaw string          `json:"descriptionRaw"`
	CategoryClient string          `json:"categoryClient"`
	NotesClient    string          `json:"notesClient"`
}

// Validate enumerates every missing or invalid field in one error.
func (r CreateTransactionRequest) Validate() (time.Time, error) {
	violations := map[string]string{}
	if r.ClientID == "" {
		violations["clientID"] = "is required"
	}
	var date time.Time
	if r.Date == "" {
		violations["date"] = "is required"
	} else {
		var err error
		date, err = time.Parse(dateLayout, r.Date)
		if err != nil {
			violations["date"] = "must be YYYY-MM-DD"
		}
	}
	if r.Amount.IsZero() {
		violations["amount"] = "is required and must be non-zero"
	}
	if len(violations) > 0 {
		return time.Time{}, apperrors.NewValidationError(violations)
	}
	return date, nil
}

// UpdateTransactionRequest is a staff field patch. Amount and date are not
// patchable on any path; corrections are offsetting transactions.
type UpdateTransactionRequest struct {
	CategoryBookkeeper *string `json:"categoryBookkeeper"`
	TaxCodeBookkeeper  *string `json:"taxCodeBookkeeper" binding:"omitempty,taxcode"`
	NotesBookkeeper    *string `json:"notesBookkeeper"`
	Status             *string `json:"status" binding:"omitempty,txnstatus"`
	Flags              *Flags  `json:"flags"`
	ModuleRouting      *string `json:"moduleRouting" binding:"omitempty,modroute"`
	Comment            string  `json:"comment"`
}

// Flags mirrors domain.Flags on the wire.
type Flags struct {
	Late      bool `json:"late"`
	Duplicate bool `json:"duplicate"`
	HighRisk  bool `json:"high_risk"`
}

// ToPatch converts the request to a domain patch. Enum values were already
// checked by binding validators.
func (r UpdateTransactionRequest) ToPatch() domain.TransactionPatch {
	p := domain.TransactionPatch{
		CategoryBookkeeper: r.CategoryBookkeeper,
		NotesBookkeeper:    r.NotesBookkeeper,
	}
	if r.TaxCodeBookkeeper != nil {
		c := domain.TaxCode(*r.TaxCodeBookkeeper)
		p.TaxCodeBookkeeper = &c
	}
	if r.Status != nil {
		s := domain.Status(*r.Status)
		p.Status = &s
	}
	if r.Flags != nil {
		f := domain.Flags{Late: r.Flags.Late, Duplicate: r.Flags.Duplicate, HighRisk: r.Flags.HighRisk}
		p.Flags = &f
	}
	if r.ModuleRouting != nil {
		m := domain.ModuleRouting(*r.ModuleRouting)
		p.ModuleRouting = &m
	}
	return p
}

// BulkUpdateCriteria selects the target rows of a bulk update.
type BulkUpdateCriteria struct {
	ClientID       string   `json:"clientID"`
	Status         string   `json:"status" binding:"omitempty,txnstatus"`
	Category       string   `json:"category"`
	TransactionIDs []string `json:"transactionIDs"`
	DateFrom       string   `json:"dateFrom"`
	DateTo         string   `json:"dateTo"`
}

// BulkUpdateRequest applies one patch to a filtered transaction set.
type BulkUpdateRequest struct {
	Criteria BulkUpdateCriteria       `json:"criteria" binding:"required"`
	Updates  UpdateTransactionRequest `json:"updates" binding:"required"`
	Comment  string                   `json:"comment"`
}

// ToCriteria converts the wire criteria to the domain form, validating dates.
func (r BulkUpdateRequest) ToCriteria() (domain.BulkCriteria, error) {
	c := domain.BulkCriteria{
		ClientID:       r.Criteria.ClientID,
		Status:         domain.Status(r.Criteria.Status),
		Category:       r.Criteria.Category,
		TransactionIDs: r.Criteria.TransactionIDs,
	}
	violations := map[string]string{}
	if r.Criteria.DateFrom != "" {
		t, err := time.Parse(dateLayout, r.Criteria.DateFrom)
		if err != nil {
			violations["criteria.dateFrom"] = "must be YYYY-MM-DD"
		} else {
			c.DateFrom = &t
		}
	}
	if r.Criteria.DateTo != "" {
		t, err := time.Parse(dateLayout, r.Criteria.DateTo)
		if err != nil {
			violations["criteria.dateTo"] = "must be YYYY-MM-DD"
		} else {
			c.DateTo = &t
		}
	}
	if len(violations) > 0 {
		return domain.BulkCriteria{}, apperrors.NewValidationError(violations)
	}
	return c, nil
}

// ListTransactionsParams are the list query parameters.
type ListTransactionsParams struct {
	ClientID      string `form:"clientID"`
	Status        string `form:"status" binding:"omitempty,txnstatus"`
	Source        string `form:"source" binding:"omitempty,txnsource"`
	ModuleRouting string `form:"moduleRouting" binding:"omitempty,modroute"`
	Category      string `form:"category"`
	DateFrom      string `form:"dateFrom"`
	DateTo        string `form:"dateTo"`
	FlagLate      *bool  `form:"late"`
	FlagDuplicate *bool  `form:"duplicate"`
	FlagHighRisk  *bool  `form:"highRisk"`
	Search        string `form:"search"`
	Limit         int    `form:"limit"`
	NextToken     string `form:"nextToken"`
}

// ToFilter converts query params to the domain filter, validating dates.
func (p ListTransactionsParams) ToFilter() (domain.TransactionFilter, error) {
	f := domain.TransactionFilter{
		ClientID:      p.ClientID,
		Status:        domain.Status(p.Status),
		Source:        domain.Source(p.Source),
		ModuleRouting: domain.ModuleRouting(p.ModuleRouting),
		Category:      p.Category,
		FlagLate:      p.FlagLate,
		FlagDuplicate: p.FlagDuplicate,
		FlagHighRisk:  p.FlagHighRisk,
		Search:        p.Search,
	}
	violations := map[string]string{}
	if p.DateFrom != "" {
		t, err := time.Parse(dateLayout, p.DateFrom)
		if err != nil {
			violations["dateFrom"] = "must be YYYY-MM-DD"
		} else {
			f.DateFrom = &t
		}
	}
	if p.DateTo != "" {
		t, err := time.Parse(dateLayout, p.DateTo)
		if err != nil {
			violations["dateTo"] = "must be YYYY-MM-DD"
		} else {
			f.DateTo = &t
		}
	}
	if len(violations) > 0 {
		return domain.TransactionFilter{}, apperrors.NewValidationError(violations)
	}
	return f, nil
}

// TransactionResponse is the wire form of a ledger row.
type TransactionResponse struct {
	TransactionID      string          `json:"transactionID"`
	ClientID           string          `json:"clientID"`
	Date               string          `json:"date"`
	Amount             decimal.Decimal `json:"amount"`
	PayeeRaw           string          `json:"payeeRaw,omitempty"`
	DescriptionRaw     string          `json:"descriptionRaw,omitempty"`
	Source             string          `json:"source"`
	CategoryClient     string          `json:"categoryClient,omitempty"`
	ModuleHintClient   string          `json:"moduleHintClient,omitempty"`
	NotesClient        string          `json:"notesClient,omitempty"`
	CategoryBookkeeper string          `json:"categoryBookkeeper,omitempty"`
	TaxCodeBookkeeper  string          `json:"taxCodeBookkeeper,omitempty"`
	NotesBookkeeper    string          `json:"notesBookkeeper,omitempty"`
	Status             string          `json:"status"`
	Flags              Flags           `json:"flags"`
	ModuleRouting      string          `json:"moduleRouting,omitempty"`
	LockedAt           *time.Time      `json:"lockedAt,omitempty"`
	LockedByRole       string          `json:"lockedByRole,omitempty"`
	CreatedAt          time.Time       `json:"createdAt"`
	UpdatedAt          time.Time       `json:"updatedAt"`
}

// ToTransactionResponse converts a domain transaction to its wire form.
func ToTransactionResponse(t *domain.Transaction) TransactionResponse {
	return TransactionResponse{
		TransactionID:      t.TransactionID,
		ClientID:           t.ClientID,
		Date:               t.Date.Format(dateLayout),
		Amount:             t.Amount,
		PayeeRaw:           t.PayeeRaw,
		DescriptionRaw:     t.DescriptionRaw,
		Source:             string(t.Source),
		CategoryClient:     t.CategoryClient,
		ModuleHintClient:   t.ModuleHintClient,
		NotesClient:        t.NotesClient,
		CategoryBookkeeper: t.CategoryBookkeeper,
		TaxCodeBookkeeper:  string(t.TaxCodeBookkeeper),
		NotesBookkeeper:    t.NotesBookkeeper,
		Status:             string(t.Status),
		Flags:              Flags{Late: t.Flags.Late, Duplicate: t.Flags.Duplicate, HighRisk: t.Flags.HighRisk},
		ModuleRouting:      string(t.ModuleRouting),
		LockedAt:           t.LockedAt,
		LockedByRole:       string(t.LockedByRole),
		CreatedAt:          t.CreatedAt,
		UpdatedAt:          t.LastUpdatedAt,
	}
}

// ToTransactionResponses converts a slice of domain transactions.
func ToTransactionResponses(txns []domain.Transaction) []TransactionResponse {
	out := make([]TransactionResponse, len(txns))
	for i := range txns {
		out[i] = ToTransactionResponse(&txns[i])
	}
	return out
}

// ListTransactionsResponse is one page of transactions plus the cursor.
type ListTransactionsResponse struct {
	Transactions []TransactionResponse `json:"transactions"`
	NextToken    *string               `json:"nextToken,omitempty"`
}

// HistoryEntryResponse is the wire form of one audit trail row.
type HistoryEntryResponse struct {
	HistoryID     string          `json:"historyID"`
	TransactionID string          `json:"transactionID"`
	UserID        string          `json:"userID,omitempty"`
	Role          string          `json:"role"`
	Action        string          `json:"action"`
	Before        domain.Snapshot `json:"before,omitempty"`
	After         domain.Snapshot `json:"after"`
	Comment       string          `json:"comment,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
}

// ToHistoryResponses converts domain history entries to wire form.
func ToHistoryResponses(entries []domain.HistoryEntry) []HistoryEntryResponse {
	out := make([]HistoryEntryResponse, len(entries))
	for i, e := range entries {
		out[i] = HistoryEntryResponse{
			HistoryID:     e.HistoryID,
			TransactionID: e.TransactionID,
			UserID:        e.UserID,
			Role:          string(e.Role),
			Action:        string(e.Action),
			Before:        e.Before,
			After:         e.After,
			Comment:       e.Comment,
			CreatedAt:     e.CreatedAt,
		}
	}
	return out
}

// RegisterValidators wires the closed code sets into gin's binding validator
// so enum-like fields are validated at the boundary, not as open text.
func RegisterValidators(v *validator.Validate) error {
	if err := v.RegisterValidation("txnstatus", func(fl validator.FieldLevel) bool {
		return domain.Status(fl.Field().String()).Valid()
	}); err != nil {
		return err
	}
	if err := v.RegisterValidation("txnsource", func(fl validator.FieldLevel) bool {
		return domain.Source(fl.Field().String()).Valid()
	}); err != nil {
		return err
	}
	if err := v.RegisterValidation("taxcode", func(fl validator.FieldLevel) bool {
		return domain.TaxCode(fl.Field().String()).Valid()
	}); err != nil {
		return err
	}
	return v.RegisterValidation("modroute", func(fl validator.FieldLevel) bool {
		return domain.ModuleRouting(fl.Field().String()).Valid()
	})
}
