package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/fdcbooks/tax_ledger_app/internal/apperrors"
	"github.com/fdcbooks/tax_ledger_app/internal/core/domain"
)

// ClientCreateTransactionRequest is a client-channel submission. Created
// transactions start at status PENDING with source CLIENT_APP.
type ClientCreateTransactionRequest struct {
	ClientID    string          `json:"clientID"` // Required for admin acting on behalf; ignored for clients (own id is used)
	Date        string          `json:"date" binding:"required"`
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	Payee       string          `json:"payee"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	ModuleHint  string          `json:"moduleHint"`
	Notes       string          `json:"notes"`
}

// Validate enumerates every missing or invalid field in one error.
func (r ClientCreateTransactionRequest) Validate() (time.Time, error) {
	violations := map[string]string{}
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

// ClientUpdateTransactionRequest updates a client's own submission. Rejected
// once the transaction has advanced to REVIEWED or beyond.
type ClientUpdateTransactionRequest struct {
	Payee       *string `json:"payee"`
	Description *string `json:"description"`
	Category    *string `json:"category"`
	ModuleHint  *string `json:"moduleHint"`
	Notes       *string `json:"notes"`
}

// ToPatch converts the request to a domain client-channel patch.
func (r ClientUpdateTransactionRequest) ToPatch() domain.ClientPatch {
	return domain.ClientPatch{
		PayeeRaw:         r.Payee,
		DescriptionRaw:   r.Description,
		CategoryClient:   r.Category,
		ModuleHintClient: r.ModuleHint,
		NotesClient:      r.Notes,
	}
}
