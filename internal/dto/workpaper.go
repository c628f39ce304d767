package dto

import (
	"time"

	"github.com/fdcbooks/tax_ledger_app/internal/core/domain"
)

// WorkpaperLockRequest locks a batch of transactions for a consuming
// workpaper/module/period triple.
type WorkpaperLockRequest struct {
	TransactionIDs []string `json:"transactionIDs" binding:"required,min=1"`
	WorkpaperID    string   `json:"workpaperID" binding:"required"`
	Module         string   `json:"module" binding:"required,modroute"`
	Period         string   `json:"period" binding:"required"` // e.g. "2024-25"
}

// UnlockRequest reopens a locked transaction. The comment is the mandatory
// justification, minimum length enforced by the policy.
type UnlockRequest struct {
	Comment string `json:"comment" binding:"required"`
}

// WorkpaperLinkResponse is the wire form of a frozen lock snapshot.
type WorkpaperLinkResponse struct {
	LinkID        string          `json:"linkID"`
	TransactionID string          `json:"transactionID"`
	WorkpaperID   string          `json:"workpaperID"`
	Module        string          `json:"module"`
	Period        string          `json:"period"`
	Snapshot      domain.Snapshot `json:"snapshot"`
	CreatedAt     time.Time       `json:"createdAt"`
}

// ToWorkpaperLinkResponses converts domain links to wire form.
func ToWorkpaperLinkResponses(links []domain.WorkpaperLink) []WorkpaperLinkResponse {
	out := make([]WorkpaperLinkResponse, len(links))
	for i, l := range links {
		out[i] = WorkpaperLinkResponse{
			LinkID:        l.LinkID,
			TransactionID: l.TransactionID,
			WorkpaperID:   l.WorkpaperID,
			Module:        string(l.Module),
			Period:        l.Period,
			Snapshot:      l.Snapshot,
			CreatedAt:     l.CreatedAt,
		}
	}
	return out
}
