package domain

import "time"

// WorkpaperLink freezes the bookkeeper-field values a workpaper consumed at
// lock time. Created exactly once per (transaction, workpaper) pair, never
// mutated, and preserved across a later unlock as the historical record.
type WorkpaperLink struct {
	LinkID        string        `json:"linkID"`
	TransactionID string        `json:"transactionID"`
	WorkpaperID   string        `json:"workpaperID"`
	Module        ModuleRouting `json:"module"`
	Period        string        `json:"period"` // e.g. "2024-25", "Q1-2025"
	Snapshot      Snapshot      `json:"snapshot"`
	CreatedAt     time.Time     `json:"createdAt"`
}

// LockResult reports the outcome of a batch lock. Ids that could not be
// locked are reported, not silently dropped.
type LockResult struct {
	Requested     int      `json:"requested"`
	Locked        []string `json:"locked"`
	AlreadyLocked []string `json:"alreadyLocked"`
	Ineligible    []string `json:"ineligible"` // Status below the lockable minimum
	NotFound      []string `json:"notFound"`
}
