package domain

// Status is the transaction's position in the bookkeeper workflow.
type Status string

const (
	StatusNew               Status = "NEW"
	StatusPending           Status = "PENDING"
	StatusReviewed          Status = "REVIEWED"
	StatusReadyForWorkpaper Status = "READY_FOR_WORKPAPER"
	StatusExcluded          Status = "EXCLUDED"
	StatusLocked            Status = "LOCKED"
)

// statusRank orders statuses along the nominal forward chain. EXCLUDED and
// LOCKED sit above the chain so "status >= REVIEWED" style checks treat them
// as past review.
var statusRank = map[Status]int{
	StatusNew:               0,
	StatusPending:           1,
	StatusReviewed:          2,
	StatusReadyForWorkpaper: 3,
	StatusExcluded:          4,
	StatusLocked:            5,
}

// Rank returns the status' position in the lifecycle ordering, or -1 for an
// unknown status.
func (s Status) Rank() int {
	r, ok := statusRank[s]
	if !ok {
		return -1
	}
	return r
}

// Valid reports whether s is a member of the closed status set.
func (s Status) Valid() bool {
	_, ok := statusRank[s]
	return ok
}

// AtLeast reports whether s is at or past the given status in the lifecycle.
func (s Status) AtLeast(other Status) bool {
	return s.Rank() >= other.Rank()
}

// CanTransition is the single point of enforcement for the status lifecycle.
//
// Non-admin actors move strictly forward along
// NEW -> PENDING -> REVIEWED -> READY_FOR_WORKPAPER, may branch to EXCLUDED
// from any pre-LOCKED state, and may never reach LOCKED through a field
// update (locking goes through the workpaper lock coordinator, unlocking
// through the admin unlock operation). Admin may additionally move status
// backward and set EXCLUDED after LOCKED.
func CanTransition(from, to Status, role Role) bool {
	if !from.Valid() || !to.Valid() || from == to {
		return false
	}
	// LOCKED is never entered or left via a plain status update.
	if to == StatusLocked || from == StatusLocked {
		if role == RoleAdmin && from == StatusLocked && to == StatusExcluded {
			return true
		}
		return false
	}
	if role == RoleAdmin {
		return true
	}
	if to == StatusExcluded {
		return true
	}
	return to.Rank() > from.Rank()
}

// Statuses returns the closed status set in lifecycle order.
func Statuses() []Status {
	return []Status{
		StatusNew,
		StatusPending,
		StatusReviewed,
		StatusReadyForWorkpaper,
		StatusExcluded,
		StatusLocked,
	}
}
