// Package policy is the pure permission policy for the transaction ledger:
// a mapping from (role, operation, transaction state) to allow/deny, with
// field-level refinement when the transaction is LOCKED. It holds no state
// and performs no I/O, so every rule is unit-testable in isolation.
package policy

import (
	"github.com/fdcbooks/tax_ledger_app/internal/apperrors"
	"github.com/fdcbooks/tax_ledger_app/internal/core/domain"
)

// CanRead reports whether the role may use the internal ledger read
// operations (list/get/history). Clients read only through the client
// channel, scoped to their own records.
func CanRead(role domain.Role) bool {
	switch role {
	case domain.RoleBookkeeper, domain.RoleTaxAgent, domain.RoleAdmin:
		return true
	}
	return false
}

// CanWrite reports whether the role may invoke update/bulk-update at all.
// Field-level gating under LOCKED is CheckPatch's job.
func CanWrite(role domain.Role) bool {
	return role == domain.RoleBookkeeper || role == domain.RoleAdmin
}

// CanLock reports whether the role may lock transactions for a workpaper.
func CanLock(role domain.Role) bool {
	return role == domain.RoleTaxAgent || role == domain.RoleAdmin
}

// CanUnlock reports whether the role may unlock a locked transaction.
func CanUnlock(role domain.Role) bool {
	return role == domain.RoleAdmin
}

// CanImport reports whether the role may run batch imports.
func CanImport(role domain.Role) bool {
	return role == domain.RoleBookkeeper || role == domain.RoleAdmin
}

// UnlockCommentMinLen is the minimum justification length for an admin unlock.
const UnlockCommentMinLen = 10

// CheckPatch validates a field patch against the transaction's current status
// for the acting role.
//
// Returns ErrForbidden when the role may not write at all. When the
// transaction is LOCKED, a non-admin may write only notes_bookkeeper; any
// other patched field yields a FieldLockedError naming the offenders -- a
// validation failure, not a permission failure. Status changes are checked
// against the lifecycle transition table.
func CheckPatch(role domain.Role, current domain.Status, patch domain.TransactionPatch) error {
	if !CanWrite(role) {
		return apperrors.ErrForbidden
	}

	if current == domain.StatusLocked && role != domain.RoleAdmin {
		var offending []string
		for _, f := range patch.FieldNames() {
			if f != domain.FieldNotesBookkeeper {
				offending = append(offending, f)
			}
		}
		if len(offending) > 0 {
			return apperrors.NewFieldLockedError(offending)
		}
	}

	if patch.Status != nil {
		if !domain.CanTransition(current, *patch.Status, role) {
			return apperrors.NewValidationError(map[string]string{
				domain.FieldStatus: "illegal transition " + string(current) + " -> " + string(*patch.Status) + " for role " + string(role),
			})
		}
	}

	return nil
}

// CheckBulkPatch validates one patch against every row matched by a bulk
// update. Unlike the single-row path, a LOCKED row rejects the whole batch
// for every role when the patch touches anything beyond notes_bookkeeper;
// bulk recodes are all-or-nothing, so no row may slip past a lock. The
// returned FieldLockedError names the offending fields and the locked
// transaction ids, preserving the order of matched.
func CheckBulkPatch(role domain.Role, matched []domain.Transaction, patch domain.TransactionPatch) error {
	var lockedIDs []string
	for _, t := range matched {
		if t.Status == domain.StatusLocked && !patch.TouchesOnlyNotes() {
			lockedIDs = append(lockedIDs, t.TransactionID)
			continue
		}
		if err := CheckPatch(role, t.Status, patch); err != nil {
			return err
		}
	}
	if len(lockedIDs) > 0 {
		var offending []string
		for _, f := range patch.FieldNames() {
			if f != domain.FieldNotesBookkeeper {
				offending = append(offending, f)
			}
		}
		return apperrors.NewFieldLockedError(offending, lockedIDs...)
	}
	return nil
}

// ClientMayMutate reports whether the client channel may still create or
// update a submission given the transaction's status. Once a bookkeeper has
// reviewed the transaction the client channel cannot override it, regardless
// of role-based write permission.
func ClientMayMutate(current domain.Status) bool {
	return current.Rank() < domain.StatusReviewed.Rank()
}

// Lockable reports whether the transaction's status permits a workpaper lock.
// The minimum is REVIEWED: NEW/PENDING rows have not been through bookkeeper
// review and EXCLUDED rows are out of active workflows.
func Lockable(current domain.Status) bool {
	return current == domain.StatusReviewed || current == domain.StatusReadyForWorkpaper
}
