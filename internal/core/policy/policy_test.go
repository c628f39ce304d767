package policy_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fdcbooks/tax_ledger_app/internal/apperrors"
	"github.com/fdcbooks/tax_ledger_app/internal/core/domain"
	"github.com/fdcbooks/tax_ledger_app/internal/core/policy"
)

func TestRoleCapabilities(t *testing.T) {
	tests := []struct {
		role      domain.Role
		canRead   bool
		canWrite  bool
		canLock   bool
		canUnlock bool
		canImport bool
	}{
		{domain.RoleClient, false, false, false, false, false},
		{domain.RoleBookkeeper, true, true, false, false, true},
		{domain.RoleTaxAgent, true, false, true, false, false},
		{domain.RoleAdmin, true, true, true, true, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			assert.Equal(t, tt.canRead, policy.CanRead(tt.role))
			assert.Equal(t, tt.canWrite, policy.CanWrite(tt.role))
			assert.Equal(t, tt.canLock, policy.CanLock(tt.role))
			assert.Equal(t, tt.canUnlock, policy.CanUnlock(tt.role))
			assert.Equal(t, tt.canImport, policy.CanImport(tt.role))
		})
	}
}

func strPtr(s string) *string { return &s }

func TestCheckPatchRoleGate(t *testing.T) {
	patch := domain.TransactionPatch{CategoryBookkeeper: strPtr("Fuel")}

	err := policy.CheckPatch(domain.RoleClient, domain.StatusNew, patch)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	err = policy.CheckPatch(domain.RoleTaxAgent, domain.StatusNew, patch)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	assert.NoError(t, policy.CheckPatch(domain.RoleBookkeeper, domain.StatusNew, patch))
}

func TestCheckPatchLockedFieldGate(t *testing.T) {
	category := strPtr("Fuel")
	notes := strPtr("needs receipt")

	// Notes-only patch is allowed on a locked row
	err := policy.CheckPatch(domain.RoleBookkeeper, domain.StatusLocked, domain.TransactionPatch{NotesBookkeeper: notes})
	assert.NoError(t, err)

	// Any other field on a locked row is rejected with the offending names
	err = policy.CheckPatch(domain.RoleBookkeeper, domain.StatusLocked, domain.TransactionPatch{
		CategoryBookkeeper: category,
		NotesBookkeeper:    notes,
	})
	var fieldLockedErr *apperrors.FieldLockedError
	assert.True(t, errors.As(err, &fieldLockedErr))
	assert.Equal(t, []string{domain.FieldCategoryBookkeeper}, fieldLockedErr.Fields)

	// It is a validation-class failure, not a permission failure
	assert.NotErrorIs(t, err, apperrors.ErrForbidden)

	// Admin is exempt from the field gate
	err = policy.CheckPatch(domain.RoleAdmin, domain.StatusLocked, domain.TransactionPatch{CategoryBookkeeper: category})
	assert.NoError(t, err)
}

func TestCheckPatchStatusTransition(t *testing.T) {
	locked := domain.StatusLocked
	reviewed := domain.StatusReviewed
	pending := domain.StatusPending

	// Forward transition passes
	assert.NoError(t, policy.CheckPatch(domain.RoleBookkeeper, domain.StatusPending, domain.TransactionPatch{Status: &reviewed}))

	// Regression rejected for bookkeeper with a violation naming the status field
	err := policy.CheckPatch(domain.RoleBookkeeper, domain.StatusReviewed, domain.TransactionPatch{Status: &pending})
	var validationErr *apperrors.ValidationError
	assert.True(t, errors.As(err, &validationErr))
	assert.Contains(t, validationErr.Violations, domain.FieldStatus)

	// LOCKED cannot be set through a field patch, even by admin
	err = policy.CheckPatch(domain.RoleAdmin, domain.StatusReviewed, domain.TransactionPatch{Status: &locked})
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestCheckBulkPatchRejectsWholeBatchOnLockedRow(t *testing.T) {
	matched := []domain.Transaction{
		{TransactionID: "t1", Status: domain.StatusPending},
		{TransactionID: "t2", Status: domain.StatusLocked},
		{TransactionID: "t3", Status: domain.StatusReviewed},
		{TransactionID: "t4", Status: domain.StatusLocked},
	}
	patch := domain.TransactionPatch{CategoryBookkeeper: strPtr("Fuel")}

	err := policy.CheckBulkPatch(domain.RoleBookkeeper, matched, patch)
	var fieldLockedErr *apperrors.FieldLockedError
	assert.True(t, errors.As(err, &fieldLockedErr))
	assert.Equal(t, []string{domain.FieldCategoryBookkeeper}, fieldLockedErr.Fields)
	assert.Equal(t, []string{"t2", "t4"}, fieldLockedErr.TransactionIDs)

	// No admin exemption in bulk; the batch is all-or-nothing
	err = policy.CheckBulkPatch(domain.RoleAdmin, matched, patch)
	assert.True(t, errors.As(err, &fieldLockedErr))
}

func TestCheckBulkPatchAllowsNotesOnlyAcrossLockedRows(t *testing.T) {
	matched := []domain.Transaction{
		{TransactionID: "t1", Status: domain.StatusLocked},
		{TransactionID: "t2", Status: domain.StatusPending},
	}
	patch := domain.TransactionPatch{NotesBookkeeper: strPtr("awaiting receipts")}

	assert.NoError(t, policy.CheckBulkPatch(domain.RoleBookkeeper, matched, patch))
}

func TestCheckBulkPatchValidatesTransitionPerRow(t *testing.T) {
	reviewed := domain.StatusReviewed
	matched := []domain.Transaction{
		{TransactionID: "t1", Status: domain.StatusPending},
		{TransactionID: "t2", Status: domain.StatusExcluded},
	}

	// t2 cannot transition EXCLUDED -> REVIEWED for a bookkeeper
	err := policy.CheckBulkPatch(domain.RoleBookkeeper, matched, domain.TransactionPatch{Status: &reviewed})
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestClientMayMutate(t *testing.T) {
	assert.True(t, policy.ClientMayMutate(domain.StatusNew))
	assert.True(t, policy.ClientMayMutate(domain.StatusPending))
	assert.False(t, policy.ClientMayMutate(domain.StatusReviewed))
	assert.False(t, policy.ClientMayMutate(domain.StatusReadyForWorkpaper))
	assert.False(t, policy.ClientMayMutate(domain.StatusExcluded))
	assert.False(t, policy.ClientMayMutate(domain.StatusLocked))
}

func TestLockable(t *testing.T) {
	assert.False(t, policy.Lockable(domain.StatusNew))
	assert.False(t, policy.Lockable(domain.StatusPending))
	assert.True(t, policy.Lockable(domain.StatusReviewed))
	assert.True(t, policy.Lockable(domain.StatusReadyForWorkpaper))
	assert.False(t, policy.Lockable(domain.StatusExcluded))
	assert.False(t, policy.Lockable(domain.StatusLocked))
}
