package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fdcbooks/tax_ledger_app/internal/core/domain"
)

func TestStatusRankOrdering(t *testing.T) {
	assert.True(t, domain.StatusPending.AtLeast(domain.StatusNew))
	assert.True(t, domain.StatusReviewed.AtLeast(domain.StatusPending))
	assert.True(t, domain.StatusReadyForWorkpaper.AtLeast(domain.StatusReviewed))
	assert.True(t, domain.StatusLocked.AtLeast(domain.StatusReadyForWorkpaper))
	assert.False(t, domain.StatusNew.AtLeast(domain.StatusReviewed))

	// EXCLUDED and LOCKED count as past review
	assert.True(t, domain.StatusExcluded.AtLeast(domain.StatusReviewed))
	assert.True(t, domain.StatusLocked.AtLeast(domain.StatusReviewed))

	assert.Equal(t, -1, domain.Status("BOGUS").Rank())
	assert.False(t, domain.Status("BOGUS").Valid())
}

func TestCanTransitionForwardOnly(t *testing.T) {
	tests := []struct {
		name string
		from domain.Status
		to   domain.Status
		role domain.Role
		want bool
	}{
		{"bookkeeper moves forward", domain.StatusNew, domain.StatusPending, domain.RoleBookkeeper, true},
		{"bookkeeper skips forward", domain.StatusNew, domain.StatusReadyForWorkpaper, domain.RoleBookkeeper, true},
		{"bookkeeper cannot regress", domain.StatusReviewed, domain.StatusPending, domain.RoleBookkeeper, false},
		{"bookkeeper excludes anytime pre-lock", domain.StatusNew, domain.StatusExcluded, domain.RoleBookkeeper, true},
		{"bookkeeper cannot un-exclude", domain.StatusExcluded, domain.StatusReviewed, domain.RoleBookkeeper, false},
		{"bookkeeper cannot set locked", domain.StatusReviewed, domain.StatusLocked, domain.RoleBookkeeper, false},
		{"bookkeeper cannot leave locked", domain.StatusLocked, domain.StatusReviewed, domain.RoleBookkeeper, false},
		{"admin may regress", domain.StatusReviewed, domain.StatusPending, domain.RoleAdmin, true},
		{"admin may un-exclude", domain.StatusExcluded, domain.StatusReviewed, domain.RoleAdmin, true},
		{"admin cannot set locked directly", domain.StatusReviewed, domain.StatusLocked, domain.RoleAdmin, false},
		{"admin cannot plainly leave locked", domain.StatusLocked, domain.StatusReviewed, domain.RoleAdmin, false},
		{"admin may exclude a locked row", domain.StatusLocked, domain.StatusExcluded, domain.RoleAdmin, true},
		{"same status is not a transition", domain.StatusReviewed, domain.StatusReviewed, domain.RoleAdmin, false},
		{"unknown target rejected", domain.StatusNew, domain.Status("BOGUS"), domain.RoleAdmin, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, domain.CanTransition(tt.from, tt.to, tt.role))
		})
	}
}

func TestParseRoleNormalizesLegacyNames(t *testing.T) {
	for _, legacy := range []string{"staff", "accountant", "bookkeeper"} {
		role, err := domain.ParseRole(legacy)
		assert.NoError(t, err)
		assert.Equal(t, domain.RoleBookkeeper, role)
	}

	role, err := domain.ParseRole("admin")
	assert.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, role)

	_, err = domain.ParseRole("superuser")
	assert.Error(t, err)
}
