package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanAct(t *testing.T) {
	roles := []UserRole{RoleSuperAdmin, RoleChairman, RoleSecretary, RoleStaff}
	statuses := []LetterStatus{StatusDraft, StatusPendingSecretary, StatusPendingChairman, StatusSigned, StatusRejected}

	allowed := map[UserRole]LetterStatus{
		RoleSecretary: StatusPendingSecretary,
		RoleChairman:  StatusPendingChairman,
	}

	for _, role := range roles {
		for _, status := range statuses {
			want := allowed[role] == status
			assert.Equal(t, want, CanAct(role, status), "role=%s status=%s", role, status)
		}
	}
}

func TestSignTarget(t *testing.T) {
	next, ok := SignTarget(StatusPendingSecretary)
	assert.True(t, ok)
	assert.Equal(t, StatusPendingChairman, next)

	next, ok = SignTarget(StatusPendingChairman)
	assert.True(t, ok)
	assert.Equal(t, StatusSigned, next)

	for _, status := range []LetterStatus{StatusDraft, StatusSigned, StatusRejected} {
		_, ok := SignTarget(status)
		assert.False(t, ok, "status=%s", status)
	}
}

func TestStatusPredicates(t *testing.T) {
	assert.True(t, StatusSigned.Terminal())
	assert.True(t, StatusRejected.Terminal())
	assert.False(t, StatusDraft.Terminal())
	assert.False(t, StatusPendingSecretary.Terminal())

	assert.True(t, StatusPendingSecretary.Pending())
	assert.True(t, StatusPendingChairman.Pending())
	assert.False(t, StatusSigned.Pending())

	assert.False(t, LetterStatus("published").Valid())
	assert.True(t, StatusPendingChairman.Valid())
}

func TestPriorityValid(t *testing.T) {
	for _, p := range []LetterPriority{PriorityLow, PriorityNormal, PriorityHigh, PriorityUrgent} {
		assert.True(t, p.Valid())
	}
	assert.False(t, LetterPriority("critical").Valid())
}

func TestRoleValid(t *testing.T) {
	for _, r := range []UserRole{RoleSuperAdmin, RoleChairman, RoleSecretary, RoleStaff} {
		assert.True(t, r.Valid())
	}
	assert.False(t, UserRole("ADMIN").Valid())
}
