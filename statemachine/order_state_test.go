package statemachine

import (
	"testing"

	"dserve-api/models"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name    string
		from    models.OrderStatus
		to      models.OrderStatus
		actor   models.UserRole
		wantErr bool
	}{
		{"cashier starts preparing", models.StatusPending, models.StatusPreparing, models.RoleCashier, false},
		{"owner marks ready", models.StatusPreparing, models.StatusReady, models.RoleOwner, false},
		{"admin completes", models.StatusReady, models.StatusCompleted, models.RoleAdmin, false},
		{"admin fast path", models.StatusPending, models.StatusCompleted, models.RoleAdmin, false},
		{"cashier cannot skip", models.StatusPending, models.StatusCompleted, models.RoleCashier, true},
		{"no going back", models.StatusReady, models.StatusPreparing, models.RoleAdmin, true},
		{"completed is terminal", models.StatusCompleted, models.StatusPending, models.RoleAdmin, true},
		{"unknown role", models.StatusPending, models.StatusPreparing, models.UserRole("driver"), true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := CanTransition(tc.from, tc.to, tc.actor)
			if tc.wantErr {
				assert.ErrorIs(t, err, ErrInvalidTransition)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidTransitionsFrom(t *testing.T) {
	assert.Equal(t, []models.OrderStatus{models.StatusPreparing, models.StatusCompleted}, ValidTransitionsFrom(models.StatusPending))
	assert.Empty(t, ValidTransitionsFrom(models.StatusCompleted))

	err := CanTransition(models.StatusCompleted, models.StatusReady, models.RoleOwner)
	assert.Contains(t, err.Error(), "none (terminal state)")
}

func TestGetAllTransitions(t *testing.T) {
	assert.Len(t, GetAllTransitions(), 10)
}
