package statemachine

import (
	"testing"

	"shawarma-sheesh-api/models"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from    models.OrderStatus
		to      models.OrderStatus
		actor   Actor
		allowed bool
	}{
		{models.StatusProcessing, models.StatusConfirmed, ActorStaff, true},
		{models.StatusConfirmed, models.StatusShipped, ActorStaff, true},
		{models.StatusShipped, models.StatusDelivered, ActorStaff, true},
		{models.StatusProcessing, models.StatusCancelled, ActorCustomer, true},
		{models.StatusConfirmed, models.StatusCancelled, ActorStaff, true},
		{models.StatusConfirmed, models.StatusCancelled, ActorCustomer, false},
		{models.StatusProcessing, models.StatusShipped, ActorStaff, false},
		{models.StatusDelivered, models.StatusCancelled, ActorStaff, false},
		{models.StatusProcessing, models.StatusConfirmed, ActorCustomer, false},
	}
	for _, tt := range tests {
		err := CanTransition(tt.from, tt.to, tt.actor)
		if tt.allowed {
			assert.NoError(t, err, "%s → %s by %s", tt.from, tt.to, tt.actor)
		} else {
			assert.Error(t, err, "%s → %s by %s", tt.from, tt.to, tt.actor)
		}
	}
}

func TestValidTransitionsFrom(t *testing.T) {
	assert.Equal(t,
		[]models.OrderStatus{models.StatusConfirmed, models.StatusCancelled},
		ValidTransitionsFrom(models.StatusProcessing))
	assert.Empty(t, ValidTransitionsFrom(models.StatusDelivered))
	assert.True(t, IsTerminal(models.StatusCancelled))
	assert.False(t, IsTerminal(models.StatusShipped))
}

func TestCanTransition_ErrorMentionsTerminalState(t *testing.T) {
	err := CanTransition(models.StatusDelivered, models.StatusShipped, ActorStaff)
	assert.ErrorContains(t, err, "none (terminal state)")
}

func TestIsKnown(t *testing.T) {
	assert.True(t, IsKnown(models.StatusShipped))
	assert.False(t, IsKnown("PLACED"))
}
