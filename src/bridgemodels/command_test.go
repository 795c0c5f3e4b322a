package bridgemodels

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCommandStatusTransitions(t *testing.T) {
	t.Run("allowed edges", func(t *testing.T) {
		assert.True(t, CommandStatusDispatched.CanTransitionTo(CommandStatusAccepted))
		assert.True(t, CommandStatusAccepted.CanTransitionTo(CommandStatusPartial))
		assert.True(t, CommandStatusAccepted.CanTransitionTo(CommandStatusRejected))
		assert.True(t, CommandStatusPartial.CanTransitionTo(CommandStatusFilled))
		assert.True(t, CommandStatusPartial.CanTransitionTo(CommandStatusFailed))
	})

	t.Run("filled is unreachable without partial", func(t *testing.T) {
		assert.False(t, CommandStatusDispatched.CanTransitionTo(CommandStatusFilled))
		assert.False(t, CommandStatusAccepted.CanTransitionTo(CommandStatusFilled))
	})

	t.Run("terminal states have no exits", func(t *testing.T) {
		for _, status := range []CommandStatus{CommandStatusFilled, CommandStatusRejected, CommandStatusFailed} {
			assert.True(t, status.IsTerminal())

			for _, next := range []CommandStatus{CommandStatusDispatched, CommandStatusAccepted, CommandStatusPartial, CommandStatusFilled, CommandStatusRejected, CommandStatusFailed} {
				assert.False(t, status.CanTransitionTo(next))
			}
		}
	})

	t.Run("rejects unknown statuses", func(t *testing.T) {
		assert.Error(t, CommandStatus("DONE").Validate())
		assert.NoError(t, CommandStatusPartial.Validate())
	})
}

func TestCommandLegValidate(t *testing.T) {
	valid := CommandLeg{
		Ticker:     "PETR4",
		Strike:     35.00,
		OptionType: OptionTypeCall,
		Expiration: time.Date(2025, 10, 17, 0, 0, 0, 0, time.UTC),
		Quantity:   100,
		Action:     LegActionBuyToClose,
	}

	assert.NoError(t, valid.Validate())

	t.Run("rejects bad fields", func(t *testing.T) {
		leg := valid
		leg.Ticker = ""
		assert.Error(t, leg.Validate())

		leg = valid
		leg.Strike = 0
		assert.Error(t, leg.Validate())

		leg = valid
		leg.Quantity = -1
		assert.Error(t, leg.Validate())

		leg = valid
		leg.Action = "buy"
		assert.Error(t, leg.Validate())

		leg = valid
		leg.Expiration = time.Time{}
		assert.Error(t, leg.Validate())
	})
}
