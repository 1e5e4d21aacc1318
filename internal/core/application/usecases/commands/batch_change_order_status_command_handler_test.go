package commands_test

import (
	"errors"
	"testing"

	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func forOrder(id kernel.UUID) any {
	return mock.MatchedBy(func(cmd commands.ChangeOrderStatusCommand) bool {
		return cmd.OrderID().IsEqual(id)
	})
}

func TestNewBatchChangeOrderStatusCommand(t *testing.T) {
	t.Run("requires at least one order id", func(t *testing.T) {
		_, err := commands.NewBatchChangeOrderStatusCommand(nil, order.Confirm, newActor(t, kernel.ActorBusiness), "")
		require.ErrorIs(t, err, errs.ErrValueIsRequired)
	})

	t.Run("rejects unknown transition", func(t *testing.T) {
		_, err := commands.NewBatchChangeOrderStatusCommand([]string{"x"}, order.UnknownTransition, newActor(t, kernel.ActorBusiness), "")
		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})
}

func TestBatchChangeOrderStatusCommandHandler_Handle(t *testing.T) {
	ok1, failed, ok2 := kernel.NewUUID(), kernel.NewUUID(), kernel.NewUUID()
	ids := []string{ok1.String(), "not-a-uuid", failed.String(), ok2.String()}

	changer := new(MockStatusChanger)
	success := commands.TransitionResult{Success: true, Message: "Order confirmed successfully"}
	changer.On("Handle", mock.Anything, forOrder(ok1)).Return(success, nil).Once()
	changer.On("Handle", mock.Anything, forOrder(ok2)).Return(success, nil).Once()
	changer.On("Handle", mock.Anything, forOrder(failed)).Return(commands.TransitionResult{},
		errs.NewStateTransitionError("delivered", "confirm", "Cannot confirm order in delivered status")).Once()

	cmd, err := commands.NewBatchChangeOrderStatusCommand(ids, order.Confirm, newActor(t, kernel.ActorBusiness), "")
	require.NoError(t, err)

	h := commands.NewBatchChangeOrderStatusCommandHandler(changer, 2, discardLogger())
	result, err := h.Handle(t.Context(), cmd)

	require.NoError(t, err)
	assert.True(t, result.Success)
	require.Len(t, result.Results, 4)

	for i, id := range ids {
		assert.Equal(t, id, result.Results[i].OrderID, "results keep input order")
	}

	assert.True(t, result.Results[0].Success)
	assert.Equal(t, "Order confirmed successfully", result.Results[0].Message)

	assert.False(t, result.Results[1].Success)
	assert.Equal(t, errs.KindNotFound, result.Results[1].Kind)
	assert.Equal(t, "Order not found", result.Results[1].Message)

	assert.False(t, result.Results[2].Success)
	assert.Equal(t, errs.KindStateGuard, result.Results[2].Kind)
	assert.Equal(t, "Cannot confirm order in delivered status", result.Results[2].Message)

	assert.True(t, result.Results[3].Success)
	changer.AssertExpectations(t)
}

func TestBatchChangeOrderStatusCommandHandler_HidesInternalErrors(t *testing.T) {
	id := kernel.NewUUID()
	changer := new(MockStatusChanger)
	changer.On("Handle", mock.Anything, forOrder(id)).
		Return(commands.TransitionResult{}, errs.NewInvariantViolationError("withheld balance", errors.New("negative"))).Once()

	cmd, err := commands.NewBatchChangeOrderStatusCommand([]string{id.String()}, order.Deliver, newActor(t, kernel.ActorAgent), "")
	require.NoError(t, err)

	result, err := commands.NewBatchChangeOrderStatusCommandHandler(changer, 0, discardLogger()).Handle(t.Context(), cmd)

	require.NoError(t, err)
	require.Len(t, result.Results, 1)
	assert.Equal(t, errs.KindInvariant, result.Results[0].Kind)
	assert.Equal(t, "Internal error", result.Results[0].Message)
	require.ErrorIs(t, result.Results[0].Err, errs.ErrInvariantViolation)
}
