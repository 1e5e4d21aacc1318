package commands

import (
	"errors"
	"strings"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

var (
	ErrBatchChangeOrderStatusCommandIsNotConstructed = errors.New(
		"BatchChangeOrderStatusCommand must be created via NewBatchChangeOrderStatusCommand constructor",
	)
	ErrOrderIDsAreRequired = errs.NewValueIsRequiredError("order ids")
)

// BatchChangeOrderStatusCommand applies one transition to many orders.
// Order ids are kept as given so that malformed ones can be reported per item.
type BatchChangeOrderStatusCommand struct { //nolint:recvcheck //using for validation
	orderIDs   []string
	transition order.Transition
	actor      kernel.Actor
	notes      string

	guard guard.ConstructorGuard
}

func NewBatchChangeOrderStatusCommand(
	orderIDs []string,
	transition order.Transition,
	actor kernel.Actor,
	notes string,
) (BatchChangeOrderStatusCommand, error) {
	cmd := BatchChangeOrderStatusCommand{
		notes: strings.TrimSpace(notes),
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setOrderIDs(orderIDs),
		transition.Validate(),
		actor.Validate(),
	); err != nil {
		return BatchChangeOrderStatusCommand{}, err
	}
	cmd.transition = transition
	cmd.actor = actor

	return cmd, nil
}

func (c BatchChangeOrderStatusCommand) Validate() error {
	return c.guard.Validate(ErrBatchChangeOrderStatusCommandIsNotConstructed)
}

func (c BatchChangeOrderStatusCommand) OrderIDs() []string           { return append([]string(nil), c.orderIDs...) }
func (c BatchChangeOrderStatusCommand) Transition() order.Transition { return c.transition }
func (c BatchChangeOrderStatusCommand) Actor() kernel.Actor          { return c.actor }
func (c BatchChangeOrderStatusCommand) Notes() string                { return c.notes }

func (c *BatchChangeOrderStatusCommand) setOrderIDs(ids []string) error {
	if len(ids) == 0 {
		return ErrOrderIDsAreRequired
	}
	c.orderIDs = append([]string(nil), ids...)
	return nil
}
