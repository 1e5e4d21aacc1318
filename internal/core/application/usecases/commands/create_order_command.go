package commands

import (
	"errors"
	"strings"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

var (
	ErrCreateOrderCommandIsNotConstructed = errors.New(
		"CreateOrderCommand must be created via NewCreateOrderCommand constructor",
	)
	ErrQuantityIsInvalid = errs.NewValueIsInvalidError("quantity must be greater than 0")
	ErrActorIsNotClient  = errs.NewValueIsInvalidError("orders can only be placed by an identified client")
)

// CreateOrderCommand is a client's purchase intent for one inventory item.
//
// Example:
//
//	cmd, err := NewCreateOrderCommand(actor, inventoryID, 2, "ring twice", "")
//	if err != nil {
//	    return err
//	}
//	result, err := handler.Handle(ctx, cmd)
type CreateOrderCommand struct { //nolint:recvcheck //using for validation
	actor               kernel.Actor
	inventoryRef        kernel.UUID
	quantity            int
	specialInstructions string
	idempotencyKey      string
	preferredDeliveryAt *time.Time

	guard guard.ConstructorGuard
}

// NewCreateOrderCommand validates the request shape. The idempotency key is optional.
func NewCreateOrderCommand(
	actor kernel.Actor,
	inventoryRef kernel.UUID,
	quantity int,
	specialInstructions string,
	idempotencyKey string,
) (CreateOrderCommand, error) {
	cmd := CreateOrderCommand{
		specialInstructions: strings.TrimSpace(specialInstructions),
		idempotencyKey:      strings.TrimSpace(idempotencyKey),
		guard:               guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setActor(actor),
		cmd.setInventoryRef(inventoryRef),
		cmd.setQuantity(quantity),
	); err != nil {
		return CreateOrderCommand{}, err
	}

	return cmd, nil
}

// WithPreferredDelivery returns a copy of the command carrying a delivery wish.
func (c CreateOrderCommand) WithPreferredDelivery(at time.Time) CreateOrderCommand {
	c.preferredDeliveryAt = &at
	return c
}

func (c CreateOrderCommand) Validate() error {
	return c.guard.Validate(ErrCreateOrderCommandIsNotConstructed)
}

func (c CreateOrderCommand) Actor() kernel.Actor             { return c.actor }
func (c CreateOrderCommand) InventoryRef() kernel.UUID       { return c.inventoryRef }
func (c CreateOrderCommand) Quantity() int                   { return c.quantity }
func (c CreateOrderCommand) SpecialInstructions() string     { return c.specialInstructions }
func (c CreateOrderCommand) IdempotencyKey() string          { return c.idempotencyKey }
func (c CreateOrderCommand) PreferredDeliveryAt() *time.Time { return c.preferredDeliveryAt }

func (c *CreateOrderCommand) setActor(actor kernel.Actor) error {
	if err := actor.Validate(); err != nil {
		return err
	}
	if actor.Type() != kernel.ActorClient || actor.ID() == nil {
		return ErrActorIsNotClient
	}
	c.actor = actor
	return nil
}

func (c *CreateOrderCommand) setInventoryRef(ref kernel.UUID) error {
	if err := ref.Validate(); err != nil {
		return err
	}
	c.inventoryRef = ref
	return nil
}

func (c *CreateOrderCommand) setQuantity(quantity int) error {
	if quantity <= 0 {
		return ErrQuantityIsInvalid
	}
	c.quantity = quantity
	return nil
}
