package order

import (
	"errors"
	"fmt"
	"strings"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"

	"github.com/shopspring/decimal"
)

var ErrItemIsNotConstructed = errs.NewValueIsRequiredError("order item must be created via NewItem")

// Item is one purchased line. Name and description are a snapshot of the
// catalog at purchase time, so later catalog edits do not leak into the order.
// Items are immutable once created.
type Item struct {
	id          kernel.UUID
	inventoryID kernel.UUID
	itemID      kernel.UUID
	name        string
	description string
	quantity    int
	unitPrice   decimal.Decimal
	totalPrice  decimal.Decimal
	guard       guard.ConstructorGuard
}

// NewItem computes total_price = quantity × unit_price.
func NewItem(
	id, inventoryID, itemID kernel.UUID,
	name, description string,
	quantity int,
	unitPrice decimal.Decimal,
) (Item, error) {
	if err := errors.Join(
		id.Validate(),
		inventoryID.Validate(),
		itemID.Validate(),
		validateName(name),
		validateQuantity(quantity),
		validateUnitPrice(unitPrice),
	); err != nil {
		return Item{}, err
	}

	return Item{
		id:          id,
		inventoryID: inventoryID,
		itemID:      itemID,
		name:        name,
		description: description,
		quantity:    quantity,
		unitPrice:   unitPrice,
		totalPrice:  unitPrice.Mul(decimal.NewFromInt(int64(quantity))),
		guard:       guard.NewConstructorGuard(),
	}, nil
}

// RestoreItem rebuilds a persisted line and checks its stored total.
func RestoreItem(
	id, inventoryID, itemID kernel.UUID,
	name, description string,
	quantity int,
	unitPrice, totalPrice decimal.Decimal,
) (Item, error) {
	item, err := NewItem(id, inventoryID, itemID, name, description, quantity, unitPrice)
	if err != nil {
		return Item{}, err
	}
	if !item.totalPrice.Equal(totalPrice) {
		return Item{}, errs.NewInvariantViolationError("order item total",
			fmt.Errorf("stored %s, expected %s", totalPrice, item.totalPrice))
	}
	return item, nil
}

func (i Item) Validate() error {
	return i.guard.Validate(ErrItemIsNotConstructed)
}

func (i Item) ID() kernel.UUID             { return i.id }
func (i Item) InventoryID() kernel.UUID    { return i.inventoryID }
func (i Item) ItemID() kernel.UUID         { return i.itemID }
func (i Item) Name() string                { return i.name }
func (i Item) Description() string         { return i.description }
func (i Item) Quantity() int               { return i.quantity }
func (i Item) UnitPrice() decimal.Decimal  { return i.unitPrice }
func (i Item) TotalPrice() decimal.Decimal { return i.totalPrice }

func validateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return errs.NewValueIsRequiredError("item name")
	}
	return nil
}

func validateQuantity(quantity int) error {
	if quantity <= 0 {
		return errs.NewValueIsInvalidErrorWithCause("quantity is invalid", fmt.Errorf("%d is not greater than 0", quantity))
	}
	return nil
}

func validateUnitPrice(price decimal.Decimal) error {
	if price.IsNegative() {
		return errs.NewValueIsInvalidErrorWithCause("unit price is invalid", fmt.Errorf("%s is negative", price))
	}
	return nil
}
