// Package inventory holds what the Inventory & Pricing Resolver returns for one
// catalog-inventory reference.
package inventory

import (
	"fmt"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"

	"github.com/shopspring/decimal"
)

// Snapshot is the current price and availability of one business inventory row.
// AvailableQuantity is quantity minus what open orders have reserved.
type Snapshot struct {
	InventoryID        kernel.UUID
	ItemID             kernel.UUID
	BusinessID         kernel.UUID
	BusinessLocationID kernel.UUID
	ItemName           string
	ItemDescription    string
	Price              decimal.Decimal
	Currency           kernel.Currency
	AvailableQuantity  int
	IsActive           bool
}

// EnsureCanSupply checks that the item is active and that enough stock is left,
// in that order.
func (s Snapshot) EnsureCanSupply(requested int) error {
	if requested <= 0 {
		return errs.NewValueIsInvalidErrorWithCause("quantity is invalid", fmt.Errorf("%d is not greater than 0", requested))
	}
	if !s.IsActive {
		return errs.NewBusinessRuleError("item_inactive", "Item is not currently available")
	}
	if requested > s.AvailableQuantity {
		return errs.NewBusinessRuleError("insufficient_quantity", fmt.Sprintf(
			"Insufficient quantity. Available: %d, Requested: %d", s.AvailableQuantity, requested))
	}
	return nil
}

// Quote is selling_price × quantity.
func (s Snapshot) Quote(quantity int) decimal.Decimal {
	return s.Price.Mul(decimal.NewFromInt(int64(quantity)))
}
