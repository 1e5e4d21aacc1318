package ports

import (
	"context"

	"fulfillment/internal/core/domain/model/inventory"
	"fulfillment/internal/core/domain/model/kernel"
)

// InventoryResolver is the Inventory & Pricing Resolver. It fails with a
// NotFoundError when ref does not exist.
type InventoryResolver interface {
	Resolve(ctx context.Context, ref kernel.UUID) (inventory.Snapshot, error)
}

// InventoryRepository adjusts reserved stock. Every method is a single
// conditional update; Reserve fails with a BusinessRuleError when fewer than
// quantity units are still available.
type InventoryRepository interface {
	Reserve(ctx context.Context, inventoryID kernel.UUID, quantity int) error
	Release(ctx context.Context, inventoryID kernel.UUID, quantity int) error
	Consume(ctx context.Context, inventoryID kernel.UUID, quantity int) error
}
