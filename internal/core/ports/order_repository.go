// Package ports defines the contracts between the fulfillment core and its
// adapters. Two store capabilities are kept apart on purpose: the client-scoped
// UnitOfWork for orders, inventory and the outbox, and the privileged FundsLedger
// for balance mutation.
package ports

import (
	"context"
	"errors"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
)

// ErrOrderNumberTaken is returned by Add when the generated display number
// collides with an existing order.
var ErrOrderNumberTaken = errors.New("order number already taken")

// OrderRepository persists order aggregates together with their items and history.
type OrderRepository interface {
	// Add inserts the order, its items and its history rows in one statement batch.
	Add(ctx context.Context, aggregate *order.Order) error

	// Get loads the order with items and history.
	Get(ctx context.Context, id kernel.UUID) (*order.Order, error)

	// UpdateStatus persists change as a conditional update keyed on change.From and
	// appends change.Entry. When the stored status is no longer change.From it
	// returns a StateTransitionError and writes nothing.
	UpdateStatus(ctx context.Context, aggregate *order.Order, change order.StatusChange) error

	// UpdatePayment persists the payment status of the order.
	UpdatePayment(ctx context.Context, aggregate *order.Order) error

	// Delete removes an order that never got its funds withheld. It exists only
	// for the creation compensation path.
	Delete(ctx context.Context, id kernel.UUID) error
}
