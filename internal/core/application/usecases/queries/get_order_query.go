// Package queries contains the read side: plain SQL over the client-scoped
// pool, returning read models rather than aggregates.
package queries

import (
	"errors"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/guard"

	"github.com/shopspring/decimal"
)

var ErrGetOrderQueryIsNotConstructed = errors.New("GetOrderQuery must be created via NewGetOrderQuery constructor")

// GetOrderQuery fetches one order with its items and its full status history.
//
//	query, err := NewGetOrderQuery(id)
//	if err != nil {
//	    return err
//	}
//	view, err := handler.Handle(ctx, query)
type GetOrderQuery struct {
	orderID kernel.UUID
	guard   guard.ConstructorGuard
}

func NewGetOrderQuery(orderID kernel.UUID) (GetOrderQuery, error) {
	if err := orderID.Validate(); err != nil {
		return GetOrderQuery{}, err
	}
	return GetOrderQuery{orderID: orderID, guard: guard.NewConstructorGuard()}, nil
}

func (q GetOrderQuery) Validate() error {
	return q.guard.Validate(ErrGetOrderQueryIsNotConstructed)
}

func (q GetOrderQuery) OrderID() kernel.UUID {
	return q.orderID
}

type GetOrderQueryResponse struct {
	ID                  kernel.UUID
	OrderNumber         string
	ClientID            kernel.UUID
	BusinessID          kernel.UUID
	BusinessLocationID  kernel.UUID
	DeliveryAddressID   kernel.UUID
	AgentID             *kernel.UUID
	Status              string
	PaymentStatus       string
	PaymentMethod       string
	Currency            string
	Subtotal            decimal.Decimal
	TaxAmount           decimal.Decimal
	DeliveryFee         decimal.Decimal
	TotalAmount         decimal.Decimal
	AgentHoldAmount     decimal.Decimal
	SpecialInstructions string
	PreferredDeliveryAt *time.Time
	ActualDeliveryAt    *time.Time
	CreatedAt           time.Time
	UpdatedAt           time.Time
	Items               []OrderItemView
	History             []StatusHistoryView
}

type OrderItemView struct {
	ID                  kernel.UUID
	BusinessInventoryID kernel.UUID
	ItemID              kernel.UUID
	ItemName            string
	ItemDescription     string
	Quantity            int
	UnitPrice           decimal.Decimal
	TotalPrice          decimal.Decimal
}

type StatusHistoryView struct {
	Status        string
	Notes         string
	ChangedByType string
	ChangedByID   *kernel.UUID
	CreatedAt     time.Time
}
