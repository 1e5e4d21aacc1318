package queries

import (
	"errors"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/guard"

	"github.com/shopspring/decimal"
)

var (
	ErrGetUncompletedOrdersQueryIsNotConstructed = errors.New(
		"GetUncompletedOrdersQuery must be created via NewGetUncompletedOrdersQuery constructor",
	)
)

// DefaultUncompletedOrdersLimit caps the listing when no limit is given.
const DefaultUncompletedOrdersLimit = 100

// GetUncompletedOrdersQuery lists orders still moving through fulfillment,
// oldest first. A business id narrows it to one business.
//
//	query := NewGetUncompletedOrdersQuery(nil, 0)
//	orders, err := handler.Handle(ctx, query)
type GetUncompletedOrdersQuery struct {
	businessID *kernel.UUID
	limit      int
	guard      guard.ConstructorGuard
}

// NewGetUncompletedOrdersQuery falls back to DefaultUncompletedOrdersLimit when
// limit is not positive.
func NewGetUncompletedOrdersQuery(businessID *kernel.UUID, limit int) GetUncompletedOrdersQuery {
	if limit <= 0 {
		limit = DefaultUncompletedOrdersLimit
	}
	return GetUncompletedOrdersQuery{businessID: businessID, limit: limit, guard: guard.NewConstructorGuard()}
}

func (q GetUncompletedOrdersQuery) Validate() error {
	return q.guard.Validate(ErrGetUncompletedOrdersQueryIsNotConstructed)
}

func (q GetUncompletedOrdersQuery) BusinessID() *kernel.UUID { return q.businessID }
func (q GetUncompletedOrdersQuery) Limit() int               { return q.limit }

type GetUncompletedOrdersQueryResponse struct {
	ID          kernel.UUID
	OrderNumber string
	Status      string
	Currency    string
	TotalAmount decimal.Decimal
	AgentID     *kernel.UUID
	CreatedAt   time.Time
}
