package queries

import (
	"context"
	"time"

	"fulfillment/internal/core/domain/model/order"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type GetUncompletedOrdersQueryHandler struct {
	db *gorm.DB
}

func NewGetUncompletedOrdersQueryHandler(db *gorm.DB) GetUncompletedOrdersQueryHandler {
	return GetUncompletedOrdersQueryHandler{db: db}
}

// Handle returns orders whose status is not terminal.
func (h GetUncompletedOrdersQueryHandler) Handle(
	ctx context.Context,
	query GetUncompletedOrdersQuery,
) ([]GetUncompletedOrdersQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	stmt := h.db.WithContext(ctx).
		Table("orders").
		Select("id, order_number, status, currency, total_amount, agent_id, created_at").
		Where("status NOT IN ?", terminalStatuses()).
		Order("created_at ASC").
		Limit(query.Limit())
	if businessID := query.BusinessID(); businessID != nil {
		stmt = stmt.Where("business_id = ?", businessID.Bytes())
	}

	rows, err := stmt.Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := make([]GetUncompletedOrdersQueryResponse, 0)
	for rows.Next() {
		var (
			resp    GetUncompletedOrdersQueryResponse
			id      uuid.UUID
			agentID *uuid.UUID
			total   decimal.Decimal
			created time.Time
		)
		if err = rows.Scan(&id, &resp.OrderNumber, &resp.Status, &resp.Currency, &total, &agentID, &created); err != nil {
			return nil, err
		}

		ids, idErr := toKernelIDs(id)
		if idErr != nil {
			return nil, idErr
		}
		resp.ID = ids[0]

		if resp.AgentID, idErr = toOptionalID(agentID); idErr != nil {
			return nil, idErr
		}
		resp.TotalAmount = total
		resp.CreatedAt = created
		orders = append(orders, resp)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return orders, nil
}

func terminalStatuses() []string {
	return []string{
		order.Delivered.String(),
		order.Failed.String(),
		order.Cancelled.String(),
		order.Refunded.String(),
		order.Resolved.String(),
	}
}
