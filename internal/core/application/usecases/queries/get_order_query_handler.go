package queries

import (
	"context"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type GetOrderQueryHandler struct {
	db *gorm.DB
}

func NewGetOrderQueryHandler(db *gorm.DB) GetOrderQueryHandler {
	return GetOrderQueryHandler{db: db}
}

type orderRow struct {
	ID                  uuid.UUID
	OrderNumber         string
	ClientID            uuid.UUID
	BusinessID          uuid.UUID
	BusinessLocationID  uuid.UUID
	DeliveryAddressID   uuid.UUID
	AgentID             *uuid.UUID
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
}

type itemRow struct {
	ID                  uuid.UUID
	BusinessInventoryID uuid.UUID
	ItemID              uuid.UUID
	ItemName            string
	ItemDescription     string
	Quantity            int
	UnitPrice           decimal.Decimal
	TotalPrice          decimal.Decimal
}

type historyRow struct {
	Status        string
	Notes         string
	ChangedByType string
	ChangedByID   *uuid.UUID
	CreatedAt     time.Time
}

// Handle returns a NotFoundError ("Order not found") for unknown ids.
// History is ordered oldest first.
func (h GetOrderQueryHandler) Handle(ctx context.Context, query GetOrderQuery) (GetOrderQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return GetOrderQueryResponse{}, err
	}

	db := h.db.WithContext(ctx)
	id := query.OrderID().Bytes()

	var order orderRow
	result := db.Raw(`
		SELECT
			id, order_number, client_id, business_id, business_location_id, delivery_address_id,
			agent_id, status, payment_status, payment_method, currency,
			subtotal, tax_amount, delivery_fee, total_amount, agent_hold_amount,
			special_instructions, preferred_delivery_at, actual_delivery_at, created_at, updated_at
		FROM orders
		WHERE id = ?
	`, id).Scan(&order)
	if result.Error != nil {
		return GetOrderQueryResponse{}, result.Error
	}
	if result.RowsAffected == 0 {
		return GetOrderQueryResponse{}, errs.NewNotFoundError("order", "Order not found")
	}

	var items []itemRow
	if err := db.Raw(`
		SELECT id, business_inventory_id, item_id, item_name, item_description, quantity, unit_price, total_price
		FROM order_items
		WHERE order_id = ?
		ORDER BY item_name, id
	`, id).Scan(&items).Error; err != nil {
		return GetOrderQueryResponse{}, err
	}

	var history []historyRow
	if err := db.Raw(`
		SELECT status, notes, changed_by_type, changed_by_id, created_at
		FROM order_status_history
		WHERE order_id = ?
		ORDER BY created_at ASC
	`, id).Scan(&history).Error; err != nil {
		return GetOrderQueryResponse{}, err
	}

	return toResponse(order, items, history)
}

func toResponse(o orderRow, items []itemRow, history []historyRow) (GetOrderQueryResponse, error) {
	ids, err := toKernelIDs(o.ID, o.ClientID, o.BusinessID, o.BusinessLocationID, o.DeliveryAddressID)
	if err != nil {
		return GetOrderQueryResponse{}, err
	}
	agentID, err := toOptionalID(o.AgentID)
	if err != nil {
		return GetOrderQueryResponse{}, err
	}

	resp := GetOrderQueryResponse{
		ID:                  ids[0],
		OrderNumber:         o.OrderNumber,
		ClientID:            ids[1],
		BusinessID:          ids[2],
		BusinessLocationID:  ids[3],
		DeliveryAddressID:   ids[4],
		AgentID:             agentID,
		Status:              o.Status,
		PaymentStatus:       o.PaymentStatus,
		PaymentMethod:       o.PaymentMethod,
		Currency:            o.Currency,
		Subtotal:            o.Subtotal,
		TaxAmount:           o.TaxAmount,
		DeliveryFee:         o.DeliveryFee,
		TotalAmount:         o.TotalAmount,
		AgentHoldAmount:     o.AgentHoldAmount,
		SpecialInstructions: o.SpecialInstructions,
		PreferredDeliveryAt: o.PreferredDeliveryAt,
		ActualDeliveryAt:    o.ActualDeliveryAt,
		CreatedAt:           o.CreatedAt,
		UpdatedAt:           o.UpdatedAt,
		Items:               make([]OrderItemView, 0, len(items)),
		History:             make([]StatusHistoryView, 0, len(history)),
	}

	for _, it := range items {
		itemIDs, idErr := toKernelIDs(it.ID, it.BusinessInventoryID, it.ItemID)
		if idErr != nil {
			return GetOrderQueryResponse{}, idErr
		}
		resp.Items = append(resp.Items, OrderItemView{
			ID:                  itemIDs[0],
			BusinessInventoryID: itemIDs[1],
			ItemID:              itemIDs[2],
			ItemName:            it.ItemName,
			ItemDescription:     it.ItemDescription,
			Quantity:            it.Quantity,
			UnitPrice:           it.UnitPrice,
			TotalPrice:          it.TotalPrice,
		})
	}

	for _, hr := range history {
		changedBy, idErr := toOptionalID(hr.ChangedByID)
		if idErr != nil {
			return GetOrderQueryResponse{}, idErr
		}
		resp.History = append(resp.History, StatusHistoryView{
			Status:        hr.Status,
			Notes:         hr.Notes,
			ChangedByType: hr.ChangedByType,
			ChangedByID:   changedBy,
			CreatedAt:     hr.CreatedAt,
		})
	}

	return resp, nil
}

func toKernelIDs(raw ...uuid.UUID) ([]kernel.UUID, error) {
	ids := make([]kernel.UUID, 0, len(raw))
	for _, r := range raw {
		id, err := kernel.UUIDFromBytes(r[:])
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func toOptionalID(raw *uuid.UUID) (*kernel.UUID, error) {
	if raw == nil {
		return nil, nil
	}
	id, err := kernel.UUIDFromBytes(raw[:])
	if err != nil {
		return nil, err
	}
	return &id, nil
}
