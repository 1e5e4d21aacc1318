// Package orderrepo persists the order aggregate: the orders row, its item lines
// and its status history.
package orderrepo

import (
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderNumberIndex is the unique index guarding order numbers.
const OrderNumberIndex = "idx_orders_order_number"

type OrderDTO struct {
	ID                  uuid.UUID       `gorm:"type:uuid;primaryKey"`
	OrderNumber         string          `gorm:"size:8;not null;uniqueIndex:idx_orders_order_number"`
	ClientID            uuid.UUID       `gorm:"type:uuid;not null;index"`
	ClientAccountID     uuid.UUID       `gorm:"type:uuid;not null"`
	BusinessID          uuid.UUID       `gorm:"type:uuid;not null;index"`
	BusinessLocationID  uuid.UUID       `gorm:"type:uuid;not null"`
	DeliveryAddressID   uuid.UUID       `gorm:"type:uuid;not null"`
	AgentID             *uuid.UUID      `gorm:"type:uuid;index"`
	AgentAccountID      *uuid.UUID      `gorm:"type:uuid"`
	AgentHoldAmount     decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0"`
	Currency            string          `gorm:"size:3;not null"`
	Subtotal            decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	TaxAmount           decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0"`
	DeliveryFee         decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0"`
	TotalAmount         decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Status              string          `gorm:"size:32;not null;index"`
	PaymentMethod       string          `gorm:"size:32;not null"`
	PaymentStatus       string          `gorm:"size:32;not null"`
	SpecialInstructions string
	PreferredDeliveryAt *time.Time
	EstimatedDeliveryAt *time.Time
	ActualDeliveryAt    *time.Time
	CreatedAt           time.Time    `gorm:"not null"`
	UpdatedAt           time.Time    `gorm:"not null"`
	Items               []ItemDTO    `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	History             []HistoryDTO `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

func (OrderDTO) TableName() string {
	return "orders"
}

type ItemDTO struct {
	ID                  uuid.UUID `gorm:"type:uuid;primaryKey"`
	OrderID             uuid.UUID `gorm:"type:uuid;not null;index"`
	BusinessInventoryID uuid.UUID `gorm:"type:uuid;not null"`
	ItemID              uuid.UUID `gorm:"type:uuid;not null"`
	ItemName            string    `gorm:"not null"`
	ItemDescription     string
	Quantity            int             `gorm:"not null;check:chk_order_items_quantity,quantity > 0"`
	UnitPrice           decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	TotalPrice          decimal.Decimal `gorm:"type:numeric(12,2);not null"`
}

func (ItemDTO) TableName() string {
	return "order_items"
}

type HistoryDTO struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	OrderID       uuid.UUID `gorm:"type:uuid;not null;index"`
	Status        string    `gorm:"size:32;not null"`
	Notes         string
	ChangedByType string     `gorm:"size:16;not null"`
	ChangedByID   *uuid.UUID `gorm:"type:uuid"`
	CreatedAt     time.Time  `gorm:"not null;index"`
}

func (HistoryDTO) TableName() string {
	return "order_status_history"
}

func fromDomain(o *order.Order) OrderDTO {
	p := o.Parties()
	dto := OrderDTO{
		ID:                  o.ID().Bytes(),
		OrderNumber:         o.Number(),
		ClientID:            p.ClientID.Bytes(),
		ClientAccountID:     p.ClientAccountID.Bytes(),
		BusinessID:          p.BusinessID.Bytes(),
		BusinessLocationID:  p.BusinessLocationID.Bytes(),
		DeliveryAddressID:   p.DeliveryAddressID.Bytes(),
		AgentID:             rawID(o.AgentID()),
		AgentAccountID:      rawID(o.AgentAccountID()),
		AgentHoldAmount:     o.AgentHoldAmount(),
		Currency:            o.Currency().Code(),
		Subtotal:            o.Subtotal(),
		TaxAmount:           o.TaxAmount(),
		DeliveryFee:         o.DeliveryFee(),
		TotalAmount:         o.TotalAmount(),
		Status:              o.Status().String(),
		PaymentMethod:       o.PaymentMethod(),
		PaymentStatus:       o.PaymentStatus().String(),
		SpecialInstructions: o.SpecialInstructions(),
		PreferredDeliveryAt: o.PreferredDeliveryAt(),
		EstimatedDeliveryAt: o.EstimatedDeliveryAt(),
		ActualDeliveryAt:    o.ActualDeliveryAt(),
		CreatedAt:           o.CreatedAt(),
		UpdatedAt:           o.UpdatedAt(),
	}

	for _, item := range o.Items() {
		dto.Items = append(dto.Items, ItemDTO{
			ID:                  item.ID().Bytes(),
			OrderID:             dto.ID,
			BusinessInventoryID: item.InventoryID().Bytes(),
			ItemID:              item.ItemID().Bytes(),
			ItemName:            item.Name(),
			ItemDescription:     item.Description(),
			Quantity:            item.Quantity(),
			UnitPrice:           item.UnitPrice(),
			TotalPrice:          item.TotalPrice(),
		})
	}

	for _, entry := range o.History() {
		dto.History = append(dto.History, historyFromDomain(o.ID(), entry))
	}

	return dto
}

func historyFromDomain(orderID kernel.UUID, entry order.HistoryEntry) HistoryDTO {
	return HistoryDTO{
		ID:            entry.ID().Bytes(),
		OrderID:       orderID.Bytes(),
		Status:        entry.Status().String(),
		Notes:         entry.Notes(),
		ChangedByType: entry.ActorType().String(),
		ChangedByID:   rawID(entry.ActorID()),
		CreatedAt:     entry.CreatedAt(),
	}
}

func toDomain(dto OrderDTO) (*order.Order, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	parties, err := partiesFromDTO(dto)
	if err != nil {
		return nil, err
	}

	currency, err := kernel.NewCurrency(dto.Currency)
	if err != nil {
		return nil, err
	}

	status, err := order.ParseStatus(dto.Status)
	if err != nil {
		return nil, err
	}

	paymentStatus, err := order.ParsePaymentStatus(dto.PaymentStatus)
	if err != nil {
		return nil, err
	}

	agentID, err := domainID(dto.AgentID)
	if err != nil {
		return nil, err
	}

	agentAccountID, err := domainID(dto.AgentAccountID)
	if err != nil {
		return nil, err
	}

	items := make([]order.Item, 0, len(dto.Items))
	for _, i := range dto.Items {
		item, itemErr := itemToDomain(i)
		if itemErr != nil {
			return nil, itemErr
		}
		items = append(items, item)
	}

	history := make([]order.HistoryEntry, 0, len(dto.History))
	for _, h := range dto.History {
		entry, historyErr := historyToDomain(h)
		if historyErr != nil {
			return nil, historyErr
		}
		history = append(history, entry)
	}

	return order.RestoreOrder(order.State{
		ID:                  id,
		Number:              dto.OrderNumber,
		Parties:             parties,
		Currency:            currency,
		Subtotal:            dto.Subtotal,
		TaxAmount:           dto.TaxAmount,
		DeliveryFee:         dto.DeliveryFee,
		TotalAmount:         dto.TotalAmount,
		Status:              status,
		PaymentMethod:       dto.PaymentMethod,
		PaymentStatus:       paymentStatus,
		AgentID:             agentID,
		AgentAccountID:      agentAccountID,
		AgentHoldAmount:     dto.AgentHoldAmount,
		SpecialInstructions: dto.SpecialInstructions,
		PreferredDeliveryAt: dto.PreferredDeliveryAt,
		EstimatedDeliveryAt: dto.EstimatedDeliveryAt,
		ActualDeliveryAt:    dto.ActualDeliveryAt,
		Items:               items,
		History:             history,
		CreatedAt:           dto.CreatedAt,
		UpdatedAt:           dto.UpdatedAt,
	})
}

func partiesFromDTO(dto OrderDTO) (order.Parties, error) {
	var p order.Parties
	raw := []struct {
		dst *kernel.UUID
		src uuid.UUID
	}{
		{&p.ClientID, dto.ClientID},
		{&p.ClientAccountID, dto.ClientAccountID},
		{&p.BusinessID, dto.BusinessID},
		{&p.BusinessLocationID, dto.BusinessLocationID},
		{&p.DeliveryAddressID, dto.DeliveryAddressID},
	}
	for _, r := range raw {
		id, err := kernel.UUIDFromBytes(r.src[:])
		if err != nil {
			return order.Parties{}, err
		}
		*r.dst = id
	}
	return p, nil
}

func itemToDomain(dto ItemDTO) (order.Item, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return order.Item{}, err
	}
	inventoryID, err := kernel.UUIDFromBytes(dto.BusinessInventoryID[:])
	if err != nil {
		return order.Item{}, err
	}
	itemID, err := kernel.UUIDFromBytes(dto.ItemID[:])
	if err != nil {
		return order.Item{}, err
	}
	return order.RestoreItem(id, inventoryID, itemID, dto.ItemName, dto.ItemDescription,
		dto.Quantity, dto.UnitPrice, dto.TotalPrice)
}

func historyToDomain(dto HistoryDTO) (order.HistoryEntry, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return order.HistoryEntry{}, err
	}
	status, err := order.ParseStatus(dto.Status)
	if err != nil {
		return order.HistoryEntry{}, err
	}
	actorType, err := kernel.ParseActorType(dto.ChangedByType)
	if err != nil {
		return order.HistoryEntry{}, err
	}
	actorID, err := domainID(dto.ChangedByID)
	if err != nil {
		return order.HistoryEntry{}, err
	}
	return order.RestoreHistoryEntry(id, status, dto.Notes, actorType, actorID, dto.CreatedAt)
}

func rawID(id *kernel.UUID) *uuid.UUID {
	if id == nil {
		return nil
	}
	raw := id.Bytes()
	return &raw
}

func domainID(raw *uuid.UUID) (*kernel.UUID, error) {
	if raw == nil {
		return nil, nil //nolint:nilnil // absent optional reference
	}
	id, err := kernel.UUIDFromBytes(raw[:])
	if err != nil {
		return nil, err
	}
	return &id, nil
}
