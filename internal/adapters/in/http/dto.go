package http

import (
	"time"

	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/application/usecases/queries"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"

	openapi_types "github.com/oapi-codegen/runtime/types"
)

type NewOrder struct {
	BusinessInventoryID   openapi_types.UUID `json:"business_inventory_id"`
	Quantity              int                `json:"quantity"`
	SpecialInstructions   string             `json:"special_instructions,omitempty"`
	PreferredDeliveryTime *time.Time         `json:"preferred_delivery_time,omitempty"`
}

type TransitionRequest struct {
	Notes string `json:"notes,omitempty"`
}

type BatchRequest struct {
	OrderIDs []string `json:"order_ids"`
	Notes    string   `json:"notes,omitempty"`
}

type OrderItem struct {
	ID                  openapi_types.UUID `json:"id"`
	BusinessInventoryID openapi_types.UUID `json:"business_inventory_id"`
	ItemID              openapi_types.UUID `json:"item_id"`
	ItemName            string             `json:"item_name"`
	ItemDescription     string             `json:"item_description,omitempty"`
	Quantity            int                `json:"quantity"`
	UnitPrice           string             `json:"unit_price"`
	TotalPrice          string             `json:"total_price"`
}

type StatusHistory struct {
	Status        string              `json:"status"`
	Notes         string              `json:"notes,omitempty"`
	ChangedByType string              `json:"changed_by_type"`
	ChangedBy     *openapi_types.UUID `json:"changed_by,omitempty"`
	CreatedAt     time.Time           `json:"created_at"`
}

// Order carries money as fixed two-decimal strings.
type Order struct {
	ID                    openapi_types.UUID  `json:"id"`
	OrderNumber           string              `json:"order_number"`
	ClientID              openapi_types.UUID  `json:"client_id"`
	BusinessID            openapi_types.UUID  `json:"business_id"`
	BusinessLocationID    openapi_types.UUID  `json:"business_location_id"`
	DeliveryAddressID     openapi_types.UUID  `json:"delivery_address_id"`
	AgentID               *openapi_types.UUID `json:"agent_id,omitempty"`
	Status                string              `json:"status"`
	PaymentStatus         string              `json:"payment_status"`
	PaymentMethod         string              `json:"payment_method"`
	Currency              string              `json:"currency"`
	Subtotal              string              `json:"subtotal"`
	TaxAmount             string              `json:"tax_amount"`
	DeliveryFee           string              `json:"delivery_fee"`
	TotalAmount           string              `json:"total_amount"`
	AgentHoldAmount       string              `json:"agent_hold_amount"`
	SpecialInstructions   string              `json:"special_instructions,omitempty"`
	PreferredDeliveryTime *time.Time          `json:"preferred_delivery_time,omitempty"`
	ActualDeliveryTime    *time.Time          `json:"actual_delivery_time,omitempty"`
	CreatedAt             time.Time           `json:"created_at"`
	UpdatedAt             time.Time           `json:"updated_at"`
	Items                 []OrderItem         `json:"items"`
}

type OrderDetails struct {
	Order
	StatusHistory []StatusHistory `json:"status_history"`
}

type OrderSummary struct {
	ID          openapi_types.UUID  `json:"id"`
	OrderNumber string              `json:"order_number"`
	Status      string              `json:"status"`
	Currency    string              `json:"currency"`
	TotalAmount string              `json:"total_amount"`
	AgentID     *openapi_types.UUID `json:"agent_id,omitempty"`
	CreatedAt   time.Time           `json:"created_at"`
}

type TransitionResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Order   Order  `json:"order"`
}

type BatchItemResult struct {
	OrderID string `json:"order_id"`
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

type BatchResult struct {
	Success bool              `json:"success"`
	Results []BatchItemResult `json:"results"`
}

func optionalID(id *kernel.UUID) *openapi_types.UUID {
	if id == nil {
		return nil
	}
	raw := id.Bytes()
	return &raw
}

func orderFromDomain(o *order.Order) Order {
	items := make([]OrderItem, 0, len(o.Items()))
	for _, it := range o.Items() {
		items = append(items, OrderItem{
			ID:                  it.ID().Bytes(),
			BusinessInventoryID: it.InventoryID().Bytes(),
			ItemID:              it.ItemID().Bytes(),
			ItemName:            it.Name(),
			ItemDescription:     it.Description(),
			Quantity:            it.Quantity(),
			UnitPrice:           it.UnitPrice().StringFixed(2),
			TotalPrice:          it.TotalPrice().StringFixed(2),
		})
	}

	parties := o.Parties()
	return Order{
		ID:                    o.ID().Bytes(),
		OrderNumber:           o.Number(),
		ClientID:              parties.ClientID.Bytes(),
		BusinessID:            parties.BusinessID.Bytes(),
		BusinessLocationID:    parties.BusinessLocationID.Bytes(),
		DeliveryAddressID:     parties.DeliveryAddressID.Bytes(),
		AgentID:               optionalID(o.AgentID()),
		Status:                o.Status().String(),
		PaymentStatus:         o.PaymentStatus().String(),
		PaymentMethod:         o.PaymentMethod(),
		Currency:              o.Currency().Code(),
		Subtotal:              o.Subtotal().StringFixed(2),
		TaxAmount:             o.TaxAmount().StringFixed(2),
		DeliveryFee:           o.DeliveryFee().StringFixed(2),
		TotalAmount:           o.TotalAmount().StringFixed(2),
		AgentHoldAmount:       o.AgentHoldAmount().StringFixed(2),
		SpecialInstructions:   o.SpecialInstructions(),
		PreferredDeliveryTime: o.PreferredDeliveryAt(),
		ActualDeliveryTime:    o.ActualDeliveryAt(),
		CreatedAt:             o.CreatedAt(),
		UpdatedAt:             o.UpdatedAt(),
		Items:                 items,
	}
}

func orderFromView(v queries.GetOrderQueryResponse) OrderDetails {
	items := make([]OrderItem, 0, len(v.Items))
	for _, it := range v.Items {
		items = append(items, OrderItem{
			ID:                  it.ID.Bytes(),
			BusinessInventoryID: it.BusinessInventoryID.Bytes(),
			ItemID:              it.ItemID.Bytes(),
			ItemName:            it.ItemName,
			ItemDescription:     it.ItemDescription,
			Quantity:            it.Quantity,
			UnitPrice:           it.UnitPrice.StringFixed(2),
			TotalPrice:          it.TotalPrice.StringFixed(2),
		})
	}

	history := make([]StatusHistory, 0, len(v.History))
	for _, h := range v.History {
		history = append(history, StatusHistory{
			Status:        h.Status,
			Notes:         h.Notes,
			ChangedByType: h.ChangedByType,
			ChangedBy:     optionalID(h.ChangedByID),
			CreatedAt:     h.CreatedAt,
		})
	}

	return OrderDetails{
		Order: Order{
			ID:                    v.ID.Bytes(),
			OrderNumber:           v.OrderNumber,
			ClientID:              v.ClientID.Bytes(),
			BusinessID:            v.BusinessID.Bytes(),
			BusinessLocationID:    v.BusinessLocationID.Bytes(),
			DeliveryAddressID:     v.DeliveryAddressID.Bytes(),
			AgentID:               optionalID(v.AgentID),
			Status:                v.Status,
			PaymentStatus:         v.PaymentStatus,
			PaymentMethod:         v.PaymentMethod,
			Currency:              v.Currency,
			Subtotal:              v.Subtotal.StringFixed(2),
			TaxAmount:             v.TaxAmount.StringFixed(2),
			DeliveryFee:           v.DeliveryFee.StringFixed(2),
			TotalAmount:           v.TotalAmount.StringFixed(2),
			AgentHoldAmount:       v.AgentHoldAmount.StringFixed(2),
			SpecialInstructions:   v.SpecialInstructions,
			PreferredDeliveryTime: v.PreferredDeliveryAt,
			ActualDeliveryTime:    v.ActualDeliveryAt,
			CreatedAt:             v.CreatedAt,
			UpdatedAt:             v.UpdatedAt,
			Items:                 items,
		},
		StatusHistory: history,
	}
}

func summaryFromView(v queries.GetUncompletedOrdersQueryResponse) OrderSummary {
	return OrderSummary{
		ID:          v.ID.Bytes(),
		OrderNumber: v.OrderNumber,
		Status:      v.Status,
		Currency:    v.Currency,
		TotalAmount: v.TotalAmount.StringFixed(2),
		AgentID:     optionalID(v.AgentID),
		CreatedAt:   v.CreatedAt,
	}
}

func batchFromResult(r commands.BatchResult) BatchResult {
	results := make([]BatchItemResult, 0, len(r.Results))
	for _, item := range r.Results {
		out := BatchItemResult{OrderID: item.OrderID, Success: item.Success}
		if item.Success {
			out.Message = item.Message
		} else {
			out.Error = item.Message
		}
		results = append(results, out)
	}
	return BatchResult{Success: r.Success, Results: results}
}
