package commands

import (
	"encoding/json"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/ports"
)

const (
	EventOrderCreated       = "order.created"
	EventOrderStatusChanged = "order.status_changed"
)

type orderEvent struct {
	Event         string    `json:"event"`
	OrderID       string    `json:"order_id"`
	OrderNumber   string    `json:"order_number"`
	Transition    string    `json:"transition,omitempty"`
	FromStatus    string    `json:"from_status,omitempty"`
	Status        string    `json:"status"`
	PaymentStatus string    `json:"payment_status"`
	TotalAmount   string    `json:"total_amount"`
	Currency      string    `json:"currency"`
	ActorType     string    `json:"actor_type"`
	ActorID       *string   `json:"actor_id,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}

func newOrderCreatedEvent(o *order.Order, actor kernel.Actor) (ports.OutboxEvent, error) {
	return newOutboxEvent(o, EventOrderCreated, orderEvent{
		ActorType: actor.Type().String(),
		ActorID:   idString(actor.ID()),
	})
}

func newStatusChangedEvent(o *order.Order, change order.StatusChange) (ports.OutboxEvent, error) {
	return newOutboxEvent(o, EventOrderStatusChanged, orderEvent{
		Transition: change.Transition.String(),
		FromStatus: change.From.String(),
		ActorType:  change.Entry.ActorType().String(),
		ActorID:    idString(change.Entry.ActorID()),
	})
}

func newOutboxEvent(o *order.Order, eventType string, e orderEvent) (ports.OutboxEvent, error) {
	now := time.Now().UTC()
	e.Event = eventType
	e.OrderID = o.ID().String()
	e.OrderNumber = o.Number()
	e.Status = o.Status().String()
	e.PaymentStatus = o.PaymentStatus().String()
	e.TotalAmount = o.TotalAmount().StringFixed(2)
	e.Currency = o.Currency().Code()
	e.OccurredAt = now

	payload, err := json.Marshal(e)
	if err != nil {
		return ports.OutboxEvent{}, err
	}

	return ports.OutboxEvent{
		ID:          kernel.NewUUID(),
		AggregateID: o.ID(),
		Type:        eventType,
		Payload:     payload,
		CreatedAt:   now,
	}, nil
}

func idString(id *kernel.UUID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}
