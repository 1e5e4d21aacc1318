package order

import (
	"fmt"
	"slices"
	"strings"

	"fulfillment/internal/pkg/errs"
)

// Transition names one step of the fulfillment state machine.
type Transition int

const (
	UnknownTransition Transition = iota
	Confirm
	StartPreparing
	CompletePreparation
	AssignToAgent
	PickUp
	StartTransit
	MarkOutForDelivery
	Deliver
	FailDelivery
	Cancel
	Refund
	// The failed delivery resolutions name who is at fault.
	ResolveAgentFault
	ResolveItemFault
	ResolveClientFault
)

type transitionRule struct {
	name        string
	from        []Status
	to          Status
	guardAction string
	defaultNote string
	successText string
	payment     PaymentStatus
	inventoryOp InventoryOp
}

// IsFailureResolution reports whether t settles a failed delivery.
func (t Transition) IsFailureResolution() bool {
	return t == ResolveAgentFault || t == ResolveItemFault || t == ResolveClientFault
}

// InventoryOp is the effect a transition has on the reserved stock of the order items.
type InventoryOp int

const (
	InventoryUnchanged InventoryOp = iota
	// InventoryRelease returns the reserved quantity to available stock.
	InventoryRelease
	// InventoryConsume removes the reserved quantity from stock for good.
	InventoryConsume
)

var cancellable = []Status{Pending, Confirmed, Preparing, ReadyForPickup, AssignedToAgent, PickedUp, InTransit, OutForDelivery}

//nolint:gochecknoglobals // the transition table is immutable
var transitionTable = map[Transition]transitionRule{
	Confirm: {
		name: "confirm", from: []Status{Pending}, to: Confirmed,
		guardAction: "confirm order",
		defaultNote: "Order confirmed by business",
		successText: "Order confirmed successfully",
	},
	StartPreparing: {
		name: "start_preparing", from: []Status{Confirmed}, to: Preparing,
		guardAction: "start preparing order",
		defaultNote: "Order preparation started",
		successText: "Order preparation started successfully",
	},
	CompletePreparation: {
		name: "complete_preparation", from: []Status{Preparing}, to: ReadyForPickup,
		guardAction: "complete preparation for order",
		defaultNote: "Order preparation completed, ready for pickup",
		successText: "Order preparation completed successfully",
	},
	AssignToAgent: {
		name: "assign_to_agent", from: []Status{ReadyForPickup}, to: AssignedToAgent,
		guardAction: "get order",
		defaultNote: "Order assigned to agent",
		successText: "Order assigned successfully",
	},
	PickUp: {
		name: "pick_up", from: []Status{AssignedToAgent}, to: PickedUp,
		guardAction: "pick up order",
		defaultNote: "Order picked up by agent",
		successText: "Order picked up successfully",
	},
	StartTransit: {
		name: "start_transit", from: []Status{PickedUp}, to: InTransit,
		guardAction: "start transit for order",
		defaultNote: "Order in transit to customer",
		successText: "Order transit started successfully",
	},
	MarkOutForDelivery: {
		name: "out_for_delivery", from: []Status{InTransit}, to: OutForDelivery,
		guardAction: "mark order as out for delivery",
		defaultNote: "Agent out for delivery to customer",
		successText: "Order marked as out for delivery successfully",
	},
	Deliver: {
		name: "deliver", from: []Status{OutForDelivery}, to: Delivered,
		guardAction: "deliver order",
		defaultNote: "Order delivered successfully to customer",
		successText: "Order delivered successfully",
		payment:     PaymentCaptured,
		inventoryOp: InventoryConsume,
	},
	FailDelivery: {
		name: "fail_delivery", from: []Status{OutForDelivery}, to: Failed,
		guardAction: "mark delivery as failed",
		defaultNote: "Delivery failed - customer not available or other issue",
		successText: "Delivery marked as failed",
		payment:     PaymentReleased,
		inventoryOp: InventoryRelease,
	},
	Cancel: {
		name: "cancel", from: cancellable, to: Cancelled,
		guardAction: "cancel order",
		defaultNote: "Order cancelled",
		successText: "Order cancelled successfully",
		payment:     PaymentReleased,
		inventoryOp: InventoryRelease,
	},
	Refund: {
		name: "refund", from: []Status{Delivered, Cancelled}, to: Refunded,
		guardAction: "refund order",
		defaultNote: "Order refunded",
		successText: "Order refunded successfully",
		payment:     PaymentRefunded,
	},
	ResolveAgentFault: {
		name: "resolve_agent_fault", from: []Status{Failed}, to: Resolved,
		guardAction: "resolve failed delivery for order",
		defaultNote: "Failed delivery resolved: agent fault",
		successText: "Failed delivery resolved successfully",
	},
	ResolveItemFault: {
		name: "resolve_item_fault", from: []Status{Failed}, to: Resolved,
		guardAction: "resolve failed delivery for order",
		defaultNote: "Failed delivery resolved: item fault",
		successText: "Failed delivery resolved successfully",
	},
	ResolveClientFault: {
		name: "resolve_client_fault", from: []Status{Failed}, to: Resolved,
		guardAction: "resolve failed delivery for order",
		defaultNote: "Failed delivery resolved: client fault",
		successText: "Failed delivery resolved successfully",
	},
}

// Transitions lists every valid transition in happy-path order.
func Transitions() []Transition {
	return []Transition{
		Confirm, StartPreparing, CompletePreparation, AssignToAgent, PickUp, StartTransit,
		MarkOutForDelivery, Deliver, FailDelivery, Cancel, Refund,
		ResolveAgentFault, ResolveItemFault, ResolveClientFault,
	}
}

func (t Transition) rule() (transitionRule, bool) {
	r, ok := transitionTable[t]
	return r, ok
}

func (t Transition) Validate() error {
	if _, ok := t.rule(); !ok {
		return errs.NewValueIsInvalidErrorWithCause("transition is invalid", fmt.Errorf("%d is not a valid transition", t))
	}
	return nil
}

func (t Transition) String() string {
	if r, ok := t.rule(); ok {
		return r.name
	}
	return "unknown"
}

// ParseTransition accepts snake_case ("start_preparing") and kebab-case ("start-preparing").
func ParseTransition(s string) (Transition, error) {
	name := strings.ReplaceAll(strings.ToLower(s), "-", "_")
	for t, r := range transitionTable {
		if r.name == name {
			return t, nil
		}
	}
	return UnknownTransition, errs.NewValueIsInvalidErrorWithCause("transition is invalid", fmt.Errorf("%q is not a valid transition", s))
}

// Target is the status an order ends up in after the transition.
func (t Transition) Target() Status {
	r, _ := t.rule()
	return r.to
}

// Predecessors returns a copy of the statuses the transition may start from.
func (t Transition) Predecessors() []Status {
	r, _ := t.rule()
	return slices.Clone(r.from)
}

func (t Transition) DefaultNote() string {
	r, _ := t.rule()
	return r.defaultNote
}

func (t Transition) SuccessMessage() string {
	r, _ := t.rule()
	return r.successText
}

// Payment is the payment status set by the transition, PaymentUnknown when unchanged.
func (t Transition) Payment() PaymentStatus {
	r, _ := t.rule()
	return r.payment
}

func (t Transition) InventoryOp() InventoryOp {
	r, _ := t.rule()
	return r.inventoryOp
}

// Guard checks that from is a legal predecessor and returns the target status.
// It never mutates anything.
func (t Transition) Guard(from Status) (Status, error) {
	r, ok := t.rule()
	if !ok {
		return Unknown, t.Validate()
	}
	if !slices.Contains(r.from, from) {
		return Unknown, errs.NewStateTransitionError(
			from.String(),
			r.name,
			fmt.Sprintf("Cannot %s in %s status", r.guardAction, from.String()),
		)
	}
	return r.to, nil
}

// Note joins the transition's default note with the caller supplied one.
func (t Transition) Note(extra string) string {
	base := t.DefaultNote()
	extra = strings.TrimSpace(extra)
	if extra == "" {
		return base
	}
	return base + ". " + extra
}
