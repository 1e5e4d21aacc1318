package order

import (
	"fmt"

	"fulfillment/internal/pkg/errs"
)

// Status is the lifecycle state of an order.
//
// Happy path:
//
//	Pending -> Confirmed -> Preparing -> ReadyForPickup -> AssignedToAgent
//	        -> PickedUp -> InTransit -> OutForDelivery -> Delivered
//
// Side branches:
//
//	OutForDelivery -> Failed
//	Pending..OutForDelivery -> Cancelled
//	Delivered | Cancelled -> Refunded
//	Failed -> Resolved
//
// Status only changes through a Transition (see transition.go).
type Status int

const (
	// Unknown (0) catches uninitialised values.
	Unknown Status = iota
	Pending
	Confirmed
	Preparing
	ReadyForPickup
	AssignedToAgent
	PickedUp
	InTransit
	OutForDelivery
	Delivered
	Failed
	Cancelled
	Refunded
	// Resolved is a failed delivery whose fault has been settled.
	Resolved
)

// getValidStatusStrings maps every valid status to its persisted name.
func getValidStatusStrings() map[Status]string {
	//nolint:exhaustive // Unknown is intentionally excluded as it's invalid
	return map[Status]string{
		Pending:         "pending",
		Confirmed:       "confirmed",
		Preparing:       "preparing",
		ReadyForPickup:  "ready_for_pickup",
		AssignedToAgent: "assigned_to_agent",
		PickedUp:        "picked_up",
		InTransit:       "in_transit",
		OutForDelivery:  "out_for_delivery",
		Delivered:       "delivered",
		Failed:          "failed",
		Cancelled:       "cancelled",
		Refunded:        "refunded",
		Resolved:        "resolved",
	}
}

// Validate rejects Unknown and any value outside the enum.
func (s Status) Validate() error {
	if _, ok := getValidStatusStrings()[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("status is invalid", fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

// String returns the persisted, snake_case name of the status ("ready_for_pickup").
func (s Status) String() string {
	if str, ok := getValidStatusStrings()[s]; ok {
		return str
	}
	return "unknown"
}

// ParseStatus is the inverse of String.
func ParseStatus(s string) (Status, error) {
	for status, name := range getValidStatusStrings() {
		if name == s {
			return status, nil
		}
	}
	return Unknown, errs.NewValueIsInvalidErrorWithCause("status is invalid", fmt.Errorf("%q is not a valid status", s))
}

// IsTerminal reports whether no forward fulfillment step can follow.
// Refund is not a fulfillment step, so Delivered and Cancelled count as terminal.
func (s Status) IsTerminal() bool {
	switch s {
	case Delivered, Failed, Cancelled, Refunded, Resolved:
		return true
	default:
		return false
	}
}

// HasAgent reports whether an order in this status must have an agent assigned.
func (s Status) HasAgent() bool {
	switch s {
	case AssignedToAgent, PickedUp, InTransit, OutForDelivery, Delivered, Failed, Resolved:
		return true
	default:
		return false
	}
}

// PaymentStatus tracks what happened to the client's withheld funds.
type PaymentStatus int

const (
	PaymentUnknown PaymentStatus = iota
	PaymentPending
	PaymentWithheld
	PaymentCaptured
	PaymentReleased
	PaymentRefunded
)

func getPaymentStatusStrings() map[PaymentStatus]string {
	return map[PaymentStatus]string{
		PaymentPending:  "pending",
		PaymentWithheld: "withheld",
		PaymentCaptured: "captured",
		PaymentReleased: "released",
		PaymentRefunded: "refunded",
	}
}

func (p PaymentStatus) String() string {
	if str, ok := getPaymentStatusStrings()[p]; ok {
		return str
	}
	return "unknown"
}

func (p PaymentStatus) Validate() error {
	if _, ok := getPaymentStatusStrings()[p]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("payment status is invalid", fmt.Errorf("%d is not a valid payment status", p))
	}
	return nil
}

func ParsePaymentStatus(s string) (PaymentStatus, error) {
	for status, name := range getPaymentStatusStrings() {
		if name == s {
			return status, nil
		}
	}
	return PaymentUnknown, errs.NewValueIsInvalidErrorWithCause("payment status is invalid", fmt.Errorf("%q is not a valid payment status", s))
}
