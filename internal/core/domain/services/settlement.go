package services

import (
	"fmt"

	"fulfillment/internal/core/domain/model/account"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/pkg/errs"

	"github.com/shopspring/decimal"
)

// Settlement is a domain service that decides which ledger postings a status
// change requires.
//
// Postings per transition:
//   - AssignToAgent: withhold the agent hold on the agent account
//   - Deliver: capture the client total, release the agent hold
//   - FailDelivery: release the client total, the agent hold stays until resolution
//   - Cancel: release the client total, release the agent hold if one was placed
//   - Refund from Delivered: credit the client total back
//   - Refund from Cancelled: nothing, the funds were already released
//   - ResolveAgentFault: capture the agent hold and credit it to the business
//   - ResolveItemFault: release the agent hold
//   - ResolveClientFault: debit the failed delivery fee from the client, release
//     the agent hold, split the fee between agent and business
//
// Every other transition leaves the ledger untouched.
//
// Example usage:
//
//	change, err := o.Apply(order.Cancel, actor, notes)
//	if err != nil {
//	    return err
//	}
//	postings, err := services.NewSettlement(fee).Postings(o, change, nil)
type Settlement struct {
	failedDeliveryFee decimal.Decimal
}

// NewSettlement charges failedDeliveryFee to clients at fault for a failed
// delivery. A non-positive fee disables the charge.
func NewSettlement(failedDeliveryFee decimal.Decimal) Settlement {
	if failedDeliveryFee.IsNegative() {
		failedDeliveryFee = decimal.Zero
	}
	return Settlement{failedDeliveryFee: failedDeliveryFee}
}

// NeedsBusinessAccount reports whether the postings for tr credit the business.
func (s Settlement) NeedsBusinessAccount(o *order.Order, tr order.Transition) bool {
	switch tr {
	case order.ResolveAgentFault:
		return o.HasAgentHold()
	case order.ResolveClientFault:
		return s.failedDeliveryFee.IsPositive()
	default:
		return false
	}
}

// Postings returns the movements for change in the order they must be posted.
// The order must already reflect change. businessAccountID is only read when
// NeedsBusinessAccount is true.
func (s Settlement) Postings(o *order.Order, change order.StatusChange, businessAccountID *kernel.UUID) ([]account.Movement, error) {
	if err := o.Validate(); err != nil {
		return nil, err
	}
	if businessAccountID == nil && s.NeedsBusinessAccount(o, change.Transition) {
		return nil, errs.NewValueIsRequiredError("business account")
	}

	var plan []planned
	switch change.Transition {
	case order.AssignToAgent:
		plan = s.agentHold(o, account.Withhold, "Hold for order")
	case order.Deliver:
		plan = append(plan, planned{account.Capture, o.ClientAccountID(), o.TotalAmount(), "Payment for delivered order"})
		plan = append(plan, s.agentHold(o, account.Release, "Hold released for delivered order")...)
	case order.FailDelivery:
		plan = append(plan, planned{account.Release, o.ClientAccountID(), o.TotalAmount(), "Funds released for failed delivery"})
	case order.Cancel:
		plan = append(plan, planned{account.Release, o.ClientAccountID(), o.TotalAmount(), "Funds released for cancelled order"})
		plan = append(plan, s.agentHold(o, account.Release, "Hold released for cancelled order")...)
	case order.Refund:
		if change.From == order.Delivered {
			plan = append(plan, planned{account.Credit, o.ClientAccountID(), o.TotalAmount(), "Refund for order"})
		}
	case order.ResolveAgentFault:
		plan = s.agentHold(o, account.Capture, "Agent hold forfeited for failed delivery")
		if o.HasAgentHold() {
			plan = append(plan, planned{account.Credit, *businessAccountID, o.AgentHoldAmount(), "Agent hold retained for failed delivery"})
		}
	case order.ResolveItemFault:
		plan = s.agentHold(o, account.Release, "Hold released for failed delivery")
	case order.ResolveClientFault:
		plan = s.clientFault(o, businessAccountID)
	case order.UnknownTransition, order.Confirm, order.StartPreparing, order.CompletePreparation,
		order.PickUp, order.StartTransit, order.MarkOutForDelivery:
	}

	movements := make([]account.Movement, 0, len(plan))
	for _, p := range plan {
		if !p.amount.IsPositive() {
			continue
		}
		m, err := account.NewMovement(p.kind, p.accountID, p.amount, fmt.Sprintf("%s %s", p.memo, o.Number()), o.ID())
		if err != nil {
			return nil, err
		}
		movements = append(movements, m)
	}
	return movements, nil
}

type planned struct {
	kind      account.Kind
	accountID kernel.UUID
	amount    decimal.Decimal
	memo      string
}

// clientFault charges the fee before anything is released or credited, so an
// unpaid fee stops the resolution with nothing to undo but the charge itself.
// The agent gets half the fee rounded down to the cent, the business the rest.
func (s Settlement) clientFault(o *order.Order, businessAccountID *kernel.UUID) []planned {
	fee := s.failedDeliveryFee
	var plan []planned
	if fee.IsPositive() {
		plan = append(plan, planned{account.Debit, o.ClientAccountID(), fee, "Failed delivery fee for order"})
	}
	plan = append(plan, s.agentHold(o, account.Release, "Hold released for failed delivery")...)
	if !fee.IsPositive() {
		return plan
	}

	businessShare := fee
	if agentAccountID := o.AgentAccountID(); agentAccountID != nil {
		agentShare := fee.Div(decimal.NewFromInt(2)).RoundDown(2)
		businessShare = fee.Sub(agentShare)
		plan = append(plan, planned{account.Credit, *agentAccountID, agentShare, "Failed delivery fee split for order"})
	}
	return append(plan, planned{account.Credit, *businessAccountID, businessShare, "Failed delivery fee split for order"})
}

func (s Settlement) agentHold(o *order.Order, kind account.Kind, memo string) []planned {
	if !o.HasAgentHold() {
		return nil
	}
	return []planned{{kind, *o.AgentAccountID(), o.AgentHoldAmount(), memo}}
}
