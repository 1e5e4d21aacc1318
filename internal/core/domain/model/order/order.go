package order

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"

	"github.com/shopspring/decimal"
)

// PaymentMethodAccountBalance is the only payment method: funds are withheld
// from the client's in-app account.
const PaymentMethodAccountBalance = "account_balance"

var (
	// ErrOrderIsNotConstructed is returned when an Order was not created through
	// NewOrder or RestoreOrder.
	ErrOrderIsNotConstructed = errors.New("Order must be created via NewOrder constructor")

	// ErrAssignmentNeedsAgent is returned when AssignToAgent is applied through Apply
	// instead of AssignAgent, which carries the agent hold.
	ErrAssignmentNeedsAgent = errs.NewValueIsInvalidErrorWithCause(
		"transition is invalid", errors.New("assign_to_agent must go through AssignAgent"))
)

// Parties groups the identifiers an order references but never owns.
type Parties struct {
	ClientID           kernel.UUID
	ClientAccountID    kernel.UUID
	BusinessID         kernel.UUID
	BusinessLocationID kernel.UUID
	DeliveryAddressID  kernel.UUID
}

func (p Parties) validate() error {
	return errors.Join(
		p.ClientID.Validate(),
		p.ClientAccountID.Validate(),
		p.BusinessID.Validate(),
		p.BusinessLocationID.Validate(),
		p.DeliveryAddressID.Validate(),
	)
}

// Order is the aggregate root of one purchase. It owns its items and its status
// history, and guarantees:
//   - subtotal equals the sum of item totals
//   - total equals subtotal + tax + delivery fee
//   - status only moves along the transition table
//   - every status change appends exactly one history entry
type Order struct {
	id                  kernel.UUID
	number              string
	parties             Parties
	currency            kernel.Currency
	subtotal            decimal.Decimal
	taxAmount           decimal.Decimal
	deliveryFee         decimal.Decimal
	totalAmount         decimal.Decimal
	status              Status
	paymentMethod       string
	paymentStatus       PaymentStatus
	agentID             *kernel.UUID
	agentAccountID      *kernel.UUID
	agentHoldAmount     decimal.Decimal
	specialInstructions string
	preferredDeliveryAt *time.Time
	estimatedDeliveryAt *time.Time
	actualDeliveryAt    *time.Time
	items               []Item
	history             []HistoryEntry
	createdAt           time.Time
	updatedAt           time.Time
	isConstructed       bool
}

// NewOrder creates a pending order together with its first history row.
// Tax and delivery fee start at zero.
func NewOrder(
	id kernel.UUID,
	number string,
	parties Parties,
	currency kernel.Currency,
	items []Item,
	actor kernel.Actor,
	specialInstructions string,
) (*Order, error) {
	now := time.Now().UTC()
	o := &Order{
		status:              Pending,
		paymentMethod:       PaymentMethodAccountBalance,
		paymentStatus:       PaymentPending,
		taxAmount:           decimal.Zero,
		deliveryFee:         decimal.Zero,
		agentHoldAmount:     decimal.Zero,
		specialInstructions: specialInstructions,
		createdAt:           now,
		updatedAt:           now,
		isConstructed:       true,
	}

	if err := errors.Join(
		o.setID(id),
		o.setNumber(number),
		o.setParties(parties),
		o.setCurrency(currency),
		o.setItems(items),
		actor.Validate(),
	); err != nil {
		return nil, err
	}

	o.subtotal = sumItems(o.items)
	o.totalAmount = o.subtotal.Add(o.taxAmount).Add(o.deliveryFee)

	entry, err := NewHistoryEntry(kernel.NewUUID(), Pending, "Order created", actor, now)
	if err != nil {
		return nil, err
	}
	o.history = []HistoryEntry{entry}

	return o, nil
}

// State is the persisted form of an order, used by RestoreOrder.
type State struct {
	ID                  kernel.UUID
	Number              string
	Parties             Parties
	Currency            kernel.Currency
	Subtotal            decimal.Decimal
	TaxAmount           decimal.Decimal
	DeliveryFee         decimal.Decimal
	TotalAmount         decimal.Decimal
	Status              Status
	PaymentMethod       string
	PaymentStatus       PaymentStatus
	AgentID             *kernel.UUID
	AgentAccountID      *kernel.UUID
	AgentHoldAmount     decimal.Decimal
	SpecialInstructions string
	PreferredDeliveryAt *time.Time
	EstimatedDeliveryAt *time.Time
	ActualDeliveryAt    *time.Time
	Items               []Item
	History             []HistoryEntry
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// RestoreOrder rebuilds an order from storage. A stored order whose totals do not
// add up is reported as an invariant violation rather than a validation error.
func RestoreOrder(s State) (*Order, error) {
	o := &Order{
		status:              s.Status,
		paymentMethod:       s.PaymentMethod,
		paymentStatus:       s.PaymentStatus,
		taxAmount:           s.TaxAmount,
		deliveryFee:         s.DeliveryFee,
		subtotal:            s.Subtotal,
		totalAmount:         s.TotalAmount,
		agentID:             s.AgentID,
		agentAccountID:      s.AgentAccountID,
		agentHoldAmount:     s.AgentHoldAmount,
		specialInstructions: s.SpecialInstructions,
		preferredDeliveryAt: s.PreferredDeliveryAt,
		estimatedDeliveryAt: s.EstimatedDeliveryAt,
		actualDeliveryAt:    s.ActualDeliveryAt,
		history:             slices.Clone(s.History),
		createdAt:           s.CreatedAt,
		updatedAt:           s.UpdatedAt,
		isConstructed:       true,
	}

	if err := errors.Join(
		o.setID(s.ID),
		o.setNumber(s.Number),
		o.setParties(s.Parties),
		o.setCurrency(s.Currency),
		o.setItems(s.Items),
		s.Status.Validate(),
		s.PaymentStatus.Validate(),
	); err != nil {
		return nil, err
	}

	if s.Status.HasAgent() && s.AgentID == nil {
		return nil, errs.NewValueIsInvalidErrorWithCause(
			"status is invalid",
			fmt.Errorf("%s is not a valid status to have no agent", s.Status),
		)
	}

	if err := o.checkTotals(); err != nil {
		return nil, err
	}

	return o, nil
}

// Validate ensures the Order was built by NewOrder or RestoreOrder.
func (o *Order) Validate() error {
	if o == nil || !o.isConstructed {
		return ErrOrderIsNotConstructed
	}
	return nil
}

func (o *Order) IsEqual(other *Order) bool {
	return other != nil && o.id.IsEqual(other.id)
}

func (o *Order) ID() kernel.UUID                  { return o.id }
func (o *Order) Number() string                   { return o.number }
func (o *Order) Parties() Parties                 { return o.parties }
func (o *Order) ClientID() kernel.UUID            { return o.parties.ClientID }
func (o *Order) ClientAccountID() kernel.UUID     { return o.parties.ClientAccountID }
func (o *Order) BusinessID() kernel.UUID          { return o.parties.BusinessID }
func (o *Order) Currency() kernel.Currency        { return o.currency }
func (o *Order) Subtotal() decimal.Decimal        { return o.subtotal }
func (o *Order) TaxAmount() decimal.Decimal       { return o.taxAmount }
func (o *Order) DeliveryFee() decimal.Decimal     { return o.deliveryFee }
func (o *Order) TotalAmount() decimal.Decimal     { return o.totalAmount }
func (o *Order) Status() Status                   { return o.status }
func (o *Order) PaymentMethod() string            { return o.paymentMethod }
func (o *Order) PaymentStatus() PaymentStatus     { return o.paymentStatus }
func (o *Order) AgentID() *kernel.UUID            { return o.agentID }
func (o *Order) AgentAccountID() *kernel.UUID     { return o.agentAccountID }
func (o *Order) AgentHoldAmount() decimal.Decimal { return o.agentHoldAmount }
func (o *Order) SpecialInstructions() string      { return o.specialInstructions }
func (o *Order) PreferredDeliveryAt() *time.Time  { return o.preferredDeliveryAt }
func (o *Order) EstimatedDeliveryAt() *time.Time  { return o.estimatedDeliveryAt }
func (o *Order) ActualDeliveryAt() *time.Time     { return o.actualDeliveryAt }
func (o *Order) CreatedAt() time.Time             { return o.createdAt }
func (o *Order) UpdatedAt() time.Time             { return o.updatedAt }

// Items returns a copy of the order lines.
func (o *Order) Items() []Item {
	return slices.Clone(o.items)
}

// History returns a copy of the audit trail, oldest first.
func (o *Order) History() []HistoryEntry {
	return slices.Clone(o.history)
}

// HasAgentHold reports whether an agent guarantee is currently withheld for this order.
func (o *Order) HasAgentHold() bool {
	return o.agentAccountID != nil && o.agentHoldAmount.IsPositive()
}

// SchedulePreferredDelivery records the delivery window the client asked for.
func (o *Order) SchedulePreferredDelivery(at time.Time) {
	at = at.UTC()
	o.preferredDeliveryAt = &at
}

// MarkFundsWithheld records that the ledger accepted the client withhold.
func (o *Order) MarkFundsWithheld() error {
	if o.paymentStatus != PaymentPending {
		return errs.NewValueIsInvalidErrorWithCause(
			"payment status is invalid",
			fmt.Errorf("%s is not a valid payment status to withhold", o.paymentStatus),
		)
	}
	o.paymentStatus = PaymentWithheld
	return nil
}

// StatusChange describes one applied transition. The persistence layer uses From
// as the expected current status of its conditional update.
type StatusChange struct {
	OrderID    kernel.UUID
	Transition Transition
	From       Status
	To         Status
	Payment    PaymentStatus
	Entry      HistoryEntry
}

// Apply runs the guard for tr and, when it passes, moves the order to the target
// status and appends the history entry. On guard failure nothing changes.
func (o *Order) Apply(tr Transition, actor kernel.Actor, notes string) (StatusChange, error) {
	if tr == AssignToAgent {
		return StatusChange{}, ErrAssignmentNeedsAgent
	}
	return o.apply(tr, actor, notes)
}

// AssignAgent applies AssignToAgent for the acting agent and records the agent
// hold that was (or is about to be) withheld from agentAccountID.
func (o *Order) AssignAgent(
	actor kernel.Actor,
	agentAccountID kernel.UUID,
	hold decimal.Decimal,
	notes string,
) (StatusChange, error) {
	if _, err := AssignToAgent.Guard(o.status); err != nil {
		return StatusChange{}, err
	}
	agentID := actor.ID()
	if agentID == nil {
		return StatusChange{}, errs.NewValueIsRequiredError("agent")
	}
	if err := agentAccountID.Validate(); err != nil {
		return StatusChange{}, err
	}
	if hold.IsNegative() {
		return StatusChange{}, errs.NewValueIsInvalidErrorWithCause("agent hold is invalid", fmt.Errorf("%s is negative", hold))
	}

	change, err := o.apply(AssignToAgent, actor, notes)
	if err != nil {
		return StatusChange{}, err
	}

	id := *agentID
	o.agentID = &id
	o.agentAccountID = &agentAccountID
	o.agentHoldAmount = hold
	return change, nil
}

func (o *Order) apply(tr Transition, actor kernel.Actor, notes string) (StatusChange, error) {
	if err := actor.Validate(); err != nil {
		return StatusChange{}, err
	}
	target, err := tr.Guard(o.status)
	if err != nil {
		return StatusChange{}, err
	}

	now := time.Now().UTC()
	entry, err := NewHistoryEntry(kernel.NewUUID(), target, tr.Note(notes), actor, now)
	if err != nil {
		return StatusChange{}, err
	}

	change := StatusChange{
		OrderID:    o.id,
		Transition: tr,
		From:       o.status,
		To:         target,
		Payment:    o.paymentStatus,
		Entry:      entry,
	}

	o.status = target
	if p := tr.Payment(); p != PaymentUnknown {
		o.paymentStatus = p
		change.Payment = p
	}
	if target == Delivered {
		o.actualDeliveryAt = &now
	}
	o.updatedAt = now
	o.history = append(o.history, entry)

	return change, nil
}

func (o *Order) checkTotals() error {
	if sum := sumItems(o.items); !sum.Equal(o.subtotal) {
		return errs.NewInvariantViolationError("order subtotal",
			fmt.Errorf("subtotal %s does not match item total %s", o.subtotal, sum))
	}
	if expected := o.subtotal.Add(o.taxAmount).Add(o.deliveryFee); !expected.Equal(o.totalAmount) {
		return errs.NewInvariantViolationError("order total",
			fmt.Errorf("total %s does not match subtotal + tax + fee %s", o.totalAmount, expected))
	}
	return nil
}

func sumItems(items []Item) decimal.Decimal {
	sum := decimal.Zero
	for _, item := range items {
		sum = sum.Add(item.TotalPrice())
	}
	return sum
}

func (o *Order) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	o.id = id
	return nil
}

// setNumber accepts the 8-digit display number produced by GenerateNumber.
func (o *Order) setNumber(number string) error {
	if !IsValidNumber(number) {
		return errs.NewValueIsInvalidErrorWithCause("order number is invalid", fmt.Errorf("%q is not an 8-digit number", number))
	}
	o.number = number
	return nil
}

func (o *Order) setParties(p Parties) error {
	if err := p.validate(); err != nil {
		return err
	}
	o.parties = p
	return nil
}

func (o *Order) setCurrency(c kernel.Currency) error {
	if err := c.Validate(); err != nil {
		return err
	}
	o.currency = c
	return nil
}

func (o *Order) setItems(items []Item) error {
	if len(items) == 0 {
		return errs.NewValueIsRequiredError("order items")
	}
	for _, item := range items {
		if err := item.Validate(); err != nil {
			return err
		}
	}
	o.items = slices.Clone(items)
	return nil
}
