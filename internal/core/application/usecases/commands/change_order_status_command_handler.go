package commands

import (
	"context"
	"errors"
	"log/slog"

	"fulfillment/internal/core/domain/model/account"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/services"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"
)

// TransitionResult is the outcome of a successful transition.
type TransitionResult struct {
	Success bool
	Order   *order.Order
	Message string
}

// ChangeOrderStatusCommandHandler runs one transition of the fulfillment state
// machine.
//
// The status change, its history row, the stock adjustment and the outbox event
// share one transaction. Ledger postings go through the privileged ledger while
// that transaction is still open; if a posting or the final commit fails, every
// posting already made is reversed so the ledger and the order never disagree.
//
// Resolving a failed delivery may credit the business, whose account is found
// through the owner of the order's business.
type ChangeOrderStatusCommandHandler struct {
	uowFactory OrderUoWFactory
	businesses ports.BusinessDirectory
	ledger     ports.FundsLedger
	holdPolicy services.AgentHoldPolicy
	settlement services.Settlement
	logger     *slog.Logger
}

func NewChangeOrderStatusCommandHandler(
	uowFactory OrderUoWFactory,
	businesses ports.BusinessDirectory,
	ledger ports.FundsLedger,
	holdPolicy services.AgentHoldPolicy,
	settlement services.Settlement,
	logger *slog.Logger,
) ChangeOrderStatusCommandHandler {
	return ChangeOrderStatusCommandHandler{
		uowFactory: uowFactory,
		businesses: businesses,
		ledger:     ledger,
		holdPolicy: holdPolicy,
		settlement: settlement,
		logger:     logger.With("component", "change_order_status_handler"),
	}
}

func (h ChangeOrderStatusCommandHandler) Handle(ctx context.Context, cmd ChangeOrderStatusCommand) (TransitionResult, error) {
	if err := cmd.Validate(); err != nil {
		return TransitionResult{}, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return TransitionResult{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	o, err := uow.OrderRepository().Get(ctx, cmd.OrderID())
	if err != nil {
		return TransitionResult{}, err
	}

	change, err := h.apply(ctx, o, cmd)
	if err != nil {
		return TransitionResult{}, err
	}

	businessAccountID, err := h.businessAccount(ctx, o, cmd.Transition())
	if err != nil {
		return TransitionResult{}, err
	}

	if err = uow.OrderRepository().UpdateStatus(ctx, o, change); err != nil {
		return TransitionResult{}, err
	}

	if err = h.adjustInventory(ctx, uow.InventoryRepository(), o, cmd.Transition()); err != nil {
		return TransitionResult{}, err
	}

	event, err := newStatusChangedEvent(o, change)
	if err != nil {
		return TransitionResult{}, err
	}
	if err = uow.OutboxRepository().Add(ctx, event); err != nil {
		return TransitionResult{}, err
	}

	postings, err := h.settlement.Postings(o, change, businessAccountID)
	if err != nil {
		return TransitionResult{}, err
	}

	posted, err := h.post(ctx, postings)
	if err != nil {
		h.reverse(ctx, o, posted)
		return TransitionResult{}, err
	}

	if err = uow.Commit(ctx); err != nil {
		h.reverse(ctx, o, posted)
		return TransitionResult{}, err
	}

	h.logger.InfoContext(ctx, "order status changed",
		"order_id", o.ID().String(),
		"transition", change.Transition.String(),
		"from", change.From.String(),
		"to", change.To.String(),
		"postings", len(posted),
	)

	return TransitionResult{
		Success: true,
		Order:   o,
		Message: cmd.Transition().SuccessMessage(),
	}, nil
}

// apply runs the guard before anything else so that a rejected transition never
// reaches the ledger. Assignment additionally needs the agent's account to cover
// the hold.
func (h ChangeOrderStatusCommandHandler) apply(ctx context.Context, o *order.Order, cmd ChangeOrderStatusCommand) (order.StatusChange, error) {
	if cmd.Transition() != order.AssignToAgent {
		return o.Apply(cmd.Transition(), cmd.Actor(), cmd.Notes())
	}

	if _, err := order.AssignToAgent.Guard(o.Status()); err != nil {
		return order.StatusChange{}, err
	}

	agentID := cmd.Actor().ID()
	if agentID == nil {
		return order.StatusChange{}, errs.NewValueIsRequiredError("agent")
	}

	acc, err := h.ledger.FindAccount(ctx, *agentID, o.Currency())
	if err != nil {
		return order.StatusChange{}, asInvalidParty("agent account", err)
	}

	hold := h.holdPolicy.HoldFor(o.TotalAmount())
	if hold.IsPositive() {
		if err = acc.EnsureCanWithhold(hold); err != nil {
			return order.StatusChange{}, err
		}
	}

	return o.AssignAgent(cmd.Actor(), acc.ID(), hold, cmd.Notes())
}

// businessAccount looks up the business owner's account when the settlement of
// tr credits the business, and returns nil otherwise.
func (h ChangeOrderStatusCommandHandler) businessAccount(ctx context.Context, o *order.Order, tr order.Transition) (*kernel.UUID, error) {
	if !h.settlement.NeedsBusinessAccount(o, tr) {
		return nil, nil //nolint:nilnil // no account is needed
	}

	owner, err := h.businesses.BusinessOwner(ctx, o.BusinessID())
	if err != nil {
		return nil, asInvalidParty("business", err)
	}

	acc, err := h.ledger.FindAccount(ctx, owner, o.Currency())
	if err != nil {
		return nil, asInvalidParty("business account", err)
	}

	id := acc.ID()
	return &id, nil
}

// asInvalidParty reports a missing counterparty as an invalid value, not as a
// missing order.
func asInvalidParty(param string, err error) error {
	if errors.Is(err, errs.ErrObjectNotFound) {
		return errs.NewValueIsInvalidErrorWithCause(param, err)
	}
	return err
}

func (h ChangeOrderStatusCommandHandler) adjustInventory(
	ctx context.Context,
	repo ports.InventoryRepository,
	o *order.Order,
	tr order.Transition,
) error {
	for _, item := range o.Items() {
		var err error
		switch tr.InventoryOp() {
		case order.InventoryRelease:
			err = repo.Release(ctx, item.InventoryID(), item.Quantity())
		case order.InventoryConsume:
			err = repo.Consume(ctx, item.InventoryID(), item.Quantity())
		case order.InventoryUnchanged:
			return nil
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// post applies movements in order and returns the ones that went through.
func (h ChangeOrderStatusCommandHandler) post(ctx context.Context, movements []account.Movement) ([]account.Movement, error) {
	posted := make([]account.Movement, 0, len(movements))
	for _, m := range movements {
		if _, err := h.ledger.Post(ctx, m); err != nil {
			return posted, err
		}
		posted = append(posted, m)
	}
	return posted, nil
}

// reverse undoes posted movements, newest first.
func (h ChangeOrderStatusCommandHandler) reverse(ctx context.Context, o *order.Order, posted []account.Movement) {
	ctx = context.WithoutCancel(ctx)
	for i := len(posted) - 1; i >= 0; i-- {
		m := posted[i].Inverse()
		if _, err := h.ledger.Post(ctx, m); err != nil {
			h.logger.ErrorContext(ctx, "failed to reverse ledger posting",
				"order_id", o.ID().String(),
				"account_id", m.AccountID().String(),
				"kind", m.Kind().String(),
				"amount", m.Amount().StringFixed(2),
				"error", err,
			)
		}
	}
}
