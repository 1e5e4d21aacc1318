package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"fulfillment/internal/core/domain/model/account"
	"fulfillment/internal/core/domain/model/inventory"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"
)

// MaxOrderNumberAttempts bounds the retries on an order number collision.
const MaxOrderNumberAttempts = 5

var ErrOrderNumberExhausted = errors.New("could not allocate a unique order number")

// CreateOrderResult carries the created order, items included.
type CreateOrderResult struct {
	Order *order.Order
}

// CreateOrderCommandHandler is the Order Factory.
//
// Preconditions are checked in this order, the first failure wins:
//  1. the acting user has a client record
//  2. the client has a delivery address
//  3. the inventory reference resolves
//  4. the item is active
//  5. enough quantity is available
//  6. the item is priced above zero
//  7. the client has an account in the inventory currency
//  8. the account can cover the total
//
// The order, its item and its first history row are written in one transaction
// that also reserves the stock. Funds are withheld afterwards through the
// privileged ledger; if that fails the order is deleted and the reservation
// returned before the error is surfaced.
type CreateOrderCommandHandler struct {
	uowFactory  OrderUoWFactory
	clients     ports.ClientDirectory
	resolver    ports.InventoryResolver
	ledger      ports.FundsLedger
	idempotency ports.IdempotencyStore
	logger      *slog.Logger
}

func NewCreateOrderCommandHandler(
	uowFactory OrderUoWFactory,
	clients ports.ClientDirectory,
	resolver ports.InventoryResolver,
	ledger ports.FundsLedger,
	idempotency ports.IdempotencyStore,
	logger *slog.Logger,
) CreateOrderCommandHandler {
	return CreateOrderCommandHandler{
		uowFactory:  uowFactory,
		clients:     clients,
		resolver:    resolver,
		ledger:      ledger,
		idempotency: idempotency,
		logger:      logger.With("component", "create_order_handler"),
	}
}

func (h CreateOrderCommandHandler) Handle(ctx context.Context, cmd CreateOrderCommand) (result CreateOrderResult, err error) {
	if err = cmd.Validate(); err != nil {
		return CreateOrderResult{}, err
	}

	if key := cmd.IdempotencyKey(); key != "" {
		reserved, reserveErr := h.idempotency.Reserve(ctx, key)
		if reserveErr != nil {
			return CreateOrderResult{}, reserveErr
		}
		if !reserved {
			return CreateOrderResult{}, fmt.Errorf("%w: idempotency key %q", errs.ErrDuplicateRequest, key)
		}
		defer func() {
			if err != nil {
				if releaseErr := h.idempotency.Release(context.WithoutCancel(ctx), key); releaseErr != nil {
					h.logger.WarnContext(ctx, "failed to release idempotency key", "key", key, "error", releaseErr)
				}
			}
		}()
	}

	draft, err := h.prepare(ctx, cmd)
	if err != nil {
		return CreateOrderResult{}, err
	}

	o, err := h.insert(ctx, cmd, draft)
	if err != nil {
		return CreateOrderResult{}, err
	}

	withhold, err := account.NewMovement(account.Withhold, draft.account.ID(), draft.total,
		"Hold for order "+o.Number(), o.ID())
	if err == nil {
		_, err = h.ledger.Post(ctx, withhold)
	}
	if err != nil {
		h.compensate(ctx, o, draft)
		return CreateOrderResult{}, err
	}

	h.finalize(ctx, cmd, o)

	h.logger.InfoContext(ctx, "order created",
		"order_id", o.ID().String(),
		"order_number", o.Number(),
		"total", o.TotalAmount().StringFixed(2),
		"currency", o.Currency().Code(),
	)

	return CreateOrderResult{Order: o}, nil
}

type orderDraft struct {
	client    ports.Client
	addressID kernel.UUID
	snapshot  inventory.Snapshot
	account   *account.Account
	total     decimal.Decimal
}

func (h CreateOrderCommandHandler) prepare(ctx context.Context, cmd CreateOrderCommand) (orderDraft, error) {
	client, err := h.clients.FindByUser(ctx, *cmd.Actor().ID())
	if err != nil {
		return orderDraft{}, err
	}

	addressID, err := h.clients.DeliveryAddress(ctx, client.ID)
	if err != nil {
		return orderDraft{}, err
	}

	snapshot, err := h.resolver.Resolve(ctx, cmd.InventoryRef())
	if err != nil {
		return orderDraft{}, err
	}

	if err = snapshot.EnsureCanSupply(cmd.Quantity()); err != nil {
		return orderDraft{}, err
	}

	total := snapshot.Quote(cmd.Quantity())
	if !total.IsPositive() {
		return orderDraft{}, errs.NewBusinessRuleError("unpriced_item", fmt.Sprintf(
			"Item cannot be ordered: total %s %s is not greater than zero", total.StringFixed(2), snapshot.Currency.Code()))
	}

	acc, err := h.ledger.FindAccount(ctx, client.UserID, snapshot.Currency)
	if err != nil {
		return orderDraft{}, err
	}

	if err = acc.EnsureCanWithhold(total); err != nil {
		return orderDraft{}, err
	}

	return orderDraft{
		client:    client,
		addressID: addressID,
		snapshot:  snapshot,
		account:   acc,
		total:     total,
	}, nil
}

// insert writes the order in one transaction, retrying with a fresh number
// when the generated one is already taken.
func (h CreateOrderCommandHandler) insert(ctx context.Context, cmd CreateOrderCommand, d orderDraft) (*order.Order, error) {
	item, err := order.NewItem(kernel.NewUUID(), d.snapshot.InventoryID, d.snapshot.ItemID,
		d.snapshot.ItemName, d.snapshot.ItemDescription, cmd.Quantity(), d.snapshot.Price)
	if err != nil {
		return nil, err
	}

	parties := order.Parties{
		ClientID:           d.client.ID,
		ClientAccountID:    d.account.ID(),
		BusinessID:         d.snapshot.BusinessID,
		BusinessLocationID: d.snapshot.BusinessLocationID,
		DeliveryAddressID:  d.addressID,
	}

	orderID := kernel.NewUUID()
	for attempt := 1; attempt <= MaxOrderNumberAttempts; attempt++ {
		o, err := order.NewOrder(orderID, order.GenerateNumber(), parties, d.snapshot.Currency,
			[]order.Item{item}, cmd.Actor(), cmd.SpecialInstructions())
		if err != nil {
			return nil, err
		}
		if at := cmd.PreferredDeliveryAt(); at != nil {
			o.SchedulePreferredDelivery(*at)
		}

		err = h.insertOnce(ctx, o)
		if errors.Is(err, ports.ErrOrderNumberTaken) {
			h.logger.WarnContext(ctx, "order number collision, retrying",
				"order_number", o.Number(), "attempt", attempt)
			continue
		}
		if err != nil {
			return nil, err
		}
		return o, nil
	}

	return nil, ErrOrderNumberExhausted
}

func (h CreateOrderCommandHandler) insertOnce(ctx context.Context, o *order.Order) error {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	for _, item := range o.Items() {
		if err := uow.InventoryRepository().Reserve(ctx, item.InventoryID(), item.Quantity()); err != nil {
			return err
		}
	}

	if err := uow.OrderRepository().Add(ctx, o); err != nil {
		return err
	}

	return uow.Commit(ctx)
}

// compensate removes an order whose withhold failed. It runs detached from the
// request context so a cancelled caller cannot leave the order behind.
func (h CreateOrderCommandHandler) compensate(ctx context.Context, o *order.Order, d orderDraft) {
	ctx = context.WithoutCancel(ctx)

	err := func() error {
		uow := h.uowFactory.Create()
		if err := uow.Begin(ctx); err != nil {
			return err
		}

		defer func() {
			_ = uow.Rollback(ctx)
		}()

		if err := uow.OrderRepository().Delete(ctx, o.ID()); err != nil {
			return err
		}
		for _, item := range o.Items() {
			if err := uow.InventoryRepository().Release(ctx, item.InventoryID(), item.Quantity()); err != nil {
				return err
			}
		}
		return uow.Commit(ctx)
	}()

	if err != nil {
		h.logger.ErrorContext(ctx, "failed to compensate order after withhold failure",
			"order_id", o.ID().String(), "account_id", d.account.ID().String(), "error", err)
	}
}

// finalize marks the payment as withheld and queues the created event. The order
// and the hold already stand, so a failure here is only logged.
func (h CreateOrderCommandHandler) finalize(ctx context.Context, cmd CreateOrderCommand, o *order.Order) {
	ctx = context.WithoutCancel(ctx)

	err := func() error {
		if err := o.MarkFundsWithheld(); err != nil {
			return err
		}

		event, err := newOrderCreatedEvent(o, cmd.Actor())
		if err != nil {
			return err
		}

		uow := h.uowFactory.Create()
		if err = uow.Begin(ctx); err != nil {
			return err
		}

		defer func() {
			_ = uow.Rollback(ctx)
		}()

		if err = uow.OrderRepository().UpdatePayment(ctx, o); err != nil {
			return err
		}
		if err = uow.OutboxRepository().Add(ctx, event); err != nil {
			return err
		}
		return uow.Commit(ctx)
	}()

	if err != nil {
		h.logger.ErrorContext(ctx, "failed to finalize created order",
			"order_id", o.ID().String(), "error", err)
	}
}
