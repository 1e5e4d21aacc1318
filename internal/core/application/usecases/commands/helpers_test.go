package commands_test

import (
	"log/slog"
	"testing"

	"fulfillment/internal/core/domain/model/account"
	"fulfillment/internal/core/domain/model/inventory"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func usd(t *testing.T) kernel.Currency {
	t.Helper()
	c, err := kernel.NewCurrency("USD")
	require.NoError(t, err)
	return c
}

func newActor(t *testing.T, typ kernel.ActorType) kernel.Actor {
	t.Helper()
	a, err := kernel.NewActor(kernel.NewUUID(), typ)
	require.NoError(t, err)
	return a
}

func newAccount(t *testing.T, owner kernel.UUID, available, withheld string) *account.Account {
	t.Helper()
	a := decimal.RequireFromString(available)
	w := decimal.RequireFromString(withheld)
	acc, err := account.RestoreAccount(kernel.NewUUID(), owner, usd(t), a, w, a.Add(w), true)
	require.NoError(t, err)
	return acc
}

func newSnapshot(t *testing.T, price string, available int) inventory.Snapshot {
	t.Helper()
	return inventory.Snapshot{
		InventoryID:        kernel.NewUUID(),
		ItemID:             kernel.NewUUID(),
		BusinessID:         kernel.NewUUID(),
		BusinessLocationID: kernel.NewUUID(),
		ItemName:           "Espresso beans",
		ItemDescription:    "1kg bag",
		Price:              decimal.RequireFromString(price),
		Currency:           usd(t),
		AvailableQuantity:  available,
		IsActive:           true,
	}
}

// newOrderIn builds an order of 3 x 100.00 USD and walks it to status using
// the regular transitions. The agent hold, if any, is 300.00.
func newOrderIn(t *testing.T, status order.Status) *order.Order {
	t.Helper()
	client := newActor(t, kernel.ActorClient)
	item, err := order.NewItem(kernel.NewUUID(), kernel.NewUUID(), kernel.NewUUID(),
		"Espresso beans", "", 3, decimal.RequireFromString("100.00"))
	require.NoError(t, err)

	o, err := order.NewOrder(kernel.NewUUID(), order.GenerateNumber(), order.Parties{
		ClientID:           kernel.NewUUID(),
		ClientAccountID:    kernel.NewUUID(),
		BusinessID:         kernel.NewUUID(),
		BusinessLocationID: kernel.NewUUID(),
		DeliveryAddressID:  kernel.NewUUID(),
	}, usd(t), []order.Item{item}, client, "")
	require.NoError(t, err)
	require.NoError(t, o.MarkFundsWithheld())

	path := []order.Transition{
		order.Confirm, order.StartPreparing, order.CompletePreparation, order.AssignToAgent,
		order.PickUp, order.StartTransit, order.MarkOutForDelivery, order.Deliver,
	}
	business := newActor(t, kernel.ActorBusiness)
	agent := newActor(t, kernel.ActorAgent)
	for _, tr := range path {
		if o.Status() == status {
			return o
		}
		if tr == order.AssignToAgent {
			_, err = o.AssignAgent(agent, kernel.NewUUID(), decimal.RequireFromString("300.00"), "")
		} else {
			_, err = o.Apply(tr, business, "")
		}
		require.NoError(t, err)
	}
	require.Equal(t, status, o.Status())
	return o
}
