package commands_test

import (
	"context"

	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/domain/model/account"
	"fulfillment/internal/core/domain/model/inventory"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/ports"

	"github.com/stretchr/testify/mock"
)

type MockOrderRepository struct{ mock.Mock }

func (m *MockOrderRepository) Add(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) Get(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) UpdateStatus(ctx context.Context, o *order.Order, change order.StatusChange) error {
	args := m.Called(ctx, o, change)
	return args.Error(0)
}

func (m *MockOrderRepository) UpdatePayment(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) Delete(ctx context.Context, id kernel.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockInventoryRepository struct{ mock.Mock }

func (m *MockInventoryRepository) Reserve(ctx context.Context, id kernel.UUID, qty int) error {
	args := m.Called(ctx, id, qty)
	return args.Error(0)
}

func (m *MockInventoryRepository) Release(ctx context.Context, id kernel.UUID, qty int) error {
	args := m.Called(ctx, id, qty)
	return args.Error(0)
}

func (m *MockInventoryRepository) Consume(ctx context.Context, id kernel.UUID, qty int) error {
	args := m.Called(ctx, id, qty)
	return args.Error(0)
}

type MockOutboxRepository struct{ mock.Mock }

func (m *MockOutboxRepository) Add(ctx context.Context, e ports.OutboxEvent) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

func (m *MockOutboxRepository) FetchUnpublished(ctx context.Context, limit int) ([]ports.OutboxEvent, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ports.OutboxEvent), args.Error(1)
}

func (m *MockOutboxRepository) MarkPublished(ctx context.Context, ids []kernel.UUID) error {
	args := m.Called(ctx, ids)
	return args.Error(0)
}

// MockOrderUoW hands out the repositories it was built with and records the
// transaction calls.
type MockOrderUoW struct {
	mock.Mock

	orders    *MockOrderRepository
	inventory *MockInventoryRepository
	outbox    *MockOutboxRepository
}

func newMockOrderUoW() *MockOrderUoW {
	return &MockOrderUoW{
		orders:    new(MockOrderRepository),
		inventory: new(MockInventoryRepository),
		outbox:    new(MockOutboxRepository),
	}
}

func (m *MockOrderUoW) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockOrderUoW) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockOrderUoW) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockOrderUoW) OrderRepository() ports.OrderRepository         { return m.orders }
func (m *MockOrderUoW) InventoryRepository() ports.InventoryRepository { return m.inventory }
func (m *MockOrderUoW) OutboxRepository() ports.OutboxRepository       { return m.outbox }

// expectTx allows any number of transactions on the unit of work.
func (m *MockOrderUoW) expectTx(commitErr error) {
	m.On("Begin", mock.Anything).Return(nil)
	m.On("Commit", mock.Anything).Return(commitErr)
	m.On("Rollback", mock.Anything).Return(nil)
}

type MockOrderUoWFactory struct{ mock.Mock }

func (m *MockOrderUoWFactory) Create() commands.OrderUoW {
	args := m.Called()
	return args.Get(0).(commands.OrderUoW)
}

type MockOutboxUoW struct {
	mock.Mock

	outbox *MockOutboxRepository
}

func (m *MockOutboxUoW) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockOutboxUoW) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockOutboxUoW) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockOutboxUoW) OutboxRepository() ports.OutboxRepository { return m.outbox }

type MockOutboxUoWFactory struct{ mock.Mock }

func (m *MockOutboxUoWFactory) Create() commands.OutboxUoW {
	args := m.Called()
	return args.Get(0).(commands.OutboxUoW)
}

type MockClientDirectory struct{ mock.Mock }

func (m *MockClientDirectory) FindByUser(ctx context.Context, userID kernel.UUID) (ports.Client, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(ports.Client), args.Error(1)
}

func (m *MockClientDirectory) DeliveryAddress(ctx context.Context, clientID kernel.UUID) (kernel.UUID, error) {
	args := m.Called(ctx, clientID)
	return args.Get(0).(kernel.UUID), args.Error(1)
}

type MockBusinessDirectory struct{ mock.Mock }

func (m *MockBusinessDirectory) BusinessOwner(ctx context.Context, businessID kernel.UUID) (kernel.UUID, error) {
	args := m.Called(ctx, businessID)
	return args.Get(0).(kernel.UUID), args.Error(1)
}

type MockInventoryResolver struct{ mock.Mock }

func (m *MockInventoryResolver) Resolve(ctx context.Context, ref kernel.UUID) (inventory.Snapshot, error) {
	args := m.Called(ctx, ref)
	return args.Get(0).(inventory.Snapshot), args.Error(1)
}

type MockFundsLedger struct{ mock.Mock }

func (m *MockFundsLedger) FindAccount(ctx context.Context, ownerID kernel.UUID, currency kernel.Currency) (*account.Account, error) {
	args := m.Called(ctx, ownerID, currency)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*account.Account), args.Error(1)
}

func (m *MockFundsLedger) Get(ctx context.Context, accountID kernel.UUID) (*account.Account, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*account.Account), args.Error(1)
}

func (m *MockFundsLedger) Post(ctx context.Context, movement account.Movement) (*account.Account, error) {
	args := m.Called(ctx, movement)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*account.Account), args.Error(1)
}

type MockIdempotencyStore struct{ mock.Mock }

func (m *MockIdempotencyStore) Reserve(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

func (m *MockIdempotencyStore) Release(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

type MockEventPublisher struct{ mock.Mock }

func (m *MockEventPublisher) Publish(ctx context.Context, events []ports.OutboxEvent) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}

type MockStatusChanger struct{ mock.Mock }

func (m *MockStatusChanger) Handle(ctx context.Context, cmd commands.ChangeOrderStatusCommand) (commands.TransitionResult, error) {
	args := m.Called(ctx, cmd)
	return args.Get(0).(commands.TransitionResult), args.Error(1)
}
