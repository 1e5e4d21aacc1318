package orderrepo_test

import (
	"context"
	"testing"

	"fulfillment/internal/adapters/out/postgres/orderrepo"
	"fulfillment/internal/adapters/out/postgres/pgtest"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type OrderRepositoryIntegrationTestSuite struct {
	suite.Suite
	pg         *pgtest.Database
	repository *orderrepo.GormOrderRepository
}

func (suite *OrderRepositoryIntegrationTestSuite) SetupSuite() {
	pg, err := pgtest.Start(context.Background())
	suite.Require().NoError(err)
	suite.pg = pg
}

func (suite *OrderRepositoryIntegrationTestSuite) SetupTest() {
	suite.Require().NoError(suite.pg.Reset())
	suite.repository = orderrepo.NewGormOrderRepository(suite.pg.DB)
}

func (suite *OrderRepositoryIntegrationTestSuite) TearDownSuite() {
	if suite.pg != nil {
		suite.Require().NoError(suite.pg.Stop(context.Background()))
	}
}

func (suite *OrderRepositoryIntegrationTestSuite) TestAdd_ThenGet_RoundTripsItemsAndHistory() {
	ctx := suite.T().Context()
	o := suite.newOrder(order.GenerateNumber())

	suite.Require().NoError(suite.repository.Add(ctx, o))

	got, err := suite.repository.Get(ctx, o.ID())
	suite.Require().NoError(err)
	suite.True(o.ID().IsEqual(got.ID()))
	suite.Equal(o.Number(), got.Number())
	suite.Equal(order.Pending, got.Status())
	suite.Equal(order.PaymentPending, got.PaymentStatus())
	suite.True(decimal.RequireFromString("300.00").Equal(got.TotalAmount()))
	suite.True(got.Subtotal().Equal(got.TotalAmount()))
	suite.Equal(o.Parties(), got.Parties())

	suite.Require().Len(got.Items(), 1)
	suite.Equal(3, got.Items()[0].Quantity())
	suite.True(decimal.RequireFromString("100.00").Equal(got.Items()[0].UnitPrice()))

	suite.Require().Len(got.History(), 1)
	suite.Equal(order.Pending, got.History()[0].Status())
	suite.Equal(kernel.ActorClient, got.History()[0].ActorType())
}

func (suite *OrderRepositoryIntegrationTestSuite) TestAdd_DuplicateNumber_ReturnsErrOrderNumberTaken() {
	ctx := suite.T().Context()
	number := order.GenerateNumber()

	suite.Require().NoError(suite.repository.Add(ctx, suite.newOrder(number)))

	err := suite.repository.Add(ctx, suite.newOrder(number))
	suite.Require().ErrorIs(err, ports.ErrOrderNumberTaken)
	suite.assertOrderCount(1)
}

func (suite *OrderRepositoryIntegrationTestSuite) TestGet_Missing_ReturnsNotFound() {
	got, err := suite.repository.Get(suite.T().Context(), kernel.NewUUID())

	suite.Nil(got)
	suite.Require().ErrorIs(err, errs.ErrObjectNotFound)
	suite.Equal("Order not found", errs.Message(err))
}

func (suite *OrderRepositoryIntegrationTestSuite) TestUpdateStatus_AppendsHistory() {
	ctx := suite.T().Context()
	o := suite.newOrder(order.GenerateNumber())
	suite.Require().NoError(suite.repository.Add(ctx, o))

	change, err := o.Apply(order.Confirm, suite.actor(kernel.ActorBusiness), "Kitchen open")
	suite.Require().NoError(err)
	suite.Require().NoError(suite.repository.UpdateStatus(ctx, o, change))

	got, err := suite.repository.Get(ctx, o.ID())
	suite.Require().NoError(err)
	suite.Equal(order.Confirmed, got.Status())
	suite.Require().Len(got.History(), 2)
	suite.Equal(order.Confirmed, got.History()[1].Status())
	suite.Equal("Order confirmed by business. Kitchen open", got.History()[1].Notes())
}

func (suite *OrderRepositoryIntegrationTestSuite) TestUpdateStatus_StaleStatus_IsRejectedWithoutWriting() {
	ctx := suite.T().Context()
	o := suite.newOrder(order.GenerateNumber())
	suite.Require().NoError(suite.repository.Add(ctx, o))

	stale, err := suite.repository.Get(ctx, o.ID())
	suite.Require().NoError(err)

	business := suite.actor(kernel.ActorBusiness)
	change, err := o.Apply(order.Confirm, business, "")
	suite.Require().NoError(err)
	suite.Require().NoError(suite.repository.UpdateStatus(ctx, o, change))

	// A second writer still believes the order is pending.
	staleChange, err := stale.Apply(order.Cancel, business, "")
	suite.Require().NoError(err)
	err = suite.repository.UpdateStatus(ctx, stale, staleChange)
	suite.Require().ErrorIs(err, errs.ErrInvalidStateTransition)

	got, err := suite.repository.Get(ctx, o.ID())
	suite.Require().NoError(err)
	suite.Equal(order.Confirmed, got.Status())
	suite.Len(got.History(), 2)
}

func (suite *OrderRepositoryIntegrationTestSuite) TestUpdateStatus_AssignmentPersistsAgentHold() {
	ctx := suite.T().Context()
	o := suite.newOrder(order.GenerateNumber())
	suite.Require().NoError(suite.repository.Add(ctx, o))

	business := suite.actor(kernel.ActorBusiness)
	for _, tr := range []order.Transition{order.Confirm, order.StartPreparing, order.CompletePreparation} {
		change, err := o.Apply(tr, business, "")
		suite.Require().NoError(err)
		suite.Require().NoError(suite.repository.UpdateStatus(ctx, o, change))
	}

	agent := suite.actor(kernel.ActorAgent)
	agentAccount := kernel.NewUUID()
	change, err := o.AssignAgent(agent, agentAccount, decimal.RequireFromString("300.00"), "")
	suite.Require().NoError(err)
	suite.Require().NoError(suite.repository.UpdateStatus(ctx, o, change))

	got, err := suite.repository.Get(ctx, o.ID())
	suite.Require().NoError(err)
	suite.Equal(order.AssignedToAgent, got.Status())
	suite.Require().NotNil(got.AgentID())
	suite.True(agent.ID().IsEqual(*got.AgentID()))
	suite.Require().NotNil(got.AgentAccountID())
	suite.True(agentAccount.IsEqual(*got.AgentAccountID()))
	suite.True(decimal.RequireFromString("300.00").Equal(got.AgentHoldAmount()))
	suite.True(got.HasAgentHold())
}

func (suite *OrderRepositoryIntegrationTestSuite) TestUpdatePayment() {
	ctx := suite.T().Context()
	o := suite.newOrder(order.GenerateNumber())
	suite.Require().NoError(suite.repository.Add(ctx, o))

	suite.Require().NoError(o.MarkFundsWithheld())
	suite.Require().NoError(suite.repository.UpdatePayment(ctx, o))

	got, err := suite.repository.Get(ctx, o.ID())
	suite.Require().NoError(err)
	suite.Equal(order.PaymentWithheld, got.PaymentStatus())
}

func (suite *OrderRepositoryIntegrationTestSuite) TestDelete_RemovesOrderItemsAndHistory() {
	ctx := suite.T().Context()
	o := suite.newOrder(order.GenerateNumber())
	suite.Require().NoError(suite.repository.Add(ctx, o))

	suite.Require().NoError(suite.repository.Delete(ctx, o.ID()))

	suite.assertOrderCount(0)
	var items, history int64
	suite.Require().NoError(suite.pg.DB.Model(&orderrepo.ItemDTO{}).Count(&items).Error)
	suite.Require().NoError(suite.pg.DB.Model(&orderrepo.HistoryDTO{}).Count(&history).Error)
	suite.Zero(items)
	suite.Zero(history)
}

func (suite *OrderRepositoryIntegrationTestSuite) newOrder(number string) *order.Order {
	currency, err := kernel.NewCurrency("USD")
	suite.Require().NoError(err)

	item, err := order.NewItem(kernel.NewUUID(), kernel.NewUUID(), kernel.NewUUID(),
		"Jollof rice", "Large tray", 3, decimal.RequireFromString("100.00"))
	suite.Require().NoError(err)

	o, err := order.NewOrder(kernel.NewUUID(), number, order.Parties{
		ClientID:           kernel.NewUUID(),
		ClientAccountID:    kernel.NewUUID(),
		BusinessID:         kernel.NewUUID(),
		BusinessLocationID: kernel.NewUUID(),
		DeliveryAddressID:  kernel.NewUUID(),
	}, currency, []order.Item{item}, suite.actor(kernel.ActorClient), "")
	suite.Require().NoError(err)
	return o
}

func (suite *OrderRepositoryIntegrationTestSuite) actor(typ kernel.ActorType) kernel.Actor {
	a, err := kernel.NewActor(kernel.NewUUID(), typ)
	suite.Require().NoError(err)
	return a
}

func (suite *OrderRepositoryIntegrationTestSuite) assertOrderCount(expected int64) {
	var count int64
	suite.Require().NoError(suite.pg.DB.Model(&orderrepo.OrderDTO{}).Count(&count).Error)
	suite.Equal(expected, count)
}

func TestOrderRepositoryIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(OrderRepositoryIntegrationTestSuite))
}
