package cmd

import (
	"fmt"
	"log/slog"

	"fulfillment/internal/adapters/out/postgres"
	"fulfillment/internal/adapters/out/postgres/clientrepo"
	"fulfillment/internal/adapters/out/postgres/inventoryrepo"
	"fulfillment/internal/adapters/out/postgres/ledgerrepo"
	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/application/usecases/queries"
	"fulfillment/internal/core/domain/services"
	"fulfillment/internal/core/ports"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CompositionRoot wires handlers to adapters. The client pool serves orders,
// inventory and the outbox; the ledger pool is the only one allowed to post
// to accounts.
type CompositionRoot struct {
	config      Config
	gormDB      *gorm.DB
	ledgerDB    *gorm.DB
	uowFactory  *postgres.GormUnitOfWorkFactory
	idempotency ports.IdempotencyStore
	publisher   ports.EventPublisher
	logger      *slog.Logger
}

func NewCompositionRoot(
	config Config,
	gormDB, ledgerDB *gorm.DB,
	idempotency ports.IdempotencyStore,
	publisher ports.EventPublisher,
	logger *slog.Logger,
) CompositionRoot {
	return CompositionRoot{
		config:      config,
		gormDB:      gormDB,
		ledgerDB:    ledgerDB,
		uowFactory:  postgres.NewGormUnitOfWorkFactory(gormDB),
		idempotency: idempotency,
		publisher:   publisher,
		logger:      logger,
	}
}

func (c *CompositionRoot) orderUoWFactory() commands.OrderUoWFactory {
	return FuncOrderUoWFactory(func() commands.OrderUoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) CreateCreateOrderCommandHandler() commands.CreateOrderCommandHandler {
	return commands.NewCreateOrderCommandHandler(
		c.orderUoWFactory(),
		clientrepo.NewGormClientDirectory(c.gormDB),
		inventoryrepo.NewGormInventoryResolver(c.gormDB),
		ledgerrepo.NewGormFundsLedger(c.ledgerDB),
		c.idempotency,
		c.logger,
	)
}

func (c *CompositionRoot) CreateChangeOrderStatusCommandHandler() (commands.ChangeOrderStatusCommandHandler, error) {
	percentage, err := decimal.NewFromString(c.config.AgentHoldPercentage)
	if err != nil {
		return commands.ChangeOrderStatusCommandHandler{}, fmt.Errorf("parse AGENT_HOLD_PERCENTAGE: %w", err)
	}
	holdPolicy, err := services.NewAgentHoldPolicy(percentage)
	if err != nil {
		return commands.ChangeOrderStatusCommandHandler{}, err
	}
	fee, err := decimal.NewFromString(c.config.FailedDeliveryFee)
	if err != nil {
		return commands.ChangeOrderStatusCommandHandler{}, fmt.Errorf("parse FAILED_DELIVERY_FEE: %w", err)
	}
	return commands.NewChangeOrderStatusCommandHandler(
		c.orderUoWFactory(),
		clientrepo.NewGormClientDirectory(c.gormDB),
		ledgerrepo.NewGormFundsLedger(c.ledgerDB),
		holdPolicy,
		services.NewSettlement(fee),
		c.logger,
	), nil
}

func (c *CompositionRoot) CreateBatchChangeOrderStatusCommandHandler(
	changer commands.StatusChanger,
) commands.BatchChangeOrderStatusCommandHandler {
	return commands.NewBatchChangeOrderStatusCommandHandler(changer, c.config.BatchConcurrency, c.logger)
}

func (c *CompositionRoot) CreatePublishOutboxEventsCommandHandler() commands.PublishOutboxEventsCommandHandler {
	var f commands.OutboxUoWFactory = FuncOutboxUoWFactory(func() commands.OutboxUoW {
		return c.uowFactory.Create()
	})
	return commands.NewPublishOutboxEventsCommandHandler(f, c.publisher, c.logger)
}

func (c *CompositionRoot) CreateGetOrderQueryHandler() queries.GetOrderQueryHandler {
	return queries.NewGetOrderQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateGetUncompletedOrdersQueryHandler() queries.GetUncompletedOrdersQueryHandler {
	return queries.NewGetUncompletedOrdersQueryHandler(c.gormDB)
}

type FuncOrderUoWFactory func() commands.OrderUoW

func (f FuncOrderUoWFactory) Create() commands.OrderUoW {
	return f()
}

type FuncOutboxUoWFactory func() commands.OutboxUoW

func (f FuncOutboxUoWFactory) Create() commands.OutboxUoW {
	return f()
}
