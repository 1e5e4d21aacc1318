// Package pgtest starts a throwaway PostgreSQL container for integration tests
// and seeds the reference rows the fulfillment tables point at.
package pgtest

import (
	"context"
	"time"

	"fulfillment/internal/adapters/out/postgres"
	"fulfillment/internal/adapters/out/postgres/clientrepo"
	"fulfillment/internal/adapters/out/postgres/inventoryrepo"
	"fulfillment/internal/adapters/out/postgres/ledgerrepo"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/gorm"
)

// Truncate lists every table Migrate creates.
const Truncate = `TRUNCATE TABLE outbox_events, order_status_history, order_items, orders,
	account_transactions, accounts, business_inventory, business_locations, items,
	addresses, clients, businesses CASCADE`

type Database struct {
	Container *tcpostgres.PostgresContainer
	DB        *gorm.DB
}

// Start runs postgres:15-alpine, connects through postgres.Open and migrates.
func Start(ctx context.Context) (*Database, error) {
	container, err := tcpostgres.Run(ctx,
		"postgres:15-alpine",
		tcpostgres.WithDatabase("testdb"),
		tcpostgres.WithUsername("testuser"),
		tcpostgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		return nil, err
	}

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, err
	}

	db, err := postgres.Open(dsn)
	if err != nil {
		_ = container.Terminate(ctx)
		return nil, err
	}

	if err = postgres.Migrate(db); err != nil {
		_ = container.Terminate(ctx)
		return nil, err
	}

	return &Database{Container: container, DB: db}, nil
}

func (d *Database) Reset() error {
	return d.DB.Exec(Truncate).Error
}

func (d *Database) Stop(ctx context.Context) error {
	_ = postgres.Close(d.DB)
	return d.Container.Terminate(ctx)
}

// Stock is a seeded inventory row and its parents.
type Stock struct {
	InventoryID uuid.UUID
	ItemID      uuid.UUID
	BusinessID  uuid.UUID
	OwnerID     uuid.UUID
	LocationID  uuid.UUID
}

// SeedStock creates an active item stocked at one location of a new business.
func (d *Database) SeedStock(ctx context.Context, currency string, price decimal.Decimal, quantity int) (Stock, error) {
	now := time.Now().UTC()
	s := Stock{
		InventoryID: uuid.New(),
		ItemID:      uuid.New(),
		BusinessID:  uuid.New(),
		OwnerID:     uuid.New(),
		LocationID:  uuid.New(),
	}

	err := d.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&clientrepo.BusinessDTO{
			ID: s.BusinessID, UserID: s.OwnerID, Name: "Mama's Kitchen", CreatedAt: now,
		}).Error; err != nil {
			return err
		}
		if err := tx.Create(&inventoryrepo.ItemDTO{
			ID: s.ItemID, BusinessID: s.BusinessID, Name: "Jollof rice", Description: "Large tray",
			Currency: currency, IsActive: true, CreatedAt: now,
		}).Error; err != nil {
			return err
		}
		if err := tx.Create(&inventoryrepo.LocationDTO{
			ID: s.LocationID, BusinessID: s.BusinessID, Name: "Main kitchen",
		}).Error; err != nil {
			return err
		}
		return tx.Create(&inventoryrepo.InventoryDTO{
			ID: s.InventoryID, BusinessLocationID: s.LocationID, ItemID: s.ItemID,
			Quantity: quantity, SellingPrice: price, IsActive: true, CreatedAt: now, UpdatedAt: now,
		}).Error
	})
	return s, err
}

// SeedClient creates a client for userID with one primary address.
func (d *Database) SeedClient(ctx context.Context, userID uuid.UUID) (clientID, addressID uuid.UUID, err error) {
	now := time.Now().UTC()
	clientID, addressID = uuid.New(), uuid.New()

	err = d.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&clientrepo.ClientDTO{ID: clientID, UserID: userID, CreatedAt: now}).Error; err != nil {
			return err
		}
		return tx.Create(&clientrepo.AddressDTO{
			ID: addressID, ClientID: clientID, AddressLine: "12 Marina Road", IsPrimary: true, CreatedAt: now,
		}).Error
	})
	return clientID, addressID, err
}

// SeedAccount creates an active account holding available funds.
func (d *Database) SeedAccount(ctx context.Context, ownerID uuid.UUID, currency string, available decimal.Decimal) (uuid.UUID, error) {
	now := time.Now().UTC()
	id := uuid.New()
	err := d.DB.WithContext(ctx).Create(&ledgerrepo.AccountDTO{
		ID: id, UserID: ownerID, Currency: currency,
		AvailableBalance: available, WithheldBalance: decimal.Zero, TotalBalance: available,
		IsActive: true, CreatedAt: now, UpdatedAt: now,
	}).Error
	return id, err
}
