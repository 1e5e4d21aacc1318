package postgres

import (
	"fulfillment/internal/adapters/out/postgres/clientrepo"
	"fulfillment/internal/adapters/out/postgres/inventoryrepo"
	"fulfillment/internal/adapters/out/postgres/ledgerrepo"
	"fulfillment/internal/adapters/out/postgres/orderrepo"
	"fulfillment/internal/adapters/out/postgres/outboxrepo"

	"gorm.io/gorm"
)

// Migrate creates or updates every table the service owns. Parents come
// before children so foreign keys resolve.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&clientrepo.ClientDTO{},
		&clientrepo.AddressDTO{},
		&clientrepo.BusinessDTO{},
		&inventoryrepo.ItemDTO{},
		&inventoryrepo.LocationDTO{},
		&inventoryrepo.InventoryDTO{},
		&ledgerrepo.AccountDTO{},
		&ledgerrepo.TransactionDTO{},
		&orderrepo.OrderDTO{},
		&orderrepo.ItemDTO{},
		&orderrepo.HistoryDTO{},
		&outboxrepo.EventDTO{},
	)
}
