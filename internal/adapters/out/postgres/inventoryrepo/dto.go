// Package inventoryrepo resolves business inventory rows into priced snapshots
// and keeps their reserved quantity in step with open orders.
package inventoryrepo

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ItemDTO struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	BusinessID  uuid.UUID `gorm:"type:uuid;not null;index"`
	Name        string    `gorm:"not null"`
	Description string
	Currency    string    `gorm:"size:3;not null"`
	IsActive    bool      `gorm:"not null;default:true"`
	CreatedAt   time.Time `gorm:"not null"`
}

func (ItemDTO) TableName() string {
	return "items"
}

type LocationDTO struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	BusinessID uuid.UUID `gorm:"type:uuid;not null;index"`
	Name       string    `gorm:"not null"`
}

func (LocationDTO) TableName() string {
	return "business_locations"
}

// InventoryDTO is one stocked item at one business location. Available stock is
// quantity minus reserved_quantity.
type InventoryDTO struct {
	ID                 uuid.UUID       `gorm:"type:uuid;primaryKey"`
	BusinessLocationID uuid.UUID       `gorm:"type:uuid;not null;index"`
	ItemID             uuid.UUID       `gorm:"type:uuid;not null;index"`
	Quantity           int             `gorm:"not null;check:chk_business_inventory_quantity,quantity >= 0"`
	ReservedQuantity   int             `gorm:"not null;default:0;check:chk_business_inventory_reserved,reserved_quantity >= 0 AND reserved_quantity <= quantity"`
	SellingPrice       decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	IsActive           bool            `gorm:"not null;default:true"`
	CreatedAt          time.Time       `gorm:"not null"`
	UpdatedAt          time.Time       `gorm:"not null"`
}

func (InventoryDTO) TableName() string {
	return "business_inventory"
}

type snapshotRow struct {
	InventoryID        uuid.UUID
	ItemID             uuid.UUID
	BusinessID         uuid.UUID
	BusinessLocationID uuid.UUID
	ItemName           string
	ItemDescription    string
	Price              decimal.Decimal
	Currency           string
	AvailableQuantity  int
	IsActive           bool
}
