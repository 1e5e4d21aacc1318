package inventoryrepo

import (
	"context"

	"fulfillment/internal/core/domain/model/inventory"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormInventoryResolver reads the priced view of one inventory row. It runs
// outside any unit of work: the reservation made later is what guards stock.
type GormInventoryResolver struct {
	db *gorm.DB
}

func NewGormInventoryResolver(db *gorm.DB) *GormInventoryResolver {
	return &GormInventoryResolver{db: db}
}

func (r *GormInventoryResolver) Resolve(ctx context.Context, ref kernel.UUID) (inventory.Snapshot, error) {
	if err := ref.Validate(); err != nil {
		return inventory.Snapshot{}, err
	}

	var row snapshotRow
	result := r.db.WithContext(ctx).Raw(`
		SELECT
			bi.id AS inventory_id,
			bi.item_id,
			bl.business_id,
			bi.business_location_id,
			i.name AS item_name,
			i.description AS item_description,
			bi.selling_price AS price,
			i.currency,
			bi.quantity - bi.reserved_quantity AS available_quantity,
			bi.is_active AND i.is_active AS is_active
		FROM business_inventory bi
		JOIN items i ON i.id = bi.item_id
		JOIN business_locations bl ON bl.id = bi.business_location_id
		WHERE bi.id = ?
	`, ref.Bytes()).Scan(&row)
	if result.Error != nil {
		return inventory.Snapshot{}, result.Error
	}

	if result.RowsAffected == 0 {
		return inventory.Snapshot{}, errs.NewNotFoundError("inventory", "Inventory item not found")
	}

	return row.toDomain()
}

func (row snapshotRow) toDomain() (inventory.Snapshot, error) {
	ids := make([]kernel.UUID, 0, 4)
	for _, raw := range []uuid.UUID{row.InventoryID, row.ItemID, row.BusinessID, row.BusinessLocationID} {
		id, err := kernel.UUIDFromBytes(raw[:])
		if err != nil {
			return inventory.Snapshot{}, err
		}
		ids = append(ids, id)
	}

	currency, err := kernel.NewCurrency(row.Currency)
	if err != nil {
		return inventory.Snapshot{}, err
	}

	return inventory.Snapshot{
		InventoryID:        ids[0],
		ItemID:             ids[1],
		BusinessID:         ids[2],
		BusinessLocationID: ids[3],
		ItemName:           row.ItemName,
		ItemDescription:    row.ItemDescription,
		Price:              row.Price,
		Currency:           currency,
		AvailableQuantity:  row.AvailableQuantity,
		IsActive:           row.IsActive,
	}, nil
}
