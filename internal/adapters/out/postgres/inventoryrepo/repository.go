package inventoryrepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"

	"gorm.io/gorm"
)

// GormInventoryRepository adjusts reserved stock. Every operation is a single
// conditional UPDATE, so concurrent orders can never reserve the same unit twice.
type GormInventoryRepository struct {
	db *gorm.DB
}

func NewGormInventoryRepository(db *gorm.DB) *GormInventoryRepository {
	return &GormInventoryRepository{db: db}
}

// Reserve moves quantity from available to reserved.
func (r *GormInventoryRepository) Reserve(ctx context.Context, inventoryID kernel.UUID, quantity int) error {
	affected, err := r.update(ctx, inventoryID, quantity,
		map[string]any{"reserved_quantity": gorm.Expr("reserved_quantity + ?", quantity)},
		"quantity - reserved_quantity >= ?", quantity)
	if err != nil || affected > 0 {
		return err
	}

	row, err := r.load(ctx, inventoryID)
	if err != nil {
		return err
	}
	return errs.NewBusinessRuleError("insufficient_quantity", fmt.Sprintf(
		"Insufficient quantity. Available: %d, Requested: %d", row.Quantity-row.ReservedQuantity, quantity))
}

// Release returns reserved quantity to available stock.
func (r *GormInventoryRepository) Release(ctx context.Context, inventoryID kernel.UUID, quantity int) error {
	affected, err := r.update(ctx, inventoryID, quantity,
		map[string]any{"reserved_quantity": gorm.Expr("reserved_quantity - ?", quantity)},
		"reserved_quantity >= ?", quantity)
	if err != nil || affected > 0 {
		return err
	}
	return r.shortReservation(ctx, inventoryID, "release", quantity)
}

// Consume removes delivered units from stock along with their reservation.
func (r *GormInventoryRepository) Consume(ctx context.Context, inventoryID kernel.UUID, quantity int) error {
	affected, err := r.update(ctx, inventoryID, quantity,
		map[string]any{
			"quantity":          gorm.Expr("quantity - ?", quantity),
			"reserved_quantity": gorm.Expr("reserved_quantity - ?", quantity),
		},
		"reserved_quantity >= ? AND quantity >= ?", quantity, quantity)
	if err != nil || affected > 0 {
		return err
	}
	return r.shortReservation(ctx, inventoryID, "consume", quantity)
}

func (r *GormInventoryRepository) update(
	ctx context.Context,
	inventoryID kernel.UUID,
	quantity int,
	updates map[string]any,
	condition string,
	conditionArgs ...any,
) (int64, error) {
	if err := inventoryID.Validate(); err != nil {
		return 0, err
	}
	if quantity <= 0 {
		return 0, errs.NewValueIsInvalidErrorWithCause("quantity is invalid", fmt.Errorf("%d is not greater than 0", quantity))
	}

	updates["updated_at"] = time.Now().UTC()
	result := r.db.WithContext(ctx).
		Model(&InventoryDTO{}).
		Where("id = ?", inventoryID.Bytes()).
		Where(condition, conditionArgs...).
		Updates(updates)
	return result.RowsAffected, result.Error
}

func (r *GormInventoryRepository) load(ctx context.Context, inventoryID kernel.UUID) (InventoryDTO, error) {
	var row InventoryDTO
	if err := r.db.WithContext(ctx).First(&row, "id = ?", inventoryID.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return InventoryDTO{}, errs.NewNotFoundError("inventory", "Inventory item not found")
		}
		return InventoryDTO{}, err
	}
	return row, nil
}

// shortReservation reports a release or consume larger than what is reserved.
// Orders only ever give back what they reserved, so this is a defect.
func (r *GormInventoryRepository) shortReservation(ctx context.Context, inventoryID kernel.UUID, op string, quantity int) error {
	row, err := r.load(ctx, inventoryID)
	if err != nil {
		return err
	}
	return errs.NewInvariantViolationError("reserved quantity", fmt.Errorf(
		"%s of %d exceeds reserved %d (quantity %d) on inventory %s",
		op, quantity, row.ReservedQuantity, row.Quantity, inventoryID))
}
