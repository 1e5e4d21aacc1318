package orderrepo

import (
	"context"
	"errors"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

const uniqueViolation = "23505"

// GormOrderRepository implements OrderRepository using GORM.
type GormOrderRepository struct {
	db *gorm.DB
}

func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// Add inserts the order together with its items and history rows.
// A clash on the order number is reported as ports.ErrOrderNumberTaken.
func (r *GormOrderRepository) Add(ctx context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		if isUniqueViolation(err, OrderNumberIndex) {
			return ports.ErrOrderNumberTaken
		}
		return err
	}

	return nil
}

// Get retrieves an order with its items and its history, oldest entry first.
func (r *GormOrderRepository) Get(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto OrderDTO
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("History", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		First(&dto, "id = ?", id.Bytes()).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewNotFoundError("order", "Order not found")
		}
		return nil, err
	}

	return toDomain(dto)
}

// UpdateStatus only touches the row while it still holds change.From. Concurrent
// transitions on the same order serialise on the row lock; the loser sees no
// matching row and gets a StateTransitionError.
func (r *GormOrderRepository) UpdateStatus(ctx context.Context, aggregate *order.Order, change order.StatusChange) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	result := r.db.WithContext(ctx).
		Model(&OrderDTO{}).
		Where("id = ? AND status = ?", aggregate.ID().Bytes(), change.From.String()).
		Updates(map[string]any{
			"status":             change.To.String(),
			"payment_status":     aggregate.PaymentStatus().String(),
			"agent_id":           rawID(aggregate.AgentID()),
			"agent_account_id":   rawID(aggregate.AgentAccountID()),
			"agent_hold_amount":  aggregate.AgentHoldAmount(),
			"actual_delivery_at": aggregate.ActualDeliveryAt(),
			"updated_at":         aggregate.UpdatedAt(),
		})
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return errs.NewStateTransitionError(change.From.String(), change.Transition.String(),
			"Order status changed concurrently")
	}

	entry := historyFromDomain(aggregate.ID(), change.Entry)
	return r.db.WithContext(ctx).Create(&entry).Error
}

func (r *GormOrderRepository) UpdatePayment(ctx context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	result := r.db.WithContext(ctx).
		Model(&OrderDTO{}).
		Where("id = ?", aggregate.ID().Bytes()).
		Updates(map[string]any{
			"payment_status": aggregate.PaymentStatus().String(),
			"updated_at":     aggregate.UpdatedAt(),
		})
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return errs.NewNotFoundError("order", "Order not found")
	}

	return nil
}

func (r *GormOrderRepository) Delete(ctx context.Context, id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}

	db := r.db.WithContext(ctx)
	if err := db.Where("order_id = ?", id.Bytes()).Delete(&HistoryDTO{}).Error; err != nil {
		return err
	}
	if err := db.Where("order_id = ?", id.Bytes()).Delete(&ItemDTO{}).Error; err != nil {
		return err
	}
	return db.Where("id = ?", id.Bytes()).Delete(&OrderDTO{}).Error
}

func isUniqueViolation(err error, constraint string) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	return pqErr.Code == uniqueViolation && pqErr.Constraint == constraint
}
