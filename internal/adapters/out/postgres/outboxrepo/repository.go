package outboxrepo

import (
	"context"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/ports"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type GormOutboxRepository struct {
	db *gorm.DB
}

func NewGormOutboxRepository(db *gorm.DB) *GormOutboxRepository {
	return &GormOutboxRepository{db: db}
}

func (r *GormOutboxRepository) Add(ctx context.Context, event ports.OutboxEvent) error {
	if err := event.ID.Validate(); err != nil {
		return err
	}

	dto := EventDTO{
		ID:          event.ID.Bytes(),
		AggregateID: event.AggregateID.Bytes(),
		EventType:   event.Type,
		Payload:     datatypes.JSON(event.Payload),
		CreatedAt:   event.CreatedAt,
	}
	return r.db.WithContext(ctx).Create(&dto).Error
}

// FetchUnpublished locks the rows it returns until the surrounding transaction
// ends. Must be called inside a unit of work.
func (r *GormOutboxRepository) FetchUnpublished(ctx context.Context, limit int) ([]ports.OutboxEvent, error) {
	var dtos []EventDTO
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
		Where("published_at IS NULL").
		Order("created_at ASC").
		Limit(limit).
		Find(&dtos).Error
	if err != nil {
		return nil, err
	}

	events := make([]ports.OutboxEvent, 0, len(dtos))
	for _, dto := range dtos {
		id, idErr := kernel.UUIDFromBytes(dto.ID[:])
		if idErr != nil {
			return nil, idErr
		}
		aggregateID, idErr := kernel.UUIDFromBytes(dto.AggregateID[:])
		if idErr != nil {
			return nil, idErr
		}
		events = append(events, ports.OutboxEvent{
			ID:          id,
			AggregateID: aggregateID,
			Type:        dto.EventType,
			Payload:     []byte(dto.Payload),
			CreatedAt:   dto.CreatedAt,
		})
	}

	return events, nil
}

func (r *GormOutboxRepository) MarkPublished(ctx context.Context, ids []kernel.UUID) error {
	if len(ids) == 0 {
		return nil
	}

	raw := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		raw = append(raw, id.Bytes())
	}

	return r.db.WithContext(ctx).
		Model(&EventDTO{}).
		Where("id IN ?", raw).
		Update("published_at", time.Now().UTC()).Error
}
