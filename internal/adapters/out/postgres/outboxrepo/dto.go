// Package outboxrepo stores order events written in the same transaction as the
// change they describe, until the relay hands them to the broker.
package outboxrepo

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type EventDTO struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey"`
	AggregateID uuid.UUID      `gorm:"type:uuid;not null;index"`
	EventType   string         `gorm:"size:64;not null"`
	Payload     datatypes.JSON `gorm:"type:jsonb;not null"`
	CreatedAt   time.Time      `gorm:"not null;index"`
	PublishedAt *time.Time     `gorm:"index"`
}

func (EventDTO) TableName() string {
	return "outbox_events"
}
