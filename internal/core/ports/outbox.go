package ports

import (
	"context"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
)

// OutboxEvent is an integration event stored in the same transaction as the
// state change it describes, then relayed to the broker.
type OutboxEvent struct {
	ID          kernel.UUID
	AggregateID kernel.UUID
	Type        string
	Payload     []byte
	CreatedAt   time.Time
}

type OutboxRepository interface {
	Add(ctx context.Context, event OutboxEvent) error

	// FetchUnpublished locks up to limit unpublished events, oldest first.
	// Rows locked by another relay are skipped.
	FetchUnpublished(ctx context.Context, limit int) ([]OutboxEvent, error)

	MarkPublished(ctx context.Context, ids []kernel.UUID) error
}

// EventPublisher delivers events to the message broker, keyed by aggregate id.
type EventPublisher interface {
	Publish(ctx context.Context, events []OutboxEvent) error
}

// IdempotencyStore remembers request keys for a bounded time.
type IdempotencyStore interface {
	// Reserve returns false when key was already reserved.
	Reserve(ctx context.Context, key string) (bool, error)
	Release(ctx context.Context, key string) error
}
