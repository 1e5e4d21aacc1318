package order

import (
	"errors"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

var ErrHistoryEntryIsNotConstructed = errs.NewValueIsRequiredError("history entry must be created via NewHistoryEntry")

// HistoryEntry is one append-only row of the order's status audit trail.
type HistoryEntry struct {
	id        kernel.UUID
	status    Status
	notes     string
	actorType kernel.ActorType
	actorID   *kernel.UUID
	createdAt time.Time
	guard     guard.ConstructorGuard
}

func NewHistoryEntry(id kernel.UUID, status Status, notes string, actor kernel.Actor, at time.Time) (HistoryEntry, error) {
	if err := errors.Join(id.Validate(), status.Validate(), actor.Validate()); err != nil {
		return HistoryEntry{}, err
	}
	return HistoryEntry{
		id:        id,
		status:    status,
		notes:     notes,
		actorType: actor.Type(),
		actorID:   actor.ID(),
		createdAt: at,
		guard:     guard.NewConstructorGuard(),
	}, nil
}

// RestoreHistoryEntry rebuilds a persisted row; actorID is nil for system rows.
func RestoreHistoryEntry(
	id kernel.UUID,
	status Status,
	notes string,
	actorType kernel.ActorType,
	actorID *kernel.UUID,
	at time.Time,
) (HistoryEntry, error) {
	if err := errors.Join(id.Validate(), status.Validate(), actorType.Validate()); err != nil {
		return HistoryEntry{}, err
	}
	return HistoryEntry{
		id:        id,
		status:    status,
		notes:     notes,
		actorType: actorType,
		actorID:   actorID,
		createdAt: at,
		guard:     guard.NewConstructorGuard(),
	}, nil
}

func (h HistoryEntry) Validate() error {
	return h.guard.Validate(ErrHistoryEntryIsNotConstructed)
}

func (h HistoryEntry) ID() kernel.UUID             { return h.id }
func (h HistoryEntry) Status() Status              { return h.status }
func (h HistoryEntry) Notes() string               { return h.notes }
func (h HistoryEntry) ActorType() kernel.ActorType { return h.actorType }
func (h HistoryEntry) ActorID() *kernel.UUID       { return h.actorID }
func (h HistoryEntry) CreatedAt() time.Time        { return h.createdAt }
