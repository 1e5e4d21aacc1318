package ports

import (
	"context"

	"fulfillment/internal/core/domain/model/kernel"
)

// Client is the client record linked to a user profile.
type Client struct {
	ID     kernel.UUID
	UserID kernel.UUID
}

// ClientDirectory reads client profiles and their delivery addresses.
type ClientDirectory interface {
	// FindByUser fails with a NotFoundError when the user has no client record.
	FindByUser(ctx context.Context, userID kernel.UUID) (Client, error)

	// DeliveryAddress returns the client's primary address, or the most recent one
	// when none is flagged primary.
	DeliveryAddress(ctx context.Context, clientID kernel.UUID) (kernel.UUID, error)
}

// BusinessDirectory finds who gets paid on behalf of a business.
type BusinessDirectory interface {
	// BusinessOwner returns the user id owning the business, or a NotFoundError.
	BusinessOwner(ctx context.Context, businessID kernel.UUID) (kernel.UUID, error)
}
