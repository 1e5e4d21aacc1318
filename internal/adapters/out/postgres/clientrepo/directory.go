package clientrepo

import (
	"context"
	"errors"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"

	"gorm.io/gorm"
)

type GormClientDirectory struct {
	db *gorm.DB
}

func NewGormClientDirectory(db *gorm.DB) *GormClientDirectory {
	return &GormClientDirectory{db: db}
}

func (d *GormClientDirectory) FindByUser(ctx context.Context, userID kernel.UUID) (ports.Client, error) {
	if err := userID.Validate(); err != nil {
		return ports.Client{}, err
	}

	var dto ClientDTO
	if err := d.db.WithContext(ctx).First(&dto, "user_id = ?", userID.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.Client{}, errs.NewNotFoundError("client", "Client not found")
		}
		return ports.Client{}, err
	}

	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return ports.Client{}, err
	}

	return ports.Client{ID: id, UserID: userID}, nil
}

// DeliveryAddress prefers the primary address and falls back to the newest one.
func (d *GormClientDirectory) DeliveryAddress(ctx context.Context, clientID kernel.UUID) (kernel.UUID, error) {
	if err := clientID.Validate(); err != nil {
		return kernel.UUID{}, err
	}

	var dto AddressDTO
	err := d.db.WithContext(ctx).
		Where("client_id = ?", clientID.Bytes()).
		Order("is_primary DESC").
		Order("created_at DESC").
		First(&dto).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return kernel.UUID{}, errs.NewNotFoundError("address", "Delivery address not found")
		}
		return kernel.UUID{}, err
	}

	return kernel.UUIDFromBytes(dto.ID[:])
}

func (d *GormClientDirectory) BusinessOwner(ctx context.Context, businessID kernel.UUID) (kernel.UUID, error) {
	if err := businessID.Validate(); err != nil {
		return kernel.UUID{}, err
	}

	var dto BusinessDTO
	if err := d.db.WithContext(ctx).First(&dto, "id = ?", businessID.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return kernel.UUID{}, errs.NewNotFoundError("business", "Business not found")
		}
		return kernel.UUID{}, err
	}

	return kernel.UUIDFromBytes(dto.UserID[:])
}
