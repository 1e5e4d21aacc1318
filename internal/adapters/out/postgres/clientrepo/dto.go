// Package clientrepo answers questions about the parties of an order: which
// client record a user owns, where that client gets deliveries and which user
// owns a business.
package clientrepo

import (
	"time"

	"github.com/google/uuid"
)

type ClientDTO struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	CreatedAt time.Time `gorm:"not null"`
}

func (ClientDTO) TableName() string {
	return "clients"
}

type AddressDTO struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	ClientID    uuid.UUID `gorm:"type:uuid;not null;index"`
	AddressLine string    `gorm:"not null"`
	IsPrimary   bool      `gorm:"not null;default:false"`
	CreatedAt   time.Time `gorm:"not null"`
}

func (AddressDTO) TableName() string {
	return "addresses"
}

type BusinessDTO struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index"`
	Name      string    `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null"`
}

func (BusinessDTO) TableName() string {
	return "businesses"
}
