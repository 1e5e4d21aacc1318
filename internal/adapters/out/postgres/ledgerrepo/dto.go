// Package ledgerrepo is the privileged side of the funds ledger. It is opened on
// its own connection pool, with credentials that alone may change balances.
package ledgerrepo

import (
	"time"

	"fulfillment/internal/core/domain/model/account"
	"fulfillment/internal/core/domain/model/kernel"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AccountDTO carries the balance invariants as table constraints, so a posting
// that would break them fails in the database even if it slipped past the code.
type AccountDTO struct {
	ID               uuid.UUID       `gorm:"type:uuid;primaryKey"`
	UserID           uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_accounts_user_currency"`
	Currency         string          `gorm:"size:3;not null;uniqueIndex:idx_accounts_user_currency"`
	AvailableBalance decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0;check:chk_accounts_available,available_balance >= 0"`
	WithheldBalance  decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0;check:chk_accounts_withheld,withheld_balance >= 0"`
	TotalBalance     decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0;check:chk_accounts_total,total_balance = available_balance + withheld_balance"`
	IsActive         bool            `gorm:"not null;default:true"`
	CreatedAt        time.Time       `gorm:"not null"`
	UpdatedAt        time.Time       `gorm:"not null"`
}

func (AccountDTO) TableName() string {
	return "accounts"
}

// TransactionDTO is one append-only journal row per posting.
type TransactionDTO struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey"`
	AccountID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	Amount          decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	TransactionType string          `gorm:"size:16;not null"`
	Memo            string
	ReferenceID     uuid.UUID `gorm:"type:uuid;index"`
	CreatedAt       time.Time `gorm:"not null"`
}

func (TransactionDTO) TableName() string {
	return "account_transactions"
}

func toDomain(dto AccountDTO) (*account.Account, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	ownerID, err := kernel.UUIDFromBytes(dto.UserID[:])
	if err != nil {
		return nil, err
	}
	currency, err := kernel.NewCurrency(dto.Currency)
	if err != nil {
		return nil, err
	}
	return account.RestoreAccount(id, ownerID, currency,
		dto.AvailableBalance, dto.WithheldBalance, dto.TotalBalance, dto.IsActive)
}
