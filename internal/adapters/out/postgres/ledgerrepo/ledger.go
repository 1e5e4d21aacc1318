package ledgerrepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fulfillment/internal/core/domain/model/account"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrPostingNotApplied = errors.New("ledger posting was not applied")

// GormFundsLedger applies postings as one conditional UPDATE plus one journal
// row, both in a transaction of their own. The balance check and the write are
// the same statement, so two concurrent withholds can never both pass on the
// same funds.
type GormFundsLedger struct {
	db *gorm.DB
}

func NewGormFundsLedger(db *gorm.DB) *GormFundsLedger {
	return &GormFundsLedger{db: db}
}

func (l *GormFundsLedger) FindAccount(ctx context.Context, ownerID kernel.UUID, currency kernel.Currency) (*account.Account, error) {
	if err := errors.Join(ownerID.Validate(), currency.Validate()); err != nil {
		return nil, err
	}

	var dto AccountDTO
	err := l.db.WithContext(ctx).
		Where("user_id = ? AND currency = ? AND is_active", ownerID.Bytes(), currency.Code()).
		First(&dto).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewNotFoundError("account", "No account found for currency "+currency.Code())
		}
		return nil, err
	}

	return toDomain(dto)
}

func (l *GormFundsLedger) Get(ctx context.Context, accountID kernel.UUID) (*account.Account, error) {
	if err := accountID.Validate(); err != nil {
		return nil, err
	}

	dto, err := load(ctx, l.db, accountID)
	if err != nil {
		return nil, err
	}
	return toDomain(dto)
}

// Post applies the movement and returns the account as it stands afterwards.
// When the guarded UPDATE matches nothing, the current balance is replayed
// through account.Apply to explain the refusal.
func (l *GormFundsLedger) Post(ctx context.Context, m account.Movement) (*account.Account, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}

	available, withheld := m.Kind().Deltas(m.Amount())
	now := time.Now().UTC()

	var updated AccountDTO
	err := l.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&updated).
			Clauses(clause.Returning{}).
			Where("id = ? AND is_active", m.AccountID().Bytes()).
			Where("available_balance + ? >= 0 AND withheld_balance + ? >= 0", available, withheld).
			Updates(map[string]any{
				"available_balance": gorm.Expr("available_balance + ?", available),
				"withheld_balance":  gorm.Expr("withheld_balance + ?", withheld),
				"total_balance":     gorm.Expr("total_balance + ?", available.Add(withheld)),
				"updated_at":        now,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return explainRefusal(ctx, tx, m)
		}

		return tx.Create(&TransactionDTO{
			ID:              kernel.NewUUID().Bytes(),
			AccountID:       m.AccountID().Bytes(),
			Amount:          m.Amount(),
			TransactionType: m.Kind().String(),
			Memo:            m.Memo(),
			ReferenceID:     m.Reference().Bytes(),
			CreatedAt:       now,
		}).Error
	})
	if err != nil {
		return nil, err
	}

	return toDomain(updated)
}

func explainRefusal(ctx context.Context, tx *gorm.DB, m account.Movement) error {
	dto, err := load(ctx, tx, m.AccountID())
	if err != nil {
		return err
	}

	acc, err := toDomain(dto)
	if err != nil {
		return err
	}

	if err = acc.Apply(m); err != nil {
		return err
	}

	return fmt.Errorf("%w: %s of %s on account %s", ErrPostingNotApplied, m.Kind(), m.Amount(), m.AccountID())
}

func load(ctx context.Context, db *gorm.DB, accountID kernel.UUID) (AccountDTO, error) {
	var dto AccountDTO
	if err := db.WithContext(ctx).First(&dto, "id = ?", accountID.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return AccountDTO{}, errs.NewNotFoundError("account", "Account not found")
		}
		return AccountDTO{}, err
	}
	return dto, nil
}
