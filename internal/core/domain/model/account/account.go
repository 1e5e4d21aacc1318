package account

import (
	"errors"
	"fmt"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"

	"github.com/shopspring/decimal"
)

var ErrAccountIsNotConstructed = errors.New("Account must be created via RestoreAccount")

// Account is a read snapshot of one balance in one currency. Balances change
// only through the ledger; Apply is the in-memory mirror of a posting, used to
// validate it and to explain why the ledger refused it.
type Account struct {
	id            kernel.UUID
	ownerID       kernel.UUID
	currency      kernel.Currency
	available     decimal.Decimal
	withheld      decimal.Decimal
	isActive      bool
	isConstructed bool
}

// RestoreAccount checks total = available + withheld and that neither
// sub-balance is negative.
func RestoreAccount(
	id, ownerID kernel.UUID,
	currency kernel.Currency,
	available, withheld, total decimal.Decimal,
	isActive bool,
) (*Account, error) {
	if err := errors.Join(id.Validate(), ownerID.Validate(), currency.Validate()); err != nil {
		return nil, err
	}
	if !available.Add(withheld).Equal(total) {
		return nil, errs.NewInvariantViolationError("account balance",
			fmt.Errorf("total %s differs from available %s + withheld %s", total, available, withheld))
	}
	if available.IsNegative() || withheld.IsNegative() {
		return nil, errs.NewInvariantViolationError("account balance",
			fmt.Errorf("negative sub-balance: available %s, withheld %s", available, withheld))
	}
	return &Account{
		id:            id,
		ownerID:       ownerID,
		currency:      currency,
		available:     available,
		withheld:      withheld,
		isActive:      isActive,
		isConstructed: true,
	}, nil
}

func (a *Account) Validate() error {
	if a == nil || !a.isConstructed {
		return ErrAccountIsNotConstructed
	}
	return nil
}

func (a *Account) ID() kernel.UUID            { return a.id }
func (a *Account) OwnerID() kernel.UUID       { return a.ownerID }
func (a *Account) Currency() kernel.Currency  { return a.currency }
func (a *Account) Available() decimal.Decimal { return a.available }
func (a *Account) Withheld() decimal.Decimal  { return a.withheld }
func (a *Account) Total() decimal.Decimal     { return a.available.Add(a.withheld) }
func (a *Account) IsActive() bool             { return a.isActive }

// EnsureCanWithhold is the client-facing funds check.
func (a *Account) EnsureCanWithhold(amount decimal.Decimal) error {
	if a.available.LessThan(amount) {
		return InsufficientFunds(amount, a.available, a.currency)
	}
	return nil
}

// Apply mutates the snapshot as the ledger would. Taking more than is available
// is a business rule failure; taking more than is withheld is a defect.
func (a *Account) Apply(m Movement) error {
	if err := m.Validate(); err != nil {
		return err
	}
	if !m.AccountID().IsEqual(a.id) {
		return errs.NewValueIsInvalidErrorWithCause("movement account",
			fmt.Errorf("posting for %s applied to %s", m.AccountID(), a.id))
	}
	if !a.isActive {
		return errs.NewBusinessRuleError("account_inactive", "Account is not active")
	}

	dAvailable, dWithheld := m.Kind().Deltas(m.Amount())
	available := a.available.Add(dAvailable)
	withheld := a.withheld.Add(dWithheld)

	if available.IsNegative() {
		return InsufficientFunds(m.Amount(), a.available, a.currency)
	}
	if withheld.IsNegative() {
		return errs.NewInvariantViolationError("withheld balance",
			fmt.Errorf("%s of %s would exceed withheld %s on account %s", m.Kind(), m.Amount(), a.withheld, a.id))
	}

	a.available = available
	a.withheld = withheld
	return nil
}

// InsufficientFunds builds the caller-facing insufficient funds rejection.
func InsufficientFunds(required, available decimal.Decimal, currency kernel.Currency) error {
	return errs.NewBusinessRuleError("insufficient_funds", fmt.Sprintf(
		"Insufficient funds. Required: %s %s, Available: %s %s",
		required.StringFixed(2), currency, available.StringFixed(2), currency))
}
