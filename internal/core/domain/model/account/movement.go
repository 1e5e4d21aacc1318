package account

import (
	"errors"
	"fmt"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"

	"github.com/shopspring/decimal"
)

// Kind is the type of a ledger posting. Each kind moves money between the
// available and withheld sub-balances, or in or out of the account.
//
//	kind       available  withheld  total
//	Withhold   -a         +a        0
//	Release    +a         -a        0
//	Capture    0          -a        -a
//	Reinstate  0          +a        +a
//	Credit     +a         0         +a
//	Debit      -a         0         -a
type Kind int

const (
	UnknownKind Kind = iota
	Withhold
	Release
	Capture
	Reinstate
	Credit
	Debit
)

func getKindStrings() map[Kind]string {
	return map[Kind]string{
		Withhold:  "hold",
		Release:   "release",
		Capture:   "payment",
		Reinstate: "adjustment",
		Credit:    "refund",
		Debit:     "withdrawal",
	}
}

// String returns the journal transaction type recorded for the kind.
func (k Kind) String() string {
	if s, ok := getKindStrings()[k]; ok {
		return s
	}
	return "unknown"
}

func (k Kind) Validate() error {
	if _, ok := getKindStrings()[k]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("movement kind is invalid", fmt.Errorf("%d is not a valid kind", k))
	}
	return nil
}

// Inverse returns the kind that undoes k.
func (k Kind) Inverse() Kind {
	switch k {
	case Withhold:
		return Release
	case Release:
		return Withhold
	case Capture:
		return Reinstate
	case Reinstate:
		return Capture
	case Credit:
		return Debit
	case Debit:
		return Credit
	case UnknownKind:
		return UnknownKind
	}
	return UnknownKind
}

// Deltas returns the signed changes applied to available and withheld balances.
func (k Kind) Deltas(amount decimal.Decimal) (available, withheld decimal.Decimal) {
	switch k {
	case Withhold:
		return amount.Neg(), amount
	case Release:
		return amount, amount.Neg()
	case Capture:
		return decimal.Zero, amount.Neg()
	case Reinstate:
		return decimal.Zero, amount
	case Credit:
		return amount, decimal.Zero
	case Debit:
		return amount.Neg(), decimal.Zero
	case UnknownKind:
	}
	return decimal.Zero, decimal.Zero
}

var ErrMovementIsNotConstructed = errs.NewValueIsRequiredError("movement must be created via NewMovement")

// Movement is one posting against a single account. Reference ties the posting
// to the order that caused it.
type Movement struct {
	kind      Kind
	accountID kernel.UUID
	amount    decimal.Decimal
	memo      string
	reference kernel.UUID
	guard     guard.ConstructorGuard
}

func NewMovement(kind Kind, accountID kernel.UUID, amount decimal.Decimal, memo string, reference kernel.UUID) (Movement, error) {
	var amountErr error
	if !amount.IsPositive() {
		amountErr = errs.NewValueIsInvalidErrorWithCause("amount is invalid", fmt.Errorf("%s is not greater than 0", amount))
	}
	if err := errors.Join(kind.Validate(), accountID.Validate(), reference.Validate(), amountErr); err != nil {
		return Movement{}, err
	}
	return Movement{
		kind:      kind,
		accountID: accountID,
		amount:    amount,
		memo:      memo,
		reference: reference,
		guard:     guard.NewConstructorGuard(),
	}, nil
}

func (m Movement) Validate() error {
	return m.guard.Validate(ErrMovementIsNotConstructed)
}

func (m Movement) Kind() Kind              { return m.kind }
func (m Movement) AccountID() kernel.UUID  { return m.accountID }
func (m Movement) Amount() decimal.Decimal { return m.amount }
func (m Movement) Memo() string            { return m.memo }
func (m Movement) Reference() kernel.UUID  { return m.reference }

// Inverse returns the compensating posting.
func (m Movement) Inverse() Movement {
	inv := m
	inv.kind = m.kind.Inverse()
	inv.memo = "Reversal: " + m.memo
	return inv
}
