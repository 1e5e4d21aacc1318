package kernel

import (
	"fmt"
	"strings"

	"fulfillment/internal/pkg/errs"
	"fulfillment/internal/pkg/guard"
)

var ErrCurrencyIsNotConstructed = errs.NewValueIsRequiredError("currency must be created via NewCurrency")

// Currency is an upper-case ISO-4217-style code ("USD", "EUR"). Accounts,
// inventory prices and orders are all denominated in exactly one currency.
type Currency struct {
	code  string
	guard guard.ConstructorGuard
}

func NewCurrency(code string) (Currency, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if len(code) != 3 {
		return Currency{}, errs.NewValueIsInvalidErrorWithCause(
			"currency", fmt.Errorf("%q is not a three letter code", code))
	}
	for _, r := range code {
		if r < 'A' || r > 'Z' {
			return Currency{}, errs.NewValueIsInvalidErrorWithCause(
				"currency", fmt.Errorf("%q is not a three letter code", code))
		}
	}
	return Currency{code: code, guard: guard.NewConstructorGuard()}, nil
}

func (c Currency) Code() string {
	return c.code
}

func (c Currency) String() string {
	return c.code
}

func (c Currency) IsEqual(other Currency) bool {
	return c.code == other.code
}

func (c Currency) Validate() error {
	return c.guard.Validate(ErrCurrencyIsNotConstructed)
}
