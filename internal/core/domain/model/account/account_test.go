package account_test

import (
	"testing"

	"fulfillment/internal/core/domain/model/account"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func newAccount(t *testing.T, available, withheld string) *account.Account {
	t.Helper()
	usd, _ := kernel.NewCurrency("USD")
	a, err := account.RestoreAccount(kernel.NewUUID(), kernel.NewUUID(), usd,
		d(available), d(withheld), d(available).Add(d(withheld)), true)
	require.NoError(t, err)
	return a
}

func post(t *testing.T, a *account.Account, kind account.Kind, amount string) error {
	t.Helper()
	m, err := account.NewMovement(kind, a.ID(), d(amount), "test", kernel.NewUUID())
	require.NoError(t, err)
	return a.Apply(m)
}

func TestRestoreAccount(t *testing.T) {
	usd, _ := kernel.NewCurrency("USD")

	t.Run("rejects broken ledger identity", func(t *testing.T) {
		_, err := account.RestoreAccount(kernel.NewUUID(), kernel.NewUUID(), usd, d("10"), d("5"), d("16"), true)
		require.ErrorIs(t, err, errs.ErrInvariantViolation)
	})

	t.Run("rejects negative sub-balance", func(t *testing.T) {
		_, err := account.RestoreAccount(kernel.NewUUID(), kernel.NewUUID(), usd, d("-1"), d("5"), d("4"), true)
		require.ErrorIs(t, err, errs.ErrInvariantViolation)
	})
}

func TestAccount_Apply(t *testing.T) {
	t.Run("withhold keeps total", func(t *testing.T) {
		a := newAccount(t, "1000", "0")

		require.NoError(t, post(t, a, account.Withhold, "300"))

		assert.True(t, d("700").Equal(a.Available()))
		assert.True(t, d("300").Equal(a.Withheld()))
		assert.True(t, d("1000").Equal(a.Total()))
	})

	t.Run("withhold beyond available is insufficient funds", func(t *testing.T) {
		a := newAccount(t, "100", "0")

		err := post(t, a, account.Withhold, "300")

		require.ErrorIs(t, err, errs.ErrBusinessRuleViolated)
		assert.Equal(t, "Insufficient funds. Required: 300.00 USD, Available: 100.00 USD", errs.Message(err))
		assert.True(t, d("100").Equal(a.Available()))
	})

	t.Run("release beyond withheld is an invariant violation", func(t *testing.T) {
		a := newAccount(t, "100", "50")

		err := post(t, a, account.Release, "60")

		require.ErrorIs(t, err, errs.ErrInvariantViolation)
		assert.True(t, d("50").Equal(a.Withheld()))
	})

	t.Run("capture leaves the account", func(t *testing.T) {
		a := newAccount(t, "700", "300")

		require.NoError(t, post(t, a, account.Capture, "300"))

		assert.True(t, d("700").Equal(a.Total()))
		assert.True(t, a.Withheld().IsZero())
	})

	t.Run("inactive account refuses postings", func(t *testing.T) {
		usd, _ := kernel.NewCurrency("USD")
		a, err := account.RestoreAccount(kernel.NewUUID(), kernel.NewUUID(), usd, d("10"), d("0"), d("10"), false)
		require.NoError(t, err)

		require.ErrorIs(t, post(t, a, account.Credit, "1"), errs.ErrBusinessRuleViolated)
	})
}

func TestMovement_Inverse(t *testing.T) {
	pairs := map[account.Kind]account.Kind{
		account.Withhold:  account.Release,
		account.Capture:   account.Reinstate,
		account.Credit:    account.Debit,
		account.Release:   account.Withhold,
		account.Reinstate: account.Capture,
		account.Debit:     account.Credit,
	}

	for kind, inverse := range pairs {
		t.Run(kind.String(), func(t *testing.T) {
			a := newAccount(t, "500", "500")
			m, err := account.NewMovement(kind, a.ID(), d("120"), "order", kernel.NewUUID())
			require.NoError(t, err)

			require.NoError(t, a.Apply(m))
			require.NoError(t, a.Apply(m.Inverse()))

			assert.Equal(t, inverse, m.Inverse().Kind())
			assert.True(t, d("500").Equal(a.Available()))
			assert.True(t, d("500").Equal(a.Withheld()))
		})
	}
}

func TestNewMovement(t *testing.T) {
	_, err := account.NewMovement(account.Withhold, kernel.NewUUID(), decimal.Zero, "", kernel.NewUUID())
	require.ErrorIs(t, err, errs.ErrValueIsInvalid)

	_, err = account.NewMovement(account.UnknownKind, kernel.NewUUID(), d("1"), "", kernel.NewUUID())
	require.ErrorIs(t, err, errs.ErrValueIsInvalid)

	var zero account.Movement
	assert.Equal(t, account.ErrMovementIsNotConstructed, zero.Validate())
}
