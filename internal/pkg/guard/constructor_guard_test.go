package guard_test

import (
	"errors"
	"testing"

	"fulfillment/internal/pkg/guard"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errReservationNotConstructed = errors.New("Reservation must be created via NewReservation")

type reservation struct {
	quantity int
	guard    guard.ConstructorGuard
}

func newReservation(quantity int) reservation {
	return reservation{quantity: quantity, guard: guard.NewConstructorGuard()}
}

func (r reservation) Validate() error {
	return r.guard.Validate(errReservationNotConstructed)
}

func TestConstructorGuard(t *testing.T) {
	t.Run("constructed value passes", func(t *testing.T) {
		require.NoError(t, newReservation(2).Validate())
		require.NoError(t, guard.NewConstructorGuard().Validate(nil))
	})

	t.Run("struct literal fails with the caller's error", func(t *testing.T) {
		err := reservation{quantity: 2}.Validate()

		assert.ErrorIs(t, err, errReservationNotConstructed)
	})

	t.Run("zero guard falls back to the default error", func(t *testing.T) {
		var g guard.ConstructorGuard

		assert.ErrorIs(t, g.Validate(nil), guard.ErrDefaultConstructorGuard)
	})

	t.Run("copies keep the guard", func(t *testing.T) {
		original := newReservation(1)
		copied := original
		copied.quantity = 5

		require.NoError(t, copied.Validate())
	})
}
