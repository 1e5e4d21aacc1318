package kernel_test

import (
	"testing"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewActor(t *testing.T) {
	t.Run("valid actor", func(t *testing.T) {
		id := kernel.NewUUID()
		a, err := kernel.NewActor(id, kernel.ActorBusiness)

		require.NoError(t, err)
		require.NoError(t, a.Validate())
		assert.True(t, a.ID().IsEqual(id))
		assert.Equal(t, "business", a.Type().String())
	})

	t.Run("requires id", func(t *testing.T) {
		_, err := kernel.NewActor(kernel.UUID{}, kernel.ActorClient)
		require.ErrorIs(t, err, errs.ErrValueIsRequired)
	})

	t.Run("requires known type", func(t *testing.T) {
		_, err := kernel.NewActor(kernel.NewUUID(), kernel.ActorUnknown)
		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})

	t.Run("system actor has no id", func(t *testing.T) {
		a := kernel.SystemActor()
		require.NoError(t, a.Validate())
		assert.Nil(t, a.ID())
		assert.Equal(t, kernel.ActorSystem, a.Type())
	})

	t.Run("zero value is not constructed", func(t *testing.T) {
		var a kernel.Actor
		assert.Equal(t, kernel.ErrActorIsNotConstructed, a.Validate())
	})
}

func TestParseActorType(t *testing.T) {
	for _, typ := range []kernel.ActorType{kernel.ActorClient, kernel.ActorBusiness, kernel.ActorAgent, kernel.ActorSystem} {
		parsed, err := kernel.ParseActorType(typ.String())
		require.NoError(t, err)
		assert.Equal(t, typ, parsed)
	}

	_, err := kernel.ParseActorType("admin")
	require.ErrorIs(t, err, errs.ErrValueIsInvalid)
}
