package kernel_test

import (
	"testing"

	"ecodeli/internal/core/domain/model/kernel"
	"ecodeli/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	tests := map[string]kernel.Role{
		"CLIENT":    kernel.RoleClient,
		"deliverer": kernel.RoleDeliverer,
		" Admin ":   kernel.RoleAdmin,
	}
	for input, want := range tests {
		t.Run(input, func(t *testing.T) {
			role, err := kernel.ParseRole(input)
			require.NoError(t, err)
			assert.Equal(t, want, role)
		})
	}

	_, err := kernel.ParseRole("MERCHANT")
	require.ErrorIs(t, err, errs.ErrValueIsInvalid)
	_, err = kernel.ParseRole("UNKNOWN")
	require.Error(t, err)
}

func TestNewActor(t *testing.T) {
	id := kernel.NewUUID()

	t.Run("valid", func(t *testing.T) {
		actor, err := kernel.NewActor(id, kernel.RoleDeliverer)
		require.NoError(t, err)
		require.NoError(t, actor.Validate())
		assert.True(t, actor.Is(id))
		assert.False(t, actor.IsAdmin())
		assert.Equal(t, "DELIVERER", actor.Role().String())
	})

	t.Run("missing id and role", func(t *testing.T) {
		_, err := kernel.NewActor(kernel.UUID{}, kernel.RoleUnknown)
		require.ErrorIs(t, err, errs.ErrValueIsRequired)
		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})

	t.Run("zero value", func(t *testing.T) {
		var actor kernel.Actor
		require.ErrorIs(t, actor.Validate(), kernel.ErrActorIsNotConstructed)
	})
}

func TestActor_IsOneOf(t *testing.T) {
	id := kernel.NewUUID()
	other := kernel.NewUUID()
	actor, err := kernel.NewActor(id, kernel.RoleClient)
	require.NoError(t, err)

	assert.True(t, actor.IsOneOf(nil, &other, &id))
	assert.False(t, actor.IsOneOf(nil, &other))
	assert.False(t, actor.IsOneOf())
}
