package commands_test

import (
	"testing"

	"ecodeli/internal/core/application/usecases/commands"
	"ecodeli/internal/core/domain/model/delivery"
	"ecodeli/internal/core/domain/model/kernel"
	"ecodeli/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rate(t *testing.T, f fixture, d *delivery.Delivery, actor kernel.Actor, score int) (*delivery.Rating, error) {
	t.Helper()
	cmd, err := commands.NewRateDeliveryCommand(d.ID(), actor, score, " great ")
	require.NoError(t, err)
	return commands.NewRateDeliveryCommandHandler(f.db.Factory()).Handle(t.Context(), cmd)
}

func TestRateDeliveryCommandHandler_Handle(t *testing.T) {
	t.Run("client rating updates the deliverer average", func(t *testing.T) {
		f := newFixture(t)
		f.deliverer(f.courier.ID(), eastOfPickup(t, 1))
		first := f.delivery(delivery.Delivered, trackingEnded())
		second := f.delivery(delivery.Delivered, trackingEnded())

		r, err := rate(t, f, first, f.client, 5)
		require.NoError(t, err)
		assert.Equal(t, f.courier.ID(), r.TargetID())
		assert.Equal(t, "great", r.Comment())

		_, err = rate(t, f, second, f.client, 2)
		require.NoError(t, err)

		row := f.db.state().deliverers[f.courier.ID()]
		require.NotNil(t, row.AverageRating)
		assert.InDelta(t, 3.5, *row.AverageRating, 1e-9)
		assert.Equal(t, 2, row.RatingsCount)
	})

	t.Run("deliverer rates the client", func(t *testing.T) {
		f := newFixture(t)
		d := f.delivery(delivery.Delivered, trackingEnded())

		r, err := rate(t, f, d, f.courier, 4)
		require.NoError(t, err)
		assert.Equal(t, f.client.ID(), r.TargetID())
		assert.Len(t, f.db.state().ratings, 1)
	})

	t.Run("a party rates once", func(t *testing.T) {
		f := newFixture(t)
		f.deliverer(f.courier.ID(), eastOfPickup(t, 1))
		d := f.delivery(delivery.Delivered, trackingEnded())

		_, err := rate(t, f, d, f.client, 5)
		require.NoError(t, err)
		_, err = rate(t, f, d, f.client, 1)
		require.ErrorIs(t, err, errs.ErrValueIsInvalid)

		assert.Equal(t, 1, f.db.state().deliverers[f.courier.ID()].RatingsCount)
	})

	t.Run("undelivered delivery cannot be rated", func(t *testing.T) {
		f := newFixture(t)
		d := f.delivery(delivery.InTransit)

		_, err := rate(t, f, d, f.client, 5)
		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})

	t.Run("score out of range", func(t *testing.T) {
		f := newFixture(t)
		d := f.delivery(delivery.Delivered, trackingEnded())

		_, err := rate(t, f, d, f.client, 6)
		require.ErrorIs(t, err, errs.ErrValueIsOutOfRange)
	})

	t.Run("admin is not a party", func(t *testing.T) {
		f := newFixture(t)
		d := f.delivery(delivery.Delivered, trackingEnded())

		_, err := rate(t, f, d, f.admin, 3)
		require.ErrorIs(t, err, errs.ErrPermissionDenied)
	})
}
