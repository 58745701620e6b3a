package commands_test

import (
	"testing"
	"time"

	"ecodeli/internal/core/application/usecases/commands"
	"ecodeli/internal/core/domain/model/delivery"
	"ecodeli/internal/core/domain/model/kernel"
	"ecodeli/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createCheckpoint(
	t *testing.T, f fixture, publisher *recordingPublisher, p commands.CreateCheckpointParams,
) (*delivery.Checkpoint, error) {
	t.Helper()
	cmd, err := commands.NewCreateCheckpointCommand(p)
	require.NoError(t, err)
	return commands.NewCreateCheckpointCommandHandler(f.db.TrackingFactory(), publisher, nil).Handle(t.Context(), cmd)
}

func TestNewCreateCheckpointCommand(t *testing.T) {
	_, err := commands.NewCreateCheckpointCommand(commands.CreateCheckpointParams{
		DeliveryID: kernel.NewUUID(),
		Actor:      mustActor(t, kernel.RoleDeliverer),
		Type:       "DETOUR",
	})
	require.ErrorIs(t, err, errs.ErrValueIsInvalid)
}

func TestCreateCheckpointCommandHandler_Handle(t *testing.T) {
	t.Run("pickup checkpoint defaults to the pickup address", func(t *testing.T) {
		f := newFixture(t)
		d := f.delivery(delivery.PickedUp)
		publisher := &recordingPublisher{}
		planned := time.Now().UTC().Add(-10 * time.Minute)

		c, err := createCheckpoint(t, f, publisher, commands.CreateCheckpointParams{
			DeliveryID:  d.ID(),
			Actor:       f.courier,
			Type:        delivery.CheckpointPickup,
			PlannedTime: &planned,
			Metadata:    map[string]any{"parcels": 2},
		})
		require.NoError(t, err)

		assert.Equal(t, "1 Rue de Rivoli, Paris", c.Address())
		assert.Equal(t, 2, c.Metadata()["parcels"])
		assert.Len(t, f.db.state().checkpoints, 1)
		assert.Equal(t, delivery.PickedUp, f.db.delivery(t, d.ID()).Status())
		assert.Equal(t, []delivery.EventType{delivery.EventCheckpointReached}, publisher.eventTypes())
		assert.Empty(t, publisher.notifications)
	})

	t.Run("delivery checkpoint closes the delivery", func(t *testing.T) {
		f := newFixture(t)
		d := f.delivery(delivery.AttemptDelivery)
		door := north(t, 2)

		c, err := createCheckpoint(t, f, &recordingPublisher{}, commands.CreateCheckpointParams{
			DeliveryID: d.ID(),
			Actor:      f.courier,
			Type:       delivery.CheckpointDelivery,
			Location:   &door,
			Proofs:     delivery.Proofs{SignatureURL: "https://cdn.example/s.png"},
		})
		require.NoError(t, err)

		assert.Equal(t, "10 Avenue Foch, Paris", c.Address())
		stored := f.db.delivery(t, d.ID())
		assert.Equal(t, delivery.Delivered, stored.Status())
		assert.False(t, stored.TrackingEnabled())

		s := f.db.state()
		require.Len(t, s.checkpoints, 1)
		assert.Equal(t, c.ID(), s.checkpoints[0].ID())
		assert.Equal(t, []delivery.Status{delivery.Delivered}, statusesOf(s, d.ID()))
	})

	t.Run("delivery checkpoint consumes the supplied code", func(t *testing.T) {
		f := newFixture(t)
		d := f.delivery(delivery.AttemptDelivery, at(north(t, 4)))
		f.code(d.ID(), "654321", time.Hour, 24*time.Hour, false)

		_, err := createCheckpoint(t, f, &recordingPublisher{}, commands.CreateCheckpointParams{
			DeliveryID:       d.ID(),
			Actor:            f.courier,
			Type:             delivery.CheckpointDelivery,
			ConfirmationCode: "654321",
		})
		require.NoError(t, err)
		assert.NotNil(t, f.db.state().codes[d.ID()].usedAt)
	})

	t.Run("wrong code writes nothing", func(t *testing.T) {
		f := newFixture(t)
		d := f.delivery(delivery.AttemptDelivery, at(north(t, 4)))
		f.code(d.ID(), "654321", time.Hour, 24*time.Hour, false)

		_, err := createCheckpoint(t, f, &recordingPublisher{}, commands.CreateCheckpointParams{
			DeliveryID:       d.ID(),
			Actor:            f.courier,
			Type:             delivery.CheckpointDelivery,
			ConfirmationCode: "123456",
		})
		require.ErrorIs(t, err, errs.ErrInvalidConfirmationCode)
		assert.Empty(t, f.db.state().checkpoints)
		assert.Equal(t, delivery.AttemptDelivery, f.db.delivery(t, d.ID()).Status())
	})

	t.Run("delivery checkpoint too early is an invalid transition", func(t *testing.T) {
		f := newFixture(t)
		d := f.delivery(delivery.InTransit, at(north(t, 900)))

		_, err := createCheckpoint(t, f, &recordingPublisher{}, commands.CreateCheckpointParams{
			DeliveryID: d.ID(),
			Actor:      f.courier,
			Type:       delivery.CheckpointDelivery,
		})
		require.ErrorIs(t, err, errs.ErrInvalidTransition)
		assert.Empty(t, f.db.state().checkpoints)
	})

	t.Run("stranger is rejected", func(t *testing.T) {
		f := newFixture(t)
		d := f.delivery(delivery.InTransit)

		_, err := createCheckpoint(t, f, &recordingPublisher{}, commands.CreateCheckpointParams{
			DeliveryID: d.ID(),
			Actor:      f.stranger,
			Type:       delivery.CheckpointWaypoint,
		})
		require.ErrorIs(t, err, errs.ErrPermissionDenied)
	})
}
