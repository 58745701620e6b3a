package commands_test

import (
	"regexp"
	"testing"
	"time"

	"ecodeli/internal/core/application/usecases/commands"
	"ecodeli/internal/core/domain/model/delivery"
	"ecodeli/internal/core/domain/model/kernel"
	"ecodeli/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sixDigits = regexp.MustCompile(`^[1-9][0-9]{5}$`)

func generateCode(
	t *testing.T, f fixture, publisher *recordingPublisher, d *delivery.Delivery, actor kernel.Actor, ttl time.Duration,
) (*delivery.ConfirmationCode, error) {
	t.Helper()
	cmd, err := commands.NewGenerateConfirmationCodeCommand(d.ID(), actor)
	require.NoError(t, err)
	return commands.NewGenerateConfirmationCodeCommandHandler(f.db.TrackingFactory(), publisher, ttl).
		Handle(t.Context(), cmd)
}

func TestGenerateConfirmationCodeCommandHandler_Handle(t *testing.T) {
	t.Run("issues a code and sends it to the client", func(t *testing.T) {
		f := newFixture(t)
		d := f.delivery(delivery.Arrived)
		publisher := &recordingPublisher{}

		code, err := generateCode(t, f, publisher, d, f.courier, 0)
		require.NoError(t, err)

		assert.Regexp(t, sixDigits, code.Code())
		assert.Equal(t, delivery.DefaultConfirmationCodeTTL, code.ExpiresAt().Sub(code.IssuedAt()))
		assert.Equal(t, code.Code(), f.db.state().codes[d.ID()].code)

		require.Len(t, publisher.notifications, 1)
		n := publisher.notifications[0]
		assert.Equal(t, f.client.ID(), n.UserID)
		assert.Contains(t, n.Message, code.Code())
		assert.Empty(t, publisher.events)
	})

	t.Run("reissuing replaces the previous code", func(t *testing.T) {
		f := newFixture(t)
		d := f.delivery(delivery.Nearby)
		f.code(d.ID(), "000000", time.Hour, 24*time.Hour, true)

		code, err := generateCode(t, f, &recordingPublisher{}, d, f.admin, time.Hour)
		require.NoError(t, err)

		row := f.db.state().codes[d.ID()]
		assert.Equal(t, code.Code(), row.code)
		assert.Nil(t, row.usedAt)
		assert.Equal(t, time.Hour, row.expires.Sub(row.issuedAt))
	})

	t.Run("client cannot issue codes", func(t *testing.T) {
		f := newFixture(t)
		d := f.delivery(delivery.Arrived)

		_, err := generateCode(t, f, &recordingPublisher{}, d, f.client, 0)
		require.ErrorIs(t, err, errs.ErrPermissionDenied)
		assert.Empty(t, f.db.state().codes)
	})

	t.Run("closed delivery", func(t *testing.T) {
		f := newFixture(t)
		d := f.delivery(delivery.Delivered, trackingEnded())

		_, err := generateCode(t, f, &recordingPublisher{}, d, f.courier, 0)
		require.ErrorIs(t, err, errs.ErrInvalidTransition)
	})
}
