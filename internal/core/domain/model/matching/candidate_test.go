package matching_test

import (
	"testing"
	"time"

	"ecodeli/internal/core/domain/model/kernel"
	"ecodeli/internal/core/domain/model/matching"
	"ecodeli/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCandidate(t *testing.T, delivererID kernel.UUID, km *float64) *matching.Candidate {
	t.Helper()
	c, err := matching.NewCandidate(matching.Params{
		ID:             kernel.NewUUID(),
		AnnouncementID: kernel.NewUUID(),
		DelivererID:    delivererID,
		Scores:         matching.Scores{Distance: 90, Rating: 80, Availability: 100, Preference: 50, Route: 30},
		DistanceKm:     km,
		CalculatedAt:   time.Now(),
	})
	require.NoError(t, err)
	return c
}

func TestScores_Total(t *testing.T) {
	tests := []struct {
		name   string
		scores matching.Scores
		want   float64
	}{
		{"all max", matching.Scores{Distance: 100, Rating: 100, Availability: 100, Preference: 100, Route: 100}, 100},
		{"all zero", matching.Scores{}, 0},
		{"mixed", matching.Scores{Distance: 90, Rating: 80, Availability: 100, Preference: 50, Route: 30}, 27 + 20 + 20 + 7.5 + 3},
		{"components are clamped", matching.Scores{Distance: 150, Rating: -20, Availability: 100, Preference: 100, Route: 100}, 30 + 0 + 20 + 15 + 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, tt.scores.Total(), 1e-9)
		})
	}
}

func TestNewCandidate(t *testing.T) {
	km := 4.2
	c := newCandidate(t, kernel.NewUUID(), &km)

	require.NoError(t, c.Validate())
	assert.Equal(t, matching.Pending, c.Status())
	assert.Nil(t, c.RespondedAt())
	require.NotNil(t, c.EstimatedMinutes())
	assert.Equal(t, 8, *c.EstimatedMinutes())
	assert.InDelta(t, 77.5, c.TotalScore(), 1e-9)
	assert.True(t, c.IsQualified())

	unknown := newCandidate(t, kernel.NewUUID(), nil)
	assert.Nil(t, unknown.DistanceKm())
	assert.Nil(t, unknown.EstimatedMinutes())

	negative := -1.0
	_, err := matching.NewCandidate(matching.Params{
		ID: kernel.NewUUID(), AnnouncementID: kernel.NewUUID(), DelivererID: kernel.NewUUID(), DistanceKm: &negative,
	})
	require.ErrorIs(t, err, errs.ErrValueIsOutOfRange)
}

func TestCandidate_Respond(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	delivererID := kernel.NewUUID()
	deliverer, err := kernel.NewActor(delivererID, kernel.RoleDeliverer)
	require.NoError(t, err)

	t.Run("proposed deliverer accepts once", func(t *testing.T) {
		c := newCandidate(t, delivererID, nil)

		require.NoError(t, c.Respond(deliverer, matching.Accepted, now))
		assert.Equal(t, matching.Accepted, c.Status())
		require.NotNil(t, c.RespondedAt())
		assert.Equal(t, now, *c.RespondedAt())

		err := c.Respond(deliverer, matching.Declined, now)
		require.ErrorIs(t, err, errs.ErrInvalidTransition)
	})

	t.Run("other deliverer is rejected", func(t *testing.T) {
		c := newCandidate(t, delivererID, nil)
		other, err := kernel.NewActor(kernel.NewUUID(), kernel.RoleDeliverer)
		require.NoError(t, err)

		err = c.Respond(other, matching.Accepted, now)
		require.ErrorIs(t, err, errs.ErrPermissionDenied)
		var denied *errs.PermissionDeniedError
		require.ErrorAs(t, err, &denied)
		assert.Equal(t, other.ID().String(), denied.ActorID)
		assert.Equal(t, matching.Pending, c.Status())
	})

	t.Run("pending is not a decision", func(t *testing.T) {
		c := newCandidate(t, delivererID, nil)
		require.ErrorIs(t, c.Respond(deliverer, matching.Pending, now), errs.ErrValueIsInvalid)
	})
}
