package delivery_test

import (
	"regexp"
	"testing"
	"time"

	"ecodeli/internal/core/domain/model/delivery"
	"ecodeli/internal/core/domain/model/kernel"
	"ecodeli/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateConfirmationCode(t *testing.T) {
	now := time.Now()
	sixDigits := regexp.MustCompile(`^[1-9]\d{5}$`)

	for range 50 {
		c, err := delivery.GenerateConfirmationCode(kernel.NewUUID(), now, time.Hour)
		require.NoError(t, err)
		assert.Regexp(t, sixDigits, c.Code())
		assert.Equal(t, now.Add(time.Hour), c.ExpiresAt())
	}

	_, err := delivery.GenerateConfirmationCode(kernel.NewUUID(), now, 0)
	require.ErrorIs(t, err, errs.ErrValueIsOutOfRange)
}

func TestConfirmationCode_Verify(t *testing.T) {
	issued := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	newCode := func(t *testing.T) *delivery.ConfirmationCode {
		t.Helper()
		c, err := delivery.RestoreConfirmationCode(kernel.NewUUID(), "482913", issued, issued.Add(time.Hour), nil)
		require.NoError(t, err)
		return c
	}

	tests := []struct {
		name      string
		candidate string
		at        time.Time
		used      bool
		wantErr   bool
	}{
		{name: "fresh code", candidate: "482913", at: issued.Add(time.Minute)},
		{name: "wrong code", candidate: "482914", at: issued.Add(time.Minute), wantErr: true},
		{name: "expired exactly at expiry", candidate: "482913", at: issued.Add(time.Hour), wantErr: true},
		{name: "already used", candidate: "482913", at: issued.Add(time.Minute), used: true, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newCode(t)
			if tt.used {
				require.NoError(t, c.MarkUsed(issued))
			}

			err := c.Verify(tt.candidate, tt.at)
			if tt.wantErr {
				require.ErrorIs(t, err, errs.ErrInvalidConfirmationCode)
				return
			}
			require.NoError(t, err)
		})
	}

	t.Run("cannot be used twice", func(t *testing.T) {
		c := newCode(t)
		require.NoError(t, c.MarkUsed(issued))
		require.ErrorIs(t, c.MarkUsed(issued), errs.ErrInvalidConfirmationCode)
		assert.True(t, c.IsUsed())
	})
}
