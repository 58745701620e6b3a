package errs_test

import (
	"errors"
	"fmt"
	"testing"

	"ecodeli/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectNotFoundError(t *testing.T) {
	t.Run("without cause", func(t *testing.T) {
		err := errs.NewObjectNotFoundError("delivery", "123")

		assert.Equal(t, "delivery", err.ParamName)
		assert.Equal(t, "object not found: 123", err.Error())
		assert.Equal(t, errs.ErrObjectNotFound, err.Unwrap())
	})

	t.Run("with cause", func(t *testing.T) {
		cause := errors.New("database connection failed")
		err := errs.NewObjectNotFoundErrorWithCause("delivery", "123", cause)

		assert.Equal(t, cause, err.Cause)
		assert.Equal(t,
			"object not found: param is: delivery, ID is: 123 (cause: database connection failed)",
			err.Error())
	})
}

func TestValidationErrors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel error
		message  string
	}{
		{
			name:     "invalid without cause",
			err:      errs.NewValueIsInvalidError("status"),
			sentinel: errs.ErrValueIsInvalid,
			message:  "value is invalid: status",
		},
		{
			name:     "invalid with cause",
			err:      errs.NewValueIsInvalidErrorWithCause("status", errors.New("unknown")),
			sentinel: errs.ErrValueIsInvalid,
			message:  "value is invalid: status (cause: unknown)",
		},
		{
			name:     "out of range",
			err:      errs.NewValueIsOutOfRangeError("rating", 7, 1, 5),
			sentinel: errs.ErrValueIsOutOfRange,
			message:  "value is invalid: 7 is rating, min value is 1, max value is 5",
		},
		{
			name:     "out of range with cause",
			err:      errs.NewValueIsOutOfRangeErrorWithCause("latitude", 91.5, -90, 90, errors.New("gps drift")),
			sentinel: errs.ErrValueIsOutOfRange,
			message:  "value is invalid: 91.5 is latitude, min value is -90, max value is 90 (cause: gps drift)",
		},
		{
			name:     "required",
			err:      errs.NewValueIsRequiredError("actor"),
			sentinel: errs.ErrValueIsRequired,
			message:  "value is required: actor",
		},
		{
			name:     "version",
			err:      errs.NewVersionIsInvalidError("version", errors.New("stale")),
			sentinel: errs.ErrVersionIsInvalid,
			message:  "version is invalid: version (cause: stale)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.message, tt.err.Error())
			require.ErrorIs(t, tt.err, tt.sentinel)
			assert.True(t, errs.IsValidation(tt.err))
			assert.False(t, errs.IsRetryable(tt.err))
		})
	}

	t.Run("multi-line values are flattened", func(t *testing.T) {
		err := errs.NewValueIsOutOfRangeError("notes", "left at\ngate", 0, 10)
		assert.Contains(t, err.Error(), "left at gate")
		assert.NotContains(t, err.Error(), "\n")
	})
}

func TestDomainErrors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel error
		message  string
	}{
		{
			name:     "permission denied",
			err:      errs.NewPermissionDeniedError("u-1", "update delivery status"),
			sentinel: errs.ErrPermissionDenied,
			message:  "permission denied: actor u-1 cannot update delivery status",
		},
		{
			name:     "invalid transition",
			err:      errs.NewInvalidTransitionError("ASSIGNED", "DELIVERED"),
			sentinel: errs.ErrInvalidTransition,
			message:  "invalid status transition: ASSIGNED -> DELIVERED",
		},
		{
			name:     "invalid confirmation code",
			err:      errs.NewInvalidConfirmationCodeErrorWithCause("d-1", errors.New("expired")),
			sentinel: errs.ErrInvalidConfirmationCode,
			message:  "invalid confirmation code: delivery d-1 (cause: expired)",
		},
		{
			name:     "tracking disabled",
			err:      errs.NewTrackingDisabledError("d-1"),
			sentinel: errs.ErrTrackingDisabled,
			message:  "tracking is disabled: delivery d-1",
		},
		{
			name:     "capacity exceeded",
			err:      errs.NewCapacityExceededError("c-1", 3, 3),
			sentinel: errs.ErrCapacityExceeded,
			message:  "capacity exceeded: deliverer c-1 holds 3 active deliveries, limit is 3",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.message, tt.err.Error())
			require.ErrorIs(t, tt.err, tt.sentinel)
			assert.False(t, errs.IsValidation(tt.err))
			assert.False(t, errs.IsRetryable(tt.err))
		})
	}
}

func TestConcurrentModificationError(t *testing.T) {
	err := errs.NewConcurrentModificationError("delivery", "d-1")

	assert.Equal(t, "concurrent modification: delivery d-1", err.Error())
	assert.True(t, errs.IsRetryable(err))
	assert.True(t, errs.IsRetryable(fmt.Errorf("transition: %w", err)))
	assert.False(t, errs.IsRetryable(errs.ErrInvalidTransition))
}

func TestSentinelErrors(t *testing.T) {
	assert.Equal(t, "object not found", errs.ErrObjectNotFound.Error())
	assert.Equal(t, "value is invalid", errs.ErrValueIsInvalid.Error())
	assert.Equal(t, "value is out of range", errs.ErrValueIsOutOfRange.Error())
	assert.Equal(t, "value is required", errs.ErrValueIsRequired.Error())
	assert.Equal(t, "version is invalid", errs.ErrVersionIsInvalid.Error())
	assert.Equal(t, "permission denied", errs.ErrPermissionDenied.Error())
	assert.Equal(t, "invalid status transition", errs.ErrInvalidTransition.Error())
}
