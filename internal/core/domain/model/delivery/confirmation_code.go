package delivery

import (
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"math/big"
	"time"

	"ecodeli/internal/core/domain/model/kernel"
	"ecodeli/internal/pkg/errs"
)

// ErrConfirmationCodeIsNotConstructed is returned for zero-value codes.
var ErrConfirmationCodeIsNotConstructed = errors.New(
	"ConfirmationCode must be created via GenerateConfirmationCode or RestoreConfirmationCode")

const (
	confirmationCodeMin  = 100_000
	confirmationCodeSpan = 900_000

	// DefaultConfirmationCodeTTL is how long a freshly issued code stays valid.
	DefaultConfirmationCodeTTL = 24 * time.Hour
)

var (
	errCodeMismatch = errors.New("code does not match")
	errCodeExpired  = errors.New("code has expired")
	errCodeUsed     = errors.New("code was already used")
)

// ConfirmationCode is the single active six-digit code of a delivery. The recipient
// hands it to the courier to prove the drop-off. Issuing a new code replaces the old one.
type ConfirmationCode struct {
	deliveryID    kernel.UUID
	code          string
	issuedAt      time.Time
	expiresAt     time.Time
	usedAt        *time.Time
	isConstructed bool
}

// GenerateConfirmationCode issues a random code in [100000, 999999] valid for ttl.
func GenerateConfirmationCode(deliveryID kernel.UUID, now time.Time, ttl time.Duration) (*ConfirmationCode, error) {
	if err := deliveryID.Validate(); err != nil {
		return nil, err
	}
	if ttl <= 0 {
		return nil, errs.NewValueIsOutOfRangeError("ttl", ttl, "0s", "unbounded")
	}

	n, err := rand.Int(rand.Reader, big.NewInt(confirmationCodeSpan))
	if err != nil {
		return nil, fmt.Errorf("generate confirmation code: %w", err)
	}

	return &ConfirmationCode{
		deliveryID:    deliveryID,
		code:          fmt.Sprintf("%06d", confirmationCodeMin+n.Int64()),
		issuedAt:      now,
		expiresAt:     now.Add(ttl),
		isConstructed: true,
	}, nil
}

// RestoreConfirmationCode rebuilds a stored code.
func RestoreConfirmationCode(
	deliveryID kernel.UUID, code string, issuedAt, expiresAt time.Time, usedAt *time.Time,
) (*ConfirmationCode, error) {
	if err := deliveryID.Validate(); err != nil {
		return nil, err
	}
	if len(code) != 6 {
		return nil, errs.NewValueIsInvalidErrorWithCause("code", fmt.Errorf("%q is not six digits", code))
	}
	return &ConfirmationCode{
		deliveryID:    deliveryID,
		code:          code,
		issuedAt:      issuedAt,
		expiresAt:     expiresAt,
		usedAt:        copyTime(usedAt),
		isConstructed: true,
	}, nil
}

// Validate ensures the code was built through a constructor.
func (c *ConfirmationCode) Validate() error {
	if c == nil || !c.isConstructed {
		return ErrConfirmationCodeIsNotConstructed
	}
	return nil
}

func (c *ConfirmationCode) DeliveryID() kernel.UUID { return c.deliveryID }
func (c *ConfirmationCode) Code() string            { return c.code }
func (c *ConfirmationCode) IssuedAt() time.Time     { return c.issuedAt }
func (c *ConfirmationCode) ExpiresAt() time.Time    { return c.expiresAt }
func (c *ConfirmationCode) UsedAt() *time.Time      { return copyTime(c.usedAt) }

// IsUsed reports whether the code already closed a delivery.
func (c *ConfirmationCode) IsUsed() bool {
	return c.usedAt != nil
}

// Verify checks candidate against the code at time now. It fails with
// InvalidConfirmationCode when the code differs, has expired or was used.
func (c *ConfirmationCode) Verify(candidate string, now time.Time) error {
	switch {
	case subtle.ConstantTimeCompare([]byte(c.code), []byte(candidate)) != 1:
		return errs.NewInvalidConfirmationCodeErrorWithCause(c.deliveryID.String(), errCodeMismatch)
	case c.IsUsed():
		return errs.NewInvalidConfirmationCodeErrorWithCause(c.deliveryID.String(), errCodeUsed)
	case !now.Before(c.expiresAt):
		return errs.NewInvalidConfirmationCodeErrorWithCause(c.deliveryID.String(), errCodeExpired)
	}
	return nil
}

// MarkUsed consumes the code. It fails if the code was already used.
func (c *ConfirmationCode) MarkUsed(now time.Time) error {
	if c.IsUsed() {
		return errs.NewInvalidConfirmationCodeErrorWithCause(c.deliveryID.String(), errCodeUsed)
	}
	c.usedAt = &now
	return nil
}
