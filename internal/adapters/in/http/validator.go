package http

import (
	"ecodeli/internal/pkg/errs"

	"gopkg.in/go-playground/validator.v9"
)

// CustomValidator runs the `validate` struct tags of request bodies.
type CustomValidator struct {
	Validator *validator.Validate
}

func NewCustomValidator() *CustomValidator {
	return &CustomValidator{Validator: validator.New()}
}

// Validate reports tag violations as a validation error so they map to 400.
func (cv *CustomValidator) Validate(i any) error {
	if err := cv.Validator.Struct(i); err != nil {
		return errs.NewValueIsInvalidErrorWithCause("request", err)
	}
	return nil
}
