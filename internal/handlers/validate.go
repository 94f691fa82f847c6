package handlers

import (
	"github.com/go-playground/validator/v10"

	"github.com/pageturn-labs/bookrent-backend/internal/otp"
)

// validate is shared by all handlers. The custom "phone" rule accepts any
// formatting but requires at least 10 digits; canonicalization happens in the
// OTP service, not here.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return otp.DigitCount(fl.Field().String()) >= 10
	})
	return v
}
