package validator

import (
	"fmt"
	"regexp"

	"github.com/go-playground/validator/v10"
)

var seatRowRgx = regexp.MustCompile(`^[A-Z]{1,3}$`)

var paymentMethods = map[string]bool{
	"CASH":     true,
	"CARD":     true,
	"TRANSFER": true,
}

func NewValidator() *validator.Validate {
	validator := validator.New(validator.WithRequiredStructEnabled())

	validator.RegisterValidation("seat_row", validateSeatRow)
	validator.RegisterValidation("payment_method", validatePaymentMethod)

	return validator
}

func validateSeatRow(fl validator.FieldLevel) bool {
	return seatRowRgx.MatchString(fl.Field().String())
}

func validatePaymentMethod(fl validator.FieldLevel) bool {
	return paymentMethods[fl.Field().String()]
}

// ValidationMessage converts validator errors into readable messages
func ValidationMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must contain at least %s items", err.Param())
	case "max":
		return fmt.Sprintf("must contain at most %s items", err.Param())
	case "gte":
		return fmt.Sprintf("must be at least %s", err.Param())
	case "seat_row":
		return "must be one to three uppercase letters"
	case "payment_method":
		return "must be one of CASH, CARD or TRANSFER"
	default:
		return "is invalid"
	}
}
