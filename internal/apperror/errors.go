// Package apperror holds the error taxonomy shared by the services and the HTTP layer.
package apperror

import (
	"github.com/cockroachdb/errors"
)

// Lookup failures on unknown ids
var (
	ErrProductNotFound     = errors.New("product not found")
	ErrClientNotFound      = errors.New("client not found")
	ErrOrderNotFound       = errors.New("order not found")
	ErrDriverNotFound      = errors.New("driver not found")
	ErrPricingRuleNotFound = errors.New("pricing rule not found")
)

var (
	// ErrInvalidTransition is returned for order status changes the lifecycle forbids
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrForbidden is returned when the actor's role lacks a capability
	ErrForbidden = errors.New("forbidden")
	// ErrInsufficientStock is returned when an outbound movement exceeds stock
	ErrInsufficientStock = errors.New("insufficient stock")

	errInvalid = errors.New("invalid input")
)

// Invalid builds a validation error with a user-facing message
func Invalid(format string, args ...interface{}) error {
	return errors.Mark(errors.Newf(format, args...), errInvalid)
}

// IsValidation reports whether err was produced by Invalid
func IsValidation(err error) bool {
	return errors.Is(err, errInvalid)
}

// IsNotFound reports whether err is any of the lookup failures
func IsNotFound(err error) bool {
	return errors.IsAny(err,
		ErrProductNotFound,
		ErrClientNotFound,
		ErrOrderNotFound,
		ErrDriverNotFound,
		ErrPricingRuleNotFound,
	)
}
