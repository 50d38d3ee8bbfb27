package analysis

import "errors"

// Input validation errors. Both are returned before any upstream call.
var (
	// ErrMissingAddress is returned when no wallet address was supplied.
	ErrMissingAddress = errors.New("address is required")

	// ErrInvalidAddress is returned when the address is not a 20-byte hex address.
	ErrInvalidAddress = errors.New("invalid address")
)

// IsInputError reports whether err is a validation error.
func IsInputError(err error) bool {
	return errors.Is(err, ErrMissingAddress) || errors.Is(err, ErrInvalidAddress)
}
