package application

import "errors"

var (
	// ErrNotFound is returned when the requested booking does not exist.
	ErrNotFound = errors.New("application: not found")
	// ErrNoActiveListing is returned when a cancel-by-index arrives without a
	// preceding bookings listing to resolve the indices against.
	ErrNoActiveListing = errors.New("application: no active listing")
	// ErrInvalidIndex is returned when a cancel index falls outside the
	// user's last listing.
	ErrInvalidIndex = errors.New("application: invalid listing index")
)

// ValidationError captures field level validation issues that callers can surface to users.
type ValidationError struct {
	FieldErrors map[string]string
}

// Error implements the error interface.
func (v *ValidationError) Error() string {
	return "validation failed"
}

// HasErrors reports whether any field level issues were recorded.
func (v *ValidationError) HasErrors() bool {
	return v != nil && len(v.FieldErrors) > 0
}

// add records a field level validation error.
func (v *ValidationError) add(field, message string) {
	if v.FieldErrors == nil {
		v.FieldErrors = make(map[string]string)
	}
	v.FieldErrors[field] = message
}
