package application

import "errors"

var (
	// ErrNotFound is returned when the requested resource does not exist.
	ErrNotFound = errors.New("application: not found")
	// ErrNotWorking is returned when a clock-out is requested while the
	// employee has no open session. Nothing is mutated.
	ErrNotWorking = errors.New("application: not working")
	// ErrDuplicate is returned when an insert collides with an existing
	// identifier. Retrying the same request cannot succeed.
	ErrDuplicate = errors.New("application: duplicate identifier")
	// ErrUnavailable is returned when the backing store cannot serve the
	// operation. No partial state was written, so callers may retry.
	ErrUnavailable = errors.New("application: store unavailable")
)

// ValidationError captures field level validation issues that callers can surface to users.
type ValidationError struct {
	FieldErrors map[string]string
}

// Error implements the error interface.
func (v *ValidationError) Error() string {
	if v == nil {
		return ""
	}
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
