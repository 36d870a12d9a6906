package services

import (
	"errors"
	"fmt"
)

// Engine errors are typed so handlers can map them onto HTTP statuses without
// string-matching. Everything else bubbles up as a plain 500.
var (
	ErrNotFound = errors.New("record not found")
	ErrConflict = errors.New("conflicting operation already committed")
)

// ValidationError carries the specific field at fault. Returned before any
// state mutation happens.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
}

func invalidField(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
