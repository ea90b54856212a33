package service

import "errors"

var (
	ErrValidation           = errors.New("validation failed")
	ErrNotFound             = errors.New("not found")
	ErrUnauthorized         = errors.New("unauthorized")
	ErrDuplicateEmail       = errors.New("email already registered")
	ErrTrialAlreadyExtended = errors.New("trial already extended")
	ErrBillingUnavailable   = errors.New("billing provider unavailable")
)

// validationError wraps ErrValidation with the offending field.
type validationError struct {
	Field string
	Err   error
}

func (e *validationError) Error() string {
	if e.Err == nil {
		return e.Field + ": " + ErrValidation.Error()
	}
	return e.Field + ": " + e.Err.Error()
}

func (e *validationError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrValidation}
	}
	return []error{ErrValidation, e.Err}
}

func invalid(field string, err error) error {
	return &validationError{Field: field, Err: err}
}

// ValidationField returns the field named by a validation error, if any.
func ValidationField(err error) string {
	var ve *validationError
	if errors.As(err, &ve) {
		return ve.Field
	}
	return ""
}
