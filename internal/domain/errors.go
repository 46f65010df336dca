package domain

import (
	"errors"
	"fmt"
)

var (
	ErrUploadNotFound = errors.New("upload not found")
	ErrJobNotFound    = errors.New("job not found")
)

// ValidationError marks malformed upload or job input. The HTTP layer maps it
// to a 4xx response with the reason as plain-text detail.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

func NewValidationError(format string, args ...any) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
