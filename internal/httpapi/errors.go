package httpapi

import "github.com/pkg/errors"

// validationError is a transport-side rejection: a malformed or
// out-of-range request that never reaches the engine. Wrapped with
// pkg/errors so the structured log line that reports it carries a stack
// trace back to the exact validation check that failed.
type validationError struct {
	cause error
}

func newValidationError(msg string) error {
	return validationError{cause: errors.New(msg)}
}

func wrapValidationError(err error, msg string) error {
	return validationError{cause: errors.Wrap(err, msg)}
}

func (e validationError) Error() string { return e.cause.Error() }
func (e validationError) Unwrap() error { return e.cause }

func isValidationError(err error) bool {
	_, ok := err.(validationError)
	return ok
}
