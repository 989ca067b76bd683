package domain

import "errors"

// Error classes for order handling. Validation errors are raised at order
// construction, before an order ever reaches an engine. State errors signal
// an illegal lifecycle transition; when triggered by the engine itself they
// indicate a program defect, but for cancellation of an already-terminal
// order they are an expected race outcome.
var (
	ErrValidation   = errors.New("validation failed")
	ErrInvalidState = errors.New("invalid order state")
)
