package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidID is returned when an ID is malformed or invalid.
	ErrInvalidID = errors.New("invalid ID")

	// ErrUnauthorized is returned when an operation is not permitted
	// for the calling principal.
	ErrUnauthorized = errors.New("unauthorized operation")
)

// Business-rule errors. Each corresponds to a precondition that must hold
// before a mutation is persisted; the API layer maps all of them to
// HTTP 400 Bad Request.
var (
	// ErrCardExpired is returned when an operation targets an expired card.
	ErrCardExpired = errors.New("card has expired")

	// ErrCardBlocked is returned when an operation targets a blocked card.
	ErrCardBlocked = errors.New("card is blocked")

	// ErrCardHasBalance is returned when deleting a card whose balance is not zero.
	ErrCardHasBalance = errors.New("cannot delete card with positive balance")

	// ErrSameCardTransfer is returned when source and target of a transfer are the same card.
	ErrSameCardTransfer = errors.New("cannot transfer to the same card")

	// ErrInsufficientBalance is returned when the source card cannot cover the transfer amount.
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrUserInactive is returned when mutating a deactivated user.
	ErrUserInactive = errors.New("cannot update deactivated user")

	// ErrUserAlreadyActive is returned when activating an already-active user.
	ErrUserAlreadyActive = errors.New("user already active")

	// ErrUserAlreadyInactive is returned when deactivating an already-deactivated user.
	ErrUserAlreadyInactive = errors.New("user already deactivated")

	// ErrAdminDeactivation is returned when deactivating an administrator.
	ErrAdminDeactivation = errors.New("cannot deactivate administrator")

	// ErrUserHasCards is returned when deleting a user that still owns cards.
	ErrUserHasCards = errors.New("cannot delete user with cards")
)

// ValidationError carries the field that failed validation alongside the
// sentinel it wraps, so callers can both display a useful message and
// branch with errors.Is.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return e.Field + " " + e.Message
	}
	return e.Message
}

// Unwrap returns the wrapped sentinel to support errors.Is/errors.As.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// NewValidationError creates a ValidationError wrapping the given sentinel.
func NewValidationError(field, message string, err error) *ValidationError {
	return &ValidationError{Field: field, Message: message, Err: err}
}
