package store

import (
	"errors"
	"fmt"
)

// Common store errors used across all store implementations.
var (
	// ErrNotFound is returned when a requested entity does not exist in the store.
	ErrNotFound = errors.New("entity not found")

	// ErrStorage is matched by every *StoreError. It reports that the
	// backing store failed, as opposed to the entity being absent.
	ErrStorage = errors.New("storage failure")

	// ErrInvalidEntity is returned when an entity fails validation before
	// being stored. Check the wrapped error for specific validation details.
	ErrInvalidEntity = errors.New("invalid entity")

	// ErrDeckNotFound indicates that no deck is stored under the subject.
	ErrDeckNotFound = fmt.Errorf("%w: deck", ErrNotFound)
)

// IsNotFoundError checks if the error is any kind of "not found" error.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// NotFoundError reports a missing entity together with the key that was looked up.
type NotFoundError struct {
	Entity  string
	Subject string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Entity, e.Subject)
}

// Is makes NotFoundError match ErrNotFound, and ErrDeckNotFound for decks.
func (e *NotFoundError) Is(target error) bool {
	if target == ErrNotFound {
		return true
	}
	return target == ErrDeckNotFound && e.Entity == "deck"
}

// NewDeckNotFoundError creates the error returned when subject has no deck.
func NewDeckNotFoundError(subject string) *NotFoundError {
	return &NotFoundError{Entity: "deck", Subject: subject}
}

// StoreError is a custom error type for store-specific errors with additional context.
type StoreError struct {
	Entity    string // The entity type (e.g., "deck", "review_attempt")
	Operation string // The operation that failed (e.g., "save", "load")
	Subject   string // The deck subject involved, if any
	Message   string // Error message
	Err       error  // Original error
}

// Error implements the error interface for StoreError.
func (e *StoreError) Error() string {
	target := e.Entity
	if e.Subject != "" {
		target = fmt.Sprintf("%s %q", e.Entity, e.Subject)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s operation on %s failed: %s: %v", e.Operation, target, e.Message, e.Err)
	}
	return fmt.Sprintf("%s operation on %s failed: %s", e.Operation, target, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *StoreError) Unwrap() error {
	return e.Err
}

// Is makes every StoreError match ErrStorage.
func (e *StoreError) Is(target error) bool {
	return target == ErrStorage
}

// NewStoreError creates a new StoreError with the given entity, operation,
// subject, message, and wrapped error.
func NewStoreError(entity, operation, subject, message string, err error) *StoreError {
	return &StoreError{
		Entity:    entity,
		Operation: operation,
		Subject:   subject,
		Message:   message,
		Err:       err,
	}
}
