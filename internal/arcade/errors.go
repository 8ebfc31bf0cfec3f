package arcade

import (
	"errors"
	"fmt"
)

var (
	// ErrNoContentAvailable is returned when no item exists at any tier.
	ErrNoContentAvailable = errors.New("no content available")

	// ErrItemNotFound is returned when a submission names an unknown item.
	ErrItemNotFound = errors.New("item not found")

	// ErrStoreUnavailable matches every *StoreError via errors.Is.
	ErrStoreUnavailable = errors.New("store unavailable")
)

// ValidationError is returned for a malformed request.
// Extractable via errors.As().
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid request: %s: %s", e.Field, e.Message)
}

// StoreError is returned when a collaborator fails. Nothing was committed.
// Extractable via errors.As(). Supports Unwrap().
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store: %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

func (e *StoreError) Is(target error) bool { return target == ErrStoreUnavailable }

func storeErr(op string, err error) error {
	return &StoreError{Op: op, Err: err}
}
