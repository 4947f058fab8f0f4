package domain

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyName             = errors.New("name cannot be empty")
	ErrUnknownCategory       = errors.New("category does not exist")
	ErrNegativeValue         = errors.New("value cannot be negative")
	ErrQuantityOverflow      = errors.New("quantity exceeds the storable range")
	ErrInvalidName           = errors.New("name cannot contain control characters")
	ErrInsufficientStock     = errors.New("insufficient stock")
	ErrReferentialConstraint = errors.New("record is still referenced")
	ErrStoreUnavailable      = errors.New("store unavailable")

	ErrNotFound         = errors.New("not found")
	ErrConflict         = errors.New("record was modified concurrently")
	ErrNonPositiveDelta = errors.New("adjustment amount must be positive")
	ErrInvalidDirection = errors.New("invalid adjustment direction")
	ErrExportDisabled   = errors.New("export archive is not configured")
)

// ValidationError reports which input field broke a rule.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// InsufficientStockError is returned when a withdrawal would make the balance negative.
type InsufficientStockError struct {
	Current int
	Delta   int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock: have %d, requested %d", e.Current, e.Delta)
}

func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}

// IsValidation reports whether err is a recoverable input error.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve) ||
		errors.Is(err, ErrEmptyName) ||
		errors.Is(err, ErrNegativeValue) ||
		errors.Is(err, ErrQuantityOverflow) ||
		errors.Is(err, ErrInvalidName) ||
		errors.Is(err, ErrUnknownCategory) ||
		errors.Is(err, ErrNonPositiveDelta) ||
		errors.Is(err, ErrInvalidDirection)
}
