package domain

import (
	"fmt"
	"math"
	"strings"
)

// MaxQuantity is the largest balance the liczba INTEGER column holds.
const MaxQuantity = math.MaxInt32

// Direction of a stock adjustment.
type Direction string

const (
	DirectionIn  Direction = "in"  // receipt
	DirectionOut Direction = "out" // issue
)

// ParseDirection accepts "in" and "out" in any letter case.
func ParseDirection(s string) (Direction, error) {
	switch Direction(strings.ToLower(strings.TrimSpace(s))) {
	case DirectionIn:
		return DirectionIn, nil
	case DirectionOut:
		return DirectionOut, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidDirection, s)
	}
}

// ApplyAdjustment computes the quantity after moving delta units in direction dir.
// Nothing is persisted here; a withdrawal that would leave a negative balance is
// rejected with *InsufficientStockError, a receipt past MaxQuantity with
// ErrQuantityOverflow.
func ApplyAdjustment(current, delta int, dir Direction) (int, error) {
	if delta <= 0 {
		return 0, ErrNonPositiveDelta
	}
	switch dir {
	case DirectionIn:
		if current > MaxQuantity-delta {
			return 0, fmt.Errorf("%w: have %d, receiving %d", ErrQuantityOverflow, current, delta)
		}
		return current + delta, nil
	case DirectionOut:
		next := current - delta
		if next < 0 {
			return 0, &InsufficientStockError{Current: current, Delta: delta}
		}
		return next, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidDirection, dir)
	}
}
