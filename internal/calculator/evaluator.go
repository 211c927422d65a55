package calculator

import (
	"errors"
	"fmt"
)

var (
	// ErrDivideByZero is the only arithmetic failure.
	ErrDivideByZero = errors.New("cannot divide by zero")

	// ErrInvalidEvent rejects input the host should never have sent.
	ErrInvalidEvent = errors.New("invalid calculator event")
)

// divideByZeroMessage is shown to the user when ErrDivideByZero occurs.
const divideByZeroMessage = "Cannot divide by zero!"

// Apply evaluates left op right. It has no side effects.
func Apply(op Operator, left, right float64) (float64, error) {
	switch op {
	case OpAdd:
		return left + right, nil
	case OpSubtract:
		return left - right, nil
	case OpMultiply:
		return left * right, nil
	case OpDivide:
		if right == 0 {
			return 0, fmt.Errorf("%w: %s / %s", ErrDivideByZero, FormatNumber(left), FormatNumber(right))
		}
		return left / right, nil
	}
	return 0, fmt.Errorf("%w: operator %d", ErrInvalidEvent, int(op))
}
