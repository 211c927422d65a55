package calculator

import "fmt"

// Operator is a binary arithmetic operator. The zero value means no operator.
type Operator byte

const (
	OpNone     Operator = 0
	OpAdd      Operator = '+'
	OpSubtract Operator = '-'
	OpMultiply Operator = '*'
	OpDivide   Operator = '/'
)

// ParseOperator accepts either the symbol ("+") or the operation name ("add").
func ParseOperator(s string) (Operator, error) {
	switch s {
	case "+", "add":
		return OpAdd, nil
	case "-", "subtract":
		return OpSubtract, nil
	case "*", "multiply":
		return OpMultiply, nil
	case "/", "divide":
		return OpDivide, nil
	}
	return OpNone, fmt.Errorf("%w: unknown operator %q", ErrInvalidEvent, s)
}

func (o Operator) valid() bool {
	switch o {
	case OpAdd, OpSubtract, OpMultiply, OpDivide:
		return true
	}
	return false
}

// String returns the operator symbol, or "" for OpNone.
func (o Operator) String() string {
	if !o.valid() {
		return ""
	}
	return string(rune(o))
}

// Name returns the operation name used in metrics and logs.
func (o Operator) Name() string {
	switch o {
	case OpAdd:
		return "add"
	case OpSubtract:
		return "subtract"
	case OpMultiply:
		return "multiply"
	case OpDivide:
		return "divide"
	}
	return "none"
}

func (o Operator) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

func (o *Operator) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*o = OpNone
		return nil
	}
	op, err := ParseOperator(string(text))
	if err != nil {
		return err
	}
	*o = op
	return nil
}
