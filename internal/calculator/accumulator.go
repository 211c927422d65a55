package calculator

// Accumulator keeps the left operand and operator of one pending operation.
type Accumulator struct {
	operand float64
	op      Operator
	pending bool
}

// Capture records value and op as the pending operation.
func (a *Accumulator) Capture(op Operator, value float64) {
	a.operand = value
	a.op = op
	a.pending = true
}

// ClearAll forgets the pending operation.
func (a *Accumulator) ClearAll() {
	*a = Accumulator{}
}

// Pending returns the pending operator and left operand; ok is false when
// nothing is pending.
func (a *Accumulator) Pending() (op Operator, operand float64, ok bool) {
	return a.op, a.operand, a.pending
}
