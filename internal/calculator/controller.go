package calculator

import (
	"errors"

	"go-chi-widgets/internal/notify"
)

// Renderer receives the display string after every handled event.
type Renderer interface {
	Render(display string)
}

// RenderFunc adapts a function to a Renderer.
type RenderFunc func(display string)

func (f RenderFunc) Render(display string) { f(display) }

// Evaluation describes one attempted binary operation.
type Evaluation struct {
	Op     Operator
	Left   float64
	Right  float64
	Result float64
	Err    error
}

// Observer is told about every evaluation the controller attempts,
// including the ones that fail.
type Observer func(Evaluation)

// Controller is the calculator state machine. It is not safe for concurrent
// use: hosts deliver events one at a time, in order.
type Controller struct {
	buf      InputBuffer
	acc      Accumulator
	renderer Renderer
	notifier notify.Notifier
	observer Observer
}

// NewController returns a controller in its initial state. A nil renderer or
// notifier discards output.
func NewController(r Renderer, n notify.Notifier) *Controller {
	if r == nil {
		r = RenderFunc(func(string) {})
	}
	if n == nil {
		n = notify.Discard
	}
	return &Controller{
		buf:      NewInputBuffer(),
		renderer: r,
		notifier: n,
	}
}

// SetObserver installs fn to watch evaluations. Pass nil to remove it.
func (c *Controller) SetObserver(fn Observer) {
	c.observer = fn
}

// Display returns the current display string.
func (c *Controller) Display() string {
	return c.buf.Entry()
}

// Handle applies ev and renders the display. Only malformed events return an
// error; they leave the state untouched and nothing is rendered.
func (c *Controller) Handle(ev Event) error {
	if err := ev.Validate(); err != nil {
		return err
	}

	switch ev.Kind {
	case EventDigit:
		c.buf.AppendDigit(ev.Digit)
	case EventDecimal:
		c.buf.AppendDecimal()
	case EventOperator:
		c.operator(ev.Op)
	case EventEquals:
		c.calculate()
	case EventClear:
		c.buf.Reset()
		c.acc.ClearAll()
	case EventDelete:
		c.buf.DeleteLast()
	}

	c.renderer.Render(c.buf.Entry())
	return nil
}

func (c *Controller) operator(op Operator) {
	_, _, pending := c.acc.Pending()

	// A bare untouched zero cannot start a chain.
	if c.buf.Entry() == "0" && !pending {
		return
	}

	if pending && !c.buf.AwaitingFresh() {
		c.calculate()
	}

	c.acc.Capture(op, ParseEntry(c.buf.Entry()))
	c.buf.awaitFresh()
}

// calculate folds the pending operation into the entry. On divide by zero
// the user is notified and the state is left exactly as it was.
func (c *Controller) calculate() {
	op, left, pending := c.acc.Pending()
	if !pending || c.buf.AwaitingFresh() {
		return
	}

	right := ParseEntry(c.buf.Entry())
	result, err := Apply(op, left, right)
	if c.observer != nil {
		c.observer(Evaluation{Op: op, Left: left, Right: right, Result: result, Err: err})
	}
	if err != nil {
		if errors.Is(err, ErrDivideByZero) {
			c.notifier.Notify(divideByZeroMessage, notify.Error)
		}
		return
	}

	c.buf.settle(FormatNumber(result))
	c.acc.ClearAll()
}

// Snapshot is a read-only view of the controller state.
type Snapshot struct {
	Display            string   `json:"display"`
	PendingOperand     string   `json:"pending_operand,omitempty"`
	PendingOperator    Operator `json:"pending_operator,omitempty"`
	AwaitingFreshEntry bool     `json:"awaiting_fresh_entry"`
}

// Snapshot returns the current state. PendingOperand is empty when no
// operation is pending.
func (c *Controller) Snapshot() Snapshot {
	s := Snapshot{
		Display:            c.buf.Entry(),
		AwaitingFreshEntry: c.buf.AwaitingFresh(),
	}
	if op, operand, ok := c.acc.Pending(); ok {
		s.PendingOperand = FormatNumber(operand)
		s.PendingOperator = op
	}
	return s
}
