package calculator

import "fmt"

// EventKind identifies one of the six calculator inputs.
type EventKind int

const (
	EventDigit EventKind = iota + 1
	EventDecimal
	EventOperator
	EventEquals
	EventClear
	EventDelete
)

var eventKindNames = map[EventKind]string{
	EventDigit:    "digit",
	EventDecimal:  "decimal",
	EventOperator: "operator",
	EventEquals:   "equals",
	EventClear:    "clear",
	EventDelete:   "delete",
}

func (k EventKind) String() string {
	if name, ok := eventKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("EventKind(%d)", int(k))
}

// Event is a single input delivered to a Controller. Digit is set only for
// EventDigit and Op only for EventOperator.
type Event struct {
	Kind  EventKind
	Digit byte
	Op    Operator
}

func DigitEvent(d byte) Event { return Event{Kind: EventDigit, Digit: d} }
func DecimalEvent() Event { return Event{Kind: EventDecimal} }
func OperatorEvent(op Operator) Event { return Event{Kind: EventOperator, Op: op} }
func EqualsEvent() Event { return Event{Kind: EventEquals} }
func ClearEvent() Event { return Event{Kind: EventClear} }
func DeleteEvent() Event { return Event{Kind: EventDelete} }

func (e Event) String() string {
	switch e.Kind {
	case EventDigit:
		return fmt.Sprintf("digit(%c)", e.Digit)
	case EventOperator:
		return fmt.Sprintf("operator(%s)", e.Op)
	}
	return e.Kind.String()
}

// Validate reports ErrInvalidEvent for events no host should produce.
func (e Event) Validate() error {
	switch e.Kind {
	case EventDigit:
		if !isDigit(e.Digit) {
			return fmt.Errorf("%w: digit %q", ErrInvalidEvent, e.Digit)
		}
	case EventOperator:
		if !e.Op.valid() {
			return fmt.Errorf("%w: operator %d", ErrInvalidEvent, int(e.Op))
		}
	case EventDecimal, EventEquals, EventClear, EventDelete:
	default:
		return fmt.Errorf("%w: kind %d", ErrInvalidEvent, int(e.Kind))
	}
	return nil
}

// ParseEvent builds an Event from the kind and value strings hosts send, for
// example ("digit", "7") or ("operator", "*").
func ParseEvent(kind, value string) (Event, error) {
	var ev Event
	switch kind {
	case "digit", "number":
		if len(value) != 1 {
			return Event{}, fmt.Errorf("%w: digit %q", ErrInvalidEvent, value)
		}
		ev = DigitEvent(value[0])
	case "decimal":
		ev = DecimalEvent()
	case "operator":
		op, err := ParseOperator(value)
		if err != nil {
			return Event{}, err
		}
		ev = OperatorEvent(op)
	case "equals":
		ev = EqualsEvent()
	case "clear":
		ev = ClearEvent()
	case "delete":
		ev = DeleteEvent()
	default:
		return Event{}, fmt.Errorf("%w: unknown event type %q", ErrInvalidEvent, kind)
	}

	if err := ev.Validate(); err != nil {
		return Event{}, err
	}
	return ev, nil
}
