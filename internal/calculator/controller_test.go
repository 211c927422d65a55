package calculator

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	. "github.com/onsi/gomega"
	"pgregory.net/rapid"

	"go-chi-widgets/internal/notify"
)

// harness records everything a controller emits.
type harness struct {
	c       *Controller
	renders []string
	queue   *notify.Queue
}

func newHarness() *harness {
	h := &harness{queue: notify.NewQueue(0)}
	h.c = NewController(RenderFunc(func(d string) {
		h.renders = append(h.renders, d)
	}), h.queue)
	return h
}

func (h *harness) press(t testing.TB, events ...Event) {
	t.Helper()
	for _, ev := range events {
		if err := h.c.Handle(ev); err != nil {
			t.Fatalf("handling %s: %v", ev, err)
		}
	}
}

func (h *harness) lastRender() string {
	if len(h.renders) == 0 {
		return ""
	}
	return h.renders[len(h.renders)-1]
}

func digits(s string) []Event {
	out := make([]Event, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '.' {
			out = append(out, DecimalEvent())
			continue
		}
		out = append(out, DigitEvent(s[i]))
	}
	return out
}

var initial = Snapshot{Display: "0"}

func TestInitialState(t *testing.T) {
	h := newHarness()

	if diff := cmp.Diff(initial, h.c.Snapshot()); diff != "" {
		t.Fatalf("initial snapshot mismatch (-want +got):\n%s", diff)
	}
}

func TestDigitEntry(t *testing.T) {
	h := newHarness()

	h.press(t, DigitEvent('5'))
	if got := h.c.Display(); got != "5" {
		t.Fatalf("expected %q, got %q", "5", got)
	}

	h.press(t, DigitEvent('5'))
	if got := h.c.Display(); got != "55" {
		t.Fatalf("expected %q, got %q", "55", got)
	}
	if h.lastRender() != "55" {
		t.Fatalf("expected last render %q, got %q", "55", h.lastRender())
	}
}

func TestOperatorFromInitialStateIsNoOp(t *testing.T) {
	h := newHarness()

	h.press(t, OperatorEvent(OpAdd))

	if diff := cmp.Diff(initial, h.c.Snapshot()); diff != "" {
		t.Fatalf("snapshot changed (-want +got):\n%s", diff)
	}
	if len(h.renders) != 1 || h.renders[0] != "0" {
		t.Fatalf("expected a single render of %q, got %#v", "0", h.renders)
	}
}

func TestSimpleAddition(t *testing.T) {
	h := newHarness()

	h.press(t, DigitEvent('5'), OperatorEvent(OpAdd), DigitEvent('3'), EqualsEvent())

	want := Snapshot{Display: "8", AwaitingFreshEntry: true}
	if diff := cmp.Diff(want, h.c.Snapshot()); diff != "" {
		t.Fatalf("snapshot mismatch (-want +got):\n%s", diff)
	}
}

func TestOperatorChainingFoldsPendingOperation(t *testing.T) {
	h := newHarness()

	h.press(t, DigitEvent('5'), OperatorEvent(OpAdd), DigitEvent('3'), OperatorEvent(OpMultiply))

	want := Snapshot{Display: "8", PendingOperand: "8", PendingOperator: OpMultiply, AwaitingFreshEntry: true}
	if diff := cmp.Diff(want, h.c.Snapshot()); diff != "" {
		t.Fatalf("intermediate snapshot mismatch (-want +got):\n%s", diff)
	}

	h.press(t, DigitEvent('2'), EqualsEvent())
	if got := h.c.Display(); got != "16" {
		t.Fatalf("expected %q, got %q", "16", got)
	}
}

func TestRepeatedOperatorReplacesOperatorWithoutEvaluating(t *testing.T) {
	h := newHarness()
	var evaluations int
	h.c.SetObserver(func(Evaluation) { evaluations++ })

	h.press(t, DigitEvent('6'), OperatorEvent(OpAdd), OperatorEvent(OpDivide), DigitEvent('2'), EqualsEvent())

	if got := h.c.Display(); got != "3" {
		t.Fatalf("expected %q, got %q", "3", got)
	}
	if evaluations != 1 {
		t.Fatalf("expected 1 evaluation, got %d", evaluations)
	}
}

func TestOperatorChainsFromResult(t *testing.T) {
	h := newHarness()

	h.press(t, DigitEvent('4'), OperatorEvent(OpMultiply), DigitEvent('5'), EqualsEvent())
	h.press(t, OperatorEvent(OpSubtract), DigitEvent('2'), DigitEvent('5'), EqualsEvent())

	if got := h.c.Display(); got != "-5" {
		t.Fatalf("expected %q, got %q", "-5", got)
	}
}

func TestDigitAfterResultStartsFresh(t *testing.T) {
	h := newHarness()

	h.press(t, DigitEvent('2'), OperatorEvent(OpAdd), DigitEvent('2'), EqualsEvent(), DigitEvent('7'))

	if got := h.c.Display(); got != "7" {
		t.Fatalf("expected %q, got %q", "7", got)
	}
}

func TestDivideByZero(t *testing.T) {
	g := NewWithT(t)
	h := newHarness()

	h.press(t, DigitEvent('9'), OperatorEvent(OpDivide), DigitEvent('0'))
	before := h.c.Snapshot()

	h.press(t, EqualsEvent())

	g.Expect(h.c.Snapshot()).To(Equal(before))
	g.Expect(before).To(Equal(Snapshot{Display: "0", PendingOperand: "9", PendingOperator: OpDivide}))

	notes := h.queue.Drain()
	g.Expect(notes).To(HaveLen(1))
	g.Expect(notes[0].Message).To(Equal("Cannot divide by zero!"))
	g.Expect(notes[0].Severity).To(Equal(notify.Error))

	// The user can correct the operand and retry.
	h.press(t, DeleteEvent(), DigitEvent('3'), EqualsEvent())
	g.Expect(h.c.Display()).To(Equal("3"))
	g.Expect(h.queue.Len()).To(BeZero())
}

func TestDivideByZeroObserverSeesError(t *testing.T) {
	h := newHarness()
	var seen []Evaluation
	h.c.SetObserver(func(e Evaluation) { seen = append(seen, e) })

	h.press(t, DigitEvent('1'), OperatorEvent(OpDivide), DigitEvent('0'), EqualsEvent())

	if len(seen) != 1 {
		t.Fatalf("expected 1 evaluation, got %d", len(seen))
	}
	if !errors.Is(seen[0].Err, ErrDivideByZero) {
		t.Fatalf("expected ErrDivideByZero, got %v", seen[0].Err)
	}
}

func TestDivideByZeroDuringFoldStillCapturesOperator(t *testing.T) {
	g := NewWithT(t)
	h := newHarness()

	h.press(t, DigitEvent('9'), OperatorEvent(OpDivide), DigitEvent('0'), OperatorEvent(OpAdd))

	g.Expect(h.queue.Len()).To(Equal(1))
	g.Expect(h.c.Snapshot()).To(Equal(Snapshot{
		Display:            "0",
		PendingOperand:     "0",
		PendingOperator:    OpAdd,
		AwaitingFreshEntry: true,
	}))
}

func TestRepeatedEqualsIsNoOp(t *testing.T) {
	h := newHarness()
	var evaluations int
	h.c.SetObserver(func(Evaluation) { evaluations++ })

	h.press(t, DigitEvent('5'), OperatorEvent(OpAdd), DigitEvent('3'), EqualsEvent())
	after := h.c.Snapshot()

	h.press(t, EqualsEvent(), EqualsEvent())

	if diff := cmp.Diff(after, h.c.Snapshot()); diff != "" {
		t.Fatalf("repeated equals changed state (-want +got):\n%s", diff)
	}
	if evaluations != 1 {
		t.Fatalf("expected 1 evaluation, got %d", evaluations)
	}
}

func TestEqualsRightAfterOperatorIsNoOp(t *testing.T) {
	h := newHarness()

	h.press(t, DigitEvent('5'), OperatorEvent(OpAdd), EqualsEvent())

	want := Snapshot{Display: "5", PendingOperand: "5", PendingOperator: OpAdd, AwaitingFreshEntry: true}
	if diff := cmp.Diff(want, h.c.Snapshot()); diff != "" {
		t.Fatalf("snapshot mismatch (-want +got):\n%s", diff)
	}
}

func TestDelete(t *testing.T) {
	tests := []struct {
		name  string
		entry string
		want  string
	}{
		{name: "single digit", entry: "7", want: "0"},
		{name: "zero", entry: "0", want: "0"},
		{name: "multi digit", entry: "123", want: "12"},
		{name: "trailing decimal", entry: "4.", want: "4"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness()
			h.press(t, digits(tc.entry)...)
			h.press(t, DeleteEvent())

			if got := h.c.Display(); got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

func TestDeleteKeepsPendingOperation(t *testing.T) {
	h := newHarness()

	h.press(t, DigitEvent('8'), OperatorEvent(OpSubtract), DigitEvent('1'), DigitEvent('2'), DeleteEvent(), EqualsEvent())

	if got := h.c.Display(); got != "7" {
		t.Fatalf("expected %q, got %q", "7", got)
	}
}

func TestDecimalEntry(t *testing.T) {
	h := newHarness()

	h.press(t, DecimalEvent(), DigitEvent('5'), DecimalEvent(), DigitEvent('2'))
	if got := h.c.Display(); got != "0.52" {
		t.Fatalf("expected %q, got %q", "0.52", got)
	}

	h.press(t, OperatorEvent(OpAdd), DecimalEvent())
	if got := h.c.Display(); got != "0." {
		t.Fatalf("expected fresh %q after operator, got %q", "0.", got)
	}
}

func TestFloatingPointResultIsFormattedDeterministically(t *testing.T) {
	h := newHarness()

	h.press(t, digits("0.1")...)
	h.press(t, OperatorEvent(OpAdd))
	h.press(t, digits("0.2")...)
	h.press(t, EqualsEvent())

	if got := h.c.Display(); got != "0.30000000000000004" {
		t.Fatalf("expected %q, got %q", "0.30000000000000004", got)
	}
}

func TestInvalidEventsAreRejectedWithoutRender(t *testing.T) {
	h := newHarness()
	h.press(t, DigitEvent('4'))
	renders := len(h.renders)

	for _, ev := range []Event{DigitEvent('x'), OperatorEvent('%'), {Kind: 42}} {
		if err := h.c.Handle(ev); !errors.Is(err, ErrInvalidEvent) {
			t.Fatalf("expected ErrInvalidEvent for %v, got %v", ev, err)
		}
	}

	if len(h.renders) != renders {
		t.Fatalf("expected no renders for invalid events, got %d", len(h.renders)-renders)
	}
	if got := h.c.Display(); got != "4" {
		t.Fatalf("expected %q, got %q", "4", got)
	}
}

func TestZeroGuardBlocksChainFromBareZero(t *testing.T) {
	h := newHarness()

	h.press(t, DigitEvent('0'), OperatorEvent(OpSubtract), DigitEvent('4'))

	if got := h.c.Display(); got != "4" {
		t.Fatalf("expected %q, got %q", "4", got)
	}
	if _, _, ok := h.c.acc.Pending(); ok {
		t.Fatal("expected no pending operation")
	}
}

func TestEveryEventRenders(t *testing.T) {
	h := newHarness()
	events := []Event{
		DigitEvent('1'), DecimalEvent(), OperatorEvent(OpAdd), EqualsEvent(),
		DigitEvent('2'), EqualsEvent(), DeleteEvent(), ClearEvent(),
	}

	h.press(t, events...)

	if len(h.renders) != len(events) {
		t.Fatalf("expected %d renders, got %d", len(events), len(h.renders))
	}
}

func eventGen() *rapid.Generator[Event] {
	return rapid.OneOf(
		rapid.Map(rapid.ByteRange('0', '9'), DigitEvent),
		rapid.Just(DecimalEvent()),
		rapid.Map(rapid.SampledFrom([]Operator{OpAdd, OpSubtract, OpMultiply, OpDivide}), OperatorEvent),
		rapid.Just(EqualsEvent()),
		rapid.Just(ClearEvent()),
		rapid.Just(DeleteEvent()),
	)
}

func TestEntryInvariantsProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		h := newHarness()
		events := rapid.SliceOf(rapid.OneOf(
			rapid.Map(rapid.ByteRange('0', '9'), DigitEvent),
			rapid.Just(DecimalEvent()),
			rapid.Just(DeleteEvent()),
		)).Draw(rt, "events")

		for _, ev := range events {
			if err := h.c.Handle(ev); err != nil {
				rt.Fatalf("handling %s: %v", ev, err)
			}
			entry := h.c.Display()
			if entry == "" {
				rt.Fatalf("entry became empty after %s", ev)
			}
			if strings.Count(entry, ".") > 1 {
				rt.Fatalf("entry %q has more than one decimal point", entry)
			}
			if len(entry) > 1 && entry[0] == '0' && entry[1] != '.' {
				rt.Fatalf("entry %q has a redundant leading zero", entry)
			}
		}
	})
}

func TestClearAlwaysRestoresInitialStateProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		h := newHarness()
		for _, ev := range rapid.SliceOf(eventGen()).Draw(rt, "events") {
			if err := h.c.Handle(ev); err != nil {
				rt.Fatalf("handling %s: %v", ev, err)
			}
		}

		if err := h.c.Handle(ClearEvent()); err != nil {
			rt.Fatalf("clear: %v", err)
		}
		if diff := cmp.Diff(initial, h.c.Snapshot()); diff != "" {
			rt.Fatalf("clear did not restore initial state (-want +got):\n%s", diff)
		}
	})
}

func TestDivideByZeroNeverChangesStateProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		h := newHarness()
		for _, ev := range rapid.SliceOf(eventGen()).Draw(rt, "events") {
			before := h.c.Snapshot()
			pendingBefore := h.queue.Len()

			if err := h.c.Handle(ev); err != nil {
				rt.Fatalf("handling %s: %v", ev, err)
			}

			if ev.Kind == EventEquals && h.queue.Len() > pendingBefore {
				if diff := cmp.Diff(before, h.c.Snapshot()); diff != "" {
					rt.Fatalf("divide by zero changed state (-want +got):\n%s", diff)
				}
			}
		}
	})
}
