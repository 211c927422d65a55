package calculator

import "strings"

// InputBuffer holds the number currently being typed. Its entry is never
// empty and contains at most one decimal point. The zero value is not ready
// for use; call NewInputBuffer.
type InputBuffer struct {
	entry string
	fresh bool // next digit or decimal starts a new number
}

func NewInputBuffer() InputBuffer {
	return InputBuffer{entry: "0"}
}

// Entry returns the current entry string.
func (b *InputBuffer) Entry() string { return b.entry }

// AwaitingFresh reports whether the next digit replaces the entry.
func (b *InputBuffer) AwaitingFresh() bool { return b.fresh }

// AppendDigit adds d ('0'..'9') to the entry. A bare "0" is replaced rather
// than prefixed.
func (b *InputBuffer) AppendDigit(d byte) {
	switch {
	case b.fresh:
		b.entry = string(d)
		b.fresh = false
	case b.entry == "0":
		b.entry = string(d)
	default:
		b.entry += string(d)
	}
}

// AppendDecimal adds a decimal point unless the entry already has one.
func (b *InputBuffer) AppendDecimal() {
	if b.fresh {
		b.entry = "0."
		b.fresh = false
		return
	}
	if !strings.Contains(b.entry, ".") {
		b.entry += "."
	}
}

// DeleteLast drops the final character, falling back to "0".
func (b *InputBuffer) DeleteLast() {
	if len(b.entry) <= 1 {
		b.entry = "0"
		return
	}
	b.entry = b.entry[:len(b.entry)-1]
}

// Reset returns the buffer to "0" and clears the fresh-entry flag.
func (b *InputBuffer) Reset() {
	b.entry = "0"
	b.fresh = false
}

// settle replaces the entry with a computed value and waits for a fresh one.
func (b *InputBuffer) settle(entry string) {
	b.entry = entry
	b.fresh = true
}

func (b *InputBuffer) awaitFresh() {
	b.fresh = true
}
