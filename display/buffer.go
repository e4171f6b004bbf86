package display

import (
	"sync/atomic"

	"github.com/ajanata/segclock/segment"
)

// Positions is the number of digits on the display.
const Positions = 4

// Buffer holds the digits shown at each position: hours tens, hours units, minutes tens,
// minutes units. It has a single writer, the foreground loop, and a single reader, the
// refresh interrupt.
//
// Every slot is stored atomically, so the reader never sees a partly written digit. A
// Publish is not atomic as a whole: a refresh running concurrently may show new hours next
// to old minutes. That lasts at most one refresh cycle and corrects itself on the next.
type Buffer struct {
	slots [Positions]atomic.Uint32
}

// NewBuffer returns a buffer showing dashes.
func NewBuffer() *Buffer {
	b := &Buffer{}
	b.Publish([Positions]segment.Digit{segment.Dash, segment.Dash, segment.Dash, segment.Dash})
	return b
}

// Set stores d at position pos. Invalid digits are rejected so every slot always holds a
// renderable value.
func (b *Buffer) Set(pos int, d segment.Digit) error {
	if !d.Valid() {
		return segment.ErrInvalidDigit
	}
	b.slots[pos].Store(uint32(d))
	return nil
}

// Get returns the digit at position pos.
func (b *Buffer) Get(pos int) segment.Digit {
	return segment.Digit(b.slots[pos].Load())
}

// Publish stores all four digits, in order.
func (b *Buffer) Publish(digits [Positions]segment.Digit) error {
	for i, d := range digits {
		if err := b.Set(i, d); err != nil {
			return err
		}
	}
	return nil
}

// Snapshot reads all four digits. It is subject to the same tearing as the refresh.
func (b *Buffer) Snapshot() [Positions]segment.Digit {
	var out [Positions]segment.Digit
	for i := range out {
		out[i] = b.Get(i)
	}
	return out
}
