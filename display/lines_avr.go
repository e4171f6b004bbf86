//go:build avr
// +build avr

package display

import (
	"device/avr"

	"github.com/ajanata/segclock/segment"
)

const selectMask = 0x0F

// AVRLines drives the digit select lines from PC0-PC3 and the segment lines A-G and DP
// from PB0-PB7. Segment pins are open-collector: a segment is lit by turning its pin into
// an output, which sinks current, and left dark as a high impedance input.
type AVRLines struct{}

func (AVRLines) Configure() {
	avr.DDRC.SetBits(selectMask)
	avr.PORTC.ClearBits(selectMask)
	avr.DDRB.Set(0)
	avr.PORTB.Set(0)
}

func (AVRLines) Blank() {
	avr.DDRB.Set(0)
}

func (AVRLines) Select(pos int) {
	// PC4 and PC5 carry the two-wire bus; leave their pull-ups alone
	avr.PORTC.Set(avr.PORTC.Get()&^selectMask | 1<<uint(pos))
}

func (AVRLines) Drive(p segment.Pattern) {
	avr.DDRB.Set(uint8(p))
}

var timer2Prescalers = [...]uint32{0, 1, 8, 32, 64, 128, 256, 1024}

// StartTimer2 runs Timer2 in normal mode with the prescaler in t and enables its overflow
// interrupt. The handler has to be registered by the caller with interrupt.New.
func StartTimer2(t Timing) error {
	if err := t.Validate(); err != nil {
		return err
	}
	cs := uint8(0)
	for i, p := range timer2Prescalers {
		if p == t.Prescaler {
			cs = uint8(i)
		}
	}
	if cs == 0 {
		return ErrPrescaler
	}
	avr.TCCR2A.Set(0)
	avr.TCCR2B.Set(cs)
	avr.TIMSK2.SetBits(1) // TOIE2
	return nil
}
