//go:build avr
// +build avr

package twi

import (
	"device/avr"
)

// AVR is the on-chip TWI peripheral of megaAVR parts.
var AVR Registers = avrTWI{}

type avrTWI struct{}

func (avrTWI) Control() uint8     { return avr.TWCR.Get() }
func (avrTWI) SetControl(v uint8) { avr.TWCR.Set(v) }
func (avrTWI) Status() uint8      { return avr.TWSR.Get() }
func (avrTWI) Data() uint8        { return avr.TWDR.Get() }
func (avrTWI) SetData(v uint8)    { avr.TWDR.Set(v) }
func (avrTWI) SetBitRate(v uint8) { avr.TWBR.Set(v) }
