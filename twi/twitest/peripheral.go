// Package twitest provides a simulated TWI peripheral for testing code built on package
// twi. The simulated bus has a single register-file device attached, addressed the way
// common RTC and EEPROM chips are: the first byte written after the address sets the
// register pointer, subsequent bytes are stored at the pointer, reads return bytes from
// the pointer, and the pointer auto-increments.
package twitest

import (
	"fmt"

	"github.com/ajanata/segclock/twi"
)

type phase uint8

const (
	phaseIdle phase = iota
	phaseAddress
	phaseTransmit
	phaseReceive
	phaseRejected
)

// Peripheral implements twi.Registers. Operations complete immediately unless Hang is set.
type Peripheral struct {
	// Address is the 7-bit address of the attached device.
	Address uint8
	// Mem is the register file of the attached device.
	Mem [256]byte
	// Port makes the device a single register without a pointer, like an I/O expander:
	// writes store to Mem[0] and reads return Mem[0].
	Port bool

	// NackAddress makes the device ignore its address.
	NackAddress bool
	// NackByte makes the device reject the n-th byte written to it (counting from 1, the
	// register pointer included). Zero disables it.
	NackByte int
	// LoseArbitration reports an arbitration loss for every START.
	LoseArbitration bool
	// Hang stops the peripheral from ever completing an operation.
	Hang bool
	// StuckStop leaves TWSTO set after a STOP, as a bus held low by a device would.
	StuckStop bool

	// Log records every bus event in order.
	Log     []string
	Starts  int
	Stops   int
	BitRate uint8

	ctl     uint8
	status  uint8
	data    uint8
	owned   bool
	phase   phase
	ptr     uint8
	ptrSet  bool
	written int
}

var _ twi.Registers = (*Peripheral)(nil)

// New returns a peripheral with a device at addr.
func New(addr uint8) *Peripheral {
	return &Peripheral{
		Address: addr,
		status:  twi.StatusNoInfo,
	}
}

// Idle reports whether the bus has been released by a STOP condition.
func (p *Peripheral) Idle() bool {
	return !p.owned
}

func (p *Peripheral) Control() uint8     { return p.ctl }
func (p *Peripheral) Status() uint8      { return p.status }
func (p *Peripheral) Data() uint8        { return p.data }
func (p *Peripheral) SetData(v uint8)    { p.data = v }
func (p *Peripheral) SetBitRate(v uint8) { p.BitRate = v }

func (p *Peripheral) SetControl(v uint8) {
	p.ctl = v
	if v&twi.TWINT == 0 {
		return
	}
	// writing a one clears the flag and starts the next operation
	p.ctl &^= twi.TWINT
	if p.Hang {
		return
	}

	switch {
	case v&twi.TWSTO != 0:
		p.log("STOP")
		p.Stops++
		p.owned = false
		p.phase = phaseIdle
		p.status = twi.StatusNoInfo
		if !p.StuckStop {
			p.ctl &^= twi.TWSTO
		}
		// no interrupt flag after a stop
		return

	case v&twi.TWSTA != 0:
		if p.LoseArbitration {
			p.log("ARBITRATION LOST")
			p.status = twi.StatusArbitrationLost
			p.phase = phaseIdle
			break
		}
		if p.owned {
			p.log("RESTART")
			p.status = twi.StatusRepeatedStart
		} else {
			p.log("START")
			p.Starts++
			p.status = twi.StatusStart
		}
		p.owned = true
		p.phase = phaseAddress

	default:
		p.transfer(v)
	}
	p.ctl |= twi.TWINT
}

func (p *Peripheral) transfer(v uint8) {
	switch p.phase {
	case phaseAddress:
		addr, read := p.data>>1, p.data&1 == 1
		dir := "W"
		if read {
			dir = "R"
		}
		if addr != p.Address || p.NackAddress {
			p.log(fmt.Sprintf("SLA+%s 0x%02x NACK", dir, addr))
			p.phase = phaseRejected
			p.status = twi.StatusMTAddressNack
			if read {
				p.status = twi.StatusMRAddressNack
			}
			return
		}
		p.log(fmt.Sprintf("SLA+%s 0x%02x", dir, addr))
		if read {
			p.phase = phaseReceive
			p.status = twi.StatusMRAddressAck
			return
		}
		p.phase = phaseTransmit
		p.ptrSet = false
		p.status = twi.StatusMTAddressAck

	case phaseTransmit:
		p.written++
		if p.NackByte != 0 && p.written == p.NackByte {
			p.log(fmt.Sprintf("W 0x%02x NACK", p.data))
			p.status = twi.StatusMTDataNack
			return
		}
		p.log(fmt.Sprintf("W 0x%02x", p.data))
		if p.Port {
			p.Mem[0] = p.data
		} else if !p.ptrSet {
			p.ptr = p.data
			p.ptrSet = true
		} else {
			p.Mem[p.ptr] = p.data
			p.ptr++
		}
		p.status = twi.StatusMTDataAck

	case phaseReceive:
		if p.Port {
			p.data = p.Mem[0]
		} else {
			p.data = p.Mem[p.ptr]
			p.ptr++
		}
		if v&twi.TWEA != 0 {
			p.log(fmt.Sprintf("R 0x%02x ACK", p.data))
			p.status = twi.StatusMRDataAck
			return
		}
		p.log(fmt.Sprintf("R 0x%02x NACK", p.data))
		p.status = twi.StatusMRDataNack

	default:
		p.status = twi.StatusBusError
	}
}

func (p *Peripheral) log(ev string) {
	p.Log = append(p.Log, ev)
}
