// Package twi implements a polled master for the two-wire serial bus (I2C) on top of the
// status-register interface of an AVR-style TWI peripheral.
//
// A transaction is opened with Start, carries any number of Transmit and Receive calls,
// and is closed with Stop. Calling Start while a transaction is open issues a repeated
// start, which keeps ownership of the bus while switching direction. Every operation that
// fails issues a STOP condition before returning, so a failed transaction never leaves
// the bus claimed.
//
// The Bus is strictly sequential and must only be used from one execution context. It is
// not safe to use from an interrupt handler.
package twi

import (
	"tinygo.org/x/drivers"
)

const (
	DefaultFrequency    = 100_000
	DefaultCPUFrequency = 16_000_000
	// DefaultTimeout is the number of status polls before an operation is abandoned. At
	// 16 MHz and 100 kHz one byte takes roughly 1500 cycles, so this leaves a wide margin.
	DefaultTimeout = 1 << 15

	// MaxAddress is the highest 7-bit device address.
	MaxAddress = 0x7F
)

var _ drivers.I2C = (*Bus)(nil)

type Config struct {
	// Frequency is the SCL frequency in Hz.
	Frequency uint32
	// CPUFrequency is the clock feeding the TWI bit rate generator.
	CPUFrequency uint32
	// Timeout bounds every wait for the hardware, counted in status register polls.
	Timeout int
}

type Bus struct {
	regs    Registers
	timeout int
	open    bool
}

// New creates a bus master on the given peripheral. Configure must be called before use.
func New(regs Registers) *Bus {
	return &Bus{
		regs:    regs,
		timeout: DefaultTimeout,
	}
}

// Configure programs the bit rate register. The prescaler is assumed to be 1.
func (b *Bus) Configure(c Config) error {
	if c.Frequency == 0 {
		c.Frequency = DefaultFrequency
	}
	if c.CPUFrequency == 0 {
		c.CPUFrequency = DefaultCPUFrequency
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}

	twbr, ok := BitRate(c.CPUFrequency, c.Frequency)
	if !ok {
		return ErrFrequency
	}
	b.regs.SetBitRate(twbr)
	b.timeout = c.Timeout
	return nil
}

// BitRate computes the TWBR value for the requested SCL frequency:
// SCL = CPU / (16 + 2*TWBR).
func BitRate(cpu, scl uint32) (uint8, bool) {
	if scl == 0 {
		return 0, false
	}
	div := cpu / scl
	if div < 16 || (div-16)/2 > 0xFF {
		return 0, false
	}
	return uint8((div - 16) / 2), true
}

// Idle reports whether no transaction is open.
func (b *Bus) Idle() bool {
	return !b.open
}

// Start generates a START condition, or a repeated START if a transaction is already open,
// and addresses the 7-bit device addr for reading or writing. It only succeeds if the
// start was generated and the device acknowledged its address.
func (b *Bus) Start(addr uint8, read bool) error {
	if addr > MaxAddress {
		if b.open {
			_ = b.Stop()
		}
		return &Error{Op: "start", Status: b.status(), Err: ErrAddress}
	}

	op, want := "start", uint8(StatusStart)
	if b.open {
		op, want = "restart", StatusRepeatedStart
	}

	b.regs.SetControl(TWINT | TWSTA | TWEN)
	if err := b.wait(op); err != nil {
		return err
	}
	if s := b.status(); s != want {
		return b.fail(op, s, classify(s, ErrStart))
	}
	b.open = true

	sla := addr << 1
	ack := uint8(StatusMTAddressAck)
	if read {
		sla |= 1
		ack = StatusMRAddressAck
	}
	b.regs.SetData(sla)
	b.regs.SetControl(TWINT | TWEN)
	if err := b.wait("address"); err != nil {
		return err
	}
	if s := b.status(); s != ack {
		return b.fail("address", s, classify(s, ErrAddressNack))
	}
	return nil
}

// Transmit sends one byte and requires the device to acknowledge it.
func (b *Bus) Transmit(c byte) error {
	if !b.open {
		return &Error{Op: "transmit", Status: b.status(), Err: ErrBusy}
	}

	b.regs.SetData(c)
	b.regs.SetControl(TWINT | TWEN)
	if err := b.wait("transmit"); err != nil {
		return err
	}
	if s := b.status(); s != StatusMTDataAck {
		return b.fail("transmit", s, classify(s, ErrDataNack))
	}
	return nil
}

// Receive clocks in one byte. If ack is true the device is told to keep sending;
// the last byte of a read must be received with ack set to false.
func (b *Bus) Receive(ack bool) (byte, error) {
	if !b.open {
		return 0, &Error{Op: "receive", Status: b.status(), Err: ErrBusy}
	}

	// TWEA has to be set before the transfer is triggered: it is the bit sent back to
	// the device once the byte has been clocked in.
	ctl := uint8(TWINT | TWEN)
	want := uint8(StatusMRDataNack)
	if ack {
		ctl |= TWEA
		want = StatusMRDataAck
	}
	b.regs.SetControl(ctl)
	if err := b.wait("receive"); err != nil {
		return 0, err
	}
	if s := b.status(); s != want {
		return 0, b.fail("receive", s, classify(s, ErrDataNack))
	}
	return b.regs.Data(), nil
}

// Stop generates a STOP condition and waits for the hardware to release the bus.
// The bus is considered idle afterwards even if the wait timed out.
func (b *Bus) Stop() error {
	b.open = false
	b.regs.SetControl(TWINT | TWEN | TWSTO)
	for i := 0; i < b.timeout; i++ {
		if b.regs.Control()&TWSTO == 0 {
			return nil
		}
	}
	return &Error{Op: "stop", Status: b.status(), Err: ErrTimeout}
}

// Tx performs a write-then-read transaction with a repeated start between the two phases.
// Either phase may be empty. It implements drivers.I2C.
func (b *Bus) Tx(addr uint16, w, r []byte) error {
	if addr > MaxAddress {
		return &Error{Op: "tx", Status: b.status(), Err: ErrAddress}
	}
	if len(w) > 0 || len(r) == 0 {
		if err := b.Start(uint8(addr), false); err != nil {
			return err
		}
		for _, c := range w {
			if err := b.Transmit(c); err != nil {
				return err
			}
		}
	}
	if len(r) > 0 {
		if err := b.Start(uint8(addr), true); err != nil {
			return err
		}
		for i := range r {
			c, err := b.Receive(i < len(r)-1)
			if err != nil {
				return err
			}
			r[i] = c
		}
	}
	return b.Stop()
}

// ReadRegister reads len(buf) bytes starting at register r. It implements drivers.I2C.
func (b *Bus) ReadRegister(addr uint8, r uint8, buf []byte) error {
	return b.Tx(uint16(addr), []byte{r}, buf)
}

// WriteRegister writes buf starting at register r. It implements drivers.I2C.
func (b *Bus) WriteRegister(addr uint8, r uint8, buf []byte) error {
	w := make([]byte, len(buf)+1)
	w[0] = r
	copy(w[1:], buf)
	return b.Tx(uint16(addr), w, nil)
}

func (b *Bus) status() uint8 {
	return b.regs.Status() & StatusMask
}

// wait polls for TWINT. On timeout the bus is released.
func (b *Bus) wait(op string) error {
	for i := 0; i < b.timeout; i++ {
		if b.regs.Control()&TWINT != 0 {
			return nil
		}
	}
	return b.fail(op, b.status(), ErrTimeout)
}

func (b *Bus) fail(op string, status uint8, kind error) error {
	// the original error is more useful than a stop timeout on top of it
	_ = b.Stop()
	return &Error{Op: op, Status: status, Err: kind}
}

func classify(status uint8, fallback error) error {
	if status == StatusArbitrationLost {
		return ErrArbitrationLost
	}
	return fallback
}
