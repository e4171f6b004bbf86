// Package pcf8574 reads buttons wired to a PCF8574 I2C GPIO expander, so the clock's
// minute button can sit on the same two-wire bus as the RTC.
//
// Each expander pin is either high with a weak pullup or sinking current. An input is a
// pin left high that a closed contact pulls low, which is exactly how an active-low
// button reads.
//
// Datasheet: https://cdn-learn.adafruit.com/assets/assets/000/113/910/original/pcf8574.pdf
package pcf8574

import (
	"tinygo.org/x/drivers"
)

const DefaultAddress = 0x20

type Device struct {
	bus  drivers.I2C
	addr uint16
	// current state of pins as we've defined them
	state uint8
}

type Config struct {
	Address uint8
}

type Report uint8

// New creates a new driver on the specified preconfigured I2C bus. The datasheet claims a
// maximum speed of 100 kHz.
func New(bus drivers.I2C) *Device {
	return &Device{
		bus: bus,
		// everything is an input until told otherwise
		state: 0xFF,
	}
}

// Configure sets the address and releases every pin so it can be used as an input.
func (d *Device) Configure(c Config) error {
	if c.Address == 0 {
		c.Address = DefaultAddress
	}

	d.addr = uint16(c.Address)
	return d.SetAll(0xFF)
}

// SetAll configures all pins at once based on their bit in state: true to activate the
// weak pullup resistor, false to sink current.
func (d *Device) SetAll(state uint8) error {
	d.state = state
	buf := [1]byte{d.state}
	return d.bus.Tx(d.addr, buf[:], nil)
}

// Read reads the level of every pin.
func (d *Device) Read() (Report, error) {
	var buf [1]byte
	// the chip doesn't have any registers and just returns the data directly when read
	err := d.bus.Tx(d.addr, nil, buf[:])
	return Report(buf[0]), err
}

// Pin reports whether the specified pin is high.
func (r Report) Pin(p uint8) bool {
	return r&(1<<p) > 0
}

// Input returns pin p as a level input.
func (d *Device) Input(p uint8) *Input {
	return &Input{dev: d, pin: p}
}

// Input is one expander pin read as a digital input. It satisfies clock.Button.
type Input struct {
	dev *Device
	pin uint8
	err error
}

// Get returns the level of the pin. A failed read returns high, the released state of an
// active-low button, so a bus error never registers as a press.
func (in *Input) Get() bool {
	var r Report
	r, in.err = in.dev.Read()
	if in.err != nil {
		return true
	}
	return r.Pin(in.pin)
}

// Err returns the error of the last Get.
func (in *Input) Err() error {
	return in.err
}
