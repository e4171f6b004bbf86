// Package ds1307 implements a driver for the DS1307 Real-Time Clock (RTC) and compatible
// chips, talking to the device through the individual phases of a two-wire bus
// transaction. Register reads set the register pointer in a write phase and switch to a
// read phase with a repeated start, without releasing the bus in between.
//
// Datasheet: https://www.analog.com/media/en/technical-documentation/data-sheets/DS1307.pdf
package ds1307

import (
	"errors"
	"fmt"
	"time"
)

// Master is the bus master the device is attached to. *twi.Bus satisfies it.
//
// Any method that returns an error must have released the bus already.
type Master interface {
	Start(addr uint8, read bool) error
	Transmit(c byte) error
	Receive(ack bool) (byte, error)
	Stop() error
}

type Device struct {
	bus     Master
	Address uint8
}

var errYearOutOfRange = errors.New("ds1307: year out of range")

func New(bus Master) Device {
	return Device{
		bus:     bus,
		Address: Address,
	}
}

// WriteRegister stores value in register reg.
func (d *Device) WriteRegister(reg, value uint8) error {
	buf := [1]byte{value}
	return d.WriteRegisters(reg, buf[:])
}

// WriteRegisters stores buf in consecutive registers starting at reg.
func (d *Device) WriteRegisters(reg uint8, buf []byte) error {
	if err := d.bus.Start(d.Address, false); err != nil {
		return fmt.Errorf("could not address RTC for writing: %w", err)
	}
	if err := d.bus.Transmit(reg); err != nil {
		return fmt.Errorf("could not select register 0x%02x: %w", reg, err)
	}
	for i, c := range buf {
		if err := d.bus.Transmit(c); err != nil {
			return fmt.Errorf("could not write register 0x%02x: %w", int(reg)+i, err)
		}
	}
	return d.bus.Stop()
}

// ReadRegister returns the content of register reg.
func (d *Device) ReadRegister(reg uint8) (uint8, error) {
	buf := [1]byte{}
	err := d.ReadRegisters(reg, buf[:])
	return buf[0], err
}

// ReadRegisters fills buf from consecutive registers starting at reg. Every byte but the
// last is acknowledged so the device keeps sending.
func (d *Device) ReadRegisters(reg uint8, buf []byte) error {
	if len(buf) == 0 {
		return nil
	}
	if err := d.bus.Start(d.Address, false); err != nil {
		return fmt.Errorf("could not address RTC for reading: %w", err)
	}
	if err := d.bus.Transmit(reg); err != nil {
		return fmt.Errorf("could not select register 0x%02x: %w", reg, err)
	}
	// repeated start: the register pointer only survives if the bus is not released
	if err := d.bus.Start(d.Address, true); err != nil {
		return fmt.Errorf("could not restart RTC read: %w", err)
	}
	for i := range buf {
		c, err := d.bus.Receive(i < len(buf)-1)
		if err != nil {
			return fmt.Errorf("could not read register 0x%02x: %w", int(reg)+i, err)
		}
		buf[i] = c
	}
	return d.bus.Stop()
}

// Configure makes sure the oscillator is running and the clock counts in 24-hour mode,
// without changing the time it holds. A clock in 12-hour mode has its hours converted.
// Registers are only written when they need to change.
func (d *Device) Configure() error {
	sec, err := d.ReadRegister(Seconds)
	if err != nil {
		return err
	}
	if sec&ClockHalt != 0 {
		err = d.WriteRegister(Seconds, sec&^ClockHalt)
		if err != nil {
			return err
		}
	}

	hours, err := d.ReadRegister(Hours)
	if err != nil {
		return err
	}
	if hours&Mode12Hour != 0 {
		err = d.WriteRegister(Hours, decToBcd(hoursBCDToInt(hours)))
		if err != nil {
			return err
		}
	}
	return nil
}

// Running reports whether the oscillator is enabled.
func (d *Device) Running() (bool, error) {
	sec, err := d.ReadRegister(Seconds)
	if err != nil {
		return false, err
	}
	return sec&ClockHalt == 0, nil
}

// Set stores t, which must be within the 21st century, and starts the oscillator in
// 24-hour mode.
func (d *Device) Set(t time.Time) error {
	if t.Year() < 2000 || t.Year() >= 2100 {
		return errYearOutOfRange
	}
	buf := []byte{
		decToBcd(t.Second()),
		decToBcd(t.Minute()),
		decToBcd(t.Hour()),
		decToBcd(int(t.Weekday()) + 1),
		decToBcd(t.Day()),
		decToBcd(int(t.Month())),
		decToBcd(t.Year() - 2000),
	}
	return d.WriteRegisters(Seconds, buf)
}

// Now reads the full date and time in a single transaction.
func (d *Device) Now() (time.Time, error) {
	buf := [7]byte{}
	err := d.ReadRegisters(Seconds, buf[:])
	if err != nil {
		return time.Time{}, err
	}

	seconds := bcdToDec(buf[0] & 0x7F)
	minute := bcdToDec(buf[1] & 0x7F)
	hour := hoursBCDToInt(buf[2])
	// we don't need to read the weekday
	day := bcdToDec(buf[4] & 0x3F)
	month := time.Month(bcdToDec(buf[5] & 0x1F))
	year := bcdToDec(buf[6]) + 2000

	return time.Date(year, month, day, hour, minute, seconds, 0, time.UTC), nil
}

// hoursBCDToInt converts the hours register to 0-23 in either mode.
func hoursBCDToInt(value uint8) int {
	if value&Mode12Hour == 0 {
		return bcdToDec(value & 0x3F)
	}
	hour := bcdToDec(value&0x1F) % 12
	if value&PM != 0 {
		hour += 12
	}
	return hour
}
