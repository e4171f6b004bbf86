package twi

import (
	"errors"
	"strconv"
)

// Error kinds. Every error returned by a Bus wraps exactly one of these and can be
// matched with errors.Is.
var (
	ErrStart           = errors.New("twi: start condition not generated")
	ErrAddressNack     = errors.New("twi: address not acknowledged")
	ErrDataNack        = errors.New("twi: data not acknowledged")
	ErrArbitrationLost = errors.New("twi: arbitration lost")
	ErrTimeout         = errors.New("twi: timeout waiting for bus")
	ErrBusy            = errors.New("twi: no transaction in progress")
	ErrFrequency       = errors.New("twi: bus frequency out of range")
	ErrAddress         = errors.New("twi: address out of 7-bit range")
)

// Error is returned when a bus operation fails. Status holds the masked TWSR value
// observed when the failure was detected.
type Error struct {
	Op     string
	Status uint8
	Err    error
}

func (e *Error) Error() string {
	return e.Op + ": " + e.Err.Error() + " (status 0x" + strconv.FormatUint(uint64(e.Status), 16) + ")"
}

func (e *Error) Unwrap() error {
	return e.Err
}
