package display

import "errors"

// MinRefreshRate is the slowest full refresh, in Hz, at which the display still appears
// steady.
const MinRefreshRate = 60

var (
	ErrFlicker   = errors.New("display: refresh rate too low")
	ErrPrescaler = errors.New("display: prescaler not supported by timer")
)

// Timing describes the 8-bit overflow timer driving Tick.
type Timing struct {
	CPUFrequency uint32
	Prescaler    uint32
}

// TickRate is the number of Tick calls per second.
func (t Timing) TickRate() uint32 {
	if t.Prescaler == 0 {
		return 0
	}
	return t.CPUFrequency / t.Prescaler / 256
}

// RefreshRate is the number of times per second every position is lit.
func (t Timing) RefreshRate() uint32 {
	return t.TickRate() / Positions
}

func (t Timing) Validate() error {
	if t.RefreshRate() < MinRefreshRate {
		return ErrFlicker
	}
	return nil
}
