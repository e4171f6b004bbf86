package clock

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"

	"github.com/ajanata/segclock/display"
	"github.com/ajanata/segclock/ds1307"
	"github.com/ajanata/segclock/segment"
	"github.com/ajanata/segclock/twi"
	"github.com/ajanata/segclock/twi/twitest"
)

type button bool

// Get reports the line level: high while released.
func (b *button) Get() bool { return !bool(*b) }

type logRecorder struct {
	msgs []string
}

func (w *logRecorder) Println(s string) error {
	w.msgs = append(w.msgs, s)
	return nil
}

func newClock(c *qt.C) (*Controller, *twitest.Peripheral, *button, *display.Buffer) {
	p := twitest.New(ds1307.Address)
	bus := twi.New(p)
	c.Assert(bus.Configure(twi.Config{Timeout: 100}), qt.IsNil)
	rtc := ds1307.New(bus)

	btn := new(button)
	buf := display.NewBuffer()
	return New(&rtc, btn, buf), p, btn, buf
}

func digits(ds ...segment.Digit) [display.Positions]segment.Digit {
	var out [display.Positions]segment.Digit
	copy(out[:], ds)
	return out
}

func TestButtonIncrement(t *testing.T) {
	c := qt.New(t)
	ctl, p, btn, buf := newClock(c)
	p.Mem[ds1307.Minutes] = 0x59
	p.Mem[ds1307.Hours] = 0x13

	*btn = true
	p.Log = nil
	c.Assert(ctl.Step(), qt.IsNil)

	c.Assert(p.Mem[ds1307.Minutes], qt.Equals, uint8(0x00))
	c.Assert(p.Mem[ds1307.Hours], qt.Equals, uint8(0x14))
	c.Assert(buf.Snapshot(), qt.Equals, digits(segment.Digit1, segment.Digit4, segment.Digit0, segment.Digit0))
	c.Assert(strings.Join(p.Log, ","), qt.Equals, strings.Join([]string{
		"START", "SLA+W 0x68", "W 0x01", "RESTART", "SLA+R 0x68", "R 0x59 ACK", "R 0x13 NACK", "STOP",
		"START", "SLA+W 0x68", "W 0x01", "W 0x00", "W 0x14", "STOP",
	}, ","))
}

func TestNoButtonNoWrite(t *testing.T) {
	c := qt.New(t)
	ctl, p, _, buf := newClock(c)
	p.Mem[ds1307.Minutes] = 0x07
	p.Mem[ds1307.Hours] = 0x09

	c.Assert(ctl.Step(), qt.IsNil)
	c.Assert(p.Starts, qt.Equals, 1)
	c.Assert(p.Mem[ds1307.Minutes], qt.Equals, uint8(0x07))
	c.Assert(buf.Snapshot(), qt.Equals, digits(segment.Digit0, segment.Digit9, segment.Digit0, segment.Digit7))
}

func TestIncrement(t *testing.T) {
	c := qt.New(t)
	for _, tc := range []struct {
		h, m         int
		wantH, wantM int
	}{
		{0, 0, 0, 1},
		{13, 59, 14, 0},
		{22, 59, 23, 0},
		// rollover happens at HoursPerDay, 24 is never reached
		{23, 59, 0, 0},
		{23, 58, 23, 59},
		// out of range values left in the RTC are brought back in range
		{24, 10, 0, 11},
	} {
		h, m := Increment(tc.h, tc.m)
		c.Check([2]int{h, m}, qt.Equals, [2]int{tc.wantH, tc.wantM},
			qt.Commentf("%02d:%02d", tc.h, tc.m))
	}
	c.Assert(HoursPerDay, qt.Equals, 24)
}

func TestIncrementStaysInRange(t *testing.T) {
	c := qt.New(t)
	h, m := 0, 0
	for i := 0; i < 2*HoursPerDay*MinutesPerHour; i++ {
		h, m = Increment(h, m)
		c.Assert(h < HoursPerDay && m < MinutesPerHour, qt.IsTrue)
	}
	c.Assert([2]int{h, m}, qt.Equals, [2]int{0, 0})
}

func TestDigits(t *testing.T) {
	c := qt.New(t)
	for h := 0; h < HoursPerDay; h++ {
		for m := 0; m < MinutesPerHour; m++ {
			got, err := Digits(h, m)
			c.Assert(err, qt.IsNil)
			want := [display.Positions]int{h / 10, h % 10, m / 10, m % 10}
			for i := range got {
				c.Assert(int(got[i]), qt.Equals, want[i])
				c.Assert(got[i] <= segment.Digit9, qt.IsTrue)
			}
		}
	}
}

func TestRoundTripThroughRTC(t *testing.T) {
	c := qt.New(t)
	ctl, p, btn, buf := newClock(c)
	*btn = true

	p.Mem[ds1307.Minutes] = 0x58
	p.Mem[ds1307.Hours] = 0x23
	c.Assert(ctl.Step(), qt.IsNil)
	c.Assert(buf.Snapshot(), qt.Equals, digits(segment.Digit2, segment.Digit3, segment.Digit5, segment.Digit9))
	c.Assert(ctl.Step(), qt.IsNil)
	c.Assert(buf.Snapshot(), qt.Equals, digits(segment.Digit0, segment.Digit0, segment.Digit0, segment.Digit0))
	c.Assert(p.Mem[ds1307.Hours], qt.Equals, uint8(0x00))
}

func TestBusErrorShowsDashes(t *testing.T) {
	c := qt.New(t)
	ctl, p, _, buf := newClock(c)
	p.Mem[ds1307.Minutes] = 0x30
	p.Mem[ds1307.Hours] = 0x12
	c.Assert(ctl.Step(), qt.IsNil)

	p.NackAddress = true
	err := ctl.Step()
	c.Assert(err, qt.ErrorIs, twi.ErrAddressNack)
	c.Assert(err, qt.ErrorMatches, "could not read time: .*")
	c.Assert(p.Idle(), qt.IsTrue)
	dash := digits(segment.Dash, segment.Dash, segment.Dash, segment.Dash)
	c.Assert(buf.Snapshot(), qt.Equals, dash)

	// the display recovers with the next good read
	p.NackAddress = false
	c.Assert(ctl.Step(), qt.IsNil)
	c.Assert(buf.Snapshot(), qt.Equals, digits(segment.Digit1, segment.Digit2, segment.Digit3, segment.Digit0))
}

func TestWriteErrorKeepsRTC(t *testing.T) {
	c := qt.New(t)
	ctl, p, btn, buf := newClock(c)
	p.Mem[ds1307.Minutes] = 0x30
	p.Mem[ds1307.Hours] = 0x12
	*btn = true

	rtc := &failingRTC{RTC: ctl.rtc, failWrite: true}
	ctl.rtc = rtc
	err := ctl.Step()
	c.Assert(err, qt.ErrorMatches, "could not write time: boom")
	c.Assert(p.Mem[ds1307.Minutes], qt.Equals, uint8(0x30))
	c.Assert(buf.Get(0), qt.Equals, segment.Dash)
}

func TestPressAcrossRollover(t *testing.T) {
	c := qt.New(t)
	ctl, p, btn, buf := newClock(c)
	p.Mem[ds1307.Minutes] = 0x59
	p.Mem[ds1307.Hours] = 0x13
	*btn = true
	ctl.rtc = &rollingRTC{RTC: ctl.rtc, p: p}

	c.Assert(ctl.Step(), qt.IsNil)
	// 13:59 plus one minute, never 14:59 or 15:00
	c.Assert(p.Mem[ds1307.Minutes], qt.Equals, uint8(0x00))
	c.Assert(p.Mem[ds1307.Hours], qt.Equals, uint8(0x14))
	c.Assert(buf.Snapshot(), qt.Equals, digits(segment.Digit1, segment.Digit4, segment.Digit0, segment.Digit0))
	// one read and one write
	c.Assert(p.Starts, qt.Equals, 2)
}

func TestInvalidBCD(t *testing.T) {
	c := qt.New(t)
	ctl, p, _, buf := newClock(c)
	p.Mem[ds1307.Minutes] = 0x3C

	err := ctl.Step()
	c.Assert(err, qt.ErrorIs, ds1307.ErrInvalidBCD)
	c.Assert(buf.Get(3), qt.Equals, segment.Dash)
}

func TestInit(t *testing.T) {
	c := qt.New(t)
	ctl, p, _, _ := newClock(c)
	p.Mem[ds1307.Seconds] = 0x80 | 0x17
	p.Mem[ds1307.Hours] = 0x40 | 0x20 | 0x02

	c.Assert(ctl.Init(), qt.IsNil)
	c.Assert(p.Mem[ds1307.Seconds], qt.Equals, uint8(0x17))
	c.Assert(p.Mem[ds1307.Hours], qt.Equals, uint8(0x14))
}

func TestRun(t *testing.T) {
	c := qt.New(t)
	ctl, p, btn, buf := newClock(c)
	p.Mem[ds1307.Seconds] = 0x80
	p.NackAddress = true
	*btn = true

	log := &logRecorder{}
	Log = log
	defer func() { Log = nil }()

	ctl.Configure(Config{LoopDelay: time.Second})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var (
		n      int
		delays []time.Duration
	)
	ctl.sleep = func(d time.Duration) {
		delays = append(delays, d)
		n++
		switch n {
		case 1:
			// the device shows up after the first iteration
			p.NackAddress = false
		case 3:
			cancel()
		}
	}

	c.Assert(ctl.Run(ctx), qt.Equals, context.Canceled)
	c.Assert(delays, qt.DeepEquals, []time.Duration{time.Second, time.Second, time.Second})
	c.Assert(log.msgs, qt.HasLen, 2)
	c.Assert(log.msgs[0], qt.Matches, "could not configure RTC: .*")

	// init retried and succeeded, then two presses
	c.Assert(p.Mem[ds1307.Seconds], qt.Equals, uint8(0x00))
	c.Assert(p.Mem[ds1307.Minutes], qt.Equals, uint8(0x02))
	c.Assert(buf.Snapshot(), qt.Equals, digits(segment.Digit0, segment.Digit0, segment.Digit0, segment.Digit2))
}

func TestConfigureDefaults(t *testing.T) {
	c := qt.New(t)
	ctl, _, _, _ := newClock(c)
	ctl.Configure(Config{})
	c.Assert(ctl.delay, qt.Equals, DefaultLoopDelay)
}

type failingRTC struct {
	RTC
	failWrite bool
}

func (f *failingRTC) WriteRegisters(reg uint8, buf []byte) error {
	if f.failWrite {
		return errors.New("boom")
	}
	return f.RTC.WriteRegisters(reg, buf)
}

// rollingRTC moves the device to the next hour after every read, the way the clock
// rolls over while the controller is between transactions.
type rollingRTC struct {
	RTC
	p *twitest.Peripheral
}

func (r *rollingRTC) ReadRegisters(reg uint8, buf []byte) error {
	err := r.RTC.ReadRegisters(reg, buf)
	r.p.Mem[ds1307.Minutes] = 0x00
	r.p.Mem[ds1307.Hours] = 0x14
	return err
}
