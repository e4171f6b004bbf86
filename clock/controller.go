// Package clock implements the foreground loop of a four digit RTC clock: it reads the
// time from the RTC, applies the minute button, writes the time back when it changed and
// publishes the digits for the display refresh.
package clock

import (
	"context"
	"fmt"
	"time"

	"github.com/ajanata/segclock/display"
	"github.com/ajanata/segclock/ds1307"
	"github.com/ajanata/segclock/segment"
)

const (
	MinutesPerHour = 60
	// HoursPerDay is where the hour counter rolls over: hours run 0-23 and 24 is never
	// shown.
	HoursPerDay = 24

	// DefaultLoopDelay sets the loop rate, which is also the only debouncing the button
	// gets. Holding the button advances the time by one minute per iteration.
	DefaultLoopDelay = 25 * time.Millisecond
)

// RTC is the time-keeping device. *ds1307.Device satisfies it.
//
// Minutes and hours are always transferred together: the device latches its time
// registers at the start of a transaction, so separate transfers could pair the minutes
// of one hour with the next.
type RTC interface {
	ReadRegisters(reg uint8, buf []byte) error
	WriteRegisters(reg uint8, buf []byte) error
	// Configure puts the device in 24-hour mode with its oscillator running, keeping
	// the time it holds.
	Configure() error
}

// Button is the minute button. It is active low: Get returns false while pressed.
// machine.Pin satisfies it.
type Button interface {
	Get() bool
}

type logger interface {
	Println(string) error
}

// Log receives loop errors when set.
var Log logger

func l(msg string) {
	if Log != nil {
		Log.Println(msg)
	}
}

type Config struct {
	LoopDelay time.Duration
}

type Controller struct {
	rtc    RTC
	button Button
	buf    *display.Buffer
	delay  time.Duration
	sleep  func(time.Duration)
}

func New(rtc RTC, button Button, buf *display.Buffer) *Controller {
	return &Controller{
		rtc:    rtc,
		button: button,
		buf:    buf,
		delay:  DefaultLoopDelay,
		sleep:  time.Sleep,
	}
}

func (c *Controller) Configure(cfg Config) {
	if cfg.LoopDelay <= 0 {
		cfg.LoopDelay = DefaultLoopDelay
	}
	c.delay = cfg.LoopDelay
}

// Init performs the one-time RTC adjustment.
func (c *Controller) Init() error {
	if err := c.rtc.Configure(); err != nil {
		return fmt.Errorf("could not configure RTC: %w", err)
	}
	return nil
}

// Step runs one iteration of the loop. On error the display shows dashes until a later
// iteration succeeds.
func (c *Controller) Step() error {
	h, m, err := c.read()
	if err != nil {
		c.showError()
		return err
	}

	if !c.button.Get() {
		h, m = Increment(h, m)
		err = c.write(h, m)
		if err != nil {
			c.showError()
			return err
		}
	}

	return c.publish(h, m)
}

// Run calls Init, then Step every loop delay until ctx is done. Errors are logged and
// the loop carries on; Init is retried before each step until it succeeds once.
func (c *Controller) Run(ctx context.Context) error {
	configured := false
	for ctx.Err() == nil {
		if !configured {
			err := c.Init()
			if err != nil {
				l(err.Error())
			}
			configured = err == nil
		}
		if err := c.Step(); err != nil {
			l(err.Error())
		}
		c.sleep(c.delay)
	}
	return ctx.Err()
}

// Increment advances the time by one minute.
func Increment(hours, minutes int) (int, int) {
	minutes++
	if minutes >= MinutesPerHour {
		minutes = 0
		hours++
	}
	if hours >= HoursPerDay {
		hours = 0
	}
	return hours, minutes
}

// Digits splits the time into the four display positions.
func Digits(hours, minutes int) ([display.Positions]segment.Digit, error) {
	var out [display.Positions]segment.Digit
	for i, v := range [display.Positions]int{hours / 10, hours % 10, minutes / 10, minutes % 10} {
		d, err := segment.FromValue(v)
		if err != nil {
			return out, fmt.Errorf("could not display %02d:%02d: %w", hours, minutes, err)
		}
		out[i] = d
	}
	return out, nil
}

func (c *Controller) read() (int, int, error) {
	var buf [2]byte
	err := c.rtc.ReadRegisters(ds1307.Minutes, buf[:])
	if err != nil {
		return 0, 0, fmt.Errorf("could not read time: %w", err)
	}
	m, err := ds1307.DecodeBCD(buf[0])
	if err != nil {
		return 0, 0, fmt.Errorf("could not decode minutes 0x%02x: %w", buf[0], err)
	}
	h, err := ds1307.DecodeBCD(buf[1])
	if err != nil {
		return 0, 0, fmt.Errorf("could not decode hours 0x%02x: %w", buf[1], err)
	}
	return h, m, nil
}

func (c *Controller) write(h, m int) error {
	var buf [2]byte
	var err error
	buf[0], err = ds1307.EncodeBCD(m)
	if err != nil {
		return err
	}
	buf[1], err = ds1307.EncodeBCD(h)
	if err != nil {
		return err
	}
	err = c.rtc.WriteRegisters(ds1307.Minutes, buf[:])
	if err != nil {
		return fmt.Errorf("could not write time: %w", err)
	}
	return nil
}

func (c *Controller) publish(h, m int) error {
	digits, err := Digits(h, m)
	if err != nil {
		c.showError()
		return err
	}
	return c.buf.Publish(digits)
}

func (c *Controller) showError() {
	_ = c.buf.Publish([display.Positions]segment.Digit{
		segment.Dash, segment.Dash, segment.Dash, segment.Dash,
	})
}
