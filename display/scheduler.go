// Package display multiplexes a four digit 7-segment display from a periodic timer
// interrupt.
//
// The foreground code writes digits into a Buffer. Scheduler.Tick is called from the timer
// interrupt and lights one position per call, cycling through all four. Tick never blocks
// and never touches the two-wire bus.
package display

import (
	"github.com/ajanata/segclock/segment"
)

// Lines drives the physical display. Select enables exactly one digit position; Drive
// sets the segment lines; Blank turns every segment off.
type Lines interface {
	Blank()
	Select(pos int)
	Drive(p segment.Pattern)
}

// DecimalPoint is the position that always shows its decimal point, separating hours
// from minutes.
const DecimalPoint = 1

// Scheduler owns the position cursor. It lives as long as the program.
type Scheduler struct {
	buf    *Buffer
	lines  Lines
	cursor int
}

func NewScheduler(buf *Buffer, lines Lines) *Scheduler {
	return &Scheduler{
		buf:   buf,
		lines: lines,
	}
}

// Cursor returns the position the next Tick will light.
func (s *Scheduler) Cursor() int {
	return s.cursor
}

// Tick lights the position under the cursor and advances it.
func (s *Scheduler) Tick() {
	// segments off first, or the previous digit ghosts onto the new position
	s.lines.Blank()
	s.lines.Select(s.cursor)

	p, err := segment.Render(s.buf.Get(s.cursor))
	if err != nil {
		p = 0
	}
	if s.cursor == DecimalPoint {
		p |= segment.DP
	}
	s.lines.Drive(p)

	s.cursor++
	if s.cursor >= Positions {
		s.cursor = 0
	}
}
