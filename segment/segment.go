// Package segment maps digits to 7-segment illumination patterns.
//
// Segments are lettered clockwise from the top (A) with G in the middle:
//
//	 -A-
//	F   B
//	 -G-
//	E   C
//	 -D-  .DP
package segment

import "errors"

// Pattern has one bit per segment, set to light it.
type Pattern uint8

const (
	A Pattern = 1 << iota
	B
	C
	D
	E
	F
	G
	DP
)

// Digit is a displayable glyph: 0-9, the hexadecimal letters a-f, and the Dash and Blank
// sentinels. Values at or above numDigits are invalid.
type Digit uint8

const (
	Digit0 Digit = iota
	Digit1
	Digit2
	Digit3
	Digit4
	Digit5
	Digit6
	Digit7
	Digit8
	Digit9
	DigitA
	DigitB
	DigitC
	DigitD
	DigitE
	DigitF
	Dash
	Blank

	numDigits
)

var ErrInvalidDigit = errors.New("segment: invalid digit")

var font = [numDigits]Pattern{
	Digit0: A | B | C | D | E | F,
	Digit1: B | C,
	Digit2: A | B | D | E | G,
	Digit3: A | B | C | D | G,
	Digit4: B | C | F | G,
	Digit5: A | C | D | F | G,
	Digit6: A | C | D | E | F | G,
	Digit7: A | B | C,
	Digit8: A | B | C | D | E | F | G,
	Digit9: A | B | C | D | F | G,
	DigitA: A | B | C | E | F | G,
	DigitB: C | D | E | F | G,
	DigitC: D | E | G,
	DigitD: B | C | D | E | G,
	DigitE: A | D | E | F | G,
	DigitF: A | E | F | G,
	Dash:   G,
	Blank:  0,
}

// FromValue returns the digit for a value in 0-15.
func FromValue(v int) (Digit, error) {
	if v < 0 || v > int(DigitF) {
		return Blank, ErrInvalidDigit
	}
	return Digit(v), nil
}

// Valid reports whether d is a member of the digit set.
func (d Digit) Valid() bool {
	return d < numDigits
}

func (d Digit) String() string {
	switch {
	case d <= Digit9:
		return string(rune('0' + d))
	case d <= DigitF:
		return string(rune('a' + d - DigitA))
	case d == Dash:
		return "-"
	case d == Blank:
		return " "
	}
	return "?"
}

// Render returns the segments lighting d. The decimal point is always off; callers set
// it separately.
func Render(d Digit) (Pattern, error) {
	if !d.Valid() {
		return 0, ErrInvalidDigit
	}
	return font[d] &^ DP, nil
}
