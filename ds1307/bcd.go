package ds1307

import "errors"

var (
	ErrInvalidBCD = errors.New("ds1307: invalid BCD value")
	ErrRange      = errors.New("ds1307: value out of BCD range")
)

// DecodeBCD converts a time-of-day register to binary. Only three bits of tens are
// significant, which covers seconds, minutes and 24-hour hours; the bits above them are
// flags and are ignored.
func DecodeBCD(b uint8) (int, error) {
	units := b & 0x0F
	if units > 9 {
		return 0, ErrInvalidBCD
	}
	return int(units) + int((b>>4)&0x07)*10, nil
}

// EncodeBCD is the inverse of DecodeBCD.
func EncodeBCD(v int) (uint8, error) {
	if v < 0 || v > 79 {
		return 0, ErrRange
	}
	return uint8(v%10) | uint8(v/10)<<4, nil
}

// decToBcd converts int to BCD
func decToBcd(dec int) uint8 {
	return uint8(dec + 6*(dec/10))
}

// bcdToDec converts BCD to int
func bcdToDec(bcd uint8) int {
	return int(bcd - 6*(bcd>>4))
}
