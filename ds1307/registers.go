package ds1307

const (
	Address = 0x68 // I2C address for DS1307
	Seconds = 0x00 // Seconds, bit 7 halts the oscillator
	Minutes = 0x01 // Minutes
	Hours   = 0x02 // Hours, bit 6 selects 12-hour mode
	Weekday = 0x03 // Day of week, 1-7
	Date    = 0x04 // Day of month
	Month   = 0x05 // Month
	Year    = 0x06 // Year within the century
	Control = 0x07 // Square wave output control
	RAM     = 0x08 // Start of the 56 bytes of battery-backed RAM
)

const (
	ClockHalt  = 1 << 7 // in Seconds
	Mode12Hour = 1 << 6 // in Hours
	PM         = 1 << 5 // in Hours, 12-hour mode only
)
