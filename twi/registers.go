package twi

// Registers is the status-register interface of a TWI peripheral, as found on the AVR
// family (TWCR, TWSR, TWDR, TWBR).
type Registers interface {
	Control() uint8
	SetControl(uint8)
	Status() uint8
	Data() uint8
	SetData(uint8)
	SetBitRate(uint8)
}

// TWCR bits.
const (
	TWINT = 1 << 7 // interrupt flag, set by hardware when an operation completes
	TWEA  = 1 << 6 // acknowledge the next received byte
	TWSTA = 1 << 5 // generate a START condition
	TWSTO = 1 << 4 // generate a STOP condition
	TWEN  = 1 << 2 // enable the peripheral
)

// StatusMask selects the status code bits of TWSR; the low bits hold the prescaler.
const StatusMask = 0xF8

// Status codes reported in TWSR for master transmitter and receiver modes.
const (
	StatusStart           = 0x08
	StatusRepeatedStart   = 0x10
	StatusMTAddressAck    = 0x18
	StatusMTAddressNack   = 0x20
	StatusMTDataAck       = 0x28
	StatusMTDataNack      = 0x30
	StatusArbitrationLost = 0x38
	StatusMRAddressAck    = 0x40
	StatusMRAddressNack   = 0x48
	StatusMRDataAck       = 0x50
	StatusMRDataNack      = 0x58
	StatusNoInfo          = 0xF8
	StatusBusError        = 0x00
)
