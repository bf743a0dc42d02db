/*
Copyright 2024 Tim St. Pierre
HD44780 instruction set and PCF8574 backpack pin layout
*/
package i2clcd

// Commands
const (
	CmdClearDisplay   byte = 0x01
	CmdReturnHome     byte = 0x02
	CmdEntryModeSet   byte = 0x04
	CmdDisplayControl byte = 0x08
	CmdCursorShift    byte = 0x10
	CmdFunctionSet    byte = 0x20
	CmdSetCGRAMAddr   byte = 0x40 // not sent by Dev; custom glyphs are left to callers
	CmdSetDDRAMAddr   byte = 0x80
)

// Flags for CmdEntryModeSet
const (
	EntryRight          byte = 0x00
	EntryLeft           byte = 0x02
	EntryShiftIncrement byte = 0x01
	EntryShiftDecrement byte = 0x00

	entryModeMask = EntryLeft | EntryShiftIncrement
)

// Flags for CmdDisplayControl
const (
	DisplayOn  byte = 0x04
	DisplayOff byte = 0x00
	CursorOn   byte = 0x02
	CursorOff  byte = 0x00
	BlinkOn    byte = 0x01
	BlinkOff   byte = 0x00

	displayControlMask = DisplayOn | CursorOn | BlinkOn
)

// Flags for CmdCursorShift
const (
	DisplayMove byte = 0x08
	CursorMove  byte = 0x00
	MoveRight   byte = 0x04
	MoveLeft    byte = 0x00
)

// Flags for CmdFunctionSet
const (
	EightBitMode byte = 0x10
	FourBitMode  byte = 0x00
	TwoLine      byte = 0x08
	OneLine      byte = 0x00
	Dots5x10     byte = 0x04
	Dots5x8      byte = 0x00

	functionSetMask = EightBitMode | TwoLine | Dots5x10
)

// Flags for the backlight output of the expander
const (
	Backlight   byte = 0x08
	NoBacklight byte = 0x00
)

// Expander pins. D4-D7 carry the nibble, the others are control lines.
const (
	RS        = 0
	RW        = 1
	EN        = 2
	BACKLIGHT = 3
	D4        = 4
	D5        = 5
	D6        = 6
	D7        = 7
)

// Register select values, merged into every byte sent.
const (
	modeCommand byte = 0x00
	modeData    byte = 1 << RS
)

// DDRAM base address of each row.
var rowOffsets = [4]byte{0x00, 0x40, 0x14, 0x54}

// Legacy 8-bit function set sequences that put the controller into 4-bit
// mode. Each byte is sent as two nibbles like any other command.
const (
	initSequence1 byte = 0x33
	initSequence2 byte = 0x32
)
