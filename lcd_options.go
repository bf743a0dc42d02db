/*
Copyright 2024 Tim St. Pierre
Options for HD44780 character displays behind an I²C backpack
*/
package i2clcd

import (
	"errors"
	"fmt"
)

// ErrInvalidOpts is returned by the constructors when Opts describe a display
// the driver cannot address.
var ErrInvalidOpts = errors.New("i2clcd: invalid options")

// Font selects the character matrix height.
type Font uint8

const (
	Font5x8 Font = iota
	// Font5x10 is only honored on single line displays.
	Font5x10
)

func (f Font) String() string {
	switch f {
	case Font5x8:
		return "5x8"
	case Font5x10:
		return "5x10"
	}
	return fmt.Sprintf("Font(%d)", uint8(f))
}

// ParseFont converts "5x8" or "5x10" to a Font.
func ParseFont(s string) (Font, error) {
	switch s {
	case "", "5x8":
		return Font5x8, nil
	case "5x10":
		return Font5x10, nil
	}
	return 0, fmt.Errorf("%w: unknown font %q", ErrInvalidOpts, s)
}

type Opts struct {
	// The I²C slave address. Zero selects DefaultAddress.
	I2CAddr uint16
	// How many lines does the display have, 1 to 4.
	Lines uint8
	Cols  uint8
	Font  Font
}

// DefaultAddress is the factory address of most PCF8574 backpacks.
const DefaultAddress uint16 = 0x27

var DefaultOpts = Opts{
	I2CAddr: DefaultAddress,
	Lines:   2,
	Cols:    16,
	Font:    Font5x8,
}

func (o *Opts) i2cAddr() (uint16, error) {
	switch {
	case o.I2CAddr == 0:
		return DefaultAddress, nil
	case o.I2CAddr > 0x7f:
		return 0, fmt.Errorf("%w: address 0x%x is not a 7-bit address", ErrInvalidOpts, o.I2CAddr)
	}
	return o.I2CAddr, nil
}

func (o *Opts) validate() error {
	if o.Cols == 0 {
		return fmt.Errorf("%w: display needs at least one column", ErrInvalidOpts)
	}
	if o.Lines == 0 || int(o.Lines) > len(rowOffsets) {
		return fmt.Errorf("%w: %d lines not supported, want 1 to %d", ErrInvalidOpts, o.Lines, len(rowOffsets))
	}
	if o.Font != Font5x8 && o.Font != Font5x10 {
		return fmt.Errorf("%w: unknown font %v", ErrInvalidOpts, o.Font)
	}
	return nil
}

// function returns the function set flags for the configured geometry.
func (o *Opts) function() byte {
	f := FourBitMode | Dots5x8 | OneLine
	if o.Lines > 1 {
		f |= TwoLine
	}
	// 5x10 is only available in one line mode
	if o.Font == Font5x10 && o.Lines == 1 {
		f |= Dots5x10
	}
	return f & functionSetMask
}
