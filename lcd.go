/*
Copyright 2024 Tim St. Pierre
Controls an HD44780 character LCD display using a PCF8574 I2C backpack
Thanks to Dave Cheney for figuring out the registers!
*/
package i2clcd

import (
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/i2c"
)

// State is the content of the controller registers as last sent by Dev.
type State struct {
	Function  byte // CmdFunctionSet flags, fixed at construction
	Mode      byte // CmdEntryModeSet flags
	Control   byte // CmdDisplayControl flags
	Backlight byte // Backlight or NoBacklight
}

// Dev is a display driven in 4-bit mode through an I/O expander.
//
// Dev is not safe for concurrent use. Interleaved writes break the nibble
// pairing of the controller until the next Init.
type Dev struct {
	c     conn.Conn
	addr  uint16
	opts  Opts
	state State
	buf   [1]byte
	sleep func(time.Duration)
}

func (d *Dev) String() string {
	return fmt.Sprintf("i2clcd{%s %dx%d}", d.c, d.opts.Cols, d.opts.Lines)
}

// NewI2C returns a new device that communicates over I²C.
//
// Use default options if nil is used. The display is not touched until Init
// is called.
func NewI2C(b i2c.Bus, opts *Opts) (*Dev, error) {
	if opts == nil {
		opts = &DefaultOpts
	}
	addr, err := opts.i2cAddr()
	if err != nil {
		return nil, err
	}
	return makeDev(&i2c.Dev{Bus: b, Addr: addr}, addr, opts)
}

// New returns a device writing to an already addressed connection. The
// address in opts is only used for logging.
func New(c conn.Conn, opts *Opts) (*Dev, error) {
	if opts == nil {
		opts = &DefaultOpts
	}
	addr, err := opts.i2cAddr()
	if err != nil {
		return nil, err
	}
	return makeDev(c, addr, opts)
}

func makeDev(c conn.Conn, addr uint16, opts *Opts) (*Dev, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	d := &Dev{
		c:     c,
		addr:  addr,
		opts:  *opts,
		sleep: time.Sleep,
		state: State{
			Function:  opts.function(),
			Mode:      EntryLeft | EntryShiftDecrement,
			Control:   DisplayOn | CursorOff | BlinkOff,
			Backlight: NoBacklight,
		},
	}
	d.opts.I2CAddr = addr
	return d, nil
}

// Init runs the 4-bit initialization handshake and clears the display. It
// must be called before any other operation.
func (d *Dev) Init() error {
	log.WithField("addr", d.addr).Info("Initializing LCD")
	cmds := []byte{
		initSequence1,
		initSequence2,
		CmdEntryModeSet | d.state.Mode,
		CmdDisplayControl | d.state.Control,
		CmdFunctionSet | d.state.Function,
		CmdClearDisplay,
	}
	for _, cmd := range cmds {
		if err := d.command(cmd); err != nil {
			return err
		}
	}
	d.sleep(settleDelay)
	return nil
}

// Halt blanks the screen and turns off the backlight.
func (d *Dev) Halt() error {
	if err := d.Clear(); err != nil {
		return err
	}
	return d.SetBacklight(false)
}

// State returns a copy of the register state.
func (d *Dev) State() State {
	return d.state
}

func (d *Dev) Cols() int {
	return int(d.opts.Cols)
}

func (d *Dev) Lines() int {
	return int(d.opts.Lines)
}

// WriteLine writes text padded with spaces, or truncated, to exactly Cols
// characters starting at the current cursor position.
func (d *Dev) WriteLine(text string) error {
	line := make([]byte, d.opts.Cols)
	n := copy(line, text)
	for i := n; i < len(line); i++ {
		line[i] = ' '
	}
	_, err := d.Write(line)
	return err
}

// Write sends buf as character data, one byte per cell. It stops at the
// first failed byte; the ones before it stay on the display.
func (d *Dev) Write(buf []byte) (int, error) {
	for i, c := range buf {
		if err := d.data(c); err != nil {
			return i, err
		}
	}
	return len(buf), nil
}

func (d *Dev) WriteString(s string) (int, error) {
	return d.Write([]byte(s))
}

// SetCursor moves the cursor to col on row, both zero based. A row past the
// last line is clamped to the last line. col is not checked.
func (d *Dev) SetCursor(col, row int) error {
	if row >= int(d.opts.Lines) {
		row = int(d.opts.Lines) - 1
	}
	if row < 0 {
		row = 0
	}
	return d.command(CmdSetDDRAMAddr | byte(col+int(rowOffsets[row])))
}

func (d *Dev) Clear() error {
	if err := d.command(CmdClearDisplay); err != nil {
		return err
	}
	d.sleep(settleDelay)
	return nil
}

func (d *Dev) Home() error {
	if err := d.command(CmdReturnHome); err != nil {
		return err
	}
	d.sleep(settleDelay)
	return nil
}

// SetBacklight switches the backlight. The bit is carried by every byte, so
// the display control register is sent again to apply it.
func (d *Dev) SetBacklight(on bool) error {
	if on {
		d.state.Backlight = Backlight
	} else {
		d.state.Backlight = NoBacklight
	}
	return d.writeDisplayControl()
}

func (d *Dev) Display() error   { return d.setControl(DisplayOn, true) }
func (d *Dev) NoDisplay() error { return d.setControl(DisplayOn, false) }
func (d *Dev) Cursor() error    { return d.setControl(CursorOn, true) }
func (d *Dev) NoCursor() error  { return d.setControl(CursorOn, false) }
func (d *Dev) Blink() error     { return d.setControl(BlinkOn, true) }
func (d *Dev) NoBlink() error   { return d.setControl(BlinkOn, false) }

// LeftToRight makes the cursor advance to the right after each character.
func (d *Dev) LeftToRight() error { return d.setMode(EntryLeft, true) }

func (d *Dev) RightToLeft() error { return d.setMode(EntryLeft, false) }

// Autoscroll shifts the whole display on each character instead of the cursor.
func (d *Dev) Autoscroll() error { return d.setMode(EntryShiftIncrement, true) }

func (d *Dev) NoAutoscroll() error { return d.setMode(EntryShiftIncrement, false) }

func (d *Dev) ScrollDisplayLeft() error {
	return d.command(CmdCursorShift | DisplayMove | MoveLeft)
}

func (d *Dev) ScrollDisplayRight() error {
	return d.command(CmdCursorShift | DisplayMove | MoveRight)
}

func (d *Dev) MoveCursorLeft() error {
	return d.command(CmdCursorShift | CursorMove | MoveLeft)
}

func (d *Dev) MoveCursorRight() error {
	return d.command(CmdCursorShift | CursorMove | MoveRight)
}

func (d *Dev) setControl(flag byte, on bool) error {
	if on {
		d.state.Control |= flag
	} else {
		d.state.Control &^= flag
	}
	d.state.Control &= displayControlMask
	return d.writeDisplayControl()
}

func (d *Dev) writeDisplayControl() error {
	return d.command(CmdDisplayControl | d.state.Control)
}

func (d *Dev) setMode(flag byte, on bool) error {
	if on {
		d.state.Mode |= flag
	} else {
		d.state.Mode &^= flag
	}
	d.state.Mode &= entryModeMask
	return d.command(CmdEntryModeSet | d.state.Mode)
}

var _ conn.Resource = &Dev{}
