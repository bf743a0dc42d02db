/*
Copyright 2024 Tim St. Pierre
HD44780 behind a PCF8574 backpack, simulated as an I²C bus
*/

// Package lcdsim decodes the byte stream written to a PCF8574 LCD backpack
// the way the HD44780 would and keeps the resulting display memory.
//
// The controller powers up in 8-bit mode. Every falling edge of the enable
// line latches D4-D7. In 8-bit mode each latched nibble is a whole
// instruction with D0-D3 low; after a function set selecting 4-bit mode,
// nibbles are paired high first.
package lcdsim

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	log "github.com/sirupsen/logrus"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"
)

const (
	pinRS        byte = 0x01
	pinEN        byte = 0x04
	pinBacklight byte = 0x08

	ddramSize = 0x80
	cgramSize = 0x40
)

var rowOffsets = [4]int{0x00, 0x40, 0x14, 0x54}

// ErrNoDevice is returned for transfers to another address.
var ErrNoDevice = errors.New("lcdsim: no device at address")

// Sim implements i2c.Bus with a single display at Addr.
type Sim struct {
	Addr  uint16
	Cols  int
	Lines int

	mu       sync.Mutex
	last     byte
	fourBit  bool
	pending  bool
	nibble   byte
	function byte
	mode     byte
	control  byte
	ac       int
	shift    int
	ddram    [ddramSize]byte
	cgram    [cgramSize]byte
	cgAddr   int
	inCGRAM  bool
	writes   int
	commands []byte
}

// New returns a powered-up controller: 8-bit interface, blank memory. The
// controller addresses at most four lines.
func New(addr uint16, cols, lines int) *Sim {
	if lines > len(rowOffsets) {
		lines = len(rowOffsets)
	}
	s := &Sim{Addr: addr, Cols: cols, Lines: lines, mode: 0x02}
	s.fill()
	return s
}

func (s *Sim) String() string {
	return fmt.Sprintf("lcdsim{0x%02x %dx%d}", s.Addr, s.Cols, s.Lines)
}

func (s *Sim) SetSpeed(f physic.Frequency) error {
	return nil
}

// Tx accepts writes only. Each byte is one expander port update.
func (s *Sim) Tx(addr uint16, w, r []byte) error {
	if addr != s.Addr {
		return fmt.Errorf("%w 0x%02x", ErrNoDevice, addr)
	}
	if len(r) != 0 {
		return errors.New("lcdsim: read not supported")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range w {
		s.port(b)
	}
	return nil
}

func (s *Sim) port(b byte) {
	s.writes++
	falling := s.last&pinEN != 0 && b&pinEN == 0
	latched, rs := s.last>>4, s.last&pinRS != 0
	s.last = b
	if !falling {
		return
	}
	if !s.fourBit {
		s.execute(latched<<4, rs)
		return
	}
	if !s.pending {
		s.nibble = latched
		s.pending = true
		return
	}
	s.pending = false
	s.execute(s.nibble<<4|latched, rs)
}

func (s *Sim) execute(v byte, data bool) {
	if data && s.inCGRAM {
		log.Tracef("lcdsim: glyph data 0x%02x at 0x%02x", v, s.cgAddr)
		s.cgram[s.cgAddr] = v
		s.cgAddr = (s.cgAddr + 1) % cgramSize
		return
	}
	if data {
		log.Tracef("lcdsim: data 0x%02x at 0x%02x", v, s.ac)
		s.ddram[s.ac] = v
		s.advance()
		return
	}
	log.Tracef("lcdsim: instruction 0x%02x", v)
	s.commands = append(s.commands, v)
	switch {
	case v&0x80 != 0:
		s.ac = int(v & 0x7f)
		s.inCGRAM = false
	case v&0x40 != 0:
		// Glyphs are stored but never drawn.
		s.cgAddr = int(v & 0x3f)
		s.inCGRAM = true
	case v&0x20 != 0:
		s.function = v & 0x1c
		fourBit := v&0x10 == 0
		if fourBit != s.fourBit {
			s.pending = false
		}
		s.fourBit = fourBit
	case v&0x10 != 0:
		step := -1
		if v&0x04 != 0 {
			step = 1
		}
		if v&0x08 != 0 {
			s.shift -= step
		} else {
			s.move(step)
		}
	case v&0x08 != 0:
		s.control = v & 0x07
	case v&0x04 != 0:
		s.mode = v & 0x03
	case v&0x02 != 0:
		s.ac = 0
		s.shift = 0
		s.inCGRAM = false
	case v&0x01 != 0:
		s.fill()
		s.ac = 0
		s.inCGRAM = false
		s.shift = 0
		s.mode |= 0x02
	}
}

func (s *Sim) advance() {
	step := -1
	if s.mode&0x02 != 0 {
		step = 1
	}
	s.move(step)
	if s.mode&0x01 != 0 {
		s.shift += step
	}
}

// move steps the address counter, wrapping the way the controller does for
// the configured number of lines.
func (s *Sim) move(step int) {
	if s.function&0x08 == 0 {
		s.ac = (s.ac + step + 0x50) % 0x50
		return
	}
	line, pos := s.ac&0x40, s.ac&0x3f
	pos += step
	switch {
	case pos >= 40:
		pos = 0
		line ^= 0x40
	case pos < 0:
		pos = 39
		line ^= 0x40
	}
	s.ac = line | pos
}

func (s *Sim) fill() {
	for i := range s.ddram {
		s.ddram[i] = ' '
	}
}

// Line returns what row shows, taking display shift into account.
func (s *Sim) Line(row int) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.line(row)
}

// line reads row as the glass shows it. Rows out of range read as the
// nearest one.
func (s *Sim) line(row int) string {
	if row >= len(rowOffsets) {
		row = len(rowOffsets) - 1
	}
	if row < 0 {
		row = 0
	}
	width, start := 0x50, 0
	if s.function&0x08 != 0 {
		width = 40
		start = rowOffsets[row] & 0x40
	}
	base := rowOffsets[row] - start
	out := make([]byte, s.Cols)
	for c := range out {
		pos := ((base+c+s.shift)%width + width) % width
		out[c] = s.ddram[start+pos]
	}
	return string(out)
}

// Text returns all rows separated by newlines.
func (s *Sim) Text() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows := make([]string, s.Lines)
	for r := range rows {
		rows[r] = s.line(r)
	}
	return strings.Join(rows, "\n")
}

// Render draws the display in a box. An unlit or switched off display is
// drawn with dots.
func (s *Sim) Render(w io.Writer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	border := "+" + strings.Repeat("-", s.Cols) + "+\n"
	if _, err := io.WriteString(w, border); err != nil {
		return err
	}
	for r := 0; r < s.Lines; r++ {
		line := s.line(r)
		if s.control&0x04 == 0 || s.last&pinBacklight == 0 {
			line = strings.Repeat(".", s.Cols)
		}
		if _, err := fmt.Fprintf(w, "|%s|\n", line); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, border)
	return err
}

// Address returns the DDRAM address counter.
func (s *Sim) Address() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ac
}

func (s *Sim) FourBit() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fourBit
}

func (s *Sim) Backlight() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last&pinBacklight != 0
}

// Control returns the display, cursor and blink flags.
func (s *Sim) Control() byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.control
}

// Mode returns the entry mode flags.
func (s *Sim) Mode() byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// Function returns the data length, line and font flags.
func (s *Sim) Function() byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.function
}

func (s *Sim) Shift() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.shift
}

// Writes is the number of port updates received.
func (s *Sim) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}

// Commands returns every instruction executed so far, in order.
func (s *Sim) Commands() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]byte(nil), s.commands...)
}

var _ i2c.Bus = &Sim{}
