/*
Copyright 2024 Tim St. Pierre
4-bit transmission through the expander: nibble split and enable pulse
*/
package i2clcd

import (
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
)

// Enable line timing. The busy flag is never read, so these are worst case
// values and must not be shortened.
const (
	eDelay = 500 * time.Microsecond
	ePulse = 500 * time.Microsecond

	// Clear and home run for about 1.52ms inside the controller.
	settleDelay = 2 * time.Millisecond
)

func (d *Dev) command(cmd byte) error {
	if log.IsLevelEnabled(log.DebugLevel) {
		log.WithFields(log.Fields{"addr": d.addr, "cmd": fmt.Sprintf("0x%02x", cmd)}).Debug("Writing command")
	}
	return d.send(cmd, modeCommand)
}

func (d *Dev) data(char byte) error {
	return d.send(char, modeData)
}

// send writes value as two nibbles, high nibble first. The register select
// and backlight bits ride along with both.
func (d *Dev) send(value, mode byte) error {
	high := mode | (value & 0xf0) | d.state.Backlight
	low := mode | ((value << 4) & 0xf0) | d.state.Backlight
	if err := d.pulse(high); err != nil {
		return err
	}
	return d.pulse(low)
}

// pulse latches one nibble: data lines first, then a full enable pulse.
func (d *Dev) pulse(bits byte) error {
	bits = setPin(EN, bits, false)
	if err := d.writeByte(bits); err != nil {
		return err
	}
	d.sleep(eDelay)
	if err := d.writeByte(setPin(EN, bits, true)); err != nil {
		return err
	}
	d.sleep(ePulse)
	if err := d.writeByte(bits); err != nil {
		return err
	}
	d.sleep(eDelay)
	return nil
}

func (d *Dev) writeByte(b byte) error {
	log.Tracef("i2clcd 0x%02x: %08b", d.addr, b)
	d.buf[0] = b
	if err := d.c.Tx(d.buf[:], nil); err != nil {
		return fmt.Errorf("i2clcd 0x%02x: write %#02x: %w", d.addr, b, err)
	}
	return nil
}

// setPin asserts or clears a single expander pin in data.
func setPin(pin, data byte, value bool) byte {
	mask := byte(0x01) << pin
	if value {
		return data | mask
	}
	return data &^ mask
}
