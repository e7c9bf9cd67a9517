// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package mux drives the I2C crosspoint switch routing the electrodes
// to the 4-wire inputs of the AD5940 (F+, S+, S-, F-).
//
// Each switch change is a 2-byte (selector, latch) SMBus write.
// The selector byte holds the on/off bit, the X line (electrode) and
// the Y line (AFE input). Changes are only applied once a write with
// a non-zero latch byte is issued.
package mux // import "github.com/go-lpc/bioz/mux"

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/go-daq/smbus"
)

const (
	// Addr is the default I2C address of the crosspoint switch.
	Addr = 0x71

	NumElectrodes = 12 // number of X lines

	latchNow   = 0x01
	latchLater = 0x00
)

// AFE inputs, wired to the Y lines of the switch.
const (
	FPlus  = 0
	SPlus  = 1
	SMinus = 2
	FMinus = 3

	numInputs = 4
)

// Combination associates one electrode to each AFE input.
type Combination [numInputs]uint8

func (c Combination) String() string {
	return fmt.Sprintf("F+=%d S+=%d S-=%d F-=%d", c[FPlus], c[SPlus], c[SMinus], c[FMinus])
}

func (c Combination) validate() error {
	for i, x := range c {
		if int(x) >= NumElectrodes {
			return fmt.Errorf("mux: invalid electrode %d on input %d", x, i)
		}
	}
	return nil
}

// Selector returns the selector byte closing (or opening) the switch
// between electrode x and AFE input y.
func Selector(on bool, x, y uint8) uint8 {
	v := (x&0xf)<<3 | y&0x7
	if on {
		v |= 0x80
	}
	return v
}

type conn interface {
	WriteReg(addr, reg, v uint8) error
	Close() error
}

// Switch is a crosspoint switch on an I2C bus.
type Switch struct {
	msg  *log.Logger
	conn conn
	addr uint8

	cur *Combination
}

// Open opens the crosspoint switch at addr on the provided I2C bus.
func Open(bus int, addr uint8) (*Switch, error) {
	c, err := smbus.Open(bus, addr)
	if err != nil {
		return nil, fmt.Errorf("mux: could not open i2c-%d 0x%x: %w", bus, addr, err)
	}
	return newSwitch(c, addr), nil
}

func newSwitch(c conn, addr uint8) *Switch {
	return &Switch{
		msg:  log.New(os.Stdout, "mux: ", 0),
		conn: c,
		addr: addr,
	}
}

// SetOutput redirects the switch log messages.
func (sw *Switch) SetOutput(w io.Writer) {
	sw.msg.SetOutput(w)
}

func (sw *Switch) Close() error {
	return sw.conn.Close()
}

// Current returns the currently routed combination, if any.
func (sw *Switch) Current() (Combination, bool) {
	if sw.cur == nil {
		return Combination{}, false
	}
	return *sw.cur, true
}

// Route opens the switches of the current combination and closes the
// ones of c. All the writes are latched together by the last one.
func (sw *Switch) Route(c Combination) error {
	err := c.validate()
	if err != nil {
		return err
	}

	pairs := make([][2]uint8, 0, 2*numInputs)
	if sw.cur != nil {
		for y, x := range sw.cur {
			pairs = append(pairs, [2]uint8{Selector(false, x, uint8(y)), latchLater})
		}
	}
	for y, x := range c {
		pairs = append(pairs, [2]uint8{Selector(true, x, uint8(y)), latchLater})
	}
	pairs[len(pairs)-1][1] = latchNow

	for _, p := range pairs {
		err = sw.conn.WriteReg(sw.addr, p[0], p[1])
		if err != nil {
			sw.cur = nil
			return fmt.Errorf("mux: could not write selector 0x%02x: %w", p[0], err)
		}
	}
	sw.cur = &c
	sw.msg.Printf("routed %v", c)
	return nil
}

// Reset opens all the switches of the current combination.
func (sw *Switch) Reset() error {
	if sw.cur == nil {
		return nil
	}
	for y, x := range sw.cur {
		latch := uint8(latchLater)
		if y == numInputs-1 {
			latch = latchNow
		}
		err := sw.conn.WriteReg(sw.addr, Selector(false, x, uint8(y)), latch)
		if err != nil {
			return fmt.Errorf("mux: could not reset switch: %w", err)
		}
	}
	sw.cur = nil
	return nil
}

// ParseCombination parses a "F+,S+,S-,F-" electrode list, eg "0,1,2,3".
func ParseCombination(s string) (Combination, error) {
	var (
		c Combination
		v [numInputs]int
	)
	n, err := fmt.Sscanf(s, "%d,%d,%d,%d", &v[0], &v[1], &v[2], &v[3])
	if err != nil || n != numInputs {
		return c, fmt.Errorf("mux: invalid combination %q", s)
	}
	for i, x := range v {
		if x < 0 || x >= NumElectrodes {
			return c, fmt.Errorf("mux: invalid electrode %d in %q", x, s)
		}
		c[i] = uint8(x)
	}
	return c, nil
}
