// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ad5940

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/go-lpc/bioz/ad5940/internal/regs"
	"github.com/go-lpc/bioz/ad5940/seq"
)

const (
	// DefaultWakeupTries is the number of identification reads
	// attempted before giving up on a wakeup.
	DefaultWakeupTries = 10

	pollInterval = time.Millisecond
)

// Device is an AD5940 analog front-end.
type Device struct {
	bus Bus
	msg *log.Logger
	gen *seq.Generator
}

// Option configures a Device.
type Option func(*Device)

// WithLogger sets the logger used by the device.
func WithLogger(msg *log.Logger) Option {
	return func(dev *Device) {
		dev.msg = msg
	}
}

// New returns a device talking to the chip over bus.
func New(bus Bus, opts ...Option) *Device {
	dev := &Device{
		bus: bus,
		msg: log.New(os.Stdout, "ad5940: ", 0),
	}
	for _, opt := range opts {
		opt(dev)
	}
	return dev
}

// SetGenerator binds the sequence generator consulted on every
// register access. A nil generator disables recording.
func (dev *Device) SetGenerator(gen *seq.Generator) { dev.gen = gen }

// Generator returns the bound sequence generator.
func (dev *Device) Generator() *seq.Generator { return dev.gen }

func (dev *Device) recording() bool {
	return dev.gen != nil && dev.gen.Recording()
}

// ReadReg reads the register at addr.
// While recording, the value is served from the generator shadow.
func (dev *Device) ReadReg(addr uint16) (uint32, error) {
	if dev.recording() {
		return dev.gen.Read(addr), nil
	}
	v, err := dev.bus.ReadReg(addr, regs.Width(addr))
	if err != nil {
		return 0, &BusError{Op: "read", Addr: addr, Err: err}
	}
	return v, nil
}

// WriteReg writes v to the register at addr.
// While recording, the write is appended to the sequence instead.
func (dev *Device) WriteReg(addr uint16, v uint32) error {
	if dev.recording() {
		return dev.gen.Write(addr, v)
	}
	err := dev.bus.WriteReg(addr, v, regs.Width(addr))
	if err != nil {
		return &BusError{Op: "write", Addr: addr, Err: err}
	}
	return nil
}

// update performs a read-modify-write of the bits selected by mask.
func (dev *Device) update(addr uint16, mask, v uint32) error {
	cur, err := dev.ReadReg(addr)
	if err != nil {
		return err
	}
	return dev.WriteReg(addr, (cur&^mask)|(v&mask))
}

func (dev *Device) direct(op string) error {
	if dev.recording() {
		return fmt.Errorf("ad5940: could not %s: %w", op, ErrRecording)
	}
	return nil
}

// WakeUp wakes the chip from sleep, reading the identification
// register up to tries times until it answers.
func (dev *Device) WakeUp(tries int) error {
	err := dev.direct("wake up")
	if err != nil {
		return err
	}
	if tries <= 0 {
		tries = DefaultWakeupTries
	}
	for i := 0; i < tries; i++ {
		v, err := dev.ReadReg(regs.REG_AFECON_ADIID)
		if err != nil {
			return fmt.Errorf("ad5940: could not wake up: %w", err)
		}
		if v == regs.ADIID_VALUE {
			return nil
		}
	}
	return fmt.Errorf("ad5940: no answer after %d tries: %w", tries, ErrWakeupFailed)
}

// ChipID returns the chip identifier.
func (dev *Device) ChipID() (uint32, error) {
	return dev.ReadReg(regs.REG_AFECON_CHIPID)
}

// WaitFlag polls the interrupt controller intc until one of the
// provided flags is raised or the timeout expires.
func (dev *Device) WaitFlag(ctx context.Context, intc INTC, flags uint32, timeout time.Duration) error {
	err := dev.direct("wait for interrupt flag")
	if err != nil {
		return err
	}
	deadline := time.Now().Add(timeout)
	for {
		ok, err := dev.INTCTestFlag(intc, flags)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf(
				"ad5940: flag 0x%08x not raised on %v after %v: %w",
				flags, intc, timeout, ErrTimeout,
			)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(pollInterval):
		}
	}
}

// DumpRegisters writes the current value of all known registers to w.
func (dev *Device) DumpRegisters(w io.Writer) error {
	err := dev.direct("dump registers")
	if err != nil {
		return err
	}
	for _, d := range regs.Table() {
		switch d.Addr {
		case regs.REG_AFE_DATAFIFORD, regs.REG_AFE_CMDFIFOWRITE, regs.REG_INTC_INTCCLR:
			// reading these has side effects or is meaningless.
			continue
		}
		v, err := dev.ReadReg(d.Addr)
		if err != nil {
			return fmt.Errorf("ad5940: could not dump %s: %w", d.Name, err)
		}
		_, err = fmt.Fprintf(w, "%-16s 0x%04x: 0x%08x\n", d.Name, d.Addr, v)
		if err != nil {
			return fmt.Errorf("ad5940: could not write register dump: %w", err)
		}
	}
	return nil
}
