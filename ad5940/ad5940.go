// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package ad5940 drives an AD5940 analog front-end over a register bus.
//
// Configuration functions either access the chip registers directly
// or, while a sequence generator is recording, append the equivalent
// sequencer instructions without touching the bus.
package ad5940 // import "github.com/go-lpc/bioz/ad5940"

import (
	"errors"
	"fmt"
)

var (
	// ErrWakeupFailed is returned when the chip did not answer with
	// its identification value within the allowed number of attempts.
	ErrWakeupFailed = errors.New("ad5940: wakeup failed")

	// ErrTimeout is returned when a bounded wait on a chip flag expires.
	ErrTimeout = errors.New("ad5940: timeout")

	// ErrRecording is returned when an operation that cannot be
	// sequenced is attempted while recording.
	ErrRecording = errors.New("ad5940: operation not allowed while recording")
)

// Bus is a register-level transport to the chip.
type Bus interface {
	// ReadReg reads the register at addr with the given access width
	// in bytes (2 or 4).
	ReadReg(addr uint16, width int) (uint32, error)
	// WriteReg writes v to the register at addr.
	WriteReg(addr uint16, v uint32, width int) error
	// ReadFIFO reads len(dst) words from the data FIFO.
	ReadFIFO(dst []uint32) error
}

// BusError describes a failed register transfer.
type BusError struct {
	Op   string // "read", "write" or "fifo"
	Addr uint16
	Err  error
}

func (e *BusError) Error() string {
	if e.Op == "fifo" {
		return fmt.Sprintf("ad5940: could not read data FIFO: %+v", e.Err)
	}
	return fmt.Sprintf("ad5940: could not %s register 0x%04x: %+v", e.Op, e.Addr, e.Err)
}

func (e *BusError) Unwrap() error { return e.Err }
