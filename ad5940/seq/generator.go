// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package seq

import (
	"fmt"

	"github.com/go-lpc/bioz/ad5940/internal/regs"
)

// Generator records register writes into a caller-provided buffer of
// sequencer instructions.
//
// While recording, register reads are served from a shadow of the
// values recorded since Init, falling back to the register reset
// values. Successive recordings thus describe successive chip states.
// Recording never touches the bus.
//
// Once the buffer is exhausted, the generator latches the error and
// ignores further instructions until recording is restarted.
type Generator struct {
	buf    []uint32
	n      int
	rec    bool
	err    error
	shadow map[uint16]uint32
}

// Init binds the generator to buf. Its capacity is len(buf).
func (gen *Generator) Init(buf []uint32) error {
	if len(buf) == 0 {
		return fmt.Errorf("seq: empty sequence buffer: %w", ErrInvalidArgument)
	}
	gen.buf = buf
	gen.n = 0
	gen.rec = false
	gen.err = nil
	gen.shadow = make(map[uint16]uint32)
	return nil
}

// SetRecording starts or stops recording.
// Starting a new recording resets the buffer and the latched error.
func (gen *Generator) SetRecording(on bool) {
	if on {
		gen.n = 0
		gen.err = nil
	}
	gen.rec = on
}

// ResetShadow forgets the recorded register values.
func (gen *Generator) ResetShadow() {
	gen.shadow = make(map[uint16]uint32)
}

// Recording reports whether the generator is recording.
func (gen *Generator) Recording() bool { return gen.rec }

// Len returns the number of recorded instructions.
func (gen *Generator) Len() int { return gen.n }

// Cap returns the capacity of the bound buffer.
func (gen *Generator) Cap() int { return len(gen.buf) }

// Err returns the latched error, if any.
func (gen *Generator) Err() error { return gen.err }

// Insert appends an encoded instruction.
func (gen *Generator) Insert(cmd uint32) error {
	if gen.err != nil {
		return gen.err
	}
	if gen.buf == nil {
		gen.err = fmt.Errorf("seq: generator not initialized: %w", ErrInvalidArgument)
		return gen.err
	}
	if gen.n >= len(gen.buf) {
		gen.err = fmt.Errorf(
			"seq: could not insert instruction #%d (cap=%d): %w",
			gen.n+1, len(gen.buf), ErrBufferExhausted,
		)
		return gen.err
	}
	gen.buf[gen.n] = cmd
	gen.n++
	return nil
}

// Append encodes and appends the provided instructions.
func (gen *Generator) Append(cmds ...Command) error {
	for _, cmd := range cmds {
		err := gen.Insert(cmd.Encode())
		if err != nil {
			return err
		}
		if cmd.Kind == KindWrite {
			gen.shadow[cmd.Addr] = cmd.Data
		}
	}
	return nil
}

// Write records a write of v to the AFE register at addr.
func (gen *Generator) Write(addr uint16, v uint32) error {
	if !regs.InSeqWindow(addr) {
		err := fmt.Errorf(
			"seq: register 0x%04x not addressable from sequencer: %w",
			addr, ErrInvalidArgument,
		)
		if gen.err == nil {
			gen.err = err
		}
		return err
	}
	if v > MaxData {
		err := fmt.Errorf(
			"seq: value 0x%x for register 0x%04x exceeds 24 bits: %w",
			v, addr, ErrInvalidArgument,
		)
		if gen.err == nil {
			gen.err = err
		}
		return err
	}
	return gen.Append(Write(addr, v))
}

// Read returns the recorded value of the register at addr.
func (gen *Generator) Read(addr uint16) uint32 {
	if v, ok := gen.shadow[addr]; ok {
		return v
	}
	return regs.Reset(addr)
}

// Fetch stops recording and returns the recorded instructions.
// The returned slice aliases the bound buffer.
func (gen *Generator) Fetch() ([]uint32, error) {
	gen.rec = false
	if gen.err != nil {
		return nil, gen.err
	}
	return gen.buf[:gen.n:gen.n], nil
}
