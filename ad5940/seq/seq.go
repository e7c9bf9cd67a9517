// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package seq implements the AD5940 sequencer instruction set and a
// generator recording register accesses into sequencer programs.
//
// A sequencer instruction is a 32-bit word:
//
//	WAIT:    0b00 | clocks[29:0]
//	TIMEOUT: 0b01 | clocks[29:0]
//	WRITE:   0b1  | offset[30:24] | data[23:0]
//
// where offset is the word offset of the target register from the
// base of the AFE register block.
package seq // import "github.com/go-lpc/bioz/ad5940/seq"

import (
	"errors"
	"fmt"

	"github.com/go-lpc/bioz/ad5940/internal/regs"
)

var (
	ErrBufferExhausted = errors.New("seq: sequence buffer exhausted")
	ErrInvalidArgument = errors.New("seq: invalid argument")
)

const (
	MaxClocks = 0x3FFFFFFF // largest WAIT/TIMEOUT clock count
	MaxData   = 0xFFFFFF   // largest WRITE payload

	flagWrite   = 1 << 31
	flagTimeout = 1 << 30
)

// Kind is the kind of a sequencer instruction.
type Kind uint8

const (
	KindWait Kind = iota
	KindTimeout
	KindWrite
)

func (k Kind) String() string {
	switch k {
	case KindWait:
		return "WAIT"
	case KindTimeout:
		return "TIMEOUT"
	case KindWrite:
		return "WRITE"
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Command is a decoded sequencer instruction.
type Command struct {
	Kind   Kind
	Clocks uint32 // WAIT and TIMEOUT
	Addr   uint16 // WRITE
	Data   uint32 // WRITE
}

// Wait returns an instruction stalling the sequencer for n clocks.
// n is truncated to 30 bits.
func Wait(n uint32) Command {
	return Command{Kind: KindWait, Clocks: n & MaxClocks}
}

// Timeout returns an instruction arming the sequencer timeout
// counter with n clocks. n is truncated to 30 bits.
func Timeout(n uint32) Command {
	return Command{Kind: KindTimeout, Clocks: n & MaxClocks}
}

// Write returns an instruction writing v to the AFE register at addr.
// Only the low 24 bits of v are kept.
func Write(addr uint16, v uint32) Command {
	return Command{Kind: KindWrite, Addr: addr, Data: v & MaxData}
}

// Stop returns an instruction disabling the sequencer.
func Stop() Command { return Write(regs.REG_AFE_SEQCON, 0) }

// Sleep returns an instruction putting the AFE to sleep.
func Sleep() Command { return Write(regs.REG_AFE_SEQTRGSLP, 1) }

// Int returns an instruction raising the custom interrupt n (0 to 3).
func Int(n int) Command {
	return Write(regs.REG_AFE_AFEGENINTSTA, 1<<uint(n&0x3))
}

// Encode returns the 32-bit encoding of the instruction.
func (cmd Command) Encode() uint32 {
	switch cmd.Kind {
	case KindWait:
		return cmd.Clocks & MaxClocks
	case KindTimeout:
		return flagTimeout | cmd.Clocks&MaxClocks
	case KindWrite:
		off := uint32(cmd.Addr>>2) & 0x7F
		return flagWrite | off<<24 | cmd.Data&MaxData
	}
	panic(fmt.Errorf("seq: invalid instruction kind %v", cmd.Kind))
}

// Decode decodes a 32-bit sequencer instruction.
func Decode(v uint32) Command {
	switch {
	case v&flagWrite != 0:
		off := uint16(v>>24) & 0x7F
		return Command{
			Kind: KindWrite,
			Addr: regs.AFE_BASE | off<<2,
			Data: v & MaxData,
		}
	case v&flagTimeout != 0:
		return Command{Kind: KindTimeout, Clocks: v & MaxClocks}
	default:
		return Command{Kind: KindWait, Clocks: v & MaxClocks}
	}
}

func (cmd Command) String() string {
	switch cmd.Kind {
	case KindWrite:
		name := "?"
		if d, ok := regs.Lookup(cmd.Addr); ok {
			name = d.Name
		}
		return fmt.Sprintf("WRITE %s(0x%04x) <- 0x%06x", name, cmd.Addr, cmd.Data)
	default:
		return fmt.Sprintf("%v %d", cmd.Kind, cmd.Clocks)
	}
}

// ID identifies one of the four sequencer slots.
type ID uint8

const (
	SEQ0 ID = iota
	SEQ1
	SEQ2
	SEQ3
)

// InfoReg returns the address of the SEQxINFO register for id.
func (id ID) InfoReg() uint16 {
	switch id {
	case SEQ0:
		return regs.REG_AFE_SEQ0INFO
	case SEQ1:
		return regs.REG_AFE_SEQ1INFO
	case SEQ2:
		return regs.REG_AFE_SEQ2INFO
	default:
		return regs.REG_AFE_SEQ3INFO
	}
}

// Info describes a sequence installed in the sequencer SRAM.
type Info struct {
	ID   ID
	Addr uint32   // start address in SRAM, in words
	Cmds []uint32 // encoded instructions
}

// Len returns the number of instructions of the sequence.
func (info Info) Len() int { return len(info.Cmds) }

// End returns the first SRAM word past the sequence.
func (info Info) End() uint32 { return info.Addr + uint32(len(info.Cmds)) }
