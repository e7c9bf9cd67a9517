// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package ad5940test provides an in-memory AD5940 for tests.
//
// Chip implements the register bus of an AD5940 with enough of the
// chip behavior to run sequences: a sequencer SRAM, a data FIFO fed
// by a DFT engine, the interrupt flags and the wake-up timer.
package ad5940test // import "github.com/go-lpc/bioz/ad5940/ad5940test"

import (
	"fmt"
	"sync"

	"github.com/go-lpc/bioz/ad5940/internal/regs"
	"github.com/go-lpc/bioz/ad5940/seq"
)

// Access is a register access seen on the bus.
type Access struct {
	Write bool
	Addr  uint16
	Value uint32
}

// Chip is a simulated AD5940.
type Chip struct {
	mu sync.Mutex

	regs  map[uint16]uint32
	sram  [ad5940SeqMem]uint32
	fifo  []uint32
	dft   [][2]int32
	waddr uint32

	// WakeFailures is the number of identification reads answered
	// with garbage before the chip wakes up.
	WakeFailures int
	// ReadErr and WriteErr, when set, are consulted on every
	// bus access and may inject a transfer error.
	ReadErr  func(addr uint16) error
	WriteErr func(addr uint16) error

	// Hang, when set, prevents sequences from signaling their end.
	Hang bool

	Log     []Access
	Sleeps  int // number of sleep requests
	Stops   int // number of times the running wake-up timer was stopped
	Trigger []seq.ID
}

const ad5940SeqMem = 512

// New returns a chip in its power-on state.
func New() *Chip {
	return &Chip{regs: make(map[uint16]uint32)}
}

// PushDFT queues DFT results. Each DFT conversion started on the chip
// consumes one result. Values are truncated to 18 bits.
func (c *Chip) PushDFT(vs ...[2]int32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dft = append(c.dft, vs...)
}

// PushFIFO appends raw words to the data FIFO.
func (c *Chip) PushFIFO(vs ...uint32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fifo = append(c.fifo, vs...)
	c.checkThresh()
}

// FIFOLen returns the number of words held in the data FIFO.
func (c *Chip) FIFOLen() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.fifo)
}

// Reg returns the current value of the register at addr.
func (c *Chip) Reg(addr uint16) uint32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reg(addr)
}

// SetReg sets the register at addr, without side effects.
func (c *Chip) SetReg(addr uint16, v uint32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.regs[addr] = v
}

// SRAM returns n words of the sequencer SRAM starting at addr.
func (c *Chip) SRAM(addr, n int) []uint32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]uint32, n)
	copy(out, c.sram[addr:addr+n])
	return out
}

// Writes returns the values written to the register at addr, in order.
func (c *Chip) Writes(addr uint16) []uint32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []uint32
	for _, a := range c.Log {
		if a.Write && a.Addr == addr {
			out = append(out, a.Value)
		}
	}
	return out
}

// ResetLog clears the recorded bus accesses.
func (c *Chip) ResetLog() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Log = c.Log[:0]
}

// WakeupTimer runs one period of the wake-up timer: when enabled,
// it executes the first sequence of its order list.
// It reports whether a sequence ran.
func (c *Chip) WakeupTimer() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.reg(regs.REG_WUPTMR_CON)&regs.BITM_WUPTMR_CON_EN == 0 {
		return false
	}
	id := seq.ID(c.reg(regs.REG_WUPTMR_SEQORDER) & 0x3)
	c.run(id)
	return true
}

// TimerEnabled reports whether the wake-up timer runs.
func (c *Chip) TimerEnabled() bool {
	return c.Reg(regs.REG_WUPTMR_CON)&regs.BITM_WUPTMR_CON_EN != 0
}

// SleepCount returns the sleep period of sequence id, in wake-up
// timer clocks.
func (c *Chip) SleepCount(id seq.ID) uint32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	base := uint16(regs.REG_WUPTMR_SEQ0SLPL + int(id)*regs.WUPTMR_SEQ_STRIDE)
	return c.reg(base)&0xFFFF | (c.reg(base+4)&0xF)<<16
}

// WakeupCount returns the wakeup period of sequence id, in wake-up
// timer clocks.
func (c *Chip) WakeupCount(id seq.ID) uint32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	base := uint16(regs.REG_WUPTMR_SEQ0WUPL + int(id)*regs.WUPTMR_SEQ_STRIDE)
	return c.reg(base)&0xFFFF | (c.reg(base+4)&0xF)<<16
}

// Sequence returns the SRAM address and length of the installed
// sequence id.
func (c *Chip) Sequence(id seq.ID) (addr, n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	info := c.reg(id.InfoReg())
	addr = int(info & regs.BITM_SEQINFO_ADDR)
	n = int((info & regs.BITM_SEQINFO_LEN) >> regs.BITP_SEQINFO_LEN)
	return addr, n
}

// WaveFreqWord returns the frequency word of the waveform generator.
func (c *Chip) WaveFreqWord() uint32 {
	return c.Reg(regs.REG_AFE_WGFCW)
}

func (c *Chip) reg(addr uint16) uint32 {
	if v, ok := c.regs[addr]; ok {
		return v
	}
	return regs.Reset(addr)
}

func (c *Chip) ReadReg(addr uint16, width int) (uint32, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.ReadErr != nil {
		if err := c.ReadErr(addr); err != nil {
			return 0, err
		}
	}
	if want := regs.Width(addr); width != want {
		return 0, fmt.Errorf("ad5940test: invalid access width %d for register 0x%04x (want=%d)", width, addr, want)
	}

	var v uint32
	switch addr {
	case regs.REG_AFECON_ADIID:
		if c.WakeFailures > 0 {
			c.WakeFailures--
			v = 0xFFFF
			break
		}
		v = regs.ADIID_VALUE
	case regs.REG_AFE_FIFOCNTSTA:
		v = uint32(len(c.fifo)) << regs.BITP_FIFOCNTSTA_DATAFIFOCNT & regs.BITM_FIFOCNTSTA_DATAFIFOCNT
	case regs.REG_AFE_DATAFIFORD:
		if len(c.fifo) > 0 {
			v = c.fifo[0]
			c.fifo = c.fifo[1:]
		}
	default:
		v = c.reg(addr)
	}
	c.Log = append(c.Log, Access{Addr: addr, Value: v})
	return v, nil
}

func (c *Chip) WriteReg(addr uint16, v uint32, width int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.WriteErr != nil {
		if err := c.WriteErr(addr); err != nil {
			return err
		}
	}
	if want := regs.Width(addr); width != want {
		return fmt.Errorf("ad5940test: invalid access width %d for register 0x%04x (want=%d)", width, addr, want)
	}
	if width == 2 {
		v &= 0xFFFF
	}
	c.Log = append(c.Log, Access{Write: true, Addr: addr, Value: v})
	c.write(addr, v)
	return nil
}

func (c *Chip) ReadFIFO(dst []uint32) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.ReadErr != nil {
		if err := c.ReadErr(regs.REG_AFE_DATAFIFORD); err != nil {
			return err
		}
	}
	if len(dst) > len(c.fifo) {
		return fmt.Errorf("ad5940test: FIFO underflow (n=%d, want=%d)", len(c.fifo), len(dst))
	}
	copy(dst, c.fifo)
	c.fifo = c.fifo[len(dst):]
	return nil
}

func (c *Chip) write(addr uint16, v uint32) {
	switch addr {
	case regs.REG_INTC_INTCCLR:
		c.regs[regs.REG_INTC_INTCFLAG0] = c.reg(regs.REG_INTC_INTCFLAG0) &^ v
		c.regs[regs.REG_INTC_INTCFLAG1] = c.reg(regs.REG_INTC_INTCFLAG1) &^ v
		return

	case regs.REG_AFECON_TRIGSEQ:
		for id := seq.SEQ0; id <= seq.SEQ3; id++ {
			if v&(1<<uint(id)) != 0 {
				c.run(id)
			}
		}
		return

	case regs.REG_AFE_CMDFIFOWADDR:
		c.waddr = v
	case regs.REG_AFE_CMDFIFOWRITE:
		if int(c.waddr) < len(c.sram) {
			c.sram[c.waddr] = v
		}
	case regs.REG_WUPTMR_CON:
		if c.reg(addr)&regs.BITM_WUPTMR_CON_EN != 0 && v&regs.BITM_WUPTMR_CON_EN == 0 {
			c.Stops++
		}
	case regs.REG_AFE_SEQTRGSLP:
		if v&1 != 0 && c.reg(regs.REG_AFE_SEQSLPLOCK) == regs.SLPKEY_UNLOCK {
			c.Sleeps++
		}
	case regs.REG_AFE_AFEGENINTSTA:
		c.raise(regs.REG_INTC_INTCFLAG1, (v&0xF)<<9)
	case regs.REG_AFE_FIFOCON:
		if v&regs.BITM_FIFOCON_DATAFIFOEN == 0 {
			c.fifo = c.fifo[:0]
		}
	case regs.REG_AFE_AFECON:
		old := c.reg(addr)
		const cnv = regs.AFECTRL_ADCCNV | regs.AFECTRL_DFT
		if v&cnv == cnv && old&cnv != cnv {
			c.regs[addr] = v
			c.convert()
			return
		}
	}
	c.regs[addr] = v
}

// convert produces one DFT result.
func (c *Chip) convert() {
	var d [2]int32
	if len(c.dft) > 0 {
		d = c.dft[0]
		c.dft = c.dft[1:]
	}
	re := uint32(d[0]) & 0x3FFFF
	im := uint32(d[1]) & 0x3FFFF
	c.regs[regs.REG_AFE_DFTREAL] = re
	c.regs[regs.REG_AFE_DFTIMAG] = im
	c.raise(regs.REG_INTC_INTCFLAG1, regs.INTSRC_DFTRDY)

	fifo := c.reg(regs.REG_AFE_FIFOCON)
	src := (fifo & regs.BITM_FIFOCON_DATAFIFOSRCSEL) >> regs.BITP_FIFOCON_DATAFIFOSRCSEL
	if fifo&regs.BITM_FIFOCON_DATAFIFOEN != 0 && src == regs.FIFOSRC_DFT {
		c.fifo = append(c.fifo, re, im)
		c.checkThresh()
	}
}

func (c *Chip) checkThresh() {
	thresh := (c.reg(regs.REG_AFE_DATAFIFOTHRES) & regs.BITM_DATAFIFOTHRES_HIGHTHRES) >> regs.BITP_DATAFIFOTHRES_HIGHTHRES
	if thresh > 0 && uint32(len(c.fifo)) >= thresh {
		c.raise(regs.REG_INTC_INTCFLAG0, regs.INTSRC_DATAFIFOTHRESH)
		c.raise(regs.REG_INTC_INTCFLAG1, regs.INTSRC_DATAFIFOTHRESH)
	}
}

func (c *Chip) raise(flag uint16, bits uint32) {
	c.regs[flag] = c.reg(flag) | bits
}

// run executes the sequence id from SRAM.
func (c *Chip) run(id seq.ID) {
	c.Trigger = append(c.Trigger, id)
	if c.reg(regs.REG_AFE_SEQCON)&regs.BITM_SEQCON_SEQEN == 0 {
		return
	}
	info := c.reg(id.InfoReg())
	var (
		addr = info & regs.BITM_SEQINFO_ADDR
		n    = (info & regs.BITM_SEQINFO_LEN) >> regs.BITP_SEQINFO_LEN
	)
	for i := addr; i < addr+n && int(i) < len(c.sram); i++ {
		cmd := seq.Decode(c.sram[i])
		if cmd.Kind != seq.KindWrite {
			continue
		}
		c.write(cmd.Addr, cmd.Data)
		if cmd.Addr == regs.REG_AFE_SEQCON && cmd.Data&regs.BITM_SEQCON_SEQEN == 0 {
			break
		}
	}
	if c.Hang {
		return
	}
	c.raise(regs.REG_INTC_INTCFLAG1, regs.INTSRC_ENDSEQ)
}
