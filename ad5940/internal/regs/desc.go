// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package regs

import "sort"

// Desc describes a register.
type Desc struct {
	Name  string
	Addr  uint16
	Width int // access width, in bytes
	Reset uint32
}

// Width returns the access width in bytes of the register at addr.
// Registers missing from the table follow the address map: 32-bit
// from 0x1000 to 0x3014, 16-bit elsewhere.
func Width(addr uint16) int {
	if d, ok := Lookup(addr); ok {
		return d.Width
	}
	if addr >= 0x1000 && addr <= 0x3014 {
		return 4
	}
	return 2
}

// InSeqWindow reports whether the register at addr can be written
// by a sequencer instruction.
func InSeqWindow(addr uint16) bool {
	return addr >= AFE_BASE && addr <= AFE_LAST && addr&0x3 == 0
}

// Reset returns the power-on value of the register at addr.
func Reset(addr uint16) uint32 {
	d, ok := Lookup(addr)
	if !ok {
		return 0
	}
	return d.Reset
}

// Lookup returns the description of the register at addr.
func Lookup(addr uint16) (Desc, bool) {
	i := sort.Search(len(table), func(i int) bool {
		return table[i].Addr >= addr
	})
	if i < len(table) && table[i].Addr == addr {
		return table[i], true
	}
	return Desc{}, false
}

// Table returns the known registers, sorted by address.
func Table() []Desc {
	out := make([]Desc, len(table))
	copy(out, table)
	return out
}

// table is sorted by address.
var table = []Desc{
	{"ADIID", REG_AFECON_ADIID, 2, ADIID_VALUE},
	{"CHIPID", REG_AFECON_CHIPID, 2, CHIPID_VALUE},
	{"CLKCON0", REG_AFECON_CLKCON0, 2, 0x0441},
	{"CLKEN1", REG_AFECON_CLKEN1, 2, 0x01C0},
	{"CLKSEL", REG_AFECON_CLKSEL, 2, 0},
	{"TRIGSEQ", REG_AFECON_TRIGSEQ, 2, 0},
	{"WUPTMR_CON", REG_WUPTMR_CON, 2, 0},
	{"WUPTMR_SEQORDER", REG_WUPTMR_SEQORDER, 2, 0},
	{"WUPTMR_SEQ0WUPL", REG_WUPTMR_SEQ0WUPL, 2, 0xFFFF},
	{"WUPTMR_SEQ0WUPH", REG_WUPTMR_SEQ0WUPH, 2, 0xF},
	{"WUPTMR_SEQ0SLPL", REG_WUPTMR_SEQ0SLPL, 2, 0xFFFF},
	{"WUPTMR_SEQ0SLPH", REG_WUPTMR_SEQ0SLPH, 2, 0xF},
	{"AFECON", REG_AFE_AFECON, 4, 0x00080000},
	{"SEQCON", REG_AFE_SEQCON, 4, 0x00000002},
	{"FIFOCON", REG_AFE_FIFOCON, 4, 0x00001000},
	{"SWCON", REG_AFE_SWCON, 4, 0x0000FFFF},
	{"HSDACCON", REG_AFE_HSDACCON, 4, 0x0000001E},
	{"WGCON", REG_AFE_WGCON, 4, 0x00000030},
	{"WGFCW", REG_AFE_WGFCW, 4, 0},
	{"WGPHASE", REG_AFE_WGPHASE, 4, 0},
	{"WGOFFSET", REG_AFE_WGOFFSET, 4, 0},
	{"WGAMPLITUDE", REG_AFE_WGAMPLITUDE, 4, 0},
	{"ADCFILTERCON", REG_AFE_ADCFILTERCON, 4, 0x00000301},
	{"LPREFBUFCON", REG_AFE_LPREFBUFCON, 4, 0},
	{"SYNCEXTDEVICE", REG_AFE_SYNCEXTDEVICE, 4, 0},
	{"SEQCRC", REG_AFE_SEQCRC, 4, 0x00000001},
	{"SEQCNT", REG_AFE_SEQCNT, 4, 0},
	{"DATAFIFORD", REG_AFE_DATAFIFORD, 4, 0},
	{"CMDFIFOWRITE", REG_AFE_CMDFIFOWRITE, 4, 0},
	{"ADCDAT", REG_AFE_ADCDAT, 4, 0},
	{"DFTREAL", REG_AFE_DFTREAL, 4, 0},
	{"DFTIMAG", REG_AFE_DFTIMAG, 4, 0},
	{"AFEGENINTSTA", REG_AFE_AFEGENINTSTA, 4, 0},
	{"DFTCON", REG_AFE_DFTCON, 4, 0x00000090},
	{"LPTIASW0", REG_AFE_LPTIASW0, 4, 0},
	{"LPTIACON0", REG_AFE_LPTIACON0, 4, 0x00000003},
	{"HSRTIACON", REG_AFE_HSRTIACON, 4, 0x0000000F},
	{"DE0RESCON", REG_AFE_DE0RESCON, 4, 0x000000FF},
	{"HSTIACON", REG_AFE_HSTIACON, 4, 0},
	{"SEQSLPLOCK", REG_AFE_SEQSLPLOCK, 4, 0},
	{"SEQTRGSLP", REG_AFE_SEQTRGSLP, 4, 0},
	{"LPDACDAT0", REG_AFE_LPDACDAT0, 4, 0},
	{"LPDACSW0", REG_AFE_LPDACSW0, 4, 0},
	{"LPDACCON0", REG_AFE_LPDACCON0, 4, 0x00000002},
	{"DSWFULLCON", REG_AFE_DSWFULLCON, 4, 0},
	{"NSWFULLCON", REG_AFE_NSWFULLCON, 4, 0},
	{"PSWFULLCON", REG_AFE_PSWFULLCON, 4, 0},
	{"TSWFULLCON", REG_AFE_TSWFULLCON, 4, 0},
	{"BUFSENCON", REG_AFE_BUFSENCON, 4, 0x00000037},
	{"ADCCON", REG_AFE_ADCCON, 4, 0},
	{"SEQ0INFO", REG_AFE_SEQ0INFO, 4, 0},
	{"SEQ2INFO", REG_AFE_SEQ2INFO, 4, 0},
	{"CMDFIFOWADDR", REG_AFE_CMDFIFOWADDR, 4, 0},
	{"CMDDATACON", REG_AFE_CMDDATACON, 4, 0x00000410},
	{"DATAFIFOTHRES", REG_AFE_DATAFIFOTHRES, 4, 0},
	{"SEQ3INFO", REG_AFE_SEQ3INFO, 4, 0},
	{"SEQ1INFO", REG_AFE_SEQ1INFO, 4, 0},
	{"REPEATADCCNV", REG_AFE_REPEATADCCNV, 4, 0x00000160},
	{"FIFOCNTSTA", REG_AFE_FIFOCNTSTA, 4, 0},
	{"INTCPOL", REG_INTC_INTCPOL, 4, 0},
	{"INTCCLR", REG_INTC_INTCCLR, 4, 0},
	{"INTCSEL0", REG_INTC_INTCSEL0, 4, 0x00002000},
	{"INTCSEL1", REG_INTC_INTCSEL1, 4, 0},
	{"INTCFLAG0", REG_INTC_INTCFLAG0, 4, 0},
	{"INTCFLAG1", REG_INTC_INTCFLAG1, 4, 0},
}
