// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package regs

import (
	"sort"
	"testing"
)

func TestTableSorted(t *testing.T) {
	if !sort.SliceIsSorted(table, func(i, j int) bool {
		return table[i].Addr < table[j].Addr
	}) {
		t.Fatalf("register table is not sorted")
	}
	seen := make(map[uint16]string)
	for _, d := range table {
		if name, dup := seen[d.Addr]; dup {
			t.Fatalf("duplicate register 0x%04x: %s and %s", d.Addr, name, d.Name)
		}
		seen[d.Addr] = d.Name
	}
}

func TestWidth(t *testing.T) {
	for _, tc := range []struct {
		addr uint16
		want int
	}{
		{REG_AFECON_ADIID, 2},
		{REG_WUPTMR_CON, 2},
		{0x0FFF, 2},
		{0x1000, 4},
		{REG_AFE_AFECON, 4},
		{REG_INTC_INTCFLAG1, 4},
		{0x3018, 2},
	} {
		if got := Width(tc.addr); got != tc.want {
			t.Errorf("width(0x%04x): got=%d, want=%d", tc.addr, got, tc.want)
		}
	}

	for _, d := range table {
		switch d.Width {
		case 2, 4:
		default:
			t.Errorf("%s: invalid width %d", d.Name, d.Width)
		}
		if got := Width(d.Addr); got != d.Width {
			t.Errorf("%s: width(0x%04x): got=%d, want=%d", d.Name, d.Addr, got, d.Width)
		}
	}
	for _, tc := range []struct {
		name string
		want int
	}{
		{"ADIID", 2},
		{"WUPTMR_SEQ0SLPH", 2},
		{"AFECON", 4},
		{"DATAFIFORD", 4},
		{"INTCFLAG1", 4},
	} {
		var d Desc
		for _, v := range table {
			if v.Name == tc.name {
				d = v
				break
			}
		}
		if d.Name == "" {
			t.Fatalf("missing register %s", tc.name)
		}
		if d.Width != tc.want {
			t.Errorf("%s: invalid width: got=%d, want=%d", tc.name, d.Width, tc.want)
		}
	}
}

func TestSeqWindow(t *testing.T) {
	// every register a sequence writes must be addressable with a 7-bit word offset.
	for _, d := range table {
		if !InSeqWindow(d.Addr) {
			continue
		}
		off := (d.Addr >> 2) & 0x7F
		if got := AFE_BASE | off<<2; got != d.Addr {
			t.Errorf("%s: offset round-trip: got=0x%04x, want=0x%04x", d.Name, got, d.Addr)
		}
	}
	if InSeqWindow(REG_AFE_FIFOCNTSTA) {
		t.Fatalf("FIFOCNTSTA must not be sequencer addressable")
	}
	if InSeqWindow(REG_AFE_AFECON + 2) {
		t.Fatalf("unaligned address must not be sequencer addressable")
	}
}

func TestReset(t *testing.T) {
	if got, want := Reset(REG_AFECON_ADIID), uint32(ADIID_VALUE); got != want {
		t.Fatalf("invalid ADIID reset: got=0x%x, want=0x%x", got, want)
	}
	if got := Reset(0x1234); got != 0 {
		t.Fatalf("invalid reset for unknown register: got=0x%x", got)
	}
}
