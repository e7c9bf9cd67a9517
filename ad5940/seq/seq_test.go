// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package seq

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/go-lpc/bioz/ad5940/internal/regs"
)

func TestEncode(t *testing.T) {
	for _, tc := range []struct {
		name string
		cmd  Command
		want uint32
	}{
		{"wait", Wait(800), 0x00000320},
		{"wait-max", Wait(0xFFFFFFFF), 0x3FFFFFFF},
		{"timeout", Timeout(10), 0x4000000A},
		{"write-afecon", Write(regs.REG_AFE_AFECON, 0x123456), 0x80123456},
		{"write-seqcon", Write(regs.REG_AFE_SEQCON, 0), 0x81000000},
		{"write-trunc", Write(regs.REG_AFE_WGFCW, 0xFF123456), 0x8C123456},
		{"stop", Stop(), 0x81000000},
		{"sleep", Sleep(), 0x80000001 | uint32((regs.REG_AFE_SEQTRGSLP>>2)&0x7F)<<24},
		{"int2", Int(2), 0x80000004 | uint32((regs.REG_AFE_AFEGENINTSTA>>2)&0x7F)<<24},
	} {
		t.Run(tc.name, func(t *testing.T) {
			got := tc.cmd.Encode()
			if got != tc.want {
				t.Fatalf("invalid encoding: got=0x%08x, want=0x%08x", got, tc.want)
			}
		})
	}
}

func TestDecode(t *testing.T) {
	for _, tc := range []struct {
		v    uint32
		want Command
	}{
		{0x00000320, Command{Kind: KindWait, Clocks: 800}},
		{0x4000000A, Command{Kind: KindTimeout, Clocks: 10}},
		{0x81000000, Command{Kind: KindWrite, Addr: regs.REG_AFE_SEQCON}},
		{0xFF000001, Command{Kind: KindWrite, Addr: 0x21FC, Data: 1}},
	} {
		got := Decode(tc.v)
		if got != tc.want {
			t.Errorf("decode(0x%08x): got=%+v, want=%+v", tc.v, got, tc.want)
		}
	}
}

func TestRoundTrip(t *testing.T) {
	rnd := rand.New(rand.NewSource(1234))
	for i := 0; i < 1000; i++ {
		var cmd Command
		switch rnd.Intn(3) {
		case 0:
			cmd = Wait(rnd.Uint32())
		case 1:
			cmd = Timeout(rnd.Uint32())
		case 2:
			addr := uint16(regs.AFE_BASE + 4*rnd.Intn(128))
			cmd = Write(addr, rnd.Uint32())
		}
		if got := Decode(cmd.Encode()); got != cmd {
			t.Fatalf("round-trip failed: got=%+v, want=%+v", got, cmd)
		}
	}
}

func TestGenerator(t *testing.T) {
	var gen Generator
	err := gen.Init(nil)
	if !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("invalid error for nil buffer: %+v", err)
	}

	buf := make([]uint32, 4)
	err = gen.Init(buf)
	if err != nil {
		t.Fatalf("could not init generator: %+v", err)
	}

	gen.SetRecording(true)
	if got, want := gen.Read(regs.REG_AFE_AFECON), uint32(regs.Reset(regs.REG_AFE_AFECON)); got != want {
		t.Fatalf("invalid shadow reset value: got=0x%x, want=0x%x", got, want)
	}

	err = gen.Write(regs.REG_AFE_AFECON, 0x100)
	if err != nil {
		t.Fatalf("could not record write: %+v", err)
	}
	if got, want := gen.Read(regs.REG_AFE_AFECON), uint32(0x100); got != want {
		t.Fatalf("invalid shadow value: got=0x%x, want=0x%x", got, want)
	}

	err = gen.Append(Wait(10), Wait(20), Stop())
	if err != nil {
		t.Fatalf("could not append instructions: %+v", err)
	}
	if got, want := gen.Len(), 4; got != want {
		t.Fatalf("invalid length: got=%d, want=%d", got, want)
	}

	err = gen.Insert(Wait(30).Encode())
	if !errors.Is(err, ErrBufferExhausted) {
		t.Fatalf("invalid error on exhausted buffer: %+v", err)
	}
	if got, want := gen.Len(), 4; got != want {
		t.Fatalf("length advanced past capacity: got=%d, want=%d", got, want)
	}

	_, err = gen.Fetch()
	if !errors.Is(err, ErrBufferExhausted) {
		t.Fatalf("fetch should report latched error: %+v", err)
	}

	// a new recording clears the latched error, not the shadow.
	gen.SetRecording(true)
	if gen.Err() != nil {
		t.Fatalf("latched error not cleared: %+v", gen.Err())
	}
	if got, want := gen.Read(regs.REG_AFE_AFECON), uint32(0x100); got != want {
		t.Fatalf("shadow cleared by new recording: got=0x%x, want=0x%x", got, want)
	}
	gen.ResetShadow()
	if got, want := gen.Read(regs.REG_AFE_AFECON), regs.Reset(regs.REG_AFE_AFECON); got != want {
		t.Fatalf("shadow not cleared: got=0x%x, want=0x%x", got, want)
	}
	_ = gen.Append(Wait(1), Stop())
	cmds, err := gen.Fetch()
	if err != nil {
		t.Fatalf("could not fetch sequence: %+v", err)
	}
	if gen.Recording() {
		t.Fatalf("fetch should stop recording")
	}
	want := []uint32{Wait(1).Encode(), Stop().Encode()}
	if len(cmds) != len(want) {
		t.Fatalf("invalid sequence length: got=%d, want=%d", len(cmds), len(want))
	}
	for i := range want {
		if cmds[i] != want[i] {
			t.Fatalf("cmd[%d]: got=0x%08x, want=0x%08x", i, cmds[i], want[i])
		}
	}
	if &cmds[0] != &buf[0] {
		t.Fatalf("fetched sequence should alias the generator buffer")
	}
}

func TestGeneratorWriteWindow(t *testing.T) {
	var gen Generator
	_ = gen.Init(make([]uint32, 8))
	gen.SetRecording(true)

	for _, tc := range []struct {
		name string
		addr uint16
		v    uint32
	}{
		{"outside-window", regs.REG_AFECON_TRIGSEQ, 1},
		{"fifo-count", regs.REG_AFE_FIFOCNTSTA, 1},
		{"unaligned", regs.REG_AFE_AFECON + 1, 1},
		{"too-wide", regs.REG_AFE_AFECON, 1 << 24},
	} {
		t.Run(tc.name, func(t *testing.T) {
			err := gen.Write(tc.addr, tc.v)
			if !errors.Is(err, ErrInvalidArgument) {
				t.Fatalf("invalid error: %+v", err)
			}
		})
	}
	if got := gen.Len(); got != 0 {
		t.Fatalf("invalid writes recorded: %d", got)
	}
}

func TestInfo(t *testing.T) {
	info := Info{ID: SEQ1, Addr: 10, Cmds: make([]uint32, 5)}
	if got, want := info.End(), uint32(15); got != want {
		t.Fatalf("invalid end: got=%d, want=%d", got, want)
	}
	for _, tc := range []struct {
		id   ID
		want uint16
	}{
		{SEQ0, regs.REG_AFE_SEQ0INFO},
		{SEQ1, regs.REG_AFE_SEQ1INFO},
		{SEQ2, regs.REG_AFE_SEQ2INFO},
		{SEQ3, regs.REG_AFE_SEQ3INFO},
	} {
		if got := tc.id.InfoReg(); got != tc.want {
			t.Errorf("SEQ%d info: got=0x%04x, want=0x%04x", tc.id, got, tc.want)
		}
	}
}
