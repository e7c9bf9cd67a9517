// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ad5940

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log"
	"strings"
	"testing"
	"time"

	"github.com/go-lpc/bioz/ad5940/ad5940test"
	"github.com/go-lpc/bioz/ad5940/internal/regs"
	"github.com/go-lpc/bioz/ad5940/seq"
)

func newTestDevice(chip *ad5940test.Chip) *Device {
	return New(chip, WithLogger(log.New(io.Discard, "", 0)))
}

func TestWakeUp(t *testing.T) {
	errBus := errors.New("spi: transfer failed")
	for _, tc := range []struct {
		name  string
		fails int
		rerr  error
		want  error
	}{
		{name: "awake"},
		{name: "asleep", fails: 3},
		{name: "last-try", fails: 9},
		{name: "dead", fails: 10, want: ErrWakeupFailed},
		{name: "bus-error", rerr: errBus, want: errBus},
	} {
		t.Run(tc.name, func(t *testing.T) {
			chip := ad5940test.New()
			chip.WakeFailures = tc.fails
			if tc.rerr != nil {
				chip.ReadErr = func(uint16) error { return tc.rerr }
			}
			dev := newTestDevice(chip)
			err := dev.WakeUp(DefaultWakeupTries)
			switch {
			case tc.want == nil && err != nil:
				t.Fatalf("could not wake up: %+v", err)
			case tc.want != nil && !errors.Is(err, tc.want):
				t.Fatalf("invalid error: got=%+v, want=%+v", err, tc.want)
			}
			if tc.rerr != nil {
				var berr *BusError
				if !errors.As(err, &berr) {
					t.Fatalf("bus error not reported as *BusError: %T", err)
				}
				if berr.Addr != regs.REG_AFECON_ADIID {
					t.Fatalf("invalid bus error address: 0x%04x", berr.Addr)
				}
			}
		})
	}
}

func TestRecording(t *testing.T) {
	chip := ad5940test.New()
	dev := newTestDevice(chip)

	var gen seq.Generator
	err := gen.Init(make([]uint32, 32))
	if err != nil {
		t.Fatalf("could not init generator: %+v", err)
	}
	dev.SetGenerator(&gen)
	gen.SetRecording(true)

	err = dev.AFECtrl(AFECTRL_HSDACPWR|AFECTRL_ADCPWR, true)
	if err != nil {
		t.Fatalf("could not record AFE control: %+v", err)
	}
	err = dev.AFECtrl(AFECTRL_ADCPWR, false)
	if err != nil {
		t.Fatalf("could not record AFE control: %+v", err)
	}
	err = dev.Wait(100)
	if err != nil {
		t.Fatalf("could not record wait: %+v", err)
	}

	if len(chip.Log) != 0 {
		t.Fatalf("recording touched the bus: %+v", chip.Log)
	}

	err = dev.WUPTCtrl(true)
	if !errors.Is(err, ErrRecording) {
		t.Fatalf("invalid error for non-sequenceable op: %+v", err)
	}

	cmds, err := gen.Fetch()
	if err != nil {
		t.Fatalf("could not fetch sequence: %+v", err)
	}

	reset := regs.Reset(regs.REG_AFE_AFECON)
	want := []seq.Command{
		seq.Write(regs.REG_AFE_AFECON, reset|AFECTRL_HSDACPWR|AFECTRL_ADCPWR),
		seq.Write(regs.REG_AFE_AFECON, reset|AFECTRL_HSDACPWR),
		seq.Wait(100),
	}
	if len(cmds) != len(want) {
		t.Fatalf("invalid sequence length: got=%d, want=%d", len(cmds), len(want))
	}
	for i := range want {
		if got := seq.Decode(cmds[i]); got != want[i] {
			t.Fatalf("cmd[%d]: got=%v, want=%v", i, got, want[i])
		}
	}

	// not recording anymore: accesses go to the bus.
	err = dev.AFECtrl(AFECTRL_WG, true)
	if err != nil {
		t.Fatalf("could not control AFE: %+v", err)
	}
	if got := chip.Reg(regs.REG_AFE_AFECON); got&AFECTRL_WG == 0 {
		t.Fatalf("AFE control not applied: 0x%08x", got)
	}
	err = dev.Wait(10)
	if !errors.Is(err, seq.ErrInvalidArgument) {
		t.Fatalf("invalid error for wait outside of sequence: %+v", err)
	}
}

func TestBusError(t *testing.T) {
	chip := ad5940test.New()
	chip.WriteErr = func(addr uint16) error {
		if addr == regs.REG_AFE_WGFCW {
			return io.ErrUnexpectedEOF
		}
		return nil
	}
	dev := newTestDevice(chip)
	err := dev.WGFreqCtrl(50e3, 16e6)
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Fatalf("invalid error: %+v", err)
	}
	var berr *BusError
	if !errors.As(err, &berr) {
		t.Fatalf("invalid error type: %T", err)
	}
	if berr.Op != "write" || berr.Addr != regs.REG_AFE_WGFCW {
		t.Fatalf("invalid bus error: %+v", berr)
	}
}

func TestSEQInstall(t *testing.T) {
	chip := ad5940test.New()
	dev := newTestDevice(chip)

	info := seq.Info{
		ID:   seq.SEQ1,
		Addr: 16,
		Cmds: []uint32{
			seq.Write(regs.REG_AFE_AFECON, AFECTRL_WG).Encode(),
			seq.Wait(800).Encode(),
			seq.Stop().Encode(),
		},
	}
	err := dev.SEQInstall(info)
	if err != nil {
		t.Fatalf("could not install sequence: %+v", err)
	}

	got := chip.SRAM(16, 3)
	for i := range info.Cmds {
		if got[i] != info.Cmds[i] {
			t.Fatalf("sram[%d]: got=0x%08x, want=0x%08x", 16+i, got[i], info.Cmds[i])
		}
	}
	if got, want := chip.Reg(regs.REG_AFE_SEQ1INFO), uint32(3<<16|16); got != want {
		t.Fatalf("invalid SEQ1INFO: got=0x%08x, want=0x%08x", got, want)
	}

	err = dev.SEQCfg(SEQCfg{Enable: true})
	if err != nil {
		t.Fatalf("could not enable sequencer: %+v", err)
	}
	err = dev.SEQTrigger(seq.SEQ1)
	if err != nil {
		t.Fatalf("could not trigger sequence: %+v", err)
	}
	err = dev.WaitFlag(context.Background(), INTC1, INTSRC_ENDSEQ, time.Second)
	if err != nil {
		t.Fatalf("sequence did not end: %+v", err)
	}
	if got := chip.Reg(regs.REG_AFE_AFECON); got&AFECTRL_WG == 0 {
		t.Fatalf("sequence did not run: AFECON=0x%08x", got)
	}
	if got := chip.Reg(regs.REG_AFE_SEQCON); got&regs.BITM_SEQCON_SEQEN != 0 {
		t.Fatalf("sequence did not stop the sequencer: SEQCON=0x%08x", got)
	}

	big := seq.Info{Addr: SeqMemSize - 2, Cmds: make([]uint32, 3)}
	err = dev.SEQInstall(big)
	if !errors.Is(err, seq.ErrBufferExhausted) {
		t.Fatalf("invalid error for oversized sequence: %+v", err)
	}
}

func TestWaitFlagTimeout(t *testing.T) {
	chip := ad5940test.New()
	dev := newTestDevice(chip)

	err := dev.WaitFlag(context.Background(), INTC1, INTSRC_ENDSEQ, 5*time.Millisecond)
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("invalid error: %+v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = dev.WaitFlag(ctx, INTC1, INTSRC_ENDSEQ, time.Hour)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("invalid error: %+v", err)
	}
}

func TestFIFO(t *testing.T) {
	chip := ad5940test.New()
	dev := newTestDevice(chip)

	err := dev.FIFOCfg(FIFOCfg{Enable: true, Src: FIFOSRC_DFT, Thresh: 4})
	if err != nil {
		t.Fatalf("could not configure FIFO: %+v", err)
	}
	chip.PushFIFO(1, 2, 3)
	ok, err := dev.INTCTestFlag(INTC0, INTSRC_DATAFIFOTHRESH)
	if err != nil {
		t.Fatalf("could not test flag: %+v", err)
	}
	if ok {
		t.Fatalf("threshold flag raised below threshold")
	}
	chip.PushFIFO(4, 5)
	ok, err = dev.INTCTestFlag(INTC0, INTSRC_DATAFIFOTHRESH)
	if err != nil {
		t.Fatalf("could not test flag: %+v", err)
	}
	if !ok {
		t.Fatalf("threshold flag not raised")
	}

	n, err := dev.FIFOCount()
	if err != nil {
		t.Fatalf("could not read FIFO count: %+v", err)
	}
	if n != 5 {
		t.Fatalf("invalid FIFO count: got=%d, want=5", n)
	}
	buf := make([]uint32, 4)
	err = dev.FIFORead(buf)
	if err != nil {
		t.Fatalf("could not read FIFO: %+v", err)
	}
	if buf[0] != 1 || buf[3] != 4 {
		t.Fatalf("invalid FIFO data: %v", buf)
	}
	err = dev.INTCClrFlag(INTSRC_DATAFIFOTHRESH)
	if err != nil {
		t.Fatalf("could not clear flag: %+v", err)
	}
	ok, _ = dev.INTCTestFlag(INTC0, INTSRC_DATAFIFOTHRESH)
	if ok {
		t.Fatalf("threshold flag not cleared")
	}

	err = dev.FIFORead(make([]uint32, 2))
	var berr *BusError
	if !errors.As(err, &berr) || berr.Op != "fifo" {
		t.Fatalf("invalid error on FIFO underflow: %+v", err)
	}
}

func TestWUPT(t *testing.T) {
	chip := ad5940test.New()
	dev := newTestDevice(chip)

	slp, err := WUPTSleepCount(32000, 20)
	if err != nil {
		t.Fatalf("could not compute sleep count: %+v", err)
	}
	if slp != 1597 {
		t.Fatalf("invalid sleep count: got=%d, want=1597", slp)
	}

	var cfg WUPTCfg
	cfg.Enable = true
	cfg.Order[0] = seq.SEQ0
	cfg.Wakeup[0] = 1
	cfg.Sleep[0] = slp
	err = dev.WUPTCfg(cfg)
	if err != nil {
		t.Fatalf("could not configure wake-up timer: %+v", err)
	}
	if got := chip.Reg(regs.REG_WUPTMR_SEQ0SLPL); got != 1597 {
		t.Fatalf("invalid sleep count low: %d", got)
	}
	if got := chip.Reg(regs.REG_WUPTMR_SEQ0WUPL); got != 1 {
		t.Fatalf("invalid wakeup count low: %d", got)
	}
	if got := chip.Reg(regs.REG_WUPTMR_CON); got&regs.BITM_WUPTMR_CON_EN == 0 {
		t.Fatalf("wake-up timer not enabled")
	}

	err = dev.WUPTCtrl(false)
	if err != nil {
		t.Fatalf("could not stop wake-up timer: %+v", err)
	}
	if chip.WakeupTimer() {
		t.Fatalf("wake-up timer still running")
	}

	for _, tc := range []struct {
		clk, odr float64
	}{
		{32000, 0},
		{32000, -1},
		{32000, 20000},
		{0, 20},
	} {
		_, err := WUPTSleepCount(tc.clk, tc.odr)
		if err == nil {
			t.Errorf("expected an error for clk=%v, odr=%v", tc.clk, tc.odr)
		}
	}
}

func TestSleep(t *testing.T) {
	chip := ad5940test.New()
	dev := newTestDevice(chip)

	err := dev.SleepKey(false)
	if err != nil {
		t.Fatalf("could not lock sleep key: %+v", err)
	}
	err = dev.EnterSleep()
	if err != nil {
		t.Fatalf("could not enter sleep: %+v", err)
	}
	if chip.Sleeps != 0 {
		t.Fatalf("chip slept while locked")
	}
	err = dev.Hibernate()
	if err != nil {
		t.Fatalf("could not hibernate: %+v", err)
	}
	if chip.Sleeps != 1 {
		t.Fatalf("chip did not sleep: %d", chip.Sleeps)
	}
	if got := chip.Reg(regs.REG_AFE_SEQSLPLOCK); got != regs.SLPKEY_UNLOCK {
		t.Fatalf("invalid sleep key: 0x%x", got)
	}
}

func TestDumpRegisters(t *testing.T) {
	chip := ad5940test.New()
	dev := newTestDevice(chip)

	buf := new(bytes.Buffer)
	err := dev.DumpRegisters(buf)
	if err != nil {
		t.Fatalf("could not dump registers: %+v", err)
	}
	for _, want := range []string{
		"ADIID            0x0400: 0x00004144\n",
		"CHIPID           0x0404: 0x00005502\n",
		"AFECON           0x2000: 0x00080000\n",
	} {
		if !strings.Contains(buf.String(), want) {
			t.Fatalf("missing line %q in dump:\n%s", want, buf.String())
		}
	}
	if strings.Contains(buf.String(), "DATAFIFORD") {
		t.Fatalf("dump should not read the data FIFO")
	}
}

func TestRtiaCal(t *testing.T) {
	chip := ad5940test.New()
	dev := newTestDevice(chip)

	var (
		v = [2]int32{12000, -3000}
		i = [2]int32{-24000, 1000}
	)
	chip.PushDFT(v, i)

	cfg := RtiaCalCfg{
		SysClk:    16e6,
		AdcClk:    16e6,
		Freq:      50e3,
		Rcal:      10e3,
		Rtia:      HSTIARTIA_1K,
		PGA:       ADCPGA_1,
		Amplitude: 2047,
		Filt: DFTCfg{
			Sinc3OSR: ADCSINC3OSR_2,
			Sinc2OSR: ADCSINC2OSR_22,
			DFTNum:   DFTNUM_8192,
			DFTSrc:   DFTSRC_SINC3,
			Hanning:  true,
		},
	}
	cal, err := dev.RtiaCal(context.Background(), cfg)
	if err != nil {
		t.Fatalf("could not calibrate RTIA: %+v", err)
	}

	raw := Ratio(DFT{v[0], v[1]}, DFT{i[0], i[1]})
	got := raw.Mul(cal)
	if !near(got.Real, cfg.Rcal, 1e-6) || !near(got.Imag, 0, 1e-6) {
		t.Fatalf("calibrated reference is not Rcal: got=%+v", got)
	}

	if got := chip.Reg(regs.REG_AFE_AFECON); got&calPowerBlocks != 0 {
		t.Fatalf("analog blocks left powered: AFECON=0x%08x", got)
	}
	if got, want := chip.Reg(regs.REG_AFE_WGFCW), FreqWord(50e3, 16e6); got != want {
		t.Fatalf("invalid frequency word: got=%d, want=%d", got, want)
	}

	// degenerate current measurement.
	chip.PushDFT(v, [2]int32{0, 0})
	_, err = dev.RtiaCal(context.Background(), cfg)
	if err == nil {
		t.Fatalf("expected an error for a null current")
	}

	cfg.Rcal = 0
	_, err = dev.RtiaCal(context.Background(), cfg)
	if err == nil {
		t.Fatalf("expected an error for a null Rcal")
	}
}
