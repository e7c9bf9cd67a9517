// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ad5940

import (
	"fmt"

	"github.com/go-lpc/bioz/ad5940/internal/regs"
)

// INTC identifies one of the two interrupt controllers.
type INTC uint8

const (
	INTC0 INTC = iota // routed to the GP0 interrupt pin
	INTC1             // polled
)

func (intc INTC) String() string { return fmt.Sprintf("INTC%d", uint8(intc)) }

func (intc INTC) sel() uint16 {
	if intc == INTC0 {
		return regs.REG_INTC_INTCSEL0
	}
	return regs.REG_INTC_INTCSEL1
}

func (intc INTC) flag() uint16 {
	if intc == INTC0 {
		return regs.REG_INTC_INTCFLAG0
	}
	return regs.REG_INTC_INTCFLAG1
}

// Interrupt sources.
const (
	INTSRC_DFTRDY         = regs.INTSRC_DFTRDY
	INTSRC_ENDSEQ         = regs.INTSRC_ENDSEQ
	INTSRC_SEQTIMEOUT     = regs.INTSRC_SEQTIMEOUT
	INTSRC_SEQTIMEOUTERR  = regs.INTSRC_SEQTIMEOUTERR
	INTSRC_DATAFIFOTHRESH = regs.INTSRC_DATAFIFOTHRESH
	INTSRC_DATAFIFOOF     = regs.INTSRC_DATAFIFOOF
	INTSRC_ALLINT         = regs.INTSRC_ALLINT
)

// INTCCfg enables or disables the interrupt sources srcs on intc.
func (dev *Device) INTCCfg(intc INTC, srcs uint32, enable bool) error {
	err := dev.direct("configure interrupts")
	if err != nil {
		return err
	}
	v := uint32(0)
	if enable {
		v = srcs
	}
	err = dev.update(intc.sel(), srcs, v)
	if err != nil {
		return fmt.Errorf("ad5940: could not configure %v: %w", intc, err)
	}
	return nil
}

// INTCTestFlag reports whether any of flags is raised on intc.
func (dev *Device) INTCTestFlag(intc INTC, flags uint32) (bool, error) {
	err := dev.direct("test interrupt flag")
	if err != nil {
		return false, err
	}
	v, err := dev.ReadReg(intc.flag())
	if err != nil {
		return false, fmt.Errorf("ad5940: could not read %v flags: %w", intc, err)
	}
	return v&flags != 0, nil
}

// INTCClrFlag clears the interrupt flags on both controllers.
func (dev *Device) INTCClrFlag(flags uint32) error {
	err := dev.direct("clear interrupt flag")
	if err != nil {
		return err
	}
	err = dev.WriteReg(regs.REG_INTC_INTCCLR, flags)
	if err != nil {
		return fmt.Errorf("ad5940: could not clear interrupt flags 0x%08x: %w", flags, err)
	}
	return nil
}
