// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ad5940

import (
	"fmt"

	"github.com/go-lpc/bioz/ad5940/internal/regs"
	"github.com/go-lpc/bioz/ad5940/seq"
)

// WUPTCfg configures the wake-up timer.
//
// The timer walks through Order[0:End+1], triggering each listed
// sequence after it slept Sleep[id] clocks and stayed awake Wakeup[id]
// clocks. Counts are 20-bit values of the wake-up timer clock.
type WUPTCfg struct {
	Enable bool
	End    int // index of the last entry of Order
	Order  [8]seq.ID
	Wakeup [4]uint32
	Sleep  [4]uint32
}

const wuptMaxCount = 0xFFFFF

func (dev *Device) WUPTCfg(cfg WUPTCfg) error {
	err := dev.direct("configure wake-up timer")
	if err != nil {
		return err
	}
	if cfg.End < 0 || cfg.End >= len(cfg.Order) {
		return fmt.Errorf("ad5940: invalid wake-up timer end slot %d", cfg.End)
	}

	// stop the timer while reprogramming.
	err = dev.WUPTCtrl(false)
	if err != nil {
		return err
	}

	order := uint32(0)
	for i, id := range cfg.Order {
		order |= uint32(id&0x3) << (regs.BITP_WUPTMR_SEQORDER_SZ * uint(i))
	}
	err = dev.WriteReg(regs.REG_WUPTMR_SEQORDER, order)
	if err != nil {
		return fmt.Errorf("ad5940: could not set wake-up timer order: %w", err)
	}

	for i := range cfg.Wakeup {
		var (
			wup = cfg.Wakeup[i]
			slp = cfg.Sleep[i]
		)
		if wup > wuptMaxCount || slp > wuptMaxCount {
			return fmt.Errorf(
				"ad5940: invalid wake-up timer counts for SEQ%d (wakeup=%d, sleep=%d)",
				i, wup, slp,
			)
		}
		base := uint16(regs.REG_WUPTMR_SEQ0WUPL + i*regs.WUPTMR_SEQ_STRIDE)
		for j, v := range []uint32{wup & 0xFFFF, wup >> 16, slp & 0xFFFF, slp >> 16} {
			err = dev.WriteReg(base+uint16(4*j), v)
			if err != nil {
				return fmt.Errorf("ad5940: could not set wake-up timer counts for SEQ%d: %w", i, err)
			}
		}
	}

	v := uint32(cfg.End) << regs.BITP_WUPTMR_CON_ENDSEQ & regs.BITM_WUPTMR_CON_ENDSEQ
	if cfg.Enable {
		v |= regs.BITM_WUPTMR_CON_EN
	}
	err = dev.WriteReg(regs.REG_WUPTMR_CON, v)
	if err != nil {
		return fmt.Errorf("ad5940: could not configure wake-up timer: %w", err)
	}
	return nil
}

// WUPTCtrl starts or stops the wake-up timer.
func (dev *Device) WUPTCtrl(enable bool) error {
	err := dev.direct("control wake-up timer")
	if err != nil {
		return err
	}
	v := uint32(0)
	if enable {
		v = regs.BITM_WUPTMR_CON_EN
	}
	err = dev.update(regs.REG_WUPTMR_CON, regs.BITM_WUPTMR_CON_EN, v)
	if err != nil {
		return fmt.Errorf("ad5940: could not control wake-up timer: %w", err)
	}
	return nil
}

// WUPTSleepCount returns the number of wake-up timer clocks to sleep
// between two wakeups for an output data rate of odr Hz.
func WUPTSleepCount(wuptClk, odr float64) (uint32, error) {
	if odr <= 0 || wuptClk <= 0 {
		return 0, fmt.Errorf("ad5940: invalid output data rate %v Hz (clock=%v Hz)", odr, wuptClk)
	}
	// the timer spends a few extra clocks around each wakeup.
	n := int64(wuptClk/odr+0.5) - 3
	if n <= 0 || n > wuptMaxCount {
		return 0, fmt.Errorf("ad5940: output data rate %v Hz out of range (clock=%v Hz)", odr, wuptClk)
	}
	return uint32(n), nil
}
