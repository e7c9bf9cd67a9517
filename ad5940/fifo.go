// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ad5940

import (
	"fmt"

	"github.com/go-lpc/bioz/ad5940/internal/regs"
)

// FIFO data sources.
const (
	FIFOSRC_SINC3      = regs.FIFOSRC_SINC3
	FIFOSRC_DFT        = regs.FIFOSRC_DFT
	FIFOSRC_SINC2NOTCH = regs.FIFOSRC_SINC2NOTCH
	FIFOSRC_VAR        = regs.FIFOSRC_VAR
	FIFOSRC_MEAN       = regs.FIFOSRC_MEAN
)

// FIFOCfg configures the data FIFO.
type FIFOCfg struct {
	Enable bool
	Src    uint32 // FIFOSRC_xxx
	Thresh uint32 // threshold, in words
}

func (dev *Device) FIFOCfg(cfg FIFOCfg) error {
	err := dev.direct("configure data FIFO")
	if err != nil {
		return err
	}

	// disable while reconfiguring.
	err = dev.WriteReg(regs.REG_AFE_FIFOCON, 0)
	if err != nil {
		return fmt.Errorf("ad5940: could not disable data FIFO: %w", err)
	}
	if !cfg.Enable {
		return nil
	}

	err = dev.update(
		regs.REG_AFE_CMDDATACON,
		regs.BITM_CMDDATACON_DATAMEMMDE|regs.BITM_CMDDATACON_DATAMEMSEL,
		regs.MEMMODE_FIFO<<regs.BITP_CMDDATACON_DATAMEMMDE|fifoMem4KB<<regs.BITP_CMDDATACON_DATAMEMSEL,
	)
	if err != nil {
		return fmt.Errorf("ad5940: could not configure data memory: %w", err)
	}

	err = dev.FIFOThresh(cfg.Thresh)
	if err != nil {
		return err
	}

	v := uint32(regs.BITM_FIFOCON_DATAFIFOEN) |
		cfg.Src<<regs.BITP_FIFOCON_DATAFIFOSRCSEL&regs.BITM_FIFOCON_DATAFIFOSRCSEL
	err = dev.WriteReg(regs.REG_AFE_FIFOCON, v)
	if err != nil {
		return fmt.Errorf("ad5940: could not enable data FIFO: %w", err)
	}
	return nil
}

// FIFOThresh sets the data FIFO threshold, in words.
func (dev *Device) FIFOThresh(n uint32) error {
	v := n << regs.BITP_DATAFIFOTHRES_HIGHTHRES & regs.BITM_DATAFIFOTHRES_HIGHTHRES
	err := dev.WriteReg(regs.REG_AFE_DATAFIFOTHRES, v)
	if err != nil {
		return fmt.Errorf("ad5940: could not set FIFO threshold: %w", err)
	}
	return nil
}

// FIFOCount returns the number of words held in the data FIFO.
func (dev *Device) FIFOCount() (int, error) {
	err := dev.direct("read FIFO count")
	if err != nil {
		return 0, err
	}
	v, err := dev.ReadReg(regs.REG_AFE_FIFOCNTSTA)
	if err != nil {
		return 0, fmt.Errorf("ad5940: could not read FIFO count: %w", err)
	}
	return int(v&regs.BITM_FIFOCNTSTA_DATAFIFOCNT) >> regs.BITP_FIFOCNTSTA_DATAFIFOCNT, nil
}

// FIFORead reads len(dst) words from the data FIFO.
func (dev *Device) FIFORead(dst []uint32) error {
	err := dev.direct("read FIFO")
	if err != nil {
		return err
	}
	if len(dst) == 0 {
		return nil
	}
	err = dev.bus.ReadFIFO(dst)
	if err != nil {
		return &BusError{Op: "fifo", Addr: regs.REG_AFE_DATAFIFORD, Err: err}
	}
	return nil
}
