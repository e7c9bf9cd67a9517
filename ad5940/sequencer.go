// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ad5940

import (
	"fmt"

	"github.com/go-lpc/bioz/ad5940/internal/regs"
	"github.com/go-lpc/bioz/ad5940/seq"
)

// SeqMemSize is the size, in words, of the SRAM partition holding
// sequencer programs. The rest of the 6kB SRAM backs the data FIFO.
const SeqMemSize = 512

const (
	seqMem2KB  = 1 // CMDMEMSEL code for a 2kB sequencer partition
	fifoMem4KB = 3 // DATAMEMSEL code for a 4kB data FIFO
)

// SEQCfg configures the sequencer.
type SEQCfg struct {
	Enable  bool
	WrTimer uint32 // clocks inserted after each sequencer write
}

func (dev *Device) SEQCfg(cfg SEQCfg) error {
	err := dev.direct("configure sequencer")
	if err != nil {
		return err
	}
	err = dev.update(
		regs.REG_AFE_CMDDATACON,
		regs.BITM_CMDDATACON_CMDMEMMDE|regs.BITM_CMDDATACON_CMDMEMSEL,
		regs.MEMMODE_SEQ<<regs.BITP_CMDDATACON_CMDMEMMDE|seqMem2KB<<regs.BITP_CMDDATACON_CMDMEMSEL,
	)
	if err != nil {
		return fmt.Errorf("ad5940: could not configure sequencer memory: %w", err)
	}

	v := cfg.WrTimer << regs.BITP_SEQCON_SEQWRTMR & regs.BITM_SEQCON_SEQWRTMR
	if cfg.Enable {
		v |= regs.BITM_SEQCON_SEQEN
	}
	err = dev.WriteReg(regs.REG_AFE_SEQCON, v)
	if err != nil {
		return fmt.Errorf("ad5940: could not configure sequencer: %w", err)
	}
	return nil
}

// SEQCtrl enables or disables the sequencer.
func (dev *Device) SEQCtrl(enable bool) error {
	v := uint32(0)
	if enable {
		v = regs.BITM_SEQCON_SEQEN
	}
	err := dev.update(regs.REG_AFE_SEQCON, regs.BITM_SEQCON_SEQEN, v)
	if err != nil {
		return fmt.Errorf("ad5940: could not control sequencer: %w", err)
	}
	return nil
}

// SEQCmdWrite writes cmds into the sequencer SRAM starting at word addr.
func (dev *Device) SEQCmdWrite(addr uint32, cmds []uint32) error {
	err := dev.direct("write sequencer SRAM")
	if err != nil {
		return err
	}
	if int(addr)+len(cmds) > SeqMemSize {
		return fmt.Errorf(
			"ad5940: sequence [%d, %d) does not fit in sequencer SRAM (%d words): %w",
			addr, int(addr)+len(cmds), SeqMemSize, seq.ErrBufferExhausted,
		)
	}
	for i, cmd := range cmds {
		err = dev.WriteReg(regs.REG_AFE_CMDFIFOWADDR, addr+uint32(i))
		if err != nil {
			return fmt.Errorf("ad5940: could not set SRAM address: %w", err)
		}
		err = dev.WriteReg(regs.REG_AFE_CMDFIFOWRITE, cmd)
		if err != nil {
			return fmt.Errorf("ad5940: could not write SRAM word %d: %w", addr+uint32(i), err)
		}
	}
	return nil
}

// SEQInfoCfg registers the location of a sequence in SRAM.
func (dev *Device) SEQInfoCfg(info seq.Info) error {
	v := uint32(info.Len())<<regs.BITP_SEQINFO_LEN&regs.BITM_SEQINFO_LEN |
		info.Addr&regs.BITM_SEQINFO_ADDR
	err := dev.WriteReg(info.ID.InfoReg(), v)
	if err != nil {
		return fmt.Errorf("ad5940: could not configure SEQ%d info: %w", info.ID, err)
	}
	return nil
}

// SEQInstall writes the sequence into SRAM and registers it.
func (dev *Device) SEQInstall(info seq.Info) error {
	err := dev.SEQCmdWrite(info.Addr, info.Cmds)
	if err != nil {
		return err
	}
	return dev.SEQInfoCfg(info)
}

// SEQTrigger starts the sequence id from the host.
func (dev *Device) SEQTrigger(id seq.ID) error {
	err := dev.direct("trigger sequence")
	if err != nil {
		return err
	}
	err = dev.WriteReg(regs.REG_AFECON_TRIGSEQ, 1<<uint(id))
	if err != nil {
		return fmt.Errorf("ad5940: could not trigger SEQ%d: %w", id, err)
	}
	return nil
}

// SEQGpioCtrl drives the GPIOs configured as sequencer outputs.
func (dev *Device) SEQGpioCtrl(pins uint32) error {
	err := dev.WriteReg(regs.REG_AFE_SYNCEXTDEVICE, pins&0xFF)
	if err != nil {
		return fmt.Errorf("ad5940: could not drive sequencer GPIOs: %w", err)
	}
	return nil
}

// Wait appends a WAIT instruction to the recorded sequence.
func (dev *Device) Wait(clocks uint32) error {
	if !dev.recording() {
		return fmt.Errorf("ad5940: wait outside of a sequence: %w", seq.ErrInvalidArgument)
	}
	return dev.gen.Append(seq.Wait(clocks))
}

// Insert appends raw instructions to the recorded sequence.
func (dev *Device) Insert(cmds ...seq.Command) error {
	if !dev.recording() {
		return fmt.Errorf("ad5940: instruction outside of a sequence: %w", seq.ErrInvalidArgument)
	}
	return dev.gen.Append(cmds...)
}

// SleepKey controls whether the AFE may enter sleep.
func (dev *Device) SleepKey(unlock bool) error {
	v := uint32(regs.SLPKEY_LOCK)
	if unlock {
		v = regs.SLPKEY_UNLOCK
	}
	err := dev.WriteReg(regs.REG_AFE_SEQSLPLOCK, v)
	if err != nil {
		return fmt.Errorf("ad5940: could not set sleep key: %w", err)
	}
	return nil
}

// EnterSleep puts the AFE to sleep.
func (dev *Device) EnterSleep() error {
	for _, v := range []uint32{0, 1} {
		err := dev.WriteReg(regs.REG_AFE_SEQTRGSLP, v)
		if err != nil {
			return fmt.Errorf("ad5940: could not enter sleep: %w", err)
		}
	}
	return nil
}

// Hibernate unlocks the sleep key and puts the AFE to sleep.
func (dev *Device) Hibernate() error {
	err := dev.SleepKey(true)
	if err != nil {
		return err
	}
	return dev.EnterSleep()
}
