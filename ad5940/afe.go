// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ad5940

import (
	"fmt"

	"github.com/go-lpc/bioz/ad5940/internal/regs"
)

// AFE control bits, see AFECtrl.
const (
	AFECTRL_HPREFPWR   = regs.AFECTRL_HPREFPWR
	AFECTRL_HSDACPWR   = regs.AFECTRL_HSDACPWR
	AFECTRL_ADCPWR     = regs.AFECTRL_ADCPWR
	AFECTRL_ADCCNV     = regs.AFECTRL_ADCCNV
	AFECTRL_EXTBUFPWR  = regs.AFECTRL_EXTBUFPWR
	AFECTRL_INAMPPWR   = regs.AFECTRL_INAMPPWR
	AFECTRL_HSTIAPWR   = regs.AFECTRL_HSTIAPWR
	AFECTRL_WG         = regs.AFECTRL_WG
	AFECTRL_DFT        = regs.AFECTRL_DFT
	AFECTRL_SINC2NOTCH = regs.AFECTRL_SINC2NOTCH
	AFECTRL_ALDOLIMIT  = regs.AFECTRL_ALDOLIMIT
	AFECTRL_DACREFPWR  = regs.AFECTRL_DACREFPWR
	AFECTRL_DCBUFPWR   = regs.AFECTRL_DCBUFPWR
	AFECTRL_ALL        = regs.AFECTRL_ALL
)

// AFECtrl sets (enable=true) or clears the provided AFECON bits
// with a single register write.
func (dev *Device) AFECtrl(bits uint32, enable bool) error {
	v := uint32(0)
	if enable {
		v = bits
	}
	err := dev.update(regs.REG_AFE_AFECON, bits, v)
	if err != nil {
		return fmt.Errorf("ad5940: could not control AFE blocks 0x%x: %w", bits, err)
	}
	return nil
}

// RefCfg configures the reference buffers.
type RefCfg struct {
	HPRef    bool // high-power band-gap and buffers
	LPRef    bool // low-power reference
	LPRefBuf bool // low-power 2.5V buffer
}

func (dev *Device) REFCfg(cfg RefCfg) error {
	err := dev.AFECtrl(regs.AFECTRL_HPREFPWR, cfg.HPRef)
	if err != nil {
		return err
	}
	v := uint32(0)
	if !cfg.LPRefBuf {
		v |= regs.BITM_LPREFBUFCON_LPBUF2P5DIS
	}
	if !cfg.LPRef {
		v |= regs.BITM_LPREFBUFCON_LPREFDIS
	}
	err = dev.WriteReg(regs.REG_AFE_LPREFBUFCON, v)
	if err != nil {
		return fmt.Errorf("ad5940: could not configure LP reference: %w", err)
	}
	return nil
}

// SWMatrix is a setting of the D, P, N and T switch groups.
type SWMatrix struct {
	D, P, N, T uint32
}

// Switch matrix settings.
const (
	SWD_OPEN  = regs.SWD_OPEN
	SWD_RCAL0 = regs.SWD_RCAL0
	SWD_AIN1  = regs.SWD_AIN1
	SWD_AIN2  = regs.SWD_AIN2
	SWD_AIN3  = regs.SWD_AIN3
	SWD_CE0   = regs.SWD_CE0
	SWD_CE1   = regs.SWD_CE1
	SWD_SE0   = regs.SWD_SE0

	SWP_OPEN  = regs.SWP_OPEN
	SWP_RCAL0 = regs.SWP_RCAL0
	SWP_AIN1  = regs.SWP_AIN1
	SWP_AIN2  = regs.SWP_AIN2
	SWP_AIN3  = regs.SWP_AIN3
	SWP_RE0   = regs.SWP_RE0
	SWP_RE1   = regs.SWP_RE1
	SWP_SE0   = regs.SWP_SE0
	SWP_PL    = regs.SWP_PL
	SWP_PL2   = regs.SWP_PL2

	SWN_OPEN  = regs.SWN_OPEN
	SWN_AIN0  = regs.SWN_AIN0
	SWN_AIN1  = regs.SWN_AIN1
	SWN_AIN2  = regs.SWN_AIN2
	SWN_AIN3  = regs.SWN_AIN3
	SWN_SE0   = regs.SWN_SE0
	SWN_RCAL1 = regs.SWN_RCAL1
	SWN_NL    = regs.SWN_NL
	SWN_NL2   = regs.SWN_NL2

	SWT_OPEN  = regs.SWT_OPEN
	SWT_AIN0  = regs.SWT_AIN0
	SWT_AIN1  = regs.SWT_AIN1
	SWT_AIN2  = regs.SWT_AIN2
	SWT_AIN3  = regs.SWT_AIN3
	SWT_SE0   = regs.SWT_SE0
	SWT_RCAL1 = regs.SWT_RCAL1
	SWT_TRTIA = regs.SWT_TRTIA
)

// SWIdle is the switch setting leaving the external electrodes floating.
var SWIdle = SWMatrix{
	D: SWD_OPEN,
	P: SWP_PL | SWP_PL2,
	N: SWN_NL | SWN_NL2,
	T: SWT_TRTIA,
}

func (dev *Device) SWMatrixCfg(sw SWMatrix) error {
	for _, v := range []struct {
		reg uint16
		val uint32
	}{
		{regs.REG_AFE_DSWFULLCON, sw.D},
		{regs.REG_AFE_PSWFULLCON, sw.P},
		{regs.REG_AFE_NSWFULLCON, sw.N},
		{regs.REG_AFE_TSWFULLCON, sw.T},
	} {
		err := dev.WriteReg(v.reg, v.val)
		if err != nil {
			return fmt.Errorf("ad5940: could not configure switch matrix: %w", err)
		}
	}
	// route switches from the full-control registers.
	err := dev.update(regs.REG_AFE_SWCON, regs.BITM_SWCON_SWSOURCESEL, regs.BITM_SWCON_SWSOURCESEL)
	if err != nil {
		return fmt.Errorf("ad5940: could not select switch source: %w", err)
	}
	return nil
}

// HSDACCfg configures the high-speed DAC.
type HSDACCfg struct {
	ExcitBufGain bool   // excitation buffer gain 0.25 when set
	HsDacGain    bool   // DAC attenuator 0.2 when set
	UpdateRate   uint32 // DAC update rate divider
}

// HSTIACfg configures the high-speed trans-impedance amplifier.
type HSTIACfg struct {
	Rtia uint32 // HSTIARTIA_xxx
	Ctia uint32 // feedback capacitor, in pF
	Bias uint32
}

// RTIA selection.
const (
	HSTIARTIA_200  = regs.HSTIARTIA_200
	HSTIARTIA_1K   = regs.HSTIARTIA_1K
	HSTIARTIA_5K   = regs.HSTIARTIA_5K
	HSTIARTIA_10K  = regs.HSTIARTIA_10K
	HSTIARTIA_20K  = regs.HSTIARTIA_20K
	HSTIARTIA_40K  = regs.HSTIARTIA_40K
	HSTIARTIA_80K  = regs.HSTIARTIA_80K
	HSTIARTIA_160K = regs.HSTIARTIA_160K
	HSTIARTIA_OPEN = regs.HSTIARTIA_OPEN
)

// WGCfg configures the waveform generator in sine mode.
type WGCfg struct {
	FreqWord  uint32
	Amplitude uint32
	Offset    uint32
	Phase     uint32
}

// HSLoopCfg configures the high-speed excitation and measurement loop.
type HSLoopCfg struct {
	DAC HSDACCfg
	TIA HSTIACfg
	SW  SWMatrix
	WG  WGCfg
}

func (dev *Device) HSLoopCfg(cfg HSLoopCfg) error {
	dac := cfg.DAC.UpdateRate << regs.BITP_HSDACCON_RATE & regs.BITM_HSDACCON_RATE
	if cfg.DAC.HsDacGain {
		dac |= regs.BITM_HSDACCON_ATTENEN
	}
	if cfg.DAC.ExcitBufGain {
		dac |= regs.BITM_HSDACCON_INAMPGNMDE
	}
	rtia := cfg.TIA.Rtia&regs.BITM_HSRTIACON_RTIACON |
		cfg.TIA.Ctia<<regs.BITP_HSRTIACON_CTIACON&regs.BITM_HSRTIACON_CTIACON

	for _, v := range []struct {
		name string
		reg  uint16
		val  uint32
	}{
		{"HS DAC", regs.REG_AFE_HSDACCON, dac},
		{"HS RTIA", regs.REG_AFE_HSRTIACON, rtia},
		{"HS TIA", regs.REG_AFE_HSTIACON, cfg.TIA.Bias & regs.BITM_HSTIACON_VBIASSEL},
	} {
		err := dev.WriteReg(v.reg, v.val)
		if err != nil {
			return fmt.Errorf("ad5940: could not configure %s: %w", v.name, err)
		}
	}

	err := dev.SWMatrixCfg(cfg.SW)
	if err != nil {
		return err
	}

	return dev.WGCfg(cfg.WG)
}

func (dev *Device) WGCfg(cfg WGCfg) error {
	if cfg.FreqWord > regs.WGFCW_MAX {
		cfg.FreqWord = regs.WGFCW_MAX
	}
	for _, v := range []struct {
		reg uint16
		val uint32
	}{
		{regs.REG_AFE_WGFCW, cfg.FreqWord},
		{regs.REG_AFE_WGAMPLITUDE, cfg.Amplitude},
		{regs.REG_AFE_WGOFFSET, cfg.Offset},
		{regs.REG_AFE_WGPHASE, cfg.Phase},
	} {
		err := dev.WriteReg(v.reg, v.val)
		if err != nil {
			return fmt.Errorf("ad5940: could not configure waveform generator: %w", err)
		}
	}
	err := dev.update(regs.REG_AFE_WGCON, regs.BITM_WGCON_TYPESEL, regs.WGTYPE_SIN<<regs.BITP_WGCON_TYPESEL)
	if err != nil {
		return fmt.Errorf("ad5940: could not select sine waveform: %w", err)
	}
	return nil
}

// WGFreqCtrl reprograms the sine frequency of the waveform generator.
func (dev *Device) WGFreqCtrl(freq, sysClk float64) error {
	err := dev.WriteReg(regs.REG_AFE_WGFCW, FreqWord(freq, sysClk))
	if err != nil {
		return fmt.Errorf("ad5940: could not set waveform frequency %v Hz: %w", freq, err)
	}
	return nil
}

// LPLoopCfg configures the low-power DAC and amplifiers.
// The zero value powers the low-power loop down.
type LPLoopCfg struct {
	DACEnable bool
	AmpEnable bool
	DACData   uint32
}

func (dev *Device) LPLoopCfg(cfg LPLoopCfg) error {
	dac := uint32(regs.BITM_LPDACCON0_PWDEN)
	if cfg.DACEnable {
		dac = regs.BITM_LPDACCON0_RSTEN
	}
	amp := uint32(regs.BITM_LPTIACON0_TIAPDEN | regs.BITM_LPTIACON0_PAPDEN)
	if cfg.AmpEnable {
		amp = 0
	}
	for _, v := range []struct {
		reg uint16
		val uint32
	}{
		{regs.REG_AFE_LPDACCON0, dac},
		{regs.REG_AFE_LPDACDAT0, cfg.DACData},
		{regs.REG_AFE_LPTIACON0, amp},
	} {
		err := dev.WriteReg(v.reg, v.val)
		if err != nil {
			return fmt.Errorf("ad5940: could not configure LP loop: %w", err)
		}
	}
	return nil
}
