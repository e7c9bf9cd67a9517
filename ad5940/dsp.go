// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ad5940

import (
	"fmt"
	"math"

	"github.com/go-lpc/bioz/ad5940/internal/regs"
)

// ADC input multiplexer settings.
const (
	ADCMUXP_HSTIA_P = regs.ADCMUXP_HSTIA_P
	ADCMUXP_AIN0    = regs.ADCMUXP_AIN0
	ADCMUXP_AIN1    = regs.ADCMUXP_AIN1
	ADCMUXP_AIN2    = regs.ADCMUXP_AIN2
	ADCMUXP_AIN3    = regs.ADCMUXP_AIN3
	ADCMUXP_P_NODE  = regs.ADCMUXP_P_NODE

	ADCMUXN_HSTIA_N = regs.ADCMUXN_HSTIA_N
	ADCMUXN_AIN0    = regs.ADCMUXN_AIN0
	ADCMUXN_AIN1    = regs.ADCMUXN_AIN1
	ADCMUXN_AIN2    = regs.ADCMUXN_AIN2
	ADCMUXN_AIN3    = regs.ADCMUXN_AIN3
	ADCMUXN_N_NODE  = regs.ADCMUXN_N_NODE
)

// ADC PGA gains.
const (
	ADCPGA_1   = regs.ADCPGA_1
	ADCPGA_1P5 = regs.ADCPGA_1P5
	ADCPGA_2   = regs.ADCPGA_2
	ADCPGA_4   = regs.ADCPGA_4
	ADCPGA_9   = regs.ADCPGA_9
)

// Filter and DFT settings.
const (
	ADCSINC3OSR_5 = regs.ADCSINC3OSR_5
	ADCSINC3OSR_4 = regs.ADCSINC3OSR_4
	ADCSINC3OSR_2 = regs.ADCSINC3OSR_2

	ADCSINC2OSR_22   = regs.ADCSINC2OSR_22
	ADCSINC2OSR_44   = regs.ADCSINC2OSR_44
	ADCSINC2OSR_89   = regs.ADCSINC2OSR_89
	ADCSINC2OSR_178  = regs.ADCSINC2OSR_178
	ADCSINC2OSR_267  = regs.ADCSINC2OSR_267
	ADCSINC2OSR_533  = regs.ADCSINC2OSR_533
	ADCSINC2OSR_640  = regs.ADCSINC2OSR_640
	ADCSINC2OSR_667  = regs.ADCSINC2OSR_667
	ADCSINC2OSR_800  = regs.ADCSINC2OSR_800
	ADCSINC2OSR_889  = regs.ADCSINC2OSR_889
	ADCSINC2OSR_1067 = regs.ADCSINC2OSR_1067
	ADCSINC2OSR_1333 = regs.ADCSINC2OSR_1333

	DFTNUM_4     = regs.DFTNUM_4
	DFTNUM_8     = regs.DFTNUM_8
	DFTNUM_16    = regs.DFTNUM_16
	DFTNUM_32    = regs.DFTNUM_32
	DFTNUM_64    = regs.DFTNUM_64
	DFTNUM_128   = regs.DFTNUM_128
	DFTNUM_256   = regs.DFTNUM_256
	DFTNUM_512   = regs.DFTNUM_512
	DFTNUM_1024  = regs.DFTNUM_1024
	DFTNUM_2048  = regs.DFTNUM_2048
	DFTNUM_4096  = regs.DFTNUM_4096
	DFTNUM_8192  = regs.DFTNUM_8192
	DFTNUM_16384 = regs.DFTNUM_16384

	DFTSRC_SINC2NOTCH = regs.DFTSRC_SINC2NOTCH
	DFTSRC_SINC3      = regs.DFTSRC_SINC3
	DFTSRC_ADCRAW     = regs.DFTSRC_ADCRAW
)

var (
	sinc3OSRTable = [...]uint32{5, 4, 2}
	sinc2OSRTable = [...]uint32{22, 44, 89, 178, 267, 533, 640, 667, 800, 889, 1067, 1333}
)

// ADCMux selects the ADC inputs.
type ADCMux struct {
	P, N uint32
}

// DFTCfg configures the ADC filters and the DFT engine.
type DFTCfg struct {
	Sinc3OSR uint32 // ADCSINC3OSR_xxx
	Sinc2OSR uint32 // ADCSINC2OSR_xxx
	DFTNum   uint32 // DFTNUM_xxx
	DFTSrc   uint32 // DFTSRC_xxx
	Hanning  bool
}

// DSPCfg configures the ADC and its digital processing chain.
type DSPCfg struct {
	Mux  ADCMux
	PGA  uint32
	Filt DFTCfg
}

func (dev *Device) DSPCfg(cfg DSPCfg) error {
	adc := cfg.Mux.P&regs.BITM_ADCCON_MUXSELP |
		cfg.Mux.N<<regs.BITP_ADCCON_MUXSELN&regs.BITM_ADCCON_MUXSELN |
		cfg.PGA<<regs.BITP_ADCCON_GNPGA&regs.BITM_ADCCON_GNPGA

	filt := cfg.Filt.Sinc3OSR<<regs.BITP_ADCFILTERCON_SINC3OSR&regs.BITM_ADCFILTERCON_SINC3OSR |
		cfg.Filt.Sinc2OSR<<regs.BITP_ADCFILTERCON_SINC2OSR&regs.BITM_ADCFILTERCON_SINC2OSR

	dft := cfg.Filt.DFTNum<<regs.BITP_DFTCON_DFTNUM&regs.BITM_DFTCON_DFTNUM |
		cfg.Filt.DFTSrc<<regs.BITP_DFTCON_DFTINSEL&regs.BITM_DFTCON_DFTINSEL
	if cfg.Filt.Hanning {
		dft |= regs.BITM_DFTCON_HANNINGEN
	}

	for _, v := range []struct {
		name string
		reg  uint16
		val  uint32
	}{
		{"ADC", regs.REG_AFE_ADCCON, adc},
		{"ADC filters", regs.REG_AFE_ADCFILTERCON, filt},
		{"DFT", regs.REG_AFE_DFTCON, dft},
	} {
		err := dev.WriteReg(v.reg, v.val)
		if err != nil {
			return fmt.Errorf("ad5940: could not configure %s: %w", v.name, err)
		}
	}
	return nil
}

// ADCMuxCfg selects the ADC inputs, leaving the PGA gain untouched.
func (dev *Device) ADCMuxCfg(mux ADCMux) error {
	v := mux.P&regs.BITM_ADCCON_MUXSELP | mux.N<<regs.BITP_ADCCON_MUXSELN&regs.BITM_ADCCON_MUXSELN
	err := dev.update(regs.REG_AFE_ADCCON, regs.BITM_ADCCON_MUXSELP|regs.BITM_ADCCON_MUXSELN, v)
	if err != nil {
		return fmt.Errorf("ad5940: could not configure ADC mux: %w", err)
	}
	return nil
}

// DFT is a raw DFT result, as stored in the data FIFO.
type DFT struct {
	Real int32
	Imag int32
}

// ReadDFT reads the last DFT result.
func (dev *Device) ReadDFT() (DFT, error) {
	re, err := dev.ReadReg(regs.REG_AFE_DFTREAL)
	if err != nil {
		return DFT{}, fmt.Errorf("ad5940: could not read DFT real part: %w", err)
	}
	im, err := dev.ReadReg(regs.REG_AFE_DFTIMAG)
	if err != nil {
		return DFT{}, fmt.Errorf("ad5940: could not read DFT imaginary part: %w", err)
	}
	return DFT{Real: SignExtend18(re), Imag: SignExtend18(im)}, nil
}

// SignExtend18 interprets the low 18 bits of v as a two's complement value.
func SignExtend18(v uint32) int32 {
	v &= 0x3FFFF
	if v&(1<<17) != 0 {
		v |= 0xFFFC0000
	}
	return int32(v)
}

// FreqWord returns the waveform generator frequency control word for
// a sine at freq Hz, with the system clock at sysClk Hz.
func FreqWord(freq, sysClk float64) uint32 {
	if freq <= 0 || sysClk <= 0 {
		return 0
	}
	v := math.Floor(freq*(1<<26)/sysClk + 0.5)
	if v > regs.WGFCW_MAX {
		return regs.WGFCW_MAX
	}
	return uint32(v)
}

// ClocksPerDFT returns the number of system clocks needed to produce
// one DFT result with the provided filter settings.
func ClocksPerDFT(cfg DFTCfg, sysClk, adcClk float64) (uint32, error) {
	if cfg.DFTNum > regs.DFTNUM_16384 {
		return 0, fmt.Errorf("ad5940: invalid DFT length code %d", cfg.DFTNum)
	}
	if int(cfg.Sinc3OSR) >= len(sinc3OSRTable) {
		return 0, fmt.Errorf("ad5940: invalid SINC3 OSR code %d", cfg.Sinc3OSR)
	}
	if int(cfg.Sinc2OSR) >= len(sinc2OSRTable) {
		return 0, fmt.Errorf("ad5940: invalid SINC2 OSR code %d", cfg.Sinc2OSR)
	}
	if sysClk <= 0 || adcClk <= 0 {
		return 0, fmt.Errorf("ad5940: invalid clocks (sys=%v, adc=%v)", sysClk, adcClk)
	}

	n := uint64(4) << cfg.DFTNum
	switch cfg.DFTSrc {
	case DFTSRC_ADCRAW:
	case DFTSRC_SINC3:
		n *= uint64(sinc3OSRTable[cfg.Sinc3OSR])
	case DFTSRC_SINC2NOTCH:
		n *= uint64(sinc3OSRTable[cfg.Sinc3OSR]) * uint64(sinc2OSRTable[cfg.Sinc2OSR])
	default:
		return 0, fmt.Errorf("ad5940: invalid DFT source %d", cfg.DFTSrc)
	}

	clks := math.Ceil(float64(n) * sysClk / adcClk)
	if clks > 0x3FFFFFFF {
		return 0, fmt.Errorf("ad5940: DFT needs %v clocks, larger than a sequencer wait", clks)
	}
	return uint32(clks), nil
}
