// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ad5940

import (
	"context"
	"fmt"
	"time"
)

// RtiaCalCfg configures a calibration of the high-speed TIA gain
// against the on-board calibration resistor.
type RtiaCalCfg struct {
	SysClk float64 // system clock, in Hz
	AdcClk float64 // ADC clock, in Hz
	Freq   float64 // excitation frequency, in Hz
	Rcal   float64 // calibration resistor, in Ohms

	Rtia      uint32 // HSTIARTIA_xxx
	PGA       uint32
	Amplitude uint32 // waveform generator amplitude word
	Filt      DFTCfg

	// Timeout bounds the wait for each DFT result.
	// A zero value uses one second.
	Timeout time.Duration
}

const (
	calPowerBlocks = AFECTRL_HPREFPWR | AFECTRL_HSDACPWR | AFECTRL_ADCPWR |
		AFECTRL_EXTBUFPWR | AFECTRL_INAMPPWR | AFECTRL_HSTIAPWR |
		AFECTRL_WG | AFECTRL_DACREFPWR | AFECTRL_SINC2NOTCH

	settleClocks = 800
)

// RtiaCal measures the high-speed loop response through the calibration
// resistor and returns the complex factor mapping a raw V/I ratio to
// Ohms at cfg.Freq.
//
// The analog blocks are powered down on return, on success and failure.
func (dev *Device) RtiaCal(ctx context.Context, cfg RtiaCalCfg) (cal Complex, err error) {
	err = dev.direct("calibrate RTIA")
	if err != nil {
		return Complex{}, err
	}
	if cfg.Rcal <= 0 {
		return Complex{}, fmt.Errorf("ad5940: invalid calibration resistor %v Ohm", cfg.Rcal)
	}
	if cfg.SysClk <= 0 || cfg.Freq <= 0 {
		return Complex{}, fmt.Errorf("ad5940: invalid RTIA calibration clocks (sys=%v Hz, freq=%v Hz)", cfg.SysClk, cfg.Freq)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = time.Second
	}

	err = dev.REFCfg(RefCfg{HPRef: true, LPRef: true, LPRefBuf: true})
	if err != nil {
		return Complex{}, fmt.Errorf("ad5940: could not configure references for RTIA calibration: %w", err)
	}

	err = dev.HSLoopCfg(HSLoopCfg{
		DAC: HSDACCfg{UpdateRate: 7},
		TIA: HSTIACfg{Rtia: cfg.Rtia, Ctia: 16},
		SW: SWMatrix{
			D: SWD_RCAL0,
			P: SWP_RCAL0,
			N: SWN_RCAL1,
			T: SWT_RCAL1 | SWT_TRTIA,
		},
		WG: WGCfg{
			FreqWord:  FreqWord(cfg.Freq, cfg.SysClk),
			Amplitude: cfg.Amplitude,
		},
	})
	if err != nil {
		return Complex{}, fmt.Errorf("ad5940: could not configure HS loop for RTIA calibration: %w", err)
	}

	err = dev.DSPCfg(DSPCfg{
		Mux:  ADCMux{P: ADCMUXP_P_NODE, N: ADCMUXN_N_NODE},
		PGA:  cfg.PGA,
		Filt: cfg.Filt,
	})
	if err != nil {
		return Complex{}, fmt.Errorf("ad5940: could not configure DSP for RTIA calibration: %w", err)
	}

	err = dev.AFECtrl(calPowerBlocks, true)
	if err != nil {
		return Complex{}, err
	}
	defer func() {
		e := dev.AFECtrl(calPowerBlocks|AFECTRL_ADCCNV|AFECTRL_DFT, false)
		if e != nil && err == nil {
			cal, err = Complex{}, e
		}
	}()
	time.Sleep(time.Duration(settleClocks / cfg.SysClk * float64(time.Second)))

	volt, err := dev.measureDFT(ctx, ADCMux{P: ADCMUXP_P_NODE, N: ADCMUXN_N_NODE}, cfg.Timeout)
	if err != nil {
		return Complex{}, fmt.Errorf("ad5940: could not measure voltage across RCAL: %w", err)
	}
	curr, err := dev.measureDFT(ctx, ADCMux{P: ADCMUXP_HSTIA_P, N: ADCMUXN_HSTIA_N}, cfg.Timeout)
	if err != nil {
		return Complex{}, fmt.Errorf("ad5940: could not measure current through RCAL: %w", err)
	}

	z := Ratio(volt, curr)
	if !z.Valid() || z.Mag() == 0 {
		return Complex{}, fmt.Errorf("ad5940: degenerate RTIA calibration (v=%+v, i=%+v)", volt, curr)
	}
	cal = Complex{Real: cfg.Rcal}.Div(z)
	dev.msg.Printf("rtia-cal: f=%.1f Hz, cal=(%g, %g)", cfg.Freq, cal.Real, cal.Imag)
	return cal, nil
}

func (dev *Device) measureDFT(ctx context.Context, mux ADCMux, timeout time.Duration) (DFT, error) {
	err := dev.ADCMuxCfg(mux)
	if err != nil {
		return DFT{}, err
	}
	err = dev.INTCClrFlag(INTSRC_DFTRDY)
	if err != nil {
		return DFT{}, err
	}
	err = dev.AFECtrl(AFECTRL_ADCCNV|AFECTRL_DFT, true)
	if err != nil {
		return DFT{}, err
	}
	err = dev.WaitFlag(ctx, INTC1, INTSRC_DFTRDY, timeout)
	if err != nil {
		return DFT{}, err
	}
	err = dev.AFECtrl(AFECTRL_ADCCNV|AFECTRL_DFT, false)
	if err != nil {
		return DFT{}, err
	}
	err = dev.INTCClrFlag(INTSRC_DFTRDY)
	if err != nil {
		return DFT{}, err
	}
	return dev.ReadDFT()
}
