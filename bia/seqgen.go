// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bia

import (
	"fmt"

	"github.com/go-lpc/bioz/ad5940"
	"github.com/go-lpc/bioz/ad5940/seq"
)

const (
	settleClocks = 800    // settling time before each conversion, in system clocks
	syncGPIO     = 1 << 6 // GPIO toggled for the duration of a measurement
)

// initPower is the set of analog blocks powered by the init sequence.
const initPower = ad5940.AFECTRL_HPREFPWR | ad5940.AFECTRL_HSDACPWR |
	ad5940.AFECTRL_ADCPWR | ad5940.AFECTRL_DACREFPWR |
	ad5940.AFECTRL_EXTBUFPWR | ad5940.AFECTRL_INAMPPWR |
	ad5940.AFECTRL_HSTIAPWR | ad5940.AFECTRL_SINC2NOTCH |
	ad5940.AFECTRL_ALDOLIMIT | ad5940.AFECTRL_DCBUFPWR

// measPower is the set of analog blocks toggled by the measurement sequence.
const measPower = ad5940.AFECTRL_HSTIAPWR | ad5940.AFECTRL_INAMPPWR |
	ad5940.AFECTRL_EXTBUFPWR | ad5940.AFECTRL_WG |
	ad5940.AFECTRL_DACREFPWR | ad5940.AFECTRL_HSDACPWR |
	ad5940.AFECTRL_SINC2NOTCH

// initSequence records the configuration of the whole analog chain.
func (app *App) initSequence() error {
	dev := app.dev
	err := dev.REFCfg(ad5940.RefCfg{HPRef: true, LPRef: true, LPRefBuf: true})
	if err != nil {
		return err
	}

	err = dev.HSLoopCfg(ad5940.HSLoopCfg{
		DAC: ad5940.HSDACCfg{
			ExcitBufGain: app.cfg.ExcitBufGain,
			HsDacGain:    app.cfg.HsDacGain,
			UpdateRate:   app.cfg.HsDacRate,
		},
		TIA: ad5940.HSTIACfg{
			Rtia: app.cfg.Rtia,
			Ctia: app.cfg.Ctia,
		},
		SW: ad5940.SWIdle,
		WG: ad5940.WGCfg{
			FreqWord:  ad5940.FreqWord(app.cfg.startFreq(), app.cfg.SysClkFreq),
			Amplitude: app.cfg.amplitude(),
		},
	})
	if err != nil {
		return err
	}

	err = dev.LPLoopCfg(ad5940.LPLoopCfg{
		DACEnable: true,
		AmpEnable: true,
		DACData:   lpDACBias,
	})
	if err != nil {
		return err
	}

	err = dev.DSPCfg(ad5940.DSPCfg{
		Mux:  ad5940.ADCMux{P: ad5940.ADCMUXP_HSTIA_P, N: ad5940.ADCMUXN_HSTIA_N},
		PGA:  app.cfg.PGA,
		Filt: app.cfg.dftCfg(),
	})
	if err != nil {
		return err
	}

	err = dev.AFECtrl(initPower, true)
	if err != nil {
		return err
	}
	err = dev.SEQGpioCtrl(0)
	if err != nil {
		return err
	}
	return dev.Insert(seq.Stop())
}

// lpDACBias biases the low-power loop at mid-scale.
const lpDACBias = 0x1F<<12 | 0x800

// measSequence records one impedance measurement: a voltage and a
// current DFT for the reference path, then for the optional
// measurement path.
func (app *App) measSequence() error {
	dev := app.dev
	clks, err := ad5940.ClocksPerDFT(app.cfg.dftCfg(), app.cfg.SysClkFreq, app.cfg.AdcClkFreq)
	if err != nil {
		return fmt.Errorf("bia: could not compute DFT duration: %w", err)
	}

	err = dev.SEQGpioCtrl(syncGPIO)
	if err != nil {
		return err
	}
	err = dev.AFECtrl(measPower, true)
	if err != nil {
		return err
	}

	paths := []ad5940.SWMatrix{app.cfg.RefPath}
	if app.cfg.MeasPath != nil {
		paths = append(paths, *app.cfg.MeasPath)
	}
	for _, sw := range paths {
		err = dev.SWMatrixCfg(sw)
		if err != nil {
			return err
		}
		for _, mux := range []ad5940.ADCMux{
			app.cfg.VoltMux,
			{P: ad5940.ADCMUXP_HSTIA_P, N: ad5940.ADCMUXN_HSTIA_N},
		} {
			err = app.measureDFT(mux, clks)
			if err != nil {
				return err
			}
		}
	}

	err = dev.SWMatrixCfg(ad5940.SWIdle)
	if err != nil {
		return err
	}
	err = dev.AFECtrl(measPower, false)
	if err != nil {
		return err
	}
	err = dev.SEQGpioCtrl(0)
	if err != nil {
		return err
	}
	return dev.EnterSleep()
}

// measureDFT records one DFT conversion on the provided ADC inputs.
func (app *App) measureDFT(mux ad5940.ADCMux, clks uint32) error {
	dev := app.dev
	err := dev.ADCMuxCfg(mux)
	if err != nil {
		return err
	}
	err = dev.AFECtrl(ad5940.AFECTRL_WG|ad5940.AFECTRL_ADCPWR, true)
	if err != nil {
		return err
	}
	err = dev.Wait(settleClocks)
	if err != nil {
		return err
	}
	err = dev.AFECtrl(ad5940.AFECTRL_ADCCNV|ad5940.AFECTRL_DFT, true)
	if err != nil {
		return err
	}
	err = dev.Wait(clks)
	if err != nil {
		return err
	}
	return dev.AFECtrl(
		ad5940.AFECTRL_ADCCNV|ad5940.AFECTRL_DFT|ad5940.AFECTRL_WG|ad5940.AFECTRL_ADCPWR,
		false,
	)
}
