// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bia

import (
	"fmt"
	"log"
	"time"

	"github.com/go-lpc/bioz/ad5940"
)

// MaxSweepPoints is the largest number of points of a frequency sweep.
const MaxSweepPoints = 100

// Config is the configuration of a bio-impedance acquisition.
type Config struct {
	SeqStartAddr uint32 // SRAM address of the init sequence
	MaxSeqLen    int    // capacity of the sequence buffer, in words

	SysClkFreq  float64 // system clock, in Hz
	WuptClkFreq float64 // wake-up timer clock, in Hz
	AdcClkFreq  float64 // ADC clock, in Hz
	ODR         float64 // output data rate, in Hz
	NumOfData   int     // number of samples to acquire, -1 for no limit

	RcalVal float64 // calibration resistor, in Ohms
	Rtia    uint32  // ad5940.HSTIARTIA_xxx
	Ctia    uint32  // TIA feedback capacitor, in pF

	ExcitBufGain bool
	HsDacGain    bool
	HsDacRate    uint32
	DacVoltPP    float64 // excitation amplitude, in mV peak-to-peak
	SinFreq      float64 // excitation frequency, in Hz

	PGA      uint32 // ad5940.ADCPGA_xxx
	Sinc3OSR uint32 // ad5940.ADCSINC3OSR_xxx
	Sinc2OSR uint32 // ad5940.ADCSINC2OSR_xxx
	DFTNum   uint32 // ad5940.DFTNUM_xxx
	DFTSrc   uint32 // ad5940.DFTSRC_xxx
	Hanning  bool

	Sweep ad5940.Sweep

	FIFOThresh uint32 // FIFO threshold, in words

	// RefPath routes the excitation through the body for the first
	// pass of each measurement. MeasPath, when set, adds a second pass.
	RefPath  ad5940.SWMatrix
	MeasPath *ad5940.SWMatrix

	// VoltMux selects the ADC inputs sensing the excitation voltage.
	VoltMux ad5940.ADCMux

	// SeqTimeout bounds the wait for the end of the init sequence and
	// for each calibration DFT.
	SeqTimeout time.Duration

	// ReDoRtiaCal requests a new RTIA calibration at the next Init.
	ReDoRtiaCal bool

	msg *log.Logger
}

// DefaultConfig returns the default acquisition configuration.
func DefaultConfig() Config {
	return Config{
		SeqStartAddr: 0,
		MaxSeqLen:    512,

		SysClkFreq:  16e6,
		WuptClkFreq: 32e3,
		AdcClkFreq:  16e6,
		ODR:         20,
		NumOfData:   -1,

		RcalVal: 10e3,
		Rtia:    ad5940.HSTIARTIA_1K,
		Ctia:    16,

		ExcitBufGain: false,
		HsDacGain:    false,
		HsDacRate:    7,
		DacVoltPP:    800,
		SinFreq:      50e3,

		PGA:      ad5940.ADCPGA_1,
		Sinc3OSR: ad5940.ADCSINC3OSR_2,
		Sinc2OSR: ad5940.ADCSINC2OSR_22,
		DFTNum:   ad5940.DFTNUM_8192,
		DFTSrc:   ad5940.DFTSRC_SINC3,
		Hanning:  true,

		Sweep: ad5940.Sweep{
			Enable: false,
			Start:  10e3,
			Stop:   150e3,
			Points: 100,
			Log:    true,
		},

		FIFOThresh: 4,

		RefPath: ad5940.SWMatrix{
			D: ad5940.SWD_CE0,
			P: ad5940.SWP_RE0,
			N: ad5940.SWN_AIN1,
			T: ad5940.SWT_AIN1 | ad5940.SWT_TRTIA,
		},
		VoltMux: ad5940.ADCMux{
			P: ad5940.ADCMUXP_AIN3,
			N: ad5940.ADCMUXN_AIN2,
		},

		SeqTimeout: time.Second,
	}
}

// Validate checks the consistency of the configuration.
func (cfg Config) Validate() error {
	switch {
	case cfg.MaxSeqLen <= 0:
		return fmt.Errorf("bia: invalid max sequence length %d", cfg.MaxSeqLen)
	case cfg.SysClkFreq <= 0 || cfg.AdcClkFreq <= 0 || cfg.WuptClkFreq <= 0:
		return fmt.Errorf(
			"bia: invalid clocks (sys=%v, adc=%v, wupt=%v)",
			cfg.SysClkFreq, cfg.AdcClkFreq, cfg.WuptClkFreq,
		)
	case cfg.ODR <= 0:
		return fmt.Errorf("bia: invalid output data rate %v Hz", cfg.ODR)
	case cfg.NumOfData == 0 || cfg.NumOfData < -1:
		return fmt.Errorf("bia: invalid number of data %d", cfg.NumOfData)
	case cfg.RcalVal <= 0:
		return fmt.Errorf("bia: invalid calibration resistor %v Ohm", cfg.RcalVal)
	case cfg.DacVoltPP <= 0 || cfg.DacVoltPP > 800:
		return fmt.Errorf("bia: invalid excitation amplitude %v mVpp", cfg.DacVoltPP)
	case cfg.FIFOThresh == 0 || cfg.FIFOThresh%uint32(WordsPerSample*cfg.passes()) != 0:
		return fmt.Errorf(
			"bia: invalid FIFO threshold %d (want a multiple of %d)",
			cfg.FIFOThresh, WordsPerSample*cfg.passes(),
		)
	case cfg.SeqTimeout <= 0:
		return fmt.Errorf("bia: invalid sequence timeout %v", cfg.SeqTimeout)
	}
	if cfg.Sweep.Enable {
		err := cfg.Sweep.Validate()
		if err != nil {
			return fmt.Errorf("bia: invalid sweep: %w", err)
		}
		if want := uint32(WordsPerSample * cfg.passes()); cfg.FIFOThresh != want {
			return fmt.Errorf("bia: invalid FIFO threshold %d for a sweep (want=%d)", cfg.FIFOThresh, want)
		}
		if cfg.Sweep.Points > MaxSweepPoints {
			return fmt.Errorf("bia: too many sweep points %d (max=%d)", cfg.Sweep.Points, MaxSweepPoints)
		}
	} else if cfg.SinFreq <= 0 {
		return fmt.Errorf("bia: invalid excitation frequency %v Hz", cfg.SinFreq)
	}
	return nil
}

// Option configures an acquisition.
type Option func(*Config)

// WithLogger sets the logger of the application.
func WithLogger(msg *log.Logger) Option {
	return func(cfg *Config) {
		cfg.msg = msg
	}
}

// WithSinFreq sets the excitation frequency, in Hz.
func WithSinFreq(freq float64) Option {
	return func(cfg *Config) {
		cfg.SinFreq = freq
	}
}

// WithODR sets the output data rate, in Hz.
func WithODR(odr float64) Option {
	return func(cfg *Config) {
		cfg.ODR = odr
	}
}

// WithClocks sets the system, ADC and wake-up timer clocks, in Hz.
func WithClocks(sys, adc, wupt float64) Option {
	return func(cfg *Config) {
		cfg.SysClkFreq = sys
		cfg.AdcClkFreq = adc
		cfg.WuptClkFreq = wupt
	}
}

// WithSweep enables a frequency sweep.
func WithSweep(start, stop float64, points int, logSpacing bool) Option {
	return func(cfg *Config) {
		cfg.Sweep = ad5940.Sweep{
			Enable: true,
			Start:  start,
			Stop:   stop,
			Points: points,
			Log:    logSpacing,
		}
	}
}

// WithNumOfData sets the number of samples to acquire before stopping.
// A negative value acquires until stopped.
func WithNumOfData(n int) Option {
	return func(cfg *Config) {
		if n < 0 {
			n = -1
		}
		cfg.NumOfData = n
	}
}

// WithRcal sets the value of the calibration resistor, in Ohms.
func WithRcal(v float64) Option {
	return func(cfg *Config) {
		cfg.RcalVal = v
	}
}

// WithRtia selects the high-speed TIA gain resistor.
func WithRtia(rtia uint32) Option {
	return func(cfg *Config) {
		cfg.Rtia = rtia
	}
}

// WithDacVoltPP sets the excitation amplitude, in mV peak-to-peak.
func WithDacVoltPP(v float64) Option {
	return func(cfg *Config) {
		cfg.DacVoltPP = v
	}
}

// WithDFT configures the DFT engine.
func WithDFT(num, src uint32, hanning bool) Option {
	return func(cfg *Config) {
		cfg.DFTNum = num
		cfg.DFTSrc = src
		cfg.Hanning = hanning
	}
}

// WithFIFOThresh sets the FIFO threshold, in words.
func WithFIFOThresh(n uint32) Option {
	return func(cfg *Config) {
		cfg.FIFOThresh = n
	}
}

// WithSeqTimeout bounds the wait for the end of the init sequence.
func WithSeqTimeout(d time.Duration) Option {
	return func(cfg *Config) {
		cfg.SeqTimeout = d
	}
}

// WithRefPath sets the switch matrix routing of the first pass.
func WithRefPath(sw ad5940.SWMatrix) Option {
	return func(cfg *Config) {
		cfg.RefPath = sw
	}
}

// WithMeasPath adds a second pass with the provided switch matrix routing.
func WithMeasPath(sw ad5940.SWMatrix) Option {
	return func(cfg *Config) {
		cfg.MeasPath = &sw
	}
}

// WithMaxSeqLen sets the capacity of the sequence buffer, in words.
func WithMaxSeqLen(n int) Option {
	return func(cfg *Config) {
		cfg.MaxSeqLen = n
	}
}

func (cfg Config) dftCfg() ad5940.DFTCfg {
	return ad5940.DFTCfg{
		Sinc3OSR: cfg.Sinc3OSR,
		Sinc2OSR: cfg.Sinc2OSR,
		DFTNum:   cfg.DFTNum,
		DFTSrc:   cfg.DFTSrc,
		Hanning:  cfg.Hanning,
	}
}

// amplitude returns the waveform generator amplitude word.
func (cfg Config) amplitude() uint32 {
	return uint32(cfg.DacVoltPP/800*2047 + 0.5)
}

// startFreq returns the excitation frequency of the first acquisition.
func (cfg Config) startFreq() float64 {
	if cfg.Sweep.Enable {
		return cfg.Sweep.Current()
	}
	return cfg.SinFreq
}

// passes returns the number of voltage/current pairs per measurement.
func (cfg Config) passes() int {
	if cfg.MeasPath != nil {
		return 2
	}
	return 1
}
