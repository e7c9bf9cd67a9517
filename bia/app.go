// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bia

import (
	"context"
	"fmt"
	"log"
	"os"
	"sync"

	"github.com/go-lpc/bioz/ad5940"
	"github.com/go-lpc/bioz/ad5940/seq"
)

const (
	initSeqID = seq.SEQ1
	measSeqID = seq.SEQ0
)

// App is a bio-impedance acquisition.
//
// App serializes all its operations: the interrupt service routine,
// the control commands and the data processing may be called from
// different goroutines.
type App struct {
	mu  sync.Mutex
	msg *log.Logger
	dev *ad5940.Device
	gen seq.Generator
	cfg Config

	state   State
	inited  bool // sequences built and installed at least once
	changed bool // configuration changed since sequences were built
	stop    bool // stop requested at the next interrupt
	count   int  // samples delivered since Start

	cal      []ad5940.Complex // one calibration factor per frequency
	calStale bool             // configuration changed since calibration

	initSeq seq.Info
	measSeq seq.Info

	// frequency point of the last delivered data.
	last struct {
		freq float64
		idx  int
	}

	err error // error that halted the acquisition
}

// New returns a new acquisition on the provided device.
func New(dev *ad5940.Device, opts ...Option) *App {
	cfg := DefaultConfig()
	cfg.msg = log.New(os.Stdout, "bia: ", 0)
	for _, opt := range opts {
		opt(&cfg)
	}

	app := &App{
		msg:     cfg.msg,
		dev:     dev,
		cfg:     cfg,
		state:   StateUninitialized,
		changed: true,
	}
	app.last.freq = cfg.startFreq()
	return app
}

// Device returns the underlying front-end.
func (app *App) Device() *ad5940.Device { return app.dev }

// Config returns a copy of the current configuration.
func (app *App) Config() Config {
	app.mu.Lock()
	defer app.mu.Unlock()
	return app.cfg
}

// SetConfig updates the configuration. The new configuration is
// taken into account at the next Init.
func (app *App) SetConfig(opts ...Option) error {
	app.mu.Lock()
	defer app.mu.Unlock()

	if app.running() {
		return fmt.Errorf("bia: could not reconfigure a running acquisition")
	}
	cfg := app.cfg
	for _, opt := range opts {
		opt(&cfg)
	}
	err := cfg.Validate()
	if err != nil {
		return err
	}
	app.cfg = cfg
	app.msg = cfg.msg
	app.changed = true
	app.calStale = true
	app.last.freq = cfg.startFreq()
	return nil
}

// RequestCalibration requests a new RTIA calibration at the next Init.
func (app *App) RequestCalibration() {
	app.mu.Lock()
	defer app.mu.Unlock()
	app.cfg.ReDoRtiaCal = true
}

// State returns the current state of the acquisition.
func (app *App) State() State {
	app.mu.Lock()
	defer app.mu.Unlock()
	return app.state
}

// Err returns the error that halted the acquisition, if any.
func (app *App) Err() error {
	app.mu.Lock()
	defer app.mu.Unlock()
	return app.err
}

// Calibration returns the RTIA calibration table, one factor per
// sweep point. It returns nil when no valid calibration exists.
func (app *App) Calibration() []ad5940.Complex {
	app.mu.Lock()
	defer app.mu.Unlock()
	if app.cal == nil {
		return nil
	}
	out := make([]ad5940.Complex, len(app.cal))
	copy(out, app.cal)
	return out
}

// SetCalibration installs a previously measured calibration table.
func (app *App) SetCalibration(cal []ad5940.Complex) error {
	app.mu.Lock()
	defer app.mu.Unlock()

	if got, want := len(cal), app.calPoints(); got != want {
		return fmt.Errorf("bia: invalid calibration table size %d (want=%d): %w", got, want, ErrInvalidCalibration)
	}
	for i, c := range cal {
		if !c.Valid() || c.Mag() == 0 {
			return fmt.Errorf("bia: invalid calibration factor #%d %+v: %w", i, c, ErrInvalidCalibration)
		}
	}
	app.cal = make([]ad5940.Complex, len(cal))
	copy(app.cal, cal)
	app.calStale = false
	app.cfg.ReDoRtiaCal = false
	return nil
}

// CalFreqs returns the frequencies of the calibration table.
func (app *App) CalFreqs() []float64 {
	app.mu.Lock()
	defer app.mu.Unlock()
	out := make([]float64, app.calPoints())
	for i := range out {
		out[i] = app.calFreq(i)
	}
	return out
}

func (app *App) calPoints() int {
	if app.cfg.Sweep.Enable {
		return app.cfg.Sweep.Points
	}
	return 1
}

func (app *App) calFreq(i int) float64 {
	if app.cfg.Sweep.Enable {
		return app.cfg.Sweep.Freq(i)
	}
	return app.cfg.SinFreq
}

func (app *App) running() bool {
	return app.state == StateRunning || app.state == StateServicing
}

// Init configures the chip, calibrates the RTIA if needed, builds and
// installs the init and measurement sequences and runs the init
// sequence once. buf backs the sequence generator.
func (app *App) Init(ctx context.Context, buf []uint32) error {
	app.mu.Lock()
	defer app.mu.Unlock()

	if app.running() {
		return fmt.Errorf("bia: could not initialize a running acquisition")
	}
	if len(buf) == 0 {
		return fmt.Errorf("bia: invalid sequence buffer: %w", seq.ErrInvalidArgument)
	}
	err := app.cfg.Validate()
	if err != nil {
		return err
	}

	err = app.init(ctx, buf)
	if err != nil {
		app.state = StateUninitialized
		app.changed = true
		return err
	}
	return nil
}

func (app *App) init(ctx context.Context, buf []uint32) error {
	app.state = StateConfiguring
	err := app.dev.WakeUp(ad5940.DefaultWakeupTries)
	if err != nil {
		return fmt.Errorf("bia: could not wake up AFE: %w", err)
	}

	err = app.dev.SEQCfg(ad5940.SEQCfg{Enable: false})
	if err != nil {
		return fmt.Errorf("bia: could not configure sequencer: %w", err)
	}
	err = app.dev.INTCCfg(ad5940.INTC1, ad5940.INTSRC_ALLINT, true)
	if err != nil {
		return fmt.Errorf("bia: could not configure interrupts: %w", err)
	}
	err = app.dev.INTCCfg(ad5940.INTC0, ad5940.INTSRC_DATAFIFOTHRESH, true)
	if err != nil {
		return fmt.Errorf("bia: could not configure interrupts: %w", err)
	}
	err = app.dev.INTCClrFlag(ad5940.INTSRC_ALLINT)
	if err != nil {
		return fmt.Errorf("bia: could not clear interrupts: %w", err)
	}

	if app.cal == nil || app.calStale || app.cfg.ReDoRtiaCal {
		app.state = StateCalibrating
		err = app.calibrate(ctx)
		if err != nil {
			return fmt.Errorf("bia: could not calibrate RTIA: %w", err)
		}
	}

	if !app.inited || app.changed {
		app.state = StateSequenceBuilding
		err = app.build(buf)
		if err != nil {
			return err
		}
		app.changed = false
	}

	err = app.arm(ctx)
	if err != nil {
		return err
	}

	app.inited = true
	app.state = StateArmed
	return nil
}

func (app *App) calibrate(ctx context.Context) error {
	app.cal = nil
	n := app.calPoints()
	cal := make([]ad5940.Complex, n)
	for i := range cal {
		err := ctx.Err()
		if err != nil {
			return err
		}
		freq := app.calFreq(i)
		cal[i], err = app.dev.RtiaCal(ctx, ad5940.RtiaCalCfg{
			SysClk:    app.cfg.SysClkFreq,
			AdcClk:    app.cfg.AdcClkFreq,
			Freq:      freq,
			Rcal:      app.cfg.RcalVal,
			Rtia:      app.cfg.Rtia,
			PGA:       app.cfg.PGA,
			Amplitude: app.cfg.amplitude(),
			Filt:      app.cfg.dftCfg(),
			Timeout:   app.cfg.SeqTimeout,
		})
		if err != nil {
			return fmt.Errorf("bia: could not calibrate at %v Hz (point %d/%d): %w", freq, i+1, n, err)
		}
	}
	app.cal = cal
	app.calStale = false
	app.cfg.ReDoRtiaCal = false
	return nil
}

func (app *App) build(buf []uint32) error {
	// FIFOCfg disables the FIFO while reconfiguring it.
	err := app.dev.FIFOCfg(ad5940.FIFOCfg{
		Enable: true,
		Src:    ad5940.FIFOSRC_DFT,
		Thresh: app.cfg.FIFOThresh,
	})
	if err != nil {
		return fmt.Errorf("bia: could not configure data FIFO: %w", err)
	}

	err = app.gen.Init(buf)
	if err != nil {
		return fmt.Errorf("bia: could not initialize sequence generator: %w", err)
	}
	app.dev.SetGenerator(&app.gen)
	defer app.dev.SetGenerator(nil)

	app.msg.Printf("building init sequence...")
	cmds, err := app.record(app.initSequence)
	if err != nil {
		return fmt.Errorf("bia: could not build init sequence: %w", err)
	}
	app.initSeq = seq.Info{ID: initSeqID, Addr: app.cfg.SeqStartAddr, Cmds: cmds}

	app.msg.Printf("building measurement sequence...")
	cmds, err = app.record(app.measSequence)
	if err != nil {
		return fmt.Errorf("bia: could not build measurement sequence: %w", err)
	}
	app.measSeq = seq.Info{ID: measSeqID, Addr: app.initSeq.End(), Cmds: cmds}
	app.dev.SetGenerator(nil)

	for _, info := range []seq.Info{app.initSeq, app.measSeq} {
		err = app.dev.SEQCmdWrite(info.Addr, info.Cmds)
		if err != nil {
			return fmt.Errorf("bia: could not write SEQ%d to SRAM: %w", info.ID, err)
		}
	}
	app.msg.Printf("sequences: init=%d words @%d, measurement=%d words @%d",
		app.initSeq.Len(), app.initSeq.Addr, app.measSeq.Len(), app.measSeq.Addr,
	)
	return nil
}

// record runs build while recording and returns a copy of the sequence.
func (app *App) record(build func() error) ([]uint32, error) {
	app.gen.SetRecording(true)
	err := build()
	if err != nil {
		app.gen.SetRecording(false)
		return nil, err
	}
	cmds, err := app.gen.Fetch()
	if err != nil {
		return nil, err
	}
	out := make([]uint32, len(cmds))
	copy(out, cmds)
	return out, nil
}

func (app *App) arm(ctx context.Context) error {
	err := app.dev.SEQInfoCfg(app.initSeq)
	if err != nil {
		return fmt.Errorf("bia: could not install init sequence: %w", err)
	}
	err = app.dev.SEQCfg(ad5940.SEQCfg{Enable: true})
	if err != nil {
		return fmt.Errorf("bia: could not enable sequencer: %w", err)
	}
	err = app.dev.SEQTrigger(initSeqID)
	if err != nil {
		return fmt.Errorf("bia: could not run init sequence: %w", err)
	}
	err = app.dev.WaitFlag(ctx, ad5940.INTC1, ad5940.INTSRC_ENDSEQ, app.cfg.SeqTimeout)
	if err != nil {
		return fmt.Errorf("bia: init sequence did not complete: %w", err)
	}

	err = app.dev.SEQInfoCfg(app.measSeq)
	if err != nil {
		return fmt.Errorf("bia: could not install measurement sequence: %w", err)
	}
	err = app.dev.SEQCfg(ad5940.SEQCfg{Enable: true})
	if err != nil {
		return fmt.Errorf("bia: could not enable sequencer: %w", err)
	}
	err = app.dev.INTCClrFlag(ad5940.INTSRC_ALLINT)
	if err != nil {
		return fmt.Errorf("bia: could not clear interrupts: %w", err)
	}
	return nil
}

// Start arms the wake-up timer, starting a periodic acquisition.
func (app *App) Start() error {
	app.mu.Lock()
	defer app.mu.Unlock()

	switch {
	case app.running():
		return fmt.Errorf("bia: acquisition already running")
	case !app.inited || (app.state != StateArmed && app.state != StateStopping):
		return fmt.Errorf("bia: could not start acquisition in state %v: %w", app.state, ErrNotInitialized)
	case app.changed || app.calStale:
		return fmt.Errorf("bia: configuration changed since last init: %w", ErrNotInitialized)
	}

	err := app.dev.WakeUp(ad5940.DefaultWakeupTries)
	if err != nil {
		return fmt.Errorf("bia: could not wake up AFE: %w", err)
	}

	slp, err := ad5940.WUPTSleepCount(app.cfg.WuptClkFreq, app.cfg.ODR)
	if err != nil {
		return fmt.Errorf("bia: could not compute wake-up timer period: %w", err)
	}
	var wupt ad5940.WUPTCfg
	wupt.Enable = true
	wupt.End = 0
	wupt.Order[0] = measSeqID
	wupt.Wakeup[measSeqID] = 1 // zero costs an extra clock.
	wupt.Sleep[measSeqID] = slp
	err = app.dev.WUPTCfg(wupt)
	if err != nil {
		return fmt.Errorf("bia: could not start wake-up timer: %w", err)
	}

	app.count = 0
	app.stop = false
	app.last.freq = app.cfg.startFreq()
	app.last.idx = app.cfg.Sweep.Index
	app.err = nil
	app.state = StateRunning
	app.msg.Printf("acquisition started (odr=%v Hz, sleep=%d)", app.cfg.ODR, slp)
	return nil
}

// StopNow stops the wake-up timer immediately.
func (app *App) StopNow() error {
	app.mu.Lock()
	defer app.mu.Unlock()
	return app.stopNow()
}

func (app *App) stopNow() error {
	switch {
	case app.running():
	case app.state == StateStopping || app.state == StateStopped:
		return nil
	default:
		return fmt.Errorf("bia: could not stop acquisition in state %v: %w", app.state, ErrNotInitialized)
	}

	err := app.dev.WakeUp(ad5940.DefaultWakeupTries)
	if err != nil {
		return fmt.Errorf("bia: could not wake up AFE: %w", err)
	}
	err = app.dev.WUPTCtrl(false)
	if err != nil {
		return fmt.Errorf("bia: could not stop wake-up timer: %w", err)
	}
	app.state = StateStopping
	app.msg.Printf("acquisition stopped (samples=%d)", app.count)
	return nil
}

// StopSync stops the acquisition at the next serviced interrupt.
func (app *App) StopSync() error {
	app.mu.Lock()
	defer app.mu.Unlock()

	if !app.running() {
		return fmt.Errorf("bia: could not stop acquisition in state %v: %w", app.state, ErrNotInitialized)
	}
	app.stop = true
	return nil
}

// Frequency returns the excitation frequency of the last delivered data.
func (app *App) Frequency() float64 {
	app.mu.Lock()
	defer app.mu.Unlock()
	return app.last.freq
}

// Shutdown stops the acquisition, powers the analog blocks down and
// puts the chip into hibernation.
// A new Init is needed before the next Start.
func (app *App) Shutdown() error {
	app.mu.Lock()
	defer app.mu.Unlock()

	if app.running() {
		err := app.stopNow()
		if err != nil {
			return err
		}
	}

	err := app.dev.WakeUp(ad5940.DefaultWakeupTries)
	if err != nil {
		return fmt.Errorf("bia: could not wake up AFE: %w", err)
	}
	err = app.dev.LPLoopCfg(ad5940.LPLoopCfg{})
	if err != nil {
		return fmt.Errorf("bia: could not power down LP loop: %w", err)
	}
	err = app.dev.REFCfg(ad5940.RefCfg{})
	if err != nil {
		return fmt.Errorf("bia: could not power down references: %w", err)
	}
	err = app.dev.Hibernate()
	if err != nil {
		return fmt.Errorf("bia: could not hibernate AFE: %w", err)
	}
	app.state = StateStopped
	app.msg.Printf("AFE shut down")
	return nil
}
