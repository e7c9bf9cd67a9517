// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bia

import (
	"context"
	"fmt"

	"github.com/go-lpc/bioz/ad5940"
)

// ServiceIRQ services a FIFO-threshold interrupt: it reads a burst of
// raw words from the data FIFO into buf and returns the number of words
// read. buf must hold at least one sample.
//
// Data delivered after the acquisition stopped is discarded.
// An error halts the acquisition.
func (app *App) ServiceIRQ(ctx context.Context, buf []uint32) (int, error) {
	app.mu.Lock()
	defer app.mu.Unlock()

	if len(buf) < WordsPerSample {
		return 0, fmt.Errorf("bia: buffer too small (len=%d, want>=%d)", len(buf), WordsPerSample)
	}

	switch app.state {
	case StateRunning:
	case StateArmed, StateStopping, StateStopped:
		return 0, app.discard()
	default:
		return 0, fmt.Errorf("bia: could not service interrupt in state %v: %w", app.state, ErrNotInitialized)
	}

	err := ctx.Err()
	if err != nil {
		return 0, err
	}

	app.state = StateServicing
	n, err := app.service(buf)
	if err != nil {
		app.halt(err)
		return n, err
	}
	if app.state == StateServicing {
		app.state = StateRunning
	}
	return n, nil
}

func (app *App) service(buf []uint32) (int, error) {
	dev := app.dev
	err := dev.WakeUp(ad5940.DefaultWakeupTries)
	if err != nil {
		return 0, fmt.Errorf("bia: could not wake up AFE: %w", err)
	}
	err = dev.SleepKey(false)
	if err != nil {
		return 0, fmt.Errorf("bia: could not lock sleep: %w", err)
	}

	ok, err := dev.INTCTestFlag(ad5940.INTC0, ad5940.INTSRC_DATAFIFOTHRESH)
	if err != nil {
		return 0, fmt.Errorf("bia: could not read interrupt flags: %w", err)
	}

	n := 0
	if ok {
		n, err = app.readFIFO(buf)
		if err != nil {
			return 0, err
		}
		err = dev.INTCClrFlag(ad5940.INTSRC_DATAFIFOTHRESH)
		if err != nil {
			return 0, fmt.Errorf("bia: could not clear interrupt flags: %w", err)
		}
		err = app.afterAcquire(n)
		if err != nil {
			return 0, err
		}
	}

	err = dev.SleepKey(true)
	if err != nil {
		return 0, fmt.Errorf("bia: could not unlock sleep: %w", err)
	}
	return n, nil
}

// readFIFO reads a burst of whole samples from the data FIFO.
func (app *App) readFIFO(buf []uint32) (int, error) {
	cnt, err := app.dev.FIFOCount()
	if err != nil {
		return 0, fmt.Errorf("bia: could not read FIFO count: %w", err)
	}
	n := cnt
	if n > len(buf) {
		n = len(buf)
	}
	if n > int(app.cfg.FIFOThresh) {
		n = int(app.cfg.FIFOThresh)
	}
	n -= n % WordsPerSample
	if n == 0 {
		return 0, nil
	}
	err = app.dev.FIFORead(buf[:n])
	if err != nil {
		return 0, fmt.Errorf("bia: could not read FIFO: %w", err)
	}
	return n, nil
}

// afterAcquire records the frequency of the delivered data, checks the
// stop conditions and advances the frequency sweep.
func (app *App) afterAcquire(n int) error {
	if n == 0 {
		return nil
	}
	app.last.freq = app.cfg.startFreq()
	app.last.idx = app.cfg.Sweep.Index

	app.count += n / WordsPerSample
	if app.cfg.NumOfData > 0 && app.count >= app.cfg.NumOfData {
		return app.stopTimer()
	}
	if app.stop {
		return app.stopTimer()
	}

	if app.cfg.Sweep.Enable {
		app.cfg.Sweep.Advance()
		err := app.dev.WGFreqCtrl(app.cfg.Sweep.Current(), app.cfg.SysClkFreq)
		if err != nil {
			return fmt.Errorf("bia: could not advance frequency sweep: %w", err)
		}
	}
	return nil
}

func (app *App) stopTimer() error {
	err := app.dev.WUPTCtrl(false)
	if err != nil {
		return fmt.Errorf("bia: could not stop wake-up timer: %w", err)
	}
	app.stop = false
	app.state = StateStopping
	app.msg.Printf("acquisition stopped (samples=%d)", app.count)
	return nil
}

// discard drops data delivered while no acquisition is running.
func (app *App) discard() error {
	err := app.dev.WakeUp(ad5940.DefaultWakeupTries)
	if err != nil {
		return fmt.Errorf("bia: could not wake up AFE: %w", err)
	}
	err = app.dev.INTCClrFlag(ad5940.INTSRC_DATAFIFOTHRESH)
	if err != nil {
		return fmt.Errorf("bia: could not clear interrupt flags: %w", err)
	}
	return nil
}

// halt stops the acquisition after a servicing error.
func (app *App) halt(err error) {
	app.err = err
	app.state = StateStopped
	e := app.dev.WUPTCtrl(false)
	if e != nil {
		app.msg.Printf("could not stop wake-up timer: %+v", e)
	}
	app.msg.Printf("acquisition halted: %+v", err)
}

// Process converts raw FIFO words into calibrated impedances, using
// the calibration factor of the frequency of the last delivered data.
// With a measurement path, consecutive impedances alternate between
// the reference and the measurement paths.
func (app *App) Process(raw []uint32) ([]Impedance, error) {
	app.mu.Lock()
	defer app.mu.Unlock()

	if app.cal == nil || app.calStale || app.last.idx >= len(app.cal) {
		return nil, ErrInvalidCalibration
	}
	return Convert(raw, app.cal[app.last.idx], app.last.freq)
}
