// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bia

import (
	"fmt"
	"strings"
)

// Cmd is a control command of the acquisition.
type Cmd uint8

const (
	CtrlStart Cmd = iota
	CtrlStopNow
	CtrlStopSync
	CtrlGetFreq
	CtrlShutdown
)

func (cmd Cmd) String() string {
	switch cmd {
	case CtrlStart:
		return "start"
	case CtrlStopNow:
		return "stop"
	case CtrlStopSync:
		return "stop-sync"
	case CtrlGetFreq:
		return "freq"
	case CtrlShutdown:
		return "shutdown"
	}
	return fmt.Sprintf("Cmd(%d)", uint8(cmd))
}

// ParseCmd returns the control command with the provided name.
func ParseCmd(name string) (Cmd, error) {
	switch strings.ToLower(name) {
	case "start":
		return CtrlStart, nil
	case "stop", "stop-now":
		return CtrlStopNow, nil
	case "stop-sync":
		return CtrlStopSync, nil
	case "freq":
		return CtrlGetFreq, nil
	case "shutdown":
		return CtrlShutdown, nil
	}
	return 0, fmt.Errorf("bia: unknown control command %q", name)
}

// Ctrl runs the control command cmd.
// out receives the excitation frequency for CtrlGetFreq and may be nil
// for the other commands.
func (app *App) Ctrl(cmd Cmd, out *float64) error {
	switch cmd {
	case CtrlStart:
		return app.Start()
	case CtrlStopNow:
		return app.StopNow()
	case CtrlStopSync:
		return app.StopSync()
	case CtrlGetFreq:
		if out == nil {
			return fmt.Errorf("bia: nil output for %v", cmd)
		}
		*out = app.Frequency()
		return nil
	case CtrlShutdown:
		return app.Shutdown()
	}
	return fmt.Errorf("bia: invalid control command %v", cmd)
}

// Status is a snapshot of the acquisition.
type Status struct {
	State   string  `json:"state"`
	Freq    float64 `json:"freq"`
	Samples int     `json:"samples"`
	Calib   bool    `json:"calibrated"`
	Err     string  `json:"error,omitempty"`
}

// Status returns a snapshot of the acquisition.
func (app *App) Status() Status {
	app.mu.Lock()
	defer app.mu.Unlock()

	st := Status{
		State:   app.state.String(),
		Freq:    app.last.freq,
		Samples: app.count,
		Calib:   app.cal != nil && !app.calStale,
	}
	if app.err != nil {
		st.Err = app.err.Error()
	}
	return st
}
