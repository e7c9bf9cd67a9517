// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package bia implements a periodic bio-impedance acquisition on top
// of an AD5940 analog front-end.
//
// The acquisition is driven by the chip itself: a measurement sequence
// installed in the chip sequencer is re-triggered by the wake-up timer
// at the output data rate, and DFT results are pushed to the data FIFO.
// The host services the FIFO-threshold interrupt with App.ServiceIRQ and
// turns the raw FIFO words into calibrated impedances with App.Process.
package bia // import "github.com/go-lpc/bioz/bia"

import (
	"errors"
	"fmt"
)

var (
	// ErrNotInitialized is returned by control commands issued before
	// a successful Init.
	ErrNotInitialized = errors.New("bia: application not initialized")

	// ErrInvalidCalibration is returned when no valid calibration
	// factor exists for the current frequency.
	ErrInvalidCalibration = errors.New("bia: invalid RTIA calibration")
)

// State is the state of the acquisition.
type State uint8

const (
	StateUninitialized State = iota
	StateConfiguring
	StateCalibrating
	StateSequenceBuilding
	StateArmed
	StateRunning
	StateServicing
	StateStopping
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateConfiguring:
		return "configuring"
	case StateCalibrating:
		return "calibrating"
	case StateSequenceBuilding:
		return "sequence-building"
	case StateArmed:
		return "armed"
	case StateRunning:
		return "running"
	case StateServicing:
		return "servicing"
	case StateStopping:
		return "stopping"
	case StateStopped:
		return "stopped"
	}
	return fmt.Sprintf("State(%d)", uint8(s))
}
