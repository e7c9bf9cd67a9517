// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bia

import (
	"fmt"
	"math"

	"github.com/go-lpc/bioz/ad5940"
)

// WordsPerSample is the number of FIFO words of one impedance sample:
// the real and imaginary DFT bins of the voltage, then of the current.
const WordsPerSample = 4

// Impedance is a calibrated impedance sample.
type Impedance struct {
	Freq float64        `json:"freq"` // excitation frequency, in Hz
	Z    ad5940.Complex `json:"z"`    // impedance, in Ohms
}

// Mag returns the impedance magnitude, in Ohms.
func (imp Impedance) Mag() float64 { return imp.Z.Mag() }

// Phase returns the impedance phase, in degrees.
func (imp Impedance) Phase() float64 { return imp.Z.Phase() * 180 / math.Pi }

// Convert turns raw FIFO words into calibrated impedances.
// raw holds whole samples, see WordsPerSample.
func Convert(raw []uint32, cal ad5940.Complex, freq float64) ([]Impedance, error) {
	if len(raw)%WordsPerSample != 0 {
		return nil, fmt.Errorf("bia: invalid raw data length %d (not a multiple of %d)", len(raw), WordsPerSample)
	}
	out := make([]Impedance, 0, len(raw)/WordsPerSample)
	for i := 0; i < len(raw); i += WordsPerSample {
		var (
			v = ad5940.DFT{
				Real: ad5940.SignExtend18(raw[i+0]),
				Imag: ad5940.SignExtend18(raw[i+1]),
			}
			c = ad5940.DFT{
				Real: ad5940.SignExtend18(raw[i+2]),
				Imag: ad5940.SignExtend18(raw[i+3]),
			}
		)
		z := ad5940.Ratio(v, c).Mul(cal)
		out = append(out, Impedance{Freq: freq, Z: z})
	}
	return out, nil
}
