// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ad5940

import (
	"fmt"
	"math"
)

// Sweep describes a frequency sweep.
type Sweep struct {
	Enable bool    `json:"enable"`
	Start  float64 `json:"start"`  // first frequency, in Hz
	Stop   float64 `json:"stop"`   // last frequency, in Hz
	Points int     `json:"points"` // number of frequencies
	Log    bool    `json:"log"`    // logarithmic spacing
	Index  int     `json:"index"`  // current point
}

// Validate checks the sweep parameters.
func (sw Sweep) Validate() error {
	switch {
	case sw.Points <= 0:
		return fmt.Errorf("ad5940: invalid sweep points %d", sw.Points)
	case sw.Start <= 0 || sw.Stop <= 0:
		return fmt.Errorf("ad5940: invalid sweep range [%v, %v] Hz", sw.Start, sw.Stop)
	}
	return nil
}

// Freq returns the frequency of point i.
func (sw Sweep) Freq(i int) float64 {
	n := sw.Points
	switch {
	case n <= 1 || i <= 0:
		return sw.Start
	case i >= n-1:
		return sw.Stop
	}
	x := float64(i) / float64(n-1)
	if sw.Log {
		return sw.Start * math.Pow(10, x*math.Log10(sw.Stop/sw.Start))
	}
	return sw.Start + (sw.Stop-sw.Start)*x
}

// Current returns the frequency at the cursor.
func (sw Sweep) Current() float64 { return sw.Freq(sw.Index) }

// Next returns the frequency following the cursor.
func (sw Sweep) Next() float64 { return sw.Freq(sw.next()) }

// Advance moves the cursor to the next point, wrapping to the first
// point after the last one.
func (sw *Sweep) Advance() { sw.Index = sw.next() }

func (sw Sweep) next() int {
	if sw.Points <= 1 {
		return 0
	}
	return (sw.Index + 1) % sw.Points
}
