// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ad5940

import "math"

// Complex is a complex number in rectangular form.
type Complex struct {
	Real float64 `json:"real"`
	Imag float64 `json:"imag"`
}

func (c Complex) Mul(o Complex) Complex {
	return Complex{
		Real: c.Real*o.Real - c.Imag*o.Imag,
		Imag: c.Imag*o.Real + c.Real*o.Imag,
	}
}

// Div returns c/o. Division by zero yields infinities or NaNs.
func (c Complex) Div(o Complex) Complex {
	den := o.Real*o.Real + o.Imag*o.Imag
	return Complex{
		Real: (c.Real*o.Real + c.Imag*o.Imag) / den,
		Imag: (c.Imag*o.Real - c.Real*o.Imag) / den,
	}
}

// Mag returns the magnitude of c.
func (c Complex) Mag() float64 { return math.Hypot(c.Real, c.Imag) }

// Phase returns the argument of c, in radians.
func (c Complex) Phase() float64 { return math.Atan2(c.Imag, c.Real) }

// Valid reports whether c is finite.
func (c Complex) Valid() bool {
	return !math.IsNaN(c.Real) && !math.IsNaN(c.Imag) &&
		!math.IsInf(c.Real, 0) && !math.IsInf(c.Imag, 0)
}

// Ratio returns the complex ratio of the voltage and current DFT
// results, undoing the sign conventions of the DFT engine.
func Ratio(v, i DFT) Complex {
	var (
		num = Complex{Real: float64(v.Real), Imag: -float64(v.Imag)}
		den = Complex{Real: -float64(i.Real), Imag: float64(i.Imag)}
	)
	return num.Div(den)
}
