// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bia

import (
	"testing"

	"github.com/go-lpc/bioz/ad5940"
)

func u18(v int32) uint32 { return uint32(v) & 0x3FFFF }

func TestConvert(t *testing.T) {
	raw := []uint32{u18(1000), u18(-200), u18(50), u18(10)}

	// hardware phase convention.
	const a, b, c, d = 1000.0, 200.0, -50.0, 10.0
	den := c*c + d*d
	want := ad5940.Complex{
		Real: (a*c + b*d) / den,
		Imag: (-a*d + b*c) / den,
	}

	for _, tc := range []struct {
		name string
		cal  ad5940.Complex
		want ad5940.Complex
	}{
		{
			name: "unity",
			cal:  ad5940.Complex{Real: 1},
			want: want,
		},
		{
			name: "rcal",
			cal:  ad5940.Complex{Real: 10e3, Imag: 50},
			want: ad5940.Complex{
				Real: want.Real*10e3 - want.Imag*50,
				Imag: want.Imag*10e3 + want.Real*50,
			},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			imps, err := Convert(raw, tc.cal, 50e3)
			if err != nil {
				t.Fatalf("could not convert: %+v", err)
			}
			if len(imps) != 1 {
				t.Fatalf("invalid number of impedances: %d", len(imps))
			}
			got := imps[0]
			if got.Freq != 50e3 {
				t.Fatalf("invalid frequency: %v", got.Freq)
			}
			if !near(got.Z.Real, tc.want.Real, 1e-12) || !near(got.Z.Imag, tc.want.Imag, 1e-12) {
				t.Fatalf("invalid impedance: got=%+v, want=%+v", got.Z, tc.want)
			}
		})
	}

	_, err := Convert(raw[:3], ad5940.Complex{Real: 1}, 50e3)
	if err == nil {
		t.Fatalf("expected an error for a partial sample")
	}
}

func TestImpedancePolar(t *testing.T) {
	imp := Impedance{Z: ad5940.Complex{Real: 0, Imag: -100}}
	if got, want := imp.Mag(), 100.0; !near(got, want, 1e-12) {
		t.Fatalf("invalid magnitude: got=%v, want=%v", got, want)
	}
	if got, want := imp.Phase(), -90.0; !near(got, want, 1e-12) {
		t.Fatalf("invalid phase: got=%v, want=%v", got, want)
	}
}
