// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bia

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/go-lpc/bioz/ad5940"
	"go-hep.org/x/hep/lcio"
)

func TestLCIO(t *testing.T) {
	tmp, err := os.MkdirTemp("", "bioz-bia-")
	if err != nil {
		t.Fatalf("could not create tmp dir: %+v", err)
	}
	defer os.RemoveAll(tmp)

	const run = 42
	fname := filepath.Join(tmp, "bia.slcio")

	events := []struct {
		raw  []uint32
		imps []Impedance
	}{
		{
			raw: []uint32{u18(1000), u18(-200), u18(50), u18(10)},
			imps: []Impedance{
				{Freq: 50e3, Z: ad5940.Complex{Real: -184615.3, Imag: -76923.1}},
			},
		},
		{
			raw: []uint32{u18(-1), u18(2), u18(-3), u18(4), 5, 6, 7, 8},
			imps: []Impedance{
				{Freq: 10e3, Z: ad5940.Complex{Real: 1, Imag: 2}},
				{Freq: 10e3, Z: ad5940.Complex{Real: 3, Imag: 4}},
			},
		},
	}

	w, err := lcio.Create(fname)
	if err != nil {
		t.Fatalf("could not create LCIO file: %+v", err)
	}
	defer w.Close()

	lw, err := NewLCIOWriter(w, run, DefaultConfig())
	if err != nil {
		t.Fatalf("could not create LCIO writer: %+v", err)
	}
	for i, evt := range events {
		err = lw.Write(evt.raw, evt.imps)
		if err != nil {
			t.Fatalf("could not write event %d: %+v", i, err)
		}
	}
	if got, want := lw.Events(), len(events); got != want {
		t.Fatalf("invalid number of events: got=%d, want=%d", got, want)
	}
	err = w.Close()
	if err != nil {
		t.Fatalf("could not close LCIO file: %+v", err)
	}

	r, err := lcio.Open(fname)
	if err != nil {
		t.Fatalf("could not open LCIO file: %+v", err)
	}
	defer r.Close()

	i := 0
	err = ReadLCIO(r, func(evt Event) error {
		if evt.Run != run || evt.ID != int32(i) {
			t.Fatalf("invalid event header: run=%d, id=%d", evt.Run, evt.ID)
		}
		want := events[i]
		if !reflect.DeepEqual(evt.Imps, want.imps) {
			t.Fatalf("event %d: invalid impedances:\ngot= %+v\nwant=%+v", i, evt.Imps, want.imps)
		}
		for j, v := range want.raw {
			if got, want := evt.Raw[j], ad5940.SignExtend18(v); got != want {
				t.Fatalf("event %d: invalid raw word %d: got=%d, want=%d", i, j, got, want)
			}
		}
		i++
		return nil
	})
	if err != nil {
		t.Fatalf("could not read LCIO file: %+v", err)
	}
	if i != len(events) {
		t.Fatalf("invalid number of events read: got=%d, want=%d", i, len(events))
	}
}
