// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bia

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/go-lpc/bioz/ad5940"
	"go-hep.org/x/hep/lcio"
)

const (
	lcioDetector = "AD5940-BIA"
	lcioColl     = "BIA_Z"
)

// LCIOWriter writes impedance samples as LCIO events.
// Each event holds the samples of one serviced interrupt: the raw FIFO
// words and the calibrated (freq, real, imag) triplets.
type LCIOWriter struct {
	w   *lcio.Writer
	run int32
	evt int32
	obj *lcio.GenericObject
}

// NewLCIOWriter writes the run header of run to w.
func NewLCIOWriter(w *lcio.Writer, run int32, cfg Config) (*LCIOWriter, error) {
	err := w.WriteRunHeader(&lcio.RunHeader{
		RunNumber: run,
		Detector:  lcioDetector,
		Descr:     "bio-impedance acquisition",
		Params: lcio.Params{
			Ints: map[string][]int32{
				"NumOfData":  {int32(cfg.NumOfData)},
				"FIFOThresh": {int32(cfg.FIFOThresh)},
				"DFTNum":     {int32(cfg.DFTNum)},
				"Passes":     {int32(cfg.passes())},
			},
			Floats: map[string][]float32{
				"ODR":     {float32(cfg.ODR)},
				"SinFreq": {float32(cfg.SinFreq)},
				"Rcal":    {float32(cfg.RcalVal)},
				"Sweep": {
					float32(cfg.Sweep.Start),
					float32(cfg.Sweep.Stop),
					float32(cfg.Sweep.Points),
				},
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("bia: could not write LCIO run header: %w", err)
	}
	return &LCIOWriter{
		w:   w,
		run: run,
		obj: &lcio.GenericObject{
			Data: []lcio.GenericObjectData{{}},
		},
	}, nil
}

// Write writes one event with the provided raw words and impedances.
func (lw *LCIOWriter) Write(raw []uint32, imps []Impedance) error {
	evt := lcio.Event{
		RunNumber:   lw.run,
		EventNumber: lw.evt,
		TimeStamp:   time.Now().UTC().UnixNano(),
		Detector:    lcioDetector,
	}

	i32s := make([]int32, len(raw))
	for i, v := range raw {
		i32s[i] = ad5940.SignExtend18(v)
	}
	f64s := make([]float64, 0, 3*len(imps))
	for _, imp := range imps {
		f64s = append(f64s, imp.Freq, imp.Z.Real, imp.Z.Imag)
	}
	lw.obj.Data[0].I32s = i32s
	lw.obj.Data[0].F64s = f64s
	evt.Add(lcioColl, lw.obj)

	err := lw.w.WriteEvent(&evt)
	if err != nil {
		return fmt.Errorf("bia: could not write LCIO event %d: %w", lw.evt, err)
	}
	lw.evt++
	return nil
}

// Events returns the number of events written.
func (lw *LCIOWriter) Events() int { return int(lw.evt) }

// Event is an impedance event read back from an LCIO file.
type Event struct {
	Run  int32
	ID   int32
	Raw  []int32 // sign-extended DFT bins
	Imps []Impedance
}

// ReadLCIO calls f with each impedance event of r.
func ReadLCIO(r *lcio.Reader, f func(evt Event) error) error {
	for r.Next() {
		evt := r.Event()
		obj, ok := evt.Get(lcioColl).(*lcio.GenericObject)
		if !ok || len(obj.Data) == 0 {
			return fmt.Errorf("bia: event %d has no %q collection", evt.EventNumber, lcioColl)
		}
		data := obj.Data[0]
		if len(data.F64s)%3 != 0 {
			return fmt.Errorf("bia: event %d has an invalid impedance payload (n=%d)", evt.EventNumber, len(data.F64s))
		}
		out := Event{
			Run:  evt.RunNumber,
			ID:   evt.EventNumber,
			Raw:  data.I32s,
			Imps: make([]Impedance, 0, len(data.F64s)/3),
		}
		for i := 0; i < len(data.F64s); i += 3 {
			out.Imps = append(out.Imps, Impedance{
				Freq: data.F64s[i],
				Z:    ad5940.Complex{Real: data.F64s[i+1], Imag: data.F64s[i+2]},
			})
		}
		err := f(out)
		if err != nil {
			return err
		}
	}
	err := r.Err()
	if err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("bia: could not read LCIO events: %w", err)
	}
	return nil
}
