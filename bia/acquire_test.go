// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bia

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/go-lpc/bioz/ad5940"
	"github.com/go-lpc/bioz/ad5940/ad5940test"
)

// timerIRQ asserts the interrupt line after each wake-up timer period.
type timerIRQ struct {
	chip *ad5940test.Chip
	v, i [2]int32
}

func (irq *timerIRQ) Wait(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	irq.chip.PushDFT(irq.v, irq.i)
	if !irq.chip.WakeupTimer() {
		return errors.New("wake-up timer stopped")
	}
	return nil
}

func TestAcquire(t *testing.T) {
	const ndata = 3
	app, chip := initTestApp(t, WithNumOfData(ndata))
	err := app.Start()
	if err != nil {
		t.Fatalf("could not start: %+v", err)
	}

	var got []Impedance
	irq := &timerIRQ{chip: chip, v: [2]int32{1000, 0}, i: [2]int32{-1000, 0}}
	err = app.Acquire(context.Background(), irq, func(raw []uint32, imps []Impedance) error {
		if len(raw) != WordsPerSample*len(imps) {
			t.Fatalf("invalid raw data length %d for %d samples", len(raw), len(imps))
		}
		got = append(got, imps...)
		return nil
	})
	if err != nil {
		t.Fatalf("could not acquire: %+v", err)
	}
	if len(got) != ndata {
		t.Fatalf("invalid number of samples: got=%d, want=%d", len(got), ndata)
	}
	if got, want := app.State(), StateStopping; got != want {
		t.Fatalf("invalid state: got=%v, want=%v", got, want)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = app.Acquire(ctx, irq, nil)
	if err != nil {
		t.Fatalf("canceled acquisition failed: %+v", err)
	}
}

func TestAcquireSinkError(t *testing.T) {
	app, chip := initTestApp(t)
	err := app.Start()
	if err != nil {
		t.Fatalf("could not start: %+v", err)
	}

	errSink := errors.New("disk full")
	irq := &timerIRQ{chip: chip, v: [2]int32{1000, 0}, i: [2]int32{-1000, 0}}
	err = app.Acquire(context.Background(), irq, func([]uint32, []Impedance) error {
		return errSink
	})
	if !errors.Is(err, errSink) {
		t.Fatalf("invalid error: got=%+v, want=%+v", err, errSink)
	}
}

func TestFrameCodec(t *testing.T) {
	want := []Impedance{
		{Freq: 10e3, Z: ad5940.Complex{Real: 1, Imag: -2}},
		{Freq: 20e3, Z: ad5940.Complex{Real: 3e5, Imag: 4e-3}},
	}
	got, err := DecodeFrame(encodeFrame(want))
	if err != nil {
		t.Fatalf("could not decode frame: %+v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("invalid frame:\ngot= %+v\nwant=%+v", got, want)
	}

	_, err = DecodeFrame(encodeFrame(want)[:10])
	if err == nil {
		t.Fatalf("expected an error for a truncated frame")
	}
}
