// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net"
	"testing"
	"time"

	"github.com/go-lpc/bioz/ad5940"
	"github.com/go-lpc/bioz/ad5940/ad5940test"
	"github.com/go-lpc/bioz/bia"
)

// chanIRQ asserts the interrupt line each time a sample is queued.
type chanIRQ struct {
	chip *ad5940test.Chip
	c    chan struct{}
}

func (irq *chanIRQ) Wait(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-irq.c:
	}
	irq.chip.PushDFT([2]int32{1000, 0}, [2]int32{-1000, 0})
	if !irq.chip.WakeupTimer() {
		return errors.New("wake-up timer stopped")
	}
	return nil
}

func TestServe(t *testing.T) {
	chip := ad5940test.New()
	msg := log.New(io.Discard, "", 0)
	app := bia.New(
		ad5940.New(chip, ad5940.WithLogger(msg)),
		bia.WithLogger(msg), bia.WithNumOfData(2),
	)
	chip.PushDFT([2]int32{1000, 0}, [2]int32{-1000, 0}) // RTIA calibration

	srv, err := bia.NewServer("localhost:0", app)
	if err != nil {
		t.Fatalf("could not create server: %+v", err)
	}

	var (
		imps = make(chan bia.Impedance, 8)
		irq  = &chanIRQ{chip: chip, c: make(chan struct{})}
		sink = func(raw []uint32, vs []bia.Impedance) error {
			for _, v := range vs {
				imps <- v
			}
			return nil
		}
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errc := make(chan error, 1)
	go func() {
		errc <- serve(ctx, srv, app, irq, sink, time.Millisecond)
	}()

	conn, err := net.Dial("tcp", srv.Addr().String())
	if err != nil {
		t.Fatalf("could not dial server: %+v", err)
	}
	defer conn.Close()

	var (
		enc = json.NewEncoder(conn)
		dec = json.NewDecoder(conn)
	)
	for _, name := range []string{"init", "start"} {
		err = enc.Encode(map[string]string{"name": name})
		if err != nil {
			t.Fatalf("could not send %q: %+v", name, err)
		}
		var rep bia.Reply
		err = dec.Decode(&rep)
		if err != nil {
			t.Fatalf("could not decode %q reply: %+v", name, err)
		}
		if rep.Msg != "ok" {
			t.Fatalf("invalid %q reply: %q", name, rep.Msg)
		}
	}

	for i := 0; i < 2; i++ {
		irq.c <- struct{}{}
		select {
		case imp := <-imps:
			if imp.Z.Real <= 0 {
				t.Fatalf("invalid impedance: %+v", imp)
			}
		case <-time.After(5 * time.Second):
			t.Fatalf("timeout waiting for sample %d", i)
		}
	}

	_ = conn.Close()
	cancel()
	select {
	case err := <-errc:
		if err != nil {
			t.Fatalf("could not serve: %+v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("timeout waiting for server shutdown")
	}
}
