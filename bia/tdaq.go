// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bia

import (
	"bytes"
	"fmt"

	"github.com/go-daq/tdaq"
)

// Node drives an acquisition from a tdaq run-control.
type Node struct {
	app  *App
	irq  IRQ
	buf  []uint32 // sequence generator buffer
	data chan []byte
	n    int // number of frames produced during the current run
}

// NewNode returns a tdaq node for app, serviced from irq.
func NewNode(app *App, irq IRQ) *Node {
	return &Node{
		app:  app,
		irq:  irq,
		buf:  make([]uint32, app.Config().MaxSeqLen),
		data: make(chan []byte, 1024),
	}
}

// OnConfig decodes an optional (excitation frequency, output data rate)
// pair from the request and applies it.
func (node *Node) OnConfig(ctx tdaq.Context, resp *tdaq.Frame, req tdaq.Frame) error {
	ctx.Msg.Debugf("received /config command...")
	if len(req.Body) == 0 {
		return nil
	}

	dec := tdaq.NewDecoder(bytes.NewReader(req.Body))
	var (
		freq = dec.ReadF64()
		odr  = dec.ReadF64()
	)
	if err := dec.Err(); err != nil {
		return fmt.Errorf("could not decode /config payload: %w", err)
	}

	err := node.app.SetConfig(WithSinFreq(freq), WithODR(odr))
	if err != nil {
		ctx.Msg.Errorf("could not configure acquisition: %+v", err)
		return fmt.Errorf("could not configure acquisition: %w", err)
	}
	return nil
}

func (node *Node) OnInit(ctx tdaq.Context, resp *tdaq.Frame, req tdaq.Frame) error {
	ctx.Msg.Debugf("received /init command...")
	err := node.app.Init(ctx.Ctx, node.buf)
	if err != nil {
		ctx.Msg.Errorf("could not initialize acquisition: %+v", err)
		return fmt.Errorf("could not initialize acquisition: %w", err)
	}
	return nil
}

func (node *Node) OnReset(ctx tdaq.Context, resp *tdaq.Frame, req tdaq.Frame) error {
	ctx.Msg.Debugf("received /reset command...")
	if node.app.State() == StateRunning {
		err := node.app.StopNow()
		if err != nil {
			return fmt.Errorf("could not stop acquisition: %w", err)
		}
	}
	node.app.RequestCalibration()
	node.n = 0
	return nil
}

func (node *Node) OnStart(ctx tdaq.Context, resp *tdaq.Frame, req tdaq.Frame) error {
	ctx.Msg.Debugf("received /start command...")
	node.n = 0
	err := node.app.Start()
	if err != nil {
		ctx.Msg.Errorf("could not start acquisition: %+v", err)
		return fmt.Errorf("could not start acquisition: %w", err)
	}
	return nil
}

func (node *Node) OnStop(ctx tdaq.Context, resp *tdaq.Frame, req tdaq.Frame) error {
	ctx.Msg.Debugf("received /stop command... -> n=%d", node.n)
	err := node.app.StopNow()
	if err != nil {
		ctx.Msg.Errorf("could not stop acquisition: %+v", err)
		return fmt.Errorf("could not stop acquisition: %w", err)
	}
	return nil
}

func (node *Node) OnQuit(ctx tdaq.Context, resp *tdaq.Frame, req tdaq.Frame) error {
	ctx.Msg.Debugf("received /quit command...")
	err := node.app.Shutdown()
	if err != nil {
		ctx.Msg.Errorf("could not shut down AFE: %+v", err)
		return fmt.Errorf("could not shut down AFE: %w", err)
	}
	return nil
}

// Output sends the impedance frames on the /bia output.
func (node *Node) Output(ctx tdaq.Context, dst *tdaq.Frame) error {
	select {
	case <-ctx.Ctx.Done():
		dst.Body = nil
		return nil
	case data := <-node.data:
		dst.Body = data
	}
	return nil
}

// Run services the acquisition during a run.
func (node *Node) Run(ctx tdaq.Context) error {
	err := node.app.Acquire(ctx.Ctx, node.irq, func(raw []uint32, imps []Impedance) error {
		select {
		case node.data <- encodeFrame(imps):
			node.n++
		default:
			ctx.Msg.Warnf("output queue full: dropping %d samples", len(imps))
		}
		return nil
	})
	if err != nil {
		ctx.Msg.Errorf("acquisition failed: %+v", err)
		return err
	}
	return nil
}

// encodeFrame encodes impedances as a sample count followed by
// (freq, real, imag) triplets.
func encodeFrame(imps []Impedance) []byte {
	buf := new(bytes.Buffer)
	enc := tdaq.NewEncoder(buf)
	enc.WriteU32(uint32(len(imps)))
	for _, imp := range imps {
		enc.WriteF64(imp.Freq)
		enc.WriteF64(imp.Z.Real)
		enc.WriteF64(imp.Z.Imag)
	}
	return buf.Bytes()
}

// DecodeFrame decodes a frame of the /bia output.
func DecodeFrame(p []byte) ([]Impedance, error) {
	dec := tdaq.NewDecoder(bytes.NewReader(p))
	n := int(dec.ReadU32())
	if err := dec.Err(); err != nil {
		return nil, fmt.Errorf("bia: could not decode frame header: %w", err)
	}
	imps := make([]Impedance, n)
	for i := range imps {
		imps[i].Freq = dec.ReadF64()
		imps[i].Z.Real = dec.ReadF64()
		imps[i].Z.Imag = dec.ReadF64()
	}
	if err := dec.Err(); err != nil {
		return nil, fmt.Errorf("bia: could not decode frame: %w", err)
	}
	return imps, nil
}
