// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bia

import (
	"context"
	"fmt"
)

// IRQ is the interrupt line of the front-end.
type IRQ interface {
	// Wait blocks until the interrupt line is asserted or ctx is done.
	Wait(ctx context.Context) error
}

// Sink consumes the raw words and the impedances of a serviced interrupt.
type Sink func(raw []uint32, imps []Impedance) error

// Acquire services interrupts from irq until the acquisition stops,
// ctx is done or an error occurs. Each burst of data is converted and
// handed to sink.
func (app *App) Acquire(ctx context.Context, irq IRQ, sink Sink) error {
	buf := make([]uint32, app.Config().FIFOThresh)
	for {
		err := irq.Wait(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("bia: could not wait for interrupt: %w", err)
		}

		n, err := app.ServiceIRQ(ctx, buf)
		if err != nil {
			return err
		}

		if n > 0 {
			imps, err := app.Process(buf[:n])
			if err != nil {
				return fmt.Errorf("bia: could not process data: %w", err)
			}
			if sink != nil {
				err = sink(buf[:n], imps)
				if err != nil {
					return fmt.Errorf("bia: could not consume data: %w", err)
				}
			}
		}

		switch app.State() {
		case StateRunning:
		default:
			return nil
		}
	}
}
