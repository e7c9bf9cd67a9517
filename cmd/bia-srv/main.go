// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command bia-srv exposes the control surface of a bio-impedance
// acquisition over TCP.
//
// Requests are JSON objects {"name": ..., "args": ...}, with name one of
// init, start, stop, stop-sync, freq, status, cal, dump or shutdown.
// Samples acquired while running are logged and, optionally, stored in
// an LCIO file.
package main // import "github.com/go-lpc/bioz/cmd/bia-srv"

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/go-lpc/bioz"
	"github.com/go-lpc/bioz/ad5940"
	"github.com/go-lpc/bioz/bia"
	"github.com/go-lpc/bioz/internal/spidev"
	"go-hep.org/x/hep/lcio"
	"golang.org/x/sync/errgroup"
)

func main() {
	var (
		addr  = flag.String("addr", ":8866", "[ip]:port to listen on")
		spi   = flag.String("spi", "/dev/spidev0.0", "path to the spidev device")
		speed = flag.Uint("spi-speed", 8000000, "SPI clock frequency (Hz)")
		pin   = flag.Int("irq", 25, "GPIO pin of the interrupt line")
		oname = flag.String("o", "", "path to the output LCIO file")
		run   = flag.Int("run", 0, "run number stored in the LCIO file")
	)

	flag.Parse()

	log.SetPrefix("bia-srv: ")
	log.SetFlags(0)

	if vers, _ := bioz.Version(); vers != "" {
		log.Printf("version: %s", vers)
	}

	dev, err := spidev.Open(*spi, uint32(*speed))
	if err != nil {
		log.Fatalf("could not open SPI device: %+v", err)
	}
	defer dev.Close()

	irq, err := spidev.OpenIRQ(*pin)
	if err != nil {
		log.Fatalf("could not open interrupt line: %+v", err)
	}
	defer irq.Close()

	app := bia.New(ad5940.New(dev))
	srv, err := bia.NewServer(*addr, app)
	if err != nil {
		log.Fatalf("could not create server: %+v", err)
	}

	sink := logSink
	if *oname != "" {
		w, err := lcio.Create(*oname)
		if err != nil {
			log.Fatalf("could not create LCIO file: %+v", err)
		}
		defer w.Close()

		out, err := bia.NewLCIOWriter(w, int32(*run), app.Config())
		if err != nil {
			log.Fatalf("could not create LCIO writer: %+v", err)
		}
		sink = out.Write
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	log.Printf("running bia-srv server on %q...", srv.Addr())
	err = serve(ctx, srv, app, irq, sink, 100*time.Millisecond)
	if err != nil {
		log.Fatalf("could not serve: %+v", err)
	}

	err = app.Shutdown()
	if err != nil {
		log.Printf("could not shutdown front-end: %+v", err)
	}
}

// serve runs the control server and services the interrupt line
// whenever an acquisition has been started, until ctx is done.
func serve(ctx context.Context, srv *bia.Server, app *bia.App, irq bia.IRQ, sink bia.Sink, freq time.Duration) error {
	grp, ctx := errgroup.WithContext(ctx)
	grp.Go(func() error {
		return srv.Serve(ctx)
	})

	grp.Go(func() error {
		tick := time.NewTicker(freq)
		defer tick.Stop()

		for {
			select {
			case <-ctx.Done():
				return nil
			case <-tick.C:
				if app.State() != bia.StateRunning {
					continue
				}
				err := app.Acquire(ctx, irq, sink)
				if err != nil {
					// a halted acquisition is reported through the status.
					log.Printf("acquisition error: %+v", err)
				}
			}
		}
	})

	err := grp.Wait()
	if err != nil {
		return fmt.Errorf("could not run server: %w", err)
	}
	return nil
}

func logSink(raw []uint32, imps []bia.Impedance) error {
	for _, imp := range imps {
		log.Printf("f=%10.3f Hz |Z|=%12.3f Ohm phase=%8.3f deg", imp.Freq, imp.Mag(), imp.Phase())
	}
	return nil
}
