// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command bia-tdaq starts a TDAQ server driving a bio-impedance acquisition.
//
// The SPI device and the GPIO pin of the interrupt line are read from
// the BIA_SPI (default: /dev/spidev0.0) and BIA_IRQ (default: 25)
// environment variables.
package main // import "github.com/go-lpc/bioz/cmd/bia-tdaq"

import (
	"context"
	"log"
	"os"
	"strconv"

	"github.com/go-daq/tdaq"
	"github.com/go-daq/tdaq/flags"
	"github.com/go-lpc/bioz/ad5940"
	"github.com/go-lpc/bioz/bia"
	"github.com/go-lpc/bioz/internal/spidev"
)

func main() {
	cmd := flags.New()

	spi := getenv("BIA_SPI", "/dev/spidev0.0")
	pin, err := strconv.Atoi(getenv("BIA_IRQ", "25"))
	if err != nil {
		log.Panicf("invalid BIA_IRQ value: %+v", err)
	}

	dev, err := spidev.Open(spi, 8000000)
	if err != nil {
		log.Panicf("could not open SPI device: %+v", err)
	}
	defer dev.Close()

	irq, err := spidev.OpenIRQ(pin)
	if err != nil {
		log.Panicf("could not open interrupt line: %+v", err)
	}
	defer irq.Close()

	app := bia.New(ad5940.New(dev))
	node := bia.NewNode(app, irq)

	srv := tdaq.New(cmd, os.Stdout)
	srv.CmdHandle("/config", node.OnConfig)
	srv.CmdHandle("/init", node.OnInit)
	srv.CmdHandle("/reset", node.OnReset)
	srv.CmdHandle("/start", node.OnStart)
	srv.CmdHandle("/stop", node.OnStop)
	srv.CmdHandle("/quit", node.OnQuit)

	srv.OutputHandle("/bia", node.Output)

	srv.RunHandle(node.Run)

	err = srv.Run(context.Background())
	if err != nil {
		log.Panicf("error: %+v", err)
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
