// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package spidev

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"golang.org/x/sys/unix"
)

var sysfs = "/sys/class/gpio"

// pollPeriod bounds how long Wait blocks before checking its context.
const pollPeriod = 100 * time.Millisecond

// IRQ is a falling-edge interrupt line on a sysfs GPIO.
type IRQ struct {
	pin int
	f   *os.File
	buf [8]byte
}

// OpenIRQ exports the GPIO pin as an input raising on falling edges.
func OpenIRQ(pin int) (*IRQ, error) {
	dir := filepath.Join(sysfs, "gpio"+strconv.Itoa(pin))
	if _, err := os.Stat(dir); errors.Is(err, os.ErrNotExist) {
		err = os.WriteFile(filepath.Join(sysfs, "export"), []byte(strconv.Itoa(pin)), 0644)
		if err != nil {
			return nil, fmt.Errorf("spidev: could not export gpio %d: %w", pin, err)
		}
	}

	for _, v := range []struct{ name, value string }{
		{"direction", "in"},
		{"edge", "falling"},
	} {
		err := os.WriteFile(filepath.Join(dir, v.name), []byte(v.value), 0644)
		if err != nil {
			return nil, fmt.Errorf("spidev: could not set gpio %d %s: %w", pin, v.name, err)
		}
	}

	f, err := os.Open(filepath.Join(dir, "value"))
	if err != nil {
		return nil, fmt.Errorf("spidev: could not open gpio %d value: %w", pin, err)
	}

	irq := &IRQ{pin: pin, f: f}
	// consume the current level so the next poll reports a new edge.
	_, err = irq.value()
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	return irq, nil
}

func (irq *IRQ) Close() error {
	return irq.f.Close()
}

func (irq *IRQ) value() (int, error) {
	n, err := irq.f.ReadAt(irq.buf[:], 0)
	if n == 0 && err != nil {
		return 0, fmt.Errorf("spidev: could not read gpio %d: %w", irq.pin, err)
	}
	if irq.buf[0] == '1' {
		return 1, nil
	}
	return 0, nil
}

// Wait blocks until the next falling edge or until ctx is done.
func (irq *IRQ) Wait(ctx context.Context) error {
	fds := []unix.PollFd{{
		Fd:     int32(irq.f.Fd()),
		Events: unix.POLLPRI | unix.POLLERR,
	}}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		n, err := unix.Poll(fds, int(pollPeriod/time.Millisecond))
		switch {
		case errors.Is(err, unix.EINTR):
			continue
		case err != nil:
			return fmt.Errorf("spidev: could not poll gpio %d: %w", irq.pin, err)
		case n == 0:
			continue
		}

		if fds[0].Revents&unix.POLLPRI != 0 {
			_, err = irq.value()
			return err
		}
	}
}
