// Copyright 2026 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package spidev implements the AD5940 register protocol on top of
// a Linux spidev character device, and an interrupt line on top of a
// sysfs GPIO.
package spidev // import "github.com/go-lpc/bioz/internal/spidev"

import (
	"encoding/binary"
	"fmt"
	"os"
	"unsafe"

	"github.com/go-lpc/bioz/ad5940"
	"golang.org/x/sys/unix"
)

// AD5940 SPI command bytes.
const (
	cmdSetAddr  = 0x20
	cmdWriteReg = 0x2d
	cmdReadReg  = 0x6d
	cmdReadFIFO = 0x5f

	fifoDummies = 6
)

// spidev ioctl requests.
const (
	iocWrMode        = 0x40016b01
	iocWrBitsPerWord = 0x40016b03
	iocWrMaxSpeedHz  = 0x40046b04
	iocMessage1      = 0x40206b00 // SPI_IOC_MESSAGE(1)
)

// spiIOCTransfer is struct spi_ioc_transfer.
type spiIOCTransfer struct {
	txBuf       uint64
	rxBuf       uint64
	len         uint32
	speedHz     uint32
	delayUsecs  uint16
	bitsPerWord uint8
	csChange    uint8
	txNbits     uint8
	rxNbits     uint8
	wordDelay   uint8
	_           uint8
}

// Dev is an AD5940 attached to a spidev device.
type Dev struct {
	f     *os.File
	speed uint32

	xfer func(tx, rx []byte) error
	buf  []byte
}

// Open opens the spidev device (e.g. /dev/spidev0.0) in SPI mode 0
// at the provided clock frequency.
func Open(name string, speed uint32) (*Dev, error) {
	f, err := os.OpenFile(name, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("spidev: could not open %q: %w", name, err)
	}

	var (
		mode = uint8(0)
		bits = uint8(8)
	)
	for _, v := range []struct {
		req uintptr
		ptr unsafe.Pointer
		msg string
	}{
		{iocWrMode, unsafe.Pointer(&mode), "mode"},
		{iocWrBitsPerWord, unsafe.Pointer(&bits), "bits per word"},
		{iocWrMaxSpeedHz, unsafe.Pointer(&speed), "max speed"},
	} {
		err = ioctl(f.Fd(), v.req, v.ptr)
		if err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("spidev: could not set %s: %w", v.msg, err)
		}
	}

	dev := &Dev{f: f, speed: speed}
	dev.xfer = dev.transfer
	return dev, nil
}

func (dev *Dev) Close() error {
	return dev.f.Close()
}

func ioctl(fd, req uintptr, ptr unsafe.Pointer) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, fd, req, uintptr(ptr))
	if errno != 0 {
		return errno
	}
	return nil
}

// transfer runs one full-duplex transaction with chip-select asserted.
func (dev *Dev) transfer(tx, rx []byte) error {
	msg := spiIOCTransfer{
		txBuf:       uint64(uintptr(unsafe.Pointer(&tx[0]))),
		rxBuf:       uint64(uintptr(unsafe.Pointer(&rx[0]))),
		len:         uint32(len(tx)),
		speedHz:     dev.speed,
		bitsPerWord: 8,
	}
	return ioctl(dev.f.Fd(), iocMessage1, unsafe.Pointer(&msg))
}

func (dev *Dev) setAddr(addr uint16) error {
	tx := []byte{cmdSetAddr, byte(addr >> 8), byte(addr)}
	return dev.xfer(tx, make([]byte, len(tx)))
}

// checkWidth rejects register widths the chip does not implement.
func checkWidth(width int) error {
	switch width {
	case 2, 4:
		return nil
	default:
		return fmt.Errorf("spidev: invalid register width %d", width)
	}
}

func (dev *Dev) ReadReg(addr uint16, width int) (uint32, error) {
	err := checkWidth(width)
	if err != nil {
		return 0, err
	}
	err = dev.setAddr(addr)
	if err != nil {
		return 0, fmt.Errorf("spidev: could not send address: %w", err)
	}

	tx := make([]byte, 2+width)
	rx := make([]byte, len(tx))
	tx[0] = cmdReadReg
	err = dev.xfer(tx, rx)
	if err != nil {
		return 0, fmt.Errorf("spidev: could not transfer read command: %w", err)
	}

	if width == 2 {
		return uint32(binary.BigEndian.Uint16(rx[2:])), nil
	}
	return binary.BigEndian.Uint32(rx[2:]), nil
}

func (dev *Dev) WriteReg(addr uint16, v uint32, width int) error {
	err := checkWidth(width)
	if err != nil {
		return err
	}
	err = dev.setAddr(addr)
	if err != nil {
		return fmt.Errorf("spidev: could not send address: %w", err)
	}

	tx := make([]byte, 1+width)
	tx[0] = cmdWriteReg
	if width == 2 {
		binary.BigEndian.PutUint16(tx[1:], uint16(v))
	} else {
		binary.BigEndian.PutUint32(tx[1:], v)
	}
	err = dev.xfer(tx, make([]byte, len(tx)))
	if err != nil {
		return fmt.Errorf("spidev: could not transfer write command: %w", err)
	}
	return nil
}

func (dev *Dev) ReadFIFO(dst []uint32) error {
	if len(dst) == 0 {
		return nil
	}

	n := 1 + fifoDummies + 4*len(dst)
	if cap(dev.buf) < 2*n {
		dev.buf = make([]byte, 2*n)
	}
	tx := dev.buf[:n]
	rx := dev.buf[n : 2*n]
	for i := range tx {
		tx[i] = 0
	}
	tx[0] = cmdReadFIFO

	err := dev.xfer(tx, rx)
	if err != nil {
		return fmt.Errorf("spidev: could not read FIFO: %w", err)
	}

	data := rx[1+fifoDummies:]
	for i := range dst {
		dst[i] = binary.BigEndian.Uint32(data[4*i:])
	}
	return nil
}

var (
	_ ad5940.Bus = (*Dev)(nil)
)
