// Copyright 2018-26 The nandflash Authors. All rights reserved.
// Use of this source code is governed by a GPL license that can be found in the LICENSE file.

// FTDI FT2232H-class bit-bang transport. The physical bridge exposes two
// MPSSE-capable UARTs; each is opened independently and switched into
// asynchronous bit-bang mode, giving us the two independent 8-bit ports the
// NAND protocol layer expects.

package gpio

import (
	"fmt"

	"golang.org/x/sys/unix"
	"periph.io/x/d2xx"
)

// Channel selects which of the bridge's two UARTs a Port binds to. The
// wiring convention in this repo is channel A carries the NAND I/O bus,
// channel B carries the NAND control bus (cmd/nandflash opens them that
// way).
type Channel int

const (
	ChannelA Channel = iota
	ChannelB
)

// FTDIPort drives one channel of an FT2232H-class bridge in asynchronous
// bit-bang mode. It satisfies Port.
type FTDIPort struct {
	handle d2xx.Handle
}

// OpenFTDIPort opens the given bridge device index and channel, and leaves
// it in bit-bang mode with every pin configured as output. Callers should
// immediately call SetDirectionMask if a different starting mask is
// required (the control bus, for instance, needs bit 6 held as input for
// RDY).
func OpenFTDIPort(deviceIndex int, ch Channel) (*FTDIPort, error) {
	if err := preflightUSBAccess(); err != nil {
		return nil, &Error{Op: "preflight", Err: err}
	}

	infos, err := d2xx.ListDevices()
	if err != nil {
		return nil, &Error{Op: "list", Err: err}
	}
	idx := deviceIndex*2 + int(ch)
	if idx < 0 || idx >= len(infos) {
		return nil, &Error{Op: "open", Err: fmt.Errorf("no FTDI channel at index %d (found %d devices)", idx, len(infos))}
	}

	h, err := d2xx.OpenIndex(idx)
	if err != nil {
		return nil, &Error{Op: "open", Err: err}
	}
	p := &FTDIPort{handle: h}
	if err := p.SetDirectionMask(AllOutput); err != nil {
		_ = h.Close()
		return nil, err
	}
	return p, nil
}

// WriteByte implements Port.
func (p *FTDIPort) WriteByte(b byte) error {
	if _, err := p.handle.Write([]byte{b}); err != nil {
		return &Error{Op: "write", Err: err}
	}
	return nil
}

// ReadPins implements Port.
func (p *FTDIPort) ReadPins() (byte, error) {
	buf := make([]byte, 1)
	if _, err := p.handle.Read(buf); err != nil {
		return 0, &Error{Op: "read", Err: err}
	}
	return buf[0], nil
}

// SetDirectionMask implements Port.
func (p *FTDIPort) SetDirectionMask(mask DirectionMask) error {
	if err := p.handle.SetBitMode(byte(mask), d2xx.BitModeAsyncBitbang); err != nil {
		return &Error{Op: "set-direction", Err: err}
	}
	return nil
}

// Close implements Port.
func (p *FTDIPort) Close() error {
	if err := p.handle.Close(); err != nil {
		return &Error{Op: "close", Err: err}
	}
	return nil
}

// preflightUSBAccess confirms the calling process can reach raw USB device
// nodes before we hand control to the D2XX driver, so a permissions problem
// surfaces as a clear error instead of a cryptic failure three calls deep
// into the driver. Mirrors the capability preflight smartctl performs
// before touching a raw SCSI/NVMe device node.
func preflightUSBAccess() error {
	const usbBus = "/dev/bus/usb"
	if err := unix.Access(usbBus, unix.R_OK|unix.W_OK); err != nil {
		return fmt.Errorf("cannot access %s: %w (run as root, or fix udev rules for the FTDI bridge)", usbBus, err)
	}
	return nil
}
