// Copyright 2018-26 The nandflash Authors. All rights reserved.
// Use of this source code is governed by a GPL license that can be found in the LICENSE file.

// Package gpiotest provides a deterministic, in-memory gpio.Port fake for
// exercising the NAND protocol layer without a physical bridge or chip.
// Every byte written is recorded in order, so tests can assert on the exact
// pin trace a primitive produced.
package gpiotest

import "github.com/flashrig/nandflash/gpio"

// Fake is a gpio.Port that records every written byte and serves samples
// either from a fixed Value or from a caller-supplied Sample function. It
// never talks to real hardware.
//
// OnWrite and Sample, when set, let a test wire two Fakes together to
// simulate a chip that reacts to edges on one port by changing what the
// other port reads back (see the NAND chip simulator in the nand package's
// tests).
type Fake struct {
	// Trace holds every byte passed to WriteByte, in call order.
	Trace []byte
	// DirHistory holds every mask passed to SetDirectionMask, in call order.
	DirHistory []gpio.DirectionMask

	// Value is returned by ReadPins when Sample is nil.
	Value byte
	// Sample, if non-nil, is called by ReadPins instead of returning Value.
	Sample func() (byte, error)

	// OnWrite, if non-nil, is invoked with every byte before it is recorded.
	// Returning an error fails the WriteByte call.
	OnWrite func(b byte) error

	dir     gpio.DirectionMask
	closed  bool
	WriteErr error
	ReadErr  error
}

// New returns a Fake whose pins read back as zero until Value or Sample is
// set by the caller.
func New() *Fake {
	return &Fake{}
}

// WriteByte implements gpio.Port.
func (f *Fake) WriteByte(b byte) error {
	if f.WriteErr != nil {
		return f.WriteErr
	}
	if f.OnWrite != nil {
		if err := f.OnWrite(b); err != nil {
			return err
		}
	}
	f.Trace = append(f.Trace, b)
	return nil
}

// ReadPins implements gpio.Port.
func (f *Fake) ReadPins() (byte, error) {
	if f.ReadErr != nil {
		return 0, f.ReadErr
	}
	if f.Sample != nil {
		return f.Sample()
	}
	return f.Value, nil
}

// SetDirectionMask implements gpio.Port.
func (f *Fake) SetDirectionMask(mask gpio.DirectionMask) error {
	f.dir = mask
	f.DirHistory = append(f.DirHistory, mask)
	return nil
}

// Direction returns the most recently configured direction mask.
func (f *Fake) Direction() gpio.DirectionMask { return f.dir }

// Close implements gpio.Port.
func (f *Fake) Close() error {
	f.closed = true
	return nil
}

// Closed reports whether Close was called.
func (f *Fake) Closed() bool { return f.closed }

// Last returns the most recently written byte, and false if nothing has
// been written yet.
func (f *Fake) Last() (byte, bool) {
	if len(f.Trace) == 0 {
		return 0, false
	}
	return f.Trace[len(f.Trace)-1], true
}
