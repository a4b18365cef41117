// Copyright 2018-26 The nandflash Authors. All rights reserved.
// Use of this source code is governed by a GPL license that can be found in the LICENSE file.

package nand

import (
	"time"

	"periph.io/x/conn/v3/physic"

	"github.com/flashrig/nandflash/gpio"
)

// sleepEdgeDelay inserts the caller-configured setup/hold delay. A zero
// delay (the default) is a no-op, matching the reference tool's _usleep().
func (s *Session) sleepEdgeDelay() {
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
}

// latchCommand issues a COMMAND latch cycle: CLE high, pulse nWE with cmd
// on the I/O bus, CLE low. See SPEC_FULL.md § 4.2.
//
// Precondition: nCE low, nRE high.
func (s *Session) latchCommand(cmd byte) error {
	if s.ctrl.isSet(pinNCE) {
		return &PreconditionError{Op: "latch_command", Reason: "nCE must be low"}
	}
	if !s.ctrl.isSet(pinNRE) {
		return &PreconditionError{Op: "latch_command", Reason: "nRE must be high"}
	}

	s.ctrl.set(pinCLE, true)
	if err := s.ctrl.push(); err != nil {
		return err
	}
	s.ctrl.set(pinNWE, false)
	if err := s.ctrl.push(); err != nil {
		return err
	}
	if err := s.io.write(cmd); err != nil {
		return err
	}
	s.ctrl.set(pinNWE, true)
	if err := s.ctrl.push(); err != nil {
		return err
	}
	s.ctrl.set(pinCLE, false)
	return s.ctrl.push()
}

// latchAddress clocks 1-5 address cycle bytes onto the I/O bus under ALE.
// See SPEC_FULL.md § 4.2.
//
// Precondition: nCE low, CLE low, nRE high.
func (s *Session) latchAddress(bytes []byte) error {
	if s.ctrl.isSet(pinNCE) {
		return &PreconditionError{Op: "latch_address", Reason: "nCE must be low"}
	}
	if s.ctrl.isSet(pinCLE) {
		return &PreconditionError{Op: "latch_address", Reason: "CLE must be low"}
	}
	if !s.ctrl.isSet(pinNRE) {
		return &PreconditionError{Op: "latch_address", Reason: "nRE must be high"}
	}

	s.ctrl.set(pinALE, true)
	if err := s.ctrl.push(); err != nil {
		return err
	}
	for _, b := range bytes {
		if err := s.clockWriteCycle(b); err != nil {
			return err
		}
	}
	s.ctrl.set(pinALE, false)
	return s.ctrl.push()
}

// latchDataIn clocks a serial data-input stream onto the I/O bus. Same
// nWE toggling as latchAddress, but ALE stays low: the part's data
// register captures one byte per nWE rising edge following a
// serial-data-input command (0x80).
//
// Precondition: nCE low, CLE low, ALE low, nRE high.
func (s *Session) latchDataIn(data []byte) error {
	if s.ctrl.isSet(pinNCE) {
		return &PreconditionError{Op: "latch_data_in", Reason: "nCE must be low"}
	}
	if s.ctrl.isSet(pinCLE) {
		return &PreconditionError{Op: "latch_data_in", Reason: "CLE must be low"}
	}
	if s.ctrl.isSet(pinALE) {
		return &PreconditionError{Op: "latch_data_in", Reason: "ALE must be low"}
	}
	if !s.ctrl.isSet(pinNRE) {
		return &PreconditionError{Op: "latch_data_in", Reason: "nRE must be high"}
	}

	for _, b := range data {
		if err := s.clockWriteCycle(b); err != nil {
			return err
		}
	}
	return nil
}

// clockWriteCycle performs one nWE-toggled write cycle: nWE low, place
// byte, nWE high, with the configured delay at each of the three points
// (SPEC_FULL.md § 4.2).
func (s *Session) clockWriteCycle(b byte) error {
	s.ctrl.set(pinNWE, false)
	if err := s.ctrl.push(); err != nil {
		return err
	}
	s.sleepEdgeDelay()

	if err := s.io.write(b); err != nil {
		return err
	}
	s.sleepEdgeDelay()

	s.ctrl.set(pinNWE, true)
	if err := s.ctrl.push(); err != nil {
		return err
	}
	s.sleepEdgeDelay()
	return nil
}

// latchDataOut clocks n bytes out of the chip into buf, one per nRE
// falling edge. See SPEC_FULL.md § 4.2.
//
// Precondition: nCE low, nWE high, ALE low, CLE low.
func (s *Session) latchDataOut(buf []byte) error {
	if s.ctrl.isSet(pinNCE) {
		return &PreconditionError{Op: "latch_data_out", Reason: "nCE must be low"}
	}
	if !s.ctrl.isSet(pinNWE) {
		return &PreconditionError{Op: "latch_data_out", Reason: "nWE must be high"}
	}
	if s.ctrl.isSet(pinALE) {
		return &PreconditionError{Op: "latch_data_out", Reason: "ALE must be low"}
	}
	if s.ctrl.isSet(pinCLE) {
		return &PreconditionError{Op: "latch_data_out", Reason: "CLE must be low"}
	}

	if err := s.io.setDirection(gpio.AllInput); err != nil {
		return err
	}
	for i := range buf {
		s.ctrl.set(pinNRE, false)
		if err := s.ctrl.push(); err != nil {
			return err
		}
		s.sleepEdgeDelay()

		v, err := s.io.sample()
		if err != nil {
			return err
		}
		buf[i] = v

		s.ctrl.set(pinNRE, true)
		if err := s.ctrl.push(); err != nil {
			return err
		}
		s.sleepEdgeDelay()
	}
	return s.io.setDirection(gpio.AllOutput)
}

// waitReady busy-polls RDY until it asserts, or until readyTimeout elapses
// if one was configured. The reference design has no timeout at all
// (SPEC_FULL.md § 9); a zero readyTimeout reproduces that behavior exactly.
func (s *Session) waitReady() error {
	start := time.Now()
	for {
		v, err := s.ctrl.sample()
		if err != nil {
			return err
		}
		if ready(v) {
			return nil
		}
		if s.readyTimeout > 0 && time.Since(start) > s.readyTimeout {
			return &BusyTimeoutError{Waited: physic.Duration(time.Since(start)).String()}
		}
	}
}
