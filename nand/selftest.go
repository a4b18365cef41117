// Copyright 2018-26 The nandflash Authors. All rights reserved.
// Use of this source code is governed by a GPL license that can be found in the LICENSE file.

package nand

import (
	"time"

	"github.com/flashrig/nandflash/gpio"
)

// SelfTestStep is one reported action of a wiring self-test.
type SelfTestStep struct {
	Pin string
	On  bool
}

// controlPinOrder and ioPinOrder mirror the reference tool's test_controlbus
// and test_iobus pin walk order exactly (SPEC_FULL.md § 6, "-t").
var controlPinOrder = []struct {
	name string
	bit  byte
}{
	{"CLE", pinCLE},
	{"ALE", pinALE},
	{"nCE", pinNCE},
	{"nWE", pinNWE},
	{"nRE", pinNRE},
	{"nWP", pinNWP},
	{"LED", pinLED},
}

var ioPinOrder = []struct {
	name string
	bit  byte
}{
	{"DIO0", 1 << 0},
	{"DIO1", 1 << 1},
	{"DIO2", 1 << 2},
	{"DIO3", 1 << 3},
	{"DIO4", 1 << 4},
	{"DIO5", 1 << 5},
	{"DIO6", 1 << 6},
	{"DIO7", 1 << 7},
}

// defaultSelfTestPause is the reference tool's CONTROLBUS_TEST_DELAY /
// IOBUS_TEST_DELAY: 1 second between edges.
const defaultSelfTestPause = 1 * time.Second

// selfTestPause returns the configured self-test edge pause (see
// WithSelfTestPause), defaulting to defaultSelfTestPause.
func (s *Session) selfTestPause() time.Duration {
	if s.testPauseSet {
		return s.testPause
	}
	return defaultSelfTestPause
}

// SelfTestControlBus walks each control pin individually (CLE, ALE, nCE,
// nWE, nRE, nWP, LED — RDY is input-only and skipped) high then low, with
// a 1 s pause between edges so the wiring can be checked against a meter or
// scope with the chip disconnected. onStep, if non-nil, is invoked after
// each edge is pushed.
func (s *Session) SelfTestControlBus(onStep func(SelfTestStep)) error {
	pause := s.selfTestPause()

	for _, p := range controlPinOrder {
		s.ctrl.set(p.bit, true)
		if err := s.ctrl.push(); err != nil {
			return err
		}
		if onStep != nil {
			onStep(SelfTestStep{Pin: p.name, On: true})
		}
		time.Sleep(pause)
	}
	for _, p := range controlPinOrder {
		s.ctrl.set(p.bit, false)
		if err := s.ctrl.push(); err != nil {
			return err
		}
		if onStep != nil {
			onStep(SelfTestStep{Pin: p.name, On: false})
		}
		time.Sleep(pause)
	}
	return nil
}

// SelfTestIOBus walks each I/O pin individually high then low, then drives
// the whole-byte patterns 0xFF, 0xAA, 0x55, 0x00 with a longer pause between
// each, matching the reference tool's test_iobus.
func (s *Session) SelfTestIOBus(onStep func(SelfTestStep)) error {
	pause := s.selfTestPause()
	patternPause := 5 * pause

	if err := s.io.setDirection(gpio.AllOutput); err != nil {
		return err
	}

	var value byte
	for _, p := range ioPinOrder {
		value |= p.bit
		if err := s.io.write(value); err != nil {
			return err
		}
		if onStep != nil {
			onStep(SelfTestStep{Pin: p.name, On: true})
		}
		time.Sleep(pause)
	}
	for _, p := range ioPinOrder {
		value &^= p.bit
		if err := s.io.write(value); err != nil {
			return err
		}
		if onStep != nil {
			onStep(SelfTestStep{Pin: p.name, On: false})
		}
		time.Sleep(pause)
	}

	for _, pattern := range []byte{0xFF, 0xAA, 0x55, 0x00} {
		time.Sleep(patternPause)
		if err := s.io.write(pattern); err != nil {
			return err
		}
		if onStep != nil {
			onStep(SelfTestStep{Pin: "pattern", On: pattern != 0x00})
		}
	}
	return nil
}
