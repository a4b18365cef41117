// Copyright 2018-26 The nandflash Authors. All rights reserved.
// Use of this source code is governed by a GPL license that can be found in the LICENSE file.

package nand

import (
	"log"
	"time"

	"github.com/flashrig/nandflash/gpio"
)

// Session owns the two GPIO ports and their shadow state for the lifetime
// of one NAND bring-up. It replaces the reference tool's process-wide
// io_shadow/ctrl_shadow globals with state threaded explicitly through
// every primitive: the two ports and two shadows are a single exclusive
// resource, and Session is its one owner (SPEC_FULL.md § 5, § 9).
type Session struct {
	ctrl *ctrlBus
	io   *ioBus

	geometry Geometry
	packer   AddressPacker

	// delay is inserted after each nWE/nRE edge of an address, data-in or
	// data-out cycle (the "-d" CLI flag); latchCommand inserts none. Zero
	// by default, matching the reference tool.
	delay time.Duration
	// readyTimeout bounds wait_ready. The reference design never times
	// out; this is an implementation hardening choice (SPEC_FULL.md § 9).
	// Zero means "wait forever", exactly like the reference.
	readyTimeout time.Duration

	// testPause overrides the self-test edge pause (see WithSelfTestPause).
	testPause    time.Duration
	testPauseSet bool

	logger *log.Logger
}

// Option configures a Session at construction time.
type Option func(*Session)

// WithDelay sets the per-edge setup/hold delay latch_address and
// latch_data_in/out insert around each nWE/nRE toggle.
func WithDelay(d time.Duration) Option {
	return func(s *Session) { s.delay = d }
}

// WithReadyTimeout bounds wait_ready. Zero (the default) waits forever.
func WithReadyTimeout(d time.Duration) Option {
	return func(s *Session) { s.readyTimeout = d }
}

// WithSelfTestPause overrides the 1 s edge pause SelfTestControlBus and
// SelfTestIOBus use between steps. Mainly useful for shrinking the wiring
// self-test to something a test suite can run in milliseconds.
func WithSelfTestPause(d time.Duration) Option {
	return func(s *Session) { s.testPause = d; s.testPauseSet = true }
}

// WithGeometry overrides the default Toshiba TC58NVG1S3HTA00 geometry.
func WithGeometry(g Geometry) Option {
	return func(s *Session) { s.geometry = g }
}

// WithLogger overrides the default logger (log.Default()).
func WithLogger(l *log.Logger) Option {
	return func(s *Session) { s.logger = l }
}

// NewSession acquires the two GPIO ports, brings the control bus to its
// documented idle state and returns a ready-to-use Session. This implements
// the orchestrator bring-up in SPEC_FULL.md § 4.5, steps 1-4.
func NewSession(ctrlPort, ioPort gpio.Port, opts ...Option) (*Session, error) {
	g := DefaultGeometry
	if err := g.Validate(); err != nil {
		return nil, err
	}

	s := &Session{
		ctrl:     newCtrlBus(ctrlPort),
		io:       newIOBus(ioPort),
		geometry: g,
		packer:   defaultAddressPacker,
		logger:   log.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.ctrl.port.SetDirectionMask(controlDirMask); err != nil {
		return nil, &TransportError{Op: "bring-up", Err: err}
	}
	if err := s.io.setDirection(gpio.AllOutput); err != nil {
		return nil, err
	}

	// Push zeroed shadows and let the part settle.
	s.ctrl.shadow = 0
	s.io.shadow = 0
	if err := s.ctrl.push(); err != nil {
		return nil, err
	}
	if err := s.io.write(0); err != nil {
		return nil, err
	}
	time.Sleep(500 * time.Millisecond)

	// Wiring sanity sample: flip I/O to input, sample both ports once,
	// flip back. Errors here are logged, not fatal — this is diagnostic
	// only (SPEC_FULL.md § 4.5 step 3).
	if snap, err := s.sampleWiring(); err != nil {
		s.logger.Printf("wiring sanity sample failed: %v", err)
	} else {
		s.logger.Printf("wiring sanity sample: io=0x%02X ctrl=0x%02X", snap.IO, snap.Ctrl)
	}

	// Idle state: nRE high, nCE low, nWP low (protected).
	s.ctrl.set(pinNRE, true)
	s.ctrl.set(pinNCE, false)
	s.ctrl.set(pinNWP, false)
	if err := s.ctrl.push(); err != nil {
		return nil, err
	}

	return s, nil
}

// WiringSnapshot is the one-time bring-up sample of both ports, logged by
// NewSession so a miswired bridge shows up as an unexpected io/ctrl value
// in the startup log instead of a confusing failure three calls later.
type WiringSnapshot struct {
	IO   byte
	Ctrl byte
}

func (s *Session) sampleWiring() (WiringSnapshot, error) {
	if err := s.io.setDirection(gpio.AllInput); err != nil {
		return WiringSnapshot{}, err
	}
	ioVal, err := s.io.sample()
	if err != nil {
		return WiringSnapshot{}, err
	}
	ctrlVal, err := s.ctrl.sample()
	if err != nil {
		return WiringSnapshot{}, err
	}
	if err := s.io.setDirection(gpio.AllOutput); err != nil {
		return WiringSnapshot{}, err
	}
	return WiringSnapshot{IO: ioVal, Ctrl: ctrlVal}, nil
}

// Geometry returns the geometry this session was configured with.
func (s *Session) Geometry() Geometry { return s.geometry }

// Close tears the session down: nCE is raised and both ports are released,
// regardless of how the caller got here (SPEC_FULL.md § 7, last
// paragraph).
func (s *Session) Close() error {
	s.ctrl.set(pinNCE, true)
	s.ctrl.set(pinNWP, false)
	pushErr := s.ctrl.push()

	ctrlCloseErr := s.ctrl.port.Close()
	ioCloseErr := s.io.port.Close()

	if pushErr != nil {
		return pushErr
	}
	if ctrlCloseErr != nil {
		return &TransportError{Op: "close-ctrl", Err: ctrlCloseErr}
	}
	if ioCloseErr != nil {
		return &TransportError{Op: "close-io", Err: ioCloseErr}
	}
	return nil
}
