// Copyright 2018-26 The nandflash Authors. All rights reserved.
// Use of this source code is governed by a GPL license that can be found in the LICENSE file.

package nand

import "github.com/flashrig/nandflash/gpio"

// Control-bus pin assignment (bit index within the control byte). See
// SPEC_FULL.md § 3.
const (
	pinCLE = 1 << 0 // active high: command latch enable
	pinALE = 1 << 1 // active high: address latch enable
	pinNCE = 1 << 2 // active low: chip enable
	pinNWE = 1 << 3 // active low, pulsed: write strobe
	pinNRE = 1 << 4 // active low, pulsed: read strobe
	pinNWP = 1 << 5 // active low: write protect (low = protected)
	pinRDY = 1 << 6 // input only: ready(1)/busy(0)
	pinLED = 1 << 7 // active high: diagnostic LED
)

// controlDirMask keeps RDY (bit 6) as input and every other control pin as
// output.
const controlDirMask = gpio.DirectionMask(0xBF)

// ctrlBus is the in-process shadow of the control port's last written
// byte, plus the bit-level helpers the latch primitives are built from.
// set never performs I/O; callers must call push explicitly, which is
// what makes every control-bus edge an auditable, single-step event (see
// the bus abstraction rationale in SPEC_FULL.md § 4.1).
type ctrlBus struct {
	port   gpio.Port
	shadow byte
}

func newCtrlBus(port gpio.Port) *ctrlBus {
	return &ctrlBus{port: port}
}

// set mutates the shadow only.
func (b *ctrlBus) set(pin byte, on bool) {
	if on {
		b.shadow |= pin
	} else {
		b.shadow &^= pin
	}
}

func (b *ctrlBus) isSet(pin byte) bool { return b.shadow&pin != 0 }

// push writes the shadow to the control port.
func (b *ctrlBus) push() error {
	if err := b.port.WriteByte(b.shadow); err != nil {
		return &TransportError{Op: "ctrl-push", Err: err}
	}
	return nil
}

// sample reads the control port pins without touching the shadow.
func (b *ctrlBus) sample() (byte, error) {
	v, err := b.port.ReadPins()
	if err != nil {
		return 0, &TransportError{Op: "ctrl-sample", Err: err}
	}
	return v, nil
}

// ready reports whether the most recent sample shows RDY asserted.
func ready(sample byte) bool { return sample&pinRDY != 0 }

// ioBus is the in-process shadow of the I/O port's last written byte.
type ioBus struct {
	port   gpio.Port
	shadow byte
	dir    gpio.DirectionMask
}

func newIOBus(port gpio.Port) *ioBus {
	return &ioBus{port: port, dir: gpio.AllOutput}
}

// write sets the shadow and immediately pushes it to the port.
func (b *ioBus) write(v byte) error {
	b.shadow = v
	if err := b.port.WriteByte(v); err != nil {
		return &TransportError{Op: "io-write", Err: err}
	}
	return nil
}

// sample reads the I/O port pins.
func (b *ioBus) sample() (byte, error) {
	v, err := b.port.ReadPins()
	if err != nil {
		return 0, &TransportError{Op: "io-sample", Err: err}
	}
	return v, nil
}

// setDirection reconfigures the whole I/O port at once: it is flipped
// between all-output and all-input, never set bit by bit.
func (b *ioBus) setDirection(dir gpio.DirectionMask) error {
	if b.dir == dir {
		return nil
	}
	if err := b.port.SetDirectionMask(dir); err != nil {
		return &TransportError{Op: "io-set-direction", Err: err}
	}
	b.dir = dir
	return nil
}
