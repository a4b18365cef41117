// Copyright 2018-26 The nandflash Authors. All rights reserved.
// Use of this source code is governed by a GPL license that can be found in the LICENSE file.

package nand

import (
	"testing"
	"time"

	"github.com/flashrig/nandflash/gpio"
	"github.com/flashrig/nandflash/gpio/gpiotest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestSession wires a fresh chipSim into a pair of gpiotest.Fake ports
// and brings up a Session against them, passing opts through to NewSession.
// NewSession's fixed 500ms settle sleep still runs for every call; edge
// delays stay at their zero default unless opts set one.
func newTestSession(t *testing.T, opts ...Option) (*Session, *chipSim, *gpiotest.Fake, *gpiotest.Fake) {
	t.Helper()

	ctrlFake := gpiotest.New()
	ioFake := gpiotest.New()
	sim := newChipSim(DefaultGeometry)
	sim.attach(ctrlFake, ioFake)

	s, err := NewSession(ctrlFake, ioFake, opts...)
	require.NoError(t, err)
	return s, sim, ctrlFake, ioFake
}

func TestNewSession_BringUp(t *testing.T) {
	s, _, ctrlFake, _ := newTestSession(t)
	assert.Equal(t, gpio.DirectionMask(0xBF), ctrlFake.Direction())

	// Idle state after bring-up: nRE high, nCE low, nWP low.
	last, ok := ctrlFake.Last()
	require.True(t, ok)
	assert.True(t, last&pinNRE != 0, "nRE should be high")
	assert.True(t, last&pinNCE == 0, "nCE should be low")
	assert.True(t, last&pinNWP == 0, "nWP should be low")

	assert.Equal(t, DefaultGeometry, s.Geometry())
}

func TestSession_Close(t *testing.T) {
	s, _, ctrlFake, ioFake := newTestSession(t)

	require.NoError(t, s.Close())

	last, ok := ctrlFake.Last()
	require.True(t, ok)
	assert.True(t, last&pinNCE != 0, "nCE should be high after Close")
	assert.True(t, last&pinNWP == 0, "nWP should be low after Close")

	assert.True(t, ctrlFake.Closed())
	assert.True(t, ioFake.Closed())
}

func TestWithReadyTimeout_TimesOut(t *testing.T) {
	ctrlFake := gpiotest.New()
	ioFake := gpiotest.New()
	ctrlFake.Sample = func() (byte, error) { return 0, nil } // RDY never asserts

	s, err := NewSession(ctrlFake, ioFake, WithReadyTimeout(20*time.Millisecond))
	require.NoError(t, err)

	err = s.waitReady()
	require.Error(t, err)
	var timeoutErr *BusyTimeoutError
	assert.ErrorAs(t, err, &timeoutErr)
}
