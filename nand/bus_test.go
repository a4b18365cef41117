// Copyright 2018-26 The nandflash Authors. All rights reserved.
// Use of this source code is governed by a GPL license that can be found in the LICENSE file.

package nand

import (
	"errors"
	"testing"

	"github.com/flashrig/nandflash/gpio/gpiotest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCtrlBus_SetIsShadowOnly(t *testing.T) {
	fake := gpiotest.New()
	b := newCtrlBus(fake)

	b.set(pinCLE, true)
	assert.True(t, b.isSet(pinCLE))
	assert.Empty(t, fake.Trace, "set must not perform I/O")

	require.NoError(t, b.push())
	assert.Equal(t, []byte{pinCLE}, fake.Trace)
}

func TestCtrlBus_PushWrapsTransportError(t *testing.T) {
	fake := gpiotest.New()
	fake.WriteErr = errors.New("usb gone")
	b := newCtrlBus(fake)

	err := b.push()
	require.Error(t, err)
	var te *TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, "ctrl-push", te.Op)
	assert.True(t, errors.Is(err, fake.WriteErr))
}

func TestCtrlBus_SampleWrapsTransportError(t *testing.T) {
	fake := gpiotest.New()
	fake.ReadErr = errors.New("usb gone")
	b := newCtrlBus(fake)

	_, err := b.sample()
	require.Error(t, err)
	var te *TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, "ctrl-sample", te.Op)
}

func TestReady(t *testing.T) {
	assert.True(t, ready(pinRDY))
	assert.False(t, ready(0))
}

func TestIOBus_WriteUpdatesShadow(t *testing.T) {
	fake := gpiotest.New()
	b := newIOBus(fake)

	require.NoError(t, b.write(0xAB))
	assert.Equal(t, byte(0xAB), b.shadow)
	assert.Equal(t, []byte{0xAB}, fake.Trace)
}
