// Copyright 2018-26 The nandflash Authors. All rights reserved.
// Use of this source code is governed by a GPL license that can be found in the LICENSE file.

package nand

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPageAddressPacker_Pack(t *testing.T) {
	p := pageAddressPacker{}

	got := p.Pack(0, 0x01A2B3)
	assert.Equal(t, [5]byte{0x00, 0x00, 0xB3, 0xA2, 0x01}, got)

	got = p.Pack(0x0123, 0)
	assert.Equal(t, [5]byte{0x23, 0x01, 0x00, 0x00, 0x00}, got)
}

func TestRowCycles(t *testing.T) {
	p := pageAddressPacker{}
	block := 0x10
	page := uint32(block * 64)

	got := rowCycles(p, page)
	full := p.Pack(0, page)
	assert.Equal(t, [3]byte{full[2], full[3], full[4]}, got)
}
