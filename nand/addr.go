// Copyright 2018-26 The nandflash Authors. All rights reserved.
// Use of this source code is governed by a GPL license that can be found in the LICENSE file.

package nand

// AddressPacker builds the 5-byte address-cycle sequence latch_address
// clocks onto the I/O bus for a page-based x8 device: two column-address
// bytes followed by three page-address (row) bytes.
//
// Only one implementation ships (pageAddressPacker, below) grounded on the
// Toshiba TC58NVG1S3HTA00 wiring. The interface exists so a future part
// family with a different column/row split can be added without touching
// the command sequences that call it; see the open-question note in
// SPEC_FULL.md § 9 about per-part packing tables.
type AddressPacker interface {
	// Pack returns the 5 address cycle bytes for the given column and page.
	Pack(column uint32, page uint32) [5]byte
}

// pageAddressPacker implements the page-based x8 packing documented for the
// Toshiba TC58NVG1S3HTA00: [CA0..7, CA8..15, PA0..7, PA8..15, PA16..23].
//
// This writes more bits than the reference part actually honors (the part
// only has 12 column address bits and 17 row address bits), but the extra
// high bits are simply ignored by the chip, matching the reference tool's
// documented limitation. A part with a genuinely different cycle count
// would need its own AddressPacker rather than a parameter here.
type pageAddressPacker struct{}

// Pack implements AddressPacker.
func (pageAddressPacker) Pack(column uint32, page uint32) [5]byte {
	return [5]byte{
		byte(column),
		byte(column >> 8),
		byte(page),
		byte(page >> 8),
		byte(page >> 16),
	}
}

// defaultAddressPacker is the packer every Session uses today.
var defaultAddressPacker AddressPacker = pageAddressPacker{}

// rowCycles returns just the three row (page-address) bytes of a full
// 5-cycle address, the form BLOCK_ERASE latches (§ 4.3: "Erase uses row
// only").
func rowCycles(p AddressPacker, page uint32) [3]byte {
	full := p.Pack(0, page)
	return [3]byte{full[2], full[3], full[4]}
}
