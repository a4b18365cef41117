// Copyright 2018-26 The nandflash Authors. All rights reserved.
// Use of this source code is governed by a GPL license that can be found in the LICENSE file.

// Package nand implements the ONFI-style command protocol for a raw
// parallel x8 NAND device addressed over two bit-banged GPIO ports: an I/O
// bus (IO0..IO7) and a control bus (CLE, ALE, nCE, nWE, nRE, nWP, RDY, LED).
package nand

import (
	"fmt"

	"github.com/flashrig/nandflash/utils"
)

// Geometry describes the page/block layout of the attached part, plus the
// 5-byte ID register a READ_ID command is expected to return. The zero
// value is not usable; use DefaultGeometry or a value validated by
// Validate.
type Geometry struct {
	// PageSize is the full page size in bytes, including spare/OOB.
	PageSize int
	// PageSizeUser is the user-data portion of PageSize (excludes spare).
	PageSizeUser int
	// PagesPerBlock is the number of pages erased together as one block.
	PagesPerBlock int
	// BlockCount is the total number of blocks on the device.
	BlockCount int
	// ExpectedID is the 5-byte ID register READ_ID should return for this
	// part. A mismatch is reported but non-fatal (see Session.Identify).
	ExpectedID [5]byte
	// Name is a human-readable part name, used only for logging.
	Name string
}

// DefaultGeometry is the Toshiba TC58NVG1S3HTA00 reference part this
// protocol layer was modeled on: 2Gbit, 2112 bytes/page, 64 pages/block,
// 2048 blocks.
var DefaultGeometry = Geometry{
	PageSize:      2112,
	PageSizeUser:  2048,
	PagesPerBlock: 64,
	BlockCount:    2048,
	ExpectedID:    [5]byte{0xAD, 0xDC, 0x10, 0x95, 0x54},
	Name:          "Toshiba TC58NVG1S3HTA00",
}

// SpareSize returns the OOB/spare byte count (PageSize - PageSizeUser).
func (g Geometry) SpareSize() int { return g.PageSize - g.PageSizeUser }

// TotalPages returns the total addressable page count for the geometry.
func (g Geometry) TotalPages() int { return g.PagesPerBlock * g.BlockCount }

// BlockOf returns the block index containing the given page.
func (g Geometry) BlockOf(page int) int { return page / g.PagesPerBlock }

// FirstPageOf returns the first page index of the given block.
func (g Geometry) FirstPageOf(block int) int { return block * g.PagesPerBlock }

// Validate checks that a Geometry is self-consistent and usable by the
// page-based address packer (§ 3 of the design: pages-per-block must be a
// power of two so the page/block split is a clean bit boundary).
func (g Geometry) Validate() error {
	if g.PageSize <= 0 || g.PageSizeUser <= 0 || g.PageSize < g.PageSizeUser {
		return fmt.Errorf("nand: invalid page size %d (user %d)", g.PageSize, g.PageSizeUser)
	}
	if g.PagesPerBlock <= 0 || 1<<utils.Log2b(uint(g.PagesPerBlock)) != g.PagesPerBlock {
		return fmt.Errorf("nand: pages per block %d must be a power of two", g.PagesPerBlock)
	}
	if g.BlockCount <= 0 {
		return fmt.Errorf("nand: invalid block count %d", g.BlockCount)
	}
	if g.TotalPages() > 1<<24 {
		return fmt.Errorf("nand: total page count %d exceeds the 3-byte row address this packer emits", g.TotalPages())
	}
	return nil
}
