// Copyright 2018-26 The nandflash Authors. All rights reserved.
// Use of this source code is governed by a GPL license that can be found in the LICENSE file.

package nand

import "github.com/flashrig/nandflash/gpio/gpiotest"

// chipSim is a minimal behavioral model of an ONFI-style x8 NAND part,
// wired to a pair of gpiotest.Fake ports via their OnWrite/Sample hooks. It
// exists only to give the testable properties in SPEC_FULL.md § 8 something
// that actually behaves like a chip: it tracks latched commands and
// addresses, serves READ_ID/READ_PAGE/READ_STATUS output, and applies
// PAGE_PROGRAM/BLOCK_ERASE to an in-memory page array.
//
// It is deliberately not a cycle-accurate simulator: busyTicks models a
// short busy window after 0x30/0xD0/0x10 so wait_ready's poll loop has
// something real to wait on, nothing more.
type chipSim struct {
	geometry Geometry
	mem      [][]byte // one slice per page, len == geometry.TotalPages()

	lastCtrl byte
	prevCtrl byte

	addrBytes []byte
	dataIn    []byte
	dataOut   []byte
	outPos    int
	nreLow    bool

	busyTicks int
	status    byte

	// ioShadowVal is the last byte written to the I/O fake, independent of
	// ctrl edges; ioWrite keeps it current and latch reads it on a nWE
	// rising edge.
	ioShadowVal byte

	// programmed tracks which pages have been written since their last
	// erase, so ProgramPage can be rejected a second time like real NAND
	// (status fail bit), matching property 7's "zero or one programming
	// operation per page between erases" precondition.
	programmed map[int]bool
}

func newChipSim(g Geometry) *chipSim {
	mem := make([][]byte, g.TotalPages())
	for i := range mem {
		page := make([]byte, g.PageSize)
		for j := range page {
			page[j] = 0xFF
		}
		mem[i] = page
	}
	return &chipSim{
		geometry:   g,
		mem:        mem,
		programmed: make(map[int]bool),
	}
}

// attach wires the simulator's behavior into a pair of gpiotest.Fake ports.
func (c *chipSim) attach(ctrl, io *gpiotest.Fake) {
	ctrl.Sample = c.ctrlSample
	ctrl.OnWrite = c.ctrlWrite
	io.Sample = c.ioSample
	io.OnWrite = c.ioWrite
}

func (c *chipSim) ctrlWrite(b byte) error {
	c.prevCtrl = c.lastCtrl
	c.lastCtrl = b

	prevNWE := c.prevCtrl&pinNWE != 0
	newNWE := b&pinNWE != 0
	if !prevNWE && newNWE {
		// nWE rising edge: latch whatever is currently on the I/O shadow.
		c.latch(b)
	}

	prevNRE := c.prevCtrl&pinNRE != 0
	newNRE := b&pinNRE != 0
	if prevNRE && !newNRE {
		c.nreLow = true
	}
	if !prevNRE && newNRE {
		c.nreLow = false
		c.outPos++
	}
	return nil
}

func (c *chipSim) latch(ctrlByte byte) {
	cle := ctrlByte&pinCLE != 0
	ale := ctrlByte&pinALE != 0
	b := c.ioShadowVal

	switch {
	case cle:
		c.handleCommand(b)
	case ale:
		c.addrBytes = append(c.addrBytes, b)
	default:
		c.dataIn = append(c.dataIn, b)
	}
}

func (c *chipSim) handleCommand(cmd byte) {
	switch cmd {
	case cmdReadID:
		c.addrBytes = nil
		c.dataOut = []byte{0xAD, 0xDC, 0x10, 0x95, 0x54}
		c.outPos = 0
	case cmdReadSetup:
		c.addrBytes = nil
	case cmdReadConfirm:
		page := c.pageFromAddr()
		c.dataOut = append([]byte(nil), c.mem[page]...)
		c.outPos = 0
		c.busyTicks = 2
	case cmdProgramSetup:
		c.addrBytes = nil
		c.dataIn = nil
	case cmdProgramExec:
		page := c.pageFromAddr()
		if c.programmed[page] {
			c.status = statusFailBit
		} else {
			copy(c.mem[page], c.dataIn)
			c.programmed[page] = true
			c.status = 0
		}
		c.busyTicks = 2
	case cmdEraseSetup:
		c.addrBytes = nil
	case cmdEraseExec:
		block := c.blockFromRowAddr()
		first := c.geometry.FirstPageOf(block)
		for p := first; p < first+c.geometry.PagesPerBlock; p++ {
			for j := range c.mem[p] {
				c.mem[p][j] = 0xFF
			}
			delete(c.programmed, p)
		}
		c.status = 0
		c.busyTicks = 2
	case cmdReadStatus:
		c.dataOut = []byte{c.status}
		c.outPos = 0
	}
}

func (c *chipSim) pageFromAddr() int {
	if len(c.addrBytes) < 5 {
		return 0
	}
	return int(c.addrBytes[2]) | int(c.addrBytes[3])<<8 | int(c.addrBytes[4])<<16
}

func (c *chipSim) blockFromRowAddr() int {
	if len(c.addrBytes) < 3 {
		return 0
	}
	page := int(c.addrBytes[0]) | int(c.addrBytes[1])<<8 | int(c.addrBytes[2])<<16
	return c.geometry.BlockOf(page)
}

func (c *chipSim) ctrlSample() (byte, error) {
	v := c.lastCtrl &^ byte(pinRDY)
	if c.busyTicks > 0 {
		c.busyTicks--
		return v, nil
	}
	return v | pinRDY, nil
}

func (c *chipSim) ioWrite(b byte) error {
	c.ioShadowVal = b
	return nil
}

func (c *chipSim) ioSample() (byte, error) {
	if !c.nreLow {
		return 0, nil
	}
	if c.outPos < len(c.dataOut) {
		return c.dataOut[c.outPos], nil
	}
	return 0xFF, nil
}
