// Copyright 2018-26 The nandflash Authors. All rights reserved.
// Use of this source code is governed by a GPL license that can be found in the LICENSE file.

package nand

// ONFI-style command opcodes, matching the reference tool's command table
// exactly (SPEC_FULL.md § 4.3).
const (
	cmdReadID       byte = 0x90
	cmdReadSetup    byte = 0x00
	cmdReadConfirm  byte = 0x30
	cmdProgramSetup byte = 0x80
	cmdProgramExec  byte = 0x10
	cmdEraseSetup   byte = 0x60
	cmdEraseExec    byte = 0xD0
	cmdReadStatus   byte = 0x70
)

// statusFailBit is bit 0 of the status register: 0 = pass, 1 = fail.
const statusFailBit byte = 0x01

// ReadID issues READ_ID (0x90) at address 0x00 and returns the 5 ID bytes
// the part returns in response (SPEC_FULL.md § 4.3, § 4.5 step 5).
func (s *Session) ReadID() ([5]byte, error) {
	var id [5]byte

	if err := s.latchCommand(cmdReadID); err != nil {
		return id, err
	}
	if err := s.latchAddress([]byte{0x00}); err != nil {
		return id, err
	}
	if err := s.latchDataOut(id[:]); err != nil {
		return id, err
	}
	return id, nil
}

// Identify issues ReadID and compares the result against the session's
// configured geometry. A mismatch is returned as *IdentityMismatchError but
// is not otherwise treated as fatal: per SPEC_FULL.md § 4.5 step 5, callers
// report it and proceed.
func (s *Session) Identify() ([5]byte, error) {
	id, err := s.ReadID()
	if err != nil {
		return id, err
	}
	if id != s.geometry.ExpectedID {
		return id, &IdentityMismatchError{Got: id, Expected: s.geometry.ExpectedID}
	}
	return id, nil
}

// ReadPage reads one full page (geometry.PageSize bytes, spare included)
// from the given page index into buf. len(buf) must equal PageSize.
func (s *Session) ReadPage(page int, buf []byte) error {
	if len(buf) != s.geometry.PageSize {
		return &PreconditionError{Op: "ReadPage", Reason: "buf length must equal PageSize"}
	}

	addr := s.packer.Pack(0, uint32(page))
	if err := s.latchCommand(cmdReadSetup); err != nil {
		return err
	}
	if err := s.latchAddress(addr[:]); err != nil {
		return err
	}
	if err := s.latchCommand(cmdReadConfirm); err != nil {
		return err
	}
	if err := s.waitReady(); err != nil {
		return err
	}
	return s.latchDataOut(buf)
}

// ProgramPage writes one full page (len(data) must equal PageSize) and
// confirms the operation against the status register.
func (s *Session) ProgramPage(page int, data []byte) error {
	if len(data) != s.geometry.PageSize {
		return &PreconditionError{Op: "ProgramPage", Reason: "data length must equal PageSize"}
	}

	addr := s.packer.Pack(0, uint32(page))

	if err := s.setWriteProtect(true); err != nil {
		return err
	}
	if err := s.latchCommand(cmdProgramSetup); err != nil {
		return err
	}
	if err := s.latchAddress(addr[:]); err != nil {
		return err
	}
	if err := s.latchDataIn(data); err != nil {
		return err
	}
	if err := s.latchCommand(cmdProgramExec); err != nil {
		return err
	}
	if err := s.waitReady(); err != nil {
		return err
	}

	status, statusErr := s.ReadStatus()
	if err := s.setWriteProtect(false); err != nil {
		return err
	}
	if statusErr != nil {
		return statusErr
	}
	if status&statusFailBit != 0 {
		return &ProgramFailedError{Page: page, Status: status}
	}
	return nil
}

// setWriteProtect raises (unprotected=true) or lowers (protected=false) the
// nWP pin. Every program/erase sequence brackets its command cycle with
// exactly one of each transition (SPEC_FULL.md § 4.3, testable property 4);
// read-only sequences never touch nWP.
func (s *Session) setWriteProtect(unprotected bool) error {
	s.ctrl.set(pinNWP, unprotected)
	return s.ctrl.push()
}

// EraseBlock erases the given block (the row address of its first page is
// what gets latched, per the reference tool's row-only addressing for
// BLOCK_ERASE) and confirms against the status register.
func (s *Session) EraseBlock(block int) error {
	firstPage := s.geometry.FirstPageOf(block)
	row := rowCycles(s.packer, uint32(firstPage))

	if err := s.setWriteProtect(true); err != nil {
		return err
	}
	if err := s.latchCommand(cmdEraseSetup); err != nil {
		return err
	}
	if err := s.latchAddress(row[:]); err != nil {
		return err
	}
	if err := s.latchCommand(cmdEraseExec); err != nil {
		return err
	}
	if err := s.waitReady(); err != nil {
		return err
	}

	status, statusErr := s.ReadStatus()
	if err := s.setWriteProtect(false); err != nil {
		return err
	}
	if statusErr != nil {
		return statusErr
	}
	if status&statusFailBit != 0 {
		return &EraseFailedError{Block: block, Status: status}
	}
	return nil
}

// ReadStatus issues READ_STATUS (0x70) and returns the single status byte.
func (s *Session) ReadStatus() (byte, error) {
	if err := s.latchCommand(cmdReadStatus); err != nil {
		return 0, err
	}
	var buf [1]byte
	if err := s.latchDataOut(buf[:]); err != nil {
		return 0, err
	}
	return buf[0], nil
}
