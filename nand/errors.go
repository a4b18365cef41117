// Copyright 2018-26 The nandflash Authors. All rights reserved.
// Use of this source code is governed by a GPL license that can be found in the LICENSE file.

package nand

import "fmt"

// PreconditionError reports that a latch primitive was invoked with the
// control bus in a state the ONFI protocol forbids for that operation. It
// always indicates a caller bug in this package, never a hardware fault;
// no I/O is attempted when this error is returned. ReadPage and ProgramPage
// also return it, before any I/O, when the buffer length is not PageSize.
type PreconditionError struct {
	Op     string // which latch primitive or page operation rejected the call
	Reason string
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("nand: %s: precondition violated: %s", e.Op, e.Reason)
}

// TransportError wraps a failure from the underlying GPIO port.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string { return fmt.Sprintf("nand: %s: transport error: %v", e.Op, e.Err) }
func (e *TransportError) Unwrap() error { return e.Err }

// BusyTimeoutError reports that RDY never asserted within the configured
// bound. The reference design has no timeout at all; this is an
// implementation hardening choice (SPEC_FULL.md § 9).
type BusyTimeoutError struct {
	Waited string // human-readable elapsed duration, for logging
}

func (e *BusyTimeoutError) Error() string {
	return fmt.Sprintf("nand: timed out waiting for RDY after %s", e.Waited)
}

// ProgramFailedError reports that the status register's bit 0 was set
// after a PAGE_PROGRAM sequence.
type ProgramFailedError struct {
	Page   int
	Status byte
}

func (e *ProgramFailedError) Error() string {
	return fmt.Sprintf("nand: program failed on page %d, status=0x%02X", e.Page, e.Status)
}

// EraseFailedError reports that the status register's bit 0 was set after
// a BLOCK_ERASE sequence.
type EraseFailedError struct {
	Block  int
	Status byte
}

func (e *EraseFailedError) Error() string {
	return fmt.Sprintf("nand: erase failed on block %d, status=0x%02X", e.Block, e.Status)
}

// IdentityMismatchError reports that READ_ID did not return the geometry's
// ExpectedID. Callers may treat this as non-fatal (SPEC_FULL.md § 4.5 step
// 5: "report PASS/FAIL but do not abort").
type IdentityMismatchError struct {
	Got      [5]byte
	Expected [5]byte
}

func (e *IdentityMismatchError) Error() string {
	return fmt.Sprintf("nand: identity mismatch: got % 02X, expected % 02X", e.Got[:], e.Expected[:])
}
