// Copyright 2018-26 The nandflash Authors. All rights reserved.
// Use of this source code is governed by a GPL license that can be found in the LICENSE file.

package nand

import (
	"context"
	"fmt"
	"io"
)

// Source is the readable source a program driver consumes, matching
// SPEC_FULL.md § 6: seekable, with short reads surfaced as io.ErrUnexpectedEOF
// rather than silently zero-padded.
type Source interface {
	io.Reader
	io.Seeker
}

// SkipPolicy decides whether a page read from the program source should be
// skipped rather than written. The default, SkipAllZero, matches the
// reference tool: an all-0xFF page needs no programming (already erased),
// and an all-0x00 page is treated as a bad-block artifact not worth
// writing.
type SkipPolicy func(page []byte) bool

// SkipAllZero is the default SkipPolicy: skip pages that are uniformly
// 0xFF or uniformly 0x00.
func SkipAllZero(page []byte) bool {
	if len(page) == 0 {
		return false
	}
	allFF, allZero := true, true
	for _, b := range page {
		if b != 0xFF {
			allFF = false
		}
		if b != 0x00 {
			allZero = false
		}
		if !allFF && !allZero {
			return false
		}
	}
	return allFF || allZero
}

// ProgramResult summarizes a completed (or aborted) program_from_stream.
type ProgramResult struct {
	TotalRead  int
	Programmed int
	Skipped    int
}

// ProgramFromStream reads up to count pages from source (after first
// skipping skipPages whole pages) and programs each one starting at
// startPage, subject to skip. A nil skip defaults to SkipAllZero. count == 0
// means "to the end of the device". A short final read ends the loop
// without error, same as the reference tool's EOF handling; any other read
// error aborts (SPEC_FULL.md § 4.4, § 7).
func (s *Session) ProgramFromStream(ctx context.Context, startPage, count, skipPages int, source Source, skip SkipPolicy) (ProgramResult, error) {
	if skip == nil {
		skip = SkipAllZero
	}
	if count == 0 {
		count = s.geometry.TotalPages() - startPage
	}

	if skipPages > 0 {
		if _, err := source.Seek(int64(skipPages)*int64(s.geometry.PageSize), io.SeekStart); err != nil {
			return ProgramResult{}, fmt.Errorf("program: seeking past %d skip pages: %w", skipPages, err)
		}
	}

	buf := make([]byte, s.geometry.PageSize)
	res := ProgramResult{}
	page := startPage

	for i := 0; i < count; i++ {
		select {
		case <-ctx.Done():
			return res, ctx.Err()
		default:
		}

		n, err := io.ReadFull(source, buf)
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			break
		}
		if err != nil {
			return res, fmt.Errorf("program: reading source at page %d: %w", page, err)
		}
		res.TotalRead++

		if skip(buf[:n]) {
			res.Skipped++
			page++
			continue
		}

		if err := s.ProgramPage(page, buf); err != nil {
			return res, fmt.Errorf("program: page %d: %w", page, err)
		}
		res.Programmed++
		page++
	}
	return res, nil
}
