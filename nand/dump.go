// Copyright 2018-26 The nandflash Authors. All rights reserved.
// Use of this source code is governed by a GPL license that can be found in the LICENSE file.

package nand

import (
	"context"
	"fmt"
)

// Sink is the writable destination for a dump: append raw page bytes, flush
// after each page so an interrupted dump still leaves a valid, truncated
// prefix on disk (SPEC_FULL.md § 4.4, § 6).
type Sink interface {
	Write(p []byte) (n int, err error)
	Flush() error
}

// DumpResult summarizes a completed (or aborted) dump_range.
type DumpResult struct {
	PagesRead int
}

// DumpRange reads count pages starting at startPage into sink, flushing
// after every page. count == 0 means "to the end of the device". Context
// cancellation is only honored between pages, never mid-sequence (§ 5).
func (s *Session) DumpRange(ctx context.Context, startPage, count int, sink Sink) (DumpResult, error) {
	if count == 0 {
		count = s.geometry.TotalPages() - startPage
	}

	buf := make([]byte, s.geometry.PageSize)
	res := DumpResult{}

	for i := 0; i < count; i++ {
		select {
		case <-ctx.Done():
			return res, ctx.Err()
		default:
		}

		page := startPage + i
		if err := s.ReadPage(page, buf); err != nil {
			return res, fmt.Errorf("dump: page %d: %w", page, err)
		}
		if _, err := sink.Write(buf); err != nil {
			return res, fmt.Errorf("dump: page %d: sink write: %w", page, err)
		}
		if err := sink.Flush(); err != nil {
			return res, fmt.Errorf("dump: page %d: sink flush: %w", page, err)
		}
		res.PagesRead++
	}
	return res, nil
}
