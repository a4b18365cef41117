// Copyright 2018-26 The nandflash Authors. All rights reserved.
// Use of this source code is governed by a GPL license that can be found in the LICENSE file.

package nand

import (
	"context"
	"fmt"
)

// EraseResult summarizes a completed (or aborted) erase_range.
type EraseResult struct {
	BlocksErased int
}

// EraseRange erases count blocks starting at startBlock. count == 0 means
// "to the end of the device". Aborts on the first failing block, leaving
// EraseResult.BlocksErased accurate up to (but not including) the failure.
func (s *Session) EraseRange(ctx context.Context, startBlock, count int) (EraseResult, error) {
	if count == 0 {
		count = s.geometry.BlockCount - startBlock
	}

	res := EraseResult{}
	for i := 0; i < count; i++ {
		select {
		case <-ctx.Done():
			return res, ctx.Err()
		default:
		}

		block := startBlock + i
		if err := s.EraseBlock(block); err != nil {
			return res, fmt.Errorf("erase: block %d: %w", block, err)
		}
		res.BlocksErased++
	}
	return res, nil
}
