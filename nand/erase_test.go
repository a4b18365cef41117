// Copyright 2018-26 The nandflash Authors. All rights reserved.
// Use of this source code is governed by a GPL license that can be found in the LICENSE file.

package nand

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEraseRange_ErasesRequestedBlocks(t *testing.T) {
	s, sim, _, _ := newTestSession(t)

	// Dirty block 2's pages so erase has something visible to undo.
	first := s.geometry.FirstPageOf(2)
	for p := first; p < first+s.geometry.PagesPerBlock; p++ {
		for i := range sim.mem[p] {
			sim.mem[p][i] = 0x5A
		}
	}

	res, err := s.EraseRange(context.Background(), 2, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, res.BlocksErased)

	for p := first; p < first+s.geometry.PagesPerBlock; p++ {
		for _, b := range sim.mem[p] {
			assert.Equal(t, byte(0xFF), b)
		}
	}
}

func TestEraseRange_ZeroCountMeansToEnd(t *testing.T) {
	s, _, _, _ := newTestSession(t)
	s.geometry.BlockCount = 3

	res, err := s.EraseRange(context.Background(), 1, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, res.BlocksErased)
}

func TestEraseRange_RespectsCancellation(t *testing.T) {
	s, _, _, _ := newTestSession(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := s.EraseRange(ctx, 0, 5)
	require.Error(t, err)
	assert.Equal(t, 0, res.BlocksErased)
}
