// Copyright 2018-26 The nandflash Authors. All rights reserved.
// Use of this source code is governed by a GPL license that can be found in the LICENSE file.

package nand

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pageOf(t *testing.T, pageSize int, fill byte) []byte {
	t.Helper()
	b := make([]byte, pageSize)
	for i := range b {
		b[i] = fill
	}
	return b
}

func TestProgramFromStream_SkipsAllFFAndAllZero(t *testing.T) {
	s, sim, _, _ := newTestSession(t)

	var src bytes.Buffer
	src.Write(pageOf(t, s.geometry.PageSize, 0xFF)) // skipped: erased state
	src.Write(pageOf(t, s.geometry.PageSize, 0x00)) // skipped: bad-block artifact
	src.Write(pageOf(t, s.geometry.PageSize, 0x42)) // programmed

	res, err := s.ProgramFromStream(context.Background(), 0, 3, 0, bytes.NewReader(src.Bytes()), nil)
	require.NoError(t, err)
	assert.Equal(t, 3, res.TotalRead)
	assert.Equal(t, 2, res.Skipped)
	assert.Equal(t, 1, res.Programmed)

	assert.Equal(t, pageOf(t, s.geometry.PageSize, 0x42), sim.mem[2])
	// Pages 0 and 1 were never touched by ProgramPage, so they remain erased.
	assert.Equal(t, pageOf(t, s.geometry.PageSize, 0xFF), sim.mem[0])
	assert.Equal(t, pageOf(t, s.geometry.PageSize, 0xFF), sim.mem[1])
}

func TestProgramFromStream_SkipPagesAdvancesSource(t *testing.T) {
	s, sim, _, _ := newTestSession(t)

	var src bytes.Buffer
	src.Write(pageOf(t, s.geometry.PageSize, 0x11)) // to be skipped via skipPages
	src.Write(pageOf(t, s.geometry.PageSize, 0x22))

	res, err := s.ProgramFromStream(context.Background(), 0, 1, 1, bytes.NewReader(src.Bytes()), nil)
	require.NoError(t, err)
	assert.Equal(t, 1, res.TotalRead)
	assert.Equal(t, 1, res.Programmed)
	assert.Equal(t, pageOf(t, s.geometry.PageSize, 0x22), sim.mem[0])
}

func TestProgramFromStream_ShortReadEndsCleanly(t *testing.T) {
	s, _, _, _ := newTestSession(t)

	short := make([]byte, s.geometry.PageSize/2)
	res, err := s.ProgramFromStream(context.Background(), 0, 5, 0, bytes.NewReader(short), nil)
	require.NoError(t, err)
	assert.Equal(t, 0, res.TotalRead)
	assert.Equal(t, 0, res.Programmed)
}

func TestProgramFromStream_AbortsOnProgramFailure(t *testing.T) {
	s, _, _, _ := newTestSession(t)

	data := pageOf(t, s.geometry.PageSize, 0x77)
	require.NoError(t, s.ProgramPage(0, data)) // pre-program page 0 so it fails again below

	res, err := s.ProgramFromStream(context.Background(), 0, 1, 0, bytes.NewReader(data), nil)
	require.Error(t, err)
	assert.Equal(t, 1, res.TotalRead)
	assert.Equal(t, 0, res.Programmed)
}
