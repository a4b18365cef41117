// Copyright 2018-26 The nandflash Authors. All rights reserved.
// Use of this source code is governed by a GPL license that can be found in the LICENSE file.

// Package geomdb loads a TOML-encoded table of known NAND part geometries,
// keyed by their 5-byte READ_ID signature, so a caller can resolve the
// geometry for whatever part Session.Identify() actually found without
// hard-coding every part family into the nand package itself.
package geomdb

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/flashrig/nandflash/nand"
)

// Entry is one row of the geometry database: a human name plus the part's
// READ_ID signature and layout.
type Entry struct {
	Name          string `toml:"name"`
	ID            string `toml:"id"` // hex-encoded 5-byte READ_ID signature, e.g. "ADDC109554"
	PageSize      int    `toml:"page_size"`
	PageSizeUser  int    `toml:"page_size_user"`
	PagesPerBlock int    `toml:"pages_per_block"`
	BlockCount    int    `toml:"block_count"`
}

// Db is a loaded geometry database.
type Db struct {
	Parts []Entry `toml:"parts"`
}

// OpenGeometryDb loads a geometry database from a TOML file. Mirrors the
// teacher package's OpenDriveDb load-by-path shape.
func OpenGeometryDb(path string) (Db, error) {
	var db Db
	if _, err := toml.DecodeFile(path, &db); err != nil {
		return Db{}, fmt.Errorf("geomdb: decoding %s: %w", path, err)
	}
	return db, nil
}

// Lookup returns the Geometry whose ID matches id, and whether one was
// found. Unknown IDs are not an error: the caller keeps its current
// geometry (cmd/nandflash keeps nand.DefaultGeometry).
func (db Db) Lookup(id [5]byte) (nand.Geometry, bool) {
	for _, e := range db.Parts {
		entryID, err := e.idBytes()
		if err != nil || entryID != id {
			continue
		}
		return e.geometry(), true
	}
	return nand.Geometry{}, false
}

func (e Entry) idBytes() ([5]byte, error) {
	var id [5]byte
	if len(e.ID) != 10 {
		return id, fmt.Errorf("geomdb: entry %q has malformed id %q", e.Name, e.ID)
	}
	for i := range id {
		var b byte
		if _, err := fmt.Sscanf(e.ID[i*2:i*2+2], "%02X", &b); err != nil {
			return id, fmt.Errorf("geomdb: entry %q has malformed id %q: %w", e.Name, e.ID, err)
		}
		id[i] = b
	}
	return id, nil
}

func (e Entry) geometry() nand.Geometry {
	id, _ := e.idBytes()
	return nand.Geometry{
		PageSize:      e.PageSize,
		PageSizeUser:  e.PageSizeUser,
		PagesPerBlock: e.PagesPerBlock,
		BlockCount:    e.BlockCount,
		ExpectedID:    id,
		Name:          e.Name,
	}
}

// WriteDefault writes a single-entry database describing
// nand.DefaultGeometry to path, as a starting point for callers who want to
// add further part families. Grounded on the teacher's mkdrivedb generator,
// which likewise seeds a starter file a user edits further.
func WriteDefault(path string) error {
	g := nand.DefaultGeometry
	db := Db{Parts: []Entry{{
		Name:          g.Name,
		ID:            fmt.Sprintf("%02X%02X%02X%02X%02X", g.ExpectedID[0], g.ExpectedID[1], g.ExpectedID[2], g.ExpectedID[3], g.ExpectedID[4]),
		PageSize:      g.PageSize,
		PageSizeUser:  g.PageSizeUser,
		PagesPerBlock: g.PagesPerBlock,
		BlockCount:    g.BlockCount,
	}}}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("geomdb: creating %s: %w", path, err)
	}
	defer f.Close()

	enc := toml.NewEncoder(f)
	if err := enc.Encode(db); err != nil {
		return fmt.Errorf("geomdb: encoding %s: %w", path, err)
	}
	return nil
}
