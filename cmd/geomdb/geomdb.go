// Copyright 2018-26 The nandflash Authors. All rights reserved.
// Use of this source code is governed by a GPL license that can be found in the LICENSE file.

// geomdb queries a NAND geometry database, dumping its contents (or a
// single looked-up entry) as YAML.
package main

import (
	"flag"
	"fmt"
	"os"

	"gopkg.in/yaml.v2"

	"github.com/flashrig/nandflash/geomdb"
)

func main() {
	dbPath := flag.String("db", "geometries.toml", "Path to the geometry database (TOML)")
	id := flag.String("id", "", "Optional 10-hex-digit READ_ID signature to look up, e.g. ADDC109554")
	flag.Parse()

	db, err := geomdb.OpenGeometryDb(*dbPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if *id == "" {
		enc := yaml.NewEncoder(os.Stdout)
		if err := enc.Encode(db); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	var idBytes [5]byte
	if _, err := fmt.Sscanf(*id, "%02X%02X%02X%02X%02X", &idBytes[0], &idBytes[1], &idBytes[2], &idBytes[3], &idBytes[4]); err != nil {
		fmt.Fprintf(os.Stderr, "invalid -id %q: %v\n", *id, err)
		os.Exit(1)
	}

	g, ok := db.Lookup(idBytes)
	if !ok {
		fmt.Fprintf(os.Stderr, "no geometry entry matches id %s\n", *id)
		os.Exit(1)
	}

	enc := yaml.NewEncoder(os.Stdout)
	if err := enc.Encode(g); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
