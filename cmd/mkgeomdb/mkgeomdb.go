// Copyright 2018-26 The nandflash Authors. All rights reserved.
// Use of this source code is governed by a GPL license that can be found in the LICENSE file.

// mkgeomdb builds a geomdb TOML database from a local part list, or seeds a
// starter database describing nand.DefaultGeometry if no input is given.
//
// The input format is a brace-delimited literal per part, deliberately
// echoing the teacher's drivedb.h entry syntax:
//
//	{"Toshiba TC58NVG1S3HTA00", "ADDC109554", 2112, 2048, 64, 2048},
//
// fields are name, hex READ_ID signature, page size, user page size, pages
// per block, block count.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/scanner"

	"github.com/BurntSushi/toml"

	"github.com/flashrig/nandflash/geomdb"
)

func parsePartList(src io.Reader) []geomdb.Entry {
	var (
		s    scanner.Scanner
		prev rune
		idx  int
	)

	entries := make([]geomdb.Entry, 0)
	items := make([]string, 6)

	s.Init(src)
	s.Mode ^= scanner.SkipComments

	// Same brace/comma driven state machine the teacher's drivedb.h parser
	// uses, generalized to a mix of string and integer fields.
	for tok := s.Scan(); tok != scanner.EOF; tok = s.Scan() {
		switch {
		case (prev == '{' || prev == ',') && (tok == scanner.String || tok == scanner.Int):
			items[idx] = s.TokenText()
		case (tok == scanner.String || tok == scanner.Int) && prev == ',':
			items[idx] = s.TokenText()
		case tok == '{':
			idx = 0
		case tok == ',':
			idx++
		case tok == '}':
			entries = append(entries, fieldsToEntry(items))
			items = make([]string, 6)
			idx = 0
		}
		prev = tok
	}

	return entries
}

func fieldsToEntry(items []string) geomdb.Entry {
	name, _ := strconv.Unquote(items[0])
	id, _ := strconv.Unquote(items[1])
	pageSize, _ := strconv.Atoi(strings.TrimSpace(items[2]))
	pageSizeUser, _ := strconv.Atoi(strings.TrimSpace(items[3]))
	pagesPerBlock, _ := strconv.Atoi(strings.TrimSpace(items[4]))
	blockCount, _ := strconv.Atoi(strings.TrimSpace(items[5]))

	return geomdb.Entry{
		Name:          name,
		ID:            id,
		PageSize:      pageSize,
		PageSizeUser:  pageSizeUser,
		PagesPerBlock: pagesPerBlock,
		BlockCount:    blockCount,
	}
}

func main() {
	inFilename := flag.String("in", "", "Optional path to a local part list; omit to seed a single default entry")
	outFilename := flag.String("out", "geometries.toml", "Output .toml filename")
	flag.Parse()

	var entries []geomdb.Entry

	if *inFilename != "" {
		f, err := os.Open(*inFilename)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Cannot read part list: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()

		entries = parsePartList(f)
		fmt.Printf("Parsed %s - %d entries\n", *inFilename, len(entries))
	} else {
		if err := geomdb.WriteDefault(*outFilename); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		fmt.Printf("Wrote default geometry database to %s\n", *outFilename)
		return
	}

	destFile, err := os.Create(*outFilename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cannot create output: %v\n", err)
		os.Exit(1)
	}
	defer destFile.Close()

	enc := toml.NewEncoder(destFile)
	if err := enc.Encode(geomdb.Db{Parts: entries}); err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding toml: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Successfully wrote output to %s\n", *outFilename)
}
