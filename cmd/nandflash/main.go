// Copyright 2018-26 The nandflash Authors. All rights reserved.
// Use of this source code is governed by a GPL license that can be found in the LICENSE file.

// nandflash drives a raw parallel NAND chip over a dual-channel USB
// bit-bang GPIO bridge: dump, program, erase, or wiring self-test.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"runtime"
	"time"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/flashrig/nandflash/geomdb"
	"github.com/flashrig/nandflash/gpio"
	"github.com/flashrig/nandflash/nand"
	"github.com/flashrig/nandflash/utils"
)

const (
	_LINUX_CAPABILITY_VERSION_3 = 0x20080522

	CAP_SYS_RAWIO = 1 << 17
	CAP_SYS_ADMIN = 1 << 21
)

type capHeader struct {
	version uint32
	pid     int
}

type capData struct {
	effective   uint32
	permitted   uint32
	inheritable uint32
}

type capsV3 struct {
	hdr  capHeader
	data [2]capData
}

// checkCaps invokes the capget syscall to check for necessary capabilities.
// This depends on the binary having the capabilities set (via setcap) or
// being run as root; it is a warning, not a hard failure, unlike
// preflightUSBAccess in the gpio package, whose failure makes
// OpenFTDIPort return an error.
func checkCaps(logger *log.Logger) {
	caps := new(capsV3)
	caps.hdr.version = _LINUX_CAPABILITY_VERSION_3

	_, _, e1 := unix.RawSyscall(unix.SYS_CAPGET, uintptr(unsafe.Pointer(&caps.hdr)), uintptr(unsafe.Pointer(&caps.data)), 0)
	if e1 != 0 {
		logger.Printf("capget() failed: %v", e1)
		return
	}

	if (caps.data[0].effective&CAP_SYS_RAWIO == 0) && (caps.data[0].effective&CAP_SYS_ADMIN == 0) {
		logger.Println("neither cap_sys_rawio nor cap_sys_admin is in effect; USB device access will probably fail")
	}
}

// fileSink adapts an *os.File to nand.Sink.
type fileSink struct{ f *os.File }

func (s fileSink) Write(p []byte) (int, error) { return s.f.Write(p) }
func (s fileSink) Flush() error                { return s.f.Sync() }

func main() {
	fmt.Println("nandflash - ONFI-style raw parallel NAND programmer")
	fmt.Printf("Built with %s on %s (%s)\n\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)

	var (
		startPage   = flag.Int("s", 0, "Start page (dump/program mode)")
		count       = flag.Int("c", 0, "Page count (dump/program) or block count (erase); 0 means to the end")
		delayUs     = flag.Int("d", 0, "Per-nWE/nRE microsecond delay")
		outFile     = flag.String("f", "flashdump.bin", "Output file path for dump mode")
		overwrite   = flag.Bool("o", false, "Permit overwriting an existing dump file")
		programFile = flag.String("p", "", "Program mode: source file path")
		skipPages   = flag.Int("k", 0, "Page skip at the head of the program source")
		eraseMode   = flag.Bool("E", false, "Erase mode")
		startBlock  = flag.Int("b", 0, "Start block (erase mode only)")
		selfTest    = flag.Bool("t", false, "Self-test mode: toggle each control and I/O pin; DISCONNECT THE FLASH")
		verbose     = flag.Bool("v", false, "Verbose logging")
		configPath  = flag.String("config", "", "Optional geometry database (TOML) to resolve the attached part against")
		allowZero   = flag.Bool("allow-zero-skip", true, "Treat all-zero pages as skippable bad-block artifacts when programming")
		deviceIndex = flag.Int("device", 0, "FTDI device index, for a host with more than one bridge attached")
	)
	flag.Parse()

	logger := log.New(os.Stderr, "", log.LstdFlags)
	if !*verbose {
		logger.SetOutput(io.Discard)
	}

	checkCaps(log.New(os.Stderr, "", 0))

	if *startPage != 0 && *startBlock != 0 {
		fmt.Fprintln(os.Stderr, "argument error: -s and -b are mutually exclusive")
		os.Exit(1)
	}
	if *startPage != 0 && *eraseMode {
		fmt.Fprintln(os.Stderr, "argument error: -s and -E are mutually exclusive")
		os.Exit(1)
	}

	if !*eraseMode && *programFile == "" && !*selfTest {
		if _, err := os.Stat(*outFile); err == nil && !*overwrite {
			fmt.Fprintf(os.Stderr, "output file already exists, use -o to overwrite: %s\n", *outFile)
			os.Exit(2)
		}
	}

	ctrlPort, err := gpio.OpenFTDIPort(*deviceIndex, gpio.ChannelB)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	ioPort, err := gpio.OpenFTDIPort(*deviceIndex, gpio.ChannelA)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	sess, err := nand.NewSession(ctrlPort, ioPort,
		nand.WithDelay(time.Duration(*delayUs)*time.Microsecond),
		nand.WithLogger(logger),
	)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer sess.Close()

	if *selfTest {
		fmt.Println("Test mode: running wiring self-test, chip must be disconnected")
		if err := sess.SelfTestControlBus(func(st nand.SelfTestStep) { fmt.Printf("  control bus %s: %v\n", st.Pin, st.On) }); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		if err := sess.SelfTestIOBus(func(st nand.SelfTestStep) { fmt.Printf("  I/O bus %s: %v\n", st.Pin, st.On) }); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	id, err := sess.Identify()
	if err != nil {
		fmt.Printf("identity check: %v\n", err)
	} else {
		fmt.Printf("identity check: PASS (id=% 02X, part=%s)\n", id[:], sess.Geometry().Name)
	}

	if *configPath != "" {
		db, err := geomdb.OpenGeometryDb(*configPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		if g, ok := db.Lookup(id); ok {
			fmt.Printf("resolved geometry from %s: %s\n", *configPath, g.Name)
			sess = mustRebuildWithGeometry(sess, ctrlPort, ioPort, g, *delayUs, logger)
		} else {
			fmt.Printf("no geometry entry in %s matches id % 02X; keeping default geometry\n", *configPath, id[:])
		}
	}

	ctx := context.Background()

	switch {
	case *eraseMode:
		res, err := sess.EraseRange(ctx, *startBlock, *count)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		fmt.Printf("erased %d blocks\n", res.BlocksErased)

	case *programFile != "":
		f, err := os.Open(*programFile)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		defer f.Close()

		var skip nand.SkipPolicy
		if !*allowZero {
			skip = func(page []byte) bool {
				for _, b := range page {
					if b != 0xFF {
						return false
					}
				}
				return true
			}
		}

		res, err := sess.ProgramFromStream(ctx, *startPage, *count, *skipPages, f, skip)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		written := uint64(res.Programmed) * uint64(sess.Geometry().PageSize)
		fmt.Printf("read %d pages, programmed %d (%s), skipped %d\n", res.TotalRead, res.Programmed, utils.FormatBytes(written), res.Skipped)

	default:
		f, err := os.Create(*outFile)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		defer f.Close()

		res, err := sess.DumpRange(ctx, *startPage, *count, fileSink{f})
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		dumped := uint64(res.PagesRead) * uint64(sess.Geometry().PageSize)
		fmt.Printf("dumped %d pages (%s) to %s\n", res.PagesRead, utils.FormatBytes(dumped), *outFile)
	}
}

// mustRebuildWithGeometry opens a fresh Session against the same ports with
// an overridden geometry. sess is not closed here, because Session.Close
// releases both ports; the caller's deferred Close of sess releases them at
// exit. NewSession's bring-up is cheap relative to a dump/program/erase run,
// so re-running it to pick up a resolved geometry is simpler than threading
// a geometry setter through an already-constructed Session.
func mustRebuildWithGeometry(sess *nand.Session, ctrlPort, ioPort gpio.Port, g nand.Geometry, delayUs int, logger *log.Logger) *nand.Session {
	next, err := nand.NewSession(ctrlPort, ioPort,
		nand.WithDelay(time.Duration(delayUs)*time.Microsecond),
		nand.WithLogger(logger),
		nand.WithGeometry(g),
	)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	return next
}
