// Command binpickle-inspect opens a BinPickle container file and prints a
// summary of its header, trailer and index, optionally re-verifying
// every buffer's digest.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	binpickle "github.com/lkpy/binpickle-go"
)

func main() {
	verify := flag.Bool("verify", false, "re-read and digest-check every buffer")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: binpickle-inspect [-verify] <file.bpk>")
		os.Exit(2)
	}

	if err := inspect(flag.Arg(0), *verify); err != nil {
		log.Fatal(err)
	}
}

func inspect(path string, verify bool) error {
	r, err := binpickle.Open(path, false)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer r.Close()

	stats, err := r.Inspect(verify)
	if err != nil {
		return fmt.Errorf("inspect %s: %w", path, err)
	}

	fmt.Printf("%s\n", path)
	fmt.Printf("  buffers:        %d\n", stats.BufferCount)
	fmt.Printf("  payload bytes:  encoded=%d decoded=%d\n", stats.TotalEnc, stats.TotalDec)
	fmt.Printf("  buffer size:    min=%d max=%d\n", stats.MinEncLength, stats.MaxEncLength)
	fmt.Printf("  codecs:\n")
	for id, count := range stats.CodecCounts {
		fmt.Printf("    %-8s %d\n", id, count)
	}
	if verify {
		fmt.Printf("  digests:        verified\n")
	}

	for i, e := range r.Entries() {
		fmt.Printf("  [%d] offset=%d enc=%d dec=%d codecs=%v\n", i, e.Offset, e.EncLength, e.DecLength, e.Codecs)
	}

	return nil
}
