// Copyright 2024 The Ansu Authors
//
//  Licensed under the Apache License, Version 2.0 (the "License");
//  you may not use this file except in compliance with the License.
//  You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
//  Unless required by applicable law or agreed to in writing, software
//  distributed under the License is distributed on an "AS IS" BASIS,
//  WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
//  See the License for the specific language governing permissions and
//  limitations under the License.

// Command ansfreq scans a file for byte-frequency statistics and
// optionally rescales the result to a power-of-two sum suitable for
// table construction. Binary output carries an appended SipHash-2-4
// trailer of the table bytes, which -verify can later recheck; this
// trailer is ansfreq's own corruption check and has nothing to do
// with the 1024-byte binary format the core codec itself reads.
package main

import (
	"encoding/binary"
	"flag"
	"fmt"
	"os"

	"github.com/ansu-project/ansu/ans"
	"github.com/ansu-project/ansu/ans/fingerprint"
)

func main() {
	var (
		text    = flag.Bool("text", false, "write the frequency table as text instead of binary (disables the fingerprint trailer)")
		fillOne = flag.Bool("fill-missing", false, "give every unseen symbol a frequency of 1 before scaling")
		scaleK  = flag.Uint("scale", 0, "rescale the histogram so frequencies sum to 2^k (0 disables scaling)")
		out     = flag.String("o", "", "output path (default: stdout)")
		verify  = flag.Bool("verify", false, "treat <input-file> as a binary table written by ansfreq and check its fingerprint trailer")
	)
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: ansfreq [flags] <input-file>\n\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	if *verify {
		runVerify(flag.Arg(0))
		return
	}

	f, err := os.Open(flag.Arg(0))
	if err != nil {
		fatal("open %s: %v", flag.Arg(0), err)
	}
	defer f.Close()

	freqs := ans.New()
	if err := freqs.Scan(f); err != nil {
		fatal("scan: %v", err)
	}

	if *fillOne {
		freqs = ans.FillMissingWithOne(freqs)
	}
	if *scaleK > 0 {
		freqs = ans.ScaleToPowerOfTwo(freqs, *scaleK)
	}

	w := os.Stdout
	if *out != "" {
		wf, err := os.Create(*out)
		if err != nil {
			fatal("create %s: %v", *out, err)
		}
		defer wf.Close()
		w = wf
	}

	if *text {
		if err := freqs.WriteText(w); err != nil {
			fatal("write frequency table: %v", err)
		}
		return
	}

	var buf sliceWriter
	if err := freqs.WriteBinary(&buf); err != nil {
		fatal("serialize frequency table: %v", err)
	}
	digest := fingerprint.Digest(buf.buf)
	var trailer [8]byte
	binary.BigEndian.PutUint64(trailer[:], digest)

	if _, err := w.Write(buf.buf); err != nil {
		fatal("write frequency table: %v", err)
	}
	if _, err := w.Write(trailer[:]); err != nil {
		fatal("write fingerprint trailer: %v", err)
	}
}

func runVerify(path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		fatal("read %s: %v", path, err)
	}
	if len(data) != 1024+8 {
		fatal("%s: expected 1032 bytes (1024-byte table + 8-byte trailer), got %d", path, len(data))
	}
	table, trailer := data[:1024], data[1024:]
	want := binary.BigEndian.Uint64(trailer)
	if !fingerprint.Verify(table, want) {
		fatal("%s: fingerprint mismatch, table is corrupt", path)
	}
	fmt.Println("OK")
}

type sliceWriter struct{ buf []byte }

func (w *sliceWriter) Write(p []byte) (int, error) {
	w.buf = append(w.buf, p...)
	return len(p), nil
}

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "ansfreq: "+format+"\n", args...)
	os.Exit(1)
}
