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

// Command anscodec encodes and decodes files with a streaming ANS
// codec, packaging the result in a small self-describing container
// (magic, lengths, U/B, initial state, frequency table) so a decode
// run needs nothing but the file itself.
//
// It can also run a -compare pass against klauspost/compress's s2 and
// zstd codecs on the same input, and a -demo pass that round-trips a
// fixed sentence under three (U, B) parameter sets to demonstrate that
// the streaming parameters don't change the decoded result, printing
// the encoded size for each.
package main

import (
	"bytes"
	"encoding/binary"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/klauspost/compress/s2"
	"github.com/klauspost/compress/zstd"

	"github.com/ansu-project/ansu/ans"
	"github.com/ansu-project/ansu/ans/fingerprint"
)

var magic = [4]byte{'A', 'N', 'S', '1'}

const (
	defaultU = 16
	defaultB = 2
	scaleK   = 12
)

func main() {
	var (
		decode  = flag.Bool("d", false, "decode instead of encode")
		out     = flag.String("o", "", "output path (default: stdout)")
		compare = flag.Bool("compare", false, "also compress the input with s2 and zstd and print a size/time comparison")
		verbose = flag.Bool("v", false, "trace spill/refill events to stderr")
		demo    = flag.Bool("demo", false, "round-trip a fixed sentence under (U,B) in {(16,2),(24,2),(32,2)} and exit, ignoring <input-file>")
	)
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: anscodec [flags] <input-file>\n\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if *demo {
		runDemo()
		return
	}

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	data, err := os.ReadFile(flag.Arg(0))
	if err != nil {
		fatal("read %s: %v", flag.Arg(0), err)
	}

	var logger *log.Logger
	if *verbose {
		logger = log.New(os.Stderr, "anscodec: ", log.LstdFlags)
	}

	var result []byte
	if *decode {
		result, err = decodeContainer(data)
	} else {
		result, err = encodeContainer(data, logger)
	}
	if err != nil {
		fatal("%v", err)
	}

	w := os.Stdout
	if *out != "" {
		wf, cerr := os.Create(*out)
		if cerr != nil {
			fatal("create %s: %v", *out, cerr)
		}
		defer wf.Close()
		w = wf
	}
	if _, err := w.Write(result); err != nil {
		fatal("write output: %v", err)
	}

	if *compare && !*decode {
		runComparison(data, result)
	}
}

// encodeContainer builds a .ansu container:
//
//	magic(4) | origLen(u32 BE) | U(u8) | B(u8) | initialValue(u64 BE)
//	| freqTableFingerprint(u64 BE) | freqTable(1024) | spillStream...
//
// This container is ansu's own glue around the core codec, not part
// of its portable wire format; anscodec is the only reader of it.
func encodeContainer(data []byte, logger *log.Logger) ([]byte, error) {
	raw := ans.New()
	if err := raw.Scan(bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}
	raw = ans.FillMissingWithOne(raw)
	freqs := ans.ScaleToPowerOfTwo(raw, scaleK)

	table := ans.BuildUniform(freqs, freqs.Sum()/2)
	table.SetLogger(logger)
	codec, err := ans.NewStreamingCodec(table, defaultU, defaultB)
	if err != nil {
		return nil, fmt.Errorf("build streaming codec: %w", err)
	}
	codec.SetLogger(logger)

	initialValue := uint64(1) << defaultU
	spill := codec.Encode(data, initialValue)

	var tableBuf [1024]byte
	for i := 0; i < 256; i++ {
		binary.BigEndian.PutUint32(tableBuf[i*4:], freqs.Frequencies[i])
	}
	digest := fingerprint.Digest(tableBuf[:])

	out := make([]byte, 0, 4+4+1+1+8+8+1024+len(spill))
	out = append(out, magic[:]...)
	out = appendU32(out, uint32(len(data)))
	out = append(out, byte(defaultU), byte(defaultB))
	out = appendU64(out, initialValue)
	out = appendU64(out, digest)
	out = append(out, tableBuf[:]...)
	out = append(out, spill...)
	return out, nil
}

func decodeContainer(data []byte) ([]byte, error) {
	const headerLen = 4 + 4 + 1 + 1 + 8 + 8 + 1024
	if len(data) < headerLen {
		return nil, fmt.Errorf("container too short")
	}
	if [4]byte(data[:4]) != magic {
		return nil, fmt.Errorf("bad magic %q", data[:4])
	}
	origLen := binary.BigEndian.Uint32(data[4:8])
	u, b := uint(data[8]), uint(data[9])
	initialValue := binary.BigEndian.Uint64(data[10:18])
	wantDigest := binary.BigEndian.Uint64(data[18:26])
	tableBuf := data[26:headerLen]
	spill := data[headerLen:]

	if !fingerprint.Verify(tableBuf, wantDigest) {
		return nil, fmt.Errorf("frequency table fingerprint mismatch, container is corrupt")
	}

	freqs, err := ans.ParseBinary(bytes.NewReader(tableBuf))
	if err != nil {
		return nil, fmt.Errorf("parse frequency table: %w", err)
	}
	table := ans.BuildUniform(freqs, freqs.Sum()/2)
	codec, err := ans.NewStreamingCodec(table, u, b)
	if err != nil {
		return nil, fmt.Errorf("build streaming codec: %w", err)
	}

	finalStateLen := 8
	out, err := codec.Decode(spill, finalStateLen, initialValue)
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if uint32(len(out)) != origLen {
		return nil, fmt.Errorf("decoded length %d, container declares %d", len(out), origLen)
	}
	return out, nil
}

// runDemo exercises the core codec directly, independent of the
// container format above, the way streaming-ans's own main.rs did:
// one fixed message, one table, three parameter sets, each shown to
// round-trip exactly, with its encoded length printed beside it.
func runDemo() {
	msg := []byte("what is a man, but a miserable pile of secrets?")
	raw := ans.New()
	raw.Frequencies = ans.Histogram(msg)
	filled := ans.FillMissingWithOne(raw)
	scaled := ans.ScaleToPowerOfTwo(filled, 16)
	table := ans.BuildUniform(scaled, scaled.Sum()/2)

	fmt.Printf("message: %q (%d bytes)\n", msg, len(msg))
	for _, params := range [][2]uint{{16, 2}, {24, 2}, {32, 2}} {
		codec, err := ans.NewStreamingCodec(table, params[0], params[1])
		if err != nil {
			fatal("U=%d B=%d: %v", params[0], params[1], err)
		}
		initialValue := uint64(1) << params[0]
		encoded := codec.Encode(msg, initialValue)
		decoded, err := codec.Decode(encoded, 8, initialValue)
		if err != nil {
			fatal("U=%d B=%d: decode: %v", params[0], params[1], err)
		}
		match := "ok"
		if !bytes.Equal(decoded, msg) {
			match = "MISMATCH"
		}
		fmt.Printf("U=%-2d B=%-2d  encoded %4d bytes  round-trip %s\n", params[0], params[1], len(encoded), match)
	}
}

func runComparison(orig, ansEncoded []byte) {
	start := time.Now()
	s2Out := s2.Encode(nil, orig)
	s2Elapsed := time.Since(start)

	enc, err := zstd.NewWriter(nil)
	var zstdOut []byte
	var zstdElapsed time.Duration
	if err == nil {
		start = time.Now()
		zstdOut = enc.EncodeAll(orig, nil)
		zstdElapsed = time.Since(start)
		enc.Close()
	}

	fmt.Fprintf(os.Stderr, "input:  %8d bytes\n", len(orig))
	fmt.Fprintf(os.Stderr, "ansu:   %8d bytes\n", len(ansEncoded))
	fmt.Fprintf(os.Stderr, "s2:     %8d bytes  (%v)\n", len(s2Out), s2Elapsed)
	if err == nil {
		fmt.Fprintf(os.Stderr, "zstd:   %8d bytes  (%v)\n", len(zstdOut), zstdElapsed)
	}
}

func appendU32(b []byte, v uint32) []byte {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], v)
	return append(b, buf[:]...)
}

func appendU64(b []byte, v uint64) []byte {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], v)
	return append(b, buf[:]...)
}

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "anscodec: "+format+"\n", args...)
	os.Exit(1)
}
