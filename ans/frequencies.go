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

// Package ans implements a table-driven Asymmetric Numeral System
// entropy codec: deterministic encode/decode table construction from a
// fixed 256-symbol frequency histogram, a stateless single-symbol
// transform, and a bounded-state streaming encoder/decoder built on
// top of it.
package ans

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"sort"

	"github.com/ansu-project/ansu/internal/bitutil"
)

// SymbolFrequencies is a fixed-size histogram over the 256 possible
// byte values. The zero value is an empty histogram.
type SymbolFrequencies struct {
	Frequencies [256]uint32
}

// New returns a zeroed histogram.
func New() *SymbolFrequencies {
	return &SymbolFrequencies{}
}

// Sum returns M, the sum of all frequencies.
func (f *SymbolFrequencies) Sum() uint64 {
	var total uint64
	for _, c := range f.Frequencies {
		total += uint64(c)
	}
	return total
}

// NonZeroCount returns the number of symbols with non-zero frequency.
func (f *SymbolFrequencies) NonZeroCount() int {
	n := 0
	for _, c := range f.Frequencies {
		if c != 0 {
			n++
		}
	}
	return n
}

// Histogram counts the occurrences of each byte value in src into four
// interleaved [256]uint32 sub-histograms before summing, which avoids
// the store-to-load forwarding stall that incrementing a single shared
// counter array byte-by-byte incurs on a tight loop (the same trick
// the grounding codec's frequency counter uses).
func Histogram(src []byte) [256]uint32 {
	var h [4][256]uint32
	n := len(src)
	e := n - n%4
	for i := 0; i < e; i += 4 {
		h[0][src[i+0]]++
		h[1][src[i+1]]++
		h[2][src[i+2]]++
		h[3][src[i+3]]++
	}
	for i := e; i < n; i++ {
		h[0][src[i]]++
	}
	var out [256]uint32
	for i := 0; i < 256; i++ {
		out[i] = h[0][i] + h[1][i] + h[2][i] + h[3][i]
	}
	return out
}

// Scan counts byte occurrences from r, accumulating into f.
func (f *SymbolFrequencies) Scan(r io.Reader) error {
	br := bufio.NewReaderSize(r, 4<<10)
	buf := make([]byte, 4<<10)
	for {
		n, err := br.Read(buf)
		if n > 0 {
			h := Histogram(buf[:n])
			for i := 0; i < 256; i++ {
				f.Frequencies[i] += h[i]
			}
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("ans: scan: %w", err)
		}
	}
}

// ParseBinary reads exactly 256 big-endian uint32 words (1024 bytes,
// no header or footer) from r and returns the resulting histogram.
func ParseBinary(r io.Reader) (*SymbolFrequencies, error) {
	var buf [1024]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return nil, fmt.Errorf("ans: parse binary frequency table: %w", err)
	}
	f := New()
	for i := 0; i < 256; i++ {
		f.Frequencies[i] = binary.BigEndian.Uint32(buf[i*4:])
	}
	return f, nil
}

// WriteBinary writes f as 256 big-endian uint32 words (1024 bytes).
func (f *SymbolFrequencies) WriteBinary(w io.Writer) error {
	var buf [1024]byte
	for i := 0; i < 256; i++ {
		binary.BigEndian.PutUint32(buf[i*4:], f.Frequencies[i])
	}
	_, err := w.Write(buf[:])
	return err
}

// ParseText reads one "<symbol> <frequency>\n" line per symbol, for
// symbols 0..255 in order.
func ParseText(r io.Reader) (*SymbolFrequencies, error) {
	f := New()
	sc := bufio.NewScanner(r)
	for i := 0; i < 256; i++ {
		if !sc.Scan() {
			if err := sc.Err(); err != nil {
				return nil, fmt.Errorf("ans: parse text frequency table: %w", err)
			}
			return nil, fmt.Errorf("ans: parse text frequency table: unexpected EOF at symbol %d", i)
		}
		var symbol, freq uint32
		if _, err := fmt.Sscanf(sc.Text(), "%d %d", &symbol, &freq); err != nil {
			return nil, fmt.Errorf("ans: parse text frequency table: line %d: %w", i, err)
		}
		if int(symbol) != i {
			return nil, fmt.Errorf("ans: parse text frequency table: expected symbol %d, got %d", i, symbol)
		}
		f.Frequencies[i] = freq
	}
	return f, nil
}

// WriteText writes one "<symbol> <frequency>\n" line per symbol.
func (f *SymbolFrequencies) WriteText(w io.Writer) error {
	bw := bufio.NewWriter(w)
	for i := 0; i < 256; i++ {
		if _, err := fmt.Fprintf(bw, "%d %d\n", i, f.Frequencies[i]); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// FillMissingWithOne returns a copy of src with every zero-frequency
// slot set to 1, giving the resulting table full alphabet coverage.
func FillMissingWithOne(src *SymbolFrequencies) *SymbolFrequencies {
	out := *src
	for i := range out.Frequencies {
		if out.Frequencies[i] == 0 {
			out.Frequencies[i] = 1
		}
	}
	return &out
}

// ScaleToPowerOfTwo rescales src to a histogram whose frequencies sum
// to exactly 2^k, preserving every symbol that was non-zero in src
// (its scaled frequency is always >= 1).
//
// Symbols are processed smallest-raw-frequency-first so that the
// clamp-to-1 correction for rare symbols is charged against the still
// most abundant remaining target budget, which keeps the scaling
// proportional for the dominant symbols. It panics with a
// *CodecError{Kind: ErrScalingInvariant} if the resulting frequencies
// do not sum to exactly 2^k, which can only happen from a bug in this
// function, never from caller input.
func ScaleToPowerOfTwo(src *SymbolFrequencies, k uint) *SymbolFrequencies {
	if nz := src.NonZeroCount(); nz > 0 {
		if need := bitutil.CeilLog2(uint(nz)); k < uint(need) {
			panic(newCodecError(errKindScalingInvariant, ErrScalingInvariant,
				fmt.Sprintf("k=%d cannot give every one of %d non-zero symbols a frequency of at least 1, need k >= %d", k, nz, need)))
		}
	}

	indices := make([]int, 256)
	for i := range indices {
		indices[i] = i
	}
	sort.Slice(indices, func(a, b int) bool {
		return src.Frequencies[indices[a]] < src.Frequencies[indices[b]]
	})

	oldSum := src.Sum()
	targetSum := uint64(1) << k

	out := New()
	for _, s := range indices {
		f := uint64(src.Frequencies[s])
		var fPrime uint64
		if oldSum > 0 {
			fPrime = targetSum * f / oldSum
		}
		if f > 0 && fPrime == 0 {
			fPrime = 1
		}
		out.Frequencies[s] = uint32(fPrime)
		oldSum -= f
		targetSum -= fPrime
	}

	if out.Sum() != uint64(1)<<k {
		panic(newCodecError(errKindScalingInvariant, ErrScalingInvariant,
			fmt.Sprintf("scaled frequencies sum to %d, want %d", out.Sum(), uint64(1)<<k)))
	}
	return out
}
