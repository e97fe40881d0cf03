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

package ans

import (
	"encoding/binary"
	"log"

	"golang.org/x/exp/slices"
)

// finalStateWidth is the fixed number of bytes Encode appends to carry
// the final state: wide enough to hold any HiCap this package allows
// (U+16B<=64, so HiCap never exceeds 64 bits).
const finalStateWidth = 8

// StreamingCodec encodes and decodes a byte stream into a bounded-state
// ANS stream: the running state x is kept in [1, 2^HiCap) by spilling
// a B-byte quantum to a side byte stream whenever x would otherwise
// grow past that window, and the reverse operation refills those
// bytes from the spill stream on decode. B is a byte count
// (bytes_to_stream); the bit width of one quantum is S = 8*B, and
// HiCap = U+S, never U+B.
//
// Because ANS composes symbols LIFO (Step pushes, Unstep pops in
// reverse), Encode consumes its input in reverse order and Decode
// produces its output in forward order, matching the order the bytes
// were originally read.
type StreamingCodec struct {
	codec  *StatelessCodec
	params StreamingParams

	logger *log.Logger
}

// NewStreamingCodec validates (U, B) against table and returns a ready
// StreamingCodec, or an error (wrapping ErrParametersOverflow) if the
// combination can overflow the codec's internal state register. B is
// a byte count, not a bit count. Neither M nor U nor B needs to be a
// power of two.
func NewStreamingCodec(table *StateTable, u, b uint) (*StreamingCodec, error) {
	params := StreamingParams{U: u, B: b, M: table.M}
	if err := validateStreamingParams(table, params, table.logger); err != nil {
		return nil, err
	}

	return &StreamingCodec{codec: NewStatelessCodec(table), params: params}, nil
}

// SetLogger attaches a logger used to trace spill/refill events.
func (c *StreamingCodec) SetLogger(l *log.Logger) { c.logger = l }

func (c *StreamingCodec) loOut() uint64 { return uint64(1) << c.params.U }
func (c *StreamingCodec) hiOut() uint64 { return uint64(1) << c.params.HiCap() }

// xMax returns the largest x that Step(x, s) is allowed to be called
// with: the tightest bound such that the result is still < hiOut().
// Derivation: let q = floor((hi-M)/M). If x <= (q+1)*f - 1, then
// x/f <= q, so (x/f)*M <= q*M <= hi-M, and the jump term added by Step
// is always < M, so the sum is < hi.
func (c *StreamingCodec) xMax(f uint64) uint64 {
	hi := c.hiOut()
	q := (hi - c.params.M) / c.params.M
	return (q+1)*f - 1
}

// Encode runs the stateless codec over src in reverse order, starting
// from initialValue, spilling B-byte quanta to keep x bounded, and
// returns the spill stream with the final state appended as a fixed,
// finalStateWidth-byte little-endian suffix.
//
// initialValue must be in [1, hiOut()) per the caller's choice of
// starting phase; NewStreamingCodec does not constrain it further.
func (c *StreamingCodec) Encode(src []byte, initialValue uint64) []byte {
	var out []byte
	x := initialValue

	for i := len(src) - 1; i >= 0; i-- {
		s := src[i]
		f := uint64(c.codec.table.Frequencies.Frequencies[s])
		xMax := c.xMax(f)
		for x > xMax {
			out = c.spill(out, x)
			x >>= c.params.S()
			c.logf("ans: encode: spilled quantum, x now %d", x)
		}
		x = c.codec.Step(x, s)
	}

	out = slices.Grow(out, finalStateWidth)
	return appendFinalState(out, x)
}

// EncodeToSink behaves like Encode but writes each spilled byte to
// sink instead of accumulating them in memory, for callers streaming
// output directly to an io.Writer-backed sink. The final state is
// delivered as the function's first return value rather than
// appended, since sink has already seen every byte that precedes it
// in decode order.
func (c *StreamingCodec) EncodeToSink(src []byte, sink func(byte) error, initialValue uint64) (uint64, error) {
	x := initialValue

	for i := len(src) - 1; i >= 0; i-- {
		s := src[i]
		f := uint64(c.codec.table.Frequencies.Frequencies[s])
		xMax := c.xMax(f)
		for x > xMax {
			if err := c.spillToSink(sink, x); err != nil {
				return 0, err
			}
			x >>= c.params.S()
		}
		x = c.codec.Step(x, s)
	}
	return x, nil
}

// spill appends one B-byte quantum of x's low bits to out, least
// significant byte first.
func (c *StreamingCodec) spill(out []byte, x uint64) []byte {
	for i := uint(0); i < c.params.B; i++ {
		out = append(out, byte(x))
		x >>= 8
	}
	return out
}

func (c *StreamingCodec) spillToSink(sink func(byte) error, x uint64) error {
	for i := uint(0); i < c.params.B; i++ {
		if err := sink(byte(x)); err != nil {
			return err
		}
		x >>= 8
	}
	return nil
}

func appendFinalState(out []byte, x uint64) []byte {
	var buf [finalStateWidth]byte
	binary.LittleEndian.PutUint64(buf[:], x)
	return append(out, buf[:]...)
}

// Decode is the exact inverse of Encode: given the byte stream Encode
// produced and the eosMarker state Encode started from (initialValue),
// it refills x from the tail of data, peels symbols off with Unstep
// until x returns to eosMarker, and returns the recovered bytes in
// their original forward order.
//
// finalStateLen is the number of trailing bytes Encode appended to
// hold the final state; it must match what the caller knows was
// written (typically a fixed width baked into the container format
// around this codec, see cmd/anscodec).
func (c *StreamingCodec) Decode(data []byte, finalStateLen int, eosMarker uint64) ([]byte, error) {
	if finalStateLen > len(data) {
		return nil, newCodecError(errKindEOSMissing, ErrEOSMissing, "encoded stream shorter than final-state suffix")
	}
	spillEnd := len(data) - finalStateLen
	var x uint64
	for i := finalStateLen - 1; i >= 0; i-- {
		x = (x << 8) | uint64(data[spillEnd+i])
	}

	pos := spillEnd
	lo := c.loOut()
	var out []byte

	for x != eosMarker {
		if pos == 0 && x < eosMarker {
			return nil, newCodecError(errKindEOSMissing, ErrEOSMissing, "spill stream exhausted before reaching the end-of-stream state")
		}
		symbol, xNext := c.codec.Unstep(x)
		out = append(out, symbol)
		x = xNext
		for x < lo && pos > 0 {
			// Mirrors spill byte for byte: spill shifts x right by 8
			// and emits the freed byte B times; refill consumes up to
			// B bytes from the tail and shifts them back in left-first,
			// reconstructing the same quantum it undoes.
			for i := uint(0); i < c.params.B && pos > 0; i++ {
				pos--
				x = (x << 8) | uint64(data[pos])
			}
			c.logf("ans: decode: refilled quantum, x now %d", x)
		}
	}

	return out, nil
}

func (c *StreamingCodec) logf(format string, args ...any) {
	if c.logger != nil {
		c.logger.Printf(format, args...)
	}
}
