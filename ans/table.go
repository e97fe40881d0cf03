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
	"fmt"
	"log"

	"golang.org/x/exp/slices"
)

// DecodeEntry is the (symbol, phase) pair a decode slot maps to.
type DecodeEntry struct {
	Symbol byte
	Phase  uint32
}

// StateTable holds the paired encode/decode lookup tables derived from
// a SymbolFrequencies and a construction phase. Encode[s] has length
// Frequencies.Frequencies[s] and holds distinct values in [0, M);
// Decode has length M and is the exact inverse of Encode.
type StateTable struct {
	Frequencies *SymbolFrequencies
	M           uint64
	Encode      [256][]uint32
	Decode      []DecodeEntry

	logger *log.Logger
}

// SetLogger attaches a logger used for construction-time tracing; nil
// disables tracing.
func (t *StateTable) SetLogger(l *log.Logger) { t.logger = l }

func (t *StateTable) logf(format string, args ...any) {
	if t.logger != nil {
		t.logger.Printf(format, args...)
	}
}

func newTable(freqs *SymbolFrequencies) *StateTable {
	m := freqs.Sum()
	t := &StateTable{Frequencies: freqs, M: m}
	for s := range t.Encode {
		if n := freqs.Frequencies[s]; n > 0 {
			t.Encode[s] = make([]uint32, 0, n)
		}
	}
	t.Decode = make([]DecodeEntry, m)
	return t
}

// BuildUniform constructs a StateTable using the Bresenham-style
// uniform interleaving algorithm: a running accumulator per symbol,
// seeded at accumStart, is bumped by that symbol's frequency every
// outer step; whenever it crosses M the symbol receives the next free
// cursor slot. The fixed inner-loop symbol order combined with the
// shared cursor spreads each symbol's slots evenly across [0, M)
// in proportion to its frequency. accumStart tunes the interleaving
// phase without affecting the partition property.
//
// accumStart must be in [0, M). BuildUniform panics if M is zero.
func BuildUniform(freqs *SymbolFrequencies, accumStart uint64) *StateTable {
	m := freqs.Sum()
	if m == 0 {
		panic("ans: BuildUniform: sum of frequencies (M) must be > 0")
	}
	if accumStart >= m {
		panic("ans: BuildUniform: accumStart must be in [0, M)")
	}

	t := newTable(freqs)
	accum := make([]uint64, 256)
	for i := range accum {
		accum[i] = accumStart
	}

	var cursor uint64
	for step := uint64(0); step < m; step++ {
		for s := 0; s < 256; s++ {
			f := uint64(freqs.Frequencies[s])
			if f == 0 {
				continue
			}
			accum[s] += f
			if accum[s] >= m {
				phase := uint32(len(t.Encode[s]))
				t.Encode[s] = append(t.Encode[s], uint32(cursor))
				t.Decode[cursor] = DecodeEntry{Symbol: byte(s), Phase: phase}
				cursor++
				accum[s] -= m
			}
		}
	}

	if cursor != m {
		panic(fmt.Sprintf("ans: BuildUniform: internal error, cursor=%d, M=%d", cursor, m))
	}
	for s := 0; s < 256; s++ {
		if freqs.Frequencies[s] > 0 && accum[s] != accumStart {
			// Mathematically unreachable given the partition invariant
			// above held; per the construction's own design this can
			// only mean a bug in this function.
			t.logf("ans: BuildUniform: accumulator for symbol %d ended at %d, want %d (construction bug)", s, accum[s], accumStart)
		}
	}

	return t
}

// BuildRangeAscending allocates each symbol the contiguous block
// [cursor, cursor+freq) of [0, M), symbols visited in increasing
// order. It satisfies PARTITION and INVERSE but spreads each symbol's
// slots contiguously rather than uniformly, which is worse for
// compression efficiency on skewed alphabets; it exists for the
// table-ordering experiments of cmd/anssweep.
func BuildRangeAscending(freqs *SymbolFrequencies) *StateTable {
	m := freqs.Sum()
	if m == 0 {
		panic("ans: BuildRangeAscending: sum of frequencies (M) must be > 0")
	}
	t := newTable(freqs)
	var cursor uint32
	for s := 0; s < 256; s++ {
		f := freqs.Frequencies[s]
		for p := uint32(0); p < f; p++ {
			t.Encode[s] = append(t.Encode[s], cursor)
			t.Decode[cursor] = DecodeEntry{Symbol: byte(s), Phase: p}
			cursor++
		}
	}
	return t
}

// BuildRangeDescending allocates symbols from the top of [0, M)
// downward, in increasing symbol order, the mirror image of
// BuildRangeAscending.
func BuildRangeDescending(freqs *SymbolFrequencies) *StateTable {
	m := freqs.Sum()
	if m == 0 {
		panic("ans: BuildRangeDescending: sum of frequencies (M) must be > 0")
	}
	t := newTable(freqs)
	cursor := uint32(m)
	for s := 0; s < 256; s++ {
		f := freqs.Frequencies[s]
		cursor -= f
		for p := uint32(0); p < f; p++ {
			slot := cursor + p
			t.Encode[s] = append(t.Encode[s], slot)
			t.Decode[slot] = DecodeEntry{Symbol: byte(s), Phase: p}
		}
	}
	return t
}

// Validate re-checks the PARTITION and INVERSE invariants from
// scratch. It returns a non-nil *CodecError (kind
// ErrScalingInvariant-equivalent) describing the first violation
// found; a nil return means the table is internally consistent. This
// is a diagnostic for tests and tooling, not part of the hot encode
// path.
func (t *StateTable) Validate() error {
	seen := make([]bool, t.M)
	for s := 0; s < 256; s++ {
		f := t.Frequencies.Frequencies[s]
		if uint32(len(t.Encode[s])) != f {
			return newCodecError(errKindScalingInvariant, ErrScalingInvariant,
				fmt.Sprintf("symbol %d: encode table has %d entries, frequency is %d", s, len(t.Encode[s]), f))
		}
		for p, v := range t.Encode[s] {
			if v >= uint32(t.M) {
				return newCodecError(errKindScalingInvariant, ErrScalingInvariant,
					fmt.Sprintf("symbol %d phase %d: jump %d out of range [0, %d)", s, p, v, t.M))
			}
			if seen[v] {
				return newCodecError(errKindScalingInvariant, ErrScalingInvariant,
					fmt.Sprintf("slot %d assigned to more than one (symbol, phase)", v))
			}
			seen[v] = true
			entry := t.Decode[v]
			if entry.Symbol != byte(s) || entry.Phase != uint32(p) {
				return newCodecError(errKindScalingInvariant, ErrScalingInvariant,
					fmt.Sprintf("decode[%d] = (%d, %d), want (%d, %d)", v, entry.Symbol, entry.Phase, s, p))
			}
		}
	}
	for _, ok := range seen {
		if !ok {
			return newCodecError(errKindScalingInvariant, ErrScalingInvariant, "partition does not cover [0, M)")
		}
	}
	return nil
}

// jumpTables returns copies of the non-empty Encode entries in symbol
// order; mutating the returned slices does not affect the table.
func (t *StateTable) jumpTables() []struct {
	Symbol byte
	Jumps  []uint32
} {
	var out []struct {
		Symbol byte
		Jumps  []uint32
	}
	for s := 0; s < 256; s++ {
		if len(t.Encode[s]) == 0 {
			continue
		}
		out = append(out, struct {
			Symbol byte
			Jumps  []uint32
		}{Symbol: byte(s), Jumps: slices.Clone(t.Encode[s])})
	}
	return out
}
