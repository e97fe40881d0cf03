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

import "fmt"

// StatelessCodec is the single-symbol ANS transform bound to one
// StateTable. Step and Unstep are exact inverses of each other: for
// any x >= 0 and symbol s with Frequencies[s] > 0,
// Unstep(Step(x, s)) == (s, x).
type StatelessCodec struct {
	table *StateTable
}

// NewStatelessCodec binds a StatelessCodec to table.
func NewStatelessCodec(table *StateTable) *StatelessCodec {
	return &StatelessCodec{table: table}
}

// Table returns the bound StateTable.
func (c *StatelessCodec) Table() *StateTable { return c.table }

// Step advances state x by encoding symbol s, returning the new state
// x'. It panics with ErrSymbolNotInAlphabet if s has zero frequency in
// the bound table.
//
//	q, r := x / f[s], x % f[s]
//	x' = q*M + encode[s][r]
func (c *StatelessCodec) Step(x uint64, s byte) uint64 {
	t := c.table
	f := uint64(t.Frequencies.Frequencies[s])
	if f == 0 {
		panic(newCodecError(errKindSymbolNotInAlphabet, ErrSymbolNotInAlphabet,
			fmt.Sprintf("symbol %d has zero frequency", s)))
	}
	q, r := x/f, x%f
	jump := uint64(t.Encode[s][r])
	return q*t.M + jump
}

// Unstep reverses Step: given a state x' produced by some prior Step,
// it recovers the symbol that was encoded and the state x that
// preceded it.
//
//	slot := x' % M
//	(s, phase) := decode[slot]
//	x = (x' / M) * f[s] + phase
func (c *StatelessCodec) Unstep(xPrime uint64) (s byte, x uint64) {
	t := c.table
	q, slot := xPrime/t.M, xPrime%t.M
	entry := t.Decode[slot]
	f := uint64(t.Frequencies.Frequencies[entry.Symbol])
	x = q*f + uint64(entry.Phase)
	return entry.Symbol, x
}

// Step32 and Unstep32 are 32-bit-state variants of Step/Unstep, for
// callers that have already bounded x to fit comfortably in 32 bits
// and want to avoid 64-bit division on platforms where it's markedly
// slower. The streaming codec does not use them; it calls Step and
// Unstep. The table's M must itself fit in 32 bits; these functions
// do not check it.
func (c *StatelessCodec) Step32(x uint32, s byte) uint32 {
	t := c.table
	f := t.Frequencies.Frequencies[s]
	if f == 0 {
		panic(newCodecError(errKindSymbolNotInAlphabet, ErrSymbolNotInAlphabet,
			fmt.Sprintf("symbol %d has zero frequency", s)))
	}
	q, r := x/f, x%f
	jump := t.Encode[s][r]
	return q*uint32(t.M) + jump
}

func (c *StatelessCodec) Unstep32(xPrime uint32) (s byte, x uint32) {
	t := c.table
	m32 := uint32(t.M)
	q, slot := xPrime/m32, xPrime%m32
	entry := t.Decode[slot]
	f := t.Frequencies.Frequencies[entry.Symbol]
	x = q*f + entry.Phase
	return entry.Symbol, x
}
