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

	"github.com/ansu-project/ansu/internal/bitutil"
)

// StreamingParams bundles the two knobs a streaming codec is
// configured with: U, the renormalization underflow width in bits,
// and B, the number of bytes spilled or refilled in one quantum
// (bytes_to_stream, not bits). The quantum's bit width S = 8*B and
// the codec's state ceiling HI_CAP = U+S are derived from these on
// every use rather than stored, so there is no second field that can
// drift out of the byte/bit unit the caller passed B in.
type StreamingParams struct {
	U uint
	B uint
	M uint64
}

// S is the bit width of one spill/refill quantum.
func (p StreamingParams) S() uint { return 8 * p.B }

// HiCap is the bit width of the state register this parameter pair
// allows: x is kept in [1, 2^HiCap) by the streaming codec.
func (p StreamingParams) HiCap() uint { return p.U + p.S() }

// validateStreamingParams checks a (U, B) pair against a concrete
// table before a StreamingCodec is built from it.
//
// Two checks are structural, from the parameter pair alone: U must
// hold at least one whole quantum (U >= 8B), and U plus a second
// quantum of headroom must fit the 64-bit state register
// (U + 16B <= 64). A third confirms M itself fits the 32 bits a
// table sum is allowed.
//
// The remaining two are per-symbol, from the table. A spill quantum
// that can't cover M/freq[s] in one step is only logged: it costs
// compression, not correctness, since the renormalization loop in
// Encode sheds quanta until the symbol's threshold is satisfied
// regardless of how many that takes. A state register that can't
// hold the rarest symbol's worst-case post-step value is fatal,
// returned as ErrParametersOverflow: no amount of renormalization
// fixes that, since it means the symbol alone can force x past
// 2^HI_CAP in a single Step.
func validateStreamingParams(table *StateTable, p StreamingParams, logger *log.Logger) error {
	s := p.S()
	hiCap := p.HiCap()

	if p.U < s {
		return newCodecError(errKindParametersOverflow, ErrParametersOverflow,
			fmt.Sprintf("U=%d must be at least one spill quantum (8*B=%d)", p.U, s))
	}
	if p.U+2*s > 64 {
		return newCodecError(errKindParametersOverflow, ErrParametersOverflow,
			fmt.Sprintf("U=%d and B=%d leave no headroom: U+16B=%d exceeds the 64-bit state register", p.U, p.B, p.U+2*s))
	}
	if bitutil.BitWidth(p.M) > 32 {
		return newCodecError(errKindParametersOverflow, ErrParametersOverflow,
			fmt.Sprintf("M=%d needs %d bits, more than the 32 a table sum is allowed", p.M, bitutil.BitWidth(p.M)))
	}

	// Largest x a step sees right after Encode has shed a quantum: any
	// x below 2^HI_CAP shifted right by S fits in U bits. Steps taken
	// without shedding can see a larger x, up to Encode's per-symbol
	// threshold, which already keeps their result below 2^HI_CAP.
	xMaxIn := uint64(1)<<p.U - 1

	for sym, freq := range table.Frequencies.Frequencies {
		if freq == 0 {
			continue
		}
		if p.M > uint64(freq)<<s {
			logf(logger, "ans: validator: symbol %d (freq %d) needs more than one spill quantum to cover M=%d; compression suboptimal but not unsafe", sym, freq, p.M)
		}

		enc := table.Encode[sym]
		last := uint64(enc[len(enc)-1])
		xMaxOut := (xMaxIn/uint64(freq))*p.M + last
		if bitutil.BitWidth(xMaxOut) > int(hiCap) {
			return newCodecError(errKindParametersOverflow, ErrParametersOverflow,
				fmt.Sprintf("x_max_out=%d exceeds 2^%d (HI_CAP) for symbol %d, U=%d B=%d M=%d freq=%d", xMaxOut, hiCap, sym, p.U, p.B, p.M, freq))
		}
	}
	return nil
}

func logf(l *log.Logger, format string, args ...any) {
	if l != nil {
		l.Printf(format, args...)
	}
}
