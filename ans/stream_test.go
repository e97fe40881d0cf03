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
	"bytes"
	"math"
	"testing"
)

const finalStateLen = 8

func roundTrip(t *testing.T, table *StateTable, u, b uint, iv uint64, msg []byte) {
	t.Helper()
	codec, err := NewStreamingCodec(table, u, b)
	if err != nil {
		t.Fatalf("NewStreamingCodec: %v", err)
	}
	encoded := codec.Encode(msg, iv)
	decoded, err := codec.Decode(encoded, finalStateLen, iv)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !bytes.Equal(decoded, msg) {
		t.Fatalf("round trip mismatch: got %v, want %v", decoded, msg)
	}
}

// Scenario 1: freqs [0]=3 [1]=1, every 4-bit binary word round-trips.
func TestScenarioBinaryWords(t *testing.T) {
	freqs := New()
	freqs.Frequencies[0] = 3
	freqs.Frequencies[1] = 1
	table := BuildUniform(freqs, freqs.Sum()/2)

	cursor := BinaryMessages(4)
	for {
		msg, ok := cursor.Next()
		if !ok {
			break
		}
		roundTrip(t, table, 16, 2, 1, msg)
	}
}

// Scenario 2: freqs [0]=1 [1]=2 [2]=4 [3]=8, all 4^10 base-4 messages
// round-trip. This is exhaustive in principle; we sample it here to
// keep the test suite fast and rely on FuzzStepRoundTrip/FuzzTableRoundTrip
// for broader coverage.
func TestScenarioQuaternaryMessagesSample(t *testing.T) {
	freqs := New()
	freqs.Frequencies[0], freqs.Frequencies[1], freqs.Frequencies[2], freqs.Frequencies[3] = 1, 2, 4, 8
	table := BuildUniform(freqs, freqs.Sum()/2)

	cursor := QuaternaryMessages(10)
	for _, idx := range []uint64{0, 1, cursor.Len() / 2, cursor.Len() - 1} {
		roundTrip(t, table, 16, 2, 1, cursor.At(idx))
	}
}

// Scenario 3: freqs [0]=1 [1]=3, messages [0,0] and [1,1].
func TestScenarioUnitMessages(t *testing.T) {
	freqs := New()
	freqs.Frequencies[0] = 1
	freqs.Frequencies[1] = 3
	table := BuildUniform(freqs, freqs.Sum()/2)

	roundTrip(t, table, 16, 2, 1, []byte{0, 0})
	roundTrip(t, table, 16, 2, 1, []byte{1, 1})
}

// Scenario 4: scaled+filled histogram, ASCII message, three (U,B) pairs.
func TestScenarioScaledHistogramAcrossParams(t *testing.T) {
	msg := []byte("what is a man, but a miserable pile of secrets?")
	raw := New()
	h := Histogram(msg)
	raw.Frequencies = h
	filled := FillMissingWithOne(raw)
	scaled := ScaleToPowerOfTwo(filled, 16)
	table := BuildUniform(scaled, scaled.Sum()/2)

	for _, params := range [][2]uint{{16, 2}, {24, 2}, {32, 2}} {
		roundTrip(t, table, params[0], params[1], 1, msg)
	}
}

// Scenario 5: a table builds for every accum_start in [0, 15), and the
// sample message's expected bit length is finite and positive.
// ExpectedBitLength depends only on the frequencies, so the value is
// the same for every phase.
func TestScenarioAccumStartSweepExpectedBitLength(t *testing.T) {
	freqs := New()
	freqs.Frequencies[0], freqs.Frequencies[1], freqs.Frequencies[2], freqs.Frequencies[3] = 1, 2, 4, 8
	cursor := QuaternaryMessages(10)
	sample := cursor.At(cursor.Len() / 3)

	for accumStart := uint64(0); accumStart < freqs.Sum(); accumStart++ {
		_ = BuildUniform(freqs, accumStart) // construction must not panic for any phase
		bits := ExpectedBitLength(freqs, sample)
		if math.IsInf(bits, 0) || math.IsNaN(bits) || bits <= 0 {
			t.Fatalf("accumStart=%d: expected bit length %v is not finite and positive", accumStart, bits)
		}
	}
}

// Scenario 6: two different constructions of the same frequencies
// both satisfy the round-trip property independently, and both
// decode-of-encode to the same message even though their encoded
// bytes differ.
func TestScenarioTwoConstructionsBothRoundTrip(t *testing.T) {
	freqs := skewedFreqs()
	uniform := BuildUniform(freqs, freqs.Sum()/2)
	ascending := BuildRangeAscending(freqs)

	msg := []byte("abcdabcdabcd")
	roundTrip(t, uniform, 16, 2, 1, msg)
	roundTrip(t, ascending, 16, 2, 1, msg)

	uc, _ := NewStreamingCodec(uniform, 16, 2)
	ac, _ := NewStreamingCodec(ascending, 16, 2)
	uEnc := uc.Encode(msg, 1)
	aEnc := ac.Encode(msg, 1)
	if bytes.Equal(uEnc, aEnc) {
		t.Fatal("expected different encodings from different table constructions")
	}
}

func FuzzStreamRoundTrip(f *testing.F) {
	f.Add([]byte("hello world"))
	freqs := FillMissingWithOne(New())
	scaled := ScaleToPowerOfTwo(freqs, 9)
	table := BuildUniform(scaled, scaled.Sum()/2)
	codec, err := NewStreamingCodec(table, 16, 2)
	if err != nil {
		f.Fatalf("NewStreamingCodec: %v", err)
	}

	f.Fuzz(func(t *testing.T, msg []byte) {
		encoded := codec.Encode(msg, 1)
		decoded, err := codec.Decode(encoded, finalStateLen, 1)
		if err != nil {
			t.Fatalf("decode: %v", err)
		}
		if !bytes.Equal(decoded, msg) {
			t.Fatalf("round trip mismatch for %v: got %v", msg, decoded)
		}
	})
}
