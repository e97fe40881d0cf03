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

func TestMessageCursorEnumeratesInOrder(t *testing.T) {
	cursor := BinaryMessages(3)
	if cursor.Len() != 8 {
		t.Fatalf("Len() = %d, want 8", cursor.Len())
	}
	var got [][]byte
	for {
		msg, ok := cursor.Next()
		if !ok {
			break
		}
		got = append(got, msg)
	}
	want := [][]byte{
		{0, 0, 0}, {0, 0, 1}, {0, 1, 0}, {0, 1, 1},
		{1, 0, 0}, {1, 0, 1}, {1, 1, 0}, {1, 1, 1},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d messages, want %d", len(got), len(want))
	}
	for i := range want {
		if !bytes.Equal(got[i], want[i]) {
			t.Fatalf("message %d: got %v, want %v", i, got[i], want[i])
		}
	}
}

func TestMessageCursorAtMatchesNext(t *testing.T) {
	cursor := QuaternaryMessages(5)
	var i uint64
	for {
		msg, ok := cursor.Next()
		if !ok {
			break
		}
		if got := cursor.At(i); !bytes.Equal(got, msg) {
			t.Fatalf("At(%d) = %v, want %v", i, got, msg)
		}
		i++
	}
}

func TestExpectedBitLengthIsInfiniteForImpossibleSymbol(t *testing.T) {
	freqs := New()
	freqs.Frequencies['a'] = 10
	bits := ExpectedBitLength(freqs, []byte("ab"))
	if !math.IsInf(bits, 1) {
		t.Fatalf("expected +Inf for a message containing a zero-frequency symbol, got %v", bits)
	}
}

func batchSetup(t *testing.T) (*StreamingCodec, *MessageCursor) {
	t.Helper()
	freqs := New()
	freqs.Frequencies[0], freqs.Frequencies[1], freqs.Frequencies[2], freqs.Frequencies[3] = 1, 2, 4, 8
	table := BuildUniform(freqs, freqs.Sum()/2)
	codec, err := NewStreamingCodec(table, 16, 2)
	if err != nil {
		t.Fatalf("NewStreamingCodec: %v", err)
	}
	return codec, QuaternaryMessages(6)
}

func TestEncodeBatchVariantsAgree(t *testing.T) {
	codec, cursor := batchSetup(t)
	seq := EncodeBatchSequential(codec, cursor, 1)

	parallel := EncodeBatchParallel(codec, QuaternaryMessages(6), 1, 4)
	chunked := EncodeBatchChunked(codec, QuaternaryMessages(6), 1, 4)

	if len(seq) != len(parallel) || len(seq) != len(chunked) {
		t.Fatalf("length mismatch: seq=%d parallel=%d chunked=%d", len(seq), len(parallel), len(chunked))
	}
	for i := range seq {
		if seq[i].Err != nil || parallel[i].Err != nil || chunked[i].Err != nil {
			t.Fatalf("job %d: errors seq=%v parallel=%v chunked=%v", i, seq[i].Err, parallel[i].Err, chunked[i].Err)
		}
		if !bytes.Equal(seq[i].Encoded, parallel[i].Encoded) {
			t.Fatalf("job %d: sequential and parallel encodings differ", i)
		}
		if !bytes.Equal(seq[i].Encoded, chunked[i].Encoded) {
			t.Fatalf("job %d: sequential and chunked encodings differ", i)
		}
	}
}

func TestEncodeBatchParallelIsolatesPanics(t *testing.T) {
	codec, _ := batchSetup(t)
	cursor := BaseNMessages([]byte{0, 1, 2, 3, 9}, 1) // symbol 9 has zero frequency
	results := EncodeBatchParallel(codec, cursor, 1, 2)

	var sawErr, sawOK bool
	for _, r := range results {
		if r.Err != nil {
			sawErr = true
		} else {
			sawOK = true
		}
	}
	if !sawErr {
		t.Fatal("expected at least one job to fail on the zero-frequency symbol")
	}
	if !sawOK {
		t.Fatal("expected the remaining jobs to still succeed")
	}
}
