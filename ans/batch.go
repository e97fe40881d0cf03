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
	"math"
	"sync"
)

// MessageCursor enumerates a deterministic, ordered sequence of
// fixed-length byte messages over a small alphabet, used to drive the
// batch encoders below over synthetic workloads (e.g. "every 16-bit
// binary string") without materializing the whole sequence up front.
type MessageCursor struct {
	alphabet []byte
	digits   int
	total    uint64
	next     uint64
}

// BinaryMessages returns a cursor over all 2^n messages of n bits,
// each bit packed into its own output byte (0x00 or 0x01).
func BinaryMessages(n int) *MessageCursor {
	return BaseNMessages([]byte{0, 1}, n)
}

// QuaternaryMessages returns a cursor over all 4^n messages of n
// base-4 digits, each digit packed into its own output byte (0..3).
func QuaternaryMessages(n int) *MessageCursor {
	return BaseNMessages([]byte{0, 1, 2, 3}, n)
}

// BaseNMessages returns a cursor over every digits-length string drawn
// from alphabet, in lexicographic order of alphabet's own ordering.
// It panics if the total message count would overflow uint64.
func BaseNMessages(alphabet []byte, digits int) *MessageCursor {
	base := float64(len(alphabet))
	if digits > 0 && base > 0 && float64(digits)*math.Log2(base) > 63 {
		panic(fmt.Sprintf("ans: BaseNMessages: alphabet size %d ^ digits %d overflows uint64", len(alphabet), digits))
	}
	total := uint64(1)
	for i := 0; i < digits; i++ {
		total *= uint64(len(alphabet))
	}
	return &MessageCursor{alphabet: alphabet, digits: digits, total: total}
}

// Len returns the total number of messages the cursor will produce.
func (c *MessageCursor) Len() uint64 { return c.total }

// Next returns the next message and true, or (nil, false) once
// exhausted. The returned slice is owned by the caller.
func (c *MessageCursor) Next() ([]byte, bool) {
	if c.next >= c.total {
		return nil, false
	}
	msg := indexToMessage(c.alphabet, c.digits, c.next)
	c.next++
	return msg, true
}

// At returns the index'th message directly, without advancing Next.
func (c *MessageCursor) At(index uint64) []byte {
	return indexToMessage(c.alphabet, c.digits, index)
}

func indexToMessage(alphabet []byte, digits int, index uint64) []byte {
	base := uint64(len(alphabet))
	msg := make([]byte, digits)
	for i := digits - 1; i >= 0; i-- {
		msg[i] = alphabet[index%base]
		index /= base
	}
	return msg
}

// ExpectedBitLength returns the information-theoretic expected encoded
// length, in bits, of a message drawn from the distribution described
// by freqs: sum over symbols of count*log2(M/f[s]) for count
// occurrences of a symbol with frequency f[s] in an M-symbol table,
// i.e. -log2(f[s]/M) per occurrence. It is used by cmd/anssweep to
// compare table-construction orderings against their theoretical
// floor, which construction order cannot affect.
func ExpectedBitLength(freqs *SymbolFrequencies, msg []byte) float64 {
	m := float64(freqs.Sum())
	var bits float64
	for _, s := range msg {
		f := float64(freqs.Frequencies[s])
		if f == 0 {
			return math.Inf(1)
		}
		bits += math.Log2(m / f)
	}
	return bits
}

// BatchResult pairs an encoded message with the index it came from,
// for batch encoders that may complete work out of input order.
type BatchResult struct {
	Index   uint64
	Message []byte
	Encoded []byte
	Err     error
}

// EncodeBatchSequential encodes every message the cursor produces, one
// at a time, using codec with the given U/B parameters and
// initialValue. It is the baseline the parallel variants are checked
// against.
func EncodeBatchSequential(codec *StreamingCodec, cursor *MessageCursor, initialValue uint64) []BatchResult {
	results := make([]BatchResult, 0, cursor.total)
	var idx uint64
	for {
		msg, ok := cursor.Next()
		if !ok {
			break
		}
		results = append(results, encodeOne(codec, idx, msg, initialValue))
		idx++
	}
	return results
}

func encodeOne(codec *StreamingCodec, idx uint64, msg []byte, initialValue uint64) (res BatchResult) {
	res = BatchResult{Index: idx, Message: msg}
	defer func() {
		if r := recover(); r != nil {
			res.Err = fmt.Errorf("ans: batch job %d panicked: %v", idx, r)
		}
	}()
	res.Encoded = codec.Encode(msg, initialValue)
	return res
}

// EncodeBatchParallel fans every message out to its own job against a
// worker pool of size workers, all sharing the same immutable codec
// (and therefore StateTable). There is no shared mutable state between
// jobs; a panic in one job is recovered and reported as that job's
// Err without affecting the others. Results are returned in the
// cursor's original order.
func EncodeBatchParallel(codec *StreamingCodec, cursor *MessageCursor, initialValue uint64, workers int) []BatchResult {
	if workers <= 0 {
		workers = 1
	}
	n := cursor.total
	results := make([]BatchResult, n)

	jobs := make(chan uint64)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				msg := cursor.At(idx)
				results[idx] = encodeOne(codec, idx, msg, initialValue)
			}
		}()
	}
	for idx := uint64(0); idx < n; idx++ {
		jobs <- idx
	}
	close(jobs)
	wg.Wait()
	return results
}

// EncodeBatchChunked partitions the cursor's index range into
// workers contiguous chunks, assigning one chunk per goroutine,
// rather than dealing single messages from a shared channel. This
// trades EncodeBatchParallel's finer load balancing for better
// locality when each message is cheap and scheduling overhead would
// otherwise dominate. Semantics (ordering, panic isolation) match
// EncodeBatchParallel exactly.
func EncodeBatchChunked(codec *StreamingCodec, cursor *MessageCursor, initialValue uint64, workers int) []BatchResult {
	if workers <= 0 {
		workers = 1
	}
	n := cursor.total
	results := make([]BatchResult, n)
	if n == 0 {
		return results
	}

	chunk := (n + uint64(workers) - 1) / uint64(workers)
	var wg sync.WaitGroup
	for start := uint64(0); start < n; start += chunk {
		end := start + chunk
		if end > n {
			end = n
		}
		wg.Add(1)
		go func(start, end uint64) {
			defer wg.Done()
			for idx := start; idx < end; idx++ {
				msg := cursor.At(idx)
				results[idx] = encodeOne(codec, idx, msg, initialValue)
			}
		}(start, end)
	}
	wg.Wait()
	return results
}
