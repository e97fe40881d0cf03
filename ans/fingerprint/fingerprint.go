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

// Package fingerprint computes a short integrity digest over a
// serialized frequency table or encode table, so a decoder can cheaply
// confirm it was handed the same table the encoder used before
// trusting its output.
package fingerprint

import (
	"encoding/binary"

	"github.com/dchest/siphash"
)

// key is a fixed, public SipHash key. The digest is an integrity
// check against accidental table mismatch, not a keyed MAC against a
// malicious sender, so a well-known key is correct: every ansu build
// must compute the same digest for the same bytes.
var key0, key1 = binary.LittleEndian.Uint64([]byte("ansu-fp0")), binary.LittleEndian.Uint64([]byte("ansu-fp1"))

// Digest returns the SipHash-2-4 digest of table's serialized bytes
// (as produced by ans.SymbolFrequencies.WriteBinary, or any other
// byte-exact table encoding the caller wants to pin).
func Digest(table []byte) uint64 {
	return siphash.Hash(key0, key1, table)
}

// Verify reports whether table's digest matches want.
func Verify(table []byte, want uint64) bool {
	return Digest(table) == want
}
