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

package fingerprint

import "testing"

func TestDigestIsDeterministic(t *testing.T) {
	data := []byte("a frequency table's worth of bytes")
	if Digest(data) != Digest(data) {
		t.Fatal("Digest is not deterministic")
	}
}

func TestDigestDistinguishesInputs(t *testing.T) {
	a := []byte("table one")
	b := []byte("table two")
	if Digest(a) == Digest(b) {
		t.Fatal("different inputs produced the same digest")
	}
}

func TestVerify(t *testing.T) {
	data := []byte("some table bytes")
	want := Digest(data)
	if !Verify(data, want) {
		t.Fatal("Verify rejected a matching digest")
	}
	if Verify(data, want+1) {
		t.Fatal("Verify accepted a mismatching digest")
	}
}
