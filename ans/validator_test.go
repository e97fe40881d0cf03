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
	"errors"
	"testing"
)

func TestNewStreamingCodecRejectsOverflowingParams(t *testing.T) {
	freqs := New()
	freqs.Frequencies[0] = 1
	freqs.Frequencies[1] = 1<<20 - 1 // M = 2^20, minimum frequency is 1
	table := BuildUniform(freqs, 0)

	_, err := NewStreamingCodec(table, 32, 16)
	if err == nil {
		t.Fatal("expected an error for parameters that overflow the state register")
	}
	var ce *CodecError
	if !errors.As(err, &ce) || !errors.Is(ce, ErrParametersOverflow) {
		t.Fatalf("expected ErrParametersOverflow, got %v", err)
	}
}

func TestNewStreamingCodecAcceptsSaneParams(t *testing.T) {
	table := BuildUniform(skewedFreqs(), 0)
	if _, err := NewStreamingCodec(table, 16, 2); err != nil {
		t.Fatalf("expected sane parameters to validate, got %v", err)
	}
}
