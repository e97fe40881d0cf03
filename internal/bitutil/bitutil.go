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

// Package bitutil provides small bit-width and power-of-two helpers
// shared by the frequency-scaling and streaming-parameter-validation
// code in package ans.
package bitutil

import "golang.org/x/exp/constraints"

// IsPowerOfTwo reports whether v is a strictly positive power of two.
func IsPowerOfTwo[T constraints.Unsigned](v T) bool {
	return v != 0 && (v&(v-1)) == 0
}

// BitWidth returns the number of bits needed to represent v, i.e. the
// smallest n such that v < 1<<n. BitWidth(0) is 0.
func BitWidth[T constraints.Unsigned](v T) int {
	n := 0
	for v != 0 {
		n++
		v >>= 1
	}
	return n
}

// CeilLog2 returns the smallest k such that 1<<k >= v. CeilLog2(0) and
// CeilLog2(1) are both 0.
func CeilLog2[T constraints.Unsigned](v T) int {
	if v <= 1 {
		return 0
	}
	return BitWidth(v - 1)
}

// NextPowerOfTwo returns the smallest power of two that is >= v. It
// panics if that value would overflow T.
func NextPowerOfTwo[T constraints.Unsigned](v T) T {
	if v <= 1 {
		return 1
	}
	k := CeilLog2(v)
	r := T(1) << uint(k)
	if r < v {
		panic("bitutil: NextPowerOfTwo overflow")
	}
	return r
}
