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

import "errors"

// errorKind classifies the failure taxonomy of the codec. A symbol
// outside the alphabet (ErrSymbolNotInAlphabet) and a numerical
// invariant violation during scaling (ErrScalingInvariant) indicate a
// programming or implementation bug and are raised as panics carrying
// a *CodecError. ErrParametersOverflow is returned by
// NewStreamingCodec, ErrEOSMissing by Decode, and StateTable.Validate
// returns ErrScalingInvariant; all three as *CodecError values.
type errorKind int

const (
	errKindSymbolNotInAlphabet errorKind = iota
	errKindParametersOverflow
	errKindEOSMissing
	errKindScalingInvariant
)

// Sentinel errors for errors.Is. ErrEOSMissing is the only one callers
// should expect to observe via a returned error from Decode, and
// ErrParametersOverflow via a returned error from NewStreamingCodec;
// ErrSymbolNotInAlphabet and ErrScalingInvariant are carried by panics
// raised from Step and ScaleToPowerOfTwo respectively.
var (
	ErrSymbolNotInAlphabet = errors.New("ans: symbol not in alphabet")
	ErrParametersOverflow  = errors.New("ans: streaming parameters overflow for this table")
	ErrEOSMissing          = errors.New("ans: decode stream exhausted before reaching the end-of-stream marker")
	ErrScalingInvariant    = errors.New("ans: internal invariant violated")
)

// CodecError wraps one of the sentinel errors above with additional
// context. It supports errors.Is/errors.As against the Err field.
type CodecError struct {
	Kind errorKind
	Err  error
	Msg  string
}

func (e *CodecError) Error() string {
	if e.Msg == "" {
		return e.Err.Error()
	}
	return e.Err.Error() + ": " + e.Msg
}

func (e *CodecError) Unwrap() error { return e.Err }

func newCodecError(kind errorKind, sentinel error, msg string) *CodecError {
	return &CodecError{Kind: kind, Err: sentinel, Msg: msg}
}
