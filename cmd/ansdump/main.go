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

// Command ansdump loads a frequency table, builds a StateTable from
// it, validates the result, and prints the encode table for
// inspection. It is a debugging aid for table-construction changes,
// not something a production pipeline would shell out to.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/ansu-project/ansu/ans"
	"github.com/ansu-project/ansu/ans/fingerprint"
)

func main() {
	var (
		ordering = flag.String("order", "uniform", "table construction ordering: uniform, range-ascending, range-descending")
	)
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: ansdump [flags] <frequency-file>\n\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	f, err := os.Open(flag.Arg(0))
	if err != nil {
		fatal("open %s: %v", flag.Arg(0), err)
	}
	defer f.Close()

	freqs, err := ans.ParseBinary(f)
	if err != nil {
		fatal("parse frequency table: %v", err)
	}

	var table *ans.StateTable
	switch *ordering {
	case "uniform":
		table = ans.BuildUniform(freqs, freqs.Sum()/2)
	case "range-ascending":
		table = ans.BuildRangeAscending(freqs)
	case "range-descending":
		table = ans.BuildRangeDescending(freqs)
	default:
		fatal("unknown ordering %q", *ordering)
	}

	if err := table.Validate(); err != nil {
		fatal("table failed validation: %v", err)
	}

	digest := fingerprint.Digest(serialize(freqs))

	fmt.Printf("M=%d  symbols=%d  fingerprint=%016x\n", table.M, freqs.NonZeroCount(), digest)
	for s := 0; s < 256; s++ {
		if len(table.Encode[s]) == 0 {
			continue
		}
		fmt.Printf("symbol %3d (freq %6d): %v\n", s, freqs.Frequencies[s], table.Encode[s])
	}
}

func serialize(freqs *ans.SymbolFrequencies) []byte {
	var sw sliceWriter
	_ = freqs.WriteBinary(&sw)
	return sw.buf
}

type sliceWriter struct{ buf []byte }

func (w *sliceWriter) Write(p []byte) (int, error) {
	w.buf = append(w.buf, p...)
	return len(p), nil
}

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "ansdump: "+format+"\n", args...)
	os.Exit(1)
}
