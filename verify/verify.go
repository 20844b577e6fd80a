// Copyright 2026 The AXIS Harness authors. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package verify compares received cipher blocks against golden vectors.
//
// The byte order of the core output relative to the transfer buffer is not
// known, expected results are therefore sets of candidate blocks and every
// comparison reports which candidate, if any, matched. A mismatch is an
// ordinary outcome and never an error.
package verify

import (
	"errors"
	"fmt"

	"github.com/axis-aes/harness/block"
)

// ErrShape is returned when the expected sequence cannot be paired with the
// received blocks.
var ErrShape = errors.New("expected sets do not match block count")

// Candidate is a named expected output.
type Candidate struct {
	Name  string
	Block block.Block
}

// ExpectedSet is an ordered list of acceptable outputs for one block.
type ExpectedSet []Candidate

// Candidate names used by WithReversal.
const (
	Original = "original"
	Reversed = "reversed"
)

// WithReversal returns the set {b, reverse(b)}.
func WithReversal(b block.Block) ExpectedSet {
	return ExpectedSet{
		{Name: Original, Block: b},
		{Name: Reversed, Block: b.Reverse()},
	}
}

// Exactly returns a single candidate set.
func Exactly(name string, b block.Block) ExpectedSet {
	return ExpectedSet{{Name: name, Block: b}}
}

// Match is the outcome of a single block comparison.
type Match struct {
	Pass bool
	// Index of the first matching candidate, -1 when none matched.
	Index int
	// Candidate is the name of the matching candidate.
	Candidate string
}

func (m Match) String() string {
	if !m.Pass {
		return "FAIL"
	}
	return fmt.Sprintf("PASS (%s)", m.Candidate)
}

// Compare checks got against every candidate of set.
func Compare(got block.Block, set ExpectedSet) Match {
	for i, c := range set {
		if got == c.Block {
			return Match{Pass: true, Index: i, Candidate: c.Name}
		}
	}

	return Match{Index: -1}
}

// Row is the comparison of a single transferred block.
type Row struct {
	Index    int
	Input    block.Block
	Received block.Block
	Expected ExpectedSet
	Match    Match
}

// Result is the per-block comparison of a round trip.
type Result struct {
	Rows   []Row
	Passed int
	Failed int
}

// Pass reports whether every block matched.
func (r Result) Pass() bool {
	return len(r.Rows) > 0 && r.Failed == 0
}

// Matched returns the candidate names which matched across all rows, in
// first seen order.
func (r Result) Matched() (names []string) {
	seen := make(map[string]bool)

	for _, row := range r.Rows {
		if row.Match.Pass && !seen[row.Match.Candidate] {
			seen[row.Match.Candidate] = true
			names = append(names, row.Match.Candidate)
		}
	}

	return
}

// Table compares each received block. A single expected set applies to all
// blocks, otherwise expected must hold one set per block.
func Table(inputs, received []block.Block, expected []ExpectedSet) (r Result, err error) {
	if len(inputs) != len(received) {
		return r, fmt.Errorf("%d inputs, %d received, %w", len(inputs), len(received), ErrShape)
	}

	if len(expected) != 1 && len(expected) != len(received) {
		return r, fmt.Errorf("%d expected sets for %d blocks, %w", len(expected), len(received), ErrShape)
	}

	for i, got := range received {
		set := expected[0]

		if len(expected) > 1 {
			set = expected[i]
		}

		row := Row{
			Index:    i,
			Input:    inputs[i],
			Received: got,
			Expected: set,
			Match:    Compare(got, set),
		}

		if row.Match.Pass {
			r.Passed++
		} else {
			r.Failed++
		}

		r.Rows = append(r.Rows, row)
	}

	return
}
