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

// Package report renders scenario results for the console and encodes them
// for later analysis.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/axis-aes/harness/scenario"
	"github.com/axis-aes/harness/verify"
)

// WriteResult renders a single scenario result, one section per block.
func WriteResult(w io.Writer, r *scenario.Result) error {
	var sb strings.Builder

	fmt.Fprintf(&sb, "\n--- %s ---\n", r.Name)

	if r.Err != nil {
		fmt.Fprintf(&sb, "Result  : [%s] at %s: %v\n", r.Outcome, r.Step, r.Err)
		_, err := io.WriteString(w, sb.String())
		return err
	}

	shared := len(r.Expected) == 1

	if shared {
		writeSet(&sb, "", r.Expected[0])
	}

	for _, row := range r.Table.Rows {
		fmt.Fprintf(&sb, "Block %d:\n", row.Index)
		fmt.Fprintf(&sb, "  Input   : %s\n", row.Input)
		fmt.Fprintf(&sb, "  Received: %s\n", row.Received)

		if !shared {
			writeSet(&sb, "  ", row.Expected)
		}

		fmt.Fprintf(&sb, "  Result  : [%s]%s\n", status(row.Match), using(row.Match))
	}

	fmt.Fprintf(&sb, "RESULT: %s (%d/%d blocks matched", r.Outcome, r.Table.Passed, len(r.Table.Rows))

	if s := r.Session; s != nil {
		fmt.Fprintf(&sb, ", %d bytes in %v", s.Length, s.Elapsed)
	}

	sb.WriteString(")\n")

	_, err := io.WriteString(w, sb.String())

	return err
}

func writeSet(sb *strings.Builder, indent string, set verify.ExpectedSet) {
	for _, c := range set {
		fmt.Fprintf(sb, "%sExpected (%s) : %s\n", indent, c.Name, c.Block)
	}
}

func status(m verify.Match) string {
	if m.Pass {
		return "PASS"
	}
	return "FAIL"
}

func using(m verify.Match) string {
	if !m.Pass {
		return ""
	}
	return fmt.Sprintf(" (using %s expected)", m.Candidate)
}

// WriteSummary renders every result of a run followed by the aggregate
// outcome counts.
func WriteSummary(w io.Writer, s *scenario.Summary) error {
	if _, err := fmt.Fprintf(w, "\n=== AES-128 IP test run %s (harness %s) ===\n", s.ID, &s.Version); err != nil {
		return err
	}

	for i := range s.Results {
		if err := WriteResult(w, &s.Results[i]); err != nil {
			return err
		}
	}

	var counts []string

	for o := scenario.Pass; o <= scenario.Timeout; o++ {
		counts = append(counts, fmt.Sprintf("%s: %d", o, s.Count(o)))
	}

	verdict := "SUCCESS"

	if !s.OK() {
		verdict = "FAILURE"
	}

	_, err := fmt.Fprintf(w, "\n=== TEST COMPLETE: %s ===\n%s\n", verdict, strings.Join(counts, "  "))

	return err
}
