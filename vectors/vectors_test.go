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

package vectors

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/axis-aes/harness/block"
	"github.com/axis-aes/harness/buffer"
	"github.com/axis-aes/harness/verify"
)

func TestBuiltin(t *testing.T) {
	names := make(map[string]bool)

	for _, v := range Builtin() {
		if names[v.Name] {
			t.Errorf("duplicate vector %q", v.Name)
		}
		names[v.Name] = true

		if v.Length() == 0 || v.Length() > buffer.DefaultConfig.Capacity {
			t.Errorf("%s: length %d does not fit the default buffers", v.Name, v.Length())
		}

		if len(v.Expected) != 1 && len(v.Expected) != len(v.Plaintext) {
			t.Errorf("%s: %d expected sets for %d blocks", v.Name, len(v.Expected), len(v.Plaintext))
		}
	}
}

// Published vectors are cross-checked against the software reference. The
// loopback case compares against the plaintext instead.
func TestBuiltinAgainstReference(t *testing.T) {
	for _, v := range Builtin() {
		if v.ExpectMismatch {
			continue
		}

		t.Run(v.Name, func(t *testing.T) {
			for i, ct := range Reference(v.Key, v.Plaintext) {
				set := v.Expected[0]
				if len(v.Expected) > 1 {
					set = v.Expected[i]
				}

				if m := verify.Compare(ct, set); !m.Pass || m.Candidate != verify.Original {
					t.Fatalf("block %d: reference %s not matched as original: %+v", i, ct, m)
				}
			}
		})
	}
}

func TestReferenceZero(t *testing.T) {
	if got := Reference(block.Zero, []block.Block{block.Zero}); got[0] != ZeroCiphertext {
		t.Fatalf("Got %s, want %s", got[0], ZeroCiphertext)
	}
}

func TestLoad(t *testing.T) {
	f, err := os.Open("testdata/vectors.yaml")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	vectors, err := Load(f)
	if err != nil {
		t.Fatalf("Load(): %v", err)
	}

	if len(vectors) != 3 {
		t.Fatalf("Got %d vectors, want 3", len(vectors))
	}

	zero := vectors[0]

	if diff := cmp.Diff(block.Repeat(block.Zero, 2), zero.Plaintext); diff != "" {
		t.Fatalf("plaintext diff: %s", diff)
	}

	wantSet := verify.ExpectedSet{
		{Name: "original[0]", Block: ZeroCiphertext},
		{Name: "reversed[0]", Block: ZeroCiphertext.Reverse()},
	}

	if diff := cmp.Diff([]verify.ExpectedSet{wantSet}, zero.Expected); diff != "" {
		t.Fatalf("expected diff: %s", diff)
	}

	bp := vectors[1]

	if len(bp.Plaintext) != 4 || !bp.Pause || bp.Key != block.Zero {
		t.Fatalf("back-pressure vector %+v", bp)
	}

	if m := verify.Compare(PatternCiphertext.Reverse(), bp.Expected[0]); !m.Pass || m.Index != 1 {
		t.Fatalf("reversed candidate not matched: %+v", m)
	}

	sweep := vectors[2]

	if diff := cmp.Diff(ReferenceSets(block.Zero, sweep.Plaintext), sweep.Expected); diff != "" {
		t.Fatalf("reference diff: %s", diff)
	}
}

func TestLoadErrors(t *testing.T) {
	for _, test := range []struct {
		name    string
		doc     string
		wantErr error
	}{
		{
			name:    "future major",
			doc:     "version: 2.0.0\nvectors: []\n",
			wantErr: ErrSchema,
		}, {
			name:    "newer minor",
			doc:     "version: 1.2.0\nvectors: []\n",
			wantErr: ErrSchema,
		}, {
			name:    "reference before 1.1.0",
			doc:     "version: 1.0.0\nvectors:\n  - name: a\n    plaintext: [\"00000000000000000000000000000000\"]\n    reference: true\n",
			wantErr: ErrSchema,
		}, {
			name: "bad version",
			doc:  "version: one\nvectors: []\n",
		}, {
			name: "unknown field",
			doc:  "version: 1.0.0\nvectors:\n  - name: a\n    colour: red\n",
		}, {
			name: "missing expected",
			doc:  "version: 1.0.0\nvectors:\n  - name: a\n    plaintext: [\"00000000000000000000000000000000\"]\n",
		}, {
			name: "bad shape",
			doc:  "version: 1.0.0\nvectors:\n  - name: a\n    plaintext: [\"00000000000000000000000000000000\"]\n    repeat: 3\n    expected: [[\"00000000000000000000000000000000\"], [\"00000000000000000000000000000000\"]]\n",
		}, {
			name:    "huge repeat",
			doc:     "version: 1.0.0\nvectors:\n  - name: a\n    plaintext: [\"00000000000000000000000000000000\"]\n    repeat: 1000000000000\n    expected: [[\"00000000000000000000000000000000\"]]\n",
			wantErr: ErrTooLong,
		}, {
			name:    "repeat past transfer limit",
			doc:     "version: 1.0.0\nvectors:\n  - name: a\n    plaintext: [\"00000000000000000000000000000000\", \"00000000000000000000000000000000\"]\n    repeat: 512\n    expected: [[\"00000000000000000000000000000000\"]]\n",
			wantErr: ErrTooLong,
		}, {
			name: "negative repeat",
			doc:  "version: 1.0.0\nvectors:\n  - name: a\n    plaintext: [\"00000000000000000000000000000000\"]\n    repeat: -1\n    expected: [[\"00000000000000000000000000000000\"]]\n",
		}, {
			name: "short block",
			doc:  "version: 1.0.0\nvectors:\n  - name: a\n    plaintext: [\"0000\"]\n    expected: [[\"00000000000000000000000000000000\"]]\n",
		},
	} {
		t.Run(test.name, func(t *testing.T) {
			_, err := Load(strings.NewReader(test.doc))
			if err == nil {
				t.Fatal("Load() succeeded")
			}
			if test.wantErr != nil && !errors.Is(err, test.wantErr) {
				t.Fatalf("Got %v, want %v", err, test.wantErr)
			}
		})
	}
}

func TestLoadMaxBlocks(t *testing.T) {
	doc := fmt.Sprintf("version: 1.0.0\nvectors:\n  - name: a\n    plaintext: [\"00000000000000000000000000000000\"]\n    repeat: %d\n    expected: [[\"00000000000000000000000000000000\"]]\n", MaxBlocks)

	v, err := Load(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("Load(): %v", err)
	}

	if got := len(v[0].Plaintext); got != MaxBlocks {
		t.Fatalf("Got %d blocks, want %d", got, MaxBlocks)
	}
}
