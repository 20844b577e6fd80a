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
	"io"

	"github.com/coreos/go-semver/semver"
	"gopkg.in/yaml.v3"

	"github.com/axis-aes/harness/block"
	"github.com/axis-aes/harness/verify"
)

// SchemaVersion is the vector file format version understood by Load.
var SchemaVersion = *semver.New("1.1.0")

// ErrSchema is returned for vector files of an unsupported format version.
var ErrSchema = errors.New("unsupported vector file version")

// ErrTooLong is returned for vectors longer than MaxBlocks.
var ErrTooLong = errors.New("vector too long")

// MaxBlocks bounds the plaintext of a loaded vector to the largest simple
// mode DMA transfer (a 14-bit length register) in whole blocks.
const MaxBlocks = (1<<14 - 1) / block.Size

type fileVector struct {
	Name           string     `yaml:"name"`
	Key            string     `yaml:"key"`
	Plaintext      []string   `yaml:"plaintext"`
	Repeat         int        `yaml:"repeat"`
	Expected       [][]string `yaml:"expected"`
	Reversal       bool       `yaml:"reversal"`
	Reference      bool       `yaml:"reference"`
	ExpectMismatch bool       `yaml:"expect_mismatch"`
	Pause          bool       `yaml:"pause"`
	Trigger        string     `yaml:"trigger"`
	Note           string     `yaml:"note"`
}

type file struct {
	Version string       `yaml:"version"`
	Vectors []fileVector `yaml:"vectors"`
}

// Load parses a YAML vector file.
//
//	version: 1.0.0
//	vectors:
//	  - name: zero
//	    key: "00000000000000000000000000000000"
//	    plaintext: ["00000000000000000000000000000000"]
//	    repeat: 2
//	    expected: [["66e94bd4ef8a2c3b884cfa59ca342b2e"]]
//	    reversal: true
//
// Expected holds one candidate list shared by every block or one list per
// block. Setting reference computes the expected blocks in software instead
// (since 1.1.0). Reversal adds the byte reversed form of every candidate.
func Load(r io.Reader) ([]Vector, error) {
	var f file

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("decoding vectors, %w", err)
	}

	v, err := semver.NewVersion(f.Version)
	if err != nil {
		return nil, fmt.Errorf("version %q, %w", f.Version, err)
	}

	if v.Major != SchemaVersion.Major || SchemaVersion.LessThan(*v) {
		return nil, fmt.Errorf("version %s (supported %s), %w", v, &SchemaVersion, ErrSchema)
	}

	vectors := make([]Vector, 0, len(f.Vectors))

	for i, fv := range f.Vectors {
		vec, err := fv.parse(v)
		if err != nil {
			return nil, fmt.Errorf("vector %d (%q), %w", i, fv.Name, err)
		}

		vectors = append(vectors, vec)
	}

	return vectors, nil
}

func (fv *fileVector) parse(version *semver.Version) (v Vector, err error) {
	if fv.Name == "" {
		return v, errors.New("missing name")
	}

	v = Vector{
		Name:           fv.Name,
		ExpectMismatch: fv.ExpectMismatch,
		Pause:          fv.Pause,
		Trigger:        fv.Trigger,
		Note:           fv.Note,
	}

	if fv.Key != "" {
		if v.Key, err = block.ParseHex(fv.Key); err != nil {
			return
		}
	}

	if len(fv.Plaintext) == 0 {
		return v, errors.New("missing plaintext")
	}

	var pt []block.Block

	for _, s := range fv.Plaintext {
		b, err := block.ParseHex(s)
		if err != nil {
			return v, err
		}

		pt = append(pt, b)
	}

	if fv.Repeat < 0 {
		return v, fmt.Errorf("negative repeat %d", fv.Repeat)
	}

	repeat := max(fv.Repeat, 1)

	if len(pt) > MaxBlocks || repeat > MaxBlocks/len(pt) {
		return v, fmt.Errorf("%d blocks repeated %d times exceeds %d, %w", len(pt), repeat, MaxBlocks, ErrTooLong)
	}

	v.Plaintext = make([]block.Block, 0, repeat*len(pt))

	for i := 0; i < repeat; i++ {
		v.Plaintext = append(v.Plaintext, pt...)
	}

	switch {
	case fv.Reference && len(fv.Expected) > 0:
		return v, errors.New("reference and expected are mutually exclusive")
	case fv.Reference:
		if version.LessThan(*semver.New("1.1.0")) {
			return v, fmt.Errorf("reference requires version 1.1.0, %w", ErrSchema)
		}

		v.Expected = ReferenceSets(v.Key, v.Plaintext)
		return
	case len(fv.Expected) == 0:
		return v, errors.New("missing expected")
	case len(fv.Expected) != 1 && len(fv.Expected) != len(v.Plaintext):
		return v, fmt.Errorf("%d expected sets for %d blocks", len(fv.Expected), len(v.Plaintext))
	}

	for i, candidates := range fv.Expected {
		var set verify.ExpectedSet

		for j, s := range candidates {
			b, err := block.ParseHex(s)
			if err != nil {
				return v, err
			}

			if !fv.Reversal {
				set = append(set, verify.Candidate{Name: fmt.Sprintf("expected[%d][%d]", i, j), Block: b})
				continue
			}

			for _, c := range verify.WithReversal(b) {
				c.Name = fmt.Sprintf("%s[%d]", c.Name, j)
				set = append(set, c)
			}
		}

		if len(set) == 0 {
			return v, fmt.Errorf("expected set %d is empty", i)
		}

		v.Expected = append(v.Expected, set)
	}

	return
}
