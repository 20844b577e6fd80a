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

// Package vectors defines the golden vectors exercised against the cipher
// core.
package vectors

import (
	"crypto/aes"

	"github.com/axis-aes/harness/block"
	"github.com/axis-aes/harness/gate"
	"github.com/axis-aes/harness/verify"
)

// Vector is a single test case: a key, the plaintext stream and the expected
// output of each block.
type Vector struct {
	Name      string
	Key       block.Block
	Plaintext []block.Block
	// Expected holds either one set shared by all blocks or one set per
	// block.
	Expected []verify.ExpectedSet
	// ExpectMismatch marks a known failure, a mismatch is the anticipated
	// outcome.
	ExpectMismatch bool
	// Pause requests an operator synchronization before the transfer.
	Pause   bool
	Trigger string
	Note    string
}

// Length returns the number of bytes transferred by the vector.
func (v *Vector) Length() int {
	return len(v.Plaintext) * block.Size
}

// Reference computes the AES-128 ECB encryption of pt with key in software.
func Reference(key block.Block, pt []block.Block) []block.Block {
	// a 16 byte key never fails
	c, _ := aes.NewCipher(key[:])

	ct := make([]block.Block, len(pt))

	for i, b := range pt {
		c.Encrypt(ct[i][:], b[:])
	}

	return ct
}

// ReferenceSets returns {reference, reversed reference} for every block.
func ReferenceSets(key block.Block, pt []block.Block) []verify.ExpectedSet {
	ct := Reference(key, pt)
	sets := make([]verify.ExpectedSet, len(ct))

	for i, b := range ct {
		sets[i] = verify.WithReversal(b)
	}

	return sets
}

var (
	// Pattern is the counting pattern used by the back-pressure test.
	Pattern = block.MustParseHex("00112233445566778899aabbccddeeff")
	// PatternCiphertext is the ciphertext of Pattern under the zero key. Its
	// byte order relative to the stream is unresolved, both orientations are
	// candidates.
	PatternCiphertext = block.MustParseHex("c8a331ff8edd3db175e1545dbefb760b")
	// ZeroCiphertext is AES-128 of the zero block under the zero key.
	ZeroCiphertext = block.MustParseHex("66e94bd4ef8a2c3b884cfa59ca342b2e")
)

// SweepPatterns are the fixed 16 byte patterns of the sensitivity sweep.
var SweepPatterns = []block.Block{
	block.Fill(0x00),
	block.Fill(0xff),
	block.Fill(0x55),
	block.Fill(0xaa),
	block.Fill(0x0f),
	block.Fill(0xf0),
	Pattern,
	Pattern.Reverse(),
}

// Builtin returns the default test sequence.
func Builtin() []Vector {
	fipsKey := block.MustParseHex("000102030405060708090a0b0c0d0e0f")
	ecbKey := block.MustParseHex("2b7e151628aed2a6abf7158809cf4f3c")

	return []Vector{
		{
			Name:      "single zero block",
			Key:       block.Zero,
			Plaintext: []block.Block{block.Zero},
			Expected:  []verify.ExpectedSet{verify.WithReversal(ZeroCiphertext)},
			Note:      "only known passing input pattern",
		}, {
			Name:      "four identical blocks repeated",
			Key:       block.Zero,
			Plaintext: block.Repeat(Pattern, 4),
			Expected:  []verify.ExpectedSet{verify.WithReversal(PatternCiphertext)},
			Pause:     true,
			Trigger:   gate.TriggerBackpressure,
			Note:      "back-pressure between blocks of a single stream",
		}, {
			Name:           "all 0xFF loopback",
			Key:            block.Zero,
			Plaintext:      block.Repeat(block.Fill(0xff), 2),
			Expected:       []verify.ExpectedSet{verify.Exactly("plaintext", block.Fill(0xff))},
			ExpectMismatch: true,
			Pause:          true,
			Trigger:        gate.TriggerNonZeroData,
			Note:           "received data compared with sent data, non-zero input failure",
		}, {
			Name:      "FIPS-197 C.1",
			Key:       fipsKey,
			Plaintext: []block.Block{Pattern},
			Expected:  []verify.ExpectedSet{verify.WithReversal(block.MustParseHex("69c4e0d86a7b0430d8cdb78070b4c55a"))},
		}, {
			Name: "SP 800-38A ECB-AES128",
			Key:  ecbKey,
			Plaintext: []block.Block{
				block.MustParseHex("6bc1bee22e409f96e93d7e117393172a"),
				block.MustParseHex("ae2d8a571e03ac9c9eb76fac45af8e51"),
				block.MustParseHex("30c81c46a35ce411e5fbc1191a0a52ef"),
				block.MustParseHex("f69f2445df4f9b17ad2b417be66c3710"),
			},
			Expected: []verify.ExpectedSet{
				verify.WithReversal(block.MustParseHex("3ad77bb40d7a3660a89ecaf32466ef97")),
				verify.WithReversal(block.MustParseHex("f5d3d58503b9699de785895a96fdbaaf")),
				verify.WithReversal(block.MustParseHex("43b1cd7f598ece23881b00e3ed030688")),
				verify.WithReversal(block.MustParseHex("7b0c785e27e8ad3f8223207104725dd4")),
			},
			Note: "multiblock stream with per-block vectors",
		}, {
			Name:      "pattern sweep",
			Key:       block.Zero,
			Plaintext: SweepPatterns,
			Expected:  ReferenceSets(block.Zero, SweepPatterns),
			Note:      "input pattern sensitivity",
		},
	}
}
