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

// Package block defines the 16 byte unit consumed and produced by the cipher
// core.
package block

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// Size is the number of bytes in a single cipher block.
const Size = 16

// Block is a single 128-bit cipher block.
type Block [Size]byte

// Zero is the all-zero block.
var Zero Block

// ParseHex parses a block from its hexadecimal representation, separators
// (spaces, colons, dashes) between bytes are ignored.
func ParseHex(s string) (b Block, err error) {
	clean := strings.Map(func(r rune) rune {
		switch r {
		case ' ', ':', '-', '\t', '\n':
			return -1
		}
		return r
	}, s)

	buf, err := hex.DecodeString(clean)

	if err != nil {
		return b, fmt.Errorf("invalid block %q, %v", s, err)
	}

	if len(buf) != Size {
		return b, fmt.Errorf("invalid block %q, got %d bytes, want %d", s, len(buf), Size)
	}

	copy(b[:], buf)

	return
}

// MustParseHex is like ParseHex but panics on error, it is meant for
// initialization of golden vectors.
func MustParseHex(s string) Block {
	b, err := ParseHex(s)

	if err != nil {
		panic(err)
	}

	return b
}

// Fill returns a block with every byte set to v.
func Fill(v byte) (b Block) {
	for i := range b {
		b[i] = v
	}
	return
}

// Reverse returns the block with its byte order reversed.
func (b Block) Reverse() (r Block) {
	for i := range b {
		r[Size-1-i] = b[i]
	}
	return
}

// IsZero reports whether all bytes of the block are zero.
func (b Block) IsZero() bool {
	return b == Zero
}

// Hex returns the block as a contiguous lowercase hexadecimal string.
func (b Block) Hex() string {
	return hex.EncodeToString(b[:])
}

// String returns the block in console dump format (e.g. "00 11 22 ...").
func (b Block) String() string {
	var sb strings.Builder

	for i, c := range b {
		if i > 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, "%02X", c)
	}

	return sb.String()
}

// Repeat returns n copies of b.
func Repeat(b Block, n int) []Block {
	r := make([]Block, n)

	for i := range r {
		r[i] = b
	}

	return r
}

// Join concatenates blocks into a contiguous byte slice.
func Join(blocks []Block) []byte {
	buf := make([]byte, 0, len(blocks)*Size)

	for _, b := range blocks {
		buf = append(buf, b[:]...)
	}

	return buf
}

// Split divides buf into blocks, buf length must be a multiple of Size.
func Split(buf []byte) ([]Block, error) {
	if len(buf)%Size != 0 {
		return nil, fmt.Errorf("length %d is not a multiple of the block size", len(buf))
	}

	blocks := make([]Block, len(buf)/Size)

	for i := range blocks {
		copy(blocks[i][:], buf[i*Size:])
	}

	return blocks, nil
}
