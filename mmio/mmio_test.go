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

package mmio

import (
	"testing"
)

type regs map[uint32]uint32

func (r regs) Read32(off uint32) uint32 {
	return r[off]
}

func (r regs) Write32(off uint32, val uint32) {
	r[off] = val
}

func TestWindow(t *testing.T) {
	r := regs{}
	w := Window(r, 0x1000)

	w.Write32(0x18, 0xdeadbeef)

	if got := r[0x1018]; got != 0xdeadbeef {
		t.Fatalf("Got %#x at 0x1018", got)
	}

	if got := w.Read32(0x18); got != 0xdeadbeef {
		t.Fatalf("Read32() = %#x", got)
	}
}

func TestBits(t *testing.T) {
	r := regs{0x14: 0b1000}

	Set(r, 0x14, 0)

	if got := r[0x14]; got != 0b1001 {
		t.Fatalf("Set() gave %#b", got)
	}

	Clear(r, 0x14, 3)

	if got := r[0x14]; got != 0b0001 {
		t.Fatalf("Clear() gave %#b", got)
	}

	r[0x18] = 0b0110

	if got := Get(r, 0x18, 1, 1); got != 1 {
		t.Fatalf("Get() = %d, want 1", got)
	}

	if got := Get(r, 0x18, 0, 0b11); got != 0b10 {
		t.Fatalf("Get() = %#b, want 0b10", got)
	}
}
