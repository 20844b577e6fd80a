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

package sim

import (
	"bytes"
	"testing"
)

func TestReserve(t *testing.T) {
	m := NewMemory(0x1000, 256)

	a, buf := m.Reserve(40, 1)
	if a != 0x1000 || len(buf) != 40 {
		t.Fatalf("Reserve() = %#x, %d", a, len(buf))
	}

	b, buf := m.Reserve(64, 64)
	if b != 0x1040 || len(buf) != 64 {
		t.Fatalf("Reserve() = %#x, %d, want 0x1040", b, len(buf))
	}

	if _, buf := m.Reserve(256, 64); buf != nil {
		t.Fatal("Reserve() succeeded beyond memory size")
	}
}

func TestCacheModel(t *testing.T) {
	m := NewMemory(0x1000, 256)
	addr, buf := m.Reserve(64, 64)

	copy(buf, bytes.Repeat([]byte{0xff}, 64))

	dev := make([]byte, 64)

	if err := m.DeviceRead(addr, dev); err != nil {
		t.Fatalf("DeviceRead(): %v", err)
	}

	if !bytes.Equal(dev, make([]byte, 64)) {
		t.Fatal("device observed host write without flush")
	}

	m.Flush(addr, 64)

	if err := m.DeviceRead(addr, dev); err != nil {
		t.Fatalf("DeviceRead(): %v", err)
	}

	if !bytes.Equal(dev, buf) {
		t.Fatal("device did not observe flushed host write")
	}

	if err := m.DeviceWrite(addr, bytes.Repeat([]byte{0x11}, 64)); err != nil {
		t.Fatalf("DeviceWrite(): %v", err)
	}

	if buf[0] != 0xff {
		t.Fatal("host observed device write without invalidate")
	}

	m.Invalidate(addr, 64)

	if !bytes.Equal(buf, bytes.Repeat([]byte{0x11}, 64)) {
		t.Fatalf("host did not observe device write after invalidate: %x", buf)
	}

	if m.Flushes != 1 || m.Invalidates != 1 {
		t.Fatalf("maintenance counters %d/%d", m.Flushes, m.Invalidates)
	}

	if err := m.DeviceRead(0x2000, dev); err == nil {
		t.Fatal("DeviceRead() outside memory succeeded")
	}
}

func TestCacheLineRounding(t *testing.T) {
	m := NewMemory(0x1000, 128)
	_, buf := m.Reserve(128, 32)

	buf[5] = 0xaa

	// flushing one byte writes back the whole line
	m.Flush(0x1001, 1)

	dev := make([]byte, 8)
	if err := m.DeviceRead(0x1000, dev); err != nil {
		t.Fatalf("DeviceRead(): %v", err)
	}

	if dev[5] != 0xaa {
		t.Fatal("flush did not cover the cache line")
	}
}
