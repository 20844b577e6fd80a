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

// Package sim provides a software model of the programmable logic under
// test: DDR memory behind a write-back data cache, an AXI DMA engine in
// simple mode and the AES-128 streaming core.
//
// The model is single threaded and advances only when the host polls a status
// register, mirroring how the harness observes real hardware.
package sim

import (
	"fmt"
)

// DefaultLineSize is the L1 data cache line size of the Cortex-A9.
const DefaultLineSize = 32

// Memory models DDR behind a write-back data cache. Host views returned by
// Reserve alias the cache contents, the device accesses backing memory.
// Data only moves between the two on explicit maintenance.
type Memory struct {
	base  uint
	mem   []byte
	cache []byte
	next  uint

	// LineSize is the cache line size used to round maintenance ranges.
	LineSize int

	Flushes     int
	Invalidates int
}

// NewMemory returns size bytes of simulated memory at device address base.
func NewMemory(base uint, size int) *Memory {
	return &Memory{
		base:     base,
		mem:      make([]byte, size),
		cache:    make([]byte, size),
		LineSize: DefaultLineSize,
	}
}

// Reserve allocates size bytes aligned to align, returning a zero length
// buffer when memory is exhausted.
func (m *Memory) Reserve(size int, align int) (addr uint, buf []byte) {
	if align < 1 {
		align = 1
	}

	addr = m.base + m.next

	if r := addr % uint(align); r != 0 {
		addr += uint(align) - r
	}

	off := addr - m.base

	if off+uint(size) > uint(len(m.mem)) {
		return 0, nil
	}

	m.next = off + uint(size)

	return addr, m.cache[off : off+uint(size) : off+uint(size)]
}

func (m *Memory) lines(addr uint, size int) (start, end uint) {
	line := uint(m.LineSize)

	if line == 0 {
		line = 1
	}

	start = (addr - m.base) &^ (line - 1)
	end = (addr - m.base + uint(size) + line - 1) &^ (line - 1)

	if end > uint(len(m.mem)) {
		end = uint(len(m.mem))
	}

	return
}

func (m *Memory) check(addr uint, size int) error {
	if addr < m.base || addr+uint(size) > m.base+uint(len(m.mem)) || size < 0 {
		return fmt.Errorf("access %#x+%d outside memory %#x+%d", addr, size, m.base, len(m.mem))
	}
	return nil
}

// Flush writes back cache lines covering the range to memory.
func (m *Memory) Flush(addr uint, size int) {
	if m.check(addr, size) != nil {
		return
	}

	start, end := m.lines(addr, size)
	copy(m.mem[start:end], m.cache[start:end])
	m.Flushes++
}

// Invalidate discards cache lines covering the range, subsequent host reads
// observe memory.
func (m *Memory) Invalidate(addr uint, size int) {
	if m.check(addr, size) != nil {
		return
	}

	start, end := m.lines(addr, size)
	copy(m.cache[start:end], m.mem[start:end])
	m.Invalidates++
}

// DeviceRead reads memory as seen by a bus master.
func (m *Memory) DeviceRead(addr uint, p []byte) error {
	if err := m.check(addr, len(p)); err != nil {
		return err
	}

	copy(p, m.mem[addr-m.base:])

	return nil
}

// DeviceWrite writes memory as a bus master would, bypassing the cache.
func (m *Memory) DeviceWrite(addr uint, p []byte) error {
	if err := m.check(addr, len(p)); err != nil {
		return err
	}

	copy(m.mem[addr-m.base:], p)

	return nil
}
