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

// Package mmio provides 32-bit memory mapped register access.
package mmio

// Bus is a 32-bit register space addressed by byte offset.
type Bus interface {
	Read32(off uint32) uint32
	Write32(off uint32, val uint32)
}

type window struct {
	bus  Bus
	base uint32
}

func (w *window) Read32(off uint32) uint32 {
	return w.bus.Read32(w.base + off)
}

func (w *window) Write32(off uint32, val uint32) {
	w.bus.Write32(w.base+off, val)
}

// Window returns a view of bus with offsets relative to base.
func Window(bus Bus, base uint32) Bus {
	return &window{bus: bus, base: base}
}

// Set sets bit pos of the register at off.
func Set(bus Bus, off uint32, pos int) {
	bus.Write32(off, bus.Read32(off)|1<<pos)
}

// Clear clears bit pos of the register at off.
func Clear(bus Bus, off uint32, pos int) {
	bus.Write32(off, bus.Read32(off)&^(1<<pos))
}

// Get returns the value of the bit field at pos of the register at off.
func Get(bus Bus, off uint32, pos int, mask uint32) uint32 {
	return (bus.Read32(off) >> pos) & mask
}
