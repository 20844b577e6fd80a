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

//go:build linux

package mmio

import (
	"fmt"
	"os"
	"sync/atomic"
	"unsafe"

	"golang.org/x/sys/unix"
)

// DevMem is a Bus backed by a /dev/mem mapping of a physical register
// region.
type DevMem struct {
	base uint32
	mem  []byte
}

// Map maps size bytes of physical memory at base, base must be page aligned.
func Map(base uint32, size int) (d *DevMem, err error) {
	if int(base)%os.Getpagesize() != 0 {
		return nil, fmt.Errorf("base %#x is not page aligned", base)
	}

	f, err := os.OpenFile("/dev/mem", os.O_RDWR|os.O_SYNC, 0)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	mem, err := unix.Mmap(int(f.Fd()), int64(base), size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("mmap %#x+%#x, %w", base, size, err)
	}

	return &DevMem{base: base, mem: mem}, nil
}

func (d *DevMem) reg(off uint32) *uint32 {
	if int(off)+4 > len(d.mem) || off%4 != 0 {
		panic(fmt.Sprintf("register offset %#x out of mapped range %#x+%#x", off, d.base, len(d.mem)))
	}

	return (*uint32)(unsafe.Pointer(&d.mem[off]))
}

// Read32 reads the register at off.
func (d *DevMem) Read32(off uint32) uint32 {
	return atomic.LoadUint32(d.reg(off))
}

// Write32 writes the register at off.
func (d *DevMem) Write32(off uint32, val uint32) {
	atomic.StoreUint32(d.reg(off), val)
}

// Close unmaps the register region.
func (d *DevMem) Close() error {
	return unix.Munmap(d.mem)
}
