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

// Package udmabuf provides DMA buffers on Linux through the u-dma-buf
// kernel driver.
//
// The driver exports a physically contiguous, cached buffer as
// /dev/udmabufN together with sysfs attributes for its physical address and
// for explicit cache maintenance.
package udmabuf

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"k8s.io/klog/v2"
)

// SysfsRoot is the sysfs class directory of u-dma-buf devices.
var SysfsRoot = "/sys/class/u-dma-buf"

// DMA sync directions
const (
	Bidirectional = 0
	ToDevice      = 1
	FromDevice    = 2
)

// Device is a mapped u-dma-buf instance.
type Device struct {
	// Name is the device name (e.g. "udmabuf0").
	Name string

	sysfs string
	phys  uint
	size  int

	mem []byte
	// next free offset within mem
	next int
}

func (d *Device) attr(name string) string {
	return filepath.Join(d.sysfs, name)
}

func (d *Device) readAttr(name string) (uint64, error) {
	buf, err := os.ReadFile(d.attr(name))
	if err != nil {
		return 0, err
	}

	return strconv.ParseUint(strings.TrimSpace(string(buf)), 0, 64)
}

func (d *Device) writeAttr(name string, val uint64) error {
	return os.WriteFile(d.attr(name), []byte(strconv.FormatUint(val, 10)), 0644)
}

// probe reads the buffer geometry from sysfs.
func (d *Device) probe() (err error) {
	d.sysfs = filepath.Join(SysfsRoot, d.Name)

	phys, err := d.readAttr("phys_addr")
	if err != nil {
		return fmt.Errorf("%s phys_addr, %w", d.Name, err)
	}

	size, err := d.readAttr("size")
	if err != nil {
		return fmt.Errorf("%s size, %w", d.Name, err)
	}

	d.phys = uint(phys)
	d.size = int(size)

	return
}

// Phys returns the physical base address of the buffer.
func (d *Device) Phys() uint {
	return d.phys
}

// Size returns the buffer size in bytes.
func (d *Device) Size() int {
	return d.size
}

// Reserve allocates an aligned sub-buffer, returning its physical address
// and a host view of it. Nothing is returned once the buffer is exhausted.
// Alignment applies to the physical address.
func (d *Device) Reserve(size int, align int) (addr uint, buf []byte) {
	if size <= 0 {
		return
	}

	off := d.next

	if align > 1 {
		if r := int((d.phys + uint(off)) % uint(align)); r != 0 {
			off += align - r
		}
	}

	if off > len(d.mem) || size > len(d.mem)-off {
		return
	}

	d.next = off + size

	return d.phys + uint(off), d.mem[off : off+size : off+size]
}

func (d *Device) sync(addr uint, size int, dir uint64, op string) (err error) {
	if addr < d.phys || addr+uint(size) > d.phys+uint(d.size) {
		return fmt.Errorf("%s range %#x+%d outside buffer", d.Name, addr, size)
	}

	for _, a := range []struct {
		name string
		val  uint64
	}{
		{"sync_offset", uint64(addr - d.phys)},
		{"sync_size", uint64(size)},
		{"sync_direction", dir},
		{op, 1},
	} {
		if err = d.writeAttr(a.name, a.val); err != nil {
			return
		}
	}

	return
}

// Flush writes back cached lines of the range so that the device observes
// host writes.
func (d *Device) Flush(addr uint, size int) {
	if err := d.sync(addr, size, ToDevice, "sync_for_device"); err != nil {
		klog.Errorf("udmabuf flush, %v", err)
	}
}

// Invalidate discards cached lines of the range so that the host observes
// device writes.
func (d *Device) Invalidate(addr uint, size int) {
	if err := d.sync(addr, size, FromDevice, "sync_for_cpu"); err != nil {
		klog.Errorf("udmabuf invalidate, %v", err)
	}
}
