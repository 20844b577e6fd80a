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

package udmabuf

import (
	"fmt"

	"golang.org/x/sys/unix"
	"k8s.io/klog/v2"
)

// Open maps the named u-dma-buf device.
func Open(name string) (d *Device, err error) {
	d = &Device{Name: name}

	if err = d.probe(); err != nil {
		return nil, err
	}

	fd, err := unix.Open("/dev/"+name, unix.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("opening %s, %w", name, err)
	}
	defer unix.Close(fd)

	if d.mem, err = unix.Mmap(fd, 0, d.size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED); err != nil {
		return nil, fmt.Errorf("mapping %s, %w", name, err)
	}

	klog.V(1).Infof("%s mapped phys:%#x size:%d", name, d.phys, d.size)

	return
}

// Close unmaps the device, buffers returned by Reserve must no longer be
// used.
func (d *Device) Close() error {
	return unix.Munmap(d.mem)
}
