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

package buffer

import (
	"unsafe"
)

// HeapAllocator reserves aligned memory from the Go heap, device addresses
// are host virtual addresses. It is meant for simulated devices and tests.
type HeapAllocator struct{}

// Reserve returns size bytes aligned to align.
func (HeapAllocator) Reserve(size int, align int) (addr uint, buf []byte) {
	if align < 1 {
		align = 1
	}

	raw := make([]byte, size+align)
	off := 0

	if r := int(uintptr(unsafe.Pointer(&raw[0])) % uintptr(align)); r != 0 {
		off = align - r
	}

	buf = raw[off : off+size : off+size]
	addr = uint(uintptr(unsafe.Pointer(&buf[0])))

	return
}
