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

package main

import (
	"fmt"

	"github.com/axis-aes/harness/internal/udmabuf"
	"github.com/axis-aes/harness/mmio"
)

func openPynq(cfg *config) (_ *target, err error) {
	t := &target{}

	defer func() {
		if err != nil {
			_ = t.Close()
		}
	}()

	dma, err := mmio.Map(cfg.dmaBase, regSize)
	if err != nil {
		return nil, fmt.Errorf("dma registers, %w", err)
	}
	t.closers = append(t.closers, dma)

	aes, err := mmio.Map(cfg.aesBase, regSize)
	if err != nil {
		return nil, fmt.Errorf("aes registers, %w", err)
	}
	t.closers = append(t.closers, aes)

	buf, err := udmabuf.Open(cfg.udmabuf)
	if err != nil {
		return nil, err
	}
	t.closers = append(t.closers, buf)

	t.dma = dma
	t.aes = aes
	t.alloc = buf
	t.cache = buf

	return t, nil
}
