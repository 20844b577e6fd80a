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

package main

import (
	"fmt"
	"io"
	"time"

	"k8s.io/klog/v2"

	"github.com/axis-aes/harness/buffer"
	"github.com/axis-aes/harness/internal/sim"
	"github.com/axis-aes/harness/mmio"
)

const defaultTimeout = 5 * time.Second

// register window of each IP core
const regSize = 0x10000

// target is the hardware a run executes on.
type target struct {
	dma   mmio.Bus
	aes   mmio.Bus
	alloc buffer.Allocator
	cache buffer.Cache

	closers []io.Closer
	done    func()
}

func (t *target) Close() (err error) {
	if t.done != nil {
		t.done()
	}

	for _, c := range t.closers {
		if cerr := c.Close(); err == nil {
			err = cerr
		}
	}

	return
}

func openTarget(cfg *config) (*target, error) {
	switch cfg.target {
	case "sim":
		return openSim(cfg.sim), nil
	case "pynq":
		return openPynq(cfg)
	}

	return nil, fmt.Errorf("unknown target %q", cfg.target)
}

func openSim(opt sim.Options) *target {
	board := sim.NewBoard(opt)

	return &target{
		dma:   board.Fabric.DMA(),
		aes:   board.Fabric.AES(),
		alloc: board.Memory,
		cache: board.Memory,
		done: func() {
			f := board.Fabric
			klog.Infof("sim: %d blocks, %d back-pressure polls, %d output stalls, %d flushes, %d invalidates",
				f.Blocks, f.Backpressure, f.OutputStalls, board.Memory.Flushes, board.Memory.Invalidates)
		},
	}
}
