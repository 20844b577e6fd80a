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
	"crypto/aes"
	"crypto/cipher"
	"encoding/binary"

	"k8s.io/klog/v2"

	"github.com/axis-aes/harness/axidma"
	"github.com/axis-aes/harness/block"
	"github.com/axis-aes/harness/cipherip"
	"github.com/axis-aes/harness/mmio"
)

// Options select the behaviour of the modelled core.
type Options struct {
	// ReverseOutput byte-reverses every output block.
	ReverseOutput bool
	// ZeroOnly corrupts the output of every non-zero input block, only the
	// all-zero block is processed correctly.
	ZeroOnly bool
	// Stall makes the core accept input without ever producing output.
	Stall bool
	// Latency is the number of polls a block spends in the core pipeline.
	Latency int
	// Depth is the number of blocks the core pipeline holds.
	Depth int
	// OutputFIFO is the number of output blocks buffered before the core
	// stops accepting input.
	OutputFIFO int
	// ResetPolls is the number of control register reads before a DMA reset
	// completes.
	ResetPolls int
	// ExpandPolls is the number of status reads before key expansion
	// completes.
	ExpandPolls int
}

// DefaultOptions models a correct iterative core, which accepts a new block
// only once the previous one left the pipeline.
var DefaultOptions = Options{
	Latency:     2,
	Depth:       1,
	OutputFIFO:  1,
	ResetPolls:  2,
	ExpandPolls: 3,
}

type channel struct {
	cr     uint32
	sr     uint32
	addr   uint32
	length uint32
	done   uint32
	active bool
}

type inflight struct {
	data  block.Block
	ready int
}

// Fabric models the AXI DMA engine and the AES core connected through
// AXI4-Stream.
type Fabric struct {
	mem *Memory
	opt Options

	ch         [2]channel
	resetPolls int

	key       [4]uint32
	control   uint32
	expanding int
	expanded  bool
	cipher    cipher.Block
	pipeline  []inflight
	output    []block.Block

	// Armed records channel starts in program order ("MM2S", "S2MM").
	Armed []string
	// Backpressure counts polls where the core input had valid data but was
	// not ready (s_axis_tvalid && !s_axis_tready).
	Backpressure int
	// OutputStalls counts polls where the core output was valid but the
	// S2MM channel was not ready (m_axis_tvalid && !m_axis_tready).
	OutputStalls int
	// Blocks counts blocks processed by the core.
	Blocks int
}

// NewFabric returns a model of the programmable logic attached to mem.
func NewFabric(mem *Memory, opt Options) *Fabric {
	if opt.Depth < 1 {
		opt.Depth = 1
	}

	f := &Fabric{
		mem: mem,
		opt: opt,
	}

	f.reset()

	return f
}

func (f *Fabric) reset() {
	for i := range f.ch {
		f.ch[i] = channel{sr: 1 << axidma.DMASR_HALTED}
	}

	f.pipeline = nil
	f.output = nil
}

// DMA returns the AXI DMA register space.
func (f *Fabric) DMA() mmio.Bus {
	return (*dmaBus)(f)
}

// AES returns the cipher core register space.
func (f *Fabric) AES() mmio.Bus {
	return (*aesBus)(f)
}

func chanIndex(off uint32) (int, uint32) {
	if off >= axidma.S2MM {
		return 1, off - axidma.S2MM
	}
	return 0, off
}

func chanName(i int) string {
	if i == 1 {
		return "S2MM"
	}
	return "MM2S"
}

type dmaBus Fabric

func (b *dmaBus) Read32(off uint32) uint32 {
	f := (*Fabric)(b)
	i, reg := chanIndex(off)
	ch := &f.ch[i]

	switch reg {
	case axidma.DMACR:
		if ch.cr&(1<<axidma.DMACR_RESET) != 0 {
			if f.resetPolls--; f.resetPolls <= 0 {
				f.reset()
			}
		}
		return f.ch[i].cr
	case axidma.DMASR:
		f.tick()
		return ch.sr
	case axidma.ADDR:
		return ch.addr
	case axidma.LENGTH:
		return ch.length
	}

	return 0
}

func (b *dmaBus) Write32(off uint32, val uint32) {
	f := (*Fabric)(b)
	i, reg := chanIndex(off)
	ch := &f.ch[i]

	switch reg {
	case axidma.DMACR:
		if val&(1<<axidma.DMACR_RESET) != 0 {
			// a reset on either channel resets both
			f.ch[0].cr |= 1 << axidma.DMACR_RESET
			f.ch[1].cr |= 1 << axidma.DMACR_RESET
			f.resetPolls = f.opt.ResetPolls
			return
		}

		ch.cr = val

		if val&(1<<axidma.DMACR_RS) != 0 && ch.sr&(1<<axidma.DMASR_HALTED) != 0 {
			ch.sr = 1 << axidma.DMASR_IDLE
		}
	case axidma.ADDR:
		ch.addr = val
	case axidma.LENGTH:
		if ch.cr&(1<<axidma.DMACR_RS) == 0 {
			return
		}

		ch.length = val
		ch.done = 0
		ch.active = true
		ch.sr &^= 1 << axidma.DMASR_IDLE

		if val%block.Size != 0 {
			// the core only consumes whole blocks
			ch.sr |= 1<<axidma.DMASR_INTERR | 1<<axidma.DMASR_HALTED
			ch.active = false
		}

		f.Armed = append(f.Armed, chanName(i))
		klog.V(2).Infof("sim %s armed addr:%#x len:%d", chanName(i), ch.addr, val)
	}
}

func (f *Fabric) complete(ch *channel) {
	ch.active = false
	ch.sr |= 1<<axidma.DMASR_IDLE | 1<<axidma.DMASR_IOC_IRQ
}

func (f *Fabric) fail(ch *channel) {
	ch.active = false
	ch.sr |= 1<<axidma.DMASR_SLVERR | 1<<axidma.DMASR_HALTED
}

// tick advances the stream by one beat in each stage, draining from the
// output side first.
func (f *Fabric) tick() {
	mm2s := &f.ch[0]
	s2mm := &f.ch[1]

	// core output -> S2MM
	if len(f.output) > 0 {
		if s2mm.active {
			b := f.output[0]
			f.output = f.output[1:]

			if err := f.mem.DeviceWrite(uint(s2mm.addr+s2mm.done), b[:]); err != nil {
				f.fail(s2mm)
			} else if s2mm.done += block.Size; s2mm.done >= s2mm.length {
				f.complete(s2mm)
			}
		} else {
			f.OutputStalls++
		}
	}

	// core pipeline -> output FIFO
	if !f.opt.Stall {
		for i := range f.pipeline {
			if f.pipeline[i].ready > 0 {
				f.pipeline[i].ready--
			}
		}

		if len(f.pipeline) > 0 && f.pipeline[0].ready == 0 && len(f.output) < max(f.opt.OutputFIFO, 1) {
			f.output = append(f.output, f.encrypt(f.pipeline[0].data))
			f.pipeline = f.pipeline[1:]
			f.Blocks++
		}
	}

	// MM2S -> core input
	if mm2s.active {
		if !f.expanded || len(f.pipeline) >= f.opt.Depth {
			f.Backpressure++
			return
		}

		var b block.Block

		if err := f.mem.DeviceRead(uint(mm2s.addr+mm2s.done), b[:]); err != nil {
			f.fail(mm2s)
			return
		}

		f.pipeline = append(f.pipeline, inflight{data: b, ready: f.opt.Latency})

		if mm2s.done += block.Size; mm2s.done >= mm2s.length {
			f.complete(mm2s)
		}
	}
}

func (f *Fabric) encrypt(in block.Block) (out block.Block) {
	src := in

	if f.opt.ZeroOnly && !in.IsZero() {
		// word swapped input, the failure signature of non-zero data
		for i := 0; i < block.Size; i += 4 {
			binary.LittleEndian.PutUint32(src[i:], binary.BigEndian.Uint32(in[i:]))
		}
		src[0] ^= 0xff
	}

	f.cipher.Encrypt(out[:], src[:])

	if f.opt.ReverseOutput {
		out = out.Reverse()
	}

	return
}

type aesBus Fabric

func (b *aesBus) Read32(off uint32) uint32 {
	f := (*Fabric)(b)

	switch off {
	case cipherip.KEY0, cipherip.KEY1, cipherip.KEY2, cipherip.KEY3:
		return f.key[off/4]
	case cipherip.CONTROL:
		return f.control
	case cipherip.STATUS:
		if f.expanding > 0 {
			if f.expanding--; f.expanding == 0 {
				f.expand()
			}
		}

		if f.expanded {
			return 1 << cipherip.STATUS_DONE
		}
	}

	return 0
}

func (b *aesBus) Write32(off uint32, val uint32) {
	f := (*Fabric)(b)

	switch off {
	case cipherip.KEY0, cipherip.KEY1, cipherip.KEY2, cipherip.KEY3:
		f.key[off/4] = val
	case cipherip.CONTROL:
		start := val&(1<<cipherip.CONTROL_START) != 0

		if start && f.control&(1<<cipherip.CONTROL_START) == 0 {
			f.expanded = false
			f.expanding = max(f.opt.ExpandPolls, 1)
		}

		f.control = val
	}
}

func (f *Fabric) expand() {
	var key [16]byte

	for i, w := range f.key {
		binary.BigEndian.PutUint32(key[i*4:], w)
	}

	// a 16 byte key never fails
	f.cipher, _ = aes.NewCipher(key[:])
	f.expanded = true
}
