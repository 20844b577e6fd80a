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

// Package axidma implements a driver for the Xilinx AXI DMA engine operated
// in simple (direct register) mode with interrupts disabled.
//
// Only the one-shot transfer pattern is supported, scatter gather descriptors
// are not.
package axidma

import (
	"errors"
	"fmt"

	"k8s.io/klog/v2"

	"github.com/axis-aes/harness/mmio"
	"github.com/axis-aes/harness/poll"
	"github.com/axis-aes/harness/transfer"
)

// Channel register blocks
const (
	MM2S = 0x00
	S2MM = 0x30
)

// Channel registers, relative to the channel block
const (
	DMACR       = 0x00
	DMACR_RS    = 0
	DMACR_RESET = 2
	DMACR_IOC   = 12
	DMACR_DLY   = 13
	DMACR_ERR   = 14

	DMASR         = 0x04
	DMASR_HALTED  = 0
	DMASR_IDLE    = 1
	DMASR_INTERR  = 4
	DMASR_SLVERR  = 5
	DMASR_DECERR  = 6
	DMASR_IOC_IRQ = 12
	DMASR_ERR_IRQ = 14

	ADDR     = 0x18
	ADDR_MSB = 0x1c
	LENGTH   = 0x28
)

const irqMask = 1<<DMACR_IOC | 1<<DMACR_DLY | 1<<DMACR_ERR

const errMask = 1<<DMASR_INTERR | 1<<DMASR_SLVERR | 1<<DMASR_DECERR

var (
	ErrBusy      = errors.New("channel busy")
	ErrLength    = errors.New("invalid transfer length")
	ErrAlignment = errors.New("unaligned buffer address")
)

// Config describes the synthesized DMA engine.
type Config struct {
	// MaxLength is the largest transfer, defined by the buffer length
	// register width.
	MaxLength int
	// DataWidth is the stream data width in bytes.
	DataWidth int
	// HasDRE reports whether the data realignment engine is present,
	// without it buffer addresses must be aligned to DataWidth.
	HasDRE bool
}

// DefaultConfig matches the IP defaults (14-bit length register, 32-bit
// stream, no DRE).
var DefaultConfig = Config{
	MaxLength: 1<<14 - 1,
	DataWidth: 4,
}

// DMA represents an AXI DMA instance.
type DMA struct {
	Bus    mmio.Bus
	Config Config
	// Policy bounds the reset wait.
	Policy poll.Policy
}

func chanBase(dir transfer.Direction) uint32 {
	if dir == transfer.FromDevice {
		return S2MM
	}
	return MM2S
}

// Init resets the engine and disables interrupts on both channels, the
// engine is then driven by polling.
func (d *DMA) Init() (err error) {
	if d.Config.MaxLength == 0 {
		d.Config = DefaultConfig
	}

	// resetting one channel resets both
	mmio.Set(d.Bus, MM2S+DMACR, DMACR_RESET)

	polls, err := poll.Until(func() bool {
		return mmio.Get(d.Bus, MM2S+DMACR, DMACR_RESET, 1) == 0 &&
			mmio.Get(d.Bus, S2MM+DMACR, DMACR_RESET, 1) == 0
	}, d.Policy)

	if err != nil {
		return fmt.Errorf("reset, %w", err)
	}

	klog.V(1).Infof("axidma reset done after %d polls", polls)

	for _, dir := range []transfer.Direction{transfer.ToDevice, transfer.FromDevice} {
		d.DisableInterrupts(dir)
	}

	return
}

// DisableInterrupts masks completion, delay and error interrupts.
func (d *DMA) DisableInterrupts(dir transfer.Direction) {
	off := chanBase(dir) + DMACR
	d.Bus.Write32(off, d.Bus.Read32(off)&^irqMask)
}

// Start programs a simple mode transfer of n bytes at addr.
func (d *DMA) Start(dir transfer.Direction, addr uint, n int) error {
	ch := chanBase(dir)

	if n <= 0 || n > d.Config.MaxLength {
		return fmt.Errorf("%s %d bytes (max %d), %w", dir, n, d.Config.MaxLength, ErrLength)
	}

	if !d.Config.HasDRE && d.Config.DataWidth > 1 && addr%uint(d.Config.DataWidth) != 0 {
		return fmt.Errorf("%s address %#x (width %d), %w", dir, addr, d.Config.DataWidth, ErrAlignment)
	}

	sr := d.Bus.Read32(ch + DMASR)

	if sr&(1<<DMASR_HALTED) == 0 && sr&(1<<DMASR_IDLE) == 0 {
		return fmt.Errorf("%s, %w", dir, ErrBusy)
	}

	d.Bus.Write32(ch+ADDR, uint32(addr))
	d.Bus.Write32(ch+ADDR_MSB, uint32(uint64(addr)>>32))

	mmio.Set(d.Bus, ch+DMACR, DMACR_RS)

	// writing the length starts the transfer
	d.Bus.Write32(ch+LENGTH, uint32(n))

	klog.V(2).Infof("axidma %s start addr:%#x len:%d", dir, addr, n)

	return nil
}

// Busy reports whether the channel has not reached idle state.
func (d *DMA) Busy(dir transfer.Direction) bool {
	return d.Bus.Read32(chanBase(dir)+DMASR)&(1<<DMASR_IDLE) == 0
}

// Err returns the channel error status, if any.
func (d *DMA) Err(dir transfer.Direction) error {
	sr := d.Bus.Read32(chanBase(dir) + DMASR)

	if sr&errMask == 0 {
		return nil
	}

	return fmt.Errorf("%s status %#08x (internal:%d slave:%d decode:%d)", dir, sr,
		(sr>>DMASR_INTERR)&1, (sr>>DMASR_SLVERR)&1, (sr>>DMASR_DECERR)&1)
}
