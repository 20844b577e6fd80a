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

// Package buffer implements ownership and cache maintenance of the DMA
// transfer buffers.
//
// A Manager owns one outbound (plaintext) and one inbound (ciphertext)
// buffer, both reserved once with a fixed capacity and never resized. Buffers
// move between host and device ownership following a strict protocol:
//
//   - outbound memory is handed to the device only after it has been flushed
//     and not mutated since;
//   - inbound memory is handed back to the host only after it has been
//     invalidated following the device write.
//
// Violations of the protocol are reported as errors rather than silently
// producing stale data.
package buffer

import (
	"errors"
	"fmt"

	"k8s.io/klog/v2"

	"github.com/axis-aes/harness/block"
)

var (
	// ErrCapacityExceeded is returned when a pattern does not fit the buffer.
	ErrCapacityExceeded = errors.New("capacity exceeded")
	// ErrInvalidLength is returned for transfer lengths which are not a
	// positive multiple of the block size.
	ErrInvalidLength = errors.New("invalid length")
	// ErrMisaligned is returned when reserved memory violates the requested
	// alignment.
	ErrMisaligned = errors.New("misaligned buffer")
	// ErrNotFlushed is returned when outbound memory is requested for device
	// access without a flush following its last mutation.
	ErrNotFlushed = errors.New("outbound buffer not flushed")
	// ErrNotInvalidated is returned when inbound memory is read after a device
	// write without invalidation.
	ErrNotInvalidated = errors.New("inbound buffer not invalidated")
)

// Allocator reserves memory suitable for device access.
type Allocator interface {
	// Reserve returns the device address and host view of size bytes aligned
	// to align.
	Reserve(size int, align int) (addr uint, buf []byte)
}

// Cache performs data cache maintenance on address ranges.
type Cache interface {
	// Flush writes back cached data so that device reads observe host writes.
	Flush(addr uint, size int)
	// Invalidate discards cached data so that host reads observe device
	// writes.
	Invalidate(addr uint, size int)
}

// Coherent is a Cache for memory which needs no maintenance.
type Coherent struct{}

// Flush is a no-op.
func (Coherent) Flush(uint, int) {}

// Invalidate is a no-op.
func (Coherent) Invalidate(uint, int) {}

// Buffer is a fixed capacity memory area shared with the device.
type Buffer struct {
	addr uint
	buf  []byte
}

// Addr returns the device address of the buffer.
func (b *Buffer) Addr() uint {
	return b.addr
}

// Bytes returns the host view of the buffer.
func (b *Buffer) Bytes() []byte {
	return b.buf
}

// Len returns the buffer capacity.
func (b *Buffer) Len() int {
	return len(b.buf)
}

// Config defines buffer geometry.
type Config struct {
	// Capacity in bytes of each buffer, a multiple of block.Size.
	Capacity int
	// Align is the minimum address alignment required by the DMA engine.
	Align int
}

// DefaultConfig matches the statically allocated buffers of the bare metal
// test programs (four blocks plus headroom, cache line aligned).
var DefaultConfig = Config{
	Capacity: 128,
	Align:    64,
}

type inboundState int

const (
	inboundHost inboundState = iota
	inboundDevice
	inboundReturned
)

// Manager owns the outbound and inbound transfer buffers.
type Manager struct {
	cfg   Config
	cache Cache

	out *Buffer
	in  *Buffer

	// outbound bookkeeping
	dirty   bool
	flushed int

	// inbound bookkeeping
	state   inboundState
	pending int
	valid   int
}

// New reserves the transfer buffers.
func New(alloc Allocator, cache Cache, cfg Config) (m *Manager, err error) {
	if cfg.Capacity <= 0 || cfg.Capacity%block.Size != 0 {
		return nil, fmt.Errorf("capacity %d is not a positive multiple of %d, %w", cfg.Capacity, block.Size, ErrInvalidLength)
	}

	if cfg.Align <= 0 || cfg.Align&(cfg.Align-1) != 0 {
		return nil, fmt.Errorf("alignment %d is not a power of two, %w", cfg.Align, ErrMisaligned)
	}

	if cache == nil {
		cache = Coherent{}
	}

	m = &Manager{
		cfg:   cfg,
		cache: cache,
	}

	if m.out, err = reserve(alloc, cfg); err != nil {
		return nil, fmt.Errorf("outbound, %w", err)
	}

	if m.in, err = reserve(alloc, cfg); err != nil {
		return nil, fmt.Errorf("inbound, %w", err)
	}

	klog.V(1).Infof("buffers reserved out:%#x in:%#x size:%d align:%d", m.out.addr, m.in.addr, cfg.Capacity, cfg.Align)

	return
}

func reserve(alloc Allocator, cfg Config) (*Buffer, error) {
	addr, buf := alloc.Reserve(cfg.Capacity, cfg.Align)

	if len(buf) != cfg.Capacity {
		return nil, fmt.Errorf("reserved %d bytes, want %d", len(buf), cfg.Capacity)
	}

	if addr%uint(cfg.Align) != 0 {
		return nil, fmt.Errorf("address %#x not aligned to %d, %w", addr, cfg.Align, ErrMisaligned)
	}

	return &Buffer{addr: addr, buf: buf}, nil
}

// Capacity returns the capacity in bytes of each buffer.
func (m *Manager) Capacity() int {
	return m.cfg.Capacity
}

// Outbound returns the outbound (plaintext) buffer for inspection.
//
// Writes through the returned view bypass the flush bookkeeping.
func (m *Manager) Outbound() *Buffer {
	return m.out
}

// Inbound returns the inbound (ciphertext) buffer for inspection.
func (m *Manager) Inbound() *Buffer {
	return m.in
}

// CheckLength verifies that n bytes form whole blocks fitting the buffers.
func (m *Manager) CheckLength(n int) error {
	switch {
	case n <= 0 || n%block.Size != 0:
		return fmt.Errorf("%d bytes, %w", n, ErrInvalidLength)
	case n > m.cfg.Capacity:
		return fmt.Errorf("%d bytes > %d, %w", n, m.cfg.Capacity, ErrCapacityExceeded)
	}

	return nil
}

// PrepareOutbound writes count contiguous copies of pattern to the outbound
// buffer.
func (m *Manager) PrepareOutbound(pattern block.Block, count int) error {
	switch {
	case count <= 0:
		return fmt.Errorf("%d blocks, %w", count, ErrInvalidLength)
	case count > m.cfg.Capacity/block.Size:
		return fmt.Errorf("%d blocks > %d, %w", count, m.cfg.Capacity/block.Size, ErrCapacityExceeded)
	}

	return m.PrepareSequence(block.Repeat(pattern, count))
}

// PrepareSequence writes blocks contiguously to the outbound buffer.
func (m *Manager) PrepareSequence(blocks []block.Block) error {
	n := len(blocks) * block.Size

	if err := m.CheckLength(n); err != nil {
		return err
	}

	for i, b := range blocks {
		copy(m.out.buf[i*block.Size:], b[:])
	}

	m.dirty = true

	return nil
}

// FillOutbound sets the first n bytes of the outbound buffer to v.
func (m *Manager) FillOutbound(v byte, n int) error {
	if err := m.CheckLength(n); err != nil {
		return err
	}

	return m.PrepareOutbound(block.Fill(v), n/block.Size)
}

// ClearInbound zero-fills the whole inbound buffer and returns it to host
// ownership.
func (m *Manager) ClearInbound() {
	clear(m.in.buf)

	m.state = inboundHost
	m.pending = 0
	m.valid = 0
}

// FlushOutbound writes back the first n bytes of the outbound buffer so that
// the device observes them.
func (m *Manager) FlushOutbound(n int) error {
	if err := m.CheckLength(n); err != nil {
		return err
	}

	klog.V(2).Infof("flush out:%#x+%d", m.out.addr, n)
	m.cache.Flush(m.out.addr, n)

	m.dirty = false
	m.flushed = n

	return nil
}

// InvalidateInbound discards cached copies of the first n bytes of the
// inbound buffer so that host reads observe the device write.
func (m *Manager) InvalidateInbound(n int) error {
	if err := m.CheckLength(n); err != nil {
		return err
	}

	klog.V(2).Infof("invalidate in:%#x+%d", m.in.addr, n)
	m.cache.Invalidate(m.in.addr, n)

	if m.state == inboundDevice {
		m.state = inboundReturned
		m.valid = n
	}

	return nil
}

// OutboundForDevice returns the outbound buffer for a device read of n bytes.
func (m *Manager) OutboundForDevice(n int) (*Buffer, error) {
	if err := m.CheckLength(n); err != nil {
		return nil, err
	}

	if m.dirty || n > m.flushed {
		return nil, ErrNotFlushed
	}

	return m.out, nil
}

// InboundForDevice hands the inbound buffer to the device for a write of n
// bytes.
//
// The range is written back first, a dirty line evicted during the transfer
// would otherwise overwrite device data. Handing over a range which is
// already owned by the device performs no maintenance.
func (m *Manager) InboundForDevice(n int) (*Buffer, error) {
	if err := m.CheckLength(n); err != nil {
		return nil, err
	}

	// already handed over and not touched since
	if m.state == inboundDevice && n <= m.pending {
		return m.in, nil
	}

	m.cache.Flush(m.in.addr, n)

	m.state = inboundDevice
	m.pending = n
	m.valid = 0

	return m.in, nil
}

// Received returns the first n bytes of the inbound buffer as blocks, after
// the device write has been made visible with InvalidateInbound.
func (m *Manager) Received(n int) ([]block.Block, error) {
	if err := m.CheckLength(n); err != nil {
		return nil, err
	}

	if m.state != inboundReturned || n > m.valid {
		return nil, ErrNotInvalidated
	}

	return block.Split(m.in.buf[:n])
}

// Sent returns the first n bytes of the outbound buffer as blocks.
func (m *Manager) Sent(n int) ([]block.Block, error) {
	if err := m.CheckLength(n); err != nil {
		return nil, err
	}

	return block.Split(m.out.buf[:n])
}
