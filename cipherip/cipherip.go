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

// Package cipherip drives the key schedule interface of the AES-128
// streaming core.
//
// The core exposes 32-bit registers on an AXI4-Lite slave. Data flows over
// AXI4-Stream and is not handled here, only key loading is.
package cipherip

import (
	"encoding/binary"
	"fmt"

	"k8s.io/klog/v2"

	"github.com/axis-aes/harness/block"
	"github.com/axis-aes/harness/mmio"
	"github.com/axis-aes/harness/poll"
)

// Register map
const (
	KEY0    = 0x00
	KEY1    = 0x04
	KEY2    = 0x08
	KEY3    = 0x0c
	CONTROL = 0x14
	STATUS  = 0x18

	CONTROL_START = 0
	STATUS_DONE   = 1
)

// Core represents an instance of the cipher core.
type Core struct {
	// Bus is the register space of the core.
	Bus mmio.Bus
	// Policy bounds the key expansion wait.
	Policy poll.Policy
}

// LoadKey programs an AES-128 key and waits for key expansion to complete.
// Key bytes are packed into big-endian 32-bit words, KEY0 holding the first
// four bytes.
func (c *Core) LoadKey(key block.Block) (err error) {
	for i, off := range []uint32{KEY0, KEY1, KEY2, KEY3} {
		c.Bus.Write32(off, binary.BigEndian.Uint32(key[i*4:]))
	}

	// pulse key expansion start
	c.Bus.Write32(CONTROL, 1<<CONTROL_START)
	c.Bus.Write32(CONTROL, 0)

	polls, err := poll.Until(c.Ready, c.Policy)

	if err != nil {
		return fmt.Errorf("key expansion, %w", err)
	}

	klog.V(1).Infof("key expansion done after %d polls", polls)

	return
}

// Ready reports whether key expansion has completed.
func (c *Core) Ready() bool {
	return mmio.Get(c.Bus, STATUS, STATUS_DONE, 1) == 1
}
