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

// Package gate implements the operator synchronization pause used to arm an
// external logic analyzer (ILA) before a transfer starts.
//
// The pause is human-mediated: instructions are printed on the console and
// the gate blocks until the operator presses a key. There is no timeout, the
// only way out of a forgotten gate is resetting the process.
package gate

import (
	"errors"
	"fmt"
	"io"
	"strings"
)

// Trigger conditions printed in the operator instructions.
const (
	TriggerNonZeroData  = "s_axis_tdata != 0"
	TriggerBackpressure = "(tvalid==1) && (tready==0)"
)

const rule = "========================================================"

// ErrNoOperator is returned when the operator input is closed before a key
// press is received.
var ErrNoOperator = errors.New("operator input closed")

// Gate pauses the caller until an operator signal is received.
type Gate struct {
	// Out receives the instructions.
	Out io.Writer
	// In supplies the operator signal, one byte per key press.
	In io.Reader
	// Trigger is the ILA trigger condition the operator should arm.
	Trigger string
}

// Instructions returns the console banner printed by Await.
func (g *Gate) Instructions() string {
	trigger := g.Trigger

	if trigger == "" {
		trigger = TriggerNonZeroData
	}

	var sb strings.Builder

	fmt.Fprintf(&sb, "\r\n%s\r\n", rule)
	fmt.Fprintf(&sb, "   ILA SETUP - DEBUG PAUSE\r\n")
	fmt.Fprintf(&sb, "%s\r\n", rule)
	fmt.Fprintf(&sb, "1. Switch to Vivado Hardware Manager.\r\n")
	fmt.Fprintf(&sb, "2. Program FPGA with ILA bitstream (if not already done).\r\n")
	fmt.Fprintf(&sb, "3. Select ILA core, set trigger: %s.\r\n", trigger)
	fmt.Fprintf(&sb, "4. Click 'Run Trigger' (triangle icon).\r\n")
	fmt.Fprintf(&sb, "5. Verify status shows 'Waiting for trigger'.\r\n")
	fmt.Fprintf(&sb, "6. Return to this console and press ANY key to continue.\r\n")
	fmt.Fprintf(&sb, "%s\r\n\r\n", rule)

	return sb.String()
}

// Await prints the operator instructions and blocks until a non-zero byte is
// read from the operator input.
//
// Callers must start the guarded transfer immediately after Await returns.
func (g *Gate) Await() (err error) {
	if _, err = io.WriteString(g.Out, g.Instructions()); err != nil {
		return
	}

	var c [1]byte

	for c[0] == 0 {
		n, err := g.In.Read(c[:])

		switch {
		case n == 1:
			continue
		case errors.Is(err, io.EOF):
			return ErrNoOperator
		case err != nil:
			return fmt.Errorf("operator input, %w", err)
		}
	}

	_, err = io.WriteString(g.Out, "Resuming DMA transfer...\r\n\r\n")

	return
}
