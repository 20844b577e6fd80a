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
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/axis-aes/harness/internal/sim"
)

type config struct {
	target  string
	dmaBase uint32
	aesBase uint32
	udmabuf string

	vectors   string
	scenarios []string
	pause     bool
	timeout   time.Duration
	report    string
	progress  bool

	sim sim.Options
}

func parseAddr(key string, def uint32) uint32 {
	s, ok := os.LookupEnv(key)
	if !ok {
		return def
	}

	v, err := strconv.ParseUint(s, 0, 32)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid %s=%q, using %#x\n", key, s, def)
		return def
	}

	return uint32(v)
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "axisctl",
		Short: "AES-128 AXI-Stream accelerator test harness",
		Long: `axisctl drives an AES-128 core behind an AXI DMA engine through a fixed ` +
			`sequence of test vectors and reports the outcome of each. The "sim" target ` +
			`runs against a register level model, "pynq" against the programmable logic ` +
			`of a PYNQ board through /dev/mem and u-dma-buf.`,
		Version:       fmt.Sprintf("%s (%s %s)", Version, Revision, Build),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newRunCmd(), newVectorsCmd(), newDecodeCmd())

	return root
}
