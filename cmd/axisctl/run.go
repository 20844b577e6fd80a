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
	"slices"

	"github.com/cheggaaa/pb/v3"
	"github.com/spf13/cobra"
	"k8s.io/klog/v2"

	"github.com/axis-aes/harness/axidma"
	"github.com/axis-aes/harness/buffer"
	"github.com/axis-aes/harness/cipherip"
	"github.com/axis-aes/harness/gate"
	"github.com/axis-aes/harness/internal/sim"
	"github.com/axis-aes/harness/poll"
	"github.com/axis-aes/harness/report"
	"github.com/axis-aes/harness/scenario"
	"github.com/axis-aes/harness/transfer"
	"github.com/axis-aes/harness/vectors"
)

func newRunCmd() *cobra.Command {
	cfg := &config{sim: sim.DefaultOptions}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the test sequence",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cfg)
		},
	}

	f := cmd.Flags()

	f.StringVarP(&cfg.target, "target", "t", env("AXIS_TARGET", "sim"), "target (sim, pynq)")
	f.Uint32Var(&cfg.dmaBase, "dma-base", parseAddr("AXIS_DMA_BASE", sim.DMABase), "AXI DMA register base")
	f.Uint32Var(&cfg.aesBase, "aes-base", parseAddr("AXIS_AES_BASE", sim.AESBase), "AES core register base")
	f.StringVar(&cfg.udmabuf, "udmabuf", env("AXIS_UDMABUF", "udmabuf0"), "u-dma-buf device for transfer buffers")
	f.StringVarP(&cfg.vectors, "vectors", "f", "", "YAML vector file (default: builtin sequence)")
	f.StringSliceVarP(&cfg.scenarios, "scenario", "s", nil, "run only the named scenarios")
	f.BoolVarP(&cfg.pause, "pause", "p", false, "pause for ILA setup before scenarios which request it")
	f.DurationVar(&cfg.timeout, "timeout", defaultTimeout, "completion wait bound, 0 waits forever")
	f.StringVarP(&cfg.report, "report", "o", "", "write a binary report to file")
	f.BoolVar(&cfg.progress, "progress", true, "show a progress bar")

	f.BoolVar(&cfg.sim.ReverseOutput, "sim-reverse", false, "sim: byte-reverse core output")
	f.BoolVar(&cfg.sim.ZeroOnly, "sim-zero-only", false, "sim: corrupt output of non-zero input")
	f.BoolVar(&cfg.sim.Stall, "sim-stall", false, "sim: core never produces output")
	f.IntVar(&cfg.sim.OutputFIFO, "sim-output-fifo", sim.DefaultOptions.OutputFIFO, "sim: core output FIFO depth")

	return cmd
}

func load(cfg *config) (list []scenario.Scenario, err error) {
	if cfg.vectors == "" {
		list = vectors.Builtin()
	} else {
		f, err := os.Open(cfg.vectors)
		if err != nil {
			return nil, err
		}
		defer f.Close()

		if list, err = vectors.Load(f); err != nil {
			return nil, fmt.Errorf("%s, %w", cfg.vectors, err)
		}
	}

	if len(cfg.scenarios) == 0 {
		return
	}

	list = slices.DeleteFunc(list, func(s scenario.Scenario) bool {
		return !slices.Contains(cfg.scenarios, s.Name)
	})

	if len(list) == 0 {
		return nil, fmt.Errorf("no scenario matches %q", cfg.scenarios)
	}

	return
}

func newHarness(t *target, cfg *config) (h *scenario.Harness, err error) {
	policy := poll.Policy{Timeout: cfg.timeout}

	dma := &axidma.DMA{
		Bus:    t.dma,
		Policy: policy,
	}

	if err = dma.Init(); err != nil {
		return nil, fmt.Errorf("dma, %w", err)
	}

	buffers, err := buffer.New(t.alloc, t.cache, buffer.DefaultConfig)
	if err != nil {
		return nil, fmt.Errorf("buffers, %w", err)
	}

	h = &scenario.Harness{
		Keys: &cipherip.Core{
			Bus:    t.aes,
			Policy: policy,
		},
		Buffers: buffers,
		Engine: &transfer.Engine{
			Channel: dma,
			Policy:  policy,
		},
		Version: harnessVersion(),
	}

	if cfg.pause {
		h.Gate = &gate.Gate{
			Out: os.Stdout,
			In:  gate.NewConsole(os.Stdin),
		}
	}

	return
}

func run(cfg *config) (err error) {
	list, err := load(cfg)
	if err != nil {
		return
	}

	t, err := openTarget(cfg)
	if err != nil {
		return fmt.Errorf("target %s, %w", cfg.target, err)
	}
	defer t.Close()

	h, err := newHarness(t, cfg)
	if err != nil {
		return
	}

	var bar *pb.ProgressBar

	// the operator banner and the bar share the console
	if cfg.progress && !cfg.pause {
		bar = pb.StartNew(len(list))

		h.Observer = func(r *scenario.Result) {
			bar.Increment()
		}
	}

	sum := h.RunAll(list)

	if bar != nil {
		bar.Finish()
	}

	if err = report.WriteSummary(os.Stdout, sum); err != nil {
		return
	}

	if cfg.report != "" {
		if err = os.WriteFile(cfg.report, report.Marshal(sum), 0644); err != nil {
			return
		}

		klog.Infof("report %s written to %s", sum.ID, cfg.report)
	}

	if !sum.OK() {
		return fmt.Errorf("run %s: %d of %d scenarios did not pass", sum.ID,
			len(sum.Results)-sum.Count(scenario.Pass)-sum.Count(scenario.XFail), len(sum.Results))
	}

	return
}
