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
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/axis-aes/harness/internal/sim"
	"github.com/axis-aes/harness/report"
	"github.com/axis-aes/harness/scenario"
	"github.com/axis-aes/harness/vectors"
)

func simConfig(t *testing.T) *config {
	t.Helper()

	return &config{
		target:  "sim",
		timeout: time.Second,
		report:  filepath.Join(t.TempDir(), "report.bin"),
		sim:     sim.DefaultOptions,
	}
}

func TestRunSim(t *testing.T) {
	cfg := simConfig(t)

	if err := run(cfg); err != nil {
		t.Fatalf("run(): %v", err)
	}

	buf, err := os.ReadFile(cfg.report)
	if err != nil {
		t.Fatal(err)
	}

	sum, err := report.Decode(buf)
	if err != nil {
		t.Fatalf("Decode(): %v", err)
	}

	if got, want := len(sum.Results), len(vectors.Builtin()); got != want {
		t.Fatalf("Got %d results, want %d", got, want)
	}

	if !sum.OK() {
		t.Fatalf("decoded summary not OK")
	}
}

func TestRunSimFaults(t *testing.T) {
	for _, test := range []struct {
		name    string
		opt     func(*sim.Options)
		timeout time.Duration
		want    scenario.Outcome
	}{
		{
			name: "zero only",
			opt:  func(o *sim.Options) { o.ZeroOnly = true },
			want: scenario.Fail,
		}, {
			name:    "stall",
			opt:     func(o *sim.Options) { o.Stall = true },
			timeout: 50 * time.Millisecond,
			want:    scenario.Timeout,
		},
	} {
		t.Run(test.name, func(t *testing.T) {
			cfg := simConfig(t)
			test.opt(&cfg.sim)

			if test.timeout > 0 {
				cfg.timeout = test.timeout
			}

			if err := run(cfg); err == nil || !strings.Contains(err.Error(), "did not pass") {
				t.Fatalf("run() = %v, want failed scenarios", err)
			}

			buf, err := os.ReadFile(cfg.report)
			if err != nil {
				t.Fatal(err)
			}

			sum, err := report.Decode(buf)
			if err != nil {
				t.Fatalf("Decode(): %v", err)
			}

			if sum.Count(test.want) == 0 {
				t.Fatalf("no %s outcome recorded", test.want)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	cfg := &config{scenarios: []string{"single zero block", "FIPS-197 C.1"}}

	list, err := load(cfg)
	if err != nil {
		t.Fatalf("load(): %v", err)
	}

	if len(list) != 2 || list[0].Name != "single zero block" {
		t.Fatalf("Got %d scenarios, want the two selected", len(list))
	}

	cfg.scenarios = []string{"missing"}

	if _, err := load(cfg); err == nil {
		t.Fatal("load() succeeded without a match")
	}

	cfg = &config{vectors: "../../vectors/testdata/vectors.yaml"}

	if list, err = load(cfg); err != nil || len(list) != 3 {
		t.Fatalf("load(%s) = %d, %v", cfg.vectors, len(list), err)
	}
}

func TestUnknownTarget(t *testing.T) {
	cfg := simConfig(t)
	cfg.target = "zcu102"

	if err := run(cfg); err == nil {
		t.Fatal("run() succeeded on an unknown target")
	}
}

func TestCommands(t *testing.T) {
	cfg := simConfig(t)

	if err := run(cfg); err != nil {
		t.Fatalf("run(): %v", err)
	}

	for _, args := range [][]string{
		{"vectors"},
		{"vectors", "-f", "../../vectors/testdata/vectors.yaml"},
		{"decode", cfg.report},
		{"run", "--progress=false", "-s", "single zero block"},
	} {
		root := newRootCmd()
		root.SetArgs(args)

		if err := root.Execute(); err != nil {
			t.Errorf("axisctl %s: %v", strings.Join(args, " "), err)
		}
	}
}

func TestHarnessVersion(t *testing.T) {
	old := Version
	defer func() { Version = old }()

	Version = "v1.2.3"

	if got := harnessVersion().String(); got != "1.2.3" {
		t.Fatalf("Got %s, want 1.2.3", got)
	}

	Version = ""

	if got := harnessVersion().String(); got != "0.0.0-dev" {
		t.Fatalf("Got %s, want 0.0.0-dev", got)
	}
}
