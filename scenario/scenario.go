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

// Package scenario sequences test vectors through the cipher core and
// records their outcome.
package scenario

import (
	"errors"
	"fmt"
	"time"

	"github.com/coreos/go-semver/semver"
	"github.com/rs/xid"
	"k8s.io/klog/v2"

	"github.com/axis-aes/harness/block"
	"github.com/axis-aes/harness/buffer"
	"github.com/axis-aes/harness/gate"
	"github.com/axis-aes/harness/poll"
	"github.com/axis-aes/harness/transfer"
	"github.com/axis-aes/harness/vectors"
	"github.com/axis-aes/harness/verify"
)

// Scenario is a named test vector run as a single round trip.
type Scenario = vectors.Vector

// Outcome classifies a scenario run.
type Outcome int

const (
	Pass Outcome = iota
	Fail
	// XFail is a mismatch on a scenario which documents a known failure.
	XFail
	// XPass is a match on a scenario which documents a known failure.
	XPass
	// Error is a scenario aborted before verification.
	Error
	// Timeout is a scenario aborted by a device stall.
	Timeout
)

var outcomes = map[Outcome]string{
	Pass:    "PASS",
	Fail:    "FAIL",
	XFail:   "XFAIL",
	XPass:   "XPASS",
	Error:   "ERROR",
	Timeout: "TIMEOUT",
}

func (o Outcome) String() string {
	if s, ok := outcomes[o]; ok {
		return s
	}
	return fmt.Sprintf("Outcome(%d)", int(o))
}

// ParseOutcome returns the Outcome named s.
func ParseOutcome(s string) (Outcome, error) {
	for o, name := range outcomes {
		if name == s {
			return o, nil
		}
	}

	return 0, fmt.Errorf("unknown outcome %q", s)
}

// KeyLoader programs the cipher key ahead of a transfer.
type KeyLoader interface {
	LoadKey(key block.Block) error
}

// Result is the record of a single scenario run.
type Result struct {
	Name    string
	Outcome Outcome
	// Step names the step which failed for Error and Timeout outcomes.
	Step string
	Err  error

	// Expected are the candidate sets the received blocks were checked
	// against.
	Expected []verify.ExpectedSet
	Table    verify.Result
	Session  *transfer.Session
}

// Harness runs scenarios on a single device.
type Harness struct {
	Keys    KeyLoader
	Buffers *buffer.Manager
	Engine  *transfer.Engine
	// Gate, when set, pauses scenarios which request it before the transfer
	// is armed.
	Gate *gate.Gate
	// Version is recorded in every Summary.
	Version semver.Version
	// Observer, when set, is invoked after every scenario run.
	Observer func(r *Result)
}

func (r *Result) abort(step string, err error) {
	r.Step = step
	r.Err = err
	r.Outcome = Error

	var stall *transfer.StallError

	if errors.As(err, &stall) || errors.Is(err, poll.ErrTimeoutExceeded) {
		r.Outcome = Timeout
	}

	klog.V(1).Infof("%s: %s at %s, %v", r.Name, r.Outcome, step, err)
}

// Run executes a single scenario. Errors are recorded in the result and
// never prevent later scenarios from running.
func (h *Harness) Run(s Scenario) (r Result) {
	r = Result{
		Name:     s.Name,
		Expected: s.Expected,
	}

	n := s.Length()

	if err := h.Buffers.CheckLength(n); err != nil {
		r.abort("capacity", err)
		return
	}

	if err := h.Keys.LoadKey(s.Key); err != nil {
		r.abort("key", err)
		return
	}

	if err := h.Buffers.PrepareSequence(s.Plaintext); err != nil {
		r.abort("prepare", err)
		return
	}

	h.Buffers.ClearInbound()

	if err := h.Buffers.FlushOutbound(n); err != nil {
		r.abort("flush", err)
		return
	}

	// inbound cache maintenance is done before the gate as well
	if _, err := h.Buffers.InboundForDevice(n); err != nil {
		r.abort("handoff", err)
		return
	}

	if s.Pause {
		if err := h.pause(s.Trigger); err != nil {
			r.abort("gate", err)
			return
		}
	}

	// nothing may run between the gate and the transfer
	session, err := h.Engine.RoundTrip(h.Buffers, n)
	r.Session = session

	if err != nil {
		r.abort("transfer", err)
		return
	}

	if err = h.Buffers.InvalidateInbound(n); err != nil {
		r.abort("invalidate", err)
		return
	}

	received, err := h.Buffers.Received(n)
	if err != nil {
		r.abort("receive", err)
		return
	}

	sent, err := h.Buffers.Sent(n)
	if err != nil {
		r.abort("sent", err)
		return
	}

	if r.Table, err = verify.Table(sent, received, s.Expected); err != nil {
		r.abort("verify", err)
		return
	}

	switch pass := r.Table.Pass(); {
	case pass && s.ExpectMismatch:
		r.Outcome = XPass
	case pass:
		r.Outcome = Pass
	case s.ExpectMismatch:
		r.Outcome = XFail
	default:
		r.Outcome = Fail
	}

	klog.V(1).Infof("%s: %s (%d/%d blocks, %v)", r.Name, r.Outcome, r.Table.Passed, len(r.Table.Rows), session.Elapsed)

	return
}

func (h *Harness) pause(trigger string) error {
	if h.Gate == nil {
		klog.V(1).Infof("no operator gate, pause skipped")
		return nil
	}

	g := *h.Gate

	if trigger != "" {
		g.Trigger = trigger
	}

	return g.Await()
}

// Summary aggregates the results of a run.
type Summary struct {
	ID      xid.ID
	Version semver.Version
	Started time.Time
	Elapsed time.Duration
	Results []Result
}

// Count returns the number of results with outcome o.
func (s *Summary) Count(o Outcome) (n int) {
	for _, r := range s.Results {
		if r.Outcome == o {
			n++
		}
	}

	return
}

// OK reports whether every scenario passed or failed as documented.
func (s *Summary) OK() bool {
	return s.Count(Pass)+s.Count(XFail) == len(s.Results)
}

// RunAll runs every scenario in order, each exactly once.
func (h *Harness) RunAll(list []Scenario) *Summary {
	sum := &Summary{
		ID:      xid.New(),
		Version: h.Version,
		Started: time.Now(),
	}

	klog.Infof("run %s: %d scenarios", sum.ID, len(list))

	for _, s := range list {
		r := h.Run(s)
		sum.Results = append(sum.Results, r)

		if h.Observer != nil {
			h.Observer(&sum.Results[len(sum.Results)-1])
		}
	}

	sum.Elapsed = time.Since(sum.Started)

	return sum
}
