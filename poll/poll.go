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

// Package poll implements the busy-wait suspension point shared by every
// hardware completion check in the harness.
//
// The zero Policy polls forever, which matches the behaviour of the bare
// metal tooling: a stalled device hangs the caller until it is reset. A
// bounded policy turns the same stall into ErrTimeoutExceeded.
package poll

import (
	"errors"
	"time"
)

// ErrTimeoutExceeded is returned when a condition did not become true within
// the policy bounds.
var ErrTimeoutExceeded = errors.New("timeout exceeded")

// Policy bounds a polling loop.
type Policy struct {
	// Timeout is the maximum wall time spent polling, zero means no limit.
	Timeout time.Duration
	// MaxPolls is the maximum number of condition evaluations, zero means no
	// limit.
	MaxPolls int
	// Interval is slept between unsuccessful evaluations, zero spins.
	Interval time.Duration

	// Now and Sleep override the wall clock (tests).
	Now   func() time.Time
	Sleep func(time.Duration)
}

// Bounded reports whether the policy can ever give up.
func (p Policy) Bounded() bool {
	return p.Timeout > 0 || p.MaxPolls > 0
}

func (p Policy) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return time.Now()
}

func (p Policy) sleep(d time.Duration) {
	if d <= 0 {
		return
	}

	if p.Sleep != nil {
		p.Sleep(d)
		return
	}

	time.Sleep(d)
}

// Until evaluates cond until it returns true, returning the number of
// evaluations performed.
func Until(cond func() bool, p Policy) (polls int, err error) {
	var deadline time.Time

	if p.Timeout > 0 {
		deadline = p.now().Add(p.Timeout)
	}

	for {
		polls++

		if cond() {
			return
		}

		if p.MaxPolls > 0 && polls >= p.MaxPolls {
			return polls, ErrTimeoutExceeded
		}

		if !deadline.IsZero() && !p.now().Before(deadline) {
			return polls, ErrTimeoutExceeded
		}

		p.sleep(p.Interval)
	}
}
