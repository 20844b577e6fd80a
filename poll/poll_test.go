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

package poll

import (
	"errors"
	"testing"
	"time"
)

func TestUntil(t *testing.T) {
	for _, test := range []struct {
		name      string
		readyAt   int
		policy    Policy
		wantPolls int
		wantErr   error
	}{
		{
			name:      "immediately ready",
			readyAt:   1,
			wantPolls: 1,
		}, {
			name:      "unbounded",
			readyAt:   1000,
			wantPolls: 1000,
		}, {
			name:      "within budget",
			readyAt:   5,
			policy:    Policy{MaxPolls: 5},
			wantPolls: 5,
		}, {
			name:      "budget exhausted",
			readyAt:   6,
			policy:    Policy{MaxPolls: 5},
			wantPolls: 5,
			wantErr:   ErrTimeoutExceeded,
		},
	} {
		t.Run(test.name, func(t *testing.T) {
			n := 0
			polls, err := Until(func() bool {
				n++
				return n >= test.readyAt
			}, test.policy)
			if !errors.Is(err, test.wantErr) {
				t.Fatalf("Got err %v, want %v", err, test.wantErr)
			}
			if polls != test.wantPolls {
				t.Fatalf("Got %d polls, want %d", polls, test.wantPolls)
			}
		})
	}
}

func TestUntilTimeout(t *testing.T) {
	now := time.Unix(0, 0)
	var slept time.Duration

	p := Policy{
		Timeout:  10 * time.Millisecond,
		Interval: time.Millisecond,
		Now:      func() time.Time { return now },
		Sleep: func(d time.Duration) {
			slept += d
			now = now.Add(d)
		},
	}

	if !p.Bounded() {
		t.Fatal("Bounded() = false for policy with timeout")
	}

	polls, err := Until(func() bool { return false }, p)
	if !errors.Is(err, ErrTimeoutExceeded) {
		t.Fatalf("Got err %v, want %v", err, ErrTimeoutExceeded)
	}

	if polls != 11 {
		t.Errorf("Got %d polls, want 11", polls)
	}

	if slept != 10*time.Millisecond {
		t.Errorf("Slept %v, want 10ms", slept)
	}

	if (Policy{}).Bounded() {
		t.Error("Bounded() = true for zero policy")
	}
}
