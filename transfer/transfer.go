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

// Package transfer implements the DMA request/response round trip between the
// host buffers and the streaming cipher core.
package transfer

import (
	"errors"
	"fmt"
	"time"

	"k8s.io/klog/v2"

	"github.com/axis-aes/harness/buffer"
	"github.com/axis-aes/harness/poll"
)

// Direction identifies one of the two independent streaming channel
// directions.
type Direction int

const (
	// ToDevice moves memory to the stream (MM2S, plaintext).
	ToDevice Direction = iota
	// FromDevice moves the stream to memory (S2MM, ciphertext).
	FromDevice
)

func (d Direction) String() string {
	switch d {
	case ToDevice:
		return "MM2S"
	case FromDevice:
		return "S2MM"
	}
	return fmt.Sprintf("Direction(%d)", int(d))
}

// Channel is a bidirectional streaming DMA channel operated in simple
// (one-shot) mode.
type Channel interface {
	// Start programs a transfer of n bytes at device address addr.
	Start(dir Direction, addr uint, n int) error
	// Busy reports whether a transfer is still in progress.
	Busy(dir Direction) bool
}

// State is the round trip progress.
type State int

const (
	Idle State = iota
	ReceiveArmed
	SendArmed
	AwaitingCompletion
	Complete
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "Idle"
	case ReceiveArmed:
		return "ReceiveArmed"
	case SendArmed:
		return "SendArmed"
	case AwaitingCompletion:
		return "AwaitingCompletion"
	case Complete:
		return "Complete"
	case Failed:
		return "Failed"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// ErrStart is wrapped by errors returned when a channel rejects a transfer.
var ErrStart = errors.New("transfer start failed")

// StallError reports a channel direction which never signalled completion
// within the engine polling policy.
type StallError struct {
	Direction Direction
	Polls     int
	Err       error
}

func (e *StallError) Error() string {
	return fmt.Sprintf("%s stalled after %d polls, %v", e.Direction, e.Polls, e.Err)
}

func (e *StallError) Unwrap() error {
	return e.Err
}

// Session holds the state of a single round trip.
type Session struct {
	Length  int
	State   State
	History []State

	SendPolls    int
	ReceivePolls int
	Elapsed      time.Duration
}

// Engine sequences round trips over a Channel.
type Engine struct {
	Channel Channel
	// Policy bounds each completion wait, the zero value waits forever.
	Policy poll.Policy
	// Observer, when set, is invoked on every session state transition.
	Observer func(s *Session)
}

func (e *Engine) advance(s *Session, to State) {
	s.State = to
	s.History = append(s.History, to)

	klog.V(2).Infof("round trip %s", to)

	if e.Observer != nil {
		e.Observer(s)
	}
}

// RoundTrip moves n bytes from the outbound buffer through the device into
// the inbound buffer. The receive direction is always armed before the send
// direction, completion of both directions is awaited before returning.
//
// The outbound buffer must have been flushed, the inbound buffer must be
// invalidated by the caller before reading the result.
func (e *Engine) RoundTrip(m *buffer.Manager, n int) (s *Session, err error) {
	s = &Session{
		Length:  n,
		History: []State{Idle},
	}

	out, err := m.OutboundForDevice(n)
	if err != nil {
		return s, err
	}

	in, err := m.InboundForDevice(n)
	if err != nil {
		return s, err
	}

	start := time.Now()

	defer func() {
		s.Elapsed = time.Since(start)
	}()

	if err = e.Channel.Start(FromDevice, in.Addr(), n); err != nil {
		e.advance(s, Failed)
		return s, fmt.Errorf("%s, %w: %w", FromDevice, ErrStart, err)
	}

	e.advance(s, ReceiveArmed)

	if err = e.Channel.Start(ToDevice, out.Addr(), n); err != nil {
		e.advance(s, Failed)
		return s, fmt.Errorf("%s, %w: %w", ToDevice, ErrStart, err)
	}

	e.advance(s, SendArmed)
	e.advance(s, AwaitingCompletion)

	if s.SendPolls, err = e.await(ToDevice); err != nil {
		e.advance(s, Failed)
		return
	}

	if s.ReceivePolls, err = e.await(FromDevice); err != nil {
		e.advance(s, Failed)
		return
	}

	e.advance(s, Complete)

	return
}

func (e *Engine) await(dir Direction) (polls int, err error) {
	polls, err = poll.Until(func() bool {
		return !e.Channel.Busy(dir)
	}, e.Policy)

	if err != nil {
		return polls, &StallError{Direction: dir, Polls: polls, Err: err}
	}

	return
}
