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

package report

import (
	"errors"
	"fmt"
	"time"

	"github.com/coreos/go-semver/semver"
	"github.com/rs/xid"
	"google.golang.org/protobuf/encoding/protowire"

	"github.com/axis-aes/harness/block"
	"github.com/axis-aes/harness/scenario"
	"github.com/axis-aes/harness/transfer"
	"github.com/axis-aes/harness/verify"
)

// ErrMalformed is returned when a report cannot be decoded.
var ErrMalformed = errors.New("malformed report")

// Field numbers of the report messages.
//
//	message Summary {
//	  bytes id = 1;
//	  string version = 2;
//	  int64 started = 3;   // unix nanoseconds
//	  int64 elapsed = 4;   // nanoseconds
//	  repeated Result results = 5;
//	}
//
//	message Result {
//	  string name = 1;
//	  int32 outcome = 2;
//	  string step = 3;
//	  string error = 4;
//	  repeated Set expected = 5;
//	  repeated Row rows = 6;
//	  Session session = 7;
//	}
//
//	message Set { repeated Candidate candidates = 1; }
//	message Candidate { string name = 1; bytes block = 2; }
//
//	message Row {
//	  int32 index = 1;
//	  bytes input = 2;
//	  bytes received = 3;
//	  bool pass = 4;
//	  sint32 candidate_index = 5;
//	  string candidate = 6;
//	}
//
//	message Session {
//	  int32 length = 1;
//	  int32 state = 2;
//	  repeated int32 history = 3;
//	  int32 send_polls = 4;
//	  int32 receive_polls = 5;
//	  int64 elapsed = 6;
//	}
const (
	summaryID      = 1
	summaryVersion = 2
	summaryStarted = 3
	summaryElapsed = 4
	summaryResults = 5

	resultName     = 1
	resultOutcome  = 2
	resultStep     = 3
	resultError    = 4
	resultExpected = 5
	resultRows     = 6
	resultSession  = 7

	setCandidates = 1

	candidateName  = 1
	candidateBlock = 2

	rowIndex          = 1
	rowInput          = 2
	rowReceived       = 3
	rowPass           = 4
	rowCandidateIndex = 5
	rowCandidate      = 6

	sessionLength       = 1
	sessionState        = 2
	sessionHistory      = 3
	sessionSendPolls    = 4
	sessionReceivePolls = 5
	sessionElapsed      = 6
)

// schema maps the known field numbers of a message to their wire type.
type schema map[protowire.Number]protowire.Type

const (
	wireVarint = protowire.VarintType
	wireBytes  = protowire.BytesType
)

var (
	summarySchema = schema{
		summaryID:      wireBytes,
		summaryVersion: wireBytes,
		summaryStarted: wireVarint,
		summaryElapsed: wireVarint,
		summaryResults: wireBytes,
	}

	resultSchema = schema{
		resultName:     wireBytes,
		resultOutcome:  wireVarint,
		resultStep:     wireBytes,
		resultError:    wireBytes,
		resultExpected: wireBytes,
		resultRows:     wireBytes,
		resultSession:  wireBytes,
	}

	setSchema = schema{setCandidates: wireBytes}

	candidateSchema = schema{
		candidateName:  wireBytes,
		candidateBlock: wireBytes,
	}

	rowSchema = schema{
		rowIndex:          wireVarint,
		rowInput:          wireBytes,
		rowReceived:       wireBytes,
		rowPass:           wireVarint,
		rowCandidateIndex: wireVarint,
		rowCandidate:      wireBytes,
	}

	sessionSchema = schema{
		sessionLength:       wireVarint,
		sessionState:        wireVarint,
		sessionHistory:      wireVarint,
		sessionSendPolls:    wireVarint,
		sessionReceivePolls: wireVarint,
		sessionElapsed:      wireVarint,
	}
)

func appendVarint(b []byte, num protowire.Number, v uint64) []byte {
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

func appendBytes(b []byte, num protowire.Number, v []byte) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, v)
}

func appendString(b []byte, num protowire.Number, v string) []byte {
	if v == "" {
		return b
	}

	b = protowire.AppendTag(b, num, protowire.BytesType)

	return protowire.AppendString(b, v)
}

// Marshal encodes a run summary in protobuf wire format.
func Marshal(s *scenario.Summary) []byte {
	var b []byte

	b = appendBytes(b, summaryID, s.ID.Bytes())
	b = appendString(b, summaryVersion, s.Version.String())
	b = appendVarint(b, summaryStarted, uint64(s.Started.UnixNano()))
	b = appendVarint(b, summaryElapsed, uint64(s.Elapsed))

	for i := range s.Results {
		b = appendBytes(b, summaryResults, marshalResult(&s.Results[i]))
	}

	return b
}

func marshalResult(r *scenario.Result) (b []byte) {
	b = appendString(b, resultName, r.Name)
	b = appendVarint(b, resultOutcome, uint64(r.Outcome))
	b = appendString(b, resultStep, r.Step)

	if r.Err != nil {
		b = appendString(b, resultError, r.Err.Error())
	}

	for _, set := range r.Expected {
		var m []byte

		for _, c := range set {
			var cm []byte
			cm = appendString(cm, candidateName, c.Name)
			cm = appendBytes(cm, candidateBlock, c.Block[:])
			m = appendBytes(m, setCandidates, cm)
		}

		b = appendBytes(b, resultExpected, m)
	}

	for _, row := range r.Table.Rows {
		var m []byte

		m = appendVarint(m, rowIndex, uint64(row.Index))
		m = appendBytes(m, rowInput, row.Input[:])
		m = appendBytes(m, rowReceived, row.Received[:])
		m = appendVarint(m, rowPass, protowire.EncodeBool(row.Match.Pass))
		m = appendVarint(m, rowCandidateIndex, protowire.EncodeZigZag(int64(row.Match.Index)))
		m = appendString(m, rowCandidate, row.Match.Candidate)

		b = appendBytes(b, resultRows, m)
	}

	if s := r.Session; s != nil {
		var m []byte

		m = appendVarint(m, sessionLength, uint64(s.Length))
		m = appendVarint(m, sessionState, uint64(s.State))

		for _, st := range s.History {
			m = appendVarint(m, sessionHistory, uint64(st))
		}

		m = appendVarint(m, sessionSendPolls, uint64(s.SendPolls))
		m = appendVarint(m, sessionReceivePolls, uint64(s.ReceivePolls))
		m = appendVarint(m, sessionElapsed, uint64(s.Elapsed))

		b = appendBytes(b, resultSession, m)
	}

	return
}

type field struct {
	num    protowire.Number
	typ    protowire.Type
	varint uint64
	bytes  []byte
}

// each calls fn for every field of a message known to sc. Unknown fields
// are skipped, a known field with a different wire type is malformed.
func each(b []byte, sc schema, fn func(f *field) error) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return fmt.Errorf("%w: %w", ErrMalformed, protowire.ParseError(n))
		}
		b = b[n:]

		f := &field{num: num, typ: typ}

		switch typ {
		case protowire.VarintType:
			f.varint, n = protowire.ConsumeVarint(b)
		case protowire.BytesType:
			f.bytes, n = protowire.ConsumeBytes(b)
		default:
			n = protowire.ConsumeFieldValue(num, typ, b)
		}

		if n < 0 {
			return fmt.Errorf("field %d, %w: %w", num, ErrMalformed, protowire.ParseError(n))
		}
		b = b[n:]

		want, ok := sc[num]
		if !ok {
			continue
		}

		if typ != want {
			return fmt.Errorf("field %d has wire type %d, want %d, %w", num, typ, want, ErrMalformed)
		}

		if err := fn(f); err != nil {
			return err
		}
	}

	return nil
}

func (f *field) block() (b block.Block, err error) {
	if len(f.bytes) != block.Size {
		return b, fmt.Errorf("field %d holds %d bytes, %w", f.num, len(f.bytes), ErrMalformed)
	}

	copy(b[:], f.bytes)

	return
}

// Decode parses a run summary encoded with Marshal.
func Decode(b []byte) (s *scenario.Summary, err error) {
	s = &scenario.Summary{}

	err = each(b, summarySchema, func(f *field) (err error) {
		switch f.num {
		case summaryID:
			s.ID, err = xid.FromBytes(f.bytes)
		case summaryVersion:
			var v *semver.Version

			if v, err = semver.NewVersion(string(f.bytes)); err == nil {
				s.Version = *v
			}
		case summaryStarted:
			s.Started = time.Unix(0, int64(f.varint))
		case summaryElapsed:
			s.Elapsed = time.Duration(f.varint)
		case summaryResults:
			var r scenario.Result

			if r, err = decodeResult(f.bytes); err == nil {
				s.Results = append(s.Results, r)
			}
		}

		return
	})

	if err != nil {
		return nil, err
	}

	return
}

func decodeResult(b []byte) (r scenario.Result, err error) {
	err = each(b, resultSchema, func(f *field) (err error) {
		switch f.num {
		case resultName:
			r.Name = string(f.bytes)
		case resultOutcome:
			r.Outcome = scenario.Outcome(f.varint)
		case resultStep:
			r.Step = string(f.bytes)
		case resultError:
			r.Err = errors.New(string(f.bytes))
		case resultExpected:
			var set verify.ExpectedSet

			if set, err = decodeSet(f.bytes); err == nil {
				r.Expected = append(r.Expected, set)
			}
		case resultRows:
			var row verify.Row

			if row, err = decodeRow(f.bytes); err == nil {
				r.Table.Rows = append(r.Table.Rows, row)
			}
		case resultSession:
			r.Session, err = decodeSession(f.bytes)
		}

		return
	})

	if err != nil {
		return
	}

	for i := range r.Table.Rows {
		row := &r.Table.Rows[i]

		switch {
		case len(r.Expected) == 1:
			row.Expected = r.Expected[0]
		case i < len(r.Expected):
			row.Expected = r.Expected[i]
		}

		if row.Match.Pass {
			r.Table.Passed++
		} else {
			r.Table.Failed++
		}
	}

	return
}

func decodeSet(b []byte) (set verify.ExpectedSet, err error) {
	err = each(b, setSchema, func(f *field) error {
		if f.num != setCandidates {
			return nil
		}

		var c verify.Candidate

		err := each(f.bytes, candidateSchema, func(f *field) (err error) {
			switch f.num {
			case candidateName:
				c.Name = string(f.bytes)
			case candidateBlock:
				c.Block, err = f.block()
			}
			return
		})

		set = append(set, c)

		return err
	})

	return
}

func decodeRow(b []byte) (row verify.Row, err error) {
	err = each(b, rowSchema, func(f *field) (err error) {
		switch f.num {
		case rowIndex:
			row.Index = int(f.varint)
		case rowInput:
			row.Input, err = f.block()
		case rowReceived:
			row.Received, err = f.block()
		case rowPass:
			row.Match.Pass = protowire.DecodeBool(f.varint)
		case rowCandidateIndex:
			row.Match.Index = int(protowire.DecodeZigZag(f.varint))
		case rowCandidate:
			row.Match.Candidate = string(f.bytes)
		}

		return
	})

	return
}

func decodeSession(b []byte) (s *transfer.Session, err error) {
	s = &transfer.Session{}

	err = each(b, sessionSchema, func(f *field) error {
		switch f.num {
		case sessionLength:
			s.Length = int(f.varint)
		case sessionState:
			s.State = transfer.State(f.varint)
		case sessionHistory:
			s.History = append(s.History, transfer.State(f.varint))
		case sessionSendPolls:
			s.SendPolls = int(f.varint)
		case sessionReceivePolls:
			s.ReceivePolls = int(f.varint)
		case sessionElapsed:
			s.Elapsed = time.Duration(f.varint)
		}

		return nil
	})

	return
}
