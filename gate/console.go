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

//go:build !tamago

package gate

import (
	"io"
	"os"

	"golang.org/x/term"
)

// Console is an operator input which delivers single key presses from a
// terminal without waiting for a newline.
//
// The terminal is only in raw mode while a read is pending, output printed
// between reads is unaffected.
type Console struct {
	f   *os.File
	raw bool
}

// NewConsole returns a console reading from f. Inputs which are not a
// terminal (pipes, serial adapters) are read as is.
func NewConsole(f *os.File) *Console {
	return &Console{
		f:   f,
		raw: term.IsTerminal(int(f.Fd())),
	}
}

// Read reads operator key presses.
func (c *Console) Read(p []byte) (n int, err error) {
	if !c.raw {
		return c.f.Read(p)
	}

	fd := int(c.f.Fd())

	state, err := term.MakeRaw(fd)
	if err != nil {
		return
	}
	defer func() {
		if rerr := term.Restore(fd, state); err == nil {
			err = rerr
		}
	}()

	return c.f.Read(p)
}

var _ io.Reader = &Console{}
